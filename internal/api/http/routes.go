package http

import "github.com/gin-gonic/gin"

// Register mounts every handler on r
func (h *Handlers) Register(r gin.IRoutes) {
	// Status
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/info", h.Info)
	r.GET("/config", h.Config)

	// Workspace
	r.GET("/workspace", h.GetWorkspace)
	r.PUT("/workspace/code", h.SetCodeBuffer)
	r.PUT("/workspace/layout", h.SetLayout)
	r.PUT("/workspace/autosave", h.SetAutoSave)
	r.POST("/panels/:name/toggle", h.TogglePanel)

	// Tabs
	r.POST("/tabs", h.OpenTab)
	r.DELETE("/tabs", h.CloseAllTabs)
	r.POST("/tabs/next", h.NextTab)
	r.POST("/tabs/prev", h.PrevTab)
	r.PATCH("/tabs/:id", h.UpdateTab)
	r.DELETE("/tabs/:id", h.CloseTab)
	r.POST("/tabs/:id/activate", h.ActivateTab)
	r.GET("/tabs/:id/content", h.TabContent)
	r.POST("/tabs/:id/save", h.SaveTab)

	// Annotation editor
	r.GET("/tabs/:id/editor", h.GetEditor)
	r.PATCH("/tabs/:id/tool", h.UpdateTools)
	r.GET("/tabs/:id/annotations", h.ListAnnotations)
	r.POST("/tabs/:id/annotations", h.AddAnnotation)
	r.DELETE("/tabs/:id/annotations/:annotationId", h.DeleteAnnotation)
	r.GET("/tabs/:id/annotations/export", h.ExportAnnotations)
	r.POST("/tabs/:id/annotations/import", h.ImportAnnotations)
	r.GET("/tabs/:id/annotations/pdf", h.ExportPDF)
	r.POST("/tabs/:id/undo", h.Undo)
	r.POST("/tabs/:id/redo", h.Redo)
	r.POST("/tabs/:id/pointer/:phase", h.Pointer)

	// Documents
	r.GET("/documents", h.ListDocuments)
	r.POST("/documents/open", h.OpenDocument)

	// Commands
	r.GET("/commands", h.ListCommands)
	r.POST("/commands/:name", h.ExecuteCommand)

	// Services
	r.GET("/services", h.ListServices)
	r.GET("/services/discover", h.DiscoverServices)
	r.POST("/services/execute", h.ExecuteService)

	// Assistant
	r.POST("/ai/:action", h.AIRequest)
	r.GET("/ai/conversation", h.GetConversation)
	r.DELETE("/ai/conversation", h.ClearConversation)

	// Sessions
	r.POST("/sessions", h.SaveSession)
	r.GET("/sessions", h.ListSessions)
	r.GET("/sessions/:id", h.GetSession)
	r.POST("/sessions/:id/restore", h.RestoreSession)
	r.DELETE("/sessions/:id", h.DeleteSession)

	// UI logs
	r.POST("/logs", h.StreamLogs)
}
