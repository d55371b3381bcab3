package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/workspace"
	"github.com/GriffinCanCode/DocStudio/backend/internal/providers/filesystem"
	"github.com/GriffinCanCode/DocStudio/backend/internal/providers/web"
)

// OpenTabRequest opens a tab of any kind
type OpenTabRequest struct {
	Type     workspace.Kind `json:"type" binding:"required"`
	Title    string         `json:"title"`
	Path     string         `json:"path"`
	URL      string         `json:"url"`
	Code     string         `json:"code"`
	Language string         `json:"language"`
}

// CodeBufferRequest replaces the shared code editor pane
type CodeBufferRequest struct {
	Code     *string `json:"code"`
	Language *string `json:"language"`
}

// LayoutRequest resizes the side panels
type LayoutRequest struct {
	LeftPanelWidth  int `json:"leftPanelWidth" binding:"required"`
	RightPanelWidth int `json:"rightPanelWidth" binding:"required"`
}

// AutoSaveRequest changes the auto-save policy
type AutoSaveRequest struct {
	Enabled         bool `json:"enabled"`
	IntervalSeconds int  `json:"intervalSeconds"`
}

// GetWorkspace returns the whole workspace state
func (h *Handlers) GetWorkspace(c *gin.Context) {
	c.JSON(http.StatusOK, h.studio.Workspace().State())
}

// OpenTab opens a file, web or code tab and makes it active
func (h *Handlers) OpenTab(c *gin.Context) {
	var req OpenTabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	switch req.Type {
	case workspace.KindFile:
		opened, err := h.documents.Open(req.Path)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, opened)

	case workspace.KindWeb:
		if !filesystem.IsValidURL(req.URL) {
			badRequest(c, fmt.Errorf("%w: %q", web.ErrInvalidURL, req.URL))
			return
		}
		title := req.Title
		if title == "" && h.fetcher != nil {
			title = h.fetcher.Title(c.Request.Context(), req.URL)
		}
		tab, err := h.studio.OpenWeb(req.URL, title)
		if err != nil {
			h.respondError(c, err)
			return
		}
		h.studio.Workspace().SetExternalURL(req.URL)
		c.JSON(http.StatusCreated, gin.H{"tab": tab})

	case workspace.KindCode:
		tab, err := h.studio.NewCodeTab(req.Title, req.Code, req.Language)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"tab": tab})

	default:
		badRequest(c, fmt.Errorf("%w: %q", workspace.ErrInvalidKind, req.Type))
	}
}

// CloseTab closes one tab
func (h *Handlers) CloseTab(c *gin.Context) {
	if err := h.documents.Close(c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activeTabId": h.studio.Workspace().ActiveTabID()})
}

// CloseAllTabs closes every tab
func (h *Handlers) CloseAllTabs(c *gin.Context) {
	h.documents.CloseAll()
	c.Status(http.StatusNoContent)
}

// ActivateTab makes a tab active
func (h *Handlers) ActivateTab(c *gin.Context) {
	if err := h.studio.Workspace().SetActive(c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activeTabId": c.Param("id")})
}

// UpdateTab applies a partial update to a tab
func (h *Handlers) UpdateTab(c *gin.Context) {
	var patch workspace.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	tab, err := h.studio.Workspace().UpdateTab(c.Param("id"), patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tab": tab})
}

// TabContent serves the raw bytes of a file tab's document
func (h *Handlers) TabContent(c *gin.Context) {
	id := c.Param("id")
	tab, ok := h.studio.Workspace().Tab(id)
	if !ok {
		h.respondError(c, fmt.Errorf("%w: %s", workspace.ErrTabNotFound, id))
		return
	}
	if tab.Content == nil || len(tab.Content.Data) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "tab has no document content"})
		return
	}
	mime := tab.Content.MimeType
	if mime == "" {
		mime = "application/octet-stream"
	}
	c.Data(http.StatusOK, mime, tab.Content.Data)
}

// NextTab activates the tab after the active one, wrapping around
func (h *Handlers) NextTab(c *gin.Context) {
	ws := h.studio.Workspace()
	ws.NextTab()
	c.JSON(http.StatusOK, gin.H{"activeTabId": ws.ActiveTabID()})
}

// PrevTab activates the tab before the active one, wrapping around
func (h *Handlers) PrevTab(c *gin.Context) {
	ws := h.studio.Workspace()
	ws.PrevTab()
	c.JSON(http.StatusOK, gin.H{"activeTabId": ws.ActiveTabID()})
}

// TogglePanel flips a panel's visibility
func (h *Handlers) TogglePanel(c *gin.Context) {
	panel := workspace.Panel(c.Param("name"))
	visible, err := h.studio.Workspace().TogglePanel(panel)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"panel": panel, "visible": visible})
}

// SetCodeBuffer replaces the code editor pane contents
func (h *Handlers) SetCodeBuffer(c *gin.Context) {
	var req CodeBufferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ws := h.studio.Workspace()
	if req.Code != nil {
		ws.SetEditorCode(*req.Code)
	}
	if req.Language != nil {
		ws.SetEditorLanguage(*req.Language)
	}
	c.JSON(http.StatusOK, ws.State().Editor)
}

// SetLayout resizes the side panels
func (h *Handlers) SetLayout(c *gin.Context) {
	var req LayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ws := h.studio.Workspace()
	if err := ws.SetPanelWidths(req.LeftPanelWidth, req.RightPanelWidth); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ws.State().Layout)
}

// SetAutoSave changes the auto-save policy
func (h *Handlers) SetAutoSave(c *gin.Context) {
	var req AutoSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ws := h.studio.Workspace()
	interval := time.Duration(req.IntervalSeconds) * time.Second
	if err := ws.SetAutoSave(req.Enabled, interval); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ws.AutoSavePolicy())
}
