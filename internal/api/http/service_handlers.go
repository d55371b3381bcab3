package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/DocStudio/backend/internal/api/middleware"
	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/assistant"
	"github.com/GriffinCanCode/DocStudio/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/DocStudio/backend/internal/providers/ai"
	"github.com/GriffinCanCode/DocStudio/backend/internal/types"
)

const defaultDiscoverLimit = 5

// DiscoverRequest ranks services against free text
type DiscoverRequest struct {
	Query string `form:"q" binding:"required"`
	Limit int    `form:"limit"`
}

// ExecuteRequest calls one registry tool
type ExecuteRequest struct {
	ToolID string                 `json:"tool_id" binding:"required"`
	Params map[string]interface{} `json:"params"`
	TabID  *string                `json:"tab_id"`
}

// ListServices lists registry services, optionally by category
func (h *Handlers) ListServices(c *gin.Context) {
	var category *types.Category
	if cat := c.Query("category"); cat != "" {
		cc := types.Category(cat)
		category = &cc
	}
	services := h.registry.List(category)
	c.JSON(http.StatusOK, gin.H{"services": services, "stats": h.registry.Stats()})
}

// DiscoverServices finds services matching an intent
func (h *Handlers) DiscoverServices(c *gin.Context) {
	var req DiscoverRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Limit <= 0 {
		req.Limit = defaultDiscoverLimit
	}
	c.JSON(http.StatusOK, gin.H{"services": h.registry.Discover(req.Query, req.Limit)})
}

// ExecuteService runs a registry tool. Tool failures are reported in the
// result body with a 200; routing failures map to an error status.
func (h *Handlers) ExecuteService(c *gin.Context) {
	var req ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	call := &types.Context{TabID: req.TabID, RequestID: middleware.GetRequestID(c)}
	timer := monitoring.NewTimer(h.metrics, serviceOf(req.ToolID), req.ToolID)
	result, err := h.registry.Execute(c.Request.Context(), req.ToolID, req.Params, call)
	if err != nil {
		timer.Stop("error")
		h.respondError(c, err)
		return
	}
	if result.Success {
		timer.Stop("success")
	} else {
		timer.Stop("failure")
	}
	c.JSON(http.StatusOK, result)
}

// ListCommands lists the named commands
func (h *Handlers) ListCommands(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"commands": h.studio.Commands()})
}

// ExecuteCommand runs a named command against the active tab
func (h *Handlers) ExecuteCommand(c *gin.Context) {
	params := map[string]interface{}{}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&params); err != nil {
			badRequest(c, err)
			return
		}
	}
	name := c.Param("name")
	result, err := h.studio.Execute(c.Request.Context(), name, params)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"command": name, "result": result})
}

// AIRequest runs one assistant action over HTTP. Chat messages join the
// shared conversation.
func (h *Handlers) AIRequest(c *gin.Context) {
	action, err := assistant.ParseAction(c.Param("action"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	var payload assistant.Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, err)
		return
	}

	if action == assistant.ActionChat {
		if payload.Message == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "message required"})
			return
		}
		if len(payload.History) == 0 {
			payload.History = h.conversation.History(ai.ChatHistoryLimit)
		}
		h.conversation.Append(assistant.RoleUser, payload.Message)
	}

	result, err := h.assistant.Request(c.Request.Context(), action, payload)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if action == assistant.ActionChat {
		h.conversation.Append(assistant.RoleAssistant, result.Response)
	}
	c.JSON(http.StatusOK, result)
}

// GetConversation returns the chat transcript
func (h *Handlers) GetConversation(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"messages": h.conversation.Entries()})
}

// ClearConversation empties the chat transcript
func (h *Handlers) ClearConversation(c *gin.Context) {
	h.conversation.Clear()
	c.Status(http.StatusNoContent)
}

func serviceOf(toolID string) string {
	service, _, _ := strings.Cut(toolID, ".")
	return service
}
