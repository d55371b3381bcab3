package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SaveSessionRequest names a workspace snapshot
type SaveSessionRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// SaveSession captures the workspace under a new id
func (h *Handlers) SaveSession(c *gin.Context) {
	var req SaveSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	snap, err := h.sessions.Save(c.Request.Context(), req.Name, req.Description, h.studio)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.IncSessionsSaved()
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":         snap.ID,
		"name":       snap.Name,
		"created_at": snap.CreatedAt,
		"tab_count":  len(snap.Tabs),
	})
}

// ListSessions lists saved sessions, newest first
func (h *Handlers) ListSessions(c *gin.Context) {
	list, err := h.sessions.List()
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": list, "stats": h.sessions.Stats()})
}

// GetSession returns a saved session in full
func (h *Handlers) GetSession(c *gin.Context) {
	snap, err := h.sessions.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// RestoreSession replaces the workspace with a saved session
func (h *Handlers) RestoreSession(c *gin.Context) {
	previous := h.studio.Workspace().Tabs()
	if err := h.sessions.Restore(c.Request.Context(), c.Param("id"), h.studio); err != nil {
		h.respondError(c, err)
		return
	}
	h.documents.Rewatch(previous)
	if h.metrics != nil {
		h.metrics.IncSessionsRestored()
	}
	c.JSON(http.StatusOK, h.studio.Workspace().State())
}

// DeleteSession removes a saved session
func (h *Handlers) DeleteSession(c *gin.Context) {
	if err := h.sessions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
