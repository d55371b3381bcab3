package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OpenDocumentRequest opens a document from disk
type OpenDocumentRequest struct {
	Path string `json:"path" binding:"required"`
}

// SaveRequest saves a tab. Data, when present, replaces the document bytes.
type SaveRequest struct {
	Path string `json:"path"`
	Data []byte `json:"data"`
}

// ListDocuments lists supported documents under the documents root
func (h *Handlers) ListDocuments(c *gin.Context) {
	entries, err := h.files.ListDocuments(c.Query("dir"), c.Query("pattern"))
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": entries, "root": h.files.Root()})
}

// OpenDocument opens a document tab and restores its saved annotations
func (h *Handlers) OpenDocument(c *gin.Context) {
	var req OpenDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	opened, err := h.documents.Open(req.Path)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, opened)
}

// SaveTab persists a tab to its path, or to the path given
func (h *Handlers) SaveTab(c *gin.Context) {
	var req SaveRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	res, err := h.documents.Save(c.Param("id"), req.Path, req.Data)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
