package http

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/annotation"
	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/editor"
	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/gesture"
	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/studio"
	"github.com/GriffinCanCode/DocStudio/backend/internal/providers/export"
)

const maxImportBytes = 8 << 20

// AnnotateRequest adds one annotation from explicit geometry
type AnnotateRequest struct {
	Kind   annotation.Kind `json:"kind" binding:"required"`
	Params editor.Params   `json:"params"`
}

// GetEditor returns a tab's annotation session
func (h *Handlers) GetEditor(c *gin.Context) {
	s, err := h.studio.Editor(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

// ListAnnotations returns a tab's annotations, optionally narrowed by
// ?kind= and ?page=
func (h *Handlers) ListAnnotations(c *gin.Context) {
	s, err := h.studio.Editor(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	set := s.Annotations()
	if k := c.Query("kind"); k != "" {
		kind := annotation.Kind(k)
		if !kind.Valid() {
			badRequest(c, fmt.Errorf("%w: unknown kind %q", annotation.ErrInvalid, k))
			return
		}
		set = annotation.FilterByKind(set, kind)
	}
	if p := c.Query("page"); p != "" {
		page, err := strconv.Atoi(p)
		if err != nil {
			badRequest(c, fmt.Errorf("invalid page %q", p))
			return
		}
		set = annotation.FilterByPage(set, page)
	}
	c.JSON(http.StatusOK, gin.H{"annotations": set, "count": len(set)})
}

// AddAnnotation creates an annotation on a tab
func (h *Handlers) AddAnnotation(c *gin.Context) {
	var req AnnotateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	a, err := h.studio.Annotate(c.Param("id"), req.Kind, req.Params)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"annotation": a})
}

// DeleteAnnotation removes one annotation. The removal is undoable.
func (h *Handlers) DeleteAnnotation(c *gin.Context) {
	if err := h.studio.RemoveAnnotation(c.Param("id"), c.Param("annotationId")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Undo steps a tab's history back
func (h *Handlers) Undo(c *gin.Context) {
	h.step(c, h.studio.Undo)
}

// Redo steps a tab's history forward
func (h *Handlers) Redo(c *gin.Context) {
	h.step(c, h.studio.Redo)
}

func (h *Handlers) step(c *gin.Context, fn func(string) (bool, error)) {
	tabID := c.Param("id")
	moved, err := fn(tabID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	s, err := h.studio.Editor(tabID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"moved": moved, "editor": s.Snapshot()})
}

// UpdateTools patches a tab's tool configuration
func (h *Handlers) UpdateTools(c *gin.Context) {
	var patch editor.ToolConfigPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	s, err := h.studio.Editor(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	cfg, err := s.SetToolConfig(patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// Pointer feeds one pointer event to the tab's active gesture
func (h *Handlers) Pointer(c *gin.Context) {
	var ev gesture.Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		badRequest(c, err)
		return
	}
	phase := studio.Phase(c.Param("phase"))
	a, err := h.studio.Pointer(c.Param("id"), phase, ev)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"annotation": a,
		"committed":  phase == studio.PhaseUp && a != nil,
	})
}

// ExportAnnotations returns a tab's annotations in interchange form
func (h *Handlers) ExportAnnotations(c *gin.Context) {
	out, err := h.studio.ExportAnnotations(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(out))
}

// ImportAnnotations replaces a tab's annotations with the request body.
// With ?mode=merge the imported set is added to the existing one.
func (h *Handlers) ImportAnnotations(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes))
	if err != nil {
		badRequest(c, err)
		return
	}
	importFn := h.studio.ImportAnnotations
	switch mode := c.DefaultQuery("mode", "replace"); mode {
	case "replace":
	case "merge":
		importFn = h.studio.MergeAnnotations
	default:
		badRequest(c, fmt.Errorf("unknown import mode %q", mode))
		return
	}
	n, err := importFn(c.Param("id"), string(body))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": n})
}

// ExportPDF renders a tab's annotations onto a PDF page
func (h *Handlers) ExportPDF(c *gin.Context) {
	s, err := h.studio.Editor(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	title := "annotations"
	if doc, ok := s.Document(); ok {
		title = doc.Name
	}

	var buf bytes.Buffer
	if err := export.ExportPDF(&buf, s.Annotations(), export.Options{Title: title}); err != nil {
		h.respondError(c, err)
		return
	}

	name := strings.TrimSuffix(title, filepath.Ext(title)) + "-annotations.pdf"
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
