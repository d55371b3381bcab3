package http

import (
	"errors"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/annotation"
	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/app"
	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/assistant"
	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/editor"
	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/gesture"
	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/session"
	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/studio"
	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/workspace"
	"github.com/GriffinCanCode/DocStudio/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/DocStudio/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/DocStudio/backend/internal/providers/ai"
	"github.com/GriffinCanCode/DocStudio/backend/internal/providers/export"
	"github.com/GriffinCanCode/DocStudio/backend/internal/providers/filesystem"
	"github.com/GriffinCanCode/DocStudio/backend/internal/providers/settings"
	"github.com/GriffinCanCode/DocStudio/backend/internal/providers/web"
	"github.com/GriffinCanCode/DocStudio/backend/internal/service"
)

// Version is reported by the root and info endpoints
const Version = "1.0.0"

// Deps are the collaborators the handlers call into. Fetcher, Metrics and
// Sequencer are optional.
type Deps struct {
	Studio       *studio.Controller
	Documents    *app.Manager
	Files        *filesystem.Store
	Registry     *service.Registry
	Sessions     *session.Manager
	Assistant    *ai.Assistant
	Conversation *assistant.Conversation
	Sequencer    *assistant.Sequencer
	Fetcher      *web.Fetcher
	Metrics      *monitoring.Metrics
	Config       *config.Config
	Logger       *zap.Logger
}

// Handlers contains all HTTP handlers
type Handlers struct {
	studio       *studio.Controller
	documents    *app.Manager
	files        *filesystem.Store
	registry     *service.Registry
	sessions     *session.Manager
	assistant    *ai.Assistant
	conversation *assistant.Conversation
	sequencer    *assistant.Sequencer
	fetcher      *web.Fetcher
	metrics      *monitoring.Metrics
	config       *config.Config
	logger       *zap.Logger
	uiLogger     *zap.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(d Deps) *Handlers {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Config == nil {
		d.Config = config.Default()
	}
	if d.Conversation == nil {
		d.Conversation = assistant.NewConversation()
	}
	return &Handlers{
		studio:       d.Studio,
		documents:    d.Documents,
		files:        d.Files,
		registry:     d.Registry,
		sessions:     d.Sessions,
		assistant:    d.Assistant,
		conversation: d.Conversation,
		sequencer:    d.Sequencer,
		fetcher:      d.Fetcher,
		metrics:      d.Metrics,
		config:       d.Config,
		logger:       d.Logger,
		uiLogger:     d.Logger.Named("ui"),
	}
}

// Root reports that the host is up
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "DocStudio host",
		"version": Version,
	})
}

// Health reports component status
func (h *Handlers) Health(c *gin.Context) {
	provider, model := h.assistant.Provider()
	c.JSON(http.StatusOK, gin.H{
		"status":           "healthy",
		"workspace":        h.studio.Workspace().Stats(),
		"service_registry": h.registry.Stats(),
		"sessions":         h.sessions.Stats(),
		"ai": gin.H{
			"provider": provider,
			"model":    model,
			"real":     h.assistant.UsesRealAI(),
		},
	})
}

// Info reports version, commands and live counters
func (h *Handlers) Info(c *gin.Context) {
	info := gin.H{
		"version":  Version,
		"commands": h.studio.Commands(),
		"formats":  filesystem.SupportedExtensions(),
	}
	if h.metrics != nil {
		info["metrics"] = h.metrics.Snapshot()
	}
	if h.fetcher != nil {
		info["webCache"] = h.fetcher.CacheSize()
	}
	if h.sequencer != nil {
		info["staleResultsDropped"] = h.sequencer.Dropped()
	}
	c.JSON(http.StatusOK, info)
}

// Config returns the configuration safe to show the UI
func (h *Handlers) Config(c *gin.Context) {
	provider, model := h.assistant.Provider()
	c.JSON(http.StatusOK, config.Public{
		AIProvider:    provider,
		AIModel:       model,
		AITemperature: h.config.AI.Temperature,
		UseRealAI:     h.assistant.UsesRealAI(),
	})
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, workspace.ErrTabNotFound),
		errors.Is(err, editor.ErrAnnotationNotFound),
		errors.Is(err, session.ErrNotFound),
		errors.Is(err, service.ErrServiceNotFound),
		errors.Is(err, studio.ErrUnknownCommand),
		errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound

	case errors.Is(err, gesture.ErrGestureInProgress):
		return http.StatusConflict

	case errors.Is(err, workspace.ErrInvalidKind),
		errors.Is(err, workspace.ErrUnknownPanel),
		errors.Is(err, workspace.ErrInvalidValue),
		errors.Is(err, editor.ErrInvalidGeometry),
		errors.Is(err, editor.ErrUnknownTool),
		errors.Is(err, editor.ErrInvalidToolConfig),
		errors.Is(err, editor.ErrDuplicateID),
		errors.Is(err, annotation.ErrInvalid),
		errors.Is(err, studio.ErrNoEditor),
		errors.Is(err, studio.ErrUnknownPhase),
		errors.Is(err, studio.ErrMissingParam),
		errors.Is(err, session.ErrInvalidID),
		errors.Is(err, service.ErrInvalidToolID),
		errors.Is(err, settings.ErrInvalid),
		errors.Is(err, assistant.ErrUnknownAction),
		errors.Is(err, filesystem.ErrUnsupported),
		errors.Is(err, filesystem.ErrNoPath),
		errors.Is(err, filesystem.ErrIsDirectory),
		errors.Is(err, web.ErrInvalidURL),
		errors.Is(err, export.ErrNothingToExport):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError writes {"error": msg} with the mapped status
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
