package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxLogBatch = 500

// UILogEntry is one log line forwarded by the UI
type UILogEntry struct {
	ID        string                 `json:"id"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context"`
	Timestamp string                 `json:"timestamp"`
}

// UILogBatch is a batch of UI log lines
type UILogBatch struct {
	Source  string       `json:"source"`
	Entries []UILogEntry `json:"entries"`
}

// StreamLogs writes UI log lines into the host log
func (h *Handlers) StreamLogs(c *gin.Context) {
	var req UILogBatch
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid log request format"})
		return
	}
	if req.Source != "ui" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid log source"})
		return
	}
	if len(req.Entries) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No log entries provided"})
		return
	}
	if len(req.Entries) > maxLogBatch {
		req.Entries = req.Entries[:maxLogBatch]
	}

	for _, entry := range req.Entries {
		h.logUIEntry(entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"entries_processed": len(req.Entries),
		"timestamp":         time.Now().Unix(),
	})
}

func (h *Handlers) logUIEntry(entry UILogEntry) {
	fields := make([]zap.Field, 0, len(entry.Context)+2)
	fields = append(fields,
		zap.String("ui_log_id", entry.ID),
		zap.String("ui_timestamp", entry.Timestamp),
	)
	for key, value := range entry.Context {
		switch v := value.(type) {
		case string:
			fields = append(fields, zap.String(key, v))
		case float64:
			fields = append(fields, zap.Float64(key, v))
		case bool:
			fields = append(fields, zap.Bool(key, v))
		default:
			fields = append(fields, zap.Any(key, v))
		}
	}

	switch entry.Level {
	case "error":
		h.uiLogger.Error(entry.Message, fields...)
	case "warn":
		h.uiLogger.Warn(entry.Message, fields...)
	case "debug", "verbose":
		h.uiLogger.Debug(entry.Message, fields...)
	default:
		h.uiLogger.Info(entry.Message, fields...)
	}
}
