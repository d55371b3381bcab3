package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/app"
	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/assistant"
	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/editor"
	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/gesture"
	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/session"
	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/studio"
	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/workspace"
	"github.com/GriffinCanCode/DocStudio/backend/internal/providers/ai"
	"github.com/GriffinCanCode/DocStudio/backend/internal/providers/filesystem"
	"github.com/GriffinCanCode/DocStudio/backend/internal/service"
)

type testServer struct {
	dir    string
	router *gin.Engine
	studio *studio.Controller
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scan.pdf"), []byte("%PDF-1.4 test"), 0o644))

	st := studio.NewController(workspace.NewSession(), editor.DefaultToolConfig(), nil)
	files := filesystem.NewStore(dir, nil)
	sessions, err := session.NewManager(filepath.Join(dir, ".sessions"), nil)
	require.NoError(t, err)
	t.Cleanup(sessions.Close)

	asst := ai.NewAssistant(nil, nil)
	registry := service.NewRegistry()
	require.NoError(t, registry.Register(filesystem.NewService(files)))
	require.NoError(t, registry.Register(ai.NewService(asst)))

	h := NewHandlers(Deps{
		Studio:    st,
		Documents: app.NewManager(st, files, nil),
		Files:     files,
		Registry:  registry,
		Sessions:  sessions,
		Assistant: asst,
		Sequencer: assistant.NewSequencer(),
	})
	router := gin.New()
	h.Register(router)
	return &testServer{dir: dir, router: router, studio: st}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	if buf.Len() > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (s *testServer) openDocument(t *testing.T) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/documents/open", gin.H{"path": "scan.pdf"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tab := decode(t, w)["tab"].(map[string]interface{})
	return tab["id"].(string)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing tab", fmt.Errorf("close: %w", workspace.ErrTabNotFound), http.StatusNotFound},
		{"missing file", fs.ErrNotExist, http.StatusNotFound},
		{"missing session", session.ErrNotFound, http.StatusNotFound},
		{"gesture running", gesture.ErrGestureInProgress, http.StatusConflict},
		{"bad geometry", editor.ErrInvalidGeometry, http.StatusBadRequest},
		{"bad phase", studio.ErrUnknownPhase, http.StatusBadRequest},
		{"unsupported file", filesystem.ErrUnsupported, http.StatusBadRequest},
		{"anything else", fmt.Errorf("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestRootAndHealth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "online", decode(t, w)["status"])

	w = s.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, false, body["ai"].(map[string]interface{})["real"])

	w = s.do(t, http.MethodGet, "/info", nil)
	require.Equal(t, http.StatusOK, w.Code)
	info := decode(t, w)
	assert.Contains(t, info["formats"], "pdf")
	assert.Equal(t, float64(0), info["staleResultsDropped"])
}

func TestTabLifecycle(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/tabs", gin.H{"type": "code", "title": "scratch.js", "code": "let a = 1", "language": "javascript"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	codeID := decode(t, w)["tab"].(map[string]interface{})["id"].(string)

	docID := s.openDocument(t)
	assert.Equal(t, docID, s.studio.Workspace().ActiveTabID())

	w = s.do(t, http.MethodPost, "/tabs/next", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, codeID, decode(t, w)["activeTabId"])

	w = s.do(t, http.MethodPatch, "/tabs/"+codeID, gin.H{"title": "renamed.js"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "renamed.js", decode(t, w)["tab"].(map[string]interface{})["title"])

	w = s.do(t, http.MethodPost, "/tabs/"+docID+"/activate", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodDelete, "/tabs/"+docID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, codeID, decode(t, w)["activeTabId"])

	w = s.do(t, http.MethodDelete, "/tabs/"+docID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, decode(t, w)["error"], "tab not found")

	w = s.do(t, http.MethodDelete, "/tabs", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, s.studio.Workspace().Tabs())
}

func TestOpenTabValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body gin.H
		want int
	}{
		{"missing type", gin.H{"title": "x"}, http.StatusBadRequest},
		{"unknown type", gin.H{"type": "video"}, http.StatusBadRequest},
		{"bad url", gin.H{"type": "web", "url": "not a url"}, http.StatusBadRequest},
		{"unsupported file", gin.H{"type": "file", "path": "notes.exe"}, http.StatusBadRequest},
		{"missing file", gin.H{"type": "file", "path": "gone.pdf"}, http.StatusNotFound},
		{"web with title", gin.H{"type": "web", "url": "https://example.com", "title": "Example"}, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/tabs", tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
	assert.Equal(t, "https://example.com", s.studio.Workspace().State().ExternalURL)
}

func TestPanelsAndLayout(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/panels/showCopilot/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	before := s.studio.Workspace().State().Panels.ShowCopilot
	assert.Equal(t, before, decode(t, w)["visible"])

	w = s.do(t, http.MethodPost, "/panels/showNothing/toggle", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPut, "/workspace/code", gin.H{"code": "print(1)", "language": "python"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "python", s.studio.Workspace().State().Editor.Language)

	w = s.do(t, http.MethodPut, "/workspace/autosave", gin.H{"enabled": true, "intervalSeconds": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPut, "/workspace/autosave", gin.H{"enabled": true, "intervalSeconds": 30})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, s.studio.Workspace().AutoSavePolicy().Enabled)
}

func TestAnnotationsUndoRedo(t *testing.T) {
	s := newTestServer(t)
	tabID := s.openDocument(t)

	w := s.do(t, http.MethodPost, "/tabs/"+tabID+"/annotations", gin.H{
		"kind":   "highlight",
		"params": gin.H{"x": 10, "y": 20, "width": 100, "height": 15},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	ann := decode(t, w)["annotation"].(map[string]interface{})
	annID := ann["id"].(string)
	assert.Equal(t, "highlight", ann["type"])

	w = s.do(t, http.MethodPost, "/tabs/"+tabID+"/annotations", gin.H{"kind": "highlight", "params": gin.H{"x": 1, "y": 1}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodDelete, "/tabs/"+tabID+"/annotations/"+annID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodPost, "/tabs/"+tabID+"/undo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["moved"])
	assert.Len(t, body["editor"].(map[string]interface{})["annotations"], 1)

	w = s.do(t, http.MethodPost, "/tabs/"+tabID+"/redo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["editor"].(map[string]interface{})["annotations"])

	w = s.do(t, http.MethodPost, "/tabs/"+tabID+"/redo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["moved"])
}

func TestPointerGesture(t *testing.T) {
	s := newTestServer(t)
	tabID := s.openDocument(t)

	w := s.do(t, http.MethodPatch, "/tabs/"+tabID+"/tool", gin.H{"tool": "highlighter"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	base := "/tabs/" + tabID + "/pointer/"
	w = s.do(t, http.MethodPost, base+"down", gin.H{"x": 10, "y": 10})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, false, decode(t, w)["committed"])

	w = s.do(t, http.MethodPost, base+"down", gin.H{"x": 12, "y": 12})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, base+"move", gin.H{"x": 60, "y": 30})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, base+"up", gin.H{"x": 110, "y": 40})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["committed"])

	w = s.do(t, http.MethodPost, base+"hover", gin.H{"x": 1, "y": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/tabs/"+tabID+"/editor", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode(t, w)
	assert.Len(t, view["annotations"], 1)
	assert.Equal(t, true, view["modified"])
}

func TestExportImportAndSave(t *testing.T) {
	s := newTestServer(t)
	tabID := s.openDocument(t)

	w := s.do(t, http.MethodPost, "/tabs/"+tabID+"/annotations", gin.H{
		"kind":   "text",
		"params": gin.H{"x": 5, "y": 5, "text": "note"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/tabs/"+tabID+"/annotations/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	exported := w.Body.String()
	assert.Contains(t, exported, "note")

	w = s.do(t, http.MethodGet, "/tabs/"+tabID+"/annotations/pdf", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "scan-annotations.pdf")

	w = s.do(t, http.MethodPost, "/tabs/"+tabID+"/save", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sidecar := filesystem.AnnotationsPath(filepath.Join(s.dir, "scan.pdf"))
	assert.FileExists(t, sidecar)

	w = s.do(t, http.MethodPost, "/tabs/"+tabID+"/annotations/import", "not json")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decode(t, w)["imported"])

	w = s.do(t, http.MethodPost, "/tabs/"+tabID+"/annotations/import", exported)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(1), decode(t, w)["imported"])

	w = s.do(t, http.MethodGet, "/documents", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["documents"], 1)
}

func TestListAnnotationsFilters(t *testing.T) {
	s := newTestServer(t)
	tabID := s.openDocument(t)

	for _, body := range []gin.H{
		{"kind": "text", "params": gin.H{"x": 5, "y": 5, "text": "first", "page": 1}},
		{"kind": "text", "params": gin.H{"x": 9, "y": 9, "text": "second", "page": 2}},
		{"kind": "highlight", "params": gin.H{"x": 1, "y": 1, "width": 20, "height": 10, "page": 2}},
	} {
		w := s.do(t, http.MethodPost, "/tabs/"+tabID+"/annotations", body)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	tests := []struct {
		name  string
		query string
		code  int
		count float64
	}{
		{"all", "", http.StatusOK, 3},
		{"by kind", "?kind=text", http.StatusOK, 2},
		{"by page", "?page=2", http.StatusOK, 2},
		{"kind and page", "?kind=text&page=2", http.StatusOK, 1},
		{"no match", "?page=7", http.StatusOK, 0},
		{"unknown kind", "?kind=sticker", http.StatusBadRequest, 0},
		{"bad page", "?page=two", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodGet, "/tabs/"+tabID+"/annotations"+tt.query, nil)
			require.Equal(t, tt.code, w.Code, w.Body.String())
			if tt.code == http.StatusOK {
				assert.Equal(t, tt.count, decode(t, w)["count"])
			}
		})
	}
}

func TestTabContent(t *testing.T) {
	s := newTestServer(t)
	tabID := s.openDocument(t)

	w := s.do(t, http.MethodGet, "/tabs/"+tabID+"/content", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF-1.4 test", w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))

	w = s.do(t, http.MethodGet, "/workspace", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"data"`)

	w = s.do(t, http.MethodPost, "/tabs", gin.H{"type": "code", "title": "scratch.js", "code": "let a = 1", "language": "javascript"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	codeID := decode(t, w)["tab"].(map[string]interface{})["id"].(string)

	w = s.do(t, http.MethodGet, "/tabs/"+codeID+"/content", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/tabs/missing/content", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestImportMerge(t *testing.T) {
	s := newTestServer(t)
	tabID := s.openDocument(t)

	w := s.do(t, http.MethodPost, "/tabs/"+tabID+"/annotations", gin.H{
		"kind":   "text",
		"params": gin.H{"x": 5, "y": 5, "text": "kept"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = s.do(t, http.MethodGet, "/tabs/"+tabID+"/annotations/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	exported := w.Body.String()

	w = s.do(t, http.MethodPost, "/tabs/"+tabID+"/annotations/import?mode=merge", exported)
	assert.Equal(t, http.StatusBadRequest, w.Code, "merging the same IDs twice is rejected")

	w = s.do(t, http.MethodPost, "/tabs/"+tabID+"/annotations/import?mode=append", exported)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	require.NoError(t, os.WriteFile(filepath.Join(s.dir, "other.pdf"), []byte("%PDF-1.4 other"), 0o644))
	w = s.do(t, http.MethodPost, "/documents/open", gin.H{"path": "other.pdf"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	otherID := decode(t, w)["tab"].(map[string]interface{})["id"].(string)

	w = s.do(t, http.MethodPost, "/tabs/"+otherID+"/annotations", gin.H{
		"kind":   "text",
		"params": gin.H{"x": 1, "y": 1, "text": "local"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/tabs/"+otherID+"/annotations/import?mode=merge", exported)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(1), decode(t, w)["imported"])

	w = s.do(t, http.MethodGet, "/tabs/"+otherID+"/annotations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decode(t, w)["count"])
}

func TestCommands(t *testing.T) {
	s := newTestServer(t)
	s.openDocument(t)

	w := s.do(t, http.MethodGet, "/commands", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode(t, w)["commands"], "tool.arrow")

	w = s.do(t, http.MethodPost, "/commands/font.increase", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "font.increase", decode(t, w)["command"])

	w = s.do(t, http.MethodPost, "/commands/launch.rockets", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServices(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/services?category=ai", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["services"], 1)

	w = s.do(t, http.MethodGet, "/services/discover?q=explain+my+code&limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["services"], 1)

	w = s.do(t, http.MethodGet, "/services/discover", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/services/execute", gin.H{
		"tool_id": "ai.explain",
		"params":  gin.H{"code": "function add(a, b) { return a + b }", "language": "javascript"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decode(t, w)["success"])

	w = s.do(t, http.MethodPost, "/services/execute", gin.H{"tool_id": "nope.run"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/services/execute", gin.H{"tool_id": "nodot"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAIChatConversation(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/ai/chat", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/ai/chat", gin.H{"message": "hello"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "simulation", decode(t, w)["source"])

	w = s.do(t, http.MethodGet, "/ai/conversation", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["messages"], 2)

	w = s.do(t, http.MethodDelete, "/ai/conversation", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodPost, "/ai/summon", gin.H{"code": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessions(t *testing.T) {
	s := newTestServer(t)
	s.openDocument(t)

	w := s.do(t, http.MethodPost, "/sessions", gin.H{"name": "review"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode(t, w)["id"].(string)

	w = s.do(t, http.MethodGet, "/sessions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["sessions"], 1)

	s.studio.CloseAll()
	w = s.do(t, http.MethodPost, "/sessions/"+id+"/restore", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decode(t, w)["tabs"], 1)

	w = s.do(t, http.MethodGet, "/sessions/not-an-id", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodDelete, "/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, "/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStreamLogs(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/logs", gin.H{"source": "kernel", "entries": []gin.H{{"message": "x"}}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/logs", gin.H{"source": "ui"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/logs", gin.H{
		"source":  "ui",
		"entries": []gin.H{{"level": "warn", "message": "slow render", "context": gin.H{"ms": 120}}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["entries_processed"])
}
