package settings

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/editor"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "settings.yaml"), nil)
	prefs, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), prefs)
}

func TestRoundTrip(t *testing.T) {
	for _, name := range []string{"settings.yaml", "settings.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			s := NewStore(path, nil)

			color := "#FF0000"
			interval := 30 * time.Second
			tool := editor.ToolHighlighter
			updated, err := s.Update(Patch{DefaultColor: &color, AutoSaveInterval: &interval, DefaultTool: &tool})
			require.NoError(t, err)
			assert.Equal(t, color, updated.DefaultColor)

			reloaded := NewStore(path, nil)
			prefs, err := reloaded.Load()
			require.NoError(t, err)
			assert.Equal(t, updated, prefs)
		})
	}
}

func TestUpdateRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	s := NewStore(path, nil)

	tests := []struct {
		name  string
		patch Patch
	}{
		{"color", Patch{DefaultColor: ptr("yellow")}},
		{"opacity", Patch{Opacity: ptr(1.5)}},
		{"stroke", Patch{StrokeWidth: ptr(0.0)}},
		{"tool", Patch{DefaultTool: ptr(editor.Tool("laser"))}},
		{"theme", Patch{Theme: ptr("neon")}},
		{"interval", Patch{AutoSaveInterval: ptr(time.Second)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Update(tt.patch)
			assert.ErrorIs(t, err, ErrInvalid)
			assert.Equal(t, Defaults(), s.Get())
		})
	}

	_, err := os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist, "invalid updates are not persisted")
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("opacity: 7\n"), 0o644))

	_, err := NewStore(path, nil).Load()
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestReset(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "settings.yaml"), nil)
	_, err := s.Update(Patch{Theme: ptr("dark")})
	require.NoError(t, err)

	prefs, err := s.Reset()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), prefs)
}

func TestToolConfig(t *testing.T) {
	p := Defaults()
	p.DefaultTool = editor.ToolShape
	p.StrokeWidth = 4

	cfg := p.ToolConfig()
	assert.Equal(t, editor.ToolShape, cfg.Tool)
	assert.Equal(t, 4.0, cfg.StrokeWidth)
	assert.Equal(t, p.DefaultColor, cfg.Color)
	assert.Equal(t, editor.DefaultToolConfig().Shape, cfg.Shape)
}

func TestProviderExecute(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "settings.yaml"), nil)
	var notified []Preferences
	p := NewProvider(s, func(prefs Preferences) { notified = append(notified, prefs) })
	ctx := context.Background()

	res, err := p.Execute(ctx, "settings.get", nil, nil)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, "#FFFF00", res.Data["defaultColor"])

	res, err = p.Execute(ctx, "settings.update", map[string]interface{}{
		"preferences": map[string]interface{}{"fontSize": float64(20), "theme": "dark"},
	}, nil)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.EqualValues(t, 20, res.Data["fontSize"])
	assert.Equal(t, "dark", s.Get().Theme)

	res, err = p.Execute(ctx, "settings.update", map[string]interface{}{
		"preferences": map[string]interface{}{"fontSize": float64(500)},
	}, nil)
	require.NoError(t, err)
	assert.False(t, res.Success)

	res, err = p.Execute(ctx, "settings.reset", nil, nil)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, "light", res.Data["theme"])

	require.Len(t, notified, 2)
	assert.Equal(t, "dark", notified[0].Theme)
}

func ptr[T any](v T) *T {
	return &v
}
