package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNewDefaults(t *testing.T) {
	assert.NotNil(t, NewDefault().Logger)
	assert.NotNil(t, NewDevelopment().Logger)

	l, err := New(Config{})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zap.InfoLevel))
	assert.False(t, l.Core().Enabled(zap.DebugLevel))
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studio.log")
	l, err := New(Config{Level: "debug", OutputPaths: []string{"stderr"}, File: &FileConfig{Path: path}})
	require.NoError(t, err)

	l.Info("Document opened", zap.String("name", "scan.pdf"))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"Document opened"`)
	assert.Contains(t, string(data), `"name":"scan.pdf"`)
}
