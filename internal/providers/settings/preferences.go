package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/annotation"
	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/editor"
)

var ErrInvalid = errors.New("invalid preferences")

// Preferences are the user's persisted editor defaults
type Preferences struct {
	DefaultColor     string        `json:"defaultColor" yaml:"default_color" toml:"default_color" validate:"required,hexcolor"`
	StrokeWidth      float64       `json:"strokeWidth" yaml:"stroke_width" toml:"stroke_width" validate:"gt=0,lte=50"`
	Opacity          float64       `json:"opacity" yaml:"opacity" toml:"opacity" validate:"gte=0,lte=1"`
	FontSize         float64       `json:"fontSize" yaml:"font_size" toml:"font_size" validate:"gte=8,lte=72"`
	AutoSaveEnabled  bool          `json:"autoSaveEnabled" yaml:"auto_save_enabled" toml:"auto_save_enabled"`
	AutoSaveInterval time.Duration `json:"autoSaveInterval" yaml:"auto_save_interval" toml:"auto_save_interval" validate:"gte=5s"`
	DefaultTool      editor.Tool   `json:"defaultTool" yaml:"default_tool" toml:"default_tool" validate:"oneof=cursor text highlighter shape arrow drawing"`
	Theme            string        `json:"theme" yaml:"theme" toml:"theme" validate:"oneof=light dark"`
}

// Defaults returns the out-of-the-box preferences
func Defaults() Preferences {
	return Preferences{
		DefaultColor:     annotation.DefaultHighlightColor,
		StrokeWidth:      annotation.DefaultStrokeWidth,
		Opacity:          annotation.DefaultOpacity,
		FontSize:         annotation.DefaultFontSize,
		AutoSaveEnabled:  true,
		AutoSaveInterval: 60 * time.Second,
		DefaultTool:      editor.ToolCursor,
		Theme:            "light",
	}
}

// ToolConfig derives the initial tool configuration for new editors
func (p Preferences) ToolConfig() editor.ToolConfig {
	cfg := editor.DefaultToolConfig()
	cfg.Tool = p.DefaultTool
	cfg.Color = p.DefaultColor
	cfg.StrokeWidth = p.StrokeWidth
	cfg.Opacity = p.Opacity
	cfg.FontSize = p.FontSize
	return cfg
}

// Patch is a partial update; nil fields are left unchanged
type Patch struct {
	DefaultColor     *string        `json:"defaultColor,omitempty"`
	StrokeWidth      *float64       `json:"strokeWidth,omitempty"`
	Opacity          *float64       `json:"opacity,omitempty"`
	FontSize         *float64       `json:"fontSize,omitempty"`
	AutoSaveEnabled  *bool          `json:"autoSaveEnabled,omitempty"`
	AutoSaveInterval *time.Duration `json:"autoSaveInterval,omitempty"`
	DefaultTool      *editor.Tool   `json:"defaultTool,omitempty"`
	Theme            *string        `json:"theme,omitempty"`
}

func (p Preferences) apply(patch Patch) Preferences {
	if patch.DefaultColor != nil {
		p.DefaultColor = *patch.DefaultColor
	}
	if patch.StrokeWidth != nil {
		p.StrokeWidth = *patch.StrokeWidth
	}
	if patch.Opacity != nil {
		p.Opacity = *patch.Opacity
	}
	if patch.FontSize != nil {
		p.FontSize = *patch.FontSize
	}
	if patch.AutoSaveEnabled != nil {
		p.AutoSaveEnabled = *patch.AutoSaveEnabled
	}
	if patch.AutoSaveInterval != nil {
		p.AutoSaveInterval = *patch.AutoSaveInterval
	}
	if patch.DefaultTool != nil {
		p.DefaultTool = *patch.DefaultTool
	}
	if patch.Theme != nil {
		p.Theme = *patch.Theme
	}
	return p
}

type format int

const (
	formatYAML format = iota
	formatTOML
)

// Store persists preferences to a YAML file, or TOML when the path ends
// in .toml
type Store struct {
	path     string
	format   format
	validate *validator.Validate
	logger   *zap.Logger

	mu    sync.RWMutex
	prefs Preferences
}

// NewStore creates a store holding the defaults until Load is called
func NewStore(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := formatYAML
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		f = formatTOML
	}
	return &Store{
		path:     path,
		format:   f,
		validate: validator.New(),
		logger:   logger,
		prefs:    Defaults(),
	}
}

// Path returns the backing file
func (s *Store) Path() string {
	return s.path
}

// Get returns the current preferences
func (s *Store) Get() Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

// Load reads the file. A missing file leaves the defaults in place.
func (s *Store) Load() (Preferences, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("No preferences file, using defaults", zap.String("path", s.path))
		return s.Get(), nil
	}
	if err != nil {
		return s.Get(), fmt.Errorf("read preferences: %w", err)
	}

	prefs := Defaults()
	if err := s.unmarshal(data, &prefs); err != nil {
		return s.Get(), fmt.Errorf("parse preferences %s: %w", s.path, err)
	}
	if err := s.check(prefs); err != nil {
		return s.Get(), err
	}

	s.mu.Lock()
	s.prefs = prefs
	s.mu.Unlock()
	return prefs, nil
}

// Save writes the current preferences
func (s *Store) Save() error {
	return s.write(s.Get())
}

// Update validates and persists a partial change
func (s *Store) Update(patch Patch) (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.prefs.apply(patch)
	if err := s.check(next); err != nil {
		return s.prefs, err
	}
	if err := s.write(next); err != nil {
		return s.prefs, err
	}
	s.prefs = next
	return next, nil
}

// Reset restores and persists the defaults
func (s *Store) Reset() (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs := Defaults()
	if err := s.write(prefs); err != nil {
		return s.prefs, err
	}
	s.prefs = prefs
	return prefs, nil
}

func (s *Store) check(p Preferences) error {
	if err := s.validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

func (s *Store) unmarshal(data []byte, p *Preferences) error {
	if s.format == formatTOML {
		return toml.Unmarshal(data, p)
	}
	return yaml.Unmarshal(data, p)
}

func (s *Store) write(p Preferences) error {
	var (
		data []byte
		err  error
	)
	if s.format == formatTOML {
		data, err = toml.Marshal(p)
	} else {
		data, err = yaml.Marshal(p)
	}
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	s.logger.Debug("Preferences saved", zap.String("path", s.path))
	return nil
}
