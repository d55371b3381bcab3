package workspace

import "time"

// Kind is what a tab holds
type Kind string

const (
	KindFile Kind = "file"
	KindWeb  Kind = "web"
	KindCode Kind = "code"
)

// Valid reports whether k names a known tab kind
func (k Kind) Valid() bool {
	return k == KindFile || k == KindWeb || k == KindCode
}

// DefaultTitle is used when a tab is opened without one
const DefaultTitle = "Untitled"

// Content is a tab's payload: loaded file bytes with metadata, or a code
// buffer. Data stays out of JSON views and is served by GET /tabs/:id/content.
type Content struct {
	Name      string `json:"name,omitempty"`
	Extension string `json:"extension,omitempty"`
	MimeType  string `json:"mimeType,omitempty"`
	Size      int64  `json:"size,omitempty"`
	Data      []byte `json:"-"`
	Code      string `json:"code,omitempty"`
	Language  string `json:"language,omitempty"`
}

func (c *Content) clone() *Content {
	if c == nil {
		return nil
	}
	out := *c
	out.Data = append([]byte(nil), c.Data...)
	return &out
}

// Tab is one open unit of work
type Tab struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Kind     Kind      `json:"type"`
	Content  *Content  `json:"content,omitempty"`
	FilePath string    `json:"filePath,omitempty"`
	URL      string    `json:"url,omitempty"`
	Modified bool      `json:"modified"`
	OpenedAt time.Time `json:"openedAt"`
}

func (t *Tab) clone() Tab {
	out := *t
	out.Content = t.Content.clone()
	return out
}

// Descriptor describes a tab to open
type Descriptor struct {
	Title    string   `json:"title"`
	Kind     Kind     `json:"type"`
	Content  *Content `json:"content,omitempty"`
	FilePath string   `json:"filePath,omitempty"`
	URL      string   `json:"url,omitempty"`
}

// Patch is a partial tab update; nil fields are left unchanged
type Patch struct {
	Title    *string  `json:"title,omitempty"`
	Modified *bool    `json:"modified,omitempty"`
	Content  *Content `json:"content,omitempty"`
	FilePath *string  `json:"filePath,omitempty"`
	URL      *string  `json:"url,omitempty"`
}

// Panel names a toggleable layout panel
type Panel string

const (
	PanelCodeEditor Panel = "showCodeEditor"
	PanelCopilot    Panel = "showCopilot"
	PanelSidebar    Panel = "showSidebar"
)

// Panels holds panel visibility
type Panels struct {
	ShowCodeEditor bool `json:"showCodeEditor"`
	ShowCopilot    bool `json:"showCopilot"`
	ShowSidebar    bool `json:"showSidebar"`
}

func (p *Panels) flag(name Panel) *bool {
	switch name {
	case PanelCodeEditor:
		return &p.ShowCodeEditor
	case PanelCopilot:
		return &p.ShowCopilot
	case PanelSidebar:
		return &p.ShowSidebar
	}
	return nil
}

// Layout holds panel widths in pixels
type Layout struct {
	LeftPanelWidth  int `json:"leftPanelWidth"`
	RightPanelWidth int `json:"rightPanelWidth"`
}

// CodeBuffer is the shared code editor pane
type CodeBuffer struct {
	Code     string `json:"editorCode"`
	Language string `json:"editorLanguage"`
}

// AutoSave holds the auto-save policy and last run
type AutoSave struct {
	Enabled  bool          `json:"autoSaveEnabled"`
	Interval time.Duration `json:"autoSaveInterval"`
	Last     *time.Time    `json:"lastAutoSave,omitempty"`
}

// State is a copy of the whole workspace
type State struct {
	Tabs        []Tab      `json:"tabs"`
	ActiveTabID string     `json:"activeTabId,omitempty"`
	Panels      Panels     `json:"panels"`
	Layout      Layout     `json:"layout"`
	Editor      CodeBuffer `json:"editor"`
	ExternalURL string     `json:"externalUrl,omitempty"`
	AutoSave    AutoSave   `json:"autoSave"`
}
