package studio

import (
	"go.uber.org/zap"

	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/editor"
	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/workspace"
)

// TabState is one tab captured for a workspace snapshot
type TabState struct {
	Tab         workspace.Tab      `json:"tab"`
	Document    *editor.Document   `json:"document,omitempty"`
	Tools       *editor.ToolConfig `json:"tools,omitempty"`
	Annotations string             `json:"annotations,omitempty"`
	Data        []byte             `json:"data,omitempty"`
	Active      bool               `json:"active"`
}

// Capture returns every open tab with its annotations in interchange form
func (c *Controller) Capture() ([]TabState, error) {
	activeID := c.workspace.ActiveTabID()
	tabs := c.workspace.Tabs()

	out := make([]TabState, 0, len(tabs))
	for _, t := range tabs {
		st := TabState{Tab: t, Active: t.ID == activeID}
		if t.Content != nil {
			st.Data = t.Content.Data
		}

		c.mu.RLock()
		s, ok := c.editors[t.ID]
		c.mu.RUnlock()

		if ok {
			serialized, err := c.codec.ExportAll(s.Annotations())
			if err != nil {
				return nil, err
			}
			st.Annotations = serialized
			tools := s.ToolConfig()
			st.Tools = &tools
			if doc, loaded := s.Document(); loaded {
				st.Document = &doc
			}
		}
		out = append(out, st)
	}
	return out, nil
}

// Restore closes every tab and reopens the captured ones. Restored
// annotations form the first history entry of each editor.
func (c *Controller) Restore(states []TabState) error {
	c.CloseAll()

	var activeID string
	for _, st := range states {
		var (
			tab workspace.Tab
			err error
		)
		if st.Document != nil {
			doc := *st.Document
			if st.Tab.FilePath != "" {
				doc.Path = st.Tab.FilePath
			}
			tab, err = c.OpenDocument(File{Document: doc, Data: st.Data})
		} else {
			tab, err = c.workspace.OpenTab(workspace.Descriptor{
				Title:    st.Tab.Title,
				Kind:     st.Tab.Kind,
				Content:  st.Tab.Content,
				FilePath: st.Tab.FilePath,
				URL:      st.Tab.URL,
			})
		}
		if err != nil {
			return err
		}

		if st.Document != nil {
			s, err := c.Editor(tab.ID)
			if err != nil {
				return err
			}
			if st.Tools != nil {
				c.applyTools(s, *st.Tools)
			}
			if st.Annotations != "" {
				if set := c.codec.ImportAll(st.Annotations); len(set) > 0 {
					if err := s.ReplaceAnnotations(set); err != nil {
						return err
					}
				}
			}
		}

		modified := st.Tab.Modified
		if _, err := c.workspace.UpdateTab(tab.ID, workspace.Patch{Modified: &modified}); err != nil {
			return err
		}
		if !modified {
			c.mu.RLock()
			s, ok := c.editors[tab.ID]
			c.mu.RUnlock()
			if ok {
				s.MarkSaved()
			}
		}
		if st.Active {
			activeID = tab.ID
		}
	}

	if activeID != "" {
		return c.workspace.SetActive(activeID)
	}
	return nil
}

func (c *Controller) applyTools(s *editor.Session, cfg editor.ToolConfig) {
	if _, err := s.SetToolConfig(editor.ToolConfigPatch{
		Tool:        &cfg.Tool,
		Color:       &cfg.Color,
		Shape:       &cfg.Shape,
		Arrow:       &cfg.Arrow,
		FontSize:    &cfg.FontSize,
		StrokeWidth: &cfg.StrokeWidth,
		Opacity:     &cfg.Opacity,
	}); err != nil {
		c.logger.Warn("Ignoring stored tool config", zap.Error(err))
	}
}
