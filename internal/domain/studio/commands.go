package studio

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/editor"
	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/workspace"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrMissingParam   = errors.New("missing command parameter")
)

// Command is one named application action
type Command func(ctx context.Context, params map[string]interface{}) (map[string]interface{}, error)

// Execute runs the command registered under name
func (c *Controller) Execute(ctx context.Context, name string, params map[string]interface{}) (map[string]interface{}, error) {
	cmd, ok := c.commands[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	if params == nil {
		params = map[string]interface{}{}
	}

	data, err := cmd(ctx, params)
	if c.observer != nil {
		c.observer.IncCommands(name, err == nil)
	}
	if err != nil {
		c.logger.Debug("Command failed", zap.String("command", name), zap.Error(err))
		return nil, err
	}
	return data, nil
}

// Commands lists registered command names in order
func (c *Controller) Commands() []string {
	names := make([]string, 0, len(c.commands))
	for name := range c.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Controller) builtinCommands() map[string]Command {
	cmds := map[string]Command{
		"undo": c.activeStep((*editor.Session).Undo),
		"redo": c.activeStep((*editor.Session).Redo),

		"tab.next":     c.cmdTabNext,
		"tab.prev":     c.cmdTabPrev,
		"tab.goto":     c.cmdTabGoto,
		"tab.close":    c.cmdTabClose,
		"tab.closeAll": c.cmdTabCloseAll,

		"panel.codeEditor": c.togglePanel(workspace.PanelCodeEditor),
		"panel.copilot":    c.togglePanel(workspace.PanelCopilot),
		"panel.sidebar":    c.togglePanel(workspace.PanelSidebar),

		"font.increase": c.fontCommand((*editor.Session).IncreaseFontSize),
		"font.decrease": c.fontCommand((*editor.Session).DecreaseFontSize),
		"font.reset":    c.cmdFontReset,

		"color.set":          c.cmdColorSet,
		"annotations.clear":  c.cmdClear,
		"annotations.delete": c.cmdDelete,
	}
	for _, tool := range []editor.Tool{
		editor.ToolCursor,
		editor.ToolText,
		editor.ToolHighlighter,
		editor.ToolShape,
		editor.ToolArrow,
		editor.ToolDrawing,
	} {
		cmds["tool."+string(tool)] = c.selectTool(tool)
	}
	return cmds
}

func (c *Controller) activeStep(fn func(*editor.Session) bool) Command {
	return func(_ context.Context, _ map[string]interface{}) (map[string]interface{}, error) {
		id := c.workspace.ActiveTabID()
		moved, err := c.step(id, fn)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"tab_id": id, "moved": moved}, nil
	}
}

func (c *Controller) cmdTabNext(_ context.Context, _ map[string]interface{}) (map[string]interface{}, error) {
	c.workspace.NextTab()
	return c.activeResult(), nil
}

func (c *Controller) cmdTabPrev(_ context.Context, _ map[string]interface{}) (map[string]interface{}, error) {
	c.workspace.PrevTab()
	return c.activeResult(), nil
}

func (c *Controller) cmdTabGoto(_ context.Context, params map[string]interface{}) (map[string]interface{}, error) {
	index, ok := intParam(params, "index")
	if !ok {
		return nil, fmt.Errorf("%w: index", ErrMissingParam)
	}
	tabs := c.workspace.Tabs()
	if index < 0 || index >= len(tabs) {
		return nil, fmt.Errorf("%w: index %d", workspace.ErrTabNotFound, index)
	}
	if err := c.workspace.SetActive(tabs[index].ID); err != nil {
		return nil, err
	}
	return c.activeResult(), nil
}

func (c *Controller) cmdTabClose(_ context.Context, params map[string]interface{}) (map[string]interface{}, error) {
	id, _ := params["tab_id"].(string)
	if id == "" {
		id = c.workspace.ActiveTabID()
	}
	if err := c.CloseTab(id); err != nil {
		return nil, err
	}
	result := c.activeResult()
	result["closed"] = id
	return result, nil
}

func (c *Controller) cmdTabCloseAll(_ context.Context, _ map[string]interface{}) (map[string]interface{}, error) {
	c.CloseAll()
	return c.activeResult(), nil
}

func (c *Controller) togglePanel(name workspace.Panel) Command {
	return func(_ context.Context, _ map[string]interface{}) (map[string]interface{}, error) {
		visible, err := c.workspace.TogglePanel(name)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"panel": string(name), "visible": visible}, nil
	}
}

func (c *Controller) selectTool(tool editor.Tool) Command {
	return func(_ context.Context, _ map[string]interface{}) (map[string]interface{}, error) {
		s, err := c.ActiveEditor()
		if err != nil {
			return nil, err
		}
		cfg, err := s.SetToolConfig(editor.ToolConfigPatch{Tool: &tool})
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"tools": cfg}, nil
	}
}

func (c *Controller) fontCommand(fn func(*editor.Session) float64) Command {
	return func(_ context.Context, _ map[string]interface{}) (map[string]interface{}, error) {
		s, err := c.ActiveEditor()
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"font_size": fn(s)}, nil
	}
}

func (c *Controller) cmdFontReset(_ context.Context, _ map[string]interface{}) (map[string]interface{}, error) {
	s, err := c.ActiveEditor()
	if err != nil {
		return nil, err
	}
	c.mu.RLock()
	size := c.defaults.FontSize
	c.mu.RUnlock()

	cfg, err := s.SetToolConfig(editor.ToolConfigPatch{FontSize: &size})
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"font_size": cfg.FontSize}, nil
}

func (c *Controller) cmdColorSet(_ context.Context, params map[string]interface{}) (map[string]interface{}, error) {
	color, _ := params["color"].(string)
	if color == "" {
		return nil, fmt.Errorf("%w: color", ErrMissingParam)
	}
	s, err := c.ActiveEditor()
	if err != nil {
		return nil, err
	}
	cfg, err := s.SetToolConfig(editor.ToolConfigPatch{Color: &color})
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"tools": cfg}, nil
}

func (c *Controller) cmdClear(_ context.Context, _ map[string]interface{}) (map[string]interface{}, error) {
	id := c.workspace.ActiveTabID()
	s, err := c.Editor(id)
	if err != nil {
		return nil, err
	}
	s.Clear()
	if err := c.syncModified(id, s); err != nil {
		return nil, err
	}
	return map[string]interface{}{"tab_id": id, "count": 0}, nil
}

func (c *Controller) cmdDelete(_ context.Context, params map[string]interface{}) (map[string]interface{}, error) {
	annID, _ := params["annotation_id"].(string)
	if annID == "" {
		return nil, fmt.Errorf("%w: annotation_id", ErrMissingParam)
	}
	id := c.workspace.ActiveTabID()
	if err := c.RemoveAnnotation(id, annID); err != nil {
		return nil, err
	}
	return map[string]interface{}{"tab_id": id, "deleted": annID}, nil
}

func (c *Controller) activeResult() map[string]interface{} {
	return map[string]interface{}{"active_tab_id": c.workspace.ActiveTabID()}
}

// intParam accepts JSON numbers decoded as float64 as well as ints
func intParam(params map[string]interface{}, key string) (int, bool) {
	switch v := params[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	case int64:
		return int(v), true
	}
	return 0, false
}
