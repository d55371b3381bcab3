package settings

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/DocStudio/backend/internal/types"
)

// Provider exposes the preferences store as registry tools
type Provider struct {
	store    *Store
	onChange func(Preferences)
}

// NewProvider creates a settings provider. onChange runs after every
// successful update or reset.
func NewProvider(store *Store, onChange func(Preferences)) *Provider {
	return &Provider{store: store, onChange: onChange}
}

// Definition returns service metadata
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:           "settings",
		Name:         "Settings Service",
		Description:  "Persisted editor preferences",
		Category:     types.CategorySettings,
		Capabilities: []string{"get", "update", "reset"},
		Tools: []types.Tool{
			{
				ID:          "settings.get",
				Name:        "Get Preferences",
				Description: "Current preferences",
				Parameters:  []types.Parameter{},
				Returns:     "Preferences",
			},
			{
				ID:          "settings.update",
				Name:        "Update Preferences",
				Description: "Validate and persist a partial change",
				Parameters: []types.Parameter{
					{Name: "preferences", Type: "object", Description: "Fields to change", Required: true},
				},
				Returns: "Preferences",
			},
			{
				ID:          "settings.reset",
				Name:        "Reset Preferences",
				Description: "Restore the defaults",
				Parameters:  []types.Parameter{},
				Returns:     "Preferences",
			},
		},
	}
}

// Execute runs a settings tool
func (p *Provider) Execute(_ context.Context, toolID string, params map[string]interface{}, _ *types.Context) (*types.Result, error) {
	switch toolID {
	case "settings.get":
		return preferencesResult(p.store.Get())

	case "settings.update":
		raw, ok := types.GetMap(params, "preferences")
		if !ok {
			return types.Failure("preferences required"), nil
		}
		patch, err := decodePatch(raw)
		if err != nil {
			return types.Failure(err.Error()), nil
		}
		prefs, err := p.store.Update(patch)
		if err != nil {
			return types.Failure(err.Error()), nil
		}
		p.changed(prefs)
		return preferencesResult(prefs)

	case "settings.reset":
		prefs, err := p.store.Reset()
		if err != nil {
			return types.Failure(err.Error()), nil
		}
		p.changed(prefs)
		return preferencesResult(prefs)
	}
	return types.Failure(fmt.Sprintf("unknown tool: %s", toolID)), nil
}

func (p *Provider) changed(prefs Preferences) {
	if p.onChange != nil {
		p.onChange(prefs)
	}
}

func decodePatch(raw map[string]interface{}) (Patch, error) {
	var patch Patch
	data, err := sonic.Marshal(raw)
	if err != nil {
		return patch, fmt.Errorf("encode patch: %w", err)
	}
	if err := sonic.Unmarshal(data, &patch); err != nil {
		return patch, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return patch, nil
}

func preferencesResult(prefs Preferences) (*types.Result, error) {
	data, err := sonic.Marshal(prefs)
	if err != nil {
		return types.Failure(err.Error()), nil
	}
	out := map[string]interface{}{}
	if err := sonic.Unmarshal(data, &out); err != nil {
		return types.Failure(err.Error()), nil
	}
	return types.Success(out), nil
}
