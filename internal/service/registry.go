package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/GriffinCanCode/DocStudio/backend/internal/types"
)

var (
	ErrInvalidToolID   = errors.New("invalid tool ID format")
	ErrServiceNotFound = errors.New("service not found")
)

// Provider is a service exposing tools by ID ("service.tool")
type Provider interface {
	Definition() types.Service
	Execute(ctx context.Context, toolID string, params map[string]interface{}, call *types.Context) (*types.Result, error)
}

// Registry holds the available services
type Registry struct {
	services sync.Map
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a provider under its definition ID
func (r *Registry) Register(provider Provider) error {
	def := provider.Definition()
	if def.ID == "" {
		return fmt.Errorf("service ID cannot be empty")
	}
	r.services.Store(def.ID, provider)
	return nil
}

// Unregister removes a service
func (r *Registry) Unregister(serviceID string) {
	r.services.Delete(serviceID)
}

// Get looks up a service
func (r *Registry) Get(serviceID string) (Provider, bool) {
	val, ok := r.services.Load(serviceID)
	if !ok {
		return nil, false
	}
	return val.(Provider), true
}

// List returns the service definitions sorted by ID, optionally filtered
func (r *Registry) List(category *types.Category) []types.Service {
	services := []types.Service{}
	r.services.Range(func(_, value interface{}) bool {
		def := value.(Provider).Definition()
		if category == nil || def.Category == *category {
			services = append(services, def)
		}
		return true
	})
	sort.Slice(services, func(i, j int) bool { return services[i].ID < services[j].ID })
	return services
}

// Discover ranks services against a free-text intent
func (r *Registry) Discover(intent string, limit int) []types.Service {
	type scored struct {
		service types.Service
		score   float64
	}

	intent = strings.ToLower(intent)
	var results []scored
	r.services.Range(func(_, value interface{}) bool {
		def := value.(Provider).Definition()
		if score := relevance(intent, def); score > 0 {
			results = append(results, scored{service: def, score: score})
		}
		return true
	})

	sort.Slice(results, func(i, j int) bool {
		if results[i].score == results[j].score {
			return results[i].service.ID < results[j].service.ID
		}
		return results[i].score > results[j].score
	})

	out := make([]types.Service, 0, limit)
	for i := 0; i < len(results) && i < limit; i++ {
		out = append(out, results[i].service)
	}
	return out
}

// Execute routes toolID to its service
func (r *Registry) Execute(ctx context.Context, toolID string, params map[string]interface{}, call *types.Context) (*types.Result, error) {
	serviceID, _, ok := strings.Cut(toolID, ".")
	if !ok || serviceID == "" {
		err := fmt.Errorf("%w: %s", ErrInvalidToolID, toolID)
		return types.Failure(err.Error()), err
	}

	provider, found := r.Get(serviceID)
	if !found {
		err := fmt.Errorf("%w: %s", ErrServiceNotFound, serviceID)
		return types.Failure(err.Error()), err
	}
	if params == nil {
		params = map[string]interface{}{}
	}
	return provider.Execute(ctx, toolID, params, call)
}

// Stats summarises the registry
func (r *Registry) Stats() map[string]interface{} {
	var total, tools int
	categories := make(map[string]int)

	r.services.Range(func(_, value interface{}) bool {
		def := value.(Provider).Definition()
		total++
		tools += len(def.Tools)
		categories[string(def.Category)]++
		return true
	})

	return map[string]interface{}{
		"total_services": total,
		"total_tools":    tools,
		"categories":     categories,
	}
}

func relevance(intent string, service types.Service) float64 {
	score := 0.0

	if strings.Contains(intent, service.ID) || strings.Contains(intent, strings.ToLower(service.Name)) {
		score += 10.0
	}
	for _, word := range strings.Fields(strings.ToLower(service.Description)) {
		if len(word) > 3 && strings.Contains(intent, word) {
			score += 5.0
		}
	}
	for _, capability := range service.Capabilities {
		if strings.Contains(intent, strings.ReplaceAll(strings.ToLower(capability), "_", " ")) {
			score += 3.0
		}
	}
	if strings.Contains(intent, string(service.Category)) {
		score += 2.0
	}
	return score
}
