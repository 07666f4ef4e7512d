package postprocessors

import (
	"fmt"

	"github.com/moatlabs/omaha/internal/core/ports/driven"
)

// BuilderFunc constructs a PostProcessor from its settings map, as
// parsed from user configuration.
type BuilderFunc func(cfg map[string]any) (driven.PostProcessor, error)

// Registry holds named processor builders so pipelines can be assembled
// from configuration.
type Registry struct {
	builders map[string]BuilderFunc
}

// NewRegistry creates an empty processor registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]BuilderFunc),
	}
}

// Register adds a builder under a name. The name must match what the
// built processor reports from Name().
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Build constructs the named processor with the given settings.
func (r *Registry) Build(name string, cfg map[string]any) (driven.PostProcessor, error) {
	builder, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown processor: %s", name)
	}
	return builder(cfg)
}

// Has reports whether a builder is registered under the name.
func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Names lists the registered processor names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	return names
}
