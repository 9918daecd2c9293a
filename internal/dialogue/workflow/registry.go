package workflow

import (
	"fmt"
	"os"
	"sort"

	"booking-dialogue/internal/models"

	"gopkg.in/yaml.v3"
)

// Registry maps workflow types to compiled workflows. It is built once and
// never mutated, so it is safe to share between goroutines.
type Registry struct {
	workflows   map[string]*Workflow
	defaultType string
}

// NewRegistry compiles defs. defaultType must be among them.
func NewRegistry(defaultType string, defs map[string]Definition) (*Registry, error) {
	r := &Registry{
		workflows:   make(map[string]*Workflow, len(defs)),
		defaultType: defaultType,
	}
	for typ, def := range defs {
		w, err := Compile(def)
		if err != nil {
			return nil, fmt.Errorf("workflow %q: %w", typ, err)
		}
		r.workflows[typ] = w
	}
	if _, ok := r.workflows[defaultType]; !ok {
		return nil, fmt.Errorf("%w: default workflow %q is not registered", ErrInvalidDefinition, defaultType)
	}
	return r, nil
}

var defaultRegistry = func() *Registry {
	r, err := NewRegistry(DefaultType, map[string]Definition{DefaultType: CarRental()})
	if err != nil {
		panic(err)
	}
	return r
}()

// DefaultRegistry holds only the built-in car rental workflow.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Lookup returns the workflow for typ, falling back to the default one.
func (r *Registry) Lookup(typ string) (*Workflow, Fallback) {
	if w, ok := r.workflows[typ]; ok {
		return w, FallbackNone
	}
	return r.workflows[r.defaultType], FallbackUnknownWorkflow
}

// DefaultType is the workflow type unknown types fall back to.
func (r *Registry) DefaultType() string {
	return r.defaultType
}

// Workflow is Lookup without the fallback report.
func (r *Registry) Workflow(typ string) *Workflow {
	w, _ := r.Lookup(typ)
	return w
}

// Types lists registered workflow types in lexical order.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.workflows))
	for t := range r.workflows {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// NextStep resolves the step after current within the workflow of type typ.
func (r *Registry) NextStep(typ string, current models.StepID, intent models.Intent) models.StepID {
	return r.Workflow(typ).NextStep(current, intent)
}

// NextStep resolves against the built-in registry.
func NextStep(typ string, current models.StepID, intent models.Intent) models.StepID {
	return defaultRegistry.NextStep(typ, current, intent)
}

type fileFormat struct {
	Workflows map[string]Definition `yaml:"workflows"`
}

// Parse decodes a YAML document with a top-level "workflows" mapping.
func Parse(data []byte) (map[string]Definition, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse workflows: %w", err)
	}
	return f.Workflows, nil
}

// LoadFile reads workflow definitions from path.
func LoadFile(path string) (map[string]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workflows: %w", err)
	}
	return Parse(data)
}

// LoadRegistry builds a registry from the built-in workflow plus the
// definitions in path. File entries override built-ins of the same type.
// An empty path yields the built-in registry.
func LoadRegistry(path, defaultType string) (*Registry, error) {
	defs := map[string]Definition{DefaultType: CarRental()}
	if path != "" {
		loaded, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		for typ, def := range loaded {
			defs[typ] = def
		}
	}
	if defaultType == "" {
		defaultType = DefaultType
	}
	return NewRegistry(defaultType, defs)
}
