package toolreg

import (
	"fmt"
	"math"
	"sync"
)

// Registry holds the static tool descriptor table. Registration happens at
// startup; validation is read-only and safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Descriptor
	order []string
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Descriptor)}
}

// Register adds a descriptor under its tool name. Registering a taken name
// fails with ErrDuplicateTool.
func (r *Registry) Register(d Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[d.Name]; exists {
		return &DuplicateToolError{Name: d.Name}
	}
	r.tools[d.Name] = d
	r.order = append(r.order, d.Name)
	return nil
}

// Get returns the descriptor registered under name.
func (r *Registry) Get(name string) (Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.tools[name]
	if !ok {
		return Descriptor{}, &UnknownToolError{Name: name}
	}
	return d, nil
}

// List returns all descriptors in registration order.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Validate checks an invocation's arguments against the tool's parameter
// schema and returns the matching descriptor together with the normalized
// arguments. Unknown tools fail with ErrUnknownTool; a missing required
// parameter, a type mismatch, an enum violation, or an undeclared argument
// fails with an InvalidParameterError naming the parameter. Unknown arguments
// are rejected rather than ignored so a misspelled optional parameter cannot
// silently change meaning.
func (r *Registry) Validate(name string, args map[string]any) (Descriptor, map[string]any, error) {
	d, err := r.Get(name)
	if err != nil {
		return Descriptor{}, nil, err
	}

	normalized := make(map[string]any, len(args))
	for argName, value := range args {
		spec, declared := d.param(argName)
		if !declared {
			return Descriptor{}, nil, &InvalidParameterError{
				Tool:      name,
				Parameter: argName,
				Reason:    "unknown parameter",
			}
		}
		coerced, err := coerce(spec, value)
		if err != nil {
			return Descriptor{}, nil, &InvalidParameterError{
				Tool:      name,
				Parameter: argName,
				Reason:    err.Error(),
			}
		}
		normalized[argName] = coerced
	}

	for _, spec := range d.Params {
		if _, present := normalized[spec.Name]; spec.Required && !present {
			return Descriptor{}, nil, &InvalidParameterError{
				Tool:      name,
				Parameter: spec.Name,
				Reason:    "required parameter is missing",
			}
		}
	}

	return d, normalized, nil
}

// coerce checks a raw JSON-decoded value against a parameter spec and returns
// its normalized form (int64 for integers, otherwise unchanged).
func coerce(spec ParamSpec, value any) (any, error) {
	switch spec.Type {
	case TypeString:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("expected a string, got %T", value)
		}
		if len(spec.Enum) > 0 && !contains(spec.Enum, s) {
			return nil, fmt.Errorf("value %q is not one of %v", s, spec.Enum)
		}
		return s, nil

	case TypeInt:
		switch n := value.(type) {
		case int:
			return int64(n), nil
		case int64:
			return n, nil
		case float64:
			// JSON numbers decode as float64.
			if n != math.Trunc(n) {
				return nil, fmt.Errorf("expected an integer, got %v", n)
			}
			return int64(n), nil
		default:
			return nil, fmt.Errorf("expected an integer, got %T", value)
		}

	case TypeBool:
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("expected a boolean, got %T", value)
		}
		return b, nil

	case TypeObject:
		obj, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected an object, got %T", value)
		}
		return obj, nil

	default:
		return nil, fmt.Errorf("descriptor declares unsupported type %q", spec.Type)
	}
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
