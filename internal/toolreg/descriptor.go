package toolreg

// ParamType enumerates the wire types a tool parameter can carry. Arguments
// arrive as decoded JSON, so numbers are accepted in their float64 form and
// normalized during validation.
type ParamType string

const (
	TypeString ParamType = "string"
	TypeInt    ParamType = "int"
	TypeBool   ParamType = "bool"
	TypeObject ParamType = "object"
)

// Verb enumerates the operations a tool maps to on its resource kind.
type Verb string

const (
	VerbList   Verb = "list"
	VerbGet    Verb = "get"
	VerbCreate Verb = "create"
	VerbUpdate Verb = "update"
	VerbDelete Verb = "delete"
	VerbScale  Verb = "scale"
	VerbLogs   Verb = "logs"
)

// Mutating reports whether the verb changes cluster state. Used by the
// non-destructive safety mode to decide which tools to refuse.
func (v Verb) Mutating() bool {
	switch v {
	case VerbCreate, VerbUpdate, VerbDelete, VerbScale:
		return true
	}
	return false
}

// ParamSpec describes one parameter of a tool's schema.
type ParamSpec struct {
	Name        string
	Description string
	Type        ParamType
	Required    bool

	// Enum restricts a string parameter to a fixed value set. Empty means
	// unrestricted.
	Enum []string
}

// Descriptor is the static definition of one tool: its identity, the
// resource kind and verb it maps to, and its parameter schema. Descriptors
// are immutable after startup registration.
type Descriptor struct {
	Name        string
	Description string
	Kind        string
	Verb        Verb
	Params      []ParamSpec
}

// param returns the declared ParamSpec for a named parameter, if any.
func (d Descriptor) param(name string) (ParamSpec, bool) {
	for _, p := range d.Params {
		if p.Name == name {
			return p, true
		}
	}
	return ParamSpec{}, false
}
