package cluster

// Context describes a named entry point into one cluster of the fleet. It
// carries identity and connection metadata only; authenticated client handles
// are built lazily by the registry on first use.
type Context struct {
	// Name is the unique registry key for this cluster.
	Name string `yaml:"name"`

	// KubeContext is the kubeconfig context to load credentials from.
	// Empty means the kubeconfig's current context.
	KubeContext string `yaml:"kubeContext,omitempty"`

	// Kubeconfig overrides the kubeconfig file path for this cluster.
	// Empty means the source's default path.
	Kubeconfig string `yaml:"kubeconfig,omitempty"`

	// DefaultNamespace is used when a tool invocation omits the namespace
	// parameter. Empty means "default".
	DefaultNamespace string `yaml:"defaultNamespace,omitempty"`

	// Labels are free-form metadata surfaced in listings. They do not
	// affect routing.
	Labels map[string]string `yaml:"labels,omitempty"`
}

// Namespace returns the namespace to operate in when the invocation did not
// specify one.
func (c Context) Namespace() string {
	if c.DefaultNamespace != "" {
		return c.DefaultNamespace
	}
	return "default"
}

// Selector identifies which registered clusters a dispatch targets. The zero
// value selects nothing; use All or Names to construct one.
type Selector struct {
	all   bool
	names []string
}

// All returns a selector matching every registered cluster.
func All() Selector {
	return Selector{all: true}
}

// Names returns a selector matching exactly the given cluster names. Order
// and duplicates are preserved; the registry rejects duplicates during
// resolution.
func Names(names ...string) Selector {
	return Selector{names: names}
}

// IsAll reports whether the selector targets the whole fleet.
func (s Selector) IsAll() bool {
	return s.all
}

// List returns the explicit cluster names, or nil for an all-fleet selector.
func (s Selector) List() []string {
	return s.names
}

// String renders the selector for logs.
func (s Selector) String() string {
	if s.all {
		return "all"
	}
	if len(s.names) == 1 {
		return s.names[0]
	}
	out := ""
	for i, n := range s.names {
		if i > 0 {
			out += ","
		}
		out += n
	}
	return out
}
