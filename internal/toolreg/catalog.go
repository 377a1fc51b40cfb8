package toolreg

import "fmt"

// Resource kind names shared between descriptors and handlers.
const (
	KindPods        = "pods"
	KindDeployments = "deployments"
	KindServices    = "services"
	KindReplicaSets = "replicasets"
	KindConfigMaps  = "configmaps"
	KindEvents      = "events"
	KindNamespaces  = "namespaces"
	KindNodes       = "nodes"
)

// Well-known parameter names.
const (
	ParamClusters      = "clusters"
	ParamNamespace     = "namespace"
	ParamName          = "name"
	ParamManifest      = "manifest"
	ParamLabelSelector = "labelSelector"
	ParamFieldSelector = "fieldSelector"
	ParamReplicas      = "replicas"
	ParamContainer     = "container"
	ParamTailLines     = "tailLines"
)

func clustersParam() ParamSpec {
	return ParamSpec{
		Name:        ParamClusters,
		Description: "Target clusters: a name, a comma-separated list of names, or \"all\" (default)",
		Type:        TypeString,
	}
}

func namespaceParam() ParamSpec {
	return ParamSpec{
		Name:        ParamNamespace,
		Description: "Namespace to operate in (defaults to each cluster's configured namespace)",
		Type:        TypeString,
	}
}

func nameParam(kind string) ParamSpec {
	return ParamSpec{
		Name:        ParamName,
		Description: fmt.Sprintf("Name of the %s resource", singular(kind)),
		Type:        TypeString,
		Required:    true,
	}
}

func manifestParam(kind string) ParamSpec {
	return ParamSpec{
		Name:        ParamManifest,
		Description: fmt.Sprintf("Full %s manifest as a JSON object", singular(kind)),
		Type:        TypeObject,
		Required:    true,
	}
}

func listParams() []ParamSpec {
	return []ParamSpec{
		{
			Name:        ParamLabelSelector,
			Description: "Label selector to filter results (e.g. app=web,tier!=cache)",
			Type:        TypeString,
		},
		{
			Name:        ParamFieldSelector,
			Description: "Field selector to filter results (e.g. status.phase=Running)",
			Type:        TypeString,
		},
	}
}

// singular trims the plural kind name for descriptions.
func singular(kind string) string {
	if kind == KindNodes {
		return "node"
	}
	if len(kind) > 0 && kind[len(kind)-1] == 's' {
		return kind[:len(kind)-1]
	}
	return kind
}

// crudDescriptors returns the standard five-verb tool set for a namespaced
// resource kind.
func crudDescriptors(kind string) []Descriptor {
	s := singular(kind)
	return []Descriptor{
		{
			Name:        "list_" + kind,
			Description: fmt.Sprintf("List %s across the selected clusters", kind),
			Kind:        kind,
			Verb:        VerbList,
			Params:      append([]ParamSpec{clustersParam(), namespaceParam()}, listParams()...),
		},
		{
			Name:        "get_" + s,
			Description: fmt.Sprintf("Get a %s by name from the selected clusters", s),
			Kind:        kind,
			Verb:        VerbGet,
			Params:      []ParamSpec{clustersParam(), namespaceParam(), nameParam(kind)},
		},
		{
			Name:        "create_" + s,
			Description: fmt.Sprintf("Create a %s from a manifest on the selected clusters", s),
			Kind:        kind,
			Verb:        VerbCreate,
			Params:      []ParamSpec{clustersParam(), namespaceParam(), manifestParam(kind)},
		},
		{
			Name:        "update_" + s,
			Description: fmt.Sprintf("Update a %s from a manifest on the selected clusters", s),
			Kind:        kind,
			Verb:        VerbUpdate,
			Params:      []ParamSpec{clustersParam(), namespaceParam(), manifestParam(kind)},
		},
		{
			Name:        "delete_" + s,
			Description: fmt.Sprintf("Delete a %s by name from the selected clusters", s),
			Kind:        kind,
			Verb:        VerbDelete,
			Params:      []ParamSpec{clustersParam(), namespaceParam(), nameParam(kind)},
		},
	}
}

// readOnlyDescriptors returns the list and get tool pair for a namespaced
// resource kind that is exposed without mutations.
func readOnlyDescriptors(kind string) []Descriptor {
	s := singular(kind)
	return []Descriptor{
		{
			Name:        "list_" + kind,
			Description: fmt.Sprintf("List %s across the selected clusters", kind),
			Kind:        kind,
			Verb:        VerbList,
			Params:      append([]ParamSpec{clustersParam(), namespaceParam()}, listParams()...),
		},
		{
			Name:        "get_" + s,
			Description: fmt.Sprintf("Get a %s by name from the selected clusters", s),
			Kind:        kind,
			Verb:        VerbGet,
			Params:      []ParamSpec{clustersParam(), namespaceParam(), nameParam(kind)},
		},
	}
}

// clusterScopedDescriptors returns the read-only tool set for a
// cluster-scoped resource kind.
func clusterScopedDescriptors(kind string) []Descriptor {
	s := singular(kind)
	return []Descriptor{
		{
			Name:        "list_" + kind,
			Description: fmt.Sprintf("List %s across the selected clusters", kind),
			Kind:        kind,
			Verb:        VerbList,
			Params:      append([]ParamSpec{clustersParam()}, listParams()...),
		},
		{
			Name:        "get_" + s,
			Description: fmt.Sprintf("Get a %s by name from the selected clusters", s),
			Kind:        kind,
			Verb:        VerbGet,
			Params:      []ParamSpec{clustersParam(), nameParam(kind)},
		},
	}
}

// Catalog returns the complete tool descriptor table.
func Catalog() []Descriptor {
	var catalog []Descriptor

	catalog = append(catalog, crudDescriptors(KindPods)...)
	catalog = append(catalog, Descriptor{
		Name:        "get_pod_logs",
		Description: "Fetch container logs for a pod from the selected clusters",
		Kind:        KindPods,
		Verb:        VerbLogs,
		Params: []ParamSpec{
			clustersParam(),
			namespaceParam(),
			nameParam(KindPods),
			{
				Name:        ParamContainer,
				Description: "Container name (defaults to the pod's first container)",
				Type:        TypeString,
			},
			{
				Name:        ParamTailLines,
				Description: "Limit output to the last N lines",
				Type:        TypeInt,
			},
		},
	})

	catalog = append(catalog, crudDescriptors(KindDeployments)...)
	catalog = append(catalog, scaleDescriptor(KindDeployments))

	catalog = append(catalog, crudDescriptors(KindServices)...)

	catalog = append(catalog, crudDescriptors(KindReplicaSets)...)
	catalog = append(catalog, scaleDescriptor(KindReplicaSets))

	catalog = append(catalog, readOnlyDescriptors(KindConfigMaps)...)
	catalog = append(catalog, readOnlyDescriptors(KindEvents)...)

	catalog = append(catalog, clusterScopedDescriptors(KindNamespaces)...)
	catalog = append(catalog, clusterScopedDescriptors(KindNodes)...)

	return catalog
}

func scaleDescriptor(kind string) Descriptor {
	s := singular(kind)
	return Descriptor{
		Name:        "scale_" + s,
		Description: fmt.Sprintf("Scale a %s to a replica count on the selected clusters", s),
		Kind:        kind,
		Verb:        VerbScale,
		Params: []ParamSpec{
			clustersParam(),
			namespaceParam(),
			nameParam(kind),
			{
				Name:        ParamReplicas,
				Description: "Desired replica count",
				Type:        TypeInt,
				Required:    true,
			},
		},
	}
}

// RegisterCatalog registers the full catalog into a registry.
func RegisterCatalog(r *Registry) error {
	for _, d := range Catalog() {
		if err := r.Register(d); err != nil {
			return err
		}
	}
	return nil
}
