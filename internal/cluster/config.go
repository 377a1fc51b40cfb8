package cluster

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
	"k8s.io/client-go/tools/clientcmd"
)

// FleetConfig is the on-disk description of the clusters to register at
// startup.
type FleetConfig struct {
	Clusters []Context `yaml:"clusters"`
}

// LoadFleetConfig reads a fleet configuration from a YAML file.
func LoadFleetConfig(path string) (FleetConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FleetConfig{}, fmt.Errorf("reading fleet config %s: %w", path, err)
	}

	var cfg FleetConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return FleetConfig{}, fmt.Errorf("parsing fleet config %s: %w", path, err)
	}

	for i, cc := range cfg.Clusters {
		if cc.Name == "" {
			return FleetConfig{}, fmt.Errorf("fleet config %s: clusters[%d] has no name", path, i)
		}
	}
	return cfg, nil
}

// DiscoverFromKubeconfig builds one cluster context per context found in the
// kubeconfig at path (empty means the standard discovery chain). Contexts are
// returned in name order so startup registration is deterministic.
func DiscoverFromKubeconfig(path string) ([]Context, error) {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	if path != "" {
		rules.ExplicitPath = path
	}

	raw, err := rules.Load()
	if err != nil {
		return nil, fmt.Errorf("loading kubeconfig: %w", err)
	}

	names := make([]string, 0, len(raw.Contexts))
	for name := range raw.Contexts {
		names = append(names, name)
	}
	sort.Strings(names)

	contexts := make([]Context, 0, len(names))
	for _, name := range names {
		cc := Context{
			Name:        name,
			KubeContext: name,
			Kubeconfig:  path,
		}
		if ns := raw.Contexts[name].Namespace; ns != "" {
			cc.DefaultNamespace = ns
		}
		contexts = append(contexts, cc)
	}
	return contexts, nil
}
