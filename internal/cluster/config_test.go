package cluster

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFleetConfig(t *testing.T) {
	path := writeTempFile(t, "fleet.yaml", `
clusters:
  - name: prod-eu
    kubeContext: prod-eu-admin
    defaultNamespace: workloads
    labels:
      region: eu-west-1
  - name: prod-us
    kubeContext: prod-us-admin
`)

	cfg, err := LoadFleetConfig(path)
	require.NoError(t, err)
	require.Len(t, cfg.Clusters, 2)

	assert.Equal(t, "prod-eu", cfg.Clusters[0].Name)
	assert.Equal(t, "prod-eu-admin", cfg.Clusters[0].KubeContext)
	assert.Equal(t, "workloads", cfg.Clusters[0].Namespace())
	assert.Equal(t, "eu-west-1", cfg.Clusters[0].Labels["region"])

	assert.Equal(t, "prod-us", cfg.Clusters[1].Name)
	assert.Equal(t, "default", cfg.Clusters[1].Namespace())
}

func TestLoadFleetConfigMissingName(t *testing.T) {
	path := writeTempFile(t, "fleet.yaml", `
clusters:
  - kubeContext: prod-eu-admin
`)

	_, err := LoadFleetConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no name")
}

func TestLoadFleetConfigMissingFile(t *testing.T) {
	_, err := LoadFleetConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadFleetConfigInvalidYAML(t *testing.T) {
	path := writeTempFile(t, "fleet.yaml", "clusters: [broken")

	_, err := LoadFleetConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing fleet config")
}

func TestDiscoverFromKubeconfig(t *testing.T) {
	path := writeTempFile(t, "kubeconfig", `
apiVersion: v1
kind: Config
clusters:
  - name: east
    cluster:
      server: https://east.example.com
  - name: west
    cluster:
      server: https://west.example.com
contexts:
  - name: west
    context:
      cluster: west
      user: admin
  - name: east
    context:
      cluster: east
      user: admin
      namespace: staging
users:
  - name: admin
    user: {}
current-context: east
`)

	contexts, err := DiscoverFromKubeconfig(path)
	require.NoError(t, err)
	require.Len(t, contexts, 2)

	// Name order regardless of file order.
	assert.Equal(t, "east", contexts[0].Name)
	assert.Equal(t, "east", contexts[0].KubeContext)
	assert.Equal(t, "staging", contexts[0].DefaultNamespace)
	assert.Equal(t, "west", contexts[1].Name)
	assert.Empty(t, contexts[1].DefaultNamespace)
}
