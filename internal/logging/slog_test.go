package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeHost(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		expected string
	}{
		{
			name:     "empty host",
			host:     "",
			expected: "<empty>",
		},
		{
			name:     "plain IPv4",
			host:     "192.168.1.100",
			expected: "<redacted-ip>",
		},
		{
			name:     "IPv4 URL with port",
			host:     "https://192.168.1.100:6443",
			expected: "https://<redacted-ip>:6443",
		},
		{
			name:     "hostname URL unchanged",
			host:     "https://api.cluster.example.com:6443",
			expected: "https://api.cluster.example.com:6443",
		},
		{
			name:     "plain IPv6",
			host:     "2001:db8::1",
			expected: "<redacted-ip>",
		},
		{
			name:     "bracketed IPv6 URL",
			host:     "https://[2001:db8::1]:6443",
			expected: "https://<redacted-ip>:6443",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeHost(tt.host))
		})
	}
}

func TestErr(t *testing.T) {
	assert.Equal(t, "", Err(nil).Value.String())
	assert.Equal(t, "boom", Err(errors.New("boom")).Value.String())
}

func TestSanitizedErr(t *testing.T) {
	err := errors.New("dial tcp 10.0.0.5:6443: connection refused")
	attr := SanitizedErr(err)
	assert.Equal(t, KeyError, attr.Key)
	assert.NotContains(t, attr.Value.String(), "10.0.0.5")
	assert.Contains(t, attr.Value.String(), "<redacted-ip>")
}

func TestAttributeKeys(t *testing.T) {
	assert.Equal(t, KeyCluster, Cluster("prod").Key)
	assert.Equal(t, "prod", Cluster("prod").Value.String())
	assert.Equal(t, KeyTool, Tool("list_pods").Key)
	assert.Equal(t, KeyOperation, Operation("list").Key)
	assert.Equal(t, KeyStatus, Status(StatusSuccess).Key)
}
