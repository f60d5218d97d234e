package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectLaunchMode(t *testing.T) {
	tests := []struct {
		name     string
		json     string
		expected LaunchMode
	}{
		{"empty manifest", `{}`, Legacy},
		{"no app", `{"name":"host","version":"1.0"}`, Legacy},
		{"app without background", `{"app":{}}`, Legacy},
		{"app is not an object", `{"app":"yes"}`, Legacy},
		{"app is an array", `{"app":[{"background":{}}]}`, Legacy},
		{"background null", `{"app":{"background":null}}`, Legacy},
		{"background false", `{"app":{"background":false}}`, Legacy},
		{"background zero", `{"app":{"background":0}}`, Legacy},
		{"background empty string", `{"app":{"background":""}}`, Legacy},
		{"background object", `{"app":{"background":{"scripts":["main.js"]}}}`, HostManaged},
		{"background empty object", `{"app":{"background":{}}}`, HostManaged},
		{"background empty array", `{"app":{"background":[]}}`, HostManaged},
		{"background true", `{"app":{"background":true}}`, HostManaged},
		{"background number", `{"app":{"background":2}}`, HostManaged},
		{"background string", `{"app":{"background":"page.html"}}`, HostManaged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse([]byte(tt.json))
			require.NoError(t, err)
			if got := DetectLaunchMode(m); got != tt.expected {
				t.Errorf("DetectLaunchMode(%s) = %v, want %v", tt.json, got, tt.expected)
			}
		})
	}
}

func TestDetectLaunchMode_NilManifest(t *testing.T) {
	assert.Equal(t, Legacy, DetectLaunchMode(nil))
}

func TestParse_Fields(t *testing.T) {
	m, err := Parse([]byte(`{"name":"Remote Assist","version":"2.1.0","minimum_host_version":"32"}`))
	require.NoError(t, err)
	assert.Equal(t, "Remote Assist", m.Name)
	assert.Equal(t, "2.1.0", m.Version)
	assert.Equal(t, "32", m.Extra["minimum_host_version"])
}

func TestParse_InvalidJSON(t *testing.T) {
	_, err := Parse([]byte(`{"app":`))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"app":{"background":{"scripts":["bg.js"]}}}`), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, HostManaged, DetectLaunchMode(m))

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
