// Package manifest reads the host-provided application manifest and detects
// which launch strategy the host supports.
package manifest

import (
	"fmt"
	"os"

	"github.com/bytedance/sonic"
)

// LaunchMode is the launch strategy variant available on the host.
type LaunchMode string

const (
	// Legacy hosts present a single application window.
	Legacy LaunchMode = "legacy"
	// HostManaged hosts drive windows through menu and launch events.
	HostManaged LaunchMode = "host_managed"
)

// Manifest is the application description shipped with the host.
// Only the fields the controller inspects are typed; the rest is kept raw.
type Manifest struct {
	Name    string         `json:"name,omitempty"`
	Version string         `json:"version,omitempty"`
	App     any            `json:"app,omitempty"`
	Extra   map[string]any `json:"-"`
}

// Parse decodes manifest JSON.
func Parse(data []byte) (*Manifest, error) {
	var raw map[string]any
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	m := &Manifest{App: raw["app"], Extra: raw}
	if s, ok := raw["name"].(string); ok {
		m.Name = s
	}
	if s, ok := raw["version"].(string); ok {
		m.Version = s
	}
	return m, nil
}

// Load reads and decodes the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	return Parse(data)
}

// Background returns app.background, or nil when the manifest does not
// declare one.
func (m *Manifest) Background() any {
	if m == nil {
		return nil
	}
	app, ok := m.App.(map[string]any)
	if !ok {
		return nil
	}
	return app["background"]
}

// DetectLaunchMode returns HostManaged when the manifest declares a truthy
// app.background, Legacy otherwise. Missing or malformed fields are Legacy.
func DetectLaunchMode(m *Manifest) LaunchMode {
	if truthy(m.Background()) {
		return HostManaged
	}
	return Legacy
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	default:
		return true
	}
}
