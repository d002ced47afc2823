package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// Parse reads a manifest file. Relative classpath entries are resolved
// against the directory holding the manifest.
func Parse(path string) (*PlatformManifest, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	m, err := ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	m.resolveClasspath(filepath.Dir(path))
	return m, nil
}

// ParseBytes decodes manifest YAML without touching the filesystem.
func ParseBytes(data []byte) (*PlatformManifest, error) {
	var m PlatformManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m.ID == "" {
		return nil, fmt.Errorf("manifest missing required 'id' field")
	}
	return &m, nil
}

// Marshal encodes m as YAML.
func Marshal(m *PlatformManifest) ([]byte, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshaling manifest %s: %w", m.ID, err)
	}
	return data, nil
}

func (m *PlatformManifest) resolveClasspath(baseDir string) {
	for name, tool := range m.Tools {
		for i, entry := range tool.Classpath {
			if entry != "" && !filepath.IsAbs(entry) {
				tool.Classpath[i] = filepath.Join(baseDir, entry)
			}
		}
		m.Tools[name] = tool
	}
}

// readFile reads the contents of a file at the given path.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}
