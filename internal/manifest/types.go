package manifest

// PlatformManifest describes one installed server platform.
type PlatformManifest struct {
	ID          string                `yaml:"id" json:"id"`
	DisplayName string                `yaml:"display_name" json:"display_name"`
	Version     string                `yaml:"version" json:"version"`
	Icon        string                `yaml:"icon,omitempty" json:"icon,omitempty"`
	Default     bool                  `yaml:"default,omitempty" json:"default,omitempty"`
	Tools       map[string]ToolConfig `yaml:"tools,omitempty" json:"tools,omitempty"`
}

// ToolConfig lists the classpath of a tool the platform supports.
type ToolConfig struct {
	Classpath []string `yaml:"classpath" json:"classpath"`
}

// Tool names with special meaning to the logical view.
const (
	ToolEmbeddableEJB = "embeddableejb"
)
