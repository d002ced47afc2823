package manifest

import (
	"bytes"
	"fmt"

	"go.yaml.in/yaml/v3"
)

const defaultKey = "default"

// SetDefaultFlag returns data with the top-level default flag set to def.
// The rest of the document, comments and key order included, is kept. A
// false flag is written by dropping the key.
func SetDefaultFlag(data []byte, def bool) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("manifest is not a YAML mapping")
	}

	root := doc.Content[0]
	idx := -1
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == defaultKey {
			idx = i
			break
		}
	}

	switch {
	case def && idx >= 0:
		v := root.Content[idx+1]
		v.Kind, v.Tag, v.Value, v.Style = yaml.ScalarNode, "!!bool", "true", 0
	case def:
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: defaultKey},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "true"},
		)
	case idx >= 0:
		root.Content = append(root.Content[:idx], root.Content[idx+2:]...)
	default:
		return data, nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	return buf.Bytes(), nil
}
