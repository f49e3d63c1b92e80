package config

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Well-known layer names, in precedence order.
const (
	LayerDefaults = "defaults"
	LayerMachine  = "machine"
	LayerUser     = "user"
	LayerTask     = "task"
)

// Layer is one level of a configuration stack.
type Layer struct {
	// Name identifies the layer in error messages, e.g. "machine".
	Name string
	// Source is where the layer came from, usually a file path.
	Source string
	// Values maps section -> option -> raw (uninterpolated) value.
	Values map[string]map[string]string
}

// NewLayer returns an empty layer ready to be filled with Set.
func NewLayer(name, source string) Layer {
	return Layer{Name: name, Source: source, Values: make(map[string]map[string]string)}
}

// Set stores a raw value in the layer.
func (l Layer) Set(section, option, value string) {
	if l.Values[section] == nil {
		l.Values[section] = make(map[string]string)
	}
	l.Values[section][option] = value
}

// DefaultLayer returns the package defaults shipped with the framework.
func DefaultLayer() Layer {
	layer, err := ParseLayer(LayerDefaults, "defaults.yaml", defaultsYAML)
	if err != nil {
		// The embedded file is part of the binary; failing to parse it is a build defect.
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return layer
}

// LoadLayerFile reads a YAML layer from disk.
func LoadLayerFile(name, path string) (Layer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layer{}, fmt.Errorf("failed to read %s config layer: %w", name, err)
	}
	return ParseLayer(name, path, data)
}

// ParseLayer decodes a YAML document into a layer. Scalars are kept verbatim;
// sequences of scalars become comma separated lists.
func ParseLayer(name, source string, data []byte) (Layer, error) {
	var doc map[string]map[string]yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Layer{}, fmt.Errorf("failed to decode %s config layer %s: %w", name, source, err)
	}

	layer := NewLayer(name, source)
	for section, options := range doc {
		if strings.Contains(section, ":") {
			return Layer{}, fmt.Errorf("config layer %s: section name %q must not contain ':'", source, section)
		}
		for option, node := range options {
			value, err := nodeValue(&node)
			if err != nil {
				return Layer{}, fmt.Errorf("config layer %s: %s:%s: %w", source, section, option, err)
			}
			layer.Set(section, option, value)
		}
		if _, ok := layer.Values[section]; !ok {
			layer.Values[section] = make(map[string]string)
		}
	}
	return layer, nil
}

func nodeValue(n *yaml.Node) (string, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return "", nil
		}
		return n.Value, nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			if item.Kind != yaml.ScalarNode {
				return "", fmt.Errorf("list items must be scalars (line %d)", item.Line)
			}
			items = append(items, item.Value)
		}
		return strings.Join(items, ", "), nil
	default:
		return "", fmt.Errorf("value must be a scalar or a list of scalars (line %d)", n.Line)
	}
}

// sortedKeys returns the keys of m in lexical order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
