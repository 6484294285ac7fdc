package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrConfigExists is returned by WriteConfigFile when the file exists and force is not set.
var ErrConfigExists = errors.New("config file already exists")

// WriteConfigFile writes values as a nested YAML document to path.
// Dotted keys such as "data.format" become nested mappings.
func WriteConfigFile(path string, values map[string]any, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(nest(values))
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	content := "# tasklane configuration\n" + string(data)
	return os.WriteFile(path, []byte(content), 0644)
}

// nest expands dotted keys into nested maps.
func nest(values map[string]any) map[string]any {
	out := map[string]any{}
	for key, value := range values {
		parts := strings.Split(key, ".")
		node := out
		for _, p := range parts[:len(parts)-1] {
			child, ok := node[p].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[p] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = value
	}
	return out
}
