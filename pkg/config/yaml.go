package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// YAML is a koanf parser for javabuild.yaml. Keys are the config keys, e.g.
//
//	source: src
//	libraries: include
type YAML struct{}

// YAMLParser returns the javabuild.yaml parser.
func YAMLParser() *YAML {
	return &YAML{}
}

// Unmarshal parses YAML content into a koanf map.
func (p *YAML) Unmarshal(b []byte) (map[string]interface{}, error) {
	out := make(map[string]interface{})
	if err := yaml.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	return out, nil
}

// Marshal renders a koanf map as YAML.
func (p *YAML) Marshal(m map[string]interface{}) ([]byte, error) {
	return yaml.Marshal(m)
}
