package route

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type routesDocument struct {
	Routes []routeEntry `yaml:"routes"`
}

type routeEntry struct {
	Key             string         `yaml:"key"`
	Kind            string         `yaml:"kind"`
	Model           string         `yaml:"model"`
	MaxOutputs      int            `yaml:"max_outputs"`
	DefaultOutputs  int            `yaml:"default_outputs"`
	TriggerToken    string         `yaml:"trigger_token"`
	TriggerTemplate string         `yaml:"trigger_template"`
	Defaults        map[string]any `yaml:"defaults"`
}

// LoadFile reads a YAML route table:
//
//	routes:
//	  - key: txt2img
//	    kind: txt2img
//	    model: black-forest-labs/flux-schnell
//	    max_outputs: 4
//	    defaults:
//	      output_format: webp
func LoadFile(path string) ([]Route, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read routes file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML route table.
func Parse(data []byte) ([]Route, error) {
	var doc routesDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode routes file: %w", err)
	}
	if len(doc.Routes) == 0 {
		return nil, fmt.Errorf("routes file defines no routes")
	}

	routes := make([]Route, 0, len(doc.Routes))
	for _, entry := range doc.Routes {
		ref, err := ParseReference(entry.Model)
		if err != nil {
			return nil, fmt.Errorf("route %q: %w", entry.Key, err)
		}
		routes = append(routes, Route{
			Key:       entry.Key,
			Kind:      entry.Kind,
			Reference: ref,
			Policy: Policy{
				MaxOutputs:      entry.MaxOutputs,
				DefaultOutputs:  entry.DefaultOutputs,
				TriggerToken:    entry.TriggerToken,
				TriggerTemplate: entry.TriggerTemplate,
				Defaults:        entry.Defaults,
			},
		})
	}
	return routes, nil
}
