package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// ProcessorOptions tune how a processor renders its result.
type ProcessorOptions struct {
	IgnoreStyles     bool   `yaml:"ignoreStyles" json:"ignoreStyles"`
	AdditionalStyles string `yaml:"additionalStyles" json:"additionalStyles"`
}

// ProcessorConfig describes one data processor. Value wins over Field.
type ProcessorConfig struct {
	Value   string           `yaml:"value" json:"value"`
	Field   string           `yaml:"field" json:"field"`
	Tabs    bool             `yaml:"tabs" json:"tabs"`
	Options ProcessorOptions `yaml:"options" json:"options"`
	As      string           `yaml:"as" json:"as"`
}

// ProcessorDefinitions maps processor names to their configuration.
type ProcessorDefinitions struct {
	Processors map[string]ProcessorConfig `yaml:"processors"`
}

// Get returns the processor named name.
func (d *ProcessorDefinitions) Get(name string) (ProcessorConfig, bool) {
	if d == nil {
		return ProcessorConfig{}, false
	}
	cfg, ok := d.Processors[name]
	return cfg, ok
}

// ParseProcessorDefinitions decodes a YAML processor document.
func ParseProcessorDefinitions(data []byte) (*ProcessorDefinitions, error) {
	var defs ProcessorDefinitions
	if err := yaml.UnmarshalStrict(data, &defs); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if defs.Processors == nil {
		defs.Processors = make(map[string]ProcessorConfig)
	}
	for name, cfg := range defs.Processors {
		if cfg.Value == "" && cfg.Field == "" {
			return nil, fmt.Errorf("processor %q: value or field is required", name)
		}
	}
	return &defs, nil
}

// LoadProcessorDefinitions reads processor definitions from path. A missing
// file yields an empty set.
func LoadProcessorDefinitions(path string) (*ProcessorDefinitions, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &ProcessorDefinitions{Processors: make(map[string]ProcessorConfig)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read processor config: %w", err)
	}
	return ParseProcessorDefinitions(data)
}
