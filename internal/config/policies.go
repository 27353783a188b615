package config

import (
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/RostislavKrotenko/cybersecurity-smartenergy/pkg/common"
)

// Modifiers is the fixed-shape per-threat multiplier record a policy applies
// to detection and correlation. The neutral element is all-1.0; fields
// missing from the config default to neutral.
type Modifiers struct {
	WindowMultiplier    float64 `yaml:"window_multiplier"`
	ThresholdMultiplier float64 `yaml:"threshold_multiplier"`
	MTTDMultiplier      float64 `yaml:"mttd_multiplier"`
	MTTRMultiplier      float64 `yaml:"mttr_multiplier"`
	ImpactMultiplier    float64 `yaml:"impact_multiplier"`
}

// NeutralModifiers returns the all-1.0 modifier record.
func NeutralModifiers() Modifiers {
	return Modifiers{
		WindowMultiplier:    1.0,
		ThresholdMultiplier: 1.0,
		MTTDMultiplier:      1.0,
		MTTRMultiplier:      1.0,
		ImpactMultiplier:    1.0,
	}
}

// UnmarshalYAML decodes a modifier mapping, defaulting absent fields to 1.0.
func (m *Modifiers) UnmarshalYAML(node *yaml.Node) error {
	aux := struct {
		WindowMultiplier    *float64 `yaml:"window_multiplier"`
		ThresholdMultiplier *float64 `yaml:"threshold_multiplier"`
		MTTDMultiplier      *float64 `yaml:"mttd_multiplier"`
		MTTRMultiplier      *float64 `yaml:"mttr_multiplier"`
		ImpactMultiplier    *float64 `yaml:"impact_multiplier"`
	}{}
	if err := node.Decode(&aux); err != nil {
		return err
	}
	*m = NeutralModifiers()
	if aux.WindowMultiplier != nil {
		m.WindowMultiplier = *aux.WindowMultiplier
	}
	if aux.ThresholdMultiplier != nil {
		m.ThresholdMultiplier = *aux.ThresholdMultiplier
	}
	if aux.MTTDMultiplier != nil {
		m.MTTDMultiplier = *aux.MTTDMultiplier
	}
	if aux.MTTRMultiplier != nil {
		m.MTTRMultiplier = *aux.MTTRMultiplier
	}
	if aux.ImpactMultiplier != nil {
		m.ImpactMultiplier = *aux.ImpactMultiplier
	}
	return nil
}

// ModifierSet maps threat_type to its policy modifiers.
type ModifierSet map[string]Modifiers

// For returns the modifiers for a threat type, neutral when absent.
func (s ModifierSet) For(threatType string) Modifiers {
	if s == nil {
		return NeutralModifiers()
	}
	if m, ok := s[threatType]; ok {
		return m
	}
	return NeutralModifiers()
}

// Control is one security control declared on a policy. Only mapping-valued
// controls with enabled: true count as enabled; scalar entries are carried
// but never considered structured.
type Control struct {
	Enabled    bool
	Structured bool
}

// UnmarshalYAML tolerates both mapping and scalar control declarations.
func (c *Control) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		*c = Control{}
		return nil
	}
	aux := struct {
		Enabled bool `yaml:"enabled"`
	}{}
	if err := node.Decode(&aux); err != nil {
		return err
	}
	*c = Control{Enabled: aux.Enabled, Structured: true}
	return nil
}

// Policy is one named security-policy configuration.
type Policy struct {
	Description string             `yaml:"description"`
	Controls    map[string]Control `yaml:"controls"`
	Modifiers   ModifierSet        `yaml:"modifiers"`
}

// PoliciesConfig is the parsed policies.yaml. Names preserves the file
// order of the policy mapping so selection and output order are stable.
type PoliciesConfig struct {
	Names    []string
	Policies map[string]Policy
}

// LoadPolicies reads and parses policies.yaml from path. A missing or
// malformed file is fatal at startup.
func LoadPolicies(path string) (*PoliciesConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, common.WrapError(
			common.NewError("E2001", "policies config unreadable", map[string]interface{}{"path": path}),
			err.Error(), nil)
	}

	var doc struct {
		Policies yaml.Node `yaml:"policies"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, common.NewError("E2001", "policies config malformed: "+err.Error(), map[string]interface{}{
			"path": path,
		})
	}

	cfg := &PoliciesConfig{Policies: make(map[string]Policy)}
	if doc.Policies.Kind == yaml.MappingNode {
		// Mapping content alternates key and value nodes.
		for i := 0; i+1 < len(doc.Policies.Content); i += 2 {
			name := doc.Policies.Content[i].Value
			var p Policy
			if err := doc.Policies.Content[i+1].Decode(&p); err != nil {
				return nil, common.NewError("E2001", "policy malformed: "+err.Error(), map[string]interface{}{
					"policy": name,
				})
			}
			cfg.Names = append(cfg.Names, name)
			cfg.Policies[name] = p
		}
	}

	common.Info("loaded policies",
		zap.String("path", path),
		zap.Strings("names", cfg.Names),
	)
	return cfg, nil
}
