// Package config loads and validates the declarative rules and policies
// configuration of the analyzer. Configuration is read once per run and
// treated as immutable afterwards.
package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/RostislavKrotenko/cybersecurity-smartenergy/pkg/common"
	"github.com/RostislavKrotenko/cybersecurity-smartenergy/pkg/contracts"
)

// RuleFamily is the closed set of detection algorithms. The RULE-* id prefix
// is parsed exactly once at load time and retained only as an external id.
type RuleFamily int

const (
	FamilyUnknown RuleFamily = iota
	FamilyBruteForce
	FamilyDDoS
	FamilySpoof
	FamilyUnauthorizedCmd
	FamilyOutage
)

var familyPrefixes = []struct {
	prefix string
	family RuleFamily
}{
	{"RULE-BF", FamilyBruteForce},
	{"RULE-DDOS", FamilyDDoS},
	{"RULE-SPOOF", FamilySpoof},
	{"RULE-UCMD", FamilyUnauthorizedCmd},
	{"RULE-OUT", FamilyOutage},
}

func familyForID(id string) RuleFamily {
	for _, fp := range familyPrefixes {
		if strings.HasPrefix(id, fp.prefix) {
			return fp.family
		}
	}
	return FamilyUnknown
}

// Bound is a static min/max corridor for one telemetry key. Missing ends
// are open.
type Bound struct {
	Min *float64 `yaml:"min"`
	Max *float64 `yaml:"max"`
}

// Contains reports whether v lies inside the corridor.
func (b Bound) Contains(v float64) bool {
	if b.Min != nil && v < *b.Min {
		return false
	}
	if b.Max != nil && v > *b.Max {
		return false
	}
	return true
}

// SeverityOverride maps a matched event value to an escalated severity.
type SeverityOverride struct {
	Value    string             `yaml:"value"`
	Severity contracts.Severity `yaml:"severity"`
}

// RuleMatch holds the event-selection criteria of a rule.
type RuleMatch struct {
	Event      string   `yaml:"event"`
	GroupBy    string   `yaml:"group_by"`
	Values     []string `yaml:"values"`
	ActorNotIn []string `yaml:"actor_not_in"` // actors in this list ARE allowed
}

// Rule is one declarative detection rule from rules.yaml.
type Rule struct {
	ID           string             `yaml:"id"`
	Name         string             `yaml:"name"`
	ThreatType   string             `yaml:"threat_type"`
	Enabled      *bool              `yaml:"enabled"`
	Match        RuleMatch          `yaml:"match"`
	WindowSec    float64            `yaml:"window_sec"`
	Threshold    int                `yaml:"threshold"`
	Severity     contracts.Severity `yaml:"severity"`
	Confidence   float64            `yaml:"confidence"`
	Bounds       map[string]Bound   `yaml:"bounds"`
	Delta        map[string]float64 `yaml:"delta"`
	Overrides    []SeverityOverride `yaml:"severity_override"`
	ResponseHint string             `yaml:"response_hint"`

	Family RuleFamily `yaml:"-"`
}

// IsEnabled reports whether the rule participates in detection.
// Rules are enabled unless the config says otherwise.
func (r Rule) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// RulesConfig is the parsed rules.yaml.
type RulesConfig struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads and parses rules.yaml from path. A missing or malformed
// file is fatal: no analysis may start without rules.
func LoadRules(path string) (*RulesConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, common.WrapError(
			common.NewError("E2001", "rules config unreadable", map[string]interface{}{"path": path}),
			err.Error(), nil)
	}

	var cfg RulesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, common.NewError("E2001", "rules config malformed: "+err.Error(), map[string]interface{}{
			"path": path,
		})
	}

	for i := range cfg.Rules {
		r := &cfg.Rules[i]
		r.Family = familyForID(r.ID)
		if r.WindowSec < 0 {
			return nil, common.NewError("E2002", "window_sec must be >= 0", map[string]interface{}{
				"rule": r.ID,
			})
		}
		if r.Family == FamilyUnknown {
			common.Debug("unknown rule family, rule will be skipped: " + r.ID)
		}
	}

	return &cfg, nil
}
