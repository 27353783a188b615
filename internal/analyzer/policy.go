package analyzer

import (
	"sort"

	"go.uber.org/zap"

	"github.com/RostislavKrotenko/cybersecurity-smartenergy/internal/config"
	"github.com/RostislavKrotenko/cybersecurity-smartenergy/pkg/common"
)

// GetModifiers returns the per-threat modifier set of the named policy.
// An unknown policy warns and yields the empty set, which behaves as the
// all-1.0 baseline everywhere downstream.
func GetModifiers(cfg *config.PoliciesConfig, name string) config.ModifierSet {
	policy, ok := cfg.Policies[name]
	if !ok {
		common.Warn("policy not found, using default multipliers (1.0)",
			zap.String("policy", name))
		return config.ModifierSet{}
	}
	return policy.Modifiers
}

// ListPolicyNames returns the known policy names in config file order.
func ListPolicyNames(cfg *config.PoliciesConfig) []string {
	names := make([]string, len(cfg.Names))
	copy(names, cfg.Names)
	return names
}

// ControlRanking scores one policy's control set.
type ControlRanking struct {
	Policy          string   `json:"policy"`
	EnabledControls []string `json:"enabled_controls"`
	AvgMTTDMult     float64  `json:"avg_mttd_mult"`
	AvgMTTRMult     float64  `json:"avg_mttr_mult"`
	Effectiveness   float64  `json:"effectiveness"`
}

// RankControls compares the selected policies by how much their modifiers
// shrink average detection and recovery times, descending by effectiveness.
// Enabled controls are the mapping-valued control entries with enabled: true.
func RankControls(cfg *config.PoliciesConfig, selected []string) []ControlRanking {
	rankings := make([]ControlRanking, 0, len(selected))

	for _, name := range selected {
		policy := cfg.Policies[name]

		avgMTTD, avgMTTR := 1.0, 1.0
		if len(policy.Modifiers) > 0 {
			mttdSum, mttrSum := 0.0, 0.0
			for _, mod := range policy.Modifiers {
				mttdSum += mod.MTTDMultiplier
				mttrSum += mod.MTTRMultiplier
			}
			n := float64(len(policy.Modifiers))
			avgMTTD = mttdSum / n
			avgMTTR = mttrSum / n
		}

		var enabled []string
		for ctrl, v := range policy.Controls {
			if v.Structured && v.Enabled {
				enabled = append(enabled, ctrl)
			}
		}
		sort.Strings(enabled)

		rankings = append(rankings, ControlRanking{
			Policy:          name,
			EnabledControls: enabled,
			AvgMTTDMult:     round3(avgMTTD),
			AvgMTTRMult:     round3(avgMTTR),
			Effectiveness:   round3(1.0 - (avgMTTD+avgMTTR)/2),
		})
	}

	sort.SliceStable(rankings, func(i, j int) bool {
		return rankings[i].Effectiveness > rankings[j].Effectiveness
	})
	return rankings
}
