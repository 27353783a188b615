package contracts_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RostislavKrotenko/cybersecurity-smartenergy/pkg/contracts"
)

func TestSeverityOrdering(t *testing.T) {
	ordered := []contracts.Severity{
		contracts.SeverityLow,
		contracts.SeverityMedium,
		contracts.SeverityHigh,
		contracts.SeverityCritical,
	}

	for i := 1; i < len(ordered); i++ {
		assert.Greater(t, ordered[i].Rank(), ordered[i-1].Rank(),
			"%s must rank above %s", ordered[i], ordered[i-1])
	}
}

func TestSeverityWeight(t *testing.T) {
	tests := []struct {
		severity contracts.Severity
		weight   float64
	}{
		{contracts.SeverityLow, 0.2},
		{contracts.SeverityMedium, 0.4},
		{contracts.SeverityHigh, 0.7},
		{contracts.SeverityCritical, 1.0},
		{contracts.Severity("bogus"), 0.5},
	}

	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			assert.Equal(t, tt.weight, tt.severity.Weight())
		})
	}
}

func TestSeverityValid(t *testing.T) {
	assert.True(t, contracts.SeverityLow.Valid())
	assert.True(t, contracts.SeverityCritical.Valid())
	assert.False(t, contracts.Severity("").Valid())
	assert.False(t, contracts.Severity("severe").Valid())
}

func TestMaxSeverity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     contracts.Severity
		expected contracts.Severity
	}{
		{"critical beats high", contracts.SeverityHigh, contracts.SeverityCritical, contracts.SeverityCritical},
		{"order independent", contracts.SeverityCritical, contracts.SeverityHigh, contracts.SeverityCritical},
		{"equal keeps first", contracts.SeverityMedium, contracts.SeverityMedium, contracts.SeverityMedium},
		{"medium beats unknown", contracts.Severity("bogus"), contracts.SeverityMedium, contracts.SeverityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, contracts.MaxSeverity(tt.a, tt.b))
		})
	}
}
