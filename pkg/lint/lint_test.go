package lint_test

import (
	"strings"
	"testing"

	"github.com/leapstack-labs/sqlkit/pkg/lint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var shoutRule = lint.RuleDef{
	ID:       "TT01",
	Name:     "test.shout",
	Group:    "test",
	Severity: lint.SeverityHint,
	Priority: 2,
	Check: func(in *lint.Input, opts map[string]any) []lint.Diagnostic {
		if strings.ToUpper(in.SQL) != in.SQL {
			return nil
		}
		msg := "shouting"
		if m, ok := opts["message"].(string); ok {
			msg = m
		}
		return []lint.Diagnostic{{Severity: lint.SeverityHint, Message: msg}}
	},
}

var emptyRule = lint.RuleDef{
	ID:       "TT02",
	Name:     "test.first",
	Group:    "test",
	Severity: lint.SeverityError,
	Priority: 1,
	Check: func(in *lint.Input, _ map[string]any) []lint.Diagnostic {
		return []lint.Diagnostic{{Severity: lint.SeverityError, Message: "always"}}
	},
}

func TestAnalyzer_WithRules(t *testing.T) {
	a := lint.NewAnalyzerWithRules(nil, []lint.RuleDef{shoutRule, emptyRule})

	diags := a.Analyze("SELECT 1")
	require.Len(t, diags, 2)
	assert.Equal(t, "TT02", diags[0].RuleID, "lower priority runs first")
	assert.Equal(t, "TT01", diags[1].RuleID, "rule ID is filled in")
}

func TestAnalyzer_Config(t *testing.T) {
	cfg := lint.NewConfig().
		Disable("TT02").
		SetSeverity("TT01", lint.SeverityWarning).
		SetRuleOptions("TT01", map[string]any{"message": "quiet please"})

	diags := lint.NewAnalyzerWithRules(cfg, []lint.RuleDef{shoutRule, emptyRule}).Analyze("SELECT 1")
	require.Len(t, diags, 1)
	assert.Equal(t, lint.SeverityWarning, diags[0].Severity)
	assert.Equal(t, "quiet please", diags[0].Message)
}

func TestConfig_NilSafe(t *testing.T) {
	var cfg *lint.Config
	assert.False(t, cfg.IsDisabled("X"))
	assert.Equal(t, lint.SeverityInfo, cfg.GetSeverity("X", lint.SeverityInfo))
	assert.Nil(t, cfg.GetRuleOptions("X"))
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want lint.Severity
		ok   bool
	}{
		{"error", lint.SeverityError, true},
		{"WARNING", lint.SeverityWarning, true},
		{" info ", lint.SeverityInfo, true},
		{"hint", lint.SeverityHint, true},
		{"fatal", lint.SeverityWarning, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := lint.ParseSeverity(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestFilterBySeverity(t *testing.T) {
	diags := []lint.Diagnostic{
		{RuleID: "A", Severity: lint.SeverityError},
		{RuleID: "B", Severity: lint.SeverityWarning},
		{RuleID: "C", Severity: lint.SeverityHint},
	}
	assert.Len(t, lint.FilterBySeverity(diags, lint.SeverityWarning), 2)
	assert.Len(t, lint.FilterBySeverity(diags, lint.SeverityError), 1)
	assert.True(t, lint.HasErrors(diags))
	assert.False(t, lint.HasErrors(diags[1:]))
}

func TestNewInput(t *testing.T) {
	in := lint.NewInput("SELECT 1; SELECT 2")
	assert.Len(t, in.Statements, 2)
	assert.NotEmpty(t, in.Tokens)
}
