package lint

// Analyzer runs lint rules against SQL text.
type Analyzer struct {
	config *Config
	rules  []RuleDef // nil means the global registry
}

// NewAnalyzer creates a new analyzer with optional configuration.
func NewAnalyzer(config *Config) *Analyzer {
	if config == nil {
		config = NewConfig()
	}
	return &Analyzer{config: config}
}

// NewAnalyzerWithRules creates an analyzer over an explicit rule set instead
// of the global registry.
func NewAnalyzerWithRules(config *Config, rules []RuleDef) *Analyzer {
	a := NewAnalyzer(config)
	a.rules = append([]RuleDef(nil), rules...)
	sortRules(a.rules)
	return a
}

// Analyze runs every enabled rule against sql.
func (a *Analyzer) Analyze(sql string) []Diagnostic {
	return a.AnalyzeInput(NewInput(sql))
}

// AnalyzeInput runs every enabled rule against an already scanned input.
func (a *Analyzer) AnalyzeInput(in *Input) []Diagnostic {
	rules := a.rules
	if rules == nil {
		rules = GetAll()
	}

	var diagnostics []Diagnostic
	for _, rule := range rules {
		if a.config.IsDisabled(rule.ID) || rule.Check == nil {
			continue
		}

		diags := rule.Check(in, a.config.GetRuleOptions(rule.ID))

		for i := range diags {
			if diags[i].RuleID == "" {
				diags[i].RuleID = rule.ID
			}
			diags[i].Severity = a.config.GetSeverity(rule.ID, diags[i].Severity)
		}

		diagnostics = append(diagnostics, diags...)
	}

	return diagnostics
}
