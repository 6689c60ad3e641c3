// Package lint provides the rule framework behind SQL validation.
//
// Rules are data-driven RuleDef values registered from init() functions and
// run by an Analyzer over the token stream of a query. A Config disables
// rules or overrides their severity:
//
//	cfg := lint.NewConfig()
//	cfg.Disable("SQ04")
//	cfg.SetSeverity("SQ07", lint.SeverityError)
//	diags := lint.NewAnalyzer(cfg).Analyze(sql)
//
// Rules run in priority order, so the first error-level diagnostic is the
// most fundamental problem with the query.
package lint
