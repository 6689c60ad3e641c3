// Package rules provides the built-in SQL validation rules.
//
// Importing the package registers the rules with the lint registry.
//
// Rules in this package:
//   - SQ01: Query must not be empty
//   - SQ02: Parentheses must balance
//   - SQ03: String literals must be closed
//   - SQ04: Destructive statements (DROP, TRUNCATE)
//   - SQ05: Block comments must be closed
//   - SQ06: Quoted identifiers must be closed
//   - SQ07: UPDATE or DELETE without WHERE
package rules
