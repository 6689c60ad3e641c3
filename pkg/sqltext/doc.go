// Package sqltext implements lightweight, parser-free SQL text utilities:
// formatting, minification, table extraction, validation, query
// classification and variable substitution.
//
// Every function works on the lossless token stream produced by
// pkg/lexer, so string literals, quoted identifiers and comments are never
// mistaken for SQL structure. None of the functions returns an error; a
// malformed query is still text, and Validate reports what is wrong with it.
package sqltext
