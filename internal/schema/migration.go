package schema

import (
	"bridge-generator/internal/diagnostic"
)

// Migration is one migration file's text.
type Migration struct {
	Path    string
	Content string
}

// SplitStatements tokenizes input and groups tokens into statements on
// top-level semicolons. On a tokenizer error the statements completed so
// far are returned together with the error.
func SplitStatements(input string) ([][]Token, error) {
	var (
		out  [][]Token
		cur  []Token
		fail error
	)

	for tok, err := range Tokenize(input) {
		if err != nil {
			fail = err
			break
		}

		if tok.IsPunct(";") {
			if len(cur) > 0 {
				out = append(out, cur)
			}

			cur = nil

			continue
		}

		cur = append(cur, tok)
	}

	if fail == nil && len(cur) > 0 {
		out = append(out, cur)
	}

	return out, fail
}

// ParseMigration parses every statement of a migration file. Statements
// that fail to parse are reported and omitted.
func ParseMigration(m Migration) ([]Statement, []diagnostic.Diagnostic) {
	var diags []diagnostic.Diagnostic

	groups, err := SplitStatements(m.Content)
	if err != nil {
		diags = append(diags, diagnostic.Warningf(diagnostic.CodeSchemaFold, m.Path,
			"%s: tokenizing stopped, remaining statements skipped: %v", m.Path, err))
	}

	stmts := make([]Statement, 0, len(groups))

	for _, toks := range groups {
		st, err := ParseStatement(toks)
		st.Source = m.Path

		if err != nil {
			diags = append(diags, diagnostic.Warningf(diagnostic.CodeSchemaFold, st.Table,
				"%s: cannot parse statement, skipped: %v", st.Location(), err))

			continue
		}

		stmts = append(stmts, st)
	}

	return stmts, diags
}

// Replay folds every statement of m, in order, into s.
func Replay(s Schema, m Migration) (Schema, []diagnostic.Diagnostic) {
	stmts, diags := ParseMigration(m)

	for _, st := range stmts {
		var more []diagnostic.Diagnostic

		s, more = Apply(s, st)
		diags = append(diags, more...)
	}

	return s, diags
}

// ReplayAll folds migrations in the order given.
func ReplayAll(migrations []Migration) (Schema, []diagnostic.Diagnostic) {
	var (
		s     Schema
		diags []diagnostic.Diagnostic
	)

	for _, m := range migrations {
		var more []diagnostic.Diagnostic

		s, more = Replay(s, m)
		diags = append(diags, more...)
	}

	return s, diags
}
