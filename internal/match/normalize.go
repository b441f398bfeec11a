package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeIdent normalizes an identifier for fuzzy matching.
// The normalization pipeline:
// 1. Tokenize CamelCase and separators.
// 2. Case-fold to lower.
// 3. Join without separators.
func NormalizeIdent(s string) string {
	return strings.Join(TokenizeIdent(s), "")
}

// tokenizeCamelCase splits a CamelCase or camelCase string into tokens.
// Any rune that is neither a letter nor a digit separates tokens.
// Examples:
//   - "OrderID" -> ["Order", "ID"]
//   - "customer_name" -> ["customer", "name"]
//   - "XMLParser" -> ["XML", "Parser"]
//   - "send-email~2" -> ["send", "email", "2"]
func tokenizeCamelCase(s string) []string {
	if s == "" {
		return nil
	}

	var (
		tokens  []string
		current strings.Builder
	)

	runes := []rune(s)
	for i := range runes {
		r := runes[i]

		// Handle separators - start a new token
		if isSeparator(r) {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}

			continue
		}

		if i > 0 && shouldStartNewToken(runes, i) && current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}

		current.WriteRune(r)
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// shouldStartNewToken determines if a new token should start at position i.
func shouldStartNewToken(runes []rune, i int) bool {
	r := runes[i]
	prevRune := runes[i-1]
	isUpper := unicode.IsUpper(r)
	isPrevUpper := unicode.IsUpper(prevRune)

	// "orderID" -> split before 'I'
	if isUpper && !isPrevUpper && !isSeparator(prevRune) {
		return true
	}

	// "XMLParser" -> "XML" + "Parser", split before 'P'
	hasNextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

	return isUpper && isPrevUpper && hasNextLower
}

// TokenizeIdent splits an identifier into normalized lowercase tokens.
func TokenizeIdent(s string) []string {
	tokens := tokenizeCamelCase(s)
	for i, t := range tokens {
		tokens[i] = strings.ToLower(t)
	}

	return tokens
}

// Snake converts an identifier to snake_case. A leading digit gets an
// underscore prefix so the result is a valid identifier.
func Snake(s string) string {
	out := strings.Join(TokenizeIdent(s), "_")
	if out != "" && unicode.IsDigit(rune(out[0])) {
		out = "_" + out
	}

	return out
}

// Kebab converts an identifier to kebab-case, as used in URL paths.
func Kebab(s string) string {
	return strings.Join(TokenizeIdent(s), "-")
}

var titleCaser = cases.Title(language.Und)

// Pascal converts an identifier to PascalCase.
func Pascal(s string) string {
	var b strings.Builder

	for _, t := range TokenizeIdent(s) {
		b.WriteString(titleCaser.String(t))
	}

	out := b.String()
	if out != "" && unicode.IsDigit(rune(out[0])) {
		out = "T" + out
	}

	return out
}
