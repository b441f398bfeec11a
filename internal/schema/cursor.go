package schema

import (
	"strings"
)

// cursor walks the tokens of one statement.
type cursor struct {
	toks []Token
	pos  int
}

func (c *cursor) done() bool {
	return c.pos >= len(c.toks)
}

func (c *cursor) peek() Token {
	return c.peekAt(0)
}

func (c *cursor) peekAt(off int) Token {
	if c.pos+off >= len(c.toks) {
		return Token{Kind: TokenPunct, Text: ""}
	}

	return c.toks[c.pos+off]
}

func (c *cursor) next() Token {
	tok := c.peek()
	if !c.done() {
		c.pos++
	}

	return tok
}

// keyword consumes the given identifier sequence if it is next, ignoring case.
func (c *cursor) keyword(words ...string) bool {
	for i, w := range words {
		if !c.peekAt(i).Is(w) {
			return false
		}
	}

	c.pos += len(words)

	return true
}

// ident consumes an identifier and returns its folded name.
func (c *cursor) ident() (string, bool) {
	tok := c.peek()

	switch tok.Kind {
	case TokenIdent:
		c.pos++
		return strings.ToLower(tok.Text), true
	case TokenQuotedIdent:
		c.pos++
		return tok.Text, true
	default:
		return "", false
	}
}

// qualifiedName consumes [schema.]name and drops the public schema.
func (c *cursor) qualifiedName() (string, bool) {
	first, ok := c.ident()
	if !ok {
		return "", false
	}

	if !c.peek().IsPunct(".") {
		return first, true
	}

	c.pos++

	second, ok := c.ident()
	if !ok {
		return "", false
	}

	if first == "public" {
		return second, true
	}

	return first + "." + second, true
}

// group consumes a balanced parenthesized group and returns its inner tokens.
func (c *cursor) group() ([]Token, bool) {
	if !c.peek().IsPunct("(") {
		return nil, false
	}

	start := c.pos + 1
	depth := 0

	for !c.done() {
		tok := c.next()

		switch {
		case tok.IsPunct("("):
			depth++
		case tok.IsPunct(")"):
			depth--
			if depth == 0 {
				return c.toks[start : c.pos-1], true
			}
		}
	}

	return nil, false
}

// until consumes tokens up to, but not including, the first top-level token
// for which stop returns true.
func (c *cursor) until(stop func(Token) bool) []Token {
	start := c.pos
	depth := 0

	for !c.done() {
		tok := c.peek()
		if depth == 0 && stop(tok) {
			break
		}

		switch {
		case tok.IsPunct("(") || tok.IsPunct("["):
			depth++
		case tok.IsPunct(")") || tok.IsPunct("]"):
			depth--
		}

		c.pos++
	}

	return c.toks[start:c.pos]
}

// splitTopLevel splits tokens on commas outside parentheses.
func splitTopLevel(toks []Token) [][]Token {
	var (
		out   [][]Token
		start int
		depth int
	)

	for i, tok := range toks {
		switch {
		case tok.IsPunct("(") || tok.IsPunct("["):
			depth++
		case tok.IsPunct(")") || tok.IsPunct("]"):
			depth--
		case tok.IsPunct(",") && depth == 0:
			out = append(out, toks[start:i])
			start = i + 1
		}
	}

	if start < len(toks) {
		out = append(out, toks[start:])
	}

	return out
}

// render turns tokens back into compact SQL text.
func render(toks []Token) string {
	var b strings.Builder

	for i, tok := range toks {
		if i > 0 && needsSpace(toks[i-1], tok) {
			b.WriteByte(' ')
		}

		switch tok.Kind {
		case TokenString:
			b.WriteString("'" + strings.ReplaceAll(tok.Text, "'", "''") + "'")
		case TokenQuotedIdent:
			b.WriteString(`"` + strings.ReplaceAll(tok.Text, `"`, `""`) + `"`)
		case TokenDollarString:
			b.WriteString("$$" + tok.Text + "$$")
		default:
			b.WriteString(tok.Text)
		}
	}

	return b.String()
}

func needsSpace(prev, cur Token) bool {
	switch {
	case cur.IsPunct(",") || cur.IsPunct(")") || cur.IsPunct(".") || cur.IsPunct("]"):
		return false
	case prev.IsPunct("(") || prev.IsPunct(".") || prev.IsPunct("["):
		return false
	case cur.IsPunct("(") && (prev.Kind == TokenIdent || prev.Kind == TokenQuotedIdent):
		return false
	case cur.IsPunct("["):
		return false
	case cur.Text == "::" || prev.Text == "::":
		return false
	}

	return true
}
