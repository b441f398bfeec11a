package schema

import (
	"fmt"
	"iter"
	"strings"
	"unicode"
)

// TokenKind classifies a SQL token.
type TokenKind int

const (
	TokenIdent TokenKind = iota
	TokenQuotedIdent
	TokenString
	TokenNumber
	TokenPunct
	TokenOperator
	TokenDollarString
)

// Token is one lexical unit of SQL text. Whitespace and comments are never
// emitted.
type Token struct {
	Kind TokenKind
	// Text is the token as written, except for quoted identifiers and
	// strings where it holds the unescaped contents.
	Text string
	Line int
}

// Is reports whether t is an unquoted identifier equal to word, ignoring case.
func (t Token) Is(word string) bool {
	return t.Kind == TokenIdent && strings.EqualFold(t.Text, word)
}

// IsPunct reports whether t is the given punctuation character.
func (t Token) IsPunct(p string) bool {
	return t.Kind == TokenPunct && t.Text == p
}

// TokenIterator yields tokens until the input ends or an error occurs.
type TokenIterator iter.Seq2[Token, error]

// Tokenize returns an iterator over the tokens of input.
func Tokenize(input string) TokenIterator {
	return func(yield func(Token, error) bool) {
		tz := &tokenizer{src: []rune(input), line: 1}

		for {
			tok, ok, err := tz.next()
			if err != nil {
				yield(Token{}, err)
				return
			}

			if !ok {
				return
			}

			if !yield(tok, nil) {
				return
			}
		}
	}
}

type tokenizer struct {
	src  []rune
	pos  int
	line int
}

func (t *tokenizer) peek(off int) rune {
	if t.pos+off >= len(t.src) {
		return 0
	}

	return t.src[t.pos+off]
}

func (t *tokenizer) advance() rune {
	r := t.src[t.pos]
	t.pos++

	if r == '\n' {
		t.line++
	}

	return r
}

func (t *tokenizer) next() (Token, bool, error) {
	if err := t.skipTrivia(); err != nil {
		return Token{}, false, err
	}

	if t.pos >= len(t.src) {
		return Token{}, false, nil
	}

	line := t.line
	r := t.peek(0)

	switch {
	case r == '\'':
		s, err := t.readQuoted('\'')
		return Token{Kind: TokenString, Text: s, Line: line}, true, err
	case r == '"':
		s, err := t.readQuoted('"')
		return Token{Kind: TokenQuotedIdent, Text: s, Line: line}, true, err
	case r == '$' && (t.peek(1) == '$' || isIdentStart(t.peek(1))):
		if s, ok, err := t.readDollar(); ok || err != nil {
			return Token{Kind: TokenDollarString, Text: s, Line: line}, true, err
		}

		t.advance()

		return Token{Kind: TokenOperator, Text: "$", Line: line}, true, nil
	case (r == 'E' || r == 'e') && t.peek(1) == '\'':
		t.advance()
		s, err := t.readQuoted('\'')

		return Token{Kind: TokenString, Text: s, Line: line}, true, err
	case isIdentStart(r):
		return Token{Kind: TokenIdent, Text: t.readWhile(isIdentPart), Line: line}, true, nil
	case unicode.IsDigit(r) || (r == '.' && unicode.IsDigit(t.peek(1))):
		return Token{Kind: TokenNumber, Text: t.readNumber(), Line: line}, true, nil
	case strings.ContainsRune("(),;.[]", r):
		t.advance()
		return Token{Kind: TokenPunct, Text: string(r), Line: line}, true, nil
	default:
		return Token{Kind: TokenOperator, Text: t.readWhile(isOperator), Line: line}, true, nil
	}
}

func (t *tokenizer) skipTrivia() error {
	for t.pos < len(t.src) {
		r := t.peek(0)

		switch {
		case unicode.IsSpace(r):
			t.advance()
		case r == '-' && t.peek(1) == '-':
			for t.pos < len(t.src) && t.peek(0) != '\n' {
				t.advance()
			}
		case r == '/' && t.peek(1) == '*':
			if err := t.skipBlockComment(); err != nil {
				return err
			}
		default:
			return nil
		}
	}

	return nil
}

// skipBlockComment honours nesting, as Postgres does.
func (t *tokenizer) skipBlockComment() error {
	startLine := t.line
	depth := 0

	for t.pos < len(t.src) {
		switch {
		case t.peek(0) == '/' && t.peek(1) == '*':
			depth++
			t.advance()
			t.advance()
		case t.peek(0) == '*' && t.peek(1) == '/':
			depth--
			t.advance()
			t.advance()

			if depth == 0 {
				return nil
			}
		default:
			t.advance()
		}
	}

	return fmt.Errorf("line %d: %w", startLine, ErrUnterminatedComment)
}

// readQuoted reads a literal delimited by q where a doubled q is an escape.
func (t *tokenizer) readQuoted(q rune) (string, error) {
	startLine := t.line
	t.advance()

	var b strings.Builder

	for t.pos < len(t.src) {
		r := t.advance()
		if r != q {
			b.WriteRune(r)
			continue
		}

		if t.peek(0) == q {
			b.WriteRune(t.advance())
			continue
		}

		return b.String(), nil
	}

	return b.String(), fmt.Errorf("line %d: %w", startLine, ErrUnterminatedString)
}

// readDollar reads $tag$...$tag$. It reports ok=false without consuming
// anything when the text at the cursor is not a dollar-quote opener.
func (t *tokenizer) readDollar() (string, bool, error) {
	end := t.pos + 1
	for end < len(t.src) && isIdentPart(t.src[end]) && t.src[end] != '$' {
		end++
	}

	if end >= len(t.src) || t.src[end] != '$' {
		return "", false, nil
	}

	startLine := t.line
	tag := string(t.src[t.pos : end+1])
	body := string(t.src[end+1:])

	idx := strings.Index(body, tag)
	if idx < 0 {
		for t.pos < len(t.src) {
			t.advance()
		}

		return "", true, fmt.Errorf("line %d: %w", startLine, ErrUnterminatedDollar)
	}

	content := []rune(body[:idx])
	total := len([]rune(tag))*2 + len(content)

	for range total {
		t.advance()
	}

	return string(content), true, nil
}

func (t *tokenizer) readWhile(pred func(rune) bool) string {
	start := t.pos
	for t.pos < len(t.src) && pred(t.peek(0)) {
		t.advance()
	}

	if t.pos == start {
		t.advance()
	}

	return string(t.src[start:t.pos])
}

func (t *tokenizer) readNumber() string {
	start := t.pos
	seenDot := false

	for t.pos < len(t.src) {
		r := t.peek(0)

		switch {
		case unicode.IsDigit(r):
			t.advance()
		case r == '.' && !seenDot && unicode.IsDigit(t.peek(1)):
			seenDot = true

			t.advance()
		case (r == 'e' || r == 'E') && (unicode.IsDigit(t.peek(1)) || ((t.peek(1) == '-' || t.peek(1) == '+') && unicode.IsDigit(t.peek(2)))):
			t.advance()
			t.advance()
		default:
			return string(t.src[start:t.pos])
		}
	}

	return string(t.src[start:t.pos])
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isOperator(r rune) bool {
	return strings.ContainsRune("+-*/<>=~!@#%^&|`?:", r)
}

// AllTokens drains the iterator.
func AllTokens(input string) ([]Token, error) {
	var out []Token

	for tok, err := range Tokenize(input) {
		if err != nil {
			return out, err
		}

		out = append(out, tok)
	}

	return out, nil
}
