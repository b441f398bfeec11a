package scan

import (
	"slices"
	"strings"
	"unicode"

	"bridge-generator/internal/ir"
)

var primitiveTypes = []string{
	"string", "number", "boolean", "bigint", "symbol",
	"any", "unknown", "void", "null", "undefined", "object", "never",
	"Date",
}

// ParseTypeExpr converts TypeScript type text into a TypeDescriptor.
// It never fails: text outside the supported grammar becomes ir.Unknown
// carrying the original text.
func ParseTypeExpr(text string) ir.TypeDescriptor {
	text = strings.TrimSpace(text)
	if text == "" {
		return ir.Unknown("")
	}

	p := &typeParser{src: text, toks: lexType(text)}

	t, ok := p.union()
	if !ok || !p.done() {
		return ir.Unknown(text)
	}

	return t
}

type typeTok struct {
	text  string
	start int
	end   int
}

// lexType splits type text into identifiers, literals, and punctuation.
// Braced and bracketed groups that the grammar treats as opaque are kept
// as single tokens.
func lexType(s string) []typeTok {
	var toks []typeTok

	for i := 0; i < len(s); {
		c := s[i]

		switch {
		case unicode.IsSpace(rune(c)):
			i++
		case c == '\'' || c == '"' || c == '`':
			j := skipString(s, i)
			toks = append(toks, typeTok{text: s[i:j], start: i, end: j})
			i = j
		case c == '{':
			j := matchClose(s, i)
			if j < 0 {
				j = len(s) - 1
			}

			toks = append(toks, typeTok{text: s[i : j+1], start: i, end: j + 1})
			i = j + 1
		case c == '=' && i+1 < len(s) && s[i+1] == '>':
			toks = append(toks, typeTok{text: "=>", start: i, end: i + 2})
			i += 2
		case isIdentByte(c) || c == '-' && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '9':
			j := i + 1
			for j < len(s) && (isIdentByte(s[j]) || s[j] == '.') {
				j++
			}

			toks = append(toks, typeTok{text: s[i:j], start: i, end: j})
			i = j
		default:
			toks = append(toks, typeTok{text: string(c), start: i, end: i + 1})
			i++
		}
	}

	return toks
}

type typeParser struct {
	src  string
	toks []typeTok
	pos  int
}

func (p *typeParser) done() bool {
	return p.pos >= len(p.toks)
}

func (p *typeParser) peek() string {
	if p.done() {
		return ""
	}

	return p.toks[p.pos].text
}

func (p *typeParser) accept(s string) bool {
	if p.peek() == s {
		p.pos++
		return true
	}

	return false
}

// raw returns the source text of tokens [from, p.pos).
func (p *typeParser) raw(from int) string {
	if from >= p.pos {
		return ""
	}

	return strings.TrimSpace(p.src[p.toks[from].start:p.toks[p.pos-1].end])
}

func (p *typeParser) union() (ir.TypeDescriptor, bool) {
	p.accept("|")

	var (
		parts    []ir.TypeDescriptor
		nullable bool
	)

	for {
		t, ok := p.intersection()
		if !ok {
			return t, false
		}

		if t.Kind == ir.KindPrimitive && (t.Name == "null" || t.Name == "undefined") {
			nullable = true
		} else if !slices.ContainsFunc(parts, t.Equal) {
			parts = append(parts, t)
		}

		if !p.accept("|") {
			break
		}
	}

	var out ir.TypeDescriptor

	switch len(parts) {
	case 0:
		return ir.Primitive("null"), true
	case 1:
		out = parts[0]
	default:
		out = ir.UnionOf(parts...)
	}

	if nullable {
		out = ir.OptionalOf(out)
	}

	return out, true
}

func (p *typeParser) intersection() (ir.TypeDescriptor, bool) {
	start := p.pos

	t, ok := p.postfix()
	if !ok {
		return t, false
	}

	if p.peek() != "&" {
		return t, true
	}

	for p.accept("&") {
		if _, ok := p.postfix(); !ok {
			return ir.Unknown(p.raw(start)), false
		}
	}

	return ir.Unknown(p.raw(start)), true
}

func (p *typeParser) postfix() (ir.TypeDescriptor, bool) {
	start := p.pos

	t, ok := p.primary()
	if !ok {
		return t, false
	}

	for p.peek() == "[" {
		p.pos++

		if p.accept("]") {
			t = ir.ArrayOf(t)
			continue
		}

		// indexed access such as T["key"]
		for !p.done() && p.peek() != "]" {
			p.pos++
		}

		if !p.accept("]") {
			return t, false
		}

		t = ir.Unknown(p.raw(start))
	}

	return t, true
}

func (p *typeParser) primary() (ir.TypeDescriptor, bool) {
	if p.done() {
		return ir.Unknown(""), false
	}

	start := p.pos
	tok := p.peek()

	switch {
	case tok == "(":
		p.pos++

		t, ok := p.union()
		if !ok || !p.accept(")") {
			return p.skipFunctionType(start)
		}

		if p.peek() == "=>" {
			return p.skipFunctionType(start)
		}

		return t, true
	case strings.HasPrefix(tok, "{"):
		p.pos++
		return ir.Unknown(tok), true
	case tok == "[":
		depth := 0

		for !p.done() {
			switch p.peek() {
			case "[":
				depth++
			case "]":
				depth--
			}

			p.pos++

			if depth == 0 {
				return ir.Unknown(p.raw(start)), true
			}
		}

		return ir.Unknown(p.raw(start)), false
	case tok[0] == '\'' || tok[0] == '"' || tok[0] == '`':
		p.pos++
		return ir.Primitive("string"), true
	case tok[0] == '-' || (tok[0] >= '0' && tok[0] <= '9'):
		p.pos++
		return ir.Primitive("number"), true
	case tok == "true" || tok == "false":
		p.pos++
		return ir.Primitive("boolean"), true
	case tok == "keyof" || tok == "typeof" || tok == "readonly" || tok == "unique":
		p.pos++

		inner, ok := p.postfix()
		if tok == "readonly" {
			return inner, ok
		}

		return ir.Unknown(p.raw(start)), ok
	case isIdentByte(tok[0]):
		p.pos++
		return p.reference(tok, start)
	}

	return ir.Unknown(tok), false
}

// skipFunctionType consumes a parenthesized parameter list and arrow return
// type, which the model does not represent.
func (p *typeParser) skipFunctionType(start int) (ir.TypeDescriptor, bool) {
	p.pos = start
	depth := 0

	for !p.done() {
		switch p.peek() {
		case "(":
			depth++
		case ")":
			depth--
		}

		p.pos++

		if depth == 0 {
			break
		}
	}

	if !p.accept("=>") {
		return ir.Unknown(p.raw(start)), false
	}

	if _, ok := p.union(); !ok {
		return ir.Unknown(p.raw(start)), false
	}

	return ir.Unknown(p.raw(start)), true
}

func (p *typeParser) reference(name string, start int) (ir.TypeDescriptor, bool) {
	if !p.accept("<") {
		if slices.Contains(primitiveTypes, name) {
			return ir.Primitive(name), true
		}

		return ir.Named(name), true
	}

	var args []ir.TypeDescriptor

	for {
		arg, ok := p.union()
		if !ok {
			return arg, false
		}

		args = append(args, arg)

		if !p.accept(",") {
			break
		}
	}

	if !p.accept(">") {
		return ir.Unknown(p.raw(start)), false
	}

	switch {
	case (name == "Array" || name == "ReadonlyArray" || name == "Set") && len(args) == 1:
		return ir.ArrayOf(args[0]), true
	case (name == "Promise" || name == "Readonly" || name == "Awaited") && len(args) == 1:
		return args[0], true
	case (name == "Record" || name == "Map") && len(args) == 2:
		return ir.RecordOf(args[0], args[1]), true
	case slices.Contains([]string{"Partial", "Required", "Pick", "Omit", "ReturnType", "Parameters", "Exclude", "Extract", "NonNullable"}, name):
		return ir.Unknown(p.raw(start)), true
	default:
		return ir.Named(name), true
	}
}
