package gen

import (
	"slices"
	"sort"
	"strconv"
	"strings"

	"bridge-generator/internal/ir"
)

const anyImport = "from typing import Any"

// PyType renders a target descriptor as a Python type annotation.
func PyType(t ir.TypeDescriptor) string {
	switch t.Kind {
	case ir.KindPrimitive, ir.KindNamed:
		return t.Name
	case ir.KindArray:
		return "list[" + PyType(t.Inner()) + "]"
	case ir.KindOptional:
		inner := PyType(t.Inner())
		if inner == "None" {
			return inner
		}

		return inner + " | None"
	case ir.KindRecord:
		return "dict[" + PyType(t.KeyType()) + ", " + PyType(t.Inner()) + "]"
	case ir.KindUnion:
		parts := make([]string, 0, len(t.Variants))
		for _, v := range t.Variants {
			parts = append(parts, PyType(v))
		}

		return strings.Join(parts, " | ")
	default:
		return "Any"
	}
}

// importSet collects import lines and class references for one module.
type importSet struct {
	lines   map[string]bool
	classes map[string]bool
}

func newImportSet() *importSet {
	return &importSet{lines: map[string]bool{}, classes: map[string]bool{}}
}

func (s *importSet) add(lines ...string) {
	for _, l := range lines {
		if l != "" {
			s.lines[l] = true
		}
	}
}

// addType records what t needs: import lines for primitives with a known
// import and class names for Named references.
func (s *importSet) addType(t ir.TypeDescriptor, imports map[string]string) {
	switch t.Kind {
	case ir.KindPrimitive:
		s.add(imports[t.Name])
	case ir.KindNamed:
		s.classes[t.Name] = true
	case ir.KindUnknown:
		s.add(anyImport)
	}

	if t.Elem != nil {
		s.addType(*t.Elem, imports)
	}

	if t.Key != nil {
		s.addType(*t.Key, imports)
	}

	for _, v := range t.Variants {
		s.addType(v, imports)
	}
}

// Lines returns the import lines, sorted.
func (s *importSet) Lines() []string {
	out := make([]string, 0, len(s.lines))
	for l := range s.lines {
		out = append(out, l)
	}

	sort.Strings(out)

	return out
}

// Classes returns the referenced class names, sorted, minus local ones.
func (s *importSet) Classes(local ...string) []string {
	var out []string

	for c := range s.classes {
		if !slices.Contains(local, c) {
			out = append(out, c)
		}
	}

	sort.Strings(out)

	return out
}

// pyString quotes s as a Python string literal.
func pyString(s string) string {
	return strconv.Quote(s)
}

// enumMember turns an enum value into an upper-case member name.
func enumMember(value string) string {
	var b strings.Builder

	for _, r := range strings.ToUpper(value) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	out := strings.Trim(b.String(), "_")

	switch {
	case out == "":
		return "VALUE"
	case out[0] >= '0' && out[0] <= '9':
		return "V_" + out
	default:
		return out
	}
}
