package ir

import (
	"strings"
)

// TypeKind tags the variant held by a TypeDescriptor.
type TypeKind int

const (
	KindUnknown   TypeKind = iota // unknown
	KindPrimitive                 // primitive
	KindArray                     // array
	KindOptional                  // optional
	KindRecord                    // record
	KindUnion                     // union
	KindNamed                     // named
)

// TypeDescriptor is a tagged variant describing a type independently of any
// source or target language.
//
// Which fields are meaningful depends on Kind:
//   - Primitive: Name is the primitive name.
//   - Array: Elem is the element type.
//   - Optional: Elem is the inner type.
//   - Record: Key and Elem are the key and value types.
//   - Union: Variants lists the alternatives.
//   - Named: Name is the referenced identifier.
//   - Unknown: Name is the raw source text, possibly empty.
type TypeDescriptor struct {
	Kind     TypeKind         `json:"kind"`
	Name     string           `json:"name,omitempty"`
	Elem     *TypeDescriptor  `json:"elem,omitempty"`
	Key      *TypeDescriptor  `json:"key,omitempty"`
	Variants []TypeDescriptor `json:"variants,omitempty"`
}

// Primitive returns a primitive descriptor.
func Primitive(name string) TypeDescriptor {
	return TypeDescriptor{Kind: KindPrimitive, Name: name}
}

// ArrayOf returns an array descriptor over elem.
func ArrayOf(elem TypeDescriptor) TypeDescriptor {
	return TypeDescriptor{Kind: KindArray, Elem: &elem}
}

// OptionalOf wraps inner as optional. Wrapping an optional is a no-op.
func OptionalOf(inner TypeDescriptor) TypeDescriptor {
	if inner.Kind == KindOptional {
		return inner
	}

	return TypeDescriptor{Kind: KindOptional, Elem: &inner}
}

// RecordOf returns a key/value record descriptor.
func RecordOf(key, value TypeDescriptor) TypeDescriptor {
	return TypeDescriptor{Kind: KindRecord, Key: &key, Elem: &value}
}

// UnionOf returns a union of the given variants. A single variant is
// returned unwrapped.
func UnionOf(variants ...TypeDescriptor) TypeDescriptor {
	if len(variants) == 1 {
		return variants[0]
	}

	return TypeDescriptor{Kind: KindUnion, Variants: append([]TypeDescriptor(nil), variants...)}
}

// Named returns a reference to a declared type.
func Named(id string) TypeDescriptor {
	return TypeDescriptor{Kind: KindNamed, Name: id}
}

// Unknown returns an opaque descriptor carrying the raw source text.
func Unknown(raw string) TypeDescriptor {
	return TypeDescriptor{Kind: KindUnknown, Name: raw}
}

// Inner returns the element, inner, or value type, or Unknown when absent.
func (t TypeDescriptor) Inner() TypeDescriptor {
	if t.Elem == nil {
		return Unknown("")
	}

	return *t.Elem
}

// KeyType returns the record key type, or Unknown when absent.
func (t TypeDescriptor) KeyType() TypeDescriptor {
	if t.Key == nil {
		return Unknown("")
	}

	return *t.Key
}

// IsUnknown reports whether t is the Unknown variant.
func (t TypeDescriptor) IsUnknown() bool {
	return t.Kind == KindUnknown
}

// Contains reports whether kind occurs anywhere in t.
func (t TypeDescriptor) Contains(kind TypeKind) bool {
	if t.Kind == kind {
		return true
	}

	if t.Elem != nil && t.Elem.Contains(kind) {
		return true
	}

	if t.Key != nil && t.Key.Contains(kind) {
		return true
	}

	for _, v := range t.Variants {
		if v.Contains(kind) {
			return true
		}
	}

	return false
}

// Equal reports structural equality.
func (t TypeDescriptor) Equal(o TypeDescriptor) bool {
	if t.Kind != o.Kind || t.Name != o.Name || len(t.Variants) != len(o.Variants) {
		return false
	}

	if !equalPtr(t.Elem, o.Elem) || !equalPtr(t.Key, o.Key) {
		return false
	}

	for i := range t.Variants {
		if !t.Variants[i].Equal(o.Variants[i]) {
			return false
		}
	}

	return true
}

func equalPtr(a, b *TypeDescriptor) bool {
	if a == nil || b == nil {
		return a == b
	}

	return a.Equal(*b)
}

// String renders t in a compact notation used in diagnostics and reports.
//
// Examples:
//   - "string"
//   - "string[]"
//   - "number?"
//   - "Record<string, User>"
//   - "string | number"
//   - "?{ a: 1 }" for an Unknown with raw text
func (t TypeDescriptor) String() string {
	var b strings.Builder
	t.write(&b)

	return b.String()
}

func (t TypeDescriptor) write(b *strings.Builder) {
	switch t.Kind {
	case KindPrimitive, KindNamed:
		b.WriteString(t.Name)
	case KindArray:
		inner := t.Inner()
		if inner.Kind == KindUnion || inner.Kind == KindOptional {
			b.WriteString("(")
			inner.write(b)
			b.WriteString(")")
		} else {
			inner.write(b)
		}

		b.WriteString("[]")
	case KindOptional:
		inner := t.Inner()
		if inner.Kind == KindUnion {
			b.WriteString("(")
			inner.write(b)
			b.WriteString(")")
		} else {
			inner.write(b)
		}

		b.WriteString("?")
	case KindRecord:
		b.WriteString("Record<")
		t.KeyType().write(b)
		b.WriteString(", ")
		t.Inner().write(b)
		b.WriteString(">")
	case KindUnion:
		for i, v := range t.Variants {
			if i > 0 {
				b.WriteString(" | ")
			}

			v.write(b)
		}
	default:
		b.WriteString("?")
		b.WriteString(t.Name)
	}
}
