package convert

import (
	"fmt"
	"slices"

	"bridge-generator/internal/diagnostic"
	"bridge-generator/internal/ir"
	"bridge-generator/internal/mapping"
	"bridge-generator/internal/match"
)

// maxSuggestions bounds the "did you mean" list on unresolved names.
const maxSuggestions = 3

// RegistryEntry is the converted form of one declared name.
type RegistryEntry struct {
	Target     ir.TypeDescriptor
	Confidence ir.Confidence
}

// Registry resolves Named descriptors to their converted targets. Names are
// case-sensitive.
type Registry struct {
	entries map[string]RegistryEntry
	names   []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]RegistryEntry)}
}

// Register adds name. An already registered name is kept and false returned.
func (r *Registry) Register(name string, e RegistryEntry) bool {
	if _, dup := r.entries[name]; dup {
		return false
	}

	r.entries[name] = e
	r.names = append(r.names, name)

	return true
}

// Lookup returns the entry for name.
func (r *Registry) Lookup(name string) (RegistryEntry, bool) {
	if r == nil {
		return RegistryEntry{}, false
	}

	e, ok := r.entries[name]

	return e, ok
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}

	return slices.Clone(r.names)
}

// TypeResult is the outcome of converting one descriptor.
type TypeResult struct {
	Type        ir.TypeDescriptor
	Confidence  ir.Confidence
	Diagnostics []diagnostic.Diagnostic
}

// TypeConverter maps source descriptors to target descriptors for one
// dialect. It is safe for concurrent use once the registry is complete.
type TypeConverter struct {
	rules    *mapping.DialectRules
	registry *Registry
}

// NewTypeConverter creates a converter over a dialect's rules. Either
// argument may be nil.
func NewTypeConverter(rules *mapping.DialectRules, registry *Registry) *TypeConverter {
	return &TypeConverter{rules: rules, registry: registry}
}

// Convert maps t. Subject names the entity the type belongs to and is
// attached to any diagnostics.
//
// The conversion is total: unmapped primitives take the dialect fallback,
// unresolved names become Unknown, and Unknown passes through unchanged
// tagged manual-review.
func (c *TypeConverter) Convert(t ir.TypeDescriptor, subject string) TypeResult {
	var res TypeResult

	res.Type = c.convert(t, subject, &res)

	return res
}

func (c *TypeConverter) convert(t ir.TypeDescriptor, subject string, res *TypeResult) ir.TypeDescriptor {
	switch t.Kind {
	case ir.KindPrimitive:
		return c.primitive(t.Name, subject, res)
	case ir.KindArray:
		return ir.ArrayOf(c.convert(t.Inner(), subject, res))
	case ir.KindOptional:
		return ir.OptionalOf(c.convert(t.Inner(), subject, res))
	case ir.KindRecord:
		key := c.convert(t.KeyType(), subject, res)
		return ir.RecordOf(key, c.convert(t.Inner(), subject, res))
	case ir.KindUnion:
		var variants []ir.TypeDescriptor

		for _, v := range t.Variants {
			cv := c.convert(v, subject, res)
			if !slices.ContainsFunc(variants, cv.Equal) {
				variants = append(variants, cv)
			}
		}

		return ir.UnionOf(variants...)
	case ir.KindNamed:
		return c.named(t.Name, subject, res)
	default:
		res.Confidence = ir.Worst(res.Confidence, ir.ConfidenceManualReview)
		return t
	}
}

func (c *TypeConverter) primitive(name, subject string, res *TypeResult) ir.TypeDescriptor {
	if c.rules != nil {
		if r, ok := c.rules.Lookup(name); ok {
			if r.Approximate() {
				res.Confidence = ir.Worst(res.Confidence, ir.ConfidenceApproximate)
			}

			return ir.Primitive(r.Target)
		}

		if c.rules.Fallback != "" {
			res.Confidence = ir.Worst(res.Confidence, ir.ConfidenceApproximate)
			res.Diagnostics = append(res.Diagnostics, diagnostic.Warningf(diagnostic.CodeConversionDowngrade, subject,
				"no rule for type %q; using %s", name, c.rules.Fallback))

			return ir.Primitive(c.rules.Fallback)
		}
	}

	res.Confidence = ir.Worst(res.Confidence, ir.ConfidenceManualReview)
	res.Diagnostics = append(res.Diagnostics, diagnostic.Warningf(diagnostic.CodeConversionDowngrade, subject,
		"no rule for type %q", name))

	return ir.Unknown(name)
}

func (c *TypeConverter) named(name, subject string, res *TypeResult) ir.TypeDescriptor {
	if e, ok := c.registry.Lookup(name); ok {
		res.Confidence = ir.Worst(res.Confidence, e.Confidence)
		return e.Target
	}

	d := diagnostic.Warningf(diagnostic.CodeConversionDowngrade, subject,
		"type %q is not declared in the project", name)
	if s := match.Suggest(name, c.registry.Names(), maxSuggestions); len(s) > 0 {
		d.Message += fmt.Sprintf("; did you mean %q?", s[0])
		d = d.WithSuggestions(s...)
	}

	res.Confidence = ir.Worst(res.Confidence, ir.ConfidenceManualReview)
	res.Diagnostics = append(res.Diagnostics, d)

	return ir.Unknown(name)
}
