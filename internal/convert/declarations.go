package convert

import (
	"bridge-generator/internal/diagnostic"
	"bridge-generator/internal/ir"
	"bridge-generator/internal/mapping"
	"bridge-generator/internal/match"
)

// ConvertedDeclaration is the target form of a declared type.
type ConvertedDeclaration struct {
	Name      string
	ClassName string
	Kind      ir.DeclKind
	Fields    []ConvertedField
	// Bases are the class names of extended interfaces that resolved.
	Bases  []string
	Values []string
	// Alias is the converted right-hand side of an alias declaration.
	Alias      ir.TypeDescriptor
	SourcePath string
	Confidence ir.Confidence
}

// ConvertedField is one member of a converted interface.
type ConvertedField struct {
	Name string
	// Attr is the target attribute name. It differs from Name when the
	// source name is not a valid snake_case identifier.
	Attr       string
	Type       ir.TypeDescriptor
	Optional   bool
	Confidence ir.Confidence
}

// Aliased reports whether the attribute needs a serialization alias.
func (f ConvertedField) Aliased() bool {
	return f.Attr != f.Name
}

// ConvertedEnum is a database enum type.
type ConvertedEnum struct {
	Name      string
	ClassName string
	Values    []string
}

// convertDeclarations registers every declared name and converts the
// declarations in source order.
//
// Interfaces and object types register as Named(Pascal(name)) and enums as
// str before anything is converted, so members may reference any of them.
// Aliases are converted in dependency order, falling back to source order,
// and register their converted right-hand side.
func convertDeclarations(decls []ir.TypeDeclaration, rules *mapping.DialectRules) (
	[]ConvertedDeclaration, *Registry, []diagnostic.Diagnostic,
) {
	var diags []diagnostic.Diagnostic

	reg := NewRegistry()
	tc := NewTypeConverter(rules, reg)

	unique := make([]ir.TypeDeclaration, 0, len(decls))
	firstSeen := map[string]string{}

	for _, d := range decls {
		if prev, dup := firstSeen[d.Name]; dup {
			diags = append(diags, diagnostic.Warningf(diagnostic.CodeConversionDowngrade, d.SourcePath,
				"type %q is declared again in %s; the declaration in %s is used", d.Name, d.SourcePath, prev))

			continue
		}

		firstSeen[d.Name] = d.SourcePath
		unique = append(unique, d)
	}

	var aliases []int

	for i, d := range unique {
		switch d.Kind {
		case ir.DeclInterface:
			reg.Register(d.Name, RegistryEntry{Target: ir.Named(match.Pascal(d.Name))})
		case ir.DeclEnum:
			reg.Register(d.Name, RegistryEntry{Target: ir.Primitive("str")})
		case ir.DeclAlias:
			aliases = append(aliases, i)
		}
	}

	converted := make([]ConvertedDeclaration, len(unique))

	for _, i := range aliasOrder(unique, aliases, &diags) {
		d := unique[i]
		res := tc.Convert(d.Alias, d.Name)
		diags = append(diags, res.Diagnostics...)

		reg.Register(d.Name, RegistryEntry{Target: res.Type, Confidence: res.Confidence})

		converted[i] = ConvertedDeclaration{
			Name:       d.Name,
			ClassName:  match.Pascal(d.Name),
			Kind:       d.Kind,
			Alias:      res.Type,
			SourcePath: d.SourcePath,
			Confidence: res.Confidence,
		}
	}

	for i, d := range unique {
		switch d.Kind {
		case ir.DeclInterface:
			var more []diagnostic.Diagnostic

			converted[i], more = convertInterface(tc, d)
			diags = append(diags, more...)
			converted[i].Bases, diags = resolveBases(reg, d, diags)
		case ir.DeclEnum:
			converted[i] = ConvertedDeclaration{
				Name:       d.Name,
				ClassName:  match.Pascal(d.Name),
				Kind:       d.Kind,
				Values:     append([]string(nil), d.Values...),
				SourcePath: d.SourcePath,
			}
		}
	}

	return converted, reg, diags
}

func convertInterface(tc *TypeConverter, d ir.TypeDeclaration) (ConvertedDeclaration, []diagnostic.Diagnostic) {
	var diags []diagnostic.Diagnostic

	out := ConvertedDeclaration{
		Name:       d.Name,
		ClassName:  match.Pascal(d.Name),
		Kind:       d.Kind,
		SourcePath: d.SourcePath,
	}

	for _, f := range d.Fields {
		res := tc.Convert(f.Type, d.Name+"."+f.Name)
		diags = append(diags, res.Diagnostics...)

		typ := res.Type
		if f.Optional {
			typ = ir.OptionalOf(typ)
		}

		out.Fields = append(out.Fields, ConvertedField{
			Name:       f.Name,
			Attr:       AttrName(f.Name),
			Type:       typ,
			Optional:   f.Optional,
			Confidence: res.Confidence,
		})
		out.Confidence = ir.Worst(out.Confidence, res.Confidence)
	}

	return out, diags
}

func resolveBases(reg *Registry, d ir.TypeDeclaration, diags []diagnostic.Diagnostic) ([]string, []diagnostic.Diagnostic) {
	var bases []string

	for _, name := range d.Extends {
		e, ok := reg.Lookup(name)
		if !ok || e.Target.Kind != ir.KindNamed {
			diags = append(diags, diagnostic.Warningf(diagnostic.CodeConversionDowngrade, d.Name,
				"%s extends %q, which is not a declared interface; its members are not inherited", d.Name, name))

			continue
		}

		bases = append(bases, e.Target.Name)
	}

	return bases, diags
}

// aliasOrder sorts alias positions so an alias comes after the aliases it
// references. A reference cycle is reported and the rest keep source order.
func aliasOrder(decls []ir.TypeDeclaration, aliases []int, diags *[]diagnostic.Diagnostic) []int {
	pos := make(map[string]int, len(aliases))
	for k, i := range aliases {
		pos[decls[i].Name] = k
	}

	order, err := topoSort(len(aliases), func(k int) []int {
		var deps []int

		for _, name := range namedRefs(decls[aliases[k]].Alias, nil) {
			if j, ok := pos[name]; ok && j != k {
				deps = append(deps, j)
			}
		}

		return deps
	})

	placed := make([]bool, len(aliases))
	out := make([]int, 0, len(aliases))

	for _, k := range order {
		placed[k] = true
		out = append(out, aliases[k])
	}

	if err != nil {
		for k, i := range aliases {
			if placed[k] {
				continue
			}

			*diags = append(*diags, diagnostic.Warningf(diagnostic.CodeConversionDowngrade, decls[i].SourcePath,
				"type alias %q is part of a reference cycle", decls[i].Name))
			out = append(out, i)
		}
	}

	return out
}

// namedRefs appends every Named identifier in t to acc.
func namedRefs(t ir.TypeDescriptor, acc []string) []string {
	if t.Kind == ir.KindNamed {
		acc = append(acc, t.Name)
	}

	if t.Elem != nil {
		acc = namedRefs(*t.Elem, acc)
	}

	if t.Key != nil {
		acc = namedRefs(*t.Key, acc)
	}

	for _, v := range t.Variants {
		acc = namedRefs(v, acc)
	}

	return acc
}

func convertEnums(enums []ir.EnumSchema) ([]ConvertedEnum, *Registry) {
	reg := NewRegistry()
	out := make([]ConvertedEnum, 0, len(enums))

	for _, e := range enums {
		reg.Register(e.Name, RegistryEntry{Target: ir.Primitive("str")})
		out = append(out, ConvertedEnum{
			Name:      e.Name,
			ClassName: match.Pascal(e.Name),
			Values:    append([]string(nil), e.Values...),
		})
	}

	return out, reg
}

// ClassOrder returns the declarations with every interface placed after the
// interfaces it extends. Otherwise source order is kept.
func ClassOrder(decls []ConvertedDeclaration) []ConvertedDeclaration {
	pos := make(map[string]int, len(decls))
	for i, d := range decls {
		if d.Kind == ir.DeclInterface {
			pos[d.ClassName] = i
		}
	}

	order, err := topoSort(len(decls), func(i int) []int {
		var deps []int

		for _, b := range decls[i].Bases {
			if j, ok := pos[b]; ok && j != i {
				deps = append(deps, j)
			}
		}

		return deps
	})
	if err != nil {
		return decls
	}

	out := make([]ConvertedDeclaration, 0, len(decls))
	for _, i := range order {
		out = append(out, decls[i])
	}

	return out
}
