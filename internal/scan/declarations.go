package scan

import (
	"regexp"
	"sort"
	"strings"

	"bridge-generator/internal/common"
	"bridge-generator/internal/diagnostic"
	"bridge-generator/internal/ir"
)

var (
	interfaceRe = regexp.MustCompile(`(?m)^[ \t]*(?:export\s+)?(?:declare\s+)?interface\s+([A-Za-z_$][\w$]*)\s*(?:<[^{]*?>)?\s*(?:extends\s+([^{]+?))?\s*\{`)
	typeAliasRe = regexp.MustCompile(`(?m)^[ \t]*(?:export\s+)?(?:declare\s+)?type\s+([A-Za-z_$][\w$]*)\s*(?:<[^=]*?>)?\s*=`)
	enumRe      = regexp.MustCompile(`(?m)^[ \t]*(?:export\s+)?(?:declare\s+)?(?:const\s+)?enum\s+([A-Za-z_$][\w$]*)\s*\{`)
	memberRe    = regexp.MustCompile(`(?s)^(?:readonly\s+)?([A-Za-z_$][\w$]*|"[^"]*"|'[^']*')\s*(\?)?\s*:\s*(.+)$`)
)

type declMatch struct {
	kind  ir.DeclKind
	start int
	loc   []int
}

// scanDeclarations finds every type declaration in src, in source order.
func scanDeclarations(path, src string) ([]ir.TypeDeclaration, []diagnostic.Diagnostic) {
	masked := maskComments(src)

	var matches []declMatch
	for _, loc := range interfaceRe.FindAllStringSubmatchIndex(masked, -1) {
		matches = append(matches, declMatch{kind: ir.DeclInterface, start: loc[0], loc: loc})
	}

	for _, loc := range typeAliasRe.FindAllStringSubmatchIndex(masked, -1) {
		matches = append(matches, declMatch{kind: ir.DeclAlias, start: loc[0], loc: loc})
	}

	for _, loc := range enumRe.FindAllStringSubmatchIndex(masked, -1) {
		matches = append(matches, declMatch{kind: ir.DeclEnum, start: loc[0], loc: loc})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].start < matches[j].start })

	var (
		decls []ir.TypeDeclaration
		diags []diagnostic.Diagnostic
	)

	for _, m := range matches {
		name := masked[m.loc[2]:m.loc[3]]
		decl := ir.TypeDeclaration{
			Name:       name,
			Kind:       m.kind,
			SourcePath: path,
			Line:       common.CountLines(masked, m.start),
		}

		var (
			ok   bool
			more []diagnostic.Diagnostic
		)

		switch m.kind {
		case ir.DeclInterface:
			if m.loc[4] >= 0 {
				decl.Extends = splitTopLevel(masked[m.loc[4]:m.loc[5]], ",", true)
			}

			decl, ok, more = scanObjectBody(decl, masked, m.loc[1]-1)
		case ir.DeclAlias:
			decl, ok, more = scanAlias(decl, masked, m.loc[1])
		case ir.DeclEnum:
			decl, ok = scanEnum(decl, masked, m.loc[1]-1)
		}

		diags = append(diags, more...)

		if !ok {
			diags = append(diags, diagnostic.Warningf(diagnostic.CodeStructuralParse, path,
				"%s:%d: %s %s has unbalanced brackets; declaration omitted", path, decl.Line, m.kind, name))

			continue
		}

		decls = append(decls, decl)
	}

	return decls, diags
}

func scanObjectBody(decl ir.TypeDeclaration, src string, open int) (ir.TypeDeclaration, bool, []diagnostic.Diagnostic) {
	closeAt := matchClose(src, open)
	if closeAt < 0 {
		return decl, false, nil
	}

	fields, diags := parseMembers(decl, src[open+1:closeAt])
	decl.Fields = fields

	return decl, true, diags
}

func scanAlias(decl ir.TypeDeclaration, src string, afterEq int) (ir.TypeDeclaration, bool, []diagnostic.Diagnostic) {
	start := skipSpace(src, afterEq)
	if start < len(src) && src[start] == '{' {
		if end := matchClose(src, start); end >= 0 {
			rest := strings.TrimSpace(src[end+1 : exprEnd(src, end+1)])
			if rest == "" {
				decl.Kind = ir.DeclInterface
				return scanObjectBody(decl, src, start)
			}
		}
	}

	end := exprEnd(src, start)
	if end < len(src) && strings.ContainsRune(")]}", rune(src[end])) {
		return decl, false, nil
	}

	decl.Alias = ParseTypeExpr(src[start:end])

	return decl, true, nil
}

func scanEnum(decl ir.TypeDeclaration, src string, open int) (ir.TypeDeclaration, bool) {
	closeAt := matchClose(src, open)
	if closeAt < 0 {
		return decl, false
	}

	for _, member := range splitTopLevel(src[open+1:closeAt], ",", false) {
		name, value, hasValue := strings.Cut(member, "=")
		name = strings.TrimSpace(name)

		if lit, ok := stringLiteral(value); hasValue && ok {
			decl.Values = append(decl.Values, lit)
			continue
		}

		decl.Values = append(decl.Values, common.TrimQuotes(name))
	}

	return decl, true
}

// splitMembers splits an object type body into member texts. Members end
// at top-level ';' or ',' or at a newline that does not continue the type.
func splitMembers(body string) []string {
	var out []string

	for start := 0; start < len(body); {
		end := exprEnd(body, start)
		if end < len(body) && body[end] != ';' && body[end] != '\n' {
			// stray closer; keep the remainder as one member so it gets reported
			end = len(body)
		}

		out = append(out, splitTopLevel(body[start:end], ",", true)...)

		start = end + 1
	}

	return out
}

func parseMembers(decl ir.TypeDeclaration, body string) ([]ir.FieldDecl, []diagnostic.Diagnostic) {
	var (
		fields []ir.FieldDecl
		diags  []diagnostic.Diagnostic
	)

	for _, member := range splitMembers(body) {
		if strings.HasPrefix(member, "[") {
			// index signature
			continue
		}

		m := memberRe.FindStringSubmatch(member)
		if m == nil {
			if isMethodMember(member) {
				continue
			}

			diags = append(diags, diagnostic.Warningf(diagnostic.CodeStructuralParse, decl.SourcePath,
				"%s: cannot parse member %q of %s; field omitted", decl.SourcePath, member, decl.Name))

			continue
		}

		typ := ParseTypeExpr(m[3])
		if strings.HasPrefix(typ.Name, "(") && typ.IsUnknown() && strings.Contains(m[3], "=>") {
			// function-typed property
			continue
		}

		fields = append(fields, ir.FieldDecl{
			Name:     common.TrimQuotes(m[1]),
			Type:     typ,
			Optional: m[2] == "?",
		})
	}

	return fields, diags
}

var methodMemberRe = regexp.MustCompile(`^(?:readonly\s+)?[A-Za-z_$][\w$]*\??\s*(?:<[^(]*>)?\s*\(`)

func isMethodMember(member string) bool {
	return methodMemberRe.MatchString(member)
}
