package convert

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"bridge-generator/internal/diagnostic"
	"bridge-generator/internal/ir"
	"bridge-generator/internal/mapping"
	"bridge-generator/internal/match"
)

// Converter applies the type and call converters to a whole project model.
type Converter struct {
	rules *mapping.RuleFile
	tiers *mapping.TierFile
}

// NewConverter creates a Converter. Nil tables are replaced by the embedded
// defaults.
func NewConverter(rules *mapping.RuleFile, tiers *mapping.TierFile) *Converter {
	if rules == nil {
		rules = mapping.DefaultRules()
	}

	if tiers == nil {
		tiers = mapping.DefaultTiers()
	}

	return &Converter{rules: rules, tiers: tiers}
}

// Convert converts every handler, table and call site of m. The model is
// not modified; the result is keyed by entity identity.
func (c *Converter) Convert(m *ir.ProjectModel) *ConvertedModel {
	cm := &ConvertedModel{
		Model: m,
		Result: ConversionResult{
			Handlers: make(map[ir.HandlerID]ConvertedHandler, len(m.Handlers)),
			Tables:   make(map[string]ConvertedTable, len(m.Tables)),
			Calls:    make(map[ir.CallSiteID]ConvertedCall),
		},
		Imports: targetImports(c.rules),
	}

	pgRules := c.rules.Dialect(mapping.DialectPostgres)

	decls, tsReg, diags := convertDeclarations(m.Declarations, c.rules.Dialect(mapping.DialectTypeScript))
	cm.Declarations = decls
	cm.Diagnostics.Add(diags...)

	enums, sqlReg := convertEnums(m.Enums)
	cm.Enums = enums

	tsConv := NewTypeConverter(c.rules.Dialect(mapping.DialectTypeScript), tsReg)
	sqlConv := NewTypeConverter(pgRules, sqlReg)
	api := NewAPICallConverter(c.tiers)

	for _, t := range m.Tables {
		ct, more := convertTable(sqlConv, pgRules, t)
		cm.Result.Tables[t.Name] = ct
		cm.Diagnostics.Add(more...)
	}

	for _, h := range m.Handlers {
		for _, site := range h.ExternalCalls {
			cc, more := api.Convert(h.ID, site)
			cm.Result.Calls[site.ID] = cc
			cm.Diagnostics.Add(more...)
		}

		ch, more := convertHandler(tsConv, m, h, cm.Result.Calls)
		cm.Result.Handlers[h.ID] = ch
		cm.Diagnostics.Add(more...)
	}

	cm.Diagnostics.Add(compatibility(m)...)
	cm.Tally = ComputeTally(cm.Result, cm.Declarations)

	return cm
}

func convertHandler(
	tc *TypeConverter, m *ir.ProjectModel, h ir.HandlerDescriptor, calls map[ir.CallSiteID]ConvertedCall,
) (ConvertedHandler, []diagnostic.Diagnostic) {
	var diags []diagnostic.Diagnostic

	subject := string(h.ID)
	out := ConvertedHandler{
		ID:             h.ID,
		Name:           h.Name,
		FuncName:       AttrName(h.Name),
		Route:          RoutePath(h.Name),
		Method:         h.Method,
		BodyType:       h.BodyType,
		AuthRequired:   h.AuthRequired,
		StatusCode:     successStatus(h.Response.StatusCodes),
		ResponseFields: append([]string(nil), h.Response.Fields...),
		ResponseValues: maps.Clone(h.Response.Values),
		SourcePath:     h.SourcePath,
	}

	if out.Method == ir.MethodUnknown {
		out.Method = ir.MethodPost
		out.Confidence = ir.ConfidenceApproximate
		diags = append(diags, diagnostic.Warningf(diagnostic.CodeConversionDowngrade, subject,
			"%s checks no request method; exposing it as POST", h.Name))
	}

	out.Methods = []ir.HTTPMethod{out.Method}
	for _, meth := range h.Methods {
		if !slices.Contains(out.Methods, meth) {
			out.Methods = append(out.Methods, meth)
		}
	}

	for _, p := range h.Params {
		res := tc.Convert(p.Type, subject+"."+p.Name)
		diags = append(diags, res.Diagnostics...)

		out.Params = append(out.Params, ConvertedParam{
			Name:       p.Name,
			Attr:       AttrName(p.Name),
			Type:       res.Type,
			Location:   p.Location,
			Required:   res.Type.Kind != ir.KindOptional,
			Confidence: res.Confidence,
		})
		out.Confidence = ir.Worst(out.Confidence, res.Confidence)
	}

	for _, op := range h.Operations {
		co := ConvertedOperation{
			Table:   op.Table,
			Kind:    op.Kind,
			Columns: append([]string(nil), op.Columns...),
			Filters: append([]ir.FilterHint(nil), op.Filters...),
			Single:  op.Single,
			Line:    op.Line,
			Binding: op.Binding,
		}

		if t, ok := m.Table(op.Table); ok {
			co.ModelName = match.Pascal(t.Name)
		} else {
			co.Confidence = ir.ConfidenceApproximate
			diags = append(diags, diagnostic.Warningf(diagnostic.CodeConversionDowngrade, subject,
				"line %d: table %q is not defined by any migration", op.Line, op.Table))
		}

		if op.Kind == ir.OpUnknown {
			co.Confidence = ir.ConfidenceManualReview
			diags = append(diags, diagnostic.Warningf(diagnostic.CodeConversionDowngrade, subject,
				"line %d: call chain on %q has no recognized operation", op.Line, op.Table))
		}

		out.Operations = append(out.Operations, co)
		out.Confidence = ir.Worst(out.Confidence, co.Confidence)
	}

	for _, site := range h.ExternalCalls {
		out.Calls = append(out.Calls, site.ID)
		out.Confidence = ir.Worst(out.Confidence, calls[site.ID].Confidence)
	}

	return out, diags
}

func successStatus(codes []int) int {
	for _, c := range codes {
		if c >= 200 && c < 300 {
			return c
		}
	}

	return 200
}

func convertTable(tc *TypeConverter, rules *mapping.DialectRules, t ir.TableSchema) (ConvertedTable, []diagnostic.Diagnostic) {
	var diags []diagnostic.Diagnostic

	out := ConvertedTable{
		Name:       t.Name,
		ClassName:  match.Pascal(t.Name),
		PrimaryKey: t.PrimaryKey(),
		Indexes:    slices.Clone(t.Indexes),
		Policies:   slices.Clone(t.Policies),
		RLSEnabled: t.RLSEnabled,
		Source:     t.Source,
	}

	if len(t.Columns) == 0 {
		out.Confidence = ir.ConfidenceManualReview
		diags = append(diags, diagnostic.Warningf(diagnostic.CodeConversionDowngrade, t.Name,
			"table %s has no columns", t.Name))
	}

	for _, col := range t.Columns {
		subject := t.Name + "." + col.Name
		res := tc.Convert(col.Type, subject)
		diags = append(diags, res.Diagnostics...)

		cc := ConvertedColumn{
			Name:       col.Name,
			Attr:       AttrName(col.Name),
			Type:       res.Type,
			ColumnType: columnType(rules, col.Type),
			Nullable:   col.Nullable && !col.Constraints.PrimaryKey,
			PrimaryKey: col.Constraints.PrimaryKey,
			Unique:     col.Constraints.Unique,
			Confidence: res.Confidence,
		}

		if cc.Nullable {
			cc.Type = ir.OptionalOf(cc.Type)
		}

		if ref := col.Constraints.References; ref != nil {
			refCol := ref.Column
			if refCol == "" {
				refCol = "id"
			}

			cc.ForeignKey = ref.Table + "." + refCol
			cc.OnDelete = strings.ToUpper(ref.OnDelete)
		}

		applyTypeArgs(&cc, col)

		def, ok := convertDefault(col, res.Type)
		cc.Default = def

		if !ok {
			cc.Confidence = ir.Worst(cc.Confidence, ir.ConfidenceManualReview)
			diags = append(diags, diagnostic.Warningf(diagnostic.CodeConversionDowngrade, subject,
				"default %s has no equivalent; set it in the application", col.Default))
		}

		out.Columns = append(out.Columns, cc)
		out.Confidence = ir.Worst(out.Confidence, cc.Confidence)
	}

	return out, diags
}

func applyTypeArgs(cc *ConvertedColumn, col ir.ColumnSchema) {
	if col.Type.Kind != ir.KindPrimitive || len(col.TypeArgs) == 0 {
		return
	}

	switch col.Type.Name {
	case "varchar", "char", "bpchar":
		cc.MaxLength = col.TypeArgs[0]
		cc.ColumnType = fmt.Sprintf("%s(%d)", cc.ColumnType, cc.MaxLength)
	case "numeric":
		cc.MaxDigits = col.TypeArgs[0]
		if len(col.TypeArgs) > 1 {
			cc.DecimalPlaces = col.TypeArgs[1]
			cc.ColumnType = fmt.Sprintf("%s(%d, %d)", cc.ColumnType, cc.MaxDigits, cc.DecimalPlaces)
		} else {
			cc.ColumnType = fmt.Sprintf("%s(%d)", cc.ColumnType, cc.MaxDigits)
		}
	}
}

const fallbackColumnType = "sa.Text"

// columnType returns the migration column constructor for a source type.
func columnType(rules *mapping.DialectRules, t ir.TypeDescriptor) string {
	switch t.Kind {
	case ir.KindPrimitive:
		if rules != nil {
			if r, ok := rules.Lookup(t.Name); ok && r.Column != "" {
				return r.Column
			}
		}

		return fallbackColumnType
	case ir.KindArray:
		return "sa.ARRAY(" + columnType(rules, t.Inner()) + ")"
	case ir.KindNamed:
		return "sa.String"
	default:
		return fallbackColumnType
	}
}

var (
	castRe    = regexp.MustCompile(`(?i)^(.+?)::[a-z_ ]+(\[\])?$`)
	numberRe  = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	uuidFuncs = []string{"gen_random_uuid()", "uuid_generate_v4()"}
	timeFuncs = []string{
		"now()", "current_timestamp", "localtimestamp", "statement_timestamp()",
		"transaction_timestamp()", "timezone('utc', now())", "timezone('utc'::text, now())",
	}
)

// convertDefault maps a column default. It reports false when the default
// is an expression with no target equivalent.
func convertDefault(col ir.ColumnSchema, target ir.TypeDescriptor) (ColumnDefault, bool) {
	raw := strings.TrimSpace(col.Default)
	out := ColumnDefault{Raw: raw}

	if !col.HasDefault || raw == "" {
		return out, true
	}

	lower := strings.ToLower(raw)

	switch {
	case lower == "null":
		return out, true
	case lower == "identity":
		out.Kind = DefaultIdentity
		return out, true
	case hasSuffixAny(lower, uuidFuncs):
		out.Kind, out.Value = DefaultFactory, "uuid4"
		return out, true
	case slices.Contains(timeFuncs, lower):
		out.Kind, out.Value = DefaultFactory, "utcnow"
		return out, true
	}

	if m := castRe.FindStringSubmatch(raw); m != nil {
		raw = strings.TrimSpace(m[1])
		lower = strings.ToLower(raw)
	}

	switch {
	case numberRe.MatchString(raw):
		out.Kind, out.Value = DefaultLiteral, raw
	case lower == "true" || lower == "false":
		out.Kind, out.Value = DefaultLiteral, strings.ToUpper(lower[:1])+lower[1:]
	case len(raw) >= 2 && raw[0] == '\'' && raw[len(raw)-1] == '\'':
		text := strings.ReplaceAll(raw[1:len(raw)-1], "''", "'")

		switch {
		case target.Kind == ir.KindPrimitive && target.Name == "dict" && text == "{}":
			out.Kind, out.Value = DefaultFactory, "dict"
		case target.Kind == ir.KindArray && (text == "{}" || text == "[]"):
			out.Kind, out.Value = DefaultFactory, "list"
		default:
			out.Kind, out.Value = DefaultLiteral, strconv.Quote(text)
		}
	default:
		out.Kind, out.Value = DefaultManual, raw
		return out, false
	}

	return out, true
}

func hasSuffixAny(s string, suffixes []string) bool {
	return slices.ContainsFunc(suffixes, func(x string) bool { return strings.HasSuffix(s, x) })
}

// compatibility reports source features the target handles differently.
func compatibility(m *ir.ProjectModel) []diagnostic.Diagnostic {
	var diags []diagnostic.Diagnostic

	for _, comp := range m.Components {
		if slices.Contains(comp.SupabaseUsage, "realtime") {
			diags = append(diags, diagnostic.Warningf(diagnostic.CodeCompatibility, comp.Path,
				"%s subscribes to realtime changes, which the target does not provide", comp.Name).
				WithSuggestions("poll the generated endpoints", "add a websocket route to app/main.py"))
		}

		if slices.Contains(comp.SupabaseUsage, "storage") {
			diags = append(diags, diagnostic.Warningf(diagnostic.CodeCompatibility, comp.Path,
				"%s uses file storage; bucket paths must be migrated", comp.Name).
				WithSuggestions("store files in a Unity Catalog volume"))
		}
	}

	for _, site := range m.CallSites() {
		if site.Provider == ir.ProviderUnknown {
			diags = append(diags, diagnostic.Infof(diagnostic.CodeCompatibility, string(site.ID),
				"call to %s is kept as a plain HTTP request", hostOf(site)).
				WithSuggestions("move its credentials into a secret scope"))
		}
	}

	for _, t := range m.Tables {
		if t.RLSEnabled || len(t.Policies) > 0 {
			diags = append(diags, diagnostic.Warningf(diagnostic.CodeCompatibility, t.Name,
				"table %s has row-level security with %d policies; the target does not enforce them", t.Name, len(t.Policies)).
				WithSuggestions("enforce the policies in the router dependencies", "use Unity Catalog row filters"))
		}
	}

	return diags
}

func hostOf(site ir.ExternalCallSite) string {
	if h, ok := site.Param("host"); ok && h != "" {
		return h
	}

	if site.Endpoint != "" {
		return site.Endpoint
	}

	return "an unknown service"
}

// targetImports maps every target type name to its import statement. The
// first dialect in name order wins on conflicts.
func targetImports(rf *mapping.RuleFile) map[string]string {
	out := map[string]string{}

	for _, name := range rf.DialectNames() {
		d := rf.Dialects[name]
		if d.Fallback != "" && d.FallbackImport != "" {
			if _, ok := out[d.Fallback]; !ok {
				out[d.Fallback] = d.FallbackImport
			}
		}

		for _, r := range d.Rules {
			if r.Import == "" {
				continue
			}

			if _, ok := out[r.Target]; !ok {
				out[r.Target] = r.Import
			}
		}
	}

	return out
}

// TableOrder returns the tables with every table placed after the tables its
// foreign keys reference. Reference cycles keep schema order.
func TableOrder(tables []ConvertedTable) []ConvertedTable {
	pos := make(map[string]int, len(tables))
	for i, t := range tables {
		pos[t.Name] = i
	}

	order, err := topoSort(len(tables), func(i int) []int {
		var deps []int

		for _, c := range tables[i].Columns {
			ref, _, _ := strings.Cut(c.ForeignKey, ".")
			if j, ok := pos[ref]; ok && j != i && !slices.Contains(deps, j) {
				deps = append(deps, j)
			}
		}

		return deps
	})
	if err != nil {
		return tables
	}

	out := make([]ConvertedTable, 0, len(tables))
	for _, i := range order {
		out = append(out, tables[i])
	}

	return out
}
