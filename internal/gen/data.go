package gen

import (
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"

	"bridge-generator/internal/common"
	"bridge-generator/internal/convert"
	"bridge-generator/internal/ir"
	"bridge-generator/internal/match"
)

// layout fixes the module name of every handler and table.
type layout struct {
	routers map[ir.HandlerID]string
	tables  map[string]string
	order   []ir.HandlerID
}

func newLayout(cm *convert.ConvertedModel) layout {
	l := layout{
		routers: map[ir.HandlerID]string{},
		tables:  map[string]string{},
	}

	used := map[string]bool{}

	for _, h := range cm.Model.Handlers {
		l.routers[h.ID] = uniqueName(convert.AttrName(h.Name), used)
		l.order = append(l.order, h.ID)
	}

	usedTables := map[string]bool{}
	for _, t := range cm.Model.Tables {
		l.tables[t.Name] = uniqueName(convert.AttrName(t.Name), usedTables)
	}

	return l
}

// uniqueName returns base, or base_2, base_3... when taken.
func uniqueName(base string, used map[string]bool) string {
	name := base
	for n := 2; used[name]; n++ {
		name = fmt.Sprintf("%s_%d", base, n)
	}

	used[name] = true

	return name
}

type modelRef struct {
	Module string
	Class  string
}

type paramData struct {
	Attr       string
	Annotation string
	// Default is the text after the annotation, including " = ".
	Default string
}

type routerData struct {
	Project      string
	Handler      convert.ConvertedHandler
	Module       string
	Route        string
	Methods      []string
	RequestClass string
	Imports      []string
	TypeClasses  []string
	Models       []modelRef
	Body         []paramData
	Query        []paramData
	Path         []paramData
	Statements   []string
	UsesLLM      bool
	UsesHTTP     bool
}

func fieldDefault(attr, name string, optional bool) string {
	switch {
	case attr != name && optional:
		return fmt.Sprintf(" = Field(default=None, alias=%s)", pyString(name))
	case attr != name:
		return fmt.Sprintf(" = Field(alias=%s)", pyString(name))
	case optional:
		return " = None"
	default:
		return ""
	}
}

func (g *Generator) routerData(cm *convert.ConvertedModel, l layout, h convert.ConvertedHandler) routerData {
	d := routerData{
		Project:      g.projectName(cm),
		Handler:      h,
		Module:       l.routers[h.ID],
		Route:        h.Route,
		RequestClass: match.Pascal(h.Name) + "Request",
	}

	for _, m := range h.Methods {
		d.Methods = append(d.Methods, strings.ToLower(m.String()))
	}

	imports := newImportSet()
	access := map[string]string{}

	for _, p := range h.Params {
		imports.addType(p.Type, cm.Imports)

		pd := paramData{Attr: p.Attr, Annotation: PyType(p.Type)}

		switch p.Location {
		case ir.ParamBody:
			pd.Default = fieldDefault(p.Attr, p.Name, !p.Required)
			d.Body = append(d.Body, pd)
			access[p.Name] = "body." + p.Attr
		case ir.ParamQuery:
			if !p.Required {
				pd.Default = " = None"
			}

			d.Query = append(d.Query, pd)
			access[p.Name] = p.Attr
		case ir.ParamPath:
			d.Path = append(d.Path, pd)
			d.Route += "/{" + p.Attr + "}"
			access[p.Name] = p.Attr
		}
	}

	// Required query parameters must precede the defaulted ones.
	sort.SliceStable(d.Query, func(i, j int) bool { return d.Query[i].Default == "" && d.Query[j].Default != "" })

	d.Imports = imports.Lines()
	d.TypeClasses = imports.Classes()

	seen := map[string]bool{}

	for _, op := range h.Operations {
		if !op.Defined() {
			continue
		}

		t, _ := cm.Table(op.Table)

		ref := modelRef{Module: l.tables[t.Name], Class: op.ModelName}
		if !seen[ref.Module] {
			seen[ref.Module] = true
			d.Models = append(d.Models, ref)
		}
	}

	sort.Slice(d.Models, func(i, j int) bool { return d.Models[i].Module < d.Models[j].Module })

	d.Statements, d.UsesLLM, d.UsesHTTP = handlerStatements(cm, h, access, len(d.Body) > 0)

	return d
}

// statement is a block of lines anchored at a source line. Variable holds
// the block's result, empty when the block only carries review comments.
type statement struct {
	line     int
	lines    []string
	variable string
	binding  string
}

// reservedNames are Python identifiers a handler body already uses.
var reservedNames = []string{"body", "session", "user", "statement", "row", "rows", "response", "llm", "httpx", "select"}

func handlerStatements(cm *convert.ConvertedModel, h convert.ConvertedHandler, access map[string]string, hasBody bool) (
	[]string, bool, bool,
) {
	var (
		blocks   []statement
		usesLLM  bool
		usesHTTP bool
	)

	used := map[string]bool{}
	for _, n := range reservedNames {
		used[n] = true
	}

	for _, expr := range access {
		if match.Snake(expr) == expr {
			used[expr] = true
		}
	}

	site := map[ir.CallSiteID]ir.ExternalCallSite{}
	if src, ok := cm.Model.Handler(h.ID); ok {
		for _, s := range src.ExternalCalls {
			site[s.ID] = s
		}
	}

	for _, op := range h.Operations {
		b := statement{line: op.Line, binding: op.Binding}
		if op.Defined() && op.Kind != ir.OpUnknown {
			b.variable = uniqueName(operationVar(op), used)
		}

		b.lines = operationLines(op, access, hasBody, b.variable)
		blocks = append(blocks, b)
	}

	for _, id := range h.Calls {
		c, _ := cm.Call(id)

		b := statement{line: c.Line, binding: c.Binding}
		if base := callVar(c); base != "" {
			b.variable = uniqueName(base, used)
		}

		b.lines = callLines(c, site[id], access, b.variable)
		blocks = append(blocks, b)

		usesLLM = usesLLM || c.IsFoundationModel()
		usesHTTP = usesHTTP || (c.Capability == ir.CapabilityHTTPRequest && c.Family != "")
	}

	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].line < blocks[j].line })

	var out []string
	for i, b := range blocks {
		if i > 0 {
			out = append(out, "")
		}

		out = append(out, b.lines...)
	}

	if len(out) > 0 {
		out = append(out, "")
	}

	out = append(out, returnLine(h.ResponseFields, h.ResponseValues, blocks, access))

	return out, usesLLM, usesHTTP
}

// operationVar names the variable holding an operation's result.
func operationVar(op convert.ConvertedOperation) string {
	table := convert.AttrName(op.Table)

	switch op.Kind {
	case ir.OpInsert, ir.OpUpsert:
		return table + "_row"
	case ir.OpSelect:
		if op.Single {
			return table + "_row"
		}

		return table + "_rows"
	case ir.OpUpdate:
		return table + "_updated"
	default:
		return table + "_deleted"
	}
}

// callVar names the variable holding a call's result, empty when the call
// is not converted.
func callVar(c convert.ConvertedCall) string {
	switch {
	case c.IsFoundationModel() && c.Capability == ir.CapabilityEmbedding:
		return "embedding"
	case c.IsFoundationModel():
		return "completion"
	case c.Capability == ir.CapabilityHTTPRequest && c.Family != "" && absoluteURL(c.Endpoint):
		return "response_data"
	default:
		return ""
	}
}

func absoluteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// returnLine builds the handler's return statement. A response key set
// from a variable bound by an operation or call returns that block's
// result; a key set from a parameter or literal returns it directly.
// Without response keys the last block's result is returned.
func returnLine(fields []string, values map[string]string, blocks []statement, access map[string]string) string {
	if len(fields) == 0 {
		for i := len(blocks) - 1; i >= 0; i-- {
			if blocks[i].variable != "" {
				return "return " + blocks[i].variable
			}
		}

		return "return None"
	}

	bound := map[string]string{}
	for _, b := range blocks {
		if b.binding != "" && b.variable != "" {
			bound[b.binding] = b.variable
		}
	}

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		v := "None"
		expr := strings.TrimSpace(values[f])

		if target, ok := bound[rootIdent(expr)]; ok {
			v = target
		} else if lit, ok := resolveValue(expr, access); ok {
			v = lit
		}

		parts = append(parts, pyString(f)+": "+v)
	}

	return "return {" + strings.Join(parts, ", ") + "}"
}

// rootIdent returns the identifier an expression such as data?.items or
// completion.choices[0] starts with.
func rootIdent(expr string) string {
	end := strings.IndexAny(expr, ".?[(! ")
	if end < 0 {
		return expr
	}

	return expr[:end]
}

func operationLines(op convert.ConvertedOperation, access map[string]string, hasBody bool, v string) []string {
	head := fmt.Sprintf("# %s %s (line %d)", op.Kind, op.Table, op.Line)

	if !op.Defined() {
		return []string{head, fmt.Sprintf("# table %q is not defined by any migration; convert this operation by hand", op.Table)}
	}

	if op.Kind == ir.OpUnknown {
		return []string{head, "# no recognized operation in this call chain; convert it by hand"}
	}

	model := op.ModelName
	payload := model + "()"

	if hasBody {
		payload = model + "(**body.model_dump(exclude_none=True))"
	}

	lines := []string{head}

	switch op.Kind {
	case ir.OpInsert:
		lines = append(lines,
			v+" = "+payload,
			"session.add("+v+")",
			"session.commit()",
			"session.refresh("+v+")",
		)
	case ir.OpUpsert:
		lines = append(lines,
			v+" = session.merge("+payload+")",
			"session.commit()",
		)
	case ir.OpSelect:
		lines = append(lines, selectLines(model, op.Filters, access)...)
		if op.Single {
			lines = append(lines,
				v+" = session.exec(statement).first()",
				"if "+v+" is None:",
				fmt.Sprintf("    raise HTTPException(status_code=404, detail=%s)", pyString(op.Table+" not found")),
			)
		} else {
			lines = append(lines, v+" = session.exec(statement).all()")
		}
	case ir.OpUpdate:
		lines = append(lines, selectLines(model, op.Filters, access)...)
		lines = append(lines,
			v+" = session.exec(statement).all()",
			"for row in "+v+":",
		)

		if hasBody {
			lines = append(lines,
				"    for key, value in body.model_dump(exclude_none=True).items():",
				"        setattr(row, key, value)",
			)
		}

		lines = append(lines,
			"    session.add(row)",
			"session.commit()",
		)
	case ir.OpDelete:
		lines = append(lines, selectLines(model, op.Filters, access)...)
		lines = append(lines,
			"rows = session.exec(statement).all()",
			"for row in rows:",
			"    session.delete(row)",
			"session.commit()",
			v+` = {"deleted": len(rows)}`,
		)
	}

	return lines
}

var comparisons = map[string]string{
	"eq": "==", "neq": "!=", "gt": ">", "gte": ">=", "lt": "<", "lte": "<=",
	"not.eq": "!=",
}

var columnMethods = map[string]string{
	"like": "like", "ilike": "ilike", "in": "in_", "is": "is_", "contains": "contains",
}

func selectLines(model string, filters []ir.FilterHint, access map[string]string) []string {
	lines := []string{"statement = select(" + model + ")"}

	for _, f := range filters {
		if clause, ok := whereClause(model, f, access); ok {
			lines = append(lines, "statement = statement.where("+clause+")")
		} else {
			lines = append(lines, fmt.Sprintf("# review: filter %s %s %s", f.Column, f.Operator, f.Value))
		}
	}

	return lines
}

func whereClause(model string, f ir.FilterHint, access map[string]string) (string, bool) {
	value, ok := resolveValue(f.Value, access)
	if !ok || f.Column == "" {
		return "", false
	}

	column := model + "." + convert.AttrName(f.Column)

	if op, ok := comparisons[f.Operator]; ok {
		return column + " " + op + " " + value, true
	}

	negate := strings.HasPrefix(f.Operator, "not.")

	meth, ok := columnMethods[strings.TrimPrefix(f.Operator, "not.")]
	if !ok {
		return "", false
	}

	expr := column + "." + meth + "(" + value + ")"
	if negate {
		expr = "~" + expr
	}

	return expr, true
}

var numberRe = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// castRe matches a trailing type cast such as ::text or ::post_status[].
var castRe = regexp.MustCompile(`::[A-Za-z_][\w ."]*(\[\])?$`)

// resolveValue maps a source expression to Python when it is a handler
// parameter or a plain literal.
func resolveValue(raw string, access map[string]string) (string, bool) {
	v := strings.TrimSpace(raw)

	if expr, ok := access[v]; ok {
		return expr, true
	}

	switch {
	case v == "":
		return "", false
	case numberRe.MatchString(v):
		return v, true
	case v == "true":
		return "True", true
	case v == "false":
		return "False", true
	case v == "null" || v == "undefined":
		return "None", true
	case len(v) >= 2 && (v[0] == '\'' || v[0] == '"') && v[len(v)-1] == v[0]:
		return pyString(common.TrimQuotes(v)), true
	}

	return "", false
}

func callLines(c convert.ConvertedCall, site ir.ExternalCallSite, access map[string]string, v string) []string {
	lines := []string{fmt.Sprintf("# %s (line %d)", c.String(), c.Line)}

	arg := func(key, fallback string) string {
		raw, ok := site.Param(key)
		if !ok {
			raw = key
		}

		if v, ok := resolveValue(raw, access); ok {
			return v
		}

		return fallback
	}

	switch {
	case c.IsFoundationModel():
		model := pyString(c.TargetModel)

		switch c.Capability {
		case ir.CapabilityEmbedding:
			input := arg("input", "")
			if input == "" {
				input = arg("content", "[]")
			}

			lines = append(lines, fmt.Sprintf("%s = llm.embed(%s, input=%s)", v, model, input))
		case ir.CapabilityTextCompletion:
			lines = append(lines, fmt.Sprintf("%s = llm.complete(%s, prompt=%s)", v, model, arg("prompt", `""`)))
		default:
			lines = append(lines, fmt.Sprintf("%s = llm.chat(%s, messages=%s)", v, model, arg("messages", "[]")))
		}
	case c.Capability == ir.CapabilityHTTPRequest && c.Family != "":
		method := "GET"
		if m, ok := site.Param("method"); ok {
			method = strings.ToUpper(common.TrimQuotes(strings.TrimSpace(m)))
		}

		if absoluteURL(c.Endpoint) {
			lines = append(lines,
				fmt.Sprintf("response = httpx.request(%s, %s)", pyString(method), pyString(c.Endpoint)),
				"response.raise_for_status()",
				v+" = response.json()",
			)
		} else {
			lines = append(lines, "# review: the request URL is computed at runtime")
		}
	default:
		lines = append(lines, "# review: this call could not be routed to a target service")
	}

	return lines
}

type columnData struct {
	Attr       string
	Annotation string
	Args       string
	Comment    string
}

type modelData struct {
	Table   convert.ConvertedTable
	Imports []string
	Columns []columnData
	UsesSA  bool
}

func (g *Generator) modelData(cm *convert.ConvertedModel, t convert.ConvertedTable) modelData {
	d := modelData{Table: t}
	imports := newImportSet()

	for _, c := range t.Columns {
		imports.addType(c.Type, cm.Imports)

		var args []string

		if c.PrimaryKey {
			args = append(args, "primary_key=True")
		}

		cd := columnData{Attr: c.Attr, Annotation: PyType(c.Type)}

		switch c.Default.Kind {
		case convert.DefaultLiteral:
			args = append(args, "default="+c.Default.Value)
		case convert.DefaultFactory:
			args = append(args, "default_factory="+c.Default.Value)

			switch c.Default.Value {
			case "uuid4":
				imports.add("from uuid import uuid4")
			case "utcnow":
				imports.add("from app.database import utcnow")
			}
		case convert.DefaultIdentity:
			args = append(args, "default=None")
		case convert.DefaultManual:
			cd.Comment = "server default: " + c.Default.Raw
			if c.Nullable {
				args = append(args, "default=None")
			}
		default:
			if c.Nullable || c.PrimaryKey {
				args = append(args, "default=None")
			}
		}

		if c.ForeignKey != "" {
			args = append(args, "foreign_key="+pyString(c.ForeignKey))
			if c.OnDelete != "" {
				args = append(args, "ondelete="+pyString(c.OnDelete))
			}
		}

		if c.Unique {
			args = append(args, "unique=True")
		}

		if c.MaxLength > 0 {
			args = append(args, fmt.Sprintf("max_length=%d", c.MaxLength))
		}

		if c.MaxDigits > 0 {
			args = append(args, fmt.Sprintf("max_digits=%d", c.MaxDigits), fmt.Sprintf("decimal_places=%d", c.DecimalPlaces))
		}

		if strings.HasPrefix(c.ColumnType, "sa.JSON") || strings.HasPrefix(c.ColumnType, "sa.ARRAY") {
			args = append(args, "sa_type="+c.ColumnType)
			d.UsesSA = true
		}

		if c.Attr != c.Name {
			args = append(args, fmt.Sprintf("sa_column_kwargs={\"name\": %s}", pyString(c.Name)))
		}

		cd.Args = strings.Join(args, ", ")
		d.Columns = append(d.Columns, cd)
	}

	d.Imports = imports.Lines()

	return d
}

type fieldData struct {
	Attr       string
	Annotation string
	Default    string
}

type schemaData struct {
	Table     convert.ConvertedTable
	Imports   []string
	Base      []fieldData
	Update    []fieldData
	Generated []fieldData
}

// serverGenerated reports whether a column is filled by the database or the
// model factory rather than by the client.
func serverGenerated(c convert.ConvertedColumn) bool {
	switch {
	case c.PrimaryKey, c.Default.Kind == convert.DefaultIdentity:
		return true
	case c.Default.Kind == convert.DefaultFactory:
		return c.Default.Value == "uuid4" || c.Default.Value == "utcnow"
	default:
		return false
	}
}

func (g *Generator) schemaData(cm *convert.ConvertedModel, t convert.ConvertedTable) schemaData {
	d := schemaData{Table: t}
	imports := newImportSet()

	for _, c := range t.Columns {
		imports.addType(c.Type, cm.Imports)

		f := fieldData{Attr: c.Attr, Annotation: PyType(c.Type)}

		if serverGenerated(c) {
			if c.Nullable {
				f.Default = " = None"
			}

			d.Generated = append(d.Generated, f)

			continue
		}

		switch {
		case c.Default.Kind == convert.DefaultLiteral:
			f.Default = " = " + c.Default.Value
		case c.Default.Kind == convert.DefaultFactory:
			f.Default = " = Field(default_factory=" + c.Default.Value + ")"
		case c.Nullable:
			f.Default = " = None"
		}

		d.Base = append(d.Base, f)
		d.Update = append(d.Update, fieldData{
			Attr:       c.Attr,
			Annotation: PyType(ir.OptionalOf(c.Type)),
			Default:    " = None",
		})
	}

	d.Imports = imports.Lines()

	return d
}

type enumMemberData struct {
	Name  string
	Value string
}

type enumData struct {
	ClassName string
	Members   []enumMemberData
}

type classData struct {
	ClassName  string
	Bases      string
	Fields     []fieldData
	HasAliases bool
}

type aliasData struct {
	ClassName  string
	Annotation string
}

type typesData struct {
	Imports []string
	Enums   []enumData
	Classes []classData
	Aliases []aliasData
}

func (g *Generator) typesData(cm *convert.ConvertedModel) typesData {
	var d typesData

	imports := newImportSet()
	taken := map[string]bool{}

	addEnum := func(class string, values []string) {
		if taken[class] {
			return
		}

		taken[class] = true
		e := enumData{ClassName: class}
		used := map[string]bool{}

		for _, v := range values {
			e.Members = append(e.Members, enumMemberData{Name: uniqueName(enumMember(v), used), Value: pyString(v)})
		}

		d.Enums = append(d.Enums, e)
	}

	for _, decl := range convert.ClassOrder(cm.Declarations) {
		switch decl.Kind {
		case ir.DeclEnum:
			addEnum(decl.ClassName, decl.Values)
		case ir.DeclInterface:
			if taken[decl.ClassName] {
				continue
			}

			taken[decl.ClassName] = true
			c := classData{ClassName: decl.ClassName, Bases: "BaseModel"}

			if len(decl.Bases) > 0 {
				c.Bases = strings.Join(decl.Bases, ", ")
			}

			for _, f := range decl.Fields {
				imports.addType(f.Type, cm.Imports)
				c.Fields = append(c.Fields, fieldData{
					Attr:       f.Attr,
					Annotation: PyType(f.Type),
					Default:    fieldDefault(f.Attr, f.Name, f.Optional),
				})
				c.HasAliases = c.HasAliases || f.Aliased()
			}

			d.Classes = append(d.Classes, c)
		}
	}

	for _, e := range cm.Enums {
		addEnum(e.ClassName, e.Values)
	}

	for _, decl := range cm.Declarations {
		if decl.Kind != ir.DeclAlias || taken[decl.ClassName] {
			continue
		}

		taken[decl.ClassName] = true
		imports.addType(decl.Alias, cm.Imports)
		d.Aliases = append(d.Aliases, aliasData{ClassName: decl.ClassName, Annotation: PyType(decl.Alias)})
	}

	if len(d.Enums) > 0 {
		imports.add("from enum import Enum")
	}

	d.Imports = imports.Lines()

	return d
}

type migrationTable struct {
	Name    string
	Columns []string
	Indexes []string
}

type migrationData struct {
	Tables []migrationTable
	Drops  []string
}

func migrationColumn(c convert.ConvertedColumn) string {
	typ := c.ColumnType
	if !strings.HasSuffix(typ, ")") {
		typ += "()"
	}

	parts := []string{pyString(c.Name), typ}

	if c.Default.Kind == convert.DefaultIdentity {
		parts = append(parts, "sa.Identity()")
	}

	if c.ForeignKey != "" {
		fk := "sa.ForeignKey(" + pyString(c.ForeignKey)
		if c.OnDelete != "" {
			fk += ", ondelete=" + pyString(c.OnDelete)
		}

		parts = append(parts, fk+")")
	}

	if c.PrimaryKey {
		parts = append(parts, "primary_key=True")
	}

	if c.Nullable {
		parts = append(parts, "nullable=True")
	} else {
		parts = append(parts, "nullable=False")
	}

	if c.Unique {
		parts = append(parts, "unique=True")
	}

	if raw := castRe.ReplaceAllString(c.Default.Raw, ""); raw != "" &&
		c.Default.Kind != convert.DefaultIdentity && !strings.EqualFold(raw, "null") {
		parts = append(parts, "server_default=sa.text("+pyString(raw)+")")
	}

	return strings.Join(parts, ", ")
}

func migrationIndex(t convert.ConvertedTable, idx ir.IndexSchema) string {
	name := idx.Name
	if name == "" {
		name = "ix_" + t.Name + "_" + strings.Join(idx.Columns, "_")
	}

	cols := make([]string, 0, len(idx.Columns))
	for _, c := range idx.Columns {
		cols = append(cols, pyString(c))
	}

	parts := []string{pyString(name), pyString(t.Name), "[" + strings.Join(cols, ", ") + "]"}

	if idx.Unique {
		parts = append(parts, "unique=True")
	}

	if idx.Method != "" && !strings.EqualFold(idx.Method, "btree") {
		parts = append(parts, "postgresql_using="+pyString(strings.ToLower(idx.Method)))
	}

	if idx.Where != "" {
		parts = append(parts, "postgresql_where=sa.text("+pyString(idx.Where)+")")
	}

	return strings.Join(parts, ", ")
}

func (g *Generator) migrationData(cm *convert.ConvertedModel) migrationData {
	var d migrationData

	for _, t := range convert.TableOrder(cm.Tables()) {
		mt := migrationTable{Name: t.Name}

		for _, c := range t.Columns {
			mt.Columns = append(mt.Columns, migrationColumn(c))
		}

		for _, idx := range t.Indexes {
			mt.Indexes = append(mt.Indexes, migrationIndex(t, idx))
		}

		d.Tables = append(d.Tables, mt)
		d.Drops = append([]string{t.Name}, d.Drops...)
	}

	return d
}

type projectData struct {
	Project      string
	Slug         string
	AppName      string
	Catalog      string
	Schema       string
	Port         int
	Tier         ScalingTier
	EntityCount  int
	Routers      []string
	Models       []modelRef
	Endpoints    []string
	EnvVars      []string
	Requirements []string
	RequiresAuth bool
	UsesLLM      bool
	UsesHTTP     bool
}

var envNameRe = regexp.MustCompile(`[^A-Z0-9]+`)

func (g *Generator) projectData(cm *convert.ConvertedModel, l layout, tier ScalingTier) projectData {
	name := g.projectName(cm)

	d := projectData{
		Project:      name,
		Slug:         convert.AttrName(name),
		AppName:      strings.ReplaceAll(convert.AttrName(name), "_", "-"),
		Catalog:      g.config.Catalog,
		Schema:       g.config.Schema,
		Port:         g.config.Port,
		Tier:         tier,
		EntityCount:  cm.EntityCount(),
		Endpoints:    cm.Tally.TargetModels(),
		RequiresAuth: cm.RequiresAuth(),
		UsesLLM:      cm.UsesFoundationModels(),
	}

	for _, id := range l.order {
		d.Routers = append(d.Routers, l.routers[id])
	}

	for _, t := range cm.Tables() {
		d.Models = append(d.Models, modelRef{Module: l.tables[t.Name], Class: t.ClassName})
	}

	var hosts []string

	for _, c := range cm.Calls() {
		if c.Capability != ir.CapabilityHTTPRequest || c.Family == "" {
			continue
		}

		d.UsesHTTP = true

		if site, ok := callSite(cm, c.ID); ok {
			if h, ok := site.Param("host"); ok && h != "" {
				hosts = append(hosts, h)
			}
		}
	}

	for _, h := range common.Dedupe(hosts) {
		v := strings.Trim(envNameRe.ReplaceAllString(strings.ToUpper(h), "_"), "_") + "_API_KEY"
		if !slices.Contains(d.EnvVars, v) {
			d.EnvVars = append(d.EnvVars, v)
		}
	}

	sort.Strings(d.EnvVars)

	d.Requirements = requirements(d)

	return d
}

func callSite(cm *convert.ConvertedModel, id ir.CallSiteID) (ir.ExternalCallSite, bool) {
	for _, s := range cm.Model.CallSites() {
		if s.ID == id {
			return s, true
		}
	}

	return ir.ExternalCallSite{}, false
}

func requirements(d projectData) []string {
	reqs := []string{
		"alembic>=1.13",
		"fastapi>=0.110",
		"psycopg[binary]>=3.1",
		"pydantic>=2.6",
		"sqlmodel>=0.0.21",
		"uvicorn[standard]>=0.29",
	}

	if d.UsesLLM || d.RequiresAuth {
		reqs = append(reqs, "databricks-sdk>=0.30")
	}

	if d.UsesLLM {
		reqs = append(reqs, "openai>=1.30")
	}

	if d.UsesHTTP {
		reqs = append(reqs, "httpx>=0.27")
	}

	sort.Strings(reqs)

	return reqs
}

type reportRow struct {
	Name       string
	Detail     string
	Source     string
	Confidence string
}

type countRow struct {
	Key   string
	Count int
}

type reportData struct {
	Project     projectData
	Fingerprint string
	Confidence  string
	Handlers    []reportRow
	Tables      []reportRow
	Calls       []reportRow
	Tally       convert.Tally
	Families    []countRow
	Providers   []countRow
	Diagnostics []diagnosticRow
}

type diagnosticRow struct {
	Severity string
	Code     string
	Subject  string
	Message  string
}

func (g *Generator) reportData(cm *convert.ConvertedModel, p projectData) reportData {
	d := reportData{
		Project:     p,
		Fingerprint: cm.Model.Fingerprint,
		Confidence:  cm.Confidence().String(),
		Tally:       cm.Tally,
	}

	for _, h := range cm.Handlers() {
		d.Handlers = append(d.Handlers, reportRow{
			Name:       h.Name,
			Detail:     h.Method.String() + " " + h.Route,
			Source:     h.SourcePath,
			Confidence: h.Confidence.String(),
		})
	}

	for _, t := range cm.Tables() {
		d.Tables = append(d.Tables, reportRow{
			Name:       t.Name,
			Detail:     fmt.Sprintf("%s, %d columns", t.ClassName, len(t.Columns)),
			Source:     t.Source,
			Confidence: t.Confidence.String(),
		})
	}

	for _, c := range cm.Calls() {
		d.Calls = append(d.Calls, reportRow{
			Name:       string(c.ID),
			Detail:     c.String(),
			Source:     c.Family,
			Confidence: c.Confidence.String(),
		})
	}

	for _, f := range cm.Tally.Families() {
		d.Families = append(d.Families, countRow{Key: f, Count: cm.Tally.ByFamily[f]})
	}

	for _, p := range cm.Tally.Providers() {
		d.Providers = append(d.Providers, countRow{Key: p, Count: cm.Tally.ByProvider[p]})
	}

	for _, diag := range cm.Model.Diagnostics.Items {
		d.Diagnostics = append(d.Diagnostics, diagnosticRowOf(diag.Severity.String(), diag.Code, diag.Subject, diag.Message))
	}

	for _, diag := range cm.Diagnostics.Items {
		d.Diagnostics = append(d.Diagnostics, diagnosticRowOf(diag.Severity.String(), diag.Code, diag.Subject, diag.Message))
	}

	return d
}

func diagnosticRowOf(severity, code, subject, message string) diagnosticRow {
	clean := strings.NewReplacer("|", `\|`, "\n", " ")

	return diagnosticRow{
		Severity: severity,
		Code:     code,
		Subject:  clean.Replace(subject),
		Message:  clean.Replace(message),
	}
}
