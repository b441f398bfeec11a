package schema

import (
	"fmt"
	"strconv"
	"strings"

	"bridge-generator/internal/common"
	"bridge-generator/internal/ir"
)

// StatementKind is the kind of a parsed DDL statement.
type StatementKind int

const (
	StmtUnsupported StatementKind = iota
	StmtCreateTable
	StmtAlterTable
	StmtCreateIndex
	StmtCreatePolicy
	StmtCreateEnum
	StmtDropTable
)

// String returns a human-readable statement kind.
func (k StatementKind) String() string {
	switch k {
	case StmtUnsupported:
		return "unsupported"
	case StmtCreateTable:
		return "CREATE TABLE"
	case StmtAlterTable:
		return "ALTER TABLE"
	case StmtCreateIndex:
		return "CREATE INDEX"
	case StmtCreatePolicy:
		return "CREATE POLICY"
	case StmtCreateEnum:
		return "CREATE TYPE"
	case StmtDropTable:
		return "DROP TABLE"
	default:
		return common.UnknownStr
	}
}

// Statement is the structured form of one DDL statement.
type Statement struct {
	Kind StatementKind
	// Table is the target table. DROP TABLE may list more in DropTables.
	Table       string
	DropTables  []string
	IfExists    bool
	IfNotExists bool

	Columns     []ir.ColumnSchema
	Constraints []TableConstraint
	Actions     []AlterAction
	Index       ir.IndexSchema
	Policy      ir.PolicySchema
	Enum        ir.EnumSchema

	// Head is the leading keywords, used to describe unsupported statements.
	Head   string
	Source string
	Line   int
}

// Location returns "source:line" for messages.
func (s Statement) Location() string {
	if s.Source == "" {
		return fmt.Sprintf("line %d", s.Line)
	}

	return fmt.Sprintf("%s:%d", s.Source, s.Line)
}

// ConstraintKind is the kind of a table-level constraint.
type ConstraintKind int

const (
	ConstraintPrimaryKey ConstraintKind = iota
	ConstraintUnique
	ConstraintForeignKey
	ConstraintCheck
)

// TableConstraint is a table-level constraint such as PRIMARY KEY (a, b).
type TableConstraint struct {
	Kind       ConstraintKind
	Name       string
	Columns    []string
	References *ir.ForeignKeyRef
}

// AlterActionKind is one action inside ALTER TABLE.
type AlterActionKind int

const (
	AlterUnsupported AlterActionKind = iota
	AlterAddColumn
	AlterDropColumn
	AlterColumn
	AlterAddConstraint
	AlterEnableRLS
	AlterDisableRLS
	AlterRename
)

// AlterAction is one comma-separated action of an ALTER TABLE statement.
type AlterAction struct {
	Kind        AlterActionKind
	Column      ir.ColumnSchema
	Name        string
	IfExists    bool
	IfNotExists bool
	Change      ColumnChange
	Constraint  TableConstraint
	Detail      string
}

// ColumnChange is the effect of ALTER COLUMN.
type ColumnChange struct {
	SetNotNull  bool
	DropNotNull bool
	SetDefault  bool
	DropDefault bool
	Default     string
	SetType     bool
	Type        ir.TypeDescriptor
	RawType     string
	TypeArgs    []int
}

// ParseStatement converts the tokens of one statement into its structured
// form. Statements outside the supported subset come back as
// StmtUnsupported with Head set; only malformed supported statements return
// an error.
func ParseStatement(toks []Token) (Statement, error) {
	if len(toks) == 0 {
		return Statement{}, ErrUnexpectedEnd
	}

	c := &cursor{toks: toks}
	st := Statement{Line: toks[0].Line}

	switch {
	case c.keyword("CREATE"):
		c.keyword("OR", "REPLACE")

		switch {
		case c.keyword("POLICY"):
			return parseCreatePolicy(c, st)
		case c.keyword("TYPE"):
			return parseCreateType(c, st)
		}

		unique := c.keyword("UNIQUE")
		if c.keyword("INDEX") {
			return parseCreateIndex(c, st, unique)
		}

		for c.keyword("UNLOGGED") || c.keyword("TEMP") || c.keyword("TEMPORARY") {
		}

		if c.keyword("TABLE") {
			return parseCreateTable(c, st)
		}
	case c.keyword("ALTER", "TABLE"):
		return parseAlterTable(c, st)
	case c.keyword("DROP", "TABLE"):
		return parseDropTable(c, st)
	}

	st.Kind = StmtUnsupported
	st.Head = head(toks)

	return st, nil
}

func head(toks []Token) string {
	var words []string

	for _, tok := range toks {
		if tok.Kind != TokenIdent || len(words) == 3 {
			break
		}

		words = append(words, strings.ToUpper(tok.Text))
	}

	if len(words) == 0 {
		return render(toks[:1])
	}

	return strings.Join(words, " ")
}

func parseCreateTable(c *cursor, st Statement) (Statement, error) {
	st.Kind = StmtCreateTable
	st.IfNotExists = c.keyword("IF", "NOT", "EXISTS")

	name, ok := c.qualifiedName()
	if !ok {
		return st, fmt.Errorf("CREATE TABLE: missing table name: %w", ErrUnexpectedToken)
	}

	st.Table = name

	if c.peek().Is("AS") || c.peek().Is("PARTITION") || c.peek().Is("OF") {
		st.Kind = StmtUnsupported
		st.Head = "CREATE TABLE " + strings.ToUpper(c.peek().Text)

		return st, nil
	}

	body, ok := c.group()
	if !ok {
		return st, fmt.Errorf("CREATE TABLE %s: missing column list: %w", name, ErrUnexpectedToken)
	}

	for _, elem := range splitTopLevel(body) {
		if len(elem) == 0 {
			continue
		}

		if isConstraintStart(elem[0]) {
			tc, err := parseTableConstraint(&cursor{toks: elem})
			if err != nil {
				return st, fmt.Errorf("CREATE TABLE %s: %w", name, err)
			}

			st.Constraints = append(st.Constraints, tc)

			continue
		}

		if elem[0].Is("LIKE") {
			continue
		}

		col, err := parseColumnDef(&cursor{toks: elem})
		if err != nil {
			return st, fmt.Errorf("CREATE TABLE %s: %w", name, err)
		}

		st.Columns = append(st.Columns, col)
	}

	return st, nil
}

func isConstraintStart(tok Token) bool {
	return tok.Is("PRIMARY") || tok.Is("FOREIGN") || tok.Is("UNIQUE") ||
		tok.Is("CHECK") || tok.Is("CONSTRAINT") || tok.Is("EXCLUDE")
}

func parseTableConstraint(c *cursor) (TableConstraint, error) {
	var tc TableConstraint

	if c.keyword("CONSTRAINT") {
		name, ok := c.ident()
		if !ok {
			return tc, fmt.Errorf("CONSTRAINT: missing name: %w", ErrUnexpectedToken)
		}

		tc.Name = name
	}

	switch {
	case c.keyword("PRIMARY", "KEY"):
		tc.Kind = ConstraintPrimaryKey
	case c.keyword("UNIQUE"):
		tc.Kind = ConstraintUnique
		c.keyword("NULLS", "NOT", "DISTINCT")
	case c.keyword("FOREIGN", "KEY"):
		tc.Kind = ConstraintForeignKey
	case c.keyword("CHECK"), c.keyword("EXCLUDE"):
		tc.Kind = ConstraintCheck
		return tc, nil
	default:
		return tc, fmt.Errorf("constraint %q: %w", c.peek().Text, ErrUnexpectedToken)
	}

	cols, ok := c.group()
	if !ok {
		return tc, fmt.Errorf("constraint column list: %w", ErrUnexpectedToken)
	}

	tc.Columns = identList(cols)

	if tc.Kind == ConstraintForeignKey {
		if !c.keyword("REFERENCES") {
			return tc, fmt.Errorf("FOREIGN KEY without REFERENCES: %w", ErrUnexpectedToken)
		}

		ref, err := parseReferences(c)
		if err != nil {
			return tc, err
		}

		tc.References = &ref
	}

	return tc, nil
}

// identList extracts plain column names from a comma-separated list,
// rendering anything more complex as text.
func identList(toks []Token) []string {
	var out []string

	for _, part := range splitTopLevel(toks) {
		if len(part) == 0 {
			continue
		}

		pc := &cursor{toks: part}
		if name, ok := pc.ident(); ok && (pc.done() || pc.peek().Is("ASC") || pc.peek().Is("DESC") || pc.peek().Is("NULLS")) {
			out = append(out, name)
			continue
		}

		out = append(out, render(part))
	}

	return out
}

func parseReferences(c *cursor) (ir.ForeignKeyRef, error) {
	var ref ir.ForeignKeyRef

	table, ok := c.qualifiedName()
	if !ok {
		return ref, fmt.Errorf("REFERENCES: missing table: %w", ErrUnexpectedToken)
	}

	ref.Table = table

	if cols, ok := c.group(); ok {
		if names := identList(cols); len(names) > 0 {
			ref.Column = names[0]
		}
	}

	for !c.done() {
		switch {
		case c.keyword("ON", "DELETE"):
			ref.OnDelete = referentialAction(c)
		case c.keyword("ON", "UPDATE"):
			referentialAction(c)
		case c.keyword("MATCH"):
			c.next()
		case c.keyword("DEFERRABLE"), c.keyword("NOT", "DEFERRABLE"),
			c.keyword("INITIALLY", "DEFERRED"), c.keyword("INITIALLY", "IMMEDIATE"):
		default:
			return ref, nil
		}
	}

	return ref, nil
}

func referentialAction(c *cursor) string {
	switch {
	case c.keyword("CASCADE"):
		return "CASCADE"
	case c.keyword("RESTRICT"):
		return "RESTRICT"
	case c.keyword("SET", "NULL"):
		return "SET NULL"
	case c.keyword("SET", "DEFAULT"):
		return "SET DEFAULT"
	case c.keyword("NO", "ACTION"):
		return "NO ACTION"
	default:
		return ""
	}
}

var columnConstraintWords = []string{
	"NOT", "NULL", "DEFAULT", "PRIMARY", "UNIQUE", "REFERENCES",
	"CHECK", "CONSTRAINT", "GENERATED", "COLLATE",
}

func isColumnConstraintWord(tok Token) bool {
	for _, w := range columnConstraintWords {
		if tok.Is(w) {
			return true
		}
	}

	return false
}

func parseColumnDef(c *cursor) (ir.ColumnSchema, error) {
	col := ir.ColumnSchema{Nullable: true}

	name, ok := c.ident()
	if !ok {
		return col, fmt.Errorf("column definition %q: %w", c.peek().Text, ErrUnexpectedToken)
	}

	col.Name = name

	typeToks := c.until(isColumnConstraintWord)
	if len(typeToks) == 0 {
		return col, fmt.Errorf("column %s: missing type: %w", name, ErrUnexpectedEnd)
	}

	col.Type, col.RawType, col.TypeArgs = ParseColumnType(typeToks)

	if err := parseColumnConstraints(c, &col); err != nil {
		return col, fmt.Errorf("column %s: %w", name, err)
	}

	return col, nil
}

func parseColumnConstraints(c *cursor, col *ir.ColumnSchema) error {
	for !c.done() {
		switch {
		case c.keyword("CONSTRAINT"):
			c.ident()
		case c.keyword("NOT", "NULL"):
			col.Nullable = false
		case c.keyword("NULL"):
			col.Nullable = true
		case c.keyword("DEFAULT"):
			if c.keyword("NULL") {
				col.Default = "NULL"
				col.HasDefault = true

				continue
			}

			expr := c.until(isColumnConstraintWord)
			if len(expr) == 0 {
				return fmt.Errorf("DEFAULT without expression: %w", ErrUnexpectedEnd)
			}

			col.Default = render(expr)
			col.HasDefault = true
		case c.keyword("PRIMARY", "KEY"):
			col.Constraints.PrimaryKey = true
			col.Nullable = false
		case c.keyword("UNIQUE"):
			col.Constraints.Unique = true
		case c.keyword("REFERENCES"):
			ref, err := parseReferences(c)
			if err != nil {
				return err
			}

			col.Constraints.References = &ref
		case c.keyword("CHECK"):
			if _, ok := c.group(); !ok {
				return fmt.Errorf("CHECK without expression: %w", ErrUnexpectedToken)
			}
		case c.keyword("GENERATED"):
			expr := c.until(func(t Token) bool { return t.Is("PRIMARY") || t.Is("NOT") || t.Is("UNIQUE") })
			col.HasDefault = true

			col.Default = "generated " + strings.ToLower(render(expr))
			if strings.Contains(col.Default, "identity") {
				col.Default = "identity"
			}
		case c.keyword("COLLATE"):
			c.next()
		default:
			return fmt.Errorf("unexpected %q: %w", c.peek().Text, ErrUnexpectedToken)
		}
	}

	return nil
}

var typeAliases = map[string]string{
	"character varying":           "varchar",
	"character":                   "char",
	"int":                         "integer",
	"int4":                        "integer",
	"int8":                        "bigint",
	"int2":                        "smallint",
	"serial4":                     "serial",
	"serial8":                     "bigserial",
	"bool":                        "boolean",
	"float4":                      "real",
	"float8":                      "double precision",
	"float":                       "double precision",
	"decimal":                     "numeric",
	"timestamp without time zone": "timestamp",
	"timestamp with time zone":    "timestamptz",
	"time without time zone":      "time",
	"time with time zone":         "timetz",
}

// ParseColumnType normalizes a column type. It returns the descriptor, the
// type as written, and any numeric arguments such as varchar length.
func ParseColumnType(toks []Token) (ir.TypeDescriptor, string, []int) {
	var (
		words []string
		args  []int
		array bool
	)

	c := &cursor{toks: toks}
	for !c.done() {
		tok := c.peek()

		switch {
		case tok.IsPunct("("):
			inner, _ := c.group()
			for _, part := range splitTopLevel(inner) {
				if len(part) == 1 && part[0].Kind == TokenNumber {
					if n, err := strconv.Atoi(part[0].Text); err == nil {
						args = append(args, n)
					}
				}
			}
		case tok.IsPunct("["):
			array = true

			c.until(func(t Token) bool { return t.IsPunct("]") })
			c.next()
		case tok.Is("ARRAY"):
			array = true

			c.next()
		case tok.IsPunct("."):
			words = nil

			c.next()
		case tok.Kind == TokenIdent || tok.Kind == TokenQuotedIdent:
			name := tok.Text
			if tok.Kind == TokenIdent {
				name = strings.ToLower(name)
			}

			words = append(words, name)

			c.next()
		default:
			c.next()
		}
	}

	base := strings.Join(words, " ")
	if alias, ok := typeAliases[base]; ok {
		base = alias
	}

	desc := ir.Primitive(base)
	if base == "" {
		desc = ir.Unknown(render(toks))
	}

	if array {
		desc = ir.ArrayOf(desc)
	}

	return desc, render(toks), args
}

func parseCreateIndex(c *cursor, st Statement, unique bool) (Statement, error) {
	st.Kind = StmtCreateIndex
	st.Index.Unique = unique

	c.keyword("CONCURRENTLY")
	st.IfNotExists = c.keyword("IF", "NOT", "EXISTS")

	if !c.peek().Is("ON") {
		name, ok := c.qualifiedName()
		if !ok {
			return st, fmt.Errorf("CREATE INDEX: bad name: %w", ErrUnexpectedToken)
		}

		st.Index.Name = name
	}

	if !c.keyword("ON") {
		return st, fmt.Errorf("CREATE INDEX %s: missing ON: %w", st.Index.Name, ErrUnexpectedToken)
	}

	c.keyword("ONLY")

	table, ok := c.qualifiedName()
	if !ok {
		return st, fmt.Errorf("CREATE INDEX %s: missing table: %w", st.Index.Name, ErrUnexpectedToken)
	}

	st.Table = table

	if c.keyword("USING") {
		method, _ := c.ident()
		st.Index.Method = method
	}

	cols, ok := c.group()
	if !ok {
		return st, fmt.Errorf("CREATE INDEX %s: missing column list: %w", st.Index.Name, ErrUnexpectedToken)
	}

	st.Index.Columns = identList(cols)

	for !c.done() {
		if c.keyword("WHERE") {
			st.Index.Where = render(c.toks[c.pos:])
			break
		}

		c.next()
	}

	return st, nil
}

func parseCreatePolicy(c *cursor, st Statement) (Statement, error) {
	st.Kind = StmtCreatePolicy
	st.Policy = ir.PolicySchema{Command: "ALL", Permissive: true}

	name, ok := c.ident()
	if !ok {
		return st, fmt.Errorf("CREATE POLICY: missing name: %w", ErrUnexpectedToken)
	}

	st.Policy.Name = name

	if !c.keyword("ON") {
		return st, fmt.Errorf("CREATE POLICY %s: missing ON: %w", name, ErrUnexpectedToken)
	}

	table, ok := c.qualifiedName()
	if !ok {
		return st, fmt.Errorf("CREATE POLICY %s: missing table: %w", name, ErrUnexpectedToken)
	}

	st.Table = table

	for !c.done() {
		switch {
		case c.keyword("AS", "PERMISSIVE"):
			st.Policy.Permissive = true
		case c.keyword("AS", "RESTRICTIVE"):
			st.Policy.Permissive = false
		case c.keyword("FOR"):
			st.Policy.Command = strings.ToUpper(c.next().Text)
		case c.keyword("TO"):
			roles := c.until(func(t Token) bool { return t.Is("USING") || t.Is("WITH") })
			for _, part := range splitTopLevel(roles) {
				st.Policy.Roles = append(st.Policy.Roles, strings.ToLower(render(part)))
			}
		case c.keyword("USING"):
			expr, ok := c.group()
			if !ok {
				return st, fmt.Errorf("CREATE POLICY %s: USING needs a parenthesized expression: %w", name, ErrUnexpectedToken)
			}

			st.Policy.Using = render(expr)
		case c.keyword("WITH", "CHECK"):
			expr, ok := c.group()
			if !ok {
				return st, fmt.Errorf("CREATE POLICY %s: WITH CHECK needs a parenthesized expression: %w", name, ErrUnexpectedToken)
			}

			st.Policy.WithCheck = render(expr)
		default:
			return st, fmt.Errorf("CREATE POLICY %s: unexpected %q: %w", name, c.peek().Text, ErrUnexpectedToken)
		}
	}

	return st, nil
}

func parseCreateType(c *cursor, st Statement) (Statement, error) {
	name, ok := c.qualifiedName()
	if !ok || !c.keyword("AS", "ENUM") {
		st.Kind = StmtUnsupported
		st.Head = "CREATE TYPE"

		return st, nil
	}

	st.Kind = StmtCreateEnum
	st.Enum.Name = name

	vals, ok := c.group()
	if !ok {
		return st, fmt.Errorf("CREATE TYPE %s: missing value list: %w", name, ErrUnexpectedToken)
	}

	for _, part := range splitTopLevel(vals) {
		if len(part) == 1 && part[0].Kind == TokenString {
			st.Enum.Values = append(st.Enum.Values, part[0].Text)
		}
	}

	return st, nil
}

func parseDropTable(c *cursor, st Statement) (Statement, error) {
	st.Kind = StmtDropTable
	st.IfExists = c.keyword("IF", "EXISTS")

	names := c.until(func(t Token) bool { return t.Is("CASCADE") || t.Is("RESTRICT") })
	for _, part := range splitTopLevel(names) {
		pc := &cursor{toks: part}

		name, ok := pc.qualifiedName()
		if !ok {
			return st, fmt.Errorf("DROP TABLE: bad name: %w", ErrUnexpectedToken)
		}

		st.DropTables = append(st.DropTables, name)
	}

	if len(st.DropTables) == 0 {
		return st, fmt.Errorf("DROP TABLE: %w", ErrUnexpectedEnd)
	}

	st.Table = st.DropTables[0]

	return st, nil
}

func parseAlterTable(c *cursor, st Statement) (Statement, error) {
	st.Kind = StmtAlterTable
	st.IfExists = c.keyword("IF", "EXISTS")
	c.keyword("ONLY")

	name, ok := c.qualifiedName()
	if !ok {
		return st, fmt.Errorf("ALTER TABLE: missing table name: %w", ErrUnexpectedToken)
	}

	st.Table = name

	for _, part := range splitTopLevel(c.toks[c.pos:]) {
		act, err := parseAlterAction(&cursor{toks: part})
		if err != nil {
			return st, fmt.Errorf("ALTER TABLE %s: %w", name, err)
		}

		st.Actions = append(st.Actions, act)
	}

	if len(st.Actions) == 0 {
		return st, fmt.Errorf("ALTER TABLE %s: no action: %w", name, ErrUnexpectedEnd)
	}

	return st, nil
}

func parseAlterAction(c *cursor) (AlterAction, error) {
	var act AlterAction

	switch {
	case c.keyword("ADD"):
		if c.peek().Is("COLUMN") || !isConstraintStart(c.peek()) {
			c.keyword("COLUMN")
			act.Kind = AlterAddColumn
			act.IfNotExists = c.keyword("IF", "NOT", "EXISTS")

			col, err := parseColumnDef(c)
			if err != nil {
				return act, err
			}

			act.Column = col

			return act, nil
		}

		tc, err := parseTableConstraint(c)
		if err != nil {
			return act, err
		}

		act.Kind = AlterAddConstraint
		act.Constraint = tc

		return act, nil
	case c.keyword("DROP"):
		if c.peek().Is("CONSTRAINT") {
			act.Kind = AlterUnsupported
			act.Detail = "DROP " + render(c.toks[c.pos:])

			return act, nil
		}

		c.keyword("COLUMN")
		act.Kind = AlterDropColumn
		act.IfExists = c.keyword("IF", "EXISTS")

		name, ok := c.ident()
		if !ok {
			return act, fmt.Errorf("DROP COLUMN: missing name: %w", ErrUnexpectedToken)
		}

		act.Name = name

		return act, nil
	case c.keyword("ALTER"):
		c.keyword("COLUMN")
		act.Kind = AlterColumn

		name, ok := c.ident()
		if !ok {
			return act, fmt.Errorf("ALTER COLUMN: missing name: %w", ErrUnexpectedToken)
		}

		act.Name = name

		return act, parseColumnChange(c, &act)
	case c.keyword("ENABLE", "ROW", "LEVEL", "SECURITY"), c.keyword("FORCE", "ROW", "LEVEL", "SECURITY"):
		act.Kind = AlterEnableRLS
		return act, nil
	case c.keyword("DISABLE", "ROW", "LEVEL", "SECURITY"):
		act.Kind = AlterDisableRLS
		return act, nil
	case c.peek().Is("RENAME"):
		act.Kind = AlterRename
		act.Detail = render(c.toks[c.pos:])

		return act, nil
	}

	act.Kind = AlterUnsupported
	act.Detail = render(c.toks[c.pos:])

	return act, nil
}

func parseColumnChange(c *cursor, act *AlterAction) error {
	switch {
	case c.keyword("SET", "NOT", "NULL"):
		act.Change.SetNotNull = true
	case c.keyword("DROP", "NOT", "NULL"):
		act.Change.DropNotNull = true
	case c.keyword("SET", "DEFAULT"):
		act.Change.SetDefault = true
		act.Change.Default = render(c.toks[c.pos:])
	case c.keyword("DROP", "DEFAULT"):
		act.Change.DropDefault = true
	case c.keyword("SET", "DATA", "TYPE"), c.keyword("TYPE"):
		typeToks := c.until(func(t Token) bool { return t.Is("USING") || t.Is("COLLATE") })
		if len(typeToks) == 0 {
			return fmt.Errorf("ALTER COLUMN %s TYPE: %w", act.Name, ErrUnexpectedEnd)
		}

		act.Change.SetType = true
		act.Change.Type, act.Change.RawType, act.Change.TypeArgs = ParseColumnType(typeToks)
	default:
		act.Kind = AlterUnsupported
		act.Detail = "ALTER COLUMN " + act.Name + " " + render(c.toks[c.pos:])
	}

	return nil
}
