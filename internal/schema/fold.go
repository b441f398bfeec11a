package schema

import (
	"fmt"
	"slices"
	"strings"

	"bridge-generator/internal/diagnostic"
	"bridge-generator/internal/ir"
)

// Schema is an immutable snapshot of the accumulated database shape.
// The zero value is an empty schema.
type Schema struct {
	tables []ir.TableSchema
	enums  []ir.EnumSchema
}

// Tables returns deep copies of the tables in creation order.
func (s Schema) Tables() []ir.TableSchema {
	out := make([]ir.TableSchema, len(s.tables))
	for i, t := range s.tables {
		out[i] = t.Clone()
	}

	return out
}

// Table returns a copy of the named table.
func (s Schema) Table(name string) (ir.TableSchema, bool) {
	if i := s.tableIndex(name); i >= 0 {
		return s.tables[i].Clone(), true
	}

	return ir.TableSchema{}, false
}

// Enums returns the enum types in creation order.
func (s Schema) Enums() []ir.EnumSchema {
	out := make([]ir.EnumSchema, len(s.enums))
	for i, e := range s.enums {
		e.Values = slices.Clone(e.Values)
		out[i] = e
	}

	return out
}

func (s Schema) tableIndex(name string) int {
	return slices.IndexFunc(s.tables, func(t ir.TableSchema) bool { return strings.EqualFold(t.Name, name) })
}

func (s Schema) hasEnum(name string) bool {
	return slices.ContainsFunc(s.enums, func(e ir.EnumSchema) bool { return strings.EqualFold(e.Name, name) })
}

// shallow copy; tables are cloned individually before mutation
func (s Schema) fork() Schema {
	return Schema{tables: slices.Clone(s.tables), enums: slices.Clone(s.enums)}
}

// edit clones table i, applies fn, and stores the result.
func (s *Schema) edit(i int, fn func(t *ir.TableSchema)) {
	t := s.tables[i].Clone()
	fn(&t)
	s.tables[i] = t
}

// Apply folds one statement into s and returns the resulting schema. The
// input schema is never modified. Statements that cannot be applied leave
// the schema unchanged and are reported.
func Apply(s Schema, st Statement) (Schema, []diagnostic.Diagnostic) {
	switch st.Kind {
	case StmtCreateTable:
		return applyCreateTable(s, st)
	case StmtAlterTable:
		return applyAlterTable(s, st)
	case StmtCreateIndex:
		return applyCreateIndex(s, st)
	case StmtCreatePolicy:
		return applyCreatePolicy(s, st)
	case StmtCreateEnum:
		return applyCreateEnum(s, st)
	case StmtDropTable:
		return applyDropTable(s, st)
	default:
		return s, []diagnostic.Diagnostic{
			diagnostic.Infof(diagnostic.CodeStatementIgnored, st.Source, "%s: %s statement ignored", st.Location(), st.Head),
		}
	}
}

func foldWarning(st Statement, subject, format string, args ...any) diagnostic.Diagnostic {
	return diagnostic.Warningf(diagnostic.CodeSchemaFold, subject, "%s: %s", st.Location(), fmt.Sprintf(format, args...))
}

func foldInfo(st Statement, subject, format string, args ...any) diagnostic.Diagnostic {
	return diagnostic.Infof(diagnostic.CodeStatementIgnored, subject, "%s: %s", st.Location(), fmt.Sprintf(format, args...))
}

// resolveEnum turns references to known enum types into Named descriptors.
func (s Schema) resolveEnum(col ir.ColumnSchema) ir.ColumnSchema {
	switch {
	case col.Type.Kind == ir.KindPrimitive && s.hasEnum(col.Type.Name):
		col.Type = ir.Named(col.Type.Name)
	case col.Type.Kind == ir.KindArray && col.Type.Inner().Kind == ir.KindPrimitive && s.hasEnum(col.Type.Inner().Name):
		col.Type = ir.ArrayOf(ir.Named(col.Type.Inner().Name))
	}

	return col
}

func applyCreateTable(s Schema, st Statement) (Schema, []diagnostic.Diagnostic) {
	var diags []diagnostic.Diagnostic

	next := s.fork()

	cols := make([]ir.ColumnSchema, 0, len(st.Columns))
	for _, c := range st.Columns {
		cols = append(cols, next.resolveEnum(c.Clone()))
	}

	i := next.tableIndex(st.Table)

	switch {
	case i < 0:
		next.tables = append(next.tables, ir.TableSchema{Name: st.Table, Columns: cols, Source: st.Source})
		i = len(next.tables) - 1
	case next.tables[i].Implicit && len(next.tables[i].Columns) == 0:
		next.edit(i, func(t *ir.TableSchema) {
			t.Columns = cols
			t.Implicit = false
			t.Source = st.Source
		})
	case st.IfNotExists:
		return s, []diagnostic.Diagnostic{foldInfo(st, st.Table, "table %q already exists; CREATE TABLE IF NOT EXISTS is a no-op", st.Table)}
	default:
		return s, []diagnostic.Diagnostic{foldWarning(st, st.Table, "table %q already exists; statement skipped", st.Table)}
	}

	for _, tc := range st.Constraints {
		next.edit(i, func(t *ir.TableSchema) {
			diags = append(diags, applyConstraint(t, tc, st)...)
		})
	}

	return next, diags
}

func applyConstraint(t *ir.TableSchema, tc TableConstraint, st Statement) []diagnostic.Diagnostic {
	if tc.Kind == ConstraintCheck {
		return nil
	}

	var diags []diagnostic.Diagnostic

	positions := make([]int, 0, len(tc.Columns))

	for _, name := range tc.Columns {
		_, pos, ok := t.Column(name)
		if !ok {
			diags = append(diags, foldWarning(st, t.Name, "constraint references unknown column %q of table %q", name, t.Name))
			continue
		}

		positions = append(positions, pos)
	}

	if len(positions) == 0 {
		return diags
	}

	switch tc.Kind {
	case ConstraintPrimaryKey:
		for _, pos := range positions {
			t.Columns[pos].Constraints.PrimaryKey = true
			t.Columns[pos].Nullable = false
		}
	case ConstraintUnique:
		if len(positions) == 1 {
			t.Columns[positions[0]].Constraints.Unique = true
			break
		}

		name := tc.Name
		if name == "" {
			name = t.Name + "_" + strings.Join(tc.Columns, "_") + "_key"
		}

		t.Indexes = append(t.Indexes, ir.IndexSchema{Name: name, Columns: slices.Clone(tc.Columns), Unique: true})
	case ConstraintForeignKey:
		if tc.References != nil {
			ref := *tc.References
			t.Columns[positions[0]].Constraints.References = &ref
		}
	}

	return diags
}

func applyAlterTable(s Schema, st Statement) (Schema, []diagnostic.Diagnostic) {
	i := s.tableIndex(st.Table)
	if i < 0 {
		if st.IfExists {
			return s, []diagnostic.Diagnostic{foldInfo(st, st.Table, "ALTER TABLE IF EXISTS on unknown table %q is a no-op", st.Table)}
		}

		return s, []diagnostic.Diagnostic{foldWarning(st, st.Table, "ALTER TABLE on unknown table %q; statement skipped", st.Table)}
	}

	var diags []diagnostic.Diagnostic

	next := s.fork()

	for _, act := range st.Actions {
		next.edit(i, func(t *ir.TableSchema) {
			diags = append(diags, next.applyAction(t, act, st)...)
		})
	}

	return next, diags
}

func (s Schema) applyAction(t *ir.TableSchema, act AlterAction, st Statement) []diagnostic.Diagnostic {
	switch act.Kind {
	case AlterAddColumn:
		if _, _, ok := t.Column(act.Column.Name); ok {
			if act.IfNotExists {
				return []diagnostic.Diagnostic{foldInfo(st, t.Name, "column %q already exists; ADD COLUMN IF NOT EXISTS is a no-op", act.Column.Name)}
			}

			return []diagnostic.Diagnostic{foldWarning(st, t.Name, "column %q already exists on %q; action skipped", act.Column.Name, t.Name)}
		}

		t.Columns = append(t.Columns, s.resolveEnum(act.Column.Clone()))
	case AlterDropColumn:
		_, pos, ok := t.Column(act.Name)
		if !ok {
			if act.IfExists {
				return []diagnostic.Diagnostic{foldInfo(st, t.Name, "DROP COLUMN IF EXISTS on unknown column %q is a no-op", act.Name)}
			}

			return []diagnostic.Diagnostic{foldWarning(st, t.Name, "DROP COLUMN on unknown column %q of %q; action skipped", act.Name, t.Name)}
		}

		t.Columns = slices.Delete(t.Columns, pos, pos+1)
		t.Indexes = slices.DeleteFunc(t.Indexes, func(idx ir.IndexSchema) bool {
			return slices.Contains(idx.Columns, act.Name)
		})
	case AlterColumn:
		_, pos, ok := t.Column(act.Name)
		if !ok {
			return []diagnostic.Diagnostic{foldWarning(st, t.Name, "ALTER COLUMN on unknown column %q of %q; action skipped", act.Name, t.Name)}
		}

		col := &t.Columns[pos]
		ch := act.Change

		switch {
		case ch.SetNotNull:
			col.Nullable = false
		case ch.DropNotNull:
			col.Nullable = true
		case ch.SetDefault:
			col.Default, col.HasDefault = ch.Default, true
		case ch.DropDefault:
			col.Default, col.HasDefault = "", false
		case ch.SetType:
			tmp := s.resolveEnum(ir.ColumnSchema{Type: ch.Type})
			col.Type, col.RawType, col.TypeArgs = tmp.Type, ch.RawType, slices.Clone(ch.TypeArgs)
		}
	case AlterAddConstraint:
		return applyConstraint(t, act.Constraint, st)
	case AlterEnableRLS:
		t.RLSEnabled = true
	case AlterDisableRLS:
		t.RLSEnabled = false
	case AlterRename:
		return []diagnostic.Diagnostic{
			foldWarning(st, t.Name, "rename is not tracked (%s); later statements see the old name", act.Detail),
		}
	default:
		return []diagnostic.Diagnostic{foldInfo(st, t.Name, "ALTER TABLE action ignored: %s", act.Detail)}
	}

	return nil
}

// implicitTable returns the index of the named table, creating an implicit
// entry when the table has not been seen.
func (s *Schema) implicitTable(name, source string) int {
	if i := s.tableIndex(name); i >= 0 {
		return i
	}

	s.tables = append(s.tables, ir.TableSchema{Name: name, Implicit: true, Source: source})

	return len(s.tables) - 1
}

func applyCreateIndex(s Schema, st Statement) (Schema, []diagnostic.Diagnostic) {
	if st.Index.Name != "" {
		for _, t := range s.tables {
			if slices.ContainsFunc(t.Indexes, func(idx ir.IndexSchema) bool { return idx.Name == st.Index.Name }) {
				if st.IfNotExists {
					return s, []diagnostic.Diagnostic{foldInfo(st, st.Table, "index %q already exists; CREATE INDEX IF NOT EXISTS is a no-op", st.Index.Name)}
				}

				return s, []diagnostic.Diagnostic{foldWarning(st, st.Table, "index %q already exists; statement skipped", st.Index.Name)}
			}
		}
	}

	next := s.fork()
	i := next.implicitTable(st.Table, st.Source)

	idx := st.Index
	idx.Columns = slices.Clone(idx.Columns)

	if idx.Name == "" {
		idx.Name = st.Table + "_" + strings.Join(idx.Columns, "_") + "_idx"
	}

	next.edit(i, func(t *ir.TableSchema) {
		t.Indexes = append(t.Indexes, idx)
	})

	return next, nil
}

func applyCreatePolicy(s Schema, st Statement) (Schema, []diagnostic.Diagnostic) {
	if i := s.tableIndex(st.Table); i >= 0 {
		if slices.ContainsFunc(s.tables[i].Policies, func(p ir.PolicySchema) bool { return p.Name == st.Policy.Name }) {
			return s, []diagnostic.Diagnostic{foldWarning(st, st.Table, "policy %q already exists on %q; statement skipped", st.Policy.Name, st.Table)}
		}
	}

	next := s.fork()
	i := next.implicitTable(st.Table, st.Source)

	pol := st.Policy
	pol.Roles = slices.Clone(pol.Roles)

	next.edit(i, func(t *ir.TableSchema) {
		t.Policies = append(t.Policies, pol)
	})

	return next, nil
}

func applyCreateEnum(s Schema, st Statement) (Schema, []diagnostic.Diagnostic) {
	if s.hasEnum(st.Enum.Name) {
		return s, []diagnostic.Diagnostic{foldWarning(st, st.Enum.Name, "type %q already exists; statement skipped", st.Enum.Name)}
	}

	next := s.fork()
	next.enums = append(next.enums, ir.EnumSchema{Name: st.Enum.Name, Values: slices.Clone(st.Enum.Values)})

	return next, nil
}

func applyDropTable(s Schema, st Statement) (Schema, []diagnostic.Diagnostic) {
	var diags []diagnostic.Diagnostic

	next := s.fork()

	for _, name := range st.DropTables {
		i := next.tableIndex(name)
		if i < 0 {
			if !st.IfExists {
				diags = append(diags, foldWarning(st, name, "DROP TABLE on unknown table %q; skipped", name))
			}

			continue
		}

		next.tables = slices.Delete(next.tables, i, i+1)
	}

	return next, diags
}
