package ir

import (
	"fmt"
	"strings"

	"bridge-generator/internal/diagnostic"
)

// HandlerID identifies a handler across a run. It combines the source path
// and the declared name so same-named handlers in different files never
// collide.
type HandlerID string

// NewHandlerID builds the identity of the handler name declared in path.
func NewHandlerID(path, name string) HandlerID {
	return HandlerID(path + "#" + name)
}

// CallSite returns the identity of the i-th external call inside the handler.
func (id HandlerID) CallSite(i int) CallSiteID {
	return CallSiteID(fmt.Sprintf("%s@%d", id, i))
}

// CallSiteID identifies one external call site.
type CallSiteID string

// ProjectModel is the root of the intermediate representation.
type ProjectModel struct {
	// Name is the project identity the run was started for.
	Name         string
	Handlers     []HandlerDescriptor
	Tables       []TableSchema
	Enums        []EnumSchema
	Declarations []TypeDeclaration
	Components   []ComponentDescriptor
	Diagnostics  diagnostic.Diagnostics
	// Fingerprint is a content hash of the input file set.
	Fingerprint string
}

// Handler looks up a handler by identity.
func (m *ProjectModel) Handler(id HandlerID) (HandlerDescriptor, bool) {
	for _, h := range m.Handlers {
		if h.ID == id {
			return h, true
		}
	}

	return HandlerDescriptor{}, false
}

// Table looks up a table by name, ignoring case.
func (m *ProjectModel) Table(name string) (TableSchema, bool) {
	for _, t := range m.Tables {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}

	return TableSchema{}, false
}

// CallSites returns every external call site in handler source order.
func (m *ProjectModel) CallSites() []ExternalCallSite {
	var out []ExternalCallSite
	for _, h := range m.Handlers {
		out = append(out, h.ExternalCalls...)
	}

	return out
}

// HandlerDescriptor describes one API entry point.
type HandlerDescriptor struct {
	ID         HandlerID
	Name       string
	SourcePath string
	Line       int
	// Method is the primary method; Methods lists every method the handler
	// checks for, in source order.
	Method  HTTPMethod
	Methods []HTTPMethod
	Params  []Param
	// BodyType names the declared type of the parsed request body, if any.
	BodyType      string
	Response      ResponseShape
	Operations    []DataOperation
	AuthRequired  bool
	ExternalCalls []ExternalCallSite
}

// Param is one declared handler parameter.
type Param struct {
	Name     string
	Type     TypeDescriptor
	Location ParamLocation
}

// ResponseShape summarizes what a handler sends back.
type ResponseShape struct {
	JSON   bool
	Fields []string
	// Values maps a field to the expression it is set from, as written.
	Values      map[string]string
	StatusCodes []int
}

// FilterHint is one filter applied in a database-client chain.
type FilterHint struct {
	Column   string
	Operator string
	Value    string
}

// DataOperation is one recognized database-client call chain.
type DataOperation struct {
	Table   string
	Kind    OperationKind
	Columns []string
	Filters []FilterHint
	Single  bool
	Line    int
	// Binding is the variable the chain's result is assigned to, if any.
	Binding string
}

// RawParam is one top-level entry of a call's argument object.
type RawParam struct {
	Key   string
	Value string
}

// ExternalCallSite is one recognized call to a third-party service.
type ExternalCallSite struct {
	ID         CallSiteID
	Provider   Provider
	Capability Capability
	// Model is the declared model identifier, empty when not a literal.
	Model string
	// Endpoint is the URL for direct HTTP calls.
	Endpoint string
	Params   []RawParam
	Line     int
	// Binding is the variable the call's result is assigned to, if any.
	Binding string
}

// Param returns the raw value for key.
func (c ExternalCallSite) Param(key string) (string, bool) {
	for _, p := range c.Params {
		if p.Key == key {
			return p.Value, true
		}
	}

	return "", false
}

// TableSchema is one table's accumulated state.
type TableSchema struct {
	Name       string
	Columns    []ColumnSchema
	Indexes    []IndexSchema
	Policies   []PolicySchema
	RLSEnabled bool
	// Implicit is set when the table was first seen through a statement
	// other than CREATE TABLE.
	Implicit bool
	// Source is the migration path that introduced the table.
	Source string
}

// Column returns the named column and its position.
func (t TableSchema) Column(name string) (ColumnSchema, int, bool) {
	for i, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, i, true
		}
	}

	return ColumnSchema{}, -1, false
}

// PrimaryKey returns the primary-key column names in column order.
func (t TableSchema) PrimaryKey() []string {
	var out []string

	for _, c := range t.Columns {
		if c.Constraints.PrimaryKey {
			out = append(out, c.Name)
		}
	}

	return out
}

// Clone returns a deep copy.
func (t TableSchema) Clone() TableSchema {
	c := t

	c.Columns = make([]ColumnSchema, len(t.Columns))
	for i, col := range t.Columns {
		c.Columns[i] = col.Clone()
	}

	c.Indexes = make([]IndexSchema, len(t.Indexes))
	for i, idx := range t.Indexes {
		idx.Columns = append([]string(nil), idx.Columns...)
		c.Indexes[i] = idx
	}

	c.Policies = make([]PolicySchema, len(t.Policies))
	for i, p := range t.Policies {
		p.Roles = append([]string(nil), p.Roles...)
		c.Policies[i] = p
	}

	return c
}

// ColumnSchema is one table column.
type ColumnSchema struct {
	Name string
	Type TypeDescriptor
	// RawType is the column type as written, e.g. "varchar(255)".
	RawType string
	// TypeArgs holds numeric type arguments such as length or precision.
	TypeArgs    []int
	Nullable    bool
	Default     string
	HasDefault  bool
	Constraints ColumnConstraints
}

// Clone returns a deep copy.
func (c ColumnSchema) Clone() ColumnSchema {
	c.TypeArgs = append([]int(nil), c.TypeArgs...)
	if c.Constraints.References != nil {
		ref := *c.Constraints.References
		c.Constraints.References = &ref
	}

	return c
}

// ColumnConstraints are the column-level constraints the model tracks.
type ColumnConstraints struct {
	PrimaryKey bool
	Unique     bool
	References *ForeignKeyRef
}

// ForeignKeyRef is a foreign-key target.
type ForeignKeyRef struct {
	Table    string
	Column   string
	OnDelete string
}

// IndexSchema is one index on a table.
type IndexSchema struct {
	Name    string
	Columns []string
	Unique  bool
	Method  string
	Where   string
}

// PolicySchema is a row-level policy.
type PolicySchema struct {
	Name string
	// Command is ALL, SELECT, INSERT, UPDATE, or DELETE.
	Command    string
	Roles      []string
	Permissive bool
	Using      string
	WithCheck  string
}

// EnumSchema is a database enum type.
type EnumSchema struct {
	Name   string
	Values []string
}

// TypeDeclaration is a named type declared in source.
type TypeDeclaration struct {
	Name       string
	Kind       DeclKind
	Fields     []FieldDecl
	Alias      TypeDescriptor
	Values     []string
	Extends    []string
	SourcePath string
	Line       int
}

// FieldDecl is one member of an interface or object type.
type FieldDecl struct {
	Name     string
	Type     TypeDescriptor
	Optional bool
}

// Field returns the named member.
func (d TypeDeclaration) Field(name string) (FieldDecl, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}

	return FieldDecl{}, false
}

// ComponentDescriptor is informational metadata about a UI component.
type ComponentDescriptor struct {
	Name          string
	Path          string
	IsPage        bool
	Hooks         []string
	SupabaseUsage []string
	Routes        []string
}
