package convert

import (
	"strings"

	"bridge-generator/internal/common"
	"bridge-generator/internal/diagnostic"
	"bridge-generator/internal/ir"
)

// ConversionResult maps every analyzed entity identity to its converted
// counterpart. It is total over the model it was computed from.
type ConversionResult struct {
	Handlers map[ir.HandlerID]ConvertedHandler
	// Tables is keyed by table name.
	Tables map[string]ConvertedTable
	Calls  map[ir.CallSiteID]ConvertedCall
}

// ConvertedModel is the project model together with its conversion.
type ConvertedModel struct {
	Model        *ir.ProjectModel
	Result       ConversionResult
	Declarations []ConvertedDeclaration
	Enums        []ConvertedEnum
	// Imports maps target type names to the import statement they need.
	Imports     map[string]string
	Tally       Tally
	Diagnostics diagnostic.Diagnostics
}

// ConvertedHandler is the target form of a handler.
type ConvertedHandler struct {
	ID       ir.HandlerID
	Name     string
	FuncName string
	Route    string
	Method   ir.HTTPMethod
	// Methods lists every accepted method, primary first.
	Methods      []ir.HTTPMethod
	Params       []ConvertedParam
	BodyType     string
	Operations   []ConvertedOperation
	Calls        []ir.CallSiteID
	AuthRequired bool
	StatusCode   int
	// ResponseFields are the top-level keys of the JSON response.
	ResponseFields []string
	// ResponseValues maps a response key to its source expression.
	ResponseValues map[string]string
	SourcePath     string
	Confidence     ir.Confidence
}

// ConvertedParam is one converted handler parameter.
type ConvertedParam struct {
	Name       string
	Attr       string
	Type       ir.TypeDescriptor
	Location   ir.ParamLocation
	Required   bool
	Confidence ir.Confidence
}

// BodyParams returns the parameters read from the request body.
func (h ConvertedHandler) BodyParams() []ConvertedParam {
	return h.paramsAt(ir.ParamBody)
}

// QueryParams returns the parameters read from the query string.
func (h ConvertedHandler) QueryParams() []ConvertedParam {
	return h.paramsAt(ir.ParamQuery)
}

// PathParams returns the parameters read from the URL path.
func (h ConvertedHandler) PathParams() []ConvertedParam {
	return h.paramsAt(ir.ParamPath)
}

func (h ConvertedHandler) paramsAt(loc ir.ParamLocation) []ConvertedParam {
	var out []ConvertedParam

	for _, p := range h.Params {
		if p.Location == loc {
			out = append(out, p)
		}
	}

	return out
}

// ConvertedOperation is a data operation linked to a target model.
type ConvertedOperation struct {
	Table string
	// ModelName is the target class of the table, empty when the table is
	// not defined by any migration.
	ModelName  string
	Kind       ir.OperationKind
	Columns    []string
	Filters    []ir.FilterHint
	Single     bool
	Line       int
	Binding    string
	Confidence ir.Confidence
}

// Defined reports whether the operation's table is known.
func (o ConvertedOperation) Defined() bool {
	return o.ModelName != ""
}

// ConvertedTable is the target form of a table.
type ConvertedTable struct {
	Name       string
	ClassName  string
	Columns    []ConvertedColumn
	PrimaryKey []string
	Indexes    []ir.IndexSchema
	Policies   []ir.PolicySchema
	RLSEnabled bool
	Source     string
	Confidence ir.Confidence
}

// DefaultKind says how a column default is expressed in the target.
type DefaultKind int

const (
	// DefaultNone - no default.
	DefaultNone DefaultKind = iota
	// DefaultLiteral - a literal value.
	DefaultLiteral
	// DefaultFactory - a factory called per row (uuid4, utcnow).
	DefaultFactory
	// DefaultIdentity - an auto-incrementing identity column.
	DefaultIdentity
	// DefaultManual - an expression with no target equivalent.
	DefaultManual
)

// String returns a human-readable default kind.
func (k DefaultKind) String() string {
	switch k {
	case DefaultNone:
		return "none"
	case DefaultLiteral:
		return "literal"
	case DefaultFactory:
		return "factory"
	case DefaultIdentity:
		return "identity"
	case DefaultManual:
		return "manual"
	default:
		return common.UnknownStr
	}
}

// ColumnDefault is a converted column default.
type ColumnDefault struct {
	Kind DefaultKind
	// Value is the target expression: a literal or a factory name.
	Value string
	// Raw is the default as written in SQL.
	Raw string
}

// ConvertedColumn is the target form of a column.
type ConvertedColumn struct {
	Name string
	Attr string
	// Type is the target type, wrapped Optional when the column is nullable.
	Type ir.TypeDescriptor
	// ColumnType is the column type constructor used in migrations.
	ColumnType    string
	Nullable      bool
	PrimaryKey    bool
	Unique        bool
	ForeignKey    string
	OnDelete      string
	MaxLength     int
	MaxDigits     int
	DecimalPlaces int
	Default       ColumnDefault
	Confidence    ir.Confidence
}

// Handlers returns the converted handlers in source order.
func (cm *ConvertedModel) Handlers() []ConvertedHandler {
	out := make([]ConvertedHandler, 0, len(cm.Model.Handlers))
	for _, h := range cm.Model.Handlers {
		out = append(out, cm.Result.Handlers[h.ID])
	}

	return out
}

// Tables returns the converted tables in schema order.
func (cm *ConvertedModel) Tables() []ConvertedTable {
	out := make([]ConvertedTable, 0, len(cm.Model.Tables))
	for _, t := range cm.Model.Tables {
		out = append(out, cm.Result.Tables[t.Name])
	}

	return out
}

// Calls returns the converted call sites in handler source order.
func (cm *ConvertedModel) Calls() []ConvertedCall {
	sites := cm.Model.CallSites()

	out := make([]ConvertedCall, 0, len(sites))
	for _, s := range sites {
		out = append(out, cm.Result.Calls[s.ID])
	}

	return out
}

// Call returns the converted call site for id.
func (cm *ConvertedModel) Call(id ir.CallSiteID) (ConvertedCall, bool) {
	c, ok := cm.Result.Calls[id]
	return c, ok
}

// Table returns the converted table by name. Without an exact match the
// first table in schema order whose name matches ignoring case is used.
func (cm *ConvertedModel) Table(name string) (ConvertedTable, bool) {
	if t, ok := cm.Result.Tables[name]; ok {
		return t, true
	}

	for _, t := range cm.Model.Tables {
		if strings.EqualFold(t.Name, name) {
			return cm.Result.Tables[t.Name], true
		}
	}

	return ConvertedTable{}, false
}

// EntityCount is the handler plus table count used to pick a scaling tier.
func (cm *ConvertedModel) EntityCount() int {
	return len(cm.Model.Handlers) + len(cm.Model.Tables)
}

// RequiresAuth reports whether any handler requires an authenticated user.
func (cm *ConvertedModel) RequiresAuth() bool {
	for _, h := range cm.Model.Handlers {
		if h.AuthRequired {
			return true
		}
	}

	return false
}

// UsesFoundationModels reports whether any call routes to a serving endpoint.
func (cm *ConvertedModel) UsesFoundationModels() bool {
	for _, c := range cm.Result.Calls {
		if c.IsFoundationModel() {
			return true
		}
	}

	return false
}

// UsesHTTPClient reports whether any call is kept as a plain HTTP request.
func (cm *ConvertedModel) UsesHTTPClient() bool {
	for _, c := range cm.Result.Calls {
		if c.Capability == ir.CapabilityHTTPRequest {
			return true
		}
	}

	return false
}

// Confidence returns the worst confidence of any converted entity,
// declarations included.
func (cm *ConvertedModel) Confidence() ir.Confidence {
	w := ir.ConfidenceExact

	for _, h := range cm.Result.Handlers {
		w = ir.Worst(w, h.Confidence)
	}

	for _, t := range cm.Result.Tables {
		w = ir.Worst(w, t.Confidence)
	}

	for _, c := range cm.Result.Calls {
		w = ir.Worst(w, c.Confidence)
	}

	for _, d := range cm.Declarations {
		w = ir.Worst(w, d.Confidence)
	}

	return w
}
