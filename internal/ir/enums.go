package ir

import "strings"

//go:generate go tool stringer -type=HTTPMethod,OperationKind,ParamLocation,Provider,Capability,Confidence,TypeKind,DeclKind -linecomment -output=enums_string.go

// HTTPMethod is the request method a handler answers.
type HTTPMethod int

const (
	MethodUnknown HTTPMethod = iota // unknown
	MethodGet                       // GET
	MethodPost                      // POST
	MethodPut                       // PUT
	MethodPatch                     // PATCH
	MethodDelete                    // DELETE
)

// ParseHTTPMethod maps a method name to its enum value, ignoring case.
func ParseHTTPMethod(s string) HTTPMethod {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "GET":
		return MethodGet
	case "POST":
		return MethodPost
	case "PUT":
		return MethodPut
	case "PATCH":
		return MethodPatch
	case "DELETE":
		return MethodDelete
	default:
		return MethodUnknown
	}
}

// OperationKind is the closed set of database-client operations.
type OperationKind int

const (
	OpUnknown OperationKind = iota // unknown
	OpSelect                       // select
	OpInsert                       // insert
	OpUpdate                       // update
	OpDelete                       // delete
	OpUpsert                       // upsert
)

// ParseOperationKind maps a fluent client method name to an operation kind.
func ParseOperationKind(method string) (OperationKind, bool) {
	switch method {
	case "select":
		return OpSelect, true
	case "insert":
		return OpInsert, true
	case "update":
		return OpUpdate, true
	case "delete":
		return OpDelete, true
	case "upsert":
		return OpUpsert, true
	default:
		return OpUnknown, false
	}
}

// IsWrite reports whether the operation mutates rows.
func (k OperationKind) IsWrite() bool {
	return k == OpInsert || k == OpUpdate || k == OpDelete || k == OpUpsert
}

// ParamLocation says where a handler parameter is read from.
type ParamLocation int

const (
	ParamBody  ParamLocation = iota // body
	ParamQuery                      // query
	ParamPath                       // path
)

// Provider tags the third-party service behind an external call.
type Provider int

const (
	ProviderUnknown   Provider = iota // unknown
	ProviderOpenAI                    // openai
	ProviderAnthropic                 // anthropic
	ProviderGoogle                    // google
)

// ParseProvider maps a provider tag back to its enum value.
func ParseProvider(s string) (Provider, bool) {
	for p := ProviderUnknown; p <= ProviderGoogle; p++ {
		if p.String() == strings.ToLower(strings.TrimSpace(s)) {
			return p, true
		}
	}

	return ProviderUnknown, false
}

// Capability is what an external call asks the provider to do.
type Capability int

const (
	CapabilityUnknown        Capability = iota // unknown
	CapabilityChatCompletion                   // chat-completion
	CapabilityTextCompletion                   // text-completion
	CapabilityEmbedding                        // embedding
	CapabilityHTTPRequest                      // http-request
)

// ParseCapability maps a capability tag back to its enum value.
func ParseCapability(s string) (Capability, bool) {
	for c := CapabilityUnknown; c <= CapabilityHTTPRequest; c++ {
		if c.String() == strings.ToLower(strings.TrimSpace(s)) {
			return c, true
		}
	}

	return CapabilityUnknown, false
}

// Confidence grades how certain a conversion is. Higher values are worse.
type Confidence int

const (
	ConfidenceExact        Confidence = iota // exact
	ConfidenceApproximate                    // approximate
	ConfidenceManualReview                   // manual-review
)

// Worst returns the least certain of the given confidences, or exact when
// none are given.
func Worst(cs ...Confidence) Confidence {
	w := ConfidenceExact
	for _, c := range cs {
		if c > w {
			w = c
		}
	}

	return w
}

// DeclKind is the form of a type declaration.
type DeclKind int

const (
	DeclInterface DeclKind = iota // interface
	DeclAlias                     // alias
	DeclEnum                      // enum
)
