// Package ir defines the intermediate representation shared by analysis,
// conversion, and generation.
//
// The model is platform neutral: handlers, tables, and external call sites
// are described structurally and types travel as TypeDescriptor values
// rather than any language's native types. Values produced by analysis are
// treated as read-only by every later stage; conversions are recorded in
// side tables keyed by HandlerID, table name, and CallSiteID.
package ir
