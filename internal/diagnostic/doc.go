// Package diagnostic provides the ordered diagnostics list shared by every
// pipeline stage.
//
// Each entry carries a severity, a code naming its kind (see the Code*
// constants), the identity of the entity it concerns, and a message.
// Stages never return non-fatal problems as Go errors; they append a
// Diagnostic and carry on with a best-effort result.
package diagnostic
