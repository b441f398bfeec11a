// Package convert maps the analyzed project model onto the target platform.
//
// Three converters run over an [ir.ProjectModel]:
//   - [TypeConverter] maps type descriptors through a dialect rule table and
//     a registry of converted declarations.
//   - [APICallConverter] routes external call sites to a capability family
//     and a target serving model through the tier table.
//   - [Converter] applies both to every handler, table and call site and
//     returns a [ConvertedModel] whose [ConversionResult] is keyed by entity
//     identity. The source descriptors are never edited.
//
// Everything here is pure: identical inputs give identical outputs, and the
// per-category [Tally] is a fold over the results rather than shared state.
package convert
