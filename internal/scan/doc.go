// Package scan extracts declarative descriptors from TypeScript source text
// without parsing the language.
//
// Scanning works on a copy of the source whose comments are blanked out
// (byte offsets are preserved so line numbers stay exact). Known shapes are
// located with regular expressions and their extents found by bracket
// matching that skips string and template literals:
//
//   - handler entry points: serve(...) callbacks and exported functions
//     taking a Request;
//   - request parameters: destructured req.json() bodies, searchParams
//     reads, URLPattern path segments;
//   - database-client chains: <client>.from('table').select()...;
//   - third-party SDK usage: imports of known SDK modules, client
//     instantiation, completion/embedding calls, fetch() to provider hosts;
//   - type declarations: interfaces, type aliases, enums.
//
// A construct whose extent cannot be determined is reported as a
// structural_parse_warning and left out. Type expressions that fall outside
// the supported grammar degrade to ir.Unknown instead.
package scan
