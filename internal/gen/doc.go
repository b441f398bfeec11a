// Package gen renders a converted project model into the target artifact tree.
//
// Generation uses text/template over embedded templates. A template only
// substitutes fields and loops over descriptor lists; statement bodies that
// depend on filters and call routing are prepared in Go before rendering.
//
// Artifacts, in emission order:
//   - app/routers/<slug>.py per handler, in source order
//   - app/models/<table>.py then app/schemas/<table>.py per table, in schema order
//   - aggregate modules, deployment configuration and the conversion report
//   - manifest.json with an xxh3 digest of every other artifact
//
// Output is deterministic: no timestamps, random identifiers or map-order
// dependent text.
package gen
