// Package analyze builds a project's intermediate representation from an
// already-materialized file set.
//
// Handler, type-declaration and component files are scanned independently
// with package scan. Migration files are folded, in (OrderKey, Path)
// order, into one cumulative schema with package schema. Diagnostics from
// every stage are collected on the returned ir.ProjectModel.
//
// The only fatal outcome is an *AnalysisError, returned when the file set
// itself is unusable (empty, duplicate paths, or nothing readable).
package analyze
