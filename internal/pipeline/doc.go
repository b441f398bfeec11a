// Package pipeline wires analysis, conversion and generation.
//
// One project runs its stages sequentially over immutable inputs. Distinct
// projects may run concurrently through RunBatch; each run owns all of its
// state, keyed by the project identity.
package pipeline
