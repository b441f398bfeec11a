// Package schema folds an ordered sequence of SQL migration files into the
// current shape of the database.
//
// The package has three layers:
//   - a tokenizer that understands comments, quoted identifiers, string
//     literals, and dollar-quoted bodies;
//   - a statement parser that turns the DDL subset the fold understands
//     into Statement values (CREATE TABLE, ALTER TABLE, CREATE INDEX,
//     CREATE POLICY, CREATE TYPE ... AS ENUM, DROP TABLE);
//   - Apply, a pure fold step from (Schema, Statement) to a new Schema plus
//     diagnostics.
//
// Statements that reference state the fold does not have (an ALTER on a
// missing table, a DROP of an unknown column) are reported as
// schema_fold_warning diagnostics and skipped. Statements outside the
// subset are reported as statement_ignored infos.
package schema
