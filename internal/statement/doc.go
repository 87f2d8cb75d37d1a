// Package statement builds the SQL text pgload submits: COPY statements with
// fixed serialization settings, the BEGIN/COMMIT framing of a direct load and
// the ANALYZE/VACUUM maintenance statements.
//
// Everything here is pure string construction. Nothing is executed.
package statement
