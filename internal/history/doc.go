// Package history persists one record per stage invocation in SQLite.
//
// The Store manages the database connection, schema initialization, and the
// begin/finish lifecycle of each invocation so `pkaprep history` can show what
// was launched, with which argv, and how it ended. The ledger is advisory: the
// launcher's exit status never depends on it beyond failing to open it.
//
// Schema changes bump schemaVersion in schema.go; users delete the database to
// adopt the new schema.
package history
