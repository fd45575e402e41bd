// Package logs reads the JSON log files mirrored into the state directory.
//
// Tail returns the last lines of a file with bounded memory and can keep
// following it while a run in another terminal appends; Latest picks the
// newest mirrored file. Both back `pkaprep logs`.
package logs
