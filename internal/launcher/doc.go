// Package launcher runs a pipeline plan: one external program at a time, in
// order, stopping at the first failure.
//
// Child stdout and stderr are passed through unbuffered to the launcher's own
// streams without interpretation. Each invocation is optionally recorded in
// the run history. The exit status of a failed child becomes the launcher's
// exit status; see ExitCode for the mapping of launcher-side failures.
package launcher
