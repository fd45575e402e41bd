// Package preflight provides readiness checks for the filesystem paths and
// programs a pipeline plan depends on.
//
// These checks run in two contexts:
//   - "pkaprep check" prints every result and exits non-zero when a required
//     check fails.
//   - "pkaprep run" logs failed checks as warnings before launching. It never
//     blocks the run: a missing input is reported by the stage program itself
//     and its exit status becomes the launcher's.
package preflight
