// Package main implements the pkaprep command-line interface.
//
// The CLI builds the stage plan from configuration, runs it through the
// launcher, and exposes read-only views of the plan, preflight checks, and
// the run history. The process exit status of `pkaprep run` is the exit
// status of the stage that failed, so shell scripts can treat pkaprep like
// the program it launches.
package main
