// Package pipeline defines the pKa data preparation stages and turns the
// configuration into an ordered list of concrete invocations.
//
// Every stage reads one file from the data directory and writes another; the
// file names embed the dataset version. Paths are built by plain string
// concatenation of the data path and the rendered file name so that the
// values a user supplies reach the stage programs unchanged. Nothing here
// touches the filesystem.
package pipeline
