// Package deps checks that the programs and scripts a plan launches exist
// before the launcher starts them.
package deps
