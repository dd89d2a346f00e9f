// Package pipeline runs the analysis passes over one program tree.
//
// A Pipeline is built from configuration (sable.toml and CLI flags) and runs
// its passes in order. Batch runs collect every diagnostic of a pass and stop
// after the first pass that produced an error. A Session keeps the Scope Table
// and checkers alive between submissions and aborts only the declaration that
// raised an error.
package pipeline
