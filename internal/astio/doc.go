// Package astio reads the trees the external parser writes and rebuilds them
// inside an ast.Builder.
//
// Two wire forms carry the same Document: JSON (".json") and msgpack
// (".sbt"). A document holds the root unit first, followed by any units it
// imports; an import whose path names no unit of the document is left
// dangling unless the Loader's Resolve hook can supply it.
package astio
