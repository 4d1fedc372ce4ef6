package core

import "github.com/codescalpel/codescalpel/internal/ir"

// SymbolIDForFunction bridges a call graph function's existing
// dotted-FQN key (e.g. "myapp.utils.sanitize") into a Universal Node ID.
// This is a bridging adapter, not a storage migration: CallGraph's
// Functions/Edges/ReverseEdges maps stay keyed by the dotted FQN the
// resolver already produces, and every new consumer (surgery, policy,
// dispatch) that needs a SymbolId derives one from that key on demand
// through this function rather than CallGraph carrying two parallel key
// schemes internally.
func SymbolIDForFunction(language, fqn string) ir.SymbolId {
	return ir.FromDottedFQN(language, fqn, ir.KindFunction)
}

// SymbolIDFor bridges an arbitrary FQN with an explicit kind, for
// classes, variables, and the other kinds FromDottedFQN accepts.
func SymbolIDFor(language, fqn, kind string) ir.SymbolId {
	return ir.FromDottedFQN(language, fqn, kind)
}
