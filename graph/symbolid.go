package graph

// FormatSymbolID builds a Universal Node ID string in the
// language::module::kind::name[:method] grammar internal/ir.SymbolId
// parses. The canonical type and parser live in internal/ir, which
// already depends on this package to normalize a CodeGraph into the
// Unified IR; this package cannot import ir back without a cycle, so
// node-construction sites that want a ready SymbolID string format it
// with this instead of the ir package directly.
func FormatSymbolID(language, module, kind, name, method string) string {
	if module == "" {
		module = "."
	}
	id := language + "::" + module + "::" + kind + "::" + name
	if method != "" {
		id += ":" + method
	}
	return id
}
