// Package ir defines the Unified IR node shape and the SymbolId (Universal
// Node ID) that every other component — graph, cache, surgery, policy —
// addresses symbols by.
package ir

import (
	"fmt"
	"regexp"
	"strings"
)

// symbolIDPattern is the fixed grammar: language::module::kind::name[:method].
// Parsers must refuse ids that do not match exactly; there is no lenient
// fallback.
var symbolIDPattern = regexp.MustCompile(`^[a-z0-9_+-]+::[A-Za-z0-9_./-]+::[a-z_-]+::[^:]+(:[^:]+)?$`)

// SymbolId is the Universal Node ID: a deterministic string identifying a
// definition across languages, stable across runs for identical content.
type SymbolId string

// NewSymbolId formats a SymbolId from its parts. method may be empty.
func NewSymbolId(language, module, kind, name, method string) SymbolId {
	id := fmt.Sprintf("%s::%s::%s::%s", language, module, kind, name)
	if method != "" {
		id += ":" + method
	}
	return SymbolId(id)
}

// Parse validates and decomposes a SymbolId string. It refuses any input
// that does not match the grammar exactly, returning an error rather than
// a best-effort partial parse.
func Parse(raw string) (language, module, kind, name, method string, err error) {
	if !symbolIDPattern.MatchString(raw) {
		return "", "", "", "", "", fmt.Errorf("ir: %q does not match language::module::kind::name[:method]", raw)
	}
	parts := strings.SplitN(raw, "::", 4)
	if len(parts) != 4 {
		return "", "", "", "", "", fmt.Errorf("ir: %q does not match language::module::kind::name[:method]", raw)
	}
	language, module, kind = parts[0], parts[1], parts[2]
	nameAndMethod := parts[3]
	if idx := strings.IndexByte(nameAndMethod, ':'); idx >= 0 {
		name, method = nameAndMethod[:idx], nameAndMethod[idx+1:]
	} else {
		name = nameAndMethod
	}
	return language, module, kind, name, method, nil
}

// Valid reports whether raw matches the SymbolId grammar exactly.
func Valid(raw string) bool {
	return symbolIDPattern.MatchString(raw)
}

// String kinds recognized by the universal node id scheme. Not exhaustive;
// language lowerers may mint additional kinds, but these are the ones the
// graph engine and surgery subsystem special-case.
const (
	KindModule      = "module"
	KindFunction    = "function"
	KindMethod      = "method"
	KindClass       = "class"
	KindInterface   = "interface"
	KindVariable    = "variable"
	KindConstant    = "constant"
	KindEndpoint    = "endpoint"
	KindFetchCall   = "fetch-call"
)

// FromDottedFQN builds a SymbolId from the teacher graph engine's existing
// dotted fully-qualified-name scheme (e.g. "myapp.utils.sanitize"), used as
// a bridge while graph/callgraph's internal storage keys stay FQN-based.
// module is everything but the last dotted segment; name is the last
// segment. This is deterministic and reversible for well-formed FQNs.
func FromDottedFQN(language, fqn, kind string) SymbolId {
	module, name := fqn, fqn
	if idx := strings.LastIndexByte(fqn, '.'); idx >= 0 {
		module, name = fqn[:idx], fqn[idx+1:]
	} else {
		module = ""
	}
	if module == "" {
		module = "."
	}
	return NewSymbolId(language, module, kind, name, "")
}
