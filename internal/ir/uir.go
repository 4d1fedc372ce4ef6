package ir

import "github.com/codescalpel/codescalpel/graph"

// NodeKind tags a Unified IR node. Kinds unrepresentable in the common
// tree shape become Unsupported leaves rather than failing normalization.
type NodeKind string

const (
	NodeModule      NodeKind = "Module"
	NodeFunctionDef NodeKind = "FunctionDef"
	NodeClassDef    NodeKind = "ClassDef"
	NodeCall        NodeKind = "Call"
	NodeName        NodeKind = "Name"
	NodeAssign      NodeKind = "Assign"
	NodeIf          NodeKind = "If"
	NodeLoop        NodeKind = "Loop"
	NodeReturn      NodeKind = "Return"
	NodeImport      NodeKind = "Import"
	NodeLiteral     NodeKind = "Literal"
	NodeBinOp       NodeKind = "BinOp"
	NodeCompareOp   NodeKind = "CompareOp"
	NodeUnsupported NodeKind = "Unsupported"
)

// ByteRange is a half-open [Start, End) span into the original file.
type ByteRange struct {
	Start uint32
	End   uint32
}

// Node is a tagged Unified IR tree node. Byte ranges of siblings are
// non-overlapping and monotonically increasing; a Name either resolves to
// a SymbolId in scope or carries Unresolved=true.
type Node struct {
	Kind       NodeKind
	ByteRange  ByteRange
	Children   []*Node
	Attrs      map[string]string
	SymbolID   SymbolId
	Unresolved bool
}

// nodeKindFor maps the graph engine's CST-derived node type strings onto
// the common UIR kind vocabulary. Anything not recognized becomes an
// opaque Unsupported leaf, still carrying a byte range so surgery and
// graph referencing over it remain precise.
func nodeKindFor(cstType string) NodeKind {
	switch cstType {
	case "method_declaration", "function_definition", "function_declaration", "method":
		return NodeFunctionDef
	case "class_declaration", "class_definition":
		return NodeClassDef
	case "method_invocation", "call", "call_expression":
		return NodeCall
	case "local_variable_declaration", "field_declaration", "var_declaration",
		"short_var_declaration", "const_declaration", "assignment":
		return NodeAssign
	case "IfStmt", "if_statement":
		return NodeIf
	case "WhileStmt", "ForStmt", "while_statement", "for_statement", "do_statement":
		return NodeLoop
	case "ReturnStmt", "return_statement":
		return NodeReturn
	case "binary_expression":
		return NodeBinOp
	default:
		return NodeUnsupported
	}
}

// Normalize lowers every node of a parsed graph.CodeGraph into a flat
// Unified IR forest, one root per graph.Node with no outgoing edges to a
// parent (the graph engine does not track containment directly, so each
// node becomes its own UIR root keyed by its own SymbolId). Intra-file
// scope resolution reuses whatever the graph engine already resolved:
// external nodes are marked Unresolved, everything else gets a SymbolId
// derived from its fully-qualified name and kind.
func Normalize(cg *graph.CodeGraph, language string) []*Node {
	nodes := make([]*Node, 0, len(cg.Nodes))
	for _, gn := range cg.Nodes {
		kind := nodeKindFor(gn.Type)
		n := &Node{
			Kind: kind,
			Attrs: map[string]string{
				"name": gn.Name,
				"type": gn.Type,
			},
		}
		if gn.SourceLocation != nil {
			n.ByteRange = ByteRange{Start: gn.SourceLocation.StartByte, End: gn.SourceLocation.EndByte}
		}
		if gn.IsExternal || gn.Name == "" {
			n.Unresolved = true
		} else {
			n.SymbolID = FromDottedFQN(language, fqnFor(gn), string(symbolKindFor(kind)))
		}
		nodes = append(nodes, n)
	}
	return nodes
}

func fqnFor(gn *graph.Node) string {
	if gn.PackageName != "" {
		return gn.PackageName + "." + gn.Name
	}
	return gn.Name
}

func symbolKindFor(k NodeKind) NodeKind {
	switch k {
	case NodeFunctionDef:
		return KindFunction
	case NodeClassDef:
		return KindClass
	default:
		return NodeUnsupported
	}
}
