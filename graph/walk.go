package graph

import (
	"path/filepath"

	sitter "github.com/smacker/go-tree-sitter"
)

// buildGraphFromAST walks a parsed tree-sitter CST and populates graph with
// nodes and edges. currentContext is the enclosing method/function/class
// node, used to link call sites and nested declarations back to their
// parent; it starts nil at the file root and is updated whenever a
// traversal enters a new method, function, or closure body.
func buildGraphFromAST(node *sitter.Node, sourceCode []byte, graph *CodeGraph, currentContext *Node, file string) {
	if node == nil {
		return
	}

	isJava := isJavaSourceFile(file)
	isPython := isPythonSourceFile(file)
	isGo := filepath.Ext(file) == ".go"

	nextContext := currentContext

	switch node.Type() {
	// Java
	case "method_declaration":
		if isJava {
			nextContext = parseJavaMethodDeclaration(node, sourceCode, graph, file)
		} else if isGo {
			nextContext = parseGoMethodDeclaration(node, sourceCode, graph, file)
		}
	case "method_invocation":
		if isJava {
			parseJavaMethodInvocation(node, sourceCode, graph, currentContext, file)
		}
	case "class_declaration":
		if isJava {
			parseJavaClassDeclaration(node, sourceCode, graph, file)
		}
	case "block_comment", "line_comment":
		if isJava {
			parseJavaBlockComment(node, sourceCode, graph, file)
		}
	case "local_variable_declaration", "field_declaration":
		if isJava {
			parseJavaVariableDeclaration(node, sourceCode, graph, file)
		}
	case "object_creation_expression":
		if isJava {
			parseJavaObjectCreation(node, sourceCode, graph, file)
		}
	case "binary_expression":
		if isJava {
			parseJavaBinaryExpression(node, sourceCode, graph, file, isJava)
		}

	// Python
	case "function_definition":
		if isPython {
			nextContext = parsePythonFunctionDefinition(node, sourceCode, graph, file, currentContext)
		}
	case "class_definition":
		if isPython {
			nextContext = parsePythonClassDefinition(node, sourceCode, graph, file)
		}
	case "call":
		if isPython {
			parsePythonCall(node, sourceCode, graph, currentContext, file)
		}
	case "assert_statement":
		if isPython {
			parsePythonAssertStatement(node, sourceCode, graph, file)
		} else if isJava {
			parseAssertStatement(node, sourceCode, graph, file, isJava, isPython)
		}
	case "yield":
		if isPython {
			parsePythonYieldExpression(node, sourceCode, graph, file)
		}
	case "assignment":
		if isPython {
			parsePythonAssignment(node, sourceCode, graph, file, currentContext)
		} else if isGo {
			parseGoAssignment(node, sourceCode, graph, file)
		}

	// Go
	case "function_declaration":
		if isGo {
			nextContext = parseGoFunctionDeclaration(node, sourceCode, graph, file)
		}
	case "type_declaration":
		if isGo {
			parseGoTypeDeclaration(node, sourceCode, graph, file)
		}
	case "var_declaration":
		if isGo {
			parseGoVarDeclaration(node, sourceCode, graph, file)
		}
	case "short_var_declaration":
		if isGo {
			parseGoShortVarDeclaration(node, sourceCode, graph, file)
		}
	case "const_declaration":
		if isGo {
			parseGoConstDeclaration(node, sourceCode, graph, file)
		}
	case "call_expression":
		if isGo {
			parseGoCallExpression(node, sourceCode, graph, file, currentContext)
		}
	case "func_literal":
		if isGo {
			nextContext = parseGoFuncLiteral(node, sourceCode, graph, file, currentContext)
		}
	case "defer_statement":
		if isGo {
			parseGoDeferStatement(node, sourceCode, graph, file, currentContext)
		}
	case "go_statement":
		if isGo {
			parseGoGoStatement(node, sourceCode, graph, file, currentContext)
		}
	case "return_statement":
		if isGo {
			parseGoReturnStatement(node, sourceCode, graph, file)
		} else {
			parseReturnStatement(node, sourceCode, graph, file, isJava, isPython)
		}
	case "for_statement":
		if isGo {
			parseGoForStatement(node, sourceCode, graph, file)
		} else {
			parseForStatement(node, sourceCode, graph, file, isJava)
		}
	case "if_statement":
		if isGo {
			parseGoIfStatement(node, sourceCode, graph, file)
		} else {
			parseIfStatement(node, sourceCode, graph, file, isJava)
		}

	// Shared statement shapes across Java/Python
	case "block":
		parseBlockStatement(node, sourceCode, graph, file, isJava)
	case "break_statement":
		parseBreakStatement(node, sourceCode, graph, file, isJava, isPython)
	case "continue_statement":
		parseContinueStatement(node, sourceCode, graph, file, isJava, isPython)
	case "yield_statement":
		if isJava {
			parseYieldStatement(node, sourceCode, graph, file, isJava)
		}
	case "while_statement":
		parseWhileStatement(node, sourceCode, graph, file, isJava)
	case "do_statement":
		parseDoStatement(node, sourceCode, graph, file, isJava)
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		buildGraphFromAST(node.Child(i), sourceCode, graph, nextContext, file)
	}
}
