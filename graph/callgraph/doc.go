// Package callgraph provides static call graph analysis for Python code.
//
// This package is organized into several sub-packages for better modularity:
//
// # Core Types
//
// The core package contains fundamental data structures:
//
//	import "github.com/codescalpel/codescalpel/graph/callgraph/core"
//
//	cg := core.NewCallGraph()
//	cg.AddEdge("main.foo", "main.bar")
//
// # Registry
//
// The registry package manages module, builtin, and stdlib registries:
//
//	import "github.com/codescalpel/codescalpel/graph/callgraph/registry"
//
//	moduleRegistry, err := registry.BuildModuleRegistry("/path/to/project")
//	builtins := registry.NewBuiltinRegistry()
//
// # Resolution
//
// The resolution package handles import, type, and call resolution:
//
//	import "github.com/codescalpel/codescalpel/graph/callgraph/resolution"
//
//	engine := resolution.NewTypeInferenceEngine(moduleRegistry)
//	typeInfo, ok := engine.GetReturnType("myapp.utils.load_user")
//
// # Extraction
//
// The extraction package extracts code elements from AST:
//
//	import "github.com/codescalpel/codescalpel/graph/callgraph/extraction"
//
//	statements, err := extraction.ExtractStatements(filePath, sourceCode, functionNode)
//
// # Patterns
//
// The patterns package detects security and framework patterns:
//
//	import "github.com/codescalpel/codescalpel/graph/callgraph/patterns"
//
//	registry := patterns.NewPatternRegistry()
//	details := registry.MatchPattern(pattern, callGraph)
//
// # Analysis
//
// The analysis package provides taint analysis:
//
//	import "github.com/codescalpel/codescalpel/graph/callgraph/analysis/taint"
//
//	summary := taint.AnalyzeIntraProceduralTaint(funcFQN, statements, ...)
//
// # CFG
//
// The cfg package provides the control flow graph data structure; the caller
// adds the blocks and edges:
//
//	import "github.com/codescalpel/codescalpel/graph/callgraph/cfg"
//
//	controlFlow := cfg.NewControlFlowGraph(funcFQN)
//
// # Builder
//
// The builder package orchestrates call graph construction:
//
//	import "github.com/codescalpel/codescalpel/graph/callgraph/builder"
//
//	callGraph, moduleRegistry, err := builder.BuildCallGraphFromPath(codeGraph, "/path/to/project", logger)
//
// # Quick Start
//
// To build a call graph for a Python project:
//
//	import (
//	    "github.com/codescalpel/codescalpel/graph"
//	    "github.com/codescalpel/codescalpel/graph/callgraph"
//	)
//
//	// Parse project
//	codeGraph := graph.Initialize(projectPath, nil)
//
//	// Build call graph with all features
//	callGraph, moduleRegistry, patternRegistry, err := callgraph.InitializeCallGraph(codeGraph, projectPath, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Analyze for security patterns
//	matches := callgraph.AnalyzePatterns(callGraph, patternRegistry)
package callgraph
