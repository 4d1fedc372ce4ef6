package graph

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/python"
)

// ProgressCallbacks lets a caller observe graph construction progress
// without depending on the output package's logger.
type ProgressCallbacks struct {
	OnStart    func(totalFiles int)
	OnProgress func()
}

// Initialize initializes the code graph by parsing all source files in a
// directory. It preserves its historical signature and empty-graph
// fallback for the large existing test suite built against it; callers
// that need the real C1 ingest contract (InvalidPath/Forbidden errors,
// globs, a language filter) should call IngestAndBuild instead.
func Initialize(directory string, callbacks *ProgressCallbacks) *CodeGraph {
	codeGraph, err := IngestAndBuild(directory, nil, nil, nil, callbacks)
	if err != nil {
		//nolint:all
		Log("Directory not found:", err)
		return NewCodeGraph()
	}
	return codeGraph
}

// IngestAndBuild is the C1-compliant entry point: it calls Ingest to
// discover files (failing with a typed scalpelerr on an invalid or
// forbidden root) and then builds the graph from exactly the files
// Ingest returned.
func IngestAndBuild(directory string, includeGlobs, excludeGlobs, languageFilter []string, callbacks *ProgressCallbacks) (*CodeGraph, error) {
	codeGraph := NewCodeGraph()
	start := time.Now()

	files, err := Ingest(directory, includeGlobs, excludeGlobs, languageFilter)
	if err != nil {
		return nil, err
	}

	totalFiles := len(files)
	if callbacks != nil && callbacks.OnStart != nil {
		callbacks.OnStart(totalFiles)
	}
	numWorkers := 5
	fileChan := make(chan string, totalFiles)
	resultChan := make(chan *CodeGraph, totalFiles)
	statusChan := make(chan string, numWorkers)
	progressChan := make(chan int, totalFiles)
	var wg sync.WaitGroup

	// Worker function
	worker := func(workerID int) {
		parser := sitter.NewParser()
		defer parser.Close()

		for file := range fileChan {
			fileName := filepath.Base(file)
			fileExt := filepath.Ext(file)
			localGraph := NewCodeGraph()

			// Handle tree-sitter based parsing for Java, Python, and Go.
			switch fileExt {
			case ".java":
				parser.SetLanguage(java.GetLanguage())
			case ".py":
				parser.SetLanguage(python.GetLanguage())
			case ".go":
				parser.SetLanguage(golang.GetLanguage())
			default:
				Log("Unsupported file type:", file)
				continue
			}

			statusChan <- fmt.Sprintf("\033[32mWorker %d ....... Reading and parsing code %s\033[0m", workerID, fileName)
			sourceCode, err := readFile(file)
			if err != nil {
				Log("File not found:", err)
				continue
			}

			tree, err := parser.ParseCtx(context.TODO(), nil, sourceCode)
			if err != nil {
				Log("Error parsing file:", err)
				continue
			}
			//nolint:all
			defer tree.Close()

			rootNode := tree.RootNode()
			statusChan <- fmt.Sprintf("\033[32mWorker %d ....... Building graph and traversing code %s\033[0m", workerID, fileName)
			buildGraphFromAST(rootNode, sourceCode, localGraph, nil, file)
			statusChan <- fmt.Sprintf("\033[32mWorker %d ....... Done processing file %s\033[0m", workerID, fileName)

			resultChan <- localGraph
			progressChan <- 1
		}
		wg.Done()
	}

	// Start workers
	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go worker(i + 1)
	}

	// Send files to workers
	for _, file := range files {
		fileChan <- file
	}
	close(fileChan)

	// Status updater
	go func() {
		statusLines := make([]string, numWorkers)
		progress := 0
		for {
			select {
			case status, ok := <-statusChan:
				if !ok {
					return
				}
				workerID := int(status[12] - '0')
				statusLines[workerID-1] = status
			case _, ok := <-progressChan:
				if !ok {
					return
				}
				progress++
				if callbacks != nil && callbacks.OnProgress != nil {
					callbacks.OnProgress()
				}
			}
			// Only print progress in verbose mode to avoid polluting structured output
			if verboseFlag {
				fmt.Print("\033[H\033[J") // Clear the screen
			}
			for _, line := range statusLines {
				Log(line)
			}
			Fmt("Progress: %d%%\n", (progress*100)/totalFiles)
		}
	}()

	// Wait for all workers to finish
	go func() {
		wg.Wait()
		close(resultChan)
		close(statusChan)
		close(progressChan)
	}()

	// Collect results
	for localGraph := range resultChan {
		for _, node := range localGraph.Nodes {
			codeGraph.AddNode(node)
		}
		for _, edge := range localGraph.Edges {
			codeGraph.AddEdge(edge.From, edge.To)
		}
	}

	end := time.Now()
	elapsed := end.Sub(start)
	Log("Elapsed time: ", elapsed)
	Log("Graph built successfully")

	return codeGraph, nil
}
