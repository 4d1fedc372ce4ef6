// Package surgery implements the cross-language Extract/Patch operation
// pair (C7): locating a named symbol's exact byte range via the same
// tree-sitter grammars the graph engine parses with, and mutating source
// files through a backup-write-reparse-verify-restore sequence so a
// patch can never leave a file on disk that fails to parse.
package surgery

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/codescalpel/codescalpel/internal/scalpelerr"
)

// declarationNodeTypes lists, per extension, the tree-sitter node types
// that count as an extractable declaration, and the node type holding
// the declared name — the same node-type vocabulary graph/walk.go
// dispatches on when it builds the call graph from these grammars.
var declarationNodeTypes = map[string][]string{
	".go": {"function_declaration", "method_declaration", "type_declaration"},
	".java": {"method_declaration", "class_declaration", "interface_declaration",
		"constructor_declaration"},
	".py": {"function_definition", "class_definition"},
}

var importNodeTypes = map[string][]string{
	".go":   {"import_declaration", "package_clause"},
	".java": {"import_declaration", "package_declaration"},
	".py":   {"import_statement", "import_from_statement"},
}

func languageFor(ext string) (*sitter.Language, error) {
	switch ext {
	case ".go":
		return golang.GetLanguage(), nil
	case ".java":
		return java.GetLanguage(), nil
	case ".py":
		return python.GetLanguage(), nil
	default:
		return nil, scalpelerr.New(scalpelerr.KindInvalidArgument, "surgery: unsupported file extension %q", ext)
	}
}

// ExtractResult is the located symbol: its exact source text, the
// minimal import preamble needed to make that text self-contained, and
// its byte range in the original file.
type ExtractResult struct {
	Source     string
	Preamble   string
	StartByte  uint32
	EndByte    uint32
	SymbolName string
	Kind       string
}

// Extract locates symbolName (optionally constrained to kind, a
// declarationNodeTypes entry; empty matches any declaration type) in
// file, and returns its source text expanded to include any immediately
// preceding line comments, plus the file's import/package preamble.
func Extract(file, symbolName, kind string) (*ExtractResult, error) {
	ext := filepath.Ext(file)
	lang, err := languageFor(ext)
	if err != nil {
		return nil, err
	}

	src, err := os.ReadFile(file)
	if err != nil {
		return nil, scalpelerr.InvalidPath(file)
	}

	tree, err := parse(lang, src)
	if err != nil {
		return nil, scalpelerr.New(scalpelerr.KindInternal, "surgery: parse %s: %v", file, err)
	}
	defer tree.Close()

	node, foundKind, err := locate(tree.RootNode(), src, ext, symbolName, kind)
	if err != nil {
		return nil, err
	}

	start, end := expandForComments(node, src)
	return &ExtractResult{
		Source:     string(src[start:end]),
		Preamble:   preambleFor(tree.RootNode(), src, ext),
		StartByte:  start,
		EndByte:    end,
		SymbolName: symbolName,
		Kind:       foundKind,
	}, nil
}

func parse(lang *sitter.Language, src []byte) (*sitter.Tree, error) {
	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(lang)
	return p.ParseCtx(nil, nil, src)
}

// locate walks the tree for the first declaration node (restricted to
// kind if non-empty) whose name child's text equals symbolName.
func locate(root *sitter.Node, src []byte, ext, symbolName, kind string) (*sitter.Node, string, error) {
	candidates := declarationNodeTypes[ext]
	if kind != "" {
		candidates = []string{kind}
	}
	candidateSet := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		candidateSet[c] = true
	}

	var found *sitter.Node
	var foundType string
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if found != nil || n == nil {
			return
		}
		if candidateSet[n.Type()] && declNameMatches(n, src, symbolName) {
			found = n
			foundType = n.Type()
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
			if found != nil {
				return
			}
		}
	}
	walk(root)

	if found == nil {
		return nil, "", scalpelerr.NotFound("surgery: symbol %q not found", symbolName)
	}
	return found, foundType, nil
}

// declNameMatches checks whether any direct or "name"-field child of a
// declaration node has text equal to symbolName; grammars differ in
// whether the identifier is a named field ("name") or a direct child, so
// both are checked.
func declNameMatches(n *sitter.Node, src []byte, symbolName string) bool {
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		return nameNode.Content(src) == symbolName
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Type() == "identifier" || c.Type() == "type_identifier" {
			if c.Content(src) == symbolName {
				return true
			}
		}
	}
	return false
}

// expandForComments widens a declaration's byte range backward to absorb
// an immediately preceding contiguous run of comment/annotation lines
// (doc comments, Java annotations, Python decorators), so extraction
// never orphans documentation from the symbol it describes.
func expandForComments(n *sitter.Node, src []byte) (start, end uint32) {
	start, end = n.StartByte(), n.EndByte()
	prev := n.PrevSibling()
	for prev != nil {
		t := prev.Type()
		if t == "comment" || t == "line_comment" || t == "block_comment" || t == "decorator" || t == "annotation" {
			gap := strings.TrimSpace(string(src[prev.EndByte():start]))
			if gap != "" {
				break
			}
			start = prev.StartByte()
			prev = prev.PrevSibling()
			continue
		}
		break
	}
	return start, end
}

// preambleFor collects the file's top-level import/package statements
// into a minimal, self-contained preamble so an extracted symbol can be
// dropped into another file without missing its direct dependencies.
// This does not perform whole-program import resolution; it is a
// syntactic copy of whatever import/package nodes already exist at the
// top level of the source file.
func preambleFor(root *sitter.Node, src []byte, ext string) string {
	wanted := make(map[string]bool)
	for _, t := range importNodeTypes[ext] {
		wanted[t] = true
	}
	var lines []string
	for i := 0; i < int(root.ChildCount()); i++ {
		c := root.Child(i)
		if wanted[c.Type()] {
			lines = append(lines, c.Content(src))
		}
	}
	return strings.Join(lines, "\n")
}

// AuditRecord is emitted after every successful patch, per spec.md
// §4.7's governance contract.
type AuditRecord struct {
	File      string
	SymbolID  string
	OldHash   string
	NewHash   string
	Timestamp time.Time
}

// AuditSink receives audit records for a successful patch. The caller
// supplies the implementation; a nil sink skips auditing.
type AuditSink interface {
	Emit(AuditRecord) error
}

// Patch replaces symbolName's source text in file with newSource,
// through backup-write-reparse-verify-restore: the original file is
// copied aside, the new content is written atomically (temp file +
// rename), the result is reparsed to confirm it is still syntactically
// valid, and on any failure the backup is restored before returning the
// error. On success an AuditRecord is emitted to sink and the backup is
// removed.
func Patch(file, symbolName, kind, newSource string, sink AuditSink) error {
	ext := filepath.Ext(file)
	lang, err := languageFor(ext)
	if err != nil {
		return err
	}

	original, err := os.ReadFile(file)
	if err != nil {
		return scalpelerr.InvalidPath(file)
	}

	tree, err := parse(lang, original)
	if err != nil {
		return scalpelerr.New(scalpelerr.KindInternal, "surgery: parse %s: %v", file, err)
	}
	node, _, err := locate(tree.RootNode(), original, ext, symbolName, kind)
	tree.Close()
	if err != nil {
		return err
	}
	start, end := expandForComments(node, original)

	oldHash := contentHash(original[start:end])
	updated := append(append(append([]byte{}, original[:start]...), newSource...), original[end:]...)

	backupPath := file + ".bak"
	if err := os.WriteFile(backupPath, original, 0o644); err != nil {
		return scalpelerr.New(scalpelerr.KindInternal, "surgery: backup %s: %v", file, err)
	}

	if err := atomicWrite(file, updated); err != nil {
		return scalpelerr.New(scalpelerr.KindInternal, "surgery: write %s: %v", file, err)
	}

	verifyTree, err := parse(lang, updated)
	if err != nil || verifyTree.RootNode().HasError() {
		if verifyTree != nil {
			verifyTree.Close()
		}
		if restoreErr := os.WriteFile(file, original, 0o644); restoreErr != nil {
			return scalpelerr.New(scalpelerr.KindInternal, "surgery: patch %s failed reparse AND restore failed: %v (restore: %v)", file, err, restoreErr)
		}
		os.Remove(backupPath)
		return scalpelerr.New(scalpelerr.KindInvalidArgument, "surgery: patch to %s failed to reparse, restored original: %v", file, err)
	}
	verifyTree.Close()
	os.Remove(backupPath)

	if sink != nil {
		record := AuditRecord{
			File:      file,
			SymbolID:  symbolName,
			OldHash:   oldHash,
			NewHash:   contentHash([]byte(newSource)),
			Timestamp: time.Now(),
		}
		if err := sink.Emit(record); err != nil {
			return scalpelerr.New(scalpelerr.KindInternal, "surgery: audit emit: %v", err)
		}
	}
	return nil
}

func atomicWrite(path string, content []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".surgery-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}

func contentHash(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}
