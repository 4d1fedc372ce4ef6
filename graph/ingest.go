package graph

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/codescalpel/codescalpel/internal/scalpelerr"
)

// languageExtensions maps a language filter name to the file extensions
// Ingest accepts for it. Unknown filter names are simply never matched,
// so a caller cannot accidentally widen the scan by a typo.
var languageExtensions = map[string]string{
	"go":     ".go",
	"java":   ".java",
	"python": ".py",
}

// Ingest walks root and returns every source file Code Scalpel can
// parse, after applying includeGlobs/excludeGlobs/languageFilter. It is
// the real C1 contract: a root that does not exist fails with
// scalpelerr.KindInvalidPath, and a root that exists but cannot be read
// fails with scalpelerr.KindForbidden — Initialize's legacy two-arg form
// instead swallows both into an empty graph for backward compatibility
// with its existing callers, so new code (internal/dispatch handlers,
// internal/cache dependency recording) should call Ingest directly
// rather than going through Initialize.
//
// includeGlobs and excludeGlobs are matched with path/filepath.Match
// against the file's path relative to root (no glob library appears
// anywhere in the retrieval pack this module draws from, so the
// standard library's Match is used rather than inventing a dependency).
// An empty includeGlobs matches everything; excludeGlobs is applied
// after includeGlobs and always wins on overlap. languageFilter restricts
// by language name ("go", "java", "python"); empty matches every
// supported language.
func Ingest(root string, includeGlobs, excludeGlobs, languageFilter []string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsPermission(err) {
			return nil, scalpelerr.Forbidden("ingest: cannot access %s: %v", root, err)
		}
		return nil, scalpelerr.InvalidPath(root)
	}
	if !info.IsDir() {
		return nil, scalpelerr.New(scalpelerr.KindInvalidArgument, "ingest: %s is not a directory", root)
	}

	wantedExt := wantedExtensions(languageFilter)

	var files []string
	walkErr := filepath.Walk(root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			if os.IsPermission(err) {
				return nil // skip unreadable subtrees rather than aborting the whole walk
			}
			return err
		}
		if fi.IsDir() {
			return nil
		}
		if !wantedExt[filepath.Ext(path)] {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		if len(includeGlobs) > 0 && !matchesAny(includeGlobs, rel) {
			return nil
		}
		if matchesAny(excludeGlobs, rel) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if walkErr != nil {
		return nil, scalpelerr.New(scalpelerr.KindInternal, "ingest: walk %s: %v", root, walkErr)
	}

	sort.Strings(files) // deterministic ordering, independent of filesystem readdir order
	return files, nil
}

func wantedExtensions(languageFilter []string) map[string]bool {
	if len(languageFilter) == 0 {
		out := make(map[string]bool, len(languageExtensions))
		for _, ext := range languageExtensions {
			out[ext] = true
		}
		return out
	}
	out := make(map[string]bool, len(languageFilter))
	for _, lang := range languageFilter {
		if ext, ok := languageExtensions[lang]; ok {
			out[ext] = true
		}
	}
	return out
}

func matchesAny(globs []string, rel string) bool {
	for _, g := range globs {
		if ok, _ := filepath.Match(g, rel); ok {
			return true
		}
		if ok, _ := filepath.Match(g, filepath.Base(rel)); ok {
			return true
		}
	}
	return false
}
