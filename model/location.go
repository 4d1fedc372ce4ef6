package model

import "fmt"

// Location identifies a position within a source file.
// It is the UIR-level counterpart of a byte range: most of the tree
// still carries the language-specific node, but Location is the
// field used by callers that only care about "where", not "what".
type Location struct {
	File   string
	Line   int
	Column int
}

// ToString renders a human-readable "file:line" string.
func (l Location) ToString() string {
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}
