package model

// JavadocTag is a single `@tag text` entry inside a Javadoc comment.
type JavadocTag struct {
	Name     string
	Text     string
	Category string
}

// NewJavadocTag constructs a JavadocTag. category is the tag's kind
// ("author", "param", "see", "throws", "version", "since", or
// "unknown" for anything the parser doesn't recognize).
func NewJavadocTag(name, text, category string) *JavadocTag {
	return &JavadocTag{Name: name, Text: text, Category: category}
}

// Javadoc is the parsed form of a `/** ... */` comment block attached
// to a class or method declaration.
type Javadoc struct {
	Author                string
	Version               string
	NumberOfCommentLines  int
	CommentedCodeElements string
	Tags                  []*JavadocTag
}
