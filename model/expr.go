package model

import sitter "github.com/smacker/go-tree-sitter"

// Expr wraps a single tree-sitter node together with the source text it
// spans. Parsers that don't need the underlying node (e.g. a synthetic
// sub-expression built from child content) leave Node zeroed and set
// only NodeString.
type Expr struct {
	Node       sitter.Node
	NodeString string
	Type       string
}

func (e *Expr) ToString() string {
	return e.NodeString
}

// BinaryExpr is a two-operand expression such as `a + b`.
type BinaryExpr struct {
	Expr
	LeftOperand  *Expr
	RightOperand *Expr
	Op           string
}

func (b *BinaryExpr) ToString() string {
	return b.LeftOperand.NodeString + " " + b.Op + " " + b.RightOperand.NodeString
}

// ClassInstanceExpr is a `new Foo(args...)` object creation expression.
type ClassInstanceExpr struct {
	Expr
	ClassName string
	Args      []*Expr
}

func (c *ClassInstanceExpr) ToString() string {
	return "new " + c.ClassName + "(...)"
}
