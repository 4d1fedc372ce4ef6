package model

import "fmt"

// Stmt is the common shape shared by every statement node: the raw
// source text it was parsed from.
type Stmt struct {
	NodeString string
}

func (s *Stmt) ToString() string {
	return s.NodeString
}

// ConditionalStmt is embedded by every statement with a test
// expression (if/while/do/for).
type ConditionalStmt struct {
	Stmt
	Condition *Expr
}

func (c *ConditionalStmt) GetCondition() *Expr {
	return c.Condition
}

// IfStmt is a Java/Go/Python if statement. Then/Else hold the raw text
// of their branches rather than nested statement trees — callers that
// need a full block walk the original tree-sitter node via SourceLocation.
type IfStmt struct {
	ConditionalStmt
	Then Stmt
	Else Stmt
}

func (i *IfStmt) ToString() string {
	return fmt.Sprintf("if (%s) %s else %s", i.Condition.NodeString, i.Then.NodeString, i.Else.NodeString)
}

// WhileStmt is a while loop.
type WhileStmt struct {
	ConditionalStmt
}

func (w *WhileStmt) ToString() string {
	return fmt.Sprintf("while (%s) %s", w.Condition.NodeString, w.Stmt.NodeString)
}

// DoStmt is a do-while loop.
type DoStmt struct {
	ConditionalStmt
}

func (d *DoStmt) ToString() string {
	return fmt.Sprintf("do %s while (%s)", d.Stmt.NodeString, d.Condition.NodeString)
}

// ForStmt is a for loop with optional init/condition/increment clauses.
type ForStmt struct {
	ConditionalStmt
	Init      *Expr
	Increment *Expr
}

func (f *ForStmt) ToString() string {
	return fmt.Sprintf("for (%s; %s; %s) %s", exprString(f.Init), exprString(f.Condition), exprString(f.Increment), f.Stmt.NodeString)
}

func exprString(e *Expr) string {
	if e == nil {
		return ""
	}
	return e.NodeString
}

// BreakStmt is a (possibly labeled) break.
type BreakStmt struct {
	Stmt
	Label string
}

// ContinueStmt is a (possibly labeled) continue.
type ContinueStmt struct {
	Stmt
	Label string
}

// YieldStmt is a Java `yield expr;` statement.
type YieldStmt struct {
	Stmt
	Value *Expr
}

// AssertStmt is a Java `assert expr [: message];` statement.
type AssertStmt struct {
	Stmt
	Expr    *Expr
	Message *Expr
}

// ReturnStmt is a return statement. Result is nil for a bare `return`.
type ReturnStmt struct {
	Stmt
	Result *Expr
}

// BlockStmt is a `{ ... }` statement block, flattened to its direct
// children's source text.
type BlockStmt struct {
	Stmt
	Stmts []Stmt
}
