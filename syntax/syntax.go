// Copyright 2019 Google LLC
// Use of this source code is governed by the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package syntax defines the Python-like abstract syntax tree consumed
// and produced by the virtualization transformers.
//
// Parsing source text into this tree and compiling or printing it back
// are the responsibility of external collaborators; this package only
// models the tree. Nodes are immutable by convention: transformers
// never modify a node in place, they build new nodes and share
// unmodified subtrees.
package syntax

// A Node is a node in the syntax tree.
type Node interface {
	node()
}

// A Stmt is a statement.
type Stmt interface {
	Node
	stmt()
}

func (*AssignStmt) stmt()   {}
func (*BreakStmt) stmt()    {}
func (*ClassDef) stmt()     {}
func (*ContinueStmt) stmt() {}
func (*ExprStmt) stmt()     {}
func (*ForStmt) stmt()      {}
func (*FuncDef) stmt()      {}
func (*GlobalStmt) stmt()   {}
func (*IfStmt) stmt()       {}
func (*NonlocalStmt) stmt() {}
func (*PassStmt) stmt()     {}
func (*ReturnStmt) stmt()   {}
func (*WhileStmt) stmt()    {}

// An Expr is an expression.
type Expr interface {
	Node
	expr()
}

func (*BoolOpExpr) expr() {}
func (*BinaryExpr) expr() {}
func (*CallExpr) expr()   {}
func (*CondExpr) expr()   {}
func (*DictEntry) expr()  {}
func (*DictExpr) expr()   {}
func (*DotExpr) expr()    {}
func (*Ident) expr()      {}
func (*IndexExpr) expr()  {}
func (*LambdaExpr) expr() {}
func (*ListExpr) expr()   {}
func (*Literal) expr()    {}
func (*TupleExpr) expr()  {}
func (*UnaryExpr) expr()  {}

// A FuncDef represents a function definition:
//
//	def Name(Params): Body
//
// Parameters are plain names; default values, *args and **kwargs are
// not modeled.
type FuncDef struct {
	Name   string
	Params []*Ident
	Body   []Stmt
}

func (*FuncDef) node() {}

// A ClassDef represents a class definition. The scope analyzer rejects
// trees containing class bodies; the node exists so that the rejection
// is explicit rather than a silent misclassification.
type ClassDef struct {
	Name string
	Body []Stmt
}

func (*ClassDef) node() {}

// An AssignStmt represents a single assignment: LHS = RHS.
// LHS is an *Ident or a *TupleExpr of *Idents.
type AssignStmt struct {
	LHS Expr
	RHS Expr
}

func (*AssignStmt) node() {}

// An ExprStmt is an expression evaluated for side effects.
type ExprStmt struct {
	X Expr
}

func (*ExprStmt) node() {}

// An IfStmt is a conditional: if Cond: Body else: Orelse.
// Orelse may be empty.
type IfStmt struct {
	Cond   Expr
	Body   []Stmt
	Orelse []Stmt
}

func (*IfStmt) node() {}

// A WhileStmt is a loop: while Cond: Body else: Orelse.
type WhileStmt struct {
	Cond   Expr
	Body   []Stmt
	Orelse []Stmt
}

func (*WhileStmt) node() {}

// A ForStmt is a loop: for Target in Iter: Body else: Orelse.
// Target is an *Ident or a *TupleExpr of *Idents.
type ForStmt struct {
	Target Expr
	Iter   Expr
	Body   []Stmt
	Orelse []Stmt
}

func (*ForStmt) node() {}

// A ReturnStmt returns from a function. Result may be nil.
type ReturnStmt struct {
	Result Expr
}

func (*ReturnStmt) node() {}

// A PassStmt is a no-op statement.
type PassStmt struct{}

func (*PassStmt) node() {}

// A BreakStmt exits the innermost loop.
type BreakStmt struct{}

func (*BreakStmt) node() {}

// A ContinueStmt continues the innermost loop.
type ContinueStmt struct{}

func (*ContinueStmt) node() {}

// A GlobalStmt declares names as module-global: global Names.
type GlobalStmt struct {
	Names []string
}

func (*GlobalStmt) node() {}

// A NonlocalStmt declares names as bound in an enclosing function:
// nonlocal Names.
type NonlocalStmt struct {
	Names []string
}

func (*NonlocalStmt) node() {}

// An Ident represents an identifier.
type Ident struct {
	Name string
}

func (*Ident) node() {}

// A Literal represents a constant. Value is one of nil (None), bool,
// int64, float64, or string.
type Literal struct {
	Value interface{}
}

func (*Literal) node() {}

// A Keyword is a keyword argument in a call: Name=Value.
type Keyword struct {
	Name  string
	Value Expr
}

func (*Keyword) node() {}

// A CallExpr represents a function call: Fn(Args, Keywords).
type CallExpr struct {
	Fn       Expr
	Args     []Expr
	Keywords []*Keyword
}

func (*CallExpr) node() {}

// A DotExpr represents an attribute selector: X.Name.
type DotExpr struct {
	X    Expr
	Name string
}

func (*DotExpr) node() {}

// An IndexExpr represents a subscript: X[Index].
type IndexExpr struct {
	X     Expr
	Index Expr
}

func (*IndexExpr) node() {}

// A LambdaExpr represents a zero-argument inline function: lambda: Body.
// Transformers synthesize these for deferred operands and
// expression-position closures; parameterized lambdas are not modeled.
type LambdaExpr struct {
	Body Expr
}

func (*LambdaExpr) node() {}

// A TupleExpr represents a tuple literal: (List).
type TupleExpr struct {
	List []Expr
}

func (*TupleExpr) node() {}

// A ListExpr represents a list literal: [List].
type ListExpr struct {
	List []Expr
}

func (*ListExpr) node() {}

// A DictEntry represents a dictionary entry: Key: Value.
// Used only within a DictExpr.
type DictEntry struct {
	Key   Expr
	Value Expr
}

func (*DictEntry) node() {}

// A DictExpr represents a dictionary literal: {List}.
type DictExpr struct {
	List []*DictEntry
}

func (*DictExpr) node() {}

// A CondExpr represents the conditional expression:
// True if Cond else False.
type CondExpr struct {
	Cond  Expr
	True  Expr
	False Expr
}

func (*CondExpr) node() {}

// A BoolOp is the operator of a BoolOpExpr.
type BoolOp int

const (
	And BoolOp = iota
	Or
)

func (op BoolOp) String() string {
	if op == And {
		return "and"
	}
	return "or"
}

// A BoolOpExpr represents a chain of and/or operations over two or
// more operands: Values[0] Op Values[1] Op ...
//
// A chain of the same operator is a single node with a variadic
// operand list, not a nested binary tree.
type BoolOpExpr struct {
	Op     BoolOp
	Values []Expr
}

func (*BoolOpExpr) node() {}

// An Op is a unary or binary operator.
type Op int

const (
	OpAdd Op = iota // +
	OpSub           // -
	OpMul           // *
	OpDiv           // /
	OpMod           // %
	OpEq            // ==
	OpNE            // !=
	OpLT            // <
	OpLE            // <=
	OpGT            // >
	OpGE            // >=
	OpNot           // not (unary)
	OpNeg           // - (unary)
	OpPos           // + (unary)
)

var opNames = [...]string{
	OpAdd: "+",
	OpSub: "-",
	OpMul: "*",
	OpDiv: "/",
	OpMod: "%",
	OpEq:  "==",
	OpNE:  "!=",
	OpLT:  "<",
	OpLE:  "<=",
	OpGT:  ">",
	OpGE:  ">=",
	OpNot: "not",
	OpNeg: "-",
	OpPos: "+",
}

func (op Op) String() string { return opNames[op] }

// A UnaryExpr represents a unary expression: Op X.
type UnaryExpr struct {
	Op Op
	X  Expr
}

func (*UnaryExpr) node() {}

// A BinaryExpr represents a binary expression: X Op Y.
type BinaryExpr struct {
	X  Expr
	Op Op
	Y  Expr
}

func (*BinaryExpr) node() {}

// QualName returns the dotted qualified name of an identifier or
// attribute chain ("f", "np.sum"), or "" if e is not such a chain.
func QualName(e Expr) string {
	switch e := e.(type) {
	case *Ident:
		return e.Name
	case *DotExpr:
		prefix := QualName(e.X)
		if prefix == "" {
			return ""
		}
		return prefix + "." + e.Name
	}
	return ""
}
