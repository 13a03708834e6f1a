// Copyright 2019 Google LLC
// Use of this source code is governed by the Apache License, Version 2.0
// that can be found in the LICENSE file.

package syntax

// Walk traverses the syntax tree in depth-first order. It starts by
// calling f(n); n must not be nil. If f returns true, Walk calls
// itself recursively for each non-nil child of n, then calls f(nil).
func Walk(n Node, f func(Node) bool) {
	if n == nil {
		panic("nil node")
	}
	if !f(n) {
		return
	}

	// children calls Walk for each non-nil child of n.
	walkStmts := func(stmts []Stmt) {
		for _, stmt := range stmts {
			Walk(stmt, f)
		}
	}
	walkExprs := func(exprs []Expr) {
		for _, e := range exprs {
			Walk(e, f)
		}
	}

	switch n := n.(type) {
	case *FuncDef:
		for _, param := range n.Params {
			Walk(param, f)
		}
		walkStmts(n.Body)
	case *ClassDef:
		walkStmts(n.Body)
	case *AssignStmt:
		Walk(n.LHS, f)
		Walk(n.RHS, f)
	case *ExprStmt:
		Walk(n.X, f)
	case *IfStmt:
		Walk(n.Cond, f)
		walkStmts(n.Body)
		walkStmts(n.Orelse)
	case *WhileStmt:
		Walk(n.Cond, f)
		walkStmts(n.Body)
		walkStmts(n.Orelse)
	case *ForStmt:
		Walk(n.Target, f)
		Walk(n.Iter, f)
		walkStmts(n.Body)
		walkStmts(n.Orelse)
	case *ReturnStmt:
		if n.Result != nil {
			Walk(n.Result, f)
		}
	case *PassStmt, *BreakStmt, *ContinueStmt, *GlobalStmt, *NonlocalStmt:
		// no children
	case *Ident, *Literal:
		// no children
	case *CallExpr:
		Walk(n.Fn, f)
		walkExprs(n.Args)
		for _, kw := range n.Keywords {
			Walk(kw.Value, f)
		}
	case *DotExpr:
		Walk(n.X, f)
	case *IndexExpr:
		Walk(n.X, f)
		Walk(n.Index, f)
	case *LambdaExpr:
		Walk(n.Body, f)
	case *TupleExpr:
		walkExprs(n.List)
	case *ListExpr:
		walkExprs(n.List)
	case *DictExpr:
		for _, entry := range n.List {
			Walk(entry, f)
		}
	case *DictEntry:
		Walk(n.Key, f)
		Walk(n.Value, f)
	case *CondExpr:
		Walk(n.Cond, f)
		Walk(n.True, f)
		Walk(n.False, f)
	case *BoolOpExpr:
		walkExprs(n.Values)
	case *UnaryExpr:
		Walk(n.X, f)
	case *BinaryExpr:
		Walk(n.X, f)
		Walk(n.Y, f)
	default:
		panic(n)
	}

	f(nil)
}
