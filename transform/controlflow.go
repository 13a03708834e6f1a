// Copyright 2019 Google LLC
// Use of this source code is governed by the Apache License, Version 2.0
// that can be found in the LICENSE file.

package transform

import (
	"github.com/google/pyctr/syntax"
)

// ControlFlow rewrites if, while, and for constructs into explicit
// calls on the overload object:
//
//	overload.if_stmt(test_fn, body_fn, orelse_fn, local_writes)
//	overload.while_stmt(test_fn, body_fn, orelse_fn, local_writes)
//	overload.for_stmt(target, iter, body_fn, orelse_fn, local_writes)
//
// test_fn, body_fn and orelse_fn are zero-argument closures over the
// original condition, body and else statements. An absent else branch
// becomes a closure over a single pass statement, so the overload
// always receives three callables. local_writes is the statically
// computed tuple of variable names the body may assign.
//
// This pass must run after Variables: the closures mutate enclosing
// state only through the cell-based assign/read surface that pass
// establishes, and local_writes is computed from the virtualized
// assign calls. Conditional expressions (x if c else y) are likewise
// rewritten, into an if_stmt call in expression position whose three
// closures are zero-argument lambdas.
func ControlFlow(fn *syntax.FuncDef, ctx *Context) (*syntax.FuncDef, error) {
	c := &controlFlowRewriter{ctx: ctx}
	body, err := c.stmts(fn.Body)
	if err != nil {
		return nil, err
	}
	return &syntax.FuncDef{Name: fn.Name, Params: fn.Params, Body: body}, nil
}

type controlFlowRewriter struct {
	ctx *Context
}

func (c *controlFlowRewriter) stmts(stmts []syntax.Stmt) ([]syntax.Stmt, error) {
	var out []syntax.Stmt
	for _, stmt := range stmts {
		rewritten, err := c.stmt(stmt)
		if err != nil {
			return nil, err
		}
		out = append(out, rewritten...)
	}
	return out, nil
}

func (c *controlFlowRewriter) stmt(stmt syntax.Stmt) ([]syntax.Stmt, error) {
	switch stmt := stmt.(type) {
	case *syntax.IfStmt:
		// local_writes is computed on the pre-rewrite subtree; nested
		// control flow is still in statement form there, so writes
		// inside inner branches are found transitively.
		writes := c.localWrites(stmt.Body, stmt.Orelse)

		cond := c.expr(stmt.Cond)
		body, err := c.stmts(stmt.Body)
		if err != nil {
			return nil, err
		}
		orelse, err := c.stmts(stmt.Orelse)
		if err != nil {
			return nil, err
		}
		if !c.ctx.Caps.Has("if_stmt") {
			return []syntax.Stmt{&syntax.IfStmt{Cond: cond, Body: body, Orelse: orelse}}, nil
		}

		test := c.ctx.Namer.New("if_test")
		bodyName := c.ctx.Namer.New("if_body")
		orelseName := c.ctx.Namer.New("if_orelse")
		return []syntax.Stmt{
			&syntax.FuncDef{Name: test, Body: []syntax.Stmt{&syntax.ReturnStmt{Result: cond}}},
			&syntax.FuncDef{Name: bodyName, Body: nonEmpty(body)},
			&syntax.FuncDef{Name: orelseName, Body: nonEmpty(orelse)},
			&syntax.ExprStmt{X: c.ctx.overloadCall("if_stmt",
				ident(test), ident(bodyName), ident(orelseName), stringTuple(writes))},
		}, nil

	case *syntax.WhileStmt:
		writes := c.localWrites(stmt.Body, stmt.Orelse)

		cond := c.expr(stmt.Cond)
		body, err := c.stmts(stmt.Body)
		if err != nil {
			return nil, err
		}
		orelse, err := c.stmts(stmt.Orelse)
		if err != nil {
			return nil, err
		}
		if !c.ctx.Caps.Has("while_stmt") {
			return []syntax.Stmt{&syntax.WhileStmt{Cond: cond, Body: body, Orelse: orelse}}, nil
		}

		test := c.ctx.Namer.New("while_test")
		bodyName := c.ctx.Namer.New("while_body")
		orelseName := c.ctx.Namer.New("while_orelse")
		return []syntax.Stmt{
			&syntax.FuncDef{Name: test, Body: []syntax.Stmt{&syntax.ReturnStmt{Result: cond}}},
			&syntax.FuncDef{Name: bodyName, Body: nonEmpty(body)},
			&syntax.FuncDef{Name: orelseName, Body: nonEmpty(orelse)},
			&syntax.ExprStmt{X: c.ctx.overloadCall("while_stmt",
				ident(test), ident(bodyName), ident(orelseName), stringTuple(writes))},
		}, nil

	case *syntax.ForStmt:
		writes := c.localWrites(stmt.Body, stmt.Orelse)

		// The iterable is evaluated once, in the enclosing scope, and
		// passed to the call; only body and else become closures.
		iter := c.expr(stmt.Iter)
		body, err := c.stmts(stmt.Body)
		if err != nil {
			return nil, err
		}
		orelse, err := c.stmts(stmt.Orelse)
		if err != nil {
			return nil, err
		}
		if !c.ctx.Caps.Has("for_stmt") {
			return []syntax.Stmt{&syntax.ForStmt{Target: stmt.Target, Iter: iter, Body: body, Orelse: orelse}}, nil
		}

		// Bind each target name to a cell; the overload assigns into
		// it once per iteration it chooses to run.
		var out []syntax.Stmt
		for _, name := range targetIdents(stmt.Target) {
			out = append(out, &syntax.AssignStmt{
				LHS: ident(name),
				RHS: c.ctx.overloadCall("init", str(name)),
			})
		}

		bodyName := c.ctx.Namer.New("for_body")
		orelseName := c.ctx.Namer.New("for_orelse")
		out = append(out,
			&syntax.FuncDef{Name: bodyName, Body: nonEmpty(body)},
			&syntax.FuncDef{Name: orelseName, Body: nonEmpty(orelse)},
			&syntax.ExprStmt{X: c.ctx.overloadCall("for_stmt",
				stmt.Target, iter, ident(bodyName), ident(orelseName), stringTuple(writes))},
		)
		return out, nil

	case *syntax.FuncDef:
		body, err := c.stmts(stmt.Body)
		if err != nil {
			return nil, err
		}
		return []syntax.Stmt{&syntax.FuncDef{Name: stmt.Name, Params: stmt.Params, Body: body}}, nil

	case *syntax.AssignStmt:
		return []syntax.Stmt{&syntax.AssignStmt{LHS: stmt.LHS, RHS: c.expr(stmt.RHS)}}, nil

	case *syntax.ExprStmt:
		return []syntax.Stmt{&syntax.ExprStmt{X: c.expr(stmt.X)}}, nil

	case *syntax.ReturnStmt:
		if stmt.Result == nil {
			return []syntax.Stmt{stmt}, nil
		}
		return []syntax.Stmt{&syntax.ReturnStmt{Result: c.expr(stmt.Result)}}, nil

	default:
		return []syntax.Stmt{stmt}, nil
	}
}

func (c *controlFlowRewriter) expr(e syntax.Expr) syntax.Expr {
	switch e := e.(type) {
	case *syntax.CondExpr:
		cond := c.expr(e.Cond)
		truePart := c.expr(e.True)
		falsePart := c.expr(e.False)
		if !c.ctx.Caps.Has("if_stmt") {
			return &syntax.CondExpr{Cond: cond, True: truePart, False: falsePart}
		}
		return c.ctx.overloadCall("if_stmt",
			&syntax.LambdaExpr{Body: cond},
			&syntax.LambdaExpr{Body: truePart},
			&syntax.LambdaExpr{Body: falsePart},
			stringTuple(nil))

	case *syntax.CallExpr:
		args := make([]syntax.Expr, len(e.Args))
		for i, arg := range e.Args {
			args[i] = c.expr(arg)
		}
		keywords := make([]*syntax.Keyword, len(e.Keywords))
		for i, kw := range e.Keywords {
			keywords[i] = &syntax.Keyword{Name: kw.Name, Value: c.expr(kw.Value)}
		}
		return &syntax.CallExpr{Fn: c.expr(e.Fn), Args: args, Keywords: keywords}

	case *syntax.DotExpr:
		return &syntax.DotExpr{X: c.expr(e.X), Name: e.Name}

	case *syntax.IndexExpr:
		return &syntax.IndexExpr{X: c.expr(e.X), Index: c.expr(e.Index)}

	case *syntax.TupleExpr:
		return &syntax.TupleExpr{List: c.exprs(e.List)}

	case *syntax.ListExpr:
		return &syntax.ListExpr{List: c.exprs(e.List)}

	case *syntax.DictExpr:
		entries := make([]*syntax.DictEntry, len(e.List))
		for i, entry := range e.List {
			entries[i] = &syntax.DictEntry{Key: c.expr(entry.Key), Value: c.expr(entry.Value)}
		}
		return &syntax.DictExpr{List: entries}

	case *syntax.BoolOpExpr:
		return &syntax.BoolOpExpr{Op: e.Op, Values: c.exprs(e.Values)}

	case *syntax.UnaryExpr:
		return &syntax.UnaryExpr{Op: e.Op, X: c.expr(e.X)}

	case *syntax.BinaryExpr:
		return &syntax.BinaryExpr{X: c.expr(e.X), Op: e.Op, Y: c.expr(e.Y)}

	case *syntax.LambdaExpr:
		return &syntax.LambdaExpr{Body: c.expr(e.Body)}

	default:
		return e
	}
}

func (c *controlFlowRewriter) exprs(list []syntax.Expr) []syntax.Expr {
	out := make([]syntax.Expr, len(list))
	for i, e := range list {
		out[i] = c.expr(e)
	}
	return out
}

// localWrites computes the set of variable names the given bodies may
// assign: targets of raw assignments and first arguments of
// overload.assign calls, collected transitively through nested
// control flow but not through nested function definitions (names
// rebound by an inner function are its own). Order is first
// occurrence; the result feeds the local_writes tuple.
func (c *controlFlowRewriter) localWrites(bodies ...[]syntax.Stmt) []string {
	var names []string
	seen := make(map[string]bool)
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	var visit func(n syntax.Node) bool
	visit = func(n syntax.Node) bool {
		switch n := n.(type) {
		case *syntax.FuncDef, *syntax.LambdaExpr:
			return false
		case *syntax.AssignStmt:
			for _, name := range targetIdents(n.LHS) {
				add(name)
			}
		case *syntax.ForStmt:
			for _, name := range targetIdents(n.Target) {
				add(name)
			}
		case *syntax.CallExpr:
			if c.ctx.isOverloadCall(n) {
				dot := n.Fn.(*syntax.DotExpr)
				if dot.Name == "assign" && len(n.Args) > 0 {
					if id, ok := n.Args[0].(*syntax.Ident); ok {
						add(id.Name)
					}
				}
			}
		}
		return true
	}

	for _, body := range bodies {
		for _, stmt := range body {
			syntax.Walk(stmt, func(n syntax.Node) bool {
				if n == nil {
					return true
				}
				return visit(n)
			})
		}
	}
	return names
}

// nonEmpty returns body, or a single pass statement if body is empty,
// so closure bodies are never empty.
func nonEmpty(body []syntax.Stmt) []syntax.Stmt {
	if len(body) == 0 {
		return []syntax.Stmt{&syntax.PassStmt{}}
	}
	return body
}

// targetIdents returns the names of an assignment or loop target.
func targetIdents(target syntax.Expr) []string {
	switch target := target.(type) {
	case *syntax.Ident:
		return []string{target.Name}
	case *syntax.TupleExpr:
		var names []string
		for _, elt := range target.List {
			if id, ok := elt.(*syntax.Ident); ok {
				names = append(names, id.Name)
			}
		}
		return names
	}
	return nil
}
