// Copyright 2019 Google LLC
// Use of this source code is governed by the Apache License, Version 2.0
// that can be found in the LICENSE file.

package transform

import (
	"github.com/google/pyctr/syntax"
)

// Functions rewrites call expressions into overload.call(func, args,
// kwargs): the callee as a first-class value, the positional arguments
// as a tuple, and the keyword arguments as a dict.
//
// Two kinds of calls are left direct: calls on the overload object
// itself (generated code), and calls whose qualified callee name is on
// the configured whitelist. The whitelist exists so that core
// operations needed by other transformers' generated code, such as
// builtin constructors, do not force the overload to implement
// generic call semantics for calls it never asked to see.
func Functions(fn *syntax.FuncDef, ctx *Context) (*syntax.FuncDef, error) {
	if !ctx.Caps.Has("call") {
		return fn, nil
	}
	f := &callRewriter{ctx: ctx}
	return &syntax.FuncDef{Name: fn.Name, Params: fn.Params, Body: f.stmts(fn.Body)}, nil
}

type callRewriter struct {
	ctx *Context
}

func (f *callRewriter) stmts(stmts []syntax.Stmt) []syntax.Stmt {
	out := make([]syntax.Stmt, len(stmts))
	for i, stmt := range stmts {
		out[i] = f.stmt(stmt)
	}
	return out
}

func (f *callRewriter) stmt(stmt syntax.Stmt) syntax.Stmt {
	switch stmt := stmt.(type) {
	case *syntax.FuncDef:
		return &syntax.FuncDef{Name: stmt.Name, Params: stmt.Params, Body: f.stmts(stmt.Body)}
	case *syntax.AssignStmt:
		return &syntax.AssignStmt{LHS: stmt.LHS, RHS: f.expr(stmt.RHS)}
	case *syntax.ExprStmt:
		return &syntax.ExprStmt{X: f.expr(stmt.X)}
	case *syntax.IfStmt:
		return &syntax.IfStmt{Cond: f.expr(stmt.Cond), Body: f.stmts(stmt.Body), Orelse: f.stmts(stmt.Orelse)}
	case *syntax.WhileStmt:
		return &syntax.WhileStmt{Cond: f.expr(stmt.Cond), Body: f.stmts(stmt.Body), Orelse: f.stmts(stmt.Orelse)}
	case *syntax.ForStmt:
		return &syntax.ForStmt{Target: stmt.Target, Iter: f.expr(stmt.Iter), Body: f.stmts(stmt.Body), Orelse: f.stmts(stmt.Orelse)}
	case *syntax.ReturnStmt:
		if stmt.Result == nil {
			return stmt
		}
		return &syntax.ReturnStmt{Result: f.expr(stmt.Result)}
	default:
		return stmt
	}
}

func (f *callRewriter) expr(e syntax.Expr) syntax.Expr {
	switch e := e.(type) {
	case *syntax.CallExpr:
		args := make([]syntax.Expr, len(e.Args))
		for i, arg := range e.Args {
			args[i] = f.expr(arg)
		}

		if f.ctx.isOverloadCall(e) || f.whitelisted(e.Fn) {
			keywords := make([]*syntax.Keyword, len(e.Keywords))
			for i, kw := range e.Keywords {
				keywords[i] = &syntax.Keyword{Name: kw.Name, Value: f.expr(kw.Value)}
			}
			return &syntax.CallExpr{Fn: f.expr(e.Fn), Args: args, Keywords: keywords}
		}

		kwargs := make([]*syntax.DictEntry, len(e.Keywords))
		for i, kw := range e.Keywords {
			kwargs[i] = &syntax.DictEntry{Key: str(kw.Name), Value: f.expr(kw.Value)}
		}
		return f.ctx.overloadCall("call",
			f.expr(e.Fn),
			&syntax.TupleExpr{List: args},
			&syntax.DictExpr{List: kwargs})

	case *syntax.DotExpr:
		return &syntax.DotExpr{X: f.expr(e.X), Name: e.Name}
	case *syntax.IndexExpr:
		return &syntax.IndexExpr{X: f.expr(e.X), Index: f.expr(e.Index)}
	case *syntax.TupleExpr:
		return &syntax.TupleExpr{List: f.exprs(e.List)}
	case *syntax.ListExpr:
		return &syntax.ListExpr{List: f.exprs(e.List)}
	case *syntax.DictExpr:
		entries := make([]*syntax.DictEntry, len(e.List))
		for i, entry := range e.List {
			entries[i] = &syntax.DictEntry{Key: f.expr(entry.Key), Value: f.expr(entry.Value)}
		}
		return &syntax.DictExpr{List: entries}
	case *syntax.CondExpr:
		return &syntax.CondExpr{Cond: f.expr(e.Cond), True: f.expr(e.True), False: f.expr(e.False)}
	case *syntax.BoolOpExpr:
		return &syntax.BoolOpExpr{Op: e.Op, Values: f.exprs(e.Values)}
	case *syntax.UnaryExpr:
		return &syntax.UnaryExpr{Op: e.Op, X: f.expr(e.X)}
	case *syntax.BinaryExpr:
		return &syntax.BinaryExpr{X: f.expr(e.X), Op: e.Op, Y: f.expr(e.Y)}
	case *syntax.LambdaExpr:
		return &syntax.LambdaExpr{Body: f.expr(e.Body)}
	default:
		return e
	}
}

func (f *callRewriter) exprs(list []syntax.Expr) []syntax.Expr {
	out := make([]syntax.Expr, len(list))
	for i, e := range list {
		out[i] = f.expr(e)
	}
	return out
}

func (f *callRewriter) whitelisted(callee syntax.Expr) bool {
	name := syntax.QualName(callee)
	return name != "" && f.ctx.Whitelist[name]
}
