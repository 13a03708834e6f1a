// Copyright 2019 Google LLC
// Use of this source code is governed by the Apache License, Version 2.0
// that can be found in the LICENSE file.

package transform

import (
	"github.com/google/pyctr/syntax"
)

// LogicalOps rewrites and/or chains and not into explicit overload
// calls. A chain of n operands becomes a single variadic call,
//
//	a and b and c  ->  overload.and_(a, b, c)
//
// never nested binary calls; the overload decides evaluation order.
// When Context.DeferLogicalOperands is set (the default), every
// operand after the first is wrapped in a zero-argument lambda so the
// overload can preserve short-circuit semantics. not x becomes
// overload.not_(x).
func LogicalOps(fn *syntax.FuncDef, ctx *Context) (*syntax.FuncDef, error) {
	l := &logicalOpRewriter{ctx: ctx}
	return &syntax.FuncDef{Name: fn.Name, Params: fn.Params, Body: l.stmts(fn.Body)}, nil
}

type logicalOpRewriter struct {
	ctx *Context
}

func (l *logicalOpRewriter) stmts(stmts []syntax.Stmt) []syntax.Stmt {
	out := make([]syntax.Stmt, len(stmts))
	for i, stmt := range stmts {
		out[i] = l.stmt(stmt)
	}
	return out
}

func (l *logicalOpRewriter) stmt(stmt syntax.Stmt) syntax.Stmt {
	switch stmt := stmt.(type) {
	case *syntax.FuncDef:
		return &syntax.FuncDef{Name: stmt.Name, Params: stmt.Params, Body: l.stmts(stmt.Body)}
	case *syntax.AssignStmt:
		return &syntax.AssignStmt{LHS: stmt.LHS, RHS: l.expr(stmt.RHS)}
	case *syntax.ExprStmt:
		return &syntax.ExprStmt{X: l.expr(stmt.X)}
	case *syntax.IfStmt:
		return &syntax.IfStmt{Cond: l.expr(stmt.Cond), Body: l.stmts(stmt.Body), Orelse: l.stmts(stmt.Orelse)}
	case *syntax.WhileStmt:
		return &syntax.WhileStmt{Cond: l.expr(stmt.Cond), Body: l.stmts(stmt.Body), Orelse: l.stmts(stmt.Orelse)}
	case *syntax.ForStmt:
		return &syntax.ForStmt{Target: stmt.Target, Iter: l.expr(stmt.Iter), Body: l.stmts(stmt.Body), Orelse: l.stmts(stmt.Orelse)}
	case *syntax.ReturnStmt:
		if stmt.Result == nil {
			return stmt
		}
		return &syntax.ReturnStmt{Result: l.expr(stmt.Result)}
	default:
		return stmt
	}
}

func (l *logicalOpRewriter) expr(e syntax.Expr) syntax.Expr {
	switch e := e.(type) {
	case *syntax.BoolOpExpr:
		capability := "and_"
		if e.Op == syntax.Or {
			capability = "or_"
		}
		values := l.exprs(e.Values)
		if !l.ctx.Caps.Has(capability) {
			return &syntax.BoolOpExpr{Op: e.Op, Values: values}
		}
		operands := make([]syntax.Expr, len(values))
		for i, v := range values {
			if i > 0 && l.ctx.DeferLogicalOperands {
				v = &syntax.LambdaExpr{Body: v}
			}
			operands[i] = v
		}
		return l.ctx.overloadCall(capability, operands...)

	case *syntax.UnaryExpr:
		x := l.expr(e.X)
		if e.Op == syntax.OpNot && l.ctx.Caps.Has("not_") {
			return l.ctx.overloadCall("not_", x)
		}
		return &syntax.UnaryExpr{Op: e.Op, X: x}

	case *syntax.CallExpr:
		args := make([]syntax.Expr, len(e.Args))
		for i, arg := range e.Args {
			args[i] = l.expr(arg)
		}
		keywords := make([]*syntax.Keyword, len(e.Keywords))
		for i, kw := range e.Keywords {
			keywords[i] = &syntax.Keyword{Name: kw.Name, Value: l.expr(kw.Value)}
		}
		return &syntax.CallExpr{Fn: l.expr(e.Fn), Args: args, Keywords: keywords}

	case *syntax.DotExpr:
		return &syntax.DotExpr{X: l.expr(e.X), Name: e.Name}
	case *syntax.IndexExpr:
		return &syntax.IndexExpr{X: l.expr(e.X), Index: l.expr(e.Index)}
	case *syntax.TupleExpr:
		return &syntax.TupleExpr{List: l.exprs(e.List)}
	case *syntax.ListExpr:
		return &syntax.ListExpr{List: l.exprs(e.List)}
	case *syntax.DictExpr:
		entries := make([]*syntax.DictEntry, len(e.List))
		for i, entry := range e.List {
			entries[i] = &syntax.DictEntry{Key: l.expr(entry.Key), Value: l.expr(entry.Value)}
		}
		return &syntax.DictExpr{List: entries}
	case *syntax.CondExpr:
		return &syntax.CondExpr{Cond: l.expr(e.Cond), True: l.expr(e.True), False: l.expr(e.False)}
	case *syntax.BinaryExpr:
		return &syntax.BinaryExpr{X: l.expr(e.X), Op: e.Op, Y: l.expr(e.Y)}
	case *syntax.LambdaExpr:
		return &syntax.LambdaExpr{Body: l.expr(e.Body)}
	default:
		return e
	}
}

func (l *logicalOpRewriter) exprs(list []syntax.Expr) []syntax.Expr {
	out := make([]syntax.Expr, len(list))
	for i, e := range list {
		out[i] = l.expr(e)
	}
	return out
}
