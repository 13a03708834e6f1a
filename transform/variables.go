// Copyright 2019 Google LLC
// Use of this source code is governed by the Apache License, Version 2.0
// that can be found in the LICENSE file.

package transform

import (
	"fmt"

	"github.com/google/pyctr/resolve"
	"github.com/google/pyctr/syntax"
)

// Variables rewrites every access of a tracked variable into explicit
// init/assign/read calls on the overload object.
//
// Each function body gains a prelude that binds every local name to a
// cell produced by overload.init, followed by overload.assign calls
// feeding the (renamed) parameters into their cells. Every write
// becomes overload.assign(cell, value) and, if the overload provides
// a read capability, every read becomes overload.read(cell).
//
// After this pass, later transformers observe variables only through
// the virtualized surface; in particular, closures synthesized by the
// control-flow pass capture cells by reference, so assignments inside
// a branch body remain visible to the enclosing scope.
func Variables(fn *syntax.FuncDef, ctx *Context) (*syntax.FuncDef, error) {
	if ctx.Scopes == nil {
		table, err := resolve.Func(fn)
		if err != nil {
			return nil, err
		}
		ctx.Scopes = table
	}
	v := &variableRewriter{ctx: ctx}
	return v.funcDef(fn)
}

type variableRewriter struct {
	ctx   *Context
	scope *resolve.Scope
}

func (v *variableRewriter) funcDef(fn *syntax.FuncDef) (*syntax.FuncDef, error) {
	scope := v.ctx.Scopes.Scope(fn)
	if scope == nil {
		return nil, fmt.Errorf("transform: no scope recorded for function %q", fn.Name)
	}
	outer := v.scope
	v.scope = scope
	defer func() { v.scope = outer }()

	// Rename parameters so the original names can be bound to cells.
	params := make([]*syntax.Ident, len(fn.Params))
	for i, param := range fn.Params {
		params[i] = ident(v.ctx.Namer.New(param.Name))
	}

	var body []syntax.Stmt
	for _, name := range scope.Locals() {
		body = append(body, &syntax.AssignStmt{
			LHS: ident(name),
			RHS: v.ctx.overloadCall("init", str(name)),
		})
	}
	for i, param := range fn.Params {
		body = append(body, &syntax.ExprStmt{
			X: v.ctx.overloadCall("assign", ident(param.Name), params[i]),
		})
	}

	rest, err := v.stmts(fn.Body)
	if err != nil {
		return nil, err
	}
	body = append(body, rest...)

	return &syntax.FuncDef{Name: fn.Name, Params: params, Body: body}, nil
}

func (v *variableRewriter) stmts(stmts []syntax.Stmt) ([]syntax.Stmt, error) {
	var out []syntax.Stmt
	for _, stmt := range stmts {
		rewritten, err := v.stmt(stmt)
		if err != nil {
			return nil, err
		}
		out = append(out, rewritten...)
	}
	return out, nil
}

func (v *variableRewriter) stmt(stmt syntax.Stmt) ([]syntax.Stmt, error) {
	switch stmt := stmt.(type) {
	case *syntax.FuncDef:
		inner, err := v.funcDef(stmt)
		if err != nil {
			return nil, err
		}
		if v.scope.IsLocal(stmt.Name) {
			// The def's name is itself a virtualized variable: bind
			// the function under a fresh name and assign it into the
			// name's cell.
			fresh := v.ctx.Namer.New(stmt.Name)
			renamed := &syntax.FuncDef{Name: fresh, Params: inner.Params, Body: inner.Body}
			return []syntax.Stmt{
				renamed,
				&syntax.ExprStmt{X: v.ctx.overloadCall("assign", ident(stmt.Name), ident(fresh))},
			}, nil
		}
		return []syntax.Stmt{inner}, nil

	case *syntax.AssignStmt:
		rhs := v.expr(stmt.RHS)
		return v.assign(stmt.LHS, rhs)

	case *syntax.ExprStmt:
		return []syntax.Stmt{&syntax.ExprStmt{X: v.expr(stmt.X)}}, nil

	case *syntax.IfStmt:
		body, err := v.stmts(stmt.Body)
		if err != nil {
			return nil, err
		}
		orelse, err := v.stmts(stmt.Orelse)
		if err != nil {
			return nil, err
		}
		return []syntax.Stmt{&syntax.IfStmt{Cond: v.expr(stmt.Cond), Body: body, Orelse: orelse}}, nil

	case *syntax.WhileStmt:
		body, err := v.stmts(stmt.Body)
		if err != nil {
			return nil, err
		}
		orelse, err := v.stmts(stmt.Orelse)
		if err != nil {
			return nil, err
		}
		return []syntax.Stmt{&syntax.WhileStmt{Cond: v.expr(stmt.Cond), Body: body, Orelse: orelse}}, nil

	case *syntax.ForStmt:
		return v.forStmt(stmt)

	case *syntax.ReturnStmt:
		if stmt.Result == nil {
			return []syntax.Stmt{stmt}, nil
		}
		return []syntax.Stmt{&syntax.ReturnStmt{Result: v.expr(stmt.Result)}}, nil

	default:
		// pass, break, continue, global, nonlocal
		return []syntax.Stmt{stmt}, nil
	}
}

// assign rewrites a single assignment to target. Tuple targets are
// split through a fresh temporary so each element gets its own assign
// call.
func (v *variableRewriter) assign(target syntax.Expr, rhs syntax.Expr) ([]syntax.Stmt, error) {
	switch target := target.(type) {
	case *syntax.Ident:
		if v.scope.ShouldVirtualize(target.Name) {
			return []syntax.Stmt{&syntax.ExprStmt{
				X: v.ctx.overloadCall("assign", ident(target.Name), rhs),
			}}, nil
		}
		return []syntax.Stmt{&syntax.AssignStmt{LHS: target, RHS: rhs}}, nil

	case *syntax.TupleExpr:
		tmp := v.ctx.Namer.New("n_tuple")
		out := []syntax.Stmt{&syntax.AssignStmt{LHS: ident(tmp), RHS: rhs}}
		for i, elt := range target.List {
			id, ok := elt.(*syntax.Ident)
			if !ok {
				return nil, fmt.Errorf("transform: assignment target must be a name or tuple of names, got %T", elt)
			}
			element := &syntax.IndexExpr{X: ident(tmp), Index: &syntax.Literal{Value: int64(i)}}
			assigned, err := v.assign(id, element)
			if err != nil {
				return nil, err
			}
			out = append(out, assigned...)
		}
		return out, nil
	}
	return nil, fmt.Errorf("transform: assignment target must be a name or tuple of names, got %T", target)
}

// forStmt rewrites the loop target through a fresh iteration variable:
//
//	for x in it: body
//
// becomes
//
//	for n_target in it:
//	    overload.assign(x, n_target)
//	    body
//
// The fresh variable is created after scope analysis, so it is never
// itself virtualized; the control-flow pass later turns it into the
// loop cell passed to for_stmt.
func (v *variableRewriter) forStmt(stmt *syntax.ForStmt) ([]syntax.Stmt, error) {
	iter := v.expr(stmt.Iter)
	body, err := v.stmts(stmt.Body)
	if err != nil {
		return nil, err
	}
	orelse, err := v.stmts(stmt.Orelse)
	if err != nil {
		return nil, err
	}

	nTarget := v.ctx.Namer.New("n_target")

	var prelude []syntax.Stmt
	switch target := stmt.Target.(type) {
	case *syntax.Ident:
		assigned, err := v.assign(target, ident(nTarget))
		if err != nil {
			return nil, err
		}
		prelude = assigned
	case *syntax.TupleExpr:
		for i, elt := range target.List {
			id, ok := elt.(*syntax.Ident)
			if !ok {
				return nil, fmt.Errorf("transform: for target must be a name or tuple of names, got %T", elt)
			}
			element := &syntax.IndexExpr{X: ident(nTarget), Index: &syntax.Literal{Value: int64(i)}}
			assigned, err := v.assign(id, element)
			if err != nil {
				return nil, err
			}
			prelude = append(prelude, assigned...)
		}
	default:
		return nil, fmt.Errorf("transform: for target must be a name or tuple of names, got %T", stmt.Target)
	}

	return []syntax.Stmt{&syntax.ForStmt{
		Target: ident(nTarget),
		Iter:   iter,
		Body:   append(prelude, body...),
		Orelse: orelse,
	}}, nil
}

func (v *variableRewriter) expr(e syntax.Expr) syntax.Expr {
	switch e := e.(type) {
	case *syntax.Ident:
		if v.ctx.Caps.Has("read") && v.scope.ShouldVirtualize(e.Name) {
			return v.ctx.overloadCall("read", e)
		}
		return e

	case *syntax.Literal:
		return e

	case *syntax.CallExpr:
		args := make([]syntax.Expr, len(e.Args))
		for i, arg := range e.Args {
			args[i] = v.expr(arg)
		}
		keywords := make([]*syntax.Keyword, len(e.Keywords))
		for i, kw := range e.Keywords {
			keywords[i] = &syntax.Keyword{Name: kw.Name, Value: v.expr(kw.Value)}
		}
		return &syntax.CallExpr{Fn: v.expr(e.Fn), Args: args, Keywords: keywords}

	case *syntax.DotExpr:
		return &syntax.DotExpr{X: v.expr(e.X), Name: e.Name}

	case *syntax.IndexExpr:
		return &syntax.IndexExpr{X: v.expr(e.X), Index: v.expr(e.Index)}

	case *syntax.TupleExpr:
		return &syntax.TupleExpr{List: v.exprs(e.List)}

	case *syntax.ListExpr:
		return &syntax.ListExpr{List: v.exprs(e.List)}

	case *syntax.DictExpr:
		entries := make([]*syntax.DictEntry, len(e.List))
		for i, entry := range e.List {
			entries[i] = &syntax.DictEntry{Key: v.expr(entry.Key), Value: v.expr(entry.Value)}
		}
		return &syntax.DictExpr{List: entries}

	case *syntax.CondExpr:
		return &syntax.CondExpr{Cond: v.expr(e.Cond), True: v.expr(e.True), False: v.expr(e.False)}

	case *syntax.BoolOpExpr:
		return &syntax.BoolOpExpr{Op: e.Op, Values: v.exprs(e.Values)}

	case *syntax.UnaryExpr:
		return &syntax.UnaryExpr{Op: e.Op, X: v.expr(e.X)}

	case *syntax.BinaryExpr:
		return &syntax.BinaryExpr{X: v.expr(e.X), Op: e.Op, Y: v.expr(e.Y)}

	case *syntax.LambdaExpr:
		return &syntax.LambdaExpr{Body: v.expr(e.Body)}

	default:
		return e
	}
}

func (v *variableRewriter) exprs(list []syntax.Expr) []syntax.Expr {
	out := make([]syntax.Expr, len(list))
	for i, e := range list {
		out[i] = v.expr(e)
	}
	return out
}
