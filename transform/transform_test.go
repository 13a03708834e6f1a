// Copyright 2019 Google LLC
// Use of this source code is governed by the Apache License, Version 2.0
// that can be found in the LICENSE file.

package transform_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/google/pyctr/syntax"
	"github.com/google/pyctr/transform"
)

func ident(name string) *syntax.Ident { return &syntax.Ident{Name: name} }

func num(n int64) *syntax.Literal { return &syntax.Literal{Value: n} }

func assign(name string, rhs syntax.Expr) syntax.Stmt {
	return &syntax.AssignStmt{LHS: ident(name), RHS: rhs}
}

func binary(x syntax.Expr, op syntax.Op, y syntax.Expr) syntax.Expr {
	return &syntax.BinaryExpr{X: x, Op: op, Y: y}
}

// overloadCalls returns every call of overloadName.attr in fn, in
// visit order.
func overloadCalls(fn *syntax.FuncDef, overloadName, attr string) []*syntax.CallExpr {
	var calls []*syntax.CallExpr
	syntax.Walk(fn, func(n syntax.Node) bool {
		call, ok := n.(*syntax.CallExpr)
		if !ok {
			return true
		}
		dot, ok := call.Fn.(*syntax.DotExpr)
		if !ok {
			return true
		}
		if x, ok := dot.X.(*syntax.Ident); ok && x.Name == overloadName && dot.Name == attr {
			calls = append(calls, call)
		}
		return true
	})
	return calls
}

// tupleStrings unpacks a tuple literal of string constants, such as a
// local_writes argument.
func tupleStrings(t *testing.T, e syntax.Expr) []string {
	t.Helper()
	tup, ok := e.(*syntax.TupleExpr)
	require.True(t, ok, "expected tuple literal, got %T", e)
	out := []string{}
	for _, elt := range tup.List {
		lit, ok := elt.(*syntax.Literal)
		require.True(t, ok, "expected string literal, got %T", elt)
		s, ok := lit.Value.(string)
		require.True(t, ok, "expected string literal, got %v", lit.Value)
		out = append(out, s)
	}
	return out
}

func TestNamerFreshness(t *testing.T) {
	fn := &syntax.FuncDef{
		Name:   "f",
		Params: []*syntax.Ident{ident("overload")},
		Body: []syntax.Stmt{
			assign("x", ident("x_1")),
		},
	}
	namer := transform.NewNamer(fn)

	require.Equal(t, "overload_1", namer.New("overload"))
	require.Equal(t, "x_2", namer.New("x"), "x and x_1 are taken")
	require.Equal(t, "y", namer.New("y"))
	require.Equal(t, "y_1", namer.New("y"), "generated names are reserved too")
}

func TestNewContextAvoidsCollision(t *testing.T) {
	fn := &syntax.FuncDef{
		Name: "f",
		Body: []syntax.Stmt{assign("overload", num(1))},
	}
	ctx := transform.NewContext(fn)
	require.Equal(t, "overload_1", ctx.OverloadName)
}

func TestCapabilitiesNilAssumesAll(t *testing.T) {
	var caps transform.Capabilities
	require.True(t, caps.Has("read"))
	require.True(t, caps.Has("if_stmt"))

	caps = transform.Capabilities{"read": true}
	require.True(t, caps.Has("read"))
	require.False(t, caps.Has("if_stmt"))
}
