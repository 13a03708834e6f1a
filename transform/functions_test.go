// Copyright 2019 Google LLC
// Use of this source code is governed by the Apache License, Version 2.0
// that can be found in the LICENSE file.

package transform_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/pyctr/syntax"
	"github.com/google/pyctr/transform"
)

func TestFunctionsRewritesCalls(t *testing.T) {
	// def g(h):
	//     return h(1, 2, k=3)
	fn := &syntax.FuncDef{
		Name:   "g",
		Params: []*syntax.Ident{ident("h")},
		Body: []syntax.Stmt{
			&syntax.ReturnStmt{Result: &syntax.CallExpr{
				Fn:       ident("h"),
				Args:     []syntax.Expr{num(1), num(2)},
				Keywords: []*syntax.Keyword{{Name: "k", Value: num(3)}},
			}},
		},
	}
	ctx := transform.NewContext(fn)
	out, err := transform.Functions(fn, ctx)
	require.NoError(t, err)

	calls := overloadCalls(out, ctx.OverloadName, "call")
	require.Len(t, calls, 1)
	call := calls[0]
	require.Len(t, call.Args, 3)

	// overload.call(h, (1, 2), {"k": 3})
	assert.Equal(t, ident("h"), call.Args[0])

	args, ok := call.Args[1].(*syntax.TupleExpr)
	require.True(t, ok)
	assert.Equal(t, []syntax.Expr{num(1), num(2)}, args.List)

	kwargs, ok := call.Args[2].(*syntax.DictExpr)
	require.True(t, ok)
	require.Len(t, kwargs.List, 1)
	assert.Equal(t, "k", kwargs.List[0].Key.(*syntax.Literal).Value)
	assert.Equal(t, num(3), kwargs.List[0].Value)
}

func TestFunctionsWhitelist(t *testing.T) {
	// def f(xs):
	//     return len(xs)
	fn := &syntax.FuncDef{
		Name:   "f",
		Params: []*syntax.Ident{ident("xs")},
		Body: []syntax.Stmt{
			&syntax.ReturnStmt{Result: &syntax.CallExpr{
				Fn:   ident("len"),
				Args: []syntax.Expr{ident("xs")},
			}},
		},
	}
	ctx := transform.NewContext(fn)
	ctx.Whitelist = map[string]bool{"len": true}

	out, err := transform.Functions(fn, ctx)
	require.NoError(t, err)

	assert.Empty(t, overloadCalls(out, ctx.OverloadName, "call"))
	ret := out.Body[0].(*syntax.ReturnStmt)
	direct, ok := ret.Result.(*syntax.CallExpr)
	require.True(t, ok)
	assert.Equal(t, ident("len"), direct.Fn)
}

func TestFunctionsQualifiedWhitelist(t *testing.T) {
	// math.floor(x) is exempt under "math.floor"; math.ceil(x) is not.
	call := func(attr string) *syntax.CallExpr {
		return &syntax.CallExpr{
			Fn:   &syntax.DotExpr{X: ident("math"), Name: attr},
			Args: []syntax.Expr{ident("x")},
		}
	}
	fn := &syntax.FuncDef{
		Name:   "f",
		Params: []*syntax.Ident{ident("x")},
		Body: []syntax.Stmt{
			&syntax.ExprStmt{X: call("floor")},
			&syntax.ExprStmt{X: call("ceil")},
		},
	}
	ctx := transform.NewContext(fn)
	ctx.Whitelist = map[string]bool{"math.floor": true}

	out, err := transform.Functions(fn, ctx)
	require.NoError(t, err)

	rewritten := overloadCalls(out, ctx.OverloadName, "call")
	require.Len(t, rewritten, 1)
	callee := rewritten[0].Args[0].(*syntax.DotExpr)
	assert.Equal(t, "ceil", callee.Name)
}

func TestFunctionsExemptsOverloadCalls(t *testing.T) {
	base := &syntax.FuncDef{Name: "f"}
	ctx := transform.NewContext(base)

	// A call already targeting the overload object is generated code
	// and must pass through untouched.
	generated := &syntax.CallExpr{
		Fn:   &syntax.DotExpr{X: ident(ctx.OverloadName), Name: "assign"},
		Args: []syntax.Expr{ident("x"), num(1)},
	}
	fn := &syntax.FuncDef{
		Name: "f",
		Body: []syntax.Stmt{&syntax.ExprStmt{X: generated}},
	}

	out, err := transform.Functions(fn, ctx)
	require.NoError(t, err)

	assert.Empty(t, overloadCalls(out, ctx.OverloadName, "call"))
	assigns := overloadCalls(out, ctx.OverloadName, "assign")
	require.Len(t, assigns, 1)
	assert.Equal(t, []syntax.Expr{ident("x"), num(1)}, assigns[0].Args)
}

func TestFunctionsWithoutCallCapability(t *testing.T) {
	fn := &syntax.FuncDef{
		Name: "f",
		Body: []syntax.Stmt{
			&syntax.ExprStmt{X: &syntax.CallExpr{Fn: ident("g")}},
		},
	}
	ctx := transform.NewContext(fn)
	ctx.Caps = transform.Capabilities{"read": true}

	out, err := transform.Functions(fn, ctx)
	require.NoError(t, err)
	assert.Same(t, fn, out)
}
