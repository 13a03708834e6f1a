// Copyright 2019 Google LLC
// Use of this source code is governed by the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package transform implements the syntax-rewriting passes that
// virtualize variables, control flow, function calls, and logical
// operators into explicit calls on an overload object.
//
// Each pass is a pure function from a function definition to a new
// function definition; unmodified subtrees are shared between input
// and output. Passes communicate only through the Context.
package transform

import (
	"github.com/google/pyctr/resolve"
	"github.com/google/pyctr/syntax"
)

// Capabilities records which operations an overload object provides,
// keyed by the generated-code attribute name ("init", "assign",
// "read", "if_stmt", "while_stmt", "for_stmt", "call", "and_", "or_",
// "not_"). A nil Capabilities means every capability is assumed
// present.
type Capabilities map[string]bool

// Has reports whether the named capability is available.
func (c Capabilities) Has(name string) bool {
	if c == nil {
		return true
	}
	return c[name]
}

// A Context carries the per-conversion state shared by the passes.
// It lives for a single pipeline invocation.
type Context struct {
	// OverloadName is the binding name under which the overload
	// object is visible in the rewritten tree.
	OverloadName string

	// Caps is the capability set of the overload object. Passes
	// leave a construct untouched when the capability that would
	// receive it is absent.
	Caps Capabilities

	// Scopes is the scope table built by the resolve package.
	// The Variables pass fills it in if nil.
	Scopes *resolve.Table

	// Namer generates fresh symbols that cannot collide with any
	// identifier of the input tree.
	Namer *Namer

	// Whitelist is the set of qualified call targets exempt from
	// function-call virtualization.
	Whitelist map[string]bool

	// DeferLogicalOperands controls whether and_/or_ operands after
	// the first are wrapped in zero-argument lambdas, letting the
	// overload decide short-circuit order.
	DeferLogicalOperands bool
}

// NewContext returns a Context for converting fn, with a fresh namer
// and an overload binding name guaranteed not to collide with any
// name in fn.
func NewContext(fn *syntax.FuncDef) *Context {
	namer := NewNamer(fn)
	return &Context{
		OverloadName:         namer.New("overload"),
		Namer:                namer,
		DeferLogicalOperands: true,
	}
}

// overloadAttr returns the expression ctx.OverloadName.name.
func (ctx *Context) overloadAttr(name string) syntax.Expr {
	return &syntax.DotExpr{X: &syntax.Ident{Name: ctx.OverloadName}, Name: name}
}

// overloadCall returns the call ctx.OverloadName.name(args).
func (ctx *Context) overloadCall(name string, args ...syntax.Expr) *syntax.CallExpr {
	return &syntax.CallExpr{Fn: ctx.overloadAttr(name), Args: args}
}

// isOverloadCall reports whether call invokes an attribute of the
// overload object. Such calls are generated code and are never
// themselves virtualized.
func (ctx *Context) isOverloadCall(call *syntax.CallExpr) bool {
	dot, ok := call.Fn.(*syntax.DotExpr)
	if !ok {
		return false
	}
	id, ok := dot.X.(*syntax.Ident)
	return ok && id.Name == ctx.OverloadName
}

func str(s string) *syntax.Literal { return &syntax.Literal{Value: s} }

func ident(name string) *syntax.Ident { return &syntax.Ident{Name: name} }

// stringTuple builds a tuple literal of string constants, used for
// the local_writes argument of control-flow calls.
func stringTuple(names []string) *syntax.TupleExpr {
	elts := make([]syntax.Expr, len(names))
	for i, name := range names {
		elts[i] = str(name)
	}
	return &syntax.TupleExpr{List: elts}
}
