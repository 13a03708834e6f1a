// Copyright 2019 Google LLC
// Use of this source code is governed by the Apache License, Version 2.0
// that can be found in the LICENSE file.

package resolve_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/google/pyctr/resolve"
	"github.com/google/pyctr/syntax"
)

func ident(name string) *syntax.Ident { return &syntax.Ident{Name: name} }

func num(n int64) *syntax.Literal { return &syntax.Literal{Value: n} }

func assign(name string, rhs syntax.Expr) syntax.Stmt {
	return &syntax.AssignStmt{LHS: ident(name), RHS: rhs}
}

func TestScopeClasses(t *testing.T) {
	// def f(a):
	//     b = a + outer
	//     global g
	//     g = 1
	//     return b
	fn := &syntax.FuncDef{
		Name:   "f",
		Params: []*syntax.Ident{ident("a")},
		Body: []syntax.Stmt{
			assign("b", &syntax.BinaryExpr{X: ident("a"), Op: syntax.OpAdd, Y: ident("outer")}),
			&syntax.GlobalStmt{Names: []string{"g"}},
			assign("g", num(1)),
			&syntax.ReturnStmt{Result: ident("b")},
		},
	}
	table, err := resolve.Func(fn)
	if err != nil {
		t.Fatal(err)
	}
	scope := table.Scope(fn)
	if scope == nil {
		t.Fatal("no scope recorded for f")
	}

	for _, test := range []struct {
		name  string
		check func(string) bool
		want  bool
	}{
		{"a", scope.IsLocal, true},
		{"b", scope.IsLocal, true},
		{"g", scope.IsLocal, false},
		{"g", scope.IsGlobal, true},
		{"outer", scope.IsFree, true},
		{"outer", scope.IsLocal, false},
	} {
		if got := test.check(test.name); got != test.want {
			t.Errorf("classification of %q = %v, want %v", test.name, got, test.want)
		}
	}

	if diff := cmp.Diff([]string{"a", "b"}, scope.Locals()); diff != "" {
		t.Errorf("Locals() mismatch (-want +got):\n%s", diff)
	}
}

func TestWholeBlockBinding(t *testing.T) {
	// A read that precedes the assignment still makes the name local
	// for the whole block.
	//
	// def f():
	//     y = x
	//     x = 1
	fn := &syntax.FuncDef{
		Name: "f",
		Body: []syntax.Stmt{
			assign("y", ident("x")),
			assign("x", num(1)),
		},
	}
	table, err := resolve.Func(fn)
	if err != nil {
		t.Fatal(err)
	}
	scope := table.Scope(fn)
	if !scope.IsLocal("x") {
		t.Errorf("x should be local (assigned later in the block)")
	}
	if scope.IsFree("x") {
		t.Errorf("x should not be free once bound")
	}
}

func TestNestedScopes(t *testing.T) {
	// def outer():
	//     c = 0
	//     def inc():
	//         nonlocal c
	//         c = c + 1
	//     def shadow():
	//         c = 5
	//     def reader():
	//         return c
	inc := &syntax.FuncDef{
		Name: "inc",
		Body: []syntax.Stmt{
			&syntax.NonlocalStmt{Names: []string{"c"}},
			assign("c", &syntax.BinaryExpr{X: ident("c"), Op: syntax.OpAdd, Y: num(1)}),
		},
	}
	shadow := &syntax.FuncDef{
		Name: "shadow",
		Body: []syntax.Stmt{assign("c", num(5))},
	}
	reader := &syntax.FuncDef{
		Name: "reader",
		Body: []syntax.Stmt{&syntax.ReturnStmt{Result: ident("c")}},
	}
	outer := &syntax.FuncDef{
		Name: "outer",
		Body: []syntax.Stmt{assign("c", num(0)), inc, shadow, reader},
	}

	table, err := resolve.Func(outer)
	if err != nil {
		t.Fatal(err)
	}

	outerScope := table.Scope(outer)
	for _, name := range []string{"c", "inc", "shadow", "reader"} {
		if !outerScope.IsLocal(name) {
			t.Errorf("%q should be local to outer", name)
		}
	}

	incScope := table.Scope(inc)
	if incScope.IsLocal("c") || !incScope.IsNonlocal("c") {
		t.Errorf("c in inc: local=%v nonlocal=%v, want nonlocal only",
			incScope.IsLocal("c"), incScope.IsNonlocal("c"))
	}
	if !incScope.ShouldVirtualize("c") {
		t.Errorf("nonlocal c should be virtualized: its binding scope is")
	}

	shadowScope := table.Scope(shadow)
	if !shadowScope.IsLocal("c") {
		t.Errorf("c in shadow should be a fresh local")
	}

	readerScope := table.Scope(reader)
	if !readerScope.IsFree("c") {
		t.Errorf("c in reader should be free")
	}
	if !readerScope.ShouldVirtualize("c") {
		t.Errorf("free c should be virtualized: its binding scope is")
	}
}

func TestShouldVirtualizeUnboundAndGlobal(t *testing.T) {
	// def f():
	//     global g
	//     g = unknown
	fn := &syntax.FuncDef{
		Name: "f",
		Body: []syntax.Stmt{
			&syntax.GlobalStmt{Names: []string{"g"}},
			assign("g", ident("unknown")),
		},
	}
	table, err := resolve.Func(fn)
	if err != nil {
		t.Fatal(err)
	}
	scope := table.Scope(fn)
	if scope.ShouldVirtualize("g") {
		t.Errorf("declared-global names are not virtualized")
	}
	if scope.ShouldVirtualize("unknown") {
		t.Errorf("unbound free names are not virtualized")
	}
}

func TestDeclarationAfterUse(t *testing.T) {
	// A declaration later in the block claims reads that preceded it;
	// the name must end up in exactly one class.
	//
	// def f():
	//     y = g
	//     global g
	//     z = n
	//     nonlocal n
	fn := &syntax.FuncDef{
		Name: "f",
		Body: []syntax.Stmt{
			assign("y", ident("g")),
			&syntax.GlobalStmt{Names: []string{"g"}},
			assign("z", ident("n")),
			&syntax.NonlocalStmt{Names: []string{"n"}},
		},
	}
	table, err := resolve.Func(fn)
	if err != nil {
		t.Fatal(err)
	}
	scope := table.Scope(fn)
	if !scope.IsGlobal("g") || scope.IsFree("g") || scope.IsLocal("g") {
		t.Errorf("g: global=%v free=%v local=%v, want global only",
			scope.IsGlobal("g"), scope.IsFree("g"), scope.IsLocal("g"))
	}
	if !scope.IsNonlocal("n") || scope.IsFree("n") || scope.IsLocal("n") {
		t.Errorf("n: nonlocal=%v free=%v local=%v, want nonlocal only",
			scope.IsNonlocal("n"), scope.IsFree("n"), scope.IsLocal("n"))
	}
}

func TestClassBodyRejected(t *testing.T) {
	fn := &syntax.FuncDef{
		Name: "f",
		Body: []syntax.Stmt{&syntax.ClassDef{Name: "C"}},
	}
	_, err := resolve.Func(fn)
	var unsupported *resolve.UnsupportedScopeError
	if !errors.As(err, &unsupported) {
		t.Fatalf("got %v, want UnsupportedScopeError", err)
	}
	if unsupported.Name != "C" {
		t.Errorf("error names %q, want %q", unsupported.Name, "C")
	}
}

func TestGlobalNonlocalConflict(t *testing.T) {
	for _, test := range []struct {
		desc string
		body []syntax.Stmt
	}{
		{
			"global then nonlocal",
			[]syntax.Stmt{
				&syntax.GlobalStmt{Names: []string{"x"}},
				&syntax.NonlocalStmt{Names: []string{"x"}},
			},
		},
		{
			"nonlocal then global",
			[]syntax.Stmt{
				&syntax.NonlocalStmt{Names: []string{"x"}},
				&syntax.GlobalStmt{Names: []string{"x"}},
			},
		},
	} {
		fn := &syntax.FuncDef{Name: "f", Body: test.body}
		_, err := resolve.Func(fn)
		var ambiguous *resolve.AmbiguousBindingError
		if !errors.As(err, &ambiguous) {
			t.Errorf("%s: got %v, want AmbiguousBindingError", test.desc, err)
			continue
		}
		if ambiguous.Name != "x" || ambiguous.Func != "f" {
			t.Errorf("%s: error = %v, want name x in func f", test.desc, ambiguous)
		}
	}
}

func TestForAndTupleTargetsBind(t *testing.T) {
	// def f(pairs):
	//     a, b = 1, 2
	//     for k in pairs:
	//         total = k
	fn := &syntax.FuncDef{
		Name:   "f",
		Params: []*syntax.Ident{ident("pairs")},
		Body: []syntax.Stmt{
			&syntax.AssignStmt{
				LHS: &syntax.TupleExpr{List: []syntax.Expr{ident("a"), ident("b")}},
				RHS: &syntax.TupleExpr{List: []syntax.Expr{num(1), num(2)}},
			},
			&syntax.ForStmt{
				Target: ident("k"),
				Iter:   ident("pairs"),
				Body:   []syntax.Stmt{assign("total", ident("k"))},
			},
		},
	}
	table, err := resolve.Func(fn)
	if err != nil {
		t.Fatal(err)
	}
	scope := table.Scope(fn)
	want := []string{"pairs", "a", "b", "k", "total"}
	if diff := cmp.Diff(want, scope.Locals()); diff != "" {
		t.Errorf("Locals() mismatch (-want +got):\n%s", diff)
	}
}
