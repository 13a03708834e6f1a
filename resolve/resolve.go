// Copyright 2019 Google LLC
// Use of this source code is governed by the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package resolve classifies the variables of a function.
//
// For each function definition in a tree it builds a Scope recording,
// for every name referenced directly in that function, whether the
// name is local, free, declared global, or declared nonlocal.
// Classification is whole-block: a name assigned anywhere in a block
// is local throughout that block, even for reads that precede the
// assignment (which then fail at run time with an unbound-local
// condition rather than resolving to an outer variable).
//
// The resulting Table is an explicit artifact consumed read-only by
// the variable and control-flow transformers; later passes never
// re-derive scoping.
package resolve

import (
	"fmt"

	"github.com/google/pyctr/syntax"
)

// An UnsupportedScopeError reports a class body in the input tree.
// Class-body scoping is not supported; analysis fails rather than
// producing incorrect bindings.
type UnsupportedScopeError struct {
	Name string // class name
}

func (e *UnsupportedScopeError) Error() string {
	return fmt.Sprintf("resolve: class body scope of %q is not supported", e.Name)
}

// An AmbiguousBindingError reports a name whose scope cannot be
// statically determined, such as one declared both global and
// nonlocal in the same block.
type AmbiguousBindingError struct {
	Name string
	Func string // enclosing function name
}

func (e *AmbiguousBindingError) Error() string {
	return fmt.Sprintf("resolve: ambiguous binding for %q in %q: declared both global and nonlocal", e.Name, e.Func)
}

// A Scope records the variables visible within one function.
type Scope struct {
	Parent   *Scope
	FuncName string

	locals    map[string]bool
	free      map[string]bool
	globals   map[string]bool
	nonlocals map[string]bool

	// order of first local binding, for deterministic init emission
	localOrder []string
}

func newScope(parent *Scope, funcName string) *Scope {
	return &Scope{
		Parent:    parent,
		FuncName:  funcName,
		locals:    make(map[string]bool),
		free:      make(map[string]bool),
		globals:   make(map[string]bool),
		nonlocals: make(map[string]bool),
	}
}

func (s *Scope) addFree(name string) { s.free[name] = true }

func (s *Scope) addLocal(name string) {
	delete(s.free, name)
	if !s.locals[name] {
		s.locals[name] = true
		s.localOrder = append(s.localOrder, name)
	}
}

func (s *Scope) addNonlocal(name string) {
	s.deleteLocal(name)
	delete(s.free, name)
	s.nonlocals[name] = true
}

func (s *Scope) addGlobal(name string) {
	s.deleteLocal(name)
	delete(s.free, name)
	s.globals[name] = true
}

func (s *Scope) deleteLocal(name string) {
	if s.locals[name] {
		delete(s.locals, name)
		for i, n := range s.localOrder {
			if n == name {
				s.localOrder = append(s.localOrder[:i], s.localOrder[i+1:]...)
				break
			}
		}
	}
}

// IsLocal reports whether name is bound as a local of this scope.
func (s *Scope) IsLocal(name string) bool { return s.locals[name] }

// IsFree reports whether name is read but never bound in this scope.
func (s *Scope) IsFree(name string) bool { return s.free[name] }

// IsGlobal reports whether name is declared global in this scope.
func (s *Scope) IsGlobal(name string) bool { return s.globals[name] }

// IsNonlocal reports whether name is declared nonlocal in this scope.
func (s *Scope) IsNonlocal(name string) bool { return s.nonlocals[name] }

// IsBound reports whether name is bound in this scope or any
// enclosing one.
func (s *Scope) IsBound(name string) bool {
	return s.IsLocal(name) || s.IsGlobal(name) || s.IsNonlocal(name) ||
		(s.Parent != nil && s.Parent.IsBound(name))
}

// ShouldVirtualize reports whether reads and writes of name in this
// scope must go through the overload's init/assign/read operations.
// Locals are always virtualized; nonlocal and free names are
// virtualized iff the scope that binds them is.
func (s *Scope) ShouldVirtualize(name string) bool {
	if s.IsLocal(name) {
		return true
	}
	if s.IsNonlocal(name) || s.IsFree(name) {
		return s.Parent != nil && s.Parent.ShouldVirtualize(name)
	}
	return false
}

// Locals returns the local variable names in order of first binding.
func (s *Scope) Locals() []string {
	return append([]string(nil), s.localOrder...)
}

// A Table maps each function definition in a tree to its Scope.
type Table struct {
	Scopes map[*syntax.FuncDef]*Scope
}

// Scope returns the scope of fn, or nil if fn was not analyzed.
func (t *Table) Scope(fn *syntax.FuncDef) *Scope {
	return t.Scopes[fn]
}

// Func analyzes the scopes of fn and every function nested within it.
func Func(fn *syntax.FuncDef) (*Table, error) {
	r := &resolver{table: &Table{Scopes: make(map[*syntax.FuncDef]*Scope)}}
	if err := r.function(fn); err != nil {
		return nil, err
	}
	return r.table, nil
}

type resolver struct {
	table *Table
	scope *Scope // current scope; nil at top level
}

func (r *resolver) function(fn *syntax.FuncDef) error {
	if r.scope != nil {
		r.scope.addLocal(fn.Name)
	}

	scope := newScope(r.scope, fn.Name)
	r.table.Scopes[fn] = scope
	r.scope = scope

	for _, param := range fn.Params {
		scope.addLocal(param.Name)
	}

	err := r.stmts(fn.Body)
	r.scope = scope.Parent
	return err
}

func (r *resolver) stmts(stmts []syntax.Stmt) error {
	for _, stmt := range stmts {
		if err := r.stmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) stmt(stmt syntax.Stmt) error {
	switch stmt := stmt.(type) {
	case *syntax.ClassDef:
		return &UnsupportedScopeError{Name: stmt.Name}

	case *syntax.FuncDef:
		return r.function(stmt)

	case *syntax.GlobalStmt:
		for _, name := range stmt.Names {
			if r.scope.IsNonlocal(name) {
				return &AmbiguousBindingError{Name: name, Func: r.scope.FuncName}
			}
			r.scope.addGlobal(name)
		}

	case *syntax.NonlocalStmt:
		for _, name := range stmt.Names {
			if r.scope.IsGlobal(name) {
				return &AmbiguousBindingError{Name: name, Func: r.scope.FuncName}
			}
			r.scope.addNonlocal(name)
		}

	case *syntax.AssignStmt:
		if err := r.expr(stmt.RHS); err != nil {
			return err
		}
		for _, name := range targetNames(stmt.LHS) {
			r.bind(name)
		}

	case *syntax.ExprStmt:
		return r.expr(stmt.X)

	case *syntax.IfStmt:
		if err := r.expr(stmt.Cond); err != nil {
			return err
		}
		if err := r.stmts(stmt.Body); err != nil {
			return err
		}
		return r.stmts(stmt.Orelse)

	case *syntax.WhileStmt:
		if err := r.expr(stmt.Cond); err != nil {
			return err
		}
		if err := r.stmts(stmt.Body); err != nil {
			return err
		}
		return r.stmts(stmt.Orelse)

	case *syntax.ForStmt:
		for _, name := range targetNames(stmt.Target) {
			r.bind(name)
		}
		if err := r.expr(stmt.Iter); err != nil {
			return err
		}
		if err := r.stmts(stmt.Body); err != nil {
			return err
		}
		return r.stmts(stmt.Orelse)

	case *syntax.ReturnStmt:
		if stmt.Result != nil {
			return r.expr(stmt.Result)
		}

	case *syntax.PassStmt, *syntax.BreakStmt, *syntax.ContinueStmt:
		// no names
	}
	return nil
}

func (r *resolver) expr(e syntax.Expr) error {
	var err error
	syntax.Walk(e, func(n syntax.Node) bool {
		if err != nil {
			return false
		}
		switch n := n.(type) {
		case *syntax.Ident:
			r.use(n.Name)
		case *syntax.DotExpr:
			// the attribute name is not a variable; visit only X
			err = r.expr(n.X)
			return false
		}
		return true
	})
	return err
}

// bind records a write of name in the current scope.
func (r *resolver) bind(name string) {
	if r.scope.IsGlobal(name) || r.scope.IsNonlocal(name) {
		return
	}
	r.scope.addLocal(name)
}

// use records a read of name in the current scope.
func (r *resolver) use(name string) {
	if r.scope.IsGlobal(name) || r.scope.IsNonlocal(name) {
		return
	}
	if !r.scope.IsLocal(name) {
		r.scope.addFree(name)
	}
}

// targetNames returns the identifier names of an assignment or loop
// target: a single name or a tuple/list of names.
func targetNames(target syntax.Expr) []string {
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
	case *syntax.ListExpr:
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
