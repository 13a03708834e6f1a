// Copyright 2019 Google LLC
// Use of this source code is governed by the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pydefaults implements an overload whose capabilities mirror
// native semantics: converting a function against it must not change
// the function's behavior. It doubles as the reference for what each
// capability is expected to do.
package pydefaults

import (
	"fmt"

	"github.com/google/pyctr/interp"
	"github.com/google/pyctr/overloads"
)

// Undefined marks a cell that has been initialized but never
// assigned. Reading it reproduces the unbound-local condition of the
// source language.
type Undefined struct {
	Name string
}

func (u Undefined) String() string { return fmt.Sprintf("pyctr.Undefined(%s)", u.Name) }

// IsUndefined reports whether a value is the post-init, pre-assign
// sentinel.
func IsUndefined(v interp.Value) bool {
	_, ok := v.(Undefined)
	return ok
}

// An UnboundLocalError reports a read of a variable before its first
// assignment.
type UnboundLocalError struct {
	Name string
}

func (e *UnboundLocalError) Error() string {
	return fmt.Sprintf("local variable %q referenced before assignment", e.Name)
}

// A Variable is the cell backing one virtualized variable. Closures
// capture the cell, not the value, so assignments made inside a
// branch or loop body are visible to the enclosing scope.
type Variable struct {
	Name string
	Val  interp.Value
}

func (v *Variable) String() string {
	return fmt.Sprintf("pyctr.Variable(name=%s, val=%v)", v.Name, v.Val)
}

// Len implements interp.Indexable by delegating to the held value.
func (v *Variable) Len() int {
	n, err := interp.Length(v.Val)
	if err != nil {
		return 0
	}
	return n
}

// Index implements interp.Indexable by delegating to the held value.
func (v *Variable) Index(i int) (interp.Value, error) {
	return interp.Index(v.Val, i)
}

// Overload provides every capability with native semantics.
type Overload struct{}

// New returns the default overload.
func New() *Overload { return &Overload{} }

// Init creates the cell for a variable, initially undefined.
func (*Overload) Init(name string) (interp.Value, error) {
	return &Variable{Name: name, Val: Undefined{Name: name}}, nil
}

// Assign stores rhs into the cell lhs.
func (*Overload) Assign(lhs, rhs interp.Value) (interp.Value, error) {
	cell, ok := lhs.(*Variable)
	if !ok {
		return nil, fmt.Errorf("pydefaults: assign target is %s, not a variable cell", interp.TypeName(lhs))
	}
	cell.Val = rhs
	return cell, nil
}

// Read returns the value held by the cell v. Loop targets may hold a
// nested cell (they are re-initialized when for loops are
// virtualized); Read unwraps until it reaches a plain value.
func (o *Overload) Read(v interp.Value) (interp.Value, error) {
	cell, ok := v.(*Variable)
	if !ok {
		return nil, fmt.Errorf("pydefaults: read of %s, not a variable cell", interp.TypeName(v))
	}
	switch val := cell.Val.(type) {
	case Undefined:
		return nil, &UnboundLocalError{Name: val.Name}
	case *Variable:
		return o.Read(val)
	default:
		return val, nil
	}
}

// IfStmt runs body or orelse according to cond and returns the chosen
// branch's result, so conditionals virtualized in expression position
// keep their value.
func (*Overload) IfStmt(cond, body, orelse overloads.Thunk, _ []string) (interp.Value, error) {
	c, err := cond()
	if err != nil {
		return nil, err
	}
	if interp.Truth(c) {
		return body()
	}
	return orelse()
}

// WhileStmt runs body while cond holds, then orelse.
func (*Overload) WhileStmt(cond, body, orelse overloads.Thunk, _ []string) (interp.Value, error) {
	for {
		c, err := cond()
		if err != nil {
			return nil, err
		}
		if !interp.Truth(c) {
			break
		}
		if _, err := body(); err != nil {
			return nil, err
		}
	}
	return orelse()
}

// ForStmt assigns each element of iter into the target cell and runs
// body, then orelse. A tuple target receives per-element cells.
func (o *Overload) ForStmt(target, iter interp.Value, body, orelse overloads.Thunk, _ []string) (interp.Value, error) {
	n, err := interp.Length(iter)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		elem, err := interp.Index(iter, i)
		if err != nil {
			return nil, err
		}
		if err := o.bindTarget(target, elem); err != nil {
			return nil, err
		}
		if _, err := body(); err != nil {
			return nil, err
		}
	}
	return orelse()
}

func (o *Overload) bindTarget(target, elem interp.Value) error {
	switch target := target.(type) {
	case *Variable:
		target.Val = elem
		return nil
	case interp.Tuple:
		for i, cell := range target {
			part, err := interp.Index(elem, i)
			if err != nil {
				return err
			}
			if err := o.bindTarget(cell, part); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("pydefaults: for target is %s, not a variable cell", interp.TypeName(target))
}

// Call invokes fn directly.
func (*Overload) Call(fn interp.Value, args []interp.Value, kwargs map[string]interp.Value) (interp.Value, error) {
	return interp.Call(fn, args, kwargs)
}

// And evaluates operands left to right, short-circuiting on the first
// falsy one. Deferred operands (closures) are forced as reached.
func (*Overload) And(operands []interp.Value) (interp.Value, error) {
	for _, op := range operands {
		v, err := force(op)
		if err != nil {
			return nil, err
		}
		if !interp.Truth(v) {
			return false, nil
		}
	}
	return true, nil
}

// Or evaluates operands left to right, short-circuiting on the first
// truthy one.
func (*Overload) Or(operands []interp.Value) (interp.Value, error) {
	for _, op := range operands {
		v, err := force(op)
		if err != nil {
			return nil, err
		}
		if interp.Truth(v) {
			return true, nil
		}
	}
	return false, nil
}

// Not negates the truth value of x.
func (*Overload) Not(x interp.Value) (interp.Value, error) {
	return !interp.Truth(x), nil
}

// force evaluates a deferred operand; plain values pass through.
func force(v interp.Value) (interp.Value, error) {
	if c, ok := v.(interp.Callable); ok {
		return c.Call(nil, nil)
	}
	return v, nil
}
