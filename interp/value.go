// Copyright 2019 Google LLC
// Use of this source code is governed by the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package interp is a small tree-walking evaluator for the syntax
// package's trees. It stands in for the external compile/execute
// collaborator of the pipeline: converted functions are ordinary
// Callable values whose bodies invoke the overload object through its
// attribute surface.
//
// Values are dynamically typed: nil (None), bool, int64, float64,
// string, Tuple, *List, Dict, and Callables. Host objects participate
// through the optional HasAttrs, Indexable, and Callable interfaces.
package interp

import (
	"fmt"
	"reflect"
)

// A Value is any value manipulated by the evaluator.
type Value = interface{}

// A Tuple is an immutable sequence of values.
type Tuple []Value

// A List is a mutable sequence of values.
type List struct {
	Elems []Value
}

// A Dict is a string-keyed mapping. Generated code only ever builds
// dicts with string keys (kwargs), so no general key hashing is
// needed.
type Dict map[string]Value

// A Callable is a value that can be invoked with positional and
// keyword arguments.
type Callable interface {
	Name() string
	Call(args []Value, kwargs map[string]Value) (Value, error)
}

// HasAttrs is implemented by values with named attributes, such as
// the bound overload object.
type HasAttrs interface {
	Attr(name string) (Value, error)
	AttrNames() []string
}

// Indexable is implemented by values that support x[i] with an
// integer index.
type Indexable interface {
	Len() int
	Index(i int) (Value, error)
}

// A Builtin is a function implemented in Go.
type Builtin struct {
	name string
	fn   func(args []Value, kwargs map[string]Value) (Value, error)
}

// NewBuiltin returns a Callable with the given name and implementation.
func NewBuiltin(name string, fn func(args []Value, kwargs map[string]Value) (Value, error)) *Builtin {
	return &Builtin{name: name, fn: fn}
}

func (b *Builtin) Name() string { return b.name }

func (b *Builtin) Call(args []Value, kwargs map[string]Value) (Value, error) {
	return b.fn(args, kwargs)
}

func (b *Builtin) String() string { return fmt.Sprintf("<built-in function %s>", b.name) }

// Call invokes fn with the given arguments, failing if fn is not
// callable. Overload implementations use it to run the closures they
// receive.
func Call(fn Value, args []Value, kwargs map[string]Value) (Value, error) {
	c, ok := fn.(Callable)
	if !ok {
		return nil, fmt.Errorf("interp: %s is not callable", TypeName(fn))
	}
	return c.Call(args, kwargs)
}

// Truth reports the truth value of v, following Python rules: nil,
// false, zero, and empty strings and containers are false.
func Truth(v Value) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case int64:
		return v != 0
	case float64:
		return v != 0
	case string:
		return v != ""
	case Tuple:
		return len(v) > 0
	case *List:
		return len(v.Elems) > 0
	case Dict:
		return len(v) > 0
	}
	return true
}

// Length returns the number of elements of a sequence or mapping.
func Length(v Value) (int, error) {
	switch v := v.(type) {
	case string:
		return len(v), nil
	case Tuple:
		return len(v), nil
	case *List:
		return len(v.Elems), nil
	case Dict:
		return len(v), nil
	}
	if ix, ok := v.(Indexable); ok {
		return ix.Len(), nil
	}
	return 0, fmt.Errorf("interp: %s has no len", TypeName(v))
}

// Index returns v[i]. Negative indices count from the end.
func Index(v Value, i int) (Value, error) {
	if ix, ok := v.(Indexable); ok {
		return ix.Index(i)
	}
	var n int
	switch v.(type) {
	case string, Tuple, *List:
		n, _ = Length(v)
	default:
		return nil, fmt.Errorf("interp: %s is not indexable", TypeName(v))
	}
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return nil, fmt.Errorf("interp: index %d out of range [0:%d]", i, n)
	}
	switch v := v.(type) {
	case string:
		return string(v[i]), nil
	case Tuple:
		return v[i], nil
	case *List:
		return v.Elems[i], nil
	}
	panic("unreachable")
}

// TypeName returns a short description of v's type for error messages.
func TypeName(v Value) string {
	switch v.(type) {
	case nil:
		return "NoneType"
	case bool:
		return "bool"
	case int64:
		return "int"
	case float64:
		return "float"
	case string:
		return "string"
	case Tuple:
		return "tuple"
	case *List:
		return "list"
	case Dict:
		return "dict"
	case Callable:
		return "function"
	}
	return reflect.TypeOf(v).String()
}

// equal implements the == operator.
func equal(x, y Value) bool {
	switch x := x.(type) {
	case int64:
		switch y := y.(type) {
		case int64:
			return x == y
		case float64:
			return float64(x) == y
		}
	case float64:
		switch y := y.(type) {
		case int64:
			return x == float64(y)
		case float64:
			return x == y
		}
	}
	return reflect.DeepEqual(x, y)
}
