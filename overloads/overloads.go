// Copyright 2019 Google LLC
// Use of this source code is governed by the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package overloads defines the capability surface of an overload
// object: the user-supplied value that receives virtualized
// operations.
//
// Each operation is an optional interface; an overload implements the
// subset it cares about, and the transformers only rewrite constructs
// whose capability is present. Module adapts an overload for the
// evaluator: it exposes the capabilities under their generated-code
// attribute names and reports a MissingCapabilityError when generated
// code touches a capability the overload does not provide. The error
// is raised at the point of use, not at conversion time, since which
// capabilities run depends on which branches execute.
package overloads

import (
	"fmt"
	"sort"

	"github.com/google/pyctr/interp"
)

// A Thunk is a synthesized zero-argument closure: the condition, body,
// or else branch of a virtualized control-flow construct. The overload
// may invoke it zero, one, or many times.
type Thunk func() (interp.Value, error)

// Initializer creates the cell for a virtualized variable.
type Initializer interface {
	Init(name string) (interp.Value, error)
}

// Assigner performs a virtualized write.
type Assigner interface {
	Assign(lhs, rhs interp.Value) (interp.Value, error)
}

// Reader performs a virtualized read.
type Reader interface {
	Read(v interp.Value) (interp.Value, error)
}

// IfHandler receives virtualized conditionals. localWrites is the
// statically computed set of names the branches may assign.
type IfHandler interface {
	IfStmt(cond, body, orelse Thunk, localWrites []string) (interp.Value, error)
}

// WhileHandler receives virtualized while loops.
type WhileHandler interface {
	WhileStmt(cond, body, orelse Thunk, localWrites []string) (interp.Value, error)
}

// ForHandler receives virtualized for loops. target is the loop
// variable's cell; the handler is expected to assign into it once per
// iteration it chooses to run. iter was evaluated once in the
// enclosing scope.
type ForHandler interface {
	ForStmt(target, iter interp.Value, body, orelse Thunk, localWrites []string) (interp.Value, error)
}

// Caller receives virtualized function calls.
type Caller interface {
	Call(fn interp.Value, args []interp.Value, kwargs map[string]interp.Value) (interp.Value, error)
}

// AndHandler receives virtualized and-chains. A chain of n operands
// arrives as a single slice of n values; depending on pipeline
// configuration, operands after the first may be deferred closures.
type AndHandler interface {
	And(operands []interp.Value) (interp.Value, error)
}

// OrHandler receives virtualized or-chains.
type OrHandler interface {
	Or(operands []interp.Value) (interp.Value, error)
}

// NotHandler receives virtualized not expressions.
type NotHandler interface {
	Not(x interp.Value) (interp.Value, error)
}

// capabilityNames maps generated-code attribute names to presence
// checks.
var capabilityChecks = map[string]func(impl interface{}) bool{
	"init":       func(impl interface{}) bool { _, ok := impl.(Initializer); return ok },
	"assign":     func(impl interface{}) bool { _, ok := impl.(Assigner); return ok },
	"read":       func(impl interface{}) bool { _, ok := impl.(Reader); return ok },
	"if_stmt":    func(impl interface{}) bool { _, ok := impl.(IfHandler); return ok },
	"while_stmt": func(impl interface{}) bool { _, ok := impl.(WhileHandler); return ok },
	"for_stmt":   func(impl interface{}) bool { _, ok := impl.(ForHandler); return ok },
	"call":       func(impl interface{}) bool { _, ok := impl.(Caller); return ok },
	"and_":       func(impl interface{}) bool { _, ok := impl.(AndHandler); return ok },
	"or_":        func(impl interface{}) bool { _, ok := impl.(OrHandler); return ok },
	"not_":       func(impl interface{}) bool { _, ok := impl.(NotHandler); return ok },
}

// Capabilities reports which capabilities impl provides, keyed by
// generated-code attribute name.
func Capabilities(impl interface{}) map[string]bool {
	caps := make(map[string]bool, len(capabilityChecks))
	for name, check := range capabilityChecks {
		caps[name] = check(impl)
	}
	return caps
}

// A MissingCapabilityError reports generated code invoking a
// capability the supplied overload does not implement.
type MissingCapabilityError struct {
	Capability string
}

func (e *MissingCapabilityError) Error() string {
	return fmt.Sprintf("overloads: overload object does not implement capability %q", e.Capability)
}

// A Module binds an overload implementation into the evaluator's
// attribute surface.
type Module struct {
	impl interface{}
}

// NewModule wraps impl for use as the overload binding of a converted
// function.
func NewModule(impl interface{}) *Module {
	return &Module{impl: impl}
}

// Impl returns the wrapped overload implementation.
func (m *Module) Impl() interface{} { return m.impl }

func (m *Module) String() string { return "<overload module>" }

// AttrNames returns the capabilities the overload provides, sorted.
func (m *Module) AttrNames() []string {
	var names []string
	for name, check := range capabilityChecks {
		if check(m.impl) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Attr returns the named capability as a callable, or a
// MissingCapabilityError if the overload does not provide it.
func (m *Module) Attr(name string) (interp.Value, error) {
	check, known := capabilityChecks[name]
	if !known || !check(m.impl) {
		return nil, &MissingCapabilityError{Capability: name}
	}

	fn := func(args []interp.Value, kwargs map[string]interp.Value) (interp.Value, error) {
		return m.invoke(name, args)
	}
	return interp.NewBuiltin(name, fn), nil
}

func (m *Module) invoke(name string, args []interp.Value) (interp.Value, error) {
	switch name {
	case "init":
		s, err := stringArg(name, args, 0)
		if err != nil {
			return nil, err
		}
		return m.impl.(Initializer).Init(s)

	case "assign":
		if err := arity(name, args, 2); err != nil {
			return nil, err
		}
		return m.impl.(Assigner).Assign(args[0], args[1])

	case "read":
		if err := arity(name, args, 1); err != nil {
			return nil, err
		}
		return m.impl.(Reader).Read(args[0])

	case "if_stmt", "while_stmt":
		if err := arity(name, args, 4); err != nil {
			return nil, err
		}
		cond, body, orelse := thunk(args[0]), thunk(args[1]), thunk(args[2])
		writes, err := stringTupleArg(name, args, 3)
		if err != nil {
			return nil, err
		}
		if name == "if_stmt" {
			return m.impl.(IfHandler).IfStmt(cond, body, orelse, writes)
		}
		return m.impl.(WhileHandler).WhileStmt(cond, body, orelse, writes)

	case "for_stmt":
		if err := arity(name, args, 5); err != nil {
			return nil, err
		}
		body, orelse := thunk(args[2]), thunk(args[3])
		writes, err := stringTupleArg(name, args, 4)
		if err != nil {
			return nil, err
		}
		return m.impl.(ForHandler).ForStmt(args[0], args[1], body, orelse, writes)

	case "call":
		if err := arity(name, args, 3); err != nil {
			return nil, err
		}
		positional, ok := args[1].(interp.Tuple)
		if !ok {
			return nil, fmt.Errorf("overloads: call: args must be a tuple, got %s", interp.TypeName(args[1]))
		}
		keywords, ok := args[2].(interp.Dict)
		if !ok {
			return nil, fmt.Errorf("overloads: call: kwargs must be a dict, got %s", interp.TypeName(args[2]))
		}
		return m.impl.(Caller).Call(args[0], positional, keywords)

	case "and_":
		return m.impl.(AndHandler).And(args)

	case "or_":
		return m.impl.(OrHandler).Or(args)

	case "not_":
		if err := arity(name, args, 1); err != nil {
			return nil, err
		}
		return m.impl.(NotHandler).Not(args[0])
	}
	return nil, &MissingCapabilityError{Capability: name}
}

// thunk adapts a generated closure value into a Thunk.
func thunk(v interp.Value) Thunk {
	return func() (interp.Value, error) {
		return interp.Call(v, nil, nil)
	}
}

func arity(name string, args []interp.Value, want int) error {
	if len(args) != want {
		return fmt.Errorf("overloads: %s: got %d arguments, want %d", name, len(args), want)
	}
	return nil
}

func stringArg(name string, args []interp.Value, i int) (string, error) {
	if len(args) <= i {
		return "", fmt.Errorf("overloads: %s: missing argument %d", name, i)
	}
	s, ok := args[i].(string)
	if !ok {
		return "", fmt.Errorf("overloads: %s: argument %d must be a string, got %s", name, i, interp.TypeName(args[i]))
	}
	return s, nil
}

func stringTupleArg(name string, args []interp.Value, i int) ([]string, error) {
	tup, ok := args[i].(interp.Tuple)
	if !ok {
		return nil, fmt.Errorf("overloads: %s: argument %d must be a tuple, got %s", name, i, interp.TypeName(args[i]))
	}
	out := make([]string, len(tup))
	for j, v := range tup {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("overloads: %s: local_writes entries must be strings, got %s", name, interp.TypeName(v))
		}
		out[j] = s
	}
	return out, nil
}
