// Copyright 2019 Google LLC
// Use of this source code is governed by the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pyctr converts functions so that their conditionals, loops,
// calls, logical operators, and variable accesses become explicit
// calls on a user-supplied overload object, letting a framework
// reinterpret ordinary syntax with domain-specific semantics while
// end users write plain code.
//
// Convert applies a requested subset of the transformer passes to a
// function's syntax tree; ConvertFunc additionally binds the result
// and an overload object into a directly invokable value.
package pyctr

import (
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/google/pyctr/interp"
	"github.com/google/pyctr/overloads"
	"github.com/google/pyctr/syntax"
	"github.com/google/pyctr/transform"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("pyctr.convert")

// A Transformer names one rewriting pass.
type Transformer string

const (
	Variables   Transformer = "variables"
	ControlFlow Transformer = "control_flow"
	Functions   Transformer = "functions"
	LogicalOps  Transformer = "logical_ops"
)

// An OrderingError reports an invalid transformer combination:
// control_flow requires variables, scheduled before it. The check
// runs before any rewriting; a wrong order would silently miscompute
// local_writes and break the closure-capture contract.
type OrderingError struct {
	Requested []Transformer
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf("pyctr: %q requires %q to run before it (requested %v)",
		ControlFlow, Variables, e.Requested)
}

// A Result is the outcome of a conversion.
type Result struct {
	// Func is the rewritten function definition.
	Func *syntax.FuncDef

	// OverloadName is the binding name under which the rewritten tree
	// expects the overload object.
	OverloadName string
}

// Convert applies the given transformers, in order, to fn and returns
// the rewritten tree. overload is consulted only for its capability
// set: passes leave constructs alone when the receiving capability is
// absent. A nil overload assumes every capability. The input tree is
// not modified.
//
// Conversion is deterministic: the same tree, capability set, and
// transformer sequence produce a structurally identical result.
func Convert(fn *syntax.FuncDef, overload interface{}, transformers []Transformer, cfg *Config) (*Result, error) {
	if err := validateOrder(transformers); err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	ctx := transform.NewContext(fn)
	ctx.DeferLogicalOperands = cfg.DeferLogicalOperands
	ctx.Whitelist = make(map[string]bool, len(cfg.Whitelist))
	for _, name := range cfg.Whitelist {
		ctx.Whitelist[name] = true
	}
	if overload != nil {
		ctx.Caps = overloads.Capabilities(overload)
	}

	out := fn
	var err error
	for _, t := range transformers {
		log.Debugf("applying %s to %q", t, fn.Name)
		switch t {
		case Variables:
			out, err = transform.Variables(out, ctx)
		case ControlFlow:
			out, err = transform.ControlFlow(out, ctx)
		case Functions:
			out, err = transform.Functions(out, ctx)
		case LogicalOps:
			out, err = transform.LogicalOps(out, ctx)
		default:
			err = fmt.Errorf("pyctr: unknown transformer %q", t)
		}
		if err != nil {
			return nil, err
		}
	}
	return &Result{Func: out, OverloadName: ctx.OverloadName}, nil
}

// ConvertFunc converts fn and binds the result together with overload
// and the builtin universe into a callable value.
func ConvertFunc(fn *syntax.FuncDef, overload interface{}, transformers []Transformer, cfg *Config) (interp.Callable, error) {
	result, err := Convert(fn, overload, transformers, cfg)
	if err != nil {
		return nil, err
	}
	globals := interp.Universe()
	globals[result.OverloadName] = overloads.NewModule(overload)
	return interp.NewFunction(result.Func, globals), nil
}

func validateOrder(transformers []Transformer) error {
	controlFlowAt, variablesAt := -1, -1
	for i, t := range transformers {
		switch t {
		case ControlFlow:
			if controlFlowAt < 0 {
				controlFlowAt = i
			}
		case Variables:
			if variablesAt < 0 {
				variablesAt = i
			}
		}
	}
	if controlFlowAt >= 0 && (variablesAt < 0 || variablesAt > controlFlowAt) {
		return &OrderingError{Requested: transformers}
	}
	return nil
}
