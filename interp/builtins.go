// Copyright 2019 Google LLC
// Use of this source code is governed by the Apache License, Version 2.0
// that can be found in the LICENSE file.

package interp

import "fmt"

// Universe returns a fresh copy of the predeclared builtin
// environment. Callers may add or replace entries before passing it
// to NewFunction.
func Universe() map[string]Value {
	return map[string]Value{
		"None":  nil,
		"True":  true,
		"False": false,
		"abs":   NewBuiltin("abs", builtinAbs),
		"len":   NewBuiltin("len", builtinLen),
		"max":   NewBuiltin("max", builtinMax),
		"min":   NewBuiltin("min", builtinMin),
		"range": NewBuiltin("range", builtinRange),
		"tuple": NewBuiltin("tuple", builtinTuple),
	}
}

func builtinLen(args []Value, kwargs map[string]Value) (Value, error) {
	if len(args) != 1 || len(kwargs) > 0 {
		return nil, fmt.Errorf("len: got %d arguments, want 1", len(args))
	}
	n, err := Length(args[0])
	if err != nil {
		return nil, err
	}
	return int64(n), nil
}

func builtinAbs(args []Value, kwargs map[string]Value) (Value, error) {
	if len(args) != 1 || len(kwargs) > 0 {
		return nil, fmt.Errorf("abs: got %d arguments, want 1", len(args))
	}
	switch x := args[0].(type) {
	case int64:
		if x < 0 {
			return -x, nil
		}
		return x, nil
	case float64:
		if x < 0 {
			return -x, nil
		}
		return x, nil
	}
	return nil, fmt.Errorf("abs: unsupported type %s", TypeName(args[0]))
}

func builtinRange(args []Value, kwargs map[string]Value) (Value, error) {
	if len(kwargs) > 0 {
		return nil, fmt.Errorf("range: unexpected keyword arguments")
	}
	var start, stop, step int64 = 0, 0, 1
	switch len(args) {
	case 1:
		stop, _ = args[0].(int64)
	case 2:
		start, _ = args[0].(int64)
		stop, _ = args[1].(int64)
	case 3:
		start, _ = args[0].(int64)
		stop, _ = args[1].(int64)
		step, _ = args[2].(int64)
		if step == 0 {
			return nil, fmt.Errorf("range: step cannot be zero")
		}
	default:
		return nil, fmt.Errorf("range: got %d arguments, want 1 to 3", len(args))
	}
	var out Tuple
	if step > 0 {
		for i := start; i < stop; i += step {
			out = append(out, i)
		}
	} else {
		for i := start; i > stop; i += step {
			out = append(out, i)
		}
	}
	return out, nil
}

func builtinTuple(args []Value, kwargs map[string]Value) (Value, error) {
	if len(args) > 1 || len(kwargs) > 0 {
		return nil, fmt.Errorf("tuple: got %d arguments, want at most 1", len(args))
	}
	if len(args) == 0 {
		return Tuple(nil), nil
	}
	elems, err := elements(args[0])
	if err != nil {
		return nil, err
	}
	return Tuple(append([]Value(nil), elems...)), nil
}

func builtinMax(args []Value, kwargs map[string]Value) (Value, error) {
	return extremum("max", args, kwargs, func(a, b float64) bool { return a > b })
}

func builtinMin(args []Value, kwargs map[string]Value) (Value, error) {
	return extremum("min", args, kwargs, func(a, b float64) bool { return a < b })
}

func extremum(name string, args []Value, kwargs map[string]Value, better func(a, b float64) bool) (Value, error) {
	if len(kwargs) > 0 {
		return nil, fmt.Errorf("%s: unexpected keyword arguments", name)
	}
	values := args
	if len(args) == 1 {
		elems, err := elements(args[0])
		if err != nil {
			return nil, err
		}
		values = elems
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%s: empty sequence", name)
	}
	best := values[0]
	bestF, ok := toFloat(best)
	if !ok {
		return nil, fmt.Errorf("%s: unsupported type %s", name, TypeName(best))
	}
	for _, v := range values[1:] {
		f, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("%s: unsupported type %s", name, TypeName(v))
		}
		if better(f, bestF) {
			best, bestF = v, f
		}
	}
	return best, nil
}
