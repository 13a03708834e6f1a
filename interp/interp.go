// Copyright 2019 Google LLC
// Use of this source code is governed by the Apache License, Version 2.0
// that can be found in the LICENSE file.

package interp

import (
	"fmt"

	"github.com/google/pyctr/syntax"
)

// An env is one lexical frame. Name resolution walks the parent
// chain; global and nonlocal declarations redirect writes.
type env struct {
	vars     map[string]Value
	parent   *env // nil for the module frame
	module   *env
	globals  map[string]bool // names declared global in this frame
	nonlocal map[string]bool // names declared nonlocal in this frame
}

func newEnv(parent *env) *env {
	e := &env{vars: make(map[string]Value), parent: parent}
	if parent != nil {
		e.module = parent.module
	} else {
		e.module = e
	}
	return e
}

func (e *env) lookup(name string) (Value, bool) {
	for f := e; f != nil; f = f.parent {
		if v, ok := f.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (e *env) set(name string, v Value) error {
	switch {
	case e.globals[name]:
		e.module.vars[name] = v
	case e.nonlocal[name]:
		for f := e.parent; f != nil && f != e.module; f = f.parent {
			if _, ok := f.vars[name]; ok {
				f.vars[name] = v
				return nil
			}
		}
		return fmt.Errorf("interp: no binding for nonlocal %q", name)
	default:
		e.vars[name] = v
	}
	return nil
}

// A Function is a user-defined function or lambda closed over its
// defining environment.
type Function struct {
	name   string
	params []string
	body   []syntax.Stmt // nil for lambdas
	expr   syntax.Expr   // lambda body, nil for defs
	env    *env
}

// NewFunction evaluates def into a callable closed over a fresh
// module frame holding globals. The globals map typically contains
// the builtin universe plus the bound overload object.
func NewFunction(def *syntax.FuncDef, globals map[string]Value) *Function {
	module := newEnv(nil)
	for name, v := range globals {
		module.vars[name] = v
	}
	return &Function{
		name:   def.Name,
		params: paramNames(def.Params),
		body:   def.Body,
		env:    module,
	}
}

func paramNames(params []*syntax.Ident) []string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return names
}

func (fn *Function) Name() string { return fn.name }

func (fn *Function) String() string { return fmt.Sprintf("<function %s>", fn.name) }

func (fn *Function) Call(args []Value, kwargs map[string]Value) (Value, error) {
	frame := newEnv(fn.env)
	if len(args) > len(fn.params) {
		return nil, fmt.Errorf("interp: %s takes %d arguments (%d given)", fn.name, len(fn.params), len(args))
	}
	for i, arg := range args {
		frame.vars[fn.params[i]] = arg
	}
	for name, v := range kwargs {
		found := false
		for _, p := range fn.params {
			if p == name {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("interp: %s got unexpected keyword argument %q", fn.name, name)
		}
		if _, dup := frame.vars[name]; dup {
			return nil, fmt.Errorf("interp: %s got multiple values for argument %q", fn.name, name)
		}
		frame.vars[name] = v
	}
	for _, p := range fn.params {
		if _, ok := frame.vars[p]; !ok {
			return nil, fmt.Errorf("interp: %s missing argument %q", fn.name, p)
		}
	}

	if fn.expr != nil {
		return eval(fn.expr, frame)
	}
	ctl, result, err := execStmts(fn.body, frame)
	if err != nil {
		return nil, err
	}
	if ctl == ctlReturn {
		return result, nil
	}
	return nil, nil
}

// control codes returned by statement execution.
type control int

const (
	ctlNone control = iota
	ctlReturn
	ctlBreak
	ctlContinue
)

func execStmts(stmts []syntax.Stmt, e *env) (control, Value, error) {
	for _, stmt := range stmts {
		ctl, v, err := execStmt(stmt, e)
		if err != nil {
			return ctlNone, nil, err
		}
		if ctl != ctlNone {
			return ctl, v, nil
		}
	}
	return ctlNone, nil, nil
}

func execStmt(stmt syntax.Stmt, e *env) (control, Value, error) {
	switch stmt := stmt.(type) {
	case *syntax.AssignStmt:
		v, err := eval(stmt.RHS, e)
		if err != nil {
			return ctlNone, nil, err
		}
		return ctlNone, nil, assignTo(stmt.LHS, v, e)

	case *syntax.ExprStmt:
		_, err := eval(stmt.X, e)
		return ctlNone, nil, err

	case *syntax.IfStmt:
		cond, err := eval(stmt.Cond, e)
		if err != nil {
			return ctlNone, nil, err
		}
		if Truth(cond) {
			return execStmts(stmt.Body, e)
		}
		return execStmts(stmt.Orelse, e)

	case *syntax.WhileStmt:
		for {
			cond, err := eval(stmt.Cond, e)
			if err != nil {
				return ctlNone, nil, err
			}
			if !Truth(cond) {
				break
			}
			ctl, v, err := execStmts(stmt.Body, e)
			if err != nil {
				return ctlNone, nil, err
			}
			if ctl == ctlBreak {
				return ctlNone, nil, nil
			}
			if ctl == ctlReturn {
				return ctl, v, nil
			}
		}
		return execStmts(stmt.Orelse, e)

	case *syntax.ForStmt:
		iter, err := eval(stmt.Iter, e)
		if err != nil {
			return ctlNone, nil, err
		}
		elems, err := elements(iter)
		if err != nil {
			return ctlNone, nil, err
		}
		for _, elem := range elems {
			if err := assignTo(stmt.Target, elem, e); err != nil {
				return ctlNone, nil, err
			}
			ctl, v, err := execStmts(stmt.Body, e)
			if err != nil {
				return ctlNone, nil, err
			}
			if ctl == ctlBreak {
				return ctlNone, nil, nil
			}
			if ctl == ctlReturn {
				return ctl, v, nil
			}
		}
		return execStmts(stmt.Orelse, e)

	case *syntax.ReturnStmt:
		if stmt.Result == nil {
			return ctlReturn, nil, nil
		}
		v, err := eval(stmt.Result, e)
		if err != nil {
			return ctlNone, nil, err
		}
		return ctlReturn, v, nil

	case *syntax.FuncDef:
		fn := &Function{
			name:   stmt.Name,
			params: paramNames(stmt.Params),
			body:   stmt.Body,
			env:    e,
		}
		e.vars[stmt.Name] = fn
		return ctlNone, nil, nil

	case *syntax.GlobalStmt:
		if e.globals == nil {
			e.globals = make(map[string]bool)
		}
		for _, name := range stmt.Names {
			e.globals[name] = true
		}
		return ctlNone, nil, nil

	case *syntax.NonlocalStmt:
		if e.nonlocal == nil {
			e.nonlocal = make(map[string]bool)
		}
		for _, name := range stmt.Names {
			e.nonlocal[name] = true
		}
		return ctlNone, nil, nil

	case *syntax.PassStmt:
		return ctlNone, nil, nil

	case *syntax.BreakStmt:
		return ctlBreak, nil, nil

	case *syntax.ContinueStmt:
		return ctlContinue, nil, nil

	case *syntax.ClassDef:
		return ctlNone, nil, fmt.Errorf("interp: class definitions are not supported")

	default:
		return ctlNone, nil, fmt.Errorf("interp: unknown statement %T", stmt)
	}
}

func assignTo(target syntax.Expr, v Value, e *env) error {
	switch target := target.(type) {
	case *syntax.Ident:
		return e.set(target.Name, v)
	case *syntax.TupleExpr:
		n, err := Length(v)
		if err != nil {
			return err
		}
		if n != len(target.List) {
			return fmt.Errorf("interp: cannot unpack %d values into %d targets", n, len(target.List))
		}
		for i, elt := range target.List {
			elem, err := Index(v, i)
			if err != nil {
				return err
			}
			if err := assignTo(elt, elem, e); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("interp: cannot assign to %T", target)
}

// elements materializes an iterable for a native for loop.
func elements(v Value) ([]Value, error) {
	switch v := v.(type) {
	case Tuple:
		return v, nil
	case *List:
		return v.Elems, nil
	case string:
		out := make([]Value, len(v))
		for i := range v {
			out[i] = string(v[i])
		}
		return out, nil
	}
	if ix, ok := v.(Indexable); ok {
		out := make([]Value, ix.Len())
		for i := range out {
			elem, err := ix.Index(i)
			if err != nil {
				return nil, err
			}
			out[i] = elem
		}
		return out, nil
	}
	return nil, fmt.Errorf("interp: %s is not iterable", TypeName(v))
}

func eval(e syntax.Expr, env *env) (Value, error) {
	switch e := e.(type) {
	case *syntax.Ident:
		if v, ok := env.lookup(e.Name); ok {
			return v, nil
		}
		return nil, fmt.Errorf("interp: name %q is not defined", e.Name)

	case *syntax.Literal:
		return e.Value, nil

	case *syntax.CallExpr:
		fn, err := eval(e.Fn, env)
		if err != nil {
			return nil, err
		}
		args := make([]Value, len(e.Args))
		for i, arg := range e.Args {
			if args[i], err = eval(arg, env); err != nil {
				return nil, err
			}
		}
		var kwargs map[string]Value
		if len(e.Keywords) > 0 {
			kwargs = make(map[string]Value, len(e.Keywords))
			for _, kw := range e.Keywords {
				v, err := eval(kw.Value, env)
				if err != nil {
					return nil, err
				}
				kwargs[kw.Name] = v
			}
		}
		return Call(fn, args, kwargs)

	case *syntax.DotExpr:
		x, err := eval(e.X, env)
		if err != nil {
			return nil, err
		}
		if attrs, ok := x.(HasAttrs); ok {
			return attrs.Attr(e.Name)
		}
		return nil, fmt.Errorf("interp: %s has no attribute %q", TypeName(x), e.Name)

	case *syntax.IndexExpr:
		x, err := eval(e.X, env)
		if err != nil {
			return nil, err
		}
		index, err := eval(e.Index, env)
		if err != nil {
			return nil, err
		}
		if d, ok := x.(Dict); ok {
			key, ok := index.(string)
			if !ok {
				return nil, fmt.Errorf("interp: dict index must be a string, got %s", TypeName(index))
			}
			v, ok := d[key]
			if !ok {
				return nil, fmt.Errorf("interp: key %q not found", key)
			}
			return v, nil
		}
		i, ok := index.(int64)
		if !ok {
			return nil, fmt.Errorf("interp: index must be an int, got %s", TypeName(index))
		}
		return Index(x, int(i))

	case *syntax.LambdaExpr:
		return &Function{name: "lambda", expr: e.Body, env: env}, nil

	case *syntax.TupleExpr:
		elems, err := evalExprs(e.List, env)
		return Tuple(elems), err

	case *syntax.ListExpr:
		elems, err := evalExprs(e.List, env)
		return &List{Elems: elems}, err

	case *syntax.DictExpr:
		d := make(Dict, len(e.List))
		for _, entry := range e.List {
			key, err := eval(entry.Key, env)
			if err != nil {
				return nil, err
			}
			s, ok := key.(string)
			if !ok {
				return nil, fmt.Errorf("interp: dict key must be a string, got %s", TypeName(key))
			}
			if d[s], err = eval(entry.Value, env); err != nil {
				return nil, err
			}
		}
		return d, nil

	case *syntax.CondExpr:
		cond, err := eval(e.Cond, env)
		if err != nil {
			return nil, err
		}
		if Truth(cond) {
			return eval(e.True, env)
		}
		return eval(e.False, env)

	case *syntax.BoolOpExpr:
		var v Value
		var err error
		for i, operand := range e.Values {
			v, err = eval(operand, env)
			if err != nil {
				return nil, err
			}
			last := i == len(e.Values)-1
			if !last && e.Op == syntax.And && !Truth(v) {
				return v, nil
			}
			if !last && e.Op == syntax.Or && Truth(v) {
				return v, nil
			}
		}
		return v, nil

	case *syntax.UnaryExpr:
		x, err := eval(e.X, env)
		if err != nil {
			return nil, err
		}
		return evalUnary(e.Op, x)

	case *syntax.BinaryExpr:
		x, err := eval(e.X, env)
		if err != nil {
			return nil, err
		}
		y, err := eval(e.Y, env)
		if err != nil {
			return nil, err
		}
		return evalBinary(e.Op, x, y)

	default:
		return nil, fmt.Errorf("interp: unknown expression %T", e)
	}
}

func evalExprs(list []syntax.Expr, env *env) ([]Value, error) {
	out := make([]Value, len(list))
	for i, e := range list {
		v, err := eval(e, env)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func evalUnary(op syntax.Op, x Value) (Value, error) {
	switch op {
	case syntax.OpNot:
		return !Truth(x), nil
	case syntax.OpNeg:
		switch x := x.(type) {
		case int64:
			return -x, nil
		case float64:
			return -x, nil
		}
	case syntax.OpPos:
		switch x.(type) {
		case int64, float64:
			return x, nil
		}
	}
	return nil, fmt.Errorf("interp: unsupported operand for unary %s: %s", op, TypeName(x))
}

func evalBinary(op syntax.Op, x, y Value) (Value, error) {
	switch op {
	case syntax.OpEq:
		return equal(x, y), nil
	case syntax.OpNE:
		return !equal(x, y), nil
	}

	if xs, ok := x.(string); ok {
		if ys, ok := y.(string); ok {
			switch op {
			case syntax.OpAdd:
				return xs + ys, nil
			case syntax.OpLT:
				return xs < ys, nil
			case syntax.OpLE:
				return xs <= ys, nil
			case syntax.OpGT:
				return xs > ys, nil
			case syntax.OpGE:
				return xs >= ys, nil
			}
		}
		return nil, fmt.Errorf("interp: unsupported operands for %s: string and %s", op, TypeName(y))
	}

	xi, xInt := x.(int64)
	yi, yInt := y.(int64)
	if xInt && yInt {
		switch op {
		case syntax.OpAdd:
			return xi + yi, nil
		case syntax.OpSub:
			return xi - yi, nil
		case syntax.OpMul:
			return xi * yi, nil
		case syntax.OpDiv:
			if yi == 0 {
				return nil, fmt.Errorf("interp: division by zero")
			}
			return float64(xi) / float64(yi), nil
		case syntax.OpMod:
			if yi == 0 {
				return nil, fmt.Errorf("interp: division by zero")
			}
			return ((xi % yi) + yi) % yi, nil
		case syntax.OpLT:
			return xi < yi, nil
		case syntax.OpLE:
			return xi <= yi, nil
		case syntax.OpGT:
			return xi > yi, nil
		case syntax.OpGE:
			return xi >= yi, nil
		}
	}

	xf, xok := toFloat(x)
	yf, yok := toFloat(y)
	if xok && yok {
		switch op {
		case syntax.OpAdd:
			return xf + yf, nil
		case syntax.OpSub:
			return xf - yf, nil
		case syntax.OpMul:
			return xf * yf, nil
		case syntax.OpDiv:
			if yf == 0 {
				return nil, fmt.Errorf("interp: division by zero")
			}
			return xf / yf, nil
		case syntax.OpLT:
			return xf < yf, nil
		case syntax.OpLE:
			return xf <= yf, nil
		case syntax.OpGT:
			return xf > yf, nil
		case syntax.OpGE:
			return xf >= yf, nil
		}
	}

	return nil, fmt.Errorf("interp: unsupported operands for %s: %s and %s", op, TypeName(x), TypeName(y))
}

func toFloat(v Value) (float64, bool) {
	switch v := v.(type) {
	case int64:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}
