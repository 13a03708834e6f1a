// Copyright 2019 Google LLC
// Use of this source code is governed by the Apache License, Version 2.0
// that can be found in the LICENSE file.

package overloads_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/google/pyctr/interp"
	"github.com/google/pyctr/overloads"
)

// cellOnly implements just the variable surface.
type cellOnly struct {
	inits   []string
	assigns int
}

func (c *cellOnly) Init(name string) (interp.Value, error) {
	c.inits = append(c.inits, name)
	return &cell{name: name}, nil
}

func (c *cellOnly) Assign(lhs, rhs interp.Value) (interp.Value, error) {
	c.assigns++
	lhs.(*cell).val = rhs
	return lhs, nil
}

func (c *cellOnly) Read(v interp.Value) (interp.Value, error) {
	return v.(*cell).val, nil
}

type cell struct {
	name string
	val  interp.Value
}

func TestCapabilities(t *testing.T) {
	caps := overloads.Capabilities(&cellOnly{})
	want := map[string]bool{
		"init": true, "assign": true, "read": true,
		"if_stmt": false, "while_stmt": false, "for_stmt": false,
		"call": false, "and_": false, "or_": false, "not_": false,
	}
	if !reflect.DeepEqual(caps, want) {
		t.Errorf("Capabilities = %v, want %v", caps, want)
	}
}

func TestModuleAttrNames(t *testing.T) {
	m := overloads.NewModule(&cellOnly{})
	want := []string{"assign", "init", "read"}
	if got := m.AttrNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("AttrNames = %v, want %v", got, want)
	}
}

func TestModuleDispatch(t *testing.T) {
	impl := &cellOnly{}
	m := overloads.NewModule(impl)

	initAttr, err := m.Attr("init")
	if err != nil {
		t.Fatal(err)
	}
	v, err := interp.Call(initAttr, []interp.Value{"x"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(impl.inits, []string{"x"}) {
		t.Errorf("init recorded %v, want [x]", impl.inits)
	}

	assignAttr, err := m.Attr("assign")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := interp.Call(assignAttr, []interp.Value{v, int64(7)}, nil); err != nil {
		t.Fatal(err)
	}

	readAttr, err := m.Attr("read")
	if err != nil {
		t.Fatal(err)
	}
	got, err := interp.Call(readAttr, []interp.Value{v}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != int64(7) {
		t.Errorf("read = %v, want 7", got)
	}
}

func TestMissingCapabilityDeferred(t *testing.T) {
	// The module is constructed without complaint; the error surfaces
	// only when the absent capability is looked up.
	m := overloads.NewModule(&cellOnly{})

	_, err := m.Attr("if_stmt")
	var missing *overloads.MissingCapabilityError
	if !errors.As(err, &missing) {
		t.Fatalf("got %v, want MissingCapabilityError", err)
	}
	if missing.Capability != "if_stmt" {
		t.Errorf("error names %q, want if_stmt", missing.Capability)
	}

	if _, err := m.Attr("no_such_operation"); err == nil {
		t.Errorf("unknown attribute should fail")
	}
}

func TestModuleArityChecks(t *testing.T) {
	m := overloads.NewModule(&cellOnly{})
	readAttr, err := m.Attr("read")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := interp.Call(readAttr, []interp.Value{int64(1), int64(2)}, nil); err == nil {
		t.Errorf("read with 2 arguments should fail")
	}

	initAttr, err := m.Attr("init")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := interp.Call(initAttr, []interp.Value{int64(5)}, nil); err == nil {
		t.Errorf("init with a non-string name should fail")
	}
}

// ifRecorder records the local_writes tuples it receives.
type ifRecorder struct {
	writes [][]string
}

func (r *ifRecorder) IfStmt(cond, body, orelse overloads.Thunk, localWrites []string) (interp.Value, error) {
	r.writes = append(r.writes, localWrites)
	c, err := cond()
	if err != nil {
		return nil, err
	}
	if interp.Truth(c) {
		return body()
	}
	return orelse()
}

func TestModuleControlFlowAdaptation(t *testing.T) {
	impl := &ifRecorder{}
	m := overloads.NewModule(impl)
	attr, err := m.Attr("if_stmt")
	if err != nil {
		t.Fatal(err)
	}

	thunkOf := func(v interp.Value) interp.Value {
		return interp.NewBuiltin("thunk", func([]interp.Value, map[string]interp.Value) (interp.Value, error) {
			return v, nil
		})
	}
	got, err := interp.Call(attr, []interp.Value{
		thunkOf(true),
		thunkOf("body ran"),
		thunkOf("orelse ran"),
		interp.Tuple{"a", "b"},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != "body ran" {
		t.Errorf("if_stmt = %v, want body result", got)
	}
	if !reflect.DeepEqual(impl.writes, [][]string{{"a", "b"}}) {
		t.Errorf("local_writes = %v, want [[a b]]", impl.writes)
	}

	// A malformed local_writes tuple is rejected before dispatch.
	if _, err := interp.Call(attr, []interp.Value{
		thunkOf(true), thunkOf(nil), thunkOf(nil), interp.Tuple{int64(1)},
	}, nil); err == nil {
		t.Errorf("non-string local_writes should fail")
	}
}
