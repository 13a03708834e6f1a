// Copyright 2019 Google LLC
// Use of this source code is governed by the Apache License, Version 2.0
// that can be found in the LICENSE file.

package transform

import (
	"fmt"

	"github.com/google/pyctr/syntax"
)

// A Namer generates symbols that are fresh with respect to an input
// tree and to every symbol it has generated before. Generation is
// deterministic: the same tree and request sequence yields the same
// names.
type Namer struct {
	used map[string]bool
}

// NewNamer returns a Namer seeded with every identifier appearing in
// root, including function names and parameters.
func NewNamer(root syntax.Node) *Namer {
	used := make(map[string]bool)
	syntax.Walk(root, func(n syntax.Node) bool {
		switch n := n.(type) {
		case *syntax.Ident:
			used[n.Name] = true
		case *syntax.FuncDef:
			used[n.Name] = true
		case *syntax.ClassDef:
			used[n.Name] = true
		case *syntax.GlobalStmt:
			for _, name := range n.Names {
				used[name] = true
			}
		case *syntax.NonlocalStmt:
			for _, name := range n.Names {
				used[name] = true
			}
		}
		return true
	})
	return &Namer{used: used}
}

// New returns base if it is still unused, otherwise base_1, base_2,
// and so on. The returned name is marked used.
func (n *Namer) New(base string) string {
	if !n.used[base] {
		n.used[base] = true
		return base
	}
	for i := 1; ; i++ {
		name := fmt.Sprintf("%s_%d", base, i)
		if !n.used[name] {
			n.used[name] = true
			return name
		}
	}
}
