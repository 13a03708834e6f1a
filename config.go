// Copyright 2019 Google LLC
// Use of this source code is governed by the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pyctr

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// A Config carries pipeline configuration: the call whitelist and the
// logical-operand convention. It can be built programmatically or
// loaded from a TOML file.
type Config struct {
	// Whitelist lists qualified call targets exempt from
	// function-call virtualization, such as builtin constructors
	// needed by generated code.
	Whitelist []string `toml:"whitelist"`

	// DeferLogicalOperands wraps and_/or_ operands after the first in
	// zero-argument lambdas so the overload controls short-circuit
	// order. Pre-evaluated operands are an explicit opt-out.
	DeferLogicalOperands bool `toml:"defer-logical-operands"`

	// Transformers optionally names the passes to apply, for
	// file-driven pipelines; see ParseTransformers.
	Transformers []string `toml:"transformers"`
}

// DefaultConfig returns the default pipeline configuration: empty
// whitelist, deferred logical operands.
func DefaultConfig() *Config {
	return &Config{DeferLogicalOperands: true}
}

// LoadConfig reads a TOML pipeline configuration from path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	return cfg, nil
}

// ParseTransformers converts transformer names from a configuration
// file into the pass identifiers accepted by Convert.
func ParseTransformers(names []string) ([]Transformer, error) {
	out := make([]Transformer, len(names))
	for i, name := range names {
		switch t := Transformer(name); t {
		case Variables, ControlFlow, Functions, LogicalOps:
			out[i] = t
		default:
			return nil, fmt.Errorf("pyctr: unknown transformer %q", name)
		}
	}
	return out, nil
}
