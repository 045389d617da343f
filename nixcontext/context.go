// Copyright 2024 The Nixeval Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package nixcontext is the public entry point to the evaluator: it owns
// the collaborators (Importer, NIX_PATH resolver) and hands out a *Context
// whose methods are the only thing most callers ever need.
package nixcontext

import (
	"nixlang.org/go/internal/adt"
	"nixlang.org/go/internal/ast"
	"nixlang.org/go/nixeval/errors"
)

// Option configures a Context at construction time.
type Option struct {
	apply func(*Context)
}

// WithImporter supplies the import_file collaborator (spec.md §4.1).
func WithImporter(imp adt.Importer) Option {
	return Option{func(c *Context) { c.op.Importer = imp }}
}

// WithEnvPathResolver supplies the NIX_PATH lookup collaborator
// (spec.md §6).
func WithEnvPathResolver(r adt.EnvPathResolver) Option {
	return Option{func(c *Context) { c.op.EnvPath = r }}
}

// WithBuiltins seeds the root scope every Check/Eval/Normalize call
// evaluates under from catalog, so bare names like toString resolve the
// same way a `with builtins;` prelude would, without requiring every
// expression passed to a Context to carry a builtins. prefix by hand.
func WithBuiltins(catalog map[string]*adt.Builtin) Option {
	return Option{func(c *Context) {
		set := adt.NewSet()
		names := make(map[string]bool, len(catalog))
		for name, b := range catalog {
			set.SetField(name, adt.ValueRef(b))
			names[name] = true
		}
		c.scope = adt.RootScope(set)
		c.op.RootScope = c.scope
		c.names = names
	}}
}

// Context is a configured evaluation session.
type Context struct {
	op    *adt.OpContext
	scope *adt.Scope
	names map[string]bool
}

// New creates a Context with the given options applied.
func New(options ...Option) *Context {
	c := &Context{op: adt.NewContext(nil, nil)}
	for _, o := range options {
		o.apply(c)
	}
	return c
}

// Check runs the static checker of spec.md §4.7 over e without evaluating
// anything.
func (c *Context) Check(e ast.Expr) error {
	if c.names != nil {
		return errors.Wrap(adt.CheckStaticIn(e, c.names))
	}
	return errors.Wrap(adt.CheckStatic(e))
}

// Eval evaluates e to a thunk and forces it to head-normal form, without
// normalizing substructure.
func (c *Context) Eval(e ast.Expr) (adt.Value, error) {
	v, err := c.op.ForceThunk(adt.Eval(c.op, c.scope, e))
	if err != nil {
		return nil, errors.Wrap(err)
	}
	return v, nil
}

// Normalize evaluates e and recursively forces every substructure,
// producing spec.md §4.6's fully-evaluated tree.
func (c *Context) Normalize(e ast.Expr) (adt.NormalValue, error) {
	nv, err := adt.Normalize(c.op, adt.Eval(c.op, c.scope, e))
	if err != nil {
		return nil, errors.Wrap(err)
	}
	return nv, nil
}
