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

package adt

import "nixlang.org/go/internal/ast"

// bindParams implements the argument binder of spec.md §4.3: given a
// function's parameter shape and its (unforced) argument thunk, produce
// the scope to push before evaluating the body.
//
// For a parameter set, every default expression must see every sibling
// binding — the recursive-knot invariant of spec.md §3-iv. This is
// realized the same way buildSet ties its knot: the bound Set is
// pre-allocated, pushed as scope, and then populated in place; defaults
// are wrapped in Thunks whose Action closes over that same Set, so by the
// time anything forces a default the full knot is already there.
func bindParams(c *OpContext, src ast.Node, params ast.Params, argThunk *Thunk, closureEnv *Scope) (*Set, *Bottom) {
	if params.Kind == ast.NamedParam {
		s := NewSet()
		s.SetField(params.Name, argThunk)
		return s, nil
	}

	v, err := c.ForceThunk(argThunk)
	if err != nil {
		return nil, err
	}
	args, ok := v.(*Set)
	if !ok {
		return nil, errTypeError(src, "function expects a set argument, got %s", KindName(v))
	}

	bound := NewSet()
	knotScope := c.pushScope(closureEnv, bound, false)

	declared := make(map[string]bool, len(params.Fields))
	for _, field := range params.Fields {
		declared[field.Name] = true
		if t, ok := args.Fields[field.Name]; ok {
			bound.SetField(field.Name, t)
			continue
		}
		if field.Default == nil {
			return nil, errMissingArg(src, field.Name)
		}
		def := field.Default
		bound.SetField(field.Name, c.buildThunk(def, func(c *OpContext) (Value, *Bottom) {
			return c.ForceThunk(Eval(c, knotScope, def))
		}))
	}

	for _, name := range args.Order {
		if declared[name] {
			continue
		}
		if params.Kind != ast.VariadicParamSet {
			return nil, errUnexpectedArg(src, name)
		}
		bound.SetField(name, args.Fields[name])
	}

	if params.SelfName != "" {
		bound.SetField(params.SelfName, c.valueRef(bound))
	}
	return bound, nil
}
