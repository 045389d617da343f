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

// alterSet is the attr-set alter primitive of spec.md §4.4, specialized to
// the one shape every binding in this evaluator needs: inserting a leaf
// thunk at path, creating missing intermediate sets as needed. A new
// intermediate set is inserted before recursing and then filled in place.
// An empty path is the caller's bug, per spec.md.
func alterSet(c *OpContext, src ast.Node, set *Set, path []string, leaf *Thunk) *Bottom {
	if len(path) == 0 {
		panic("adt: alterSet called with an empty path")
	}
	key := path[0]
	if len(path) == 1 {
		set.SetField(key, leaf)
		return nil
	}
	var nested *Set
	if cur, ok := set.Fields[key]; ok {
		v, err := c.ForceThunk(cur)
		if err != nil {
			return err
		}
		s, ok := v.(*Set)
		if !ok {
			return errNotASet(src, path[:1])
		}
		nested = s
	} else {
		nested = NewSet()
		set.SetField(key, c.valueRef(nested))
	}
	return alterSet(c, src, nested, path[1:], leaf)
}

// resolveSelector evaluates one path component to its key name. Static
// components resolve to their literal name; dynamic components are
// evaluated under outerScope (never the knot being built — a key cannot
// depend on the binding it names), reusing the Str coercion rules of
// spec.md §4.2/§4.4. allowDynamic gates whether a `${...}` component is
// permitted at all here (spec.md §4.4): false rejects it with
// DynamicKeyNotAllowed before ever evaluating sel.Dynamic.
func resolveSelector(c *OpContext, outerScope *Scope, sel ast.Selector, allowDynamic bool) (string, *Bottom) {
	if !sel.IsDynamic() {
		return sel.Name, nil
	}
	if !allowDynamic {
		return "", errDynamicKeyNotAllowed(sel.Dynamic)
	}
	v, err := c.ForceThunk(Eval(c, outerScope, sel.Dynamic))
	if err != nil {
		return "", err
	}
	text, _, cerr := coerceToText(sel.Dynamic, v)
	if cerr != nil {
		return "", cerr
	}
	return text, nil
}

// desugarInherit expands `inherit [(source)] names...;` into the NamedVar
// bindings spec.md §9's Open Question calls for: each name binds to either
// lookup_var(name) or, with an explicit source, Select(source, [name]).
func desugarInherit(b ast.Binding) []ast.Binding {
	out := make([]ast.Binding, len(b.Names))
	for i, name := range b.Names {
		var value ast.Expr
		if b.Source != nil {
			value = &ast.Select{
				TokPos: b.Pos,
				X:      b.Source,
				Path:   []ast.Selector{{Name: name}},
			}
		} else {
			value = &ast.Sym{TokPos: b.Pos, Name: name}
		}
		out[i] = ast.Binding{
			Kind:  ast.NamedVarBinding,
			Pos:   b.Pos,
			Path:  []ast.Selector{{Name: name}},
			Value: value,
		}
	}
	return out
}

// buildSet implements spec.md §4.5: bindings are processed in source order;
// each resolves a path (dynamic keys allowed only when allowDynamic, per
// spec.md §4.4 — Let passes false) and alters the accumulated set with its
// RHS thunk, unforced. For a recursive set the whole
// construction is tied into a knot (spec.md's "loeb-style fixed point"):
// the Set being built is pushed as scope *before* any binding's RHS is
// evaluated, by pre-allocating the Set and handing every RHS a Thunk whose
// Action closes over that same (mutated-in-place) Set. Because RHS thunks
// are never forced until something demands them, and buildSet finishes
// populating the Set's field map before returning, every sibling is always
// visible by the time any default or RHS actually runs.
func buildSet(c *OpContext, outerScope *Scope, bindings []ast.Binding, recursive, allowDynamic bool) *Thunk {
	var src ast.Node
	if len(bindings) > 0 {
		src = bindings[0].Value
	}
	return c.buildThunk(src, func(c *OpContext) (Value, *Bottom) {
		set := NewSet()
		var rhsScope *Scope
		if recursive {
			rhsScope = c.pushScope(outerScope, set, false)
		} else {
			rhsScope = outerScope
		}
		for _, raw := range bindings {
			var entries []ast.Binding
			if raw.Kind == ast.InheritBinding {
				entries = desugarInherit(raw)
			} else {
				entries = []ast.Binding{raw}
			}
			for _, b := range entries {
				path := make([]string, len(b.Path))
				for i, sel := range b.Path {
					name, err := resolveSelector(c, outerScope, sel, allowDynamic)
					if err != nil {
						return nil, err
					}
					path[i] = name
				}
				var rhs *Thunk
				switch {
				case raw.Kind == ast.InheritBinding && raw.Source == nil:
					// A source-less inherit names a binding of the enclosing scope.
					rhs = Eval(c, outerScope, b.Value)
				case recursive:
					// Deferred, so names in the RHS are looked up in the finished knot.
					value := b.Value
					rhs = c.buildThunk(value, func(c *OpContext) (Value, *Bottom) {
						return c.ForceThunk(Eval(c, rhsScope, value))
					})
				default:
					rhs = Eval(c, rhsScope, b.Value)
				}
				if err := alterSet(c, b.Value, set, path, rhs); err != nil {
					return nil, err
				}
			}
		}
		return set, nil
	})
}

// evalSelect implements Select (spec.md §4.2): force and walk aset.Path
// name-by-name, falling back to Default when present.
func evalSelect(c *OpContext, scope *Scope, x *ast.Select) *Thunk {
	return c.buildThunk(x, func(c *OpContext) (Value, *Bottom) {
		v, err := c.ForceThunk(Eval(c, scope, x.X))
		if err != nil {
			return nil, err
		}
		cur := v
		var walked []string
		for _, sel := range x.Path {
			name, serr := resolveSelector(c, scope, sel, true)
			if serr != nil {
				return nil, serr
			}
			walked = append(walked, name)
			set, ok := cur.(*Set)
			if !ok {
				return nil, errNotASet(x, walked[:len(walked)-1])
			}
			t, ok := set.Fields[name]
			if !ok {
				if x.Default != nil {
					return c.ForceThunk(Eval(c, scope, x.Default))
				}
				return nil, errAttrMissing(x, walked)
			}
			cur, err = c.ForceThunk(t)
			if err != nil {
				return nil, err
			}
		}
		return cur, nil
	})
}

// evalHasAttr implements HasAttr (spec.md §4.2): the path must have length
// 1.
func evalHasAttr(c *OpContext, scope *Scope, x *ast.HasAttr) *Thunk {
	return c.buildThunk(x, func(c *OpContext) (Value, *Bottom) {
		if len(x.Path) != 1 {
			return nil, errTypeError(x, "?  requires a single-component path")
		}
		v, err := c.ForceThunk(Eval(c, scope, x.X))
		if err != nil {
			return nil, err
		}
		set, ok := v.(*Set)
		if !ok {
			return nil, errTypeError(x, "? expects a set, got %s", KindName(v))
		}
		name, serr := resolveSelector(c, scope, x.Path[0], true)
		if serr != nil {
			return nil, serr
		}
		_, present := set.Fields[name]
		return boolAtom(present), nil
	})
}
