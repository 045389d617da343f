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

import (
	"sort"

	"nixlang.org/go/internal/ast"
)

// Value is a head-normal value: its outermost tag is known, but recursive
// slots (list elements, set fields, function bodies) may still be unforced
// Thunks. See NormalValue for the fully-forced counterpart.
type Value interface {
	valueNode()
}

// Constant wraps a scalar Atom.
type Constant struct {
	Atom ast.Atom
}

func (*Constant) valueNode() {}

// StringContext is the unordered multiset of provenance fragments carried
// alongside a Str's text (spec.md §3). It is kept sorted, with duplicate
// fragments retained, so that two strings built from the same fragments in
// different orders compare and render identically.
type StringContext []string

// Union concatenates two contexts per the monoidal law in spec.md §3.
func (c StringContext) Union(other StringContext) StringContext {
	if len(c) == 0 {
		return other
	}
	if len(other) == 0 {
		return c
	}
	out := make(StringContext, 0, len(c)+len(other))
	out = append(out, c...)
	out = append(out, other...)
	sort.Strings(out)
	return out
}

// Str is a string with provenance context.
type Str struct {
	Text    string
	Context StringContext
}

func (*Str) valueNode() {}

// List is a lazy sequence: elements are forced only on demand.
type List struct {
	Elems []*Thunk
}

func (*List) valueNode() {}

// Set is an attribute set: a mapping from name to a lazily-bound Thunk.
// Fields is keyed by name; Order records source-insertion order for
// operations that care about it (none in this spec — rendering always
// sorts by name per spec.md §6), but it is kept so debug output is stable
// without resorting to map iteration.
type Set struct {
	Fields map[string]*Thunk
	Order  []string
}

func (*Set) valueNode() {}

// NewSet builds an empty Set ready for insertion via SetField.
func NewSet() *Set {
	return &Set{Fields: map[string]*Thunk{}}
}

// SetField inserts or overwrites a field, tracking first-insertion order.
func (s *Set) SetField(name string, t *Thunk) {
	if _, ok := s.Fields[name]; !ok {
		s.Order = append(s.Order, name)
	}
	s.Fields[name] = t
}

// Function is a closure: a parameter shape plus a body, closed over the
// scope stack in effect at the Abs site (spec.md invariant iii).
type Function struct {
	Params ast.Params
	Body   ast.Expr
	Env    *Scope
}

func (*Function) valueNode() {}

// LiteralPath is a filesystem path literal. Canonicalization is deferred to
// collaborators outside the core (spec.md §3).
type LiteralPath struct {
	Path string
}

func (*LiteralPath) valueNode() {}

// EnvPath is an unresolved NIX_PATH lookup token, e.g. <nixpkgs>.
type EnvPath struct {
	Name string
}

func (*EnvPath) valueNode() {}

// BuiltinFunc is the uniform 1-argument builtin ABI (spec.md §6). Builtins
// receive their argument unforced; forcing, if needed, is the builtin's own
// responsibility.
type BuiltinFunc func(c *OpContext, arg *Thunk) *Thunk

// Builtin is an opaque, never-further-reducible primitive.
type Builtin struct {
	Name string
	Fn   BuiltinFunc
}

func (*Builtin) valueNode() {}

// AtomKindName renders an ast.AtomKind for error messages.
func AtomKindName(k ast.AtomKind) string {
	switch k {
	case ast.IntAtom:
		return "int"
	case ast.BoolAtom:
		return "bool"
	case ast.NullAtom:
		return "null"
	case ast.URIAtom:
		return "uri"
	default:
		return "atom"
	}
}

// KindName renders a Value's tag for error messages.
func KindName(v Value) string {
	switch x := v.(type) {
	case *Constant:
		return AtomKindName(x.Atom.Kind)
	case *Str:
		return "string"
	case *List:
		return "list"
	case *Set:
		return "set"
	case *Function:
		return "function"
	case *LiteralPath:
		return "path"
	case *EnvPath:
		return "path"
	case *Builtin:
		return "function"
	default:
		return "value"
	}
}
