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
	"github.com/cockroachdb/apd/v3"

	"nixlang.org/go/internal/ast"
)

// This file is the builtin-facing half of the ABI in spec.md §6: small
// exported helpers so a builtin catalog package (outside adt, since
// "the builtins library" is explicitly external per spec.md §1) can build
// and inspect Values without reaching into unexported fields.

// BuildThunk is build_thunk (spec.md §4.1), exported for builtins.
func BuildThunk(src ast.Node, action Action) *Thunk {
	return buildThunk(src, action)
}

// ValueRef is value_ref (spec.md §4.1), exported for builtins.
func ValueRef(v Value) *Thunk {
	return valueRef(v)
}

// RootScope builds a single-frame lexical Scope over set, for callers
// outside this package (nixcontext) that need to evaluate an expression
// with a pre-populated root binding set, such as a builtin catalog, without
// going through a with-expression in the AST itself.
func RootScope(set *Set) *Scope {
	return (*Scope)(nil).push(set, false)
}

// ValueRefBuiltin wraps a curried builtin step as an already-evaluated
// Builtin value, for builtins that curry multiple arguments at
// construction (spec.md §6).
func ValueRefBuiltin(name string, fn BuiltinFunc) *Thunk {
	return valueRef(&Builtin{Name: name, Fn: fn})
}

// NewError constructs a Bottom of the given code, for builtins that need
// to signal one of spec.md §7's error kinds themselves.
func NewError(code ErrorCode, format string, args ...interface{}) *Bottom {
	return errf(nil, code, format, args...)
}

// NewIntConstant lifts an apd.Decimal into a Constant Value.
func NewIntConstant(d *apd.Decimal) *Constant {
	return &Constant{Atom: ast.Atom{Kind: ast.IntAtom, Int: d}}
}

// NewStr lifts a plain Go string into a Str Value with empty context.
func NewStr(s string) *Str {
	return &Str{Text: s}
}

// ForceInt forces t and requires an Int atom.
func ForceInt(c *OpContext, t *Thunk) (*apd.Decimal, *Bottom) {
	v, err := c.ForceThunk(t)
	if err != nil {
		return nil, err
	}
	cst, ok := v.(*Constant)
	if !ok || cst.Atom.Kind != ast.IntAtom {
		return nil, errTypeError(nil, "expected an int, got %s", KindName(v))
	}
	return cst.Atom.Int, nil
}

// ForceCoerceText forces t and coerces it to text via the same rule the
// Str evaluator uses (spec.md §4.2/§4.4), discarding context.
func ForceCoerceText(c *OpContext, t *Thunk) (string, *Bottom) {
	v, err := c.ForceThunk(t)
	if err != nil {
		return "", err
	}
	text, _, cerr := coerceToText(nil, v)
	return text, cerr
}
