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

// Package builtins is the minimal primop catalog exercising adt.Builtin
// end-to-end. spec.md §1 treats "the builtins library" as an external
// collaborator and specifies only the uniform 1-argument ABI (§6); the
// catalog itself — which primops exist, their names, their arities — is
// this module's business, not the core's.
package builtins

import (
	"github.com/cockroachdb/apd/v3"

	"nixlang.org/go/internal/adt"
)

// Base returns the root set of builtins bound into every top-level
// evaluation, keyed by name as `builtins.<name>` would be in real Nix.
func Base() map[string]*adt.Builtin {
	return map[string]*adt.Builtin{
		"toString": unary("toString", toString),
		"typeOf":   unary("typeOf", typeOf),
		"import":   unary("import", importFn),
		"add":      curriedInt("add", addInt),
		"sub":      curriedInt("sub", subInt),
	}
}

func unary(name string, fn adt.BuiltinFunc) *adt.Builtin {
	return &adt.Builtin{Name: name, Fn: fn}
}

// curriedInt builds a 2-argument integer builtin curried at construction,
// per spec.md §6's "multi-argument builtins are curried" ABI note.
func curriedInt(name string, fn func(a, b *apd.Decimal) (*apd.Decimal, *adt.Bottom)) *adt.Builtin {
	return &adt.Builtin{Name: name, Fn: func(c *adt.OpContext, xThunk *adt.Thunk) *adt.Thunk {
		return adt.ValueRefBuiltin(name+"-1", func(c *adt.OpContext, yThunk *adt.Thunk) *adt.Thunk {
			return adt.BuildThunk(nil, func(c *adt.OpContext) (adt.Value, *adt.Bottom) {
				x, err := adt.ForceInt(c, xThunk)
				if err != nil {
					return nil, err
				}
				y, err := adt.ForceInt(c, yThunk)
				if err != nil {
					return nil, err
				}
				out, err := fn(x, y)
				if err != nil {
					return nil, err
				}
				return adt.NewIntConstant(out), nil
			})
		})
	}}
}

func addInt(a, b *apd.Decimal) (*apd.Decimal, *adt.Bottom) {
	var out apd.Decimal
	if _, err := apd.BaseContext.Add(&out, a, b); err != nil {
		return nil, adt.NewError(adt.TypeError, "add: %v", err)
	}
	return &out, nil
}

func subInt(a, b *apd.Decimal) (*apd.Decimal, *adt.Bottom) {
	var out apd.Decimal
	if _, err := apd.BaseContext.Sub(&out, a, b); err != nil {
		return nil, adt.NewError(adt.TypeError, "sub: %v", err)
	}
	return &out, nil
}

func toString(c *adt.OpContext, arg *adt.Thunk) *adt.Thunk {
	return adt.BuildThunk(nil, func(c *adt.OpContext) (adt.Value, *adt.Bottom) {
		text, err := adt.ForceCoerceText(c, arg)
		if err != nil {
			return nil, err
		}
		return adt.NewStr(text), nil
	})
}

func typeOf(c *adt.OpContext, arg *adt.Thunk) *adt.Thunk {
	return adt.BuildThunk(nil, func(c *adt.OpContext) (adt.Value, *adt.Bottom) {
		v, err := c.ForceThunk(arg)
		if err != nil {
			return nil, err
		}
		return adt.NewStr(adt.KindName(v)), nil
	})
}

func importFn(c *adt.OpContext, arg *adt.Thunk) *adt.Thunk {
	return c.ImportFile(nil, arg)
}
