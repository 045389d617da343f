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
	"nixlang.org/go/internal/ast"
)

// coerceToText implements the "coercion without context" step used by
// string-antiquotation evaluation and dynamic-key evaluation (spec.md
// §4.2 Str, §4.4 selector evaluation). Strings keep their context; every
// other coercible shape contributes none.
func coerceToText(src ast.Node, v Value) (string, StringContext, *Bottom) {
	switch x := v.(type) {
	case *Str:
		return x.Text, x.Context, nil
	case *LiteralPath:
		return x.Path, nil, nil
	case *Constant:
		switch x.Atom.Kind {
		case ast.IntAtom:
			return x.Atom.Int.String(), nil, nil
		case ast.BoolAtom:
			if x.Atom.Bool {
				return "true", nil, nil
			}
			return "false", nil, nil
		case ast.NullAtom:
			return "", nil, nil
		case ast.URIAtom:
			return x.Atom.URI, nil, nil
		}
	}
	return "", nil, errCoercionError(src, KindName(v), "string")
}

func evalStr(c *OpContext, scope *Scope, x *ast.Str) *Thunk {
	return c.buildThunk(x, func(c *OpContext) (Value, *Bottom) {
		text, ctx, err := evalStrParts(c, scope, x.Parts)
		if err != nil {
			return nil, err
		}
		return &Str{Text: text, Context: ctx}, nil
	})
}

// evalStrParts forces each antiquotation, coerces it to text, and
// concatenates all parts monoidally (spec.md §4.2 Str rule).
func evalStrParts(c *OpContext, scope *Scope, parts []ast.StrPart) (string, StringContext, *Bottom) {
	var text string
	var ctx StringContext
	for _, p := range parts {
		if p.Expr == nil {
			text += p.Text
			continue
		}
		v, err := c.ForceThunk(Eval(c, scope, p.Expr))
		if err != nil {
			return "", nil, err
		}
		// Atoms, strings, and paths — the only shapes coerceToText
		// accepts — are already in normal form once forced; nothing
		// further is gained by normalizing the whole subtree first.
		t, cx, cerr := coerceToText(p.Expr, v)
		if cerr != nil {
			return "", nil, cerr
		}
		text += t
		ctx = ctx.Union(cx)
	}
	return text, ctx, nil
}
