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

// intCtx is the arithmetic context for the arbitrary-precision Int atom
// (spec.md §6). BaseContext performs exact arithmetic with no rounding,
// which is what integer +,-,* need; division truncates explicitly via
// QuoInteger below rather than through context precision.
var intCtx = apd.BaseContext.WithPrecision(0)

func evalUnary(c *OpContext, scope *Scope, x *ast.Unary) *Thunk {
	return c.buildThunk(x, func(c *OpContext) (Value, *Bottom) {
		v, err := c.ForceThunk(Eval(c, scope, x.X))
		if err != nil {
			return nil, err
		}
		cst, ok := v.(*Constant)
		if !ok {
			return nil, errTypeError(x, "unary operator expects an atom, got %s", KindName(v))
		}
		switch x.Op {
		case ast.NNeg:
			if cst.Atom.Kind != ast.IntAtom {
				return nil, errTypeError(x, "- expects an int, got %s", AtomKindName(cst.Atom.Kind))
			}
			var out apd.Decimal
			if _, err := intCtx.Neg(&out, cst.Atom.Int); err != nil {
				return nil, errTypeError(x, "negation failed: %v", err)
			}
			return &Constant{Atom: ast.Atom{Kind: ast.IntAtom, Int: &out}}, nil
		case ast.NNot:
			if cst.Atom.Kind != ast.BoolAtom {
				return nil, errTypeError(x, "! expects a bool, got %s", AtomKindName(cst.Atom.Kind))
			}
			return &Constant{Atom: ast.Atom{Kind: ast.BoolAtom, Bool: !cst.Atom.Bool}}, nil
		default:
			return nil, errTypeError(x, "unknown unary operator")
		}
	})
}

func evalBinary(c *OpContext, scope *Scope, x *ast.Binary) *Thunk {
	return c.buildThunk(x, func(c *OpContext) (Value, *Bottom) {
		lv, err := c.ForceThunk(Eval(c, scope, x.X))
		if err != nil {
			return nil, err
		}
		rv, err := c.ForceThunk(Eval(c, scope, x.Y))
		if err != nil {
			return nil, err
		}
		return dispatchBinary(c, x, lv, rv)
	})
}

func dispatchBinary(c *OpContext, x *ast.Binary, lv, rv Value) (Value, *Bottom) {
	switch l := lv.(type) {
	case *Constant:
		if r, ok := rv.(*Constant); ok {
			return atomBinary(x, l.Atom, r.Atom)
		}
	case *Str:
		if r, ok := rv.(*Str); ok && x.Op == ast.NPlus {
			return &Str{Text: l.Text + r.Text, Context: l.Context.Union(r.Context)}, nil
		}
	case *Set:
		if r, ok := rv.(*Set); ok && x.Op == ast.NUpdate {
			return mergeSets(l, r), nil
		}
	case *List:
		if r, ok := rv.(*List); ok && x.Op == ast.NConcat {
			return &List{Elems: append(append([]*Thunk{}, l.Elems...), r.Elems...)}, nil
		}
	case *LiteralPath:
		switch r := rv.(type) {
		case *LiteralPath:
			if x.Op == ast.NPlus {
				return &LiteralPath{Path: l.Path + r.Path}, nil
			}
		case *Str:
			if x.Op == ast.NPlus {
				return &Str{Text: l.Path + r.Text, Context: r.Context}, nil
			}
		}
	}
	return nil, errTypeError(x, "operator not defined for %s and %s", KindName(lv), KindName(rv))
}

func atomBinary(x *ast.Binary, l, r ast.Atom) (Value, *Bottom) {
	switch x.Op {
	case ast.NEq, ast.NNEq, ast.NLt, ast.NLte, ast.NGt, ast.NGte:
		return compareAtoms(x, l, r)
	}
	if l.Kind == ast.BoolAtom && r.Kind == ast.BoolAtom {
		switch x.Op {
		case ast.NAnd:
			return boolAtom(l.Bool && r.Bool), nil
		case ast.NOr:
			return boolAtom(l.Bool || r.Bool), nil
		case ast.NImpl:
			return boolAtom(!l.Bool || r.Bool), nil
		}
	}
	if l.Kind == ast.IntAtom && r.Kind == ast.IntAtom {
		switch x.Op {
		case ast.NPlus, ast.NMinus, ast.NMult, ast.NDiv:
			return intArith(x, l.Int, r.Int, x.Op)
		}
	}
	return nil, errTypeError(x, "operator not defined for %s and %s",
		AtomKindName(l.Kind), AtomKindName(r.Kind))
}

func intArith(src ast.Node, l, r *apd.Decimal, op ast.BinaryOp) (Value, *Bottom) {
	var out apd.Decimal
	var err error
	switch op {
	case ast.NPlus:
		_, err = intCtx.Add(&out, l, r)
	case ast.NMinus:
		_, err = intCtx.Sub(&out, l, r)
	case ast.NMult:
		_, err = intCtx.Mul(&out, l, r)
	case ast.NDiv:
		if r.Sign() == 0 {
			return nil, errDivisionByZero(src)
		}
		_, err = intCtx.QuoInteger(&out, l, r)
	}
	if err != nil {
		return nil, errTypeError(src, "arithmetic error: %v", err)
	}
	return &Constant{Atom: ast.Atom{Kind: ast.IntAtom, Int: &out}}, nil
}

func compareAtoms(x *ast.Binary, l, r ast.Atom) (Value, *Bottom) {
	if l.Kind != r.Kind {
		return nil, errTypeError(x, "cannot compare %s with %s", AtomKindName(l.Kind), AtomKindName(r.Kind))
	}
	var cmp int
	switch l.Kind {
	case ast.IntAtom:
		cmp = l.Int.Cmp(r.Int)
	case ast.BoolAtom:
		cmp = boolCmp(l.Bool, r.Bool)
	case ast.NullAtom:
		cmp = 0
	case ast.URIAtom:
		cmp = stringCmp(l.URI, r.URI)
	}
	switch x.Op {
	case ast.NEq:
		return boolAtom(cmp == 0), nil
	case ast.NNEq:
		return boolAtom(cmp != 0), nil
	case ast.NLt:
		return boolAtom(cmp < 0), nil
	case ast.NLte:
		return boolAtom(cmp <= 0), nil
	case ast.NGt:
		return boolAtom(cmp > 0), nil
	case ast.NGte:
		return boolAtom(cmp >= 0), nil
	}
	return nil, errTypeError(x, "unknown comparison operator")
}

func boolAtom(b bool) *Constant {
	return &Constant{Atom: ast.Atom{Kind: ast.BoolAtom, Bool: b}}
}

func boolCmp(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	default:
		return -1
	}
}

func stringCmp(a, b string) int {
	switch {
	case a == b:
		return 0
	case a < b:
		return -1
	default:
		return 1
	}
}

// mergeSets implements Set // Set: a right-biased, top-level-only merge
// (spec.md §4.2's Binary op table).
func mergeSets(l, r *Set) *Set {
	out := NewSet()
	for _, name := range l.Order {
		out.SetField(name, l.Fields[name])
	}
	for _, name := range r.Order {
		out.SetField(name, r.Fields[name])
	}
	return out
}
