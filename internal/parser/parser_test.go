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

package parser

import (
	"testing"

	qt "github.com/go-quicktest/qt"

	"nixlang.org/go/internal/ast"
)

func TestParseExprShapes(t *testing.T) {
	testCases := []struct {
		desc string
		in   string
		want func(t *testing.T, e ast.Expr)
	}{
		{"int", "42", func(t *testing.T, e ast.Expr) {
			c, ok := e.(*ast.Constant)
			qt.Assert(t, qt.IsTrue(ok))
			qt.Assert(t, qt.Equals(c.Value.Kind, ast.IntAtom))
		}},
		{"bool", "true", func(t *testing.T, e ast.Expr) {
			c, ok := e.(*ast.Constant)
			qt.Assert(t, qt.IsTrue(ok))
			qt.Assert(t, qt.IsTrue(c.Value.Bool))
		}},
		{"sym", "x", func(t *testing.T, e ast.Expr) {
			s, ok := e.(*ast.Sym)
			qt.Assert(t, qt.IsTrue(ok))
			qt.Assert(t, qt.Equals(s.Name, "x"))
		}},
		{"named lambda", "x: x", func(t *testing.T, e ast.Expr) {
			a, ok := e.(*ast.Abs)
			qt.Assert(t, qt.IsTrue(ok))
			qt.Assert(t, qt.Equals(a.Params.Kind, ast.NamedParam))
		}},
		{"paramset lambda with default and variadic", "{ a, b ? 1, ... }: a", func(t *testing.T, e ast.Expr) {
			a, ok := e.(*ast.Abs)
			qt.Assert(t, qt.IsTrue(ok))
			qt.Assert(t, qt.Equals(a.Params.Kind, ast.VariadicParamSet))
			qt.Assert(t, qt.Equals(len(a.Params.Fields), 2))
			qt.Assert(t, qt.Not(qt.IsNil(a.Params.Fields[1].Default)))
		}},
		{"self-bound paramset lambda", "args@{ a }: args", func(t *testing.T, e ast.Expr) {
			a, ok := e.(*ast.Abs)
			qt.Assert(t, qt.IsTrue(ok))
			qt.Assert(t, qt.Equals(a.Params.SelfName, "args"))
		}},
		{"plain set is not mistaken for a lambda", "{ a = 1; b = 2; }", func(t *testing.T, e ast.Expr) {
			s, ok := e.(*ast.Set)
			qt.Assert(t, qt.IsTrue(ok))
			qt.Assert(t, qt.Equals(len(s.Bindings), 2))
		}},
		{"rec set", "rec { a = 1; b = a; }", func(t *testing.T, e ast.Expr) {
			_, ok := e.(*ast.RecSet)
			qt.Assert(t, qt.IsTrue(ok))
		}},
		{"nested attr path", "{ a.b.c = 1; }", func(t *testing.T, e ast.Expr) {
			s, ok := e.(*ast.Set)
			qt.Assert(t, qt.IsTrue(ok))
			qt.Assert(t, qt.Equals(len(s.Bindings[0].Path), 3))
		}},
		{"inherit with source", "{ inherit (x) a b; }", func(t *testing.T, e ast.Expr) {
			s, ok := e.(*ast.Set)
			qt.Assert(t, qt.IsTrue(ok))
			qt.Assert(t, qt.Equals(s.Bindings[0].Kind, ast.InheritBinding))
			qt.Assert(t, qt.Equals(len(s.Bindings[0].Names), 2))
			qt.Assert(t, qt.Not(qt.IsNil(s.Bindings[0].Source)))
		}},
		{"let in", "let a = 1; in a", func(t *testing.T, e ast.Expr) {
			_, ok := e.(*ast.Let)
			qt.Assert(t, qt.IsTrue(ok))
		}},
		{"with", "with x; y", func(t *testing.T, e ast.Expr) {
			_, ok := e.(*ast.With)
			qt.Assert(t, qt.IsTrue(ok))
		}},
		{"if then else", "if a then 1 else 2", func(t *testing.T, e ast.Expr) {
			_, ok := e.(*ast.If)
			qt.Assert(t, qt.IsTrue(ok))
		}},
		{"select with or default", "a.b or 3", func(t *testing.T, e ast.Expr) {
			sel, ok := e.(*ast.Select)
			qt.Assert(t, qt.IsTrue(ok))
			qt.Assert(t, qt.Not(qt.IsNil(sel.Default)))
		}},
		{"has attr", "a ? b", func(t *testing.T, e ast.Expr) {
			_, ok := e.(*ast.HasAttr)
			qt.Assert(t, qt.IsTrue(ok))
		}},
		{"string interpolation", `"a${b}c"`, func(t *testing.T, e ast.Expr) {
			s, ok := e.(*ast.Str)
			qt.Assert(t, qt.IsTrue(ok))
			qt.Assert(t, qt.Equals(len(s.Parts), 3))
			qt.Assert(t, qt.Not(qt.IsNil(s.Parts[1].Expr)))
		}},
		{"list literal", "[ 1 2 3 ]", func(t *testing.T, e ast.Expr) {
			l, ok := e.(*ast.List)
			qt.Assert(t, qt.IsTrue(ok))
			qt.Assert(t, qt.Equals(len(l.Elems), 3))
		}},
		{"application", "f a b", func(t *testing.T, e ast.Expr) {
			app, ok := e.(*ast.App)
			qt.Assert(t, qt.IsTrue(ok))
			inner, ok := app.Fun.(*ast.App)
			qt.Assert(t, qt.IsTrue(ok))
			_, ok = inner.Fun.(*ast.Sym)
			qt.Assert(t, qt.IsTrue(ok))
		}},
		{"binary arithmetic precedence", "1 + 2 * 3", func(t *testing.T, e ast.Expr) {
			b, ok := e.(*ast.Binary)
			qt.Assert(t, qt.IsTrue(ok))
			qt.Assert(t, qt.Equals(b.Op, ast.NPlus))
			rhs, ok := b.Y.(*ast.Binary)
			qt.Assert(t, qt.IsTrue(ok))
			qt.Assert(t, qt.Equals(rhs.Op, ast.NMult))
		}},
		{"update is right associative", "a // b // c", func(t *testing.T, e ast.Expr) {
			bin, ok := e.(*ast.Binary)
			qt.Assert(t, qt.IsTrue(ok))
			qt.Assert(t, qt.Equals(bin.Op, ast.NUpdate))
			_, ok = bin.Y.(*ast.Binary)
			qt.Assert(t, qt.IsTrue(ok))
		}},
		{"path literal", "./foo/bar.nix", func(t *testing.T, e ast.Expr) {
			p, ok := e.(*ast.LiteralPath)
			qt.Assert(t, qt.IsTrue(ok))
			qt.Assert(t, qt.Equals(p.Path, "./foo/bar.nix"))
		}},
		{"env path", "<nixpkgs>", func(t *testing.T, e ast.Expr) {
			p, ok := e.(*ast.EnvPath)
			qt.Assert(t, qt.IsTrue(ok))
			qt.Assert(t, qt.Equals(p.Name, "nixpkgs"))
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			e, err := ParseExpr([]byte(tc.in))
			qt.Assert(t, qt.IsNil(err))
			tc.want(t, e)
		})
	}
}

func TestParseExprErrors(t *testing.T) {
	testCases := []string{
		"let a = 1;",    // missing "in"
		"{ a = 1",       // missing closing brace
		"if a then 1",   // missing "else"
		`"unterminated`, // unterminated string
	}
	for _, in := range testCases {
		t.Run(in, func(t *testing.T) {
			_, err := ParseExpr([]byte(in))
			qt.Assert(t, qt.Not(qt.IsNil(err)))
		})
	}
}
