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

package adt_test

import (
	"testing"

	"github.com/cockroachdb/apd/v3"
	qt "github.com/go-quicktest/qt"
	"github.com/google/go-cmp/cmp"

	"nixlang.org/go/internal/adt"
	"nixlang.org/go/internal/ast"
	"nixlang.org/go/internal/parser"
	"nixlang.org/go/nixcontext"
	"nixlang.org/go/nixeval/errors"
	"nixlang.org/go/pkg/builtins"
)

// decimalComparer lets cmp.Diff treat two *apd.Decimal as equal by value
// rather than descending into big.Int's unexported fields.
var decimalComparer = cmp.Comparer(func(a, b *apd.Decimal) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
})

func newTestContext() *nixcontext.Context {
	return nixcontext.New(nixcontext.WithBuiltins(builtins.Base()))
}

func evalRepr(t *testing.T, src string) string {
	t.Helper()
	e, err := parser.ParseExpr([]byte(src))
	qt.Assert(t, qt.IsNil(err))

	nc := newTestContext()
	qt.Assert(t, qt.IsNil(nc.Check(e)))

	nv, err := nc.Normalize(e)
	qt.Assert(t, qt.IsNil(err))
	return adt.Repr(nv)
}

// TestEvalScenarios encodes the end-to-end scenarios of this evaluator's
// testable properties: one source expression, one expected rendered
// normal form.
func TestEvalScenarios(t *testing.T) {
	testCases := []struct {
		desc string
		in   string
		want string
	}{
		{"let binding arithmetic",
			"let x = 1; y = x + 2; in y",
			"3"},
		{"recursive set knot",
			"rec { a = 1; b = a + 1; c = b + a; }.c",
			"3"},
		{"default param sees sibling binding",
			"({x, y ? x + 1}: y) { x = 10; }",
			"11"},
		{"variadic plus self binding, projected field",
			"({x, ...}@self: self.x) { x = 7; z = 9; }",
			"7"},
		{"variadic plus self binding, variadic field reachable",
			"({x, ...}@self: self.z) { x = 7; z = 9; }",
			"9"},
		{"with introduces a name",
			"with { a = 1; }; a + 2",
			"3"},
		{"if selects a branch, string concat",
			`if true then "a" + "b" else "c"`,
			`"ab"`},
		{"nested attribute alter composes",
			"({ a.b.c = 1; a.b.d = 2; }.a.b)",
			"{ c = 1; d = 2; }"},
		{"source-less inherit resolves against the enclosing scope",
			"let a = 1; in let inherit a; in a",
			"1"},
		{"rec set source-less inherit resolves against the enclosing scope",
			"let a = 1; in (rec { inherit a; }).a",
			"1"},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			qt.Assert(t, qt.Equals(evalRepr(t, tc.in), tc.want))
		})
	}
}

// TestEvalInfiniteRecursion covers scenario 8: a self-referential let
// binding must black-hole rather than loop or stack-overflow.
func TestEvalInfiniteRecursion(t *testing.T) {
	e, err := parser.ParseExpr([]byte("let x = x; in x"))
	qt.Assert(t, qt.IsNil(err))

	nc := newTestContext()
	qt.Assert(t, qt.IsNil(nc.Check(e)))

	_, err = nc.Normalize(e)
	qt.Assert(t, qt.Not(qt.IsNil(err)))

	var evalErr errors.Error
	qt.Assert(t, qt.IsTrue(errors.As(err, &evalErr)))
	qt.Assert(t, qt.Equals(evalErr.Code(), "infinite-recursion"))
}

// TestCheckRejectsUndefinedRecInherit covers the Check/Eval divergence a
// source-less inherit inside a rec/let previously allowed: the checker must
// reject an undefined inherited name even when recursive, exactly as
// Normalize already does, since the name resolves against the enclosing
// scope rather than the knot being built.
func TestCheckRejectsUndefinedRecInherit(t *testing.T) {
	for _, src := range []string{
		"rec { inherit undefinedName; }",
		"let inherit undefinedName; in undefinedName",
	} {
		e, err := parser.ParseExpr([]byte(src))
		qt.Assert(t, qt.IsNil(err))

		nc := newTestContext()
		err = nc.Check(e)
		qt.Assert(t, qt.Not(qt.IsNil(err)))

		var evalErr errors.Error
		qt.Assert(t, qt.IsTrue(errors.As(err, &evalErr)))
		qt.Assert(t, qt.Equals(evalErr.Code(), "undefined-variable"))
	}
}

// TestNormalizeStructuralDiff checks Normalize's output tree field-by-field
// against a hand-built expectation, rather than against evalRepr's rendered
// string, so a regression that preserves Repr's text but changes structure
// (e.g. Order vs. Fields disagreeing) would still be caught.
func TestNormalizeStructuralDiff(t *testing.T) {
	e, err := parser.ParseExpr([]byte(`{ b = [ 1 2 ]; a = "hi"; }`))
	qt.Assert(t, qt.IsNil(err))

	nc := newTestContext()
	qt.Assert(t, qt.IsNil(nc.Check(e)))

	got, err := nc.Normalize(e)
	qt.Assert(t, qt.IsNil(err))

	want := &adt.NSet{
		Order: []string{"a", "b"},
		Fields: map[string]adt.NormalValue{
			"a": &adt.NStr{Text: "hi"},
			"b": &adt.NList{Elems: []adt.NormalValue{
				&adt.NAtom{Atom: ast.Atom{Kind: ast.IntAtom, Int: apd.New(1, 0)}},
				&adt.NAtom{Atom: ast.Atom{Kind: ast.IntAtom, Int: apd.New(2, 0)}},
			}},
		},
	}

	if diff := cmp.Diff(want, got, decimalComparer); diff != "" {
		t.Fatalf("normalized tree mismatch (-want +got):\n%s", diff)
	}
}

// TestLetRejectsDynamicKey covers spec.md §4.4: a Let binding's key may not
// be a ${...} dynamic selector, unlike Set/RecSet.
func TestLetRejectsDynamicKey(t *testing.T) {
	e, err := parser.ParseExpr([]byte(`let ${"x"} = 1; in 2`))
	qt.Assert(t, qt.IsNil(err))

	nc := newTestContext()
	qt.Assert(t, qt.IsNil(nc.Check(e)))

	_, err = nc.Normalize(e)
	qt.Assert(t, qt.Not(qt.IsNil(err)))

	var evalErr errors.Error
	qt.Assert(t, qt.IsTrue(errors.As(err, &evalErr)))
	qt.Assert(t, qt.Equals(evalErr.Code(), "dynamic-key-not-allowed"))
}

// TestThunkMemoization checks that forcing the same thunk many times only
// evaluates the builtin it depends on once.
func TestThunkMemoization(t *testing.T) {
	calls := 0
	catalog := builtins.Base()
	catalog["bump"] = &adt.Builtin{Name: "bump", Fn: func(c *adt.OpContext, arg *adt.Thunk) *adt.Thunk {
		return adt.BuildThunk(nil, func(c *adt.OpContext) (adt.Value, *adt.Bottom) {
			calls++
			return adt.NewIntConstant(apd.New(int64(calls), 0)), nil
		})
	}}

	e, err := parser.ParseExpr([]byte("let shared = bump 0; in [ shared shared shared ]"))
	qt.Assert(t, qt.IsNil(err))

	nc := nixcontext.New(nixcontext.WithBuiltins(catalog))
	qt.Assert(t, qt.IsNil(nc.Check(e)))
	nv, err := nc.Normalize(e)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(adt.Repr(nv), "[ 1 1 1 ]"))
	qt.Assert(t, qt.Equals(calls, 1))
}
