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
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"nixlang.org/go/internal/ast"
)

// rootCollator orders Set field names for rendering (spec.md §6: "it must
// iterate keys in sorted order"). Root (unlocalized) collation is used
// rather than a bare byte-wise sort.Strings so that, should this evaluator
// ever be embedded somewhere that renders to a human, key order already
// matches what every other text-facing corner of this stack uses for
// sorting names.
var rootCollator = collate.New(language.Und)

// NormalValue is a value in which every recursive slot is itself in normal
// form (spec.md §3). It is produced only by Normalize.
type NormalValue interface {
	normalValueNode()
}

type NAtom struct{ Atom ast.Atom }

func (*NAtom) normalValueNode() {}

type NStr struct {
	Text    string
	Context StringContext
}

func (*NStr) normalValueNode() {}

type NList struct{ Elems []NormalValue }

func (*NList) normalValueNode() {}

// NSet's Order holds names in the sorted order used for rendering; it is
// not insertion order.
type NSet struct {
	Fields map[string]NormalValue
	Order  []string
}

func (*NSet) normalValueNode() {}

// NFunction keeps the closure opaque: an unapplied function has no bound
// scope to evaluate its body under, so — unlike List and Set — there is no
// further substructure to force. (See DESIGN.md for why spec.md's "for
// Function, also force-and-normalize the body thunk" cannot apply to a
// function with no argument yet bound.)
type NFunction struct {
	Params ast.Params
	Body   ast.Expr
}

func (*NFunction) normalValueNode() {}

type NLiteralPath struct{ Path string }

func (*NLiteralPath) normalValueNode() {}

type NEnvPath struct{ Name string }

func (*NEnvPath) normalValueNode() {}

type NBuiltin struct{ Name string }

func (*NBuiltin) normalValueNode() {}

// Normalize forces t once, then recursively normalizes every recursive
// slot of the resulting Value (spec.md §4.6). Cycles manifest as black-hole
// InfiniteRecursion failures surfacing from the recursive ForceThunk calls.
func Normalize(c *OpContext, t *Thunk) (NormalValue, *Bottom) {
	v, err := c.ForceThunk(t)
	if err != nil {
		return nil, err
	}
	return normalizeValue(c, v)
}

func normalizeValue(c *OpContext, v Value) (NormalValue, *Bottom) {
	switch x := v.(type) {
	case *Constant:
		return &NAtom{Atom: x.Atom}, nil
	case *Str:
		return &NStr{Text: x.Text, Context: x.Context}, nil
	case *LiteralPath:
		return &NLiteralPath{Path: x.Path}, nil
	case *EnvPath:
		return &NEnvPath{Name: x.Name}, nil
	case *Builtin:
		return &NBuiltin{Name: x.Name}, nil
	case *List:
		elems := make([]NormalValue, len(x.Elems))
		for i, el := range x.Elems {
			nv, err := Normalize(c, el)
			if err != nil {
				return nil, err
			}
			elems[i] = nv
		}
		return &NList{Elems: elems}, nil
	case *Set:
		names := SortedFieldNames(x)
		out := &NSet{Fields: make(map[string]NormalValue, len(names)), Order: names}
		for _, name := range names {
			nv, err := Normalize(c, x.Fields[name])
			if err != nil {
				return nil, err
			}
			out.Fields[name] = nv
		}
		return out, nil
	case *Function:
		return &NFunction{Params: x.Params, Body: x.Body}, nil
	default:
		return nil, errTypeError(nil, "cannot normalize a value of unknown kind %T", v)
	}
}

// SortedFieldNames returns a Set's field names in rendering order.
func SortedFieldNames(s *Set) []string {
	names := append([]string(nil), s.Order...)
	rootCollator.SortStrings(names)
	return names
}
