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
	"fmt"
	"strings"

	"github.com/kr/pretty"

	"nixlang.org/go/internal/ast"
)

// Pretty renders a NormalValue's raw Go structure for diagnostics — the
// --debug path of cmd/nix-eval — leaning on kr/pretty rather than
// hand-rolling a dumper.
func Pretty(nv NormalValue) string {
	return pretty.Sprint(nv)
}

// Repr renders a NormalValue back into Nix-like surface syntax. It is a
// debugging convenience, not the Renderer collaborator of spec.md §6 (which
// owns bit-exact output formats); it exists so cmd/nix-eval has something
// readable to print without pulling in a real serializer.
func Repr(nv NormalValue) string {
	var b strings.Builder
	writeRepr(&b, nv)
	return b.String()
}

func writeRepr(b *strings.Builder, nv NormalValue) {
	switch x := nv.(type) {
	case *NAtom:
		writeAtomRepr(b, x.Atom)
	case *NStr:
		fmt.Fprintf(b, "%q", x.Text)
	case *NLiteralPath:
		b.WriteString(x.Path)
	case *NEnvPath:
		fmt.Fprintf(b, "<%s>", x.Name)
	case *NBuiltin:
		fmt.Fprintf(b, "<builtin %s>", x.Name)
	case *NFunction:
		b.WriteString("<function>")
	case *NList:
		b.WriteString("[ ")
		for _, e := range x.Elems {
			writeRepr(b, e)
			b.WriteString(" ")
		}
		b.WriteString("]")
	case *NSet:
		b.WriteString("{ ")
		for _, name := range x.Order {
			fmt.Fprintf(b, "%s = ", name)
			writeRepr(b, x.Fields[name])
			b.WriteString("; ")
		}
		b.WriteString("}")
	default:
		b.WriteString("<?>")
	}
}

func writeAtomRepr(b *strings.Builder, a ast.Atom) {
	switch a.Kind {
	case ast.IntAtom:
		b.WriteString(a.Int.String())
	case ast.BoolAtom:
		if a.Bool {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case ast.NullAtom:
		b.WriteString("null")
	case ast.URIAtom:
		b.WriteString(a.URI)
	}
}
