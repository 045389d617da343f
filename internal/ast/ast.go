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

// Package ast declares the types used to represent the abstract syntax tree
// of a Nix expression. Lexing and parsing are out of scope for the evaluator
// core (spec.md §1): this package defines the fixed-point the parser in
// internal/parser produces and the evaluator in internal/adt consumes.
package ast

import (
	"github.com/cockroachdb/apd/v3"

	"nixlang.org/go/token"
)

// Node is implemented by every AST node.
type Node interface {
	Pos() token.Pos
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

// AtomKind distinguishes the scalar shapes of Atom.
type AtomKind int8

const (
	IntAtom AtomKind = iota
	BoolAtom
	NullAtom
	URIAtom
)

// Atom is a primitive scalar literal: an integer, boolean, null, or URI.
type Atom struct {
	Kind AtomKind
	Int  *apd.Decimal // valid when Kind == IntAtom
	Bool bool         // valid when Kind == BoolAtom
	URI  string       // valid when Kind == URIAtom
}

// NullAtomValue is the single Null atom literal.
var NullAtomValue = Atom{Kind: NullAtom}

// UnaryOp enumerates the unary operators.
type UnaryOp int8

const (
	NNeg UnaryOp = iota // - (arithmetic negation)
	NNot                // ! (boolean negation)
)

// BinaryOp enumerates the binary operators.
type BinaryOp int8

const (
	NEq BinaryOp = iota
	NNEq
	NLt
	NLte
	NGt
	NGte
	NAnd
	NOr
	NImpl
	NPlus
	NMinus
	NMult
	NDiv
	NUpdate
	NConcat
)

// Sym is a variable reference.
type Sym struct {
	TokPos token.Pos
	Name   string
}

func (x *Sym) Pos() token.Pos { return x.TokPos }
func (*Sym) exprNode()        {}

// Constant lifts a literal Atom.
type Constant struct {
	TokPos token.Pos
	Value  Atom
}

func (x *Constant) Pos() token.Pos { return x.TokPos }
func (*Constant) exprNode()        {}

// StrPart is one fragment of a string literal: either a literal run of text
// or an antiquotation expression (when Expr != nil).
type StrPart struct {
	Text string
	Expr Expr
}

// Str is a string literal built from interpolated parts.
type Str struct {
	TokPos token.Pos
	Parts  []StrPart
}

func (x *Str) Pos() token.Pos { return x.TokPos }
func (*Str) exprNode()        {}

// LiteralPath is a filesystem path literal, e.g. ./foo/bar.
type LiteralPath struct {
	TokPos token.Pos
	Path   string
}

func (x *LiteralPath) Pos() token.Pos { return x.TokPos }
func (*LiteralPath) exprNode()        {}

// EnvPath is a lookup-path literal, e.g. <nixpkgs>.
type EnvPath struct {
	TokPos token.Pos
	Name   string
}

func (x *EnvPath) Pos() token.Pos { return x.TokPos }
func (*EnvPath) exprNode()        {}

// List is a list literal.
type List struct {
	TokPos token.Pos
	Elems  []Expr
}

func (x *List) Pos() token.Pos { return x.TokPos }
func (*List) exprNode()        {}

// Selector is one component of an attribute path: either a static name or
// a dynamic antiquotation that must evaluate to a string.
type Selector struct {
	Name    string
	Dynamic Expr // non-nil for a dynamic ("${...}") key
}

// IsDynamic reports whether the selector must be evaluated to resolve its
// key.
func (s Selector) IsDynamic() bool { return s.Dynamic != nil }

// BindingKind distinguishes NamedVar from Inherit bindings (spec.md §9).
type BindingKind int8

const (
	NamedVarBinding BindingKind = iota
	InheritBinding
)

// Binding is one entry of a Set, RecSet, or Let: either `path = value;` or
// `inherit [(source)] names...;`.
type Binding struct {
	Kind BindingKind
	Pos  token.Pos

	// NamedVar fields.
	Path  []Selector
	Value Expr

	// Inherit fields.
	Names  []string
	Source Expr // nil: inherit from the enclosing scope
}

// Set is a plain (non-recursive) attribute set literal.
type Set struct {
	TokPos   token.Pos
	Bindings []Binding
}

func (x *Set) Pos() token.Pos { return x.TokPos }
func (*Set) exprNode()        {}

// RecSet is a `rec { ... }` attribute set literal: bindings see each other.
type RecSet struct {
	TokPos   token.Pos
	Bindings []Binding
}

func (x *RecSet) Pos() token.Pos { return x.TokPos }
func (*RecSet) exprNode()        {}

// Let is a `let ... in ...` expression; bindings are evaluated as a
// recursive set and pushed as scope for Body.
type Let struct {
	TokPos   token.Pos
	Bindings []Binding
	Body     Expr
}

func (x *Let) Pos() token.Pos { return x.TokPos }
func (*Let) exprNode()        {}

// If is a conditional expression.
type If struct {
	TokPos token.Pos
	Cond   Expr
	Then   Expr
	Else   Expr
}

func (x *If) Pos() token.Pos { return x.TokPos }
func (*If) exprNode()        {}

// With pushes Scope's attribute set and evaluates Body under it.
type With struct {
	TokPos token.Pos
	Scope  Expr
	Body   Expr
}

func (x *With) Pos() token.Pos { return x.TokPos }
func (*With) exprNode()        {}

// Assert requires Cond to evaluate to true before evaluating Body.
type Assert struct {
	TokPos token.Pos
	Cond   Expr
	Body   Expr
}

func (x *Assert) Pos() token.Pos { return x.TokPos }
func (*Assert) exprNode()        {}

// App is function application.
type App struct {
	TokPos token.Pos
	Fun    Expr
	Arg    Expr
}

func (x *App) Pos() token.Pos { return x.TokPos }
func (*App) exprNode()        {}

// ParamKind distinguishes the three parameter shapes of spec.md §3.
type ParamKind int8

const (
	NamedParam ParamKind = iota
	FixedParamSet
	VariadicParamSet
)

// Field is one entry of a parameter set: a name, optionally with a default
// expression.
type Field struct {
	Name    string
	Default Expr // nil: required
}

// Params describes a function's parameter shape.
type Params struct {
	Kind ParamKind

	// NamedParam.
	Name string

	// FixedParamSet / VariadicParamSet.
	Fields []Field

	// SelfName optionally binds the constructed argument set under this
	// name inside the body; "" means no self-binding.
	SelfName string
}

// Abs is a function literal (lambda).
type Abs struct {
	TokPos token.Pos
	Params Params
	Body   Expr
}

func (x *Abs) Pos() token.Pos { return x.TokPos }
func (*Abs) exprNode()        {}

// Unary is a unary operator application.
type Unary struct {
	TokPos token.Pos
	Op     UnaryOp
	X      Expr
}

func (x *Unary) Pos() token.Pos { return x.TokPos }
func (*Unary) exprNode()        {}

// Binary is a binary operator application.
type Binary struct {
	TokPos token.Pos
	Op     BinaryOp
	X, Y   Expr
}

func (x *Binary) Pos() token.Pos { return x.TokPos }
func (*Binary) exprNode()        {}

// Select is attribute-path lookup, with an optional `or` default.
type Select struct {
	TokPos  token.Pos
	X       Expr
	Path    []Selector
	Default Expr // nil: no "or" fallback
}

func (x *Select) Pos() token.Pos { return x.TokPos }
func (*Select) exprNode()        {}

// HasAttr is the `?` membership test. Per spec.md §4.2 its path must have
// length 1.
type HasAttr struct {
	TokPos token.Pos
	X      Expr
	Path   []Selector
}

func (x *HasAttr) Pos() token.Pos { return x.TokPos }
func (*HasAttr) exprNode()        {}
