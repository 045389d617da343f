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

	"github.com/google/uuid"

	"nixlang.org/go/internal/ast"
	"nixlang.org/go/token"
)

// ErrorCode is the closed taxonomy of evaluation failures from spec.md §7.
type ErrorCode int8

const (
	UndefinedVariable ErrorCode = iota
	TypeError
	AttrMissing
	NotASet
	DynamicKeyNotAllowed
	MissingArg
	UnexpectedArg
	AssertionFailed
	DivisionByZero
	InfiniteRecursion
	ImportFailed
	CoercionError
)

func (c ErrorCode) String() string {
	switch c {
	case UndefinedVariable:
		return "undefined variable"
	case TypeError:
		return "type error"
	case AttrMissing:
		return "attribute missing"
	case NotASet:
		return "not a set"
	case DynamicKeyNotAllowed:
		return "dynamic key not allowed"
	case MissingArg:
		return "missing argument"
	case UnexpectedArg:
		return "unexpected argument"
	case AssertionFailed:
		return "assertion failed"
	case DivisionByZero:
		return "division by zero"
	case InfiniteRecursion:
		return "infinite recursion"
	case ImportFailed:
		return "import failed"
	case CoercionError:
		return "coercion error"
	default:
		return "error"
	}
}

// Bottom is the evaluator's internal error value: it carries a position, an
// ErrorCode, and enough payload to format one of the kinds in spec.md §7. It
// does not implement error directly; nixeval/errors wraps it for that.
type Bottom struct {
	Src  ast.Node
	Code ErrorCode
	Msg  string

	// Path is set for AttrMissing and NotASet.
	Path []string
	// ThunkID is set for InfiniteRecursion.
	ThunkID uuid.UUID
}

func (b *Bottom) Position() token.Pos {
	if b.Src == nil {
		return token.NoPos
	}
	return b.Src.Pos()
}

func (b *Bottom) Error() string {
	if b.Msg != "" {
		return b.Msg
	}
	return b.Code.String()
}

func errf(src ast.Node, code ErrorCode, format string, args ...interface{}) *Bottom {
	return &Bottom{Src: src, Code: code, Msg: fmt.Sprintf(format, args...)}
}

func errUndefinedVariable(src ast.Node, name string) *Bottom {
	return errf(src, UndefinedVariable, "undefined variable %q", name)
}

func errTypeError(src ast.Node, format string, args ...interface{}) *Bottom {
	return errf(src, TypeError, format, args...)
}

func errAttrMissing(src ast.Node, path []string) *Bottom {
	b := errf(src, AttrMissing, "attribute %q missing", joinPath(path))
	b.Path = path
	return b
}

func errNotASet(src ast.Node, path []string) *Bottom {
	b := errf(src, NotASet, "%q is not a set", joinPath(path))
	b.Path = path
	return b
}

func errDynamicKeyNotAllowed(src ast.Node) *Bottom {
	return errf(src, DynamicKeyNotAllowed, "dynamic key not allowed here")
}

func errMissingArg(src ast.Node, name string) *Bottom {
	return errf(src, MissingArg, "missing argument %q", name)
}

func errUnexpectedArg(src ast.Node, name string) *Bottom {
	return errf(src, UnexpectedArg, "unexpected argument %q", name)
}

func errAssertionFailed(src ast.Node) *Bottom {
	return errf(src, AssertionFailed, "assertion failed")
}

func errDivisionByZero(src ast.Node) *Bottom {
	return errf(src, DivisionByZero, "division by zero")
}

func errInfiniteRecursion(src ast.Node, id uuid.UUID) *Bottom {
	b := errf(src, InfiniteRecursion, "infinite recursion (thunk %s)", id)
	b.ThunkID = id
	return b
}

func errImportFailed(src ast.Node, path string, cause error) *Bottom {
	return errf(src, ImportFailed, "import of %q failed: %v", path, cause)
}

func errCoercionError(src ast.Node, from, to string) *Bottom {
	return errf(src, CoercionError, "cannot coerce %s to %s", from, to)
}

func joinPath(path []string) string {
	s := ""
	for i, p := range path {
		if i > 0 {
			s += "."
		}
		s += p
	}
	return s
}
