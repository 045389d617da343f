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

// Package errors defines the public error type returned by this module's
// evaluator: a positioned Error interface with an error code, a path and a
// message, rather than a bare Go error string.
package errors

import (
	"errors"
	"fmt"

	"nixlang.org/go/internal/adt"
	"nixlang.org/go/token"
)

// Error is the public evaluation-failure type.
type Error interface {
	error

	// Position returns the primary source position of the failure.
	Position() token.Pos

	// Code names which of spec.md §7's error kinds this is, rendered as a
	// stable lower-case identifier (e.g. "undefined-variable").
	Code() string

	// Path returns the attribute path implicated in the failure, if any
	// (set for AttrMissing and NotASet).
	Path() []string

	// Msg returns the message as a format string and its arguments. Errors
	// wrapped from the evaluator carry an already formatted message and no
	// arguments.
	Msg() (format string, args []interface{})
}

type wrapped struct {
	b *adt.Bottom
}

// Wrap adapts an internal/adt.Bottom into the public Error interface. It
// returns nil for a nil Bottom, so callers can write
// `return errors.Wrap(err)` directly from a function returning *adt.Bottom.
func Wrap(b *adt.Bottom) Error {
	if b == nil {
		return nil
	}
	return &wrapped{b}
}

func (w *wrapped) Error() string          { return w.b.Error() }
func (w *wrapped) Position() token.Pos    { return w.b.Position() }
func (w *wrapped) Path() []string         { return w.b.Path }
func (w *wrapped) Msg() (string, []interface{}) { return w.b.Msg, nil }

func (w *wrapped) Code() string {
	switch w.b.Code {
	case adt.UndefinedVariable:
		return "undefined-variable"
	case adt.TypeError:
		return "type-error"
	case adt.AttrMissing:
		return "attr-missing"
	case adt.NotASet:
		return "not-a-set"
	case adt.DynamicKeyNotAllowed:
		return "dynamic-key-not-allowed"
	case adt.MissingArg:
		return "missing-arg"
	case adt.UnexpectedArg:
		return "unexpected-arg"
	case adt.AssertionFailed:
		return "assertion-failed"
	case adt.DivisionByZero:
		return "division-by-zero"
	case adt.InfiniteRecursion:
		return "infinite-recursion"
	case adt.ImportFailed:
		return "import-failed"
	case adt.CoercionError:
		return "coercion-error"
	default:
		return "error"
	}
}

// Is reports whether any error in err's chain matches target, delegating
// to the standard library.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain assignable to target, delegating
// to the standard library.
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Newf creates a plain Go error for use by collaborators (e.g. builtins)
// outside the core evaluator. The result does not implement Error: it has no
// position, code or path.
func Newf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
