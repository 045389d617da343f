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
	"github.com/google/uuid"

	"nixlang.org/go/internal/ast"
)

// thunkState is the 3-state tag of spec.md's design notes: every thunk is
// either unforced, actively being forced (a "black hole"), or forced with a
// cached result.
type thunkState int8

const (
	unforced thunkState = iota
	forcing
	forced
)

// Action is the deferred computation a Thunk wraps. It runs with the scope
// stack in effect at build_thunk time (action closures over *OpContext are
// expected to capture whatever scope they need themselves — see Scope).
type Action func(c *OpContext) (Value, *Bottom)

// Thunk is a memoized handle standing for a deferred computation that
// yields exactly one head-normal Value on force (spec.md §3). Forcing is
// memoized: it never re-executes side effects or re-enters itself; a thunk
// forced while already forcing signals InfiniteRecursion.
type Thunk struct {
	id uuid.UUID

	state  thunkState
	action Action
	value  Value
	err    *Bottom
	src    ast.Node
}

// ID returns the stable diagnostic handle used as the payload of
// InfiniteRecursion errors.
func (t *Thunk) ID() uuid.UUID { return t.id }

// buildThunk creates a memoized deferred computation. It corresponds to
// the evaluation capability's build_thunk (spec.md §4.1).
func buildThunk(src ast.Node, action Action) *Thunk {
	return &Thunk{id: uuid.New(), state: unforced, action: action, src: src}
}

// valueRef lifts an already-computed head-normal value into a Thunk,
// short-circuiting any future force (spec.md §4.1 value_ref).
func valueRef(v Value) *Thunk {
	return &Thunk{id: uuid.New(), state: forced, value: v}
}

// force drives t to head-normal form, applying the black-hole rule. It
// corresponds to the evaluation capability's force_thunk.
func (t *Thunk) force(c *OpContext) (Value, *Bottom) {
	switch t.state {
	case forced:
		return t.value, t.err
	case forcing:
		return nil, errInfiniteRecursion(t.src, t.id)
	}
	t.state = forcing
	v, err := t.action(c)
	// A successful force is the only documented transient transition
	// (forcing -> forced); a failing force also latches so repeated forces
	// return the same error rather than re-entering the action.
	t.state = forced
	t.value, t.err = v, err
	t.action = nil // release the closure; nothing else will ever call it
	return v, err
}
