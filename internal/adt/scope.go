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

// Scope is an immutable, persistent scope stack: a cons-list of frames,
// each holding one pushed Set (spec.md §3's "ordered stack of sets"). It is
// realized as a linked list rather than a mutable slice so that a Function
// value (spec.md invariant iii) can close over "the current scope stack by
// reference" simply by keeping a pointer — later pushes on the call-site
// scope can never be observed through it.
//
// Pushing a new frame never mutates an existing *Scope, so push_scope's
// "pop on all exit paths" guarantee (spec.md §4.1, §8 scope discipline) is
// automatic: the popped scope is just whatever *Scope the caller held
// before the push, unaffected by anything that happened while the child
// was in use.
type Scope struct {
	parent *Scope
	set    *Set
	isWith bool
}

// push returns a new scope with set pushed on top. isWith marks a
// with-introduced frame, which is consulted only after every lexical frame
// has been searched (spec.md §9 "Open question — with scope priority": we
// follow standard Nix semantics rather than the source's equal-priority
// behavior, and document the deviation here).
func (s *Scope) push(set *Set, isWith bool) *Scope {
	return &Scope{parent: s, set: set, isWith: isWith}
}

// lookup implements lookup_var's top-down scan (spec.md §4.1), with lexical
// frames taking priority over with frames regardless of relative nesting.
func (s *Scope) lookup(name string) (*Thunk, bool) {
	for p := s; p != nil; p = p.parent {
		if p.isWith {
			continue
		}
		if t, ok := p.set.Fields[name]; ok {
			return t, true
		}
	}
	for p := s; p != nil; p = p.parent {
		if !p.isWith {
			continue
		}
		if t, ok := p.set.Fields[name]; ok {
			return t, true
		}
	}
	return nil, false
}
