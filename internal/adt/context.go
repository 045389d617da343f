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

import "nixlang.org/go/internal/ast"

// Importer is the collaborator behind import_file (spec.md §4.1): given a
// resolved path it parses and returns the AST of that file. Parsing itself
// is out of scope for this package (spec.md §1); the evaluator only needs
// something that hands back an Expr to evaluate.
type Importer interface {
	ImportPath(path string) (ast.Expr, error)
}

// EnvPathResolver is the NIX_PATH collaborator (spec.md §6): given an
// EnvPath token it returns a filesystem path, or an error if the token does
// not resolve.
type EnvPathResolver interface {
	Resolve(token string) (string, error)
}

// Tracer is an optional side channel an embedder can supply to observe
// scope pushes and thunk forces without the evaluator itself doing any
// logging (spec.md has no logging requirement for the core; see
// SPEC_FULL.md §10.1).
type Tracer interface {
	TraceForce(t *Thunk)
	TracePushScope(isWith bool)
}

// OpContext is the evaluation capability of spec.md §4.1: everything the
// evaluator needs that is not the scope itself (which is threaded
// explicitly through Eval, per the "explicit pass" alternative noted in
// spec.md §9's design notes) or the expression being evaluated.
type OpContext struct {
	Importer Importer
	EnvPath  EnvPathResolver
	Tracer   Tracer

	// RootScope is the scope every top-level evaluation runs under (e.g.
	// the builtins catalog pushed by nixcontext.WithBuiltins). ImportFile
	// evaluates an imported file's body under this same scope rather than
	// a bare nil one, so bare names like toString and import resolve
	// inside imported files exactly as they do at the top level.
	RootScope *Scope
}

// NewContext builds an OpContext with the given collaborators. Either may
// be nil; an import with a nil Importer fails with ImportFailed. The
// EnvPath resolver is stored but no evaluation rule calls it: EnvPath
// values are never resolved to filesystem paths.
func NewContext(importer Importer, envPath EnvPathResolver) *OpContext {
	return &OpContext{Importer: importer, EnvPath: envPath}
}

// buildThunk is build_thunk from spec.md §4.1.
func (c *OpContext) buildThunk(src ast.Node, action Action) *Thunk {
	return buildThunk(src, action)
}

// valueRef is value_ref from spec.md §4.1.
func (c *OpContext) valueRef(v Value) *Thunk {
	return valueRef(v)
}

// ForceThunk is force_thunk from spec.md §4.1, exported for collaborators
// (the normalizer, builtins) that need to force a thunk themselves.
func (c *OpContext) ForceThunk(t *Thunk) (Value, *Bottom) {
	if c.Tracer != nil {
		c.Tracer.TraceForce(t)
	}
	return t.force(c)
}

// pushScope is push_scope from spec.md §4.1, realized as returning the
// child scope rather than taking a callback — see Scope's doc comment for
// why the immutable-list representation makes this equivalent.
func (c *OpContext) pushScope(scope *Scope, set *Set, isWith bool) *Scope {
	if c.Tracer != nil {
		c.Tracer.TracePushScope(isWith)
	}
	return scope.push(set, isWith)
}

// lookupVar is lookup_var from spec.md §4.1.
func (c *OpContext) lookupVar(scope *Scope, name string) (*Thunk, bool) {
	if scope == nil {
		return nil, false
	}
	return scope.lookup(name)
}

// ImportFile is import_file from spec.md §4.1, exported so that the
// `import` builtin (outside this package, per spec.md's "builtins library
// is external" Non-goal) can drive it.
func (c *OpContext) ImportFile(src ast.Node, pathThunk *Thunk) *Thunk {
	return c.buildThunk(src, func(c *OpContext) (Value, *Bottom) {
		v, err := c.ForceThunk(pathThunk)
		if err != nil {
			return nil, err
		}
		var path string
		switch p := v.(type) {
		case *LiteralPath:
			path = p.Path
		case *Str:
			path = p.Text
		default:
			return nil, errTypeError(src, "import expects a path, got %s", KindName(v))
		}
		if c.Importer == nil {
			return nil, errImportFailed(src, path, errNoImporter)
		}
		expr, ierr := c.Importer.ImportPath(path)
		if ierr != nil {
			return nil, errImportFailed(src, path, ierr)
		}
		rv, rerr := c.ForceThunk(Eval(c, c.RootScope, expr))
		return rv, rerr
	})
}

var errNoImporter = importErr("no Importer configured")

type importErr string

func (e importErr) Error() string { return string(e) }
