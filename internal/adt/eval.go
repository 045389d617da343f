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

// Package adt is the evaluation core: the value model, the thunk and scope
// runtime, the evaluator rules, the argument binder, attribute-path alter,
// the normalizer, and the static checker. It is the direct implementation
// of spec.md §3 and §4.
package adt

import "nixlang.org/go/internal/ast"

// Eval is the structurally recursive evaluator of spec.md §4.2: one rule
// per AST form, each returning a Thunk. Most rules defer their own work
// into the returned Thunk's Action and only force subexpressions where the
// rule in spec.md actually inspects a value.
func Eval(c *OpContext, scope *Scope, e ast.Expr) *Thunk {
	switch x := e.(type) {
	case *ast.Sym:
		return evalSym(c, scope, x)
	case *ast.Constant:
		return c.valueRef(&Constant{Atom: x.Value})
	case *ast.Str:
		return evalStr(c, scope, x)
	case *ast.LiteralPath:
		return c.valueRef(&LiteralPath{Path: x.Path})
	case *ast.EnvPath:
		return c.valueRef(&EnvPath{Name: x.Name})
	case *ast.Unary:
		return evalUnary(c, scope, x)
	case *ast.Binary:
		return evalBinary(c, scope, x)
	case *ast.Select:
		return evalSelect(c, scope, x)
	case *ast.HasAttr:
		return evalHasAttr(c, scope, x)
	case *ast.List:
		return evalList(c, scope, x)
	case *ast.Set:
		return buildSet(c, scope, x.Bindings, false, true)
	case *ast.RecSet:
		return buildSet(c, scope, x.Bindings, true, true)
	case *ast.Let:
		return evalLet(c, scope, x)
	case *ast.If:
		return evalIf(c, scope, x)
	case *ast.With:
		return evalWith(c, scope, x)
	case *ast.Assert:
		return evalAssert(c, scope, x)
	case *ast.App:
		return evalApp(c, scope, x)
	case *ast.Abs:
		return c.valueRef(&Function{Params: x.Params, Body: x.Body, Env: scope})
	default:
		return c.buildThunk(e, func(c *OpContext) (Value, *Bottom) {
			return nil, errTypeError(e, "unsupported expression form %T", e)
		})
	}
}

func evalSym(c *OpContext, scope *Scope, x *ast.Sym) *Thunk {
	if t, ok := c.lookupVar(scope, x.Name); ok {
		return t
	}
	return c.buildThunk(x, func(c *OpContext) (Value, *Bottom) {
		return nil, errUndefinedVariable(x, x.Name)
	})
}

func evalList(c *OpContext, scope *Scope, x *ast.List) *Thunk {
	elems := make([]*Thunk, len(x.Elems))
	for i, el := range x.Elems {
		elems[i] = Eval(c, scope, el)
	}
	return c.valueRef(&List{Elems: elems})
}

func evalLet(c *OpContext, scope *Scope, x *ast.Let) *Thunk {
	return c.buildThunk(x, func(c *OpContext) (Value, *Bottom) {
		// allowDynamic=false: spec.md §4.4 only permits ${...} binding keys
		// in Set/RecSet, not Let.
		inner := buildSet(c, scope, x.Bindings, true, false)
		v, err := c.ForceThunk(inner)
		if err != nil {
			return nil, err
		}
		set, ok := v.(*Set)
		if !ok {
			return nil, errNotASet(x, nil)
		}
		bodyScope := c.pushScope(scope, set, false)
		return c.ForceThunk(Eval(c, bodyScope, x.Body))
	})
}

func evalIf(c *OpContext, scope *Scope, x *ast.If) *Thunk {
	return c.buildThunk(x, func(c *OpContext) (Value, *Bottom) {
		v, err := c.ForceThunk(Eval(c, scope, x.Cond))
		if err != nil {
			return nil, err
		}
		b, ok := asBool(v)
		if !ok {
			return nil, errTypeError(x, "if condition must be a bool, got %s", KindName(v))
		}
		if b {
			return c.ForceThunk(Eval(c, scope, x.Then))
		}
		return c.ForceThunk(Eval(c, scope, x.Else))
	})
}

func evalWith(c *OpContext, scope *Scope, x *ast.With) *Thunk {
	return c.buildThunk(x, func(c *OpContext) (Value, *Bottom) {
		v, err := c.ForceThunk(Eval(c, scope, x.Scope))
		if err != nil {
			return nil, err
		}
		set, ok := v.(*Set)
		if !ok {
			return nil, errTypeError(x, "with expects a set, got %s", KindName(v))
		}
		inner := c.pushScope(scope, set, true)
		return c.ForceThunk(Eval(c, inner, x.Body))
	})
}

func evalAssert(c *OpContext, scope *Scope, x *ast.Assert) *Thunk {
	return c.buildThunk(x, func(c *OpContext) (Value, *Bottom) {
		v, err := c.ForceThunk(Eval(c, scope, x.Cond))
		if err != nil {
			return nil, err
		}
		b, ok := asBool(v)
		if !ok || !b {
			return nil, errAssertionFailed(x)
		}
		return c.ForceThunk(Eval(c, scope, x.Body))
	})
}

func evalApp(c *OpContext, scope *Scope, x *ast.App) *Thunk {
	arg := Eval(c, scope, x.Arg)
	return c.buildThunk(x, func(c *OpContext) (Value, *Bottom) {
		fv, err := c.ForceThunk(Eval(c, scope, x.Fun))
		if err != nil {
			return nil, err
		}
		switch f := fv.(type) {
		case *Function:
			bound, berr := bindParams(c, x, f.Params, arg, f.Env)
			if berr != nil {
				return nil, berr
			}
			callScope := c.pushScope(f.Env, bound, false)
			return c.ForceThunk(Eval(c, callScope, f.Body))
		case *Builtin:
			return c.ForceThunk(f.Fn(c, arg))
		default:
			return nil, errTypeError(x, "cannot apply a %s", KindName(fv))
		}
	})
}

func asBool(v Value) (bool, bool) {
	c, ok := v.(*Constant)
	if !ok || c.Atom.Kind != ast.BoolAtom {
		return false, false
	}
	return c.Atom.Bool, true
}
