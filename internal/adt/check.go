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

// staticFrame is the static checker's stand-in for a pushed Scope frame: it
// only ever needs to know which names are in scope, never their values
// (spec.md §4.7 uses nullVal as every placeholder; this implementation
// skips allocating the placeholder thunks entirely and tracks names
// instead, which is observationally identical for a pass that never
// forces anything).
type staticFrame struct {
	names  map[string]bool
	isWith bool
}

// CheckStatic is the second traversal of spec.md §4.7: it verifies every
// reachable Sym resolves under some scope, without computing any value. It
// is a deliberately weak lint, not a type checker — operators and
// applications are not inspected at all.
//
// A `with` expression makes static resolution of names it might supply
// impossible (its set is only known at eval time), so once a with frame is
// on the stack, a Sym that resolves against no lexical frame is given the
// benefit of the doubt rather than reported as undefined.
func CheckStatic(e ast.Expr) *Bottom {
	return checkExpr(e, nil)
}

// CheckStaticIn is CheckStatic seeded with a base frame of names that are
// already bound (e.g. a builtin catalog), for callers that evaluate under a
// root RootScope rather than a bare nil scope.
func CheckStaticIn(e ast.Expr, names map[string]bool) *Bottom {
	return checkExpr(e, []staticFrame{{names: names}})
}

func checkExpr(e ast.Expr, stack []staticFrame) *Bottom {
	switch x := e.(type) {
	case *ast.Sym:
		return checkSym(x, stack)
	case *ast.Constant, *ast.LiteralPath, *ast.EnvPath:
		return nil
	case *ast.Str:
		for _, p := range x.Parts {
			if p.Expr != nil {
				if err := checkExpr(p.Expr, stack); err != nil {
					return err
				}
			}
		}
		return nil
	case *ast.List:
		for _, el := range x.Elems {
			if err := checkExpr(el, stack); err != nil {
				return err
			}
		}
		return nil
	case *ast.Unary:
		return checkExpr(x.X, stack)
	case *ast.Binary:
		if err := checkExpr(x.X, stack); err != nil {
			return err
		}
		return checkExpr(x.Y, stack)
	case *ast.If:
		if err := checkExpr(x.Cond, stack); err != nil {
			return err
		}
		if err := checkExpr(x.Then, stack); err != nil {
			return err
		}
		return checkExpr(x.Else, stack)
	case *ast.Assert:
		if err := checkExpr(x.Cond, stack); err != nil {
			return err
		}
		return checkExpr(x.Body, stack)
	case *ast.App:
		if err := checkExpr(x.Fun, stack); err != nil {
			return err
		}
		return checkExpr(x.Arg, stack)
	case *ast.Select:
		if err := checkExpr(x.X, stack); err != nil {
			return err
		}
		if err := checkSelectorPath(x.Path, stack); err != nil {
			return err
		}
		if x.Default != nil {
			return checkExpr(x.Default, stack)
		}
		return nil
	case *ast.HasAttr:
		if err := checkExpr(x.X, stack); err != nil {
			return err
		}
		return checkSelectorPath(x.Path, stack)
	case *ast.Set:
		return checkBindings(x.Bindings, stack, false)
	case *ast.RecSet:
		return checkBindings(x.Bindings, stack, true)
	case *ast.Let:
		inner := pushBindingNames(x.Bindings, stack)
		if err := checkBindings(x.Bindings, stack, true); err != nil {
			return err
		}
		return checkExpr(x.Body, inner)
	case *ast.With:
		if err := checkExpr(x.Scope, stack); err != nil {
			return err
		}
		inner := append(append([]staticFrame(nil), stack...), staticFrame{isWith: true})
		return checkExpr(x.Body, inner)
	case *ast.Abs:
		inner := pushParamNames(x.Params, stack)
		if x.Params.Kind != ast.NamedParam {
			for _, f := range x.Params.Fields {
				if f.Default != nil {
					if err := checkExpr(f.Default, inner); err != nil {
						return err
					}
				}
			}
		}
		return checkExpr(x.Body, inner)
	}
	return nil
}

func checkSym(x *ast.Sym, stack []staticFrame) *Bottom {
	hasWith := false
	for i := len(stack) - 1; i >= 0; i-- {
		f := stack[i]
		if f.isWith {
			hasWith = true
			continue
		}
		if f.names[x.Name] {
			return nil
		}
	}
	if hasWith {
		return nil
	}
	return errUndefinedVariable(x, x.Name)
}

func checkSelectorPath(path []ast.Selector, stack []staticFrame) *Bottom {
	for _, sel := range path {
		if sel.Dynamic != nil {
			if err := checkExpr(sel.Dynamic, stack); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkBindings(bindings []ast.Binding, stack []staticFrame, recursive bool) *Bottom {
	rhsStack := stack
	if recursive {
		rhsStack = pushBindingNames(bindings, stack)
	}
	for _, raw := range bindings {
		if raw.Kind == ast.InheritBinding {
			if raw.Source != nil {
				if err := checkExpr(raw.Source, stack); err != nil {
					return err
				}
			} else {
				// Source-less inherit always resolves against the
				// enclosing scope, never the knot being built (see
				// setbuild.go's buildSet), so this must be checked
				// unconditionally — not just outside a rec/let.
				for _, name := range raw.Names {
					if err := checkSym(&ast.Sym{TokPos: raw.Pos, Name: name}, stack); err != nil {
						return err
					}
				}
			}
			continue
		}
		if err := checkSelectorPath(raw.Path, stack); err != nil {
			return err
		}
		if err := checkExpr(raw.Value, rhsStack); err != nil {
			return err
		}
	}
	return nil
}

func pushBindingNames(bindings []ast.Binding, stack []staticFrame) []staticFrame {
	names := map[string]bool{}
	for _, b := range bindings {
		if b.Kind == ast.InheritBinding {
			for _, n := range b.Names {
				names[n] = true
			}
			continue
		}
		if len(b.Path) > 0 {
			names[b.Path[0].Name] = true
		}
	}
	return append(append([]staticFrame(nil), stack...), staticFrame{names: names})
}

func pushParamNames(params ast.Params, stack []staticFrame) []staticFrame {
	names := map[string]bool{}
	switch params.Kind {
	case ast.NamedParam:
		names[params.Name] = true
	default:
		for _, f := range params.Fields {
			names[f.Name] = true
		}
		if params.SelfName != "" {
			names[params.SelfName] = true
		}
	}
	return append(append([]staticFrame(nil), stack...), staticFrame{names: names})
}
