// Copyright 2026 The AudioLock Authors.
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

// Package ordercheck defines an analyzer that checks the declared
// lock-order discipline of omutex mutexes.
//
// The analyzer resolves each mutex's order from its construction site
// (NewMutex, NewUnordered or Init with a constant order) and then walks every
// function body in source order, tracking which mutexes are held. Acquiring
// a mutex whose order is not strictly greater than every held order is
// reported: such code can deadlock against another thread following the
// declared order, whether or not this run would.
//
// Sets acquired through LockAll are registered as held but exempt from the
// check, matching the runtime guarantee: a jointly-acquired set needs no
// internal ordering, while anything locked separately on top of it still
// does.
//
// The analysis is intra-procedural and flow-insensitive across branches; it
// is a reviewer's tool, not a soundness proof.
package ordercheck

import (
	"go/ast"
	"go/constant"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/ast/astutil"
)

// Analyzer implements the lock-order check.
var Analyzer = &analysis.Analyzer{
	Name: "ordercheck",
	Doc:  "checks that omutex mutexes are acquired in declared order",
	Run:  run,
}

const omutexPath = "audiolock.dev/audiolock/pkg/omutex"

// mutexKey identifies a mutex within the analyzed package: the object of a
// local/package variable, or of a struct field. Distinct instances sharing a
// field are conflated, which is exactly the conservative direction for an
// order check (they share an order anyway).
type mutexKey = types.Object

type heldLock struct {
	key     mutexKey
	order   int64
	checked bool
}

type checker struct {
	pass *analysis.Pass

	// orders maps each known mutex to its declared order value.
	orders map[mutexKey]int64

	// bindings maps a UniqueLock variable to the mutex it owns.
	bindings map[types.Object]mutexKey
}

func run(pass *analysis.Pass) (any, error) {
	c := &checker{
		pass:     pass,
		orders:   make(map[mutexKey]int64),
		bindings: make(map[types.Object]mutexKey),
	}
	for _, f := range pass.Files {
		c.collectOrders(f)
		c.collectBindings(f)
	}
	for _, f := range pass.Files {
		for _, decl := range f.Decls {
			if fn, ok := decl.(*ast.FuncDecl); ok && fn.Body != nil {
				c.checkFunc(fn.Body)
			}
		}
	}
	return nil, nil
}

// isOmutexFunc reports whether call is a call of the named package-level
// omutex function.
func (c *checker) isOmutexFunc(call *ast.CallExpr, name string) bool {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != name {
		return false
	}
	obj := c.pass.TypesInfo.Uses[sel.Sel]
	if obj == nil || obj.Pkg() == nil {
		return false
	}
	return obj.Pkg().Path() == omutexPath
}

// isMutexMethod reports whether call is a method call with the given name on
// an omutex type, returning the receiver expression.
func (c *checker) isMutexMethod(call *ast.CallExpr, names ...string) (ast.Expr, string, bool) {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return nil, "", false
	}
	obj := c.pass.TypesInfo.Uses[sel.Sel]
	if obj == nil || obj.Pkg() == nil || obj.Pkg().Path() != omutexPath {
		return nil, "", false
	}
	for _, n := range names {
		if sel.Sel.Name == n {
			return sel.X, n, true
		}
	}
	return nil, "", false
}

// keyOf resolves a mutex expression (identifier or field selector) to its
// object.
func (c *checker) keyOf(e ast.Expr) mutexKey {
	switch e := astutil.Unparen(e).(type) {
	case *ast.Ident:
		return c.pass.TypesInfo.ObjectOf(e)
	case *ast.SelectorExpr:
		return c.pass.TypesInfo.ObjectOf(e.Sel)
	case *ast.UnaryExpr:
		return c.keyOf(e.X)
	}
	return nil
}

// constOrder extracts the numeric value of a constant order argument.
func (c *checker) constOrder(e ast.Expr) (int64, bool) {
	tv, ok := c.pass.TypesInfo.Types[e]
	if !ok || tv.Value == nil || tv.Value.Kind() != constant.Int {
		return 0, false
	}
	return constant.Int64Val(tv.Value)
}

// unorderedValue is the order assigned by NewUnordered: higher than every
// declared order, so holding one always trips the check.
func (c *checker) unorderedValue() int64 {
	pkg := c.omutexPkg()
	if pkg == nil {
		return int64(^uint32(0))
	}
	if o := pkg.Scope().Lookup("OrderUnordered"); o != nil {
		if cn, ok := o.(*types.Const); ok {
			v, _ := constant.Int64Val(cn.Val())
			return v
		}
	}
	return int64(^uint32(0))
}

func (c *checker) omutexPkg() *types.Package {
	for _, imp := range c.pass.Pkg.Imports() {
		if imp.Path() == omutexPath {
			return imp
		}
	}
	return nil
}

// collectOrders records the declared order of every mutex constructed in f.
func (c *checker) collectOrders(f *ast.File) {
	ast.Inspect(f, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.ValueSpec:
			for i, rhs := range n.Values {
				if i >= len(n.Names) {
					break
				}
				call, ok := astutil.Unparen(rhs).(*ast.CallExpr)
				if !ok {
					continue
				}
				key := c.pass.TypesInfo.ObjectOf(n.Names[i])
				if key == nil {
					continue
				}
				if c.isOmutexFunc(call, "NewMutex") && len(call.Args) == 1 {
					if v, ok := c.constOrder(call.Args[0]); ok {
						c.orders[key] = v
					}
				} else if c.isOmutexFunc(call, "NewUnordered") {
					c.orders[key] = c.unorderedValue()
				}
			}
		case *ast.AssignStmt:
			for i, rhs := range n.Rhs {
				if i >= len(n.Lhs) {
					break
				}
				call, ok := astutil.Unparen(rhs).(*ast.CallExpr)
				if !ok {
					continue
				}
				key := c.keyOf(n.Lhs[i])
				if key == nil {
					continue
				}
				if c.isOmutexFunc(call, "NewMutex") && len(call.Args) == 1 {
					if v, ok := c.constOrder(call.Args[0]); ok {
						c.orders[key] = v
					}
				} else if c.isOmutexFunc(call, "NewUnordered") {
					c.orders[key] = c.unorderedValue()
				}
			}
		case *ast.CallExpr:
			if recv, _, ok := c.isMutexMethod(n, "Init"); ok && len(n.Args) == 1 {
				if key := c.keyOf(recv); key != nil {
					if v, ok := c.constOrder(n.Args[0]); ok {
						c.orders[key] = v
					}
				}
			}
		}
		return true
	})
}

// checkFunc walks one function body in source order, maintaining the held
// set.
func (c *checker) checkFunc(body *ast.BlockStmt) {
	var held []heldLock
	ast.Inspect(body, func(n ast.Node) bool {
		// Deferred releases run at function exit, not at their textual
		// position; skipping them keeps the held set conservative.
		if _, ok := n.(*ast.DeferStmt); ok {
			return false
		}
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}

		// u := omutex.Acquire(m): locks m and binds u to it.
		if c.isOmutexFunc(call, "Acquire") && len(call.Args) == 1 {
			if key := c.keyOf(call.Args[0]); key != nil {
				held = c.acquire(held, call, key, true)
			}
			return true
		}

		// omutex.LockAll(...): held but exempt from the order check.
		if c.isOmutexFunc(call, "LockAll") {
			for _, arg := range call.Args {
				if key := c.keyOf(arg); key != nil {
					held = c.acquire(held, call, key, false)
				}
			}
			return true
		}

		recv, name, ok := c.isMutexMethod(call,
			"Lock", "TryLock", "TryLockFor", "TryLockUntil", "Unlock", "Release")
		if !ok {
			return true
		}
		key := c.resolve(c.keyOf(recv))
		if key == nil {
			return true
		}
		switch name {
		case "Unlock", "Release":
			held = release(held, key)
		default:
			held = c.acquire(held, call, key, true)
		}
		return true
	})
}

// collectBindings records u -> m for every u := omutex.Acquire(m) in f, so
// that method calls on the UniqueLock resolve to the owned mutex.
func (c *checker) collectBindings(f *ast.File) {
	ast.Inspect(f, func(n ast.Node) bool {
		assign, ok := n.(*ast.AssignStmt)
		if !ok || len(assign.Lhs) != 1 || len(assign.Rhs) != 1 {
			return true
		}
		call, ok := astutil.Unparen(assign.Rhs[0]).(*ast.CallExpr)
		if !ok || !c.isOmutexFunc(call, "Acquire") || len(call.Args) != 1 {
			return true
		}
		u := c.keyOf(assign.Lhs[0])
		m := c.keyOf(call.Args[0])
		if u != nil && m != nil {
			c.bindings[u] = m
		}
		return true
	})
}

// resolve follows a UniqueLock binding to its mutex, if key is one.
func (c *checker) resolve(key mutexKey) mutexKey {
	if key == nil {
		return nil
	}
	if m, ok := c.bindings[key]; ok {
		return m
	}
	return key
}

// acquire checks an acquisition against the held set and pushes it.
func (c *checker) acquire(held []heldLock, call *ast.CallExpr, key mutexKey, checked bool) []heldLock {
	order, known := c.orders[key]
	if !known {
		return held
	}
	if checked {
		for _, h := range held {
			if h.order >= order {
				c.pass.Reportf(call.Pos(),
					"lock order violation: acquiring %s (order %d) while holding %s (order %d)",
					key.Name(), order, h.key.Name(), h.order)
				break
			}
		}
	}
	return append(held, heldLock{key: key, order: order, checked: checked})
}

func release(held []heldLock, key mutexKey) []heldLock {
	for i := len(held) - 1; i >= 0; i-- {
		if held[i].key == key {
			return append(held[:i], held[i+1:]...)
		}
	}
	return held
}
