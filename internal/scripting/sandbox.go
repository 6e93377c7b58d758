// Package scripting runs battle and level Lua scripts in sandboxed GopherLua
// states. Every script load and every hook call gets a fresh opcode budget.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the opcode budget used when none is configured.
const DefaultInstructionLimit = 100_000

// safeLibs are the only standard libraries opened in a sandbox.
var safeLibs = []struct {
	name string
	open lua.LGFunction
}{
	{lua.BaseLibName, lua.OpenBase},
	{lua.TabLibName, lua.OpenTable},
	{lua.StringLibName, lua.OpenString},
	{lua.MathLibName, lua.OpenMath},
}

// strippedGlobals are base functions that reach the filesystem, compile new
// chunks or drive the collector.
var strippedGlobals = []string{"dofile", "loadfile", "load", "loadstring", "collectgarbage", "require"}

// opBudget is polled by the VM once per opcode through Done and cancels
// itself when the budget runs out.
type opBudget struct {
	context.Context
	cancel context.CancelFunc
	left   atomic.Int64
}

func newBudget(limit int) *opBudget {
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}
	ctx, cancel := context.WithCancel(context.Background())
	b := &opBudget{Context: ctx, cancel: cancel}
	b.left.Store(int64(limit))
	return b
}

func (b *opBudget) Done() <-chan struct{} {
	if b.left.Add(-1) <= 0 {
		b.cancel()
	}
	return b.Context.Done()
}

// NewSandboxedState returns an LState with only the base, table, string and
// math libraries, the loader and collector globals removed, and a budget of
// instLimit opcodes for code run directly on it.
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: The caller owns the LState and must call L.Close() when done.
func NewSandboxedState(instLimit int) *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range safeLibs {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	for _, name := range strippedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	L.SetContext(newBudget(instLimit))
	return L
}

// withBudget runs fn under a fresh budget of instLimit opcodes.
func withBudget(L *lua.LState, instLimit int, fn func() error) error {
	b := newBudget(instLimit)
	defer b.cancel()
	L.SetContext(b)
	defer L.RemoveContext()
	return fn()
}
