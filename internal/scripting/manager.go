package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// GlobalScope is the reserved scope for shared scripts loaded via LoadGlobal.
// CallHook falls back to it when a scope has no VM or lacks the hook.
const GlobalScope = "__global__"

// vm is one scope's interpreter. LStates are single-threaded, so every
// call holds mu.
type vm struct {
	mu    sync.Mutex
	L     *lua.LState
	limit int
}

// Manager owns one sandboxed LState per scope and exposes hook dispatch.
// Scopes are typically battle or level ids.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*vm
	logger *zap.Logger

	// Message receives engine.message(text) calls. nil drops them.
	Message func(scope, text string)
}

// NewManager creates a Manager.
//
// Precondition: logger must be non-nil.
// Postcondition: Returns a non-nil Manager with no scopes.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		vms:    make(map[string]*vm),
		logger: logger,
	}
}

// Load creates a sandboxed VM for scope, registers the engine module, then
// executes every *.lua file in scriptDir in lexicographic order. A previous
// VM for the scope is replaced.
//
// Precondition: scope must be non-empty; scriptDir must be a readable directory.
// Postcondition: returns an error on any load failure, leaving the old VM in place.
func (m *Manager) Load(scope, scriptDir string, instLimit int) error {
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, scope, err)
	}
	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	L := NewSandboxedState(instLimit)
	m.RegisterModules(L, scope)
	for _, path := range luaFiles {
		path := path
		if err := withBudget(L, instLimit, func() error { return L.DoFile(path) }); err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, scope, err)
		}
	}

	m.mu.Lock()
	old := m.vms[scope]
	m.vms[scope] = &vm{L: L, limit: instLimit}
	m.mu.Unlock()
	if old != nil {
		old.mu.Lock()
		old.L.Close()
		old.mu.Unlock()
	}
	return nil
}

// LoadGlobal loads the shared fallback scope.
func (m *Manager) LoadGlobal(scriptDir string, instLimit int) error {
	return m.Load(GlobalScope, scriptDir, instLimit)
}

// HasScope reports whether scope has its own VM.
func (m *Manager) HasScope(scope string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.vms[scope]
	return ok
}

// CallHook calls the named Lua global function in scope's VM, falling back to
// the global scope when the scope has no VM or does not define the hook.
// Returns (LNil, nil) if neither defines the hook. Lua runtime errors,
// including an exhausted budget, are logged at Warn level and never
// propagated.
//
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(scope, hook string, args ...lua.LValue) (lua.LValue, error) {
	return m.call(scope, hook, func(*lua.LState) []lua.LValue { return args })
}

// call is CallHook with arguments built inside the VM, for tables.
func (m *Manager) call(scope, hook string, build func(L *lua.LState) []lua.LValue) (lua.LValue, error) {
	m.mu.RLock()
	v := m.vms[scope]
	global := m.vms[GlobalScope]
	m.mu.RUnlock()

	if v == nil && global == nil {
		m.logger.Debug("scripting: no VM for scope",
			zap.String("scope", scope),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}
	if v != nil {
		if ret, found := m.invoke(v, scope, hook, build); found || v == global {
			return ret, nil
		}
	}
	if global == nil {
		return lua.LNil, nil
	}
	ret, _ := m.invoke(global, scope, hook, build)
	return ret, nil
}

// invoke runs hook in v. found is false when v does not define hook.
func (m *Manager) invoke(v *vm, scope, hook string, build func(L *lua.LState) []lua.LValue) (ret lua.LValue, found bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	L := v.L
	fn := L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, false
	}
	err := withBudget(L, v.limit, func() error {
		return L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, build(L)...)
	})
	if err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("scope", scope),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, true
	}
	ret = L.Get(-1)
	L.Pop(1)
	return ret, true
}

// Close releases every VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for scope, v := range m.vms {
		v.mu.Lock()
		v.L.Close()
		v.mu.Unlock()
		delete(m.vms, scope)
	}
}
