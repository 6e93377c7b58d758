package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules installs the engine table into L:
//
//	engine.log(text)      logs text at Info level
//	engine.message(text)  forwards text to Manager.Message
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState, scope string) {
	engine := L.NewTable()
	L.SetField(engine, "log", L.NewFunction(func(L *lua.LState) int {
		m.logger.Info("lua", zap.String("scope", scope), zap.String("text", L.CheckString(1)))
		return 0
	}))
	L.SetField(engine, "message", L.NewFunction(func(L *lua.LState) int {
		text := L.CheckString(1)
		if m.Message != nil {
			m.Message(scope, text)
		}
		return 0
	}))
	L.SetGlobal("engine", engine)
}
