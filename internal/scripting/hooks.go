package scripting

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/skirmish/internal/game/dungeon"
)

// TriggerHookName is the Lua global consulted before a dungeon trigger fires.
const TriggerHookName = "on_trigger"

// TriggerHook adapts scope's on_trigger(kind, x, y, params) function to a
// dungeon.Hook. Only an explicit false return vetoes the trigger; a missing
// hook or a runtime error lets it fire.
func (m *Manager) TriggerHook(scope string) dungeon.Hook {
	return func(t dungeon.Trigger) bool {
		ret, _ := m.call(scope, TriggerHookName, func(L *lua.LState) []lua.LValue {
			params := L.NewTable()
			for _, p := range t.Params {
				params.Append(lua.LString(p))
			}
			return []lua.LValue{
				lua.LString(t.Kind),
				lua.LNumber(t.At.X),
				lua.LNumber(t.At.Y),
				params,
			}
		})
		return ret != lua.LFalse
	}
}
