package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers the engine Lua table into L:
//
//	engine.log(msg)            writes msg to the Manager's logger at Info
//	engine.fact(agent, name)   returns the injected boolean fact, or nil
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetField(engine, "log", L.NewFunction(m.luaLog))
	L.SetField(engine, "fact", L.NewFunction(m.luaFact))
	L.SetGlobal("engine", engine)
}

func (m *Manager) luaLog(L *lua.LState) int {
	m.logger.Info("scripting: lua", zap.String("msg", L.CheckString(1)))
	return 0
}

func (m *Manager) luaFact(L *lua.LState) int {
	agentID := L.CheckString(1)
	name := L.CheckString(2)
	if m.GetFact == nil {
		L.Push(lua.LNil)
		return 1
	}
	v, ok := m.GetFact(agentID, name)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LBool(v))
	return 1
}
