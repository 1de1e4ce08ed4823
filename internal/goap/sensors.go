package goap

import (
	"fmt"
	"maps"
	"slices"

	lua "github.com/yuin/gopher-lua"
)

// SensorCaller evaluates Lua sensor hooks.
type SensorCaller interface {
	// CallHook calls a named Lua function in the given scope's VM.
	// Returns (LNil, nil) if the function is not defined.
	CallHook(scope, hook string, args ...lua.LValue) (lua.LValue, error)
}

// Sense builds the start state for agentID: the domain's static start facts,
// overridden by each sensor's reading.
//
// Precondition: ap was compiled from d.
// Postcondition: a sensor returning a Lua boolean pins its atom; any other
// return value leaves the atom as the static facts set it.
func Sense(ap *ActionPlanner, d *Domain, caller SensorCaller, agentID string) (WorldState, error) {
	ws, err := d.StartState(ap)
	if err != nil {
		return WorldState{}, fmt.Errorf("goap.Sense %q: %w", d.ID, err)
	}
	if caller == nil {
		return ws, nil
	}
	for _, atom := range slices.Sorted(maps.Keys(d.Sensors)) {
		hook := d.Sensors[atom]
		val, err := caller.CallHook(d.ID, hook, lua.LString(agentID))
		if err != nil {
			return WorldState{}, fmt.Errorf("goap.Sense %q: sensor %q: %w", d.ID, hook, err)
		}
		b, ok := val.(lua.LBool)
		if !ok {
			continue
		}
		if err := ap.SetAtom(&ws, atom, bool(b)); err != nil {
			return WorldState{}, fmt.Errorf("goap.Sense %q: %w", d.ID, err)
		}
	}
	return ws, nil
}
