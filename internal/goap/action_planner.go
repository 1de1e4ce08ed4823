// Package goap implements a Goal-Oriented Action Planner for NPC behavior.
//
// World facts are boolean atoms packed into 64-bit sets. An ActionPlanner
// registers atoms and actions by name; AStar searches the implicit graph of
// reachable world states for the cheapest action sequence reaching a goal.
package goap

import (
	"errors"
	"fmt"
)

const (
	// MaxAtoms is the maximum number of distinct atoms one ActionPlanner holds.
	MaxAtoms = BitSetWidth
	// MaxActions is the maximum number of distinct actions one ActionPlanner holds.
	MaxActions = 64
	// DefaultActionCost is the cost assigned to a newly registered action.
	DefaultActionCost = 1
)

var (
	// ErrAtomsFull is returned when registering an atom past MaxAtoms.
	ErrAtomsFull = errors.New("goap: atom registry full")
	// ErrActionsFull is returned when registering an action past MaxActions.
	ErrActionsFull = errors.New("goap: action registry full")
	// ErrNegativeCost is returned by SetCost for a cost below zero.
	ErrNegativeCost = errors.New("goap: action cost must not be negative")
)

// Action is a read-only view of one registered action.
type Action struct {
	Name         string
	Precondition WorldState
	Effect       WorldState
	Cost         int
}

// ActionPlanner owns the atom and action registries and each action's
// precondition, effect, and cost.
//
// Invariant: indices are dense, assigned in first-registration order, and never
// reassigned until Clear. len(atomNames) <= MaxAtoms, len(actNames) <= MaxActions.
// ActionPlanner is not safe for concurrent mutation; concurrent readers are safe
// while no mutation is in flight.
type ActionPlanner struct {
	atoms     map[string]int
	atomNames []string

	actions  map[string]int
	actNames []string
	actPre   []WorldState
	actPost  []WorldState
	actCosts []int
}

// NewActionPlanner returns an empty ActionPlanner.
func NewActionPlanner() *ActionPlanner {
	return &ActionPlanner{
		atoms:   make(map[string]int),
		actions: make(map[string]int),
	}
}

// Clear drops every atom and action.
//
// Postcondition: ap is equivalent to NewActionPlanner().
func (ap *ActionPlanner) Clear() {
	*ap = *NewActionPlanner()
}

// RegisterAtom returns the index for name, allocating the next free index the
// first time name is seen.
//
// Postcondition: returns ErrAtomsFull and leaves ap unchanged when name is new
// and MaxAtoms atoms are already registered.
func (ap *ActionPlanner) RegisterAtom(name string) (int, error) {
	if idx, ok := ap.atoms[name]; ok {
		return idx, nil
	}
	if len(ap.atomNames) >= MaxAtoms {
		return -1, fmt.Errorf("registering atom %q: %w", name, ErrAtomsFull)
	}
	idx := len(ap.atomNames)
	ap.atoms[name] = idx
	ap.atomNames = append(ap.atomNames, name)
	return idx, nil
}

// RegisterAction returns the index for name, allocating the next free index the
// first time name is seen. New actions cost DefaultActionCost and have fully
// don't-care preconditions and effects.
//
// Postcondition: returns ErrActionsFull and leaves ap unchanged when name is new
// and MaxActions actions are already registered.
func (ap *ActionPlanner) RegisterAction(name string) (int, error) {
	if idx, ok := ap.actions[name]; ok {
		return idx, nil
	}
	if len(ap.actNames) >= MaxActions {
		return -1, fmt.Errorf("registering action %q: %w", name, ErrActionsFull)
	}
	idx := len(ap.actNames)
	ap.actions[name] = idx
	ap.actNames = append(ap.actNames, name)
	ap.actPre = append(ap.actPre, NewWorldState())
	ap.actPost = append(ap.actPost, NewWorldState())
	ap.actCosts = append(ap.actCosts, DefaultActionCost)
	return idx, nil
}

// AtomIndex looks up name without registering it.
func (ap *ActionPlanner) AtomIndex(name string) (int, bool) {
	idx, ok := ap.atoms[name]
	return idx, ok
}

// ActionIndex looks up name without registering it.
func (ap *ActionPlanner) ActionIndex(name string) (int, bool) {
	idx, ok := ap.actions[name]
	return idx, ok
}

// AtomName returns the name registered at idx, or "" when idx is unassigned.
func (ap *ActionPlanner) AtomName(idx int) string {
	if idx < 0 || idx >= len(ap.atomNames) {
		return ""
	}
	return ap.atomNames[idx]
}

// NumAtoms returns the number of registered atoms.
func (ap *ActionPlanner) NumAtoms() int { return len(ap.atomNames) }

// NumActions returns the number of registered actions.
func (ap *ActionPlanner) NumActions() int { return len(ap.actNames) }

// Action returns the action registered at idx.
//
// Precondition: 0 <= idx < NumActions().
func (ap *ActionPlanner) Action(idx int) Action {
	return Action{
		Name:         ap.actNames[idx],
		Precondition: ap.actPre[idx],
		Effect:       ap.actPost[idx],
		Cost:         ap.actCosts[idx],
	}
}

// Actions returns every registered action in registration order.
func (ap *ActionPlanner) Actions() []Action {
	out := make([]Action, len(ap.actNames))
	for i := range ap.actNames {
		out[i] = ap.Action(i)
	}
	return out
}

// resolve registers action and atom together, or neither.
func (ap *ActionPlanner) resolve(action, atom string) (actIdx, atomIdx int, err error) {
	_, haveAct := ap.actions[action]
	_, haveAtom := ap.atoms[atom]
	if !haveAct && len(ap.actNames) >= MaxActions {
		return -1, -1, fmt.Errorf("registering action %q: %w", action, ErrActionsFull)
	}
	if !haveAtom && len(ap.atomNames) >= MaxAtoms {
		return -1, -1, fmt.Errorf("registering atom %q: %w", atom, ErrAtomsFull)
	}
	if actIdx, err = ap.RegisterAction(action); err != nil {
		return -1, -1, err
	}
	if atomIdx, err = ap.RegisterAtom(atom); err != nil {
		return -1, -1, err
	}
	return actIdx, atomIdx, nil
}

// SetPrecondition requires atom to hold value before action may run.
//
// Postcondition: on error neither name is registered.
func (ap *ActionPlanner) SetPrecondition(action, atom string, value bool) error {
	actIdx, atomIdx, err := ap.resolve(action, atom)
	if err != nil {
		return fmt.Errorf("goap.SetPrecondition: %w", err)
	}
	ap.actPre[actIdx].Set(atomIdx, value)
	return nil
}

// SetEffect makes action write value to atom.
//
// Postcondition: on error neither name is registered.
func (ap *ActionPlanner) SetEffect(action, atom string, value bool) error {
	actIdx, atomIdx, err := ap.resolve(action, atom)
	if err != nil {
		return fmt.Errorf("goap.SetEffect: %w", err)
	}
	ap.actPost[actIdx].Set(atomIdx, value)
	return nil
}

// SetCost sets the cost of action, registering it if needed.
func (ap *ActionPlanner) SetCost(action string, cost int) error {
	if cost < 0 {
		return fmt.Errorf("goap.SetCost %q: %d: %w", action, cost, ErrNegativeCost)
	}
	idx, err := ap.RegisterAction(action)
	if err != nil {
		return fmt.Errorf("goap.SetCost: %w", err)
	}
	ap.actCosts[idx] = cost
	return nil
}

// SetAtom pins atom to value in ws, registering atom if needed.
//
// Postcondition: ws is unchanged on error.
func (ap *ActionPlanner) SetAtom(ws *WorldState, atom string, value bool) error {
	idx, err := ap.RegisterAtom(atom)
	if err != nil {
		return fmt.Errorf("goap.SetAtom: %w", err)
	}
	ws.Set(idx, value)
	return nil
}
