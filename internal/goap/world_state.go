package goap

// WorldState is a partial boolean assignment over up to BitSetWidth atoms.
//
// Invariant: when DontCare has bit i set, Values bit i carries no meaning.
// WorldState is a plain comparable value; two states are equal when both
// bitsets are equal.
type WorldState struct {
	Values   BitSet
	DontCare BitSet
}

// NewWorldState returns a fully unconstrained state.
//
// Postcondition: every atom reports IsDontCare; Values is empty.
func NewWorldState() WorldState {
	return WorldState{Values: EmptyBitSet, DontCare: FullBitSet}
}

// Set pins the atom at idx to value.
//
// Precondition: idx is an atom index issued by an ActionPlanner.
// Postcondition: IsDontCare(idx) is false and Value(idx) returns (value, true).
func (ws *WorldState) Set(idx int, value bool) {
	ws.Values.Set(idx, value)
	ws.DontCare.Disable(idx)
}

// IsDontCare reports whether the atom at idx is unconstrained.
func (ws WorldState) IsDontCare(idx int) bool {
	return ws.DontCare.Get(idx)
}

// Value returns the atom's value and whether it is known.
// An unknown atom always reports false.
func (ws WorldState) Value(idx int) (value, known bool) {
	if ws.DontCare.Get(idx) {
		return false, false
	}
	return ws.Values.Get(idx), true
}

// care returns the atoms ws constrains.
func (ws WorldState) care() BitSet {
	return ws.DontCare.Not()
}

// Satisfies reports whether ws agrees with ref on every atom ref constrains.
// Only ref's don't-care mask matters; ws is read by its value bits alone.
func (ws WorldState) Satisfies(ref WorldState) bool {
	care := ref.care()
	return ws.Values.And(care) == ref.Values.And(care)
}

// Apply returns the state produced by applying effect to ws.
//
// Postcondition: atoms effect leaves as don't-care keep ws's value and
// don't-care status; every other atom takes effect's value and becomes known.
func (ws WorldState) Apply(effect WorldState) WorldState {
	unaffected := effect.DontCare
	affected := unaffected.Not()
	return WorldState{
		Values:   ws.Values.And(unaffected).Or(effect.Values.And(affected)),
		DontCare: ws.DontCare.And(unaffected),
	}
}

// Distance counts the atoms goal constrains on which ws's value differs.
func (ws WorldState) Distance(goal WorldState) int {
	care := goal.care()
	return ws.Values.And(care).Xor(goal.Values.And(care)).Count()
}
