package goap

import "iter"

// Step is one applied action and the world state it produced.
type Step struct {
	Action string
	State  WorldState
}

// Plan is an ordered, costed action sequence from a start state to a goal.
// A Plan is immutable once returned by AStar.Plan.
type Plan struct {
	steps []Step
	cost  int
}

// Cost returns the summed cost of every action in the plan.
func (p *Plan) Cost() int { return p.cost }

// Len returns the number of steps.
func (p *Plan) Len() int { return len(p.steps) }

// Steps returns a copy of the plan's steps in execution order.
func (p *Plan) Steps() []Step {
	out := make([]Step, len(p.steps))
	copy(out, p.steps)
	return out
}

// Actions returns the action names in execution order.
func (p *Plan) Actions() []string {
	out := make([]string, len(p.steps))
	for i, s := range p.steps {
		out[i] = s.Action
	}
	return out
}

// All iterates (action, resulting state) pairs in execution order.
func (p *Plan) All() iter.Seq2[string, WorldState] {
	return func(yield func(string, WorldState) bool) {
		for _, s := range p.steps {
			if !yield(s.Action, s.State) {
				return
			}
		}
	}
}
