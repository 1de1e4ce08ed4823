package goap

import (
	"fmt"

	"go.uber.org/zap"
)

// Agent plans for one compiled Domain.
//
// Invariant: domain and planner are non-nil and planner was compiled from domain.
// The planner is never mutated after construction, so Plan may be called from
// several goroutines.
type Agent struct {
	domain  *Domain
	planner *ActionPlanner
	caller  SensorCaller
	opts    Options
	logger  *zap.Logger
}

// NewAgent validates and compiles domain.
//
// Precondition: domain must not be nil. caller may be nil (no sensors run).
// Postcondition: returns error if domain fails validation or compilation.
func NewAgent(domain *Domain, caller SensorCaller, opts Options, logger *zap.Logger) (*Agent, error) {
	if domain == nil {
		panic("goap.NewAgent: domain must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := domain.Validate(); err != nil {
		return nil, err
	}
	ap, err := domain.Compile()
	if err != nil {
		return nil, err
	}
	return &Agent{
		domain:  domain,
		planner: ap,
		caller:  caller,
		opts:    opts.withDefaults(),
		logger:  logger.With(zap.String("domain", domain.ID)),
	}, nil
}

// Domain returns the agent's domain.
func (a *Agent) Domain() *Domain { return a.domain }

// Planner returns the compiled action registry. Callers must not mutate it.
func (a *Agent) Planner() *ActionPlanner { return a.planner }

// Plan senses the start state for agentID and searches for a plan to the goal.
//
// Postcondition: search failures wrap ErrNoPlan; sensor failures do not.
func (a *Agent) Plan(agentID string) (*Plan, error) {
	start, err := Sense(a.planner, a.domain, a.caller, agentID)
	if err != nil {
		return nil, err
	}
	return a.PlanFrom(start)
}

// PlanFrom searches for a plan from an explicit start state.
func (a *Agent) PlanFrom(start WorldState) (*Plan, error) {
	goal, err := a.domain.GoalState(a.planner)
	if err != nil {
		return nil, fmt.Errorf("goap.Agent.PlanFrom %q: %w", a.domain.ID, err)
	}
	return NewAStar(a.opts, a.logger).Plan(a.planner, start, goal)
}
