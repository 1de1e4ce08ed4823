package goap

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

const (
	// DefaultMaxOpen bounds the open set when Options.MaxOpen is unset.
	DefaultMaxOpen = 1024
	// DefaultMaxClosed bounds the closed set when Options.MaxClosed is unset.
	DefaultMaxClosed = 1024

	rootAction = "root"
)

var (
	// ErrNoPlan is returned when the goal cannot be reached. Every search
	// failure wraps it.
	ErrNoPlan = errors.New("goap: no plan found")
	// ErrOpenSetOverflow is returned when the open set grows past its bound.
	ErrOpenSetOverflow = fmt.Errorf("%w: open set overflow", ErrNoPlan)
	// ErrClosedSetOverflow is returned when the closed set grows past its bound.
	ErrClosedSetOverflow = fmt.Errorf("%w: closed set overflow", ErrNoPlan)
)

// Options bounds a search. Zero fields select the defaults.
type Options struct {
	MaxOpen   int
	MaxClosed int
}

func (o Options) withDefaults() Options {
	if o.MaxOpen <= 0 {
		o.MaxOpen = DefaultMaxOpen
	}
	if o.MaxClosed <= 0 {
		o.MaxClosed = DefaultMaxClosed
	}
	return o
}

// AStar finds the cheapest action sequence between two world states.
//
// AStar reuses its open and closed sets across calls and must not be used by
// more than one goroutine at a time. The ActionPlanner it searches is only
// read, so several AStar instances may share one planner.
type AStar struct {
	opts   Options
	logger *zap.Logger

	open   *openSet
	closed map[WorldState]*node
}

// NewAStar returns a search engine bounded by opts.
//
// Postcondition: a nil logger is replaced by zap.NewNop().
func NewAStar(opts Options, logger *zap.Logger) *AStar {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = opts.withDefaults()
	return &AStar{
		opts:   opts,
		logger: logger,
		open:   newOpenSet(opts.MaxOpen),
		closed: make(map[WorldState]*node, opts.MaxClosed),
	}
}

// Options returns the bounds in effect.
func (a *AStar) Options() Options { return a.opts }

func (a *AStar) reset() {
	a.open.reset()
	clear(a.closed)
}

// Plan searches for the cheapest sequence of ap's actions that turns start
// into a state satisfying goal.
//
// Postcondition: on success the plan's last state satisfies goal and its cost
// is the sum of its actions' costs. Every failure wraps ErrNoPlan; bound
// violations are ErrOpenSetOverflow or ErrClosedSetOverflow.
func (a *AStar) Plan(ap *ActionPlanner, start, goal WorldState) (*Plan, error) {
	if ap == nil {
		return nil, errors.New("goap.AStar.Plan: planner must not be nil")
	}
	a.reset()
	defer a.reset()

	h := start.Distance(goal)
	a.open.push(&node{state: start, h: h, f: h, action: rootAction})

	for {
		if a.open.Len() == 0 {
			a.logger.Debug("no plan found", zap.Int("closed", len(a.closed)))
			return nil, ErrNoPlan
		}
		cur := a.open.popMin()

		if cur.state.Satisfies(goal) {
			plan := reconstruct(cur)
			a.logger.Debug("plan found",
				zap.Int("steps", plan.Len()),
				zap.Int("cost", plan.Cost()),
				zap.Int("closed", len(a.closed)),
			)
			return plan, nil
		}

		a.closed[cur.state] = cur
		if len(a.closed) > a.opts.MaxClosed {
			a.logger.Debug("closed set overflow", zap.Int("max_closed", a.opts.MaxClosed))
			return nil, ErrClosedSetOverflow
		}

		if err := a.expand(ap, cur, goal); err != nil {
			return nil, err
		}
	}
}

// expand opens every state reachable from cur by one applicable action.
func (a *AStar) expand(ap *ActionPlanner, cur *node, goal WorldState) error {
	for i := 0; i < ap.NumActions(); i++ {
		act := ap.Action(i)
		if !cur.state.Satisfies(act.Precondition) {
			continue
		}
		next := cur.state.Apply(act.Effect)
		cost := cur.g + act.Cost

		if n, ok := a.open.find(next); ok {
			if n.g <= cost {
				continue
			}
			a.open.remove(n)
		}
		if n, ok := a.closed[next]; ok {
			if n.g <= cost {
				continue
			}
			delete(a.closed, next)
		}

		h := next.Distance(goal)
		a.open.push(&node{
			state:  next,
			parent: cur,
			g:      cost,
			h:      h,
			f:      cost + h,
			action: act.Name,
		})
		if a.open.Len() > a.opts.MaxOpen {
			a.logger.Debug("open set overflow", zap.Int("max_open", a.opts.MaxOpen))
			return ErrOpenSetOverflow
		}
	}
	return nil
}

// reconstruct walks parent links from goal back to the root.
func reconstruct(goal *node) *Plan {
	depth := 0
	for n := goal; n.parent != nil; n = n.parent {
		depth++
	}
	steps := make([]Step, depth)
	for n := goal; n.parent != nil; n = n.parent {
		depth--
		steps[depth] = Step{Action: n.action, State: n.state}
	}
	return &Plan{steps: steps, cost: goal.g}
}
