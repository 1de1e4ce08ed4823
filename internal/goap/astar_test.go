package goap_test

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/goap/internal/goap"
)

type fact struct {
	atom  string
	value bool
}

// soldierPlanner builds the scout/aim/shoot domain. When withScout is false the
// only way to make the enemy visible is missing.
func soldierPlanner(t testing.TB, withScout bool) (*goap.ActionPlanner, goap.WorldState, goap.WorldState) {
	t.Helper()
	ap := goap.NewActionPlanner()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	if withScout {
		must(ap.SetPrecondition("scout", "armedwithgun", true))
		must(ap.SetEffect("scout", "enemyvisible", true))
	}
	must(ap.SetPrecondition("approach", "enemyvisible", true))
	must(ap.SetEffect("approach", "nearenemy", true))

	must(ap.SetPrecondition("aim", "enemyvisible", true))
	must(ap.SetPrecondition("aim", "weaponloaded", true))
	must(ap.SetEffect("aim", "enemylinedup", true))

	must(ap.SetPrecondition("shoot", "enemylinedup", true))
	must(ap.SetEffect("shoot", "enemyalive", false))

	must(ap.SetPrecondition("load", "armedwithgun", true))
	must(ap.SetEffect("load", "weaponloaded", true))

	must(ap.SetPrecondition("detonatebomb", "armedwithbomb", true))
	must(ap.SetPrecondition("detonatebomb", "nearenemy", true))
	must(ap.SetEffect("detonatebomb", "alive", false))
	must(ap.SetEffect("detonatebomb", "enemyalive", false))

	must(ap.SetPrecondition("flee", "enemyvisible", true))
	must(ap.SetEffect("flee", "nearenemy", false))

	start := goap.NewWorldState()
	for _, f := range []fact{
		{"enemyvisible", false},
		{"armedwithgun", true},
		{"weaponloaded", false},
		{"enemylinedup", false},
		{"enemyalive", true},
		{"armedwithbomb", false},
		{"nearenemy", false},
		{"alive", true},
	} {
		must(ap.SetAtom(&start, f.atom, f.value))
	}
	goal := goap.NewWorldState()
	must(ap.SetAtom(&goal, "enemyalive", false))
	must(ap.SetAtom(&goal, "alive", true))
	return ap, start, goal
}

// fataler is satisfied by both *testing.T and *rapid.T.
type fataler interface {
	Helper()
	Fatal(args ...any)
	Fatalf(format string, args ...any)
}

// checkPlan replays p from start and verifies every step and the goal.
func checkPlan(t fataler, ap *goap.ActionPlanner, p *goap.Plan, start, goal goap.WorldState) {
	t.Helper()
	cur := start
	cost := 0
	for _, step := range p.Steps() {
		idx, ok := ap.ActionIndex(step.Action)
		if !ok {
			t.Fatalf("plan uses unknown action %q", step.Action)
		}
		act := ap.Action(idx)
		if !cur.Satisfies(act.Precondition) {
			t.Fatalf("action %q applied with unmet preconditions", step.Action)
		}
		cur = cur.Apply(act.Effect)
		if cur != step.State {
			t.Fatalf("action %q: recorded state %+v, replayed %+v", step.Action, step.State, cur)
		}
		cost += act.Cost
	}
	if !cur.Satisfies(goal) {
		t.Fatal("plan does not reach the goal")
	}
	if cost != p.Cost() {
		t.Fatalf("plan cost %d, summed action cost %d", p.Cost(), cost)
	}
}

func TestAStar_Plan_SoldierScenario(t *testing.T) {
	ap, start, goal := soldierPlanner(t, true)
	plan, err := goap.NewAStar(goap.Options{}, nil).Plan(ap, start, goal)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	want := []string{"scout", "load", "aim", "shoot"}
	if !slices.Equal(plan.Actions(), want) {
		t.Fatalf("expected %v, got %v", want, plan.Actions())
	}
	if plan.Cost() != 4 {
		t.Fatalf("expected cost 4, got %d", plan.Cost())
	}
	checkPlan(t, ap, plan, start, goal)
}

func TestAStar_Plan_AvoidsBombEvenWhenArmed(t *testing.T) {
	ap, start, goal := soldierPlanner(t, true)
	if err := ap.SetAtom(&start, "armedwithbomb", true); err != nil {
		t.Fatal(err)
	}
	plan, err := goap.NewAStar(goap.Options{}, nil).Plan(ap, start, goal)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if slices.Contains(plan.Actions(), "detonatebomb") {
		t.Fatalf("plan must not kill the agent: %v", plan.Actions())
	}
	checkPlan(t, ap, plan, start, goal)
}

func TestAStar_Plan_UnreachableGoal(t *testing.T) {
	ap, start, goal := soldierPlanner(t, false)
	plan, err := goap.NewAStar(goap.Options{}, nil).Plan(ap, start, goal)
	if !errors.Is(err, goap.ErrNoPlan) {
		t.Fatalf("expected ErrNoPlan, got %v", err)
	}
	if plan != nil {
		t.Fatalf("expected nil plan, got %v", plan.Actions())
	}
}

func TestAStar_Plan_ClosedSetOverflow(t *testing.T) {
	ap, start, goal := soldierPlanner(t, true)
	_, err := goap.NewAStar(goap.Options{MaxClosed: 1}, nil).Plan(ap, start, goal)
	if !errors.Is(err, goap.ErrClosedSetOverflow) {
		t.Fatalf("expected ErrClosedSetOverflow, got %v", err)
	}
	if !errors.Is(err, goap.ErrNoPlan) {
		t.Fatal("expected overflow to wrap ErrNoPlan")
	}
}

func TestAStar_Plan_OpenSetOverflow(t *testing.T) {
	ap, start, goal := soldierPlanner(t, true)
	_, err := goap.NewAStar(goap.Options{MaxOpen: 1}, nil).Plan(ap, start, goal)
	if !errors.Is(err, goap.ErrOpenSetOverflow) {
		t.Fatalf("expected ErrOpenSetOverflow, got %v", err)
	}
}

func TestAStar_Plan_GoalAlreadySatisfied(t *testing.T) {
	ap, start, _ := soldierPlanner(t, true)
	goal := goap.NewWorldState()
	if err := ap.SetAtom(&goal, "alive", true); err != nil {
		t.Fatal(err)
	}
	plan, err := goap.NewAStar(goap.Options{}, nil).Plan(ap, start, goal)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if plan.Len() != 0 || plan.Cost() != 0 {
		t.Fatalf("expected empty zero-cost plan, got %v cost %d", plan.Actions(), plan.Cost())
	}
}

func TestAStar_Plan_PrefersCheaperLongerPath(t *testing.T) {
	ap := goap.NewActionPlanner()
	_ = ap.SetEffect("teleport", "arrived", true)
	_ = ap.SetCost("teleport", 10)
	_ = ap.SetEffect("walk", "halfway", true)
	_ = ap.SetPrecondition("walk_on", "halfway", true)
	_ = ap.SetEffect("walk_on", "arrived", true)

	start := goap.NewWorldState()
	_ = ap.SetAtom(&start, "arrived", false)
	_ = ap.SetAtom(&start, "halfway", false)
	goal := goap.NewWorldState()
	_ = ap.SetAtom(&goal, "arrived", true)

	plan, err := goap.NewAStar(goap.Options{}, nil).Plan(ap, start, goal)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if !slices.Equal(plan.Actions(), []string{"walk", "walk_on"}) || plan.Cost() != 2 {
		t.Fatalf("expected [walk walk_on] cost 2, got %v cost %d", plan.Actions(), plan.Cost())
	}
}

// A multi-atom effect makes the distance heuristic inconsistent: the state
// reached by "big" is closed at g=3 before the g=2 route through "m" and "mb"
// is found, and must be reopened.
func TestAStar_Plan_ReopensClosedStateOnCheaperPath(t *testing.T) {
	ap := goap.NewActionPlanner()
	_ = ap.SetEffect("big", "g1", true)
	_ = ap.SetEffect("big", "g2", true)
	_ = ap.SetCost("big", 3)

	_ = ap.SetEffect("m", "m", true)

	_ = ap.SetPrecondition("mb", "m", true)
	_ = ap.SetEffect("mb", "g1", true)
	_ = ap.SetEffect("mb", "g2", true)
	_ = ap.SetEffect("mb", "m", false)

	_ = ap.SetPrecondition("fin", "g1", true)
	_ = ap.SetPrecondition("fin", "g2", true)
	_ = ap.SetEffect("fin", "g3", true)
	_ = ap.SetCost("fin", 5)

	start := goap.NewWorldState()
	goal := goap.NewWorldState()
	for _, atom := range []string{"g1", "g2", "g3", "m"} {
		_ = ap.SetAtom(&start, atom, false)
	}
	for _, atom := range []string{"g1", "g2", "g3"} {
		_ = ap.SetAtom(&goal, atom, true)
	}

	plan, err := goap.NewAStar(goap.Options{}, nil).Plan(ap, start, goal)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if !slices.Equal(plan.Actions(), []string{"m", "mb", "fin"}) || plan.Cost() != 7 {
		t.Fatalf("expected [m mb fin] cost 7, got %v cost %d", plan.Actions(), plan.Cost())
	}
	checkPlan(t, ap, plan, start, goal)
}

func TestAStar_Plan_ReusableAcrossCalls(t *testing.T) {
	ap, start, goal := soldierPlanner(t, true)
	search := goap.NewAStar(goap.Options{}, nil)
	first, err := search.Plan(ap, start, goal)
	if err != nil {
		t.Fatalf("first Plan: %v", err)
	}
	if _, err := search.Plan(ap, start, goal); err != nil {
		t.Fatalf("second Plan: %v", err)
	}
	third, err := search.Plan(ap, start, goal)
	if err != nil {
		t.Fatalf("third Plan: %v", err)
	}
	if !slices.Equal(first.Actions(), third.Actions()) {
		t.Fatalf("expected deterministic plans, got %v and %v", first.Actions(), third.Actions())
	}
}

func TestAStar_Plan_NilPlanner(t *testing.T) {
	_, err := goap.NewAStar(goap.Options{}, nil).Plan(nil, goap.NewWorldState(), goap.NewWorldState())
	if err == nil {
		t.Fatal("expected error for nil planner")
	}
}

func TestAStar_Plan_LogsOverflow(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ap, start, goal := soldierPlanner(t, true)
	_, _ = goap.NewAStar(goap.Options{MaxClosed: 1}, zap.New(core)).Plan(ap, start, goal)
	if logs.FilterMessage("closed set overflow").Len() != 1 {
		t.Fatalf("expected one overflow log entry, got %v", logs.All())
	}
}

func TestAStar_Options_Defaults(t *testing.T) {
	opts := goap.NewAStar(goap.Options{MaxOpen: -3}, nil).Options()
	if opts.MaxOpen != goap.DefaultMaxOpen || opts.MaxClosed != goap.DefaultMaxClosed {
		t.Fatalf("expected defaults, got %+v", opts)
	}
}

func TestPlan_AllStopsEarly(t *testing.T) {
	ap, start, goal := soldierPlanner(t, true)
	plan, err := goap.NewAStar(goap.Options{}, nil).Plan(ap, start, goal)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	var seen []string
	for action := range plan.All() {
		seen = append(seen, action)
		if len(seen) == 2 {
			break
		}
	}
	if !slices.Equal(seen, []string{"scout", "load"}) {
		t.Fatalf("expected first two actions, got %v", seen)
	}
}

// uniformCost returns the exact cheapest cost from start to goal by exhaustive
// Dijkstra search, or false if the goal is unreachable.
func uniformCost(ap *goap.ActionPlanner, start, goal goap.WorldState) (int, bool) {
	dist := map[goap.WorldState]int{start: 0}
	done := map[goap.WorldState]bool{}
	for {
		var cur goap.WorldState
		best := -1
		for ws, d := range dist {
			if !done[ws] && (best < 0 || d < best) {
				cur, best = ws, d
			}
		}
		if best < 0 {
			return 0, false
		}
		if cur.Satisfies(goal) {
			return best, true
		}
		done[cur] = true
		for _, act := range ap.Actions() {
			if !cur.Satisfies(act.Precondition) {
				continue
			}
			next := cur.Apply(act.Effect)
			if d, ok := dist[next]; !ok || best+act.Cost < d {
				dist[next] = best + act.Cost
			}
		}
	}
}

// drawDomain builds a random planner whose actions each write one atom and
// cost at least 1, which keeps the distance heuristic admissible.
func drawDomain(rt *rapid.T) (*goap.ActionPlanner, goap.WorldState, goap.WorldState) {
	nAtoms := rapid.IntRange(2, 5).Draw(rt, "atoms")
	nActions := rapid.IntRange(1, 6).Draw(rt, "actions")
	ap := goap.NewActionPlanner()
	atom := func(i int) string { return fmt.Sprintf("a%d", i) }

	start := goap.NewWorldState()
	goal := goap.NewWorldState()
	for i := 0; i < nAtoms; i++ {
		_ = ap.SetAtom(&start, atom(i), rapid.Bool().Draw(rt, fmt.Sprintf("start_%d", i)))
		if rapid.Bool().Draw(rt, fmt.Sprintf("goal_has_%d", i)) {
			_ = ap.SetAtom(&goal, atom(i), rapid.Bool().Draw(rt, fmt.Sprintf("goal_%d", i)))
		}
	}
	for j := 0; j < nActions; j++ {
		name := fmt.Sprintf("act%d", j)
		if _, err := ap.RegisterAction(name); err != nil {
			rt.Fatal(err)
		}
		for i := 0; i < nAtoms; i++ {
			switch rapid.IntRange(0, 2).Draw(rt, fmt.Sprintf("pre_%d_%d", j, i)) {
			case 1:
				_ = ap.SetPrecondition(name, atom(i), true)
			case 2:
				_ = ap.SetPrecondition(name, atom(i), false)
			}
		}
		target := rapid.IntRange(0, nAtoms-1).Draw(rt, fmt.Sprintf("eff_atom_%d", j))
		_ = ap.SetEffect(name, atom(target), rapid.Bool().Draw(rt, fmt.Sprintf("eff_val_%d", j)))
		_ = ap.SetCost(name, rapid.IntRange(1, 3).Draw(rt, fmt.Sprintf("cost_%d", j)))
	}
	return ap, start, goal
}

func TestProperty_AStar_MatchesUniformCostSearch(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ap, start, goal := drawDomain(rt)
		optimal, reachable := uniformCost(ap, start, goal)
		plan, err := goap.NewAStar(goap.Options{}, nil).Plan(ap, start, goal)
		if !reachable {
			if !errors.Is(err, goap.ErrNoPlan) {
				rt.Fatalf("expected ErrNoPlan for unreachable goal, got %v", err)
			}
			return
		}
		if err != nil {
			rt.Fatalf("Plan: %v (optimal cost %d)", err, optimal)
		}
		if plan.Cost() != optimal {
			rt.Fatalf("A* cost %d, optimal %d", plan.Cost(), optimal)
		}
		checkPlan(rt, ap, plan, start, goal)
	})
}

func TestProperty_AStar_HeuristicAdmissible(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ap, start, goal := drawDomain(rt)
		optimal, reachable := uniformCost(ap, start, goal)
		if !reachable {
			return
		}
		if h := start.Distance(goal); h > optimal {
			rt.Fatalf("heuristic %d exceeds optimal cost %d", h, optimal)
		}
	})
}
