package goap

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ActionDef declares one action of a Domain.
//
// Precondition: Name must be non-empty; Cost, when set, must be >= 0.
type ActionDef struct {
	Name          string          `yaml:"name"`
	Description   string          `yaml:"description"`
	Cost          *int            `yaml:"cost"` // nil = DefaultActionCost
	Preconditions map[string]bool `yaml:"preconditions"`
	Effects       map[string]bool `yaml:"effects"`
}

// Domain is an action library plus the start facts and goal of one kind of agent.
//
// Invariant: action names are unique; at most MaxAtoms distinct atoms and
// MaxActions actions are referenced.
type Domain struct {
	ID          string            `yaml:"id"`
	Description string            `yaml:"description"`
	Atoms       []string          `yaml:"atoms"` // optional explicit index order
	Actions     []*ActionDef      `yaml:"actions"`
	Start       map[string]bool   `yaml:"start"`
	Goal        map[string]bool   `yaml:"goal"`
	Sensors     map[string]string `yaml:"sensors"` // atom -> Lua hook name
}

// atomOrder returns every atom the domain references: Atoms first in
// declaration order, then the rest sorted by name.
func (d *Domain) atomOrder() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, a := range d.Atoms {
		if _, dup := seen[a]; !dup {
			seen[a] = struct{}{}
			out = append(out, a)
		}
	}
	extra := make(map[string]struct{})
	note := func(m map[string]bool) {
		for a := range m {
			if _, ok := seen[a]; !ok {
				extra[a] = struct{}{}
			}
		}
	}
	for _, act := range d.Actions {
		note(act.Preconditions)
		note(act.Effects)
	}
	note(d.Start)
	note(d.Goal)
	for a := range d.Sensors {
		if _, ok := seen[a]; !ok {
			extra[a] = struct{}{}
		}
	}
	return append(out, slices.Sorted(maps.Keys(extra))...)
}

// Validate checks all required fields and cross-field constraints.
//
// Postcondition: nil return guarantees non-empty ID, at least one action, unique
// non-empty action and atom names, non-negative costs, a non-empty goal,
// non-empty sensor hooks, and registry capacity for every atom and action.
func (d *Domain) Validate() error {
	if d.ID == "" {
		return errors.New("goap.Domain: ID must not be empty")
	}
	if len(d.Actions) == 0 {
		return fmt.Errorf("goap.Domain %q: must have at least one action", d.ID)
	}
	if len(d.Actions) > MaxActions {
		return fmt.Errorf("goap.Domain %q: %d actions exceeds limit of %d", d.ID, len(d.Actions), MaxActions)
	}
	if len(d.Goal) == 0 {
		return fmt.Errorf("goap.Domain %q: goal must not be empty", d.ID)
	}

	names := make(map[string]struct{}, len(d.Actions))
	for _, act := range d.Actions {
		if act == nil || act.Name == "" {
			return fmt.Errorf("goap.Domain %q: action has empty name", d.ID)
		}
		if _, dup := names[act.Name]; dup {
			return fmt.Errorf("goap.Domain %q: duplicate action %q", d.ID, act.Name)
		}
		names[act.Name] = struct{}{}
		if act.Cost != nil && *act.Cost < 0 {
			return fmt.Errorf("goap.Domain %q action %q: cost must be >= 0, got %d", d.ID, act.Name, *act.Cost)
		}
	}

	declared := make(map[string]struct{}, len(d.Atoms))
	for _, a := range d.Atoms {
		if _, dup := declared[a]; dup {
			return fmt.Errorf("goap.Domain %q: duplicate atom %q", d.ID, a)
		}
		declared[a] = struct{}{}
	}

	atoms := d.atomOrder()
	for _, a := range atoms {
		if strings.TrimSpace(a) == "" {
			return fmt.Errorf("goap.Domain %q: atom has empty name", d.ID)
		}
	}
	if len(atoms) > MaxAtoms {
		return fmt.Errorf("goap.Domain %q: %d atoms exceeds limit of %d", d.ID, len(atoms), MaxAtoms)
	}

	for atom, hook := range d.Sensors {
		if hook == "" {
			return fmt.Errorf("goap.Domain %q: sensor for atom %q has empty hook", d.ID, atom)
		}
	}
	return nil
}

// Compile builds an ActionPlanner holding the domain's atoms and actions.
//
// Precondition: d.Validate() returns nil.
// Postcondition: actions are registered in declaration order.
func (d *Domain) Compile() (*ActionPlanner, error) {
	ap := NewActionPlanner()
	for _, a := range d.atomOrder() {
		if _, err := ap.RegisterAtom(a); err != nil {
			return nil, fmt.Errorf("goap.Domain %q: %w", d.ID, err)
		}
	}
	for _, act := range d.Actions {
		if _, err := ap.RegisterAction(act.Name); err != nil {
			return nil, fmt.Errorf("goap.Domain %q: %w", d.ID, err)
		}
		for atom, v := range act.Preconditions {
			if err := ap.SetPrecondition(act.Name, atom, v); err != nil {
				return nil, fmt.Errorf("goap.Domain %q: %w", d.ID, err)
			}
		}
		for atom, v := range act.Effects {
			if err := ap.SetEffect(act.Name, atom, v); err != nil {
				return nil, fmt.Errorf("goap.Domain %q: %w", d.ID, err)
			}
		}
		if act.Cost != nil {
			if err := ap.SetCost(act.Name, *act.Cost); err != nil {
				return nil, fmt.Errorf("goap.Domain %q: %w", d.ID, err)
			}
		}
	}
	return ap, nil
}

// StartState returns the domain's static start facts resolved against ap.
func (d *Domain) StartState(ap *ActionPlanner) (WorldState, error) {
	return stateFrom(ap, d.Start)
}

// GoalState returns the domain's goal resolved against ap.
func (d *Domain) GoalState(ap *ActionPlanner) (WorldState, error) {
	return stateFrom(ap, d.Goal)
}

func stateFrom(ap *ActionPlanner, facts map[string]bool) (WorldState, error) {
	ws := NewWorldState()
	for atom, v := range facts {
		if err := ap.SetAtom(&ws, atom, v); err != nil {
			return WorldState{}, err
		}
	}
	return ws, nil
}

// yamlDomainFile wraps the YAML top-level key.
type yamlDomainFile struct {
	Domain *Domain `yaml:"domain"`
}

// LoadDomains reads all *.yaml files from dir and returns parsed Domains in
// file name order.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns error if any YAML file fails to parse or validate.
func LoadDomains(dir string) ([]*Domain, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("goap.LoadDomains: reading %q: %w", dir, err)
	}
	var domains []*Domain
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("goap.LoadDomains: reading %s: %w", e.Name(), err)
		}
		var f yamlDomainFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("goap.LoadDomains: parsing %s: %w", e.Name(), err)
		}
		if f.Domain == nil {
			return nil, fmt.Errorf("goap.LoadDomains: %s missing top-level 'domain' key", e.Name())
		}
		if err := f.Domain.Validate(); err != nil {
			return nil, err
		}
		domains = append(domains, f.Domain)
	}
	return domains, nil
}
