package goap

import (
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"
)

// Registry indexes Agents by domain ID.
//
// Invariant: each domain ID is registered at most once.
type Registry struct {
	agents map[string]*Agent
	opts   Options
	logger *zap.Logger
}

// NewRegistry returns an empty Registry whose agents search with opts.
func NewRegistry(opts Options, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{agents: make(map[string]*Agent), opts: opts, logger: logger}
}

// Register compiles domain and stores an Agent for it.
//
// Precondition: domain must not be nil.
// Postcondition: returns error on domain ID collision or invalid domain.
func (r *Registry) Register(domain *Domain, caller SensorCaller) error {
	if _, exists := r.agents[domain.ID]; exists {
		return fmt.Errorf("goap.Registry: domain %q already registered", domain.ID)
	}
	agent, err := NewAgent(domain, caller, r.opts, r.logger)
	if err != nil {
		return fmt.Errorf("goap.Registry: %w", err)
	}
	r.agents[domain.ID] = agent
	return nil
}

// AgentFor returns the Agent for domainID, or false if not registered.
func (r *Registry) AgentFor(domainID string) (*Agent, bool) {
	a, ok := r.agents[domainID]
	return a, ok
}

// IDs returns every registered domain ID in sorted order.
func (r *Registry) IDs() []string {
	return slices.Sorted(maps.Keys(r.agents))
}
