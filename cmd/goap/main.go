// Package main provides the goap binary, which loads planning domains and
// prints an action plan for each one.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/goap/internal/config"
	"github.com/cory-johannsen/goap/internal/goap"
	"github.com/cory-johannsen/goap/internal/observability"
	"github.com/cory-johannsen/goap/internal/scripting"
)

// factFlags collects repeated -fact name=value arguments.
type factFlags map[string]bool

func (f factFlags) String() string {
	parts := make([]string, 0, len(f))
	for k, v := range f {
		parts = append(parts, fmt.Sprintf("%s=%t", k, v))
	}
	return strings.Join(parts, ",")
}

func (f factFlags) Set(s string) error {
	name, raw, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return fmt.Errorf("fact %q must be name=value", s)
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fmt.Errorf("fact %q: %w", s, err)
	}
	f[name] = v
	return nil
}

func main() {
	start := time.Now()

	facts := factFlags{}
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	domainID := flag.String("domain", "", "plan for this domain only; empty = all domains")
	agentID := flag.String("agent", "agent-1", "agent ID passed to sensor scripts")
	table := flag.Bool("table", false, "print the compiled action table before each plan")
	flag.Var(facts, "fact", "sensor fact as name=bool; may be repeated")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	runID := uuid.New().String()
	logger, err := observability.NewLogger(cfg.Logging, runID)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	domains, err := goap.LoadDomains(cfg.Content.DomainsDir)
	if err != nil {
		logger.Fatal("loading domains", zap.Error(err))
	}
	logger.Info("domains loaded",
		zap.Int("count", len(domains)),
		zap.String("dir", cfg.Content.DomainsDir),
	)

	scriptMgr := scripting.NewManager(logger)
	defer scriptMgr.Close()
	scriptMgr.GetFact = func(_, name string) (bool, bool) {
		v, ok := facts[name]
		return v, ok
	}

	opts := goap.Options{MaxOpen: cfg.Planner.MaxOpen, MaxClosed: cfg.Planner.MaxClosed}
	reg := goap.NewRegistry(opts, logger)
	for _, d := range domains {
		var caller goap.SensorCaller
		if len(d.Sensors) > 0 && cfg.Content.ScriptsDir != "" {
			dir := filepath.Join(cfg.Content.ScriptsDir, d.ID)
			if info, statErr := os.Stat(dir); statErr == nil && info.IsDir() {
				if err := scriptMgr.LoadScope(d.ID, dir, cfg.Content.InstructionLimit); err != nil {
					logger.Fatal("loading sensor scripts", zap.String("domain", d.ID), zap.Error(err))
				}
				caller = scriptMgr
			} else {
				logger.Warn("no sensor scripts for domain; using static start facts",
					zap.String("domain", d.ID),
					zap.String("dir", dir),
				)
			}
		}
		if err := reg.Register(d, caller); err != nil {
			logger.Fatal("registering domain", zap.Error(err))
		}
	}

	ids := reg.IDs()
	if *domainID != "" {
		if _, ok := reg.AgentFor(*domainID); !ok {
			log.Fatalf("unknown domain %q (loaded: %s)", *domainID, strings.Join(ids, ", "))
		}
		ids = []string{*domainID}
	}

	for _, id := range ids {
		agent, _ := reg.AgentFor(id)
		fmt.Printf("== %s ==\n", id)
		if *table {
			fmt.Print(agent.Planner().String())
			fmt.Println()
		}
		plan, err := agent.Plan(*agentID)
		switch {
		case errors.Is(err, goap.ErrNoPlan):
			fmt.Printf("no plan: %v\n\n", err)
			continue
		case err != nil:
			logger.Fatal("planning", zap.String("domain", id), zap.Error(err))
		}
		fmt.Print(agent.Planner().FormatPlan(plan))
		fmt.Println()
	}

	logger.Info("planning complete",
		zap.Int("domains", len(ids)),
		zap.Duration("elapsed", time.Since(start)),
	)
}
