package commands

import (
	"fmt"

	"github.com/wonny/srm-sim/internal/contracts"
	"github.com/wonny/srm-sim/internal/engine"
	"github.com/wonny/srm-sim/internal/scenario"
	"github.com/wonny/srm-sim/pkg/config"
	"github.com/wonny/srm-sim/pkg/logger"
)

// simEnv is what every command needs before it can build sessions
type simEnv struct {
	cfg      *config.Config
	log      *logger.Logger
	session  engine.Config
	scenario *scenario.Config // nil = built-in catalog
	hash     string
}

// loadSimEnv loads config, logger and the optional scenario
func loadSimEnv() (*simEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	env := &simEnv{
		cfg:     cfg,
		log:     logger.New(cfg),
		session: engine.FromSim(cfg.Sim),
	}

	path := scenarioPath
	if path == "" {
		path = cfg.Sim.ScenarioPath
	}
	if path == "" {
		return env, nil
	}

	sc, _, err := scenario.Load(path)
	if err != nil {
		return nil, err
	}
	hash, err := scenario.Hash(sc)
	if err != nil {
		return nil, fmt.Errorf("hash scenario: %w", err)
	}

	env.scenario = sc
	env.hash = hash
	env.session = sc.Apply(env.session)

	env.log.WithFields(map[string]interface{}{
		"scenario":  sc.Meta.ScenarioID,
		"version":   sc.Meta.Version,
		"hash":      hash[:12],
		"suppliers": len(sc.Suppliers),
	}).Info("Scenario loaded")

	return env, nil
}

// options returns the session options implied by the scenario
func (e *simEnv) options() []engine.Option {
	opts := []engine.Option{engine.WithLogger(e.log)}
	if e.scenario != nil {
		opts = append(opts, e.scenario.Options()...)
	}
	return opts
}

// suppliers returns the scenario suppliers, or nil for the built-in catalog
func (e *simEnv) suppliers() []contracts.Supplier {
	if e.scenario == nil {
		return nil
	}
	return e.scenario.SupplierDefs()
}
