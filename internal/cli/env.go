package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/symbolpack/internal/anchor"
	"github.com/roach88/symbolpack/internal/capability"
	"github.com/roach88/symbolpack/internal/config"
	"github.com/roach88/symbolpack/internal/fingerprint"
	"github.com/roach88/symbolpack/internal/pack"
	"github.com/roach88/symbolpack/internal/runid"
	"github.com/roach88/symbolpack/internal/schema"
	"github.com/roach88/symbolpack/internal/store"
)

// environment is the per-invocation wiring shared by the pipeline
// commands.
type environment struct {
	cfg          *config.Config
	logger       *slog.Logger
	registry     *capability.Registry
	validator    *schema.Validator // nil when schema.validate is off
	ledger       *store.Store      // nil when no ledger is configured
	fingerprints *fingerprint.Resolver
	runIDs       runid.Generator
}

// newEnvironment loads configuration and opens what it names. The caller
// must Close the environment.
func newEnvironment(opts *RootOptions, cmd *cobra.Command) (*environment, error) {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	}))

	cfg, err := config.LoadConfig(opts.ConfigFile)
	if err != nil {
		return nil, err
	}

	registry, err := capability.LoadRegistry(cfg.Capabilities.Registry)
	if err != nil {
		return nil, err
	}

	env := &environment{
		cfg:          cfg,
		logger:       logger,
		registry:     registry,
		fingerprints: fingerprint.NewResolver(logger),
		runIDs:       opts.RunIDs,
	}
	if env.runIDs == nil {
		env.runIDs = runid.UUIDv7Generator{}
	}

	if cfg.Schema.Validate {
		v, err := schema.New()
		if err != nil {
			return nil, fmt.Errorf("compile schemas: %w", err)
		}
		env.validator = v
	}

	ledgerPath := cfg.Ledger.Path
	if opts.LedgerPath != "" {
		ledgerPath = opts.LedgerPath
	}
	if ledgerPath != "" {
		st, err := store.Open(ledgerPath)
		if err != nil {
			return nil, fmt.Errorf("open ledger: %w", err)
		}
		env.ledger = st
		logger.Debug("ledger opened", "path", ledgerPath)
	}

	logger.Debug("configuration loaded",
		"analyzer", cfg.Analyzer.Name,
		"analyzer_version", cfg.Analyzer.Version,
		"registry_version", registry.Version(),
		"schema_validate", cfg.Schema.Validate)
	return env, nil
}

// Close releases the ledger, if any.
func (e *environment) Close() {
	if e.ledger == nil {
		return
	}
	if err := e.ledger.Close(); err != nil {
		e.logger.Error("error closing ledger", "error", err)
	}
}

// runID returns id, or a freshly generated one when id is empty.
func (e *environment) runID(id string) string {
	if id != "" {
		return id
	}
	generated := e.runIDs.Generate()
	e.logger.Debug("analysis run id generated", "analysis_run_id", generated)
	return generated
}

// emitter wires an Emitter from the configuration.
func (e *environment) emitter() *pack.Emitter {
	assembler := pack.NewAssembler(
		anchor.NewBuilder(e.cfg.AnchorOptions(), e.logger),
		capability.NewResolver(e.registry),
		e.cfg.Metadata(),
		pack.SystemClock{},
		e.logger,
	)

	opts := []pack.EmitterOption{pack.WithLogger(e.logger)}
	if e.validator != nil {
		opts = append(opts, pack.WithValidator(e.validator))
	}
	if e.ledger != nil {
		opts = append(opts, pack.WithLedger(e.ledger))
	}
	return pack.NewEmitter(assembler, e.fingerprints, opts...)
}
