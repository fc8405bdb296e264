package commands

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/strategos-io/strategos/pkg/bridge"
	"github.com/strategos-io/strategos/pkg/config"
	"github.com/strategos-io/strategos/pkg/journey"
	"github.com/strategos-io/strategos/pkg/module"
	"github.com/strategos-io/strategos/pkg/orchestrator"
	"github.com/strategos-io/strategos/pkg/policy"
	"github.com/strategos-io/strategos/pkg/providers"
	"github.com/strategos-io/strategos/pkg/schema"
	"github.com/strategos-io/strategos/pkg/stores"
	"github.com/strategos-io/strategos/pkg/telemetry"
)

// runtime bundles the wired collaborators a command needs. Commands
// that only read static registries construct those directly and skip
// the runtime.
type runtime struct {
	cfg          *config.Config
	logger       *telemetry.Logger
	metrics      *telemetry.Metrics
	tracer       *telemetry.Tracer
	engine       *policy.Engine
	policyLoader *policy.Loader

	store  orchestrator.Store
	sqlite *stores.SQLiteStore

	metricsServer *http.Server
}

func newRuntime(ctx context.Context, version string) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	cfg.Telemetry.ServiceVersion = version

	logger, err := telemetry.NewLogger(cfg.Telemetry.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to configure logging: %w", err)
	}

	tracer, err := telemetry.NewTracer(cfg.Telemetry.Tracing, cfg.Telemetry.ServiceName, version, cfg.Telemetry.Environment)
	if err != nil {
		return nil, fmt.Errorf("failed to configure tracing: %w", err)
	}

	rt := &runtime{
		cfg:     cfg,
		logger:  logger,
		metrics: telemetry.NewMetrics(cfg.Telemetry.Metrics),
		tracer:  tracer,
	}

	rt.engine, err = policy.NewEngine(logger)
	if err != nil {
		rt.close(ctx)
		return nil, fmt.Errorf("failed to build policy engine: %w", err)
	}
	if len(cfg.Policy.Paths) > 0 {
		if err := rt.engine.LoadPolicies(ctx, cfg.Policy.Paths); err != nil {
			rt.close(ctx)
			return nil, err
		}
		if cfg.Policy.Watch {
			rt.policyLoader = policy.NewLoader(logger)
			if err := rt.policyLoader.Watch(ctx, cfg.Policy.Paths, rt.engine.SetPolicies); err != nil {
				rt.close(ctx)
				return nil, fmt.Errorf("failed to watch policy paths: %w", err)
			}
		}
	}

	if cfg.Storage.Path != "" {
		sqlite, err := stores.NewSQLiteStore(stores.Config{
			Path:            cfg.Storage.Path,
			MaxOpenConns:    cfg.Storage.MaxOpenConns,
			MaxIdleConns:    cfg.Storage.MaxIdleConns,
			ConnMaxLifetime: cfg.Storage.ConnMaxLifetime.Std(),
		})
		if err != nil {
			rt.close(ctx)
			return nil, err
		}
		if err := sqlite.Init(ctx); err != nil {
			rt.close(ctx)
			return nil, err
		}
		if err := sqlite.Migrate(ctx); err != nil {
			sqlite.Close()
			rt.close(ctx)
			return nil, err
		}
		rt.sqlite = sqlite
		rt.store = sqlite
	} else {
		logger.Warn().Msg("no storage path configured, sessions will not persist")
		rt.store = orchestrator.NewMemoryStore()
	}

	return rt, nil
}

// requireSQLite returns the durable store or an error for commands
// that query past sessions.
func (rt *runtime) requireSQLite() (*stores.SQLiteStore, error) {
	if rt.sqlite == nil {
		return nil, fmt.Errorf("no storage path configured; set storage.path in the config file or STRATEGOS_DB_PATH")
	}
	return rt.sqlite, nil
}

func (rt *runtime) newRunner() (*orchestrator.Runner, error) {
	modules, err := module.BuiltinRegistry()
	if err != nil {
		return nil, err
	}
	bridges, err := bridge.BuiltinRegistry()
	if err != nil {
		return nil, err
	}
	journeys, err := journey.BuiltinRegistry()
	if err != nil {
		return nil, err
	}
	builders, err := orchestrator.NewBuilderRegistry(orchestrator.BuiltinBuilders())
	if err != nil {
		return nil, err
	}

	caps, err := rt.capabilities()
	if err != nil {
		return nil, err
	}

	return orchestrator.NewRunner(orchestrator.RunnerOptions{
		Modules:      modules,
		Bridges:      bridges,
		Journeys:     journeys,
		Schemas:      schema.NewRegistry(),
		Builders:     builders,
		Capabilities: caps,
		Store:        rt.store,
		Logger:       rt.logger,
		Metrics:      rt.metrics,
		Tracer:       rt.tracer,
		Config: orchestrator.RunnerConfig{
			MaxRetries:    rt.cfg.Runner.MaxRetries,
			BaseBackoff:   rt.cfg.Runner.BaseBackoff.Std(),
			MaxBackoff:    rt.cfg.Runner.MaxBackoff.Std(),
			ResearchLimit: rt.cfg.Runner.ResearchLimit,
		},
	})
}

func (rt *runtime) capabilities() (providers.Capabilities, error) {
	var caps providers.Capabilities

	switch rt.cfg.Providers.Model {
	case "mock":
		caps.Model = providers.NewMockLLM()
	default:
		return caps, fmt.Errorf("unknown model provider: %s", rt.cfg.Providers.Model)
	}

	switch rt.cfg.Providers.Research {
	case "mock":
		caps.Research = providers.NewMockResearch()
	default:
		return caps, fmt.Errorf("unknown research provider: %s", rt.cfg.Providers.Research)
	}

	return caps, nil
}

// serveMetrics exposes /metrics for the duration of a run.
func (rt *runtime) serveMetrics() {
	mc := rt.cfg.Telemetry.Metrics
	if !mc.Enabled || mc.ListenAddress == "" || rt.metricsServer != nil {
		return
	}

	path := mc.Path
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, rt.metrics.Handler())

	rt.metricsServer = &http.Server{Addr: mc.ListenAddress, Handler: mux}
	go func() {
		if err := rt.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			rt.logger.Warn().Err(err).Str("address", mc.ListenAddress).Msg("metrics server stopped")
		}
	}()
	rt.logger.Info().Str("address", mc.ListenAddress).Str("path", path).Msg("serving metrics")
}

func (rt *runtime) close(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if rt.policyLoader != nil {
		if err := rt.policyLoader.StopWatching(); err != nil {
			rt.logger.Warn().Err(err).Msg("failed to stop policy watcher")
		}
	}
	if rt.metricsServer != nil {
		if err := rt.metricsServer.Shutdown(shutdownCtx); err != nil {
			rt.logger.Warn().Err(err).Msg("failed to stop metrics server")
		}
	}
	if rt.sqlite != nil {
		if err := rt.sqlite.Close(); err != nil {
			rt.logger.Warn().Err(err).Msg("failed to close store")
		}
	}
	if rt.tracer != nil {
		if err := rt.tracer.Shutdown(shutdownCtx); err != nil {
			rt.logger.Warn().Err(err).Msg("failed to shut down tracer")
		}
	}
}
