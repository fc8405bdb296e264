package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/strategos-io/strategos/pkg/bridge"
	"github.com/strategos-io/strategos/pkg/journey"
	"github.com/strategos-io/strategos/pkg/module"
	"github.com/strategos-io/strategos/pkg/providers"
	"github.com/strategos-io/strategos/pkg/quality"
	"github.com/strategos-io/strategos/pkg/schema"
	"github.com/strategos-io/strategos/pkg/telemetry"
)

// ModuleResult records one framework execution attempt's outcome.
type ModuleResult struct {
	SessionID      string                 `json:"sessionId"`
	FrameworkID    string                 `json:"frameworkId"`
	Attempt        int                    `json:"attempt"`
	Status         string                 `json:"status"`
	Output         json.RawMessage        `json:"output,omitempty"`
	OverallScore   float64                `json:"overallScore,omitempty"`
	Recommendation quality.Recommendation `json:"recommendation,omitempty"`
	Error          string                 `json:"error,omitempty"`
	StartedAt      time.Time              `json:"startedAt"`
	CompletedAt    time.Time              `json:"completedAt"`
}

// Event is a progress record emitted while a journey runs.
type Event struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Event types.
const (
	EventInfo    = "info"
	EventWarning = "warning"
	EventError   = "error"
)

// Store persists run state. The orchestration loop writes the context
// after every framework so a failed or paused run resumes from
// last-good state.
type Store interface {
	SaveContext(ctx context.Context, sc *StrategicContext) error
	LoadContext(ctx context.Context, sessionID string) (*StrategicContext, error)
	SaveModuleResult(ctx context.Context, res *ModuleResult) error
	SaveEvent(ctx context.Context, ev *Event) error
	SaveSummary(ctx context.Context, summary *JourneySummary) error
}

// RunnerConfig tunes retry behavior.
type RunnerConfig struct {
	// MaxRetries bounds re-invocations after a retryable failure.
	MaxRetries int

	// BaseBackoff is the first retry delay.
	BaseBackoff time.Duration

	// MaxBackoff caps the exponential delay.
	MaxBackoff time.Duration

	// ResearchLimit bounds the citations fetched at journey start.
	ResearchLimit int
}

// DefaultRunnerConfig returns the production retry settings.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		MaxRetries:    2,
		BaseBackoff:   time.Second,
		MaxBackoff:    time.Minute,
		ResearchLimit: 8,
	}
}

// RunnerOptions wires a Runner's collaborators.
type RunnerOptions struct {
	Modules      *module.Registry
	Bridges      *bridge.Registry
	Journeys     *journey.Registry
	Schemas      *schema.Registry
	Builders     *BuilderRegistry
	Capabilities providers.Capabilities
	Store        Store
	Logger       *telemetry.Logger
	Metrics      *telemetry.Metrics
	Tracer       *telemetry.Tracer
	Scorer       quality.Scorer
	Config       RunnerConfig
}

// Runner drives journey runs sequentially: one framework at a time,
// each gated on schema validity and quality before the next starts.
type Runner struct {
	modules  *module.Registry
	bridges  *bridge.Registry
	journeys *journey.Registry
	schemas  *schema.Registry
	builders *BuilderRegistry
	caps     providers.Capabilities
	store    Store
	logger   *telemetry.Logger
	metrics  *telemetry.Metrics
	tracer   *telemetry.Tracer
	scorer   quality.Scorer
	cfg      RunnerConfig
}

// NewRunner validates the wiring and cross-checks every registered
// journey against the module and bridge registries, failing fast on
// inconsistency rather than at run time.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Modules == nil || opts.Bridges == nil || opts.Journeys == nil || opts.Schemas == nil {
		return nil, NewValidationError("runner requires module, bridge, journey, and schema registries", nil)
	}
	if opts.Builders == nil {
		return nil, NewValidationError("runner requires a summary builder registry", nil)
	}
	if opts.Store == nil {
		return nil, NewValidationError("runner requires a store", nil)
	}
	if opts.Capabilities.Model == nil {
		return nil, NewValidationError("runner requires a model client", nil)
	}
	if opts.Logger == nil {
		opts.Logger = telemetry.Nop()
	}
	if opts.Metrics == nil {
		opts.Metrics = telemetry.NewMetrics(telemetry.MetricsConfig{})
	}
	if opts.Scorer == nil {
		opts.Scorer = quality.NewJudgeScorer(opts.Capabilities.Model)
	}
	if opts.Config.MaxRetries == 0 && opts.Config.BaseBackoff == 0 {
		opts.Config = DefaultRunnerConfig()
	}
	if opts.Config.MaxBackoff == 0 {
		opts.Config.MaxBackoff = time.Minute
	}
	if opts.Config.ResearchLimit == 0 {
		opts.Config.ResearchLimit = 8
	}

	validator := journey.NewValidator(opts.Modules, opts.Bridges, opts.Builders.Names())
	issues := validator.ValidateAll(opts.Journeys)
	if journey.HasErrors(issues) {
		msgs := make([]string, 0, len(issues))
		for _, i := range issues {
			if i.Severity == journey.SeverityError {
				msgs = append(msgs, fmt.Sprintf("%s: %s", i.JourneyID, i.Message))
			}
		}
		return nil, NewValidationError("journey registry inconsistent: "+strings.Join(msgs, "; "), nil)
	}

	return &Runner{
		modules:  opts.Modules,
		bridges:  opts.Bridges,
		journeys: opts.Journeys,
		schemas:  opts.Schemas,
		builders: opts.Builders,
		caps:     opts.Capabilities,
		store:    opts.Store,
		logger:   opts.Logger.NewComponentLogger("runner"),
		metrics:  opts.Metrics,
		tracer:   opts.Tracer,
		scorer:   opts.Scorer,
		cfg:      opts.Config,
	}, nil
}

// StartJourney creates the strategic context for a new run, gathers
// shared research, and enforces the journey's readiness thresholds.
func (r *Runner) StartJourney(ctx context.Context, journeyID string, business schema.BusinessContext, problem string) (*StrategicContext, error) {
	def, err := r.journeys.Get(journeyID)
	if err != nil {
		return nil, NewNotFoundError("journey not registered", err)
	}

	sc := NewStrategicContext(def, business, problem)
	log := r.logger.WithSession(sc.SessionID).WithJourney(def.ID)

	if r.caps.Research != nil {
		query := business.Name
		if business.Industry != "" {
			query += " " + business.Industry
		}
		if len(business.Keywords) > 0 {
			query += " " + strings.Join(business.Keywords, " ")
		}
		research, err := r.caps.Research.Search(ctx, query, r.cfg.ResearchLimit)
		if err != nil {
			return nil, NewExternalCallError("", err).WithSession(sc.SessionID).WithDetail("operation", "research")
		}
		sc.Research = research
	}

	if err := r.checkReadiness(def, sc); err != nil {
		return nil, err
	}

	if err := r.store.SaveContext(ctx, sc); err != nil {
		return nil, NewInternalError("failed to persist new context", err)
	}
	r.emitEvent(ctx, sc.SessionID, EventInfo, fmt.Sprintf("journey %s started", def.ID))
	r.metrics.JourneyStarted(string(def.Type))
	log.Info().Str("journey_type", string(def.Type)).Int("frameworks", len(def.Frameworks)).Msg("journey started")

	return sc, nil
}

// checkReadiness enforces the journey's evidence thresholds.
func (r *Runner) checkReadiness(def *journey.Definition, sc *StrategicContext) error {
	if len(sc.Research) < def.DefaultReadiness.MinReferences {
		return NewValidationError(
			fmt.Sprintf("readiness not met: %d references, journey requires %d",
				len(sc.Research), def.DefaultReadiness.MinReferences), nil,
		).WithSession(sc.SessionID)
	}

	entities := make(map[string]bool)
	for _, c := range sc.Research {
		entities[c.Source+"|"+c.Title] = true
	}
	if len(entities) < def.DefaultReadiness.MinEntities {
		return NewValidationError(
			fmt.Sprintf("readiness not met: %d distinct entities, journey requires %d",
				len(entities), def.DefaultReadiness.MinEntities), nil,
		).WithSession(sc.SessionID)
	}
	return nil
}

// Run executes the journey from the context's current position through
// completion, producing the summary. A paused context resumes.
func (r *Runner) Run(ctx context.Context, sc *StrategicContext) (*JourneySummary, error) {
	def, err := r.journeys.Get(sc.JourneyID)
	if err != nil {
		return nil, NewNotFoundError("journey not registered", err)
	}

	if sc.Status.IsTerminal() {
		return nil, NewValidationError(fmt.Sprintf("session %s already %s", sc.SessionID, sc.Status), nil)
	}
	if sc.Status != StatusInProgress {
		if err := sc.SetStatus(StatusInProgress); err != nil {
			return nil, err
		}
	}

	log := r.logger.WithSession(sc.SessionID).WithJourney(def.ID)
	started := time.Now()

	if r.tracer != nil {
		var span trace.Span
		ctx, span = r.tracer.StartJourneySpan(ctx, sc.SessionID, def.ID)
		defer span.End()
	}

	for idx := sc.CurrentFrameworkIndex; idx < len(def.Frameworks); idx++ {
		fw := def.Frameworks[idx]
		if err := r.executeFramework(ctx, def, sc, idx); err != nil {
			r.failJourney(ctx, sc, started, err)
			return nil, err
		}

		if err := r.store.SaveContext(ctx, sc); err != nil {
			persistErr := NewInternalError("failed to persist context", err).WithSession(sc.SessionID)
			r.failJourney(ctx, sc, started, persistErr)
			return nil, persistErr
		}
		r.emitEvent(ctx, sc.SessionID, EventInfo, fmt.Sprintf("framework %s completed", fw))
		log.Info().Str("framework", fw).Int("position", idx).Msg("framework completed")
	}

	summary, err := r.buildSummary(ctx, def, sc)
	if err != nil {
		r.failJourney(ctx, sc, started, err)
		return nil, err
	}

	if err := sc.SetStatus(StatusCompleted); err != nil {
		return nil, err
	}
	if err := r.store.SaveContext(ctx, sc); err != nil {
		return nil, NewInternalError("failed to persist completed context", err)
	}
	r.emitEvent(ctx, sc.SessionID, EventInfo, "journey completed")
	r.metrics.JourneyFinished(string(def.Type), string(StatusCompleted), time.Since(started))
	log.Info().Dur("duration", time.Since(started)).Msg("journey completed")

	return summary, nil
}

// Pause suspends an in-progress run between frameworks.
func (r *Runner) Pause(ctx context.Context, sessionID string) error {
	sc, err := r.store.LoadContext(ctx, sessionID)
	if err != nil {
		return NewNotFoundError("session not found", err)
	}
	if err := sc.SetStatus(StatusPaused); err != nil {
		return err
	}
	if err := r.store.SaveContext(ctx, sc); err != nil {
		return NewInternalError("failed to persist paused context", err)
	}
	r.emitEvent(ctx, sessionID, EventInfo, "journey paused")
	return nil
}

// Resume continues a paused run from its last-good state.
func (r *Runner) Resume(ctx context.Context, sessionID string) (*JourneySummary, error) {
	sc, err := r.store.LoadContext(ctx, sessionID)
	if err != nil {
		return nil, NewNotFoundError("session not found", err)
	}
	if sc.Status != StatusPaused {
		return nil, NewValidationError(fmt.Sprintf("session %s is %s, only paused sessions resume", sessionID, sc.Status), nil)
	}
	r.emitEvent(ctx, sessionID, EventInfo, "journey resumed")
	return r.Run(ctx, sc)
}

// executeFramework runs one framework through its full gate sequence:
// dependency check, input build, bridge enrichment, input validation,
// execution with retry, output validation, and quality gate.
func (r *Runner) executeFramework(ctx context.Context, def *journey.Definition, sc *StrategicContext, idx int) error {
	fw := def.Frameworks[idx]
	log := r.logger.WithSession(sc.SessionID).WithFramework(fw)

	contract, err := r.modules.Get(fw)
	if err != nil {
		return NewNotFoundError("module not registered", err).WithFramework(fw).WithSession(sc.SessionID)
	}

	// Dependency gates run before any external call.
	for _, req := range contract.RequiredDependencies {
		if !sc.HasCompleted(req) {
			r.metrics.ErrorRecorded(ErrCodeDependencyNotSatisfied)
			return NewDependencyNotSatisfiedError(fw, req).WithSession(sc.SessionID)
		}
	}
	for _, dep := range def.Dependencies {
		if dep.To == fw && !sc.HasCompleted(dep.From) {
			r.metrics.ErrorRecorded(ErrCodeDependencyNotSatisfied)
			return NewDependencyNotSatisfiedError(fw, dep.From).WithSession(sc.SessionID)
		}
	}

	input, err := r.buildInput(fw, sc)
	if err != nil {
		return NewInternalError("failed to build input", err).WithFramework(fw).WithSession(sc.SessionID)
	}

	// Bridge enrichment from the previous framework in the sequence.
	if idx > 0 {
		prev := def.Frameworks[idx-1]
		br, err := r.bridges.Get(prev, fw)
		if err != nil {
			r.metrics.ErrorRecorded(ErrCodeMissingBridge)
			return NewMissingBridgeError(prev, fw).WithSession(sc.SessionID)
		}
		prevOutput, ok := sc.Outputs[prev]
		if !ok {
			return NewInternalError(fmt.Sprintf("no output recorded for completed framework %s", prev), nil).WithSession(sc.SessionID)
		}
		input, err = br.Apply(ctx, prevOutput, input)
		if err != nil {
			return NewInternalError("bridge transform failed", err).WithFramework(fw).WithSession(sc.SessionID)
		}
		r.harvestEnrichment(sc, input)
	}

	if result := contract.ValidateInput(r.schemas, input); !result.Valid {
		r.metrics.ErrorRecorded(ErrCodeSchemaValidation)
		return NewSchemaValidationError(fw, "input", result.Errors).WithSession(sc.SessionID)
	}

	var lastErr error
	for attempt := 0; attempt <= r.cfg.MaxRetries; attempt++ {
		startedAt := time.Now()
		attemptCtx := ctx
		var span trace.Span
		if r.tracer != nil {
			attemptCtx, span = r.tracer.StartFrameworkSpan(ctx, fw, attempt)
		}
		output, assessment, execErr := r.attemptExecution(attemptCtx, contract, input)
		duration := time.Since(startedAt)
		if span != nil {
			telemetry.RecordError(span, execErr)
			span.End()
		}

		if execErr == nil {
			r.recordResult(ctx, &ModuleResult{
				SessionID:      sc.SessionID,
				FrameworkID:    fw,
				Attempt:        attempt,
				Status:         "completed",
				Output:         output,
				OverallScore:   assessment.OverallScore,
				Recommendation: assessment.Recommendation,
				StartedAt:      startedAt,
				CompletedAt:    time.Now(),
			})
			r.metrics.FrameworkExecuted(fw, "completed", duration)
			r.metrics.QualityScored(fw, assessment.OverallScore)

			sc.MarkCompleted(fw, output, assessment)
			r.harvestOutput(sc, fw, output)
			return nil
		}

		lastErr = execErr
		r.metrics.ErrorRecorded(CodeOf(execErr))
		r.recordResult(ctx, &ModuleResult{
			SessionID:   sc.SessionID,
			FrameworkID: fw,
			Attempt:     attempt,
			Status:      "failed",
			Error:       execErr.Error(),
			StartedAt:   startedAt,
			CompletedAt: time.Now(),
		})

		if !IsRetryable(execErr) || attempt == r.cfg.MaxRetries {
			r.metrics.FrameworkExecuted(fw, "failed", duration)
			return execErr
		}

		r.metrics.FrameworkRetried(fw, CodeOf(execErr))
		r.emitEvent(ctx, sc.SessionID, EventWarning,
			fmt.Sprintf("retrying %s after failure (attempt %d/%d)", fw, attempt+1, r.cfg.MaxRetries+1))
		log.Warn().Err(execErr).Int("attempt", attempt+1).Msg("framework attempt failed, retrying")

		select {
		case <-time.After(r.backoff(attempt, execErr)):
		case <-ctx.Done():
			return NewExternalCallError(fw, ctx.Err()).WithSession(sc.SessionID)
		}
	}

	return lastErr
}

// attemptExecution performs one execute/validate/score pass.
func (r *Runner) attemptExecution(ctx context.Context, contract *module.Contract, input json.RawMessage) (json.RawMessage, *quality.Assessment, error) {
	output, err := contract.Execute(ctx, input, r.caps)
	if err != nil {
		return nil, nil, NewExternalCallError(contract.ID, err)
	}

	if result := contract.ValidateOutput(r.schemas, output); !result.Valid {
		return nil, nil, NewSchemaValidationError(contract.ID, "output", result.Errors)
	}

	assessment, err := contract.ScoreQuality(ctx, r.scorer, output)
	if err != nil {
		return nil, nil, NewExternalCallError(contract.ID, err).WithDetail("operation", "score")
	}

	if !assessment.Passes(contract.MinimumQualityScore) {
		return nil, nil, NewQualityGateError(contract.ID, assessment.OverallScore, contract.MinimumQualityScore).
			WithDetail("redFlags", assessment.RedFlags)
	}

	return output, assessment, nil
}

// backoff computes the exponential retry delay with jitter. Throttled
// errors wait longer from the start.
func (r *Runner) backoff(attempt int, err error) time.Duration {
	base := r.cfg.BaseBackoff
	if IsThrottled(err) {
		base *= 5
	}

	delay := time.Duration(float64(base) * math.Pow(2, float64(attempt)))
	if delay > r.cfg.MaxBackoff {
		delay = r.cfg.MaxBackoff
	}

	jitter := time.Duration(rand.Float64() * 0.25 * float64(delay))
	return delay + jitter
}

// buildInput assembles a framework's base input from the accumulated
// context. Bridges enrich it afterwards.
func (r *Runner) buildInput(fw string, sc *StrategicContext) (json.RawMessage, error) {
	switch fw {
	case "five_whys":
		return json.Marshal(schema.FiveWhysInput{
			BusinessContext:  sc.BusinessContext,
			ProblemStatement: sc.ProblemStatement,
			Research:         sc.Research,
		})
	case "pestle":
		return json.Marshal(schema.PestleInput{
			BusinessContext: sc.BusinessContext,
			Research:        sc.Research,
		})
	case "five_forces":
		return json.Marshal(schema.FiveForcesInput{
			BusinessContext: sc.BusinessContext,
			Research:        sc.Research,
		})
	case "swot":
		return json.Marshal(schema.SwotInput{
			BusinessContext: sc.BusinessContext,
			Research:        sc.Research,
		})
	case "bmc":
		return json.Marshal(schema.BmcInput{
			BusinessContext: sc.BusinessContext,
			Research:        sc.Research,
		})
	default:
		return json.Marshal(map[string]interface{}{
			"businessContext": sc.BusinessContext,
			"research":        sc.Research,
		})
	}
}

// harvestEnrichment copies bridge-produced enrichment into the
// insights bag so summaries and downstream consumers see it.
func (r *Runner) harvestEnrichment(sc *StrategicContext, input json.RawMessage) {
	var carried struct {
		EntrySignals         []schema.EntrySignal         `json:"entrySignals"`
		CompetitivePressures []schema.CompetitivePressure `json:"competitivePressures"`
		DesignConstraints    []schema.DesignConstraint    `json:"designConstraints"`
	}
	if err := json.Unmarshal(input, &carried); err != nil {
		return
	}
	if len(carried.EntrySignals) > 0 {
		sc.Insights.EntrySignals = carried.EntrySignals
	}
	if len(carried.CompetitivePressures) > 0 {
		sc.Insights.CompetitivePressures = carried.CompetitivePressures
	}
	if len(carried.DesignConstraints) > 0 {
		sc.Insights.DesignConstraints = carried.DesignConstraints
	}
}

// harvestOutput folds a gated output into the insights bag and the
// knowledge ledger.
func (r *Runner) harvestOutput(sc *StrategicContext, fw string, output json.RawMessage) {
	switch fw {
	case "five_whys":
		var out schema.FiveWhysOutput
		if json.Unmarshal(output, &out) != nil {
			return
		}
		sc.Insights.RootCauses = out.RootCauses
		for _, rc := range out.RootCauses {
			sc.AddClaim(rc.Statement, fw, rc.Confidence, false)
		}
	case "pestle":
		var out schema.PestleOutput
		if json.Unmarshal(output, &out) != nil {
			return
		}
		sc.Insights.TrendFactors = out.Factors
		for _, f := range out.Factors {
			confidence := 0.5
			if f.Severity == schema.SeverityHigh {
				confidence = 0.75
			}
			sc.AddClaim(f.Title+": "+f.Description, fw, confidence, false)
		}
	case "five_forces":
		var out schema.FiveForcesOutput
		if json.Unmarshal(output, &out) != nil {
			return
		}
		sc.Insights.CompetitiveForces = &out
	case "swot":
		var out schema.SwotOutput
		if json.Unmarshal(output, &out) != nil {
			return
		}
		sc.Insights.SwotFactors = &out
		sc.Insights.Synthesis = out.Synthesis
	case "bmc":
		var out schema.BmcOutput
		if json.Unmarshal(output, &out) != nil {
			return
		}
		sc.Insights.CanvasBlocks = &out
		for _, entry := range out.ValuePropositions {
			sc.AddClaim(entry.Statement, fw, entry.Confidence, false)
		}
	}
}

// buildSummary resolves and runs the journey's summary builder.
func (r *Runner) buildSummary(ctx context.Context, def *journey.Definition, sc *StrategicContext) (*JourneySummary, error) {
	builder, err := r.builders.Get(def.SummaryBuilder)
	if err != nil {
		return nil, err
	}

	// The completed transition right after this bumps the context
	// version once more; the summary records that final version.
	summary, err := builder(sc, SessionMeta{
		VersionNumber: sc.Version + 1,
		CompletedAt:   time.Now().UTC(),
	})
	if err != nil {
		return nil, NewInternalError("summary builder failed", err).WithSession(sc.SessionID)
	}

	if err := r.store.SaveSummary(ctx, summary); err != nil {
		return nil, NewInternalError("failed to persist summary", err).WithSession(sc.SessionID)
	}
	return summary, nil
}

// failJourney moves the run to failed and persists last-good state.
func (r *Runner) failJourney(ctx context.Context, sc *StrategicContext, started time.Time, cause error) {
	sc.LastError = cause.Error()
	if sc.Status.CanTransitionTo(StatusFailed) {
		sc.Status = StatusFailed
		sc.touch()
	}
	if err := r.store.SaveContext(ctx, sc); err != nil {
		r.logger.Error().Err(err).Str("session_id", sc.SessionID).Msg("failed to persist failed context")
	}
	r.emitEvent(ctx, sc.SessionID, EventError, cause.Error())
	r.metrics.JourneyFinished(string(sc.JourneyType), string(StatusFailed), time.Since(started))
	r.logger.Error().Err(cause).Str("session_id", sc.SessionID).Msg("journey failed")
}

func (r *Runner) recordResult(ctx context.Context, res *ModuleResult) {
	if err := r.store.SaveModuleResult(ctx, res); err != nil {
		r.logger.Error().Err(err).Str("framework", res.FrameworkID).Msg("failed to persist module result")
	}
}

func (r *Runner) emitEvent(ctx context.Context, sessionID, eventType, message string) {
	ev := &Event{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Type:      eventType,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.store.SaveEvent(ctx, ev); err != nil {
		r.logger.Error().Err(err).Msg("failed to persist event")
	}
}
