// Package engine implements the per-request orchestration state machine that
// turns a customer complaint into a citation-backed reply. The control graph
// is an explicit enumerated state table; every external call is absorbed on
// failure and both run ceilings are enforced here regardless of caller
// timeouts.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/replysight/server/internal/agent/model"
	"github.com/replysight/server/internal/agent/research"
	"github.com/replysight/server/internal/agent/session"
	errx "github.com/replysight/server/internal/core/errx"
	logx "github.com/replysight/server/pkg/logger"
)

// State enumerates the nodes of the orchestration graph.
type State string

const (
	StateStart             State = "START"
	StateAgentDecide       State = "AGENT_DECIDE"
	StateRouteTool         State = "ROUTE_TOOL"
	StateAcademicFetch     State = "ACADEMIC_FETCH"
	StateBestPracticeFetch State = "BESTPRACTICE_FETCH"
	StateExtractAcademic   State = "EXTRACT_ACADEMIC"
	StateExtractBestPract  State = "EXTRACT_BESTPRACTICE"
	StateRouteAction       State = "ROUTE_ACTION"
	StateQualityGate       State = "QUALITY_GATE"
	StateCompose           State = "COMPOSE"
	StateEnd               State = "END"
)

// Config holds everything needed to build an Engine. The configuration is
// constructed once at startup and passed in here; the engine never reads
// globals.
type Config struct {
	DecisionModel  einomodel.BaseChatModel
	EvaluatorModel einomodel.BaseChatModel
	ComposerModel  einomodel.BaseChatModel

	// Model names feed the cost accounting.
	DecisionModelName  string
	EvaluatorModelName string
	ComposerModelName  string

	Academic     research.Adapter
	BestPractice research.Adapter

	Engine model.EngineConfig

	// Sessions enables resumable checkpointing when set.
	Sessions session.Store
}

// Engine is the decision engine: one instance serves many requests, each
// request running its own RunState through the state table.
type Engine struct {
	decide     einomodel.BaseChatModel
	decideName string
	evaluator  *Evaluator
	composer   *Composer
	adapters   map[research.Kind]research.Adapter
	routes     map[string]research.Kind
	cfg        model.EngineConfig
	sessions   session.Store
}

// New validates the config and builds an Engine.
func New(cfg Config) (*Engine, error) {
	if cfg.DecisionModel == nil || cfg.EvaluatorModel == nil || cfg.ComposerModel == nil {
		return nil, fmt.Errorf("engine: all three chat models are required")
	}
	if cfg.Academic == nil || cfg.BestPractice == nil {
		return nil, fmt.Errorf("engine: both research adapters are required")
	}

	ec := cfg.Engine
	if ec.IterationCeiling <= 0 {
		ec.IterationCeiling = 4
	}
	if ec.HistoryCeiling <= 0 {
		ec.HistoryCeiling = 10
	}
	if ec.HelpfulnessThreshold <= 0 {
		ec.HelpfulnessThreshold = 0.7
	}

	return &Engine{
		decide:     cfg.DecisionModel,
		decideName: cfg.DecisionModelName,
		evaluator:  NewEvaluator(cfg.EvaluatorModel, cfg.EvaluatorModelName),
		composer:   NewComposer(cfg.ComposerModel, cfg.ComposerModelName),
		adapters: map[research.Kind]research.Adapter{
			research.KindAcademic:     cfg.Academic,
			research.KindBestPractice: cfg.BestPractice,
		},
		routes:   research.Routes(),
		cfg:      ec,
		sessions: cfg.Sessions,
	}, nil
}

// GenerateReply runs one full orchestration for the complaint and returns
// the caller-facing triple. The only error it can return is a structurally
// invalid input; every internal failure degrades the reply instead.
func (e *Engine) GenerateReply(ctx context.Context, complaint string) (model.Reply, error) {
	report, err := e.Generate(ctx, complaint)
	if err != nil {
		return model.Reply{}, err
	}
	return report.Reply, nil
}

// Generate is the richer entry point exposing the run report.
func (e *Engine) Generate(ctx context.Context, complaint string) (model.RunReport, error) {
	if strings.TrimSpace(complaint) == "" {
		return model.RunReport{}, errx.ErrEmptyComplaint
	}

	rs := model.NewRunState(uuid.NewString(), complaint)
	return e.finish(ctx, rs), nil
}

// Resume continues a checkpointed run identified by its session token.
func (e *Engine) Resume(ctx context.Context, sessionID string) (model.RunReport, error) {
	if e.sessions == nil {
		return model.RunReport{}, fmt.Errorf("engine: no session store configured")
	}
	rs, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		return model.RunReport{}, err
	}
	return e.finish(ctx, rs), nil
}

func (e *Engine) finish(ctx context.Context, rs *model.RunState) model.RunReport {
	start := time.Now()
	e.execute(ctx, rs)

	reply := rs.CandidateReply
	citations := rs.Citations
	if reply == "" {
		reply = rs.LastAssistantReply()
	}
	if reply == "" {
		// Nothing usable was produced; fall back deterministically.
		reply = FallbackReply
		if len(citations) == 0 {
			citations = CollectCitations(rs.Insights, rs.Examples)
		}
	}

	if e.sessions != nil {
		if err := e.sessions.Evict(ctx, rs.SessionID); err != nil {
			logx.Warn().Err(err).Str("session_id", rs.SessionID).Msg("failed to evict session checkpoint")
		}
	}

	quality := "partial"
	if rs.Research.Complete() {
		quality = "comprehensive"
	}

	return model.RunReport{
		Reply: model.Reply{
			Reply:     reply,
			Citations: citations,
			LatencyMs: time.Since(start).Milliseconds(),
		},
		SessionID:        rs.SessionID,
		Iterations:       rs.IterationCount,
		HelpfulnessScore: rs.HelpfulnessScore,
		ResearchQuality:  quality,
		MessageCount:     len(rs.History),
		DecisionReason:   decisionReason(rs),
		CostUSD:          rs.TotalCostUSD,
	}
}

// execute drives the state table until END. The step guard is a final
// defense on top of the two ceilings, sized so it can only trip if a step
// stops making progress.
func (e *Engine) execute(ctx context.Context, rs *model.RunState) {
	r := &run{rs: rs}

	cur := StateStart
	if len(rs.History) > 0 {
		// Resumed run: the history is already seeded.
		cur = StateAgentDecide
	}

	maxSteps := e.cfg.HistoryCeiling * 6
	if maxSteps < 40 {
		maxSteps = 40
	}

	for steps := 0; cur != StateEnd; steps++ {
		if steps >= maxSteps {
			rs.Decision = model.DecisionEndStepGuard
			logx.Warn().
				Str("session_id", rs.SessionID).
				Int("steps", steps).
				Msg("step guard tripped; forcing END")
			return
		}

		next := e.step(ctx, cur, r)
		logx.Debug().
			Str("session_id", rs.SessionID).
			Str("state", string(cur)).
			Str("next", string(next)).
			Int("history_len", len(rs.History)).
			Int("iterations", rs.IterationCount).
			Msg("transition")
		cur = next
	}
}

func (e *Engine) step(ctx context.Context, s State, r *run) State {
	switch s {
	case StateStart:
		return e.stepStart(ctx, r)
	case StateAgentDecide:
		return e.stepAgentDecide(ctx, r)
	case StateRouteTool:
		return e.stepRouteTool(ctx, r)
	case StateAcademicFetch:
		return e.stepFetch(ctx, r, research.KindAcademic)
	case StateBestPracticeFetch:
		return e.stepFetch(ctx, r, research.KindBestPractice)
	case StateExtractAcademic:
		return e.stepExtract(ctx, r, research.KindAcademic)
	case StateExtractBestPract:
		return e.stepExtract(ctx, r, research.KindBestPractice)
	case StateRouteAction:
		return e.stepRouteAction(ctx, r)
	case StateQualityGate:
		return e.stepQualityGate(ctx, r)
	case StateCompose:
		return e.stepCompose(ctx, r)
	default:
		return StateEnd
	}
}

func (e *Engine) checkpoint(ctx context.Context, rs *model.RunState) {
	if e.sessions == nil {
		return
	}
	if err := e.sessions.Put(ctx, rs.SessionID, rs); err != nil {
		logx.Warn().Err(err).Str("session_id", rs.SessionID).Msg("failed to checkpoint run state")
	}
}

func decisionReason(rs *model.RunState) string {
	switch rs.Decision {
	case model.DecisionEndLengthCeiling:
		return "Reached maximum conversation length"
	case model.DecisionEndHelpful:
		return fmt.Sprintf("Response quality sufficient (score: %.2f)", rs.HelpfulnessScore)
	case model.DecisionEndStepGuard:
		return "Step guard forced termination"
	default:
		return "Workflow completed"
	}
}

func usageOf(out *schema.Message) *schema.TokenUsage {
	if out == nil || out.ResponseMeta == nil {
		return nil
	}
	return out.ResponseMeta.Usage
}
