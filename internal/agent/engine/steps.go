package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/replysight/server/internal/agent/model"
	"github.com/replysight/server/internal/agent/prompts"
	"github.com/replysight/server/internal/agent/research"
	logx "github.com/replysight/server/pkg/logger"
)

// run carries the step-local scratch for one pass through the table. Only
// RunState is checkpointed; everything here is re-derived on resume.
type run struct {
	rs *model.RunState

	pendingQuery  string
	pendingTool   string
	pendingCallID string
	result        research.Result

	toolCallIDSeq int
}

// stepStart seeds the history with the system instruction summarizing the
// complaint and the research-completion flags.
func (e *Engine) stepStart(ctx context.Context, r *run) State {
	sys, err := prompts.RenderDecisionSystem(ctx, r.rs.Complaint, r.rs.Research)
	if err != nil {
		logx.Error().Err(err).Msg("failed to render decision prompt")
		sys = "You are an expert customer service research assistant.\nCOMPLAINT: " + r.rs.Complaint
	}
	r.rs.Append(schema.SystemMessage(sys))
	return StateAgentDecide
}

// stepAgentDecide invokes the decision model with the full history. A model
// failure is absorbed: a system notice keeps the history growing toward the
// length ceiling and control degrades toward composition.
func (e *Engine) stepAgentDecide(ctx context.Context, r *run) State {
	out, err := e.decide.Generate(ctx, r.rs.History)
	if err != nil || out == nil {
		logx.Warn().Err(err).Str("session_id", r.rs.SessionID).Msg("decision model unavailable")
		r.rs.Append(&schema.Message{
			Role:    schema.System,
			Content: "SYSTEM NOTICE: The decision model is unavailable. Proceed with the research gathered so far.",
		})
		return StateRouteAction
	}

	r.rs.AccumulateCost(e.decideName, usageOf(out))

	// Some providers omit tool call IDs; synthesize them so tool results can
	// reference their call.
	for i := range out.ToolCalls {
		if strings.TrimSpace(out.ToolCalls[i].ID) == "" {
			r.toolCallIDSeq++
			out.ToolCalls[i].ID = fmt.Sprintf("call_%d", r.toolCallIDSeq)
		}
	}

	r.rs.Append(out)

	// Retrievals are only routed below the iteration ceiling; at the ceiling
	// any further tool requests are dropped and control degrades to action.
	if r.rs.IterationCount < e.cfg.IterationCeiling {
		if _, ok := e.firstRoutable(out.ToolCalls); ok {
			return StateRouteTool
		}
	}
	return StateRouteAction
}

// stepRouteTool routes exactly one retrieval per cycle: the first requested
// tool with a known name wins, the rest of the turn's calls are dropped.
func (e *Engine) stepRouteTool(_ context.Context, r *run) State {
	last := r.rs.History[len(r.rs.History)-1]

	tc, ok := e.firstRoutable(last.ToolCalls)
	if !ok {
		// Unreachable when entered via stepAgentDecide; kept total.
		return StateRouteAction
	}

	kind := e.routes[tc.Function.Name]
	r.pendingTool = tc.Function.Name
	r.pendingCallID = tc.ID
	r.pendingQuery = queryArg(tc.Function.Arguments, r.rs.Complaint)

	if kind == research.KindAcademic {
		r.rs.Decision = model.DecisionAcademicFetch
		return StateAcademicFetch
	}
	r.rs.Decision = model.DecisionBestPractice
	return StateBestPracticeFetch
}

func (e *Engine) stepFetch(ctx context.Context, r *run, kind research.Kind) State {
	r.result = e.adapters[kind].Invoke(ctx, r.pendingQuery)
	if r.result.Failed() {
		logx.Warn().
			Str("session_id", r.rs.SessionID).
			Str("kind", kind.String()).
			Str("error", r.result.Err).
			Msg("retrieval returned error marker")
	}
	if kind == research.KindAcademic {
		return StateExtractAcademic
	}
	return StateExtractBestPract
}

// stepExtract merges the adapter result into state. An error result still
// completes the cycle: the flag is set and the iteration advances, so a
// broken upstream cannot spin the loop.
func (e *Engine) stepExtract(ctx context.Context, r *run, kind research.Kind) State {
	marker := r.result.Marker()

	if kind == research.KindAcademic {
		r.rs.MergeInsights(marker)
		r.rs.Research.Academic = true
	} else {
		r.rs.MergeExamples(marker)
		r.rs.Research.BestPractice = true
	}

	content, err := json.Marshal(marker)
	if err != nil {
		content = []byte(`{"error":"unencodable tool result"}`)
	}
	r.rs.Append(schema.ToolMessage(string(content), r.pendingCallID, schema.WithToolName(r.pendingTool)))

	r.rs.IterationCount++
	e.checkpoint(ctx, r.rs)

	return StateAgentDecide
}

// stepRouteAction decides between composing and the quality gate: compose
// when both sources are in or the iteration ceiling is hit.
func (e *Engine) stepRouteAction(_ context.Context, r *run) State {
	if r.rs.Research.Complete() || r.rs.IterationCount >= e.cfg.IterationCeiling {
		r.rs.Decision = model.DecisionCompose
		return StateCompose
	}
	r.rs.Decision = model.DecisionContinue
	return StateQualityGate
}

// stepQualityGate enforces the conversation-length ceiling, then evaluates
// the newest candidate reply. With no candidate to score it must not
// fabricate one: control returns to the decision state.
func (e *Engine) stepQualityGate(ctx context.Context, r *run) State {
	if len(r.rs.History) > e.cfg.HistoryCeiling {
		r.rs.Decision = model.DecisionEndLengthCeiling
		return StateEnd
	}

	candidate := r.rs.LastAssistantReply()
	if candidate == "" {
		r.rs.Decision = model.DecisionContinue
		return StateAgentDecide
	}

	score, usage := e.evaluator.Score(ctx, r.rs.Complaint, candidate)
	r.rs.AccumulateCost(e.evaluator.modelName, usage)
	r.rs.SetHelpfulness(score)

	if r.rs.HelpfulnessScore >= e.cfg.HelpfulnessThreshold {
		r.rs.Decision = model.DecisionEndHelpful
		return StateEnd
	}
	r.rs.Decision = model.DecisionContinue
	return StateAgentDecide
}

// stepCompose synthesizes the candidate reply and hands it to the quality
// gate for the final accept/continue check.
func (e *Engine) stepCompose(ctx context.Context, r *run) State {
	out, usage := e.composer.Compose(ctx, r.rs.Complaint, r.rs.Insights, r.rs.Examples)
	r.rs.AccumulateCost(e.composer.modelName, usage)

	r.rs.CandidateReply = out.Reply
	r.rs.Citations = out.Citations
	r.rs.Append(schema.AssistantMessage(out.Reply, nil))

	e.checkpoint(ctx, r.rs)
	return StateQualityGate
}

func (e *Engine) firstRoutable(calls []schema.ToolCall) (schema.ToolCall, bool) {
	for _, tc := range calls {
		if _, ok := e.routes[tc.Function.Name]; ok {
			return tc, true
		}
		logx.Warn().Str("tool_name", tc.Function.Name).Msg("unknown tool requested; ignored")
	}
	return schema.ToolCall{}, false
}

func queryArg(arguments, fallback string) string {
	var parsed struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(arguments), &parsed); err == nil {
		if q := strings.TrimSpace(parsed.Query); q != "" {
			return q
		}
	}
	return fallback
}
