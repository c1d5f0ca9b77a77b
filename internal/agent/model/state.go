package model

import (
	"time"

	"github.com/cloudwego/eino/schema"
)

// Decision tags recorded on RunState for diagnostics. They name the last
// verdict the engine reached, not the state it is in.
const (
	DecisionStart            = "start"
	DecisionAcademicFetch    = "academic_fetch"
	DecisionBestPractice     = "bestpractice_fetch"
	DecisionCompose          = "compose"
	DecisionContinue         = "continue"
	DecisionEndHelpful       = "end:helpfulness"
	DecisionEndLengthCeiling = "end:length_ceiling"
	DecisionEndStepGuard     = "end:step_guard"
)

// ResearchStatus tracks which research sources have completed a cycle.
// A flag is set after the adapter result has been merged, error or not.
type ResearchStatus struct {
	Academic     bool `json:"academic"`
	BestPractice bool `json:"best_practice"`
}

// Complete reports whether both research sources have been consulted.
func (r ResearchStatus) Complete() bool {
	return r.Academic && r.BestPractice
}

// RunState is the per-request record threaded through every step of one
// orchestration run. It is owned exclusively by the engine for the run's
// duration; nothing mutates it concurrently. The whole struct round-trips
// through JSON for session checkpoints.
type RunState struct {
	SessionID string `json:"session_id"`

	// Complaint is the original customer text, immutable after creation.
	Complaint string `json:"complaint"`

	// History is append-only and never shrinks.
	History []*schema.Message `json:"history"`

	Insights map[string]any `json:"insights"`
	Examples map[string]any `json:"examples"`

	CandidateReply string   `json:"candidate_reply"`
	Citations      []string `json:"citations"`

	// IterationCount advances exactly once per completed retrieval cycle.
	IterationCount int            `json:"iteration_count"`
	Research       ResearchStatus `json:"research_done"`

	// HelpfulnessScore is always clamped to [0, 1].
	HelpfulnessScore float64 `json:"helpfulness_score"`

	Decision string `json:"decision"`

	StartedAt    time.Time `json:"started_at"`
	TotalCostUSD float64   `json:"total_cost_usd"`
}

// NewRunState seeds a fresh run for the given complaint.
func NewRunState(sessionID, complaint string) *RunState {
	return &RunState{
		SessionID: sessionID,
		Complaint: complaint,
		Insights:  map[string]any{},
		Examples:  map[string]any{},
		Decision:  DecisionStart,
		StartedAt: time.Now(),
	}
}

// Append adds messages to the history. History only ever grows.
func (s *RunState) Append(msgs ...*schema.Message) {
	for _, m := range msgs {
		if m == nil {
			continue
		}
		s.History = append(s.History, m)
	}
}

// MergeInsights folds an academic payload into the accumulated insights.
// Existing keys are overwritten per key; the map itself is never replaced.
func (s *RunState) MergeInsights(payload map[string]any) {
	if s.Insights == nil {
		s.Insights = map[string]any{}
	}
	for k, v := range payload {
		s.Insights[k] = v
	}
}

// MergeExamples folds a best-practice payload into the accumulated examples.
func (s *RunState) MergeExamples(payload map[string]any) {
	if s.Examples == nil {
		s.Examples = map[string]any{}
	}
	for k, v := range payload {
		s.Examples[k] = v
	}
}

// SetHelpfulness records an evaluator score, clamped to [0, 1].
func (s *RunState) SetHelpfulness(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	s.HelpfulnessScore = v
}

// LastAssistantReply returns the content of the most recent assistant turn
// that carries no tool calls, or "" when none exists yet.
func (s *RunState) LastAssistantReply() string {
	for i := len(s.History) - 1; i >= 0; i-- {
		m := s.History[i]
		if m == nil || m.Role != schema.Assistant || len(m.ToolCalls) > 0 {
			continue
		}
		if m.Content != "" {
			return m.Content
		}
	}
	return ""
}

// Reply is the caller-facing result of one orchestration run.
type Reply struct {
	Reply     string   `json:"reply"`
	Citations []string `json:"citations"`
	LatencyMs int64    `json:"latency_ms"`
}

// RunReport extends Reply with diagnostic fields for dashboards and evals.
type RunReport struct {
	Reply

	SessionID        string  `json:"session_id"`
	Iterations       int     `json:"iterations"`
	HelpfulnessScore float64 `json:"helpfulness_score"`
	ResearchQuality  string  `json:"research_quality"`
	MessageCount     int     `json:"message_count"`
	DecisionReason   string  `json:"decision_reason"`
	CostUSD          float64 `json:"cost_usd"`
}
