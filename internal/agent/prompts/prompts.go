// Package prompts renders the engine's three prompt surfaces from embedded
// templates via the Eino prompt component.
package prompts

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/replysight/server/internal/agent/model"
	"github.com/replysight/server/internal/agent/research"
)

//go:embed template/decide_prompt.txt
var decideSystemPrompt string

//go:embed template/evaluate_prompt.txt
var evaluatePrompt string

//go:embed template/compose_prompt.txt
var composePrompt string

// RenderDecisionSystem renders the system instruction seeding a run: the
// complaint plus the current research-completion status.
func RenderDecisionSystem(ctx context.Context, complaint string, status model.ResearchStatus) (string, error) {
	return render(ctx, decideSystemPrompt, map[string]any{
		"Complaint":          complaint,
		"AcademicTool":       research.ToolArxivInsights,
		"BestPracticeTool":   research.ToolTavilyExamples,
		"AcademicStatus":     statusLabel(status.Academic),
		"BestPracticeStatus": statusLabel(status.BestPractice),
	})
}

// RenderEvaluation renders the four-dimension rubric prompt for scoring a
// candidate reply.
func RenderEvaluation(ctx context.Context, complaint, candidate string) (string, error) {
	return render(ctx, evaluatePrompt, map[string]any{
		"Complaint": complaint,
		"Candidate": candidate,
	})
}

// RenderComposer renders the fixed composition instruction with the
// accumulated research digests.
func RenderComposer(ctx context.Context, complaint, insights, examples string) (string, error) {
	return render(ctx, composePrompt, map[string]any{
		"Complaint": complaint,
		"Insights":  orNone(insights),
		"Examples":  orNone(examples),
	})
}

func render(ctx context.Context, tplText string, vars map[string]any) (string, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(tplText),
	)
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("prompt render: empty result")
	}
	return msgs[0].Content, nil
}

func statusLabel(done bool) string {
	if done {
		return "complete"
	}
	return "pending"
}

func orNone(s string) string {
	if s == "" {
		return "(none gathered)"
	}
	return s
}
