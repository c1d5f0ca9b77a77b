package engine

import (
	"context"
	"regexp"
	"strconv"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/replysight/server/internal/agent/prompts"
	errx "github.com/replysight/server/internal/core/errx"
	logx "github.com/replysight/server/pkg/logger"
)

// NeutralScore is returned when the evaluator cannot produce a verdict.
// It sits below the accept threshold, so a degraded evaluator keeps the
// loop going (bounded by the ceilings) instead of terminating early.
const NeutralScore = 0.5

var scoreRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

// Evaluator scores a candidate reply's helpfulness on the four-dimension
// rubric with a secondary model invocation.
type Evaluator struct {
	cm        einomodel.BaseChatModel
	modelName string
}

func NewEvaluator(cm einomodel.BaseChatModel, modelName string) *Evaluator {
	return &Evaluator{cm: cm, modelName: modelName}
}

// Score returns a helpfulness score in [0, 1] plus the token usage of the
// invocation. Invocation or parse failures yield NeutralScore.
func (ev *Evaluator) Score(ctx context.Context, complaint, candidate string) (float64, *schema.TokenUsage) {
	rubric, err := prompts.RenderEvaluation(ctx, complaint, candidate)
	if err != nil {
		logx.Error().Err(err).Msg("failed to render evaluation prompt")
		return NeutralScore, nil
	}

	out, err := ev.cm.Generate(ctx, []*schema.Message{schema.UserMessage(rubric)})
	if err != nil || out == nil {
		logx.Warn().Err(errx.WrapEvaluation(err)).Msg("evaluator invocation failed")
		return NeutralScore, nil
	}
	usage := usageOf(out)

	m := scoreRe.FindString(out.Content)
	if m == "" {
		logx.Warn().Str("output", out.Content).Msg("no numeric score in evaluator output")
		return NeutralScore, usage
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return NeutralScore, usage
	}

	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return v, usage
}
