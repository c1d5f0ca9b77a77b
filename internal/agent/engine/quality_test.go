package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
)

func TestScoreParsesNumericVerdicts(t *testing.T) {
	cases := []struct {
		name   string
		output string
		want   float64
	}{
		{"bare decimal", "0.85", 0.85},
		{"labelled", "Score: 0.7", 0.7},
		{"integer one", "1", 1},
		{"integer zero", "0", 0},
		{"embedded in prose", "I rate this reply 0.65 overall.", 0.65},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev := NewEvaluator(textModel(tc.output), "gemini-2.5-flash-lite")
			score, _ := ev.Score(context.Background(), "complaint", "candidate")
			assert.InDelta(t, tc.want, score, 1e-9)
		})
	}
}

func TestScoreClampsOutOfRange(t *testing.T) {
	ev := NewEvaluator(textModel("8.5"), "gemini-2.5-flash-lite")
	score, _ := ev.Score(context.Background(), "complaint", "candidate")
	assert.Equal(t, 1.0, score)
}

func TestScoreNeutralOnModelFailure(t *testing.T) {
	ev := NewEvaluator(failingModel(errors.New("timeout")), "gemini-2.5-flash-lite")
	score, usage := ev.Score(context.Background(), "complaint", "candidate")
	assert.Equal(t, NeutralScore, score)
	assert.Nil(t, usage)
}

func TestScoreNeutralOnNonNumericOutput(t *testing.T) {
	ev := NewEvaluator(textModel("this reply is excellent"), "gemini-2.5-flash-lite")
	score, _ := ev.Score(context.Background(), "complaint", "candidate")
	assert.Equal(t, NeutralScore, score)
}

func TestScoreReturnsUsage(t *testing.T) {
	cm := &fakeChatModel{fn: func(int, []*schema.Message) (*schema.Message, error) {
		m := schema.AssistantMessage("0.9", nil)
		m.ResponseMeta = &schema.ResponseMeta{Usage: &schema.TokenUsage{PromptTokens: 12, CompletionTokens: 3}}
		return m, nil
	}}
	ev := NewEvaluator(cm, "gemini-2.5-flash-lite")
	_, usage := ev.Score(context.Background(), "complaint", "candidate")
	if assert.NotNil(t, usage) {
		assert.Equal(t, 12, usage.PromptTokens)
	}
}
