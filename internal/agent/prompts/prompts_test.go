package prompts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replysight/server/internal/agent/model"
	"github.com/replysight/server/internal/agent/research"
)

func TestRenderDecisionSystem(t *testing.T) {
	out, err := RenderDecisionSystem(context.Background(), "my earbud broke", model.ResearchStatus{Academic: true})
	require.NoError(t, err)

	assert.Contains(t, out, "my earbud broke")
	assert.Contains(t, out, research.ToolArxivInsights)
	assert.Contains(t, out, research.ToolTavilyExamples)
	assert.Contains(t, out, "complete")
	assert.Contains(t, out, "pending")
}

func TestRenderEvaluation(t *testing.T) {
	out, err := RenderEvaluation(context.Background(), "my earbud broke", "We are sorry.")
	require.NoError(t, err)

	assert.Contains(t, out, "my earbud broke")
	assert.Contains(t, out, "We are sorry.")
}

func TestRenderComposer(t *testing.T) {
	out, err := RenderComposer(context.Background(), "my earbud broke", `{"papers":[]}`, "")
	require.NoError(t, err)

	assert.Contains(t, out, "my earbud broke")
	assert.Contains(t, out, `{"papers":[]}`)
	assert.Contains(t, out, "(none gathered)")
}
