package engine

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insightsFixture() map[string]any {
	return map[string]any{
		"papers": []map[string]any{
			{"citation": "Smith, arXiv (2020)", "url": "https://arxiv.org/abs/2001.00001"},
			{"citation": "Jones, arXiv (2021)", "url": "https://arxiv.org/abs/2101.00002"},
			{"citation": "Brown, arXiv (2022)", "url": "https://arxiv.org/abs/2201.00003"},
		},
	}
}

func examplesFixture() map[string]any {
	return map[string]any{
		"examples": []map[string]any{
			{"url": "https://example.com/a", "title": "A"},
			{"url": "https://example.com/b", "title": "B"},
		},
	}
}

func TestCollectCitationsCapsPerSource(t *testing.T) {
	citations := CollectCitations(insightsFixture(), examplesFixture())
	assert.Equal(t, []string{
		"Smith, arXiv (2020)",
		"Jones, arXiv (2021)",
		"https://example.com/a",
		"https://example.com/b",
	}, citations)
}

func TestCollectCitationsDeduplicates(t *testing.T) {
	insights := map[string]any{"papers": []map[string]any{
		{"citation": "Smith, arXiv (2020)"},
		{"citation": "Smith, arXiv (2020)"},
	}}
	citations := CollectCitations(insights, nil)
	assert.Equal(t, []string{"Smith, arXiv (2020)"}, citations)
}

func TestCollectCitationsFallbackKeysAndEmptyEntries(t *testing.T) {
	insights := map[string]any{"papers": []map[string]any{
		{"citation": "", "url": "https://arxiv.org/abs/1"},
		{"citation": "   "},
	}}
	examples := map[string]any{"examples": []map[string]any{
		{"url": "", "title": "Only a title"},
	}}
	citations := CollectCitations(insights, examples)
	assert.Equal(t, []string{"https://arxiv.org/abs/1", "Only a title"}, citations)
}

func TestCollectCitationsAfterJSONRoundTrip(t *testing.T) {
	// A checkpointed run state comes back with []any instead of
	// []map[string]any; citation collection must handle both shapes.
	b, err := json.Marshal(insightsFixture())
	require.NoError(t, err)
	var roundTripped map[string]any
	require.NoError(t, json.Unmarshal(b, &roundTripped))

	citations := CollectCitations(roundTripped, nil)
	assert.Equal(t, []string{"Smith, arXiv (2020)", "Jones, arXiv (2021)"}, citations)
}

func TestCollectCitationsEmptyInputs(t *testing.T) {
	assert.Empty(t, CollectCitations(nil, nil))
	assert.Empty(t, CollectCitations(map[string]any{}, map[string]any{}))
	assert.Empty(t, CollectCitations(map[string]any{"error": "arxiv: http 503"}, nil))
}

func TestComposeUsesModelOutput(t *testing.T) {
	c := NewComposer(textModel("We are sorry; a replacement ships today."), "gemini-2.5-flash")
	out, _ := c.Compose(context.Background(), "my earbud broke", insightsFixture(), examplesFixture())
	assert.Equal(t, "We are sorry; a replacement ships today.", out.Reply)
	assert.Len(t, out.Citations, 4)
}

func TestComposeFallsBackOnModelFailure(t *testing.T) {
	c := NewComposer(failingModel(errors.New("overloaded")), "gemini-2.5-flash")
	out, _ := c.Compose(context.Background(), "my earbud broke", insightsFixture(), nil)
	assert.Equal(t, FallbackReply, out.Reply)
	assert.Equal(t, []string{"Smith, arXiv (2020)", "Jones, arXiv (2021)"}, out.Citations)
}

func TestComposeFallsBackOnEmptyOutput(t *testing.T) {
	c := NewComposer(textModel("   \n"), "gemini-2.5-flash")
	out, _ := c.Compose(context.Background(), "my earbud broke", nil, nil)
	assert.Equal(t, FallbackReply, out.Reply)
	assert.Empty(t, out.Citations)
}
