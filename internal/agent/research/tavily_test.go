package research

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replysight/server/internal/agent/model"
)

func TestTavilyMissingAPIKey(t *testing.T) {
	a := NewTavilyAdapter(model.ResearchConfig{})

	res := a.Invoke(context.Background(), "warranty reply examples")
	assert.True(t, res.Failed())
	assert.Equal(t, "tavily: api key is missing", res.Err)
}

func TestTavilyEmptyQuery(t *testing.T) {
	a := NewTavilyAdapter(model.ResearchConfig{TavilyAPIKey: "k"})

	res := a.Invoke(context.Background(), "  ")
	assert.True(t, res.Failed())
	assert.Equal(t, "tavily: query is required", res.Err)
}

func TestTavilySearch(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"title": "Warranty reply that works", "url": "https://example.com/1", "content": "Apologize, then remedy."},
				{"title": "Defusing angry customers", "url": "https://example.com/2", "content": "Own the problem."},
			},
		})
	}))
	defer srv.Close()

	a := NewTavilyAdapter(model.ResearchConfig{
		TavilyAPIKey:     "secret",
		TavilyBaseURL:    srv.URL,
		TavilyMaxResults: 3,
	})

	res := a.Invoke(context.Background(), "earbud warranty")
	require.False(t, res.Failed(), res.Err)

	assert.Equal(t, "secret", body["api_key"])
	assert.Equal(t, "customer service response examples earbud warranty", body["query"])
	assert.Equal(t, "basic", body["search_depth"])

	assert.Equal(t, "tavily", res.Payload["source"])
	examples := res.Payload["examples"].([]map[string]any)
	require.Len(t, examples, 2)
	assert.Equal(t, "Warranty reply that works", examples[0]["title"])
	assert.Equal(t, "https://example.com/1", examples[0]["url"])
}

func TestTavilyTruncatesToMaxResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"title": "1"}, {"title": "2"}, {"title": "3"},
			},
		})
	}))
	defer srv.Close()

	a := NewTavilyAdapter(model.ResearchConfig{
		TavilyAPIKey:     "k",
		TavilyBaseURL:    srv.URL,
		TavilyMaxResults: 2,
	})

	res := a.Invoke(context.Background(), "q")
	require.False(t, res.Failed())
	assert.Len(t, res.Payload["examples"].([]map[string]any), 2)
}

func TestTavilyCredentialRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	a := NewTavilyAdapter(model.ResearchConfig{TavilyAPIKey: "bad", TavilyBaseURL: srv.URL})
	res := a.Invoke(context.Background(), "q")
	assert.True(t, res.Failed())
	assert.Equal(t, "tavily: credential rejected (http 401)", res.Err)
}

func TestTavilyServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := NewTavilyAdapter(model.ResearchConfig{TavilyAPIKey: "k", TavilyBaseURL: srv.URL})
	res := a.Invoke(context.Background(), "q")
	assert.True(t, res.Failed())
	assert.Equal(t, "tavily: http 500", res.Err)
}

func TestTavilyToolInfo(t *testing.T) {
	a := NewTavilyAdapter(model.ResearchConfig{})
	info := a.Info()
	assert.Equal(t, ToolTavilyExamples, info.Name)
	assert.Equal(t, KindBestPractice, a.Kind())
}

func TestResultMarker(t *testing.T) {
	ok := Result{Payload: map[string]any{"papers": []map[string]any{}}}
	assert.False(t, ok.Failed())
	assert.Equal(t, ok.Payload, ok.Marker())

	failed := Result{Err: "boom"}
	assert.True(t, failed.Failed())
	assert.Equal(t, map[string]any{"error": "boom"}, failed.Marker())
}

func TestRoutes(t *testing.T) {
	routes := Routes()
	assert.Equal(t, KindAcademic, routes[ToolArxivInsights])
	assert.Equal(t, KindBestPractice, routes[ToolTavilyExamples])
	_, ok := routes["unknown_tool"]
	assert.False(t, ok)
}
