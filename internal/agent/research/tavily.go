package research

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/replysight/server/internal/agent/model"
	logx "github.com/replysight/server/pkg/logger"
)

// TavilyAdapter retrieves best-practice articles and example responses via
// the Tavily search API. The API key is required; a missing or rejected
// credential surfaces as an error-flagged Result, never a fault.
type TavilyAdapter struct {
	apiKey     string
	baseURL    string
	depth      string
	maxResults int
	client     *http.Client
	limiter    *rate.Limiter
}

// NewTavilyAdapter builds the best-practice adapter from config.
func NewTavilyAdapter(cfg model.ResearchConfig) *TavilyAdapter {
	depth := cfg.TavilyDepth
	if depth == "" {
		depth = "basic"
	}
	max := cfg.TavilyMaxResults
	if max <= 0 {
		max = 3
	}
	baseURL := cfg.TavilyBaseURL
	if baseURL == "" {
		baseURL = "https://api.tavily.com/search"
	}
	return &TavilyAdapter{
		apiKey:     cfg.TavilyAPIKey,
		baseURL:    baseURL,
		depth:      depth,
		maxResults: max,
		client:     &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

func (t *TavilyAdapter) Kind() Kind {
	return KindBestPractice
}

func (t *TavilyAdapter) Info() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: ToolTavilyExamples,
		Desc: "Search for customer service best practices and real example responses for a complaint topic. Returns article titles, URLs, and excerpts.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {
				Type:     "string",
				Desc:     "Search keywords describing the complaint topic, e.g. 'earbud warranty replacement response'.",
				Required: true,
			},
		}),
	}
}

// Invoke posts the query to Tavily. Billed calls are not retried; any
// failure is reported once via the Result error marker.
func (t *TavilyAdapter) Invoke(ctx context.Context, query string) Result {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result{Err: "tavily: query is required"}
	}
	if strings.TrimSpace(t.apiKey) == "" {
		return Result{Err: "tavily: api key is missing"}
	}

	examples, err := t.search(ctx, query)
	if err != nil {
		logx.Warn().Err(err).Str("query", query).Msg("Tavily search failed")
		return Result{Err: fmt.Sprintf("tavily: %v", err)}
	}

	items := make([]map[string]any, 0, len(examples))
	for _, e := range examples {
		items = append(items, map[string]any{
			"title":   e.Title,
			"url":     e.URL,
			"content": e.Content,
		})
	}
	return Result{Payload: map[string]any{
		"examples": items,
		"query":    query,
		"source":   "tavily",
	}}
}

type tavilyResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

func (t *TavilyAdapter) search(ctx context.Context, query string) ([]tavilyResult, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]any{
		"api_key":      t.apiKey,
		"query":        "customer service response examples " + query,
		"search_depth": t.depth,
		"max_results":  t.maxResults,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("credential rejected (http %d)", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	}

	var decoded struct {
		Results []tavilyResult `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(decoded.Results) > t.maxResults {
		decoded.Results = decoded.Results[:t.maxResults]
	}
	return decoded.Results, nil
}
