package research

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/replysight/server/internal/agent/model"
	logx "github.com/replysight/server/pkg/logger"
)

// ArxivAdapter fetches academic insights on customer service topics. With no
// base URL configured it answers from the built-in corpus, so the engine can
// run without network access; pointing BaseURL at the arXiv export API (or a
// test server) switches to the real backend transparently.
type ArxivAdapter struct {
	baseURL    string
	maxResults int
	client     *http.Client
	limiter    *rate.Limiter
}

// NewArxivAdapter builds the academic-insight adapter from config.
func NewArxivAdapter(cfg model.ResearchConfig) *ArxivAdapter {
	max := cfg.ArxivMaxResults
	if max <= 0 {
		max = 3
	}
	return &ArxivAdapter{
		baseURL:    cfg.ArxivBaseURL,
		maxResults: max,
		client:     &http.Client{Timeout: 10 * time.Second},
		// arXiv asks clients for no more than one request every 3 seconds.
		limiter: rate.NewLimiter(rate.Every(3*time.Second), 1),
	}
}

func (a *ArxivAdapter) Kind() Kind {
	return KindAcademic
}

func (a *ArxivAdapter) Info() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: ToolArxivInsights,
		Desc: "Fetch academic research on customer service, empathy, service recovery, and business communication. Returns paper titles, abstracts, and citations.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {
				Type:     "string",
				Desc:     "Search keywords describing the complaint topic, e.g. 'service recovery after product defect'.",
				Required: true,
			},
		}),
	}
}

// Invoke searches for papers relevant to the query. All failures come back
// as an error-flagged Result.
func (a *ArxivAdapter) Invoke(ctx context.Context, query string) Result {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result{Err: "arxiv: query is required"}
	}

	if a.baseURL == "" {
		return Result{Payload: papersPayload(corpusSearch(query, a.maxResults), query)}
	}

	papers, err := a.fetch(ctx, query)
	if err != nil {
		logx.Warn().Err(err).Str("query", query).Msg("arXiv fetch failed")
		return Result{Err: fmt.Sprintf("arxiv: %v", err)}
	}
	return Result{Payload: papersPayload(papers, query)}
}

// atomFeed is the subset of the arXiv Atom response we read.
type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID      string `xml:"id"`
	Title   string `xml:"title"`
	Summary string `xml:"summary"`
	Authors []struct {
		Name string `xml:"name"`
	} `xml:"author"`
	Published string `xml:"published"`
}

func (a *ArxivAdapter) fetch(ctx context.Context, query string) ([]Paper, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("search_query", "all:"+query)
	params.Set("start", "0")
	params.Set("max_results", fmt.Sprint(a.maxResults))
	params.Set("sortBy", "relevance")
	params.Set("sortOrder", "descending")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	var feed atomFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	papers := make([]Paper, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		p := Paper{
			Title:    strings.TrimSpace(e.Title),
			Abstract: strings.TrimSpace(e.Summary),
			URL:      strings.TrimSpace(e.ID),
		}
		if len(e.Authors) > 0 {
			p.Citation = fmt.Sprintf("%s, %q, arXiv (%s)", e.Authors[0].Name, p.Title, published(e.Published))
		} else {
			p.Citation = fmt.Sprintf("%q, arXiv", p.Title)
		}
		papers = append(papers, p)
		if len(papers) >= a.maxResults {
			break
		}
	}
	return papers, nil
}

func published(ts string) string {
	if len(ts) >= 4 {
		return ts[:4]
	}
	return "n.d."
}

func papersPayload(papers []Paper, query string) map[string]any {
	items := make([]map[string]any, 0, len(papers))
	for _, p := range papers {
		items = append(items, map[string]any{
			"title":    p.Title,
			"abstract": p.Abstract,
			"citation": p.Citation,
			"url":      p.URL,
		})
	}
	return map[string]any{
		"papers": items,
		"query":  query,
		"source": "arxiv",
	}
}
