package research

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// Tool names exposed to the decision model.
const (
	ToolArxivInsights  = "arxiv_insights"
	ToolTavilyExamples = "tavily_examples"
)

// Kind is the closed set of retrieval sources. Routing goes through Kind,
// never through raw tool-name strings.
type Kind int

const (
	KindAcademic Kind = iota
	KindBestPractice
)

// String returns the kind's name for logs and payloads.
func (k Kind) String() string {
	switch k {
	case KindAcademic:
		return "academic"
	case KindBestPractice:
		return "bestpractice"
	default:
		return "unknown"
	}
}

// Routes maps the tool names the decision model may request onto retrieval
// kinds. Names not present here are treated as "no retrieval requested".
func Routes() map[string]Kind {
	return map[string]Kind{
		ToolArxivInsights:  KindAcademic,
		ToolTavilyExamples: KindBestPractice,
	}
}

// Result is the uniform outcome of one adapter call. Failures are carried in
// Err with an empty payload; an adapter never lets a fault escape.
type Result struct {
	Payload map[string]any `json:"payload"`
	Err     string         `json:"error,omitempty"`
}

// Failed reports whether the call produced an error marker.
func (r Result) Failed() bool {
	return r.Err != ""
}

// Marker returns the payload to merge into run state: the success payload,
// or an error marker for failed calls so the run records what went wrong.
func (r Result) Marker() map[string]any {
	if r.Failed() {
		return map[string]any{"error": r.Err}
	}
	return r.Payload
}

// Adapter wraps one external research service behind a uniform contract.
// Invoke must capture network, auth, and decode failures into the Result
// instead of returning an error.
type Adapter interface {
	Kind() Kind
	Info() *schema.ToolInfo
	Invoke(ctx context.Context, query string) Result
}
