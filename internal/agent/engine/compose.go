package engine

import (
	"context"
	"encoding/json"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/replysight/server/internal/agent/prompts"
	errx "github.com/replysight/server/internal/core/errx"
	logx "github.com/replysight/server/pkg/logger"
)

// FallbackReply is the deterministic reply used when the composer model is
// unavailable. The orchestrator must always have a non-empty reply to return.
const FallbackReply = "I'm truly sorry for the trouble you've experienced, and I understand how frustrating this must be. We will make this right: our support team will arrange a replacement or refund for the affected order right away, and I've flagged your case for priority handling. Please reply to this message if there's anything else we can do for you."

// citationsPerSource caps how many identifiers each research source
// contributes to the final citation list.
const citationsPerSource = 2

// digestLimit bounds the research digest handed to the composer prompt.
const digestLimit = 4096

// Composition is the composer's output.
type Composition struct {
	Reply     string
	Citations []string
}

// Composer synthesizes the final reply and citation list from the gathered
// research with a single structured model invocation.
type Composer struct {
	cm        einomodel.BaseChatModel
	modelName string
}

func NewComposer(cm einomodel.BaseChatModel, modelName string) *Composer {
	return &Composer{cm: cm, modelName: modelName}
}

// Compose never propagates a model failure: it falls back to the fixed
// template with a best-effort citation list.
func (c *Composer) Compose(ctx context.Context, complaint string, insights, examples map[string]any) (Composition, *schema.TokenUsage) {
	citations := CollectCitations(insights, examples)

	instruction, err := prompts.RenderComposer(ctx, complaint, digest(insights), digest(examples))
	if err != nil {
		logx.Error().Err(err).Msg("failed to render composer prompt")
		return Composition{Reply: FallbackReply, Citations: citations}, nil
	}

	out, err := c.cm.Generate(ctx, []*schema.Message{
		schema.SystemMessage(instruction),
		schema.UserMessage(complaint),
	})
	if err != nil || out == nil || strings.TrimSpace(out.Content) == "" {
		logx.Warn().Err(errx.WrapComposition(err)).Msg("composer invocation failed; using fallback template")
		return Composition{Reply: FallbackReply, Citations: citations}, usageOf(out)
	}

	return Composition{Reply: out.Content, Citations: citations}, usageOf(out)
}

// CollectCitations assembles the citation list: up to two identifiers from
// each research source, deduplicated, empty entries dropped.
func CollectCitations(insights, examples map[string]any) []string {
	var citations []string
	seen := map[string]bool{}

	add := func(id string) {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		citations = append(citations, id)
	}

	if insights != nil {
		for i, item := range itemsOf(insights["papers"]) {
			if i >= citationsPerSource {
				break
			}
			add(pick(item, "citation", "url"))
		}
	}
	if examples != nil {
		for i, item := range itemsOf(examples["examples"]) {
			if i >= citationsPerSource {
				break
			}
			add(pick(item, "url", "title"))
		}
	}
	return citations
}

// itemsOf normalizes a payload list that may arrive as []map[string]any
// (fresh adapter output) or []any (a checkpoint round-tripped through JSON).
func itemsOf(v any) []map[string]any {
	switch t := v.(type) {
	case []map[string]any:
		return t
	case []any:
		items := make([]map[string]any, 0, len(t))
		for _, e := range t {
			if m, ok := e.(map[string]any); ok {
				items = append(items, m)
			}
		}
		return items
	default:
		return nil
	}
}

func pick(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func digest(m map[string]any) string {
	if len(m) == 0 {
		return ""
	}
	b, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	s := string(b)
	if len(s) > digestLimit {
		s = s[:digestLimit]
	}
	return s
}
