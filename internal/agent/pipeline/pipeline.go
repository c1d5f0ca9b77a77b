// Package pipeline is the fixed alternative to the agentic engine: fetch
// both research sources unconditionally and concurrently, compose once, no
// decision loop and no self-evaluation. Use it when iterative quality
// gating is not required.
package pipeline

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/replysight/server/internal/agent/engine"
	"github.com/replysight/server/internal/agent/model"
	"github.com/replysight/server/internal/agent/research"
	errx "github.com/replysight/server/internal/core/errx"
)

type Pipeline struct {
	academic     research.Adapter
	bestPractice research.Adapter
	composer     *engine.Composer
}

func New(academic, bestPractice research.Adapter, composer *engine.Composer) *Pipeline {
	return &Pipeline{
		academic:     academic,
		bestPractice: bestPractice,
		composer:     composer,
	}
}

// GenerateReply fetches both sources in parallel and composes a single
// reply. Adapter failures degrade to error markers, same as the engine.
func (p *Pipeline) GenerateReply(ctx context.Context, complaint string) (model.Reply, error) {
	if strings.TrimSpace(complaint) == "" {
		return model.Reply{}, errx.ErrEmptyComplaint
	}

	start := time.Now()

	var academic, bestPractice research.Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		academic = p.academic.Invoke(gctx, complaint)
		return nil
	})
	g.Go(func() error {
		bestPractice = p.bestPractice.Invoke(gctx, complaint)
		return nil
	})
	// Adapters never return errors; Wait only synchronizes.
	_ = g.Wait()

	out, _ := p.composer.Compose(ctx, complaint, academic.Marker(), bestPractice.Marker())

	return model.Reply{
		Reply:     out.Reply,
		Citations: out.Citations,
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}
