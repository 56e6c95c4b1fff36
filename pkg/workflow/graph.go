package workflow

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/groundworkhq/groundwork/pkg/llm"
	"github.com/groundworkhq/groundwork/pkg/rerank"
	"github.com/groundworkhq/groundwork/pkg/retrieval"
)

// DefaultTopK is how many candidate passages retrieval fetches per turn.
const DefaultTopK = 10

// phase enumerates the executor's states. The run always moves forward:
// classify branches to exactly one of the two route phases, both of which
// converge on generate.
type phase int

const (
	phaseClassify phase = iota
	phaseRouteRAG
	phaseRouteDirect
	phaseGenerate
	phaseDone
)

// Config holds the collaborators and tuning knobs for a Graph.
type Config struct {
	// Model handles classification, rewriting and answer generation.
	Model llm.Client

	// Searcher retrieves candidate passages.
	Searcher retrieval.Searcher

	// Scorer re-scores candidates. Nil disables reranking; retrieved
	// candidates pass through unfiltered.
	Scorer rerank.Scorer

	// TopK caps retrieval; zero means DefaultTopK.
	TopK int

	// Threshold is the rerank relevance cutoff; zero means
	// rerank.DefaultThreshold.
	Threshold float64

	Logger *zap.Logger
}

// Graph executes the per-turn pipeline as a small state machine.
type Graph struct {
	model     llm.Client
	searcher  retrieval.Searcher
	scorer    rerank.Scorer
	topK      int
	threshold float64
	logger    *zap.Logger
}

// New validates the configuration and creates a Graph.
func New(cfg Config) (*Graph, error) {
	if cfg.Model == nil {
		return nil, fmt.Errorf("model client is required")
	}
	if cfg.Searcher == nil {
		return nil, fmt.Errorf("searcher is required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	topK := cfg.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	threshold := cfg.Threshold
	if threshold == 0 {
		threshold = rerank.DefaultThreshold
	}

	return &Graph{
		model:     cfg.Model,
		searcher:  cfg.Searcher,
		scorer:    cfg.Scorer,
		topK:      topK,
		threshold: threshold,
		logger:    cfg.Logger,
	}, nil
}

// Stream runs one turn to completion, emitting events as nodes finish or
// produce answer increments. Execution is single threaded and lazy: each
// event is fully handled by emit before the run advances, and an error from
// emit stops the run at that point.
//
// Node failures that have a safe neutral result (classification, rewriting,
// retrieval, reranking) degrade in place and do not surface here. Generation
// failures and emit errors abort the run and are returned.
func (g *Graph) Stream(ctx context.Context, s *State, emit EmitFunc) error {
	if s == nil {
		return fmt.Errorf("nil state")
	}
	if emit == nil {
		return fmt.Errorf("nil emit callback")
	}

	current := phaseClassify
	var target Target

	for current != phaseDone {
		if err := ctx.Err(); err != nil {
			return err
		}

		switch current {
		case phaseClassify:
			g.classifyIntent(ctx, s)
			if err := emit(Event{Node: NodeClassifyIntent, State: s.snapshot()}); err != nil {
				return err
			}
			if s.Intent == IntentUngrounded {
				current = phaseRouteDirect
			} else {
				current = phaseRouteRAG
			}

		case phaseRouteRAG:
			g.rewriteQuery(ctx, s)
			if err := emit(Event{Node: NodeRewriteQuery, State: s.snapshot()}); err != nil {
				return err
			}

			g.retrievePassages(ctx, s)
			if err := emit(Event{Node: NodeRetrievePassages, State: s.snapshot()}); err != nil {
				return err
			}

			g.rerankPassages(ctx, s)
			if err := emit(Event{Node: NodeRerankPassages, State: s.snapshot()}); err != nil {
				return err
			}

			target = Route(s)
			current = phaseGenerate

		case phaseRouteDirect:
			target = Route(s)
			current = phaseGenerate

		case phaseGenerate:
			g.logger.Debug("generating answer",
				zap.String("target", string(target)),
				zap.Int("passages", len(s.Passages)))
			if err := g.generate(ctx, s, target, emit); err != nil {
				return err
			}
			current = phaseDone
		}
	}

	return nil
}
