// Package workflow implements the per-turn decision pipeline: intent
// classification, query rewriting, retrieval, reranking, and streamed answer
// generation, driven by a small graph executor.
//
// A single State value is threaded through the run. The graph executor owns
// it for the duration of the run and exposes progress as a lazy sequence of
// (node, state snapshot) events through an emit callback.
package workflow

import (
	"github.com/groundworkhq/groundwork/pkg/llm"
	"github.com/groundworkhq/groundwork/pkg/retrieval"
)

// Intent classifies whether a turn needs document grounding.
type Intent string

const (
	// IntentUnknown means the classifier has not run yet.
	IntentUnknown Intent = ""

	// IntentGrounded marks a turn that should be answered from documents.
	IntentGrounded Intent = "grounded"

	// IntentUngrounded marks small talk or anything answerable without
	// documents.
	IntentUngrounded Intent = "ungrounded"
)

// State is the mutable record threaded through one turn of the pipeline.
//
// History and OriginalQuery are immutable inputs. RewrittenQuery, Intent and
// Passages each transition at most once from unset to set. Answer grows by
// monotonic append only, written exclusively by the active generator node.
type State struct {
	// History holds the prior conversation in chronological order, including
	// the latest user message.
	History []llm.Message

	// OriginalQuery is the raw latest user utterance.
	OriginalQuery string

	// RewrittenQuery is the standalone retrieval query produced by the
	// rewriter. Empty means not yet computed or rewrite skipped.
	RewrittenQuery string

	// Intent is set once by the classifier and never overwritten.
	Intent Intent

	// Passages holds the retrieved (and after reranking, filtered) grounding
	// evidence. An empty non-nil slice means "no usable grounding".
	Passages []retrieval.Passage

	// Answer is the cumulative generated answer.
	Answer string
}

// NewState creates the state for one turn.
func NewState(history []llm.Message, originalQuery string) *State {
	return &State{
		History:       history,
		OriginalQuery: originalQuery,
	}
}

// snapshot returns a copy of the state for inclusion in an event. Slice
// contents are shared; event consumers treat them as read-only.
func (s *State) snapshot() State {
	return *s
}
