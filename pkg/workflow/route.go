package workflow

// Target identifies the answer-generation path chosen for a turn.
type Target string

const (
	// TargetGrounded generates an answer constrained to retrieved passages.
	TargetGrounded Target = "generate_grounded"

	// TargetUngrounded generates a free conversational answer.
	TargetUngrounded Target = "generate_ungrounded"
)

// Route is the single branching decision of the graph. It is a pure function
// of the turn state: an ungrounded intent bypasses retrieval entirely, and a
// grounded intent falls back to ungrounded generation when reranking left no
// usable passages.
func Route(s *State) Target {
	if s.Intent == IntentUngrounded {
		return TargetUngrounded
	}
	if len(s.Passages) > 0 {
		return TargetGrounded
	}
	return TargetUngrounded
}
