package workflow

// Node names surfaced in events. Consumers typically only act on the two
// generator nodes; the rest are internal bookkeeping.
const (
	NodeClassifyIntent     = "classify_intent"
	NodeRewriteQuery       = "rewrite_query"
	NodeRetrievePassages   = "retrieve_passages"
	NodeRerankPassages     = "rerank_passages"
	NodeGenerateGrounded   = "generate_grounded"
	NodeGenerateUngrounded = "generate_ungrounded"
)

// Event is one element of the run's lazy event sequence: the node that just
// made progress and a snapshot of the turn state after its step.
//
// Generator nodes emit one event per text increment with the cumulative
// answer in State.Answer, then a final marker event whose answer equals the
// full text with no new increment.
type Event struct {
	Node  string
	State State
}

// IsGeneratorNode reports whether the node streams answer increments.
func IsGeneratorNode(name string) bool {
	return name == NodeGenerateGrounded || name == NodeGenerateUngrounded
}

// EmitFunc receives events as the run produces them. Returning an error stops
// the run and propagates the error out of Stream.
type EmitFunc func(Event) error
