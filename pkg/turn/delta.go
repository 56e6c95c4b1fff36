package turn

import (
	"errors"
	"strings"
)

// ErrNonPrefix is returned when a cumulative answer snapshot does not extend
// the previously seen value. The generator contract is monotonic append, so
// a non-prefix change means the stream can no longer be trusted.
var ErrNonPrefix = errors.New("cumulative answer does not extend the previous value")

// DeltaTracker converts a sequence of cumulative answer snapshots into
// increments. The zero value is ready to use.
type DeltaTracker struct {
	last string
}

// Diff returns the new text the cumulative snapshot adds over everything
// seen so far. An unchanged snapshot yields the empty string. A snapshot
// that does not have the previous value as a prefix returns ErrNonPrefix.
func (t *DeltaTracker) Diff(cumulative string) (string, error) {
	if !strings.HasPrefix(cumulative, t.last) {
		return "", ErrNonPrefix
	}

	increment := cumulative[len(t.last):]
	t.last = cumulative
	return increment, nil
}

// Full returns the latest complete answer seen.
func (t *DeltaTracker) Full() string {
	return t.last
}
