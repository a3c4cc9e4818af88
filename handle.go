package backburner

// handleKind tags the three cancellable shapes a [Backburner] scheduling
// call can return. This is the typed-token redesign called for in place of
// the original's runtime type sniffing over a function/number/object union:
// [Backburner.Cancel] switches on Kind rather than inspecting the dynamic
// type of an opaque value.
type handleKind int

const (
	handleNone handleKind = iota
	// handleLater identifies a pending [Backburner.Later] entry in the
	// timer heap.
	handleLater
	// handleRate identifies a pending debounce/throttle registry triple.
	handleRate
	// handleQueued identifies a pending item in one of the instance's
	// queues.
	handleQueued
)

// Handle is the cancellation token returned by every scheduling call:
// [Backburner.Schedule], [Backburner.ScheduleOnce], [Backburner.Later],
// [Backburner.Debounce], and [Backburner.Throttle]. Its zero value cancels
// nothing.
//
// Handles tolerate the instance they were issued from having already been
// torn down, or the item they refer to having already fired: cancelling a
// stale handle returns false rather than panicking.
type Handle struct {
	kind handleKind

	laterToken *timerToken

	rateID any

	queue *Queue
	work  *Work
}

// Kind reports which of the three cancellable shapes h identifies.
func (h Handle) Kind() string {
	switch h.kind {
	case handleLater:
		return "later"
	case handleRate:
		return "rate"
	case handleQueued:
		return "queued"
	default:
		return "none"
	}
}

// IsZero reports whether h is the empty handle, cancelling nothing.
func (h Handle) IsZero() bool {
	return h.kind == handleNone
}

func laterHandle(token *timerToken) Handle {
	return Handle{kind: handleLater, laterToken: token}
}

func rateHandle(id any) Handle {
	return Handle{kind: handleRate, rateID: id}
}

func queuedHandle(q *Queue, w *Work) Handle {
	return Handle{kind: handleQueued, queue: q, work: w}
}
