package backburner

import (
	"errors"
	"reflect"
)

// workIdentity is the comparable key once-semantics dedup and cancellation
// lookups key on: the pair (target, method-identity).
type workIdentity struct {
	target any
	method any
}

// onceKey builds a [workIdentity] for (target, method), reporting false
// when target is not a comparable value (e.g. a slice or map) — such
// targets simply never participate in once-dedup rather than panicking a
// map insertion.
func onceKey(target, method any) (workIdentity, bool) {
	mid, ok := methodIdentity(method)
	if !ok {
		return workIdentity{}, false
	}
	if target != nil {
		t := reflect.TypeOf(target)
		if !t.Comparable() {
			return workIdentity{}, false
		}
	}
	return workIdentity{target: target, method: mid}, true
}

// Queue is an ordered buffer of pending [Work] for one named phase of a
// flush. Once-scheduled items are deduplicated by (target, method) identity
// at insertion and retain their original position in the sequence; args on
// a re-scheduled once item are replaced in place.
type Queue struct {
	// Name identifies the queue's phase (e.g. "actions", "render").
	Name string

	items     []*Work
	onceIndex map[workIdentity]*Work
}

// newQueue constructs an empty, named [Queue].
func newQueue(name string) *Queue {
	return &Queue{Name: name, onceIndex: make(map[workIdentity]*Work)}
}

// hasWork reports whether the queue holds any pending item.
func (q *Queue) hasWork() bool {
	return len(q.items) > 0
}

// push appends w, or — for once-scheduled items with a prior pending entry
// of the same identity — updates that entry's args in place and returns it
// instead. The returned *Work is the handle callers should retain for
// cancellation: it is always the item actually pending in the queue.
func (q *Queue) push(w *Work) *Work {
	if w.Once {
		if key, ok := onceKey(w.Target, w.Method); ok {
			if existing, found := q.onceIndex[key]; found {
				existing.Args = w.Args
				existing.Stack = w.Stack
				return existing
			}
			q.items = append(q.items, w)
			q.onceIndex[key] = w
			return w
		}
	}
	q.items = append(q.items, w)
	return w
}

// cancel removes w from the queue if still pending, preserving the order of
// the remaining items. Returns false if w is not currently queued.
func (q *Queue) cancel(w *Work) bool {
	for i, it := range q.items {
		if it != w {
			continue
		}
		q.items = append(q.items[:i], q.items[i+1:]...)
		if it.Once {
			if key, ok := onceKey(it.Target, it.Method); ok && q.onceIndex[key] == it {
				delete(q.onceIndex, key)
			}
		}
		return true
	}
	return false
}

// drain runs every pending item to completion, FIFO, via invoke. invoke is
// expected to apply the configured onError policy itself: a nil error
// means "continue", [ErrPause] means "yield to the host", and any other
// error aborts the drain (remaining items are left in place, mirroring the
// "propagate to host" error policy).
func (q *Queue) drain(invoke func(*Work) error) (FlushState, error) {
	for len(q.items) > 0 {
		w := q.items[0]
		q.items = q.items[1:]
		if w.Once {
			if key, ok := onceKey(w.Target, w.Method); ok && q.onceIndex[key] == w {
				delete(q.onceIndex, key)
			}
		}

		err := invoke(w)
		if err == nil {
			continue
		}
		if errors.Is(err, ErrPause) {
			return FlushPause, nil
		}
		return FlushContinue, err
	}
	return FlushContinue, nil
}
