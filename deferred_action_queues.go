package backburner

// DeferredActionQueues is a fixed, ordered collection of named [Queue]
// values plus the multi-pass flush algorithm that pumps them. One instance
// backs one entry of the [Backburner] instance stack.
type DeferredActionQueues struct {
	names  []string
	queues []*Queue
	byName map[string]*Queue
}

// newDeferredActionQueues builds a fresh instance over names, in the
// declared order. The set of queues is fixed for the life of the instance.
func newDeferredActionQueues(names []string) *DeferredActionQueues {
	d := &DeferredActionQueues{
		names:  append([]string(nil), names...),
		queues: make([]*Queue, len(names)),
		byName: make(map[string]*Queue, len(names)),
	}
	for i, name := range names {
		q := newQueue(name)
		d.queues[i] = q
		d.byName[name] = q
	}
	return d
}

// Names returns the declared queue order.
func (d *DeferredActionQueues) Names() []string {
	return append([]string(nil), d.names...)
}

// Queue returns the named queue, or nil if name was not part of this
// instance's declared set.
func (d *DeferredActionQueues) Queue(name string) *Queue {
	return d.byName[name]
}

// schedule enqueues one item into the named queue, per §3's
// DeferredActionQueues.schedule contract.
func (d *DeferredActionQueues) schedule(queueName string, target, method any, args []any, once bool, stack []uintptr) (*Work, *Queue, error) {
	q, ok := d.byName[queueName]
	if !ok {
		return nil, nil, newRangeError("unknown queue %q", queueName)
	}
	w := q.push(&Work{Target: target, Method: method, Args: args, Once: once, Stack: stack})
	return w, q, nil
}

// hasWork reports whether any queue in the instance holds pending items.
func (d *DeferredActionQueues) hasWork() bool {
	for _, q := range d.queues {
		if q.hasWork() {
			return true
		}
	}
	return false
}

// flush pumps every queue to emptiness, in declared order, resetting to an
// earlier queue whenever draining a later one leaves it non-empty again —
// the multi-queue flush algorithm of §4.2. invoke performs the actual
// method call and applies the configured onError policy; see [Queue.drain].
//
// Returns [FlushPause] if a drained item requested a yield, leaving
// remaining items in place for a later flush to resume. A non-nil error
// means a work item's error propagated to the caller (no onError
// configured); the pump stops immediately, leaving all unrun items queued.
func (d *DeferredActionQueues) flush(invoke func(*Work) error) (FlushState, error) {
	i := 0
	for i < len(d.queues) {
		state, err := d.queues[i].drain(invoke)
		if err != nil {
			return FlushContinue, err
		}
		if state == FlushPause {
			return FlushPause, nil
		}

		reset := -1
		for j := 0; j < i; j++ {
			if d.queues[j].hasWork() {
				reset = j
				break
			}
		}
		if reset >= 0 {
			i = reset
			continue
		}
		i++
	}
	return FlushContinue, nil
}
