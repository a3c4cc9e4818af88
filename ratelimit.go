package backburner

import "reflect"

// rateEntry is one (target, method, timerID) triple in a debounce or
// throttle registry.
type rateEntry struct {
	target  any
	method  any
	timerID any
}

// rateRegistry is the flat array of pending debounce/throttle entries
// described by §3: lookup by (target, method) is linear, and a timer id
// may also be located by scanning the timerID slot directly (used by
// [Backburner.Cancel] when handed a rate [Handle]).
type rateRegistry struct {
	entries []rateEntry
}

// find locates the entry for (target, method), if any.
func (r *rateRegistry) find(target, method any) (int, bool) {
	mid, ok := methodIdentity(method)
	if !ok {
		return -1, false
	}
	for i, e := range r.entries {
		emid, _ := methodIdentity(e.method)
		if emid == mid && targetEqual(e.target, target) {
			return i, true
		}
	}
	return -1, false
}

// findByTimerID locates the entry whose timerID matches id.
func (r *rateRegistry) findByTimerID(id any) (int, bool) {
	for i, e := range r.entries {
		if targetEqual(e.timerID, id) {
			return i, true
		}
	}
	return -1, false
}

// remove deletes the entry at index i, preserving the order of the rest.
func (r *rateRegistry) remove(i int) {
	r.entries = append(r.entries[:i], r.entries[i+1:]...)
}

// append adds a new triple to the registry.
func (r *rateRegistry) append(target, method, timerID any) {
	r.entries = append(r.entries, rateEntry{target: target, method: method, timerID: timerID})
}

// isEmpty reports whether the registry holds no pending entries.
func (r *rateRegistry) isEmpty() bool {
	return len(r.entries) == 0
}

// clear empties the registry, used by [Backburner.CancelTimers].
func (r *rateRegistry) clear() {
	r.entries = nil
}

// targetEqual compares two receiver values the way identity comparison is
// meant here: equal if both nil, or both the same comparable dynamic type
// holding equal values. Non-comparable dynamic types (slices, maps, funcs
// compared as plain values) are never considered equal rather than
// panicking Go's `==` on an incomparable type.
func targetEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
