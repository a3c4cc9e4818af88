package backburner

import (
	"sort"
	"time"
)

// timerToken is the unique identity of one scheduled [Backburner.Later]
// entry. It is allocated once per Later call and never reused, so pointer
// equality — not the code address of the closure it wraps — is what
// [timerHeap.removeFn] and [Handle] cancellation key on. Two Later calls
// built from the same source closure literal would otherwise share a code
// pointer under reflection and be indistinguishable; wrapping in a
// heap-allocated token sidesteps that.
type timerToken struct {
	call func()
}

// timerEntry is one (executeAt, token) pair in the timer heap.
type timerEntry struct {
	executeAt time.Time
	token     *timerToken
}

// timerHeap is the sorted flat sequence backing [Backburner.Later]: after
// any mutation, entries are sorted ascending by executeAt, so the earliest
// fire is always at index 0. A binary search (via [sort.Search]) locates
// the insertion point, giving O(log n) positioning and O(n) shifting —
// appropriate at the small sizes this structure is meant for.
type timerHeap struct {
	entries []timerEntry
}

// isEmpty reports whether the heap holds no pending timers.
func (h *timerHeap) isEmpty() bool {
	return len(h.entries) == 0
}

// size returns the number of pending timers.
func (h *timerHeap) size() int {
	return len(h.entries)
}

// min returns the earliest pending entry, if any.
func (h *timerHeap) min() (timerEntry, bool) {
	if len(h.entries) == 0 {
		return timerEntry{}, false
	}
	return h.entries[0], true
}

// insert places token at its sorted position by executeAt, returning the
// index it landed at. Callers use index == 0 to detect that the host timer
// needs re-arming for a new minimum.
func (h *timerHeap) insert(executeAt time.Time, token *timerToken) int {
	idx := sort.Search(len(h.entries), func(i int) bool {
		return h.entries[i].executeAt.After(executeAt)
	})
	h.entries = append(h.entries, timerEntry{})
	copy(h.entries[idx+1:], h.entries[idx:])
	h.entries[idx] = timerEntry{executeAt: executeAt, token: token}
	return idx
}

// removeFn scans for token by pointer identity and removes it, reporting
// whether it was found and whether it occupied index 0 (so the caller
// knows to re-arm the host timer for the new minimum).
func (h *timerHeap) removeFn(token *timerToken) (removed, wasMin bool) {
	for i, e := range h.entries {
		if e.token != token {
			continue
		}
		h.entries = append(h.entries[:i], h.entries[i+1:]...)
		return true, i == 0
	}
	return false, false
}

// popExpired removes and returns every entry with executeAt <= now, in
// ascending order, stopping at the first non-expired entry — the prefix
// drained by [Backburner.runExpiredTimers] (§4.5).
func (h *timerHeap) popExpired(now time.Time) []timerEntry {
	n := 0
	for n < len(h.entries) && !h.entries[n].executeAt.After(now) {
		n++
	}
	if n == 0 {
		return nil
	}
	expired := append([]timerEntry(nil), h.entries[:n]...)
	h.entries = h.entries[n:]
	return expired
}

// clear empties the heap, used by [Backburner.CancelTimers].
func (h *timerHeap) clear() {
	h.entries = nil
}
