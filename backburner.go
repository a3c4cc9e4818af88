package backburner

import (
	"errors"
	"fmt"
	"iter"
)

// Backburner is the top-level orchestrator: it owns the instance stack, the
// autorun token, the timer heap, the debounce/throttle registries, and the
// begin/end event table, and exposes the public scheduling API described in
// the package doc.
//
// A Backburner is not safe for concurrent use — see the package doc's
// Thread Safety section.
type Backburner struct {
	opts       *options
	queueNames []string

	current *DeferredActionQueues
	stack   []*DeferredActionQueues

	autorunToken any
	autorunArmed bool

	timers         timerHeap
	hostTimerID    any
	hostTimerArmed bool

	throttleReg rateRegistry
	debounceReg rateRegistry

	events eventTable

	flood *floodGuard
}

// New constructs a Backburner over the given ordered queue names, applying
// opts in order. queueNames must be non-empty and is fixed for the life of
// every instance the Backburner opens.
func New(queueNames []string, opts ...Option) *Backburner {
	o := resolveOptions(queueNames, opts)
	b := &Backburner{
		opts:       o,
		queueNames: append([]string(nil), queueNames...),
	}
	b.flood = newFloodGuard(o.rateLimits, o.logger)
	return b
}

// Debug reports whether scheduling-site stack capture is enabled.
func (b *Backburner) Debug() bool {
	return b.opts.debug
}

// CurrentInstance returns the instance currently accepting scheduled work,
// or nil if none is open.
func (b *Backburner) CurrentInstance() *DeferredActionQueues {
	return b.current
}

// On subscribes fn to the "begin" or "end" event. See [EventCallback].
func (b *Backburner) On(name string, fn EventCallback) error {
	return b.events.on(name, fn)
}

// Off removes a subscriber previously added with [Backburner.On].
func (b *Backburner) Off(name string, fn EventCallback) error {
	return b.events.off(name, fn)
}

// EnsureInstance opens an instance if none is current, arming the autorun
// so it flushes on the host's next turn, and returns the (possibly
// pre-existing) current instance.
func (b *Backburner) EnsureInstance() *DeferredActionQueues {
	return b.ensureInstance()
}

func (b *Backburner) ensureInstance() *DeferredActionQueues {
	if b.current != nil {
		return b.current
	}
	b.begin()
	b.autorunToken = b.opts.platform.Next(b.autorunEndFn())
	b.autorunArmed = true
	return b.current
}

// Begin establishes a current instance, per §4.1: joining a pending
// autorun if one exists, or pushing the existing current instance (if any)
// and opening a fresh one.
func (b *Backburner) Begin() {
	b.begin()
}

func (b *Backburner) begin() (current, previous *DeferredActionQueues) {
	if b.autorunArmed {
		b.opts.platform.ClearNext(b.autorunToken)
		b.autorunArmed = false
		b.autorunToken = nil
		current = b.current
		if b.opts.onBegin != nil {
			b.opts.onBegin(current, current)
		}
		return current, current
	}

	previous = b.current
	if b.current != nil {
		b.stack = append(b.stack, b.current)
	}
	current = newDeferredActionQueues(b.queueNames)
	b.current = current
	b.events.fire("begin", current, previous)
	if b.opts.onBegin != nil {
		b.opts.onBegin(current, previous)
	}
	logDebugf(b.opts.logger, "instance", "begin", nil)
	return current, previous
}

// End pumps the current instance to completion (or to a [FlushPause]
// yield) and tears it down. Returns [ErrEndWithoutBegin] if no instance is
// current.
func (b *Backburner) End() error {
	return b.end()
}

// end's post-flush bookkeeping (clear current, pop the stack, fire the end
// event) runs via a deferred guard so it happens exactly once per call,
// whether flush returns an error, panics, or completes — mirroring a
// finally block, per the design notes. A paused flush is the one
// exception: it leaves the instance in place for the autorun to resume.
func (b *Backburner) end() (err error) {
	if b.current == nil {
		return ErrEndWithoutBegin
	}

	paused := false
	defer func() {
		if paused {
			return
		}
		justEnded := b.current
		b.current = nil
		if n := len(b.stack); n > 0 {
			b.current = b.stack[n-1]
			b.stack = b.stack[:n-1]
		}
		b.events.fire("end", justEnded, b.current)
		if b.opts.onEnd != nil {
			b.opts.onEnd(justEnded, b.current)
		}
		logDebugf(b.opts.logger, "instance", "end", nil)
	}()

	state, flushErr := b.current.flush(b.invokeWork)
	if flushErr != nil {
		return flushErr
	}
	if state == FlushPause {
		paused = true
		b.autorunToken = b.opts.platform.Next(b.autorunEndFn())
		b.autorunArmed = true
		logDebugf(b.opts.logger, "instance", "paused", nil)
		return nil
	}
	return nil
}

// autorunEndFn is armed via [Platform.Next] both when the autorun first
// opens an implicit instance and when a paused flush needs to resume on
// the host's next turn — the single mechanism the design notes call for in
// place of inventing a second one.
func (b *Backburner) autorunEndFn() func() {
	return func() {
		b.autorunArmed = false
		b.autorunToken = nil
		_ = b.end()
	}
}

// Run resolves method against target, runs it inside a fresh begin/end
// bracket, and returns its result. If onError is configured, a thrown error
// is diverted there and Run returns a nil result instead of propagating it.
func (b *Backburner) Run(target, method any, args ...any) (any, error) {
	callable, err := resolveCallable(target, method)
	if err != nil {
		return nil, err
	}
	return b.runCallable(callable, args)
}

func (b *Backburner) runCallable(callable Callable, args []any) (any, error) {
	b.begin()
	result, err := b.invokeGuarded(callable, args)
	endErr := b.end()
	if err != nil {
		return nil, err
	}
	if endErr != nil {
		return nil, endErr
	}
	return result, nil
}

// Join resolves method against target and invokes it inline if an instance
// is already current, without opening a new one; otherwise it behaves like
// [Backburner.Run].
func (b *Backburner) Join(target, method any, args ...any) (any, error) {
	callable, err := resolveCallable(target, method)
	if err != nil {
		return nil, err
	}
	return b.joinCallable(callable, args)
}

func (b *Backburner) joinCallable(callable Callable, args []any) (any, error) {
	if b.current == nil {
		return b.runCallable(callable, args)
	}
	return b.invokeGuarded(callable, args)
}

// Schedule ensures an instance (opening an autorun one if needed) and
// enqueues method onto the named queue, returning a cancellable [Handle].
func (b *Backburner) Schedule(queueName string, target, method any, args ...any) (Handle, error) {
	return b.scheduleInternal(queueName, target, method, args, false)
}

// ScheduleOnce is like [Backburner.Schedule], but deduplicates by
// (target, method) identity: a pending item with the same identity has its
// args replaced in place instead of a new item being appended.
func (b *Backburner) ScheduleOnce(queueName string, target, method any, args ...any) (Handle, error) {
	return b.scheduleInternal(queueName, target, method, args, true)
}

// Defer is a deprecated alias of [Backburner.Schedule].
func (b *Backburner) Defer(queueName string, target, method any, args ...any) (Handle, error) {
	return b.Schedule(queueName, target, method, args...)
}

// DeferOnce is a deprecated alias of [Backburner.ScheduleOnce].
func (b *Backburner) DeferOnce(queueName string, target, method any, args ...any) (Handle, error) {
	return b.ScheduleOnce(queueName, target, method, args...)
}

func (b *Backburner) scheduleInternal(queueName string, target, method any, args []any, once bool) (Handle, error) {
	b.ensureInstance()
	b.flood.check(queueName)

	var stack []uintptr
	if b.opts.debug {
		stack = captureStack(1)
	}

	w, q, err := b.current.schedule(queueName, target, method, args, once, stack)
	if err != nil {
		return Handle{}, err
	}
	logDebugf(b.opts.logger, "schedule", "item scheduled", map[string]any{"queue": queueName, "once": once})
	return queuedHandle(q, w), nil
}

// ScheduleIterable enqueues a sentinel item that pulls one function at a
// time from seq and re-schedules itself onto the same queue until seq is
// exhausted. Each re-scheduled item runs within the same flush, so the
// whole sequence is consumed before that flush completes.
func (b *Backburner) ScheduleIterable(queueName string, seq iter.Seq[func()]) (Handle, error) {
	var (
		handle Handle
		ferr   error
	)
	reschedule := func(method any) {
		h, err := b.scheduleInternal(queueName, nil, method, nil, false)
		if err != nil {
			ferr = err
			return
		}
		handle = h
	}
	drain := newIterableDrain(seq, reschedule)
	reschedule(drain)
	return handle, ferr
}

// Later schedules method to run after a delay, per the polymorphic
// argument rules of §4.5. A zero-argument call is a documented no-op.
func (b *Backburner) Later(args ...any) (Handle, error) {
	target, method, callArgs, wait, ok, err := parseLaterArgs(args)
	if err != nil {
		return Handle{}, err
	}
	if !ok {
		return Handle{}, nil
	}
	callable, err := resolveCallable(target, method)
	if err != nil {
		return Handle{}, err
	}

	executeAt := b.opts.platform.Now().Add(wait)
	token := &timerToken{}
	token.call = func() {
		if _, cerr := callable(callArgs...); cerr != nil {
			panic(cerr)
		}
	}
	idx := b.timers.insert(executeAt, token)
	if idx == 0 {
		b.rearmHostTimer()
	}
	logDebugf(b.opts.logger, "later", "timer armed", map[string]any{"wait_ms": wait.Milliseconds()})
	return laterHandle(token), nil
}

// SetTimeout is an alias of [Backburner.Later].
func (b *Backburner) SetTimeout(args ...any) (Handle, error) {
	return b.Later(args...)
}

func (b *Backburner) rearmHostTimer() {
	if b.hostTimerArmed {
		b.opts.platform.ClearTimeout(b.hostTimerID)
		b.hostTimerArmed = false
		b.hostTimerID = nil
	}
	entry, ok := b.timers.min()
	if !ok {
		return
	}
	d := entry.executeAt.Sub(b.opts.platform.Now())
	if d < 0 {
		d = 0
	}
	b.hostTimerID = b.opts.platform.SetTimeout(b.runExpiredTimers, d)
	b.hostTimerArmed = true
}

// runExpiredTimers is the host timer callback: it folds every expired
// later entry into the default queue within a begin/end bracket, so their
// side effects participate in the current flush, then re-arms for the new
// minimum.
func (b *Backburner) runExpiredTimers() {
	b.hostTimerArmed = false
	b.hostTimerID = nil

	b.begin()
	now := b.opts.platform.Now()
	for _, entry := range b.timers.popExpired(now) {
		_, _ = b.scheduleInternal(b.opts.defaultQueue, nil, entry.token.call, nil, false)
	}
	b.rearmHostTimer()
	_ = b.end()
}

// Throttle implements §4.6's throttle semantics: the first call in a
// window fires (by default) immediately; subsequent calls within the
// window are suppressed.
func (b *Backburner) Throttle(args ...any) (Handle, error) {
	return b.rateSchedule(args, true)
}

// Debounce implements §4.6's debounce semantics: each call extends the
// wait, and only the last call in a burst actually fires (by default,
// after the window elapses).
func (b *Backburner) Debounce(args ...any) (Handle, error) {
	return b.rateSchedule(args, false)
}

func (b *Backburner) rateSchedule(args []any, isThrottle bool) (Handle, error) {
	ra, err := parseRateArgs(args, isThrottle)
	if err != nil {
		return Handle{}, err
	}

	reg := &b.debounceReg
	if isThrottle {
		reg = &b.throttleReg
	}

	if isThrottle {
		if idx, found := reg.find(ra.target, ra.method); found {
			return rateHandle(reg.entries[idx].timerID), nil
		}
	}

	hadPrior := false
	if !isThrottle {
		if idx, found := reg.find(ra.target, ra.method); found {
			b.opts.platform.ClearTimeout(reg.entries[idx].timerID)
			reg.remove(idx)
			hadPrior = true
		}
	}

	callable, err := resolveCallable(ra.target, ra.method)
	if err != nil {
		return Handle{}, err
	}

	fire := func() {
		if i, ok := reg.find(ra.target, ra.method); ok {
			reg.remove(i)
		}
		if !ra.immediate {
			_, _ = b.runCallable(callable, ra.callArgs)
		}
		logDebugf(b.opts.logger, "rate", "timer fired", map[string]any{"throttle": isThrottle})
	}
	timerID := b.opts.platform.SetTimeout(fire, ra.wait)
	reg.append(ra.target, ra.method, timerID)

	if ra.immediate && (isThrottle || !hadPrior) {
		_, _ = b.joinCallable(callable, ra.callArgs)
	}

	return rateHandle(timerID), nil
}

// Cancel cancels a pending item identified by h, returning false if h is
// zero, stale, or already fired. See [Handle] for the tagged-union shape
// this replaces the original function/number/object type-sniffing with.
func (b *Backburner) Cancel(h Handle) bool {
	switch h.kind {
	case handleLater:
		removed, wasMin := b.timers.removeFn(h.laterToken)
		if removed && wasMin {
			b.rearmHostTimer()
		}
		return removed
	case handleRate:
		if idx, found := b.throttleReg.findByTimerID(h.rateID); found {
			b.opts.platform.ClearTimeout(h.rateID)
			b.throttleReg.remove(idx)
			return true
		}
		if idx, found := b.debounceReg.findByTimerID(h.rateID); found {
			b.opts.platform.ClearTimeout(h.rateID)
			b.debounceReg.remove(idx)
			return true
		}
		return false
	case handleQueued:
		if h.queue == nil || h.work == nil {
			return false
		}
		return h.queue.cancel(h.work)
	default:
		return false
	}
}

// CancelTimers clears every timer, the debounce/throttle registries, and
// the armed autorun. Per the documented open question in the design notes,
// it does not drain queued items — only timers, debounce, throttle, and
// the autorun.
func (b *Backburner) CancelTimers() {
	for _, e := range b.throttleReg.entries {
		b.opts.platform.ClearTimeout(e.timerID)
	}
	b.throttleReg.clear()

	for _, e := range b.debounceReg.entries {
		b.opts.platform.ClearTimeout(e.timerID)
	}
	b.debounceReg.clear()

	b.timers.clear()
	if b.hostTimerArmed {
		b.opts.platform.ClearTimeout(b.hostTimerID)
		b.hostTimerArmed = false
		b.hostTimerID = nil
	}
	if b.autorunArmed {
		b.opts.platform.ClearNext(b.autorunToken)
		b.autorunArmed = false
		b.autorunToken = nil
	}
}

// HasTimers reports whether any timer, debounce/throttle entry, or the
// autorun is currently armed.
func (b *Backburner) HasTimers() bool {
	return !b.timers.isEmpty() || !b.throttleReg.isEmpty() || !b.debounceReg.isEmpty() || b.autorunArmed
}

// TimerCount, DebounceCount, and ThrottleCount expose per-registry counts,
// a harmless extension over §4.7's boolean hasTimers useful for tests and
// dashboards.
func (b *Backburner) TimerCount() int    { return b.timers.size() }
func (b *Backburner) DebounceCount() int { return len(b.debounceReg.entries) }
func (b *Backburner) ThrottleCount() int { return len(b.throttleReg.entries) }

// invokeWork is the invocation function handed to [DeferredActionQueues.flush]:
// it resolves and calls a queued item's method under the configured
// onError policy.
func (b *Backburner) invokeWork(w *Work) error {
	callable, err := resolveCallable(w.Target, w.Method)
	if err != nil {
		return b.routeError(err)
	}
	_, err = b.invokeGuarded(callable, w.Args)
	return err
}

// invokeGuarded calls fn(args...), recovering a panic into an error, and
// applies the configured onError policy to any resulting error other than
// [ErrPause] (which always bubbles, since it is a control signal, not a
// work error).
func (b *Backburner) invokeGuarded(fn Callable, args []any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			perr := panicToError(r)
			if errors.Is(perr, ErrPause) {
				err = perr
				return
			}
			err = b.routeError(perr)
		}
	}()

	res, callErr := fn(args...)
	if callErr == nil {
		return res, nil
	}
	if errors.Is(callErr, ErrPause) {
		return nil, callErr
	}
	return nil, b.routeError(callErr)
}

// routeError applies the configured onError policy: if one is resolved, err
// is diverted there (logged, and nil is returned so the pump continues);
// otherwise err is returned unchanged for the caller to propagate.
func (b *Backburner) routeError(err error) error {
	handler := b.resolveOnError()
	if handler == nil {
		return err
	}
	handler(err)
	logErrf(b.opts.logger, "on_error", "work error diverted", err, nil)
	return nil
}

func (b *Backburner) resolveOnError() func(error) {
	if b.opts.onError != nil {
		return b.opts.onError
	}
	if b.opts.onErrorTarget != nil && b.opts.onErrorMethod != "" {
		callable, err := resolveMethodByName(b.opts.onErrorTarget, b.opts.onErrorMethod)
		if err == nil {
			return func(e error) { _, _ = callable(e) }
		}
	}
	return nil
}

func panicToError(r any) error {
	if e, ok := r.(error); ok {
		return e
	}
	return fmt.Errorf("backburner: work panicked: %v", r)
}
