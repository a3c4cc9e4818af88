package backburner

import "time"

// options holds resolved configuration for a [Backburner] instance.
type options struct {
	defaultQueue string

	onBegin func(current, previous *DeferredActionQueues)
	onEnd   func(justEnded, next *DeferredActionQueues)

	onError       func(error)
	onErrorTarget any
	onErrorMethod string

	platform    Platform
	hasPlatform bool
	logger      Logger
	debug       bool

	rateLimits map[time.Duration]int
}

// Option configures a [Backburner] instance, applied in order by [New].
type Option interface {
	apply(*options)
}

// optionFunc implements [Option] over a plain function, mirroring the
// teacher's loopOptionImpl shape.
type optionFunc struct {
	fn func(*options)
}

func (o *optionFunc) apply(opts *options) { o.fn(opts) }

// WithDefaultQueue names the queue that absorbs expired [Backburner.Later]
// fires. Defaults to the first entry of the queueNames passed to [New].
func WithDefaultQueue(name string) Option {
	return &optionFunc{func(o *options) { o.defaultQueue = name }}
}

// WithOnBegin registers a hook invoked after every explicit or implicit
// [Backburner.Begin], with the new current instance and the one it replaced
// (nil if none). When Begin joins a pending autorun instance, no instance is
// replaced and both arguments are that instance.
func WithOnBegin(fn func(current, previous *DeferredActionQueues)) Option {
	return &optionFunc{func(o *options) { o.onBegin = fn }}
}

// WithOnEnd registers a hook invoked after every non-paused [Backburner.End],
// with the instance that just finished and the one that is now current (nil
// if the stack is empty).
func WithOnEnd(fn func(justEnded, next *DeferredActionQueues)) Option {
	return &optionFunc{func(o *options) { o.onEnd = fn }}
}

// WithOnError diverts exceptions raised by scheduled work to fn instead of
// letting them propagate to the host. See §7 of the design: when set, every
// work invocation (queue items, Run, Join, Later, debounced/throttled calls)
// is guarded and recovered panics/errors are routed here.
func WithOnError(fn func(error)) Option {
	return &optionFunc{func(o *options) { o.onError = fn }}
}

// WithOnErrorTarget resolves onError dynamically by looking up methodName on
// target at invocation time, instead of capturing a fixed closure. This lets
// a consumer re-point error handling without reconstructing the Backburner.
func WithOnErrorTarget(target any, methodName string) Option {
	return &optionFunc{func(o *options) {
		o.onErrorTarget = target
		o.onErrorMethod = methodName
	}}
}

// WithPlatform overrides the host timer primitives. Any nil field of p falls
// back to [DefaultPlatform]'s behavior.
func WithPlatform(p Platform) Option {
	return &optionFunc{func(o *options) {
		o.platform = p
		o.hasPlatform = true
	}}
}

// WithLogger attaches a structured [Logger] used for diagnostics: instance
// begin/end/pause transitions, scheduling, timer arming, debounce/throttle
// firing, flood-guard warnings, and onError-diverted errors. Cancellation is
// not logged. Defaults to a no-op logger.
func WithLogger(l Logger) Option {
	return &optionFunc{func(o *options) { o.logger = l }}
}

// WithDebug enables capture of the scheduling-site stack trace on every
// queued work item, stored in its [Work.Stack]. The captured stack is not
// written to the Logger.
func WithDebug(enabled bool) Option {
	return &optionFunc{func(o *options) { o.debug = enabled }}
}

// WithScheduleRateLimit enables an opt-in diagnostic flood guard: rates maps
// sliding-window durations to the maximum number of schedule/scheduleOnce
// calls allowed per queue within that window. Exceeding a configured rate
// never delays or drops work — it only emits a warning through the Logger.
func WithScheduleRateLimit(rates map[time.Duration]int) Option {
	return &optionFunc{func(o *options) { o.rateLimits = rates }}
}

// resolveOptions applies Option values over sane defaults.
func resolveOptions(queueNames []string, opts []Option) *options {
	o := &options{
		logger: NewNoOpLogger(),
	}
	if len(queueNames) > 0 {
		o.defaultQueue = queueNames[0]
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.apply(o)
	}
	if o.hasPlatform {
		o.platform = normalizePlatform(o.platform)
	} else {
		o.platform = DefaultPlatform()
	}
	if o.logger == nil {
		o.logger = NewNoOpLogger()
	}
	return o
}
