package backburner

import "time"

// Platform is the injected bundle of host timer primitives a [Backburner]
// drives itself through instead of touching a real clock directly. Every
// firing — later, debounce, throttle, autorun close — passes through here,
// which is what makes a [Backburner] deterministic and testable under a
// fake platform.
//
// Any nil field falls back to [DefaultPlatform]'s behavior when resolved by
// [WithPlatform].
type Platform struct {
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// SetTimeout arms fn to run after d elapses and returns an id usable with
	// ClearTimeout. Defaults to a real [time.AfterFunc] timer.
	SetTimeout func(fn func(), d time.Duration) any

	// ClearTimeout disarms a timer previously armed by SetTimeout. Clearing
	// an already-fired or unknown id is a no-op.
	ClearTimeout func(id any)

	// Next schedules fn to run on the host's next turn and returns an id
	// usable with ClearNext. Defaults to SetTimeout(fn, 0).
	Next func(fn func()) any

	// ClearNext cancels a pending Next callback.
	ClearNext func(id any)
}

// DefaultPlatform returns the production [Platform], backed by real
// [time.AfterFunc] timers.
func DefaultPlatform() Platform {
	return Platform{
		Now: time.Now,
		SetTimeout: func(fn func(), d time.Duration) any {
			if d < 0 {
				d = 0
			}
			return time.AfterFunc(d, fn)
		},
		ClearTimeout: func(id any) {
			if t, ok := id.(*time.Timer); ok && t != nil {
				t.Stop()
			}
		},
		Next: func(fn func()) any {
			return time.AfterFunc(0, fn)
		},
		ClearNext: func(id any) {
			if t, ok := id.(*time.Timer); ok && t != nil {
				t.Stop()
			}
		},
	}
}

// normalizePlatform fills any nil field of p with [DefaultPlatform]'s
// behavior, so callers of [WithPlatform] can override only what they need.
func normalizePlatform(p Platform) Platform {
	def := DefaultPlatform()
	if p.Now == nil {
		p.Now = def.Now
	}
	if p.SetTimeout == nil {
		p.SetTimeout = def.SetTimeout
	}
	if p.ClearTimeout == nil {
		p.ClearTimeout = def.ClearTimeout
	}
	if p.Next == nil {
		p.Next = def.Next
	}
	if p.ClearNext == nil {
		p.ClearNext = def.ClearNext
	}
	return p
}
