package backburner

import (
	"time"

	"github.com/joeycumines/go-catrate"
)

// floodGuard is an opt-in, diagnostics-only admission check consulted on
// every schedule/scheduleOnce call. It never delays or drops work: a queue
// exceeding its configured rate only produces a structured warning through
// the [Logger], preserving the "no fairness/preemption" guarantee of the
// scheduling semantics themselves.
type floodGuard struct {
	limiter *catrate.Limiter
	logger  Logger
}

// newFloodGuard builds a floodGuard from the rates configured via
// [WithScheduleRateLimit]. Returns nil if rates is empty, so callers can
// skip the check entirely when it is unconfigured.
func newFloodGuard(rates map[time.Duration]int, logger Logger) *floodGuard {
	if len(rates) == 0 {
		return nil
	}
	return &floodGuard{limiter: catrate.NewLimiter(rates), logger: logger}
}

// check consults the limiter for queueName, logging a warning (and nothing
// else) if the configured rate has been exceeded.
func (g *floodGuard) check(queueName string) {
	if g == nil {
		return
	}
	if _, ok := g.limiter.Allow(queueName); !ok {
		logWarnf(g.logger, "flood_guard", "schedule rate exceeded for queue", map[string]any{
			"queue": queueName,
		})
	}
}
