// Package backburner provides a cooperative run-loop scheduler for
// event-driven, single-threaded hosts.
//
// # Architecture
//
// A [Backburner] coordinates deferred work across a fixed, ordered set of
// named queues ([Queue], held by a [DeferredActionQueues]). Work scheduled
// from within running work is flushed in the same logical "tick" before
// control returns to the host: [Backburner.Begin] opens an instance,
// [Backburner.End] pumps it to completion (or to an [ErrPause] yield) and tears
// it down. Callers that never call Begin/End explicitly get an implicit
// "autorun" instance, opened on first [Backburner.Schedule] and closed on
// the host's next turn.
//
// On top of that instance machinery, Backburner multiplexes four kinds of
// deferral primitive: immediate execution ([Backburner.Run], [Backburner.Join]),
// queued scheduling ([Backburner.Schedule], [Backburner.ScheduleOnce],
// [Backburner.ScheduleIterable]), delayed execution ([Backburner.Later]),
// and rate-shaped execution ([Backburner.Debounce], [Backburner.Throttle]).
//
// # Host Platform
//
// Backburner never touches a real clock or timer system directly — it is
// driven entirely through an injected [Platform] (see [WithPlatform]),
// making every firing deterministic and host-controlled. [DefaultPlatform]
// wires this to the real [time.AfterFunc]-style timers for production use.
//
// # Thread Safety
//
// Backburner assumes a single logical thread of execution, the same way
// the host it is embedded in does: all public methods are intended to be
// called from, and all scheduled work runs on, that one thread. There is
// no internal locking. See DESIGN.md in the module root for the rationale.
//
// # Usage
//
//	b := backburner.New([]string{"actions", "render"}, backburner.WithOnError(func(err error) {
//	    log.Println("work error:", err)
//	}))
//
//	b.Run(nil, func() {
//	    b.Schedule("render", nil, renderFrame)
//	    b.Schedule("actions", nil, saveState)
//	})
package backburner
