package backburner

import "iter"

// newIterableDrain builds the method a [Backburner.ScheduleIterable] item
// runs: each invocation pulls one function from seq via [iter.Pull], runs
// it, and re-schedules itself onto the same queue via reschedule, until seq
// is exhausted. The re-scheduled item joins the queue that is being
// drained, so the whole sequence is consumed within that one flush;
// consumption is not spread across host turns, and an infinite sequence
// keeps the flush from completing. This is the external "iterator-drain"
// collaborator referenced by the scheduling contract.
func newIterableDrain(seq iter.Seq[func()], reschedule func(method any)) Callable {
	next, stop := iter.Pull(seq)
	var drain Callable
	drain = func(args ...any) (any, error) {
		fn, ok := next()
		if !ok {
			stop()
			return nil, nil
		}
		fn()
		reschedule(drain)
		return nil, nil
	}
	return drain
}
