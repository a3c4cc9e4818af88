package backburner

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	calls []int
}

func (c *counter) M(n int) { c.calls = append(c.calls, n) }

func TestBackburner_RunFlushesNestedSchedulesInQueueOrder(t *testing.T) {
	b := New([]string{"actions", "render"})
	var order []string
	_, err := b.Run(nil, func() {
		order = append(order, "outer")
		_, _ = b.Schedule("render", nil, func() { order = append(order, "fnA") })
		_, _ = b.Schedule("actions", nil, func() { order = append(order, "fnB") })
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "fnB", "fnA"}, order)
}

func TestBackburner_ScheduleOnceDedupKeepsLatestArgs(t *testing.T) {
	b := New([]string{"actions"})
	c := &counter{}
	b.Begin()
	_, err := b.ScheduleOnce("actions", c, "M", 1)
	require.NoError(t, err)
	_, err = b.ScheduleOnce("actions", c, "M", 2)
	require.NoError(t, err)
	require.NoError(t, b.End())
	assert.Equal(t, []int{2}, c.calls)
}

func TestBackburner_LaterFiresInExecuteAtOrder(t *testing.T) {
	fake := newFakePlatform()
	b := New([]string{"actions"}, WithPlatform(fake.Platform()))
	var order []string

	_, err := b.Later(func() { order = append(order, "fn10") }, 10)
	require.NoError(t, err)
	_, err = b.Later(func() { order = append(order, "fn5") }, 5)
	require.NoError(t, err)

	fake.Advance(5 * time.Millisecond)
	assert.Equal(t, []string{"fn5"}, order)

	fake.Advance(5 * time.Millisecond)
	assert.Equal(t, []string{"fn5", "fn10"}, order)
}

func TestBackburner_DebounceFiresOnceAfterQuietPeriod(t *testing.T) {
	fake := newFakePlatform()
	b := New([]string{"actions"}, WithPlatform(fake.Platform()))
	var fireTimes []time.Duration
	fn := func() { fireTimes = append(fireTimes, fake.now.Sub(time.Unix(0, 0))) }

	_, err := b.Debounce(fn, 100, false)
	require.NoError(t, err)
	fake.Advance(50 * time.Millisecond)
	_, err = b.Debounce(fn, 100, false)
	require.NoError(t, err)
	fake.Advance(100 * time.Millisecond)

	assert.Equal(t, []time.Duration{150 * time.Millisecond}, fireTimes)
}

func TestBackburner_ThrottleFiresImmediatelyThenSuppresses(t *testing.T) {
	fake := newFakePlatform()
	b := New([]string{"actions"}, WithPlatform(fake.Platform()))
	var fireTimes []time.Duration
	fn := func() { fireTimes = append(fireTimes, fake.now.Sub(time.Unix(0, 0))) }

	_, err := b.Throttle(fn, 100, true)
	require.NoError(t, err)
	fake.Advance(10 * time.Millisecond)
	_, err = b.Throttle(fn, 100, true)
	require.NoError(t, err)
	fake.Advance(10 * time.Millisecond)
	_, err = b.Throttle(fn, 100, true)
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{0}, fireTimes)

	fake.Advance(80 * time.Millisecond)
	_, err = b.Throttle(fn, 100, true)
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{0, 100 * time.Millisecond}, fireTimes)
}

func TestBackburner_OnErrorDivertsPanicsAndContinues(t *testing.T) {
	var caught []error
	b := New([]string{"actions"}, WithOnError(func(err error) { caught = append(caught, err) }))

	boom := errors.New("boom")
	result, err := b.Run(nil, func() { panic(boom) })
	require.NoError(t, err)
	assert.Nil(t, result)
	require.Len(t, caught, 1)
	assert.ErrorIs(t, caught[0], boom)

	ran := false
	_, err = b.Run(nil, func() { ran = true })
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestBackburner_AutorunArmedOnceAcrossMultipleSchedules(t *testing.T) {
	fake := newFakePlatform()
	b := New([]string{"actions"}, WithPlatform(fake.Platform()))

	_, err := b.Schedule("actions", nil, func() {})
	require.NoError(t, err)
	pendingAfterFirst := fake.Pending()

	_, err = b.Schedule("actions", nil, func() {})
	require.NoError(t, err)
	assert.Equal(t, pendingAfterFirst, fake.Pending(), "second schedule must not arm a second autorun")

	fake.Advance(0)
	assert.Nil(t, b.CurrentInstance(), "autorun should have closed after the host's next turn")
}

func TestBackburner_CancelScheduledItemIsIdempotentAndPreventsFiring(t *testing.T) {
	b := New([]string{"actions"})
	fired := false
	b.Begin()
	h, err := b.Schedule("actions", nil, func() { fired = true })
	require.NoError(t, err)

	assert.True(t, b.Cancel(h))
	assert.False(t, b.Cancel(h), "cancelling twice returns true then false")

	require.NoError(t, b.End())
	assert.False(t, fired)
}

func TestBackburner_CancelLaterHandleNeverFires(t *testing.T) {
	fake := newFakePlatform()
	b := New([]string{"actions"}, WithPlatform(fake.Platform()))
	fired := false
	h, err := b.Later(func() { fired = true }, 10)
	require.NoError(t, err)
	assert.True(t, b.Cancel(h))
	fake.Advance(20 * time.Millisecond)
	assert.False(t, fired)
}

func TestBackburner_BeginEndEventsFireInOrder(t *testing.T) {
	b := New([]string{"actions"})
	var events []string
	require.NoError(t, b.On("begin", func(current, previous *DeferredActionQueues) { events = append(events, "begin") }))
	require.NoError(t, b.On("end", func(current, previous *DeferredActionQueues) { events = append(events, "end") }))

	b.Begin()
	require.NoError(t, b.End())
	assert.Equal(t, []string{"begin", "end"}, events)
}

func TestBackburner_EndWithoutBeginErrors(t *testing.T) {
	b := New([]string{"actions"})
	assert.ErrorIs(t, b.End(), ErrEndWithoutBegin)
}

func TestBackburner_JoinRunsInlineWithinCurrentInstance(t *testing.T) {
	b := New([]string{"actions"})
	depth := 0
	b.Begin()
	before := b.CurrentInstance()
	_, err := b.Join(nil, func() {
		depth++
		assert.Same(t, before, b.CurrentInstance())
	})
	require.NoError(t, err)
	require.NoError(t, b.End())
	assert.Equal(t, 1, depth)
}

func TestBackburner_CancelTimersDoesNotDrainQueuedItems(t *testing.T) {
	fake := newFakePlatform()
	b := New([]string{"actions"}, WithPlatform(fake.Platform()))
	b.Begin()
	_, err := b.Schedule("actions", nil, func() {})
	require.NoError(t, err)
	_, err = b.Later(func() {}, 10)
	require.NoError(t, err)

	assert.True(t, b.HasTimers())
	b.CancelTimers()
	assert.False(t, b.HasTimers())
	assert.True(t, b.CurrentInstance().hasWork(), "queued items survive CancelTimers")
}
