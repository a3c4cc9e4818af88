package backburner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func invokeCallable(w *Work) error {
	fn := w.Method.(func(args ...any) (any, error))
	_, err := fn(w.Args...)
	return err
}

func TestDeferredActionQueues_FlushRunsQueuesInDeclaredOrder(t *testing.T) {
	d := newDeferredActionQueues([]string{"actions", "render"})
	var order []string
	must := func(_ *Work, _ *Queue, err error) { require.NoError(t, err) }

	must(d.schedule("render", nil, func(args ...any) (any, error) { order = append(order, "render"); return nil, nil }, nil, false, nil))
	must(d.schedule("actions", nil, func(args ...any) (any, error) { order = append(order, "actions"); return nil, nil }, nil, false, nil))

	state, err := d.flush(invokeCallable)
	require.NoError(t, err)
	assert.Equal(t, FlushContinue, state)
	assert.Equal(t, []string{"actions", "render"}, order)
}

func TestDeferredActionQueues_ResetsToEarlierQueueOnNewWork(t *testing.T) {
	d := newDeferredActionQueues([]string{"actions", "render"})
	var order []string

	renderScheduledActions := false
	_, _, err := d.schedule("render", nil, func(args ...any) (any, error) {
		order = append(order, "render1")
		if !renderScheduledActions {
			renderScheduledActions = true
			_, _, _ = d.schedule("actions", nil, func(args ...any) (any, error) {
				order = append(order, "actions-from-render")
				return nil, nil
			}, nil, false, nil)
		}
		return nil, nil
	}, nil, false, nil)
	require.NoError(t, err)

	state, err := d.flush(invokeCallable)
	require.NoError(t, err)
	assert.Equal(t, FlushContinue, state)
	assert.Equal(t, []string{"render1", "actions-from-render"}, order)
}

func TestDeferredActionQueues_ScheduleUnknownQueueErrors(t *testing.T) {
	d := newDeferredActionQueues([]string{"actions"})
	_, _, err := d.schedule("missing", nil, func(args ...any) (any, error) { return nil, nil }, nil, false, nil)
	assert.Error(t, err)
}

func TestDeferredActionQueues_FlushPropagatesPause(t *testing.T) {
	d := newDeferredActionQueues([]string{"actions", "render"})
	_, _, err := d.schedule("actions", nil, func(args ...any) (any, error) { return nil, ErrPause }, nil, false, nil)
	require.NoError(t, err)
	_, _, err = d.schedule("render", nil, func(args ...any) (any, error) { return nil, nil }, nil, false, nil)
	require.NoError(t, err)

	state, err := d.flush(invokeCallable)
	require.NoError(t, err)
	assert.Equal(t, FlushPause, state)
	assert.True(t, d.Queue("render").hasWork(), "render never got a chance to drain")
}
