package backburner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ticked int
}

func (w *widget) Tick() { w.ticked++ }

func TestParseLaterArgs_ZeroArgsIsNoOp(t *testing.T) {
	_, _, _, _, ok, err := parseLaterArgs(nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParseLaterArgs_OneArgIsBareMethod(t *testing.T) {
	fn := func() {}
	_, method, callArgs, wait, ok, err := parseLaterArgs([]any{fn})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Duration(0), wait)
	assert.Nil(t, callArgs)
	assert.NotNil(t, method)
}

func TestParseLaterArgs_TwoArgsTargetAndMethodName(t *testing.T) {
	w := &widget{}
	target, method, _, wait, ok, err := parseLaterArgs([]any{w, "Tick"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Same(t, w, target)
	assert.Equal(t, "Tick", method)
	assert.Equal(t, time.Duration(0), wait)
}

func TestParseLaterArgs_TwoArgsMethodAndWait(t *testing.T) {
	fn := func() {}
	target, method, _, wait, ok, err := parseLaterArgs([]any{fn, 10})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Nil(t, target)
	assert.NotNil(t, method)
	assert.Equal(t, 10*time.Millisecond, wait)
}

func TestParseLaterArgs_ThreeArgsPopsTrailingWait(t *testing.T) {
	w := &widget{}
	target, method, callArgs, wait, ok, err := parseLaterArgs([]any{w, "Tick", 25})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Same(t, w, target)
	assert.Equal(t, "Tick", method)
	assert.Empty(t, callArgs)
	assert.Equal(t, 25*time.Millisecond, wait)
}

func TestParseRateArgs_TrailingBoolIsImmediate(t *testing.T) {
	w := &widget{}
	ra, err := parseRateArgs([]any{w, "Tick", 50, false}, true)
	require.NoError(t, err)
	assert.Same(t, w, ra.target)
	assert.Equal(t, "Tick", ra.method)
	assert.Equal(t, 50*time.Millisecond, ra.wait)
	assert.False(t, ra.immediate)
}

func TestParseRateArgs_DefaultImmediateAppliesWhenOmitted(t *testing.T) {
	w := &widget{}
	ra, err := parseRateArgs([]any{w, "Tick", 50}, true)
	require.NoError(t, err)
	assert.True(t, ra.immediate)

	ra, err = parseRateArgs([]any{w, "Tick", 50}, false)
	require.NoError(t, err)
	assert.False(t, ra.immediate)
}

func TestParseRateArgs_MissingWaitErrors(t *testing.T) {
	_, err := parseRateArgs([]any{&widget{}, "Tick"}, true)
	assert.Error(t, err)
}

func TestResolveCallable_StringMethodNameOnTarget(t *testing.T) {
	w := &widget{}
	callable, err := resolveCallable(w, "Tick")
	require.NoError(t, err)
	_, err = callable()
	require.NoError(t, err)
	assert.Equal(t, 1, w.ticked)
}

func TestResolveCallable_PlainFunc(t *testing.T) {
	called := false
	callable, err := resolveCallable(nil, func() { called = true })
	require.NoError(t, err)
	_, err = callable()
	require.NoError(t, err)
	assert.True(t, called)
}

func TestResolveCallable_UnknownMethodNameErrors(t *testing.T) {
	_, err := resolveCallable(&widget{}, "NoSuchMethod")
	assert.Error(t, err)
}

func TestMethodIdentity_FuncsIdentifiedByCodePointer(t *testing.T) {
	fn := func() {}
	id1, ok1 := methodIdentity(fn)
	id2, ok2 := methodIdentity(fn)
	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.Equal(t, id1, id2)
}
