package backburner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateRegistry_FindByTargetAndMethod(t *testing.T) {
	var r rateRegistry
	target := &struct{}{}
	r.append(target, "tick", 42)

	idx, found := r.find(target, "tick")
	assert.True(t, found)
	assert.Equal(t, 0, idx)

	_, found = r.find(target, "other")
	assert.False(t, found)
}

func TestRateRegistry_FindByTimerID(t *testing.T) {
	var r rateRegistry
	r.append(&struct{}{}, "a", 1)
	r.append(&struct{}{}, "b", 2)

	idx, found := r.findByTimerID(2)
	assert.True(t, found)
	assert.Equal(t, 1, idx)

	_, found = r.findByTimerID(99)
	assert.False(t, found)
}

func TestRateRegistry_RemovePreservesOrder(t *testing.T) {
	var r rateRegistry
	r.append(nil, "a", 1)
	r.append(nil, "b", 2)
	r.append(nil, "c", 3)

	r.remove(1)
	assert.Len(t, r.entries, 2)
	assert.Equal(t, "a", r.entries[0].method)
	assert.Equal(t, "c", r.entries[1].method)
}

func TestTargetEqual(t *testing.T) {
	type T struct{ N int }
	a := &T{N: 1}
	b := a
	c := &T{N: 1}

	assert.True(t, targetEqual(nil, nil))
	assert.False(t, targetEqual(a, nil))
	assert.True(t, targetEqual(a, b))
	assert.False(t, targetEqual(a, c), "different pointers are different identities even with equal contents")
	assert.False(t, targetEqual([]int{1}, []int{1}), "non-comparable dynamic types never compare equal")
}
