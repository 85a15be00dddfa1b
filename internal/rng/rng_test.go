package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeededIsReproducible(t *testing.T) {
	a := NewSeeded(42)
	b := NewSeeded(42)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.IntN(6), b.IntN(6))
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestDefaultRange(t *testing.T) {
	src := New(0)
	for i := 0; i < 200; i++ {
		v := src.IntN(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)

		f := src.Float64()
		assert.GreaterOrEqual(t, f, 0.0)
		assert.Less(t, f, 1.0)
	}
}

func TestScripted(t *testing.T) {
	s := NewScripted().PushInts(2, 7, -3).PushFloats(0.1)

	assert.Equal(t, 2, s.IntN(6))
	assert.Equal(t, 1, s.IntN(6)) // 7 % 6
	assert.Equal(t, 3, s.IntN(6))
	assert.Equal(t, 0, s.IntN(6))
	assert.Equal(t, 0, s.Remaining())

	assert.True(t, Chance(s, 0.2))
	assert.False(t, Chance(s, 0.2)) // 默认0.99

	xs := []int{1, 2, 3}
	s.Shuffle(len(xs), func(i, j int) { xs[i], xs[j] = xs[j], xs[i] })
	assert.Equal(t, []int{1, 2, 3}, xs)
}
