package idset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	s := Of[int64](3, 1, 3)
	assert.True(t, s.Has(1))
	assert.False(t, s.Has(2))
	assert.Equal(t, []int64{1, 3}, s.Sorted())
}

func TestWithout(t *testing.T) {
	assert.Equal(t, []int64{5, 1}, Without([]int64{5, 2, 1}, Of[int64](2)))
	assert.Nil(t, Without([]int64{2}, Of[int64](2)))
}

func TestUnique(t *testing.T) {
	assert.Equal(t, []int{4, 2, 9}, Unique([]int{4, 2, 4, 9, 2}))
	assert.Empty(t, Unique[int](nil))
}

func TestNonZero(t *testing.T) {
	assert.Equal(t, []int64{7}, NonZero([]int64{0, 7, -1}))
}
