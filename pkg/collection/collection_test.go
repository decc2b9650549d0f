package collection_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/stockroom/pkg/collection"
)

func TestMap(t *testing.T) {
	assert.Equal(t, []string{"1", "2"}, collection.Map([]int{1, 2}, strconv.Itoa))

	empty := collection.Map([]int(nil), strconv.Itoa)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestReduce(t *testing.T) {
	sum := collection.Reduce([]int{4, 2, 1}, 10, func(n, v int) int { return n + v })
	assert.Equal(t, 17, sum)
	assert.Equal(t, "x", collection.Reduce([]int{}, "x", func(s string, _ int) string { return s + "!" }))
}

func TestTake(t *testing.T) {
	s := []int{1, 2, 3, 4, 5, 6}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, collection.Take(s, 5))
	assert.Equal(t, s, collection.Take(s, 10))
	assert.Nil(t, collection.Take(s, 0))
}
