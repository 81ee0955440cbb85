package stats

import (
	"cmp"
	"sort"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	return Sum(values) / float64(len(values))
}

// Sum returns the sum of all values
func Sum(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum
}

// Min returns the minimum value, false for an empty slice
func Min[T cmp.Ordered](values []T) (T, bool) {
	var min T
	if len(values) == 0 {
		return min, false
	}

	min = values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min, true
}

// Max returns the maximum value, false for an empty slice
func Max[T cmp.Ordered](values []T) (T, bool) {
	var max T
	if len(values) == 0 {
		return max, false
	}

	max = values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max, true
}

// Mode returns the most frequent value. Ties go to the value seen first.
func Mode[K comparable](values []K) (K, bool) {
	c := NewCounter[K]()
	for _, v := range values {
		c.Add(v)
	}
	mode, _, ok := c.Mode()
	return mode, ok
}

// Count is a distinct value with its frequency
type Count[K comparable] struct {
	Value K
	N     int
}

// Counter counts values and remembers the order in which each distinct
// value was first seen
type Counter[K comparable] struct {
	order  []K
	counts map[K]int
	total  int
}

// NewCounter creates an empty counter
func NewCounter[K comparable]() *Counter[K] {
	return &Counter[K]{counts: make(map[K]int)}
}

// Add records one occurrence of v
func (c *Counter[K]) Add(v K) {
	if _, ok := c.counts[v]; !ok {
		c.order = append(c.order, v)
	}
	c.counts[v]++
	c.total++
}

// Get returns how many times v was added
func (c *Counter[K]) Get(v K) int {
	return c.counts[v]
}

// Len returns the number of distinct values
func (c *Counter[K]) Len() int {
	return len(c.order)
}

// Total returns the number of values added
func (c *Counter[K]) Total() int {
	return c.total
}

// Mode returns the most frequent value and its count. Ties go to the value
// seen first. ok is false when nothing was added.
func (c *Counter[K]) Mode() (mode K, n int, ok bool) {
	for _, v := range c.order {
		if f := c.counts[v]; f > n {
			mode, n = v, f
		}
	}
	return mode, n, len(c.order) > 0
}

// Groups returns every distinct value with its count in first-seen order
func (c *Counter[K]) Groups() []Count[K] {
	out := make([]Count[K], 0, len(c.order))
	for _, v := range c.order {
		out = append(out, Count[K]{Value: v, N: c.counts[v]})
	}
	return out
}

// Sorted returns the groups ordered by count descending; equal counts keep
// first-seen order
func (c *Counter[K]) Sorted() []Count[K] {
	out := c.Groups()
	sort.SliceStable(out, func(i, j int) bool { return out[i].N > out[j].N })
	return out
}
