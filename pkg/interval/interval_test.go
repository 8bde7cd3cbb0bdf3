package interval_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pafsched/pkg/interval"
)

func TestIntervalEmptyAndWidth(t *testing.T) {
	cases := []struct {
		name  string
		iv    interval.Interval
		empty bool
		width int
	}{
		{"positive width", interval.Interval{Start: 0, End: 5}, false, 5},
		{"zero width", interval.Interval{Start: 3, End: 3}, true, 0},
		{"negative width", interval.Interval{Start: 5, End: 2}, true, -3},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.empty, c.iv.Empty())
			assert.Equal(t, c.width, c.iv.Width())
		})
	}
}

func TestOverlap(t *testing.T) {
	cases := []struct {
		name             string
		a, b, x, y int
		want             bool
	}{
		{"disjoint left", 0, 2, 2, 4, false},
		{"disjoint right", 2, 4, 0, 2, false},
		{"touching at boundary not overlap", 0, 3, 3, 6, false},
		{"overlapping", 0, 3, 2, 5, true},
		{"contained", 0, 10, 3, 5, true},
		{"identical", 2, 5, 2, 5, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := interval.Overlap(c.a, c.b, c.x, c.y)
			assert.Equal(t, c.want, got)
			assert.Equal(t, got, interval.Interval{Start: c.a, End: c.b}.Overlaps(interval.Interval{Start: c.x, End: c.y}))
		})
	}
}

func TestSubtractBlockedFiveCases(t *testing.T) {
	cases := []struct {
		name string
		list []interval.Interval
		u, v int
		want []interval.Interval
	}{
		{
			name: "unchanged, to the left",
			list: []interval.Interval{{Start: 0, End: 5}},
			u:    10, v: 15,
			want: []interval.Interval{{Start: 0, End: 5}},
		},
		{
			name: "unchanged, to the right",
			list: []interval.Interval{{Start: 10, End: 15}},
			u:    0, v: 5,
			want: []interval.Interval{{Start: 10, End: 15}},
		},
		{
			name: "right-truncated",
			list: []interval.Interval{{Start: 0, End: 10}},
			u:    5, v: 15,
			want: []interval.Interval{{Start: 0, End: 5}},
		},
		{
			name: "left-truncated",
			list: []interval.Interval{{Start: 0, End: 10}},
			u:    -5, v: 5,
			want: []interval.Interval{{Start: 5, End: 10}},
		},
		{
			name: "split",
			list: []interval.Interval{{Start: 0, End: 10}},
			u:    3, v: 7,
			want: []interval.Interval{{Start: 0, End: 3}, {Start: 7, End: 10}},
		},
		{
			name: "fully covered, dropped",
			list: []interval.Interval{{Start: 3, End: 7}},
			u:    0, v: 10,
			want: []interval.Interval{},
		},
		{
			name: "degenerate blocked range leaves list untouched",
			list: []interval.Interval{{Start: 0, End: 5}},
			u:    5, v: 5,
			want: []interval.Interval{{Start: 0, End: 5}},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := interval.SubtractBlocked(c.list, c.u, c.v)
			assert.ElementsMatch(t, c.want, got)
		})
	}
}

func TestWidthSum(t *testing.T) {
	list := []interval.Interval{{Start: 0, End: 3}, {Start: 5, End: 7}, {Start: 10, End: 10}}
	assert.Equal(t, 5, interval.WidthSum(list))
}
