// Package interval implements the half-open integer interval algebra
// shared by every scheduling heuristic: overlap testing and subtraction of
// a blocked range from a sorted, disjoint interval list (spec.md §4.1).
package interval

// Interval is the half-open range [Start, End).
type Interval struct {
	Start int
	End   int
}

// Empty reports whether the interval contains no admissible points.
func (iv Interval) Empty() bool {
	return iv.Start >= iv.End
}

// Width returns End - Start, zero or negative for an empty interval.
func (iv Interval) Width() int {
	return iv.End - iv.Start
}

// Overlap reports whether [a,b) and [x,y) share any point.
func Overlap(a, b, x, y int) bool {
	return a < y && x < b
}

// Overlaps reports whether two intervals overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return Overlap(iv.Start, iv.End, other.Start, other.End)
}

// SubtractBlocked removes the blocked range [u, v) from every interval in a
// sorted, disjoint list, returning the (still sorted, disjoint) remainder.
// Mirrors the five-case table in spec.md §4.3: unchanged, right-truncated,
// left-truncated, split, or fully covered (dropped). Degenerate results
// (Start >= End) are dropped.
func SubtractBlocked(list []Interval, u, v int) []Interval {
	if u >= v {
		out := make([]Interval, len(list))
		copy(out, list)
		return out
	}
	out := make([]Interval, 0, len(list)+1)
	for _, iv := range list {
		a, b := iv.Start, iv.End
		switch {
		case b <= u || a >= v:
			// strictly to one side: unchanged
			out = append(out, iv)
		case a < u && v < b:
			// split
			out = append(out, Interval{Start: a, End: u})
			out = append(out, Interval{Start: v, End: b})
		case a < u && u <= b && b <= v:
			// right-truncated
			if a < u {
				out = append(out, Interval{Start: a, End: u})
			}
		case u <= a && a <= v && v < b:
			// left-truncated
			if v < b {
				out = append(out, Interval{Start: v, End: b})
			}
		default:
			// u <= a && b <= v: fully covered, drop
		}
	}
	return dropEmpty(out)
}

func dropEmpty(list []Interval) []Interval {
	out := list[:0]
	for _, iv := range list {
		if !iv.Empty() {
			out = append(out, iv)
		}
	}
	return out
}

// WidthSum returns the sum of widths of every interval in the list.
func WidthSum(list []Interval) int {
	total := 0
	for _, iv := range list {
		total += iv.Width()
	}
	return total
}
