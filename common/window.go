package common

import "time"

// TimeWindow bounds the valid times a probe accepts. Either bound may be
// absent independently.
type TimeWindow struct {
	Start    time.Time
	End      time.Time
	HasStart bool
	HasEnd   bool
}

// WindowFrom builds a window from two optional bounds.
func WindowFrom(start, end *time.Time) TimeWindow {
	var w TimeWindow
	if start != nil {
		w.Start, w.HasStart = *start, true
	}
	if end != nil {
		w.End, w.HasEnd = *end, true
	}
	return w
}

// Contains reports whether t satisfies every active bound. Bounds are
// inclusive.
func (w TimeWindow) Contains(t time.Time) bool {
	if w.HasStart && t.Before(w.Start) {
		return false
	}
	if w.HasEnd && t.After(w.End) {
		return false
	}
	return true
}
