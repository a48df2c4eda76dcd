package domain

import "fmt"

// The production calendar is a fixed 53-week year.
const (
	FirstWeek = 1
	LastWeek  = 53
	// weekSentinel is one past LastWeek; it closes the final merge segment.
	weekSentinel = LastWeek + 1
)

// WeekSentinel returns the breakpoint that terminates the last calendar segment.
func WeekSentinel() int { return weekSentinel }

// ValidWeek reports whether w lies on the production calendar.
func ValidWeek(w int) bool { return w >= FirstWeek && w <= LastWeek }

// Window is an inclusive [Start, End] week range.
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// FullYear spans the entire calendar.
func FullYear() Window { return Window{Start: FirstWeek, End: LastWeek} }

// Empty reports whether the window is inverted.
func (w Window) Empty() bool { return w.Start > w.End }

// Contains reports whether week falls inside the window.
func (w Window) Contains(week int) bool { return week >= w.Start && week <= w.End }

// Covers reports whether w fully contains other.
func (w Window) Covers(other Window) bool { return w.Start <= other.Start && w.End >= other.End }

// Overlaps reports whether the two windows share at least one week.
func (w Window) Overlaps(other Window) bool { return w.Start <= other.End && w.End >= other.Start }

// Intersect returns the shared part of both windows. The result is Empty when
// they do not overlap.
func (w Window) Intersect(other Window) Window {
	return Window{Start: max(w.Start, other.Start), End: min(w.End, other.End)}
}

// Span returns End-Start; used to rank windows by tightness.
func (w Window) Span() int { return w.End - w.Start }

func (w Window) String() string { return fmt.Sprintf("[%d,%d]", w.Start, w.End) }
