package view

import (
	"sync"

	"ledger/internal/core"
)

// Mode is the UI visibility mode toggled by vertical scrolling.
type Mode int

const (
	ModeVisible Mode = iota
	ModeCompact
)

func (m Mode) String() string {
	if m == ModeCompact {
		return "compact"
	}
	return "visible"
}

// GroupingMode selects between the day-grouped list and the month summary.
type GroupingMode int

const (
	GroupByDay GroupingMode = iota
	GroupByMonth
)

// Scroll thresholds, in scroll units since the previous sample. Entering
// compact takes a bigger push than leaving it so the mode does not jitter
// when the user hovers around the boundary.
const (
	hideThreshold = 10.0
	showThreshold = 8.0
)

// VisibilityController decides when the UI collapses into compact mode.
// Scroll-driven transitions only run while the default category is active;
// any other category forces the UI visible. The month summary forces compact
// regardless of scrolling.
type VisibilityController struct {
	mu         sync.Mutex
	mode       Mode
	category   string
	grouping   GroupingMode
	lastOffset float64
}

func NewVisibilityController() *VisibilityController {
	return &VisibilityController{
		mode:     ModeVisible,
		category: core.AllCategory,
		grouping: GroupByDay,
	}
}

// Mode returns the current visibility mode.
func (c *VisibilityController) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Sample feeds a vertical scroll offset into the controller. Direction and
// delta against the previous sample drive the transitions.
func (c *VisibilityController) Sample(offset float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delta := offset - c.lastOffset
	c.lastOffset = offset

	if c.category != core.AllCategory || c.grouping == GroupByMonth {
		return
	}

	switch {
	case delta > hideThreshold && c.mode == ModeVisible:
		c.mode = ModeCompact
	case delta < -showThreshold && c.mode == ModeCompact:
		c.mode = ModeVisible
	}
}

// SetCategory gates the controller on the active category. Anything but the
// default category forces the UI visible and suspends scroll transitions.
func (c *VisibilityController) SetCategory(category string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.category = category
	if category != core.AllCategory {
		c.mode = ModeVisible
	}
}

// SetGrouping switches between day and month views. Month summary forces
// compact; returning to the day view restores the visible default and
// re-enables scroll transitions.
func (c *VisibilityController) SetGrouping(g GroupingMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.grouping = g
	if g == GroupByMonth {
		c.mode = ModeCompact
	} else {
		c.mode = ModeVisible
	}
}
