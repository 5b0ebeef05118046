// Package view keeps the independently-editable UI indices consistent:
// selected category, carousel page, selected day and week, and the
// compact-mode flag. The renderer reads state snapshots and feeds gestures
// back in as transitions; this package is the only writer of that state.
package view

import (
	"log/slog"
	"sync"
	"time"

	"ledger/internal/core"
	"ledger/internal/report"
)

// DefaultSuppressionWindow bounds the scroll-settle animation after a
// programmatic scroll. Settle events inside the window are feedback from our
// own scroll command, not the user.
const DefaultSuppressionWindow = 400 * time.Millisecond

// ScrollFunc is the programmatic-scroll command issued to the renderer when
// the carousel must move to a new page.
type ScrollFunc func(index int)

// State is a snapshot of the synchronized view indices.
type State struct {
	Categories       []string
	SelectedCategory string
	CarouselIndex    int
	SelectedDay      string
	WeekAnchor       time.Time
}

// Synchronizer owns the view state and serializes every transition. The
// carousel index always equals the selected category's position in the
// current category list.
type Synchronizer struct {
	mu         sync.Mutex
	categories []string
	selected   string
	index      int
	day        string
	weekAnchor time.Time

	scrollTo      ScrollFunc
	window        time.Duration
	suppressed    bool
	suppressTimer *time.Timer
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithSuppressionWindow overrides the scroll-settle suppression duration.
func WithSuppressionWindow(d time.Duration) Option {
	return func(s *Synchronizer) { s.window = d }
}

func NewSynchronizer(scrollTo ScrollFunc, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		categories: []string{core.AllCategory},
		selected:   core.AllCategory,
		scrollTo:   scrollTo,
		window:     DefaultSuppressionWindow,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close cancels any pending suppression timer.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelSuppression()
}

// State returns a copy of the current view state.
func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	cats := make([]string, len(s.categories))
	copy(cats, s.categories)
	return State{
		Categories:       cats,
		SelectedCategory: s.selected,
		CarouselIndex:    s.index,
		SelectedDay:      s.day,
		WeekAnchor:       s.weekAnchor,
	}
}

// Suppressed reports whether a programmatic scroll is still settling.
func (s *Synchronizer) Suppressed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suppressed
}

// TapCategory selects a category from a user tap. When the target page
// differs from the current one, a programmatic scroll is issued and settle
// events are suppressed for the duration of the animation so the scroll does
// not echo back as another category change.
func (s *Synchronizer) TapCategory(category string) {
	s.mu.Lock()
	target := indexOf(s.categories, category)
	if target < 0 {
		s.mu.Unlock()
		return
	}
	s.selected = category
	moved := target != s.index
	s.index = target
	var scrollTo ScrollFunc
	if moved {
		s.beginSuppression()
		scrollTo = s.scrollTo
	}
	s.mu.Unlock()

	if scrollTo != nil {
		slog.Debug("Programmatic scroll", "category", category, "index", target)
		scrollTo(target)
	}
}

// CarouselSettled reacts to the carousel coming to rest on a physical page.
// Settles inside the suppression window are ignored entirely: they are the
// tail of our own scroll command.
func (s *Synchronizer) CarouselSettled(page int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.suppressed {
		return
	}
	if page < 0 || page >= len(s.categories) {
		return
	}
	s.selected = s.categories[page]
	s.index = page
}

// RecordsChanged re-resolves the selection against a freshly computed
// category list. A selection that no longer exists falls back to the default
// category; one that survived keeps its name but may shift position.
func (s *Synchronizer) RecordsChanged(categories []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = make([]string, len(categories))
	copy(s.categories, categories)

	idx := indexOf(s.categories, s.selected)
	if idx < 0 {
		s.selected = core.AllCategory
		idx = indexOf(s.categories, core.AllCategory)
		if idx < 0 {
			idx = 0
			if len(s.categories) > 0 {
				s.selected = s.categories[0]
			}
		}
	}
	s.index = idx
}

// NavigateToDay jumps to a specific day. A day with no matching group is a
// no-op, not an error: the UI simply does not navigate. When the target lies
// outside the displayed week, the week anchor advances to contain it.
func (s *Synchronizer) NavigateToDay(key string, groups []report.DayGroup) {
	var target *report.DayGroup
	for i := range groups {
		if groups[i].Key == key {
			target = &groups[i]
			break
		}
	}
	if target == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.day = key
	if s.weekAnchor.IsZero() || !core.SameWeek(s.weekAnchor, target.Date) {
		s.weekAnchor = core.WeekStart(target.Date)
	}
}

// InitialLoad seeds the day selection once the store's first load completes:
// the most recent day group becomes the selected day and anchors the week.
// An empty ledger leaves the defaults in place.
func (s *Synchronizer) InitialLoad(groups []report.DayGroup) {
	if len(groups) == 0 {
		return
	}
	latest := groups[0]

	s.mu.Lock()
	defer s.mu.Unlock()
	s.day = latest.Key
	s.weekAnchor = core.WeekStart(latest.Date)
}

// beginSuppression opens a fresh suppression window. A new selection before
// the previous window closed restarts it; two windows never overlap.
// Callers hold s.mu.
func (s *Synchronizer) beginSuppression() {
	s.cancelSuppression()
	s.suppressed = true
	s.suppressTimer = time.AfterFunc(s.window, func() {
		s.mu.Lock()
		s.suppressed = false
		s.suppressTimer = nil
		s.mu.Unlock()
	})
}

// cancelSuppression stops the pending timer, if any. Callers hold s.mu.
func (s *Synchronizer) cancelSuppression() {
	if s.suppressTimer != nil {
		s.suppressTimer.Stop()
		s.suppressTimer = nil
	}
	s.suppressed = false
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}
