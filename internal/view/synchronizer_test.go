package view

import (
	"sync"
	"testing"
	"time"

	"ledger/internal/core"
	"ledger/internal/report"
)

// scrollRecorder captures programmatic scroll commands.
type scrollRecorder struct {
	mu    sync.Mutex
	pages []int
}

func (r *scrollRecorder) scroll(index int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages = append(r.pages, index)
}

func (r *scrollRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pages)
}

func (r *scrollRecorder) last() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pages[len(r.pages)-1]
}

func newTestSync(t *testing.T, window time.Duration) (*Synchronizer, *scrollRecorder) {
	t.Helper()
	rec := &scrollRecorder{}
	s := NewSynchronizer(rec.scroll, WithSuppressionWindow(window))
	t.Cleanup(s.Close)
	s.RecordsChanged([]string{core.AllCategory, "fashion", "food", "travel"})
	return s, rec
}

func dayGroups(t *testing.T, keys ...string) []report.DayGroup {
	t.Helper()
	groups := make([]report.DayGroup, 0, len(keys))
	for _, key := range keys {
		date, err := core.ParseDayKey(key)
		if err != nil {
			t.Fatalf("parse %q: %v", key, err)
		}
		groups = append(groups, report.DayGroup{Key: key, Date: date})
	}
	return groups
}

func TestTapIssuesOneScrollAndSuppressesSettle(t *testing.T) {
	s, rec := newTestSync(t, 40*time.Millisecond)

	// Carousel is on page 0 ("All"); the user taps "travel".
	s.TapCategory("travel")

	if rec.count() != 1 || rec.last() != 3 {
		t.Fatalf("expected a single scroll to index 3, got %v", rec.pages)
	}
	st := s.State()
	if st.SelectedCategory != "travel" || st.CarouselIndex != 3 {
		t.Fatalf("unexpected state: %+v", st)
	}

	// The settle event produced by our own scroll must not change anything.
	s.CarouselSettled(0)
	if st = s.State(); st.SelectedCategory != "travel" {
		t.Fatalf("suppressed settle changed selection to %q", st.SelectedCategory)
	}

	// Once the window expires, a manual swipe is an ordinary change.
	time.Sleep(60 * time.Millisecond)
	s.CarouselSettled(2)
	if st = s.State(); st.SelectedCategory != "food" || st.CarouselIndex != 2 {
		t.Fatalf("post-window settle not honored: %+v", st)
	}
}

func TestTapSamePageDoesNotScroll(t *testing.T) {
	s, rec := newTestSync(t, 40*time.Millisecond)

	s.TapCategory(core.AllCategory) // already on page 0
	if rec.count() != 0 {
		t.Fatalf("expected no scroll command, got %v", rec.pages)
	}
	if s.Suppressed() {
		t.Fatal("no scroll means no suppression window")
	}
}

func TestRapidRetapRestartsWindow(t *testing.T) {
	s, _ := newTestSync(t, 50*time.Millisecond)

	s.TapCategory("food")
	time.Sleep(30 * time.Millisecond)
	// Second tap before the first window closed: one fresh window, never two.
	s.TapCategory("travel")
	time.Sleep(30 * time.Millisecond)

	// 60ms after the first tap the first window would have expired, but the
	// restart keeps suppression alive.
	if !s.Suppressed() {
		t.Fatal("restarted window should still be open")
	}
	s.CarouselSettled(1)
	if st := s.State(); st.SelectedCategory != "travel" {
		t.Fatalf("settle during restarted window changed selection: %+v", st)
	}

	time.Sleep(40 * time.Millisecond)
	if s.Suppressed() {
		t.Fatal("window should have closed")
	}
}

func TestTapUnknownCategoryIsNoop(t *testing.T) {
	s, rec := newTestSync(t, 40*time.Millisecond)

	s.TapCategory("does-not-exist")
	if rec.count() != 0 {
		t.Fatalf("unexpected scroll: %v", rec.pages)
	}
	if st := s.State(); st.SelectedCategory != core.AllCategory {
		t.Fatalf("selection changed: %+v", st)
	}
}

func TestSettleOutOfRangeIgnored(t *testing.T) {
	s, _ := newTestSync(t, time.Millisecond)

	s.CarouselSettled(-1)
	s.CarouselSettled(99)
	if st := s.State(); st.SelectedCategory != core.AllCategory || st.CarouselIndex != 0 {
		t.Fatalf("out of range settle changed state: %+v", st)
	}
}

func TestRecordsChangedKeepsSelectionAndReindexes(t *testing.T) {
	s, _ := newTestSync(t, time.Millisecond)
	s.TapCategory("travel")

	// A new category appears before "travel": its position shifts.
	s.RecordsChanged([]string{core.AllCategory, "amazon", "fashion", "food", "travel"})
	st := s.State()
	if st.SelectedCategory != "travel" || st.CarouselIndex != 4 {
		t.Fatalf("expected travel at index 4, got %+v", st)
	}
}

func TestRecordsChangedFallsBackToDefault(t *testing.T) {
	s, _ := newTestSync(t, time.Millisecond)
	s.TapCategory("travel")

	// The last travel record was deleted.
	s.RecordsChanged([]string{core.AllCategory, "fashion", "food"})
	st := s.State()
	if st.SelectedCategory != core.AllCategory || st.CarouselIndex != 0 {
		t.Fatalf("expected fallback to default, got %+v", st)
	}
}

func TestInitialLoadSelectsMostRecentDay(t *testing.T) {
	s, _ := newTestSync(t, time.Millisecond)

	s.InitialLoad(dayGroups(t, "2024-03-07", "2024-03-05", "2024-02-28"))
	st := s.State()
	if st.SelectedDay != "2024-03-07" {
		t.Fatalf("expected 2024-03-07, got %q", st.SelectedDay)
	}
	if st.WeekAnchor.Weekday() != time.Sunday {
		t.Fatalf("week anchor not at week start: %v", st.WeekAnchor)
	}

	// Empty ledger leaves defaults untouched.
	s2, _ := newTestSync(t, time.Millisecond)
	s2.InitialLoad(nil)
	if st := s2.State(); st.SelectedDay != "" {
		t.Fatalf("empty load selected %q", st.SelectedDay)
	}
}

func TestNavigateToDay(t *testing.T) {
	s, _ := newTestSync(t, time.Millisecond)
	groups := dayGroups(t, "2024-03-07", "2024-03-05", "2024-02-20")
	s.InitialLoad(groups)
	anchor := s.State().WeekAnchor

	// Same week: the anchor stays put.
	s.NavigateToDay("2024-03-05", groups)
	st := s.State()
	if st.SelectedDay != "2024-03-05" {
		t.Fatalf("expected 2024-03-05, got %q", st.SelectedDay)
	}
	if !st.WeekAnchor.Equal(anchor) {
		t.Fatalf("anchor moved within the same week: %v -> %v", anchor, st.WeekAnchor)
	}

	// Outside the displayed week: the anchor follows.
	s.NavigateToDay("2024-02-20", groups)
	st = s.State()
	if st.SelectedDay != "2024-02-20" {
		t.Fatalf("expected 2024-02-20, got %q", st.SelectedDay)
	}
	if st.WeekAnchor.Equal(anchor) {
		t.Fatal("anchor should have moved to the target week")
	}

	// A day with no group does not navigate.
	s.NavigateToDay("2024-01-01", groups)
	if st = s.State(); st.SelectedDay != "2024-02-20" {
		t.Fatalf("missing day changed selection to %q", st.SelectedDay)
	}
}
