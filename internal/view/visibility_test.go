package view

import (
	"testing"

	"ledger/internal/core"
)

func TestScrollTogglesCompact(t *testing.T) {
	c := NewVisibilityController()
	if c.Mode() != ModeVisible {
		t.Fatalf("expected visible initially, got %v", c.Mode())
	}

	// A small downward nudge stays under the threshold.
	c.Sample(0)
	c.Sample(8)
	if c.Mode() != ModeVisible {
		t.Fatal("8 units down must not collapse the UI")
	}

	// A decisive downward scroll collapses it.
	c.Sample(30)
	if c.Mode() != ModeCompact {
		t.Fatal("22 units down should collapse the UI")
	}

	// Scrolling up past the (smaller) show threshold restores it.
	c.Sample(25)
	if c.Mode() != ModeCompact {
		t.Fatal("5 units up is under the show threshold")
	}
	c.Sample(10)
	if c.Mode() != ModeVisible {
		t.Fatal("15 units up should restore the UI")
	}
}

func TestNonDefaultCategoryForcesVisible(t *testing.T) {
	c := NewVisibilityController()
	c.Sample(0)
	c.Sample(50)
	if c.Mode() != ModeCompact {
		t.Fatal("setup: expected compact")
	}

	c.SetCategory("travel")
	if c.Mode() != ModeVisible {
		t.Fatal("non-default category must force visible")
	}

	// Scroll transitions are suspended while off the default category.
	c.Sample(200)
	if c.Mode() != ModeVisible {
		t.Fatal("scrolling must be ignored outside the default category")
	}

	// Back on the default category scrolling works again.
	c.SetCategory(core.AllCategory)
	c.Sample(260)
	if c.Mode() != ModeCompact {
		t.Fatal("scroll transitions should resume on the default category")
	}
}

func TestMonthSummaryForcesCompact(t *testing.T) {
	c := NewVisibilityController()

	c.SetGrouping(GroupByMonth)
	if c.Mode() != ModeCompact {
		t.Fatal("month summary must force compact")
	}

	// Scrolling up cannot restore the UI while in month view.
	c.Sample(100)
	c.Sample(0)
	if c.Mode() != ModeCompact {
		t.Fatal("scrolling must be ignored in month view")
	}

	c.SetGrouping(GroupByDay)
	if c.Mode() != ModeVisible {
		t.Fatal("day view restores the visible default")
	}
}
