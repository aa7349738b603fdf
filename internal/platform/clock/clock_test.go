package clock

import (
	"testing"
	"time"
)

func TestFixed_Advance(t *testing.T) {
	start := time.Date(2024, 5, 1, 7, 0, 0, 0, time.UTC)
	c := NewFixed(start)

	if !c.Now().Equal(start) {
		t.Fatalf("expected %v, got %v", start, c.Now())
	}
	got := c.Advance(90 * time.Minute)
	want := start.Add(90 * time.Minute)
	if !got.Equal(want) || !c.Now().Equal(want) {
		t.Errorf("expected %v after advance, got %v / %v", want, got, c.Now())
	}
}

func TestSystem_ReturnsUTC(t *testing.T) {
	if loc := System().Now().Location(); loc != time.UTC {
		t.Errorf("expected UTC, got %v", loc)
	}
}
