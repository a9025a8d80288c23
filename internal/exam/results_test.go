package exam

import (
	"testing"
	"time"
)

func TestComputeResults(t *testing.T) {
	tests := []struct {
		name           string
		total, correct int
		wantPct        float64
		wantPass       bool
	}{
		{"all correct", 5, 5, 100, true},
		{"none correct", 3, 0, 0, false},
		{"exactly threshold", 10, 7, 70, true},
		{"just under", 10, 6, 60, false},
		{"empty set", 0, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ComputeResults(tt.total, tt.correct, 0)
			if r.Percentage != tt.wantPct {
				t.Errorf("Percentage = %v, want %v", r.Percentage, tt.wantPct)
			}
			if r.Passed != tt.wantPass {
				t.Errorf("Passed = %v, want %v", r.Passed, tt.wantPass)
			}
		})
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "00:00"},
		{65, "01:05"},
		{599, "09:59"},
		{3600, "60:00"},
		{6000, "100:00"},
		{-5, "00:00"},
	}
	for _, tt := range tests {
		if got := FormatElapsed(tt.seconds); got != tt.want {
			t.Errorf("FormatElapsed(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestGrade_EmptyAuthoritativeAnswer(t *testing.T) {
	if Grade("x", "") {
		t.Error("non-empty answer must not match empty authoritative answer")
	}
	if !Grade("", "") {
		t.Error("empty answer matches empty authoritative answer")
	}
}

func TestClock_WallClockDelta(t *testing.T) {
	mc := newManualClock()
	c := NewClock(mc.Now)

	if got := c.Tick(); got != 0 {
		t.Errorf("Tick before start = %d, want 0", got)
	}
	c.Start()
	mc.Advance(1500 * time.Millisecond)
	if got := c.Tick(); got != 1 {
		t.Errorf("Tick = %d, want 1", got)
	}
	mc.Advance(64 * time.Second)
	if got := c.Tick(); got != 65 {
		t.Errorf("Tick = %d, want 65", got)
	}

	// A second Start must not reset the clock.
	c.Start()
	if got := c.Tick(); got != 65 {
		t.Errorf("Tick after restart = %d, want 65", got)
	}
}
