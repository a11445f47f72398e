package notes

import (
	"testing"
	"time"
)

func TestInterpretTime(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		expr      string
		due       time.Time
		tolerance time.Duration
		ok        bool
	}{
		{"today", now.Add(8 * time.Hour), time.Hour, true},
		{"tomorrow", now.Add(24 * time.Hour), 24 * time.Hour, true},
		{"1 hour", now.Add(time.Hour), time.Hour, true},
		{"5 hours", now.Add(5 * time.Hour), time.Hour, true},
		{"3 days", now.Add(3 * 24 * time.Hour), 24 * time.Hour, true},
		{"1 day", now.Add(24 * time.Hour), 24 * time.Hour, true},
		{"2 weeks", now.Add(2 * week), week, true},
		{"1 month", now.Add(4 * week), week, true},
		{"3 months", now.Add(12 * week), week, true},
		{"2days", now.Add(2 * 24 * time.Hour), 24 * time.Hour, true},
		{"soon", time.Time{}, 0, false},
		{"", time.Time{}, 0, false},
		{"days 3", time.Time{}, 0, false},
		{"yesterday", time.Time{}, 0, false},
	}

	for _, tc := range cases {
		due, tolerance, ok := InterpretTime(tc.expr, now)
		if ok != tc.ok {
			t.Errorf("InterpretTime(%q): ok = %v, want %v", tc.expr, ok, tc.ok)
			continue
		}
		if !tc.ok {
			continue
		}
		if !due.Equal(tc.due) {
			t.Errorf("InterpretTime(%q): due = %v, want %v", tc.expr, due, tc.due)
		}
		if tolerance != tc.tolerance {
			t.Errorf("InterpretTime(%q): tolerance = %v, want %v", tc.expr, tolerance, tc.tolerance)
		}
	}
}

func TestDescribeRemaining(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		due  time.Time
		want string
	}{
		{now.Add(5 * time.Hour), "5 hours"},
		{now.Add(23 * time.Hour), "23 hours"},
		{now.Add(3 * 24 * time.Hour), "3 days"},
		{now.Add(2 * week), "14 days"},
	}
	for _, tc := range cases {
		if got := DescribeRemaining(tc.due, now); got != tc.want {
			t.Errorf("DescribeRemaining(%v) = %q, want %q", tc.due, got, tc.want)
		}
	}
}

func TestDescribeRemainingRoundTrips(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	due := now.Add(3 * 24 * time.Hour)

	rendered := DescribeRemaining(due, now)
	reparsed, _, ok := InterpretTime(rendered, now)
	if !ok {
		t.Fatalf("Expected %q to be interpretable", rendered)
	}
	if !reparsed.Equal(due) {
		t.Errorf("Round trip drifted: %v became %v", due, reparsed)
	}
}
