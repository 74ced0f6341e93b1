package core

import (
	"testing"
	"time"
)

func TestPeriodOf(t *testing.T) {
	cases := []struct {
		in   time.Time
		want Period
	}{
		{time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC), "2024-06"},
		{time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC), "2024-12"},
		{time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), "2025-01"},
	}
	for _, tc := range cases {
		if got := PeriodOf(tc.in); got != tc.want {
			t.Fatalf("PeriodOf(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParsePeriod(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2024-06", true},
		{"2024-6", false},
		{"2024/06", false},
		{"garbage", false},
		{"", false},
	}
	for _, tc := range cases {
		_, err := ParsePeriod(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("ParsePeriod(%q) unexpected error: %v", tc.in, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("ParsePeriod(%q) expected error", tc.in)
		}
	}
}

func TestPeriodBounds(t *testing.T) {
	cases := []struct {
		period Period
		first  Date
		last   Date
	}{
		{"2024-02", NewDate(2024, 2, 1), NewDate(2024, 2, 29)}, // leap year
		{"2023-02", NewDate(2023, 2, 1), NewDate(2023, 2, 28)},
		{"2024-12", NewDate(2024, 12, 1), NewDate(2024, 12, 31)},
		{"2024-04", NewDate(2024, 4, 1), NewDate(2024, 4, 30)},
	}
	for _, tc := range cases {
		first, last := tc.period.Bounds()
		if !first.Equal(tc.first.Time) || !last.Equal(tc.last.Time) {
			t.Fatalf("%s.Bounds() = (%s, %s), want (%s, %s)", tc.period, first, last, tc.first, tc.last)
		}
	}
}

func TestPeriodContains(t *testing.T) {
	p := Period("2024-06")
	if !p.Contains(NewDate(2024, 6, 1)) || !p.Contains(NewDate(2024, 6, 30)) {
		t.Fatalf("expected boundary days inside period")
	}
	if p.Contains(NewDate(2024, 5, 31)) || p.Contains(NewDate(2024, 7, 1)) {
		t.Fatalf("expected adjacent days outside period")
	}
}

func TestRecentPeriods(t *testing.T) {
	periods := RecentPeriods(12)
	if len(periods) != 12 {
		t.Fatalf("expected 12 periods, got %d", len(periods))
	}
	if periods[0] != CurrentPeriod() {
		t.Fatalf("first period %q is not the current one %q", periods[0], CurrentPeriod())
	}
	seen := make(map[Period]bool)
	for _, p := range periods {
		if seen[p] {
			t.Fatalf("duplicate period %q", p)
		}
		seen[p] = true
		if _, err := ParsePeriod(string(p)); err != nil {
			t.Fatalf("non-canonical period %q: %v", p, err)
		}
	}
}
