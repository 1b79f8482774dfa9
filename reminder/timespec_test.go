package reminder

import (
	"testing"
	"time"
)

func TestResolveRelativeOffsets(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		spec string
		want time.Time
	}{
		{"30m", now.Add(30 * time.Minute)},
		{"2h", now.Add(2 * time.Hour)},
		{"1d", now.Add(24 * time.Hour)},
		{"90m", now.Add(90 * time.Minute)},
	}

	for _, tt := range tests {
		got, err := Resolve(tt.spec, now)
		if err != nil {
			t.Errorf("Resolve(%q) unexpected error: %v", tt.spec, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("Resolve(%q) = %v, want %v", tt.spec, got, tt.want)
		}
	}
}

func TestResolveClockTimeLaterToday(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	got, err := Resolve("18:30", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 1, 1, 18, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Resolve(18:30) = %v, want %v", got, want)
	}
}

func TestResolveClockTimeRollsToTomorrow(t *testing.T) {
	// 18:30 has already passed at 18:35, so the reminder lands tomorrow
	now := time.Date(2024, 1, 1, 18, 35, 0, 0, time.UTC)

	got, err := Resolve("18:30", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 1, 2, 18, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Resolve(18:30) = %v, want %v", got, want)
	}
}

func TestResolveExactNowRollsToTomorrow(t *testing.T) {
	now := time.Date(2024, 1, 1, 18, 30, 0, 0, time.UTC)

	got, err := Resolve("18:30", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Day() != 2 {
		t.Errorf("expected roll to next day, got %v", got)
	}
}

func TestResolveInvalidSpecs(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	invalid := []string{"2x", "abc", "", "m", "30", "1w", "30s", "12:60", "25:00", ":30", "1:2:3", "x5m"}
	for _, spec := range invalid {
		if _, err := Resolve(spec, now); err != ErrInvalidTimeFormat {
			t.Errorf("Resolve(%q) error = %v, want ErrInvalidTimeFormat", spec, err)
		}
	}
}

func TestResolveNegativeOffsetIsAccepted(t *testing.T) {
	// A negative offset is grammatically valid; the engine rejects the
	// resulting past instant.
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	got, err := Resolve("-5m", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Before(now) {
		t.Errorf("Resolve(-5m) = %v, expected instant before now", got)
	}
}
