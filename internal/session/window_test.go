package session

import (
	"testing"
	"time"

	"github.com/gautham2106/curaflow-hospital-management-sub000/internal/models"
)

func clinicDay() []models.SessionWindow {
	windows, err := Parse([]models.WindowConfig{
		{Name: "Morning", Start: "09:00", End: "13:00"},
		{Name: "Afternoon", Start: "14:00", End: "18:00"},
	})
	if err != nil {
		panic(err)
	}
	return windows
}

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 9, hour, minute, 0, 0, time.UTC)
}

func TestParseRejectsMalformedClock(t *testing.T) {
	cases := []struct {
		name  string
		start string
		end   string
	}{
		{"no colon", "0900", "13:00"},
		{"hour range", "25:00", "26:00"},
		{"minute range", "09:61", "13:00"},
		{"empty", "", "13:00"},
		{"inverted", "13:00", "09:00"},
	}
	for _, tt := range cases {
		_, err := Parse([]models.WindowConfig{{Name: "Morning", Start: tt.start, End: tt.end}})
		if err == nil {
			t.Fatalf("%s: expected parse error for %q-%q", tt.name, tt.start, tt.end)
		}
		var verr *models.ValidationError
		if !asValidation(err, &verr) {
			t.Fatalf("%s: expected validation error, got %T", tt.name, err)
		}
	}
}

func asValidation(err error, target **models.ValidationError) bool {
	v, ok := err.(*models.ValidationError)
	if ok {
		*target = v
	}
	return ok
}

func TestCurrent(t *testing.T) {
	windows := clinicDay()

	cases := []struct {
		hour, minute int
		want         string
		ok           bool
	}{
		{10, 30, "Morning", true},
		{9, 0, "Morning", true},   // start is inclusive
		{13, 0, "", false},        // end is exclusive
		{13, 30, "", false},       // between sessions
		{14, 0, "Afternoon", true},
		{17, 59, "Afternoon", true},
		{18, 0, "", false},
		{8, 59, "", false},
	}
	for _, tt := range cases {
		got, ok := Current(windows, at(tt.hour, tt.minute))
		if ok != tt.ok || (ok && got.Name != tt.want) {
			t.Fatalf("Current at %02d:%02d = (%q, %v), want (%q, %v)", tt.hour, tt.minute, got.Name, ok, tt.want, tt.ok)
		}
	}
}

func TestCurrentIsDeterministic(t *testing.T) {
	windows := clinicDay()
	now := at(10, 30)
	first, _ := Current(windows, now)
	for i := 0; i < 5; i++ {
		again, ok := Current(windows, now)
		if !ok || again != first {
			t.Fatalf("repeated call diverged: %+v vs %+v", again, first)
		}
	}
}

func TestCurrentOverlapPrefersConfigurationOrder(t *testing.T) {
	windows, err := Parse([]models.WindowConfig{
		{Name: "Morning", Start: "09:00", End: "14:00"},
		{Name: "Midday", Start: "12:00", End: "15:00"},
	})
	if err != nil {
		t.Fatal(err)
	}
	got, ok := Current(windows, at(13, 0))
	if !ok || got.Name != "Morning" {
		t.Fatalf("overlap resolved to %q, want Morning", got.Name)
	}
}

func TestNext(t *testing.T) {
	windows := clinicDay()

	up, ok := Next(windows, at(13, 30))
	if !ok || up.Window.Name != "Afternoon" || up.Tomorrow {
		t.Fatalf("Next at 13:30 = %+v, want Afternoon today", up)
	}

	up, ok = Next(windows, at(10, 30))
	if !ok || up.Window.Name != "Afternoon" {
		t.Fatalf("Next during Morning = %+v, want Afternoon", up)
	}

	up, ok = Next(windows, at(19, 0))
	if !ok || up.Window.Name != "Morning" || !up.Tomorrow {
		t.Fatalf("Next after close = %+v, want Morning tomorrow", up)
	}

	if _, ok := Next(nil, at(10, 0)); ok {
		t.Fatal("Next with no windows should report none")
	}
}

func TestMinutesUntilEnd(t *testing.T) {
	windows := clinicDay()

	minutes, ok := MinutesUntilEnd(windows, at(12, 30))
	if !ok || minutes != 30 {
		t.Fatalf("MinutesUntilEnd at 12:30 = (%d, %v), want (30, true)", minutes, ok)
	}

	minutes, ok = MinutesUntilEnd(windows, at(9, 0))
	if !ok || minutes != 240 {
		t.Fatalf("MinutesUntilEnd at 09:00 = (%d, %v), want (240, true)", minutes, ok)
	}

	if _, ok := MinutesUntilEnd(windows, at(13, 30)); ok {
		t.Fatal("MinutesUntilEnd between sessions should report none")
	}
}
