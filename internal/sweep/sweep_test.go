package sweep

import (
	"testing"
	"time"

	"github.com/gautham2106/curaflow-hospital-management-sub000/internal/models"
)

func TestDue(t *testing.T) {
	windows := []models.SessionWindow{
		{Name: "Morning", Start: 900, End: 1300},
		{Name: "Afternoon", Start: 1400, End: 1800},
	}
	grace := 15 * time.Minute
	day := func(hour, minute int) time.Time {
		return time.Date(2026, 3, 10, hour, minute, 0, 0, time.UTC)
	}

	cases := []struct {
		name    string
		session string
		now     time.Time
		want    bool
	}{
		{"window still open", "Morning", day(12, 0), false},
		{"ended inside grace", "Morning", day(13, 10), false},
		{"grace boundary", "Morning", day(13, 15), true},
		{"well past grace", "Morning", day(16, 0), true},
		{"other window untouched", "Afternoon", day(13, 30), false},
		{"unknown session", "Evening", day(23, 0), false},
	}
	for _, tc := range cases {
		if got := Due(windows, tc.session, tc.now, grace); got != tc.want {
			t.Fatalf("%s: Due = %v, want %v", tc.name, got, tc.want)
		}
	}
}
