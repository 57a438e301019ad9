// Package session resolves wall-clock time against a clinic's configured
// session windows. Everything here is a pure function of its arguments so
// the front-desk view and the display feed re-derive the same answer.
package session

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gautham2106/curaflow-hospital-management-sub000/internal/models"
)

// Parse converts HH:MM window configs to their hhmm integer form. Windows
// keep configuration order; Current resolves overlaps to the earlier entry.
func Parse(configs []models.WindowConfig) ([]models.SessionWindow, error) {
	windows := make([]models.SessionWindow, 0, len(configs))
	for _, cfg := range configs {
		name := strings.TrimSpace(cfg.Name)
		if name == "" {
			return nil, &models.ValidationError{Field: "name", Message: "session window name is required"}
		}
		start, err := parseClock(cfg.Start)
		if err != nil {
			return nil, &models.ValidationError{Field: "start", Message: fmt.Sprintf("window %q: %v", name, err)}
		}
		end, err := parseClock(cfg.End)
		if err != nil {
			return nil, &models.ValidationError{Field: "end", Message: fmt.Sprintf("window %q: %v", name, err)}
		}
		if end <= start {
			return nil, &models.ValidationError{Field: "end", Message: fmt.Sprintf("window %q: end must be after start", name)}
		}
		windows = append(windows, models.SessionWindow{Name: name, Start: start, End: end})
	}
	return windows, nil
}

func parseClock(value string) (int, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%q is not an HH:MM time", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("%q is not an HH:MM time", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%q is not an HH:MM time", value)
	}
	return hour*100 + minute, nil
}

// Current returns the first window containing now, half-open on the end.
func Current(windows []models.SessionWindow, now time.Time) (models.SessionWindow, bool) {
	at := clockOf(now)
	for _, w := range windows {
		if w.Start <= at && at < w.End {
			return w, true
		}
	}
	return models.SessionWindow{}, false
}

// Upcoming is the resolver's answer for "which session starts next".
// Tomorrow is set when no window remains today and the answer wrapped to
// the day's earliest window.
type Upcoming struct {
	Window   models.SessionWindow
	Tomorrow bool
}

// Next returns the window with the smallest start strictly after now,
// wrapping to the earliest-starting window for the next day.
func Next(windows []models.SessionWindow, now time.Time) (Upcoming, bool) {
	if len(windows) == 0 {
		return Upcoming{}, false
	}
	at := clockOf(now)
	var next models.SessionWindow
	found := false
	for _, w := range windows {
		if w.Start <= at {
			continue
		}
		if !found || w.Start < next.Start {
			next = w
			found = true
		}
	}
	if found {
		return Upcoming{Window: next}, true
	}
	earliest := windows[0]
	for _, w := range windows[1:] {
		if w.Start < earliest.Start {
			earliest = w
		}
	}
	return Upcoming{Window: earliest, Tomorrow: true}, true
}

// MinutesUntilEnd reports whole minutes left in the current window, 0 when
// at or past its end, and false when now falls between sessions.
func MinutesUntilEnd(windows []models.SessionWindow, now time.Time) (int, bool) {
	current, ok := Current(windows, now)
	if !ok {
		return 0, false
	}
	remaining := minutesOf(current.End) - (now.Hour()*60 + now.Minute())
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

func clockOf(t time.Time) int {
	return t.Hour()*100 + t.Minute()
}

func minutesOf(hhmm int) int {
	return (hhmm/100)*60 + hhmm%100
}
