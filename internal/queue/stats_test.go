package queue

import (
	"testing"
	"time"

	"github.com/gautham2106/curaflow-hospital-management-sub000/internal/models"
)

func stamp(hour, minute int) time.Time {
	return time.Date(2026, 3, 9, hour, minute, 0, 0, time.UTC)
}

func stampPtr(hour, minute int) *time.Time {
	t := stamp(hour, minute)
	return &t
}

func completedVisit(token int, checkIn, called, done time.Time, fee int64) models.Visit {
	return models.Visit{
		ClinicID:      "clinic-1",
		DoctorID:      "doc-1",
		VisitDate:     "2026-03-09",
		Session:       "Morning",
		TokenNumber:   token,
		Status:        models.StatusCompleted,
		Fee:           fee,
		CheckInTime:   checkIn,
		CalledTime:    &called,
		CompletedTime: &done,
	}
}

func TestAggregateStats(t *testing.T) {
	visits := []models.Visit{
		// waited 10m, consulted 15m
		completedVisit(1, stamp(9, 0), stamp(9, 10), stamp(9, 25), 500),
		// waited 30m, consulted 5m
		completedVisit(2, stamp(9, 5), stamp(9, 35), stamp(9, 40), 500),
		{Status: models.StatusNoShow, TokenNumber: 3, WasSkipped: true, Fee: 500},
		{Status: models.StatusCancelled, TokenNumber: 4, Fee: 500},
	}

	stats := AggregateStats(visits)

	if stats.TotalPatients != 4 {
		t.Fatalf("total = %d, want 4", stats.TotalPatients)
	}
	if stats.CompletedPatients != 2 || stats.NoShowPatients != 1 || stats.CancelledPatients != 1 {
		t.Fatalf("breakdown = %+v", stats)
	}
	if stats.SkippedPatients != 1 {
		t.Fatalf("skipped = %d, want 1", stats.SkippedPatients)
	}
	if stats.TotalPatients != stats.CompletedPatients+stats.NoShowPatients+stats.CancelledPatients {
		t.Fatalf("counts do not reconcile: %+v", stats)
	}
	if stats.AvgWaitingMinutes != 20 {
		t.Fatalf("avg wait = %d, want 20", stats.AvgWaitingMinutes)
	}
	if stats.AvgConsultationMinutes != 10 {
		t.Fatalf("avg consultation = %d, want 10", stats.AvgConsultationMinutes)
	}
	// Revenue covers completed visits only.
	if stats.TotalRevenue != 1000 {
		t.Fatalf("revenue = %d, want 1000", stats.TotalRevenue)
	}
	if stats.DoctorID != "doc-1" || stats.Session != "Morning" {
		t.Fatalf("stats key = %+v", stats)
	}
}

func TestAggregateStatsSkipsMissingTimestamps(t *testing.T) {
	done := stamp(10, 0)
	visits := []models.Visit{
		{Status: models.StatusCompleted, Fee: 300, CompletedTime: &done}, // no called_time
		completedVisit(2, stamp(9, 0), stamp(9, 8), stamp(9, 20), 300),
	}

	stats := AggregateStats(visits)
	if stats.CompletedPatients != 2 {
		t.Fatalf("completed = %d, want 2", stats.CompletedPatients)
	}
	if stats.AvgWaitingMinutes != 8 || stats.AvgConsultationMinutes != 12 {
		t.Fatalf("averages should only use fully-stamped visits: %+v", stats)
	}
	if stats.TotalRevenue != 600 {
		t.Fatalf("revenue = %d, want 600", stats.TotalRevenue)
	}
}

func TestAggregateStatsEmpty(t *testing.T) {
	stats := AggregateStats(nil)
	if stats != (models.SessionStats{}) {
		t.Fatalf("empty session should produce zeroed stats, got %+v", stats)
	}
}
