package queue

import (
	"time"

	"github.com/gautham2106/curaflow-hospital-management-sub000/internal/models"
)

// AggregateStats folds the full day's visits for one (doctor, date, session)
// into the end-of-session report. Averages are whole minutes over Completed
// visits that carry both timestamps; revenue sums Completed fees only.
// An empty slice yields zeroed stats: ending an empty session is valid.
func AggregateStats(visits []models.Visit) models.SessionStats {
	var stats models.SessionStats
	if len(visits) > 0 {
		stats.ClinicID = visits[0].ClinicID
		stats.DoctorID = visits[0].DoctorID
		stats.VisitDate = visits[0].VisitDate
		stats.Session = visits[0].Session
	}

	var waitTotal, consultTotal time.Duration
	var waitSamples, consultSamples int

	for _, visit := range visits {
		stats.TotalPatients++
		if visit.WasSkipped {
			stats.SkippedPatients++
		}
		switch visit.Status {
		case models.StatusCompleted:
			stats.CompletedPatients++
			stats.TotalRevenue += visit.Fee
			if visit.CalledTime != nil {
				if !visit.CheckInTime.IsZero() {
					waitTotal += visit.CalledTime.Sub(visit.CheckInTime)
					waitSamples++
				}
				if visit.CompletedTime != nil {
					consultTotal += visit.CompletedTime.Sub(*visit.CalledTime)
					consultSamples++
				}
			}
		case models.StatusNoShow:
			stats.NoShowPatients++
		case models.StatusCancelled:
			stats.CancelledPatients++
		}
	}

	if waitSamples > 0 {
		stats.AvgWaitingMinutes = int((waitTotal / time.Duration(waitSamples)).Minutes())
	}
	if consultSamples > 0 {
		stats.AvgConsultationMinutes = int((consultTotal / time.Duration(consultSamples)).Minutes())
	}
	return stats
}
