package models

import "time"

// DateFormat is the calendar-day encoding used for visit dates. Visits are
// keyed by (clinic, doctor, date, session); the date carries no time zone.
const DateFormat = "2006-01-02"

type Visit struct {
	VisitID         string     `json:"visit_id"`
	ClinicID        string     `json:"clinic_id"`
	DoctorID        string     `json:"doctor_id"`
	PatientID       string     `json:"patient_id"`
	TokenNumber     int        `json:"token_number"`
	VisitDate       string     `json:"visit_date"`
	Session         string     `json:"session"`
	Status          string     `json:"status"`
	Fee             int64      `json:"fee"`
	CheckInTime     time.Time  `json:"check_in_time"`
	CalledTime      *time.Time `json:"called_time,omitempty"`
	CompletedTime   *time.Time `json:"completed_time,omitempty"`
	WasSkipped      bool       `json:"was_skipped"`
	SkipReason      string     `json:"skip_reason,omitempty"`
	WasOutOfTurn    bool       `json:"was_out_of_turn"`
	OutOfTurnReason string     `json:"out_of_turn_reason,omitempty"`
	RequestID       string     `json:"request_id,omitempty"`
}

// QueueEntry is the live, same-day operational record for a visit. It exists
// only when the visit date equals the clinic's current day at issuance.
type QueueEntry struct {
	EntryID     string     `json:"entry_id"`
	VisitID     string     `json:"visit_id"`
	ClinicID    string     `json:"clinic_id"`
	DoctorID    string     `json:"doctor_id"`
	Session     string     `json:"session"`
	VisitDate   string     `json:"visit_date"`
	TokenNumber int        `json:"token_number"`
	PatientID   string     `json:"patient_id"`
	PatientName string     `json:"patient_name,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority,omitempty"`
	CheckInTime time.Time  `json:"check_in_time"`
	CalledTime  *time.Time `json:"called_time,omitempty"`
}

const (
	StatusScheduled      = "scheduled"
	StatusWaiting        = "waiting"
	StatusInConsultation = "in_consultation"
	StatusSkipped        = "skipped"
	StatusCompleted      = "completed"
	StatusCancelled      = "cancelled"
	StatusNoShow         = "no_show"
)

// DefaultSkipReason is recorded when a skip arrives without one.
const DefaultSkipReason = "No reason provided"

var outOfTurnReasons = map[string]bool{
	"Emergency":             true,
	"Doctor Requested":      true,
	"Elderly/Special Needs": true,
	"Post-procedure Review": true,
	"Other":                 true,
}

func IsOutOfTurnReason(reason string) bool {
	return outOfTurnReasons[reason]
}

type SessionStats struct {
	ClinicID               string `json:"clinic_id"`
	DoctorID               string `json:"doctor_id"`
	VisitDate              string `json:"visit_date"`
	Session                string `json:"session"`
	TotalPatients          int    `json:"total_patients"`
	CompletedPatients      int    `json:"completed_patients"`
	NoShowPatients         int    `json:"no_show_patients"`
	SkippedPatients        int    `json:"skipped_patients"`
	CancelledPatients      int    `json:"cancelled_patients"`
	AvgWaitingMinutes      int    `json:"avg_waiting_minutes"`
	AvgConsultationMinutes int    `json:"avg_consultation_minutes"`
	TotalRevenue           int64  `json:"total_revenue"`
}
