package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gautham2106/curaflow-hospital-management-sub000/internal/models"
)

type IssueTokenInput struct {
	RequestID string
	ClinicID  string
	DoctorID  string
	PatientID string
	VisitDate string
	Session   string
	Now       time.Time
}

type ActionInput struct {
	RequestID string
	ClinicID  string
	EntryID   string
	Reason    string
	Now       time.Time
}

type EndSessionInput struct {
	ClinicID  string
	DoctorID  string
	Session   string
	VisitDate string
	Now       time.Time
}

type CreateOperatorInput struct {
	ClinicID string
	Username string
	Password string
	Role     string
}

const (
	RoleFrontDesk  = "front_desk"
	RoleSuperadmin = "superadmin"
)

// OperatorSession is an authenticated front-desk or superadmin login.
type OperatorSession struct {
	SessionID  string
	OperatorID string
	ClinicID   string
	Role       string
	ExpiresAt  time.Time
}

// OpenSession identifies a (clinic, doctor, session) tuple that still has
// live queue entries; the sweeper closes these once their window has passed.
type OpenSession struct {
	ClinicID string
	DoctorID string
	Session  string
}

type OutboxEvent struct {
	Seq       int64           `json:"seq"`
	EventID   string          `json:"event_id"`
	ClinicID  string          `json:"clinic_id"`
	DoctorID  string          `json:"doctor_id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

type Store interface {
	// Queue engine. All mutations are transactional per (doctor, date,
	// session) and idempotent per request_id.
	IssueToken(ctx context.Context, input IssueTokenInput) (models.Visit, *models.QueueEntry, error)
	CallPatient(ctx context.Context, input ActionInput) (models.QueueEntry, error)
	SkipPatient(ctx context.Context, input ActionInput) (models.QueueEntry, error)
	RejoinPatient(ctx context.Context, input ActionInput) (models.QueueEntry, error)
	CompletePatient(ctx context.Context, input ActionInput) (models.QueueEntry, error)
	CancelPatient(ctx context.Context, input ActionInput) (models.QueueEntry, error)
	EndSession(ctx context.Context, input EndSessionInput) (models.SessionStats, []models.QueueEntry, error)

	// Reads for views, reports, the sweeper, and the display broadcaster.
	ListQueueEntries(ctx context.Context, clinicID, doctorID, sessionName, visitDate string) ([]models.QueueEntry, error)
	GetVisit(ctx context.Context, clinicID, visitID string) (models.Visit, error)
	SessionReport(ctx context.Context, clinicID, doctorID, visitDate, sessionName string) (models.SessionStats, error)
	ListOpenSessions(ctx context.Context, visitDate string) ([]OpenSession, error)
	ListOutboxEvents(ctx context.Context, afterSeq int64, limit int) ([]OutboxEvent, error)
	LatestOutboxSeq(ctx context.Context) (int64, error)

	// Provisioning (superadmin console).
	CreateClinic(ctx context.Context, name string, windows []models.WindowConfig) (models.Clinic, error)
	ListClinics(ctx context.Context) ([]models.Clinic, error)
	GetClinicWindows(ctx context.Context, clinicID string) ([]models.WindowConfig, error)
	UpdateClinicWindows(ctx context.Context, clinicID string, windows []models.WindowConfig) error
	CreateDoctor(ctx context.Context, doctor models.Doctor) (models.Doctor, error)
	ListDoctors(ctx context.Context, clinicID string) ([]models.Doctor, error)
	UpdateDoctorStatus(ctx context.Context, clinicID, doctorID, status string) error
	CreatePatient(ctx context.Context, patient models.Patient) (models.Patient, error)

	// Operator credentials and sessions.
	CreateOperator(ctx context.Context, input CreateOperatorInput) (string, error)
	AuthenticateOperator(ctx context.Context, username, password string, now time.Time) (OperatorSession, error)
	GetOperatorSession(ctx context.Context, sessionID string) (OperatorSession, error)
}
