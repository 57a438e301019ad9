// Package postgres implements the store against pgx. Token issuance and the
// call/auto-complete step run as serialized transactions per
// (clinic, doctor, date, session) so concurrent front-desk operators cannot
// duplicate a token number or put two patients in consultation.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/gautham2106/curaflow-hospital-management-sub000/internal/models"
	"github.com/gautham2106/curaflow-hospital-management-sub000/internal/queue"
	"github.com/gautham2106/curaflow-hospital-management-sub000/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const conflictRetries = 3

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) IssueToken(ctx context.Context, input store.IssueTokenInput) (models.Visit, *models.QueueEntry, error) {
	var visit models.Visit
	var entry *models.QueueEntry
	err := s.withConflictRetry(ctx, func() error {
		var err error
		visit, entry, err = s.issueToken(ctx, input)
		return err
	})
	return visit, entry, err
}

func (s *Store) issueToken(ctx context.Context, input store.IssueTokenInput) (models.Visit, *models.QueueEntry, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Visit{}, nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	existing, found, err := findVisitByRequestID(ctx, tx, input.ClinicID, input.RequestID)
	if err != nil {
		return models.Visit{}, nil, err
	}
	if found {
		var existingEntry *models.QueueEntry
		existingEntry, _, err = findEntryByVisitID(ctx, tx, existing.ClinicID, existing.VisitID)
		if err != nil {
			return models.Visit{}, nil, err
		}
		if err = tx.Commit(ctx); err != nil {
			return models.Visit{}, nil, err
		}
		return existing, existingEntry, nil
	}

	doctor, err := lockDoctor(ctx, tx, input.ClinicID, input.DoctorID)
	if err != nil {
		return models.Visit{}, nil, err
	}
	if doctor.Status != models.DoctorAvailable {
		return models.Visit{}, nil, store.ErrDoctorUnavailable
	}
	if err = ensurePatientExists(ctx, tx, input.ClinicID, input.PatientID); err != nil {
		return models.Visit{}, nil, err
	}

	seq, err := nextTokenNumber(ctx, tx, input)
	if err != nil {
		return models.Visit{}, nil, err
	}
	if limit := doctor.TokenLimits[input.Session]; limit > 0 && seq > limit {
		// Rolling back also reverts the sequence bump, so the cap does
		// not leave gaps.
		err = &models.ValidationError{Field: "session", Message: "token limit reached for this session"}
		return models.Visit{}, nil, err
	}

	now := input.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	today := input.VisitDate == now.Format(models.DateFormat)

	status := models.StatusScheduled
	if today {
		status = models.StatusWaiting
	}

	visit := models.Visit{
		VisitID:     uuid.NewString(),
		ClinicID:    input.ClinicID,
		DoctorID:    input.DoctorID,
		PatientID:   input.PatientID,
		TokenNumber: seq,
		VisitDate:   input.VisitDate,
		Session:     input.Session,
		Status:      status,
		Fee:         doctor.Fee,
		CheckInTime: now,
		RequestID:   input.RequestID,
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO visits (
			visit_id, request_id, clinic_id, doctor_id, patient_id, token_number,
			visit_date, session, status, fee, check_in_time
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, visit.VisitID, visit.RequestID, visit.ClinicID, visit.DoctorID, visit.PatientID,
		visit.TokenNumber, visit.VisitDate, visit.Session, visit.Status, visit.Fee, visit.CheckInTime)
	if err != nil {
		return models.Visit{}, nil, err
	}

	var entry *models.QueueEntry
	if today {
		created := models.QueueEntry{
			EntryID:     uuid.NewString(),
			VisitID:     visit.VisitID,
			ClinicID:    visit.ClinicID,
			DoctorID:    visit.DoctorID,
			Session:     visit.Session,
			VisitDate:   visit.VisitDate,
			TokenNumber: visit.TokenNumber,
			PatientID:   visit.PatientID,
			Status:      models.StatusWaiting,
			CheckInTime: now,
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO queue_entries (
				entry_id, visit_id, clinic_id, doctor_id, session, visit_date,
				token_number, patient_id, status, check_in_time
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		`, created.EntryID, created.VisitID, created.ClinicID, created.DoctorID,
			created.Session, created.VisitDate, created.TokenNumber, created.PatientID,
			created.Status, created.CheckInTime)
		if err != nil {
			return models.Visit{}, nil, err
		}
		entry = &created
	}

	if err = insertOutboxEvent(ctx, tx, "visit.issued", visit.ClinicID, visit.DoctorID, visit); err != nil {
		return models.Visit{}, nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Visit{}, nil, err
	}
	return visit, entry, nil
}

func (s *Store) CallPatient(ctx context.Context, input store.ActionInput) (models.QueueEntry, error) {
	var entry models.QueueEntry
	err := s.withConflictRetry(ctx, func() error {
		var err error
		entry, err = s.callPatient(ctx, input)
		return err
	})
	return entry, err
}

func (s *Store) callPatient(ctx context.Context, input store.ActionInput) (models.QueueEntry, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.QueueEntry{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	existing, found, err := findActionRequest(ctx, tx, queue.ActionCall, input.RequestID)
	if err != nil {
		return models.QueueEntry{}, err
	}
	if found {
		if err = tx.Commit(ctx); err != nil {
			return models.QueueEntry{}, err
		}
		return existing, nil
	}

	target, err := lockEntry(ctx, tx, input.ClinicID, input.EntryID)
	if err != nil {
		return models.QueueEntry{}, err
	}

	// Serialize the doctor+session group before deciding who is at the
	// head of the line.
	if err = lockEntryGroup(ctx, tx, target); err != nil {
		return models.QueueEntry{}, err
	}
	entries, err := selectEntries(ctx, tx, target.ClinicID, target.DoctorID, target.Session, target.VisitDate)
	if err != nil {
		return models.QueueEntry{}, err
	}

	if err = queue.CheckTransition(queue.ActionCall, target.Status); err != nil {
		return models.QueueEntry{}, err
	}

	outOfTurn := queue.IsOutOfTurn(entries, target.EntryID)
	if outOfTurn {
		if input.Reason == "" {
			err = &models.ValidationError{Field: "reason", Message: "out-of-turn call requires a reason"}
			return models.QueueEntry{}, err
		}
		if !models.IsOutOfTurnReason(input.Reason) {
			err = &models.ValidationError{Field: "reason", Message: "unknown out-of-turn reason"}
			return models.QueueEntry{}, err
		}
	}

	now := input.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	// Calling the next patient finishes the current one.
	view := queue.BuildView(entries)
	if view.NowServing != nil && view.NowServing.EntryID != target.EntryID {
		if err = finishEntry(ctx, tx, *view.NowServing, now); err != nil {
			return models.QueueEntry{}, err
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE queue_entries
		SET status = $1, called_time = $2
		WHERE entry_id = $3
	`, models.StatusInConsultation, now, target.EntryID)
	if err != nil {
		return models.QueueEntry{}, err
	}
	_, err = tx.Exec(ctx, `
		UPDATE visits
		SET status = $1,
			called_time = $2,
			was_out_of_turn = was_out_of_turn OR $3,
			out_of_turn_reason = CASE WHEN $3 THEN $4 ELSE out_of_turn_reason END
		WHERE visit_id = $5
	`, models.StatusInConsultation, now, outOfTurn, input.Reason, target.VisitID)
	if err != nil {
		return models.QueueEntry{}, err
	}

	target.Status = models.StatusInConsultation
	target.CalledTime = &now

	if err = insertActionRequest(ctx, tx, queue.ActionCall, input.RequestID, target.ClinicID, target.EntryID); err != nil {
		return models.QueueEntry{}, err
	}
	if err = insertOutboxEvent(ctx, tx, "visit.called", target.ClinicID, target.DoctorID, target); err != nil {
		return models.QueueEntry{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.QueueEntry{}, err
	}
	return target, nil
}

func (s *Store) SkipPatient(ctx context.Context, input store.ActionInput) (models.QueueEntry, error) {
	return s.applyAction(ctx, input, queue.ActionSkip, "visit.skipped")
}

func (s *Store) RejoinPatient(ctx context.Context, input store.ActionInput) (models.QueueEntry, error) {
	return s.applyAction(ctx, input, queue.ActionRejoin, "visit.rejoined")
}

func (s *Store) CompletePatient(ctx context.Context, input store.ActionInput) (models.QueueEntry, error) {
	return s.applyAction(ctx, input, queue.ActionComplete, "visit.completed")
}

func (s *Store) CancelPatient(ctx context.Context, input store.ActionInput) (models.QueueEntry, error) {
	return s.applyAction(ctx, input, queue.ActionCancel, "visit.cancelled")
}

func (s *Store) applyAction(ctx context.Context, input store.ActionInput, action, eventType string) (models.QueueEntry, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.QueueEntry{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	existing, found, err := findActionRequest(ctx, tx, action, input.RequestID)
	if err != nil {
		return models.QueueEntry{}, err
	}
	if found {
		if err = tx.Commit(ctx); err != nil {
			return models.QueueEntry{}, err
		}
		return existing, nil
	}

	entry, err := lockEntry(ctx, tx, input.ClinicID, input.EntryID)
	if err != nil {
		return models.QueueEntry{}, err
	}
	if err = queue.CheckTransition(action, entry.Status); err != nil {
		return models.QueueEntry{}, err
	}

	now := input.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	nextStatus := queue.ResultStatus[action]

	switch action {
	case queue.ActionSkip:
		reason := input.Reason
		if reason == "" {
			reason = models.DefaultSkipReason
		}
		_, err = tx.Exec(ctx, `
			UPDATE queue_entries SET status = $1 WHERE entry_id = $2
		`, nextStatus, entry.EntryID)
		if err == nil {
			_, err = tx.Exec(ctx, `
				UPDATE visits
				SET status = $1, was_skipped = TRUE, skip_reason = $2
				WHERE visit_id = $3
			`, nextStatus, reason, entry.VisitID)
		}
	case queue.ActionRejoin:
		// Fresh check-in; ordering by token number puts the entry back
		// at its original position. A skip out of consultation leaves a
		// called_time behind, so clear it for the re-waiting entry.
		entry.CheckInTime = now
		entry.CalledTime = nil
		_, err = tx.Exec(ctx, `
			UPDATE queue_entries SET status = $1, check_in_time = $2, called_time = NULL WHERE entry_id = $3
		`, nextStatus, now, entry.EntryID)
		if err == nil {
			_, err = tx.Exec(ctx, `
				UPDATE visits SET status = $1 WHERE visit_id = $2
			`, nextStatus, entry.VisitID)
		}
	case queue.ActionComplete:
		_, err = tx.Exec(ctx, `
			UPDATE queue_entries SET status = $1 WHERE entry_id = $2
		`, nextStatus, entry.EntryID)
		if err == nil {
			_, err = tx.Exec(ctx, `
				UPDATE visits SET status = $1, completed_time = $2 WHERE visit_id = $3
			`, nextStatus, now, entry.VisitID)
		}
	case queue.ActionCancel:
		_, err = tx.Exec(ctx, `
			UPDATE queue_entries SET status = $1 WHERE entry_id = $2
		`, nextStatus, entry.EntryID)
		if err == nil {
			_, err = tx.Exec(ctx, `
				UPDATE visits SET status = $1 WHERE visit_id = $2
			`, nextStatus, entry.VisitID)
		}
	default:
		err = &models.InvalidTransitionError{Action: action, From: entry.Status}
	}
	if err != nil {
		return models.QueueEntry{}, err
	}

	entry.Status = nextStatus

	if err = insertActionRequest(ctx, tx, action, input.RequestID, entry.ClinicID, entry.EntryID); err != nil {
		return models.QueueEntry{}, err
	}
	if err = insertOutboxEvent(ctx, tx, eventType, entry.ClinicID, entry.DoctorID, entry); err != nil {
		return models.QueueEntry{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.QueueEntry{}, err
	}
	return entry, nil
}

func (s *Store) EndSession(ctx context.Context, input store.EndSessionInput) (models.SessionStats, []models.QueueEntry, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.SessionStats{}, nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// Lock the day's visits for the tuple; an empty set is a valid close.
	_, err = tx.Exec(ctx, `
		SELECT 1 FROM visits
		WHERE clinic_id = $1 AND doctor_id = $2 AND visit_date = $3 AND session = $4
		FOR UPDATE
	`, input.ClinicID, input.DoctorID, input.VisitDate, input.Session)
	if err != nil {
		return models.SessionStats{}, nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE queue_entries
		SET status = $1
		WHERE clinic_id = $2 AND doctor_id = $3 AND visit_date = $4 AND session = $5
			AND status IN ($6, $7)
	`, models.StatusNoShow, input.ClinicID, input.DoctorID, input.VisitDate, input.Session,
		models.StatusWaiting, models.StatusSkipped)
	if err != nil {
		return models.SessionStats{}, nil, err
	}
	_, err = tx.Exec(ctx, `
		UPDATE visits
		SET status = $1
		WHERE clinic_id = $2 AND doctor_id = $3 AND visit_date = $4 AND session = $5
			AND status IN ($6, $7)
	`, models.StatusNoShow, input.ClinicID, input.DoctorID, input.VisitDate, input.Session,
		models.StatusWaiting, models.StatusSkipped)
	if err != nil {
		return models.SessionStats{}, nil, err
	}

	visits, err := selectVisits(ctx, tx, input.ClinicID, input.DoctorID, input.Session, input.VisitDate)
	if err != nil {
		return models.SessionStats{}, nil, err
	}
	stats := queue.AggregateStats(visits)
	stats.ClinicID = input.ClinicID
	stats.DoctorID = input.DoctorID
	stats.VisitDate = input.VisitDate
	stats.Session = input.Session

	now := input.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO session_reports (
			clinic_id, doctor_id, visit_date, session, total_patients,
			completed_patients, no_show_patients, skipped_patients,
			cancelled_patients, avg_waiting_minutes, avg_consultation_minutes,
			total_revenue, closed_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (clinic_id, doctor_id, visit_date, session) DO UPDATE SET
			total_patients = EXCLUDED.total_patients,
			completed_patients = EXCLUDED.completed_patients,
			no_show_patients = EXCLUDED.no_show_patients,
			skipped_patients = EXCLUDED.skipped_patients,
			cancelled_patients = EXCLUDED.cancelled_patients,
			avg_waiting_minutes = EXCLUDED.avg_waiting_minutes,
			avg_consultation_minutes = EXCLUDED.avg_consultation_minutes,
			total_revenue = EXCLUDED.total_revenue,
			closed_at = EXCLUDED.closed_at
	`, stats.ClinicID, stats.DoctorID, stats.VisitDate, stats.Session, stats.TotalPatients,
		stats.CompletedPatients, stats.NoShowPatients, stats.SkippedPatients,
		stats.CancelledPatients, stats.AvgWaitingMinutes, stats.AvgConsultationMinutes,
		stats.TotalRevenue, now)
	if err != nil {
		return models.SessionStats{}, nil, err
	}

	if err = insertOutboxEvent(ctx, tx, "session.closed", input.ClinicID, input.DoctorID, stats); err != nil {
		return models.SessionStats{}, nil, err
	}

	snapshot, err := selectEntries(ctx, tx, input.ClinicID, input.DoctorID, input.Session, input.VisitDate)
	if err != nil {
		return models.SessionStats{}, nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.SessionStats{}, nil, err
	}
	return stats, snapshot, nil
}

func (s *Store) ListQueueEntries(ctx context.Context, clinicID, doctorID, sessionName, visitDate string) ([]models.QueueEntry, error) {
	query := `
		SELECT e.entry_id, e.visit_id, e.clinic_id, e.doctor_id, e.session, e.visit_date::text,
			e.token_number, e.patient_id, COALESCE(p.name, ''), e.status, COALESCE(e.priority, ''),
			e.check_in_time, e.called_time
		FROM queue_entries e
		LEFT JOIN patients p ON p.patient_id = e.patient_id
		WHERE e.clinic_id = $1 AND e.doctor_id = $2 AND e.visit_date = $3
	`
	args := []interface{}{clinicID, doctorID, visitDate}
	if sessionName != "" {
		query += " AND e.session = $4"
		args = append(args, sessionName)
	}
	query += " ORDER BY e.token_number ASC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (s *Store) GetVisit(ctx context.Context, clinicID, visitID string) (models.Visit, error) {
	row := s.pool.QueryRow(ctx, visitColumns+`
		FROM visits
		WHERE clinic_id = $1 AND visit_id = $2
	`, clinicID, visitID)
	visit, err := scanVisit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Visit{}, store.ErrVisitNotFound
		}
		return models.Visit{}, err
	}
	return visit, nil
}

func (s *Store) SessionReport(ctx context.Context, clinicID, doctorID, visitDate, sessionName string) (models.SessionStats, error) {
	rows, err := s.pool.Query(ctx, visitColumns+`
		FROM visits
		WHERE clinic_id = $1 AND doctor_id = $2 AND visit_date = $3 AND session = $4
		ORDER BY token_number ASC
	`, clinicID, doctorID, visitDate, sessionName)
	if err != nil {
		return models.SessionStats{}, err
	}
	defer rows.Close()

	var visits []models.Visit
	for rows.Next() {
		visit, err := scanVisit(rows)
		if err != nil {
			return models.SessionStats{}, err
		}
		visits = append(visits, visit)
	}
	if err := rows.Err(); err != nil {
		return models.SessionStats{}, err
	}

	stats := queue.AggregateStats(visits)
	stats.ClinicID = clinicID
	stats.DoctorID = doctorID
	stats.VisitDate = visitDate
	stats.Session = sessionName
	return stats, nil
}

func (s *Store) ListOpenSessions(ctx context.Context, visitDate string) ([]store.OpenSession, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT clinic_id, doctor_id, session
		FROM queue_entries
		WHERE visit_date = $1 AND status IN ($2, $3)
		ORDER BY clinic_id, doctor_id, session
	`, visitDate, models.StatusWaiting, models.StatusSkipped)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var open []store.OpenSession
	for rows.Next() {
		var item store.OpenSession
		if err := rows.Scan(&item.ClinicID, &item.DoctorID, &item.Session); err != nil {
			return nil, err
		}
		open = append(open, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return open, nil
}

// ListOutboxEvents pages by the monotonic seq column so two events inserted
// in the same microsecond cannot straddle a batch boundary and get lost.
func (s *Store) ListOutboxEvents(ctx context.Context, afterSeq int64, limit int) ([]store.OutboxEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT seq, event_id, clinic_id, doctor_id, type, payload_json, created_at
		FROM outbox_events
		WHERE seq > $1
		ORDER BY seq ASC
		LIMIT $2
	`, afterSeq, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []store.OutboxEvent
	for rows.Next() {
		var event store.OutboxEvent
		if err := rows.Scan(&event.Seq, &event.EventID, &event.ClinicID, &event.DoctorID, &event.Type, &event.Payload, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *Store) LatestOutboxSeq(ctx context.Context) (int64, error) {
	var seq int64
	row := s.pool.QueryRow(ctx, `SELECT COALESCE(MAX(seq), 0) FROM outbox_events`)
	if err := row.Scan(&seq); err != nil {
		return 0, err
	}
	return seq, nil
}

func (s *Store) withConflictRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < conflictRetries; attempt++ {
		err = fn()
		if err == nil || !isRetryable(err) {
			return err
		}
	}
	if isRetryable(err) {
		return store.ErrConcurrencyConflict
	}
	return err
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	// serialization_failure, deadlock_detected, unique_violation
	return pgErr.Code == "40001" || pgErr.Code == "40P01" || pgErr.Code == "23505"
}

func nextTokenNumber(ctx context.Context, tx pgx.Tx, input store.IssueTokenInput) (int, error) {
	var next int
	row := tx.QueryRow(ctx, `
		INSERT INTO token_sequences (clinic_id, doctor_id, visit_date, session, next_number)
		VALUES ($1, $2, $3, $4, 1)
		ON CONFLICT (clinic_id, doctor_id, visit_date, session)
		DO UPDATE SET next_number = token_sequences.next_number + 1
		RETURNING next_number
	`, input.ClinicID, input.DoctorID, input.VisitDate, input.Session)
	if err := row.Scan(&next); err != nil {
		return 0, err
	}
	return next, nil
}

type doctorRow struct {
	Status      string
	Fee         int64
	TokenLimits map[string]int
}

func lockDoctor(ctx context.Context, tx pgx.Tx, clinicID, doctorID string) (doctorRow, error) {
	var doctor doctorRow
	var limitsJSON []byte
	row := tx.QueryRow(ctx, `
		SELECT status, fee, COALESCE(token_limits_json, '{}'::jsonb)
		FROM doctors
		WHERE clinic_id = $1 AND doctor_id = $2
		FOR SHARE
	`, clinicID, doctorID)
	if err := row.Scan(&doctor.Status, &doctor.Fee, &limitsJSON); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return doctorRow{}, store.ErrDoctorNotFound
		}
		return doctorRow{}, err
	}
	if err := json.Unmarshal(limitsJSON, &doctor.TokenLimits); err != nil {
		return doctorRow{}, err
	}
	return doctor, nil
}

func ensurePatientExists(ctx context.Context, tx pgx.Tx, clinicID, patientID string) error {
	var id string
	row := tx.QueryRow(ctx, `
		SELECT patient_id FROM patients WHERE clinic_id = $1 AND patient_id = $2
	`, clinicID, patientID)
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrPatientNotFound
		}
		return err
	}
	return nil
}

func findVisitByRequestID(ctx context.Context, tx pgx.Tx, clinicID, requestID string) (models.Visit, bool, error) {
	row := tx.QueryRow(ctx, visitColumns+`
		FROM visits
		WHERE clinic_id = $1 AND request_id = $2
	`, clinicID, requestID)
	visit, err := scanVisit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Visit{}, false, nil
		}
		return models.Visit{}, false, err
	}
	return visit, true, nil
}

func findEntryByVisitID(ctx context.Context, tx pgx.Tx, clinicID, visitID string) (*models.QueueEntry, bool, error) {
	row := tx.QueryRow(ctx, entryColumns+`
		FROM queue_entries e
		LEFT JOIN patients p ON p.patient_id = e.patient_id
		WHERE e.clinic_id = $1 AND e.visit_id = $2
	`, clinicID, visitID)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &entry, true, nil
}

func findActionRequest(ctx context.Context, tx pgx.Tx, action, requestID string) (models.QueueEntry, bool, error) {
	var clinicID, entryID string
	row := tx.QueryRow(ctx, `
		SELECT clinic_id, entry_id FROM action_requests
		WHERE action = $1 AND request_id = $2
	`, action, requestID)
	if err := row.Scan(&clinicID, &entryID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.QueueEntry{}, false, nil
		}
		return models.QueueEntry{}, false, err
	}
	entryRow := tx.QueryRow(ctx, entryColumns+`
		FROM queue_entries e
		LEFT JOIN patients p ON p.patient_id = e.patient_id
		WHERE e.clinic_id = $1 AND e.entry_id = $2
	`, clinicID, entryID)
	entry, err := scanEntry(entryRow)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.QueueEntry{}, false, store.ErrEntryNotFound
		}
		return models.QueueEntry{}, false, err
	}
	return entry, true, nil
}

func insertActionRequest(ctx context.Context, tx pgx.Tx, action, requestID, clinicID, entryID string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO action_requests (action, request_id, clinic_id, entry_id)
		VALUES ($1, $2, $3, $4)
	`, action, requestID, clinicID, entryID)
	return err
}

func lockEntry(ctx context.Context, tx pgx.Tx, clinicID, entryID string) (models.QueueEntry, error) {
	row := tx.QueryRow(ctx, entryColumnsBare+`
		FROM queue_entries e
		WHERE e.clinic_id = $1 AND e.entry_id = $2
		FOR UPDATE
	`, clinicID, entryID)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.QueueEntry{}, store.ErrEntryNotFound
		}
		return models.QueueEntry{}, err
	}
	return entry, nil
}

func lockEntryGroup(ctx context.Context, tx pgx.Tx, entry models.QueueEntry) error {
	rows, err := tx.Query(ctx, `
		SELECT entry_id FROM queue_entries
		WHERE clinic_id = $1 AND doctor_id = $2 AND session = $3 AND visit_date = $4
		ORDER BY entry_id
		FOR UPDATE
	`, entry.ClinicID, entry.DoctorID, entry.Session, entry.VisitDate)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
	}
	return rows.Err()
}

func finishEntry(ctx context.Context, tx pgx.Tx, entry models.QueueEntry, now time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE queue_entries SET status = $1 WHERE entry_id = $2
	`, models.StatusCompleted, entry.EntryID)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		UPDATE visits SET status = $1, completed_time = $2 WHERE visit_id = $3
	`, models.StatusCompleted, now, entry.VisitID)
	if err != nil {
		return err
	}
	entry.Status = models.StatusCompleted
	return insertOutboxEvent(ctx, tx, "visit.completed", entry.ClinicID, entry.DoctorID, entry)
}

func selectEntries(ctx context.Context, tx pgx.Tx, clinicID, doctorID, sessionName, visitDate string) ([]models.QueueEntry, error) {
	rows, err := tx.Query(ctx, entryColumns+`
		FROM queue_entries e
		LEFT JOIN patients p ON p.patient_id = e.patient_id
		WHERE e.clinic_id = $1 AND e.doctor_id = $2 AND e.session = $3 AND e.visit_date = $4
		ORDER BY e.token_number ASC
	`, clinicID, doctorID, sessionName, visitDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func selectVisits(ctx context.Context, tx pgx.Tx, clinicID, doctorID, sessionName, visitDate string) ([]models.Visit, error) {
	rows, err := tx.Query(ctx, visitColumns+`
		FROM visits
		WHERE clinic_id = $1 AND doctor_id = $2 AND session = $3 AND visit_date = $4
		ORDER BY token_number ASC
	`, clinicID, doctorID, sessionName, visitDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visits []models.Visit
	for rows.Next() {
		visit, err := scanVisit(rows)
		if err != nil {
			return nil, err
		}
		visits = append(visits, visit)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return visits, nil
}

const visitColumns = `
	SELECT visit_id, COALESCE(request_id, ''), clinic_id, doctor_id, patient_id,
		token_number, visit_date::text, session, status, fee, check_in_time,
		called_time, completed_time, was_skipped, COALESCE(skip_reason, ''),
		was_out_of_turn, COALESCE(out_of_turn_reason, '')
`

func scanVisit(row pgx.Row) (models.Visit, error) {
	var visit models.Visit
	var calledNull, completedNull sql.NullTime
	err := row.Scan(&visit.VisitID, &visit.RequestID, &visit.ClinicID, &visit.DoctorID,
		&visit.PatientID, &visit.TokenNumber, &visit.VisitDate, &visit.Session,
		&visit.Status, &visit.Fee, &visit.CheckInTime, &calledNull, &completedNull,
		&visit.WasSkipped, &visit.SkipReason, &visit.WasOutOfTurn, &visit.OutOfTurnReason)
	if err != nil {
		return models.Visit{}, err
	}
	visit.CalledTime = nullTimePtr(calledNull)
	visit.CompletedTime = nullTimePtr(completedNull)
	return visit, nil
}

const entryColumns = `
	SELECT e.entry_id, e.visit_id, e.clinic_id, e.doctor_id, e.session, e.visit_date::text,
		e.token_number, e.patient_id, COALESCE(p.name, ''), e.status,
		COALESCE(e.priority, ''), e.check_in_time, e.called_time
`

const entryColumnsBare = `
	SELECT e.entry_id, e.visit_id, e.clinic_id, e.doctor_id, e.session, e.visit_date::text,
		e.token_number, e.patient_id, '', e.status,
		COALESCE(e.priority, ''), e.check_in_time, e.called_time
`

func scanEntry(row pgx.Row) (models.QueueEntry, error) {
	var entry models.QueueEntry
	var calledNull sql.NullTime
	err := row.Scan(&entry.EntryID, &entry.VisitID, &entry.ClinicID, &entry.DoctorID,
		&entry.Session, &entry.VisitDate, &entry.TokenNumber, &entry.PatientID,
		&entry.PatientName, &entry.Status, &entry.Priority, &entry.CheckInTime, &calledNull)
	if err != nil {
		return models.QueueEntry{}, err
	}
	entry.CalledTime = nullTimePtr(calledNull)
	return entry, nil
}

func scanEntries(rows pgx.Rows) ([]models.QueueEntry, error) {
	var entries []models.QueueEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func insertOutboxEvent(ctx context.Context, tx pgx.Tx, eventType, clinicID, doctorID string, payload interface{}) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO outbox_events (event_id, clinic_id, doctor_id, type, payload_json, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.NewString(), clinicID, doctorID, eventType, payloadJSON, time.Now().UTC())
	return err
}

func nullTimePtr(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	t := value.Time
	return &t
}
