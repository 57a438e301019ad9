package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gautham2106/curaflow-hospital-management-sub000/internal/models"
	"github.com/gautham2106/curaflow-hospital-management-sub000/internal/session"
	"github.com/gautham2106/curaflow-hospital-management-sub000/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

const operatorSessionTTL = 12 * time.Hour

func (s *Store) CreateClinic(ctx context.Context, name string, windows []models.WindowConfig) (models.Clinic, error) {
	if name == "" {
		return models.Clinic{}, &models.ValidationError{Field: "name", Message: "clinic name is required"}
	}
	if _, err := session.Parse(windows); err != nil {
		return models.Clinic{}, err
	}
	windowsJSON, err := json.Marshal(windows)
	if err != nil {
		return models.Clinic{}, err
	}

	clinic := models.Clinic{
		ClinicID: uuid.NewString(),
		Name:     name,
		Windows:  windows,
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO clinics (clinic_id, name, windows_json) VALUES ($1, $2, $3)
	`, clinic.ClinicID, clinic.Name, windowsJSON)
	if err != nil {
		return models.Clinic{}, err
	}
	return clinic, nil
}

func (s *Store) ListClinics(ctx context.Context) ([]models.Clinic, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT clinic_id, name, windows_json FROM clinics ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clinics []models.Clinic
	for rows.Next() {
		var clinic models.Clinic
		var windowsJSON []byte
		if err := rows.Scan(&clinic.ClinicID, &clinic.Name, &windowsJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(windowsJSON, &clinic.Windows); err != nil {
			return nil, err
		}
		clinics = append(clinics, clinic)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return clinics, nil
}

func (s *Store) GetClinicWindows(ctx context.Context, clinicID string) ([]models.WindowConfig, error) {
	var windowsJSON []byte
	row := s.pool.QueryRow(ctx, `
		SELECT windows_json FROM clinics WHERE clinic_id = $1
	`, clinicID)
	if err := row.Scan(&windowsJSON); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrClinicNotFound
		}
		return nil, err
	}
	var windows []models.WindowConfig
	if err := json.Unmarshal(windowsJSON, &windows); err != nil {
		return nil, err
	}
	return windows, nil
}

func (s *Store) UpdateClinicWindows(ctx context.Context, clinicID string, windows []models.WindowConfig) error {
	if _, err := session.Parse(windows); err != nil {
		return err
	}
	windowsJSON, err := json.Marshal(windows)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE clinics SET windows_json = $1 WHERE clinic_id = $2
	`, windowsJSON, clinicID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrClinicNotFound
	}
	return nil
}

func (s *Store) CreateDoctor(ctx context.Context, doctor models.Doctor) (models.Doctor, error) {
	if doctor.Name == "" {
		return models.Doctor{}, &models.ValidationError{Field: "name", Message: "doctor name is required"}
	}
	if doctor.Status == "" {
		doctor.Status = models.DoctorAvailable
	}
	if doctor.Status != models.DoctorAvailable && doctor.Status != models.DoctorOnLeave {
		return models.Doctor{}, &models.ValidationError{Field: "status", Message: "unknown doctor status"}
	}
	limitsJSON, err := json.Marshal(doctor.TokenLimits)
	if err != nil {
		return models.Doctor{}, err
	}

	doctor.DoctorID = uuid.NewString()
	_, err = s.pool.Exec(ctx, `
		INSERT INTO doctors (doctor_id, clinic_id, name, specialty, status, token_limits_json, fee)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, doctor.DoctorID, doctor.ClinicID, doctor.Name, doctor.Specialty, doctor.Status, limitsJSON, doctor.Fee)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Doctor{}, store.ErrClinicNotFound
		}
		return models.Doctor{}, err
	}
	return doctor, nil
}

func (s *Store) ListDoctors(ctx context.Context, clinicID string) ([]models.Doctor, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT doctor_id, clinic_id, name, COALESCE(specialty, ''), status,
			COALESCE(token_limits_json, '{}'::jsonb), fee
		FROM doctors
		WHERE clinic_id = $1
		ORDER BY name
	`, clinicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var doctors []models.Doctor
	for rows.Next() {
		var doctor models.Doctor
		var limitsJSON []byte
		if err := rows.Scan(&doctor.DoctorID, &doctor.ClinicID, &doctor.Name,
			&doctor.Specialty, &doctor.Status, &limitsJSON, &doctor.Fee); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(limitsJSON, &doctor.TokenLimits); err != nil {
			return nil, err
		}
		doctors = append(doctors, doctor)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return doctors, nil
}

func (s *Store) UpdateDoctorStatus(ctx context.Context, clinicID, doctorID, status string) error {
	if status != models.DoctorAvailable && status != models.DoctorOnLeave {
		return &models.ValidationError{Field: "status", Message: "unknown doctor status"}
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE doctors SET status = $1 WHERE clinic_id = $2 AND doctor_id = $3
	`, status, clinicID, doctorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrDoctorNotFound
	}
	return nil
}

func (s *Store) CreatePatient(ctx context.Context, patient models.Patient) (models.Patient, error) {
	if patient.Name == "" {
		return models.Patient{}, &models.ValidationError{Field: "name", Message: "patient name is required"}
	}
	patient.PatientID = uuid.NewString()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO patients (patient_id, clinic_id, name, phone)
		VALUES ($1, $2, $3, $4)
	`, patient.PatientID, patient.ClinicID, patient.Name, patient.Phone)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Patient{}, store.ErrClinicNotFound
		}
		return models.Patient{}, err
	}
	return patient, nil
}

func (s *Store) CreateOperator(ctx context.Context, input store.CreateOperatorInput) (string, error) {
	if input.Username == "" {
		return "", &models.ValidationError{Field: "username", Message: "username is required"}
	}
	if len(input.Password) < 8 {
		return "", &models.ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	if input.Role != store.RoleFrontDesk && input.Role != store.RoleSuperadmin {
		return "", &models.ValidationError{Field: "role", Message: "unknown role"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	operatorID := uuid.NewString()
	_, err = s.pool.Exec(ctx, `
		INSERT INTO operators (operator_id, clinic_id, username, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
	`, operatorID, nullIfEmpty(input.ClinicID), input.Username, hash, input.Role)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return "", store.ErrDuplicateOperator
		}
		if isForeignKeyViolation(err) {
			return "", store.ErrClinicNotFound
		}
		return "", err
	}
	return operatorID, nil
}

func (s *Store) AuthenticateOperator(ctx context.Context, username, password string, now time.Time) (store.OperatorSession, error) {
	var operatorID, role string
	var clinicID *string
	var hash []byte
	row := s.pool.QueryRow(ctx, `
		SELECT operator_id, clinic_id, password_hash, role
		FROM operators
		WHERE username = $1
	`, username)
	if err := row.Scan(&operatorID, &clinicID, &hash, &role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.OperatorSession{}, store.ErrInvalidCredentials
		}
		return store.OperatorSession{}, err
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return store.OperatorSession{}, store.ErrInvalidCredentials
	}

	if now.IsZero() {
		now = time.Now().UTC()
	}
	operatorSession := store.OperatorSession{
		SessionID:  uuid.NewString(),
		OperatorID: operatorID,
		Role:       role,
		ExpiresAt:  now.Add(operatorSessionTTL),
	}
	if clinicID != nil {
		operatorSession.ClinicID = *clinicID
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO operator_sessions (session_id, operator_id, clinic_id, role, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`, operatorSession.SessionID, operatorID, clinicID, role, operatorSession.ExpiresAt)
	if err != nil {
		return store.OperatorSession{}, err
	}
	return operatorSession, nil
}

func (s *Store) GetOperatorSession(ctx context.Context, sessionID string) (store.OperatorSession, error) {
	var operatorSession store.OperatorSession
	var clinicID *string
	row := s.pool.QueryRow(ctx, `
		SELECT session_id, operator_id, clinic_id, role, expires_at
		FROM operator_sessions
		WHERE session_id = $1
	`, sessionID)
	err := row.Scan(&operatorSession.SessionID, &operatorSession.OperatorID,
		&clinicID, &operatorSession.Role, &operatorSession.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.OperatorSession{}, store.ErrOperatorSessionNotFound
		}
		return store.OperatorSession{}, err
	}
	if clinicID != nil {
		operatorSession.ClinicID = *clinicID
	}
	if time.Now().UTC().After(operatorSession.ExpiresAt) {
		return store.OperatorSession{}, store.ErrOperatorSessionNotFound
	}
	return operatorSession, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func nullIfEmpty(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
