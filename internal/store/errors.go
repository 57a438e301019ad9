package store

import "errors"

var (
	ErrClinicNotFound          = errors.New("clinic not found")
	ErrDoctorNotFound          = errors.New("doctor not found")
	ErrPatientNotFound         = errors.New("patient not found")
	ErrVisitNotFound           = errors.New("visit not found")
	ErrEntryNotFound           = errors.New("queue entry not found")
	ErrDoctorUnavailable       = errors.New("doctor unavailable")
	ErrConcurrencyConflict     = errors.New("concurrent update conflict")
	ErrOperatorSessionNotFound = errors.New("operator session not found")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrDuplicateOperator       = errors.New("operator username already exists")
)
