package httpapi

import (
	"encoding/json"
	"errors"
	"expvar"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gautham2106/curaflow-hospital-management-sub000/internal/models"
	"github.com/gautham2106/curaflow-hospital-management-sub000/internal/queue"
	"github.com/gautham2106/curaflow-hospital-management-sub000/internal/session"
	"github.com/gautham2106/curaflow-hospital-management-sub000/internal/store"

	"github.com/google/uuid"
)

type Handler struct {
	store store.Store
	now   func() time.Time
}

func NewHandler(s store.Store) *Handler {
	return &Handler{store: s, now: time.Now}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.Handle("/metrics", expvar.Handler())
	mux.HandleFunc("/api/auth/login", h.handleLogin)
	mux.HandleFunc("/api/visits", h.handleVisits)
	mux.HandleFunc("/api/visits/", h.handleVisitByID)
	mux.HandleFunc("/api/queue", h.handleQueue)
	mux.HandleFunc("/api/queue/", h.handleQueueActions)
	mux.HandleFunc("/api/display", h.handleDisplay)
	mux.HandleFunc("/api/sessions/current", h.handleCurrentSession)
	mux.HandleFunc("/api/sessions/end", h.handleEndSession)
	mux.HandleFunc("/api/sessions/report", h.handleSessionReport)
	mux.HandleFunc("/api/admin/clinics", h.handleClinics)
	mux.HandleFunc("/api/admin/clinics/", h.handleClinicWindows)
	mux.HandleFunc("/api/admin/doctors", h.handleDoctors)
	mux.HandleFunc("/api/admin/doctors/", h.handleDoctorStatus)
	mux.HandleFunc("/api/admin/patients", h.handlePatients)
	mux.HandleFunc("/api/admin/operators", h.handleOperators)
	return mux
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req loginRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, "", http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "username and password are required")
		return
	}
	operatorSession, err := h.store.AuthenticateOperator(r.Context(), req.Username, req.Password, h.now().UTC())
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, "", status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": operatorSession.SessionID,
		"clinic_id":  operatorSession.ClinicID,
		"role":       operatorSession.Role,
		"expires_at": operatorSession.ExpiresAt,
	})
}

type issueTokenRequest struct {
	RequestID string `json:"request_id"`
	ClinicID  string `json:"clinic_id"`
	DoctorID  string `json:"doctor_id"`
	PatientID string `json:"patient_id"`
	VisitDate string `json:"visit_date"`
	Session   string `json:"session"`
}

type issueTokenResponse struct {
	Visit models.Visit       `json:"visit"`
	Entry *models.QueueEntry `json:"entry,omitempty"`
}

func (h *Handler) handleVisits(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req issueTokenRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, req.RequestID, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}

	req.RequestID = strings.TrimSpace(req.RequestID)
	req.ClinicID = strings.TrimSpace(req.ClinicID)
	req.DoctorID = strings.TrimSpace(req.DoctorID)
	req.PatientID = strings.TrimSpace(req.PatientID)
	req.VisitDate = strings.TrimSpace(req.VisitDate)
	req.Session = strings.TrimSpace(req.Session)

	if req.RequestID == "" || req.ClinicID == "" || req.DoctorID == "" || req.PatientID == "" || req.Session == "" {
		writeError(w, req.RequestID, http.StatusBadRequest, "invalid_request", "request_id, clinic_id, doctor_id, patient_id, and session are required")
		return
	}
	if !isValidUUID(req.RequestID) || !isValidUUID(req.ClinicID) || !isValidUUID(req.DoctorID) || !isValidUUID(req.PatientID) {
		writeError(w, req.RequestID, http.StatusBadRequest, "invalid_request", "request_id, clinic_id, doctor_id, and patient_id must be UUIDs")
		return
	}
	if !requireClinic(w, r, req.ClinicID) {
		return
	}

	now := h.now().UTC()
	today := now.Format(models.DateFormat)
	if req.VisitDate == "" {
		req.VisitDate = today
	}
	parsed, err := time.Parse(models.DateFormat, req.VisitDate)
	if err != nil {
		writeError(w, req.RequestID, http.StatusBadRequest, "invalid_request", "visit_date must be YYYY-MM-DD")
		return
	}
	if parsed.Format(models.DateFormat) < today {
		writeError(w, req.RequestID, http.StatusBadRequest, "invalid_request", "visit_date must not be in the past")
		return
	}

	windows, err := h.clinicWindows(r, req.ClinicID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, req.RequestID, status, code, msg)
		return
	}
	if !hasWindow(windows, req.Session) {
		writeError(w, req.RequestID, http.StatusBadRequest, "invalid_request", "unknown session for this clinic")
		return
	}

	visit, entry, err := h.store.IssueToken(r.Context(), store.IssueTokenInput{
		RequestID: req.RequestID,
		ClinicID:  req.ClinicID,
		DoctorID:  req.DoctorID,
		PatientID: req.PatientID,
		VisitDate: req.VisitDate,
		Session:   req.Session,
		Now:       now,
	})
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, req.RequestID, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, issueTokenResponse{Visit: visit, Entry: entry})
}

func (h *Handler) handleVisitByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	visitID := strings.TrimPrefix(r.URL.Path, "/api/visits/")
	if visitID == "" || strings.Contains(visitID, "/") {
		writeError(w, "", http.StatusNotFound, "not_found", "not found")
		return
	}
	clinicID := strings.TrimSpace(r.URL.Query().Get("clinic_id"))
	if clinicID == "" {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "clinic_id is required")
		return
	}
	if !requireClinic(w, r, clinicID) {
		return
	}
	visit, err := h.store.GetVisit(r.Context(), clinicID, visitID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, "", status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, visit)
}

func (h *Handler) handleQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	clinicID, doctorID, sessionName, visitDate, ok := h.queueParams(w, r)
	if !ok {
		return
	}
	if !requireClinic(w, r, clinicID) {
		return
	}
	entries, err := h.store.ListQueueEntries(r.Context(), clinicID, doctorID, sessionName, visitDate)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, "", status, code, msg)
		return
	}
	view := queue.BuildView(entries)
	if len(view.Warnings) > 0 {
		log.Printf("queue integrity clinic=%s doctor=%s warnings=%v", clinicID, doctorID, view.Warnings)
	}
	response := queueResponse{View: view}
	if windows, err := h.clinicWindows(r, clinicID); err == nil {
		response.Session = h.sessionInfo(windows)
	} else {
		log.Printf("queue windows clinic=%s error: %v", clinicID, err)
	}
	writeJSON(w, http.StatusOK, response)
}

type queueResponse struct {
	queue.View
	Session map[string]interface{} `json:"session,omitempty"`
}

func (h *Handler) sessionInfo(windows []models.SessionWindow) map[string]interface{} {
	now := h.now()
	info := map[string]interface{}{}
	if current, ok := session.Current(windows, now); ok {
		info["current"] = current
		if minutes, ok := session.MinutesUntilEnd(windows, now); ok {
			info["minutes_until_end"] = minutes
		}
	}
	if upcoming, ok := session.Next(windows, now); ok {
		info["next"] = upcoming.Window
		info["next_is_tomorrow"] = upcoming.Tomorrow
	}
	if len(info) == 0 {
		return nil
	}
	return info
}

// handleDisplay is the unauthenticated waiting-room board: now serving, next
// up, and the waiting list, nothing else.
func (h *Handler) handleDisplay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	clinicID, doctorID, sessionName, visitDate, ok := h.queueParams(w, r)
	if !ok {
		return
	}
	entries, err := h.store.ListQueueEntries(r.Context(), clinicID, doctorID, sessionName, visitDate)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, "", status, code, msg)
		return
	}
	view := queue.BuildView(entries)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"now_serving": view.NowServing,
		"next":        view.Next,
		"display":     view.Display,
	})
}

func (h *Handler) queueParams(w http.ResponseWriter, r *http.Request) (clinicID, doctorID, sessionName, visitDate string, ok bool) {
	query := r.URL.Query()
	clinicID = strings.TrimSpace(query.Get("clinic_id"))
	doctorID = strings.TrimSpace(query.Get("doctor_id"))
	sessionName = strings.TrimSpace(query.Get("session"))
	visitDate = strings.TrimSpace(query.Get("date"))
	if clinicID == "" || doctorID == "" {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "clinic_id and doctor_id are required")
		return "", "", "", "", false
	}
	if visitDate == "" {
		visitDate = h.now().UTC().Format(models.DateFormat)
	} else if _, err := time.Parse(models.DateFormat, visitDate); err != nil {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "date must be YYYY-MM-DD")
		return "", "", "", "", false
	}
	return clinicID, doctorID, sessionName, visitDate, true
}

type queueActionRequest struct {
	RequestID string `json:"request_id"`
	ClinicID  string `json:"clinic_id"`
	Reason    string `json:"reason,omitempty"`
}

func (h *Handler) handleQueueActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/queue/")
	parts := strings.Split(rest, "/")
	if len(parts) != 3 || parts[1] != "actions" || parts[0] == "" {
		writeError(w, "", http.StatusNotFound, "not_found", "not found")
		return
	}
	entryID, action := parts[0], parts[2]

	var req queueActionRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, req.RequestID, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	req.RequestID = strings.TrimSpace(req.RequestID)
	req.ClinicID = strings.TrimSpace(req.ClinicID)
	req.Reason = strings.TrimSpace(req.Reason)

	if req.RequestID == "" || req.ClinicID == "" {
		writeError(w, req.RequestID, http.StatusBadRequest, "invalid_request", "request_id and clinic_id are required")
		return
	}
	if !isValidUUID(req.RequestID) || !isValidUUID(req.ClinicID) {
		writeError(w, req.RequestID, http.StatusBadRequest, "invalid_request", "request_id and clinic_id must be UUIDs")
		return
	}
	if !requireClinic(w, r, req.ClinicID) {
		return
	}

	input := store.ActionInput{
		RequestID: req.RequestID,
		ClinicID:  req.ClinicID,
		EntryID:   entryID,
		Reason:    req.Reason,
		Now:       h.now().UTC(),
	}

	var entry models.QueueEntry
	var err error
	switch action {
	case queue.ActionCall:
		entry, err = h.store.CallPatient(r.Context(), input)
	case queue.ActionSkip:
		entry, err = h.store.SkipPatient(r.Context(), input)
	case queue.ActionRejoin:
		entry, err = h.store.RejoinPatient(r.Context(), input)
	case queue.ActionComplete:
		entry, err = h.store.CompletePatient(r.Context(), input)
	case queue.ActionCancel:
		entry, err = h.store.CancelPatient(r.Context(), input)
	default:
		writeError(w, req.RequestID, http.StatusNotFound, "not_found", "unknown action")
		return
	}
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, req.RequestID, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) handleCurrentSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	clinicID := strings.TrimSpace(r.URL.Query().Get("clinic_id"))
	if clinicID == "" {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "clinic_id is required")
		return
	}
	windows, err := h.clinicWindows(r, clinicID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, "", status, code, msg)
		return
	}

	info := h.sessionInfo(windows)
	if info == nil {
		info = map[string]interface{}{}
	}
	writeJSON(w, http.StatusOK, info)
}

type endSessionRequest struct {
	ClinicID  string `json:"clinic_id"`
	DoctorID  string `json:"doctor_id"`
	Session   string `json:"session"`
	VisitDate string `json:"visit_date"`
}

type endSessionResponse struct {
	Stats    models.SessionStats `json:"stats"`
	Snapshot []models.QueueEntry `json:"snapshot"`
}

func (h *Handler) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req endSessionRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, "", http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	req.ClinicID = strings.TrimSpace(req.ClinicID)
	req.DoctorID = strings.TrimSpace(req.DoctorID)
	req.Session = strings.TrimSpace(req.Session)
	req.VisitDate = strings.TrimSpace(req.VisitDate)

	if req.ClinicID == "" || req.DoctorID == "" || req.Session == "" {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "clinic_id, doctor_id, and session are required")
		return
	}
	if !requireClinic(w, r, req.ClinicID) {
		return
	}
	now := h.now().UTC()
	if req.VisitDate == "" {
		req.VisitDate = now.Format(models.DateFormat)
	} else if _, err := time.Parse(models.DateFormat, req.VisitDate); err != nil {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "visit_date must be YYYY-MM-DD")
		return
	}

	stats, snapshot, err := h.store.EndSession(r.Context(), store.EndSessionInput{
		ClinicID:  req.ClinicID,
		DoctorID:  req.DoctorID,
		Session:   req.Session,
		VisitDate: req.VisitDate,
		Now:       now,
	})
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, "", status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, endSessionResponse{Stats: stats, Snapshot: snapshot})
}

func (h *Handler) handleSessionReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	query := r.URL.Query()
	clinicID := strings.TrimSpace(query.Get("clinic_id"))
	doctorID := strings.TrimSpace(query.Get("doctor_id"))
	sessionName := strings.TrimSpace(query.Get("session"))
	visitDate := strings.TrimSpace(query.Get("date"))
	if clinicID == "" || doctorID == "" || sessionName == "" {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "clinic_id, doctor_id, and session are required")
		return
	}
	if !requireClinic(w, r, clinicID) {
		return
	}
	if visitDate == "" {
		visitDate = h.now().UTC().Format(models.DateFormat)
	}
	stats, err := h.store.SessionReport(r.Context(), clinicID, doctorID, visitDate, sessionName)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, "", status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) clinicWindows(r *http.Request, clinicID string) ([]models.SessionWindow, error) {
	configs, err := h.store.GetClinicWindows(r.Context(), clinicID)
	if err != nil {
		return nil, err
	}
	return session.Parse(configs)
}

func hasWindow(windows []models.SessionWindow, name string) bool {
	for _, w := range windows {
		if w.Name == name {
			return true
		}
	}
	return false
}

func isValidUUID(value string) bool {
	_, err := uuid.Parse(value)
	return err == nil
}

type errorResponse struct {
	RequestID string        `json:"request_id"`
	Error     responseError `json:"error"`
}

type responseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func mapError(err error) (int, string, string) {
	var validation *models.ValidationError
	if errors.As(err, &validation) {
		return http.StatusBadRequest, "validation_error", validation.Error()
	}
	var transition *models.InvalidTransitionError
	if errors.As(err, &transition) {
		return http.StatusConflict, "invalid_transition", transition.Error()
	}
	switch {
	case errors.Is(err, store.ErrClinicNotFound):
		return http.StatusNotFound, "clinic_not_found", "clinic not found"
	case errors.Is(err, store.ErrDoctorNotFound):
		return http.StatusNotFound, "doctor_not_found", "doctor not found"
	case errors.Is(err, store.ErrPatientNotFound):
		return http.StatusNotFound, "patient_not_found", "patient not found"
	case errors.Is(err, store.ErrVisitNotFound):
		return http.StatusNotFound, "visit_not_found", "visit not found"
	case errors.Is(err, store.ErrEntryNotFound):
		return http.StatusNotFound, "entry_not_found", "queue entry not found"
	case errors.Is(err, store.ErrDoctorUnavailable):
		return http.StatusConflict, "doctor_unavailable", "doctor is not available"
	case errors.Is(err, store.ErrConcurrencyConflict):
		return http.StatusConflict, "concurrency_conflict", "concurrent update, retry the request"
	case errors.Is(err, store.ErrDuplicateOperator):
		return http.StatusConflict, "duplicate_operator", "username already taken"
	case errors.Is(err, store.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials", "invalid username or password"
	case errors.Is(err, store.ErrOperatorSessionNotFound):
		return http.StatusUnauthorized, "unauthorized", "invalid session"
	default:
		return http.StatusInternalServerError, "internal_error", "internal server error"
	}
}

func writeError(w http.ResponseWriter, requestID string, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		RequestID: requestID,
		Error: responseError{
			Code:    code,
			Message: message,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}
