package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gautham2106/curaflow-hospital-management-sub000/internal/models"
	"github.com/gautham2106/curaflow-hospital-management-sub000/internal/store"
)

// Superadmin console. AuthMiddleware already guarantees the superadmin role
// for everything under /api/admin/.

type createClinicRequest struct {
	Name    string                `json:"name"`
	Windows []models.WindowConfig `json:"windows"`
}

func (h *Handler) handleClinics(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req createClinicRequest
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			writeError(w, "", http.StatusBadRequest, "invalid_json", "invalid JSON payload")
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		clinic, err := h.store.CreateClinic(r.Context(), req.Name, req.Windows)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, "", status, code, msg)
			return
		}
		writeJSON(w, http.StatusCreated, clinic)
	case http.MethodGet:
		clinics, err := h.store.ListClinics(r.Context())
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, "", status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, clinics)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleClinicWindows(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/admin/clinics/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "windows" {
		writeError(w, "", http.StatusNotFound, "not_found", "not found")
		return
	}
	clinicID := parts[0]

	switch r.Method {
	case http.MethodGet:
		windows, err := h.store.GetClinicWindows(r.Context(), clinicID)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, "", status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, windows)
	case http.MethodPut:
		var windows []models.WindowConfig
		if err := json.NewDecoder(r.Body).Decode(&windows); err != nil {
			writeError(w, "", http.StatusBadRequest, "invalid_json", "invalid JSON payload")
			return
		}
		if err := h.store.UpdateClinicWindows(r.Context(), clinicID, windows); err != nil {
			status, code, msg := mapError(err)
			writeError(w, "", status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, windows)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

type createDoctorRequest struct {
	ClinicID    string         `json:"clinic_id"`
	Name        string         `json:"name"`
	Specialty   string         `json:"specialty"`
	Status      string         `json:"status"`
	TokenLimits map[string]int `json:"token_limits"`
	Fee         int64          `json:"fee"`
}

func (h *Handler) handleDoctors(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req createDoctorRequest
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			writeError(w, "", http.StatusBadRequest, "invalid_json", "invalid JSON payload")
			return
		}
		req.ClinicID = strings.TrimSpace(req.ClinicID)
		req.Name = strings.TrimSpace(req.Name)
		if req.ClinicID == "" {
			writeError(w, "", http.StatusBadRequest, "invalid_request", "clinic_id is required")
			return
		}
		doctor, err := h.store.CreateDoctor(r.Context(), models.Doctor{
			ClinicID:    req.ClinicID,
			Name:        req.Name,
			Specialty:   strings.TrimSpace(req.Specialty),
			Status:      strings.TrimSpace(req.Status),
			TokenLimits: req.TokenLimits,
			Fee:         req.Fee,
		})
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, "", status, code, msg)
			return
		}
		writeJSON(w, http.StatusCreated, doctor)
	case http.MethodGet:
		clinicID := strings.TrimSpace(r.URL.Query().Get("clinic_id"))
		if clinicID == "" {
			writeError(w, "", http.StatusBadRequest, "invalid_request", "clinic_id is required")
			return
		}
		doctors, err := h.store.ListDoctors(r.Context(), clinicID)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, "", status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, doctors)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

type doctorStatusRequest struct {
	ClinicID string `json:"clinic_id"`
	Status   string `json:"status"`
}

func (h *Handler) handleDoctorStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/admin/doctors/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "status" {
		writeError(w, "", http.StatusNotFound, "not_found", "not found")
		return
	}
	doctorID := parts[0]

	var req doctorStatusRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, "", http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	req.ClinicID = strings.TrimSpace(req.ClinicID)
	req.Status = strings.TrimSpace(req.Status)
	if req.ClinicID == "" || req.Status == "" {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "clinic_id and status are required")
		return
	}
	if err := h.store.UpdateDoctorStatus(r.Context(), req.ClinicID, doctorID, req.Status); err != nil {
		status, code, msg := mapError(err)
		writeError(w, "", status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"doctor_id": doctorID, "status": req.Status})
}

type createPatientRequest struct {
	ClinicID string `json:"clinic_id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

func (h *Handler) handlePatients(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req createPatientRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, "", http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	req.ClinicID = strings.TrimSpace(req.ClinicID)
	req.Name = strings.TrimSpace(req.Name)
	if req.ClinicID == "" {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "clinic_id is required")
		return
	}
	patient, err := h.store.CreatePatient(r.Context(), models.Patient{
		ClinicID: req.ClinicID,
		Name:     req.Name,
		Phone:    strings.TrimSpace(req.Phone),
	})
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, "", status, code, msg)
		return
	}
	writeJSON(w, http.StatusCreated, patient)
}

type createOperatorRequest struct {
	ClinicID string `json:"clinic_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *Handler) handleOperators(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req createOperatorRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, "", http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	req.ClinicID = strings.TrimSpace(req.ClinicID)
	req.Username = strings.TrimSpace(req.Username)
	req.Role = strings.TrimSpace(req.Role)
	if req.Role == "" {
		req.Role = store.RoleFrontDesk
	}
	if req.Role == store.RoleFrontDesk && req.ClinicID == "" {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "clinic_id is required for front_desk operators")
		return
	}
	operatorID, err := h.store.CreateOperator(r.Context(), store.CreateOperatorInput{
		ClinicID: req.ClinicID,
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, "", status, code, msg)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"operator_id": operatorID})
}
