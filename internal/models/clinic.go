package models

type Clinic struct {
	ClinicID string         `json:"clinic_id"`
	Name     string         `json:"name"`
	Windows  []WindowConfig `json:"windows,omitempty"`
}

// WindowConfig is the wire form of a session window: clock-time boundaries
// with no date component, interpreted against the clinic's current day.
type WindowConfig struct {
	Name  string `json:"name"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// SessionWindow is a parsed window. Start and End use hour*100+minute
// encoding so comparisons stay integral.
type SessionWindow struct {
	Name  string `json:"name"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

const (
	DoctorAvailable = "available"
	DoctorOnLeave   = "on_leave"
)

type Doctor struct {
	DoctorID  string `json:"doctor_id"`
	ClinicID  string `json:"clinic_id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	Status    string `json:"status"`
	// TokenLimits caps issuance per session name; zero or absent means no cap.
	TokenLimits map[string]int `json:"token_limits,omitempty"`
	Fee         int64          `json:"fee"`
}

type Patient struct {
	PatientID string `json:"patient_id"`
	ClinicID  string `json:"clinic_id"`
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
}
