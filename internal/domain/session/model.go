package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/nephro/dialysis/internal/domain/scheduling"
	"github.com/nephro/dialysis/internal/platform/apperr"
)

// TreatmentSession records one dialysis run. Sessions are append-only.
type TreatmentSession struct {
	ID                uuid.UUID        `db:"id" json:"id"`
	Date              time.Time        `db:"session_date" json:"date"`
	Shift             scheduling.Shift `db:"shift" json:"shift"`
	PatientID         uuid.UUID        `db:"patient_id" json:"patient_id"`
	StationID         uuid.UUID        `db:"station_id" json:"station_id"`
	AuxNurseID        uuid.UUID        `db:"aux_nurse_id" json:"aux_nurse_id"`
	NurseID           uuid.UUID        `db:"nurse_id" json:"nurse_id"`
	PhysicianID       uuid.UUID        `db:"physician_id" json:"physician_id"`
	AnticoagulantDose int              `db:"anticoagulant_dose" json:"anticoagulant_dose"`
	PreWeightGrams    int              `db:"pre_weight_g" json:"pre_weight_g"`
	DryWeightGrams    int              `db:"dry_weight_g" json:"dry_weight_g"`
	UFGoalML          int              `db:"uf_goal_ml" json:"uf_goal_ml"`
	VascularAccess    string           `db:"vascular_access" json:"vascular_access"`
	Dialysate         string           `db:"dialysate" json:"dialysate"`
	Minutes           int              `db:"minutes" json:"minutes"`
	Medication        string           `db:"medication" json:"medication"`
	EPOGiven          bool             `db:"epo_given" json:"epo_given"`
	IronGiven         bool             `db:"iron_given" json:"iron_given"`
	DisconnectedAt    *time.Time       `db:"disconnected_at" json:"disconnected_at,omitempty"`
	KtV               *float64         `db:"ktv" json:"ktv,omitempty"`
	PreSystolic       *int             `db:"pre_systolic" json:"pre_systolic,omitempty"`
	PreDiastolic      *int             `db:"pre_diastolic" json:"pre_diastolic,omitempty"`
	PostSystolic      *int             `db:"post_systolic" json:"post_systolic,omitempty"`
	PostDiastolic     *int             `db:"post_diastolic" json:"post_diastolic,omitempty"`
	Temperature       *float64         `db:"temperature" json:"temperature,omitempty"`
	BathFlow          *int             `db:"bath_flow" json:"bath_flow,omitempty"`
	Connection        ConnectionCheck  `json:"connection"`
	PostConnection    PostConnCheck    `json:"post_connection"`
	MachineNumber     *int             `db:"machine_number" json:"machine_number,omitempty"`
	ExtraSession      bool             `db:"extra_session" json:"extra_session"`
	ExtraReason       string           `db:"extra_reason" json:"extra_reason"`
	IntradialyticLabs string           `db:"intradialytic_labs" json:"intradialytic_labs"`
	SentToFund        bool             `db:"sent_to_fund" json:"sent_to_fund"`
	RecordedAt        time.Time        `db:"recorded_at" json:"recorded_at"`
}

// ConnectionCheck is the identity checklist done before connecting.
type ConnectionCheck struct {
	Patient  bool `db:"pre_check_patient" json:"patient"`
	Station  bool `db:"pre_check_station" json:"station"`
	Dialyzer bool `db:"pre_check_dialyzer" json:"dialyzer"`
}

// PostConnCheck is the circuit checklist done right after connecting.
type PostConnCheck struct {
	Lines    bool `db:"post_check_lines" json:"lines"`
	Pump     bool `db:"post_check_pump" json:"pump"`
	UF       bool `db:"post_check_uf" json:"uf"`
	Dialyzer bool `db:"post_check_dialyzer" json:"dialyzer"`
	Heparin  bool `db:"post_check_heparin" json:"heparin"`
	Air      bool `db:"post_check_air" json:"air"`
}

func (s *TreatmentSession) ScheduleKey() scheduling.Key {
	return scheduling.Key{Date: s.Date, Shift: s.Shift, PatientID: s.PatientID}
}

func (s *TreatmentSession) Validate() error {
	if err := s.ScheduleKey().Validate(); err != nil {
		return err
	}
	required := []struct {
		field string
		id    uuid.UUID
	}{
		{"station_id", s.StationID},
		{"aux_nurse_id", s.AuxNurseID},
		{"nurse_id", s.NurseID},
		{"physician_id", s.PhysicianID},
	}
	for _, r := range required {
		if r.id == uuid.Nil {
			return apperr.Required(r.field)
		}
	}
	if s.PreWeightGrams <= 0 {
		return apperr.Invalid("pre_weight_g", "must be positive")
	}
	if s.DryWeightGrams <= 0 {
		return apperr.Invalid("dry_weight_g", "must be positive")
	}
	if s.UFGoalML < 0 {
		return apperr.Invalid("uf_goal_ml", "must not be negative")
	}
	if s.AnticoagulantDose < 0 {
		return apperr.Invalid("anticoagulant_dose", "must not be negative")
	}
	if s.Minutes <= 0 {
		return apperr.Invalid("minutes", "must be positive")
	}
	if s.VascularAccess == "" {
		return apperr.Required("vascular_access")
	}
	if len(s.VascularAccess) > 20 {
		return apperr.Invalid("vascular_access", "is too long")
	}
	if len(s.Dialysate) > 20 {
		return apperr.Invalid("dialysate", "is too long")
	}
	if s.ExtraSession && s.ExtraReason == "" {
		return apperr.Required("extra_reason")
	}
	return nil
}

// VitalsCheck is one intradialytic reading. Seq breaks ties between
// readings taken at the same instant.
type VitalsCheck struct {
	ID                    uuid.UUID `db:"id" json:"id"`
	Seq                   int64     `db:"seq" json:"seq"`
	SessionID             uuid.UUID `db:"session_id" json:"session_id"`
	AuxNurseID            uuid.UUID `db:"aux_nurse_id" json:"aux_nurse_id"`
	TakenAt               time.Time `db:"taken_at" json:"taken_at"`
	PumpFlow              int       `db:"pump_flow" json:"pump_flow"`
	VenousPressure        int       `db:"venous_pressure" json:"venous_pressure"`
	TransmembranePressure int       `db:"transmembrane_pressure" json:"transmembrane_pressure"`
	BathFlow              int       `db:"bath_flow" json:"bath_flow"`
	Conductivity          int       `db:"conductivity" json:"conductivity"`
	Systolic              int       `db:"systolic" json:"systolic"`
	Diastolic             int       `db:"diastolic" json:"diastolic"`
	HeartRate             int       `db:"heart_rate" json:"heart_rate"`
}

func (v *VitalsCheck) Validate() error {
	if v.SessionID == uuid.Nil {
		return apperr.Required("session_id")
	}
	if v.AuxNurseID == uuid.Nil {
		return apperr.Required("aux_nurse_id")
	}
	if v.PumpFlow < 0 || v.BathFlow < 0 || v.Conductivity < 0 {
		return apperr.Invalid("flow", "must not be negative")
	}
	if v.Systolic <= 0 || v.Diastolic <= 0 {
		return apperr.Invalid("blood_pressure", "must be positive")
	}
	if v.HeartRate <= 0 {
		return apperr.Invalid("heart_rate", "must be positive")
	}
	return nil
}

type RecirculationTest struct {
	ID           uuid.UUID `db:"id" json:"id"`
	SessionID    uuid.UUID `db:"session_id" json:"session_id"`
	AuxNurseID   uuid.UUID `db:"aux_nurse_id" json:"aux_nurse_id"`
	Qualitative  bool      `db:"qualitative" json:"qualitative"`
	Quantitative bool      `db:"quantitative" json:"quantitative"`
	RecordedAt   time.Time `db:"recorded_at" json:"recorded_at"`
}

type Dialyzer struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	Type      string    `db:"dialyzer_type" json:"type"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type ActionKind string

const (
	ActionPrime   ActionKind = "prime"
	ActionReuse   ActionKind = "reuse"
	ActionDiscard ActionKind = "discard"
)

func (a ActionKind) Valid() bool {
	switch a {
	case ActionPrime, ActionReuse, ActionDiscard:
		return true
	}
	return false
}

// DialyzerAction is an immutable entry in a dialyzer's reuse log.
type DialyzerAction struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	Seq              int64      `db:"seq" json:"seq"`
	DialyzerID       uuid.UUID  `db:"dialyzer_id" json:"dialyzer_id"`
	AuxNurseID       uuid.UUID  `db:"aux_nurse_id" json:"aux_nurse_id"`
	Action           ActionKind `db:"action" json:"action"`
	PerformedAt      time.Time  `db:"performed_at" json:"performed_at"`
	PrimingVolumeML  int        `db:"priming_volume_ml" json:"priming_volume_ml"`
	ResidualVolumeML int        `db:"residual_volume_ml" json:"residual_volume_ml"`
}

func (a *DialyzerAction) Validate() error {
	if a.DialyzerID == uuid.Nil {
		return apperr.Required("dialyzer_id")
	}
	if a.AuxNurseID == uuid.Nil {
		return apperr.Required("aux_nurse_id")
	}
	if !a.Action.Valid() {
		return apperr.Invalid("action", "must be one of prime, reuse, discard")
	}
	if a.PrimingVolumeML < 0 {
		return apperr.Invalid("priming_volume_ml", "must not be negative")
	}
	if a.ResidualVolumeML < 0 {
		return apperr.Invalid("residual_volume_ml", "must not be negative")
	}
	return nil
}
