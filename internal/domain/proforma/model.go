package proforma

import (
	"time"

	"github.com/google/uuid"
)

// Decision values for a clinical encounter. A complex_case decision obliges
// the system to link an ADL file to the encounter.
const (
	DecisionSimpleCase  = "simple_case"
	DecisionComplexCase = "complex_case"
)

// Proforma is one documented clinical visit. The narrative fields are opaque
// to the linkage machinery; only decision and adl_file_id drive it.
type Proforma struct {
	ID             uuid.UUID  `db:"id"              json:"id"`
	PatientID      uuid.UUID  `db:"patient_id"      json:"patient_id"`
	AuthorID       uuid.UUID  `db:"author_id"       json:"author_id"`
	VisitDate      time.Time  `db:"visit_date"      json:"visit_date"`
	Decision       string     `db:"decision"        json:"decision"`
	Severity       *string    `db:"severity"        json:"severity,omitempty"`
	ADLFileID      *uuid.UUID `db:"adl_file_id"     json:"adl_file_id,omitempty"`
	ChiefComplaint *string    `db:"chief_complaint" json:"chief_complaint,omitempty"`
	ClinicalNotes  *string    `db:"clinical_notes"  json:"clinical_notes,omitempty"`
	Diagnosis      *string    `db:"diagnosis"       json:"diagnosis,omitempty"`
	TreatmentPlan  *string    `db:"treatment_plan"  json:"treatment_plan,omitempty"`
	CreatedAt      time.Time  `db:"created_at"      json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"      json:"updated_at"`
}

// IsComplex reports whether this encounter requires an ADL file.
func (p *Proforma) IsComplex() bool {
	return p.Decision == DecisionComplexCase
}
