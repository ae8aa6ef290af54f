package clinicalstatus

import (
	"time"

	"github.com/google/uuid"

	"github.com/rtw/rtw/internal/domain/prediction"
	"github.com/rtw/rtw/internal/domain/restriction"
	"github.com/rtw/rtw/internal/domain/treatmentplan"
)

// Case is the slice of a workers' compensation claim the engine reads.
type Case struct {
	ID                       uuid.UUID                         `json:"id"`
	WorkerName               string                            `json:"workerName"`
	DateOfInjury             *time.Time                        `json:"dateOfInjury,omitempty"`
	WorkStatus               string                            `json:"workStatus"`
	RiskLevel                string                            `json:"riskLevel"`
	ComplianceIndicator      string                            `json:"complianceIndicator"`
	RTWPlanStatus            treatmentplan.RTWPlanStatus       `json:"rtwPlanStatus"`
	CurrentCapacity          treatmentplan.WorkCapacity        `json:"currentCapacity,omitempty"`
	FunctionalCapacity       *treatmentplan.FunctionalCapacity `json:"functionalCapacity,omitempty"`
	MedicalConstraints       *treatmentplan.MedicalConstraints `json:"medicalConstraints,omitempty"`
	SpecialistRecommendation string                            `json:"specialistRecommendation,omitempty"`
	HasAISummary             bool                              `json:"hasAiSummary"`
	Closed                   bool                              `json:"closed"`
	CreatedAt                time.Time                         `json:"createdAt"`
	UpdatedAt                time.Time                         `json:"updatedAt"`
}

// Certificate is a medical certificate of capacity. A nil EndDate means the
// certificate is open-ended.
type Certificate struct {
	ID           uuid.UUID                  `json:"id"`
	CaseID       uuid.UUID                  `json:"caseId"`
	Capacity     treatmentplan.WorkCapacity `json:"capacity"`
	StartDate    time.Time                  `json:"startDate"`
	EndDate      *time.Time                 `json:"endDate,omitempty"`
	Restrictions restriction.RestrictionSet `json:"restrictions"`
	CreatedAt    time.Time                  `json:"createdAt"`
}

// ActiveOn reports whether the certificate is in force on day. A certificate
// ending on day is still active.
func (c *Certificate) ActiveOn(day time.Time) bool {
	day = truncateDay(day)
	if truncateDay(c.StartDate).After(day) {
		return false
	}
	return c.EndDate == nil || !truncateDay(*c.EndDate).Before(day)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

type PlanStatus string

const (
	PlanActive     PlanStatus = "active"
	PlanSuperseded PlanStatus = "superseded"
)

// StoredPlan is a persisted treatment plan. At most one plan per case is
// active; generating a new plan supersedes it.
type StoredPlan struct {
	ID           uuid.UUID                   `json:"id"`
	CaseID       uuid.UUID                   `json:"caseId"`
	Status       PlanStatus                  `json:"status"`
	Plan         treatmentplan.TreatmentPlan `json:"plan"`
	CreatedAt    time.Time                   `json:"createdAt"`
	SupersededAt *time.Time                  `json:"supersededAt,omitempty"`
	SupersededBy *uuid.UUID                  `json:"supersededBy,omitempty"`
}

// EffectiveRestrictions is the aggregated restriction set of a case's
// certificates in force on AsOf.
type EffectiveRestrictions struct {
	CaseID             uuid.UUID                         `json:"caseId"`
	AsOf               time.Time                         `json:"asOf"`
	ActiveCertificates []uuid.UUID                       `json:"activeCertificates"`
	Restrictions       restriction.RestrictionSet        `json:"restrictions"`
	Dimensions         []restriction.DimensionValue      `json:"dimensions"`
	Constraints        *treatmentplan.MedicalConstraints `json:"constraints,omitempty"`
}

// SafetyReport is the result of checking a stored plan against the case's
// current constraints.
type SafetyReport struct {
	CaseID    uuid.UUID `json:"caseId"`
	PlanID    uuid.UUID `json:"planId"`
	CheckedAt time.Time `json:"checkedAt"`
	treatmentplan.SafetyValidation
}

// Portfolio is the prediction run over every open case.
type Portfolio struct {
	GeneratedAt time.Time                    `json:"generatedAt"`
	Predictions []prediction.CasePrediction  `json:"predictions"`
	Summary     prediction.PredictionSummary `json:"summary"`
}
