package treatmentplan

import (
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// WorkCapacity is the overall capacity certified on the current certificate.
type WorkCapacity string

const (
	CapacityFit     WorkCapacity = "fit"
	CapacityPartial WorkCapacity = "partial"
	CapacityUnfit   WorkCapacity = "unfit"
)

// RTWPlanStatus is the externally owned workflow state of the case's
// return-to-work plan. It is read here, never transitioned.
type RTWPlanStatus string

const (
	StatusNotPlanned        RTWPlanStatus = "not_planned"
	StatusPlannedNotStarted RTWPlanStatus = "planned_not_started"
	StatusInProgress        RTWPlanStatus = "in_progress"
	StatusWorkingWell       RTWPlanStatus = "working_well"
	StatusFailing           RTWPlanStatus = "failing"
	StatusOnHold            RTWPlanStatus = "on_hold"
	StatusCompleted         RTWPlanStatus = "completed"
)

type PlanType string

const (
	PlanGraduatedRTW   PlanType = "graduated_rtw"
	PlanModifiedDuties PlanType = "modified_duties"
	PlanFullCapacity   PlanType = "full_capacity"
	PlanUnfitForWork   PlanType = "unfit_for_work"
)

var planTypeLabels = map[PlanType]string{
	PlanGraduatedRTW:   "Graduated return to work",
	PlanModifiedDuties: "Modified duties",
	PlanFullCapacity:   "Full capacity",
	PlanUnfitForWork:   "Unfit for work",
}

// Label returns a human-readable name for the plan type.
func (p PlanType) Label() string {
	if l, ok := planTypeLabels[p]; ok {
		return l
	}
	return string(p)
}

type Phase string

const (
	PhaseInitial       Phase = "initial"
	PhaseProgression   Phase = "progression"
	PhaseConsolidation Phase = "consolidation"
	PhaseFullDuties    Phase = "full_duties"
)

type ModificationCategory string

const (
	CategoryPhysical      ModificationCategory = "physical"
	CategoryMental        ModificationCategory = "mental"
	CategoryEnvironmental ModificationCategory = "environmental"
	CategorySchedule      ModificationCategory = "schedule"
)

type MilestoneType string

const (
	MilestoneRTWReview          MilestoneType = "rtw_review"
	MilestoneCertificateRenewal MilestoneType = "certificate_renewal"
	MilestoneMedicalReview      MilestoneType = "medical_review"
	MilestoneFinalReview        MilestoneType = "final_review"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// MedicalConstraints are the boolean restriction flags recorded against a case.
type MedicalConstraints struct {
	NoLiftingOverKg          *float64 `json:"noLiftingOverKg,omitempty"`
	NoBending                bool     `json:"noBending,omitempty"`
	NoTwisting               bool     `json:"noTwisting,omitempty"`
	NoProlongedStanding      bool     `json:"noProlongedStanding,omitempty"`
	NoProlongedSitting       bool     `json:"noProlongedSitting,omitempty"`
	NoDriving                bool     `json:"noDriving,omitempty"`
	NoClimbing               bool     `json:"noClimbing,omitempty"`
	SuitableForLightDuties   *bool    `json:"suitableForLightDuties,omitempty"`
	SuitableForModifiedHours *bool    `json:"suitableForModifiedHours,omitempty"`
	Notes                    string   `json:"notes,omitempty"`
}

// FunctionalCapacity caps the hours and physical load the worker can take on.
type FunctionalCapacity struct {
	MaxHoursPerDay  *float64 `json:"maxHoursPerDay,omitempty"`
	MaxDaysPerWeek  *float64 `json:"maxDaysPerWeek,omitempty"`
	CanLiftKg       *float64 `json:"canLiftKg,omitempty"`
	CanStandMinutes *float64 `json:"canStandMinutes,omitempty"`
	CanSitMinutes   *float64 `json:"canSitMinutes,omitempty"`
}

// PlanInput bundles everything the generator reads about a case.
type PlanInput struct {
	CaseID                   string              `json:"caseId"`
	WorkerName               string              `json:"workerName"`
	DateOfInjury             time.Time           `json:"dateOfInjury"`
	MedicalConstraints       *MedicalConstraints `json:"medicalConstraints,omitempty"`
	FunctionalCapacity       *FunctionalCapacity `json:"functionalCapacity,omitempty"`
	CurrentCapacity          WorkCapacity        `json:"currentCapacity,omitempty"`
	RTWPlanStatus            RTWPlanStatus       `json:"rtwPlanStatus,omitempty"`
	CertificateEndDate       *time.Time          `json:"certificateEndDate,omitempty"`
	SpecialistRecommendation string              `json:"specialistRecommendation,omitempty"`
}

// HoursPhase is one step of the graded hours schedule.
type HoursPhase struct {
	Phase            Phase   `json:"phase"`
	StartWeek        int     `json:"startWeek"`
	EndWeek          int     `json:"endWeek"`
	HoursPerDay      float64 `json:"hoursPerDay"`
	DaysPerWeek      float64 `json:"daysPerWeek"`
	TotalWeeklyHours float64 `json:"totalWeeklyHours"`
	Description      string  `json:"description"`
}

type DutyModification struct {
	Category     ModificationCategory `json:"category"`
	Restriction  string               `json:"restriction"`
	Modification string               `json:"modification"`
	Rationale    string               `json:"rationale"`
}

type ReviewMilestone struct {
	Date        time.Time     `json:"date"`
	Type        MilestoneType `json:"type"`
	Description string        `json:"description"`
	Week        int           `json:"week,omitempty"`
}

type WarningSignal struct {
	Signal              string   `json:"signal"`
	Severity            Severity `json:"severity"`
	Action              string   `json:"action"`
	MonitoringFrequency string   `json:"monitoringFrequency"`
}

// TreatmentPlan is an advisory return-to-work plan. It is a derived value:
// regenerate rather than edit.
type TreatmentPlan struct {
	ID                    uuid.UUID          `json:"id"`
	CaseID                string             `json:"caseId"`
	WorkerName            string             `json:"workerName"`
	GeneratedAt           time.Time          `json:"generatedAt"`
	PlanType              PlanType           `json:"planType"`
	Summary               string             `json:"summary"`
	ExpectedDurationWeeks int                `json:"expectedDurationWeeks"`
	ConfidenceScore       float64            `json:"confidenceScore"`
	HoursProgression      []HoursPhase       `json:"hoursProgression"`
	CurrentPhase          Phase              `json:"currentPhase"`
	DutyModifications     []DutyModification `json:"dutyModifications"`
	SuitableTasks         []string           `json:"suitableTasks"`
	UnsuitableTasks       []string           `json:"unsuitableTasks"`
	ReviewMilestones      []ReviewMilestone  `json:"reviewMilestones"`
	NextReviewDate        *time.Time         `json:"nextReviewDate,omitempty"`
	WarningSignals        []WarningSignal    `json:"warningSignals"`
	SafetyConsiderations  []string           `json:"safetyConsiderations"`
	RegulatoryNotes       []string           `json:"regulatoryNotes"`
	Advisory              bool               `json:"advisory"`
}

// MarshalJSON always reports the plan as advisory regardless of the field
// value.
func (p TreatmentPlan) MarshalJSON() ([]byte, error) {
	type plain TreatmentPlan
	out := plain(p)
	out.Advisory = true
	return json.Marshal(out)
}

// MaxWeeklyHours returns the largest weekly total across all phases.
func (p TreatmentPlan) MaxWeeklyHours() float64 {
	var peak float64
	for _, ph := range p.HoursProgression {
		if ph.TotalWeeklyHours > peak {
			peak = ph.TotalWeeklyHours
		}
	}
	return peak
}

type SafetyValidation struct {
	Safe   bool     `json:"safe"`
	Issues []string `json:"issues"`
}
