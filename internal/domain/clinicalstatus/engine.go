package clinicalstatus

import (
	"fmt"
	"time"

	"github.com/rtw/rtw/internal/domain/prediction"
	"github.com/rtw/rtw/internal/domain/restriction"
	"github.com/rtw/rtw/internal/domain/treatmentplan"
)

// Request bodies for the stateless engine operations. Dates are ISO-8601
// dates or RFC 3339 timestamps; AsOf pins the evaluation date and defaults to
// the current time.

type CombineRequest struct {
	Certificates []restriction.RestrictionSet `json:"certificates" validate:"max=200"`
}

type CombineResult struct {
	Restrictions restriction.RestrictionSet        `json:"restrictions"`
	Dimensions   []restriction.DimensionValue      `json:"dimensions"`
	Constraints  *treatmentplan.MedicalConstraints `json:"constraints,omitempty"`
}

func CombineCertificates(req CombineRequest) CombineResult {
	combined := restriction.Combine(req.Certificates)
	return CombineResult{
		Restrictions: combined,
		Dimensions:   combined.Values(),
		Constraints:  treatmentplan.ConstraintsFromRestrictions(combined),
	}
}

type PlanRequest struct {
	CaseID                   string                            `json:"caseId" validate:"required,max=128"`
	WorkerName               string                            `json:"workerName" validate:"required,max=256"`
	DateOfInjury             string                            `json:"dateOfInjury,omitempty"`
	MedicalConstraints       *treatmentplan.MedicalConstraints `json:"medicalConstraints,omitempty"`
	FunctionalCapacity       *treatmentplan.FunctionalCapacity `json:"functionalCapacity,omitempty"`
	CurrentCapacity          treatmentplan.WorkCapacity        `json:"currentCapacity,omitempty"`
	RTWPlanStatus            treatmentplan.RTWPlanStatus       `json:"rtwPlanStatus,omitempty"`
	CertificateEndDate       string                            `json:"certificateEndDate,omitempty"`
	SpecialistRecommendation string                            `json:"specialistRecommendation,omitempty" validate:"max=4000"`
	// Restrictions are certificate restriction sets; their aggregate is
	// merged into MedicalConstraints.
	Restrictions []restriction.RestrictionSet `json:"restrictions,omitempty" validate:"max=200"`
	AsOf         string                       `json:"asOf,omitempty"`
}

// Input converts the request into generator input and the evaluation time.
func (r PlanRequest) Input(now time.Time) (treatmentplan.PlanInput, time.Time, error) {
	asOf, err := optionalDate("asOf", r.AsOf)
	if err != nil {
		return treatmentplan.PlanInput{}, time.Time{}, err
	}
	if !asOf.IsZero() {
		now = asOf
	}
	injury, err := optionalDate("dateOfInjury", r.DateOfInjury)
	if err != nil {
		return treatmentplan.PlanInput{}, time.Time{}, err
	}
	certEnd, err := optionalDate("certificateEndDate", r.CertificateEndDate)
	if err != nil {
		return treatmentplan.PlanInput{}, time.Time{}, err
	}

	in := treatmentplan.PlanInput{
		CaseID:                   r.CaseID,
		WorkerName:               r.WorkerName,
		DateOfInjury:             injury,
		MedicalConstraints:       r.MedicalConstraints,
		FunctionalCapacity:       r.FunctionalCapacity,
		CurrentCapacity:          r.CurrentCapacity,
		RTWPlanStatus:            r.RTWPlanStatus,
		SpecialistRecommendation: r.SpecialistRecommendation,
	}
	if !certEnd.IsZero() {
		in.CertificateEndDate = &certEnd
	}
	if len(r.Restrictions) > 0 {
		derived := treatmentplan.ConstraintsFromRestrictions(restriction.Combine(r.Restrictions))
		in.MedicalConstraints = treatmentplan.MergeConstraints(in.MedicalConstraints, derived)
	}
	return in, now, nil
}

type ValidatePlanRequest struct {
	Plan        *treatmentplan.TreatmentPlan      `json:"plan" validate:"required"`
	Constraints *treatmentplan.MedicalConstraints `json:"constraints,omitempty"`
}

type CaseSignalsRequest struct {
	CaseID              string                      `json:"caseId" validate:"required,max=128"`
	WorkerName          string                      `json:"workerName,omitempty" validate:"max=256"`
	DateOfInjury        string                      `json:"dateOfInjury,omitempty"`
	WorkStatus          string                      `json:"workStatus,omitempty"`
	RiskLevel           string                      `json:"riskLevel,omitempty"`
	ComplianceIndicator string                      `json:"complianceIndicator,omitempty"`
	HasCertificate      bool                        `json:"hasCertificate"`
	RTWPlanStatus       treatmentplan.RTWPlanStatus `json:"rtwPlanStatus,omitempty"`
	HasAISummary        bool                        `json:"hasAiSummary"`
}

func (r CaseSignalsRequest) Signals() (prediction.CaseSignals, error) {
	injury, err := optionalDate("dateOfInjury", r.DateOfInjury)
	if err != nil {
		return prediction.CaseSignals{}, fmt.Errorf("case %s: %w", r.CaseID, err)
	}
	return prediction.CaseSignals{
		CaseID:              r.CaseID,
		WorkerName:          r.WorkerName,
		DateOfInjury:        injury,
		WorkStatus:          r.WorkStatus,
		RiskLevel:           r.RiskLevel,
		ComplianceIndicator: r.ComplianceIndicator,
		HasCertificate:      r.HasCertificate,
		RTWPlanStatus:       r.RTWPlanStatus,
		HasAISummary:        r.HasAISummary,
	}, nil
}

type PredictRequest struct {
	Cases []CaseSignalsRequest `json:"cases" validate:"required,min=1,max=1000,dive"`
	AsOf  string               `json:"asOf,omitempty"`
}

type PredictResult struct {
	Predictions []prediction.CasePrediction  `json:"predictions"`
	Summary     prediction.PredictionSummary `json:"summary"`
}

// PredictAll scores every case in req with p.
func PredictAll(p *prediction.Predictor, req PredictRequest, now time.Time) (PredictResult, error) {
	asOf, err := optionalDate("asOf", req.AsOf)
	if err != nil {
		return PredictResult{}, err
	}
	if !asOf.IsZero() {
		now = asOf
	}
	preds := make([]prediction.CasePrediction, 0, len(req.Cases))
	for _, c := range req.Cases {
		sig, err := c.Signals()
		if err != nil {
			return PredictResult{}, err
		}
		preds = append(preds, p.Predict(sig, now))
	}
	return PredictResult{Predictions: preds, Summary: prediction.Summarize(preds)}, nil
}

type SummaryRequest struct {
	Predictions []prediction.CasePrediction `json:"predictions" validate:"max=10000"`
}

func optionalDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, ok := restriction.ParseDate(s)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s %q is not an ISO-8601 date", ErrInvalidInput, field, s)
	}
	return t.UTC(), nil
}
