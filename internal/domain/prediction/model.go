package prediction

import (
	"time"

	"github.com/rtw/rtw/internal/domain/treatmentplan"
)

// WorkStatus is the canonical form of the case's current work status.
type WorkStatus string

const (
	WorkAtWork         WorkStatus = "At work"
	WorkModifiedDuties WorkStatus = "Modified duties"
	WorkOffWork        WorkStatus = "Off work"
	WorkUnknown        WorkStatus = "Unknown"
)

// RiskLevel is the case's risk classification.
type RiskLevel string

const (
	RiskLow     RiskLevel = "Low"
	RiskMedium  RiskLevel = "Medium"
	RiskHigh    RiskLevel = "High"
	RiskUnknown RiskLevel = "Unknown"
)

type ComplianceStatus string

const (
	Compliant    ComplianceStatus = "compliant"
	AtRisk       ComplianceStatus = "at-risk"
	NonCompliant ComplianceStatus = "non-compliant"
)

// RiskClass grades one predicted risk.
type RiskClass string

const (
	ClassLow    RiskClass = "low"
	ClassMedium RiskClass = "medium"
	ClassHigh   RiskClass = "high"
)

type Impact string

const (
	ImpactPositive Impact = "positive"
	ImpactNegative Impact = "negative"
	ImpactNeutral  Impact = "neutral"
)

// CaseSignals is the subset of a case record the predictor reads. String
// fields are free text as stored on the case and are canonicalised here.
type CaseSignals struct {
	CaseID              string                      `json:"caseId"`
	WorkerName          string                      `json:"workerName"`
	DateOfInjury        time.Time                   `json:"dateOfInjury"`
	WorkStatus          string                      `json:"workStatus"`
	RiskLevel           string                      `json:"riskLevel"`
	ComplianceIndicator string                      `json:"complianceIndicator"`
	HasCertificate      bool                        `json:"hasCertificate"`
	RTWPlanStatus       treatmentplan.RTWPlanStatus `json:"rtwPlanStatus"`
	HasAISummary        bool                        `json:"hasAiSummary"`
}

// Features are the normalised predictor inputs.
type Features struct {
	WeeksElapsed   int                         `json:"weeksElapsed"`
	WorkStatus     WorkStatus                  `json:"workStatus"`
	RiskLevel      RiskLevel                   `json:"riskLevel"`
	Compliance     ComplianceStatus            `json:"complianceStatus"`
	HasCertificate bool                        `json:"hasCertificate"`
	RTWPlanStatus  treatmentplan.RTWPlanStatus `json:"rtwPlanStatus"`
	HasAISummary   bool                        `json:"hasAiSummary"`
}

// Factor explains one contribution to the RTW probability.
type Factor struct {
	Feature     string  `json:"feature"`
	Value       string  `json:"value"`
	Impact      Impact  `json:"impact"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description"`
}

// CasePrediction is a derived, advisory outcome estimate for one case.
type CasePrediction struct {
	CaseID             string    `json:"caseId"`
	WorkerName         string    `json:"workerName"`
	PredictedAt        time.Time `json:"predictedAt"`
	WeeksElapsed       int       `json:"weeksElapsed"`
	RTWProbability     int       `json:"rtwProbability"`
	ExpectedWeeksToRTW int       `json:"expectedWeeksToRtw"`
	EscalationRisk     RiskClass `json:"escalationRisk"`
	CostRisk           RiskClass `json:"costRisk"`
	DeteriorationRisk  RiskClass `json:"deteriorationRisk"`
	Confidence         int       `json:"confidence"`
	Factors            []Factor  `json:"factors"`
}

// PredictionSummary aggregates a portfolio of predictions.
type PredictionSummary struct {
	TotalCases              int     `json:"totalCases"`
	AverageRTWProbability   float64 `json:"averageRtwProbability"`
	AverageConfidence       float64 `json:"averageConfidence"`
	HighProbabilityCount    int     `json:"highProbabilityCount"`
	LowProbabilityCount     int     `json:"lowProbabilityCount"`
	HighEscalationRiskCount int     `json:"highEscalationRiskCount"`
}
