package prediction

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning holds every lookup table, weight and threshold the predictor uses.
// DefaultTuning returns the production values.
type Tuning struct {
	BaseProbability float64 `yaml:"baseProbability"`

	WorkStatusWeight  float64 `yaml:"workStatusWeight"`
	RiskLevelWeight   float64 `yaml:"riskLevelWeight"`
	ComplianceWeight  float64 `yaml:"complianceWeight"`
	CertificateWeight float64 `yaml:"certificateWeight"`

	WorkStatusScores   map[WorkStatus]float64       `yaml:"workStatusScores"`
	RiskLevelScores    map[RiskLevel]float64        `yaml:"riskLevelScores"`
	ComplianceScores   map[ComplianceStatus]float64 `yaml:"complianceScores"`
	CertificatePresent float64                      `yaml:"certificatePresent"`
	CertificateAbsent  float64                      `yaml:"certificateAbsent"`

	DecayPerWeek   float64 `yaml:"decayPerWeek"`
	ProgressBonus  float64 `yaml:"progressBonus"`
	FailingPenalty float64 `yaml:"failingPenalty"`

	PositiveImpactAt float64 `yaml:"positiveImpactAt"`
	NegativeImpactAt float64 `yaml:"negativeImpactAt"`

	BaseWeeksToRTW       map[RiskLevel]int `yaml:"baseWeeksToRtw"`
	FastTrackProbability int               `yaml:"fastTrackProbability"`
	FastTrackWeeks       int               `yaml:"fastTrackWeeks"`
	SlowTrackProbability int               `yaml:"slowTrackProbability"`
	SlowTrackWeeks       int               `yaml:"slowTrackWeeks"`

	Risk       RiskThresholds       `yaml:"risk"`
	Confidence ConfidenceAdjustments `yaml:"confidence"`
}

// RiskThresholds are the cut-offs for the escalation, cost and deterioration
// classifiers.
type RiskThresholds struct {
	EscalationHighWeeks       int `yaml:"escalationHighWeeks"`
	EscalationHighProbability int `yaml:"escalationHighProbability"`
	EscalationMediumWeeks     int `yaml:"escalationMediumWeeks"`
	CostHighTotalWeeks        int `yaml:"costHighTotalWeeks"`
	CostMediumTotalWeeks      int `yaml:"costMediumTotalWeeks"`
	DeteriorationOffWorkWeeks int `yaml:"deteriorationOffWorkWeeks"`
}

type ConfidenceAdjustments struct {
	Base             int `yaml:"base"`
	AISummaryBonus   int `yaml:"aiSummaryBonus"`
	CertificateBonus int `yaml:"certificateBonus"`
	PlanStatusBonus  int `yaml:"planStatusBonus"`
	LongCaseWeeks    int `yaml:"longCaseWeeks"`
	LongCasePenalty  int `yaml:"longCasePenalty"`
	AgedCaseWeeks    int `yaml:"agedCaseWeeks"`
	AgedCasePenalty  int `yaml:"agedCasePenalty"`
	Min              int `yaml:"min"`
	Max              int `yaml:"max"`
}

// DefaultTuning returns a fresh copy of the default tables; callers may
// mutate the result.
func DefaultTuning() Tuning {
	return Tuning{
		BaseProbability: 0.5,

		WorkStatusWeight:  0.35,
		RiskLevelWeight:   0.25,
		ComplianceWeight:  0.2,
		CertificateWeight: 0.1,

		WorkStatusScores: map[WorkStatus]float64{
			WorkAtWork:         0.9,
			WorkModifiedDuties: 0.7,
			WorkOffWork:        0.3,
			WorkUnknown:        0.5,
		},
		RiskLevelScores: map[RiskLevel]float64{
			RiskLow:     0.8,
			RiskMedium:  0.5,
			RiskHigh:    0.2,
			RiskUnknown: 0.5,
		},
		ComplianceScores: map[ComplianceStatus]float64{
			Compliant:    0.85,
			AtRisk:       0.55,
			NonCompliant: 0.3,
		},
		CertificatePresent: 0.75,
		CertificateAbsent:  0.45,

		DecayPerWeek:   0.02,
		ProgressBonus:  0.1,
		FailingPenalty: 0.15,

		PositiveImpactAt: 0.6,
		NegativeImpactAt: 0.4,

		BaseWeeksToRTW: map[RiskLevel]int{
			RiskLow:     4,
			RiskMedium:  8,
			RiskHigh:    12,
			RiskUnknown: 8,
		},
		FastTrackProbability: 70,
		FastTrackWeeks:       3,
		SlowTrackProbability: 40,
		SlowTrackWeeks:       4,

		Risk: RiskThresholds{
			EscalationHighWeeks:       8,
			EscalationHighProbability: 50,
			EscalationMediumWeeks:     12,
			CostHighTotalWeeks:        20,
			CostMediumTotalWeeks:      10,
			DeteriorationOffWorkWeeks: 8,
		},
		Confidence: ConfidenceAdjustments{
			Base:             70,
			AISummaryBonus:   10,
			CertificateBonus: 5,
			PlanStatusBonus:  5,
			LongCaseWeeks:    24,
			LongCasePenalty:  15,
			AgedCaseWeeks:    12,
			AgedCasePenalty:  5,
			Min:              50,
			Max:              95,
		},
	}
}

// LoadTuning reads a YAML file and overlays it on DefaultTuning. Keys absent
// from the file keep their default values, including individual map entries.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read tuning file: %w", err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("parse tuning file %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("invalid tuning file %s: %w", path, err)
	}
	return t, nil
}

// Validate rejects tables that would break the predictor's output ranges.
func (t Tuning) Validate() error {
	for name, w := range map[string]float64{
		"workStatusWeight":  t.WorkStatusWeight,
		"riskLevelWeight":   t.RiskLevelWeight,
		"complianceWeight":  t.ComplianceWeight,
		"certificateWeight": t.CertificateWeight,
		"decayPerWeek":      t.DecayPerWeek,
		"progressBonus":     t.ProgressBonus,
		"failingPenalty":    t.FailingPenalty,
	} {
		if w < 0 {
			return fmt.Errorf("%s must not be negative, got %g", name, w)
		}
	}
	if t.NegativeImpactAt > t.PositiveImpactAt {
		return fmt.Errorf("negativeImpactAt (%g) must not exceed positiveImpactAt (%g)", t.NegativeImpactAt, t.PositiveImpactAt)
	}
	if t.Confidence.Min > t.Confidence.Max {
		return fmt.Errorf("confidence.min (%d) must not exceed confidence.max (%d)", t.Confidence.Min, t.Confidence.Max)
	}
	for _, ws := range []WorkStatus{WorkAtWork, WorkModifiedDuties, WorkOffWork, WorkUnknown} {
		if _, ok := t.WorkStatusScores[ws]; !ok {
			return fmt.Errorf("workStatusScores missing %q", ws)
		}
	}
	for _, rl := range []RiskLevel{RiskLow, RiskMedium, RiskHigh, RiskUnknown} {
		if _, ok := t.RiskLevelScores[rl]; !ok {
			return fmt.Errorf("riskLevelScores missing %q", rl)
		}
		if _, ok := t.BaseWeeksToRTW[rl]; !ok {
			return fmt.Errorf("baseWeeksToRtw missing %q", rl)
		}
	}
	for _, cs := range []ComplianceStatus{Compliant, AtRisk, NonCompliant} {
		if _, ok := t.ComplianceScores[cs]; !ok {
			return fmt.Errorf("complianceScores missing %q", cs)
		}
	}
	return nil
}
