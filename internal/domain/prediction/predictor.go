package prediction

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rtw/rtw/internal/domain/treatmentplan"
)

// Predictor scores cases against a fixed Tuning. It holds no mutable state
// and is safe for concurrent use.
type Predictor struct {
	tuning Tuning
}

func New(t Tuning) *Predictor {
	return &Predictor{tuning: t}
}

// Default returns a predictor using DefaultTuning.
func Default() *Predictor {
	return New(DefaultTuning())
}

func (p *Predictor) Tuning() Tuning { return p.tuning }

// PredictCase scores s with the default tuning.
func PredictCase(s CaseSignals, now time.Time) CasePrediction {
	return Default().Predict(s, now)
}

// Predict produces the outcome estimate for s as of now.
func (p *Predictor) Predict(s CaseSignals, now time.Time) CasePrediction {
	f := ExtractFeatures(s, now)
	prob, factors := p.probability(f)
	weeks := p.weeksToRTW(f, prob)
	in := riskInput{f: f, probability: prob, weeksToRTW: weeks, th: p.tuning.Risk}

	return CasePrediction{
		CaseID:             s.CaseID,
		WorkerName:         s.WorkerName,
		PredictedAt:        now,
		WeeksElapsed:       f.WeeksElapsed,
		RTWProbability:     prob,
		ExpectedWeeksToRTW: weeks,
		EscalationRisk:     classify(escalationRules, in),
		CostRisk:           classify(costRules, in),
		DeteriorationRisk:  classify(deteriorationRules, in),
		Confidence:         p.confidence(f),
		Factors:            factors,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (p *Predictor) impact(score float64) Impact {
	switch {
	case score >= p.tuning.PositiveImpactAt:
		return ImpactPositive
	case score <= p.tuning.NegativeImpactAt:
		return ImpactNegative
	default:
		return ImpactNeutral
	}
}

// probability returns the RTW probability on a 0..100 scale and the factors
// that produced it, sorted by descending weight.
func (p *Predictor) probability(f Features) (int, []Factor) {
	t := p.tuning
	score := t.BaseProbability
	var factors []Factor

	add := func(feature, value string, lookup, weight float64, desc string) {
		score += (lookup - 0.5) * weight
		factors = append(factors, Factor{
			Feature:     feature,
			Value:       value,
			Impact:      p.impact(lookup),
			Weight:      weight,
			Description: desc,
		})
	}

	add("workStatus", string(f.WorkStatus), t.WorkStatusScores[f.WorkStatus], t.WorkStatusWeight,
		fmt.Sprintf("Current work status is %s", f.WorkStatus))
	add("riskLevel", string(f.RiskLevel), t.RiskLevelScores[f.RiskLevel], t.RiskLevelWeight,
		fmt.Sprintf("Case is classified as %s risk", f.RiskLevel))
	add("complianceStatus", string(f.Compliance), t.ComplianceScores[f.Compliance], t.ComplianceWeight,
		fmt.Sprintf("Worker compliance is %s", f.Compliance))

	certScore, certValue, certDesc := t.CertificateAbsent, "absent", "No current certificate of capacity on file"
	if f.HasCertificate {
		certScore, certValue, certDesc = t.CertificatePresent, "present", "Current certificate of capacity on file"
	}
	add("certificate", certValue, certScore, t.CertificateWeight, certDesc)

	decay := math.Max(0, 1-float64(f.WeeksElapsed)*t.DecayPerWeek)
	score *= decay
	lost := round2(1 - decay)
	timeImpact := ImpactNeutral
	if lost > 0 {
		timeImpact = ImpactNegative
	}
	factors = append(factors, Factor{
		Feature:     "timeSinceInjury",
		Value:       fmt.Sprintf("%d weeks", f.WeeksElapsed),
		Impact:      timeImpact,
		Weight:      lost,
		Description: fmt.Sprintf("%d weeks since injury reduce the likelihood of return to work", f.WeeksElapsed),
	})

	switch f.RTWPlanStatus {
	case treatmentplan.StatusInProgress, treatmentplan.StatusWorkingWell:
		score += t.ProgressBonus
		factors = append(factors, Factor{
			Feature:     "rtwStatus",
			Value:       string(f.RTWPlanStatus),
			Impact:      ImpactPositive,
			Weight:      t.ProgressBonus,
			Description: "Return to work plan is underway",
		})
	case treatmentplan.StatusFailing:
		score -= t.FailingPenalty
		factors = append(factors, Factor{
			Feature:     "rtwStatus",
			Value:       string(f.RTWPlanStatus),
			Impact:      ImpactNegative,
			Weight:      t.FailingPenalty,
			Description: "Return to work plan is failing",
		})
	}

	sort.SliceStable(factors, func(i, j int) bool { return factors[i].Weight > factors[j].Weight })

	prob := int(math.Round(score * 100))
	return clampInt(prob, 0, 100), factors
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (p *Predictor) weeksToRTW(f Features, probability int) int {
	if f.WorkStatus == WorkAtWork {
		return 0
	}
	t := p.tuning
	weeks := t.BaseWeeksToRTW[f.RiskLevel]
	switch {
	case probability >= t.FastTrackProbability:
		weeks -= t.FastTrackWeeks
	case probability < t.SlowTrackProbability:
		weeks += t.SlowTrackWeeks
	}
	weeks -= f.WeeksElapsed / 2
	if weeks < 0 {
		weeks = 0
	}
	return weeks
}

func (p *Predictor) confidence(f Features) int {
	c := p.tuning.Confidence
	score := c.Base
	if f.HasAISummary {
		score += c.AISummaryBonus
	}
	if f.HasCertificate {
		score += c.CertificateBonus
	}
	if f.RTWPlanStatus != treatmentplan.StatusNotPlanned {
		score += c.PlanStatusBonus
	}
	switch {
	case f.WeeksElapsed > c.LongCaseWeeks:
		score -= c.LongCasePenalty
	case f.WeeksElapsed > c.AgedCaseWeeks:
		score -= c.AgedCasePenalty
	}
	return clampInt(score, c.Min, c.Max)
}
