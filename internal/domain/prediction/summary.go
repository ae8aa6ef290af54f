package prediction

import "math"

const (
	// HighProbabilityAt is the RTW probability at or above which a case counts
	// as likely to return.
	HighProbabilityAt = 70
	// LowProbabilityBelow is the RTW probability under which a case counts as
	// unlikely to return.
	LowProbabilityBelow = 50
)

// Summarize reduces a portfolio of predictions. Averages are rounded to one
// decimal place; an empty portfolio yields all zeros.
func Summarize(preds []CasePrediction) PredictionSummary {
	var out PredictionSummary
	if len(preds) == 0 {
		return out
	}

	var probSum, confSum int
	for _, p := range preds {
		probSum += p.RTWProbability
		confSum += p.Confidence
		if p.RTWProbability >= HighProbabilityAt {
			out.HighProbabilityCount++
		}
		if p.RTWProbability < LowProbabilityBelow {
			out.LowProbabilityCount++
		}
		if p.EscalationRisk == ClassHigh {
			out.HighEscalationRiskCount++
		}
	}

	n := float64(len(preds))
	out.TotalCases = len(preds)
	out.AverageRTWProbability = math.Round(float64(probSum)/n*10) / 10
	out.AverageConfidence = math.Round(float64(confSum)/n*10) / 10
	return out
}
