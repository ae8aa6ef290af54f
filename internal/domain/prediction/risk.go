package prediction

import "github.com/rtw/rtw/internal/domain/treatmentplan"

type riskInput struct {
	f           Features
	probability int
	weeksToRTW  int
	th          RiskThresholds
}

// riskRule assigns class when match holds. Rules are tried in order and the
// first match wins; no match means ClassLow.
type riskRule struct {
	class RiskClass
	match func(in riskInput) bool
}

func classify(rules []riskRule, in riskInput) RiskClass {
	for _, r := range rules {
		if r.match(in) {
			return r.class
		}
	}
	return ClassLow
}

var escalationRules = []riskRule{
	{ClassHigh, func(in riskInput) bool {
		return in.f.RiskLevel == RiskHigh &&
			in.f.WeeksElapsed > in.th.EscalationHighWeeks &&
			in.probability < in.th.EscalationHighProbability
	}},
	{ClassMedium, func(in riskInput) bool {
		return in.f.RiskLevel == RiskHigh ||
			in.f.WeeksElapsed > in.th.EscalationMediumWeeks ||
			in.f.Compliance == NonCompliant
	}},
}

var costRules = []riskRule{
	{ClassHigh, func(in riskInput) bool {
		return in.f.RiskLevel == RiskHigh ||
			in.f.WeeksElapsed+in.weeksToRTW > in.th.CostHighTotalWeeks ||
			in.f.Compliance == NonCompliant
	}},
	{ClassMedium, func(in riskInput) bool {
		return in.f.RiskLevel == RiskMedium ||
			in.f.WeeksElapsed+in.weeksToRTW > in.th.CostMediumTotalWeeks
	}},
}

var deteriorationRules = []riskRule{
	{ClassHigh, func(in riskInput) bool {
		return in.f.RTWPlanStatus == treatmentplan.StatusFailing ||
			in.f.Compliance == NonCompliant
	}},
	{ClassMedium, func(in riskInput) bool {
		return in.f.RiskLevel == RiskHigh ||
			(in.f.WeeksElapsed > in.th.DeteriorationOffWorkWeeks && in.f.WorkStatus == WorkOffWork)
	}},
}
