package prediction

import (
	"strings"
	"time"

	"github.com/rtw/rtw/internal/domain/treatmentplan"
)

var workStatusAliases = map[string]WorkStatus{
	"at work":         WorkAtWork,
	"modified duties": WorkModifiedDuties,
	"off work":        WorkOffWork,
}

var riskLevelAliases = map[string]RiskLevel{
	"low":    RiskLow,
	"medium": RiskMedium,
	"high":   RiskHigh,
}

var rtwStatuses = map[treatmentplan.RTWPlanStatus]bool{
	treatmentplan.StatusNotPlanned:        true,
	treatmentplan.StatusPlannedNotStarted: true,
	treatmentplan.StatusInProgress:        true,
	treatmentplan.StatusWorkingWell:       true,
	treatmentplan.StatusFailing:           true,
	treatmentplan.StatusOnHold:            true,
	treatmentplan.StatusCompleted:         true,
}

func canonical(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// CanonicalWorkStatus maps free text onto a WorkStatus, case-insensitively.
func CanonicalWorkStatus(s string) WorkStatus {
	if ws, ok := workStatusAliases[canonical(s)]; ok {
		return ws
	}
	return WorkUnknown
}

func CanonicalRiskLevel(s string) RiskLevel {
	if rl, ok := riskLevelAliases[canonical(s)]; ok {
		return rl
	}
	return RiskUnknown
}

// CanonicalRTWStatus lower-cases s and treats anything unrecognised,
// including the empty string, as not_planned.
func CanonicalRTWStatus(s treatmentplan.RTWPlanStatus) treatmentplan.RTWPlanStatus {
	c := treatmentplan.RTWPlanStatus(strings.ReplaceAll(canonical(string(s)), " ", "_"))
	if rtwStatuses[c] {
		return c
	}
	return treatmentplan.StatusNotPlanned
}

// NormalizeCompliance classifies a free-text compliance indicator by
// substring. Anything not recognised as a warning counts as compliant.
func NormalizeCompliance(s string) ComplianceStatus {
	v := strings.ToLower(s)
	switch {
	case strings.Contains(v, "non"), strings.Contains(v, "red"):
		return NonCompliant
	case strings.Contains(v, "risk"), strings.Contains(v, "amber"), strings.Contains(v, "yellow"):
		return AtRisk
	default:
		return Compliant
	}
}

// WeeksElapsed returns whole weeks from injury to now, or 0 when the injury
// date is unknown or in the future.
func WeeksElapsed(injury, now time.Time) int {
	return treatmentplan.DaysSinceInjury(injury, now) / 7
}

// ExtractFeatures normalises raw case signals as of now.
func ExtractFeatures(s CaseSignals, now time.Time) Features {
	return Features{
		WeeksElapsed:   WeeksElapsed(s.DateOfInjury, now),
		WorkStatus:     CanonicalWorkStatus(s.WorkStatus),
		RiskLevel:      CanonicalRiskLevel(s.RiskLevel),
		Compliance:     NormalizeCompliance(s.ComplianceIndicator),
		HasCertificate: s.HasCertificate,
		RTWPlanStatus:  CanonicalRTWStatus(s.RTWPlanStatus),
		HasAISummary:   s.HasAISummary,
	}
}
