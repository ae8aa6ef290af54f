package treatmentplan

import (
	"fmt"
	"strings"
)

// MaxHoursWithoutModifiedHours is the weekly ceiling for workers not suitable
// for modified hours.
const MaxHoursWithoutModifiedHours = 20.0

// ValidatePlanSafety checks plan against the case's constraints. With no
// constraints there is nothing to check and the plan is reported safe.
func ValidatePlanSafety(plan TreatmentPlan, constraints *MedicalConstraints) SafetyValidation {
	out := SafetyValidation{Safe: true, Issues: []string{}}
	if constraints == nil {
		return out
	}

	if s := constraints.SuitableForModifiedHours; s != nil && !*s {
		if peak := plan.MaxWeeklyHours(); peak > MaxHoursWithoutModifiedHours {
			out.Issues = append(out.Issues, fmt.Sprintf(
				"Plan schedules %g weekly hours but the worker is not suitable for modified hours (limit %g)",
				peak, MaxHoursWithoutModifiedHours))
		}
	}

	if constraints.NoLiftingOverKg != nil && !hasLiftingModification(plan.DutyModifications) {
		out.Issues = append(out.Issues, fmt.Sprintf(
			"No duty modification covers the lifting restriction of %gkg",
			*constraints.NoLiftingOverKg))
	}

	out.Safe = len(out.Issues) == 0
	return out
}

func hasLiftingModification(mods []DutyModification) bool {
	for _, m := range mods {
		if m.Category == CategoryPhysical && strings.Contains(strings.ToLower(m.Restriction), "lifting") {
			return true
		}
	}
	return false
}
