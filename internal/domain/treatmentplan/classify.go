package treatmentplan

import (
	"math"
	"time"
)

const (
	DefaultHoursPerDay = 8.0
	DefaultDaysPerWeek = 5.0

	// MinDurationWeeks is the floor for every expected duration.
	MinDurationWeeks = 2

	lowLiftingCeilingKg = 5.0
	lateReferralDays    = 30
)

var baseDurationWeeks = map[WorkCapacity]int{
	CapacityUnfit:   12,
	CapacityPartial: 8,
}

const defaultBaseDurationWeeks = 4

// ClassifyPlanType picks the plan type. Precedence: unfit capacity, then
// partial capacity or any daily hour cap, then fit capacity, then modified
// duties. A fit certificate with an hour cap therefore yields graduated_rtw;
// that ordering is deliberate pending product clarification.
func ClassifyPlanType(in PlanInput) PlanType {
	hourCap := in.FunctionalCapacity != nil && in.FunctionalCapacity.MaxHoursPerDay != nil
	switch {
	case in.CurrentCapacity == CapacityUnfit:
		return PlanUnfitForWork
	case in.CurrentCapacity == CapacityPartial || hourCap:
		return PlanGraduatedRTW
	case in.CurrentCapacity == CapacityFit:
		return PlanFullCapacity
	default:
		return PlanModifiedDuties
	}
}

// DaysSinceInjury returns whole days between the injury date and now, or 0
// when the injury date is unknown or in the future.
func DaysSinceInjury(injury, now time.Time) int {
	if injury.IsZero() || now.Before(injury) {
		return 0
	}
	return int(now.Sub(injury).Hours() / 24)
}

// ExpectedDurationWeeks estimates the plan length in weeks.
func ExpectedDurationWeeks(in PlanInput, now time.Time) int {
	weeks, ok := baseDurationWeeks[in.CurrentCapacity]
	if !ok {
		weeks = defaultBaseDurationWeeks
	}

	if mc := in.MedicalConstraints; mc != nil {
		if mc.NoLiftingOverKg != nil && *mc.NoLiftingOverKg < lowLiftingCeilingKg {
			weeks += 4
		}
		if mc.NoBending || mc.NoTwisting {
			weeks += 2
		}
	}

	if DaysSinceInjury(in.DateOfInjury, now) > lateReferralDays {
		weeks -= 2
	}

	if weeks < MinDurationWeeks {
		weeks = MinDurationWeeks
	}
	return weeks
}

// CurrentPhase maps the case's RTW plan status to a schedule phase.
func CurrentPhase(status RTWPlanStatus) Phase {
	switch status {
	case StatusCompleted, StatusWorkingWell:
		return PhaseFullDuties
	case StatusInProgress:
		return PhaseProgression
	default:
		return PhaseInitial
	}
}

// ConfidenceScore reflects how complete the input was, not how likely the
// plan is to succeed.
func ConfidenceScore(in PlanInput) float64 {
	score := 0.3
	if in.MedicalConstraints != nil {
		score += 0.2
	}
	if in.FunctionalCapacity != nil {
		score += 0.2
	}
	if in.CurrentCapacity != "" {
		score += 0.1
	}
	if in.CertificateEndDate != nil {
		score += 0.1
	}
	if in.SpecialistRecommendation != "" {
		score += 0.1
	}
	score = math.Round(score*100) / 100
	return math.Min(score, 1.0)
}
