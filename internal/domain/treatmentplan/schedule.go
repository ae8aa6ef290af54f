package treatmentplan

import (
	"fmt"
	"math"
	"sort"
	"time"
)

type phaseStep struct {
	phase       Phase
	fraction    float64
	description string
}

var graduatedSteps = []phaseStep{
	{PhaseInitial, 0.5, "Initial phase: reduced hours to rebuild work tolerance"},
	{PhaseProgression, 0.75, "Progression phase: increase hours as tolerated"},
	{PhaseConsolidation, 0.9, "Consolidation phase: near-full hours with restrictions maintained"},
	{PhaseFullDuties, 1.0, "Full duties: return to pre-injury hours subject to medical clearance"},
}

// targetHours returns the daily and weekly targets, defaulting to 8h x 5d.
func targetHours(fc *FunctionalCapacity) (hoursPerDay, daysPerWeek float64) {
	hoursPerDay, daysPerWeek = DefaultHoursPerDay, DefaultDaysPerWeek
	if fc == nil {
		return
	}
	if fc.MaxHoursPerDay != nil && *fc.MaxHoursPerDay > 0 {
		hoursPerDay = *fc.MaxHoursPerDay
	}
	if fc.MaxDaysPerWeek != nil && *fc.MaxDaysPerWeek > 0 {
		daysPerWeek = *fc.MaxDaysPerWeek
	}
	return
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// HoursProgression builds the weekly hours schedule. Graduated and modified
// plans get four phases at 50/75/90/100% of target; totals never decrease
// from one phase to the next.
func HoursProgression(planType PlanType, fc *FunctionalCapacity, expectedWeeks int) []HoursPhase {
	switch planType {
	case PlanFullCapacity:
		return []HoursPhase{{
			Phase:            PhaseFullDuties,
			StartWeek:        1,
			EndWeek:          expectedWeeks,
			HoursPerDay:      DefaultHoursPerDay,
			DaysPerWeek:      DefaultDaysPerWeek,
			TotalWeeklyHours: DefaultHoursPerDay * DefaultDaysPerWeek,
			Description:      "Full duties at normal hours",
		}}
	case PlanUnfitForWork:
		return []HoursPhase{{
			Phase:       PhaseInitial,
			StartWeek:   1,
			EndWeek:     expectedWeeks,
			Description: "Off work: focus on treatment and recovery until capacity is reassessed",
		}}
	}

	if expectedWeeks < 1 {
		expectedWeeks = 1
	}
	hoursPerDay, daysPerWeek := targetHours(fc)
	weeksPerPhase := ceilDiv(expectedWeeks, len(graduatedSteps))

	phases := make([]HoursPhase, 0, len(graduatedSteps))
	for k, step := range graduatedSteps {
		start := 1 + k*weeksPerPhase
		h := round1(hoursPerDay * step.fraction)
		phases = append(phases, HoursPhase{
			Phase:            step.phase,
			StartWeek:        start,
			EndWeek:          start + weeksPerPhase - 1,
			HoursPerDay:      h,
			DaysPerWeek:      daysPerWeek,
			TotalWeeklyHours: round1(h * daysPerWeek),
			Description:      step.description,
		})
	}
	return phases
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

const maxWeeklyReviews = 4

// ReviewMilestones schedules reviews relative to now and returns them sorted
// by date.
func ReviewMilestones(expectedWeeks int, certificateEnd *time.Time, now time.Time) []ReviewMilestone {
	base := startOfDay(now)
	weekDate := func(w int) time.Time { return base.AddDate(0, 0, 7*w) }

	var out []ReviewMilestone
	for w := 1; w <= expectedWeeks && w <= maxWeeklyReviews; w++ {
		out = append(out, ReviewMilestone{
			Date:        weekDate(w),
			Type:        MilestoneRTWReview,
			Description: fmt.Sprintf("Week %d return to work progress review", w),
			Week:        w,
		})
	}

	if certificateEnd != nil && !certificateEnd.IsZero() {
		out = append(out, ReviewMilestone{
			Date:        startOfDay(*certificateEnd).AddDate(0, 0, -7),
			Type:        MilestoneCertificateRenewal,
			Description: "Obtain a renewed certificate of capacity before the current one expires",
		})
	}

	mid := ceilDiv(expectedWeeks, 2)
	out = append(out, ReviewMilestone{
		Date:        weekDate(mid),
		Type:        MilestoneMedicalReview,
		Description: "Mid-plan medical review of capacity and restrictions",
		Week:        mid,
	})
	out = append(out, ReviewMilestone{
		Date:        weekDate(expectedWeeks),
		Type:        MilestoneFinalReview,
		Description: "Final medical review and clearance for full duties",
		Week:        expectedWeeks,
	})

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// NextReviewDate returns the earliest milestone dated today or later, or the
// latest milestone when all are in the past. milestones must be sorted.
func NextReviewDate(milestones []ReviewMilestone, now time.Time) *time.Time {
	if len(milestones) == 0 {
		return nil
	}
	today := startOfDay(now)
	for _, m := range milestones {
		if !m.Date.Before(today) {
			d := m.Date
			return &d
		}
	}
	d := milestones[len(milestones)-1].Date
	return &d
}
