package treatmentplan

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var phaseLabels = map[Phase]string{
	PhaseInitial:       "initial",
	PhaseProgression:   "progression",
	PhaseConsolidation: "consolidation",
	PhaseFullDuties:    "full duties",
}

// Generate builds a treatment plan from in as of now. Missing optional fields
// fall back to defaults and lower the confidence score; Generate never fails.
func Generate(in PlanInput, now time.Time) TreatmentPlan {
	planType := ClassifyPlanType(in)
	weeks := ExpectedDurationWeeks(in, now)
	phase := CurrentPhase(in.RTWPlanStatus)
	suitable, unsuitable := TaskExamples(in, planType)
	milestones := ReviewMilestones(weeks, in.CertificateEndDate, now)

	return TreatmentPlan{
		ID:                    uuid.New(),
		CaseID:                in.CaseID,
		WorkerName:            in.WorkerName,
		GeneratedAt:           now,
		PlanType:              planType,
		Summary:               summarize(in, planType, weeks, phase),
		ExpectedDurationWeeks: weeks,
		ConfidenceScore:       ConfidenceScore(in),
		HoursProgression:      HoursProgression(planType, in.FunctionalCapacity, weeks),
		CurrentPhase:          phase,
		DutyModifications:     DutyModifications(in, planType),
		SuitableTasks:         suitable,
		UnsuitableTasks:       unsuitable,
		ReviewMilestones:      milestones,
		NextReviewDate:        NextReviewDate(milestones, now),
		WarningSignals:        WarningSignals(in, planType),
		SafetyConsiderations:  SafetyConsiderations(in, planType),
		RegulatoryNotes:       RegulatoryNotes(in, planType),
		Advisory:              true,
	}
}

func summarize(in PlanInput, planType PlanType, weeks int, phase Phase) string {
	worker := strings.TrimSpace(in.WorkerName)
	if worker == "" {
		worker = "the worker"
	}
	if planType == PlanUnfitForWork {
		return fmt.Sprintf("%s plan for %s. Currently unfit for work; capacity to be reassessed over an expected %d weeks.",
			planType.Label(), worker, weeks)
	}
	return fmt.Sprintf("%s plan for %s over an expected %d weeks, currently in the %s phase.",
		planType.Label(), worker, weeks, phaseLabels[phase])
}

// RegulatoryNotes lists compliance reminders attached to every plan.
func RegulatoryNotes(in PlanInput, planType PlanType) []string {
	notes := []string{
		"This plan is advisory only and requires review and sign-off by the treating practitioner and case manager before it is acted on.",
		"Duties offered must stay within the restrictions on the current certificate of capacity.",
	}
	if in.CertificateEndDate != nil && !in.CertificateEndDate.IsZero() {
		notes = append(notes, fmt.Sprintf("The current certificate of capacity expires on %s; a renewal must be obtained before that date.",
			in.CertificateEndDate.Format("2006-01-02")))
	} else {
		notes = append(notes, "No certificate end date is recorded; confirm a valid certificate of capacity is in place.")
	}
	if planType == PlanGraduatedRTW {
		notes = append(notes, "Hours should only increase to the next phase after a progress review.")
	}
	if rec := strings.TrimSpace(in.SpecialistRecommendation); rec != "" {
		notes = append(notes, "Specialist recommendation considered: "+rec)
	}
	return notes
}
