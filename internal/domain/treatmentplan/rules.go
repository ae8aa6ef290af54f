package treatmentplan

import "fmt"

// Condition is one input fact that rule tables key on.
type Condition int

const (
	CondLiftingLimit Condition = iota
	CondNoBending
	CondNoTwisting
	CondNoProlongedStanding
	CondNoProlongedSitting
	CondNoDriving
	CondNoClimbing
	CondReducedHours
	CondReducedDays
	CondGraduatedPlan
	CondPlanFailing
)

var conditionNames = map[Condition]string{
	CondLiftingLimit:        "lifting_limit",
	CondNoBending:           "no_bending",
	CondNoTwisting:          "no_twisting",
	CondNoProlongedStanding: "no_prolonged_standing",
	CondNoProlongedSitting:  "no_prolonged_sitting",
	CondNoDriving:           "no_driving",
	CondNoClimbing:          "no_climbing",
	CondReducedHours:        "reduced_hours",
	CondReducedDays:         "reduced_days",
	CondGraduatedPlan:       "graduated_plan",
	CondPlanFailing:         "plan_failing",
}

func (c Condition) String() string {
	if n, ok := conditionNames[c]; ok {
		return n
	}
	return fmt.Sprintf("condition(%d)", int(c))
}

// Conditions is the set of facts that hold for one plan input.
type Conditions map[Condition]bool

func (cs Conditions) Has(c Condition) bool { return cs[c] }

// ruleContext carries the numeric values rule builders interpolate.
type ruleContext struct {
	liftKg   float64
	maxHours float64
	maxDays  float64
}

// ActiveConditions evaluates every condition once for in. The schedule
// conditions come from FunctionalCapacity and do not need MedicalConstraints.
func ActiveConditions(in PlanInput, planType PlanType) Conditions {
	cs := Conditions{}
	if mc := in.MedicalConstraints; mc != nil {
		cs[CondLiftingLimit] = mc.NoLiftingOverKg != nil
		cs[CondNoBending] = mc.NoBending
		cs[CondNoTwisting] = mc.NoTwisting
		cs[CondNoProlongedStanding] = mc.NoProlongedStanding
		cs[CondNoProlongedSitting] = mc.NoProlongedSitting
		cs[CondNoDriving] = mc.NoDriving
		cs[CondNoClimbing] = mc.NoClimbing
	}
	if fc := in.FunctionalCapacity; fc != nil {
		cs[CondReducedHours] = fc.MaxHoursPerDay != nil && *fc.MaxHoursPerDay < DefaultHoursPerDay
		cs[CondReducedDays] = fc.MaxDaysPerWeek != nil && *fc.MaxDaysPerWeek < DefaultDaysPerWeek
	}
	cs[CondGraduatedPlan] = planType == PlanGraduatedRTW
	cs[CondPlanFailing] = in.RTWPlanStatus == StatusFailing
	return cs
}

func newRuleContext(in PlanInput) ruleContext {
	rc := ruleContext{maxHours: DefaultHoursPerDay, maxDays: DefaultDaysPerWeek}
	if mc := in.MedicalConstraints; mc != nil && mc.NoLiftingOverKg != nil {
		rc.liftKg = *mc.NoLiftingOverKg
	}
	if fc := in.FunctionalCapacity; fc != nil {
		if fc.MaxHoursPerDay != nil {
			rc.maxHours = *fc.MaxHoursPerDay
		}
		if fc.MaxDaysPerWeek != nil {
			rc.maxDays = *fc.MaxDaysPerWeek
		}
	}
	return rc
}

type dutyRule struct {
	when  Condition
	build func(rc ruleContext) DutyModification
}

var dutyRules = []dutyRule{
	{CondLiftingLimit, func(rc ruleContext) DutyModification {
		return DutyModification{
			Category:     CategoryPhysical,
			Restriction:  fmt.Sprintf("No lifting over %gkg", rc.liftKg),
			Modification: fmt.Sprintf("Remove manual handling tasks above %gkg; use trolleys, mechanical aids or team lifts", rc.liftKg),
			Rationale:    "Limits load on the injured area while tissue heals",
		}
	}},
	{CondNoBending, func(ruleContext) DutyModification {
		return DutyModification{
			Category:     CategoryPhysical,
			Restriction:  "No bending",
			Modification: "Keep work between waist and shoulder height; raise materials off the floor",
			Rationale:    "Repeated flexion aggravates spinal and lower-limb injuries",
		}
	}},
	{CondNoTwisting, func(ruleContext) DutyModification {
		return DutyModification{
			Category:     CategoryPhysical,
			Restriction:  "No twisting",
			Modification: "Arrange the workstation so tasks are in front of the worker; use swivel chairs",
			Rationale:    "Rotational load under strain is a common cause of re-injury",
		}
	}},
	{CondNoProlongedStanding, func(ruleContext) DutyModification {
		return DutyModification{
			Category:     CategoryPhysical,
			Restriction:  "No prolonged standing",
			Modification: "Provide seated alternatives and allow a change of position at least every 30 minutes",
			Rationale:    "Sustained standing increases lower-limb and back loading",
		}
	}},
	{CondNoProlongedSitting, func(ruleContext) DutyModification {
		return DutyModification{
			Category:     CategoryPhysical,
			Restriction:  "No prolonged sitting",
			Modification: "Provide a sit-stand desk and schedule movement breaks",
			Rationale:    "Static sitting increases spinal loading and stiffness",
		}
	}},
	{CondNoDriving, func(ruleContext) DutyModification {
		return DutyModification{
			Category:     CategoryEnvironmental,
			Restriction:  "No driving",
			Modification: "Remove driving and vehicle operation from duties; arrange alternative transport for work travel",
			Rationale:    "Reaction time or range of motion may be impaired",
		}
	}},
	{CondNoClimbing, func(ruleContext) DutyModification {
		return DutyModification{
			Category:     CategoryEnvironmental,
			Restriction:  "No climbing",
			Modification: "Assign ground-level work only; no ladders, scaffolds or elevated platforms",
			Rationale:    "Reduces fall risk while balance and strength are limited",
		}
	}},
	{CondReducedHours, func(rc ruleContext) DutyModification {
		return DutyModification{
			Category:     CategorySchedule,
			Restriction:  fmt.Sprintf("Maximum %g hours per day", rc.maxHours),
			Modification: "Follow the graded hours schedule and do not roster beyond the daily cap",
			Rationale:    "Graded exposure builds work tolerance without flare-ups",
		}
	}},
	{CondReducedDays, func(rc ruleContext) DutyModification {
		return DutyModification{
			Category:     CategorySchedule,
			Restriction:  fmt.Sprintf("Maximum %g days per week", rc.maxDays),
			Modification: "Roster non-consecutive days where possible to allow recovery between shifts",
			Rationale:    "Recovery days reduce cumulative fatigue",
		}
	}},
	{CondPlanFailing, func(ruleContext) DutyModification {
		return DutyModification{
			Category:     CategoryMental,
			Restriction:  "Return to work plan is not progressing",
			Modification: "Hold weekly check-ins with supervisor and case manager; consider a psychosocial support referral",
			Rationale:    "Early support addresses barriers before absence becomes prolonged",
		}
	}},
}

// DutyModifications applies the duty rule table to in.
func DutyModifications(in PlanInput, planType PlanType) []DutyModification {
	cs := ActiveConditions(in, planType)
	rc := newRuleContext(in)
	out := []DutyModification{}
	for _, r := range dutyRules {
		if cs.Has(r.when) {
			out = append(out, r.build(rc))
		}
	}
	return out
}

var baseSuitableTasks = []string{
	"Administrative duties",
	"Phone/email communication",
	"Ergonomic computer work",
}

type taskRule struct {
	when  Condition
	build func(rc ruleContext) string
}

var unsuitableTaskRules = []taskRule{
	{CondLiftingLimit, func(rc ruleContext) string {
		return fmt.Sprintf("Manual handling of loads over %gkg", rc.liftKg)
	}},
	{CondNoBending, func(ruleContext) string { return "Floor-level work or tasks requiring repeated bending" }},
	{CondNoTwisting, func(ruleContext) string { return "Tasks requiring twisting while carrying or reaching" }},
	{CondNoProlongedStanding, func(ruleContext) string { return "Counter, line or retail work requiring prolonged standing" }},
	{CondNoProlongedSitting, func(ruleContext) string { return "Extended desk or data entry shifts without movement breaks" }},
	{CondNoDriving, func(ruleContext) string { return "Driving company vehicles or operating mobile plant" }},
	{CondNoClimbing, func(ruleContext) string { return "Ladder, scaffold or roof work" }},
}

// TaskExamples returns suitable and unsuitable task lists. Unsuitable tasks
// come only from active restriction flags.
func TaskExamples(in PlanInput, planType PlanType) (suitable, unsuitable []string) {
	cs := ActiveConditions(in, planType)
	rc := newRuleContext(in)

	suitable = append([]string{}, baseSuitableTasks...)
	if cs.Has(CondNoProlongedStanding) || cs.Has(CondNoProlongedSitting) {
		suitable = append(suitable, "Tasks that allow regular changes between sitting and standing")
	}
	if !cs.Has(CondNoDriving) && planType != PlanUnfitForWork {
		suitable = append(suitable, "Training, induction or mentoring of other staff")
	}

	unsuitable = []string{}
	for _, r := range unsuitableTaskRules {
		if cs.Has(r.when) {
			unsuitable = append(unsuitable, r.build(rc))
		}
	}
	return suitable, unsuitable
}

var standardWarningSignals = []WarningSignal{
	{
		Signal:              "Increased pain levels",
		Severity:            SeverityMedium,
		Action:              "Reduce duties to the previous phase and notify the treating practitioner",
		MonitoringFrequency: "daily",
	},
	{
		Signal:              "Inability to complete assigned tasks",
		Severity:            SeverityMedium,
		Action:              "Review task allocation with the supervisor and adjust duties",
		MonitoringFrequency: "weekly",
	},
	{
		Signal:              "New symptoms or injury",
		Severity:            SeverityHigh,
		Action:              "Stop the aggravating activity and arrange a medical review",
		MonitoringFrequency: "daily",
	},
	{
		Signal:              "Fatigue affecting work performance",
		Severity:            SeverityLow,
		Action:              "Adjust hours or add rest breaks",
		MonitoringFrequency: "weekly",
	},
}

type warningRule struct {
	when  Condition
	build func(rc ruleContext) WarningSignal
}

var warningRules = []warningRule{
	{CondGraduatedPlan, func(ruleContext) WarningSignal {
		return WarningSignal{
			Signal:              "Failure to progress through hours phases",
			Severity:            SeverityMedium,
			Action:              "Hold a case conference to review barriers and the plan timeline",
			MonitoringFrequency: "weekly",
		}
	}},
	{CondLiftingLimit, func(rc ruleContext) WarningSignal {
		return WarningSignal{
			Signal:              fmt.Sprintf("Lifting beyond the %gkg restriction", rc.liftKg),
			Severity:            SeverityHigh,
			Action:              "Stop the task immediately and remind the supervisor of the restriction",
			MonitoringFrequency: "daily",
		}
	}},
}

// WarningSignals returns the standard signals plus any conditional ones.
func WarningSignals(in PlanInput, planType PlanType) []WarningSignal {
	cs := ActiveConditions(in, planType)
	rc := newRuleContext(in)
	out := append([]WarningSignal{}, standardWarningSignals...)
	for _, r := range warningRules {
		if cs.Has(r.when) {
			out = append(out, r.build(rc))
		}
	}
	return out
}

var baseSafetyConsiderations = []string{
	"Supervisor is aware of all current restrictions",
	"Worker has a clear communication channel for reporting concerns",
	"Any incident or change in symptoms is documented promptly",
}

type safetyRule struct {
	when []Condition
	text string
}

var safetyRules = []safetyRule{
	{[]Condition{CondLiftingLimit}, "Lifting aids and mechanical assistance are available in the work area"},
	{[]Condition{CondNoProlongedStanding, CondNoProlongedSitting}, "Rest areas and sit-stand options are available"},
	{[]Condition{CondNoDriving}, "Transport arrangements are in place for travel to and during work"},
	{[]Condition{CondNoClimbing}, "Access to ladders and elevated work areas is restricted"},
}

// SafetyConsiderations returns the base list plus additions keyed by active
// restriction flags. A rule fires when any of its conditions holds.
func SafetyConsiderations(in PlanInput, planType PlanType) []string {
	cs := ActiveConditions(in, planType)
	out := append([]string{}, baseSafetyConsiderations...)
	for _, r := range safetyRules {
		for _, c := range r.when {
			if cs.Has(c) {
				out = append(out, r.text)
				break
			}
		}
	}
	return out
}
