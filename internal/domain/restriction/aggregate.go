package restriction

import (
	"math"
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
}

// ParseDate parses a certificate date. ok is false for empty or unparseable
// input.
func ParseDate(s string) (t time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Combine merges per-certificate restriction sets into one effective set using
// most-restrictive-wins. Each field is reduced independently:
//
//   - capabilities: highest priority present
//   - lifting/carrying max kg: minimum
//   - exercise/rest minutes per hour: maximum
//   - constraint duration weeks: minimum
//   - next examination date: earliest
//
// Empty input yields Default(); a single input is returned unchanged. The
// result does not depend on input order.
func Combine(sets []RestrictionSet) RestrictionSet {
	switch len(sets) {
	case 0:
		return Default()
	case 1:
		return sets[0]
	}

	var out RestrictionSet
	for _, d := range Dimensions {
		out.Set(d, mostRestrictive(sets, d))
	}

	out.LiftingMaxKg = reduceNumber(sets, func(r RestrictionSet) *float64 { return r.LiftingMaxKg }, math.Min)
	out.CarryingMaxKg = reduceNumber(sets, func(r RestrictionSet) *float64 { return r.CarryingMaxKg }, math.Min)
	out.ExerciseMinutesPerHour = reduceNumber(sets, func(r RestrictionSet) *float64 { return r.ExerciseMinutesPerHour }, math.Max)
	out.RestMinutesPerHour = reduceNumber(sets, func(r RestrictionSet) *float64 { return r.RestMinutesPerHour }, math.Max)
	out.ConstraintDurationWeeks = reduceNumber(sets, func(r RestrictionSet) *float64 { return r.ConstraintDurationWeeks }, math.Min)
	out.NextExaminationDate = earliestDate(sets)

	return out
}

// mostRestrictive returns the highest-priority capability recorded for d.
// Absent values are skipped; when every input is silent the axis is
// not_assessed.
func mostRestrictive(sets []RestrictionSet, d Dimension) Capability {
	best := NotAssessed
	for _, s := range sets {
		c := s.Get(d)
		if c == "" {
			continue
		}
		c = c.Normalize()
		if c.Priority() > best.Priority() {
			best = c
		}
	}
	return best
}

func reduceNumber(sets []RestrictionSet, field func(RestrictionSet) *float64, pick func(a, b float64) float64) *float64 {
	var acc *float64
	for _, s := range sets {
		v := field(s)
		if !usableNumber(v) {
			continue
		}
		if acc == nil {
			x := *v
			acc = &x
			continue
		}
		x := pick(*acc, *v)
		acc = &x
	}
	return acc
}

func usableNumber(v *float64) bool {
	if v == nil {
		return false
	}
	return !math.IsNaN(*v) && !math.IsInf(*v, 0) && *v >= 0
}

func earliestDate(sets []RestrictionSet) string {
	var (
		best   string
		bestAt time.Time
		found  bool
	)
	for _, s := range sets {
		at, ok := ParseDate(s.NextExaminationDate)
		if !ok {
			continue
		}
		raw := strings.TrimSpace(s.NextExaminationDate)
		switch {
		case !found, at.Before(bestAt):
			best, bestAt, found = raw, at, true
		case at.Equal(bestAt) && raw < best:
			best = raw
		}
	}
	return best
}

// AtLeastAsRestrictive reports whether every capability of a is at least as
// restrictive as the matching capability of b.
func AtLeastAsRestrictive(a, b RestrictionSet) bool {
	for _, d := range Dimensions {
		if a.Get(d).Priority() < b.Get(d).Priority() {
			return false
		}
	}
	return true
}
