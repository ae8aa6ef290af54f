package treatmentplan

import (
	"math"
	"strings"

	"github.com/rtw/rtw/internal/domain/restriction"
)

// ConstraintsFromRestrictions maps an effective restriction set onto the
// boolean constraint flags the generator reads. It returns nil when the set
// carries no restriction at all.
func ConstraintsFromRestrictions(r restriction.RestrictionSet) *MedicalConstraints {
	mc := &MedicalConstraints{
		NoBending:           r.Bending.Restricted(),
		NoTwisting:          r.Twisting.Restricted(),
		NoProlongedStanding: r.StandingWalking.Restricted(),
		NoProlongedSitting:  r.Sitting.Restricted(),
		NoClimbing:          r.KneelingClimbing.Restricted(),
	}

	var ceiling *float64
	if r.Lifting == restriction.Cannot {
		zero := 0.0
		ceiling = &zero
	}
	if r.LiftingMaxKg != nil && (ceiling == nil || *r.LiftingMaxKg < *ceiling) {
		v := *r.LiftingMaxKg
		ceiling = &v
	}
	mc.NoLiftingOverKg = ceiling

	if ceiling == nil && !mc.NoBending && !mc.NoTwisting && !mc.NoProlongedStanding &&
		!mc.NoProlongedSitting && !mc.NoClimbing {
		return nil
	}
	return mc
}

// MergeConstraints combines two constraint records most-restrictive-wins.
// Either argument may be nil.
func MergeConstraints(a, b *MedicalConstraints) *MedicalConstraints {
	if a == nil && b == nil {
		return nil
	}
	if a == nil {
		c := *b
		return &c
	}
	if b == nil {
		c := *a
		return &c
	}

	out := &MedicalConstraints{
		NoBending:                a.NoBending || b.NoBending,
		NoTwisting:               a.NoTwisting || b.NoTwisting,
		NoProlongedStanding:      a.NoProlongedStanding || b.NoProlongedStanding,
		NoProlongedSitting:       a.NoProlongedSitting || b.NoProlongedSitting,
		NoDriving:                a.NoDriving || b.NoDriving,
		NoClimbing:               a.NoClimbing || b.NoClimbing,
		SuitableForLightDuties:   mergeSuitability(a.SuitableForLightDuties, b.SuitableForLightDuties),
		SuitableForModifiedHours: mergeSuitability(a.SuitableForModifiedHours, b.SuitableForModifiedHours),
	}

	switch {
	case a.NoLiftingOverKg != nil && b.NoLiftingOverKg != nil:
		v := math.Min(*a.NoLiftingOverKg, *b.NoLiftingOverKg)
		out.NoLiftingOverKg = &v
	case a.NoLiftingOverKg != nil:
		v := *a.NoLiftingOverKg
		out.NoLiftingOverKg = &v
	case b.NoLiftingOverKg != nil:
		v := *b.NoLiftingOverKg
		out.NoLiftingOverKg = &v
	}

	var notes []string
	for _, n := range []string{a.Notes, b.Notes} {
		if n = strings.TrimSpace(n); n != "" {
			notes = append(notes, n)
		}
	}
	out.Notes = strings.Join(notes, "; ")
	return out
}

// mergeSuitability keeps an explicit "not suitable" over anything else.
func mergeSuitability(a, b *bool) *bool {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		v := *b
		return &v
	case b == nil:
		v := *a
		return &v
	}
	v := *a && *b
	return &v
}
