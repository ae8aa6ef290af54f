package restriction

// Capability rates one axis of physical function on a certificate.
type Capability string

const (
	NotAssessed       Capability = "not_assessed"
	Can               Capability = "can"
	WithModifications Capability = "with_modifications"
	Cannot            Capability = "cannot"
)

var capabilityPriority = map[Capability]int{
	NotAssessed:       0,
	Can:               1,
	WithModifications: 2,
	Cannot:            3,
}

// Priority returns the restrictiveness rank of c. Unrecognised values rank as
// not_assessed.
func (c Capability) Priority() int {
	return capabilityPriority[c]
}

// Valid reports whether c is one of the four recognised capabilities.
func (c Capability) Valid() bool {
	_, ok := capabilityPriority[c]
	return ok
}

// Normalize maps unrecognised values to NotAssessed.
func (c Capability) Normalize() Capability {
	if !c.Valid() {
		return NotAssessed
	}
	return c
}

// Restricted reports whether c limits the worker in any way.
func (c Capability) Restricted() bool {
	return c == WithModifications || c == Cannot
}

// Dimension names one capability axis of a RestrictionSet.
type Dimension string

const (
	DimSitting             Dimension = "sitting"
	DimStandingWalking     Dimension = "standingWalking"
	DimBending             Dimension = "bending"
	DimSquatting           Dimension = "squatting"
	DimKneelingClimbing    Dimension = "kneelingClimbing"
	DimTwisting            Dimension = "twisting"
	DimReachingOverhead    Dimension = "reachingOverhead"
	DimReachingForward     Dimension = "reachingForward"
	DimNeckMovement        Dimension = "neckMovement"
	DimLifting             Dimension = "lifting"
	DimCarrying            Dimension = "carrying"
	DimPushing             Dimension = "pushing"
	DimPulling             Dimension = "pulling"
	DimRepetitiveMovements Dimension = "repetitiveMovements"
	DimUseInjuredLimb      Dimension = "useInjuredLimb"
)

// Dimensions lists every capability axis in display order.
var Dimensions = []Dimension{
	DimSitting, DimStandingWalking, DimBending, DimSquatting, DimKneelingClimbing,
	DimTwisting, DimReachingOverhead, DimReachingForward, DimNeckMovement,
	DimLifting, DimCarrying, DimPushing, DimPulling, DimRepetitiveMovements,
	DimUseInjuredLimb,
}

// RestrictionSet is the restriction snapshot carried by one certificate, and
// also the shape of the aggregated effective set. An empty Capability means the
// certificate said nothing about that axis; a nil number means unset.
type RestrictionSet struct {
	Sitting             Capability `json:"sitting,omitempty"`
	StandingWalking     Capability `json:"standingWalking,omitempty"`
	Bending             Capability `json:"bending,omitempty"`
	Squatting           Capability `json:"squatting,omitempty"`
	KneelingClimbing    Capability `json:"kneelingClimbing,omitempty"`
	Twisting            Capability `json:"twisting,omitempty"`
	ReachingOverhead    Capability `json:"reachingOverhead,omitempty"`
	ReachingForward     Capability `json:"reachingForward,omitempty"`
	NeckMovement        Capability `json:"neckMovement,omitempty"`
	Lifting             Capability `json:"lifting,omitempty"`
	Carrying            Capability `json:"carrying,omitempty"`
	Pushing             Capability `json:"pushing,omitempty"`
	Pulling             Capability `json:"pulling,omitempty"`
	RepetitiveMovements Capability `json:"repetitiveMovements,omitempty"`
	UseInjuredLimb      Capability `json:"useInjuredLimb,omitempty"`

	LiftingMaxKg            *float64 `json:"liftingMaxKg,omitempty"`
	CarryingMaxKg           *float64 `json:"carryingMaxKg,omitempty"`
	ExerciseMinutesPerHour  *float64 `json:"exerciseMinutesPerHour,omitempty"`
	RestMinutesPerHour      *float64 `json:"restMinutesPerHour,omitempty"`
	ConstraintDurationWeeks *float64 `json:"constraintDurationWeeks,omitempty"`

	// NextExaminationDate is an ISO-8601 date or timestamp as written on the
	// certificate.
	NextExaminationDate string `json:"nextExaminationDate,omitempty"`
}

// capabilityField returns a pointer to the field backing d.
func (r *RestrictionSet) capabilityField(d Dimension) *Capability {
	switch d {
	case DimSitting:
		return &r.Sitting
	case DimStandingWalking:
		return &r.StandingWalking
	case DimBending:
		return &r.Bending
	case DimSquatting:
		return &r.Squatting
	case DimKneelingClimbing:
		return &r.KneelingClimbing
	case DimTwisting:
		return &r.Twisting
	case DimReachingOverhead:
		return &r.ReachingOverhead
	case DimReachingForward:
		return &r.ReachingForward
	case DimNeckMovement:
		return &r.NeckMovement
	case DimLifting:
		return &r.Lifting
	case DimCarrying:
		return &r.Carrying
	case DimPushing:
		return &r.Pushing
	case DimPulling:
		return &r.Pulling
	case DimRepetitiveMovements:
		return &r.RepetitiveMovements
	case DimUseInjuredLimb:
		return &r.UseInjuredLimb
	}
	return nil
}

// Get returns the capability recorded for d, or "" when absent or unknown.
func (r RestrictionSet) Get(d Dimension) Capability {
	if f := r.capabilityField(d); f != nil {
		return *f
	}
	return ""
}

// Set records c for d. Unknown dimensions are ignored.
func (r *RestrictionSet) Set(d Dimension, c Capability) {
	if f := r.capabilityField(d); f != nil {
		*f = c
	}
}

// DimensionValue pairs a dimension with its recorded capability.
type DimensionValue struct {
	Dimension  Dimension  `json:"dimension"`
	Capability Capability `json:"capability"`
}

// Values lists every dimension in display order with absent values reported
// as not_assessed.
func (r RestrictionSet) Values() []DimensionValue {
	out := make([]DimensionValue, 0, len(Dimensions))
	for _, d := range Dimensions {
		c := r.Get(d)
		if c == "" {
			c = NotAssessed
		}
		out = append(out, DimensionValue{Dimension: d, Capability: c.Normalize()})
	}
	return out
}

// Default returns the set used when no certificate is available: every
// dimension not_assessed and every numeric field unset.
func Default() RestrictionSet {
	var r RestrictionSet
	for _, d := range Dimensions {
		r.Set(d, NotAssessed)
	}
	return r
}
