package clinicalstatus

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rtw/rtw/internal/domain/prediction"
	"github.com/rtw/rtw/internal/domain/restriction"
	"github.com/rtw/rtw/internal/domain/treatmentplan"
	"github.com/rtw/rtw/internal/platform/events"
)

// DefaultPortfolioWorkers bounds concurrent certificate lookups during a
// portfolio prediction run.
const DefaultPortfolioWorkers = 8

// Service wires the pure engine packages to case storage. Every artifact is
// recomputed from stored case data on each call.
type Service struct {
	cases     CaseRepository
	certs     CertificateRepository
	plans     PlanRepository
	predictor *prediction.Predictor
	events    events.Publisher
	logger    zerolog.Logger
	now       func() time.Time
	workers   int
}

func NewService(cases CaseRepository, certs CertificateRepository, plans PlanRepository, predictor *prediction.Predictor, logger zerolog.Logger) *Service {
	if predictor == nil {
		predictor = prediction.Default()
	}
	return &Service{
		cases:     cases,
		certs:     certs,
		plans:     plans,
		predictor: predictor,
		events:    events.Nop{},
		logger:    logger.With().Str("component", "clinicalstatus").Logger(),
		now:       time.Now,
		workers:   DefaultPortfolioWorkers,
	}
}

// SetClock replaces the service clock.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// SetPortfolioWorkers sets the fan-out used by PredictPortfolio; n < 1 is
// ignored.
func (s *Service) SetPortfolioWorkers(n int) {
	if n >= 1 {
		s.workers = n
	}
}

// SetPublisher routes plan events to p.
func (s *Service) SetPublisher(p events.Publisher) {
	s.events = p
}

// publish is best effort: a failed notification never fails the operation.
func (s *Service) publish(ctx context.Context, typ string, caseID, planID uuid.UUID, data interface{}) {
	raw, err := json.Marshal(data)
	if err != nil {
		s.logger.Warn().Err(err).Str("type", typ).Msg("encode event")
		return
	}
	ev := events.Event{
		Type:      typ,
		Topic:     events.CaseTopic(caseID),
		CaseID:    caseID.String(),
		PlanID:    planID.String(),
		Timestamp: s.Now(),
		Data:      raw,
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger.Warn().Err(err).Str("type", typ).Str("case_id", caseID.String()).Msg("publish event")
	}
}

func (s *Service) Predictor() *prediction.Predictor { return s.predictor }

// Now returns the service clock's current time in UTC.
func (s *Service) Now() time.Time { return s.now().UTC() }

// loadCase fetches the case and its certificates concurrently.
func (s *Service) loadCase(ctx context.Context, caseID uuid.UUID) (*Case, []*Certificate, error) {
	var c *Case
	var certs []*Certificate

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		c, err = s.cases.GetByID(gctx, caseID)
		if err != nil {
			return fmt.Errorf("get case %s: %w", caseID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		certs, err = s.certs.ListByCase(gctx, caseID)
		if err != nil {
			return fmt.Errorf("list certificates for case %s: %w", caseID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return c, certs, nil
}

// activeCertificates returns the certificates in force on now, newest start
// date first.
func activeCertificates(certs []*Certificate, now time.Time) []*Certificate {
	var out []*Certificate
	for _, cert := range certs {
		if cert.ActiveOn(now) {
			out = append(out, cert)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return newer(out[i], out[j]) })
	return out
}

func newer(a, b *Certificate) bool {
	if !a.StartDate.Equal(b.StartDate) {
		return a.StartDate.After(b.StartDate)
	}
	return a.CreatedAt.After(b.CreatedAt)
}

func effective(caseID uuid.UUID, active []*Certificate, now time.Time) *EffectiveRestrictions {
	sets := make([]restriction.RestrictionSet, 0, len(active))
	ids := make([]uuid.UUID, 0, len(active))
	for _, cert := range active {
		sets = append(sets, cert.Restrictions)
		ids = append(ids, cert.ID)
	}
	combined := restriction.Combine(sets)
	return &EffectiveRestrictions{
		CaseID:             caseID,
		AsOf:               now,
		ActiveCertificates: ids,
		Restrictions:       combined,
		Dimensions:         combined.Values(),
		Constraints:        treatmentplan.ConstraintsFromRestrictions(combined),
	}
}

// EffectiveRestrictions aggregates the restrictions of every certificate in
// force today.
func (s *Service) EffectiveRestrictions(ctx context.Context, caseID uuid.UUID) (*EffectiveRestrictions, error) {
	_, certs, err := s.loadCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	return effective(caseID, activeCertificates(certs, now), now), nil
}

// PlanInputFor assembles the generator input for c. Constraints recorded on
// the case are merged most-restrictive-wins with those implied by the
// effective restriction set; the newest active certificate supplies the
// capacity and end date when the case has none.
func PlanInputFor(c *Case, certs []*Certificate, now time.Time) treatmentplan.PlanInput {
	active := activeCertificates(certs, now)
	eff := effective(c.ID, active, now)

	in := treatmentplan.PlanInput{
		CaseID:                   c.ID.String(),
		WorkerName:               c.WorkerName,
		MedicalConstraints:       treatmentplan.MergeConstraints(c.MedicalConstraints, eff.Constraints),
		FunctionalCapacity:       c.FunctionalCapacity,
		CurrentCapacity:          c.CurrentCapacity,
		RTWPlanStatus:            c.RTWPlanStatus,
		SpecialistRecommendation: c.SpecialistRecommendation,
	}
	if c.DateOfInjury != nil {
		in.DateOfInjury = *c.DateOfInjury
	}
	if len(active) > 0 {
		latest := active[0]
		if in.CurrentCapacity == "" {
			in.CurrentCapacity = latest.Capacity
		}
		in.CertificateEndDate = latest.EndDate
	}
	return in
}

// GeneratePlan builds a fresh treatment plan for the case and stores it as
// the active plan, superseding the previous one.
func (s *Service) GeneratePlan(ctx context.Context, caseID uuid.UUID) (*StoredPlan, error) {
	c, certs, err := s.loadCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c.Closed {
		return nil, fmt.Errorf("generate plan for case %s: %w", caseID, ErrCaseClosed)
	}

	now := s.Now()
	plan := treatmentplan.Generate(PlanInputFor(c, certs, now), now)
	sp := &StoredPlan{
		ID:        plan.ID,
		CaseID:    caseID,
		Status:    PlanActive,
		Plan:      plan,
		CreatedAt: now,
	}
	if err := s.plans.Supersede(ctx, sp); err != nil {
		return nil, fmt.Errorf("store plan for case %s: %w", caseID, err)
	}

	s.logger.Info().
		Str("case_id", caseID.String()).
		Str("plan_id", sp.ID.String()).
		Str("plan_type", string(plan.PlanType)).
		Float64("confidence", plan.ConfidenceScore).
		Int("expected_weeks", plan.ExpectedDurationWeeks).
		Msg("treatment plan generated")

	s.publish(ctx, events.TypePlanGenerated, caseID, sp.ID, map[string]interface{}{
		"planType":              plan.PlanType,
		"expectedDurationWeeks": plan.ExpectedDurationWeeks,
		"confidenceScore":       plan.ConfidenceScore,
	})
	return sp, nil
}

// PlanHistory lists stored plans for the case, newest first.
func (s *Service) PlanHistory(ctx context.Context, caseID uuid.UUID, limit, offset int) ([]*StoredPlan, int, error) {
	if _, err := s.cases.GetByID(ctx, caseID); err != nil {
		return nil, 0, fmt.Errorf("get case %s: %w", caseID, err)
	}
	plans, total, err := s.plans.ListByCase(ctx, caseID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list plans for case %s: %w", caseID, err)
	}
	return plans, total, nil
}

// ValidateActivePlan checks the active plan against the constraints the case
// carries today, which may be stricter than when the plan was generated.
func (s *Service) ValidateActivePlan(ctx context.Context, caseID uuid.UUID) (*SafetyReport, error) {
	c, certs, err := s.loadCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	sp, err := s.plans.GetActive(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("get active plan for case %s: %w", caseID, err)
	}

	now := s.Now()
	in := PlanInputFor(c, certs, now)
	v := treatmentplan.ValidatePlanSafety(sp.Plan, in.MedicalConstraints)
	if !v.Safe {
		s.logger.Warn().
			Str("case_id", caseID.String()).
			Str("plan_id", sp.ID.String()).
			Strs("issues", v.Issues).
			Msg("active plan conflicts with current constraints")
		s.publish(ctx, events.TypePlanUnsafe, caseID, sp.ID, v)
	}
	return &SafetyReport{CaseID: caseID, PlanID: sp.ID, CheckedAt: now, SafetyValidation: v}, nil
}

// SignalsFor maps a stored case onto predictor inputs.
func SignalsFor(c *Case, certs []*Certificate, now time.Time) prediction.CaseSignals {
	sig := prediction.CaseSignals{
		CaseID:              c.ID.String(),
		WorkerName:          c.WorkerName,
		WorkStatus:          c.WorkStatus,
		RiskLevel:           c.RiskLevel,
		ComplianceIndicator: c.ComplianceIndicator,
		HasCertificate:      len(activeCertificates(certs, now)) > 0,
		RTWPlanStatus:       c.RTWPlanStatus,
		HasAISummary:        c.HasAISummary,
	}
	if c.DateOfInjury != nil {
		sig.DateOfInjury = *c.DateOfInjury
	}
	return sig
}

func (s *Service) PredictCase(ctx context.Context, caseID uuid.UUID) (*prediction.CasePrediction, error) {
	c, certs, err := s.loadCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	p := s.predictor.Predict(SignalsFor(c, certs, now), now)

	s.logger.Debug().
		Str("case_id", caseID.String()).
		Int("rtw_probability", p.RTWProbability).
		Int("confidence", p.Confidence).
		Str("escalation_risk", string(p.EscalationRisk)).
		Msg("case prediction computed")
	return &p, nil
}

// PredictPortfolio predicts every open case. Certificate lookups run
// concurrently, bounded by the portfolio worker count; the result keeps the
// repository's case order.
func (s *Service) PredictPortfolio(ctx context.Context) (*Portfolio, error) {
	cases, err := s.cases.ListOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("list open cases: %w", err)
	}

	now := s.Now()
	preds := make([]prediction.CasePrediction, len(cases))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, c := range cases {
		i, c := i, c
		g.Go(func() error {
			certs, err := s.certs.ListByCase(gctx, c.ID)
			if err != nil {
				return fmt.Errorf("list certificates for case %s: %w", c.ID, err)
			}
			preds[i] = s.predictor.Predict(SignalsFor(c, certs, now), now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := prediction.Summarize(preds)
	s.logger.Info().
		Int("cases", summary.TotalCases).
		Float64("avg_rtw_probability", summary.AverageRTWProbability).
		Int("high_escalation_risk", summary.HighEscalationRiskCount).
		Msg("portfolio prediction computed")

	return &Portfolio{GeneratedAt: now, Predictions: preds, Summary: summary}, nil
}

// IsNotFound reports whether err means the case or its active plan does not
// exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCaseNotFound) || errors.Is(err, ErrNoActivePlan)
}
