package clinicalstatus

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrCaseNotFound = errors.New("case not found")
	ErrNoActivePlan = errors.New("no active treatment plan")
	ErrCaseClosed   = errors.New("case is closed")
	// ErrInvalidInput marks request values the engine cannot interpret.
	ErrInvalidInput = errors.New("invalid input")
)

type CaseRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Case, error)
	ListOpen(ctx context.Context) ([]*Case, error)
}

type CertificateRepository interface {
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]*Certificate, error)
}

type PlanRepository interface {
	// Supersede marks the case's active plan superseded by p and stores p as
	// the new active plan, atomically.
	Supersede(ctx context.Context, p *StoredPlan) error
	GetActive(ctx context.Context, caseID uuid.UUID) (*StoredPlan, error)
	ListByCase(ctx context.Context, caseID uuid.UUID, limit, offset int) ([]*StoredPlan, int, error)
}
