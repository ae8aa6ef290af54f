package clinicalstatus

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rtw/rtw/internal/domain/treatmentplan"
	"github.com/rtw/rtw/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func connFor(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

// decodeJSONB unmarshals a nullable JSONB column into a fresh *T.
func decodeJSONB[T any](raw []byte) (*T, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	v := new(T)
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, err
	}
	return v, nil
}

// =========== Case Repository ===========

type caseRepoPG struct{ pool *pgxpool.Pool }

func NewCaseRepoPG(pool *pgxpool.Pool) CaseRepository {
	return &caseRepoPG{pool: pool}
}

func (r *caseRepoPG) conn(ctx context.Context) queryable { return connFor(ctx, r.pool) }

const caseCols = `id, worker_name, date_of_injury, work_status, risk_level,
	compliance_indicator, rtw_plan_status, current_capacity, functional_capacity,
	medical_constraints, specialist_recommendation, has_ai_summary, closed,
	created_at, updated_at`

func (r *caseRepoPG) scanCase(row pgx.Row) (*Case, error) {
	var c Case
	var fc, mc []byte
	var capacity, status, specialist *string
	err := row.Scan(&c.ID, &c.WorkerName, &c.DateOfInjury, &c.WorkStatus, &c.RiskLevel,
		&c.ComplianceIndicator, &status, &capacity, &fc,
		&mc, &specialist, &c.HasAISummary, &c.Closed,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if status != nil {
		c.RTWPlanStatus = treatmentplan.RTWPlanStatus(*status)
	}
	if capacity != nil {
		c.CurrentCapacity = treatmentplan.WorkCapacity(*capacity)
	}
	if specialist != nil {
		c.SpecialistRecommendation = *specialist
	}
	if c.FunctionalCapacity, err = decodeJSONB[treatmentplan.FunctionalCapacity](fc); err != nil {
		return nil, fmt.Errorf("decode functional_capacity for case %s: %w", c.ID, err)
	}
	if c.MedicalConstraints, err = decodeJSONB[treatmentplan.MedicalConstraints](mc); err != nil {
		return nil, fmt.Errorf("decode medical_constraints for case %s: %w", c.ID, err)
	}
	return &c, nil
}

func (r *caseRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Case, error) {
	c, err := r.scanCase(r.conn(ctx).QueryRow(ctx, `SELECT `+caseCols+` FROM rtw_case WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCaseNotFound
	}
	return c, err
}

func (r *caseRepoPG) ListOpen(ctx context.Context) ([]*Case, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+caseCols+` FROM rtw_case WHERE NOT closed ORDER BY date_of_injury NULLS LAST, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Case
	for rows.Next() {
		c, err := r.scanCase(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// =========== Certificate Repository ===========

type certificateRepoPG struct{ pool *pgxpool.Pool }

func NewCertificateRepoPG(pool *pgxpool.Pool) CertificateRepository {
	return &certificateRepoPG{pool: pool}
}

func (r *certificateRepoPG) conn(ctx context.Context) queryable { return connFor(ctx, r.pool) }

const certCols = `id, case_id, capacity, start_date, end_date, restrictions, created_at`

func (r *certificateRepoPG) ListByCase(ctx context.Context, caseID uuid.UUID) ([]*Certificate, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+certCols+` FROM medical_certificate WHERE case_id = $1 ORDER BY start_date DESC, created_at DESC`, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Certificate
	for rows.Next() {
		var cert Certificate
		var raw []byte
		if err := rows.Scan(&cert.ID, &cert.CaseID, &cert.Capacity, &cert.StartDate, &cert.EndDate, &raw, &cert.CreatedAt); err != nil {
			return nil, err
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &cert.Restrictions); err != nil {
				return nil, fmt.Errorf("decode restrictions for certificate %s: %w", cert.ID, err)
			}
		}
		items = append(items, &cert)
	}
	return items, rows.Err()
}

// =========== Plan Repository ===========

type planRepoPG struct{ pool *pgxpool.Pool }

func NewPlanRepoPG(pool *pgxpool.Pool) PlanRepository {
	return &planRepoPG{pool: pool}
}

func (r *planRepoPG) conn(ctx context.Context) queryable { return connFor(ctx, r.pool) }

const planCols = `id, case_id, status, plan, created_at, superseded_at, superseded_by`

func (r *planRepoPG) scanPlan(row pgx.Row) (*StoredPlan, error) {
	var p StoredPlan
	var raw []byte
	if err := row.Scan(&p.ID, &p.CaseID, &p.Status, &raw, &p.CreatedAt, &p.SupersededAt, &p.SupersededBy); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &p.Plan); err != nil {
		return nil, fmt.Errorf("decode plan %s: %w", p.ID, err)
	}
	return &p, nil
}

func (r *planRepoPG) Supersede(ctx context.Context, p *StoredPlan) error {
	doc, err := json.Marshal(p.Plan)
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.Status = PlanActive

	return db.RunInTx(ctx, r.pool, func(ctx context.Context) error {
		if _, err := r.conn(ctx).Exec(ctx, `
			UPDATE treatment_plan SET status = $2, superseded_at = $3, superseded_by = $4
			WHERE case_id = $1 AND status = $5`,
			p.CaseID, PlanSuperseded, p.CreatedAt, p.ID, PlanActive); err != nil {
			return fmt.Errorf("supersede active plan: %w", err)
		}
		if _, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO treatment_plan (id, case_id, status, plan, created_at)
			VALUES ($1,$2,$3,$4,$5)`,
			p.ID, p.CaseID, p.Status, doc, p.CreatedAt); err != nil {
			return fmt.Errorf("insert plan: %w", err)
		}
		return nil
	})
}

func (r *planRepoPG) GetActive(ctx context.Context, caseID uuid.UUID) (*StoredPlan, error) {
	p, err := r.scanPlan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+planCols+` FROM treatment_plan WHERE case_id = $1 AND status = $2`, caseID, PlanActive))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoActivePlan
	}
	return p, err
}

func (r *planRepoPG) ListByCase(ctx context.Context, caseID uuid.UUID, limit, offset int) ([]*StoredPlan, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM treatment_plan WHERE case_id = $1`, caseID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+planCols+` FROM treatment_plan WHERE case_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		caseID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*StoredPlan
	for rows.Next() {
		p, err := r.scanPlan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
