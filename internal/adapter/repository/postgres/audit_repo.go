package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sgcerp/tajbilling/internal/domain"
	"github.com/sgcerp/tajbilling/internal/usecase"
)

// AuditRepository implements usecase.AuditRepository. Audit writes never
// fail a business operation; callers log and continue on error.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

const auditColumns = `
	id, actor, action, resource_type, resource_id, request_id,
	before_state, after_state, status, error_message, created_at`

// Create inserts an audit log entry.
func (r *AuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	return r.create(ctx, r.pool, log)
}

// CreateTx inserts an audit log entry within the caller's transaction, so a
// rolled-back operation leaves no success entry behind.
func (r *AuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	return r.create(ctx, txOf(tx), log)
}

func (r *AuditRepository) create(ctx context.Context, db dbtx, log *domain.AuditLog) error {
	beforeState, err := marshalJSONB(log.BeforeState)
	if err != nil {
		return err
	}
	afterState, err := marshalJSONB(log.AfterState)
	if err != nil {
		return err
	}

	_, err = db.Exec(ctx, `
		INSERT INTO audit_logs (`+auditColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		log.ID,
		log.Actor,
		log.Action,
		log.ResourceType,
		log.ResourceID,
		log.RequestID,
		beforeState,
		afterState,
		log.Status,
		log.ErrorMessage,
		timeToPgTimestamptz(log.CreatedAt),
	)
	return err
}

// List retrieves audit logs matching the filter, newest first.
func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filter.Actor != "" {
		args = append(args, filter.Actor)
		where += ` AND actor = ` + argn(len(args))
	}
	if filter.Action != "" {
		args = append(args, filter.Action)
		where += ` AND action = ` + argn(len(args))
	}
	if filter.ResourceType != "" {
		args = append(args, filter.ResourceType)
		where += ` AND resource_type = ` + argn(len(args))
	}
	if filter.ResourceID != "" {
		args = append(args, filter.ResourceID)
		where += ` AND resource_id = ` + argn(len(args))
	}
	if filter.StartDate != nil {
		args = append(args, timeToPgTimestamptz(*filter.StartDate))
		where += ` AND created_at >= ` + argn(len(args))
	}
	if filter.EndDate != nil {
		args = append(args, timeToPgTimestamptz(*filter.EndDate))
		where += ` AND created_at <= ` + argn(len(args))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = domain.DefaultPageSize
	}
	args = append(args, limit, filter.Offset)

	rows, err := r.pool.Query(ctx, `
		SELECT `+auditColumns+` FROM audit_logs`+where+`
		ORDER BY created_at DESC
		LIMIT `+argn(len(args)-1)+` OFFSET `+argn(len(args)), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAuditLogs(rows)
}

// GetByResourceID retrieves the audit trail for one resource, newest first.
func (r *AuditRepository) GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+auditColumns+` FROM audit_logs
		WHERE resource_type = $1 AND resource_id = $2
		ORDER BY created_at DESC`, resourceType, resourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAuditLogs(rows)
}

func scanAuditLogs(rows pgx.Rows) ([]*domain.AuditLog, error) {
	var out []*domain.AuditLog
	for rows.Next() {
		var log domain.AuditLog
		var beforeState, afterState []byte
		var createdAt pgtype.Timestamptz

		err := rows.Scan(
			&log.ID, &log.Actor, &log.Action, &log.ResourceType, &log.ResourceID,
			&log.RequestID, &beforeState, &afterState, &log.Status,
			&log.ErrorMessage, &createdAt,
		)
		if err != nil {
			return nil, err
		}

		log.BeforeState = unmarshalJSONB[domain.JSON](beforeState)
		log.AfterState = unmarshalJSONB[domain.JSON](afterState)
		log.CreatedAt = createdAt.Time
		out = append(out, &log)
	}
	return out, rows.Err()
}
