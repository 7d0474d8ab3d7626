package postgres

import (
	"context"

	"github.com/baharkarakas/maverick-bank/internal/models"
)

type auditLogsRepo struct{ q DBTX }

func (r *auditLogsRepo) Create(ctx context.Context, l models.AuditLog) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO audit_logs(entity_type, entity_id, action, details) VALUES($1,$2,$3,$4)`,
		l.EntityType, l.EntityID, l.Action, l.Details,
	)
	return err
}
