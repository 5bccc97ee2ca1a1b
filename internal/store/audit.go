package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tonife/walletcore/internal/domain"
)

func (q *pgQuerier) InsertAuditLog(ctx context.Context, a *domain.AuditLog) error {
	var metadata []byte
	if a.Metadata != nil {
		var err error
		if metadata, err = json.Marshal(a.Metadata); err != nil {
			return fmt.Errorf("encoding audit metadata: %w", err)
		}
	}
	_, err := q.db.Exec(ctx,
		`INSERT INTO audit_logs (id, entity_type, entity_id, action, actor_type, actor_id, metadata, remark)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, NULLIF($8, ''))`,
		a.ID, a.EntityType, a.EntityID, a.Action, a.ActorType, a.ActorID, metadata, a.Remark)
	return mapInsertErr(err)
}

func (q *pgQuerier) ListAuditLogsByEntity(ctx context.Context, entityType domain.EntityType, entityID string) ([]domain.AuditLog, error) {
	rows, err := q.db.Query(ctx,
		`SELECT id, entity_type, entity_id, action, actor_type, COALESCE(actor_id, ''), metadata, COALESCE(remark, ''), created_at
		 FROM audit_logs WHERE entity_type = $1 AND entity_id = $2 ORDER BY created_at`,
		entityType, entityID)
	if err != nil {
		return nil, err
	}
	return collectAuditLogs(rows)
}

func collectAuditLogs(rows pgx.Rows) ([]domain.AuditLog, error) {
	defer rows.Close()

	var logs []domain.AuditLog
	for rows.Next() {
		var (
			a        domain.AuditLog
			metadata []byte
		)
		if err := rows.Scan(&a.ID, &a.EntityType, &a.EntityID, &a.Action, &a.ActorType,
			&a.ActorID, &metadata, &a.Remark, &a.CreatedAt); err != nil {
			return nil, err
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &a.Metadata); err != nil {
				return nil, fmt.Errorf("decoding audit metadata: %w", err)
			}
		}
		logs = append(logs, a)
	}
	return logs, rows.Err()
}
