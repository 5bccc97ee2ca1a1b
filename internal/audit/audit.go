// Package audit writes the append-only trail of state transitions.
package audit

import (
	"context"

	"github.com/tonife/walletcore/internal/domain"
	"github.com/tonife/walletcore/internal/store"
)

type Recorder struct{}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record assigns an id and appends the entry through q, so entries written
// during a settlement commit or roll back with it.
func (r *Recorder) Record(ctx context.Context, q store.Querier, entry *domain.AuditLog) error {
	entry.ID = domain.NewID(domain.PrefixAuditLog)
	return q.InsertAuditLog(ctx, entry)
}

// SystemLog builds an entry attributed to the system actor.
func SystemLog(entityType domain.EntityType, entityID string, action domain.AuditAction, metadata map[string]any) *domain.AuditLog {
	return &domain.AuditLog{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		ActorType:  domain.ActorSystem,
		Metadata:   metadata,
	}
}
