package repository

import (
	"context"
	"time"

	"case_coordination_service/internal/coordination/domain"
	"case_coordination_service/pkg/database"

	"github.com/go-redis/redis/v8"
)

const presenceKeyPrefix = "presence:user:"

// PresenceRepository best-effort snapshot of the in-memory presence registry.
// Callers log failures and carry on; the registry stays authoritative.
type PresenceRepository interface {
	Upsert(ctx context.Context, record domain.PresenceRecord) error
	Get(ctx context.Context, userID string) (domain.PresenceRecord, error)
}

type presenceRepository struct {
	repo database.RedisRepository[domain.PresenceRecord]
	ttl  time.Duration
}

// NewRedisPresenceRepository create a PresenceRepository over redis with a record TTL
func NewRedisPresenceRepository(client *redis.Client, ttl time.Duration) PresenceRepository {
	return &presenceRepository{
		repo: database.NewRedisRepository[domain.PresenceRecord](client),
		ttl:  ttl,
	}
}

func (r *presenceRepository) Upsert(ctx context.Context, record domain.PresenceRecord) error {
	return r.repo.Set(ctx, presenceKeyPrefix+record.UserID, record, r.ttl)
}

func (r *presenceRepository) Get(ctx context.Context, userID string) (domain.PresenceRecord, error) {
	return r.repo.Get(ctx, presenceKeyPrefix+userID)
}
