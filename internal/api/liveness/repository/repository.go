package livenessRepository

import (
	"context"
	"time"

	"FaceVerify/internal/api/liveness"
	"FaceVerify/internal/entity"
	"FaceVerify/pkg/redis"

	"github.com/sirupsen/logrus"
)

const sessionKeyPrefix = "liveness:session:"

type Repository interface {
	Create(ctx context.Context, session entity.LivenessSession, ttl time.Duration) error
	Get(ctx context.Context, id string) (entity.LivenessSession, error)
	Save(ctx context.Context, session entity.LivenessSession, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

type sessionRepository struct {
	redis redis.IRedis
	log   *logrus.Logger
}

func New(redis redis.IRedis, log *logrus.Logger) Repository {
	return &sessionRepository{
		redis: redis,
		log:   log,
	}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

type unavailableRepository struct{}

// Unavailable returns a Repository that fails every call with
// liveness.ErrSessionStore. It stands in when no Redis is configured.
func Unavailable() Repository {
	return unavailableRepository{}
}

func (unavailableRepository) Create(context.Context, entity.LivenessSession, time.Duration) error {
	return liveness.ErrSessionStore
}

func (unavailableRepository) Get(context.Context, string) (entity.LivenessSession, error) {
	return entity.LivenessSession{}, liveness.ErrSessionStore
}

func (unavailableRepository) Save(context.Context, entity.LivenessSession, time.Duration) error {
	return liveness.ErrSessionStore
}

func (unavailableRepository) Delete(context.Context, string) error {
	return liveness.ErrSessionStore
}
