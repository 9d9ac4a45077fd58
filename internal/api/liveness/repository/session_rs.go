package livenessRepository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FaceVerify/internal/api/liveness"
	"FaceVerify/internal/entity"
	contextPkg "FaceVerify/pkg/context"
	"FaceVerify/pkg/redis"

	"github.com/sirupsen/logrus"
)

func (r *sessionRepository) Create(ctx context.Context, session entity.LivenessSession, ttl time.Duration) error {
	created, err := r.redis.CreateJSON(ctx, sessionKey(session.ID), session, ttl)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"session_id": session.ID,
			"error":      err.Error(),
		}).Error("Failed to create liveness session")
		return fmt.Errorf("%w: %v", liveness.ErrSessionStore, err)
	}
	if !created {
		return fmt.Errorf("%w: session id %s already in use", liveness.ErrSessionStore, session.ID)
	}
	return nil
}

func (r *sessionRepository) Get(ctx context.Context, id string) (entity.LivenessSession, error) {
	var session entity.LivenessSession
	err := r.redis.GetJSON(ctx, sessionKey(id), &session)
	if errors.Is(err, redis.ErrNotFound) {
		return entity.LivenessSession{}, liveness.ErrSessionNotFound
	}
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"session_id": id,
			"error":      err.Error(),
		}).Error("Failed to load liveness session")
		return entity.LivenessSession{}, fmt.Errorf("%w: %v", liveness.ErrSessionStore, err)
	}
	return session, nil
}

// Save overwrites an existing session. A session that expired in the meantime
// is not resurrected.
func (r *sessionRepository) Save(ctx context.Context, session entity.LivenessSession, ttl time.Duration) error {
	if ttl <= 0 {
		return liveness.ErrSessionNotFound
	}

	replaced, err := r.redis.ReplaceJSON(ctx, sessionKey(session.ID), session, ttl)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"session_id": session.ID,
			"error":      err.Error(),
		}).Error("Failed to save liveness session")
		return fmt.Errorf("%w: %v", liveness.ErrSessionStore, err)
	}
	if !replaced {
		return liveness.ErrSessionNotFound
	}
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	deleted, err := r.redis.Delete(ctx, sessionKey(id))
	if err != nil {
		return fmt.Errorf("%w: %v", liveness.ErrSessionStore, err)
	}
	if !deleted {
		return liveness.ErrSessionNotFound
	}
	return nil
}
