package livenessService

import (
	"context"
	"time"

	faceService "FaceVerify/internal/api/face/service"
	livenessRepository "FaceVerify/internal/api/liveness/repository"
	"FaceVerify/internal/entity"
	"FaceVerify/pkg/oracle"

	"github.com/sirupsen/logrus"
)

const DefaultSessionTTL = 30 * time.Minute

type Config struct {
	SessionTTL time.Duration
	// IdentityBinding makes every session frame after the first match the
	// face captured for LOOK_STRAIGHT.
	IdentityBinding bool
}

// SessionStep is the outcome of submitting one frame to a session.
type SessionStep struct {
	Verdict  entity.LivenessVerdict
	Session  entity.LivenessSession
	Advanced bool
}

type ILivenessService interface {
	Verify(ctx context.Context, image []byte, challenge string) (entity.LivenessVerdict, error)
	CreateSession(ctx context.Context, reference []float64) (entity.LivenessSession, error)
	VerifySession(ctx context.Context, id string, image []byte, challenge string) (SessionStep, error)
	GetSession(ctx context.Context, id string) (entity.LivenessSession, error)
	DeleteSession(ctx context.Context, id string) error
	OracleProvider() string
}

type livenessService struct {
	oracle      oracle.IOracle
	faceService faceService.IFaceService
	repository  livenessRepository.Repository
	cfg         Config
	log         *logrus.Logger
	now         func() time.Time
}

// NewLivenessService accepts a nil oracle; Verify then reports the oracle as
// unavailable. The face service and repository are only needed by sessions.
func NewLivenessService(
	oracle oracle.IOracle,
	fs faceService.IFaceService,
	repository livenessRepository.Repository,
	cfg Config,
	log *logrus.Logger,
) ILivenessService {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}

	return &livenessService{
		oracle:      oracle,
		faceService: fs,
		repository:  repository,
		cfg:         cfg,
		log:         log,
		now:         time.Now,
	}
}

func (s *livenessService) OracleProvider() string {
	if s.oracle == nil {
		return "none"
	}
	return s.oracle.Provider()
}
