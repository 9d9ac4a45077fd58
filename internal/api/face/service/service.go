package faceService

import (
	"context"
	"errors"
	"fmt"
	"image"

	"FaceVerify/internal/api/face"
	"FaceVerify/internal/entity"
	"FaceVerify/pkg/inference"

	"github.com/sirupsen/logrus"
)

const (
	DefaultWarnConfidence = 0.9
	DefaultMatchThreshold = 1.0
	DefaultInputSize      = 160
)

type Config struct {
	// WarnConfidence flags extractions whose detector confidence falls below it.
	// It never rejects a face.
	WarnConfidence float64
	// MatchThreshold is the exclusive upper bound on euclidean distance for a match.
	MatchThreshold float64
	InputSize      int
}

func DefaultConfig() Config {
	return Config{
		WarnConfidence: DefaultWarnConfidence,
		MatchThreshold: DefaultMatchThreshold,
		InputSize:      DefaultInputSize,
	}
}

type IFaceService interface {
	Detect(ctx context.Context, data []byte) (entity.DetectionSummary, error)
	Locate(ctx context.Context, img *image.RGBA) (entity.FaceRegion, error)
	Extract(ctx context.Context, data []byte) (entity.EmbeddingResult, error)
	ExtractImage(ctx context.Context, img *image.RGBA) (entity.EmbeddingResult, error)
	Compare(a, b []float64) (entity.ComparisonResult, error)
}

type faceService struct {
	inference inference.IInference
	cfg       Config
	log       *logrus.Logger
}

func NewFaceService(
	inference inference.IInference,
	cfg Config,
	log *logrus.Logger,
) IFaceService {
	if cfg.InputSize <= 0 {
		cfg.InputSize = DefaultInputSize
	}
	if cfg.MatchThreshold <= 0 {
		cfg.MatchThreshold = DefaultMatchThreshold
	}
	if cfg.WarnConfidence <= 0 {
		cfg.WarnConfidence = DefaultWarnConfidence
	}

	return &faceService{
		inference: inference,
		cfg:       cfg,
		log:       log,
	}
}

// modelError keeps timeouts and unreachable models distinguishable and folds
// everything else into fallback.
func modelError(err error, fallback error) error {
	switch {
	case errors.Is(err, inference.ErrModelTimeout),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %v", face.ErrUpstreamTimeout, err)
	case errors.Is(err, inference.ErrModelUnavailable):
		return fmt.Errorf("%w: %v", face.ErrUpstreamUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", fallback, err)
	}
}
