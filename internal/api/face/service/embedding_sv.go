package faceService

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"

	"FaceVerify/internal/api/face"
	"FaceVerify/internal/entity"
	contextPkg "FaceVerify/pkg/context"
	"FaceVerify/pkg/imaging"
	"FaceVerify/pkg/log"
)

func (s *faceService) Extract(ctx context.Context, data []byte) (entity.EmbeddingResult, error) {
	img, err := s.decode(data)
	if err != nil {
		return entity.EmbeddingResult{}, err
	}
	return s.ExtractImage(ctx, img)
}

func (s *faceService) ExtractImage(ctx context.Context, img *image.RGBA) (entity.EmbeddingResult, error) {
	requestID := contextPkg.GetRequestID(ctx)

	region, err := s.Locate(ctx, img)
	if err != nil {
		if errors.Is(err, face.ErrFaceNotDetected) ||
			errors.Is(err, face.ErrUpstreamTimeout) ||
			errors.Is(err, face.ErrUpstreamUnavailable) {
			return entity.EmbeddingResult{}, err
		}
		return entity.EmbeddingResult{}, fmt.Errorf("%w: %v", face.ErrExtractionFailed, err)
	}

	lowQuality := region.Confidence < s.cfg.WarnConfidence
	if lowQuality {
		s.log.WithFields(log.Fields{
			"request_id": requestID,
			"confidence": region.Confidence,
			"threshold":  s.cfg.WarnConfidence,
		}).Warn("Low face detection confidence, continuing extraction")
	}

	crop, err := imaging.Crop(img, region.X, region.Y, region.Width, region.Height)
	if err != nil {
		return entity.EmbeddingResult{}, fmt.Errorf("%w: %v", face.ErrExtractionFailed, err)
	}

	tensor := entity.FaceTensor{
		Size: s.cfg.InputSize,
		Data: imaging.Standardize(imaging.Resize(crop, s.cfg.InputSize)),
	}

	raw, err := s.inference.Embed(ctx, tensor)
	if err != nil {
		return entity.EmbeddingResult{}, modelError(err, face.ErrExtractionFailed)
	}

	embedding, err := normalize(raw)
	if err != nil {
		return entity.EmbeddingResult{}, err
	}

	s.log.WithFields(log.Fields{
		"request_id": requestID,
		"confidence": region.Confidence,
		"dimensions": len(embedding),
	}).Debug("Face embedding extracted")

	return entity.EmbeddingResult{
		Embedding:  embedding,
		Region:     region,
		Confidence: region.Confidence,
		LowQuality: lowQuality,
	}, nil
}

// normalize scales the raw network output to unit length.
func normalize(raw []float32) (entity.Embedding, error) {
	if len(raw) != face.EmbeddingDimensions {
		return nil, fmt.Errorf("%w: network returned %d values", face.ErrExtractionFailed, len(raw))
	}

	var sq float64
	for _, v := range raw {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: network returned non-finite values", face.ErrExtractionFailed)
		}
		sq += f * f
	}
	norm := math.Sqrt(sq)
	if norm == 0 {
		return nil, fmt.Errorf("%w: network returned a zero vector", face.ErrExtractionFailed)
	}

	out := make(entity.Embedding, len(raw))
	for i, v := range raw {
		out[i] = float64(v) / norm
	}
	return out, nil
}
