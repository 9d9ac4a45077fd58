package faceService

import (
	"context"
	"fmt"
	"image"

	"FaceVerify/internal/api/face"
	"FaceVerify/internal/entity"
	contextPkg "FaceVerify/pkg/context"
	"FaceVerify/pkg/imaging"
	"FaceVerify/pkg/log"
)

func (s *faceService) decode(data []byte) (*image.RGBA, error) {
	if len(data) == 0 {
		return nil, face.ErrImageRequired
	}
	img, err := imaging.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", face.ErrInvalidImage, err)
	}
	return img, nil
}

func (s *faceService) Detect(ctx context.Context, data []byte) (entity.DetectionSummary, error) {
	img, err := s.decode(data)
	if err != nil {
		return entity.DetectionSummary{}, err
	}

	candidates, err := s.inference.DetectFaces(ctx, img)
	if err != nil {
		return entity.DetectionSummary{}, modelError(err, face.ErrInternalModelFailure)
	}

	summary := entity.DetectionSummary{
		FaceDetected: len(candidates) > 0,
		NumFaces:     len(candidates),
	}
	if best, ok := bestCandidate(candidates); ok {
		summary.Confidence = best.Confidence
	}

	s.log.WithFields(log.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"num_faces":  summary.NumFaces,
		"confidence": summary.Confidence,
	}).Debug("Face detection finished")

	return summary, nil
}

func (s *faceService) Locate(ctx context.Context, img *image.RGBA) (entity.FaceRegion, error) {
	candidates, err := s.inference.DetectFaces(ctx, img)
	if err != nil {
		return entity.FaceRegion{}, modelError(err, face.ErrInternalModelFailure)
	}

	best, ok := bestCandidate(candidates)
	if !ok {
		return entity.FaceRegion{}, face.ErrFaceNotDetected
	}

	r := imaging.ClampRect(best.X, best.Y, best.Width, best.Height, img.Bounds())
	if r.Empty() {
		return entity.FaceRegion{}, fmt.Errorf("%w: region outside image", face.ErrFaceNotDetected)
	}

	return entity.FaceRegion{
		X:          r.Min.X,
		Y:          r.Min.Y,
		Width:      r.Dx(),
		Height:     r.Dy(),
		Confidence: best.Confidence,
	}, nil
}

// bestCandidate returns the highest confidence candidate. On ties the first
// one in detector order wins.
func bestCandidate(candidates []entity.FaceCandidate) (entity.FaceCandidate, bool) {
	if len(candidates) == 0 {
		return entity.FaceCandidate{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Confidence > best.Confidence {
			best = c
		}
	}
	return best, true
}
