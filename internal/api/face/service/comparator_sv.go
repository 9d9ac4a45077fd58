package faceService

import (
	"fmt"
	"math"

	"FaceVerify/internal/api/face"
	"FaceVerify/internal/entity"
)

func (s *faceService) Compare(a, b []float64) (entity.ComparisonResult, error) {
	return Compare(a, b, s.cfg.MatchThreshold)
}

// Compare scores two embeddings. The vectors are not assumed to be unit
// length, but both must be finite, non-zero and 512 long.
func Compare(a, b []float64, threshold float64) (entity.ComparisonResult, error) {
	if len(a) != face.EmbeddingDimensions || len(b) != face.EmbeddingDimensions {
		return entity.ComparisonResult{}, fmt.Errorf("%w: got %d and %d", face.ErrDimensionMismatch, len(a), len(b))
	}

	var dot, na, nb, sq float64
	for i := range a {
		x, y := a[i], b[i]
		if !finite(x) || !finite(y) {
			return entity.ComparisonResult{}, fmt.Errorf("%w: index %d", face.ErrInvalidEmbedding, i)
		}
		dot += x * y
		na += x * x
		nb += y * y
		d := x - y
		sq += d * d
	}
	if na == 0 || nb == 0 {
		return entity.ComparisonResult{}, fmt.Errorf("%w: zero vector", face.ErrInvalidEmbedding)
	}

	distance := math.Sqrt(sq)
	cosine := dot / (math.Sqrt(na) * math.Sqrt(nb))
	cosine = math.Max(-1, math.Min(1, cosine))

	return entity.ComparisonResult{
		Similarity:        (cosine + 1) / 2,
		CosineSimilarity:  cosine,
		EuclideanDistance: distance,
		Match:             distance < threshold,
	}, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
