package face

import "FaceVerify/internal/entity"

// ImageRequest is the JSON alternative to a multipart "image" upload.
type ImageRequest struct {
	ImageBase64 string `json:"image_base64" form:"image_base64" validate:"required"`
}

type DetectResponse struct {
	entity.DetectionSummary
	Message string `json:"message"`
}

type EmbeddingResponse struct {
	Embedding  entity.Embedding  `json:"embedding"`
	Dimensions int               `json:"dimensions"`
	Confidence float64           `json:"confidence"`
	Model      string            `json:"model"`
	Region     entity.FaceRegion `json:"region"`
	LowQuality bool              `json:"low_quality,omitempty"`
}

type CompareRequest struct {
	Embedding1 []float64 `json:"embedding1" validate:"required"`
	Embedding2 []float64 `json:"embedding2" validate:"required"`
}

type CompareResponse struct {
	entity.ComparisonResult
}

type StreamError struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

const (
	EmbeddingDimensions = 512
	EmbeddingModelName  = "facenet"
)
