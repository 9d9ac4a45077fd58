package face

import (
	"FaceVerify/pkg/response"
	"net/http"
)

var (
	ErrImageRequired        = response.NewCodedError(http.StatusBadRequest, "INPUT_INVALID", "image is required")
	ErrInvalidImage         = response.NewCodedError(http.StatusBadRequest, "INPUT_INVALID", "image could not be decoded")
	ErrInvalidEmbedding     = response.NewCodedError(http.StatusBadRequest, "INPUT_INVALID", "embedding contains non-finite or all-zero values")
	ErrDimensionMismatch    = response.NewCodedError(http.StatusBadRequest, "DIMENSION_MISMATCH", "embeddings must have 512 dimensions")
	ErrFaceNotDetected      = response.NewCodedError(http.StatusBadRequest, "FACE_NOT_DETECTED", "no face detected in image")
	ErrUpstreamUnavailable  = response.NewCodedError(http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", "face model service unavailable")
	ErrUpstreamTimeout      = response.NewCodedError(http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT", "face model service timed out")
	ErrExtractionFailed     = response.NewCodedError(http.StatusInternalServerError, "EXTRACTION_FAILED", "failed to extract face embedding")
	ErrInternalModelFailure = response.NewCodedError(http.StatusInternalServerError, "INTERNAL_MODEL_FAILURE", "face model failed")
)
