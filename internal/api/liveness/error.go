package liveness

import (
	"FaceVerify/pkg/response"
	"net/http"
)

var (
	ErrImageRequired        = response.NewCodedError(http.StatusBadRequest, "INPUT_INVALID", "image is required")
	ErrUnsupportedChallenge = response.NewCodedError(http.StatusBadRequest, "INPUT_INVALID", "challenge must be LOOK_STRAIGHT, BLINK, or TURN_LEFT")
	ErrOracleUnavailable    = response.NewCodedError(http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", "liveness oracle not configured")
	ErrSessionNotFound      = response.NewCodedError(http.StatusNotFound, "SESSION_NOT_FOUND", "liveness session not found")
	ErrSessionComplete      = response.NewCodedError(http.StatusConflict, "SESSION_COMPLETE", "liveness session already complete")
	ErrSessionStore         = response.NewCodedError(http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", "liveness session store unavailable")
)
