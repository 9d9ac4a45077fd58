package main

import (
	livenessRepository "FaceVerify/internal/api/liveness/repository"
	livenessService "FaceVerify/internal/api/liveness/service"
	"FaceVerify/pkg/oracle"
)

// newLivenessVerifier builds a liveness service for one-shot checks. Sessions
// are not available from the CLI.
func newLivenessVerifier(o oracle.IOracle) livenessService.ILivenessService {
	return livenessService.NewLivenessService(o, nil, livenessRepository.Unavailable(), cfg.Liveness, logger)
}
