package livenessHandler

import (
	livenessService "FaceVerify/internal/api/liveness/service"
	"FaceVerify/internal/middleware"
	"FaceVerify/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type LivenessHandler struct {
	log             *logrus.Logger
	validator       *validator.Validate
	middleware      middleware.Middleware
	livenessService livenessService.ILivenessService
	utils           utils.IUtils
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	ls livenessService.ILivenessService,
	utils utils.IUtils,
) *LivenessHandler {
	return &LivenessHandler{
		log:             log,
		validator:       validator,
		middleware:      middleware,
		livenessService: ls,
		utils:           utils,
	}
}

func (h *LivenessHandler) Start(srv fiber.Router) {
	liveness := srv.Group("/liveness")
	liveness.Post("/verify", h.middleware.NewRateLimiter, h.HandleVerify)

	liveness.Post("/sessions", h.HandleCreateSession)
	liveness.Post("/sessions/:id/verify", h.middleware.NewRateLimiter, h.HandleVerifySession)
	liveness.Get("/sessions/:id", h.HandleGetSession)
	liveness.Delete("/sessions/:id", h.HandleDeleteSession)
}
