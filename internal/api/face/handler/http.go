package faceHandler

import (
	faceService "FaceVerify/internal/api/face/service"
	"FaceVerify/internal/middleware"
	"FaceVerify/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type FaceHandler struct {
	log         *logrus.Logger
	validator   *validator.Validate
	middleware  middleware.Middleware
	faceService faceService.IFaceService
	utils       utils.IUtils
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	fs faceService.IFaceService,
	utils utils.IUtils,
) *FaceHandler {
	return &FaceHandler{
		faceService: fs,
		log:         log,
		validator:   validator,
		middleware:  middleware,
		utils:       utils,
	}
}

func (h *FaceHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	face := srv.Group("/face")
	face.Post("/detect", h.middleware.NewRateLimiter, h.HandleDetect)
	face.Post("/embedding", h.middleware.NewRateLimiter, h.HandleEmbedding)
	face.Post("/compare", h.HandleCompare)

	face.Use("/ws", wsMiddleware)
	face.Get("/ws", websocket.New(h.handleWebSocket))
}
