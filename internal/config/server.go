package config

import (
	"context"
	"fmt"
	"time"

	"FaceVerify/internal/api/face"
	faceHandler "FaceVerify/internal/api/face/handler"
	faceService "FaceVerify/internal/api/face/service"
	livenessHandler "FaceVerify/internal/api/liveness/handler"
	livenessRepository "FaceVerify/internal/api/liveness/repository"
	livenessService "FaceVerify/internal/api/liveness/service"
	"FaceVerify/internal/middleware"
	"FaceVerify/pkg/inference"
	"FaceVerify/pkg/oracle"
	"FaceVerify/pkg/redis"
	"FaceVerify/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine      *fiber.App
	log         *logrus.Logger
	middleware  middleware.Middleware
	validator   *validator.Validate
	utils       utils.IUtils
	handlers    []handler
	inference   inference.IInference
	oracle      oracle.IOracle
	redisServer redis.IRedis
	cfg         EngineConfig
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.middleware == nil {
		return nil, fmt.Errorf("middleware is required")
	}
	if server.inference == nil {
		return nil, fmt.Errorf("inference client is required")
	}
	if server.validator == nil {
		server.validator = NewValidator()
	}
	if server.utils == nil {
		server.utils = utils.New()
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithEngineConfig(cfg EngineConfig) ServerOption {
	return func(s *Server) error {
		s.cfg = cfg
		return nil
	}
}

func WithMiddleware(cfg middleware.Config) ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log, cfg)
		return nil
	}
}

func WithInference(client inference.IInference) ServerOption {
	return func(s *Server) error {
		s.inference = client
		return nil
	}
}

// WithOracle accepts a nil oracle; liveness endpoints then answer 503.
func WithOracle(o oracle.IOracle) ServerOption {
	return func(s *Server) error {
		s.oracle = o
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// Face Domain
	faceServices := faceService.NewFaceService(s.inference, s.cfg.Face, s.log)
	faceHandlers := faceHandler.New(s.log, s.validator, s.middleware, faceServices, s.utils)

	// Liveness Domain
	var sessionRepo livenessRepository.Repository
	if s.redisServer != nil {
		sessionRepo = livenessRepository.New(s.redisServer, s.log)
	} else {
		s.log.Warn("Redis not configured, liveness sessions are disabled")
		sessionRepo = livenessRepository.Unavailable()
	}
	livenessServices := livenessService.NewLivenessService(s.oracle, faceServices, sessionRepo, s.cfg.Liveness, s.log)
	livenessHandlers := livenessHandler.New(s.log, s.validator, s.middleware, livenessServices, s.utils)

	s.handlers = append(s.handlers, faceHandlers, livenessHandlers)
}

// Mount applies the global middleware and registers every handler under
// /api/v1. Run calls it; tests use it to drive the app without listening.
func (s *Server) Mount() {
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware)

	router := s.engine.Group("/api/v1")
	s.setupHealthCheck(router)

	for _, h := range s.handlers {
		h.Start(router)
	}
}

func (s *Server) Run() error {
	s.Mount()

	port := s.cfg.Port
	if port == "" {
		port = "3000"
	}

	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

// Shutdown stops accepting requests, then releases model and oracle
// connections.
func (s *Server) Shutdown(timeout time.Duration) error {
	err := s.engine.ShutdownWithTimeout(timeout)

	s.inference.CloseConnections()
	if s.oracle != nil {
		if cerr := s.oracle.Close(); cerr != nil {
			s.log.Warnf("Error closing oracle client: %v", cerr)
		}
	}
	if s.redisServer != nil {
		if cerr := s.redisServer.Close(); cerr != nil {
			s.log.Warnf("Error closing redis client: %v", cerr)
		}
	}

	return err
}

type healthResponse struct {
	Status     string          `json:"status"`
	Models     map[string]bool `json:"models"`
	Oracle     string          `json:"oracle"`
	Sessions   bool            `json:"sessions"`
	Dimensions int             `json:"dimensions"`
}

func (s *Server) setupHealthCheck(router fiber.Router) {
	router.Get("/health", func(ctx *fiber.Ctx) error {
		resp := healthResponse{
			Status: "ok",
			Models: map[string]bool{
				"detector": s.inference.IsConnected(inference.DetectorModel),
				"embedder": s.inference.IsConnected(inference.EmbedderModel),
			},
			Oracle:     "none",
			Dimensions: face.EmbeddingDimensions,
		}
		if s.oracle != nil {
			resp.Oracle = s.oracle.Provider() + "/" + s.oracle.ModelName()
		}
		if s.redisServer != nil {
			c, cancel := context.WithTimeout(ctx.UserContext(), time.Second)
			resp.Sessions = s.redisServer.Ping(c) == nil
			cancel()
		}
		if !resp.Models["detector"] || !resp.Models["embedder"] {
			resp.Status = "degraded"
		}
		return ctx.JSON(resp)
	})
}
