package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	faceService "FaceVerify/internal/api/face/service"
	livenessService "FaceVerify/internal/api/liveness/service"
	"FaceVerify/internal/middleware"
	"FaceVerify/pkg/gemini"
	"FaceVerify/pkg/inference"
	"FaceVerify/pkg/openai"
	"FaceVerify/pkg/oracle"
	"FaceVerify/pkg/redis"
)

// EngineConfig is everything the server and the CLI read from the environment.
type EngineConfig struct {
	Port       string
	Face       faceService.Config
	Liveness   livenessService.Config
	Oracle     oracle.Config
	Inference  inference.Config
	Redis      redis.Config
	RateLimit  middleware.Config
	Dimensions int
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return i, nil
}

func getBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func LoadEngineConfig() (EngineConfig, error) {
	cfg := EngineConfig{
		Port: getEnv("APP_PORT", "3000"),
		Oracle: oracle.Config{
			Provider:     getEnv("ORACLE_PROVIDER", oracle.ProviderGemini),
			GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
			GeminiModel:  getEnv("GEMINI_MODEL_NAME", gemini.DefaultModel),
			OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
			OpenAIModel:  getEnv("OPENAI_VISION_MODEL", openai.DefaultModel),
		},
		Inference: inference.Config{
			DetectorURL: os.Getenv("AI_FACE_DETECTOR_URL"),
			EmbedderURL: os.Getenv("AI_FACE_EMBEDDER_URL"),
		},
		Redis: redis.Config{
			Address:  os.Getenv("REDIS_ADDRESS"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
	}

	var err error
	if cfg.Face.WarnConfidence, err = getFloat("FACE_DETECTION_WARN_CONFIDENCE", faceService.DefaultWarnConfidence); err != nil {
		return EngineConfig{}, err
	}
	if cfg.Face.MatchThreshold, err = getFloat("FACE_MATCH_DISTANCE_THRESHOLD", faceService.DefaultMatchThreshold); err != nil {
		return EngineConfig{}, err
	}
	if cfg.Face.InputSize, err = getInt("FACE_INPUT_SIZE", faceService.DefaultInputSize); err != nil {
		return EngineConfig{}, err
	}
	if cfg.Dimensions, err = getInt("EMBEDDING_DIMENSIONS", 512); err != nil {
		return EngineConfig{}, err
	}
	if cfg.Liveness.SessionTTL, err = getDuration("LIVENESS_SESSION_TTL", livenessService.DefaultSessionTTL); err != nil {
		return EngineConfig{}, err
	}
	if cfg.Liveness.IdentityBinding, err = getBool("LIVENESS_IDENTITY_BINDING", true); err != nil {
		return EngineConfig{}, err
	}
	if cfg.Redis.DB, err = getInt("REDIS_DB", 0); err != nil {
		return EngineConfig{}, err
	}
	if cfg.RateLimit.RequestsPerSecond, err = getFloat("RATE_LIMIT_RPS", 10); err != nil {
		return EngineConfig{}, err
	}
	if cfg.RateLimit.Burst, err = getInt("RATE_LIMIT_BURST", 20); err != nil {
		return EngineConfig{}, err
	}

	if cfg.Face.MatchThreshold <= 0 {
		return EngineConfig{}, fmt.Errorf("FACE_MATCH_DISTANCE_THRESHOLD must be positive, got %v", cfg.Face.MatchThreshold)
	}
	if cfg.Face.InputSize <= 0 {
		return EngineConfig{}, fmt.Errorf("FACE_INPUT_SIZE must be positive, got %d", cfg.Face.InputSize)
	}

	return cfg, nil
}
