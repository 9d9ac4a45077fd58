package config

import (
	"testing"
	"time"
)

var engineEnv = []string{
	"APP_PORT", "FACE_DETECTION_WARN_CONFIDENCE", "FACE_MATCH_DISTANCE_THRESHOLD",
	"FACE_INPUT_SIZE", "EMBEDDING_DIMENSIONS", "LIVENESS_SESSION_TTL",
	"LIVENESS_IDENTITY_BINDING", "ORACLE_PROVIDER", "GEMINI_API_KEY",
	"GEMINI_MODEL_NAME", "OPENAI_API_KEY", "OPENAI_VISION_MODEL", "REDIS_ADDRESS",
	"REDIS_PASSWORD", "REDIS_DB", "AI_FACE_DETECTOR_URL", "AI_FACE_EMBEDDER_URL",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
}

func clearEngineEnv(t *testing.T) {
	t.Helper()
	for _, key := range engineEnv {
		t.Setenv(key, "")
	}
}

func TestLoadEngineConfigDefaults(t *testing.T) {
	clearEngineEnv(t)

	cfg, err := LoadEngineConfig()
	if err != nil {
		t.Fatalf("LoadEngineConfig() error = %v", err)
	}

	if cfg.Port != "3000" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.Face.WarnConfidence != 0.9 || cfg.Face.MatchThreshold != 1.0 || cfg.Face.InputSize != 160 {
		t.Errorf("Face = %+v", cfg.Face)
	}
	if cfg.Dimensions != 512 {
		t.Errorf("Dimensions = %d", cfg.Dimensions)
	}
	if cfg.Liveness.SessionTTL != 30*time.Minute || !cfg.Liveness.IdentityBinding {
		t.Errorf("Liveness = %+v", cfg.Liveness)
	}
	if cfg.Oracle.Provider != "gemini" || cfg.Oracle.GeminiModel != "gemini-flash-latest" || cfg.Oracle.OpenAIModel != "gpt-4o" {
		t.Errorf("Oracle = %+v", cfg.Oracle)
	}
	if cfg.Redis.Address != "" {
		t.Errorf("Redis.Address = %q, want empty so sessions are disabled", cfg.Redis.Address)
	}
	if cfg.RateLimit.RequestsPerSecond != 10 || cfg.RateLimit.Burst != 20 {
		t.Errorf("RateLimit = %+v", cfg.RateLimit)
	}
}

func TestLoadEngineConfigOverrides(t *testing.T) {
	clearEngineEnv(t)
	t.Setenv("APP_PORT", "8080")
	t.Setenv("FACE_MATCH_DISTANCE_THRESHOLD", "0.8")
	t.Setenv("FACE_INPUT_SIZE", "112")
	t.Setenv("LIVENESS_SESSION_TTL", "5m")
	t.Setenv("LIVENESS_IDENTITY_BINDING", "false")
	t.Setenv("ORACLE_PROVIDER", "openai")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("AI_FACE_DETECTOR_URL", "ws://localhost:8765/detect")

	cfg, err := LoadEngineConfig()
	if err != nil {
		t.Fatalf("LoadEngineConfig() error = %v", err)
	}

	if cfg.Port != "8080" || cfg.Face.MatchThreshold != 0.8 || cfg.Face.InputSize != 112 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Liveness.SessionTTL != 5*time.Minute || cfg.Liveness.IdentityBinding {
		t.Errorf("Liveness = %+v", cfg.Liveness)
	}
	if cfg.Oracle.Provider != "openai" || cfg.Redis.DB != 3 || cfg.Inference.DetectorURL != "ws://localhost:8765/detect" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadEngineConfigInvalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"FACE_MATCH_DISTANCE_THRESHOLD", "close"},
		{"FACE_MATCH_DISTANCE_THRESHOLD", "-1"},
		{"FACE_INPUT_SIZE", "0"},
		{"LIVENESS_SESSION_TTL", "30"},
		{"LIVENESS_IDENTITY_BINDING", "maybe"},
		{"RATE_LIMIT_BURST", "lots"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEngineEnv(t)
			t.Setenv(tt.key, tt.value)
			if _, err := LoadEngineConfig(); err == nil {
				t.Errorf("LoadEngineConfig() accepted %s=%q", tt.key, tt.value)
			}
		})
	}
}
