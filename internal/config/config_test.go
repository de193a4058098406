package config_test

import (
	"testing"
	"time"

	"github.com/moonsightlabs/moonsight/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setEnv is a helper that sets environment variables for a test and restores them after.
func setEnv(t *testing.T, env map[string]string) {
	t.Helper()
	for k, v := range env {
		t.Setenv(k, v)
	}
}

// validEnv returns the minimum set of valid environment variables.
func validEnv() map[string]string {
	return map[string]string{
		"MONGO_URI":      "mongodb://localhost:27017",
		"REDIS_URL":      "redis://localhost:6379",
		"VISION_BACKEND": "moondream",
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	setEnv(t, validEnv())

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, int64(32<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, "moonsight", cfg.Mongo.Database)
	assert.Equal(t, "image_analysis", cfg.Mongo.Collection)
	assert.Equal(t, 10*time.Second, cfg.Mongo.ConnectTimeout)
	assert.Equal(t, "redis://localhost:6379", cfg.Redis.URL)
	assert.Equal(t, "moondream", cfg.Vision.Backend)
	assert.Equal(t, "cpu", cfg.Vision.Device)
	assert.Equal(t, 0, cfg.Vision.CUDADevices)
}

func TestLoad_CustomPort(t *testing.T) {
	setEnv(t, validEnv())
	t.Setenv("MOONSIGHT_PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoad_InvalidPortFallsBack(t *testing.T) {
	setEnv(t, validEnv())
	t.Setenv("MOONSIGHT_PORT", "not-a-number")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Server.Port)
}

func TestLoad_MissingMongoURI(t *testing.T) {
	env := validEnv()
	delete(env, "MONGO_URI")
	setEnv(t, env)
	t.Setenv("MONGO_URI", "")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGO_URI")
}

func TestLoad_MissingRedisURL(t *testing.T) {
	setEnv(t, validEnv())
	t.Setenv("REDIS_URL", "")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_URL")
}

func TestLoad_MissingVisionBackend(t *testing.T) {
	setEnv(t, validEnv())
	t.Setenv("VISION_BACKEND", "")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VISION_BACKEND")
}

func TestLoad_UnknownVisionBackend(t *testing.T) {
	setEnv(t, validEnv())
	t.Setenv("VISION_BACKEND", "transformers")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VISION_BACKEND")
}

func TestLoad_OpenAIRequiresAPIKey(t *testing.T) {
	setEnv(t, validEnv())
	t.Setenv("VISION_BACKEND", "openai")
	t.Setenv("OPENAI_API_KEY", "")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestLoad_OpenAIWithAPIKey(t *testing.T) {
	setEnv(t, validEnv())
	t.Setenv("VISION_BACKEND", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Vision.Backend)
	assert.Equal(t, "sk-test", cfg.Vision.OpenAI.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.Vision.OpenAI.Model)
}

func TestLoad_NegativeMaxUploadBytes(t *testing.T) {
	setEnv(t, validEnv())
	t.Setenv("MAX_UPLOAD_BYTES", "-1")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAX_UPLOAD_BYTES")
}

func TestLoad_AllowedOriginsList(t *testing.T) {
	setEnv(t, validEnv())
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://staging.example.com")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://app.example.com", "https://staging.example.com"}, cfg.Server.AllowedOrigins)
}

func TestLoad_CUDADeviceDescriptor(t *testing.T) {
	setEnv(t, validEnv())
	t.Setenv("VISION_DEVICE", "cuda:0")
	t.Setenv("VISION_CUDA_DEVICES", "2")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "cuda:0", cfg.Vision.Device)
	assert.Equal(t, 2, cfg.Vision.CUDADevices)
}
