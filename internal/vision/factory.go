package vision

import (
	"fmt"

	"github.com/moonsightlabs/moonsight/internal/config"
	"github.com/moonsightlabs/moonsight/internal/vision/moondream"
	"github.com/moonsightlabs/moonsight/internal/vision/ollama"
	"github.com/moonsightlabs/moonsight/internal/vision/openai"
	"github.com/moonsightlabs/moonsight/pkg/models"
)

// NewModel constructs the appropriate vision backend based on config.
// Called once at server startup.
func NewModel(cfg config.VisionConfig) (models.VisionModel, error) {
	device := models.DeviceInfo{
		Device:          cfg.Device,
		CUDAAvailable:   cfg.CUDADevices > 0,
		CUDADeviceCount: cfg.CUDADevices,
	}

	switch cfg.Backend {
	case "moondream":
		return moondream.NewModel(cfg.Moondream, device), nil
	case "ollama":
		return ollama.NewModel(cfg.Ollama, device), nil
	case "openai":
		return openai.NewModel(cfg.OpenAI, device), nil
	default:
		return nil, fmt.Errorf("unknown vision backend %q: must be one of moondream, ollama, openai", cfg.Backend)
	}
}
