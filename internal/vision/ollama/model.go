// Package ollama implements models.VisionModel over the Ollama generate API
// using a multimodal model such as moondream or llava.
package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/moonsightlabs/moonsight/internal/config"
	"github.com/moonsightlabs/moonsight/pkg/models"
)

// captionPrompt stands in for a dedicated caption endpoint: Ollama only
// exposes free-form generation.
const captionPrompt = "Describe this image in one short sentence."

type Model struct {
	baseURL string
	model   string
	client  *http.Client
	device  models.DeviceInfo
}

func NewModel(cfg config.OllamaConfig, device models.DeviceInfo) *Model {
	return &Model{
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		client:  &http.Client{},
		device:  device,
	}
}

func (m *Model) Name() string { return "ollama" }

func (m *Model) Device() models.DeviceInfo { return m.device }

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Images  []string        `json:"images"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	NumPredict int `json:"num_predict,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (m *Model) Caption(ctx context.Context, image []byte) (string, error) {
	return m.generate(ctx, captionPrompt, image, 60)
}

func (m *Model) Query(ctx context.Context, image []byte, prompt string, maxNewTokens int) (string, error) {
	return m.generate(ctx, prompt, image, maxNewTokens)
}

func (m *Model) generate(ctx context.Context, prompt string, image []byte, numPredict int) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Model:   m.model,
		Prompt:  prompt,
		Images:  []string{base64.StdEncoding.EncodeToString(image)},
		Stream:  false,
		Options: generateOptions{NumPredict: numPredict},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slurp, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("ollama returned %d: %s", resp.StatusCode, slurp)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.Response == "" {
		return "", fmt.Errorf("ollama returned empty response")
	}
	return out.Response, nil
}

var _ models.VisionModel = (*Model)(nil)
