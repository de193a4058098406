// Package moondream implements models.VisionModel against a Moondream
// Station server (the local HTTP frontend for the moondream2 weights).
package moondream

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/moonsightlabs/moonsight/internal/config"
	"github.com/moonsightlabs/moonsight/pkg/models"
)

// Model talks to the Moondream Station HTTP API: POST /v1/caption and
// POST /v1/query, image passed inline as a base64 data URL.
type Model struct {
	baseURL string
	client  *http.Client
	device  models.DeviceInfo
}

func NewModel(cfg config.MoondreamConfig, device models.DeviceInfo) *Model {
	return &Model{
		baseURL: cfg.BaseURL,
		// Inference is synchronous and unbounded upstream; the transport
		// dial timeout still protects against a dead server.
		client: &http.Client{Transport: &http.Transport{
			ResponseHeaderTimeout: 0,
			IdleConnTimeout:       90 * time.Second,
		}},
		device: device,
	}
}

func (m *Model) Name() string { return "moondream" }

func (m *Model) Device() models.DeviceInfo { return m.device }

type captionRequest struct {
	ImageURL string `json:"image_url"`
	Length   string `json:"length"`
	Stream   bool   `json:"stream"`
}

type captionResponse struct {
	Caption string `json:"caption"`
}

type queryRequest struct {
	ImageURL string         `json:"image_url"`
	Question string         `json:"question"`
	Stream   bool           `json:"stream"`
	Settings *querySettings `json:"settings,omitempty"`
}

type querySettings struct {
	MaxTokens int `json:"max_tokens,omitempty"`
}

type queryResponse struct {
	Answer string `json:"answer"`
}

func (m *Model) Caption(ctx context.Context, image []byte) (string, error) {
	var out captionResponse
	err := m.post(ctx, "/v1/caption", captionRequest{
		ImageURL: dataURL(image),
		Length:   "short",
	}, &out)
	if err != nil {
		return "", err
	}
	if out.Caption == "" {
		return "", fmt.Errorf("moondream returned empty caption")
	}
	return out.Caption, nil
}

func (m *Model) Query(ctx context.Context, image []byte, prompt string, maxNewTokens int) (string, error) {
	req := queryRequest{
		ImageURL: dataURL(image),
		Question: prompt,
	}
	if maxNewTokens > 0 {
		req.Settings = &querySettings{MaxTokens: maxNewTokens}
	}

	var out queryResponse
	if err := m.post(ctx, "/v1/query", req, &out); err != nil {
		return "", err
	}
	if out.Answer == "" {
		return "", fmt.Errorf("moondream returned empty answer")
	}
	return out.Answer, nil
}

func (m *Model) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("moondream request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slurp, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("moondream %s returned %d: %s", path, resp.StatusCode, slurp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func dataURL(image []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image)
}

var _ models.VisionModel = (*Model)(nil)
