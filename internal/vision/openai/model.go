// Package openai implements models.VisionModel over an OpenAI-compatible
// chat completion API with image inputs.
package openai

import (
	"context"
	"encoding/base64"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/moonsightlabs/moonsight/internal/config"
	"github.com/moonsightlabs/moonsight/pkg/models"
)

const captionInstruction = "Describe this image in one short sentence."

type Model struct {
	client *goopenai.Client
	model  string
	device models.DeviceInfo
}

func NewModel(cfg config.OpenAIConfig, device models.DeviceInfo) *Model {
	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Model{
		client: goopenai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		device: device,
	}
}

func (m *Model) Name() string { return "openai" }

func (m *Model) Device() models.DeviceInfo { return m.device }

func (m *Model) Caption(ctx context.Context, image []byte) (string, error) {
	return m.chat(ctx, captionInstruction, image, 60)
}

func (m *Model) Query(ctx context.Context, image []byte, prompt string, maxNewTokens int) (string, error) {
	return m.chat(ctx, prompt, image, maxNewTokens)
}

func (m *Model) chat(ctx context.Context, prompt string, image []byte, maxTokens int) (string, error) {
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image)

	resp, err := m.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:     m.model,
		MaxTokens: maxTokens,
		Messages: []goopenai.ChatCompletionMessage{
			{
				Role: goopenai.ChatMessageRoleUser,
				MultiContent: []goopenai.ChatMessagePart{
					{Type: goopenai.ChatMessagePartTypeText, Text: prompt},
					{
						Type: goopenai.ChatMessagePartTypeImageURL,
						ImageURL: &goopenai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: goopenai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

var _ models.VisionModel = (*Model)(nil)
