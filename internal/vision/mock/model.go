package mock

import (
	"context"

	"github.com/moonsightlabs/moonsight/pkg/models"
)

// MockModel satisfies models.VisionModel for testing.
type MockModel struct {
	Name_       string
	Device_     models.DeviceInfo
	CaptionFunc func(ctx context.Context, image []byte) (string, error)
	QueryFunc   func(ctx context.Context, image []byte, prompt string, maxNewTokens int) (string, error)
}

func (m *MockModel) Name() string { return m.Name_ }

func (m *MockModel) Device() models.DeviceInfo { return m.Device_ }

func (m *MockModel) Caption(ctx context.Context, image []byte) (string, error) {
	if m.CaptionFunc != nil {
		return m.CaptionFunc(ctx, image)
	}
	return "", nil
}

func (m *MockModel) Query(ctx context.Context, image []byte, prompt string, maxNewTokens int) (string, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, image, prompt, maxNewTokens)
	}
	return "", nil
}

// NewMockModel returns a MockModel with sensible default responses.
func NewMockModel() *MockModel {
	return &MockModel{
		Name_:   "mock",
		Device_: models.DeviceInfo{Device: "cpu"},
		CaptionFunc: func(_ context.Context, _ []byte) (string, error) {
			return "A mock caption of the image", nil
		},
		QueryFunc: func(_ context.Context, _ []byte, prompt string, _ int) (string, error) {
			return "Mock answer to: " + prompt, nil
		},
	}
}

// NewFailingModel returns a MockModel whose calls all fail with the given error.
func NewFailingModel(err error) *MockModel {
	return &MockModel{
		Name_: "mock-failing",
		CaptionFunc: func(_ context.Context, _ []byte) (string, error) {
			return "", err
		},
		QueryFunc: func(_ context.Context, _ []byte, _ string, _ int) (string, error) {
			return "", err
		},
	}
}

// Compile-time check that MockModel implements VisionModel.
var _ models.VisionModel = (*MockModel)(nil)
