// Package models contains shared data models used across the Moonsight codebase.
package models

import "context"

// VisionModel is the core interface that all vision-language backends must
// implement. Never call specific backends directly — always inject this
// interface.
type VisionModel interface {
	// Caption produces a short natural-language description of the image.
	// The image is a complete JPEG byte buffer.
	Caption(ctx context.Context, image []byte) (string, error)
	// Query answers a free-form question about the image. maxNewTokens
	// bounds the length of the generated answer.
	Query(ctx context.Context, image []byte, prompt string, maxNewTokens int) (string, error)
	// Name returns the backend identifier (e.g., "moondream", "ollama").
	Name() string
	// Device describes the compute device the backend runs on.
	Device() DeviceInfo
}

// DeviceInfo is a static descriptor of the model's compute device,
// captured once at startup.
type DeviceInfo struct {
	Device          string `json:"device"`
	CUDAAvailable   bool   `json:"cuda_available"`
	CUDADeviceCount int    `json:"cuda_device_count"`
}
