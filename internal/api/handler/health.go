package handler

import (
	"net/http"
	"time"

	"github.com/moonsightlabs/moonsight/internal/api/response"
	"github.com/moonsightlabs/moonsight/pkg/models"
)

// Readiness is the process-wide snapshot captured once at startup. Health
// requests read it as-is; no per-request I/O.
type Readiness struct {
	ModelLoaded    bool
	StoreConnected bool
	Device         models.DeviceInfo
}

type healthResponse struct {
	Status          string `json:"status"`
	ModelLoaded     bool   `json:"model_loaded"`
	Device          string `json:"device"`
	CUDAAvailable   bool   `json:"cuda_available"`
	CUDADeviceCount int    `json:"cuda_device_count"`
	MongoDBStatus   string `json:"mongodb_status"`
	Timestamp       string `json:"timestamp"`
}

// NewHealthHandler returns an http.HandlerFunc for GET /health. It never
// fails: degraded states are reported in the body with HTTP 200.
func NewHealthHandler(ready Readiness) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mongoStatus := "disconnected"
		if ready.StoreConnected {
			mongoStatus = "connected"
		}

		status := "degraded"
		if ready.ModelLoaded && ready.StoreConnected {
			status = "healthy"
		}

		response.OK(w, healthResponse{
			Status:          status,
			ModelLoaded:     ready.ModelLoaded,
			Device:          ready.Device.Device,
			CUDAAvailable:   ready.Device.CUDAAvailable,
			CUDADeviceCount: ready.Device.CUDADeviceCount,
			MongoDBStatus:   mongoStatus,
			Timestamp:       time.Now().UTC().Format(time.RFC3339),
		})
	}
}
