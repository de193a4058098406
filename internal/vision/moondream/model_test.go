package moondream_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/moonsightlabs/moonsight/internal/config"
	"github.com/moonsightlabs/moonsight/internal/vision/moondream"
	"github.com/moonsightlabs/moonsight/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testImage = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}

func newTestModel(t *testing.T, handler http.HandlerFunc) *moondream.Model {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return moondream.NewModel(config.MoondreamConfig{BaseURL: srv.URL}, models.DeviceInfo{Device: "cpu"})
}

func TestCaption_Success(t *testing.T) {
	m := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/caption", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "short", req["length"])
		assert.True(t, strings.HasPrefix(req["image_url"].(string), "data:image/jpeg;base64,"))

		json.NewEncoder(w).Encode(map[string]string{"caption": "a red bicycle leaning on a wall"})
	})

	caption, err := m.Caption(context.Background(), testImage)
	require.NoError(t, err)
	assert.Equal(t, "a red bicycle leaning on a wall", caption)
}

func TestQuery_Success(t *testing.T) {
	m := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/query", r.URL.Path)

		var req struct {
			Question string `json:"question"`
			Settings struct {
				MaxTokens int `json:"max_tokens"`
			} `json:"settings"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "What color is the bicycle?", req.Question)
		assert.Equal(t, 100, req.Settings.MaxTokens)

		json.NewEncoder(w).Encode(map[string]string{"answer": "Red."})
	})

	answer, err := m.Query(context.Background(), testImage, "What color is the bicycle?", 100)
	require.NoError(t, err)
	assert.Equal(t, "Red.", answer)
}

func TestCaption_ServerError(t *testing.T) {
	m := newTestModel(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model crashed", http.StatusInternalServerError)
	})

	_, err := m.Caption(context.Background(), testImage)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestQuery_EmptyAnswer(t *testing.T) {
	m := newTestModel(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"answer": ""})
	})

	_, err := m.Query(context.Background(), testImage, "anything?", 50)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty answer")
}

func TestCaption_ContextCancelled(t *testing.T) {
	m := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Caption(ctx, testImage)
	require.Error(t, err)
}

func TestName(t *testing.T) {
	m := moondream.NewModel(config.MoondreamConfig{}, models.DeviceInfo{Device: "cuda:0"})
	assert.Equal(t, "moondream", m.Name())
	assert.Equal(t, "cuda:0", m.Device().Device)
}
