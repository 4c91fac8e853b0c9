package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"chromacast/internal/core/domain"
	"chromacast/internal/core/ports"
	"chromacast/internal/core/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSource struct {
	frames []*domain.RawFrame
	idx    int
}

func (s *stubSource) Start() error { return nil }

func (s *stubSource) WaitForFrame() (*domain.RawFrame, bool) {
	if s.idx >= len(s.frames) {
		return nil, false
	}
	f := s.frames[s.idx]
	s.idx++
	return f, true
}

func (s *stubSource) Stop() error { return nil }

type stubBroadcaster struct{ consumers int }

func (b *stubBroadcaster) Register(ports.Sink) uint64 { return 1 }
func (b *stubBroadcaster) Broadcast(string) int       { return b.consumers }
func (b *stubBroadcaster) Len() int                   { return b.consumers }
func (b *stubBroadcaster) Close()                     {}

func newPipeline(frames ...*domain.RawFrame) (*services.CapturePipeline, *stubBroadcaster) {
	broadcaster := &stubBroadcaster{consumers: 2}
	filter := services.NewChromaKeyFilter(domain.RedKey, services.DefaultChromaKeyConfig())
	pipeline := services.NewCapturePipeline(
		&stubSource{frames: frames}, filter, broadcaster, ports.NopCollector{}, zap.NewNop().Sugar())
	return pipeline, broadcaster
}

func newRouter(pipeline *services.CapturePipeline, broadcaster ports.Broadcaster) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewStatusHandler(pipeline, broadcaster).SetupRoutes(router)
	return router
}

func doGet(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	pipeline, broadcaster := newPipeline()
	router := newRouter(pipeline, broadcaster)

	w := doGet(router, "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestReady_BeforeFirstFrame(t *testing.T) {
	pipeline, broadcaster := newPipeline()
	router := newRouter(pipeline, broadcaster)

	w := doGet(router, "/ready")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestReady_AfterProcessingFrames(t *testing.T) {
	background := &domain.RawFrame{Width: 1, Height: 1, Data: []byte{0, 0, 0, 255}}
	current := &domain.RawFrame{Width: 1, Height: 1, Data: []byte{1, 2, 3, 4}}

	pipeline, broadcaster := newPipeline(background, current)
	require.NoError(t, pipeline.Run(context.Background()))

	router := newRouter(pipeline, broadcaster)

	w := doGet(router, "/ready")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStats(t *testing.T) {
	background := &domain.RawFrame{Width: 1, Height: 1, Data: []byte{0, 0, 0, 255}}
	current := &domain.RawFrame{Width: 1, Height: 1, Data: []byte{1, 2, 3, 4}}

	pipeline, broadcaster := newPipeline(background, current)
	require.NoError(t, pipeline.Run(context.Background()))

	router := newRouter(pipeline, broadcaster)

	w := doGet(router, "/stats")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Pipeline  services.PipelineStats `json:"pipeline"`
		Consumers int                    `json:"consumers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, uint64(1), body.Pipeline.FramesProcessed)
	assert.Equal(t, "red", body.Pipeline.FilterKind)
	assert.Equal(t, 2, body.Consumers)
}
