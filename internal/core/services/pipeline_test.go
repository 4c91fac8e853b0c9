package services

import (
	"context"
	"testing"

	"chromacast/internal/core/domain"
	"chromacast/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeSource yields a fixed frame sequence, then end-of-stream.
type fakeSource struct {
	frames  []*domain.RawFrame
	idx     int
	started bool
	stopped bool
}

func (s *fakeSource) Start() error {
	s.started = true
	return nil
}

func (s *fakeSource) WaitForFrame() (*domain.RawFrame, bool) {
	if s.idx >= len(s.frames) {
		return nil, false
	}
	f := s.frames[s.idx]
	s.idx++
	return f, true
}

func (s *fakeSource) Stop() error {
	s.stopped = true
	return nil
}

// fakeBroadcaster records every payload handed to the fanout.
type fakeBroadcaster struct {
	payloads []string
	sinks    int
}

func (b *fakeBroadcaster) Register(ports.Sink) uint64 {
	b.sinks++
	return uint64(b.sinks)
}

func (b *fakeBroadcaster) Broadcast(payload string) int {
	b.payloads = append(b.payloads, payload)
	return b.sinks
}

func (b *fakeBroadcaster) Len() int { return b.sinks }
func (b *fakeBroadcaster) Close()   {}

func newTestPipeline(source ports.FrameSource, sink *fakeBroadcaster) *CapturePipeline {
	filter := NewChromaKeyFilter(domain.RedKey, DefaultChromaKeyConfig())
	return NewCapturePipeline(source, filter, sink, ports.NopCollector{}, zap.NewNop().Sugar())
}

// frame builds a RawFrame from wire-order (B,G,R,A) byte groups.
func frame(width, height uint32, data ...byte) *domain.RawFrame {
	return &domain.RawFrame{Width: width, Height: height, Data: data}
}

func TestRun_NoBackgroundFrame(t *testing.T) {
	source := &fakeSource{}
	sink := &fakeBroadcaster{}

	err := newTestPipeline(source, sink).Run(context.Background())

	assert.ErrorIs(t, err, domain.ErrNoBackgroundFrame)
	assert.True(t, source.stopped)
}

func TestRun_EndOfStreamIsNormalTermination(t *testing.T) {
	// Only the background frame: the loop sees end-of-stream immediately.
	source := &fakeSource{frames: []*domain.RawFrame{
		frame(1, 1, 0, 0, 0, 255),
	}}
	sink := &fakeBroadcaster{}

	err := newTestPipeline(source, sink).Run(context.Background())

	require.NoError(t, err)
	assert.Empty(t, sink.payloads)
}

func TestRun_FiltersAndBroadcasts(t *testing.T) {
	// Background: four black pixels (wire B,G,R,A = 0,0,0,255).
	background := frame(2, 2,
		0, 0, 0, 255,
		0, 0, 0, 255,
		0, 0, 0, 255,
		0, 0, 0, 255,
	)
	// Current frame: pixel 0 is strongly red (keyed, substituted),
	// pixel 1 has R=10 (out of key range, passed through), pixels 2 and 3
	// equal the background.
	current := frame(2, 2,
		25, 15, 200, 255,
		25, 15, 10, 255,
		0, 0, 0, 255,
		0, 0, 0, 255,
	)

	source := &fakeSource{frames: []*domain.RawFrame{background, current}}
	sink := &fakeBroadcaster{}
	pipeline := newTestPipeline(source, sink)

	err := pipeline.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, sink.payloads, 1)

	want := `{"width": 2,"height": 2,"encoding-order": "RGBA","image": [` +
		`0, 0, 0, 255, ` + // keyed pixel replaced by background
		`10, 15, 25, 255, ` + // passed through, R/B swapped on encode
		`0, 0, 0, 255, ` +
		`0, 0, 0, 255]}`
	assert.Equal(t, want, sink.payloads[0])

	stats := pipeline.Stats()
	assert.Equal(t, uint64(1), stats.FramesProcessed)
	assert.Equal(t, uint64(1), stats.PixelsKeyed)
	assert.Equal(t, "red", stats.FilterKind)
	assert.NotEmpty(t, stats.SessionID)
}

func TestRun_GeometryMismatchIsFatal(t *testing.T) {
	source := &fakeSource{frames: []*domain.RawFrame{
		frame(1, 1, 0, 0, 0, 255),
		frame(2, 1, 0, 0, 0, 255, 0, 0, 0, 255),
	}}
	sink := &fakeBroadcaster{}

	err := newTestPipeline(source, sink).Run(context.Background())

	assert.ErrorIs(t, err, domain.ErrGeometryMismatch)
}

func TestRun_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := &fakeSource{frames: []*domain.RawFrame{
		frame(1, 1, 0, 0, 0, 255),
		frame(1, 1, 1, 2, 3, 4),
	}}
	sink := &fakeBroadcaster{}

	err := newTestPipeline(source, sink).Run(ctx)

	require.NoError(t, err)
	assert.Empty(t, sink.payloads)
}
