package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"chromacast/internal/core/domain"
	"chromacast/internal/core/ports"
	"chromacast/pkg/utils"

	"go.uber.org/zap"
)

// CapturePipeline runs the frame loop: pull, decode, filter against the
// one-time background frame, encode, serialize, broadcast. It is the
// single producer into the registry's broadcast path; the accept side
// inserts sinks concurrently under the registry's own lock.
type CapturePipeline struct {
	source   ports.FrameSource
	codec    *PixelCodec
	filter   *ChromaKeyFilter
	registry ports.Broadcaster
	metrics  ports.Collector
	logger   *zap.SugaredLogger

	sessionID string
	startedAt time.Time

	// Read by the status API while the loop is running.
	framesProcessed atomic.Uint64
	pixelsKeyed     atomic.Uint64
}

// PipelineStats is a point-in-time snapshot for the status API.
type PipelineStats struct {
	SessionID       string    `json:"session_id"`
	FilterKind      string    `json:"filter_kind"`
	FramesProcessed uint64    `json:"frames_processed"`
	PixelsKeyed     uint64    `json:"pixels_keyed"`
	StartedAt       time.Time `json:"started_at"`
}

func NewCapturePipeline(
	source ports.FrameSource,
	filter *ChromaKeyFilter,
	registry ports.Broadcaster,
	metrics ports.Collector,
	logger *zap.SugaredLogger,
) *CapturePipeline {
	return &CapturePipeline{
		source:    source,
		codec:     NewPixelCodec(),
		filter:    filter,
		registry:  registry,
		metrics:   metrics,
		logger:    logger,
		sessionID: utils.GenerateSessionID(),
		startedAt: time.Now(),
	}
}

// Run starts the source, captures the background frame, then processes
// frames until the source reports end-of-stream (normal return) or ctx is
// cancelled. A missing background frame and a geometry mismatch are fatal
// and surface as errors for the process boundary to act on.
func (p *CapturePipeline) Run(ctx context.Context) error {
	if err := p.source.Start(); err != nil {
		return fmt.Errorf("starting capture source: %w", err)
	}
	defer p.source.Stop()

	first, ok := p.source.WaitForFrame()
	if !ok {
		return domain.ErrNoBackgroundFrame
	}
	background := p.codec.Decode(first.Data)

	p.logger.Infow("background frame captured",
		"session_id", p.sessionID,
		"width", first.Width,
		"height", first.Height,
		"pixels", first.PixelCount(),
		"filter", p.filter.Kind().String(),
	)

	for {
		select {
		case <-ctx.Done():
			p.logger.Infow("capture pipeline stopping", "session_id", p.sessionID)
			return nil
		default:
		}

		frame, ok := p.source.WaitForFrame()
		if !ok {
			p.logger.Infow("capture source ended",
				"session_id", p.sessionID,
				"frames_processed", p.framesProcessed.Load(),
			)
			return nil
		}

		if err := p.process(frame, background); err != nil {
			return err
		}
	}
}

func (p *CapturePipeline) process(frame *domain.RawFrame, background []domain.Pixel) error {
	started := time.Now()
	p.metrics.FrameCaptured()

	current := p.codec.Decode(frame.Data)
	filtered, keyed, err := p.filter.Apply(background, current)
	if err != nil {
		return err
	}

	payload := BuildPayload(frame.Width, frame.Height, p.codec.Encode(filtered))
	delivered := p.registry.Broadcast(payload)

	p.framesProcessed.Add(1)
	p.pixelsKeyed.Add(uint64(keyed))
	p.metrics.PixelsKeyed(keyed)
	p.metrics.FrameBroadcast(delivered, len(payload), time.Since(started))

	return nil
}

// Stats returns a snapshot of the pipeline counters.
func (p *CapturePipeline) Stats() PipelineStats {
	return PipelineStats{
		SessionID:       p.sessionID,
		FilterKind:      p.filter.Kind().String(),
		FramesProcessed: p.framesProcessed.Load(),
		PixelsKeyed:     p.pixelsKeyed.Load(),
		StartedAt:       p.startedAt,
	}
}
