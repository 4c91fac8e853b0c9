package ports

import (
	"time"

	"chromacast/internal/core/domain"
)

// FrameSource is the capture-device collaborator. WaitForFrame blocks
// until the next frame is available; ok=false signals end-of-stream and
// is a normal termination, not an error.
type FrameSource interface {
	Start() error
	WaitForFrame() (*domain.RawFrame, bool)
	Stop() error
}

// Sink is one consumer of processed frames. Implementations wrap a TCP
// connection or a WebSocket; both writes and flushes may fail, and a
// failing sink is dropped by the registry rather than retried.
type Sink interface {
	WriteLine(payload string) error
	Flush() error
	Close() error
	RemoteAddr() string
}

// Broadcaster is the connection registry as seen by producers and by the
// status API.
type Broadcaster interface {
	Register(sink Sink) uint64
	Broadcast(payload string) int
	Len() int
	Close()
}

// Collector receives pipeline and registry observations. Implemented by
// the Prometheus collector; NopCollector is used in tests.
type Collector interface {
	FrameCaptured()
	FrameBroadcast(delivered int, payloadBytes int, elapsed time.Duration)
	PixelsKeyed(n int)
	ConsumerRegistered()
	ConsumerDropped(n int)
}

// NopCollector discards all observations.
type NopCollector struct{}

func (NopCollector) FrameCaptured()                         {}
func (NopCollector) FrameBroadcast(int, int, time.Duration) {}
func (NopCollector) PixelsKeyed(int)                        {}
func (NopCollector) ConsumerRegistered()                    {}
func (NopCollector) ConsumerDropped(int)                    {}
