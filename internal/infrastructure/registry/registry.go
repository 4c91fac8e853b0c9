package registry

import (
	"sync"

	"chromacast/internal/core/ports"

	"go.uber.org/zap"
)

// ConnectionRegistry tracks the active consumer sinks. One mutex guards
// the whole state: register (accept side) and broadcast (capture side)
// each hold it for their full duration, so an insert can never interleave
// with a fanout pass.
type ConnectionRegistry struct {
	mu      sync.Mutex
	sinks   map[uint64]ports.Sink
	nextID  uint64
	metrics ports.Collector
	logger  *zap.SugaredLogger
}

func NewConnectionRegistry(metrics ports.Collector, logger *zap.SugaredLogger) *ConnectionRegistry {
	return &ConnectionRegistry{
		sinks:   make(map[uint64]ports.Sink),
		metrics: metrics,
		logger:  logger,
	}
}

// Register inserts a sink and returns its identifier. Identifiers are
// monotonically increasing for the process lifetime and never reused,
// even after removals.
func (r *ConnectionRegistry) Register(sink ports.Sink) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	r.sinks[id] = sink

	r.metrics.ConsumerRegistered()
	r.logger.Infow("consumer registered",
		"connection_id", id,
		"remote_addr", sink.RemoteAddr(),
		"consumers", len(r.sinks),
	)
	return id
}

// Broadcast writes payload plus a line terminator to every sink and
// flushes. Failed sinks are collected during the pass and removed only
// after the full pass completes; mutating the map while ranging over it
// is what this structure exists to avoid. Returns the number of sinks
// that received the payload. Best effort: no retries, a failing sink is
// simply dropped and closed.
func (r *ConnectionRegistry) Broadcast(payload string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var failed []uint64
	for id, sink := range r.sinks {
		if err := r.send(sink, payload); err != nil {
			r.logger.Debugw("consumer write failed",
				"connection_id", id,
				"remote_addr", sink.RemoteAddr(),
				"error", err,
			)
			failed = append(failed, id)
		}
	}

	for _, id := range failed {
		r.sinks[id].Close()
		delete(r.sinks, id)
		r.logger.Infow("consumer pruned", "connection_id", id, "consumers", len(r.sinks))
	}
	if len(failed) > 0 {
		r.metrics.ConsumerDropped(len(failed))
	}

	return len(r.sinks)
}

func (r *ConnectionRegistry) send(sink ports.Sink, payload string) error {
	if err := sink.WriteLine(payload); err != nil {
		return err
	}
	return sink.Flush()
}

// Len returns the number of registered sinks.
func (r *ConnectionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sinks)
}

// Close drops and closes every sink. Called once at shutdown.
func (r *ConnectionRegistry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, sink := range r.sinks {
		sink.Close()
		delete(r.sinks, id)
	}
}
