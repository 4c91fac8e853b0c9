package monitoring

import (
	"testing"
	"time"

	"chromacast/internal/core/ports"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

var _ ports.Collector = (*PrometheusCollector)(nil)

// promauto registers on the default registry, so the collector can only
// be constructed once per process; every check shares this instance.
func TestPrometheusCollector(t *testing.T) {
	c := NewPrometheusCollector()

	c.FrameCaptured()
	c.FrameCaptured()
	c.PixelsKeyed(5)
	c.FrameBroadcast(3, 128, 2*time.Millisecond)
	c.ConsumerRegistered()
	c.ConsumerRegistered()
	c.ConsumerDropped(1)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.framesCaptured))
	assert.Equal(t, 5.0, testutil.ToFloat64(c.pixelsKeyed))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.framesBroadcast))
	assert.Equal(t, 128.0, testutil.ToFloat64(c.payloadBytes))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.consumersConnected))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.consumersDropped))
}
