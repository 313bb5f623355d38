package service

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/tablewise/restaurant-api/internal/events"
	"github.com/tablewise/restaurant-api/internal/metrics"
)

// stalledPublisher stands in for a broker that never acknowledges.
type stalledPublisher struct {
	errAtStart error
	deadline   bool
}

func (p *stalledPublisher) Publish(ctx context.Context, _ events.Event) error {
	p.errAtStart = ctx.Err()
	_, p.deadline = ctx.Deadline()
	<-ctx.Done()
	return ctx.Err()
}

func TestPublish_BoundedAndDetached(t *testing.T) {
	previous := publishTimeout
	publishTimeout = 20 * time.Millisecond
	t.Cleanup(func() { publishTimeout = previous })

	m := metrics.New()
	pub := &stalledPublisher{}

	reqCtx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	publish(reqCtx, pub, m, events.New(events.OrderPaid, nil).ForOrder(1))

	assert.Less(t, time.Since(start), time.Second)
	assert.NoError(t, pub.errAtStart, "a finished request must not cancel delivery")
	assert.True(t, pub.deadline)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventPublishFailure.WithLabelValues(string(events.OrderPaid))))
}
