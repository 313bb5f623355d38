package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tablewise/restaurant-api/internal/domain"
	"github.com/tablewise/restaurant-api/internal/events"
	"github.com/tablewise/restaurant-api/internal/metrics"
)

var ErrPermissionDenied = domain.NewError(domain.ErrForbidden, "you do not have permission to perform this action")

// publishTimeout caps how long a committed write waits on event delivery.
var publishTimeout = 2 * time.Second

// publish runs after commit. A failed delivery never fails the request, and
// a cancelled request does not cancel the delivery.
func publish(ctx context.Context, pub events.Publisher, m *metrics.Metrics, event events.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := pub.Publish(ctx, event); err != nil {
		m.EventPublishFailure.WithLabelValues(string(event.Type)).Inc()
		zap.L().Warn("event not delivered",
			zap.String("type", string(event.Type)),
			zap.String("key", event.Key()),
			zap.Error(err),
		)
	}
}

func requireRole(actor domain.Actor, roles ...domain.Role) error {
	if !actor.HasRole(roles...) {
		return ErrPermissionDenied
	}
	return nil
}
