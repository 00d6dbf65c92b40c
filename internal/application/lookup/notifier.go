package lookup

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lookupdesk/backend/internal/domain/lookup"
	"github.com/lookupdesk/backend/internal/domain/shared"
	"github.com/lookupdesk/backend/internal/infrastructure/realtime"
)

// RealtimePusher is the hub surface the notifier needs
type RealtimePusher interface {
	SendToUser(userID uuid.UUID, frame interface{}) bool
	BroadcastToModerators(frame interface{})
}

// Notifier subscribes to domain events and translates them into
// realtime frames: new submissions fan out to moderators, lifecycle
// changes go to the owning customer.
type Notifier struct {
	pusher RealtimePusher
	logger *zap.Logger
}

// NewNotifier creates a new Notifier
func NewNotifier(pusher RealtimePusher, logger *zap.Logger) *Notifier {
	return &Notifier{pusher: pusher, logger: logger}
}

// EventTypes returns the event types the notifier listens for
func (n *Notifier) EventTypes() []string {
	return []string{
		lookup.EventTypeServiceRequestCreated,
		lookup.EventTypeServiceRequestStatusChanged,
		lookup.EventTypeDataDelivered,
	}
}

// Handle translates one domain event into realtime frames
func (n *Notifier) Handle(_ context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *lookup.ServiceRequestCreatedEvent:
		n.pusher.BroadcastToModerators(realtime.ServiceRequestFrame{
			Type:      realtime.FrameTypeNewServiceRequest,
			RequestID: e.RequestID.String(),
			UserID:    e.UserID.String(),
			Status:    e.Status.String(),
		})

	case *lookup.ServiceRequestStatusChangedEvent:
		delivered := n.pusher.SendToUser(e.UserID, realtime.ServiceRequestFrame{
			Type:      realtime.FrameTypeServiceRequestUpdated,
			RequestID: e.RequestID.String(),
			UserID:    e.UserID.String(),
			Status:    e.ToStatus.String(),
		})
		if !delivered {
			n.logger.Debug("owner offline, status frame skipped",
				zap.String("request_id", e.RequestID.String()),
			)
		}

	case *lookup.DataDeliveredEvent:
		n.pusher.SendToUser(e.UserID, realtime.ServiceRequestFrame{
			Type:      realtime.FrameTypeServiceRequestUpdated,
			RequestID: e.RequestID.String(),
			UserID:    e.UserID.String(),
		})

	default:
		n.logger.Debug("unhandled event type", zap.String("event_type", event.EventType()))
	}
	return nil
}

// Notify pushes a free-form notification frame to one user
func (n *Notifier) Notify(userID uuid.UUID, title, message string) bool {
	return n.pusher.SendToUser(userID, realtime.NotificationFrame{
		Type:    realtime.FrameTypeNotification,
		Title:   title,
		Message: message,
	})
}

var _ shared.EventHandler = (*Notifier)(nil)
