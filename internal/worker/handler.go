package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/karen-colon/b3-backend-social-net/internal/monitoring"
	"github.com/karen-colon/b3-backend-social-net/internal/queue"
)

var ErrUnknownEvent = errors.New("unknown event type")

// Handler writes each activity event to the audit log and counts it by type.
type Handler struct {
	log *logrus.Entry
}

func NewHandler() *Handler {
	return &Handler{log: logrus.WithField("component", "activity_audit")}
}

// HandleMessage records a stream entry; entries that failed to parse count as invalid.
func (h *Handler) HandleMessage(ctx context.Context, msg queue.Message) error {
	if msg.Err != nil {
		monitoring.ActivityEventsConsumed.WithLabelValues("invalid").Inc()
		return msg.Err
	}
	return h.HandleEvent(ctx, msg.Event)
}

// HandleEvent validates the event shape for its type before recording it.
func (h *Handler) HandleEvent(ctx context.Context, event queue.ActivityEvent) error {
	if err := validateEvent(event); err != nil {
		monitoring.ActivityEventsConsumed.WithLabelValues("invalid").Inc()
		return err
	}

	fields := logrus.Fields{
		"event":     event.Type,
		"user_id":   event.UserID,
		"timestamp": event.Timestamp,
	}
	if event.PublicationID != 0 {
		fields["publication_id"] = event.PublicationID
	}
	if event.ReplyID != 0 {
		fields["reply_id"] = event.ReplyID
	}
	if event.TargetUserID != 0 {
		fields["target_user_id"] = event.TargetUserID
	}

	h.log.WithFields(fields).Info("Activity")
	monitoring.ActivityEventsConsumed.WithLabelValues(event.Type).Inc()
	return nil
}

func validateEvent(event queue.ActivityEvent) error {
	if event.UserID == 0 {
		return fmt.Errorf("%s: missing user_id", event.Type)
	}

	switch event.Type {
	case queue.EventPublicationCreated, queue.EventPublicationDeleted:
		if event.PublicationID == 0 {
			return fmt.Errorf("%s: missing publication_id", event.Type)
		}
	case queue.EventUserFollowed, queue.EventUserUnfollowed:
		if event.TargetUserID == 0 {
			return fmt.Errorf("%s: missing target_user_id", event.Type)
		}
	case queue.EventReplyAdded:
		if event.PublicationID == 0 || event.ReplyID == 0 {
			return fmt.Errorf("%s: missing publication_id or reply_id", event.Type)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, event.Type)
	}
	return nil
}
