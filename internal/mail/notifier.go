package mail

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/recruitment/internal/core/events"
)

// Notifier turns account events into emails.
type Notifier struct {
	dispatcher Dispatcher
	resetTTL   time.Duration
	logger     *slog.Logger
}

func NewNotifier(dispatcher Dispatcher, resetTTL time.Duration, logger *slog.Logger) *Notifier {
	return &Notifier{dispatcher: dispatcher, resetTTL: resetTTL, logger: logger}
}

func (n *Notifier) HandleAccountEvent(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.AccountEvent)
	if !ok {
		n.logger.Error("invalid event type for account mail handler", "event_type", event.EventType())
		return fmt.Errorf("expected AccountEvent, got %T", event)
	}

	var msg Message
	switch e.EventType() {
	case events.EventTypeUserCreated:
		msg = WelcomeMessage(e.Name, e.Email)
	case events.EventTypePasswordChanged:
		msg = PasswordChangedMessage(e.Name, e.Email)
	case events.EventTypePasswordResetRequested:
		msg = ResetTokenMessage(e.Name, e.Email, e.ResetToken, n.resetTTL)
	default:
		return nil
	}

	if err := n.dispatcher.Dispatch(ctx, msg); err != nil {
		n.logger.Error("failed to dispatch account mail",
			"error", err,
			"user_id", e.UserID,
			"event_type", e.EventType(),
			"event_id", e.EventID())
		return fmt.Errorf("dispatch %s mail for user %d: %w", e.EventType(), e.UserID, err)
	}
	return nil
}

func (n *Notifier) RegisterEventHandlers(bus *events.EventBus) {
	types := []string{
		events.EventTypeUserCreated,
		events.EventTypePasswordChanged,
		events.EventTypePasswordResetRequested,
	}
	for _, t := range types {
		bus.Subscribe(t, n.HandleAccountEvent)
	}
	n.logger.Info("mail event handlers registered", "handlers", types)
}
