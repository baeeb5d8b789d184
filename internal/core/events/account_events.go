package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeUserCreated            = "user.created"
	EventTypePasswordChanged        = "user.password_changed"
	EventTypePasswordResetRequested = "user.password_reset_requested"
)

// AccountEvent is published after an account change that the user should
// be told about by email.
type AccountEvent struct {
	BaseEvent
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	// ResetToken is set only for EventTypePasswordResetRequested.
	ResetToken string `json:"-"`
}

func newAccountEvent(eventType string, userID int64, email, name string) *AccountEvent {
	return &AccountEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id": userID,
				"email":   email,
			},
		},
		UserID: userID,
		Email:  email,
		Name:   name,
	}
}

func NewUserCreatedEvent(userID int64, email, name string) *AccountEvent {
	return newAccountEvent(EventTypeUserCreated, userID, email, name)
}

func NewPasswordChangedEvent(userID int64, email, name string) *AccountEvent {
	return newAccountEvent(EventTypePasswordChanged, userID, email, name)
}

func NewPasswordResetRequestedEvent(userID int64, email, name, token string) *AccountEvent {
	e := newAccountEvent(EventTypePasswordResetRequested, userID, email, name)
	e.ResetToken = token
	return e
}
