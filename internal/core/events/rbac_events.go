package events

import (
	"time"

	"github.com/google/uuid"
)

const EventTypeRBACChanged = "rbac.changed"

// RBACChangedEvent announces a write to roles, permissions or their edges.
// RoleIDs lists the roles whose permission sets may differ; empty means
// every role.
type RBACChangedEvent struct {
	BaseEvent
	RoleIDs []int64 `json:"role_ids"`
}

func NewRBACChangedEvent(reason string, roleIDs ...int64) *RBACChangedEvent {
	return &RBACChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeRBACChanged,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"reason":   reason,
				"role_ids": roleIDs,
			},
		},
		RoleIDs: roleIDs,
	}
}
