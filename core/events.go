package core

import (
	"time"

	"github.com/google/uuid"
)

// Domain event types emitted by the progression engine.
// Delivery (email, in-app, push...) is up to the NotificationService implementation.
const (
	EventApprovalApproved = "approval.approved"
	EventApprovalRejected = "approval.rejected"
	EventModuleUnlocked   = "module.unlocked"
	EventQuizGraded       = "quiz.graded"
	EventGradeReceived    = "grade.received"
)

// Event is a domain notification addressed to a single user.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	UserID    string                 `json:"user_id"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	CreatedAt time.Time              `json:"created_at"` // UTC
}

func NewEvent(typ, userID string, payload map[string]interface{}) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      typ,
		UserID:    userID,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
}

// NotificationService is any service that can deliver domain events to users.
type NotificationService interface {
	// SendEvents dispatches events concurrently; delivery is best-effort.
	SendEvents(events ...*Event)
}
