package realtime

import (
	"context"

	"github.com/google/uuid"
)

type SSEEvent string

const (
	SSEEventPlanGenerated      SSEEvent = "PlanGenerated"
	SSEEventPlanArchived       SSEEvent = "PlanArchived"
	SSEEventTaskToggled        SSEEvent = "TaskToggled"
	SSEEventMilestoneCompleted SSEEvent = "MilestoneCompleted"
	SSEEventPhaseCompleted     SSEEvent = "PhaseCompleted"
	SSEEventReminder           SSEEvent = "Reminder"
	SSEEventAdvisorReply       SSEEvent = "AdvisorReply"
)

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}

// UserChannel is the channel every stream of a user is subscribed to.
func UserChannel(userID uuid.UUID) string {
	return "user:" + userID.String()
}

// Publisher delivers a message to every subscriber of its channel, on this
// instance or, through a bus, on all of them.
type Publisher interface {
	Publish(ctx context.Context, msg SSEMessage) error
}
