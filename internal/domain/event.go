package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

// Server-to-client event names. These are the wire contract the web and
// mobile clients listen on.
const (
	EventPartnerOnline     EventType = "partner_online"
	EventPartnerOffline    EventType = "partner_offline"
	EventReceiveMessage    EventType = "receive_message"
	EventTyping            EventType = "typing"
	EventStopTyping        EventType = "stop_typing"
	EventPartnerMood       EventType = "partner_mood_updated"
	EventPartnerResponded  EventType = "partner_responded"
	EventTaskStatus        EventType = "task_status_update"
	EventFeedbackUpdate    EventType = "feedback_update"
	EventTriggerGeneration EventType = "trigger_task_generation"
	EventNewTaskGenerated  EventType = "new_task_generated"
	EventTasksUpdate       EventType = "tasks_update"
	EventDashboardUpdate   EventType = "dashboard_update"
	EventError             EventType = "error"
)

type ErrorPayload struct {
	Message string `json:"message"`
}

// Event is one realtime fact to fan out. Room addresses the broadcast
// scope; it is routing metadata and is not part of the payload.
// Delivery is at-most-once: events are never queued or replayed, a member
// who is offline at emission time simply misses it.
type Event struct {
	Type    EventType `json:"type"`
	Room    string    `json:"-"`
	Payload any       `json:"payload,omitempty"`
}

type PresencePayload struct {
	UserID uuid.UUID `json:"userId"`
}

// MoodPayload carries the partner's mood as they allowed it to be seen.
// Mood and Intensity are nil when sharing is off.
type MoodPayload struct {
	UserID    uuid.UUID `json:"userId"`
	Mood      *Mood     `json:"mood"`
	Intensity *int      `json:"intensity"`
	Privacy   bool      `json:"privacy"`
	Timestamp time.Time `json:"timestamp"`
}

// TaskStatusPayload is a refetch trigger: receivers re-query the task
// endpoint instead of trusting anything beyond the id.
type TaskStatusPayload struct {
	TaskID    uuid.UUID  `json:"taskId"`
	Status    TaskStatus `json:"status"`
	UpdatedBy uuid.UUID  `json:"updatedBy"`
}

type TaskEventPayload struct {
	TaskID uuid.UUID `json:"taskId"`
}

type DashboardPayload struct {
	Tasks     []*Task   `json:"tasks"`
	Timestamp time.Time `json:"timestamp"`
}
