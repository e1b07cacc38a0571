package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

// TaskResponse is one member's free-text answer to a task.
type TaskResponse struct {
	UserID    uuid.UUID `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskFeedback is one member's rating of a completed task.
type TaskFeedback struct {
	UserID    uuid.UUID `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Task is a daily activity shared by the two members of a couple.
// CoupleKey is the same sorted-and-joined key the chat room uses, so a
// couple's tasks are addressable without a join table.
type Task struct {
	ID          uuid.UUID      `json:"id"`
	CoupleKey   string         `json:"couple_key"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Date        time.Time      `json:"date"`
	Status      TaskStatus     `json:"status"`
	AIGenerated bool           `json:"ai_generated"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	Responses   []TaskResponse `json:"responses"`
	Feedback    []TaskFeedback `json:"feedback"`
}

func NewTask(coupleKey, title, description, category string, aiGenerated bool) *Task {
	if category == "" {
		category = "General"
	}
	return &Task{
		ID:          uuid.New(),
		CoupleKey:   coupleKey,
		Title:       title,
		Description: description,
		Category:    category,
		Date:        time.Now().UTC(),
		Status:      TaskStatusPending,
		AIGenerated: aiGenerated,
	}
}

// IsMember reports whether the user belongs to the couple that owns the task.
func (t *Task) IsMember(userID uuid.UUID) bool {
	for _, part := range strings.Split(t.CoupleKey, "_") {
		if part == userID.String() {
			return true
		}
	}
	return false
}

// Complete marks the task done. Completing twice keeps the first timestamp.
func (t *Task) Complete() {
	if t.Status == TaskStatusCompleted {
		return
	}
	now := time.Now().UTC()
	t.Status = TaskStatusCompleted
	t.CompletedAt = &now
}

// SetResponse records the user's response, replacing an earlier one.
func (t *Task) SetResponse(userID uuid.UUID, text string) {
	kept := t.Responses[:0]
	for _, r := range t.Responses {
		if r.UserID != userID {
			kept = append(kept, r)
		}
	}
	t.Responses = append(kept, TaskResponse{
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	})
}

// SetFeedback records the user's feedback, replacing an earlier entry.
func (t *Task) SetFeedback(userID uuid.UUID, rating int, comment string) {
	kept := t.Feedback[:0]
	for _, f := range t.Feedback {
		if f.UserID != userID {
			kept = append(kept, f)
		}
	}
	t.Feedback = append(kept, TaskFeedback{
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now().UTC(),
	})
}

// AverageRating returns the mean feedback rating, 0 when there is none.
func (t *Task) AverageRating() float64 {
	if len(t.Feedback) == 0 {
		return 0
	}
	sum := 0
	for _, f := range t.Feedback {
		sum += f.Rating
	}
	return float64(sum) / float64(len(t.Feedback))
}
