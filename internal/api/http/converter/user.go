package converter

import (
	"time"

	"github.com/google/uuid"
	"github.com/vibesync/vibesync/internal/domain"
)

type UserResponse struct {
	ID              uuid.UUID         `json:"id"`
	Name            string            `json:"name"`
	Email           string            `json:"email"`
	PartnerLinkCode string            `json:"partner_link_code"`
	PartnerID       *uuid.UUID        `json:"partner_id,omitempty"`
	Onboarding      domain.Onboarding `json:"onboarding"`
	CurrentMood     domain.Mood       `json:"current_mood"`
	TaskIntensity   int               `json:"task_intensity"`
	MoodPrivacy     bool              `json:"mood_privacy"`
	LastMoodUpdate  time.Time         `json:"last_mood_update"`
	CreatedAt       time.Time         `json:"created_at"`
}

// UserToApi strips the credential fields; password and reset token hashes
// never leave the server.
func UserToApi(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		PartnerLinkCode: u.PartnerLinkCode,
		PartnerID:       u.PartnerID,
		Onboarding:      u.Onboarding,
		CurrentMood:     u.CurrentMood,
		TaskIntensity:   u.TaskIntensity,
		MoodPrivacy:     u.MoodPrivacy,
		LastMoodUpdate:  u.LastMoodUpdate,
		CreatedAt:       u.CreatedAt,
	}
}
