package domain

import (
	"time"

	"github.com/google/uuid"
)

type Mood string

const (
	MoodHappy    Mood = "Happy"
	MoodStressed Mood = "Stressed"
	MoodTired    Mood = "Tired"
	MoodRomantic Mood = "Romantic"
	MoodChill    Mood = "Chill"
)

// ValidMood reports whether m is one of the selectable moods.
// The empty mood is valid too: it means the user never picked one.
func ValidMood(m Mood) bool {
	switch m {
	case "", MoodHappy, MoodStressed, MoodTired, MoodRomantic, MoodChill:
		return true
	}
	return false
}

// Task intensity levels: 1 chill, 2 balanced, 3 deep.
const (
	IntensityMin = 1
	IntensityMax = 3
)

type Onboarding struct {
	CommunicationStyle string   `json:"communication_style,omitempty"`
	LoveLanguage       string   `json:"love_language,omitempty"`
	Interests          []string `json:"interests,omitempty"`
}

// User is an account that can link with exactly one partner.
type User struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"`
	PartnerLinkCode string     `json:"partner_link_code"`
	PartnerID       *uuid.UUID `json:"partner_id,omitempty"`
	Onboarding      Onboarding `json:"onboarding"`
	CurrentMood     Mood       `json:"current_mood"`
	TaskIntensity   int        `json:"task_intensity"`
	// MoodPrivacy true means the mood is shared with the partner.
	MoodPrivacy    bool      `json:"mood_privacy"`
	LastMoodUpdate time.Time `json:"last_mood_update"`
	ResetTokenHash string    `json:"-"`
	ResetTokenExp  time.Time `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func NewUser(name, email, passwordHash, linkCode string) *User {
	now := time.Now().UTC()
	return &User{
		ID:              uuid.New(),
		Name:            name,
		Email:           email,
		PasswordHash:    passwordHash,
		PartnerLinkCode: linkCode,
		TaskIntensity:   2,
		MoodPrivacy:     true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// HasPartner reports whether the user is linked.
func (u *User) HasPartner() bool {
	return u.PartnerID != nil && *u.PartnerID != uuid.Nil
}

// SharedMood returns the mood and intensity as the partner is allowed to
// see them: nils when sharing is off. Privacy is enforced here, at the
// source, never by the receiving side.
func (u *User) SharedMood() (mood *Mood, intensity *int) {
	if !u.MoodPrivacy {
		return nil, nil
	}
	m := u.CurrentMood
	i := u.TaskIntensity
	return &m, &i
}
