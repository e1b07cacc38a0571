package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vibesync/vibesync/internal/auth"
	"github.com/vibesync/vibesync/internal/domain"
	"github.com/vibesync/vibesync/internal/realtime"
	"github.com/vibesync/vibesync/internal/repository"
	"github.com/vibesync/vibesync/lib/logger/sl"
)

const resetTokenTTL = 10 * time.Minute

type AuthService struct {
	users       repository.UserRepository
	tokens      *auth.JWTManager
	hasher      *auth.PasswordHasher
	hub         *realtime.Hub
	frontendURL string
	log         *slog.Logger
}

func NewAuthService(users repository.UserRepository, tokens *auth.JWTManager, hasher *auth.PasswordHasher, hub *realtime.Hub, frontendURL string, log *slog.Logger) *AuthService {
	if log == nil {
		log = slog.Default()
	}
	return &AuthService{
		users:       users,
		tokens:      tokens,
		hasher:      hasher,
		hub:         hub,
		frontendURL: frontendURL,
		log:         log,
	}
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, string, error) {
	const op = "service.auth.register"
	log := s.log.With(slog.String("op", op))

	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return nil, "", errors.New("name is required")
	}
	if email == "" {
		return nil, "", errors.New("email is required")
	}
	if len(password) < 6 {
		return nil, "", errors.New("password must be at least 6 characters")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, "", err
	}

	user := domain.NewUser(name, email, hash, generateLinkCode())
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, "", err
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) EmailExists(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	_, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *AuthService) UpdateOnboarding(ctx context.Context, id uuid.UUID, data domain.Onboarding) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Onboarding = data
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateMood changes the user's mood settings and fans the change out to
// the partner. The broadcast payload is privacy-gated here, before
// emission: the receiving side never sees raw values it is not meant to.
func (s *AuthService) UpdateMood(ctx context.Context, id uuid.UUID, mood domain.Mood, intensity int, privacy *bool) (*domain.User, error) {
	const op = "service.auth.mood"
	log := s.log.With(slog.String("op", op), slog.String("user_id", id.String()))

	if !domain.ValidMood(mood) {
		return nil, ErrInvalidMood
	}
	if intensity != 0 && (intensity < domain.IntensityMin || intensity > domain.IntensityMax) {
		return nil, ErrInvalidIntensity
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if mood != "" {
		user.CurrentMood = mood
	}
	if intensity != 0 {
		user.TaskIntensity = intensity
	}
	if privacy != nil {
		user.MoodPrivacy = *privacy
	}
	user.LastMoodUpdate = time.Now().UTC()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	if user.HasPartner() {
		sharedMood, sharedIntensity := user.SharedMood()
		s.hub.Broadcast(realtime.PresenceRoomID(user.ID), domain.Event{
			Type: domain.EventPartnerMood,
			Payload: domain.MoodPayload{
				UserID:    user.ID,
				Mood:      sharedMood,
				Intensity: sharedIntensity,
				Privacy:   user.MoodPrivacy,
				Timestamp: user.LastMoodUpdate,
			},
		}, "")
		log.Info("mood update broadcast", slog.Bool("shared", user.MoodPrivacy))
	}

	return user, nil
}

// ForgotPassword issues a reset token and returns the reset link. Only
// the sha256 of the token is stored; the raw value lives in the link.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	const op = "service.auth.forgotPassword"
	log := s.log.With(slog.String("op", op))

	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	token := hex.EncodeToString(raw)

	user.ResetTokenHash = hashToken(token)
	user.ResetTokenExp = time.Now().UTC().Add(resetTokenTTL)
	if err := s.users.Update(ctx, user); err != nil {
		return "", err
	}

	log.Info("password reset link generated", slog.String("user_id", user.ID.String()))
	return s.frontendURL + "/reset-password/" + token, nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 6 {
		return errors.New("password must be at least 6 characters")
	}

	user, err := s.users.GetByResetToken(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	user.ResetTokenHash = ""
	user.ResetTokenExp = time.Time{}
	if err := s.users.Update(ctx, user); err != nil {
		s.log.Error("failed to store new password", sl.Err(err))
		return err
	}
	return nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func generateLinkCode() string {
	raw := make([]byte, 4)
	_, _ = rand.Read(raw)
	return hex.EncodeToString(raw)
}
