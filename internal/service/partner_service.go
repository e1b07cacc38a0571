package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/vibesync/vibesync/internal/realtime"
	"github.com/vibesync/vibesync/internal/repository"
	"github.com/vibesync/vibesync/lib/logger/sl"
)

type PartnerService struct {
	users repository.UserRepository
	hub   *realtime.Hub
	log   *slog.Logger
}

func NewPartnerService(users repository.UserRepository, hub *realtime.Hub, log *slog.Logger) *PartnerService {
	if log == nil {
		log = slog.Default()
	}
	return &PartnerService{users: users, hub: hub, log: log}
}

// Connect links the caller with the owner of the partner code. Both sides
// must be unlinked; linking writes both records.
func (s *PartnerService) Connect(ctx context.Context, userID uuid.UUID, code string) (string, error) {
	const op = "service.partner.connect"
	log := s.log.With(slog.String("op", op), slog.String("user_id", userID.String()))

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.HasPartner() {
		return "", ErrAlreadyLinked
	}

	partner, err := s.users.GetByLinkCode(ctx, code)
	if err != nil {
		return "", err
	}
	if partner.ID == user.ID {
		return "", ErrSelfLink
	}
	if partner.HasPartner() {
		return "", ErrPartnerTaken
	}

	user.PartnerID = &partner.ID
	partner.PartnerID = &user.ID

	if err := s.users.Update(ctx, user); err != nil {
		return "", err
	}
	if err := s.users.Update(ctx, partner); err != nil {
		// Roll back the half-written link so the couple is never
		// one-directional.
		user.PartnerID = nil
		if rbErr := s.users.Update(ctx, user); rbErr != nil {
			log.Error("failed to roll back partner link", sl.Err(rbErr))
		}
		return "", err
	}

	log.Info("partner connected", slog.String("partner_id", partner.ID.String()))
	return partner.Name, nil
}

// Status reports what the caller may know about their partner, with mood
// and intensity already filtered by the partner's privacy setting.
func (s *PartnerService) Status(ctx context.Context, userID uuid.UUID) (*PartnerStatus, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.HasPartner() {
		return &PartnerStatus{Connected: false}, nil
	}

	partner, err := s.users.GetByID(ctx, *user.PartnerID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Dangling reference: the partner record is gone, clean up.
			user.PartnerID = nil
			if upErr := s.users.Update(ctx, user); upErr != nil {
				s.log.Error("failed to clear dangling partner", sl.Err(upErr))
			}
			return &PartnerStatus{Connected: false}, nil
		}
		return nil, err
	}

	mood, intensity := partner.SharedMood()
	return &PartnerStatus{
		Connected:      true,
		Name:           partner.Name,
		Mood:           mood,
		Intensity:      intensity,
		LastMoodUpdate: partner.LastMoodUpdate,
		Online:         s.hub.IsOnline(ctx, partner.ID),
	}, nil
}
