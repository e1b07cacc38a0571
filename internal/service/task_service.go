package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vibesync/vibesync/internal/ai"
	"github.com/vibesync/vibesync/internal/domain"
	"github.com/vibesync/vibesync/internal/metrics"
	"github.com/vibesync/vibesync/internal/realtime"
	"github.com/vibesync/vibesync/internal/repository"
	"github.com/vibesync/vibesync/lib/logger/sl"
)

const feedbackHistoryLimit = 5

type TaskService struct {
	tasks     repository.TaskRepository
	users     repository.UserRepository
	generator ai.Generator
	hub       *realtime.Hub
	log       *slog.Logger
}

func NewTaskService(tasks repository.TaskRepository, users repository.UserRepository, generator ai.Generator, hub *realtime.Hub, log *slog.Logger) *TaskService {
	if log == nil {
		log = slog.Default()
	}
	return &TaskService{
		tasks:     tasks,
		users:     users,
		generator: generator,
		hub:       hub,
		log:       log,
	}
}

// GetDaily returns today's task for the caller's couple, generating one
// when none exists yet. Generation failure falls back to the static list:
// the couple always gets a task.
func (s *TaskService) GetDaily(ctx context.Context, userID uuid.UUID) (*domain.Task, error) {
	const op = "service.task.getDaily"
	log := s.log.With(slog.String("op", op), slog.String("user_id", userID.String()))

	coupleKey, err := s.coupleKey(ctx, userID)
	if err != nil {
		return nil, err
	}

	startOfDay := time.Now().UTC().Truncate(24 * time.Hour)
	task, err := s.tasks.GetDaily(ctx, coupleKey, startOfDay)
	if err == nil {
		return task, nil
	}
	if !errors.Is(err, repository.ErrTaskNotFound) {
		return nil, err
	}

	history, err := s.tasks.ListCompleted(ctx, coupleKey, feedbackHistoryLimit)
	if err != nil {
		return nil, err
	}

	source := "ai"
	suggestion, genErr := s.generator.Generate(ctx, history)
	if genErr != nil {
		log.Warn("generation failed, using fallback", sl.Err(genErr))
		suggestion = ai.Fallback()
		source = "fallback"
	}

	task = domain.NewTask(coupleKey, suggestion.Title, suggestion.Description, suggestion.Category, true)
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	metrics.TasksGenerated.WithLabelValues(source).Inc()

	log.Info("daily task generated",
		slog.String("task_id", task.ID.String()),
		slog.String("category", task.Category),
	)

	// Refetch trigger: receivers re-query the task endpoint, the payload
	// is only the id.
	s.hub.BroadcastAll(coupleKey, domain.Event{
		Type:    domain.EventNewTaskGenerated,
		Payload: domain.TaskEventPayload{TaskID: task.ID},
	})

	return task, nil
}

func (s *TaskService) Complete(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.memberTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	task.Complete()
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	s.hub.BroadcastAll(task.CoupleKey, domain.Event{
		Type: domain.EventTaskStatus,
		Payload: domain.TaskStatusPayload{
			TaskID:    task.ID,
			Status:    task.Status,
			UpdatedBy: userID,
		},
	})

	return task, nil
}

func (s *TaskService) Respond(ctx context.Context, userID, taskID uuid.UUID, text string) (*domain.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("response text is required")
	}

	task, err := s.memberTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	task.SetResponse(userID, text)
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	if partnerID, ok := otherMember(task.CoupleKey, userID); ok {
		s.hub.EmitToUser(partnerID, domain.Event{
			Type:    domain.EventPartnerResponded,
			Payload: domain.TaskEventPayload{TaskID: task.ID},
		})
	}

	return task, nil
}

// SubmitFeedback stores the caller's rating, replacing an earlier one, and
// nudges the couple towards generating the next task.
func (s *TaskService) SubmitFeedback(ctx context.Context, userID, taskID uuid.UUID, rating int, comment string) (*domain.Task, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	task, err := s.memberTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	task.SetFeedback(userID, rating, comment)
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	s.hub.BroadcastAll(task.CoupleKey, domain.Event{
		Type:    domain.EventFeedbackUpdate,
		Payload: domain.TaskEventPayload{TaskID: task.ID},
	})
	s.hub.BroadcastAll(task.CoupleKey, domain.Event{
		Type: domain.EventTriggerGeneration,
	})

	return task, nil
}

func (s *TaskService) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Task, error) {
	coupleKey, err := s.coupleKey(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.tasks.ListRecent(ctx, coupleKey, limit)
}

func (s *TaskService) memberTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !task.IsMember(userID) {
		return nil, ErrNotAuthorized
	}
	return task, nil
}

func (s *TaskService) coupleKey(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if !user.HasPartner() {
		return "", ErrNoPartner
	}
	return realtime.CoupleRoomID(user.ID, *user.PartnerID), nil
}

// otherMember extracts the member of the couple key that is not userID.
func otherMember(coupleKey string, userID uuid.UUID) (uuid.UUID, bool) {
	for _, part := range strings.Split(coupleKey, "_") {
		if part == userID.String() {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return uuid.Nil, false
		}
		return id, true
	}
	return uuid.Nil, false
}
