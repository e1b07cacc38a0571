package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/vibesync/vibesync/internal/domain"
	"github.com/vibesync/vibesync/internal/repository/model"
	"gorm.io/gorm"
)

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if user == nil {
		return errors.New("user is nil")
	}

	if err := r.db.WithContext(ctx).Create(toModelUser(user)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUserEmailExists
		}
		return err
	}
	return nil
}

func (r *GormUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.getUser(ctx, "id = ?", id)
}

func (r *GormUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getUser(ctx, "email = ?", email)
}

func (r *GormUserRepository) GetByLinkCode(ctx context.Context, code string) (*domain.User, error) {
	user, err := r.getUser(ctx, "partner_link_code = ?", code)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrLinkCodeNotFound
	}
	return user, err
}

func (r *GormUserRepository) GetByResetToken(ctx context.Context, tokenHash string) (*domain.User, error) {
	return r.getUser(ctx, "reset_token_hash = ? AND reset_token_exp > ?", tokenHash, time.Now().UTC())
}

func (r *GormUserRepository) getUser(ctx context.Context, query string, args ...any) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var user model.User
	err := r.db.WithContext(ctx).First(&user, append([]any{query}, args...)...).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return toDomainUser(&user), nil
}

func (r *GormUserRepository) Update(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if user == nil {
		return errors.New("user is nil")
	}

	userModel := toModelUser(user)

	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userModel.ID).Updates(map[string]any{
		"name":                userModel.Name,
		"email":               userModel.Email,
		"password_hash":       userModel.PasswordHash,
		"partner_id":          userModel.PartnerID,
		"communication_style": userModel.CommunicationStyle,
		"love_language":       userModel.LoveLanguage,
		"interests":           userModel.Interests,
		"current_mood":        userModel.CurrentMood,
		"task_intensity":      userModel.TaskIntensity,
		"mood_privacy":        userModel.MoodPrivacy,
		"last_mood_update":    userModel.LastMoodUpdate,
		"reset_token_hash":    userModel.ResetTokenHash,
		"reset_token_exp":     userModel.ResetTokenExp,
		"updated_at":          time.Now().UTC(),
	})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return ErrUserEmailExists
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

type GormTaskRepository struct {
	db *gorm.DB
}

func NewGormTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

func (r *GormTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if task == nil {
		return errors.New("task is nil")
	}

	return r.db.WithContext(ctx).Create(toModelTask(task)).Error
}

func (r *GormTaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var task model.Task
	err := r.db.WithContext(ctx).Preload("Responses").Preload("Feedback").First(&task, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	return toDomainTask(&task), nil
}

func (r *GormTaskRepository) GetDaily(ctx context.Context, coupleKey string, since time.Time) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var task model.Task
	err := r.db.WithContext(ctx).
		Preload("Responses").Preload("Feedback").
		Where("couple_key = ? AND date >= ?", coupleKey, since.UTC()).
		Order("date DESC").
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	return toDomainTask(&task), nil
}

func (r *GormTaskRepository) ListCompleted(ctx context.Context, coupleKey string, limit int) ([]*domain.Task, error) {
	return r.list(ctx, "couple_key = ? AND status = ?", []any{coupleKey, string(domain.TaskStatusCompleted)}, limit)
}

func (r *GormTaskRepository) ListRecent(ctx context.Context, coupleKey string, limit int) ([]*domain.Task, error) {
	return r.list(ctx, "couple_key = ?", []any{coupleKey}, limit)
}

func (r *GormTaskRepository) list(ctx context.Context, query string, args []any, limit int) ([]*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q := r.db.WithContext(ctx).
		Preload("Responses").Preload("Feedback").
		Where(query, args...).
		Order("date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var tasks []model.Task
	if err := q.Find(&tasks).Error; err != nil {
		return nil, err
	}

	result := make([]*domain.Task, 0, len(tasks))
	for i := range tasks {
		result = append(result, toDomainTask(&tasks[i]))
	}
	return result, nil
}

func (r *GormTaskRepository) Update(ctx context.Context, task *domain.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if task == nil {
		return errors.New("task is nil")
	}

	taskModel := toModelTask(task)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Task{}).Where("id = ?", taskModel.ID).Updates(map[string]any{
			"title":        taskModel.Title,
			"description":  taskModel.Description,
			"category":     taskModel.Category,
			"status":       taskModel.Status,
			"completed_at": taskModel.CompletedAt,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTaskNotFound
		}

		if err := tx.Where("task_id = ?", taskModel.ID).Delete(&model.TaskResponse{}).Error; err != nil {
			return err
		}
		if len(taskModel.Responses) > 0 {
			if err := tx.Create(&taskModel.Responses).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("task_id = ?", taskModel.ID).Delete(&model.TaskFeedback{}).Error; err != nil {
			return err
		}
		if len(taskModel.Feedback) > 0 {
			if err := tx.Create(&taskModel.Feedback).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

type GormMessageRepository struct {
	db *gorm.DB
}

func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

func (r *GormMessageRepository) Save(ctx context.Context, msg *domain.ChatMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg == nil {
		return errors.New("message is nil")
	}

	return r.db.WithContext(ctx).Create(&model.ChatMessage{
		ID:       msg.ID,
		Room:     msg.Room,
		SenderID: msg.SenderID,
		Author:   msg.Author,
		Text:     msg.Text,
		SentAt:   msg.SentAt.UTC(),
	}).Error
}

func (r *GormMessageRepository) ListByRoom(ctx context.Context, room string) ([]*domain.ChatMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var msgs []model.ChatMessage
	err := r.db.WithContext(ctx).Where("room = ?", room).Order("sent_at ASC").Find(&msgs).Error
	if err != nil {
		return nil, err
	}

	result := make([]*domain.ChatMessage, 0, len(msgs))
	for i := range msgs {
		m := msgs[i]
		result = append(result, &domain.ChatMessage{
			ID:       m.ID,
			Room:     m.Room,
			SenderID: m.SenderID,
			Author:   m.Author,
			Text:     m.Text,
			SentAt:   m.SentAt.UTC(),
		})
	}
	return result, nil
}

func toModelUser(user *domain.User) *model.User {
	var lastMood, resetExp *time.Time
	if !user.LastMoodUpdate.IsZero() {
		t := user.LastMoodUpdate.UTC()
		lastMood = &t
	}
	if !user.ResetTokenExp.IsZero() {
		t := user.ResetTokenExp.UTC()
		resetExp = &t
	}

	return &model.User{
		ID:                 user.ID,
		Name:               user.Name,
		Email:              user.Email,
		PasswordHash:       user.PasswordHash,
		PartnerLinkCode:    user.PartnerLinkCode,
		PartnerID:          user.PartnerID,
		CommunicationStyle: user.Onboarding.CommunicationStyle,
		LoveLanguage:       user.Onboarding.LoveLanguage,
		Interests:          user.Onboarding.Interests,
		CurrentMood:        string(user.CurrentMood),
		TaskIntensity:      user.TaskIntensity,
		MoodPrivacy:        user.MoodPrivacy,
		LastMoodUpdate:     lastMood,
		ResetTokenHash:     user.ResetTokenHash,
		ResetTokenExp:      resetExp,
		CreatedAt:          user.CreatedAt.UTC(),
		UpdatedAt:          user.UpdatedAt.UTC(),
	}
}

func toDomainUser(user *model.User) *domain.User {
	var lastMood, resetExp time.Time
	if user.LastMoodUpdate != nil {
		lastMood = user.LastMoodUpdate.UTC()
	}
	if user.ResetTokenExp != nil {
		resetExp = user.ResetTokenExp.UTC()
	}

	return &domain.User{
		ID:              user.ID,
		Name:            user.Name,
		Email:           user.Email,
		PasswordHash:    user.PasswordHash,
		PartnerLinkCode: user.PartnerLinkCode,
		PartnerID:       user.PartnerID,
		Onboarding: domain.Onboarding{
			CommunicationStyle: user.CommunicationStyle,
			LoveLanguage:       user.LoveLanguage,
			Interests:          user.Interests,
		},
		CurrentMood:    domain.Mood(user.CurrentMood),
		TaskIntensity:  user.TaskIntensity,
		MoodPrivacy:    user.MoodPrivacy,
		LastMoodUpdate: lastMood,
		ResetTokenHash: user.ResetTokenHash,
		ResetTokenExp:  resetExp,
		CreatedAt:      user.CreatedAt.UTC(),
		UpdatedAt:      user.UpdatedAt.UTC(),
	}
}

func toModelTask(task *domain.Task) *model.Task {
	var completedAt *time.Time
	if task.CompletedAt != nil {
		t := task.CompletedAt.UTC()
		completedAt = &t
	}

	responses := make([]model.TaskResponse, 0, len(task.Responses))
	for _, r := range task.Responses {
		responses = append(responses, model.TaskResponse{
			TaskID:    task.ID,
			UserID:    r.UserID,
			Text:      r.Text,
			CreatedAt: r.CreatedAt.UTC(),
		})
	}

	feedback := make([]model.TaskFeedback, 0, len(task.Feedback))
	for _, f := range task.Feedback {
		feedback = append(feedback, model.TaskFeedback{
			TaskID:    task.ID,
			UserID:    f.UserID,
			Rating:    f.Rating,
			Comment:   f.Comment,
			CreatedAt: f.CreatedAt.UTC(),
		})
	}

	return &model.Task{
		ID:          task.ID,
		CoupleKey:   task.CoupleKey,
		Title:       task.Title,
		Description: task.Description,
		Category:    task.Category,
		Date:        task.Date.UTC(),
		Status:      string(task.Status),
		AIGenerated: task.AIGenerated,
		CompletedAt: completedAt,
		Responses:   responses,
		Feedback:    feedback,
	}
}

func toDomainTask(task *model.Task) *domain.Task {
	var completedAt *time.Time
	if task.CompletedAt != nil {
		t := task.CompletedAt.UTC()
		completedAt = &t
	}

	responses := make([]domain.TaskResponse, 0, len(task.Responses))
	for _, r := range task.Responses {
		responses = append(responses, domain.TaskResponse{
			UserID:    r.UserID,
			Text:      r.Text,
			CreatedAt: r.CreatedAt.UTC(),
		})
	}

	feedback := make([]domain.TaskFeedback, 0, len(task.Feedback))
	for _, f := range task.Feedback {
		feedback = append(feedback, domain.TaskFeedback{
			UserID:    f.UserID,
			Rating:    f.Rating,
			Comment:   f.Comment,
			CreatedAt: f.CreatedAt.UTC(),
		})
	}

	return &domain.Task{
		ID:          task.ID,
		CoupleKey:   task.CoupleKey,
		Title:       task.Title,
		Description: task.Description,
		Category:    task.Category,
		Date:        task.Date.UTC(),
		Status:      domain.TaskStatus(task.Status),
		AIGenerated: task.AIGenerated,
		CompletedAt: completedAt,
		Responses:   responses,
		Feedback:    feedback,
	}
}
