package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vibesync/vibesync/internal/ai"
	"github.com/vibesync/vibesync/internal/domain"
)

type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, []*domain.Task) (ai.Suggestion, error) {
	return ai.Suggestion{}, errors.New("model unavailable")
}

func TestTaskService_GetDailyCreatesOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alex, sam := env.addCouple(t)

	task, err := env.taskSvc.GetDaily(ctx, alex.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusPending, task.Status)
	assert.NotEmpty(t, task.Title)
	assert.True(t, task.IsMember(alex.ID))
	assert.True(t, task.IsMember(sam.ID))

	// Either member asking again gets the same task, not a new one.
	again, err := env.taskSvc.GetDaily(ctx, sam.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, again.ID)
}

func TestTaskService_GetDailyRequiresPartner(t *testing.T) {
	env := newTestEnv(t)

	alex := env.addUser(t, "alex", "alex@example.com")

	_, err := env.taskSvc.GetDaily(context.Background(), alex.ID)
	assert.ErrorIs(t, err, ErrNoPartner)
}

func TestTaskService_GetDailyFallsBackOnGeneratorError(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alex, _ := env.addCouple(t)
	env.taskSvc.generator = failingGenerator{}

	task, err := env.taskSvc.GetDaily(ctx, alex.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, task.Title)
	assert.NotEmpty(t, task.Description)
}

func TestTaskService_GetDailyNotifiesCouple(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alex, sam := env.addCouple(t)
	alexClient := env.listen(t, alex)
	samClient := env.listen(t, sam)

	task, err := env.taskSvc.GetDaily(ctx, alex.ID)
	require.NoError(t, err)

	for _, c := range []*domain.Client{alexClient, samClient} {
		got := drainEvents(c)
		require.Len(t, got, 1)
		assert.Equal(t, domain.EventNewTaskGenerated, got[0].Type)
		payload, ok := got[0].Payload.(domain.TaskEventPayload)
		require.True(t, ok)
		assert.Equal(t, task.ID, payload.TaskID)
	}
}

func TestTaskService_CompleteIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alex, _ := env.addCouple(t)

	task, err := env.taskSvc.GetDaily(ctx, alex.ID)
	require.NoError(t, err)

	done, err := env.taskSvc.Complete(ctx, alex.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)

	first := *done.CompletedAt
	again, err := env.taskSvc.Complete(ctx, alex.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, first, *again.CompletedAt)
}

func TestTaskService_CompleteNotifiesBothMembers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alex, sam := env.addCouple(t)

	task, err := env.taskSvc.GetDaily(ctx, alex.ID)
	require.NoError(t, err)

	alexClient := env.listen(t, alex)
	samClient := env.listen(t, sam)

	_, err = env.taskSvc.Complete(ctx, sam.ID, task.ID)
	require.NoError(t, err)

	for _, c := range []*domain.Client{alexClient, samClient} {
		got := drainEvents(c)
		require.Len(t, got, 1)
		assert.Equal(t, domain.EventTaskStatus, got[0].Type)
		payload, ok := got[0].Payload.(domain.TaskStatusPayload)
		require.True(t, ok)
		assert.Equal(t, domain.TaskStatusCompleted, payload.Status)
		assert.Equal(t, sam.ID, payload.UpdatedBy)
	}
}

func TestTaskService_CompleteByOutsider(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alex, _ := env.addCouple(t)
	outsider := env.addUser(t, "jo", "jo@example.com")

	task, err := env.taskSvc.GetDaily(ctx, alex.ID)
	require.NoError(t, err)

	_, err = env.taskSvc.Complete(ctx, outsider.ID, task.ID)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestTaskService_RespondNotifiesPartnerOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alex, sam := env.addCouple(t)

	task, err := env.taskSvc.GetDaily(ctx, alex.ID)
	require.NoError(t, err)

	alexClient := env.listen(t, alex)
	samClient := env.listen(t, sam)

	updated, err := env.taskSvc.Respond(ctx, alex.ID, task.ID, "let's do it tonight")
	require.NoError(t, err)
	require.Len(t, updated.Responses, 1)
	assert.Equal(t, alex.ID, updated.Responses[0].UserID)

	assert.Empty(t, drainEvents(alexClient))

	got := drainEvents(samClient)
	require.Len(t, got, 1)
	assert.Equal(t, domain.EventPartnerResponded, got[0].Type)
}

func TestTaskService_RespondReplacesOwn(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alex, sam := env.addCouple(t)

	task, err := env.taskSvc.GetDaily(ctx, alex.ID)
	require.NoError(t, err)

	_, err = env.taskSvc.Respond(ctx, alex.ID, task.ID, "first")
	require.NoError(t, err)
	_, err = env.taskSvc.Respond(ctx, sam.ID, task.ID, "partner answer")
	require.NoError(t, err)
	updated, err := env.taskSvc.Respond(ctx, alex.ID, task.ID, "second")
	require.NoError(t, err)

	require.Len(t, updated.Responses, 2)
	for _, r := range updated.Responses {
		if r.UserID == alex.ID {
			assert.Equal(t, "second", r.Text)
		}
	}
}

func TestTaskService_SubmitFeedback(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alex, sam := env.addCouple(t)

	task, err := env.taskSvc.GetDaily(ctx, alex.ID)
	require.NoError(t, err)

	samClient := env.listen(t, sam)

	updated, err := env.taskSvc.SubmitFeedback(ctx, alex.ID, task.ID, 4, "fun")
	require.NoError(t, err)
	require.Len(t, updated.Feedback, 1)
	assert.Equal(t, 4, updated.Feedback[0].Rating)

	types := eventTypes(drainEvents(samClient))
	assert.Equal(t, []domain.EventType{domain.EventFeedbackUpdate, domain.EventTriggerGeneration}, types)
}

func TestTaskService_SubmitFeedbackReplacesOwn(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alex, _ := env.addCouple(t)

	task, err := env.taskSvc.GetDaily(ctx, alex.ID)
	require.NoError(t, err)

	_, err = env.taskSvc.SubmitFeedback(ctx, alex.ID, task.ID, 2, "meh")
	require.NoError(t, err)
	updated, err := env.taskSvc.SubmitFeedback(ctx, alex.ID, task.ID, 5, "grew on me")
	require.NoError(t, err)

	require.Len(t, updated.Feedback, 1)
	assert.Equal(t, 5, updated.Feedback[0].Rating)
	assert.Equal(t, "grew on me", updated.Feedback[0].Comment)
}

func TestTaskService_SubmitFeedbackInvalidRating(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alex, _ := env.addCouple(t)

	task, err := env.taskSvc.GetDaily(ctx, alex.ID)
	require.NoError(t, err)

	for _, rating := range []int{0, -1, 6} {
		_, err := env.taskSvc.SubmitFeedback(ctx, alex.ID, task.ID, rating, "")
		assert.ErrorIs(t, err, ErrInvalidRating)
	}
}
