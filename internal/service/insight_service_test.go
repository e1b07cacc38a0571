package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vibesync/vibesync/internal/domain"
	"github.com/vibesync/vibesync/internal/realtime"
)

// seedCompletedTask stores a completed task dated daysAgo with the given
// feedback ratings.
func seedCompletedTask(t *testing.T, env *testEnv, coupleKey string, daysAgo int, ratings ...int) *domain.Task {
	t.Helper()

	task := domain.NewTask(coupleKey, "seeded", "a seeded task", "Fun", false)
	task.Date = time.Now().UTC().AddDate(0, 0, -daysAgo)
	task.Complete()
	for _, rating := range ratings {
		task.SetFeedback(uuid.New(), rating, "")
	}
	require.NoError(t, env.tasks.Create(context.Background(), task))
	return task
}

func TestInsightService_RequiresPartner(t *testing.T) {
	env := newTestEnv(t)

	alex := env.addUser(t, "alex", "alex@example.com")

	_, err := env.insights.ChartData(context.Background(), alex.ID)
	assert.ErrorIs(t, err, ErrNoPartner)
}

func TestInsightService_EmptyHistory(t *testing.T) {
	env := newTestEnv(t)

	alex, _ := env.addCouple(t)

	insights, err := env.insights.ChartData(context.Background(), alex.ID)
	require.NoError(t, err)
	assert.Len(t, insights.CompletionData, 30)
	assert.Len(t, insights.CommunicationData, 30)
	assert.Empty(t, insights.FeedbackData)
	assert.Equal(t, Streaks{}, insights.Streaks)
	assert.Equal(t, 0, insights.Summary.TotalTasks)
}

func TestInsightService_SeriesAndSummary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alex, sam := env.addCouple(t)
	coupleKey := realtime.CoupleRoomID(alex.ID, sam.ID)

	seedCompletedTask(t, env, coupleKey, 2, 4)
	seedCompletedTask(t, env, coupleKey, 1, 5, 4)

	insights, err := env.insights.ChartData(ctx, alex.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, insights.Summary.TotalTasks)
	require.Len(t, insights.FeedbackData, 2)
	// Oldest first; the second task averages 4.5.
	assert.Equal(t, 4.0, insights.FeedbackData[0].Rating)
	assert.Equal(t, 4.5, insights.FeedbackData[1].Rating)
	assert.Equal(t, 4.3, insights.Summary.AvgRating)

	completedDays := 0
	for _, p := range insights.CompletionData {
		completedDays += p.Completed
	}
	assert.Equal(t, 2, completedDays)
}

func TestInsightService_Streaks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alex, sam := env.addCouple(t)
	coupleKey := realtime.CoupleRoomID(alex.ID, sam.ID)

	// Three consecutive days ending yesterday, plus an older two-day run
	// separated by a gap.
	for _, daysAgo := range []int{1, 2, 3, 6, 7} {
		seedCompletedTask(t, env, coupleKey, daysAgo)
	}

	insights, err := env.insights.ChartData(ctx, alex.ID)
	require.NoError(t, err)

	// Nothing completed today yet does not break the current streak.
	assert.Equal(t, 3, insights.Streaks.Current)
	assert.Equal(t, 3, insights.Streaks.Max)
}

func TestInsightService_OldTasksOutsideWindow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alex, sam := env.addCouple(t)
	coupleKey := realtime.CoupleRoomID(alex.ID, sam.ID)

	seedCompletedTask(t, env, coupleKey, 45, 5)

	insights, err := env.insights.ChartData(ctx, alex.ID)
	require.NoError(t, err)

	for _, p := range insights.CompletionData {
		assert.Zero(t, p.Completed)
	}
	// The feedback series and totals still count the full history.
	assert.Equal(t, 1, insights.Summary.TotalTasks)
	assert.Len(t, insights.FeedbackData, 1)
}
