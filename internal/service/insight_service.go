package service

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/vibesync/vibesync/internal/domain"
	"github.com/vibesync/vibesync/internal/realtime"
	"github.com/vibesync/vibesync/internal/repository"
)

const insightWindowDays = 30

type CompletionPoint struct {
	Date      string `json:"date"`
	Completed int    `json:"completed"`
}

type CommunicationPoint struct {
	Date      string `json:"date"`
	Responses int    `json:"responses"`
}

type FeedbackPoint struct {
	Date   time.Time `json:"date"`
	Rating float64   `json:"rating"`
}

type Streaks struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

type InsightSummary struct {
	TotalTasks     int     `json:"totalTasks"`
	TotalResponses int     `json:"totalResponses"`
	AvgRating      float64 `json:"avgRating"`
	CompletionRate float64 `json:"completionRate"`
}

// Insights is the relationship metrics bundle behind the charts page.
type Insights struct {
	CompletionData    []CompletionPoint    `json:"completionData"`
	CommunicationData []CommunicationPoint `json:"communicationData"`
	FeedbackData      []FeedbackPoint      `json:"feedbackData"`
	Streaks           Streaks              `json:"streaks"`
	Summary           InsightSummary       `json:"summary"`
}

type InsightService struct {
	tasks repository.TaskRepository
	users repository.UserRepository
	log   *slog.Logger
}

func NewInsightService(tasks repository.TaskRepository, users repository.UserRepository, log *slog.Logger) *InsightService {
	if log == nil {
		log = slog.Default()
	}
	return &InsightService{tasks: tasks, users: users, log: log}
}

func (s *InsightService) ChartData(ctx context.Context, userID uuid.UUID) (*Insights, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.HasPartner() {
		return nil, ErrNoPartner
	}

	coupleKey := realtime.CoupleRoomID(user.ID, *user.PartnerID)
	completed, err := s.tasks.ListCompleted(ctx, coupleKey, 0)
	if err != nil {
		return nil, err
	}

	// ListCompleted is newest first; the series below want oldest first.
	for i, j := 0, len(completed)-1; i < j; i, j = i+1, j-1 {
		completed[i], completed[j] = completed[j], completed[i]
	}

	now := time.Now().UTC()
	windowStart := now.AddDate(0, 0, -insightWindowDays)

	byDay := make(map[string][]*domain.Task)
	for _, t := range completed {
		if t.Date.Before(windowStart) {
			continue
		}
		day := t.Date.UTC().Format("2006-01-02")
		byDay[day] = append(byDay[day], t)
	}

	completionData := make([]CompletionPoint, 0, insightWindowDays)
	communicationData := make([]CommunicationPoint, 0, insightWindowDays)
	for i := insightWindowDays - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i).Format("2006-01-02")
		tasks := byDay[day]

		responses := 0
		for _, t := range tasks {
			responses += len(t.Responses)
		}

		completionData = append(completionData, CompletionPoint{Date: day, Completed: len(tasks)})
		communicationData = append(communicationData, CommunicationPoint{Date: day, Responses: responses})
	}

	feedbackData := make([]FeedbackPoint, 0)
	totalResponses := 0
	for _, t := range completed {
		totalResponses += len(t.Responses)
		if len(t.Feedback) > 0 {
			feedbackData = append(feedbackData, FeedbackPoint{
				Date:   t.Date.UTC(),
				Rating: round1(t.AverageRating()),
			})
		}
	}

	avgRating := 0.0
	if len(feedbackData) > 0 {
		sum := 0.0
		for _, p := range feedbackData {
			sum += p.Rating
		}
		avgRating = round1(sum / float64(len(feedbackData)))
	}

	completionRate := 0.0
	if len(completed) > 0 {
		completionRate = round1(float64(len(completed)) / float64(insightWindowDays))
	}

	return &Insights{
		CompletionData:    completionData,
		CommunicationData: communicationData,
		FeedbackData:      feedbackData,
		Streaks:           computeStreaks(completed, now),
		Summary: InsightSummary{
			TotalTasks:     len(completed),
			TotalResponses: totalResponses,
			AvgRating:      avgRating,
			CompletionRate: completionRate,
		},
	}, nil
}

// computeStreaks counts consecutive days (ending today or yesterday) with
// at least one completed task, plus the longest such run overall.
func computeStreaks(completed []*domain.Task, now time.Time) Streaks {
	if len(completed) == 0 {
		return Streaks{}
	}

	days := make(map[string]bool, len(completed))
	for _, t := range completed {
		days[t.Date.UTC().Format("2006-01-02")] = true
	}

	maxStreak := 0
	run := 0
	// Walk a generous window backwards from today.
	for i := 0; i <= 2*insightWindowDays; i++ {
		day := now.AddDate(0, 0, -i).Format("2006-01-02")
		if days[day] {
			run++
			if run > maxStreak {
				maxStreak = run
			}
		} else {
			run = 0
		}
	}

	current := 0
	for i := 0; ; i++ {
		day := now.AddDate(0, 0, -i).Format("2006-01-02")
		if days[day] {
			current++
			continue
		}
		// A gap today alone does not break the streak: the couple may
		// simply not have completed today's task yet.
		if i == 0 {
			continue
		}
		break
	}

	return Streaks{Current: current, Max: maxStreak}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
