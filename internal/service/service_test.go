package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/vibesync/vibesync/internal/ai"
	"github.com/vibesync/vibesync/internal/auth"
	"github.com/vibesync/vibesync/internal/domain"
	"github.com/vibesync/vibesync/internal/realtime"
	"github.com/vibesync/vibesync/internal/repository"
)

// testEnv bundles in-memory repositories with the full service stack, so
// tests exercise real wiring rather than mocks of our own interfaces.
type testEnv struct {
	users    *repository.InMemoryUserRepository
	tasks    *repository.InMemoryTaskRepository
	messages *repository.InMemoryMessageRepository
	hub      *realtime.Hub

	auth     *AuthService
	partners *PartnerService
	taskSvc  *TaskService
	chat     *ChatService
	insights *InsightService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := repository.NewInMemoryUserRepository()
	tasks := repository.NewInMemoryTaskRepository()
	messages := repository.NewInMemoryMessageRepository()
	hub := realtime.NewHub(realtime.NewInMemoryRegistry(), nil)

	tokens := auth.NewJWTManager("test-secret", time.Hour)
	hasher := auth.NewPasswordHasher()

	return &testEnv{
		users:    users,
		tasks:    tasks,
		messages: messages,
		hub:      hub,
		auth:     NewAuthService(users, tokens, hasher, hub, "http://localhost:3000", nil),
		partners: NewPartnerService(users, hub, nil),
		taskSvc:  NewTaskService(tasks, users, ai.StaticGenerator{}, hub, nil),
		chat:     NewChatService(messages, nil),
		insights: NewInsightService(tasks, users, nil),
	}
}

func (e *testEnv) addUser(t *testing.T, name, email string) *domain.User {
	t.Helper()

	user, _, err := e.auth.Register(context.Background(), name, email, "password")
	require.NoError(t, err)
	return user
}

// addCouple registers two users and links them through the normal connect
// flow.
func (e *testEnv) addCouple(t *testing.T) (*domain.User, *domain.User) {
	t.Helper()
	ctx := context.Background()

	alex := e.addUser(t, "alex", "alex@example.com")
	sam := e.addUser(t, "sam", "sam@example.com")

	_, err := e.partners.Connect(ctx, sam.ID, alex.PartnerLinkCode)
	require.NoError(t, err)

	alex, err = e.users.GetByID(ctx, alex.ID)
	require.NoError(t, err)
	sam, err = e.users.GetByID(ctx, sam.ID)
	require.NoError(t, err)
	return alex, sam
}

// listen registers a connected client for the user and announces presence,
// so broadcasts addressed to the couple can be observed on its channel.
func (e *testEnv) listen(t *testing.T, user *domain.User) *domain.Client {
	t.Helper()

	c := domain.NewClient(user.ID, user.Name)
	e.hub.Register(c)
	partnerID := uuid.Nil
	if user.HasPartner() {
		partnerID = *user.PartnerID
	}
	e.hub.Announce(context.Background(), c, partnerID)
	drainEvents(c)
	return c
}

func drainEvents(c *domain.Client) []domain.Event {
	var events []domain.Event
	for {
		select {
		case e := <-c.Events:
			events = append(events, e)
		default:
			return events
		}
	}
}

func eventTypes(events []domain.Event) []domain.EventType {
	types := make([]domain.EventType, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type)
	}
	return types
}
