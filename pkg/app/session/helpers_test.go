package session

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/caretech-io/telesession/pkg/domain/session"
	"github.com/caretech-io/telesession/pkg/infra/bus"
	"github.com/caretech-io/telesession/pkg/infra/bus/message"
	registryMocks "github.com/caretech-io/telesession/pkg/infra/registry/mocks"
	roomsMocks "github.com/caretech-io/telesession/pkg/infra/rooms/mocks"
	"github.com/sirupsen/logrus"
)

type publishedMessage struct {
	Topic   string
	Message message.Message
}

type fakeSubscription struct {
	mu           sync.Mutex
	pattern      string
	handler      bus.Handler
	unsubscribed bool
}

func (s *fakeSubscription) Pattern() string { return s.pattern }

func (s *fakeSubscription) Unsubscribe() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unsubscribed = true
	return nil
}

func (s *fakeSubscription) isUnsubscribed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unsubscribed
}

// fakeBus records publications and hands out inspectable subscriptions,
// standing in for the redis-backed bus.
type fakeBus struct {
	mu           sync.Mutex
	published    []publishedMessage
	subs         []*fakeSubscription
	publishErr   error
	subscribeErr error
}

func (b *fakeBus) Publish(ctx context.Context, topic string, msg message.Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.publishErr != nil {
		return b.publishErr
	}
	b.published = append(b.published, publishedMessage{Topic: topic, Message: msg})
	return nil
}

func (b *fakeBus) SubscribePattern(
	ctx context.Context,
	pattern string,
	handler bus.Handler,
) (bus.Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subscribeErr != nil {
		return nil, b.subscribeErr
	}
	sub := &fakeSubscription{pattern: pattern, handler: handler}
	b.subs = append(b.subs, sub)
	return sub, nil
}

func (b *fakeBus) publishedTopics() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	topics := make([]string, 0, len(b.published))
	for _, p := range b.published {
		topics = append(topics, p.Topic)
	}
	return topics
}

func (b *fakeBus) publishedOn(topic string) []message.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	var msgs []message.Message
	for _, p := range b.published {
		if p.Topic == topic {
			msgs = append(msgs, p.Message)
		}
	}
	return msgs
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type orchestratorFixture struct {
	orch     *Orchestrator
	store    *Store
	registry *registryMocks.MockClient
	rooms    *roomsMocks.MockManager
	bus      *fakeBus
}

func newOrchestratorFixture(t *testing.T) *orchestratorFixture {
	t.Helper()

	registryClient := new(registryMocks.MockClient)
	roomManager := new(roomsMocks.MockManager)
	b := &fakeBus{}
	store := NewStore()

	orch := NewOrchestrator(
		testLogger(),
		store,
		registryClient,
		roomManager,
		b,
		nil,
		ServiceConfig{
			ID:          "1",
			UUID:        "service-uuid",
			Key:         "telesession",
			JoinMessage: "Please join the session",
		},
	)

	return &orchestratorFixture{
		orch:     orch,
		store:    store,
		registry: registryClient,
		rooms:    roomManager,
		bus:      b,
	}
}

// seedActive places a session straight into the in-memory table, as if a
// start had committed it.
func (f *orchestratorFixture) seedActive(sess *session.Session) (*Active, *fakeSubscription) {
	sub := &fakeSubscription{pattern: bus.RoomPattern(sess.Key)}
	entry := f.store.CommitStart(sess, sub)
	return entry, sub
}

func activeSession(id, key, creator string, users []string) *session.Session {
	return &session.Session{
		ID:            id,
		UUID:          "uuid-" + id,
		Key:           key,
		RoomURL:       "https://rooms.example.org:40000/?key=" + key,
		CreatorUserID: creator,
		Members:       session.Members{Users: users},
		Events: []session.LifecycleEvent{
			{SessionID: id, Type: session.EventStart, Time: time.Now().Add(-time.Minute)},
		},
		Status: session.StatusActive,
	}
}
