package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/caretech-io/telesession/pkg/domain/session"
	"github.com/caretech-io/telesession/pkg/infra/bus"
	"github.com/caretech-io/telesession/pkg/infra/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStop_TearsDownAndNotifiesEveryMember(t *testing.T) {
	f := newOrchestratorFixture(t)

	sess := activeSession("42", "key-42", "u1", []string{"u1", "u2"})
	sess.Members.Participants = []string{"p1"}
	_, roomSub := f.seedActive(sess)

	f.rooms.On("DestroyRoom", mock.Anything, "key-42").Return(nil)
	f.registry.On("AppendEvent", mock.Anything, "42", session.EventStop, "").
		Return(&session.LifecycleEvent{SessionID: "42", Type: session.EventStop, Time: time.Now()}, nil)
	f.registry.On("CompleteSession", mock.Anything, "42", mock.AnythingOfType("int")).
		Return(&registry.Record{ID: "42"}, nil)

	result := f.orch.Manage(context.Background(), Command{Action: ActionStop, SessionID: "42"})

	require.Equal(t, StatusStopped, result.Status)
	assert.Equal(t, session.StatusCompleted, result.Session.Status)
	assert.Equal(t, 0, f.store.Len())
	assert.True(t, roomSub.isUnsubscribed())

	topics := f.bus.publishedTopics()
	assert.ElementsMatch(t, []string{
		bus.NotifyTopic(session.ClassUser, "u1"),
		bus.NotifyTopic(session.ClassUser, "u2"),
		bus.NotifyTopic(session.ClassParticipant, "p1"),
	}, topics)

	f.rooms.AssertExpectations(t)
	f.registry.AssertExpectations(t)
}

func TestStop_DurationAccumulatesAcrossResumes(t *testing.T) {
	f := newOrchestratorFixture(t)

	sess := activeSession("42", "key-42", "u1", []string{"u1"})
	sess.CumulativeDurationSeconds = 100
	sess.Events = []session.LifecycleEvent{
		{SessionID: "42", Type: session.EventStart, Time: time.Now().Add(-5 * time.Second)},
	}
	f.seedActive(sess)

	f.rooms.On("DestroyRoom", mock.Anything, "key-42").Return(nil)
	f.registry.On("AppendEvent", mock.Anything, "42", session.EventStop, "").
		Return(&session.LifecycleEvent{SessionID: "42", Type: session.EventStop, Time: time.Now()}, nil)
	f.registry.On("CompleteSession", mock.Anything, "42", mock.MatchedBy(func(duration int) bool {
		return duration >= 104 && duration <= 107
	})).Return(&registry.Record{ID: "42"}, nil)

	result := f.orch.Stop(context.Background(), "42")

	require.Equal(t, StatusStopped, result.Status)
	assert.GreaterOrEqual(t, result.Session.Duration, 104)
	assert.LessOrEqual(t, result.Session.Duration, 107)
	f.registry.AssertExpectations(t)
}

func TestStop_UnknownSession(t *testing.T) {
	f := newOrchestratorFixture(t)

	result := f.orch.Stop(context.Background(), "42")

	assert.Equal(t, StatusError, result.Status)
	assert.Equal(t, "no matching session to stop", result.ErrorText)
}

func TestStop_SessionWithUncommittedStart(t *testing.T) {
	f := newOrchestratorFixture(t)
	require.NoError(t, f.store.BeginStart("42"))

	result := f.orch.Stop(context.Background(), "42")

	// A start in flight has not published the session yet, so there is
	// nothing to stop.
	assert.Equal(t, StatusError, result.Status)
	assert.Equal(t, "no matching session to stop", result.ErrorText)
}

func TestStop_MissingSessionID(t *testing.T) {
	f := newOrchestratorFixture(t)

	result := f.orch.Stop(context.Background(), "")

	assert.Equal(t, StatusError, result.Status)
	assert.Equal(t, "missing id_session", result.ErrorText)
}

func TestStop_StopEventFailureStillRemovesSession(t *testing.T) {
	f := newOrchestratorFixture(t)

	sess := activeSession("42", "key-42", "u1", []string{"u1"})
	_, roomSub := f.seedActive(sess)

	f.rooms.On("DestroyRoom", mock.Anything, "key-42").Return(nil)
	f.registry.On("AppendEvent", mock.Anything, "42", session.EventStop, "").
		Return(nil, errors.New("registry unavailable"))

	result := f.orch.Stop(context.Background(), "42")

	assert.Equal(t, StatusError, result.Status)
	assert.Equal(t, "cannot create stop session event", result.ErrorText)
	// Teardown is one-way: the session leaves the table even though the
	// stop event could not be recorded.
	assert.Equal(t, 0, f.store.Len())
	assert.True(t, roomSub.isUnsubscribed())
	assert.Empty(t, f.bus.published)
	f.registry.AssertNotCalled(t, "CompleteSession", mock.Anything, mock.Anything, mock.Anything)
}

func TestStop_CompletionPersistFailureStillNotifies(t *testing.T) {
	f := newOrchestratorFixture(t)

	sess := activeSession("42", "key-42", "u1", []string{"u1", "u2"})
	f.seedActive(sess)

	f.rooms.On("DestroyRoom", mock.Anything, "key-42").Return(nil)
	f.registry.On("AppendEvent", mock.Anything, "42", session.EventStop, "").
		Return(&session.LifecycleEvent{SessionID: "42", Type: session.EventStop, Time: time.Now()}, nil)
	f.registry.On("CompleteSession", mock.Anything, "42", mock.AnythingOfType("int")).
		Return(nil, errors.New("registry unavailable"))

	result := f.orch.Stop(context.Background(), "42")

	require.Equal(t, StatusStopped, result.Status)
	assert.Len(t, f.bus.published, 2)
}

func TestStop_RoomDestroyFailureIsNotFatal(t *testing.T) {
	f := newOrchestratorFixture(t)

	sess := activeSession("42", "key-42", "u1", []string{"u1"})
	f.seedActive(sess)

	f.rooms.On("DestroyRoom", mock.Anything, "key-42").Return(errors.New("already gone"))
	f.registry.On("AppendEvent", mock.Anything, "42", session.EventStop, "").
		Return(&session.LifecycleEvent{SessionID: "42", Type: session.EventStop, Time: time.Now()}, nil)
	f.registry.On("CompleteSession", mock.Anything, "42", mock.AnythingOfType("int")).
		Return(&registry.Record{ID: "42"}, nil)

	result := f.orch.Stop(context.Background(), "42")

	assert.Equal(t, StatusStopped, result.Status)
	assert.Equal(t, 0, f.store.Len())
}
