package session

import (
	"testing"

	"github.com/caretech-io/telesession/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_BeginStartReservesID(t *testing.T) {
	store := NewStore()

	require.NoError(t, store.BeginStart("42"))
	assert.ErrorIs(t, store.BeginStart("42"), domain.ErrStartInFlight)
}

func TestStore_BeginStartRejectsActiveSession(t *testing.T) {
	store := NewStore()
	store.CommitStart(activeSession("42", "key-42", "u1", []string{"u1"}), nil)

	err := store.BeginStart("42")
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
}

func TestStore_AbortStartReleasesReservation(t *testing.T) {
	store := NewStore()

	require.NoError(t, store.BeginStart("42"))
	store.AbortStart("42")
	assert.NoError(t, store.BeginStart("42"))
}

func TestStore_CommitStartClearsPendingAndPublishesEntry(t *testing.T) {
	store := NewStore()
	sess := activeSession("42", "key-42", "u1", []string{"u1"})

	require.NoError(t, store.BeginStart("42"))
	entry := store.CommitStart(sess, nil)

	got, ok := store.Get("42")
	require.True(t, ok)
	assert.Same(t, entry, got)
	assert.Equal(t, 1, store.Len())

	// Committed sessions are active, not pending: a second start must
	// fail on the active check.
	assert.True(t, domain.IsValidationError(store.BeginStart("42")))
}

func TestStore_RemoveMarksEntryDead(t *testing.T) {
	store := NewStore()
	entry := store.CommitStart(activeSession("42", "key-42", "u1", []string{"u1"}), nil)

	entry.Lock()
	store.Remove("42")
	entry.Unlock()

	assert.True(t, entry.Removed())
	assert.Equal(t, 0, store.Len())
	_, ok := store.Get("42")
	assert.False(t, ok)
}

func TestStore_FindByKey(t *testing.T) {
	store := NewStore()
	store.CommitStart(activeSession("1", "key-1", "u1", []string{"u1"}), nil)
	store.CommitStart(activeSession("2", "key-2", "u2", []string{"u2"}), nil)

	entry, ok := store.FindByKey("key-2")
	require.True(t, ok)
	assert.Equal(t, "2", entry.Session.ID)

	_, ok = store.FindByKey("key-9")
	assert.False(t, ok)
}

func TestStore_IDsSnapshot(t *testing.T) {
	store := NewStore()
	store.CommitStart(activeSession("1", "key-1", "u1", []string{"u1"}), nil)
	store.CommitStart(activeSession("2", "key-2", "u2", []string{"u2"}), nil)

	ids := store.IDs()
	assert.ElementsMatch(t, []string{"1", "2"}, ids)

	// The snapshot stays intact while entries disappear underneath.
	store.Remove("1")
	assert.ElementsMatch(t, []string{"1", "2"}, ids)
	assert.Equal(t, 1, store.Len())
}
