package rooms

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fakeRoomExecutable is a stand-in room binary that accepts any flags
// and blocks until killed.
func fakeRoomExecutable(t *testing.T) string {
	t.Helper()
	script := filepath.Join(t.TempDir(), "room.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nsleep 60\n"), 0o755))
	return script
}

func TestCreateRoom_RequiresExecutable(t *testing.T) {
	manager := NewProcessManager(testLogger(), Config{PublicBaseURL: "https://rooms.example.org"})

	_, err := manager.CreateRoom(context.Background(), "key-1", "u1", []string{"u1"}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no room executable")
}

func TestCreateRoom_AllocatesPortAndBuildsURL(t *testing.T) {
	manager := NewProcessManager(testLogger(), Config{
		Executable:    fakeRoomExecutable(t),
		PublicBaseURL: "https://rooms.example.org",
		PortRangeMin:  41000,
		PortRangeMax:  41001,
	})

	room, err := manager.CreateRoom(context.Background(), "key-1", "u1", []string{"u1"}, nil, nil)
	require.NoError(t, err)
	defer func() { _ = manager.DestroyRoom(context.Background(), "key-1") }()

	assert.Equal(t, "key-1", room.Key)
	assert.Equal(t, 41000, room.Port)
	assert.Equal(t, "https://rooms.example.org:41000/?key=key-1", room.URL)
}

func TestCreateRoom_RejectsDuplicateKey(t *testing.T) {
	manager := NewProcessManager(testLogger(), Config{
		Executable:    fakeRoomExecutable(t),
		PublicBaseURL: "https://rooms.example.org",
		PortRangeMin:  41010,
		PortRangeMax:  41012,
	})

	_, err := manager.CreateRoom(context.Background(), "key-1", "u1", []string{"u1"}, nil, nil)
	require.NoError(t, err)
	defer func() { _ = manager.DestroyRoom(context.Background(), "key-1") }()

	_, err = manager.CreateRoom(context.Background(), "key-1", "u1", []string{"u1"}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestCreateRoom_PortExhaustion(t *testing.T) {
	manager := NewProcessManager(testLogger(), Config{
		Executable:    fakeRoomExecutable(t),
		PublicBaseURL: "https://rooms.example.org",
		PortRangeMin:  41020,
		PortRangeMax:  41020,
	})

	_, err := manager.CreateRoom(context.Background(), "key-1", "u1", []string{"u1"}, nil, nil)
	require.NoError(t, err)
	defer func() { _ = manager.DestroyRoom(context.Background(), "key-1") }()

	_, err = manager.CreateRoom(context.Background(), "key-2", "u1", []string{"u1"}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no free port")
}

func TestDestroyRoom_ReleasesPort(t *testing.T) {
	manager := NewProcessManager(testLogger(), Config{
		Executable:    fakeRoomExecutable(t),
		PublicBaseURL: "https://rooms.example.org",
		PortRangeMin:  41030,
		PortRangeMax:  41030,
	})

	_, err := manager.CreateRoom(context.Background(), "key-1", "u1", []string{"u1"}, nil, nil)
	require.NoError(t, err)
	require.NoError(t, manager.DestroyRoom(context.Background(), "key-1"))

	room, err := manager.CreateRoom(context.Background(), "key-2", "u1", []string{"u1"}, nil, nil)
	require.NoError(t, err)
	defer func() { _ = manager.DestroyRoom(context.Background(), "key-2") }()
	assert.Equal(t, 41030, room.Port)
}

func TestDestroyRoom_UnknownKey(t *testing.T) {
	manager := NewProcessManager(testLogger(), Config{Executable: fakeRoomExecutable(t)})

	err := manager.DestroyRoom(context.Background(), "key-9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no room process")
}
