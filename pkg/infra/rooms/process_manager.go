package rooms

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"
)

type Config struct {
	// Executable is launched once per room with --key and --port flags.
	Executable    string
	PublicBaseURL string
	PortRangeMin  int
	PortRangeMax  int
	// RedisAddr is handed to the room process so it can publish its
	// readiness signal on the room topic.
	RedisAddr string
}

type roomProcess struct {
	room *Room
	cmd  *exec.Cmd
}

type processManager struct {
	logger *logrus.Logger
	cfg    Config

	mu        sync.Mutex
	processes map[string]*roomProcess
	usedPorts map[int]bool
}

func NewProcessManager(logger *logrus.Logger, cfg Config) Manager {
	return &processManager{
		logger:    logger,
		cfg:       cfg,
		processes: make(map[string]*roomProcess),
		usedPorts: make(map[int]bool),
	}
}

func (m *processManager) CreateRoom(
	ctx context.Context,
	key, creatorID string,
	users, participants, devices []string,
) (*Room, error) {
	if m.cfg.Executable == "" {
		return nil, fmt.Errorf("no room executable configured")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.processes[key]; exists {
		return nil, fmt.Errorf("room %s already exists", key)
	}

	port, err := m.allocatePortLocked()
	if err != nil {
		return nil, err
	}

	args := []string{
		"--key", key,
		"--port", strconv.Itoa(port),
		"--owner", creatorID,
		"--members", strconv.Itoa(len(users) + len(participants) + len(devices)),
	}
	if m.cfg.RedisAddr != "" {
		args = append(args, "--redis", m.cfg.RedisAddr)
	}

	cmd := exec.Command(m.cfg.Executable, args...)
	if err := cmd.Start(); err != nil {
		delete(m.usedPorts, port)
		return nil, fmt.Errorf("starting room process: %w", err)
	}

	room := &Room{
		Key:  key,
		URL:  fmt.Sprintf("%s:%d/?key=%s", m.cfg.PublicBaseURL, port, key),
		Port: port,
	}
	m.processes[key] = &roomProcess{room: room, cmd: cmd}

	m.logger.WithFields(logrus.Fields{
		"room_key": key,
		"port":     port,
		"pid":      cmd.Process.Pid,
	}).Info("room process started")

	go m.reap(key, cmd)

	return room, nil
}

func (m *processManager) DestroyRoom(ctx context.Context, key string) error {
	m.mu.Lock()
	process, ok := m.processes[key]
	if ok {
		delete(m.processes, key)
		delete(m.usedPorts, process.room.Port)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("no room process for key %s", key)
	}

	if process.cmd.Process != nil {
		if err := process.cmd.Process.Kill(); err != nil {
			m.logger.WithError(err).WithField("room_key", key).Warn("failed to kill room process")
			return err
		}
	}

	m.logger.WithField("room_key", key).Info("room process stopped")
	return nil
}

// reap waits for the process so exited rooms don't linger as zombies.
// A room that dies on its own is forgotten; the orchestrator learns
// about it through the absent readiness signal.
func (m *processManager) reap(key string, cmd *exec.Cmd) {
	err := cmd.Wait()

	m.mu.Lock()
	if process, ok := m.processes[key]; ok && process.cmd == cmd {
		delete(m.processes, key)
		delete(m.usedPorts, process.room.Port)
	}
	m.mu.Unlock()

	if err != nil {
		m.logger.WithError(err).WithField("room_key", key).Debug("room process exited")
	}
}

func (m *processManager) allocatePortLocked() (int, error) {
	for port := m.cfg.PortRangeMin; port <= m.cfg.PortRangeMax; port++ {
		if !m.usedPorts[port] {
			m.usedPorts[port] = true
			return port, nil
		}
	}
	return 0, fmt.Errorf("no free port in range %d-%d", m.cfg.PortRangeMin, m.cfg.PortRangeMax)
}
