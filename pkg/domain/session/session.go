package session

import (
	"time"
)

// NewSessionID is the sentinel session id used by a start command to
// request a brand-new durable record instead of resuming an existing one.
const NewSessionID = "new"

type Status int

const (
	StatusPending Status = iota
	StatusActive
	StatusCompleted
)

// IdentityClass is one of the three disjoint categories of session
// participants.
type IdentityClass string

const (
	ClassUser        IdentityClass = "user"
	ClassParticipant IdentityClass = "participant"
	ClassDevice      IdentityClass = "device"
)

// EventType values match the registry's session event type codes.
type EventType int

const (
	EventStart  EventType = 3
	EventStop   EventType = 4
	EventJoined EventType = 12
	EventLeft   EventType = 13
)

// LifecycleEvent is an append-only record attached to a durable session.
// The event list is never rewritten, only appended.
type LifecycleEvent struct {
	ID        string    `json:"id_session_event"`
	SessionID string    `json:"id_session"`
	Type      EventType `json:"id_session_event_type"`
	Time      time.Time `json:"session_event_datetime"`
	Context   string    `json:"session_event_context"`
	Text      string    `json:"session_event_text,omitempty"`
}

// Members holds the three membership sets of a session. Entries are
// append/remove, never silently deduplicated against history.
type Members struct {
	Users        []string `json:"session_users"`
	Participants []string `json:"session_participants"`
	Devices      []string `json:"session_devices"`
}

func (m *Members) Add(users, participants, devices []string) {
	m.Users = append(m.Users, users...)
	m.Participants = append(m.Participants, participants...)
	m.Devices = append(m.Devices, devices...)
}

func (m *Members) Remove(users, participants, devices []string) {
	m.Users = filterOut(m.Users, users)
	m.Participants = filterOut(m.Participants, participants)
	m.Devices = filterOut(m.Devices, devices)
}

func (m *Members) ContainsUser(uuid string) bool        { return contains(m.Users, uuid) }
func (m *Members) ContainsParticipant(uuid string) bool { return contains(m.Participants, uuid) }
func (m *Members) ContainsDevice(uuid string) bool      { return contains(m.Devices, uuid) }

func (m *Members) Clone() Members {
	return Members{
		Users:        append([]string(nil), m.Users...),
		Participants: append([]string(nil), m.Participants...),
		Devices:      append([]string(nil), m.Devices...),
	}
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

func filterOut(list []string, removed []string) []string {
	kept := make([]string, 0, len(list))
	for _, v := range list {
		if !contains(removed, v) {
			kept = append(kept, v)
		}
	}
	return kept
}

// Session is the orchestrator's in-memory view of an active session. The
// registry owns the durable record; this instance only exists while the
// session is in progress.
type Session struct {
	ID              string
	UUID            string
	Key             string
	RoomURL         string
	CreatorUserID   string
	CreatorUserName string
	Members         Members
	Parameters      map[string]interface{}
	Events          []LifecycleEvent

	// CumulativeDurationSeconds is the duration accrued before this
	// in-memory instantiation, loaded from the durable record.
	CumulativeDurationSeconds int

	// StartedAt is the durable record's original start timestamp, used
	// as a fallback when no start event is found.
	StartedAt time.Time

	Status Status
}

func (s *Session) AppendEvent(ev LifecycleEvent) {
	s.Events = append(s.Events, ev)
}

// DurationAt reconstructs the session's total duration at the given
// instant. The interval just elapsed is measured from the most recent
// start event (sessions may be stopped and resumed against the same
// durable id, only the latest active interval counts); when no start
// event exists the record's original start timestamp is used instead.
// The record's pre-existing cumulative duration is added on top.
func (s *Session) DurationAt(now time.Time) int {
	elapsed := 0
	for _, ev := range s.Events {
		if ev.Type == EventStart {
			elapsed = int(now.Sub(ev.Time).Seconds())
		}
	}
	if elapsed == 0 && !s.StartedAt.IsZero() {
		elapsed = int(now.Sub(s.StartedAt).Seconds())
	}
	return elapsed + s.CumulativeDurationSeconds
}

// Snapshot is the JSON view of a session returned to command callers.
type Snapshot struct {
	ID              string                 `json:"id_session"`
	UUID            string                 `json:"session_uuid"`
	Key             string                 `json:"session_key"`
	RoomURL         string                 `json:"session_url"`
	CreatorUserID   string                 `json:"id_creator_user,omitempty"`
	CreatorUserName string                 `json:"session_creator_user,omitempty"`
	Users           []string               `json:"session_users"`
	Participants    []string               `json:"session_participants"`
	Devices         []string               `json:"session_devices"`
	Parameters      map[string]interface{} `json:"session_parameters,omitempty"`
	Events          []LifecycleEvent       `json:"session_events"`
	Duration        int                    `json:"session_duration"`
	Status          Status                 `json:"session_status"`
}

func (s *Session) Snapshot() Snapshot {
	members := s.Members.Clone()
	return Snapshot{
		ID:              s.ID,
		UUID:            s.UUID,
		Key:             s.Key,
		RoomURL:         s.RoomURL,
		CreatorUserID:   s.CreatorUserID,
		CreatorUserName: s.CreatorUserName,
		Users:           members.Users,
		Participants:    members.Participants,
		Devices:         members.Devices,
		Parameters:      s.Parameters,
		Events:          append([]LifecycleEvent(nil), s.Events...),
		Duration:        s.CumulativeDurationSeconds,
		Status:          s.Status,
	}
}
