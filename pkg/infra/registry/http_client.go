package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/caretech-io/telesession/pkg/domain/session"
	"github.com/caretech-io/telesession/pkg/infra/httpx"
	"github.com/sirupsen/logrus"
)

const (
	sessionsPath = "/api/service/sessions"
	eventsPath   = "/api/service/sessions/events"
)

type Config struct {
	BaseURL string
	Token   string
	// ServiceKey labels appended lifecycle events with their origin.
	ServiceKey string
}

type httpClient struct {
	logger  *logrus.Logger
	client  httpx.Client
	breaker httpx.CircuitBreaker
	cfg     Config
}

func NewHTTPClient(
	logger *logrus.Logger,
	client httpx.Client,
	breaker httpx.CircuitBreaker,
	cfg Config,
) Client {
	return &httpClient{
		logger:  logger,
		client:  client,
		breaker: breaker,
		cfg:     cfg,
	}
}

func (c *httpClient) CreateSession(ctx context.Context, req CreateSessionRequest) (*Record, error) {
	body := map[string]interface{}{
		"session": map[string]interface{}{
			"id_session":                 session.NewSessionID,
			"id_creator_user":            req.CreatorUserID,
			"id_session_type":            req.SessionTypeID,
			"session_users_uuids":        req.Users,
			"session_participants_uuids": req.Participants,
			"session_devices_uuids":      req.Devices,
			"session_parameters":         req.Parameters,
		},
	}

	var record Record
	if err := c.post(ctx, sessionsPath, body, &record); err != nil {
		return nil, fmt.Errorf("creating session record: %w", err)
	}
	return &record, nil
}

func (c *httpClient) GetSessionWithEvents(ctx context.Context, id string) (*Record, error) {
	query := url.Values{}
	query.Set("id_session", id)
	query.Set("with_events", "1")

	var record Record
	if err := c.get(ctx, sessionsPath, query, &record); err != nil {
		return nil, fmt.Errorf("fetching session record %s: %w", id, err)
	}
	return &record, nil
}

func (c *httpClient) UpdateMembership(ctx context.Context, id string, members session.Members) (*Record, error) {
	body := map[string]interface{}{
		"session": map[string]interface{}{
			"id_session":                 id,
			"session_users_uuids":        members.Users,
			"session_participants_uuids": members.Participants,
			"session_devices_uuids":      members.Devices,
		},
	}

	var record Record
	if err := c.post(ctx, sessionsPath, body, &record); err != nil {
		return nil, fmt.Errorf("updating session %s membership: %w", id, err)
	}
	return &record, nil
}

func (c *httpClient) CompleteSession(ctx context.Context, id string, durationSeconds int) (*Record, error) {
	body := map[string]interface{}{
		"session": map[string]interface{}{
			"id_session":       id,
			"session_status":   session.StatusCompleted,
			"session_duration": durationSeconds,
		},
	}

	var record Record
	if err := c.post(ctx, sessionsPath, body, &record); err != nil {
		return nil, fmt.Errorf("completing session %s: %w", id, err)
	}
	return &record, nil
}

func (c *httpClient) AppendEvent(
	ctx context.Context,
	id string,
	eventType session.EventType,
	text string,
) (*session.LifecycleEvent, error) {
	eventBody := map[string]interface{}{
		"id_session_event":       0,
		"id_session":             id,
		"id_session_event_type":  eventType,
		"session_event_datetime": time.Now().Format(time.RFC3339Nano),
		"session_event_context":  c.cfg.ServiceKey,
	}
	if text != "" {
		eventBody["session_event_text"] = text
	}

	var event session.LifecycleEvent
	if err := c.post(ctx, eventsPath, map[string]interface{}{"session_event": eventBody}, &event); err != nil {
		return nil, fmt.Errorf("appending session %s event: %w", id, err)
	}
	return &event, nil
}

func (c *httpClient) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *httpClient) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *httpClient) do(req *http.Request, out interface{}) error {
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	var body []byte
	err := c.breaker.Execute(func() error {
		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("registry returned status %d", resp.StatusCode)
		}
		return nil
	})
	if err != nil {
		return err
	}

	return unwrapJSON(body, out)
}

// unwrapJSON decodes a registry payload into out. Update and query calls
// answer with single-element lists, which are unwrapped transparently.
func unwrapJSON(body []byte, out interface{}) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		if len(items) == 0 {
			return fmt.Errorf("registry returned an empty list")
		}
		return json.Unmarshal(items[len(items)-1], out)
	}
	return json.Unmarshal(trimmed, out)
}
