package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/caretech-io/telesession/pkg/infra/httpx"
	"github.com/sirupsen/logrus"
)

const (
	participantsPath = "/api/service/participants"
	usersPath        = "/api/service/users"
)

// Participant is the directory's identity metadata for a participant.
type Participant struct {
	UUID      string `json:"participant_uuid"`
	Name      string `json:"participant_name"`
	ProjectID string `json:"id_project,omitempty"`
	Enabled   bool   `json:"participant_enabled"`
}

type User struct {
	UUID     string `json:"user_uuid"`
	Name     string `json:"user_name"`
	FullName string `json:"user_fullname,omitempty"`
	Enabled  bool   `json:"user_enabled"`
}

//go:generate mockery --name=Client --dir=. --output=./mocks --filename=client_mock.go --case=underscore --with-expecter
type Client interface {
	GetParticipant(ctx context.Context, uuid string) (*Participant, error)
	GetUser(ctx context.Context, uuid string) (*User, error)
}

type Config struct {
	BaseURL string
	Token   string
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

func (c *httpClient) GetParticipant(ctx context.Context, uuid string) (*Participant, error) {
	var participant Participant
	if err := c.get(ctx, participantsPath, "participant_uuid", uuid, &participant); err != nil {
		return nil, fmt.Errorf("fetching participant %s: %w", uuid, err)
	}
	return &participant, nil
}

func (c *httpClient) GetUser(ctx context.Context, uuid string) (*User, error) {
	var user User
	if err := c.get(ctx, usersPath, "user_uuid", uuid, &user); err != nil {
		return nil, fmt.Errorf("fetching user %s: %w", uuid, err)
	}
	return &user, nil
}

func (c *httpClient) get(ctx context.Context, path, queryKey, queryValue string, out interface{}) error {
	query := url.Values{}
	query.Set(queryKey, queryValue)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	var body []byte
	err = c.breaker.Execute(func() error {
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
			return fmt.Errorf("directory returned status %d", resp.StatusCode)
		}
		return nil
	})
	if err != nil {
		return err
	}

	return json.Unmarshal(body, out)
}
