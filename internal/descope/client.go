// Package descope is a client for the Descope management API.
package descope

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/retry"
	"golang.org/x/oauth2"

	"github.com/idmigrate/keycloak-descope/internal/logger"
	"github.com/idmigrate/keycloak-descope/internal/model"
)

const (
	pathLoadAllRoles   = "/v1/mgmt/role/all"
	pathCreateRole     = "/v1/mgmt/role/create"
	pathLoadAllTenants = "/v1/mgmt/tenant/all"
	pathCreateTenant   = "/v1/mgmt/tenant/create"
	pathBatchCreate    = "/v1/mgmt/user/create/batch"
	pathUserStatus     = "/v1/mgmt/user/update/status"

	userStatusDisabled = "disabled"
)

var (
	_ model.RoleClient   = (*Client)(nil)
	_ model.TenantClient = (*Client)(nil)
	_ model.UserClient   = (*Client)(nil)
)

// Config holds connection parameters for the management API.
type Config struct {
	BaseURL       string
	ProjectID     string
	ManagementKey string
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	Clock         clock.Clock
}

// Client calls the management API. Management endpoints authenticate
// with a bearer credential of the form "<project id>:<management key>".
type Client struct {
	http     *http.Client
	baseURL  string
	attempts int
	delay    time.Duration
	clock    clock.Clock
	logger   *logger.Logger
}

// NewClient creates a management API client.
func NewClient(ctx context.Context, cfg Config, l *logger.Logger) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: cfg.ProjectID + ":" + cfg.ManagementKey,
	})
	httpClient := oauth2.NewClient(ctx, ts)
	httpClient.Timeout = cfg.Timeout

	clk := cfg.Clock
	if clk == nil {
		clk = clock.WallClock
	}

	// retry.Call rejects a zero delay or attempt count.
	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = time.Millisecond
	}

	return &Client{
		http:     httpClient,
		baseURL:  cfg.BaseURL,
		attempts: attempts,
		delay:    delay,
		clock:    clk,
		logger:   l,
	}
}

// LoadAllRoles returns every role known to the target project.
func (c *Client) LoadAllRoles(ctx context.Context) ([]model.RemoteRole, error) {
	body, err := c.get(ctx, pathLoadAllRoles)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}

	var doc struct {
		Roles []model.RemoteRole `json:"roles"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode roles response: %w", err)
	}

	return doc.Roles, nil
}

// CreateRole creates one role by name.
func (c *Client) CreateRole(ctx context.Context, name string) error {
	req := struct {
		Name string `json:"name"`
	}{Name: name}

	if err := c.postOK(ctx, pathCreateRole, req); err != nil {
		return fmt.Errorf("failed to create role %q: %w", name, err)
	}

	return nil
}

// LoadAllTenants returns every tenant known to the target project.
func (c *Client) LoadAllTenants(ctx context.Context) ([]model.RemoteTenant, error) {
	body, err := c.get(ctx, pathLoadAllTenants)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenants: %w", err)
	}

	var doc struct {
		Tenants []model.RemoteTenant `json:"tenants"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode tenants response: %w", err)
	}

	return doc.Tenants, nil
}

// CreateTenant creates one tenant with an explicit id.
func (c *Client) CreateTenant(ctx context.Context, name, id string) error {
	req := struct {
		Name string `json:"name"`
		ID   string `json:"id"`
	}{Name: name, ID: id}

	if err := c.postOK(ctx, pathCreateTenant, req); err != nil {
		return fmt.Errorf("failed to create tenant %q: %w", id, err)
	}

	return nil
}

// BatchCreateUsers submits one user creation batch. The response status
// and body are returned as-is; a non-success status is not an error here,
// callers decide how to treat it.
func (c *Client) BatchCreateUsers(ctx context.Context, req model.BatchCreateRequest) (model.BatchCreateResult, error) {
	status, body, err := c.do(ctx, http.MethodPost, pathBatchCreate, req, false)
	if err != nil {
		return model.BatchCreateResult{}, fmt.Errorf("failed to submit user batch: %w", err)
	}

	return model.BatchCreateResult{StatusCode: status, Body: body}, nil
}

// DeactivateUser sets one user's status to disabled.
func (c *Client) DeactivateUser(ctx context.Context, loginID string) error {
	req := struct {
		LoginID string `json:"loginId"`
		Status  string `json:"status"`
	}{LoginID: loginID, Status: userStatusDisabled}

	if err := c.postOK(ctx, pathUserStatus, req); err != nil {
		return fmt.Errorf("failed to deactivate user %q: %w", loginID, err)
	}

	return nil
}

// statusError is a non-success response from the management API.
type statusError struct {
	status int
	body   []byte
}

func (e *statusError) Error() string {
	return fmt.Sprintf("management API status %d: %s", e.status, e.body)
}

// transportError is a failure before any response was received.
type transportError struct{ err error }

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	status, body, err := c.do(ctx, http.MethodGet, path, nil, true)
	if err != nil {
		return nil, err
	}
	if status/100 != 2 {
		return nil, &statusError{status: status, body: body}
	}

	return body, nil
}

func (c *Client) postOK(ctx context.Context, path string, body any) error {
	status, respBody, err := c.do(ctx, http.MethodPost, path, body, false)
	if err != nil {
		return err
	}
	if status/100 != 2 {
		return &statusError{status: status, body: respBody}
	}

	return nil
}

// do sends one request with retries. Transport failures always retry.
// When retryStatus is set, 429 and 5xx responses retry as well; writes
// keep retryStatus off because the management API does not deduplicate
// repeated creates.
func (c *Client) do(ctx context.Context, method, path string, body any, retryStatus bool) (int, []byte, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	var (
		status   int
		respBody []byte
	)
	err := retry.Call(retry.CallArgs{
		Func: func() error {
			var err error
			status, respBody, err = c.roundTrip(ctx, method, path, payload)
			if err != nil {
				return err
			}
			if retryStatus && (status == http.StatusTooManyRequests || status >= http.StatusInternalServerError) {
				return &statusError{status: status, body: respBody}
			}
			return nil
		},
		IsFatalError: func(err error) bool {
			var te *transportError
			var se *statusError
			return !errors.As(err, &te) && !errors.As(err, &se)
		},
		NotifyFunc: func(err error, attempt int) {
			c.logger.Warn("Descope client: retrying request", "method", method, "path", path, "attempt", attempt, "error", err)
		},
		Attempts:    c.attempts,
		Delay:       c.delay,
		BackoffFunc: retry.DoubleDelay,
		Clock:       c.clock,
		Stop:        ctx.Done(),
	})
	if err != nil {
		return 0, nil, err
	}

	return status, respBody, nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, &transportError{err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &transportError{err: err}
	}

	return resp.StatusCode, respBody, nil
}
