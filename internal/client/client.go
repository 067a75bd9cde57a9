// Package client is a typed client for the CUTRACKIT JSON API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cutrackit/internal/application/orchestrators"
	"cutrackit/internal/application/projections"
)

// DefaultTimeout bounds each request when no http.Client is supplied.
const DefaultTimeout = 15 * time.Second

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api returned %d", e.Status)
	}
	return fmt.Sprintf("api returned %d %s: %s", e.Status, e.Code, e.Message)
}

// IsStatus reports whether err is an *APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Team is a created or joined team.
type Team struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Size        string    `json:"size"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	CoachID     string    `json:"coach_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewTeam describes a team to create.
type NewTeam struct {
	Name        string `json:"name"`
	Size        string `json:"size"`
	Description string `json:"description,omitempty"`
	Tags        string `json:"tags,omitempty"`
}

// TeamFilter narrows Teams.
type TeamFilter struct {
	Search string
	Size   string
	Sort   string
}

// Client talks to one server. It is safe for concurrent use once logged in.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithToken sets a bearer token obtained earlier.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a Client for baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Token returns the bearer token in use.
func (c *Client) Token() string {
	return c.token
}

// Login exchanges credentials for a bearer token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (orchestrators.IssueTokenResult, error) {
	var res orchestrators.IssueTokenResult
	err := c.do(ctx, http.MethodPost, "/api/token", nil, orchestrators.LoginInput{Email: email, Password: password}, &res)
	if err != nil {
		return orchestrators.IssueTokenResult{}, err
	}
	c.token = res.Token
	return res, nil
}

// Toggle checks the caller in to courtID, or out of wherever they are.
func (c *Client) Toggle(ctx context.Context, courtID string) (orchestrators.ToggleSessionResult, error) {
	var res orchestrators.ToggleSessionResult
	err := c.do(ctx, http.MethodPost, "/api/toggle", nil, map[string]string{"court_id": courtID}, &res)
	return res, err
}

// KioskToggle toggles the player behind a QR token. Staff only.
func (c *Client) KioskToggle(ctx context.Context, qrToken, courtID string) (orchestrators.ToggleSessionResult, error) {
	var res orchestrators.ToggleSessionResult
	err := c.do(ctx, http.MethodPost, "/api/kiosk/toggle", nil, map[string]string{"qr_token": qrToken, "court_id": courtID}, &res)
	return res, err
}

// Courts lists every court with its live counter.
func (c *Client) Courts(ctx context.Context) ([]projections.CourtView, error) {
	var res []projections.CourtView
	err := c.do(ctx, http.MethodGet, "/courts", nil, nil, &res)
	return res, err
}

// Court returns one court and who is on it.
func (c *Client) Court(ctx context.Context, id string) (projections.CourtStatusView, error) {
	var res projections.CourtStatusView
	err := c.do(ctx, http.MethodGet, "/court", url.Values{"id": {id}}, nil, &res)
	return res, err
}

// Profile returns the caller's profile and stats.
func (c *Client) Profile(ctx context.Context) (projections.ProfileResult, error) {
	var res projections.ProfileResult
	err := c.do(ctx, http.MethodGet, "/api/profile", nil, nil, &res)
	return res, err
}

// Leaderboard ranks players. top 0 returns everyone.
func (c *Client) Leaderboard(ctx context.Context, search string, top int) ([]projections.LeaderRow, error) {
	q := url.Values{}
	if search != "" {
		q.Set("q", search)
	}
	if top == 0 {
		q.Set("top", "all")
	} else {
		q.Set("top", strconv.Itoa(top))
	}
	var res []projections.LeaderRow
	err := c.do(ctx, http.MethodGet, "/leaderboard", q, nil, &res)
	return res, err
}

// Teams lists teams.
func (c *Client) Teams(ctx context.Context, f TeamFilter) ([]projections.TeamCard, error) {
	q := url.Values{}
	if f.Search != "" {
		q.Set("q", f.Search)
	}
	if f.Size != "" {
		q.Set("size", f.Size)
	}
	if f.Sort != "" {
		q.Set("sort", f.Sort)
	}
	var res []projections.TeamCard
	err := c.do(ctx, http.MethodGet, "/teams", q, nil, &res)
	return res, err
}

// CreateTeam creates a team coached by the caller.
func (c *Client) CreateTeam(ctx context.Context, t NewTeam) (Team, error) {
	var res Team
	err := c.do(ctx, http.MethodPost, "/teams", nil, t, &res)
	return res, err
}

// JoinTeam adds the caller to a team.
func (c *Client) JoinTeam(ctx context.Context, teamID string) (Team, error) {
	var res Team
	err := c.do(ctx, http.MethodPost, "/teams/join", nil, map[string]string{"team_id": teamID}, &res)
	return res, err
}

// Traffic returns check-ins per weekday. weeks 0 uses the server default;
// allTime ignores weeks.
func (c *Client) Traffic(ctx context.Context, weeks int, allTime bool) (projections.TrafficResult, error) {
	q := url.Values{}
	switch {
	case allTime:
		q.Set("weeks", "all")
	case weeks > 0:
		q.Set("weeks", strconv.Itoa(weeks))
	}
	var res projections.TrafficResult
	err := c.do(ctx, http.MethodGet, "/traffic", q, nil, &res)
	return res, err
}

// Matches lists upcoming matches.
func (c *Client) Matches(ctx context.Context) ([]projections.MatchView, error) {
	var res []projections.MatchView
	err := c.do(ctx, http.MethodGet, "/matches", nil, nil, &res)
	return res, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Code    string            `json:"code"`
			Message string            `json:"message"`
			Fields  map[string]string `json:"fields"`
		}
		if json.Unmarshal(data, &payload) == nil {
			apiErr.Code = payload.Code
			apiErr.Message = payload.Message
			apiErr.Fields = payload.Fields
		} else {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
