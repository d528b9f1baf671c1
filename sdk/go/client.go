package habiticasdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const apiBase = "api/v3"

// Client is a minimal Habitica v3 API client.
type Client struct {
	BaseURL    string
	UserID     string
	APIKey     string
	AppName    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// New creates a client with sane defaults.
func New(baseURL, userID, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		UserID:  userID,
		APIKey:  apiKey,
		AppName: "hab",
		Timeout: 10 * time.Second,
	}
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error: status=%d message=%s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// envelope is the wrapper every v3 response comes in.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

// Status reports whether the service is up.
func (c *Client) Status(ctx context.Context) (ServerStatus, error) {
	var resp ServerStatus
	err := c.do(ctx, http.MethodGet, "status", nil, &resp)
	return resp, err
}

// User returns the authenticated user's profile.
func (c *Client) User(ctx context.Context) (User, error) {
	var resp User
	err := c.do(ctx, http.MethodGet, "user", nil, &resp)
	return resp, err
}

// Tasks lists the user's tasks of one type.
func (c *Client) Tasks(ctx context.Context, taskType TaskType) ([]Task, error) {
	var resp []Task
	endpoint := "tasks/user?type=" + url.QueryEscape(string(taskType))
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// CreateTask creates a task for the user.
func (c *Client) CreateTask(ctx context.Context, in NewTask) (Task, error) {
	var resp Task
	err := c.do(ctx, http.MethodPost, "tasks/user", in, &resp)
	return resp, err
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), nil, nil)
}

// ScoreTask scores a task up or down; scoring a daily or todo up completes it.
func (c *Client) ScoreTask(ctx context.Context, id string, dir Direction) error {
	endpoint := fmt.Sprintf("%s/score/%s", taskPath(id), dir)
	return c.do(ctx, http.MethodPost, endpoint, nil, nil)
}

// UpdateTask applies a partial update to a task.
func (c *Client) UpdateTask(ctx context.Context, id string, fields map[string]any) (Task, error) {
	var resp Task
	err := c.do(ctx, http.MethodPut, taskPath(id), fields, &resp)
	return resp, err
}

// MoveTask moves a task to a zero-based position. Position 0 is the top and
// PositionBottom the bottom. It returns the resulting task order.
func (c *Client) MoveTask(ctx context.Context, id string, position int) ([]string, error) {
	var resp []string
	endpoint := fmt.Sprintf("%s/move/to/%s", taskPath(id), strconv.Itoa(position))
	err := c.do(ctx, http.MethodPost, endpoint, nil, &resp)
	return resp, err
}

// Parties returns the party groups the user belongs to.
func (c *Client) Parties(ctx context.Context) ([]Group, error) {
	var resp []Group
	err := c.do(ctx, http.MethodGet, "groups?type=party", nil, &resp)
	return resp, err
}

// Group returns a group with its quest state.
func (c *Client) Group(ctx context.Context, id string) (Group, error) {
	var resp Group
	err := c.do(ctx, http.MethodGet, "groups/"+url.PathEscape(id), nil, &resp)
	return resp, err
}

// Content returns the game content definitions. Only quests are decoded.
func (c *Client) Content(ctx context.Context) (Content, error) {
	var resp Content
	err := c.do(ctx, http.MethodGet, "content", nil, &resp)
	return resp, err
}

// Challenges returns the challenges the user has joined.
func (c *Client) Challenges(ctx context.Context) ([]Challenge, error) {
	var resp []Challenge
	err := c.do(ctx, http.MethodGet, "challenges/user", nil, &resp)
	return resp, err
}

// UnlinkAll unlinks every task of a challenge; keep is "keep-all" or "remove-all".
func (c *Client) UnlinkAll(ctx context.Context, challengeID, keep string) error {
	endpoint := fmt.Sprintf("tasks/unlink-all/%s?keep=%s", url.PathEscape(challengeID), url.QueryEscape(keep))
	return c.do(ctx, http.MethodPost, endpoint, nil, nil)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	u := c.base() + "/" + apiBase + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, u, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-user", c.UserID)
	req.Header.Set("x-api-key", c.APIKey)
	if c.AppName != "" {
		req.Header.Set("x-client", c.UserID+"-"+c.AppName)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
		var env envelope
		if json.Unmarshal(raw, &env) == nil {
			apiErr.Message = env.Message
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

func taskPath(id string) string {
	return "tasks/" + url.PathEscape(id)
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
