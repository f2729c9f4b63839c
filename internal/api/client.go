package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"postcraft-cli/internal/config"
	"postcraft-cli/internal/stream"
)

// Video generation upstream can take minutes per turn.
const streamTimeout = 10 * time.Minute

type Client struct {
	baseURL    string
	httpClient *http.Client
	userID     string
}

func NewClient(cfg *config.Config) *Client {
	userID := cfg.User
	if userID == "" {
		userID = "default_user"
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.Server, "/"),
		httpClient: &http.Client{
			Timeout: streamTimeout,
		},
		userID: userID,
	}
}

// NewClientWithServer builds a client for a bare server URL.
func NewClientWithServer(serverURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{
			Timeout: streamTimeout,
		},
		userID: "default_user",
	}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
}

// ─── Health ─────────────────────────────────────────────────────────────────

type HealthResponse struct {
	Status    string `json:"status"`
	Agent     string `json:"agent,omitempty"`
	Version   string `json:"version,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

func (c *Client) Health() (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.doJSON("GET", "/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ─── Sessions ───────────────────────────────────────────────────────────────

type NewSessionResponse struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id,omitempty"`
}

// NewSession asks the backend for a fresh session id. Older backends
// answer 200 without a session id; a locally minted one works because the
// server treats unknown ids as new sessions.
func (c *Client) NewSession() (*NewSessionResponse, error) {
	var resp NewSessionResponse
	if err := c.doJSON("POST", "/sessions?user_id="+c.userID, nil, &resp); err != nil {
		return nil, err
	}
	if resp.SessionID == "" {
		resp.SessionID = uuid.NewString()
	}
	return &resp, nil
}

// ─── Chat (streaming) ───────────────────────────────────────────────────────

type ChatRequest struct {
	Message   string `json:"message"`
	UserID    string `json:"user_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatStream posts one user message and consumes the server-sent event
// stream through consumer. It returns the final buffer and whether the
// stream reached its done frame; a transport failure is terminal for the
// turn and leaves no partial state behind.
func (c *Client) ChatStream(sessionID, message string, consumer *stream.Consumer) (string, bool, error) {
	body, err := json.Marshal(ChatRequest{
		Message:   message,
		UserID:    c.userID,
		SessionID: sessionID,
	})
	if err != nil {
		return "", false, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequest("POST", c.baseURL+"/chat/stream", bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		return "", false, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(errBody))
	}

	return consumer.Consume(resp.Body)
}

// ─── Generic JSON helper ────────────────────────────────────────────────────

func (c *Client) doJSON(method, path string, reqBody interface{}, result interface{}) error {
	var bodyReader io.Reader
	if reqBody != nil && method != "GET" {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
	}
	return nil
}
