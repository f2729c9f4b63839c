package api

import "postcraft-cli/internal/stream"

// AgentAPI defines the interface for the agent backend client.
// *Client satisfies this interface. TUI and tests can use mock implementations.
type AgentAPI interface {
	Health() (*HealthResponse, error)
	NewSession() (*NewSessionResponse, error)
	ChatStream(sessionID, message string, consumer *stream.Consumer) (string, bool, error)
}
