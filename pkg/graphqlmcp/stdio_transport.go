package graphqlmcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// StdioTransport implements the mcp.Transport interface for stdio communication
type StdioTransport struct{}

// Connect creates a connection using stdio
func (t *StdioTransport) Connect(ctx context.Context) (mcp.Connection, error) {
	return &StdioConnection{
		stdin:     os.Stdin,
		stdout:    os.Stdout,
		sessionID: fmt.Sprintf("stdio-%d", time.Now().UnixNano()),
	}, nil
}

// StdioConnection implements the mcp.Connection interface
type StdioConnection struct {
	stdin     io.Reader
	stdout    io.Writer
	sessionID string
}

// Read reads a JSON-RPC message from stdin
func (c *StdioConnection) Read(ctx context.Context) (jsonrpc.Message, error) {
	// Read a line from stdin
	var line string
	_, err := fmt.Fscanln(c.stdin, &line)
	if err != nil {
		return nil, err
	}

	// Parse as JSON-RPC message
	msg, err := jsonrpc.DecodeMessage([]byte(line))
	if err != nil {
		return nil, err
	}

	return msg, nil
}

// Write writes a JSON-RPC message to stdout
func (c *StdioConnection) Write(ctx context.Context, msg jsonrpc.Message) error {
	// Marshal the message
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	// Write to stdout
	_, err = fmt.Fprintln(c.stdout, string(data))
	return err
}

// SessionID returns the session ID
func (c *StdioConnection) SessionID() string {
	return c.sessionID
}

// Close closes the connection
func (c *StdioConnection) Close() error {
	return nil
}

// CommandTransport implements the mcp.Transport interface for command execution
type CommandTransport struct {
	cmd    *os.Process
	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr io.ReadCloser
}

// NewCommandTransport creates a new command transport
func NewCommandTransport(command string, args ...string) (*CommandTransport, error) {
	// This is a simplified implementation
	// In a real implementation, you would use exec.Command and set up pipes
	return &CommandTransport{}, nil
}

// Connect creates a connection using command execution
func (t *CommandTransport) Connect(ctx context.Context) (mcp.Connection, error) {
	// This is a placeholder implementation
	return &StdioConnection{
		stdin:     t.stdout,
		stdout:    t.stdin,
		sessionID: fmt.Sprintf("cmd-%d", time.Now().UnixNano()),
	}, nil
}
