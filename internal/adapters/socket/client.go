package socket

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/corey/unitylens/internal/ports"
)

// Client connects to the unitylens daemon over a Unix socket.
type Client struct {
	sockPath string
	timeout  time.Duration
}

// NewClient creates a client that will connect to the given socket path.
func NewClient(sockPath string) *Client {
	return &Client{sockPath: sockPath, timeout: 5 * time.Second}
}

// WithTimeout returns a copy of the client using timeout per request.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	cp := *c
	cp.timeout = timeout
	return &cp
}

// Health sends a health check request.
func (c *Client) Health() (*HealthResult, error) {
	var result HealthResult
	if err := c.call(MethodHealth, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Shutdown sends a shutdown request to the daemon.
func (c *Client) Shutdown() error {
	return c.call(MethodShutdown, nil, nil)
}

// Features returns the feature flags and registered commands.
func (c *Client) Features() (*FeaturesResult, error) {
	var result FeaturesResult
	if err := c.call(MethodFeatures, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CodeLens requests the lenses for a document.
func (c *Client) CodeLens(p DocumentParams) ([]ports.CodeLens, error) {
	var result CodeLensResult
	if err := c.call(MethodCodeLens, p, &result); err != nil {
		return nil, err
	}
	return result.Lenses, nil
}

// Hover requests hover content; nil when nothing matches.
func (c *Client) Hover(p HoverParams) (*ports.Hover, error) {
	var result HoverResult
	if err := c.call(MethodHover, p, &result); err != nil {
		return nil, err
	}
	return result.Hover, nil
}

// ExecuteCommand runs a host command and returns its raw JSON result.
func (c *Client) ExecuteCommand(p ExecuteCommandParams) (json.RawMessage, error) {
	var result json.RawMessage
	if err := c.call(MethodExecuteCommand, p, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// DidRenameFiles reports renamed paths so their sidecars follow.
func (c *Client) DidRenameFiles(files ...FileRename) (*FileOpsResult, error) {
	var result FileOpsResult
	if err := c.call(MethodDidRenameFiles, RenameFilesParams{Files: files}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DidDeleteFiles reports deleted paths so their sidecars are removed.
func (c *Client) DidDeleteFiles(files ...string) (*FileOpsResult, error) {
	var result FileOpsResult
	if err := c.call(MethodDidDeleteFiles, DeleteFilesParams{Files: files}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Notifications returns notifications newer than since (zero = all kept).
func (c *Client) Notifications(since time.Time) ([]ports.Notification, error) {
	var p NotificationsParams
	if !since.IsZero() {
		p.Since = since.UnixNano()
	}
	var result NotificationsResult
	if err := c.call(MethodNotifications, p, &result); err != nil {
		return nil, err
	}
	return result.Notifications, nil
}

// Ping checks if the daemon is reachable.
func (c *Client) Ping() bool {
	conn, err := net.DialTimeout("unix", c.sockPath, 500*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// rawResponse defers result decoding to the typed caller.
type rawResponse struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func (c *Client) call(method string, params any, result any) error {
	conn, err := net.DialTimeout("unix", c.sockPath, 2*time.Second)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	data, err := json.Marshal(Request{ID: "1", Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 1024*1024), 16*1024*1024)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("read: %w", err)
		}
		return fmt.Errorf("empty response")
	}

	var resp rawResponse
	if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Error != "" {
		return fmt.Errorf("server error: %s", resp.Error)
	}
	if result == nil || len(resp.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Result, result); err != nil {
		return fmt.Errorf("unmarshal result: %w", err)
	}
	return nil
}
