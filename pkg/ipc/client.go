// oreon/lumen · watchthelight <wtl>

package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"
)

// Client talks to the daemon socket. It connects lazily on the first call
// and reconnects after a broken connection.
type Client struct {
	socketPath string

	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
	nextID int
}

// NewClient creates a client for the daemon socket at socketPath.
func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath}
}

func (c *Client) connect() error {
	if c.conn != nil {
		return nil
	}
	conn, err := net.DialTimeout("unix", c.socketPath, 5*time.Second)
	if err != nil {
		return fmt.Errorf("connect to daemon: %w", err)
	}
	c.conn = conn
	c.reader = bufio.NewReader(conn)
	return nil
}

func (c *Client) drop() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
		c.reader = nil
	}
}

// Do sends one command and waits for its response.
func (c *Client) Do(command string) (*Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.connect(); err != nil {
		return nil, err
	}

	c.nextID++
	req := Request{
		ID:      strconv.Itoa(c.nextID),
		Version: ProtocolVersion,
		Command: command,
	}
	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	data = append(data, '\n')
	if _, err := c.conn.Write(data); err != nil {
		c.drop()
		return nil, fmt.Errorf("send request: %w", err)
	}

	line, err := c.reader.ReadBytes('\n')
	if err != nil {
		c.drop()
		return nil, fmt.Errorf("read response: %w", err)
	}
	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !resp.Success {
		return &resp, fmt.Errorf("daemon: %s", resp.Error)
	}
	return &resp, nil
}

// Status fetches the daemon's status payload.
func (c *Client) Status() (*StatusResponse, error) {
	resp, err := c.Do(CmdStatus)
	if err != nil {
		return nil, err
	}
	var status StatusResponse
	if err := resp.UnmarshalData(&status); err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}
	return &status, nil
}

// Subscribe registers for pushed mode-change events and invokes fn for each
// one until the connection drops. It blocks; run it in its own goroutine.
func (c *Client) Subscribe(fn func(ModeChangeEvent)) error {
	if _, err := c.Do(CmdSubscribe); err != nil {
		return err
	}
	for {
		c.mu.Lock()
		reader := c.reader
		c.mu.Unlock()
		if reader == nil {
			return fmt.Errorf("subscription connection closed")
		}
		line, err := reader.ReadBytes('\n')
		if err != nil {
			c.mu.Lock()
			c.drop()
			c.mu.Unlock()
			return fmt.Errorf("subscription read: %w", err)
		}
		var resp Response
		if err := json.Unmarshal(line, &resp); err != nil {
			continue
		}
		if resp.ID != "event" {
			continue
		}
		var evt ModeChangeEvent
		if err := json.Unmarshal(resp.Data, &evt); err != nil {
			continue
		}
		fn(evt)
	}
}

// Close drops the connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drop()
}
