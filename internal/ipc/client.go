package ipc

import (
	"log/slog"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client connects to the daemon via JSON-RPC over a Unix socket.
type Client struct {
	rpc *rpc.Client
}

// Connect establishes a connection to the daemon.
// Returns an error if the daemon is not running.
func Connect() (*Client, error) {
	sockPath, err := SocketPath()
	if err != nil {
		return nil, err
	}
	client, err := ConnectAt(sockPath)
	if err != nil {
		slog.Error("Failed to connect to the ahridocs daemon. Are you sure it's running?", "error", err)
		return nil, err
	}
	return client, nil
}

// ConnectAt connects to a daemon listening on sockPath.
func ConnectAt(sockPath string) (*Client, error) {
	conn, err := dial(sockPath, 2*time.Second)
	if err != nil {
		return nil, err
	}
	return &Client{rpc: jsonrpc.NewClient(conn)}, nil
}

// Status queries the daemon for its current status.
func (c *Client) Status() (*StatusData, error) {
	var status StatusData
	if err := c.rpc.Call("Daemon.Status", &Empty{}, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// SetRoot tells the daemon to watch root, or to stop watching when root is
// empty. It returns once the daemon applied the change.
func (c *Client) SetRoot(root string) (*StatusData, error) {
	var status StatusData
	if err := c.rpc.Call("Daemon.SetRoot", &SetRootArgs{Root: root}, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Events returns journaled changes with a sequence number above since.
func (c *Client) Events(since uint64) (*EventsResult, error) {
	var result EventsResult
	if err := c.rpc.Call("Daemon.Events", &EventsArgs{Since: since}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Close closes the connection to the daemon.
func (c *Client) Close() error {
	return c.rpc.Close()
}
