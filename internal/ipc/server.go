package ipc

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"path/filepath"
	"runtime"
)

// Handler processes IPC requests from CLI clients.
// The daemon implements this interface. Methods may be called concurrently.
type Handler interface {
	HandleStatus() StatusData
	HandleSetRoot(root string) (StatusData, error)
	HandleEvents(since uint64) EventsResult
}

// Daemon is the RPC service exposed to CLI clients.
// Method names become "Daemon.Status", "Daemon.SetRoot", etc.
type Daemon struct {
	handler Handler
}

// Status returns the current daemon status.
func (d *Daemon) Status(_ *Empty, reply *StatusData) error {
	*reply = d.handler.HandleStatus()
	return nil
}

// SetRoot retargets the folder watch.
func (d *Daemon) SetRoot(args *SetRootArgs, reply *StatusData) error {
	status, err := d.handler.HandleSetRoot(args.Root)
	if err != nil {
		return err
	}
	*reply = status
	return nil
}

// Events returns journaled changes after args.Since.
func (d *Daemon) Events(args *EventsArgs, reply *EventsResult) error {
	*reply = d.handler.HandleEvents(args.Since)
	return nil
}

// Server accepts IPC connections and serves RPC requests.
type Server struct {
	listener  net.Listener
	rpcServer *rpc.Server
	sockPath  string
}

// NewServer creates an IPC server bound to the platform-appropriate socket.
func NewServer(handler Handler) (*Server, error) {
	sockPath, err := SocketPath()
	if err != nil {
		return nil, err
	}
	return NewServerAt(sockPath, handler)
}

// NewServerAt creates an IPC server bound to sockPath.
func NewServerAt(sockPath string, handler Handler) (*Server, error) {
	// Create parent directory and remove stale socket file (Unix only)
	// Windows named pipes live in a kernel namespace, not the filesystem
	if runtime.GOOS != "windows" {
		if err := os.MkdirAll(filepath.Dir(sockPath), 0755); err != nil {
			return nil, err
		}
		os.Remove(sockPath)
	}

	listener, err := listen(sockPath)
	if err != nil {
		return nil, err
	}

	rpcServer := rpc.NewServer()
	if err := rpcServer.RegisterName("Daemon", &Daemon{handler: handler}); err != nil {
		listener.Close()
		return nil, err
	}

	return &Server{
		listener:  listener,
		rpcServer: rpcServer,
		sockPath:  sockPath,
	}, nil
}

// Path returns the socket or pipe the server listens on.
func (s *Server) Path() string {
	return s.sockPath
}

// Serve accepts connections until the context is cancelled.
// Each connection is served on its own goroutine; a following
// `events --follow` client holds its connection open.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.listener.Close()
		if runtime.GOOS != "windows" {
			os.Remove(s.sockPath)
		}
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			// Log and continue on transient errors
			slog.Warn("ipc accept error", "error", err)
			continue
		}

		go s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(conn))
	}

	return nil
}
