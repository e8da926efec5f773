package statusd

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service reporting the worker slot.
const ServiceName = "tailindex.watch"

// Server publishes the watch state over gRPC health checks on a UNIX socket.
type Server struct {
	ln     net.Listener
	path   string
	grpc   *grpc.Server
	health *health.Server

	closeOnce sync.Once
	closeErr  error
}

// Start binds the socket at path and starts serving. The watch is reported
// NOT_SERVING until SetStreaming(true).
func Start(path string) (*Server, error) {
	if err := EnsureRuntimeDir(path); err != nil {
		return nil, fmt.Errorf("create runtime dir: %w", err)
	}

	// stale socket left by a crashed instance
	if _, err := os.Stat(path); err == nil {
		if IsRunning(path) {
			return nil, fmt.Errorf("another watcher is listening on %s", path)
		}
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("remove stale socket: %w", err)
		}
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	if err := os.Chmod(path, 0o600); err != nil {
		ln.Close()
		return nil, err
	}

	s := &Server{
		ln:     ln,
		path:   path,
		grpc:   grpc.NewServer(),
		health: health.NewServer(),
	}
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(s.grpc, s.health)
	go s.grpc.Serve(ln)
	return s, nil
}

// Path returns the socket path.
func (s *Server) Path() string {
	return s.path
}

// SetStreaming flips the watch health status.
func (s *Server) SetStreaming(streaming bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if streaming {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(ServiceName, st)
}

// Close stops the server and unlinks the socket
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		s.health.Shutdown()
		s.grpc.Stop()
		if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.closeErr = err
		}
	})
	return s.closeErr
}
