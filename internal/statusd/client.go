package statusd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// ErrNotWatching is returned when the socket answers but no watch is registered.
var ErrNotWatching = errors.New("no watch registered on status socket")

// Dial opens a gRPC connection to the status socket at path.
func Dial(ctx context.Context, path string) (healthpb.HealthClient, *grpc.ClientConn, error) {
	conn, err := grpc.NewClient(
		socketTarget(path),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithContextDialer(unixDialer(path)),
	)
	if err != nil {
		return nil, nil, err
	}
	conn.Connect()
	if err := waitForReady(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return healthpb.NewHealthClient(conn), conn, nil
}

// Query reports whether the watcher behind path is streaming a file.
func Query(ctx context.Context, path string) (bool, error) {
	client, conn, err := Dial(ctx, path)
	if err != nil {
		return false, fmt.Errorf("connect to status socket: %w", err)
	}
	defer conn.Close()

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, ErrNotWatching
		}
		return false, fmt.Errorf("health check failed: %w", err)
	}
	return resp.GetStatus() == healthpb.HealthCheckResponse_SERVING, nil
}

// IsRunning returns true if something answers health checks on path.
func IsRunning(path string) bool {
	if _, err := os.Stat(path); err != nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	_, err := Query(ctx, path)
	return err == nil || errors.Is(err, ErrNotWatching)
}

func socketTarget(path string) string {
	if trimmed, ok := strings.CutPrefix(path, "/"); ok {
		return "unix:///" + trimmed
	}
	return "unix://" + path
}

func unixDialer(path string) func(context.Context, string) (net.Conn, error) {
	return func(ctx context.Context, _ string) (net.Conn, error) {
		var d net.Dialer
		return d.DialContext(ctx, "unix", path)
	}
}

func waitForReady(ctx context.Context, conn *grpc.ClientConn) error {
	for {
		switch state := conn.GetState(); state {
		case connectivity.Ready:
			return nil
		case connectivity.Shutdown:
			return errors.New("grpc connection is shut down")
		default:
			if !conn.WaitForStateChange(ctx, state) {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("grpc connection stuck in state %s", state.String())
			}
		}
	}
}
