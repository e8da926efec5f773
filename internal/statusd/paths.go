package statusd

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"
)

// SocketBaseName is the UNIX socket filename
const SocketBaseName = "tailindex.sock"

// SocketPath returns the full path to the status socket.
// Order of precedence (first wins):
// 1) TAILINDEX_SOCKET (absolute path to socket)
// 2) TAILINDEX_RUNTIME_DIR
// 3) on linux: $XDG_RUNTIME_DIR or /run/user/<UID>
// 4) elsewhere: /tmp/tailindex-<UID>.sock
func SocketPath() string {
	if explicit := os.Getenv("TAILINDEX_SOCKET"); explicit != "" {
		return explicit
	}
	if rd := os.Getenv("TAILINDEX_RUNTIME_DIR"); rd != "" {
		return filepath.Join(rd, SocketBaseName)
	}

	uid := currentUID()
	if runtime.GOOS == "linux" {
		if v := os.Getenv("XDG_RUNTIME_DIR"); v != "" {
			return filepath.Join(v, SocketBaseName)
		}
		return filepath.Join("/run/user", uid, SocketBaseName)
	}
	// keep it short, sun_path is limited
	return filepath.Join("/tmp", "tailindex-"+uid+".sock")
}

// EnsureRuntimeDir creates the directory holding path.
func EnsureRuntimeDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o700)
}

func currentUID() string {
	u, err := user.Current()
	if err == nil && u != nil && u.Uid != "" {
		return u.Uid
	}
	return "0"
}
