package hyprland

import (
	"errors"
	"fmt"
	"github.com/adrg/xdg"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var (
	ErrNotRunning      = errors.New("hyprland might not be running")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrDeviceNotFound  = errors.New("device not found")
)

const (
	controlSocketName = ".socket.sock"
	legacySocketDir   = "/tmp/hypr"
	dialTimeout       = 2 * time.Second
)

type responseMapping struct {
	re  *regexp.Regexp
	err error
}

// checked in order, "ok" must win over substrings of the error texts
var responseMapper = []responseMapping{
	{regexp.MustCompile(`^ok$`), nil},
	{regexp.MustCompile(`layout idx out of range.*`), ErrIndexOutOfRange},
	{regexp.MustCompile(`device not found`), ErrDeviceNotFound},
}

func mapResponse(out string) error {
	out = strings.TrimSpace(out)
	for _, m := range responseMapper {
		if m.re.MatchString(out) {
			return m.err
		}
	}

	return fmt.Errorf("unknown hyprctl response: %q", out)
}

// socketDirs returns the directories Hyprland may have created its sockets
// in, newest layout first. Hyprland >= 0.40 uses $XDG_RUNTIME_DIR/hypr.
func socketDirs(runtimeDir, signature string) []string {
	dirs := make([]string, 0, 2)
	if runtimeDir != "" {
		dirs = append(dirs, filepath.Join(runtimeDir, "hypr", signature))
	}
	return append(dirs, filepath.Join(legacySocketDir, signature))
}

func getSocketPath(runtimeDir, signature string) (string, error) {
	if signature == "" {
		return "", fmt.Errorf("HYPRLAND_INSTANCE_SIGNATURE is not set, %w", ErrNotRunning)
	}

	for _, dir := range socketDirs(runtimeDir, signature) {
		path := filepath.Join(dir, controlSocketName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no control socket for instance %q, %w", signature, ErrNotRunning)
}

func connect(runtimeDir, signature string) (net.Conn, error) {
	socketPath, err := getSocketPath(runtimeDir, signature)
	if err != nil {
		return nil, fmt.Errorf("get socket path: %w", err)
	}

	conn, err := net.DialTimeout("unix", socketPath, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	return conn, nil
}

func defaultRuntimeDir() string {
	return xdg.RuntimeDir
}
