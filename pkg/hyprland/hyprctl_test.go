package hyprland

import (
	"codeberg.org/miketth/hyprcycle/pkg/hyprcycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

const devicesJSON = `{
	"mice": [],
	"keyboards": [
		{"address": "0x1", "name": "at-translated-set-2-keyboard", "layout": "us,de", "variant": ",", "options": "", "active_keymap": "English (US)", "main": true},
		{"address": "0x2", "name": "keychron-k3", "layout": "us,de", "variant": ",", "options": "", "active_keymap": "German", "main": false}
	]
}`

var wantKeyboards = []hyprcycle.Keyboard{
	{Name: "at-translated-set-2-keyboard", Main: true},
	{Name: "keychron-k3", Main: false},
}

// fakeHyprland serves the control socket protocol: one request per
// connection, response, close.
type fakeHyprland struct {
	mu        sync.Mutex
	requests  []string
	responses map[string]string
}

func (f *fakeHyprland) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func startFakeHyprland(t *testing.T, responses map[string]string) (*Hyprctl, *fakeHyprland) {
	t.Helper()

	runtimeDir := t.TempDir()
	dir := filepath.Join(runtimeDir, "hypr", "testsig")
	require.NoError(t, os.MkdirAll(dir, 0755))

	listener, err := net.Listen("unix", filepath.Join(dir, controlSocketName))
	require.NoError(t, err)
	t.Cleanup(func() { listener.Close() })

	fake := &fakeHyprland{responses: responses}
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}

			buf := make([]byte, 1024)
			n, _ := conn.Read(buf)
			request := string(buf[:n])

			fake.mu.Lock()
			fake.requests = append(fake.requests, request)
			resp, ok := fake.responses[request]
			fake.mu.Unlock()
			if !ok {
				resp = "unknown request"
			}

			_, _ = conn.Write([]byte(resp))
			conn.Close()
		}
	}()

	return &Hyprctl{Signature: "testsig", RuntimeDir: runtimeDir}, fake
}

func TestHyprctlSwitchToLayout(t *testing.T) {
	client, fake := startFakeHyprland(t, map[string]string{
		"/switchxkblayout keychron-k3 1": "ok",
		"/switchxkblayout keychron-k3 7": "layout idx out of range",
		"/switchxkblayout ghost 0":       "device not found",
	})

	require.NoError(t, client.SwitchToLayout("keychron-k3", 1))
	assert.ErrorIs(t, client.SwitchToLayout("keychron-k3", 7), ErrIndexOutOfRange)
	assert.ErrorIs(t, client.SwitchToLayout("ghost", 0), ErrDeviceNotFound)

	assert.Equal(t, []string{
		"/switchxkblayout keychron-k3 1",
		"/switchxkblayout keychron-k3 7",
		"/switchxkblayout ghost 0",
	}, fake.Requests())
}

func TestHyprctlGetKeyboards(t *testing.T) {
	client, _ := startFakeHyprland(t, map[string]string{"j/devices": devicesJSON})

	keyboards, err := client.GetKeyboards()
	require.NoError(t, err)
	assert.Equal(t, wantKeyboards, keyboards)
}

func TestHyprctlLayoutCount(t *testing.T) {
	client, _ := startFakeHyprland(t, map[string]string{
		"j/getoption input:kb_layout": `{"option": "input:kb_layout", "str": "us,de,fr", "set": true}`,
	})

	count, err := client.LayoutCount()
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestHyprctlBadJSON(t *testing.T) {
	client, _ := startFakeHyprland(t, map[string]string{"j/devices": "no json here"})

	_, err := client.GetKeyboards()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no json here")
}

func TestGetSocketPath(t *testing.T) {
	_, err := getSocketPath(t.TempDir(), "")
	assert.ErrorIs(t, err, ErrNotRunning)

	_, err = getSocketPath(t.TempDir(), "missing-instance")
	assert.ErrorIs(t, err, ErrNotRunning)

	runtimeDir := t.TempDir()
	dir := filepath.Join(runtimeDir, "hypr", "sig")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, controlSocketName), nil, 0644))

	path, err := getSocketPath(runtimeDir, "sig")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, controlSocketName), path)
}

func TestSocketDirsPreferRuntimeDir(t *testing.T) {
	assert.Equal(t, []string{"/run/user/1000/hypr/sig", "/tmp/hypr/sig"}, socketDirs("/run/user/1000", "sig"))
	assert.Equal(t, []string{"/tmp/hypr/sig"}, socketDirs("", "sig"))
}

func TestCountLayouts(t *testing.T) {
	tests := map[string]int{
		"":          1,
		"  ":        1,
		"us":        1,
		"us,de":     2,
		"us,de,fr ": 3,
	}
	for value, want := range tests {
		assert.Equal(t, want, countLayouts(value), "value %q", value)
	}
}

func TestMapResponse(t *testing.T) {
	assert.NoError(t, mapResponse("ok"))
	assert.NoError(t, mapResponse("ok\n"))
	assert.ErrorIs(t, mapResponse("layout idx out of range, max is 1"), ErrIndexOutOfRange)
	assert.ErrorIs(t, mapResponse("device not found"), ErrDeviceNotFound)

	err := mapResponse("something odd")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "something odd"))
}
