package hyprland

import (
	"bytes"
	"codeberg.org/miketth/hyprcycle/pkg/hyprcycle"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

const requestTimeout = 5 * time.Second

var _ hyprcycle.Hyprland = (*Hyprctl)(nil)

// Hyprctl talks to Hyprland's control socket directly, without spawning the
// hyprctl binary.
type Hyprctl struct {
	Signature  string
	RuntimeDir string
}

func NewHyprctl() (*Hyprctl, error) {
	signature := os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")
	if signature == "" {
		return nil, fmt.Errorf("HYPRLAND_INSTANCE_SIGNATURE is not set, %w", ErrNotRunning)
	}

	return &Hyprctl{
		Signature:  signature,
		RuntimeDir: defaultRuntimeDir(),
	}, nil
}

func (c *Hyprctl) SwitchToLayout(keyboard string, idx int) error {
	resp, err := c.request(fmt.Sprintf("switchxkblayout %s %d", keyboard, idx), "")
	if err != nil {
		return err
	}

	return mapResponse(string(resp))
}

func (c *Hyprctl) GetKeyboards() ([]hyprcycle.Keyboard, error) {
	resp, err := c.request("devices", "j")
	if err != nil {
		return nil, err
	}

	var devs devices
	if err := json.Unmarshal(resp, &devs); err != nil {
		return nil, fmt.Errorf("unmarshal devices: %w, (hyprctl: %s)", err, resp)
	}

	return toKeyboards(devs), nil
}

func (c *Hyprctl) LayoutCount() (int, error) {
	resp, err := c.request("getoption "+layoutOption, "j")
	if err != nil {
		return 0, err
	}

	var opt option
	if err := json.Unmarshal(resp, &opt); err != nil {
		return 0, fmt.Errorf("unmarshal option: %w, (hyprctl: %s)", err, resp)
	}

	return countLayouts(opt.Str), nil
}

func (c *Hyprctl) request(request string, flags string) ([]byte, error) {
	conn, err := connect(c.RuntimeDir, c.Signature)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(requestTimeout)); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	_, err = conn.Write([]byte(fmt.Sprintf("%s/%s", flags, request)))
	if err != nil {
		return nil, fmt.Errorf("write to hyprctl socket: %w", err)
	}

	var buf bytes.Buffer
	_, err = io.Copy(&buf, conn)
	if err != nil {
		return nil, fmt.Errorf("read response from hyprctl socket: %w", err)
	}

	return buf.Bytes(), nil
}
