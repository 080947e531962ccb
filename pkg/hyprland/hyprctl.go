package hyprland

import (
	"bytes"
	"codeberg.org/miketth/hyprcycle/pkg/hyprcycle"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
)

var _ hyprcycle.Hyprland = HyprctlExec{}

// HyprctlExec shells out to the hyprctl binary. Slower than Hyprctl, but
// follows whatever socket discovery the installed hyprctl does.
type HyprctlExec struct {
	Path string
}

func (h HyprctlExec) runCommand(args ...string) (string, error) {
	var stdout bytes.Buffer

	path := h.Path
	if path == "" {
		path = "hyprctl"
	}

	cmd := exec.Command(path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stdout

	err := cmd.Run()
	outStr := strings.TrimSpace(stdout.String())
	if err != nil {
		return "", fmt.Errorf("hyprctl: %w, stdout: %s", err, outStr)
	}

	return outStr, nil
}

func (h HyprctlExec) SwitchToLayout(keyboard string, idx int) error {
	outStr, err := h.runCommand("switchxkblayout", "--", keyboard, fmt.Sprintf("%d", idx))
	if err != nil {
		return err
	}

	return mapResponse(outStr)
}

func (h HyprctlExec) GetKeyboards() ([]hyprcycle.Keyboard, error) {
	outStr, err := h.runCommand("devices", "-j")
	if err != nil {
		return nil, err
	}

	var devs devices
	if err := json.Unmarshal([]byte(outStr), &devs); err != nil {
		return nil, fmt.Errorf("unmarshal: %w, (hyprctl: %s)", err, outStr)
	}

	return toKeyboards(devs), nil
}

func (h HyprctlExec) LayoutCount() (int, error) {
	outStr, err := h.runCommand("getoption", layoutOption, "-j")
	if err != nil {
		return 0, err
	}

	var opt option
	if err := json.Unmarshal([]byte(outStr), &opt); err != nil {
		return 0, fmt.Errorf("unmarshal: %w, (hyprctl: %s)", err, outStr)
	}

	return countLayouts(opt.Str), nil
}
