package main

import (
	"codeberg.org/miketth/hyprcycle/pkg/config"
	"codeberg.org/miketth/hyprcycle/pkg/hyprcycle"
	"flag"
	"fmt"
	"go.uber.org/zap"
	"io"
	"strconv"
	"time"
)

const usage = `usage: hyprcycle [flags] <command> [args]

Switches keyboard layouts like MacOS: a single press toggles between the two
most recently used layouts, quick repeated presses cycle through all of them.

commands:
  init [device...]          read the layout count from hyprland, register devices
  update-layouts            re-read the layout count, keep devices
  switch <device>           switch the layout of a registered device
  add-device <name>         register a device
  remove-device <name>      unregister a device
  list-devices              print registered devices
  burst-window [duration]   print or set the window for repeated presses
  keyboards                 print keyboards hyprland reports
  history [-n N] [device]   print recent switches (needs HYPRCYCLE_HISTORY=true)

All registered devices must use the global input:kb_layout list. Devices with
their own layout list switch to unpredictable layouts.

flags:
`

const defaultHistoryLimit = 20

type historyStore interface {
	hyprcycle.SwitchRecorder
	Recent(device string, limit int) ([]hyprcycle.SwitchRecord, error)
	Close() error
}

type app struct {
	cfg         *config.Config
	log         *zap.SugaredLogger
	out         io.Writer
	hypr        hyprcycle.Hyprland
	registry    *hyprcycle.Registry
	switcher    *hyprcycle.Switcher
	openHistory func() (historyStore, error)
}

func (a *app) dispatch(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command", errUsage)
	}

	command, args := args[0], args[1:]
	switch command {
	case "init":
		return a.init(args)
	case "update-layouts":
		if err := expectArgs(command, args, 0); err != nil {
			return err
		}
		return a.init(nil)
	case "switch":
		if err := expectArgs(command, args, 1); err != nil {
			return err
		}
		return a.switchLayout(args[0])
	case "add-device":
		if err := expectArgs(command, args, 1); err != nil {
			return err
		}
		return a.addDevice(args[0])
	case "remove-device":
		if err := expectArgs(command, args, 1); err != nil {
			return err
		}
		return a.removeDevice(args[0])
	case "list-devices":
		if err := expectArgs(command, args, 0); err != nil {
			return err
		}
		return a.listDevices()
	case "burst-window":
		return a.burstWindow(args)
	case "keyboards":
		if err := expectArgs(command, args, 0); err != nil {
			return err
		}
		return a.keyboards()
	case "history":
		return a.history(args)
	}

	return fmt.Errorf("%w: unknown command %q", errUsage, command)
}

func expectArgs(command string, args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("%w: %s takes %d argument(s), got %d", errUsage, command, n, len(args))
	}
	return nil
}

func (a *app) init(devices []string) error {
	count, err := a.registry.Init(devices...)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}

	a.log.Infow("initialized", "layouts", count, "state", a.cfg.StatePath())
	fmt.Fprintf(a.out, "%d layouts configured\n", count)
	return nil
}

func (a *app) switchLayout(device string) error {
	if a.cfg.History {
		history, err := a.openHistory()
		if err != nil {
			// the press matters more than its log entry
			a.log.Warnw("open switch history", "error", err)
		} else {
			defer history.Close()
			a.switcher.SetRecorder(history)
		}
	}

	if _, err := a.switcher.Switch(device); err != nil {
		return fmt.Errorf("switch %q: %w", device, err)
	}
	return nil
}

func (a *app) addDevice(name string) error {
	if err := a.registry.Add(name); err != nil {
		return fmt.Errorf("add device: %w", err)
	}

	a.log.Infow("device added", "device", name)
	return nil
}

func (a *app) removeDevice(name string) error {
	if err := a.registry.Remove(name); err != nil {
		return fmt.Errorf("remove device: %w", err)
	}

	a.log.Infow("device removed", "device", name)
	return nil
}

func (a *app) listDevices() error {
	names, err := a.registry.List()
	if err != nil {
		return fmt.Errorf("list devices: %w", err)
	}

	for _, name := range names {
		fmt.Fprintln(a.out, name)
	}
	return nil
}

func (a *app) burstWindow(args []string) error {
	switch len(args) {
	case 0:
		window, err := a.registry.BurstWindow()
		if err != nil {
			return fmt.Errorf("burst window: %w", err)
		}
		fmt.Fprintln(a.out, window)
		return nil
	case 1:
		window, err := parseWindow(args[0])
		if err != nil {
			return err
		}
		if err := a.registry.SetBurstWindow(window); err != nil {
			return fmt.Errorf("set burst window: %w", err)
		}
		a.log.Infow("burst window set", "window", window)
		return nil
	}

	return fmt.Errorf("%w: burst-window takes at most 1 argument, got %d", errUsage, len(args))
}

// parseWindow accepts Go durations ("350ms") and plain seconds ("0.35").
func parseWindow(s string) (time.Duration, error) {
	if seconds, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(seconds * float64(time.Second)), nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid duration %q", errUsage, s)
	}
	return d, nil
}

func (a *app) keyboards() error {
	keyboards, err := a.hypr.GetKeyboards()
	if err != nil {
		return fmt.Errorf("get keyboards: %w", err)
	}

	for _, k := range keyboards {
		if k.Main {
			fmt.Fprintf(a.out, "%s (main)\n", k.Name)
			continue
		}
		fmt.Fprintln(a.out, k.Name)
	}
	return nil
}

func (a *app) history(args []string) error {
	flags := flag.NewFlagSet("history", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	limit := flags.Int("n", defaultHistoryLimit, "number of switches to print")
	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("%w: history: %w", errUsage, err)
	}
	if flags.NArg() > 1 {
		return fmt.Errorf("%w: history takes at most 1 device, got %d", errUsage, flags.NArg())
	}
	if *limit < 1 {
		return fmt.Errorf("%w: -n must be positive", errUsage)
	}

	history, err := a.openHistory()
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer history.Close()

	records, err := history.Recent(flags.Arg(0), *limit)
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}

	for _, rec := range records {
		gap := "-"
		if rec.Gap > 0 {
			gap = rec.Gap.String()
		}
		fmt.Fprintf(a.out, "%s  %-10s  %s  %d -> %d  gap %s\n",
			rec.PressedAt.Local().Format(time.RFC3339),
			rec.Press,
			rec.Device,
			rec.FromIndex,
			rec.ToIndex,
			gap,
		)
	}

	if len(records) == 0 && !a.cfg.History {
		fmt.Fprintln(a.out, "no switches recorded, set HYPRCYCLE_HISTORY=true to record them")
	}
	return nil
}
