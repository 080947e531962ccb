package main

import (
	"codeberg.org/miketth/hyprcycle/pkg/config"
	"codeberg.org/miketth/hyprcycle/pkg/history/sqlite"
	"codeberg.org/miketth/hyprcycle/pkg/hyprcycle"
	"codeberg.org/miketth/hyprcycle/pkg/hyprland"
	"codeberg.org/miketth/hyprcycle/pkg/logging"
	"codeberg.org/miketth/hyprcycle/pkg/statestore/json"
	"errors"
	"flag"
	"fmt"
	"github.com/coreos/go-systemd/v22/journal"
	"github.com/jonboulle/clockwork"
	"os"
	"strconv"
)

const (
	exitOK = iota
	exitFailure
	exitUsage
	exitStoreUnavailable
	exitStoreBusy
	exitNotFound
	exitAlreadyExists
	exitExternalSetFailed
	exitUninitialized
)

var errUsage = errors.New("usage")

func main() {
	command, err := run(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		code := exitCode(err)
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		reportToJournal(command, code, err)
		os.Exit(code)
	}
}

func run(args []string) (string, error) {
	flags := flag.NewFlagSet("hyprcycle", flag.ContinueOnError)
	debug := flags.Bool("debug", false, "enable debug logging")
	burstWindow := flags.Duration("burst-window", 0, "override the burst window for this invocation")
	envFile := flags.String("env-file", config.DefaultEnvFile(), "path to an env file with HYPRCYCLE_* settings")
	flags.Usage = func() {
		fmt.Fprint(flags.Output(), usage)
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", errUsage, err)
	}

	command := flags.Arg(0)

	cfg, err := config.Load(*envFile)
	if err != nil {
		return command, fmt.Errorf("load config: %w", err)
	}
	if *burstWindow != 0 {
		if err := hyprcycle.ValidateBurstWindow(*burstWindow); err != nil {
			return command, err
		}
		cfg.BurstWindow = *burstWindow
	}

	log, err := logging.New(*debug || cfg.Debug, "stderr")
	if err != nil {
		return command, fmt.Errorf("create logger: %w", err)
	}
	defer log.Sync()

	store := json.NewStateStore(cfg.StatePath(), cfg.LockTimeout, log)
	hypr := newHyprland(cfg)

	a := &app{
		cfg:      cfg,
		log:      log,
		out:      os.Stdout,
		hypr:     hypr,
		registry: hyprcycle.NewRegistry(store, hypr, hypr, log),
		switcher: hyprcycle.NewSwitcher(store, hypr, clockwork.NewRealClock(), log),
		openHistory: func() (historyStore, error) {
			history, err := sqlite.NewHistoryStore(cfg.HistoryPath(), log)
			if err != nil {
				return nil, err
			}
			return history, nil
		},
	}
	a.switcher.SetBurstWindow(cfg.BurstWindow)

	return command, a.dispatch(flags.Args())
}

func newHyprland(cfg *config.Config) hyprcycle.Hyprland {
	if cfg.Backend == config.BackendExec {
		return hyprland.HyprctlExec{Path: cfg.HyprctlPath}
	}

	client, err := hyprland.NewHyprctl()
	if err != nil {
		// only commands that talk to hyprland should fail
		return unavailableHyprland{err: fmt.Errorf("connect hyprctl: %w", err)}
	}
	return client
}

type unavailableHyprland struct {
	err error
}

func (u unavailableHyprland) SwitchToLayout(string, int) error {
	return u.err
}

func (u unavailableHyprland) LayoutCount() (int, error) {
	return 0, u.err
}

func (u unavailableHyprland) GetKeyboards() ([]hyprcycle.Keyboard, error) {
	return nil, u.err
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUsage), errors.Is(err, hyprcycle.ErrInvalidBurstWindow):
		return exitUsage
	case errors.Is(err, hyprcycle.ErrStoreUnavailable):
		return exitStoreUnavailable
	case errors.Is(err, hyprcycle.ErrStoreBusy):
		return exitStoreBusy
	case errors.Is(err, hyprcycle.ErrExternalSetFailed):
		return exitExternalSetFailed
	case errors.Is(err, hyprcycle.ErrNotFound):
		return exitNotFound
	case errors.Is(err, hyprcycle.ErrAlreadyExists):
		return exitAlreadyExists
	case errors.Is(err, hyprcycle.ErrUninitialized):
		return exitUninitialized
	}
	return exitFailure
}

// reportToJournal records failures in the systemd journal. A hotkey-spawned
// process has no terminal, so stderr alone is lost.
func reportToJournal(command string, code int, err error) {
	if !journal.Enabled() {
		return
	}

	_ = journal.Send(fmt.Sprintf("hyprcycle %s: %v", command, err), journal.PriErr, map[string]string{
		"SYSLOG_IDENTIFIER":   "hyprcycle",
		"HYPRCYCLE_COMMAND":   command,
		"HYPRCYCLE_EXIT_CODE": strconv.Itoa(code),
	})
}
