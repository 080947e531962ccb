package json

import (
	"codeberg.org/miketth/hyprcycle/pkg/hyprcycle"
	"encoding/json"
	"errors"
	"fmt"
	"go.uber.org/zap"
	"os"
	"path/filepath"
	"time"
)

const DefaultLockTimeout = time.Second

// StateStore keeps the state in a single JSON file. Writes go to a temporary
// file in the same directory which is then renamed over the target, so
// readers never see a partial file.
type StateStore struct {
	path        string
	lockTimeout time.Duration
	log         *zap.SugaredLogger
}

func NewStateStore(path string, lockTimeout time.Duration, log *zap.SugaredLogger) *StateStore {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}

	return &StateStore{
		path:        path,
		lockTimeout: lockTimeout,
		log:         log,
	}
}

func (s *StateStore) Path() string {
	return s.path
}

// Load reads the state without taking the lock. A missing file yields an
// empty, uninitialized state.
func (s *StateStore) Load() (*hyprcycle.State, error) {
	return s.load()
}

// Update runs fn under the lock and saves the state when fn succeeds. While
// no state file exists, fn is first tried on an empty state without the lock,
// so a failing fn leaves no data directory or lock file behind. A successful
// fn then runs again under the lock, so it must not have side effects on an
// uninitialized state.
func (s *StateStore) Update(fn func(state *hyprcycle.State) error) error {
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		if err := fn(&hyprcycle.State{}); err != nil {
			return err
		}
	}
	return s.update(fn, false)
}

func (s *StateStore) Reset(fn func(state *hyprcycle.State) error) error {
	return s.update(fn, true)
}

func (s *StateStore) update(fn func(state *hyprcycle.State) error, discardUnreadable bool) (err error) {
	lock, err := acquireLock(s.path+".lock", s.lockTimeout)
	if err != nil {
		return err
	}
	defer func() {
		if unlockErr := lock.release(); unlockErr != nil && err == nil {
			err = fmt.Errorf("release lock: %w", unlockErr)
		}
	}()

	state, err := s.load()
	switch {
	case discardUnreadable && errors.Is(err, hyprcycle.ErrStoreUnavailable):
		s.log.Warnw("discarding unreadable state file", "path", s.path, "error", err)
		state = &hyprcycle.State{}
	case err != nil:
		return err
	}

	if err := fn(state); err != nil {
		return err
	}

	return s.save(state)
}

func (s *StateStore) load() (*hyprcycle.State, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &hyprcycle.State{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", hyprcycle.ErrStoreUnavailable, s.path, err)
	}

	state := &hyprcycle.State{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", hyprcycle.ErrStoreUnavailable, s.path, err)
	}

	if err := validate(state); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", hyprcycle.ErrStoreUnavailable, s.path, err)
	}

	return state, nil
}

func validate(state *hyprcycle.State) error {
	if state.LayoutCount < 0 {
		return fmt.Errorf("negative layout count %d", state.LayoutCount)
	}
	if state.BurstWindowMs != 0 {
		if state.BurstWindowMs < 0 || state.BurstWindowMs > hyprcycle.MaxBurstWindow.Milliseconds() {
			return fmt.Errorf("burst window %dms: %w", state.BurstWindowMs, hyprcycle.ErrInvalidBurstWindow)
		}
		if err := hyprcycle.ValidateBurstWindow(state.BurstWindow()); err != nil {
			return err
		}
	}

	seen := make(map[string]bool, len(state.Devices))
	for _, dev := range state.Devices {
		if dev.Name == "" {
			return errors.New("device without name")
		}
		if seen[dev.Name] {
			return fmt.Errorf("duplicate device %q", dev.Name)
		}
		seen[dev.Name] = true

		if dev.CurrentIndex < 0 || dev.PreviousIndex < 0 {
			return fmt.Errorf("device %q has a negative layout index", dev.Name)
		}
		if state.LayoutCount > 0 && (dev.CurrentIndex >= state.LayoutCount || dev.PreviousIndex >= state.LayoutCount) {
			return fmt.Errorf("device %q has a layout index outside of %d layouts", dev.Name, state.LayoutCount)
		}
	}

	return nil
}

func (s *StateStore) save(state *hyprcycle.State) error {
	if state.Devices == nil {
		state.Devices = []hyprcycle.DeviceState{}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(state); err != nil {
		tmp.Close()
		return fmt.Errorf("encode json: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}

	return nil
}
