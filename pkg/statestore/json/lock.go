package json

import (
	"codeberg.org/miketth/hyprcycle/pkg/hyprcycle"
	"errors"
	"fmt"
	"golang.org/x/sys/unix"
	"os"
	"path/filepath"
	"time"
)

const lockPollInterval = 5 * time.Millisecond

// fileLock is an advisory flock on a sidecar file. The state file itself is
// replaced by rename on every save, so it cannot carry the lock.
type fileLock struct {
	file *os.File
}

func acquireLock(path string, timeout time.Duration) (*fileLock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for {
		err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			return &fileLock{file: file}, nil
		}

		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, unix.EINTR) {
			file.Close()
			return nil, fmt.Errorf("flock %s: %w", path, err)
		}

		if time.Now().After(deadline) {
			file.Close()
			return nil, fmt.Errorf("%w: %s still locked after %s", hyprcycle.ErrStoreBusy, path, timeout)
		}

		time.Sleep(lockPollInterval)
	}
}

func (l *fileLock) release() error {
	defer l.file.Close()

	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		return fmt.Errorf("unlock: %w", err)
	}
	return nil
}
