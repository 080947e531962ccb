package hyprcycle

import (
	"fmt"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"time"
)

// SwitchRecord describes one committed switch.
type SwitchRecord struct {
	Device    string
	Press     Press
	FromIndex int
	ToIndex   int
	PressedAt time.Time
	// Gap is the time since the previous press on the device, zero if there
	// was none.
	Gap time.Duration
}

type Switcher struct {
	store    StateStore
	switcher LayoutSwitcher
	recorder SwitchRecorder
	clock    clockwork.Clock
	log      *zap.SugaredLogger

	burstWindow time.Duration
}

func NewSwitcher(
	store StateStore,
	switcher LayoutSwitcher,
	clock clockwork.Clock,
	log *zap.SugaredLogger,
) *Switcher {
	return &Switcher{
		store:    store,
		switcher: switcher,
		clock:    clock,
		log:      log,
	}
}

// SetBurstWindow overrides the window stored in the state file. Zero clears
// the override.
func (s *Switcher) SetBurstWindow(d time.Duration) {
	s.burstWindow = d
}

func (s *Switcher) SetRecorder(recorder SwitchRecorder) {
	s.recorder = recorder
}

// Switch moves device to its next layout and returns the committed state.
//
// The store is only written after the compositor accepted the new index, so
// the state file always matches the active layout.
func (s *Switcher) Switch(device string) (DeviceState, error) {
	now := s.clock.Now().UTC()

	var (
		committed DeviceState
		record    SwitchRecord
	)
	err := s.store.Update(func(state *State) error {
		if !state.Initialized() {
			return ErrUninitialized
		}

		dev, err := state.Device(device)
		if err != nil {
			return err
		}

		window := s.burstWindow
		if window <= 0 {
			window = state.BurstWindow()
		}

		press := Classify(dev.LastPressAt, now, window)
		next := Advance(*dev, state.LayoutCount, press, now)

		s.log.Debugw("classified press",
			"device", device,
			"press", press,
			"window", window,
			"from", dev.CurrentIndex,
			"to", next.CurrentIndex,
		)

		if err := s.switcher.SwitchToLayout(next.Name, next.CurrentIndex); err != nil {
			return fmt.Errorf("%w: device %q index %d: %w", ErrExternalSetFailed, next.Name, next.CurrentIndex, err)
		}

		record = SwitchRecord{
			Device:    next.Name,
			Press:     press,
			FromIndex: dev.CurrentIndex,
			ToIndex:   next.CurrentIndex,
			PressedAt: now,
		}
		if !dev.LastPressAt.IsZero() {
			record.Gap = now.Sub(dev.LastPressAt)
		}

		*dev = next
		committed = next
		return nil
	})
	if err != nil {
		return DeviceState{}, err
	}

	s.log.Infow("switched layout", "device", committed.Name, "press", record.Press, "index", committed.CurrentIndex)

	if s.recorder != nil {
		// the layout is already active, a lost history row is not worth failing the press
		if err := s.recorder.RecordSwitch(record); err != nil {
			s.log.Warnw("record switch history", "device", committed.Name, "error", err)
		}
	}

	return committed, nil
}

// Advance computes the device state after a press. count must be at least 1.
func Advance(dev DeviceState, count int, press Press, now time.Time) DeviceState {
	next := dev.PreviousIndex
	switch press {
	case PressFresh:
		dev.BurstActive = false
	case PressContinuing:
		dev.BurstActive = true
		next = dev.CurrentIndex + 1
	}

	dev.PreviousIndex = dev.CurrentIndex % count
	dev.CurrentIndex = next % count
	dev.LastPressAt = now
	return dev
}
