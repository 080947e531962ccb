package hyprcycle

import (
	"fmt"
	"go.uber.org/zap"
	"strings"
	"time"
)

// Registry manages the set of devices hyprcycle switches and the layout count
// they share.
//
// Every managed device must use the global input:kb_layout list. A device
// with its own per-device layouts cannot be detected here; switching it is
// undefined and left to the user.
type Registry struct {
	store     StateStore
	counter   LayoutCounter
	keyboards KeyboardLister
	log       *zap.SugaredLogger
}

// NewRegistry creates a registry. keyboards may be nil, in which case device
// names are not checked against connected keyboards.
func NewRegistry(
	store StateStore,
	counter LayoutCounter,
	keyboards KeyboardLister,
	log *zap.SugaredLogger,
) *Registry {
	return &Registry{
		store:     store,
		counter:   counter,
		keyboards: keyboards,
		log:       log,
	}
}

// Init stores the current layout count and registers devices that are not
// managed yet. It can be re-run after the layout set changed; existing
// devices are kept.
func (r *Registry) Init(devices ...string) (int, error) {
	count, err := r.counter.LayoutCount()
	if err != nil {
		return 0, fmt.Errorf("query layout count: %w", err)
	}
	if count < 1 {
		return 0, fmt.Errorf("hyprland reported %d layouts", count)
	}

	if len(devices) > 0 {
		if err := r.checkConnected(devices...); err != nil {
			return 0, err
		}
	}

	err = r.store.Reset(func(state *State) error {
		if state.LayoutCount != count {
			r.log.Infow("layout count changed", "old", state.LayoutCount, "new", count)
		}
		state.LayoutCount = count

		for i := range state.Devices {
			dev := &state.Devices[i]
			if dev.CurrentIndex >= count || dev.PreviousIndex >= count {
				r.log.Infow("resetting device outside of layout set", "device", dev.Name)
				*dev = NewDeviceState(dev.Name)
			}
		}

		for _, name := range devices {
			if state.HasDevice(name) {
				continue
			}
			state.Devices = append(state.Devices, NewDeviceState(name))
		}

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("save state: %w", err)
	}

	return count, nil
}

func (r *Registry) Add(name string) error {
	return r.store.Update(func(state *State) error {
		if !state.Initialized() {
			return ErrUninitialized
		}
		if state.HasDevice(name) {
			return fmt.Errorf("device %q: %w", name, ErrAlreadyExists)
		}
		if err := r.checkConnected(name); err != nil {
			return err
		}

		state.Devices = append(state.Devices, NewDeviceState(name))
		return nil
	})
}

func (r *Registry) Remove(name string) error {
	return r.store.Update(func(state *State) error {
		for i, dev := range state.Devices {
			if dev.Name == name {
				state.Devices = append(state.Devices[:i], state.Devices[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("device %q: %w", name, ErrNotFound)
	})
}

// List returns the managed device names in the order they were added.
func (r *Registry) List() ([]string, error) {
	state, err := r.store.Load()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(state.Devices))
	for _, dev := range state.Devices {
		names = append(names, dev.Name)
	}
	return names, nil
}

func (r *Registry) Resolve(name string) (DeviceState, error) {
	state, err := r.store.Load()
	if err != nil {
		return DeviceState{}, err
	}

	dev, err := state.Device(name)
	if err != nil {
		return DeviceState{}, err
	}
	return *dev, nil
}

func (r *Registry) BurstWindow() (time.Duration, error) {
	state, err := r.store.Load()
	if err != nil {
		return 0, err
	}
	return state.BurstWindow(), nil
}

func (r *Registry) SetBurstWindow(d time.Duration) error {
	if err := ValidateBurstWindow(d); err != nil {
		return err
	}

	return r.store.Update(func(state *State) error {
		if !state.Initialized() {
			return ErrUninitialized
		}
		state.BurstWindowMs = d.Milliseconds()
		return nil
	})
}

func (r *Registry) checkConnected(names ...string) error {
	if r.keyboards == nil {
		return nil
	}

	keyboards, err := r.keyboards.GetKeyboards()
	if err != nil {
		return fmt.Errorf("get keyboards: %w", err)
	}

	available := make([]string, 0, len(keyboards))
	connected := make(map[string]bool, len(keyboards))
	for _, k := range keyboards {
		available = append(available, k.Name)
		connected[k.Name] = true
	}

	for _, name := range names {
		if !connected[name] {
			return fmt.Errorf("keyboard %q is not connected (available: %s): %w", name, strings.Join(available, ", "), ErrNotFound)
		}
	}

	return nil
}
