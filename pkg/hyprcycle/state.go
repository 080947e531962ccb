package hyprcycle

import (
	"fmt"
	"time"
)

const (
	DefaultBurstWindow = 350 * time.Millisecond
	MinBurstWindow     = 100 * time.Millisecond
	MaxBurstWindow     = time.Second
)

// State is the whole persisted state file.
type State struct {
	// LayoutCount is the number of layouts in input:kb_layout. Zero means init
	// has not been run yet.
	LayoutCount   int           `json:"layoutCount"`
	BurstWindowMs int64         `json:"burstWindowMs,omitempty"`
	Devices       []DeviceState `json:"devices"`
}

type DeviceState struct {
	Name          string    `json:"name"`
	CurrentIndex  int       `json:"currentIndex"`
	PreviousIndex int       `json:"previousIndex"`
	LastPressAt   time.Time `json:"lastPressAt"`
	BurstActive   bool      `json:"burstActive"`
}

func NewDeviceState(name string) DeviceState {
	return DeviceState{Name: name}
}

func (s *State) Initialized() bool {
	return s.LayoutCount > 0
}

func (s *State) BurstWindow() time.Duration {
	if s.BurstWindowMs <= 0 {
		return DefaultBurstWindow
	}
	return time.Duration(s.BurstWindowMs) * time.Millisecond
}

// Device returns a pointer into s.Devices, so changes through it are saved
// with the state.
func (s *State) Device(name string) (*DeviceState, error) {
	for i := range s.Devices {
		if s.Devices[i].Name == name {
			return &s.Devices[i], nil
		}
	}
	return nil, fmt.Errorf("device %q: %w", name, ErrNotFound)
}

func (s *State) HasDevice(name string) bool {
	_, err := s.Device(name)
	return err == nil
}

func (s *State) Clone() *State {
	out := *s
	out.Devices = append([]DeviceState(nil), s.Devices...)
	return &out
}

func ValidateBurstWindow(d time.Duration) error {
	if d < MinBurstWindow || d > MaxBurstWindow {
		return fmt.Errorf("%w: %s is outside [%s, %s]", ErrInvalidBurstWindow, d, MinBurstWindow, MaxBurstWindow)
	}
	return nil
}
