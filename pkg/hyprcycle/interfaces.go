package hyprcycle

type LayoutSwitcher interface {
	SwitchToLayout(keyboard string, idx int) error
}

type LayoutCounter interface {
	LayoutCount() (int, error)
}

type KeyboardLister interface {
	GetKeyboards() ([]Keyboard, error)
}

// Hyprland is everything hyprcycle needs from the compositor.
type Hyprland interface {
	LayoutSwitcher
	LayoutCounter
	KeyboardLister
}

type Keyboard struct {
	Name string
	Main bool
}

// StateStore persists State between invocations.
//
// Update must hold an exclusive lock across load, fn and save, and must
// only save when fn returns nil.
//
// Reset behaves like Update, except that an unreadable state file is replaced
// by an empty State instead of failing with ErrStoreUnavailable.
type StateStore interface {
	Load() (*State, error)
	Update(fn func(state *State) error) error
	Reset(fn func(state *State) error) error
}

type SwitchRecorder interface {
	RecordSwitch(rec SwitchRecord) error
}
