package hyprcycle_test

import (
	"codeberg.org/miketth/hyprcycle/pkg/hyprcycle"
	"sync"
)

type switchCall struct {
	Keyboard string
	Idx      int
}

type fakeHyprland struct {
	mu        sync.Mutex
	count     int
	countErr  error
	keyboards []hyprcycle.Keyboard
	switchErr error
	calls     []switchCall
}

func (f *fakeHyprland) SwitchToLayout(keyboard string, idx int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, switchCall{Keyboard: keyboard, Idx: idx})
	return f.switchErr
}

func (f *fakeHyprland) LayoutCount() (int, error) {
	return f.count, f.countErr
}

func (f *fakeHyprland) GetKeyboards() ([]hyprcycle.Keyboard, error) {
	return f.keyboards, nil
}

func (f *fakeHyprland) Calls() []switchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]switchCall(nil), f.calls...)
}

type fakeRecorder struct {
	records []hyprcycle.SwitchRecord
	err     error
}

func (f *fakeRecorder) RecordSwitch(rec hyprcycle.SwitchRecord) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, rec)
	return nil
}
