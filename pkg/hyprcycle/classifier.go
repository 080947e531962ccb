package hyprcycle

import (
	"fmt"
	"time"
)

type Press int

const (
	// PressFresh is an isolated press, it toggles between the last two layouts.
	PressFresh Press = iota
	// PressContinuing is part of a burst, it steps through all layouts.
	PressContinuing
)

func (p Press) String() string {
	switch p {
	case PressFresh:
		return "fresh"
	case PressContinuing:
		return "continuing"
	}
	return "unknown"
}

func Classify(lastPressAt, now time.Time, window time.Duration) Press {
	if lastPressAt.IsZero() || now.Sub(lastPressAt) > window {
		return PressFresh
	}
	return PressContinuing
}

func ParsePress(s string) (Press, error) {
	switch s {
	case "fresh":
		return PressFresh, nil
	case "continuing":
		return PressContinuing, nil
	}
	return 0, fmt.Errorf("unknown press %q", s)
}
