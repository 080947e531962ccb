package hyprland

import (
	"codeberg.org/miketth/hyprcycle/pkg/hyprcycle"
	"strings"
)

const layoutOption = "input:kb_layout"

type keyboard struct {
	Name         string `json:"name"`
	Layout       string `json:"layout"`
	Variant      string `json:"variant"`
	Options      string `json:"options"`
	ActiveKeymap string `json:"active_keymap"`
	Main         bool   `json:"main"`
}

type devices struct {
	Keyboards []keyboard `json:"keyboards"`
}

type option struct {
	Option string `json:"option"`
	Str    string `json:"str"`
	Set    bool   `json:"set"`
}

func (k keyboard) ToKeyboard() hyprcycle.Keyboard {
	return hyprcycle.Keyboard{
		Name: k.Name,
		Main: k.Main,
	}
}

func toKeyboards(devs devices) []hyprcycle.Keyboard {
	out := make([]hyprcycle.Keyboard, 0, len(devs.Keyboards))
	for _, k := range devs.Keyboards {
		out = append(out, k.ToKeyboard())
	}
	return out
}

// countLayouts counts the entries of an input:kb_layout value. An empty value
// means xkb's single default layout.
func countLayouts(value string) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return 1
	}
	return len(strings.Split(value, ","))
}
