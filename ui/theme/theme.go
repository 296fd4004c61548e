// Package theme configures the ttk styles of the measurement window. The
// palette has a light and a dark variant; the "d" key toggles between them.
package theme

import (
	tk "modernc.org/tk9.0"
)

// Palette holds the resolved colours for one mode.
type Palette struct {
	AppBg   string
	Primary string
	Danger  string
	Accent  string // state label: measuring
}

var (
	light = Palette{
		AppBg:   "#f7f9fb",
		Primary: "#2563eb",
		Danger:  "#dc2626",
		Accent:  "#10b981",
	}
	dark = Palette{
		AppBg:   "#0f172a",
		Primary: "#3b82f6",
		Danger:  "#ef4444",
		Accent:  "#059669",
	}
)

// Style names used with Style(...) on ttk widgets.
const (
	StylePrimaryButton = "primary.TButton"
	StyleDangerButton  = "danger.TButton"
	StyleStateLabel    = "state.TLabel"
)

var darkMode bool

// Current returns the palette for the active mode.
func Current() Palette {
	if darkMode {
		return dark
	}
	return light
}

// InitStyles (re)applies styles for the current mode.
func InitStyles() { apply(Current()) }

// SetDark selects the mode and reapplies styles. Returns the new mode.
func SetDark(on bool) bool {
	darkMode = on
	apply(Current())
	return darkMode
}

// ToggleDark flips the mode.
func ToggleDark() bool { return SetDark(!darkMode) }

func apply(p Palette) {
	_ = tk.ActivateTheme("azure light")
	tk.App.Configure(tk.Background(p.AppBg))
	button := func(name, bg string) {
		tk.StyleConfigure(name, tk.Background(bg), tk.Foreground("white"), tk.Padding("4p 3p"), tk.Borderwidth(1), tk.Relief("ridge"))
	}
	button(StylePrimaryButton, p.Primary)
	button(StyleDangerButton, p.Danger)
	tk.StyleConfigure(StyleStateLabel,
		tk.Foreground("white"),
		tk.Background(p.Accent),
		tk.Padding("4p 2p"),
		tk.Borderwidth(1),
		tk.Relief("groove"),
	)
}
