package theme

// Centralized theming for the console. Palette constants plus InitStyles to
// activate a base theme and configure semantic widget styles.

import (
	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Palette defines core semantic colors used across widgets.
const (
	ColorBg        = "#f7f9fb"
	ColorSurface   = "#ffffff"
	ColorBorder    = "#d0d7de"
	ColorPrimary   = "#2563eb"
	ColorDanger    = "#dc2626"
	ColorAccent    = "#10b981"
	ColorWarning   = "#d97706"
	ColorText      = "#1e293b"
	ColorTextMuted = "#64748b"
	ColorVideoBg   = "#000000"
)

// PaletteSnapshot represents resolved colors for the active mode.
type PaletteSnapshot struct {
	AppBg     string
	Surface   string
	Border    string
	Primary   string
	Danger    string
	Accent    string
	Warning   string
	Text      string
	TextMuted string
}

// CurrentPalette returns colors for the current dark/light mode.
func CurrentPalette() PaletteSnapshot { return palette(darkMode) }

func palette(dark bool) PaletteSnapshot {
	if dark {
		return PaletteSnapshot{
			AppBg:     "#0f172a",
			Surface:   "#1e293b",
			Border:    "#334155",
			Primary:   "#3b82f6",
			Danger:    "#ef4444",
			Accent:    "#10b981",
			Warning:   "#f59e0b",
			Text:      "#f1f5f9",
			TextMuted: "#94a3b8",
		}
	}
	return PaletteSnapshot{
		AppBg:     ColorBg,
		Surface:   ColorSurface,
		Border:    ColorBorder,
		Primary:   ColorPrimary,
		Danger:    ColorDanger,
		Accent:    ColorAccent,
		Warning:   ColorWarning,
		Text:      ColorText,
		TextMuted: ColorTextMuted,
	}
}

// Style names used with Style(...).
const (
	StylePrimaryButton = "primary.TButton"
	StyleDangerButton  = "danger.TButton"
	StyleHeaderLabel   = "header.TLabel"
	StyleConnected     = "connected.TLabel"
	StyleDisconnected  = "disconnected.TLabel"
	StyleMessageLabel  = "message.TLabel"
)

// StatusStyle picks the indicator style for a connected flag.
func StatusStyle(ok bool) string {
	if ok {
		return StyleConnected
	}
	return StyleDisconnected
}

var darkMode bool

// InitStyles (re)applies styles for the current mode.
func InitStyles() { applyStyles(darkMode) }

// SetDark switches mode and reapplies styles. Returns the new mode.
func SetDark(dark bool) bool {
	darkMode = dark
	applyStyles(darkMode)
	return darkMode
}

// ToggleDark flips dark mode.
func ToggleDark() bool { return SetDark(!darkMode) }

func IsDark() bool { return darkMode }

func applyStyles(dark bool) {
	p := palette(dark)
	_ = ActivateTheme("azure light")
	App.Configure(Background(p.AppBg))

	StyleConfigure(StylePrimaryButton,
		Background(p.Primary),
		Foreground("white"),
		Padding("4p 3p"),
		Borderwidth(1),
		Relief("ridge"),
	)
	StyleConfigure(StyleDangerButton,
		Background(p.Danger),
		Foreground("white"),
		Padding("4p 3p"),
		Borderwidth(1),
		Relief("ridge"),
	)
	StyleConfigure(StyleHeaderLabel,
		Foreground(p.Text),
		Background(p.AppBg),
		Padding("2p 1p"),
	)
	StyleConfigure(StyleConnected,
		Foreground("white"),
		Background(p.Accent),
		Padding("4p 2p"),
		Borderwidth(1),
		Relief("groove"),
	)
	StyleConfigure(StyleDisconnected,
		Foreground("white"),
		Background(p.Danger),
		Padding("4p 2p"),
		Borderwidth(1),
		Relief("groove"),
	)
	StyleConfigure(StyleMessageLabel,
		Foreground(p.Warning),
		Background(p.AppBg),
		Padding("2p 1p"),
	)
}
