package tmux

// Theme represents visual styling for a ship session.
type Theme struct {
	Name string // Human-readable theme name
	BG   string // Background color (hex or color name)
	FG   string // Foreground color (hex or color name)
}

// Style returns the style string for this theme (e.g., "bg=#1e3a5f,fg=#e0e0e0").
func (t Theme) Style() string {
	return "bg=" + t.BG + ",fg=" + t.FG
}

// ShipTheme is the dark theme applied to ship sessions so an attached
// operator can tell them apart from ordinary shells.
func ShipTheme() Theme {
	return Theme{Name: "ship", BG: "#1a1a2e", FG: "#c0c0c0"}
}
