package viz

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Theme colors the live and playback views. Every field is read by a view:
// Canvas draws particles, springs and trails, Header the scene title, Help
// the key hints and Error stopped scenes and failures.
type Theme struct {
	Name   string
	Canvas lipgloss.Color
	Header lipgloss.Color
	Help   lipgloss.Color
	Error  lipgloss.Color
}

var Themes = []Theme{
	{Name: "neon", Canvas: "#ff00ff", Header: "#ffff00", Help: "#666666", Error: "#ff0000"},
	{Name: "phosphor", Canvas: "#00ff00", Header: "#88ff88", Help: "#005500", Error: "#ffff00"},
	{Name: "paper", Canvas: "#ffffff", Header: "#0088ff", Help: "#888888", Error: "#ff4444"},
	{Name: "ocean", Canvas: "#00a8cc", Header: "#ffd700", Help: "#4488aa", Error: "#ff4444"},
	{Name: "ember", Canvas: "#ff6b6b", Header: "#feca57", Help: "#8b6b8c", Error: "#ff4757"},
}

// CurrentTheme is read on every render.
var CurrentTheme = Themes[0]

// SetTheme selects a theme by name.
func SetTheme(name string) error {
	for _, t := range Themes {
		if t.Name == name {
			CurrentTheme = t
			return nil
		}
	}
	return fmt.Errorf("unknown theme: %s (available: %v)", name, ThemeNames())
}

// NextTheme switches to the theme after the current one and returns it.
func NextTheme() Theme {
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			CurrentTheme = Themes[(i+1)%len(Themes)]
			break
		}
	}
	return CurrentTheme
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
