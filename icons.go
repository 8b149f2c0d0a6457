package main

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// icon is a single glyph that can be rendered in a color.
type icon string

// Icons used throughout the TUI. Plain Unicode for terminal compatibility.
const (
	IconLive     icon = "●" // meeting in progress
	IconDot      icon = "·" // separator dot
	IconLink     icon = "↗"
	IconCalendar icon = "▦"
	IconWarn     icon = "!"
)

// SpinnerFrames animate the sync indicator.
var SpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Render draws the icon in the muted separator color.
func (i icon) Render() string {
	return i.WithColor(ColorTextMuted)
}

// WithColor draws the icon in c.
func (i icon) WithColor(c color.Color) string {
	return lipgloss.NewStyle().Foreground(c).Render(string(i))
}
