package main

import (
	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/compat"
)

// -- Colors ---------------------------------------------------------------
// All colors are adaptive for dark/light terminal support.
// Light values: ANSI 0-15 for accents, 256-color for grays. Never use ANSI
// 7/15 for Light values; they vanish on light backgrounds.
//
// | Name            | Light | Dark  | Use                          |
// |-----------------|-------|-------|------------------------------|
// | TextPrimary     |   "0" | "252" | event titles                 |
// | TextSecondary   |   "8" | "245" | section labels               |
// | TextDim         | "242" | "243" | time ranges, hints           |
// | TextMuted       | "245" | "240" | rules, separators            |
// | Accent          |   "4" |  "75" | header, key hints            |
// | Error           |   "1" | "196" | sync errors                  |
// | Border          | "250" |  "60" | status bar                   |
// | Ongoing         |   "2" |  "76" | meeting in progress          |
// | Join            |   "2" | "114" | join button                  |
// | AddURL          |   "5" | "135" | add-URL button               |
// | SelectedBg      | "254" | "237" | cursor row                   |

var (
	ColorTextPrimary   = ac("0", "252")
	ColorTextSecondary = ac("8", "245")
	ColorTextDim       = ac("242", "243")
	ColorTextMuted     = ac("245", "240")

	ColorAccent = ac("4", "75")
	ColorError  = ac("1", "196")
	ColorBorder = ac("250", "60")

	ColorOngoing    = ac("2", "76")
	ColorOngoingDim = ac("10", "22")

	ColorJoin   = ac("2", "114")
	ColorAddURL = ac("5", "135")
	ColorLink   = ac("4", "69")

	ColorSelectedBg = ac("254", "237")
)

var (
	StylePrimaryBold = lipgloss.NewStyle().Bold(true).Foreground(ColorTextPrimary)
	StyleSecondary   = lipgloss.NewStyle().Foreground(ColorTextSecondary)
	StyleDim         = lipgloss.NewStyle().Foreground(ColorTextDim)
	StyleMuted       = lipgloss.NewStyle().Foreground(ColorTextMuted)
	StyleAccentBold  = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	StyleErrorBold   = lipgloss.NewStyle().Bold(true).Foreground(ColorError)
)

// ac is a shorthand constructor for an adaptive color.
func ac(light, dark string) compat.AdaptiveColor {
	return compat.AdaptiveColor{Light: lipgloss.Color(light), Dark: lipgloss.Color(dark)}
}
