package styles

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// Color palette
var (
	PrimaryColor = lipgloss.Color("#3B82F6") // Blue
	AccentColor  = lipgloss.Color("#F59E0B") // Amber

	GainColor    = lipgloss.Color("#10B981") // Green
	LossColor    = lipgloss.Color("#EF4444") // Red
	NeutralColor = lipgloss.Color("#6B7280") // Gray

	BackgroundColor  = lipgloss.Color("#1F2937")
	BorderColor      = lipgloss.Color("#374151")
	FocusBorderColor = lipgloss.Color("#3B82F6")

	TextColor          = lipgloss.Color("#F9FAFB")
	TextSecondaryColor = lipgloss.Color("#9CA3AF")
	TextMutedColor     = lipgloss.Color("#6B7280")
)

// Panel styles
var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)

	FocusedPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(FocusBorderColor).
				Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			Padding(0, 1)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextSecondaryColor)

	RowStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	SelectedRowStyle = lipgloss.NewStyle().
				Foreground(TextColor).
				Background(lipgloss.Color("#374151"))
)

// Text styles
var (
	GainStyle = lipgloss.NewStyle().
			Foreground(GainColor)

	LossStyle = lipgloss.NewStyle().
			Foreground(LossColor)

	MutedStyle = lipgloss.NewStyle().
			Foreground(TextMutedColor)

	TimeStyle = lipgloss.NewStyle().
			Foreground(TextMutedColor)

	HeadlineStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	SymbolTagStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(LossColor)

	SuccessStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(GainColor)
)

// Form styles
var (
	LabelStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor)

	FormTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)

	FormBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(1, 2)

	HintStyle = lipgloss.NewStyle().
			Foreground(TextMutedColor)
)

// Status bar styles
var (
	StatusBarStyle = lipgloss.NewStyle().
			Background(BackgroundColor).
			Foreground(TextSecondaryColor).
			Padding(0, 1)

	StatusBarKeyStyle = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Bold(true)

	StatusBarDescStyle = lipgloss.NewStyle().
				Foreground(TextSecondaryColor)
)

// RenderTitle renders a panel title bar.
func RenderTitle(title string, focused bool) string {
	style := TitleStyle
	if focused {
		style = style.Foreground(FocusBorderColor)
	}
	return style.Render(title)
}

// Money formats a dollar amount with thousands separators.
func Money(v float64) string {
	return "$" + humanize.CommafWithDigits(v, 2)
}

// Price formats a per-share price at the API's four-decimal resolution.
func Price(v float64) string {
	return fmt.Sprintf("$%.4f", v)
}

// SignedMoney formats a P/L amount with an explicit sign.
func SignedMoney(v float64) string {
	if v >= 0 {
		return "+$" + humanize.CommafWithDigits(v, 2)
	}
	return "-$" + humanize.CommafWithDigits(-v, 2)
}

// SignedPercent formats a percentage with an explicit sign.
func SignedPercent(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}

// PLStyle returns the gain or loss style for a signed value.
func PLStyle(v float64) lipgloss.Style {
	if v < 0 {
		return LossStyle
	}
	return GainStyle
}
