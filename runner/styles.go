package runner

import "github.com/charmbracelet/lipgloss"

// Palette used by the terminal formatters.
const (
	colorClean     = "42"  // Green
	colorRecovered = "45"  // Cyan
	colorFail      = "203" // Red
	colorError     = "214" // Orange
	colorMuted     = "245" // Light gray
	colorDim       = "240" // Dark gray
)

// Styles holds the lipgloss styles and symbols used by the TUI.
type Styles struct {
	Bold     lipgloss.Style
	Dim      lipgloss.Style
	Muted    lipgloss.Style
	Path     lipgloss.Style
	FileName lipgloss.Style
	Running  lipgloss.Style

	Clean     lipgloss.Style
	Recovered lipgloss.Style
	Fail      lipgloss.Style
	Error     lipgloss.Style

	ProgressFilled lipgloss.Style
	ProgressEmpty  lipgloss.Style

	SymbolClean     string
	SymbolRecovered string
	SymbolFail      string
	SymbolError     string
}

// DefaultStyles returns the default TUI styles.
func DefaultStyles() *Styles {
	return &Styles{
		Bold:     lipgloss.NewStyle().Bold(true),
		Dim:      lipgloss.NewStyle().Foreground(lipgloss.Color(colorDim)),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color(colorMuted)),
		Path:     lipgloss.NewStyle().Foreground(lipgloss.Color(colorMuted)).Underline(true),
		FileName: lipgloss.NewStyle(),
		Running:  lipgloss.NewStyle().Foreground(lipgloss.Color(colorRecovered)),

		Clean:     lipgloss.NewStyle().Foreground(lipgloss.Color(colorClean)),
		Recovered: lipgloss.NewStyle().Foreground(lipgloss.Color(colorRecovered)),
		Fail:      lipgloss.NewStyle().Foreground(lipgloss.Color(colorFail)),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color(colorError)),

		ProgressFilled: lipgloss.NewStyle().Foreground(lipgloss.Color(colorClean)),
		ProgressEmpty:  lipgloss.NewStyle().Foreground(lipgloss.Color(colorDim)),

		SymbolClean:     "✓",
		SymbolRecovered: "↻",
		SymbolFail:      "✗",
		SymbolError:     "!",
	}
}

// SpinnerFrames returns the frames of the running-file spinner.
func SpinnerFrames() []string {
	return []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
}

// ProgressChars returns the filled and empty progress bar characters.
func ProgressChars() (string, string) {
	return "█", "░"
}
