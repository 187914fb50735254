// Package output prints styled status lines for bookitctl.
package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#6B7280")
	colorBrand   = lipgloss.Color("#B45309")

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	brandStyle   = lipgloss.NewStyle().Foreground(colorBrand).Bold(true)
	keyStyle     = lipgloss.NewStyle().Foreground(colorMuted).Width(12)
)

func Success(format string, args ...any) {
	fmt.Println(successStyle.Render("✓ ") + fmt.Sprintf(format, args...))
}

func Warning(format string, args ...any) {
	fmt.Println(warningStyle.Render("⚠ ") + fmt.Sprintf(format, args...))
}

func Error(format string, args ...any) {
	fmt.Println(errorStyle.Render("✗ ") + fmt.Sprintf(format, args...))
}

func Muted(format string, args ...any) {
	fmt.Println(mutedStyle.Render(fmt.Sprintf(format, args...)))
}

// Section prints a heading underlined to its own width.
func Section(title string) {
	fmt.Println()
	fmt.Println(brandStyle.Render(title))
	fmt.Println(mutedStyle.Render(strings.Repeat("═", lipgloss.Width(title))))
}

// Field prints an aligned "key  value" line.
func Field(key string, value any) {
	fmt.Println(keyStyle.Render(key) + fmt.Sprint(value))
}
