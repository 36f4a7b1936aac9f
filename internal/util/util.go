package util

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	IsDebug bool

	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0EA5E9")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF4757")).
			Bold(true)

	debugErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FF4757")).
			Padding(1, 2)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA726")).
			Bold(true)
)

// SetDebugMode sets the debug mode
func SetDebugMode(debug bool) {
	IsDebug = debug
}

// ErrorHandler returns a styled startup error message
func ErrorHandler(err error) string {
	if IsDebug {
		return fmt.Sprintf("%s\n%s", errorStyle.Render("startup failed"), debugErrorStyle.Render(fmt.Sprintf("%+v", err)))
	}
	return fmt.Sprintf("%s\n%s",
		errorStyle.Render(fmt.Sprintf("startup failed: %v", err)),
		hintStyle.Render("run with -debug to see details"))
}

// Banner renders the startup line printed before the server begins listening
func Banner(version, addr string) string {
	return bannerStyle.Render(fmt.Sprintf("sflix-api %s listening on %s", version, addr))
}
