package util

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	lightGreen  = lipgloss.Color("#90EE90")
	gray        = lipgloss.Color("#A9A9A9")
	darkGray    = lipgloss.Color("#5A5A5A")
	brightGreen = lipgloss.Color("#00FF7F")
	blue        = lipgloss.Color("#6366F1")

	titleStyle = lipgloss.NewStyle().
			Foreground(blue).
			Bold(true).
			PaddingBottom(1).
			MarginLeft(2)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(gray).
			Italic(true).
			MarginLeft(2)

	sectionTitleStyle = lipgloss.NewStyle().
				Foreground(lightGreen).
				Bold(true).
				PaddingLeft(2)

	optionStyle = lipgloss.NewStyle().
			Foreground(brightGreen).
			Bold(true).
			PaddingLeft(4)

	defaultStyle = lipgloss.NewStyle().
			Foreground(darkGray).
			Italic(true)

	descriptionStyle = lipgloss.NewStyle().
				Foreground(gray).
				PaddingLeft(6).
				Width(80 - 6)

	separatorStyle = lipgloss.NewStyle().
			Foreground(darkGray)
)

// HelpEntry is one flag or environment variable on the help page
type HelpEntry struct {
	Name        string
	Default     string
	Description string
}

// HelpSection groups entries under a title
type HelpSection struct {
	Title   string
	Entries []HelpEntry
}

// WriteHelp renders the usage page for the service
func WriteHelp(w io.Writer, sections []HelpSection) {
	var b strings.Builder

	b.WriteString(titleStyle.Render("sflix-api"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("JSON API over the SFlix catalog: listings, details, seasons, episodes and servers."))
	b.WriteString("\n\n")

	for _, section := range sections {
		b.WriteString(separatorStyle.Render(strings.Repeat("─", 80)))
		b.WriteString("\n")
		b.WriteString(sectionTitleStyle.Render(section.Title + ":"))
		b.WriteString("\n")
		for _, e := range section.Entries {
			addEntry(&b, e)
		}
		b.WriteString("\n")
	}

	_, _ = fmt.Fprint(w, b.String())
}

func addEntry(b *strings.Builder, e HelpEntry) {
	line := optionStyle.Render("  " + e.Name)
	if e.Default != "" {
		line += " " + defaultStyle.Render("(default "+e.Default+")")
	}
	b.WriteString(line)
	b.WriteString("\n")
	b.WriteString(descriptionStyle.Render("    " + e.Description))
	b.WriteString("\n")
}
