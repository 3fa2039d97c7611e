package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme holds the color scheme of the interview transcript.
type Theme struct {
	Interviewer lipgloss.Color
	System      lipgloss.Color
	Warning     lipgloss.Color
	Hint        lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Interviewer: lipgloss.Color("#00D787"), // green
	System:      lipgloss.Color("#5FAFD7"), // light blue
	Warning:     lipgloss.Color("#FF005F"), // red
	Hint:        lipgloss.Color("#6C6C6C"), // dim gray
}

// Console renders the transcript with lipgloss and reads operator input line by line.
type Console struct {
	in       *bufio.Reader
	out      io.Writer
	renderer *lipgloss.Renderer
	theme    Theme
}

// NewConsole creates a console reading from in and writing to out.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{
		in:       bufio.NewReader(in),
		out:      out,
		renderer: lipgloss.NewRenderer(out),
		theme:    defaultTheme,
	}
}

func (c *Console) interviewerStyle() lipgloss.Style {
	return c.renderer.NewStyle().Foreground(c.theme.Interviewer).Bold(true)
}

func (c *Console) systemStyle() lipgloss.Style {
	return c.renderer.NewStyle().Foreground(c.theme.System)
}

func (c *Console) warningStyle() lipgloss.Style {
	return c.renderer.NewStyle().Foreground(c.theme.Warning).Bold(true)
}

func (c *Console) hintStyle() lipgloss.Style {
	return c.renderer.NewStyle().Foreground(c.theme.Hint).Italic(true)
}

// Interviewer prints a question.
func (c *Console) Interviewer(text string) {
	fmt.Fprintf(c.out, "\n%s %s\n", c.interviewerStyle().Render("Intervistatore:"), text)
}

// Info prints a system message.
func (c *Console) Info(text string) {
	fmt.Fprintln(c.out, c.systemStyle().Render(text))
}

// Warn prints a warning.
func (c *Console) Warn(text string) {
	fmt.Fprintln(c.out, c.warningStyle().Render(text))
}

// Ask prints prompt and reads one trimmed line. It returns io.EOF once input
// is exhausted; a final line without newline is still returned.
func (c *Console) Ask(prompt string) (string, error) {
	fmt.Fprint(c.out, c.hintStyle().Render(prompt))
	line, err := c.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}
