// Package ui renders aic's terminal output: the banner, status lines and
// the configuration table. All output goes through an injected writer so
// tests can capture it. Colors degrade automatically on non-terminals and
// under NO_COLOR.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/zhubert/aic/config"
)

var (
	headerColor  = color.New(color.FgHiBlue)
	infoColor    = color.New(color.FgBlue)
	successColor = color.New(color.FgGreen, color.Bold)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
	commandColor = color.New(color.FgHiWhite)
	keyColor     = color.New(color.FgHiBlue)
	dimColor     = color.New(color.Faint)
)

// UI writes formatted terminal output.
type UI struct {
	out io.Writer
}

// New creates a UI writing to out.
func New(out io.Writer) *UI {
	return &UI{out: out}
}

// Header prints the application banner.
func (u *UI) Header() {
	headerColor.Fprintln(u.out, "╭─────────────────────────────────────╮")
	headerColor.Fprintln(u.out, "│     AI Commit Message Generator     │")
	headerColor.Fprintln(u.out, "╰─────────────────────────────────────╯")
}

// Info prints a status line.
func (u *UI) Info(format string, args ...any) {
	infoColor.Fprintf(u.out, format+"\n", args...)
}

// Success prints a success line.
func (u *UI) Success(format string, args ...any) {
	successColor.Fprintf(u.out, format+"\n", args...)
}

// Warn prints a warning line.
func (u *UI) Warn(format string, args ...any) {
	warnColor.Fprintf(u.out, format+"\n", args...)
}

// Error prints an error line.
func (u *UI) Error(format string, args ...any) {
	errorColor.Fprintf(u.out, format+"\n", args...)
}

// Dim prints a de-emphasized line.
func (u *UI) Dim(format string, args ...any) {
	dimColor.Fprintf(u.out, format+"\n", args...)
}

// Prompt prints a question without a trailing newline so the answer is
// typed on the same line.
func (u *UI) Prompt(format string, args ...any) {
	warnColor.Fprintf(u.out, format, args...)
}

// Printf prints without styling.
func (u *UI) Printf(format string, args ...any) {
	fmt.Fprintf(u.out, format, args...)
}

// CommitCommand prints the proposed commit command.
func (u *UI) CommitCommand(message string) {
	successColor.Fprintln(u.out, "📋 Commit command:")
	escaped := strings.ReplaceAll(message, `"`, `\"`)
	commandColor.Fprintf(u.out, "git commit -m \"%s\"\n", escaped)
}

// MaskToken hides most of an API token for display.
func MaskToken(token string) string {
	if len(token) > 8 {
		return token[:4] + "•••••"
	}
	return "•••••••"
}

// ConfigTable prints the configuration as a two-column table. The token is
// masked and long prompts are truncated.
func (u *UI) ConfigTable(cfg *config.Config) {
	const valueWidth = 36

	truncate := func(s string) string {
		s = strings.ReplaceAll(s, "\n", " ")
		// Cut on runes so a multibyte prompt never yields invalid UTF-8
		runes := []rune(s)
		if len(runes) > valueWidth {
			return string(runes[:valueWidth-3]) + "..."
		}
		return s
	}

	row := func(key, value string) {
		fmt.Fprint(u.out, "│ ")
		keyColor.Fprintf(u.out, "%-13s", key)
		fmt.Fprintf(u.out, " │ %-*s │\n", valueWidth, truncate(value))
	}

	dimColor.Fprintln(u.out, "┌───────────────┬──────────────────────────────────────┐")

	if cfg.APIToken != "" {
		row("api_token", MaskToken(cfg.APIToken))
	} else {
		row("api_token", "<not set>")
	}
	row("api_base_url", cfg.GetAPIBaseURL())
	row("model", cfg.GetModel())
	row("system_prompt", cfg.GetSystemPrompt())
	row("user_prompt", cfg.GetUserPrompt())

	dimColor.Fprintln(u.out, "└───────────────┴──────────────────────────────────────┘")
}
