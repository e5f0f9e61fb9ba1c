package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	promptColor  = color.New(color.FgMagenta, color.Bold)
)

// Out is where the printers write; tests swap it
var Out io.Writer = os.Stdout

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...any) {
	successColor.Fprintf(Out, "✓ %s\n", fmt.Sprintf(format, args...))
}

// PrintError prints an error message
func PrintError(format string, args ...any) {
	errorColor.Fprintf(Out, "✗ %s\n", fmt.Sprintf(format, args...))
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...any) {
	warningColor.Fprintf(Out, "⚠ %s\n", fmt.Sprintf(format, args...))
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...any) {
	infoColor.Fprintf(Out, "ℹ %s\n", fmt.Sprintf(format, args...))
}

// PrintPrompt prints the interactive input prompt without a newline
func PrintPrompt(label string) {
	promptColor.Fprintf(Out, "%s › ", label)
}

// PrintDelta writes streamed prose as-is
func PrintDelta(s string) {
	fmt.Fprint(Out, s)
}

// PrintChatBanner prints the welcome banner for chat mode
func PrintChatBanner(server, sessionID string) {
	title := Styles.CardTitle.Render("placechat · interactive mode")
	body := fmt.Sprintf("%s\n%s\n%s",
		title,
		Styles.Muted.Render("server  "+server),
		Styles.Muted.Render("session "+sessionID),
	)
	fmt.Fprintln(Out, Styles.Banner.Render(body))
	fmt.Fprintln(Out, Styles.Muted.Render("Ask about places or directions. /reset clears history, /quit exits."))
}

// PrintErrorBox prints an error message in a box
func PrintErrorBox(title, content string) {
	fmt.Fprintln(Out, Styles.ErrorBox.Render(errorColor.Sprint(title)+"\n\n"+content))
}
