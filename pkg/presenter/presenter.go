// Package presenter provides consistent CLI output functionality for user-facing messages,
// including success, error, warning, audit verdicts and confirmation prompts with color
// support and quiet mode.
package presenter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Presenter defines the interface for consistent CLI output
type Presenter interface {
	Error(err error, context string)
	Success(message string)
	Warning(message string)
	Info(message string)
	Section(title string)
	Separator()
	Pass(message string)
	Fail(message string)
	Warn(message string)
	Detail(message string)
	Confirm(question string) bool
	Messages() Messages
	SetQuiet(quiet bool)
	IsQuiet() bool
}

// TerminalPresenter implements Presenter for terminal output
type TerminalPresenter struct {
	output      io.Writer
	errorOutput io.Writer
	input       io.Reader
	colorMode   ColorMode
	messages    Messages
	quiet       bool
}

// ColorMode represents different color output modes
type ColorMode int

const (
	// ColorAuto automatically detects whether to use colored output based on terminal capabilities
	ColorAuto ColorMode = iota
	// ColorAlways forces colored output regardless of terminal capabilities
	ColorAlways
	// ColorNever disables colored output regardless of terminal capabilities
	ColorNever
)

// New creates a new TerminalPresenter with default settings
func New() *TerminalPresenter {
	return NewWithOptions(os.Stdout, os.Stderr, detectColorMode())
}

// NewWithOptions creates a TerminalPresenter with custom settings
func NewWithOptions(output, errorOutput io.Writer, colorMode ColorMode) *TerminalPresenter {
	presenter := &TerminalPresenter{
		output:      output,
		errorOutput: errorOutput,
		input:       os.Stdin,
		colorMode:   colorMode,
		messages:    DefaultMessages,
		quiet:       false,
	}

	// Configure color package based on mode
	switch colorMode {
	case ColorAlways:
		color.NoColor = false
	case ColorNever:
		color.NoColor = true
	case ColorAuto:
		// Let color package auto-detect
	}

	return presenter
}

// detectColorMode determines the appropriate color mode based on environment
func detectColorMode() ColorMode {
	if os.Getenv("NO_COLOR") != "" {
		return ColorNever
	}

	switch os.Getenv("SKILLS4AI_COLOR") {
	case "always", "force":
		return ColorAlways
	case "never", "off":
		return ColorNever
	default:
		return ColorAuto
	}
}

// SetInput replaces the reader used by Confirm.
func (p *TerminalPresenter) SetInput(r io.Reader) {
	p.input = r
}

// SetMessages selects the message table.
func (p *TerminalPresenter) SetMessages(m Messages) {
	p.messages = m
}

// Messages returns the active message table.
func (p *TerminalPresenter) Messages() Messages {
	return p.messages
}

// Error displays an error message to stderr
func (p *TerminalPresenter) Error(err error, context string) {
	if err == nil {
		return
	}

	errorColor := color.New(color.FgRed, color.Bold)
	if context != "" {
		errorColor.Fprintf(p.errorOutput, "[ERROR] %s: %v\n", context, err)
	} else {
		errorColor.Fprintf(p.errorOutput, "[ERROR] %v\n", err)
	}
}

// Success displays a success message
func (p *TerminalPresenter) Success(message string) {
	if p.quiet {
		return
	}

	successColor := color.New(color.FgGreen, color.Bold)
	successColor.Fprintf(p.output, "%s %s\n", p.messages.Icons.Pass, message)
}

// Warning displays a warning message
func (p *TerminalPresenter) Warning(message string) {
	if p.quiet {
		return
	}

	warningColor := color.New(color.FgYellow, color.Bold)
	warningColor.Fprintf(p.output, "%s %s\n", p.messages.Icons.Warn, message)
}

// Info displays an informational message
func (p *TerminalPresenter) Info(message string) {
	if p.quiet {
		return
	}

	fmt.Fprintf(p.output, "%s\n", message)
}

// Section displays a section header with consistent formatting
func (p *TerminalPresenter) Section(title string) {
	if p.quiet {
		return
	}

	headerColor := color.New(color.Bold)
	separator := strings.Repeat("-", len(title))

	headerColor.Fprintf(p.output, "%s\n", title)
	headerColor.Fprintf(p.output, "%s\n", separator)
}

// Separator displays a visual separator
func (p *TerminalPresenter) Separator() {
	if p.quiet {
		return
	}

	separatorColor := color.New(color.Faint)
	separatorColor.Fprintf(p.output, "%s\n", strings.Repeat("-", 60))
}

// Pass prints a passed check line.
func (p *TerminalPresenter) Pass(message string) {
	if p.quiet {
		return
	}
	label := color.New(color.FgGreen).Sprintf("%s PASS:", p.messages.Icons.Pass)
	fmt.Fprintf(p.output, "%s %s\n", label, message)
}

// Fail prints a failed check line. Failures are shown even in quiet mode.
func (p *TerminalPresenter) Fail(message string) {
	label := color.New(color.FgRed).Sprintf("%s FAIL:", p.messages.Icons.Fail)
	fmt.Fprintf(p.output, "%s %s\n", label, message)
}

// Warn prints a warning check line.
func (p *TerminalPresenter) Warn(message string) {
	if p.quiet {
		return
	}
	label := color.New(color.FgYellow).Sprintf("%s WARN:", p.messages.Icons.Warn)
	fmt.Fprintf(p.output, "%s %s\n", label, message)
}

// Detail prints an indented detail line under a check.
func (p *TerminalPresenter) Detail(message string) {
	fmt.Fprintf(p.output, "      - %s\n", message)
}

// Confirm asks a yes/no question; only "y" or "yes" counts as consent.
func (p *TerminalPresenter) Confirm(question string) bool {
	promptColor := color.New(color.FgCyan)
	promptColor.Fprintf(p.output, "%s (y/N): ", question)

	reader := bufio.NewReader(p.input)
	response, err := reader.ReadString('\n')
	if err != nil && response == "" {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(response)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// SetQuiet enables or disables quiet mode
func (p *TerminalPresenter) SetQuiet(quiet bool) {
	p.quiet = quiet
}

// IsQuiet returns whether quiet mode is enabled
func (p *TerminalPresenter) IsQuiet() bool {
	return p.quiet
}

// Global presenter instance for convenience
var defaultPresenter Presenter = New()

// Default returns the global presenter.
func Default() Presenter {
	return defaultPresenter
}

// SetDefault replaces the global presenter.
func SetDefault(p Presenter) {
	defaultPresenter = p
}

// Error displays an error message using the default presenter
func Error(err error, context string) {
	defaultPresenter.Error(err, context)
}

// Success displays a success message using the default presenter
func Success(message string) {
	defaultPresenter.Success(message)
}

// Warning displays a warning message using the default presenter
func Warning(message string) {
	defaultPresenter.Warning(message)
}

// Info displays an informational message using the default presenter
func Info(message string) {
	defaultPresenter.Info(message)
}

// Section displays a section header using the default presenter
func Section(title string) {
	defaultPresenter.Section(title)
}

// Separator displays a visual separator using the default presenter
func Separator() {
	defaultPresenter.Separator()
}

// Detail prints an indented detail line using the default presenter
func Detail(message string) {
	defaultPresenter.Detail(message)
}

// Confirm asks a yes/no question using the default presenter
func Confirm(question string) bool {
	return defaultPresenter.Confirm(question)
}

// Msgs returns the message table of the default presenter
func Msgs() Messages {
	return defaultPresenter.Messages()
}

// SetQuiet sets quiet mode on the default presenter
func SetQuiet(quiet bool) {
	defaultPresenter.SetQuiet(quiet)
}

// IsQuiet returns whether the default presenter is in quiet mode
func IsQuiet() bool {
	return defaultPresenter.IsQuiet()
}
