package presenter

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestTerminalPresenter_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		context  string
		expected string
	}{
		{
			name:     "error with context",
			err:      errors.New("clone failed"),
			context:  "Installing skill",
			expected: "[ERROR] Installing skill: clone failed\n",
		},
		{
			name:     "error without context",
			err:      errors.New("registry unreadable"),
			expected: "[ERROR] registry unreadable\n",
		},
		{
			name:     "nil error",
			err:      nil,
			context:  "ignored",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var output, errOutput bytes.Buffer
			p := NewWithOptions(&output, &errOutput, ColorNever)

			p.Error(tt.err, tt.context)

			assert.Equal(t, tt.expected, errOutput.String())
			assert.Empty(t, output.String())
		})
	}
}

func TestTerminalPresenter_StatusLines(t *testing.T) {
	var output bytes.Buffer
	p := NewWithOptions(&output, nil, ColorNever)

	p.Success("Skill installed")
	p.Warning("No subdirectory given")
	p.Info("plain line")

	out := output.String()
	assert.Contains(t, out, "✓ Skill installed\n")
	assert.Contains(t, out, "⚠ No subdirectory given\n")
	assert.Contains(t, out, "plain line\n")
}

func TestTerminalPresenter_ASCIIMessages(t *testing.T) {
	var output bytes.Buffer
	p := NewWithOptions(&output, nil, ColorNever)
	p.SetMessages(ASCIIMessages)

	p.Success("done")
	p.Pass("SKILL.md exists")
	p.Fail("name mismatch")
	p.Warn("no scripts")

	out := output.String()
	assert.Contains(t, out, "[OK] done\n")
	assert.Contains(t, out, "[OK] PASS: SKILL.md exists\n")
	assert.Contains(t, out, "[X] FAIL: name mismatch\n")
	assert.Contains(t, out, "[!] WARN: no scripts\n")
	assert.NotContains(t, out, "✓")
}

func TestTerminalPresenter_Section(t *testing.T) {
	var output bytes.Buffer
	p := NewWithOptions(&output, nil, ColorNever)

	p.Section("Update Summary")

	assert.Equal(t, "Update Summary\n--------------\n", output.String())
}

func TestTerminalPresenter_Separator(t *testing.T) {
	var output bytes.Buffer
	p := NewWithOptions(&output, nil, ColorNever)

	p.Separator()

	assert.Equal(t, strings.Repeat("-", 60)+"\n", output.String())
}

func TestTerminalPresenter_Detail(t *testing.T) {
	var output bytes.Buffer
	p := NewWithOptions(&output, nil, ColorNever)

	p.Detail("scripts/run.py")

	assert.Equal(t, "      - scripts/run.py\n", output.String())
}

func TestTerminalPresenter_QuietMode(t *testing.T) {
	var output, errOutput bytes.Buffer
	p := NewWithOptions(&output, &errOutput, ColorNever)
	p.SetQuiet(true)
	assert.True(t, p.IsQuiet())

	p.Success("hidden")
	p.Warning("hidden")
	p.Info("hidden")
	p.Section("hidden")
	p.Separator()
	p.Pass("hidden")
	p.Warn("hidden")

	assert.Empty(t, output.String())

	p.Fail("still shown")
	p.Error(errors.New("boom"), "")
	assert.Contains(t, output.String(), "FAIL: still shown")
	assert.Contains(t, errOutput.String(), "boom")
}

func TestTerminalPresenter_Confirm(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{"  y  \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"yeah\n", false},
		{"y", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var output bytes.Buffer
			p := NewWithOptions(&output, nil, ColorNever)
			p.SetInput(strings.NewReader(tt.input))

			assert.Equal(t, tt.expected, p.Confirm("Overwrite existing skill?"))
			assert.Equal(t, "Overwrite existing skill? (y/N): ", output.String())
		})
	}
}

func TestSelectMessages(t *testing.T) {
	assert.Equal(t, "[OK]", SelectMessages(true).Icons.Pass)
	assert.Equal(t, "✓", SelectMessages(false).Icons.Pass)
	assert.Equal(t, DefaultMessages.UpdateSummary, ASCIIMessages.UpdateSummary)
	assert.Len(t, DefaultMessages.InitNextSteps, 3)
}

func TestDetectColorMode(t *testing.T) {
	tests := []struct {
		name     string
		noColor  string
		envColor string
		expected ColorMode
	}{
		{"default", "", "", ColorAuto},
		{"NO_COLOR wins", "1", "always", ColorNever},
		{"always", "", "always", ColorAlways},
		{"force", "", "force", ColorAlways},
		{"never", "", "never", ColorNever},
		{"off", "", "off", ColorNever},
		{"unknown", "", "sometimes", ColorAuto},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", tt.noColor)
			t.Setenv("SKILLS4AI_COLOR", tt.envColor)
			if tt.noColor == "" {
				os.Unsetenv("NO_COLOR")
			}

			assert.Equal(t, tt.expected, detectColorMode())
		})
	}
}

func TestDefaultPresenter(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	var output, errOutput bytes.Buffer
	p := NewWithOptions(&output, &errOutput, ColorNever)
	p.SetMessages(ASCIIMessages)
	SetDefault(p)

	Success("installed")
	Section("Installed Skills")
	Error(errors.New("boom"), "Updating")

	assert.Contains(t, output.String(), "[OK] installed\n")
	assert.Contains(t, output.String(), "Installed Skills\n----------------\n")
	assert.Equal(t, "[ERROR] Updating: boom\n", errOutput.String())
	assert.Equal(t, "[X]", Msgs().Icons.Fail)
}
