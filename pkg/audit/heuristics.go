package audit

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// lineIssues runs match over every line of every Python file and collects
// "file:line: message" details.
func lineIssues(t *Target, match func(line string) string) []string {
	var issues []string
	for _, rel := range t.PythonFiles() {
		lines, err := t.ReadLines(rel)
		if err != nil {
			issues = append(issues, fmt.Sprintf("Could not read %s: %v", rel, err))
			continue
		}
		for i, line := range lines {
			if msg := match(line); msg != "" {
				issues = append(issues, fmt.Sprintf("%s:%d: %s", rel, i+1, msg))
			}
		}
	}
	return issues
}

var binaryMode = regexp.MustCompile(`['"][rwax+]*b[rwax+]*['"]`)

func checkEncoding(t *Target) Outcome {
	issues := lineIssues(t, func(line string) string {
		if !strings.Contains(line, "open(") && !strings.Contains(line, ".read_text(") && !strings.Contains(line, ".write_text(") {
			return ""
		}
		if strings.Contains(line, "encoding") || binaryMode.MatchString(line) {
			return ""
		}
		return "Potential unsafe file op without explicit encoding: " + strings.TrimSpace(line)
	})
	if len(issues) > 0 {
		return fail("Found potential encoding issues:", issues...)
	}
	return pass("File operations appear to use explicit encoding")
}

const stalePath = ".codebuddy"

func checkStalePaths(t *Target) Outcome {
	if t.Name == "skill-auditor" {
		return pass("Skipping path consistency check for skill-auditor itself")
	}

	var issues []string
	for _, rel := range t.Files("**/*") {
		switch path.Ext(rel) {
		case ".md", ".py", ".txt":
		default:
			continue
		}
		lines, err := t.ReadLines(rel)
		if err != nil {
			continue
		}
		if strings.Contains(strings.Join(lines, "\n"), stalePath) {
			issues = append(issues, fmt.Sprintf("%s: Contains reference to '%s'", rel, stalePath))
		}
	}

	if len(issues) > 0 {
		return fail("Found path inconsistencies:", issues...)
	}
	return pass("No outdated path references found")
}

func checkSubprocess(t *Target) Outcome {
	issues := lineIssues(t, func(line string) string {
		if !strings.Contains(line, "subprocess.run(") && !strings.Contains(line, "subprocess.check_output(") {
			return ""
		}
		textMode := strings.Contains(line, "text=True") || strings.Contains(line, "encoding=")
		if !textMode {
			return ""
		}
		capturing := strings.Contains(line, "capture_output=True") || strings.Contains(line, "stdout=subprocess.PIPE")
		if capturing && !strings.Contains(line, "errors=") {
			return "Subprocess call might crash on non-UTF8 output (missing errors='replace' or similar)"
		}
		return ""
	})
	if len(issues) > 0 {
		return fail("Found potential subprocess robustness issues:", issues...)
	}
	return pass("Subprocess calls appear robust or binary")
}

func checkRiskyPaths(t *Target) Outcome {
	issues := lineIssues(t, func(line string) string {
		if strings.Contains(line, "os.system(") {
			return "Use of os.system() detected. Prefer subprocess.run() for better control and security."
		}
		return ""
	})
	if len(issues) > 0 {
		return fail("Found potential risky path operations:", issues...)
	}
	return pass("No high-risk file operations detected")
}

var absolutePathLiteral = regexp.MustCompile(`[rRbBuU]?["'](/Users/|/home/|[A-Za-z]:\\)`)

func checkAbsolutePaths(t *Target) Outcome {
	issues := lineIssues(t, func(line string) string {
		code := stripComment(line)
		if m := absolutePathLiteral.FindString(code); m != "" {
			return "Hard-coded absolute path literal: " + strings.TrimSpace(code)
		}
		return ""
	})
	if len(issues) > 0 {
		return fail("Found hard-coded absolute paths:", issues...)
	}
	return pass("No hard-coded absolute paths found")
}

func checkI18n(t *Target) Outcome {
	issues := lineIssues(t, func(line string) string {
		code := stripComment(line)
		if r, ok := firstEmoji(code); ok {
			return fmt.Sprintf("Emoji %q in code outside comments", r)
		}
		if strings.Contains(code, "print(") && !isASCII(code) {
			return "Hard-coded non-ASCII user string in print()"
		}
		return ""
	})
	if len(issues) > 0 {
		return fail("Found internationalization issues:", issues...)
	}
	return pass("No emoji or hard-coded non-ASCII output in code")
}

// stripComment removes a trailing "#" comment, ignoring "#" inside
// single or double quoted strings.
func stripComment(line string) string {
	var quote rune
	escaped := false
	for i, r := range line {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && quote != 0:
			escaped = true
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '#':
			return line[:i]
		}
	}
	return line
}

var emojiRanges = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x2600, Hi: 0x27bf, Stride: 1},
		{Lo: 0x2b50, Hi: 0x2b55, Stride: 1},
		{Lo: 0xfe0f, Hi: 0xfe0f, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x1f000, Hi: 0x1faff, Stride: 1},
	},
}

func firstEmoji(s string) (rune, bool) {
	for _, r := range s {
		if unicode.Is(emojiRanges, r) {
			return r, true
		}
	}
	return 0, false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
