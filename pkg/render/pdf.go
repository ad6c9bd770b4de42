package render

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/kinntalk/skills4ai/pkg/logger"
	"github.com/kinntalk/skills4ai/pkg/osutil"
)

// Themes maps theme names to their accent colors.
var Themes = map[string]string{
	"white-paper": "1e3a8a",
	"marketing":   "059669",
	"research":    "7c3aed",
	"technical":   "374151",
}

// ThemeNames returns the sorted theme names.
func ThemeNames() []string {
	names := make([]string, 0, len(Themes))
	for name := range Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PDFOptions controls pandoc invocation.
type PDFOptions struct {
	Input    string
	Output   string
	Theme    string
	Russian  bool
	TOC      bool
	TOCDepth int
	Margin   string
	FontSize string
	Mobile   bool
}

// DefaultPDFOptions returns desktop defaults for input.
func DefaultPDFOptions(input string) PDFOptions {
	return PDFOptions{
		Input:    input,
		Theme:    "white-paper",
		TOC:      true,
		TOCDepth: 2,
		Margin:   "2.5cm",
		FontSize: "11pt",
	}
}

// OutputPath returns Output, or a name derived from the input. Mobile
// output lands in the working directory as <stem>-mobile.pdf.
func (o PDFOptions) OutputPath() string {
	if o.Output != "" {
		return o.Output
	}
	stem := strings.TrimSuffix(o.Input, filepath.Ext(o.Input))
	if o.Mobile {
		return filepath.Base(stem) + "-mobile.pdf"
	}
	return stem + ".pdf"
}

// Layout describes the page layout for display.
func (o PDFOptions) Layout() string {
	if o.Mobile {
		return "Mobile (6x9in)"
	}
	return "Desktop (Letter)"
}

// CJKFont returns the CJK main font for the given GOOS.
func CJKFont(goos string) string {
	switch goos {
	case "darwin":
		return "PingFang SC"
	case "linux":
		return "Noto Sans CJK SC"
	default:
		return "Microsoft YaHei"
	}
}

// BuildPandocArgs returns the pandoc arguments for o on goos.
func BuildPandocArgs(o PDFOptions, goos string) []string {
	margin, fontSize := o.Margin, o.FontSize
	if o.Mobile {
		margin, fontSize = "0.5in", "10pt"
	}

	args := []string{
		o.Input,
		"-o", o.OutputPath(),
		"--pdf-engine=xelatex",
		"-V", "geometry:margin=" + margin,
		"-V", "fontsize=" + fontSize,
		"-V", "documentclass=article",
		"-V", "colorlinks=true",
		"-V", "linkcolor=blue",
		"-V", "urlcolor=blue",
	}

	if o.Mobile {
		args = append(args,
			"-V", "geometry:paperwidth=6in",
			"-V", "geometry:paperheight=9in",
			"-V", "linestretch=1.2",
		)
	}

	if o.TOC {
		args = append(args, "--toc", fmt.Sprintf("--toc-depth=%d", o.TOCDepth))
	}

	args = append(args, "-V", "CJKmainfont="+CJKFont(goos))

	if o.Russian {
		args = append(args, "-V", "mainfont=EB Garamond")
	}

	return args
}

// PDFRenderer shells out to pandoc.
type PDFRenderer struct {
	Runner osutil.CommandRunner
	GOOS   string
}

// NewPDFRenderer returns a renderer running the real pandoc binary.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{Runner: &osutil.ExecRunner{}, GOOS: runtime.GOOS}
}

// Render runs pandoc and returns the output path.
func (r *PDFRenderer) Render(ctx context.Context, o PDFOptions) (string, error) {
	if !osutil.Exists(o.Input) {
		return "", errors.Wrapf(ErrInputNotFound, "%s", o.Input)
	}
	accent, ok := Themes[o.Theme]
	if !ok {
		return "", errors.Wrapf(ErrUnknownTheme, "%q (choose from %s)", o.Theme, strings.Join(ThemeNames(), ", "))
	}

	logger.G(ctx).WithFields(logrus.Fields{
		"theme":  o.Theme,
		"accent": accent,
		"layout": o.Layout(),
	}).Debug("running pandoc")

	_, stderr, err := r.Runner.Run(ctx, "", "pandoc", BuildPandocArgs(o, r.GOOS)...)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", ErrPandocNotInstalled
		}
		return "", errors.Wrapf(ErrPandocFailed, "%s", strings.TrimSpace(stderr))
	}

	return o.OutputPath(), nil
}
