package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/kinntalk/skills4ai/pkg/presenter"
	"github.com/kinntalk/skills4ai/pkg/render"
)

var pdfCmd = &cobra.Command{
	Use:   "pdf <input.md>",
	Short: "Convert a Markdown file to PDF with pandoc",
	Long: `Convert a Markdown file to PDF with pandoc and xelatex.

Examples:
  skills4ai pdf report.md
  skills4ai pdf report.md -t research --toc-depth 3
  skills4ai pdf report.md --mobile`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts, err := getPDFOptionsFromFlags(cmd, args[0])
		if err != nil {
			presenter.Error(err, "Invalid options")
			os.Exit(1)
		}
		if err := renderPDF(cmd.Context(), render.NewPDFRenderer(), opts); err != nil {
			presenter.Error(err, "Failed to generate PDF")
			if errors.Is(err, render.ErrPandocNotInstalled) {
				presenter.Info(presenter.Msgs().PandocHint)
			}
			os.Exit(1)
		}
	},
}

func init() {
	addPDFFlags(pdfCmd.Flags())
	rootCmd.AddCommand(pdfCmd)
}

func addPDFFlags(flags *pflag.FlagSet) {
	defaults := render.DefaultPDFOptions("")
	flags.StringP("output", "o", "", "Output PDF path (default: input with .pdf extension)")
	flags.StringP("theme", "t", defaults.Theme, "Theme: "+strings.Join(render.ThemeNames(), ", "))
	flags.BoolP("russian", "r", false, "Use a font with Cyrillic coverage")
	flags.BoolP("mobile", "m", false, "Mobile layout (6x9in, smaller margins)")
	flags.Bool("no-toc", false, "Omit the table of contents")
	flags.Int("toc-depth", defaults.TOCDepth, "Table of contents depth")
	flags.String("margin", defaults.Margin, "Page margin")
	flags.String("fontsize", defaults.FontSize, "Base font size")
}

func getPDFOptionsFromFlags(cmd *cobra.Command, input string) (render.PDFOptions, error) {
	opts := render.DefaultPDFOptions(input)
	flags := cmd.Flags()

	if output, err := flags.GetString("output"); err == nil {
		opts.Output = output
	}
	if theme, err := flags.GetString("theme"); err == nil {
		opts.Theme = theme
	}
	if russian, err := flags.GetBool("russian"); err == nil {
		opts.Russian = russian
	}
	if mobile, err := flags.GetBool("mobile"); err == nil {
		opts.Mobile = mobile
	}
	if noTOC, err := flags.GetBool("no-toc"); err == nil {
		opts.TOC = !noTOC
	}
	if depth, err := flags.GetInt("toc-depth"); err == nil {
		opts.TOCDepth = depth
	}
	if margin, err := flags.GetString("margin"); err == nil {
		opts.Margin = margin
	}
	if size, err := flags.GetString("fontsize"); err == nil {
		opts.FontSize = size
	}

	if _, ok := render.Themes[opts.Theme]; !ok {
		return opts, errors.Wrapf(render.ErrUnknownTheme, "%q (choose from %s)", opts.Theme, strings.Join(render.ThemeNames(), ", "))
	}
	return opts, nil
}

type pdfRenderer interface {
	Render(ctx context.Context, o render.PDFOptions) (string, error)
}

func renderPDF(ctx context.Context, r pdfRenderer, opts render.PDFOptions) error {
	presenter.Info(fmt.Sprintf("Converting %s to PDF...", opts.Input))
	presenter.Info(fmt.Sprintf("Theme: %s", opts.Theme))
	presenter.Info(fmt.Sprintf("Layout: %s", opts.Layout()))

	output, err := r.Render(ctx, opts)
	if err != nil {
		return err
	}
	presenter.Success(fmt.Sprintf("PDF generated: %s", output))
	return nil
}
