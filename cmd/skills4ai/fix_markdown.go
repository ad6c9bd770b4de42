package main

import (
	"fmt"
	"io"
	"os"

	"github.com/aymanbagabas/go-udiff"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/kinntalk/skills4ai/pkg/markdown"
	"github.com/kinntalk/skills4ai/pkg/presenter"
)

var fixMarkdownCmd = &cobra.Command{
	Use:   "fix-markdown <input.md> [output.md]",
	Short: "Insert the blank lines Markdown renderers need before lists",
	Long: `Insert a blank line before top-level list items that directly follow a
paragraph line. The input is rewritten in place unless an output path is given.

Examples:
  skills4ai fix-markdown README.md
  skills4ai fix-markdown draft.md fixed.md
  skills4ai fix-markdown README.md --diff`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		output := ""
		if len(args) > 1 {
			output = args[1]
		}
		diff, _ := cmd.Flags().GetBool("diff")

		if err := fixMarkdown(cmd.OutOrStdout(), args[0], output, diff); err != nil {
			presenter.Error(err, "Failed to fix markdown")
			os.Exit(1)
		}
	},
}

func init() {
	fixMarkdownCmd.Flags().Bool("diff", false, "Print a unified diff instead of writing")
	rootCmd.AddCommand(fixMarkdownCmd)
}

func fixMarkdown(w io.Writer, input, output string, diff bool) error {
	info, err := os.Stat(input)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Errorf("input file not found: %s", input)
		}
		return errors.Wrap(err, "failed to stat input")
	}

	content, err := os.ReadFile(input)
	if err != nil {
		return errors.Wrap(err, "failed to read input")
	}
	original := string(content)
	fixed := markdown.FixLists(original)

	if output == "" {
		output = input
	}

	if diff {
		if fixed != original {
			fmt.Fprint(w, udiff.Unified(input, output, original, fixed))
		}
		return nil
	}

	if err := os.WriteFile(output, []byte(fixed), info.Mode().Perm()); err != nil {
		return errors.Wrapf(err, "failed to write %s", output)
	}
	presenter.Success(fmt.Sprintf("Fixed markdown saved to %s", output))
	return nil
}
