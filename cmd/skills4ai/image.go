package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/kinntalk/skills4ai/pkg/logger"
	"github.com/kinntalk/skills4ai/pkg/markdown"
	"github.com/kinntalk/skills4ai/pkg/presenter"
	"github.com/kinntalk/skills4ai/pkg/render"
)

type ImageConfig struct {
	Output  string
	Width   int
	Timeout time.Duration
}

func NewImageConfig() *ImageConfig {
	return &ImageConfig{
		Output:  "",
		Width:   render.DefaultWidth,
		Timeout: 60 * time.Second,
	}
}

var imageCmd = &cobra.Command{
	Use:   "image <input.md>",
	Short: "Render a Markdown file to a PNG image",
	Long: `Render a Markdown file to a PNG image with a headless Chrome browser.

The browser is found automatically or taken from ROD_BROWSER_BIN.

Examples:
  skills4ai image README.md
  skills4ai image notes.md -o out/notes.png --width 1000`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config := getImageConfigFromFlags(cmd)
		if err := renderImage(cmd.Context(), args[0], config); err != nil {
			presenter.Error(err, "Failed to generate image")
			if errors.Is(err, render.ErrRender) {
				presenter.Info(presenter.Msgs().BrowserHint)
			}
			os.Exit(1)
		}
	},
}

func init() {
	defaults := NewImageConfig()
	imageCmd.Flags().StringP("output", "o", defaults.Output, "Output PNG path (default: input with .png extension)")
	imageCmd.Flags().Int("width", defaults.Width, "Page body width in pixels")
	imageCmd.Flags().Duration("timeout", defaults.Timeout, "Page load timeout")
	rootCmd.AddCommand(imageCmd)
}

func getImageConfigFromFlags(cmd *cobra.Command) *ImageConfig {
	config := NewImageConfig()
	if cfg != nil && cfg.Render.Timeout > 0 {
		config.Timeout = cfg.Render.Timeout
	}
	if output, err := cmd.Flags().GetString("output"); err == nil {
		config.Output = output
	}
	if width, err := cmd.Flags().GetInt("width"); err == nil {
		config.Width = width
	}
	if cmd.Flags().Changed("timeout") {
		if timeout, err := cmd.Flags().GetDuration("timeout"); err == nil {
			config.Timeout = timeout
		}
	}
	return config
}

func renderImage(ctx context.Context, input string, config *ImageConfig) error {
	shooter := render.NewRodScreenshotter(config.Timeout)
	defer func() {
		if err := shooter.Close(); err != nil {
			logger.G(ctx).WithError(err).Debug("failed to close browser")
		}
	}()

	renderer := render.NewImageRenderer(shooter, markdown.NewConverter())
	output, err := renderer.Render(ctx, render.ImageRequest{
		Input:  input,
		Output: config.Output,
		Width:  config.Width,
	})
	if err != nil {
		return err
	}

	presenter.Success(fmt.Sprintf("Image saved to %s", output))
	return nil
}
