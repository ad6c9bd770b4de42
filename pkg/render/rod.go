package render

import (
	"context"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/pkg/errors"

	"github.com/kinntalk/skills4ai/pkg/logger"
)

// RodScreenshotter captures pages with a lazily launched headless Chrome.
type RodScreenshotter struct {
	browser *rod.Browser
	timeout time.Duration
}

var _ Screenshotter = (*RodScreenshotter)(nil)

// NewRodScreenshotter creates a screenshotter whose page loads are bounded by timeout.
func NewRodScreenshotter(timeout time.Duration) *RodScreenshotter {
	return &RodScreenshotter{timeout: timeout}
}

// LookBrowser reports the browser binary rod would launch, if any.
func LookBrowser() (string, bool) {
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		return bin, true
	}
	return launcher.LookPath()
}

func (s *RodScreenshotter) ensureBrowser(ctx context.Context) error {
	if s.browser != nil {
		return nil
	}

	l := launcher.New().Context(ctx)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") != "" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return errors.Wrap(err, "failed to launch browser")
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return errors.Wrap(err, "failed to connect to browser")
	}
	s.browser = browser
	logger.G(ctx).WithField("control_url", u).Debug("browser connected")
	return nil
}

// Screenshot implements Screenshotter.
func (s *RodScreenshotter) Screenshot(ctx context.Context, url, path string, width, height int) (string, error) {
	if err := s.ensureBrowser(ctx); err != nil {
		return "", err
	}

	page, err := s.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", errors.Wrap(err, "failed to create page")
	}
	defer page.Close()

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
	}); err != nil {
		return "", errors.Wrap(err, "failed to set viewport")
	}

	page = page.Context(ctx).Timeout(s.timeout)
	if err := page.Navigate(url); err != nil {
		return "", errors.Wrap(err, "failed to load page")
	}
	if err := page.WaitLoad(); err != nil {
		return "", errors.Wrap(err, "failed to load page")
	}

	data, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to capture screenshot")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrap(err, "failed to write screenshot")
	}
	return path, nil
}

// Close releases the browser.
func (s *RodScreenshotter) Close() error {
	if s.browser == nil {
		return nil
	}
	err := s.browser.Close()
	s.browser = nil
	return err
}
