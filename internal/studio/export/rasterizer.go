package export

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

const defaultRasterTimeout = 30 * time.Second

// ChromeRasterizer screenshots an SVG in headless Chrome. With a debug URL it
// attaches to a running browser, otherwise it launches one per call.
type ChromeRasterizer struct {
	debugURL string
	timeout  time.Duration
}

func NewChromeRasterizer(debugURL string, timeout time.Duration) *ChromeRasterizer {
	if timeout <= 0 {
		timeout = defaultRasterTimeout
	}
	return &ChromeRasterizer{debugURL: debugURL, timeout: timeout}
}

func (r *ChromeRasterizer) Rasterize(ctx context.Context, svg []byte) ([]byte, error) {
	if len(svg) == 0 {
		return nil, errors.New("empty svg")
	}

	var allocCtx context.Context
	var allocCancel context.CancelFunc
	if r.debugURL != "" {
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(ctx, r.debugURL)
	} else {
		allocCtx, allocCancel = chromedp.NewExecAllocator(ctx,
			append(chromedp.DefaultExecAllocatorOptions[:], chromedp.DisableGPU)...)
	}
	defer allocCancel()

	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	defer taskCancel()

	timeoutCtx, cancel := context.WithTimeout(taskCtx, r.timeout)
	defer cancel()

	var buf []byte
	if err := chromedp.Run(timeoutCtx,
		chromedp.Navigate(pageURL(svg)),
		chromedp.WaitVisible("svg", chromedp.ByQuery),
		chromedp.Screenshot("svg", &buf, chromedp.ByQuery),
	); err != nil {
		return nil, fmt.Errorf("chrome screenshot: %w", err)
	}
	return buf, nil
}

// pageURL wraps the SVG in a blank page served as a data URL.
func pageURL(svg []byte) string {
	page := `<!DOCTYPE html><html><head><style>html,body{margin:0;background:#fff}</style></head><body>` +
		string(svg) + `</body></html>`
	return "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(page))
}
