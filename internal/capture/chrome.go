// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package capture

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

const (
	defaultWidth  = 1280
	defaultHeight = 1024

	// idleAfter is how long the page must have no requests in flight.
	idleAfter = 500 * time.Millisecond

	// maxIdleWait bounds the idle wait on pages that poll forever.
	maxIdleWait = 10 * time.Second
)

// ChromeCapturer takes full-page PNG screenshots with headless Chrome.
type ChromeCapturer struct {
	Width     int64
	Height    int64
	UserAgent string
}

// Capture navigates to url, waits for the network to go idle, and writes a
// full-page PNG to path.
func (c *ChromeCapturer) Capture(ctx context.Context, url, path string) error {
	width, height := c.Width, c.Height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("incognito", true),
		chromedp.WindowSize(int(width), int(height)),
	)
	if c.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(c.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	idle := waitNetworkIdle(taskCtx, idleAfter)

	if err := chromedp.Run(taskCtx,
		network.Enable(),
		emulation.SetDeviceMetricsOverride(width, height, 1, false),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("loading %s: %w", url, err)
	}

	select {
	case <-idle:
	case <-time.After(maxIdleWait):
	case <-taskCtx.Done():
		return taskCtx.Err()
	}

	var buf []byte
	if err := chromedp.Run(taskCtx, chromedp.FullScreenshot(&buf, 100)); err != nil {
		return fmt.Errorf("screenshotting %s: %w", url, err)
	}
	if len(buf) == 0 {
		return fmt.Errorf("screenshot of %s is empty", url)
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("writing screenshot: %w", err)
	}
	return nil
}

// waitNetworkIdle returns a channel that receives once no request has been
// in flight for idleFor.
func waitNetworkIdle(ctx context.Context, idleFor time.Duration) <-chan struct{} {
	idle := make(chan struct{}, 1)
	var active int32
	var mu sync.Mutex
	var timer *time.Timer
	var once sync.Once

	arm := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(idleFor, func() {
			if atomic.LoadInt32(&active) == 0 {
				once.Do(func() { idle <- struct{}{} })
			}
		})
	}

	chromedp.ListenTarget(ctx, func(ev any) {
		switch ev.(type) {
		case *network.EventRequestWillBeSent:
			atomic.AddInt32(&active, 1)
		case *network.EventLoadingFinished, *network.EventLoadingFailed:
			if atomic.AddInt32(&active, -1) <= 0 {
				arm()
			}
		}
	})
	return idle
}
