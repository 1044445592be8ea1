// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	// Decoders registered for dimension probing.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/pdiddy/deck-engine/internal/pptx"
	"github.com/pdiddy/deck-engine/pkg/types"
)

// Free-placement box and bias, matching the fallback geometry of the
// reference deck template: fit within 8 x 6 cm, centered, nudged 2 cm right.
const (
	maxImageWidth  = 8 * pptx.EMUPerCm
	maxImageHeight = 6 * pptx.EMUPerCm
	imageBiasRight = 2 * pptx.EMUPerCm

	// Native pixel dimensions convert to physical size at this DPI.
	assumedDPI = 96
)

// defaultPlaceholderHosts are stub-image services whose URLs are never
// embedded, even when fetchable.
var defaultPlaceholderHosts = []string{"placehold.co", "placeholder.com"}

// fetcher retrieves image bytes from URLs or local paths.
type fetcher struct {
	client           *http.Client
	placeholderHosts []string
}

func newFetcher(cfg types.RenderConfig) *fetcher {
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	hosts := cfg.PlaceholderHosts
	if len(hosts) == 0 {
		hosts = defaultPlaceholderHosts
	}
	return &fetcher{
		client:           &http.Client{Timeout: timeout},
		placeholderHosts: hosts,
	}
}

// isPlaceholder reports whether the source URL points at a known
// stub/placeholder host.
func (f *fetcher) isPlaceholder(source string) bool {
	u, err := url.Parse(source)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, ph := range f.placeholderHosts {
		if host == ph || strings.HasSuffix(host, "."+ph) {
			return true
		}
	}
	return false
}

// fetch returns the image bytes behind a URL or local path.
func (f *fetcher) fetch(ctx context.Context, source string) ([]byte, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, err
		}
		resp, err := f.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetching image: status %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("reading local image: %w", err)
	}
	return data, nil
}

// dimensions probes the native pixel size of an encoded image.
func dimensions(data []byte) (w, h int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("decoding image dimensions: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// freePlacementRegion computes the fallback placement for an image with
// native pixel size (w, h): physical size at the assumed DPI, scaled
// proportionally to fit the bounded box, centered on the canvas with the
// fixed horizontal bias.
func freePlacementRegion(w, h int) pptx.Region {
	nativeW := int64(w) * pptx.EMUPerInch / assumedDPI
	nativeH := int64(h) * pptx.EMUPerInch / assumedDPI

	ratioW := float64(maxImageWidth) / float64(nativeW)
	ratioH := float64(maxImageHeight) / float64(nativeH)
	ratio := ratioW
	if ratioH < ratio {
		ratio = ratioH
	}

	dispW := int64(float64(nativeW) * ratio)
	dispH := int64(float64(nativeH) * ratio)

	return pptx.Region{
		X: (pptx.SlideWidth-dispW)/2 + imageBiasRight,
		Y: (pptx.SlideHeight - dispH) / 2,
		W: dispW,
		H: dispH,
	}
}

// fitRegion scales an image with native pixel size (w, h) to fit inside
// the target region preserving aspect ratio, centered within it.
func fitRegion(target pptx.Region, w, h int) pptx.Region {
	ratioW := float64(target.W) / float64(w)
	ratioH := float64(target.H) / float64(h)
	ratio := ratioW
	if ratioH < ratio {
		ratio = ratioH
	}

	dispW := int64(float64(w) * ratio)
	dispH := int64(float64(h) * ratio)

	return pptx.Region{
		X: target.X + (target.W-dispW)/2,
		Y: target.Y + (target.H-dispH)/2,
		W: dispW,
		H: dispH,
	}
}
