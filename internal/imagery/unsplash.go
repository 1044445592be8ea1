// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package imagery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pdiddy/deck-engine/internal/httputil"
	"github.com/pdiddy/deck-engine/pkg/types"
)

const unsplashBaseURL = "https://api.unsplash.com"

// UnsplashSearcher implements Searcher over the Unsplash photo API.
// Landscape orientation and a high content filter suit slide decks.
type UnsplashSearcher struct {
	accessKey string
	baseURL   string
	client    *http.Client
}

// NewUnsplashSearcher builds a searcher. With no access key every Search
// returns an empty result, which lets enrichment fall through to the
// generator instead of failing the slide.
func NewUnsplashSearcher(cfg types.ImageConfig) *UnsplashSearcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &UnsplashSearcher{
		accessKey: cfg.UnsplashAccessKey,
		baseURL:   unsplashBaseURL,
		client:    &http.Client{Timeout: timeout},
	}
}

type unsplashResponse struct {
	Results []struct {
		URLs struct {
			Regular string `json:"regular"`
		} `json:"urls"`
	} `json:"results"`
}

// Search implements Searcher.
func (u *UnsplashSearcher) Search(ctx context.Context, query string) ([]string, error) {
	if u.accessKey == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", "1")
	params.Set("orientation", "landscape")
	params.Set("content_filter", "high")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		u.baseURL+"/search/photos?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Client-ID "+u.accessKey)

	resp, err := httputil.DoWithRetry(ctx, u.client, req, 1)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("unsplash search %q: %w", query, ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unsplash search %q: status %d", query, resp.StatusCode)
	}

	var parsed unsplashResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("unsplash search %q: %w", query, err)
	}

	var urls []string
	for _, r := range parsed.Results {
		if r.URLs.Regular != "" {
			urls = append(urls, r.URLs.Regular)
		}
	}
	return urls, nil
}
