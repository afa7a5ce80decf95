package scraper

import (
	"log"
	"os"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// BrowserFetcher drives a headless Chromium through go-rod for pages
// that bot-block the plain HTTP client. It is strictly a fallback:
// slower and heavier, but it executes the page's JavaScript before we
// read the markup.
type BrowserFetcher struct {
	browser *rod.Browser
}

// NewBrowserFetcher launches the browser. Uses the system Chromium in
// Docker, auto-detects locally.
func NewBrowserFetcher() (*BrowserFetcher, error) {
	l := launcher.New().
		Headless(true).
		NoSandbox(true).
		Leakless(false)

	if _, err := os.Stat("/usr/bin/chromium-browser"); err == nil {
		l = l.Bin("/usr/bin/chromium-browser")
		log.Printf("Using system Chromium in Docker environment")
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, err
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, err
	}

	return &BrowserFetcher{browser: browser}, nil
}

// Fetch loads the URL in a fresh page and returns the rendered markup
// plus the post-redirect URL.
func (f *BrowserFetcher) Fetch(url string) (*Page, error) {
	var result Page
	err := rod.Try(func() {
		page := f.browser.MustPage(url)
		defer page.MustClose()
		page.MustWaitLoad()
		result.HTML = page.MustHTML()
		result.FinalURL = page.MustInfo().URL
	})
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	return &result, nil
}

// Close shuts the browser down.
func (f *BrowserFetcher) Close() {
	if f.browser != nil {
		f.browser.MustClose()
	}
}

// FallbackFetcher tries the primary fetcher first and falls back to
// the secondary when the primary fails.
type FallbackFetcher struct {
	Primary   Fetcher
	Secondary Fetcher
}

func (f *FallbackFetcher) Fetch(url string) (*Page, error) {
	page, err := f.Primary.Fetch(url)
	if err == nil {
		return page, nil
	}
	log.Printf("Primary fetch failed for %s, trying browser: %v", url, err)
	return f.Secondary.Fetch(url)
}
