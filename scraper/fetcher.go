package scraper

import (
	"io"
	"net/http"

	"pricewatch/config"
)

// Page is the result of fetching a product URL: the raw markup plus
// the URL the request actually landed on after redirects. Downstream
// identity resolution must use FinalURL, not the input link, so that
// shortened links resolve to their true product.
type Page struct {
	HTML     string
	FinalURL string
}

// Fetcher retrieves a product page.
type Fetcher interface {
	Fetch(url string) (*Page, error)
}

// HTTPFetcher issues a plain GET with a browser-like identity,
// following redirects. No retries here; retry policy belongs to the
// scheduler.
type HTTPFetcher struct {
	client *http.Client
	cfg    config.FetcherConfig
}

// NewHTTPFetcher creates a fetcher with the configured timeout.
func NewHTTPFetcher(cfg config.FetcherConfig) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
	}
}

// Fetch retrieves the page. Transport failures and non-2xx responses
// surface as *FetchError.
func (f *HTTPFetcher) Fetch(url string) (*Page, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", f.cfg.AcceptLanguage)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	return &Page{
		HTML:     string(body),
		FinalURL: resp.Request.URL.String(),
	}, nil
}
