package scraper

import "fmt"

// FetchError reports a network failure, timeout, or non-2xx response
// while retrieving a product page.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Extraction failure reasons.
const (
	ReasonTitleNotFound    = "title_not_found"
	ReasonPriceNotFound    = "price_not_found"
	ReasonPriceUnparseable = "price_unparseable"
)

// ExtractionError reports that the page markup did not yield a title
// or a usable price.
type ExtractionError struct {
	Reason string
	Detail string
}

func (e *ExtractionError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("extraction failed: %s (%s)", e.Reason, e.Detail)
	}
	return "extraction failed: " + e.Reason
}
