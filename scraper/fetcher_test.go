package scraper

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pricewatch/config"
)

func testFetcherConfig() config.FetcherConfig {
	return config.FetcherConfig{
		UserAgent:      "test-agent",
		AcceptLanguage: "en-US,en;q=0.9",
		Timeout:        5 * time.Second,
	}
}

func TestFetchReturnsBodyAndFinalURL(t *testing.T) {
	const body = `<html><body><span id="productTitle">X</span></body></html>`

	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/short":
			http.Redirect(w, r, "/dp/B08N5WRWNW", http.StatusFound)
		case "/dp/B08N5WRWNW":
			gotUA = r.Header.Get("User-Agent")
			w.Write([]byte(body))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewHTTPFetcher(testFetcherConfig())
	page, err := f.Fetch(srv.URL + "/short")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	if page.HTML != body {
		t.Errorf("HTML = %q, want %q", page.HTML, body)
	}
	if want := srv.URL + "/dp/B08N5WRWNW"; page.FinalURL != want {
		t.Errorf("FinalURL = %q, want %q (redirect not followed)", page.FinalURL, want)
	}
	if gotUA != "test-agent" {
		t.Errorf("User-Agent = %q, want %q", gotUA, "test-agent")
	}
}

func TestFetchNon2xxIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(testFetcherConfig())
	_, err := f.Fetch(srv.URL)

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if fetchErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want %d", fetchErr.StatusCode, http.StatusServiceUnavailable)
	}
}

func TestFetchTransportFailureIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	f := NewHTTPFetcher(testFetcherConfig())
	_, err := f.Fetch(srv.URL)

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if fetchErr.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for transport failure", fetchErr.StatusCode)
	}
}

type stubFetcher struct {
	page *Page
	err  error
}

func (s *stubFetcher) Fetch(string) (*Page, error) { return s.page, s.err }

func TestFallbackFetcher(t *testing.T) {
	want := &Page{HTML: "<html/>", FinalURL: "https://www.amazon.com/dp/B08N5WRWNW"}

	f := &FallbackFetcher{
		Primary:   &stubFetcher{err: &FetchError{URL: "x", StatusCode: 503}},
		Secondary: &stubFetcher{page: want},
	}
	page, err := f.Fetch("https://www.amazon.com/dp/B08N5WRWNW")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if page != want {
		t.Errorf("fallback page not returned")
	}

	direct := &FallbackFetcher{
		Primary:   &stubFetcher{page: want},
		Secondary: &stubFetcher{err: errors.New("should not be called")},
	}
	if _, err := direct.Fetch("u"); err != nil {
		t.Errorf("primary success should short-circuit, got %v", err)
	}
}
