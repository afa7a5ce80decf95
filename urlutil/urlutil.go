package urlutil

import (
	"net/url"
	"regexp"
	"strings"
)

// asinPatterns covers the Amazon product link shapes we see in the
// wild. Order matters: first match wins, and the slug variant has to
// come last so /gp/product/<ASIN> is not swallowed by it.
var asinPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)/dp/([A-Z0-9]{10})`),
	regexp.MustCompile(`(?i)/gp/product/([A-Z0-9]{10})`),
	regexp.MustCompile(`(?i)/gp/aw/d/([A-Z0-9]{10})`),
	regexp.MustCompile(`(?i)/product/([A-Z0-9]{10})`),
	regexp.MustCompile(`(?i)/[^/]+/dp/([A-Z0-9]{10})`),
}

// allowedDomains is the Amazon host allowlist, including the amzn.in
// short-link domain. Checked before any core operation runs.
var allowedDomains = []string{
	"amazon.com", "amazon.in", "amazon.co.uk", "amazon.de",
	"amazon.co.jp", "amazon.ca", "amazon.com.au", "amazon.fr",
	"amazon.it", "amazon.es", "amzn.in",
}

// Canonicalize converts any recognized Amazon product URL into the
// stable form https://<host>/dp/<ASIN>, dropping query and fragment.
// When no ASIN is present it returns scheme://host/path with query and
// fragment stripped, which is a best-effort identity only. It never
// fails: on a parse error the input comes back unchanged.
func Canonicalize(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	scheme := parsed.Scheme
	if scheme == "" {
		scheme = "https"
	}
	host := parsed.Host
	if host == "" {
		host = "www.amazon.com"
	}

	asin := matchASIN(parsed.Path)
	if asin == "" {
		stripped := url.URL{Scheme: scheme, Host: parsed.Host, Path: parsed.Path}
		return stripped.String()
	}

	canonical := url.URL{Scheme: scheme, Host: host, Path: "/dp/" + asin}
	return canonical.String()
}

// ExtractASIN returns the upper-cased ASIN embedded in the URL path,
// or "" when none of the known link shapes match.
func ExtractASIN(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return matchASIN(rawURL)
	}
	return matchASIN(parsed.Path)
}

func matchASIN(path string) string {
	for _, rx := range asinPatterns {
		if m := rx.FindStringSubmatch(path); m != nil {
			return strings.ToUpper(m[1])
		}
	}
	return ""
}

// IsAmazonURL reports whether the URL points at an allowlisted Amazon
// domain or one of its subdomains.
func IsAmazonURL(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return false
	}
	for _, domain := range allowedDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}
