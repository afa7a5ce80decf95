package urlutil

import "testing"

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain dp link",
			in:   "https://www.amazon.com/dp/B08N5WRWNW",
			want: "https://www.amazon.com/dp/B08N5WRWNW",
		},
		{
			name: "dp link with tracking params",
			in:   "https://www.amazon.in/dp/B0C7QX9J1W?ref_=cm_sw_r&tag=track-21#reviews",
			want: "https://www.amazon.in/dp/B0C7QX9J1W",
		},
		{
			name: "gp product link",
			in:   "https://www.amazon.com/gp/product/B08N5WRWNW/ref=ppx_yo_dt",
			want: "https://www.amazon.com/dp/B08N5WRWNW",
		},
		{
			name: "mobile gp aw link",
			in:   "https://www.amazon.co.uk/gp/aw/d/b07xj8c8f5",
			want: "https://www.amazon.co.uk/dp/B07XJ8C8F5",
		},
		{
			name: "product path link",
			in:   "https://www.amazon.de/product/B01LYCLS24",
			want: "https://www.amazon.de/dp/B01LYCLS24",
		},
		{
			name: "slug before dp",
			in:   "https://www.amazon.com/Apple-AirPods-Pro/dp/B0D1XD1ZV3?th=1",
			want: "https://www.amazon.com/dp/B0D1XD1ZV3",
		},
		{
			name: "lowercase asin is upper-cased",
			in:   "https://www.amazon.com/dp/b08n5wrwnw",
			want: "https://www.amazon.com/dp/B08N5WRWNW",
		},
		{
			name: "no asin drops query and fragment",
			in:   "https://www.amazon.com/s?k=headphones#results",
			want: "https://www.amazon.com/s",
		},
		{
			name: "missing scheme keeps canonical form",
			in:   "//www.amazon.com/dp/B08N5WRWNW?tag=x",
			want: "https://www.amazon.com/dp/B08N5WRWNW",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Canonicalize(tt.in)
			if got != tt.want {
				t.Errorf("Canonicalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if again := Canonicalize(got); again != got {
				t.Errorf("Canonicalize is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestCanonicalizeRecoversASIN(t *testing.T) {
	urls := []string{
		"https://www.amazon.com/Some-Long-Product-Slug/dp/B0BQX2F1T9/ref=sr_1_3?keywords=x",
		"https://www.amazon.in/gp/product/B09G9FPHY6",
		"https://www.amazon.com/gp/aw/d/B07PGL2ZSL?psc=1",
	}
	for _, u := range urls {
		want := ExtractASIN(u)
		if want == "" {
			t.Fatalf("ExtractASIN(%q) returned empty", u)
		}
		if got := ExtractASIN(Canonicalize(u)); got != want {
			t.Errorf("ASIN lost in canonicalization of %q: got %q, want %q", u, got, want)
		}
	}
}

func TestExtractASIN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.amazon.com/dp/B08N5WRWNW", "B08N5WRWNW"},
		{"https://www.amazon.com/gp/product/b01lycls24", "B01LYCLS24"},
		{"https://www.amazon.com/s?k=shoes", ""},
		{"https://www.amazon.com/dp/SHORT", ""},
	}
	for _, tt := range tests {
		if got := ExtractASIN(tt.in); got != tt.want {
			t.Errorf("ExtractASIN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsAmazonURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://www.amazon.com/dp/B08N5WRWNW", true},
		{"https://amazon.co.uk/dp/B08N5WRWNW", true},
		{"https://smile.amazon.de/dp/B08N5WRWNW", true},
		{"https://amzn.in/d/abc123", true},
		{"https://www.evilamazon.com/dp/B08N5WRWNW", false},
		{"https://example.com/dp/B08N5WRWNW", false},
		{"not a url at all ://", false},
	}
	for _, tt := range tests {
		if got := IsAmazonURL(tt.in); got != tt.want {
			t.Errorf("IsAmazonURL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
