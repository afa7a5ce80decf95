package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ProductInfo is the extractor output: a trimmed title and a numeric
// price in the page's currency units.
type ProductInfo struct {
	Title string
	Price float64
}

// titleStrategies are tried in order; first non-empty result wins.
var titleStrategies = []func(*goquery.Document) string{
	func(doc *goquery.Document) string {
		return strings.TrimSpace(doc.Find("#productTitle").First().Text())
	},
	func(doc *goquery.Document) string {
		return strings.TrimSpace(doc.Find(`h1[data-automation-id="title"]`).First().Text())
	},
	func(doc *goquery.Document) string {
		return strings.TrimSpace(doc.Find("span#productTitle").First().Text())
	},
	func(doc *goquery.Document) string {
		content, _ := doc.Find(`meta[property="og:title"]`).First().Attr("content")
		return strings.TrimSpace(content)
	},
}

// priceStrategies are tried in order; first non-empty text wins. The
// raw text still has to survive ParsePrice.
var priceStrategies = []func(*goquery.Document) string{
	func(doc *goquery.Document) string {
		return strings.TrimSpace(doc.Find("span.a-price-whole").First().Text())
	},
	func(doc *goquery.Document) string {
		return strings.TrimSpace(doc.Find("span.a-offscreen").First().Text())
	},
	func(doc *goquery.Document) string {
		container := doc.Find("span.a-price").First()
		if container.Length() == 0 {
			return ""
		}
		if text := strings.TrimSpace(container.Find("span.a-price-whole").First().Text()); text != "" {
			return text
		}
		return strings.TrimSpace(container.Find("span.a-offscreen").First().Text())
	},
	func(doc *goquery.Document) string {
		tagged := doc.Find(`span[data-a-color="price"]`).First()
		if tagged.Length() == 0 {
			return ""
		}
		if text := strings.TrimSpace(tagged.Find("span.a-price-whole").First().Text()); text != "" {
			return text
		}
		return strings.TrimSpace(tagged.Text())
	},
}

// Extract pulls the product title and price out of raw markup. It
// fails with *ExtractionError carrying one of the Reason* constants.
func Extract(html string) (*ProductInfo, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	title := ""
	for _, strategy := range titleStrategies {
		if title = strategy(doc); title != "" {
			break
		}
	}
	if title == "" {
		return nil, &ExtractionError{Reason: ReasonTitleNotFound}
	}

	priceText := ""
	for _, strategy := range priceStrategies {
		if priceText = strategy(doc); priceText != "" {
			break
		}
	}
	if priceText == "" {
		return nil, &ExtractionError{Reason: ReasonPriceNotFound}
	}

	price, err := ParsePrice(priceText)
	if err != nil {
		return nil, err
	}

	return &ProductInfo{Title: title, Price: price}, nil
}

// currencyReplacer strips thousands separators and the currency
// symbols we see across Amazon locales. Symbols must go before the
// numeric search so they cannot corrupt the decimal point.
var currencyReplacer = strings.NewReplacer(",", "", "₹", "", "$", "", "€", "", "£", "")

var priceRx = regexp.MustCompile(`[\d,]+\.?\d*`)

// ParsePrice normalizes a price string to a float. Two stages: strip
// separators and currency symbols, then search for the first numeric
// run and parse it.
func ParsePrice(text string) (float64, error) {
	cleaned := strings.TrimSpace(currencyReplacer.Replace(text))

	match := priceRx.FindString(cleaned)
	if match == "" {
		return 0, &ExtractionError{Reason: ReasonPriceUnparseable, Detail: text}
	}

	price, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil {
		return 0, &ExtractionError{Reason: ReasonPriceUnparseable, Detail: text}
	}
	return price, nil
}
