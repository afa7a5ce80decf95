package tracker

import (
	"pricewatch/models"
	"pricewatch/urlutil"
)

// Resolve maps a user-supplied URL to the tracked product it already
// identifies, or nil when nothing matches. The same physical product
// can be stored under three URL shapes (raw insertion URL, canonical
// form, decorated legacy rows), so lookups run in priority order and
// the first hit wins:
//
//  1. exact match on the URL as given
//  2. exact match on the canonical form, if canonicalization changed it
//  3. ASIN substring match against the user's stored URLs
//
// Resolve never creates a record; creation belongs to AddProduct.
func (e *Engine) Resolve(userID int64, url string) (*models.Product, error) {
	strategies := []func() (*models.Product, error){
		func() (*models.Product, error) {
			return e.store.FindByURL(userID, url)
		},
		func() (*models.Product, error) {
			canonical := urlutil.Canonicalize(url)
			if canonical == url {
				return nil, nil
			}
			return e.store.FindByURL(userID, canonical)
		},
		func() (*models.Product, error) {
			asin := urlutil.ExtractASIN(url)
			if asin == "" {
				asin = urlutil.ExtractASIN(urlutil.Canonicalize(url))
			}
			if asin == "" {
				return nil, nil
			}
			return e.store.FindByASIN(userID, asin)
		},
	}

	for _, strategy := range strategies {
		product, err := strategy()
		if err != nil {
			return nil, err
		}
		if product != nil {
			return product, nil
		}
	}
	return nil, nil
}
