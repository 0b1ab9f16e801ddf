package asset

import "strings"

// BuildCatalog merges the symbol list with fetched prices. A symbol without a
// price keeps its place with Price == nil. Duplicate and blank symbols are skipped.
func BuildCatalog(symbols []string, prices map[string]float64, iconBase string) []Asset {
	seen := make(map[string]bool, len(symbols))
	catalog := make([]Asset, 0, len(symbols))
	for _, raw := range symbols {
		sym := strings.ToUpper(strings.TrimSpace(raw))
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true

		a := Asset{
			Symbol:  sym,
			Name:    DisplayName(sym),
			IconURL: IconURL(iconBase, sym),
		}
		if p, ok := prices[sym]; ok {
			price := p
			a.Price = &price
		}
		catalog = append(catalog, a)
	}
	return catalog
}

// Lookup finds symbol in catalog.
func Lookup(catalog []Asset, symbol string) (Asset, bool) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	for _, a := range catalog {
		if a.Symbol == sym {
			return a, true
		}
	}
	return Asset{}, false
}

// PickDefaults chooses the initial pair: preferredSource (else the first
// entry), then preferredDest if distinct (else the first entry that differs
// from the source). Either result may be nil for short catalogs.
func PickDefaults(catalog []Asset, preferredSource, preferredDest string) (*Asset, *Asset) {
	if len(catalog) == 0 {
		return nil, nil
	}

	var src *Asset
	if a, ok := Lookup(catalog, preferredSource); ok {
		src = &a
	} else {
		first := catalog[0]
		src = &first
	}

	if a, ok := Lookup(catalog, preferredDest); ok && a.Symbol != src.Symbol {
		return src, &a
	}
	for _, a := range catalog {
		if a.Symbol != src.Symbol {
			dst := a
			return src, &dst
		}
	}
	return src, nil
}
