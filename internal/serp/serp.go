package serp

// Provider describes an external search source that can be scraped for
// company or industry news. It supplies the query URL plus the extraction
// configuration for the result page.
type Provider interface {
	// Name identifies the provider in logs and metrics.
	Name() string
	// TargetType is the scrape target type assigned to the provider's pages,
	// which drives signal confidence bonuses.
	TargetType() string
	// SearchURL builds the URL for a search query.
	SearchURL(query string) string
	// Selectors returns the CSS selectors used to extract the result page.
	Selectors() map[string]string
}

// DefaultProviders returns the standard news search sources.
func DefaultProviders() []Provider {
	return []Provider{
		GoogleNews{},
		BusinessWire{},
	}
}
