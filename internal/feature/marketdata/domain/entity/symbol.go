// Package entity defines the domain models for the marketdata feature.
package entity

// Symbol is a ticker symbol paired with the display name written to every record.
type Symbol struct {
	Code string // Ticker symbol (e.g., "AAPL")
	Name string // Display name (e.g., "Apple")
}

// Catalog is an ordered list of symbols. Fetchers call the API in catalog order,
// so the order decides which calls fall before and after each rate-limit pause.
type Catalog []Symbol

// DefaultCatalog returns the five technology stocks tracked by every run.
// They were picked by market cap and by sentiment coverage on Alpha Vantage.
func DefaultCatalog() Catalog {
	return Catalog{
		{Code: "AAPL", Name: "Apple"},
		{Code: "MSFT", Name: "Microsoft"},
		{Code: "GOOG", Name: "Google"},
		{Code: "META", Name: "Meta"},
		{Code: "ASML", Name: "ASML Holding N.V. New York"},
	}
}

// Name returns the display name for code.
func (c Catalog) Name(code string) (string, bool) {
	for _, s := range c {
		if s.Code == code {
			return s.Name, true
		}
	}
	return "", false
}
