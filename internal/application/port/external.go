package port

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/expenzo/expenzo-server/internal/domain/entity"
)

// RateProvider converts between currencies at submission time. Lookup
// failures are recovered locally: the provider returns a 1.0 rate with
// defaulted=true and never an error.
type RateProvider interface {
	Rate(ctx context.Context, from, to string) (rate decimal.Decimal, defaulted bool)
}

// Country is one entry of the signup country list.
type Country struct {
	Name     string `json:"name"`
	Code     string `json:"code"`
	Currency string `json:"currency"`
}

// CountryProvider lists countries and resolves a country's currency. A failed
// upstream falls back to a static list rather than erroring.
type CountryProvider interface {
	Countries(ctx context.Context) []Country
	CurrencyFor(ctx context.Context, country string) string
}

// ReceiptExtractor pulls structured fields out of an uploaded receipt. It is
// an external collaborator; extraction accuracy is its problem, not the
// engine's.
type ReceiptExtractor interface {
	Extract(ctx context.Context, filePath string) (*entity.ExtractedFields, error)
}
