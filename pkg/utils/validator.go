package utils

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)
	controlChars  = regexp.MustCompile(`[\x00-\x1f\x7f]`)
)

// ValidationError marks an error as caused by bad input rather than a
// downstream failure, so the HTTP layer can map it to a 400.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return validationErrorf("invalid email format: %s", email)
	}
	return nil
}

// ValidateCurrencyCode validates a three-letter ISO currency code
func ValidateCurrencyCode(code string) error {
	if !currencyRegex.MatchString(code) {
		return validationErrorf("invalid currency code: %s", code)
	}
	return nil
}

// ValidateAmount validates an expense amount
func ValidateAmount(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return validationErrorf("amount must be positive: %s", amount)
	}
	return nil
}

// SanitizeString removes control characters from user-supplied text
func SanitizeString(s string) string {
	return controlChars.ReplaceAllString(s, "")
}
