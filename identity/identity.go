// Package identity normalizes subscriber identifiers before they reach an adapter.
package identity

import (
	"errors"
	"strings"
)

// MinLength is the minimum number of digits in a normalized subscriber number.
const MinLength = 10

var (
	ErrEmpty      = errors.New("msisdn cannot be null or empty")
	ErrTooShort   = errors.New("msisdn character length should be minimum 10 digit numbers")
	ErrNonNumeric = errors.New("msisdn has non numeric characters")
)

var separators = strings.NewReplacer("-", "", "+", "", `"`, "", "'", "", " ", "")

// Normalize strips separators from a phone-number-like identifier and validates it.
// Normalize(Normalize(x)) == Normalize(x) for any accepted x.
func Normalize(raw string) (string, error) {
	v := separators.Replace(raw)
	if v == "" || v == "None" {
		return "", ErrEmpty
	}
	if len(v) < MinLength {
		return "", ErrTooShort
	}
	for i := 0; i < len(v); i++ {
		if v[i] < '0' || v[i] > '9' {
			return "", ErrNonNumeric
		}
	}
	return v, nil
}

// Reference validates an opaque reference identifier.
func Reference(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", errors.New("referenceid cannot be null or empty")
	}
	return v, nil
}

// PrefixCountryCode prepends the North American country code to a 10 digit number.
func PrefixCountryCode(msisdn string) string {
	if len(msisdn) == 10 {
		return "1" + msisdn
	}
	return msisdn
}
