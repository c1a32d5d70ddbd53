package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// DefaultCountryCode is prefixed to numbers that do not already carry it.
const DefaultCountryCode = "972"

// PhoneNormalizer turns free-form phone input into the canonical key used for
// lookups and outbound addressing.
type PhoneNormalizer struct {
	CountryCode string
}

// NewPhoneNormalizer returns a normalizer for countryCode (DefaultCountryCode when blank).
func NewPhoneNormalizer(countryCode string) PhoneNormalizer {
	countryCode = strings.TrimLeft(strings.TrimSpace(countryCode), "+0")
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}
	return PhoneNormalizer{CountryCode: countryCode}
}

// NormalizePhone normalizes with the default country code.
func NormalizePhone(phone string) string {
	return NewPhoneNormalizer(DefaultCountryCode).Normalize(phone)
}

// Normalize strips separators and leading zeros and prefixes the country code.
//
// Full-width digits (as typed on some mobile keyboards) are folded to ASCII first.
// When nothing but digits is left after stripping, the input is returned
// unchanged; rejecting empty phones is the caller's job.
func (n PhoneNormalizer) Normalize(phone string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFKC, width.Fold), phone)
	if err != nil {
		folded = phone
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r == '-' || r == '+' || r == '(' || r == ')' || r == '.' || unicode.IsSpace(r):
			continue
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			return phone
		}
	}

	digits := strings.TrimLeft(b.String(), "0")
	if digits == "" {
		return phone
	}

	cc := n.CountryCode
	if cc == "" {
		cc = DefaultCountryCode
	}
	if !strings.HasPrefix(digits, cc) {
		digits = cc + digits
	}
	return digits
}
