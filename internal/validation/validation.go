package validation

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ErrCityEmpty is returned when the search field is empty or whitespace-only.
// Callers treat it as "do nothing" rather than as a user-facing error.
var ErrCityEmpty = errors.New("city is required")

// ErrCityTooLong is returned when the city exceeds the maximum length in runes.
var ErrCityTooLong = errors.New("city too long")

// ValidateCity trims the input and enforces maxLen (runes, 0 = unbounded).
// Content is not filtered: the provider accepts query forms such as "auto:ip" or
// "iata:ICN" and decides what it can resolve. Case is left alone since the city
// resolver matches exactly.
func ValidateCity(input string, maxLen int) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", ErrCityEmpty
	}
	if maxLen > 0 && utf8.RuneCountInString(s) > maxLen {
		return "", ErrCityTooLong
	}
	return s, nil
}
