package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateCity_EmptyAndWhitespace(t *testing.T) {
	for _, in := range []string{"", "   ", "\t", "\n "} {
		if _, err := ValidateCity(in, 100); !errors.Is(err, ErrCityEmpty) {
			t.Errorf("ValidateCity(%q) error = %v, want ErrCityEmpty", in, err)
		}
	}
}

func TestValidateCity_TooLong(t *testing.T) {
	if _, err := ValidateCity(strings.Repeat("a", 101), 100); !errors.Is(err, ErrCityTooLong) {
		t.Errorf("error = %v, want ErrCityTooLong", err)
	}
	// length counts runes, not bytes
	if _, err := ValidateCity(strings.Repeat("서", 100), 100); err != nil {
		t.Errorf("100 Hangul runes should pass, got %v", err)
	}
	if _, err := ValidateCity(strings.Repeat("a", 500), 0); err != nil {
		t.Errorf("maxLen 0 should be unbounded, got %v", err)
	}
}

func TestValidateCity_ProviderQueryForms(t *testing.T) {
	for _, in := range []string{"auto:ip", "iata:ICN", "id:2801268", "Seoul (KR)", "37.5,127", "metar:RKSI"} {
		got, err := ValidateCity(in, 100)
		if err != nil {
			t.Errorf("ValidateCity(%q) error = %v, want nil", in, err)
			continue
		}
		if got != in {
			t.Errorf("ValidateCity(%q) = %q, want unchanged", in, got)
		}
	}
}

func TestValidateCity_Valid(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"서울", "서울"},
		{"  부산  ", "부산"},
		{"Seoul, South Korea", "Seoul, South Korea"},
		{"St. John's", "St. John's"},
		{"Saint-Étienne", "Saint-Étienne"},
		{"東京", "東京"},
		{"seoul", "seoul"},
	}
	for _, tt := range tests {
		got, err := ValidateCity(tt.in, 100)
		if err != nil {
			t.Errorf("ValidateCity(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ValidateCity(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
