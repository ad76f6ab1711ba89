package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxCountryNameLength = 100

// Compiled regular expressions for validation
var (
	// Letters of any script plus the punctuation used in country and province names
	validNamePattern = regexp.MustCompile(`^[\p{L}\p{M}0-9 .,'’()\-&]+$`)

	// Detect HTML/script tags
	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)
)

// ValidateCountryName validates a country name typed by a user
func ValidateCountryName(name string) error {
	if name == "" {
		return errors.New("country cannot be empty")
	}

	if utf8.RuneCountInString(name) > maxCountryNameLength {
		return fmt.Errorf("country too long (max %d characters)", maxCountryNameLength)
	}

	if !validNamePattern.MatchString(name) {
		return errors.New("country contains invalid characters")
	}

	return nil
}

// ValidateProvince validates an optional province name
func ValidateProvince(province string) error {
	if province == "" {
		return nil
	}

	if utf8.RuneCountInString(province) > maxCountryNameLength {
		return fmt.Errorf("province too long (max %d characters)", maxCountryNameLength)
	}

	if !validNamePattern.MatchString(province) {
		return errors.New("province contains invalid characters")
	}

	return nil
}

// ValidateForecastDays checks that days lies in [minDays, maxDays]
func ValidateForecastDays(days, minDays, maxDays int) error {
	if days < minDays || days > maxDays {
		return fmt.Errorf("days must be between %d and %d", minDays, maxDays)
	}
	return nil
}

// SanitizeInput removes HTML tags and surrounding whitespace
func SanitizeInput(input string) string {
	sanitized := htmlTagPattern.ReplaceAllString(input, "")
	return strings.TrimSpace(sanitized)
}

// ValidateCompareParams validates a comparison request and returns the
// problems per field
func ValidateCompareParams(countries []string, maxCountries, days, minDays, maxDays int) map[string][]string {
	fieldErrors := make(map[string][]string)

	switch {
	case len(countries) == 0:
		fieldErrors["countries"] = append(fieldErrors["countries"], "at least one country is required")
	case len(countries) > maxCountries:
		fieldErrors["countries"] = append(fieldErrors["countries"],
			fmt.Sprintf("at most %d countries can be compared", maxCountries))
	}

	for _, country := range countries {
		if err := ValidateCountryName(country); err != nil {
			fieldErrors["countries"] = append(fieldErrors["countries"], err.Error())
		}
	}

	if err := ValidateForecastDays(days, minDays, maxDays); err != nil {
		fieldErrors["days"] = append(fieldErrors["days"], err.Error())
	}

	return fieldErrors
}
