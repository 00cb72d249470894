package config

import (
	"fmt"
	"maps"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// CountryCodes maps a country name, exactly as the publication spells it, to
// its ISO 3166-1 alpha-2 code.
type CountryCodes map[string]string

var defaultCountryCodes = CountryCodes{
	"Cuba":           "CU",
	"Panama":         "PA",
	"Russia":         "RU",
	"Afghanistan":    "AF",
	"Iran":           "IR",
	"United Kingdom": "GB",
	"Switzerland":    "CH",
	"Spain":          "ES",
	"Mexico":         "MX",
	"Ukraine":        "UA",
}

// DefaultCountryCodes returns a copy of the built-in table.
func DefaultCountryCodes() CountryCodes {
	return maps.Clone(defaultCountryCodes)
}

// LoadCountryCodes reads a YAML mapping of country name to ISO2 code. An
// empty path yields the built-in table.
func LoadCountryCodes(path string) (CountryCodes, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultCountryCodes(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading country codes: %w", err)
	}

	var codes CountryCodes
	if err := yaml.Unmarshal(data, &codes); err != nil {
		return nil, fmt.Errorf("loading country codes: %w", err)
	}

	if err := validateCountryCodes(codes); err != nil {
		return nil, fmt.Errorf("loading country codes: %w", err)
	}

	return codes, nil
}

func validateCountryCodes(codes CountryCodes) error {
	if len(codes) == 0 {
		return fmt.Errorf("at least one country code is required")
	}
	for name, code := range codes {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("country with empty name")
		}
		if len(code) != 2 || strings.ToUpper(code) != code {
			return fmt.Errorf("country %s has invalid ISO2 code: %q", name, code)
		}
	}
	return nil
}

// Lookup returns the ISO2 code for name.
func (c CountryCodes) Lookup(name string) (string, bool) {
	if c == nil {
		return "", false
	}
	code, ok := c[name]
	return code, ok
}
