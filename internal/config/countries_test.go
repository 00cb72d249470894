package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCountryCodes(t *testing.T) {
	t.Run("file loads", func(t *testing.T) {
		codes, err := LoadCountryCodes(filepath.Join("testdata", "country_codes.yaml"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if code, ok := codes.Lookup("Korea, North"); !ok || code != "KP" {
			t.Fatalf("expected KP, got %q %v", code, ok)
		}
		if _, ok := codes.Lookup("Panama"); ok {
			t.Fatalf("expected file table to replace the built-in one")
		}
	})

	t.Run("empty path uses defaults", func(t *testing.T) {
		codes, err := LoadCountryCodes("")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if code, _ := codes.Lookup("United Kingdom"); code != "GB" {
			t.Fatalf("expected GB, got %q", code)
		}
	})

	t.Run("lowercase code rejected", func(t *testing.T) {
		path := writeTempCodes(t, "Cuba: cu\n")
		if _, err := LoadCountryCodes(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("three letter code rejected", func(t *testing.T) {
		path := writeTempCodes(t, "Cuba: CUB\n")
		if _, err := LoadCountryCodes(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("empty table rejected", func(t *testing.T) {
		path := writeTempCodes(t, "{}\n")
		if _, err := LoadCountryCodes(path); err == nil {
			t.Fatalf("expected error")
		}
	})
}

func TestDefaultCountryCodes_IsCopy(t *testing.T) {
	codes := DefaultCountryCodes()
	codes["Cuba"] = "XX"
	if code, _ := DefaultCountryCodes().Lookup("Cuba"); code != "CU" {
		t.Fatalf("expected built-in table to be unchanged, got %q", code)
	}
}

func TestCountryCodes_LookupExactName(t *testing.T) {
	codes := DefaultCountryCodes()
	if _, ok := codes.Lookup("cuba"); ok {
		t.Fatalf("expected lookup to be case-sensitive")
	}
	var none CountryCodes
	if _, ok := none.Lookup("Cuba"); ok {
		t.Fatalf("expected nil table to match nothing")
	}
}

func writeTempCodes(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "codes.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write codes: %v", err)
	}
	return path
}
