// Package normalize rewrites entity names into a canonical form used for
// abbreviation-tolerant comparison.
package normalize

import (
	"regexp"
	"strings"
)

// Rule is one rewrite step. End-of-string anchoring is part of the pattern;
// suffix rules tolerate the trailing blanks left behind by stripped
// punctuation ("BAD COMPANY." must normalize in one pass).
type Rule struct {
	Name        string
	Pattern     *regexp.Regexp
	Replacement string
}

// Rules run strictly in order; later rules expect the text left by earlier
// ones (the PRIVATE/PVT/PTE + LIMITED/LTD compound must see PTE before the
// standalone PTE rule rewrites it).
var Rules = []Rule{
	// RE2's \s is ASCII-only; fold the other Unicode separators first.
	{Name: "unicode-space", Pattern: regexp.MustCompile(`[\p{Z}\x{85}\x{1C}-\x{1F}]`), Replacement: " "},
	{Name: "strip-punctuation", Pattern: regexp.MustCompile(`[^A-Z0-9\s&]`), Replacement: ""},
	{Name: "private-limited", Pattern: regexp.MustCompile(`\b(PRIVATE|PVT|PTE)\s+(LIMITED|LTD)\b`), Replacement: "PVT LTD"},
	{Name: "pte", Pattern: regexp.MustCompile(`\bPTE\b`), Replacement: "PVT"},
	{Name: "limited-suffix", Pattern: regexp.MustCompile(`\bLIMITED\s*$`), Replacement: "LTD"},
	{Name: "corporation", Pattern: regexp.MustCompile(`\bCORPORATION\b`), Replacement: "CORP"},
	{Name: "incorporated", Pattern: regexp.MustCompile(`\bINCORPORATED\b`), Replacement: "INC"},
	{Name: "company-suffix", Pattern: regexp.MustCompile(`\bCOMPANY\s*$`), Replacement: "CO"},
	{Name: "department", Pattern: regexp.MustCompile(`\bDEPARTMENT\b`), Replacement: "DEPT"},
	{Name: "brothers-suffix", Pattern: regexp.MustCompile(`\bBROTHERS\s*$`), Replacement: "BROS"},
	{Name: "and", Pattern: regexp.MustCompile(`\bAND\b`), Replacement: "&"},
	{Name: "collapse-space", Pattern: regexp.MustCompile(`\s+`), Replacement: " "},
}

// Name returns the canonical form of name. The boolean is false only for
// empty input, which has no normalized form; whitespace-only input yields
// ("", true).
func Name(name string) (string, bool) {
	if name == "" {
		return "", false
	}

	norm := strings.TrimSpace(strings.ToUpper(name))
	for _, rule := range Rules {
		norm = rule.Pattern.ReplaceAllLiteralString(norm, rule.Replacement)
	}

	return strings.TrimSpace(norm), true
}

// Ptr is Name over nullable strings: nil and "" map to nil.
func Ptr(name *string) *string {
	if name == nil {
		return nil
	}
	norm, ok := Name(*name)
	if !ok {
		return nil
	}
	return &norm
}
