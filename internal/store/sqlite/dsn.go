package sqlite

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// driverDSN turns a sqlite://<path>[?params] URL into the form
// modernc.org/sqlite opens. file: URIs pass through untouched; relative
// paths resolve against the working directory.
func driverDSN(dsn string) (string, error) {
	if strings.HasPrefix(dsn, "file:") {
		return dsn, nil
	}
	rest, ok := strings.CutPrefix(dsn, "sqlite://")
	if !ok {
		return "", fmt.Errorf("invalid sqlite DSN scheme, expected sqlite://")
	}
	if rest == ":memory:" {
		return rest, nil
	}

	path, query, _ := strings.Cut(rest, "?")
	path, err := url.PathUnescape(path)
	if err != nil {
		return "", fmt.Errorf("unescaping path: %w", err)
	}
	if path == "" {
		return "", fmt.Errorf("sqlite DSN has no database path")
	}
	if !filepath.IsAbs(path) && !strings.HasPrefix(path, "./") && !strings.HasPrefix(path, "../") {
		path = "./" + path
	}
	if query != "" {
		return path + "?" + query, nil
	}
	return path, nil
}

// databaseDir is the directory that must exist before the database file can
// be created, or "" for in-memory and file: databases.
func databaseDir(driverDSN string) string {
	if driverDSN == ":memory:" || strings.HasPrefix(driverDSN, "file:") {
		return ""
	}
	path, _, _ := strings.Cut(driverDSN, "?")
	return filepath.Dir(path)
}

// connectionPragmas are applied by the driver to every pooled connection.
var connectionPragmas = []string{
	"busy_timeout(30000)",
	"journal_mode(WAL)",
	"foreign_keys(1)",
}

// withPragmas appends a _pragma parameter for each connection pragma the
// DSN does not already set.
func withPragmas(driverDSN string) string {
	_, query, _ := strings.Cut(driverDSN, "?")
	values, _ := url.ParseQuery(query)
	set := make(map[string]bool)
	for _, p := range values["_pragma"] {
		name, _, _ := strings.Cut(p, "(")
		set[strings.ToLower(strings.TrimSpace(name))] = true
	}

	var params []string
	for _, p := range connectionPragmas {
		name, _, _ := strings.Cut(p, "(")
		if !set[name] {
			params = append(params, "_pragma="+p)
		}
	}
	if len(params) == 0 {
		return driverDSN
	}

	sep := "?"
	if strings.Contains(driverDSN, "?") {
		sep = "&"
	}
	return driverDSN + sep + strings.Join(params, "&")
}
