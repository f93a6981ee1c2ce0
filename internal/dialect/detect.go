package dialect

import "strings"

// Detect classifies a database product string and returns the matching
// dialect. Matching is a case-insensitive substring check, so both driver
// names ("pgx") and server banners ("PostgreSQL 16.1 on x86_64") resolve.
// Products that match nothing fall back to the MySQL baseline dialect.
func Detect(product string) Dialect {
	p := strings.ToLower(product)

	switch {
	case strings.Contains(p, "postgres"), strings.Contains(p, "pgx"):
		return Postgres{}
	case strings.Contains(p, "oracle"):
		return Oracle{}
	case strings.Contains(p, "sqlite"):
		return SQLite{}
	default:
		return MySQL{}
	}
}

// Recognized reports whether Detect matched the product on an actual
// substring rather than falling back to the baseline dialect.
func Recognized(product string) bool {
	p := strings.ToLower(product)

	for _, marker := range []string{"postgres", "pgx", "oracle", "sqlite", "mysql", "maria"} {
		if strings.Contains(p, marker) {
			return true
		}
	}

	return false
}
