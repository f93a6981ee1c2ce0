// Package database opens database/sql connections from target URLs and
// detects the database product behind them.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/glebarez/go-sqlite"  // sqlite driver
	_ "github.com/go-sql-driver/mysql" // mysql driver
	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
)

const defaultMaxConns = 5

// Open connects to the database behind a target URL, verifies
// connectivity, and returns the handle together with the detected product
// string (driver name plus server version) used for dialect selection.
// Credentials given separately override any embedded in the URL.
func Open(ctx context.Context, rawURL, username, password string) (*sql.DB, string, error) {
	driver, dsn, err := resolveDSN(rawURL, username, password)
	if err != nil {
		return nil, "", err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	db.SetMaxOpenConns(defaultMaxConns)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, "", fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return db, productString(ctx, db, driver), nil
}

// resolveDSN maps a URL scheme to a registered driver and its DSN form.
func resolveDSN(rawURL, username, password string) (driver, dsn string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "postgres", "postgresql":
		if username != "" {
			u.User = url.UserPassword(username, password)
		}

		return "pgx", u.String(), nil

	case "mysql":
		return "mysql", mysqlDSN(u, username, password), nil

	case "sqlite", "file":
		return "sqlite", strings.TrimPrefix(rawURL, u.Scheme+"://"), nil

	case "oracle":
		return "", "", fmt.Errorf("%w: %s (no Oracle driver is linked in)", ErrUnsupportedScheme, u.Scheme)

	default:
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}
}

// mysqlDSN converts a mysql:// URL into the go-sql-driver DSN form
// user:password@tcp(host:port)/dbname?params.
func mysqlDSN(u *url.URL, username, password string) string {
	if username == "" && u.User != nil {
		username = u.User.Username()
		password, _ = u.User.Password()
	}

	host := u.Host
	if u.Port() == "" {
		host += ":3306"
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s)%s", username, password, host, u.Path)
	if u.RawQuery != "" {
		dsn += "?" + u.RawQuery
	}

	return dsn
}

// productString builds the string the dialect classifier inspects. The
// driver name alone is enough to classify; the server banner is appended
// when the product exposes one.
func productString(ctx context.Context, db *sql.DB, driver string) string {
	queries := []string{"SELECT version()", "SELECT sqlite_version()"}

	for _, q := range queries {
		var banner string
		if err := db.QueryRowContext(ctx, q).Scan(&banner); err == nil {
			return driver + " " + banner
		}
	}

	return driver
}
