// Package reference loads reference datasets from a SQL table. SQLite files and
// Postgres databases are supported.
package reference

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver

	"arcflow/internal/compare"
)

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var (
	// ErrUnknownDriver is returned for drivers other than sqlite and postgres.
	ErrUnknownDriver = errors.New("reference: unknown driver")
	// ErrInvalidTable is returned for table names that are not plain identifiers.
	ErrInvalidTable = errors.New("reference: invalid table name")
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// identifier allows an optional schema qualifier: "ref.recipes".
var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Store reads reference tables from one database.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to dsn and pings it. For sqlite the dsn is a file path.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	sqlDriver, err := sqlDriverName(driver)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("reference: %s dsn required", driver)
	}
	openMu.Lock()
	db, err := sqlOpen(sqlDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return &Store{db: db, driver: strings.ToLower(driver)}, nil
}

func sqlDriverName(driver string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverSQLite:
		return "sqlite", nil
	case DriverPostgres, "pgx":
		return "pgx", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
}

// DB exposes the underlying handle for seeding in tests.
func (s *Store) DB() *sql.DB { return s.db }

// Close releases the connection pool.
func (s *Store) Close() error { return s.db.Close() }

// Load reads every row of table. Column names become headers in select order;
// NULL becomes the empty string.
func (s *Store) Load(ctx context.Context, table string) (compare.Dataset, error) {
	if !identifier.MatchString(table) {
		return compare.Dataset{}, fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+quote(table))
	if err != nil {
		return compare.Dataset{}, fmt.Errorf("select %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return compare.Dataset{}, err
	}
	ds := compare.Dataset{Headers: cols}
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return compare.Dataset{}, fmt.Errorf("scan %s: %w", table, err)
		}
		rec := make(map[string]string, len(cols))
		for i, col := range cols {
			rec[col] = formatValue(values[i])
		}
		ds.Rows = append(ds.Rows, rec)
	}
	if err := rows.Err(); err != nil {
		return compare.Dataset{}, fmt.Errorf("read %s: %w", table, err)
	}
	return ds, nil
}

func quote(table string) string {
	parts := strings.Split(table, ".")
	for i, p := range parts {
		parts[i] = `"` + p + `"`
	}
	return strings.Join(parts, ".")
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}
