package storage

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pktracker/internal/core"
)

// Dialect selects the SQL flavour and the database/sql driver.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

func (d Dialect) String() string { return string(d) }

// DriverName is the registered database/sql driver for the dialect.
func (d Dialect) DriverName() string {
	if d == Postgres {
		return "pgx"
	}
	return "sqlite"
}

// ParseDialect maps the DATA_BACKEND setting onto a dialect.
func ParseDialect(s string) (Dialect, error) {
	switch Dialect(s) {
	case SQLite, Postgres:
		return Dialect(s), nil
	default:
		return "", fmt.Errorf("unsupported data backend: %q", s)
	}
}

// rebind rewrites ? placeholders into $n for postgres. Queries in this
// package never contain a literal question mark.
func (d Dialect) rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// dateColumn scans a DATE (postgres) or TEXT (sqlite) column.
type dateColumn struct {
	core.Date
}

func (c *dateColumn) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		c.Date = core.DateOf(v)
		return nil
	case string:
		return c.parse(v)
	case []byte:
		return c.parse(string(v))
	case nil:
		c.Date = core.Date{}
		return nil
	default:
		return fmt.Errorf("scan date: unsupported type %T", src)
	}
}

func (c *dateColumn) parse(s string) error {
	// Some drivers hand back a full timestamp for DATE columns.
	if len(s) > len(core.DateLayout) {
		s = s[:len(core.DateLayout)]
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return fmt.Errorf("scan date %q: %w", s, err)
	}
	c.Date = d
	return nil
}

// dateValue is the bound form of a date for both dialects.
func dateValue(d core.Date) driver.Value {
	return d.String()
}

func unixTime(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}
