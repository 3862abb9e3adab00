// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"
	"strings"

	"github.com/GoPowerDNS-Admin/plugin-settings/internal/config"
)

// MySQL builds the go-sql-driver/mysql Data Source Name.
func MySQL(db config.DB) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		db.User,
		db.Password,
		db.Host,
		db.Port,
		db.Name,
		db.Extras,
	)
}

// Postgres builds the pgx keyword/value Data Source Name.
func Postgres(db config.DB) string {
	out := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
		db.Host,
		db.Port,
		db.User,
		db.Password,
		db.Name,
	)

	if db.Extras != "" {
		out += " " + db.Extras
	}

	return out
}

// SQLite builds the file name handed to the sqlite driver.
// Foreign keys are always enabled, the cascading deletes of user and
// plugin settings depend on them.
func SQLite(db config.DB) string {
	params := []string{"_pragma=foreign_keys(1)"}
	if db.Extras != "" {
		params = append(params, db.Extras)
	}

	sep := "?"
	if strings.Contains(db.Name, "?") {
		sep = "&"
	}

	return db.Name + sep + strings.Join(params, "&")
}
