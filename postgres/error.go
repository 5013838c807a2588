package postgres

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/lib/pq"
	"github.com/xy-planning-network/gatekeeper"
	"gorm.io/gorm"
)

var (
	// ErrMigration wraps every failure MigrateUp returns.
	ErrMigration = errors.New("migration failed")

	// errSQLState finds the PostgreSQL error code drivers append to their messages.
	//
	// Cf., https://www.postgresql.org/docs/current/errcodes-appendix.html
	errSQLState = regexp.MustCompile(`SQLSTATE ([0-9A-Z]{5})`)
)

// A sqlStater is a driver error exposing its PostgreSQL error code, as pgconn's does.
type sqlStater interface{ SQLState() string }

// sqlState extracts the PostgreSQL error code err carries, if any.
func sqlState(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}

	var stater sqlStater
	if errors.As(err, &stater) {
		return pq.ErrorCode(stater.SQLState())
	}

	if m := errSQLState.FindStringSubmatch(err.Error()); m != nil {
		return pq.ErrorCode(m[1])
	}

	return ""
}

// translate maps err, raised querying for subject, onto a gatekeeper error.
func translate(err error, subject any) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %T", gatekeeper.ErrNotExist, subject)
	}

	code := sqlState(err)
	if code == "" {
		return fmt.Errorf("%w: %s", gatekeeper.ErrUnexpected, err)
	}

	switch code.Name() {
	case "unique_violation":
		return fmt.Errorf("%w: %s", gatekeeper.ErrExists, err)

	case "foreign_key_violation", "not_null_violation", "invalid_text_representation":
		return fmt.Errorf("%w: %s", gatekeeper.ErrNotValid, err)
	}

	// Class 42 is syntax errors or access rule violations.
	if code.Class() == "42" {
		return fmt.Errorf("%w: %s", gatekeeper.ErrNotValid, err)
	}

	return fmt.Errorf("%w: %s", gatekeeper.ErrUnexpected, err)
}
