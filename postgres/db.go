package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/xy-planning-network/gatekeeper"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

type DB struct {
	// *gorm.DB's methods are generally unsafe to use.
	// Specifically, some *gorm.DB methods are not thread-safe
	// and mutate the state of the *gorm.DB backing DB.
	//
	// If a *gorm.DB method calls *gorm.DB.getInstance,
	// this appears to render a method "safe" since it creates a new pointer.
	//
	// If a *gorm.DB method does not, be aware.
	// One solution is to use *gorm.DB.Session to force a clean pointer.
	db *gorm.DB
}

// NewDB constructs a *DB from a *gorm.DB.
func NewDB(db *gorm.DB) *DB { return &DB{db: db} }

// DB exposes the underlying *gorm.DB backing DB.
//
// NB: use in exceptional circumstances only.
func (db *DB) DB() *gorm.DB { return db.db }

// WithContext binds ctx to the query so cancelling ctx cancels it.
func (db *DB) WithContext(ctx context.Context) *DB { return &DB{db: db.db.WithContext(ctx)} }

// **************************************************************************
// FINISHER METHODS
//
// These methods close out a current query, executing it.
// All finisher methods are terminal and cannot be chained.
// **************************************************************************

// Create inserts value into the database, updating value with new data yielding from that insertion.
//
// Value must be a pointer, otherwise ErrNotValid returns.
// If value violates a unique constraint defined by the database, ErrExists returns.
// If value is not a database table, ErrMissingData returns.
func (db *DB) Create(value any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %T must be a non-nil pointer", gatekeeper.ErrNotValid, value)
		}
	}()

	if db.db.Error != nil {
		return db.db.Error
	}

	err = db.db.Session(&gorm.Session{FullSaveAssociations: false}).Create(value).Error
	if errors.Is(err, schema.ErrUnsupportedDataType) || errors.Is(err, gorm.ErrInvalidData) {
		return fmt.Errorf("%w: %T is not a table", gatekeeper.ErrMissingData, value)
	}

	return translate(err, value)
}

// Exec executes SQL query sql, passing values to it.
//
// Exec does not write any data resulting from the query into Go values.
func (db *DB) Exec(sql string, values ...any) error {
	if db.db.Error != nil {
		return db.db.Error
	}

	return translate(db.db.Exec(sql, values...).Error, sql)
}

// First retrieves a single record from the database matching the query
// and stores it in dest.
//
// If no matches are found, First returns ErrNotExist.
func (db *DB) First(dest any) error {
	if db.db.Error != nil {
		return db.db.Error
	}

	return translate(db.db.First(dest).Error, dest)
}

// **************************************************************************
// QUERY BUILDING METHODS
// **************************************************************************

// Model declares the table used for the query.
func (db *DB) Model(model any) *DB { return &DB{db: db.db.Model(model)} }

// Where applies the query fragment to the current query
// as a WHERE or AND clause.
//
// Where supports one or none args.
// If more than one arg is passed, finisher methods return ErrNotValid.
func (db *DB) Where(query any, args ...any) *DB {
	if len(args) > 1 {
		gdb := db.db.Session(&gorm.Session{})
		_ = gdb.AddError(fmt.Errorf("%w: Where supports one or none args", gatekeeper.ErrNotValid))
		return &DB{db: gdb}
	}

	return &DB{db: db.db.Where(query, args...)}
}
