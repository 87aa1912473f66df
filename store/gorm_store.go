package store

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// GormStore adapts a *gorm.DB to the Store interface. Queries are built with
// raw table and column names on purpose: the poll resolver probes columns that
// may or may not exist and needs the driver's own error back when they don't.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Select(table string, columns []string, filters map[string]any, opts SelectOptions) ([]map[string]any, error) {
	tx := s.db.Table(table)
	if len(columns) > 0 {
		tx = tx.Select(columns)
	}
	for col, val := range filters {
		tx = tx.Where(fmt.Sprintf("%s = ?", col), val)
	}
	if opts.OrderBy != "" {
		tx = tx.Order(opts.OrderBy)
	}
	if opts.Limit > 0 {
		tx = tx.Limit(opts.Limit)
	}

	var rows []map[string]any
	if err := tx.Find(&rows).Error; err != nil {
		return nil, wrapErr(err)
	}
	return rows, nil
}

func (s *GormStore) Insert(table string, rows []map[string]any) error {
	if len(rows) == 0 {
		return nil
	}
	// gorm writes the generated key back into the maps it is given; insert
	// copies so the caller's payload stays untouched
	copies := make([]map[string]any, len(rows))
	for i, row := range rows {
		cp := make(map[string]any, len(row))
		for col, val := range row {
			cp[col] = val
		}
		copies[i] = cp
	}
	if err := s.db.Table(table).Create(copies).Error; err != nil {
		return wrapErr(err)
	}
	return nil
}

func (s *GormStore) Update(table string, patch map[string]any, filters map[string]any) (int64, error) {
	tx := s.db.Table(table)
	for col, val := range filters {
		tx = tx.Where(fmt.Sprintf("%s = ?", col), val)
	}
	res := tx.Updates(patch)
	if res.Error != nil {
		return 0, wrapErr(res.Error)
	}
	return res.RowsAffected, nil
}

// wrapErr lifts driver errors into *Error so Classify can look at the code
// first. The mysql driver exposes a numeric code; sqlite only gives us text,
// which the substring fallback handles.
func wrapErr(err error) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return &Error{
			Code:    strconv.Itoa(int(myErr.Number)),
			Message: myErr.Message,
		}
	}
	return &Error{Message: err.Error()}
}
