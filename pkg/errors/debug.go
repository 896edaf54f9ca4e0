package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// ErrorDump flattens an error chain and any database driver error inside it
// for structured logs.
type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	PGCode       string `json:"pg_code,omitempty"`
	PGConstraint string `json:"pg_constraint,omitempty"`
	PGTable      string `json:"pg_table,omitempty"`
	PGColumn     string `json:"pg_column,omitempty"`
	PGDetail     string `json:"pg_detail,omitempty"`
	PGMessage    string `json:"pg_message,omitempty"`

	SQLiteCode         string `json:"sqlite_code,omitempty"`
	SQLiteExtendedCode string `json:"sqlite_extended_code,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	if d.fillPgx(err) || d.fillPQ(err) {
		return d
	}
	d.fillSQLite(err)
	return d
}

func (d *ErrorDump) fillPgx(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	d.PGCode = pgErr.Code
	d.PGConstraint = pgErr.ConstraintName
	d.PGTable = pgErr.TableName
	d.PGColumn = pgErr.ColumnName
	d.PGDetail = pgErr.Detail
	d.PGMessage = pgErr.Message
	return true
}

func (d *ErrorDump) fillPQ(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	d.PGCode = string(pqErr.Code)
	d.PGConstraint = pqErr.Constraint
	d.PGTable = pqErr.Table
	d.PGColumn = pqErr.Column
	d.PGDetail = pqErr.Detail
	d.PGMessage = pqErr.Message
	return true
}

// SQLite errors come back by value from the driver.
func (d *ErrorDump) fillSQLite(err error) bool {
	var liteErr sqlite3.Error
	if !errors.As(err, &liteErr) {
		return false
	}
	d.SQLiteCode = liteErr.Code.Error()
	d.SQLiteExtendedCode = liteErr.ExtendedCode.Error()
	return true
}
