package repositories

import (
	"database/sql"
	"errors"

	"devcamper/internal/domain"

	"github.com/go-sql-driver/mysql"
)

const (
	mysqlDuplicateEntry = 1062
	mysqlNoReferenced   = 1452
)

// translate maps driver errors onto domain errors.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlDuplicateEntry:
			return domain.ConflictError{Msg: "Duplicate field value entered", Err: err}
		case mysqlNoReferenced:
			return domain.ValidationError{Msg: "Referenced record does not exist", Err: err}
		}
	}
	return err
}

func notFound(err error, resource string, id any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundError{Resource: resource, ID: id, Err: err}
	}
	return translate(err)
}

func hasExpansion(expand []string, name string) bool {
	for _, e := range expand {
		if e == name {
			return true
		}
	}
	return false
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
