package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgInvalidTextRepresentation = "22P02" // id que não é UUID
	pgForeignKeyViolation       = "23503"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
