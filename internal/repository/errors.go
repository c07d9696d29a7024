package repository

import (
	"errors"

	"github.com/lib/pq"
)

// PostgreSQL error codes
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	return hasCode(err, pqUniqueViolation)
}

func isForeignKeyViolation(err error) bool {
	return hasCode(err, pqForeignKeyViolation)
}

func hasCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}
