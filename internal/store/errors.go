package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// pq error code for unique_violation.
const uniqueViolationCode = "23505"

// DuplicateError is returned when an insert violates a unique index.
// Field names the offending column so handlers can report it.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s", e.Field)
}

// mapUniqueViolation translates a postgres unique-violation error into a
// DuplicateError naming the column derived from the constraint name
// (e.g. "users_email_key" -> "email"). Other errors pass through.
func mapUniqueViolation(err error, table string) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolationCode {
		return err
	}
	field := strings.TrimSuffix(strings.TrimPrefix(pqErr.Constraint, table+"_"), "_key")
	if field == "" {
		field = "field"
	}
	return &DuplicateError{Field: field}
}
