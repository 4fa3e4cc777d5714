package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrDatabaseQuery             = errors.New("database query failed")
	ErrDatabaseConnection        = errors.New("database connection failed")
	ErrUniqueConstraintViolation = errors.New("unique constraint violation")
)

// NewDatabaseError wraps a store-layer failure with the operation and entity
// it happened on. Uniqueness violations come back as a conflict keyed to the
// duplicated field so the handlers can surface them like validation failures
// instead of an unhandled fault.
func NewDatabaseError(operation, entity string, cause error) *ApiErr {
	details := fmt.Sprintf("Failed to %s %s", operation, entity)

	if cause != nil {
		errStr := cause.Error()
		switch {
		case errors.Is(cause, gorm.ErrDuplicatedKey) || strings.Contains(errStr, "duplicate key"):
			return &ApiErr{
				StatusCode: http.StatusConflict,
				err:        ErrUniqueConstraintViolation,
				Details:    fmt.Sprintf("%s has already been taken", entity),
				Field:      duplicatedField(errStr),
				Cause:      cause,
			}
		case errors.Is(cause, gorm.ErrRecordNotFound) || strings.Contains(errStr, "not found"):
			return &ApiErr{
				StatusCode: http.StatusNotFound,
				err:        fmt.Errorf("%s %w", entity, ErrNotFound),
				Details:    details,
				Cause:      cause,
			}
		case strings.Contains(errStr, "connection"):
			return &ApiErr{
				StatusCode: http.StatusServiceUnavailable,
				err:        ErrDatabaseConnection,
				Details:    "Unable to connect to database",
				Cause:      cause,
			}
		}
	}

	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrDatabaseQuery,
		Details:    details,
		Cause:      cause,
	}
}

// duplicatedField maps the constraint name in a postgres duplicate-key
// message back to the wire field it protects.
func duplicatedField(errStr string) string {
	switch {
	case strings.Contains(errStr, "post_title"):
		return "post_title"
	case strings.Contains(errStr, "post_description"):
		return "post_description"
	}
	return ""
}

func IsUniqueConstraintViolation(err error) bool {
	return errors.Is(err, ErrUniqueConstraintViolation)
}
