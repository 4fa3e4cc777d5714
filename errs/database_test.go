package errs

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestNewDatabaseErrorDuplicateKey(t *testing.T) {
	apiErr := NewDatabaseError("create", "post", gorm.ErrDuplicatedKey)

	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.True(t, IsUniqueConstraintViolation(apiErr))
	assert.Contains(t, apiErr.Details, "already been taken")
}

func TestNewDatabaseErrorDuplicateKeyFieldFromConstraint(t *testing.T) {
	cause := errors.New(`ERROR: duplicate key value violates unique constraint "uni_posts_post_title" (SQLSTATE 23505)`)
	apiErr := NewDatabaseError("create", "post", cause)

	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "post_title", apiErr.Field)

	cause = errors.New(`ERROR: duplicate key value violates unique constraint "uni_posts_post_description" (SQLSTATE 23505)`)
	assert.Equal(t, "post_description", NewDatabaseError("create", "post", cause).Field)
}

func TestNewDatabaseErrorRecordNotFound(t *testing.T) {
	apiErr := NewDatabaseError("find", "post", gorm.ErrRecordNotFound)

	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.True(t, IsNotFound(apiErr))
}

func TestNewDatabaseErrorConnection(t *testing.T) {
	apiErr := NewDatabaseError("find", "post", errors.New("dial tcp: connection refused"))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
}

func TestNewDatabaseErrorGeneric(t *testing.T) {
	apiErr := NewDatabaseError("query grid for", "posts", errors.New("syntax error"))

	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.ErrorIs(t, apiErr, ErrDatabaseQuery)
	assert.Contains(t, apiErr.Details, "query grid for posts")
}

func TestValidationErrorShape(t *testing.T) {
	apiErr := NewValidationError("post_title", "is required")

	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.True(t, IsValidation(apiErr))
	assert.Equal(t, "post_title", apiErr.Field)
	assert.Contains(t, apiErr.Error(), "is required")
}
