package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrStorageAnomaly marks asset store/delete failures. These are logged and
// never block the owning record mutation.
var ErrStorageAnomaly = errors.New("storage anomaly")

func NewStorageAnomaly(operation, key string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrStorageAnomaly,
		Details:    fmt.Sprintf("Failed to %s asset %s", operation, key),
		Cause:      cause,
	}
}

func IsStorageAnomaly(err error) bool {
	return errors.Is(err, ErrStorageAnomaly)
}
