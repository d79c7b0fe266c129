package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, Status(Validation("userId is required")))
	assert.Equal(t, http.StatusNotFound, Status(NotFound("user", "u1")))
	assert.Equal(t, http.StatusServiceUnavailable, Status(Upstream(errors.New("boom"))))
	assert.Equal(t, http.StatusConflict, Status(Conflict("username 'a' already taken")))
	assert.Equal(t, http.StatusInternalServerError, Status(Internal(errors.New("boom"))))
	assert.Equal(t, http.StatusInternalServerError, Status(errors.New("plain")))
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("feed: %w", NotFound("user", "u1"))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, Is(err, KindNotFound))
	assert.False(t, Is(err, KindValidation))
}

func TestMessage_HidesInternalCause(t *testing.T) {
	assert.Equal(t, "user with ID u1 not found", Message(NotFound("user", "u1")))
	assert.Equal(t, "internal server error", Message(Internal(errors.New("pq: connection refused"))))
	assert.Equal(t, "internal server error", Message(errors.New("raw")))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := Upstream(cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "dial tcp: timeout")
}
