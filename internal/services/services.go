// Package services holds the business logic between handlers and repositories.
package services

import (
	"errors"
	"strings"
	"time"

	"fitzty/internal/repositories"
	"fitzty/pkg/apperr"
)

// Clock returns the current time. Services take one so tests can pin "now".
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

// storeError maps a repository failure onto the error vocabulary.
func storeError(err error, entity, id string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.NotFound(entity, id)
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Internal(err)
}

func requireID(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperr.Validation("%s is required", field)
	}
	return nil
}
