package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is wrapped by every repository lookup that finds nothing.
var ErrNotFound = errors.New("record not found")

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
