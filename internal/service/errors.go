package service

import (
	"errors"

	"github.com/lshigami/psytest/internal/apperror"
	"gorm.io/gorm"
)

// lookupError maps a failed single-row lookup to NotFound or Internal.
func lookupError(err error, entity string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound("%s with ID %d not found", entity, id)
	}
	return apperror.Internal(err, "failed to load %s %d", entity, id)
}
