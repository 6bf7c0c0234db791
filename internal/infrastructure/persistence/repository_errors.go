package persistence

import (
	"errors"

	"gorm.io/gorm"

	"github.com/erp/stockledger/internal/domain/shared"
)

// translate maps gorm sentinel errors onto domain errors.
// entity and id name the row in the NotFound message.
func translate(err error, entity string, id any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.NewNotFoundError(entity, id)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrAlreadyExists.WithCause(err)
	default:
		return err
	}
}

func versionConflict(entity string) error {
	return shared.NewDomainError(shared.CodeConcurrencyConflict, entity+" was modified by another transaction")
}
