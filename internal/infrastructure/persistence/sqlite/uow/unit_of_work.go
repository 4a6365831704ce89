package uow

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"eventraffle/internal/errs"
	"eventraffle/internal/ports"
)

// UnitOfWork implements ports.UnitOfWork with gorm. Nested calls join the outer transaction.
type UnitOfWork struct {
	db *gorm.DB
}

var _ ports.UnitOfWork = (*UnitOfWork)(nil)

func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

func (u *UnitOfWork) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if tx, ok := ports.TxFromContext(ctx).(*gorm.DB); ok && tx != nil {
		return fn(ctx)
	}

	var fnErr error
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(ports.WithTxContext(ctx, tx))
		return fnErr
	})
	if err != nil && fnErr == nil {
		// Begin or commit failed: not a business outcome, keep the stack for the log.
		return errs.WithStack(errs.Wrap(err, "run transaction"))
	}
	return err
}
