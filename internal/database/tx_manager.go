package database

import (
	"context"

	"api_sales/internal/sales"

	"gorm.io/gorm"
)

// TxManagerGorm implements sales.TxManager on top of db.Transaction.
type TxManagerGorm struct {
	db    *gorm.DB
	users sales.UserStore
}

// NewTxManagerGorm returns a TxManager. When users is nil the users table of
// the same database is read inside the transaction.
func NewTxManagerGorm(db *gorm.DB, users sales.UserStore) *TxManagerGorm {
	return &TxManagerGorm{db: db, users: users}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(s sales.Stores) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// stores are rebuilt on the transaction handle
		var users sales.UserStore = NewUserGormRepository(tx)
		if tm.users != nil {
			users = tm.users
		}
		return fn(sales.Stores{
			Sales:    NewSaleGormRepository(tx),
			Users:    users,
			Products: &ProductGormRepository{db: tx, lock: supportsRowLocks(tx)},
		})
	})
}

// NewStores returns stores reading outside any transaction.
func NewStores(db *gorm.DB, users sales.UserStore) sales.Stores {
	if users == nil {
		users = NewUserGormRepository(db)
	}
	return sales.Stores{
		Sales:    NewSaleGormRepository(db),
		Users:    users,
		Products: NewProductGormRepository(db),
	}
}
