package storage

import (
	"context"

	"gorm.io/gorm"
)

// GormUnitOfWork implements UnitOfWork over gorm's transaction support:
// fn gets stores bound to the transaction, a returned error rolls the
// whole scope back.
type GormUnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

func (u *GormUnitOfWork) Do(ctx context.Context, fn func(tx TxStores) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTxStores{db: tx})
	})
}

type gormTxStores struct {
	db *gorm.DB
}

func (s *gormTxStores) Drafts() DraftStore {
	return NewDraftStore(s.db)
}

func (s *gormTxStores) Profiles() ProfileStore {
	return NewProfileStore(s.db)
}
