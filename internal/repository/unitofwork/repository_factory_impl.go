package unitofwork

import (
	"context"

	"gorm.io/gorm"
)

type RepositoryFactoryImpl struct {
	db       *gorm.DB
	efSearch int
}

func NewRepositoryFactory(db *gorm.DB, efSearch int) RepositoryFactory {
	return &RepositoryFactoryImpl{
		db:       db,
		efSearch: efSearch,
	}
}

// NewUnitOfWork returns a short-lived unit of work over the shared pool.
func (f *RepositoryFactoryImpl) NewUnitOfWork(ctx context.Context) UnitOfWork {
	return NewUnitOfWork(f.db, f.efSearch)
}
