package storage

import (
	"context"

	"gorm.io/gorm"

	"todo-server-go/internal/platform/errors"
)

type AddressRepository struct {
	db *gorm.DB
}

func NewAddressRepository(db *gorm.DB) *AddressRepository {
	return &AddressRepository{db: db}
}

func (r *AddressRepository) Create(ctx context.Context, address *Address) error {
	if err := r.db.WithContext(ctx).Create(address).Error; err != nil {
		return errors.Wrap(errors.KindStorage, "address.create", "failed to create address", err)
	}
	return nil
}

func (r *AddressRepository) GetByID(ctx context.Context, id uint) (*Address, error) {
	var address Address
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&address).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(errors.KindStorage, "address.get_by_id", "failed to find address", err)
	}
	return &address, nil
}
