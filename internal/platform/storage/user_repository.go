package storage

import (
	"context"
	"time"

	"gorm.io/gorm"

	"todo-server-go/internal/domain/auth"
	"todo-server-go/internal/platform/errors"
)

// UserRepository reads and writes credential records.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. Username uniqueness is enforced by the
// schema constraint, not here.
func (r *UserRepository) Create(ctx context.Context, user *User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return errors.Wrap(errors.KindStorage, "user.create", "failed to create user", err)
	}
	return nil
}

// GetByUsername performs a case-sensitive exact match. Returns
// (nil, nil) when no such user exists.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(errors.KindStorage, "user.get_by_username", "failed to find user", err)
	}
	return &user, nil
}

// FindCredential implements auth.CredentialSource over the user table.
func (r *UserRepository) FindCredential(ctx context.Context, username string) (*auth.Credential, error) {
	user, err := r.GetByUsername(ctx, username)
	if err != nil || user == nil {
		return nil, err
	}
	return &auth.Credential{
		UserID:         user.ID,
		Username:       user.Username,
		HashedPassword: user.HashedPassword,
		IsActive:       user.IsActive,
	}, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(errors.KindStorage, "user.get_by_id", "failed to find user", err)
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(errors.KindStorage, "user.get_by_email", "failed to find user", err)
	}
	return &user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]User, error) {
	var users []User
	if err := r.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, errors.Wrap(errors.KindStorage, "user.list", "failed to list users", err)
	}
	return users, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&User{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(errors.KindStorage, "user.count", "failed to count users", err)
	}
	return count, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uint, hashedPassword string) error {
	err := r.db.WithContext(ctx).Model(&User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"hashed_password": hashedPassword,
			"updated_at":      time.Now(),
		}).Error
	if err != nil {
		return errors.Wrap(errors.KindStorage, "user.update_password", "failed to update password", err)
	}
	return nil
}

// LinkAddress points the user at an address record.
func (r *UserRepository) LinkAddress(ctx context.Context, userID, addressID uint) error {
	err := r.db.WithContext(ctx).Model(&User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"address_id": addressID,
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		return errors.Wrap(errors.KindStorage, "user.link_address", "failed to link address", err)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&User{}).Error; err != nil {
		return errors.Wrap(errors.KindStorage, "user.delete", "failed to delete user", err)
	}
	return nil
}
