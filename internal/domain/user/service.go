package user

import (
	"context"
	"errors"

	"todo-server-go/internal/domain/auth"
	platformerrors "todo-server-go/internal/platform/errors"
	"todo-server-go/internal/platform/storage"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUsernameTaken    = errors.New("this username is already taken")
	ErrEmailTaken       = errors.New("this email is already taken")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrInvalidRequest   = errors.New("invalid user or request")
)

// Repository is the persistence contract for user accounts.
type Repository interface {
	Create(ctx context.Context, user *storage.User) error
	GetByUsername(ctx context.Context, username string) (*storage.User, error)
	GetByEmail(ctx context.Context, email string) (*storage.User, error)
	GetByID(ctx context.Context, id uint) (*storage.User, error)
	List(ctx context.Context) ([]storage.User, error)
	UpdatePassword(ctx context.Context, id uint, hashedPassword string) error
	Delete(ctx context.Context, id uint) error
}

// CreateInput carries a new account's fields with the password still
// in plaintext; it is hashed here and never stored.
type CreateInput struct {
	Username    string
	Email       string
	FirstName   string
	LastName    string
	PhoneNumber string
	Password    string
}

// Service implements account management on top of the credential
// store and password hasher.
type Service struct {
	repo   Repository
	hasher *auth.PasswordHasher
}

func NewService(repo Repository, hasher *auth.PasswordHasher) *Service {
	return &Service{repo: repo, hasher: hasher}
}

// Create hashes the password and inserts the record. Uniqueness is
// not enforced here; the storage constraint has the final word (the
// API create_user contract).
func (s *Service) Create(ctx context.Context, input CreateInput) (*storage.User, error) {
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, platformerrors.Wrap(
			platformerrors.KindDomain, "user.create", "failed to hash password", err)
	}

	record := &storage.User{
		Username:       input.Username,
		Email:          input.Email,
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		PhoneNumber:    input.PhoneNumber,
		HashedPassword: hash,
		IsActive:       true,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Register is the browser-flow variant: it rejects duplicate
// usernames and emails and mismatched password confirmations before
// creating the account.
func (s *Service) Register(ctx context.Context, input CreateInput, passwordConfirm string) (*storage.User, error) {
	if input.Password != passwordConfirm {
		return nil, ErrPasswordMismatch
	}
	if existing, err := s.repo.GetByUsername(ctx, input.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrUsernameTaken
	}
	if input.Email != "" {
		if existing, err := s.repo.GetByEmail(ctx, input.Email); err != nil {
			return nil, err
		} else if existing != nil {
			return nil, ErrEmailTaken
		}
	}
	return s.Create(ctx, input)
}

// List returns all users; the hash field never serializes.
func (s *Service) List(ctx context.Context) ([]storage.User, error) {
	return s.repo.List(ctx)
}

// Get returns a user by id for the public profile endpoint.
func (s *Service) Get(ctx context.Context, id uint) (*storage.User, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrUserNotFound
	}
	return record, nil
}

// ChangePassword re-verifies the caller's username and current
// password before storing a new hash. Any mismatch yields
// ErrInvalidRequest without saying which check failed.
func (s *Service) ChangePassword(
	ctx context.Context,
	identity auth.Identity,
	username, currentPassword, newPassword string,
) error {
	identity, err := auth.RequireIdentity(identity)
	if err != nil {
		return err
	}

	record, err := s.repo.GetByID(ctx, identity.UserID)
	if err != nil {
		return err
	}
	if record == nil || record.Username != username {
		return ErrInvalidRequest
	}
	if !s.hasher.Verify(currentPassword, record.HashedPassword) {
		return ErrInvalidRequest
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return platformerrors.Wrap(
			platformerrors.KindDomain, "user.change_password", "failed to hash password", err)
	}
	return s.repo.UpdatePassword(ctx, record.ID, hash)
}

// DeleteAccount removes the caller's own account.
func (s *Service) DeleteAccount(ctx context.Context, identity auth.Identity) error {
	identity, err := auth.RequireIdentity(identity)
	if err != nil {
		return err
	}
	record, err := s.repo.GetByID(ctx, identity.UserID)
	if err != nil {
		return err
	}
	if record == nil {
		return ErrUserNotFound
	}
	return s.repo.Delete(ctx, identity.UserID)
}
