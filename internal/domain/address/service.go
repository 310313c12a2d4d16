package address

import (
	"context"

	"todo-server-go/internal/domain/auth"
	platformerrors "todo-server-go/internal/platform/errors"
	"todo-server-go/internal/platform/storage"
)

// Repository is the persistence contract for addresses plus the user
// link update.
type Repository interface {
	Create(ctx context.Context, address *storage.Address) error
	GetByID(ctx context.Context, id uint) (*storage.Address, error)
}

// UserLinker points a user record at its address.
type UserLinker interface {
	LinkAddress(ctx context.Context, userID, addressID uint) error
}

// Input carries the writable address fields.
type Input struct {
	Address1   string
	Address2   string
	City       string
	State      string
	Country    string
	PostalCode string
	AptNum     string
}

type Service struct {
	repo  Repository
	users UserLinker
}

func NewService(repo Repository, users UserLinker) *Service {
	return &Service{repo: repo, users: users}
}

// CreateForUser stores the address and links it to the caller's
// profile.
func (s *Service) CreateForUser(ctx context.Context, identity auth.Identity, input Input) (*storage.Address, error) {
	identity, err := auth.RequireIdentity(identity)
	if err != nil {
		return nil, err
	}

	record := &storage.Address{
		Address1:   input.Address1,
		Address2:   input.Address2,
		City:       input.City,
		State:      input.State,
		Country:    input.Country,
		PostalCode: input.PostalCode,
		AptNum:     input.AptNum,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, platformerrors.Wrap(
			platformerrors.KindDomain, "address.create", "failed to create address", err)
	}
	if err := s.users.LinkAddress(ctx, identity.UserID, record.ID); err != nil {
		return nil, err
	}
	return record, nil
}
