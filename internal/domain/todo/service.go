package todo

import (
	"context"
	"errors"

	"todo-server-go/internal/domain/auth"
	platformerrors "todo-server-go/internal/platform/errors"
	"todo-server-go/internal/platform/storage"
)

// ErrItemNotFound covers both a missing todo and a todo owned by
// someone else; callers cannot tell which.
var (
	ErrItemNotFound    = errors.New("item not found")
	ErrInvalidPriority = errors.New("priority must be between 1 and 5")
)

// Repository is the persistence contract for todos.
type Repository interface {
	Create(ctx context.Context, todo *storage.Todo) error
	GetByID(ctx context.Context, id, ownerID uint) (*storage.Todo, error)
	ListAll(ctx context.Context) ([]storage.Todo, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]storage.Todo, error)
	Update(ctx context.Context, todo *storage.Todo) error
	Delete(ctx context.Context, id, ownerID uint) error
}

// Input carries the writable todo fields.
type Input struct {
	Title       string
	Description string
	Priority    int
	Completed   bool
}

// Service implements the todo operations. Every mutating or
// owner-scoped operation passes through the access gate before
// touching storage.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListAll returns every todo regardless of owner, for the public
// listing endpoint.
func (s *Service) ListAll(ctx context.Context) ([]storage.Todo, error) {
	return s.repo.ListAll(ctx)
}

// ListFor returns the caller's todos.
func (s *Service) ListFor(ctx context.Context, identity auth.Identity) ([]storage.Todo, error) {
	identity, err := auth.RequireIdentity(identity)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByOwner(ctx, identity.UserID)
}

// Get returns a single todo owned by the caller.
func (s *Service) Get(ctx context.Context, identity auth.Identity, id uint) (*storage.Todo, error) {
	identity, err := auth.RequireIdentity(identity)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.GetByID(ctx, id, identity.UserID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	return item, nil
}

// Create stores a new todo owned by the caller.
func (s *Service) Create(ctx context.Context, identity auth.Identity, input Input) (*storage.Todo, error) {
	identity, err := auth.RequireIdentity(identity)
	if err != nil {
		return nil, err
	}
	if input.Priority < 1 || input.Priority > 5 {
		return nil, ErrInvalidPriority
	}

	item := &storage.Todo{
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		Completed:   input.Completed,
		OwnerID:     identity.UserID,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, platformerrors.Wrap(
			platformerrors.KindDomain, "todo.create", "failed to create todo", err)
	}
	return item, nil
}

// Update rewrites an existing todo owned by the caller.
func (s *Service) Update(ctx context.Context, identity auth.Identity, id uint, input Input) error {
	identity, err := auth.RequireIdentity(identity)
	if err != nil {
		return err
	}
	if input.Priority < 1 || input.Priority > 5 {
		return ErrInvalidPriority
	}

	item, err := s.repo.GetByID(ctx, id, identity.UserID)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrItemNotFound
	}

	item.Title = input.Title
	item.Description = input.Description
	item.Priority = input.Priority
	item.Completed = input.Completed
	return s.repo.Update(ctx, item)
}

// SetCompleted toggles the completion flag; used by the browser flow.
func (s *Service) SetCompleted(ctx context.Context, identity auth.Identity, id uint, completed bool) error {
	identity, err := auth.RequireIdentity(identity)
	if err != nil {
		return err
	}
	item, err := s.repo.GetByID(ctx, id, identity.UserID)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrItemNotFound
	}
	item.Completed = completed
	return s.repo.Update(ctx, item)
}

// Delete removes a todo owned by the caller.
func (s *Service) Delete(ctx context.Context, identity auth.Identity, id uint) error {
	identity, err := auth.RequireIdentity(identity)
	if err != nil {
		return err
	}
	item, err := s.repo.GetByID(ctx, id, identity.UserID)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrItemNotFound
	}
	return s.repo.Delete(ctx, id, identity.UserID)
}
