package storage

import (
	"context"

	"gorm.io/gorm"

	"todo-server-go/internal/platform/errors"
)

// TodoRepository persists todos. Ownership-scoped reads filter on
// owner_id so a missing row and a foreign row are indistinguishable.
type TodoRepository struct {
	db *gorm.DB
}

func NewTodoRepository(db *gorm.DB) *TodoRepository {
	return &TodoRepository{db: db}
}

func (r *TodoRepository) Create(ctx context.Context, todo *Todo) error {
	if err := r.db.WithContext(ctx).Create(todo).Error; err != nil {
		return errors.Wrap(errors.KindStorage, "todo.create", "failed to create todo", err)
	}
	return nil
}

// GetByID returns the todo only when it belongs to ownerID; (nil, nil)
// otherwise.
func (r *TodoRepository) GetByID(ctx context.Context, id, ownerID uint) (*Todo, error) {
	var todo Todo
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Where("owner_id = ?", ownerID).
		First(&todo).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(errors.KindStorage, "todo.get_by_id", "failed to find todo", err)
	}
	return &todo, nil
}

func (r *TodoRepository) ListAll(ctx context.Context) ([]Todo, error) {
	var todos []Todo
	if err := r.db.WithContext(ctx).Find(&todos).Error; err != nil {
		return nil, errors.Wrap(errors.KindStorage, "todo.list_all", "failed to list todos", err)
	}
	return todos, nil
}

func (r *TodoRepository) ListByOwner(ctx context.Context, ownerID uint) ([]Todo, error) {
	var todos []Todo
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Find(&todos).Error; err != nil {
		return nil, errors.Wrap(errors.KindStorage, "todo.list_by_owner", "failed to list todos", err)
	}
	return todos, nil
}

func (r *TodoRepository) Update(ctx context.Context, todo *Todo) error {
	if err := r.db.WithContext(ctx).Save(todo).Error; err != nil {
		return errors.Wrap(errors.KindStorage, "todo.update", "failed to update todo", err)
	}
	return nil
}

func (r *TodoRepository) Delete(ctx context.Context, id, ownerID uint) error {
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Where("owner_id = ?", ownerID).
		Delete(&Todo{}).Error
	if err != nil {
		return errors.Wrap(errors.KindStorage, "todo.delete", "failed to delete todo", err)
	}
	return nil
}

// Count returns the total number of todos across all users; it backs
// the system status endpoint.
func (r *TodoRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&Todo{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(errors.KindStorage, "todo.count", "failed to count todos", err)
	}
	return count, nil
}
