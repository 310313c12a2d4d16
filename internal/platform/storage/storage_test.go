package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:test-%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&User{}, &Todo{}, &Address{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func TestUserRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	user := &User{
		Username:       "alice",
		Email:          "alice@example.com",
		FirstName:      "Alice",
		LastName:       "Smith",
		HashedPassword: "$2a$12$fakehash",
		IsActive:       true,
	}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("expected assigned user id")
	}

	got, err := repo.GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetByUsername error: %v", err)
	}
	if got == nil || got.ID != user.ID {
		t.Fatalf("unexpected user: %+v", got)
	}

	// Lookup is case sensitive.
	got, err = repo.GetByUsername(ctx, "Alice")
	if err != nil {
		t.Fatalf("GetByUsername error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for case-mismatched username, got %+v", got)
	}

	missing, err := repo.GetByUsername(ctx, "ghost")
	if err != nil {
		t.Fatalf("GetByUsername error: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing user, got %+v", missing)
	}

	if err := repo.UpdatePassword(ctx, user.ID, "$2a$12$newhash"); err != nil {
		t.Fatalf("UpdatePassword error: %v", err)
	}
	got, _ = repo.GetByID(ctx, user.ID)
	if got.HashedPassword != "$2a$12$newhash" {
		t.Fatalf("password not updated: %q", got.HashedPassword)
	}

	if err := repo.Delete(ctx, user.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	got, err = repo.GetByID(ctx, user.ID)
	if err != nil || got != nil {
		t.Fatalf("expected user gone, got %+v err %v", got, err)
	}
}

func TestTodoRepositoryOwnership(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewTodoRepository(db)

	owned := &Todo{Title: "write report", Priority: 3, OwnerID: 1}
	foreign := &Todo{Title: "other user todo", Priority: 1, OwnerID: 2}
	for _, todo := range []*Todo{owned, foreign} {
		if err := repo.Create(ctx, todo); err != nil {
			t.Fatalf("Create error: %v", err)
		}
	}

	got, err := repo.GetByID(ctx, owned.ID, 1)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got == nil || got.Title != "write report" {
		t.Fatalf("unexpected todo: %+v", got)
	}

	// Foreign rows look like missing rows.
	got, err = repo.GetByID(ctx, foreign.ID, 1)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for foreign todo, got %+v", got)
	}

	mine, err := repo.ListByOwner(ctx, 1)
	if err != nil {
		t.Fatalf("ListByOwner error: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("expected 1 owned todo, got %d", len(mine))
	}

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 todos, got %d", len(all))
	}

	// Deleting a foreign todo is a no-op.
	if err := repo.Delete(ctx, foreign.ID, 1); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected foreign todo untouched, count %d", count)
	}

	if err := repo.Delete(ctx, owned.ID, 1); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	count, _ = repo.Count(ctx)
	if count != 1 {
		t.Fatalf("expected 1 todo after delete, got %d", count)
	}
}

func TestAddressRepositoryLink(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepository(db)
	addresses := NewAddressRepository(db)

	user := &User{Username: "bob", HashedPassword: "x", IsActive: true}
	if err := users.Create(ctx, user); err != nil {
		t.Fatalf("Create user error: %v", err)
	}

	address := &Address{
		Address1:   "1 Main St",
		City:       "Springfield",
		Country:    "US",
		PostalCode: "12345",
	}
	if err := addresses.Create(ctx, address); err != nil {
		t.Fatalf("Create address error: %v", err)
	}
	if err := users.LinkAddress(ctx, user.ID, address.ID); err != nil {
		t.Fatalf("LinkAddress error: %v", err)
	}

	got, err := users.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.AddressID == nil || *got.AddressID != address.ID {
		t.Fatalf("address not linked: %+v", got)
	}
}
