package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/pokedex-api/internal/apperror"
	"github.com/sakif/pokedex-api/internal/model"
)

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestCreateUser(t *testing.T) {
	db := newTestDB(t)

	u := &model.User{Email: "ash@example.com", PasswordHash: "$2a$04$hash"}
	if err := db.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	if u.ID == "" {
		t.Error("CreateUser() did not set ID")
	}
	if u.CreatedAt.IsZero() || u.UpdatedAt.IsZero() {
		t.Error("CreateUser() did not set timestamps")
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "ash@example.com")

	err := db.CreateUser(context.Background(), &model.User{Email: "ash@example.com", PasswordHash: "x"})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("CreateUser() duplicate error = %v, want ErrConflict", err)
	}
}

func TestCreateUser_EmailIsCaseSensitive(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "ash@example.com")

	if err := db.CreateUser(context.Background(), &model.User{Email: "Ash@example.com", PasswordHash: "x"}); err != nil {
		t.Fatalf("CreateUser() with different case error = %v", err)
	}
}

// =========================================================================
// GET TESTS
// =========================================================================

func TestGetUserByID(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "misty@example.com")

	got, err := db.GetUserByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if got.Email != "misty@example.com" {
		t.Errorf("Email = %q, want %q", got.Email, "misty@example.com")
	}
	if got.PasswordHash != created.PasswordHash {
		t.Errorf("PasswordHash = %q, want %q", got.PasswordHash, created.PasswordHash)
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUserByID(context.Background(), "nope")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("GetUserByID() error = %v, want ErrNotFound", err)
	}
}

func TestGetUserByEmail(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "brock@example.com")

	got, err := db.GetUserByEmail(context.Background(), "brock@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("ID = %q, want %q", got.ID, created.ID)
	}

	_, err = db.GetUserByEmail(context.Background(), "BROCK@example.com")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("GetUserByEmail() with other case error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// DELETE TESTS
// =========================================================================

func TestDeleteUser(t *testing.T) {
	db := newTestDB(t)
	u := createTestUser(t, db, "gary@example.com")

	if err := db.DeleteUser(context.Background(), u.ID); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}

	_, err := db.GetUserByID(context.Background(), u.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("GetUserByID() after delete error = %v, want ErrNotFound", err)
	}

	if err := db.DeleteUser(context.Background(), u.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("second DeleteUser() error = %v, want ErrNotFound", err)
	}
}
