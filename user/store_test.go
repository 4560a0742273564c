package user

import (
	"errors"
	"os"
	"testing"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	f, err := os.CreateTemp("", "planner-user-*.db")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	f.Close()
	path := f.Name()
	t.Cleanup(func() { os.Remove(path) })

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_CreateAndGet(t *testing.T) {
	store := newTestStore(t)

	u := &User{Name: "Alice", Email: "alice@example.com", PasswordHash: "hash"}
	id, err := store.Create(u)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.Role != RoleUser {
		t.Errorf("Role = %q, want default USER", u.Role)
	}

	got, err := store.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Email != "alice@example.com" {
		t.Errorf("Email = %q, want alice@example.com", got.Email)
	}
}

func TestSQLiteStore_FindByEmail(t *testing.T) {
	store := newTestStore(t)

	u := &User{Name: "Bob", Email: "bob@example.com", PasswordHash: "hash"}
	if _, err := store.Create(u); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.FindByEmail("bob@example.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("found %q, want %q", got.ID, u.ID)
	}

	if _, err := store.FindByEmail("nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_DuplicateEmail(t *testing.T) {
	store := newTestStore(t)

	u := &User{Name: "Carol", Email: "carol@example.com", PasswordHash: "hash"}
	if _, err := store.Create(u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	dup := &User{Name: "Carol 2", Email: "carol@example.com", PasswordHash: "hash"}
	if _, err := store.Create(dup); err == nil {
		t.Fatal("expected error creating duplicate email")
	}
}

func TestSQLiteStore_Update(t *testing.T) {
	store := newTestStore(t)

	u := &User{Name: "Dave", Email: "dave@example.com", PasswordHash: "hash"}
	if _, err := store.Create(u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	u.Name = "David"
	if err := store.Update(u); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := store.Get(u.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "David" {
		t.Errorf("Name = %q, want David", got.Name)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	u := &User{PasswordHash: hash}
	if !u.CheckPassword("s3cret") {
		t.Error("correct password rejected")
	}
	if u.CheckPassword("wrong") {
		t.Error("wrong password accepted")
	}
}
