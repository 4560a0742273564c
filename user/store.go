package user

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL DEFAULT 'USER',
	created_at    DATETIME NOT NULL,
	deleted_at    DATETIME
);
`

// SQLiteStore persists users in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the users table exists. The caller is responsible for calling Close.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	db.SetMaxOpenConns(1) // prevent SQLITE_BUSY
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database connection.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Create persists a new user and sets its ID and CreatedAt.
func (s *SQLiteStore) Create(u *User) (string, error) {
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now().UTC()
	if u.Role == "" {
		u.Role = RoleUser
	}

	_, err := s.db.Exec(`
		INSERT INTO users (id, name, email, password_hash, role, created_at, deleted_at)
		VALUES (?,?,?,?,?,?,?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.CreatedAt, nullTime(u.DeletedAt),
	)
	if err != nil {
		return "", fmt.Errorf("insert user: %w", err)
	}
	return u.ID, nil
}

// Get retrieves a user by ID.
func (s *SQLiteStore) Get(id string) (*User, error) {
	row := s.db.QueryRow(
		`SELECT id, name, email, password_hash, role, created_at, deleted_at
		 FROM users WHERE id=?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return u, err
}

// FindByEmail retrieves a user by email address.
func (s *SQLiteStore) FindByEmail(email string) (*User, error) {
	row := s.db.QueryRow(
		`SELECT id, name, email, password_hash, role, created_at, deleted_at
		 FROM users WHERE email=?`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	return u, err
}

// Update saves changes to an existing user.
func (s *SQLiteStore) Update(u *User) error {
	res, err := s.db.Exec(`
		UPDATE users SET name=?, email=?, password_hash=?, role=?, deleted_at=? WHERE id=?`,
		u.Name, u.Email, u.PasswordHash, u.Role, nullTime(u.DeletedAt), u.ID,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("user %s: %w", u.ID, ErrNotFound)
	}
	return nil
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	var deletedAt sql.NullTime
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		u.DeletedAt = &deletedAt.Time
	}
	return &u, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
