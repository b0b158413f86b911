// Package postgres stores registered users as JSON documents in PostgreSQL.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dukerupert/cadastro/internal/domain"
)

// DBTX is the subset of pgxpool.Pool the store needs.
type DBTX interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// UserStore implements domain.UserStore on the user_documents table.
type UserStore struct {
	db DBTX
}

// Compile-time check to ensure UserStore implements domain.UserStore.
var _ domain.UserStore = (*UserStore)(nil)

// NewUserStore creates a UserStore over db.
func NewUserStore(db DBTX) *UserStore {
	return &UserStore{db: db}
}

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 100

const insertUserDocument = `
INSERT INTO user_documents (id, doc)
VALUES ($1, $2)
RETURNING created_at`

const listUserDocuments = `
SELECT id, doc, created_at
FROM user_documents
ORDER BY created_at DESC
LIMIT $1`

// Create stores user as a new document. The id and created_at are assigned
// here and by the server, whatever the caller set.
func (s *UserStore) Create(ctx context.Context, user domain.User) (string, error) {
	const op = "postgres.user.create"

	id := uuid.New()
	user.ID = ""
	user.CreatedAt = time.Time{}

	doc, err := json.Marshal(user)
	if err != nil {
		return "", domain.Internal(err, op, "failed to encode user document")
	}

	var createdAt time.Time
	if err := s.db.QueryRow(ctx, insertUserDocument, id, doc).Scan(&createdAt); err != nil {
		return "", mapError(err, op)
	}

	return id.String(), nil
}

// List returns the most recent users, newest first.
func (s *UserStore) List(ctx context.Context, limit int) ([]domain.User, error) {
	const op = "postgres.user.list"

	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.Query(ctx, listUserDocuments, limit)
	if err != nil {
		return nil, mapError(err, op)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		var (
			id        uuid.UUID
			doc       []byte
			createdAt time.Time
		)
		if err := rows.Scan(&id, &doc, &createdAt); err != nil {
			return nil, mapError(err, op)
		}

		var u domain.User
		if err := json.Unmarshal(doc, &u); err != nil {
			return nil, domain.Internal(err, op, "failed to decode user document")
		}
		u.ID = id.String()
		u.CreatedAt = createdAt
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, op)
	}

	return users, nil
}

// mapError classifies a database error into a domain error code.
func mapError(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "42501", pgErr.Code == "28000", pgErr.Code == "28P01":
			return domain.Forbidden(err, op, "permission denied")
		case strings.HasPrefix(pgErr.Code, "08"),
			pgErr.Code == "53300",
			pgErr.Code == "57P01", pgErr.Code == "57P02", pgErr.Code == "57P03":
			return domain.Unavailable(err, op, "database unavailable")
		}
		return domain.Internal(err, op, "database error")
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || pgconn.Timeout(err) {
		return domain.Unavailable(err, op, "database timeout")
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return domain.Unavailable(err, op, "database unreachable")
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return domain.Unavailable(err, op, "database unreachable")
	}

	return domain.Internal(err, op, "database error")
}
