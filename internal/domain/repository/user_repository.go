package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"recipebox/internal/common"
	"recipebox/internal/domain/model"
	"recipebox/internal/platform/database"

	"github.com/jmoiron/sqlx"
)

// UserRepository methods accept an optional transaction; nil runs on the pool.
type UserRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, user *model.User) error
	FindByUsername(ctx context.Context, tx *sqlx.Tx, username string) (*model.User, error)
	FindByID(ctx context.Context, tx *sqlx.Tx, id int64) (*model.User, error)
}

type sqlUserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &sqlUserRepository{db: db}
}

const userColumns = `id, username, password_hash, image_url, bio`

func (r *sqlUserRepository) Create(ctx context.Context, tx *sqlx.Tx, user *model.User) error {
	q := queryer(r.db, tx)
	query := `INSERT INTO users (username, password_hash, image_url, bio)
	          VALUES (?, ?, ?, ?)
	          RETURNING id`
	err := q.QueryRowxContext(ctx, q.Rebind(query), user.Username, user.Password, user.ImageURL, user.Bio).Scan(&user.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("user %q already exists: %w", user.Username, common.ErrConflict)
		}
		return fmt.Errorf("userRepository.Create: %w", err)
	}
	return nil
}

func (r *sqlUserRepository) FindByUsername(ctx context.Context, tx *sqlx.Tx, username string) (*model.User, error) {
	q := queryer(r.db, tx)
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	user := &model.User{}
	if err := sqlx.GetContext(ctx, q, user, q.Rebind(query), username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("userRepository.FindByUsername: %w", err)
	}
	return user, nil
}

func (r *sqlUserRepository) FindByID(ctx context.Context, tx *sqlx.Tx, id int64) (*model.User, error) {
	q := queryer(r.db, tx)
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	user := &model.User{}
	if err := sqlx.GetContext(ctx, q, user, q.Rebind(query), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("userRepository.FindByID: %w", err)
	}
	return user, nil
}
