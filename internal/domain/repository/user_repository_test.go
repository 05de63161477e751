package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"

	"recipebox/internal/common"
	"recipebox/internal/common/security"
	"recipebox/internal/domain/model"
	"recipebox/internal/platform/database/dbtest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return sqlx.NewDb(db, "pgx"), mock
}

// bcryptOf matches a stored hash that verifies against plain but is not plain.
type bcryptOf struct{ plain string }

func (b bcryptOf) Match(v driver.Value) bool {
	s, ok := v.(string)
	return ok && s != b.plain && security.CheckPasswordHash(b.plain, s)
}

func newUser(t *testing.T, username, password string) *model.User {
	t.Helper()
	u := &model.User{Username: username}
	require.NoError(t, u.SetPassword(password))
	return u
}

const insertUserRe = `(?s)^INSERT\s+INTO\s+users\s*\(username,\s*password_hash,\s*image_url,\s*bio\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*RETURNING\s+id$`

func TestUserCreate_StoresHashNotPlaintext(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(insertUserRe).
		WithArgs("chef1", bcryptOf{"hunter22"}, nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	u := newUser(t, "chef1", "hunter22")
	require.NoError(t, repo.Create(context.Background(), nil, u))
	assert.Equal(t, int64(1), u.ID)
}

func TestUserCreate_UniqueViolationIsConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(insertUserRe).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), nil, newUser(t, "chef1", "hunter22"))
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestUserCreate_DBError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(insertUserRe).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), nil, newUser(t, "chef1", "hunter22"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrConflict)
	assert.Contains(t, err.Error(), "db down")
}

func TestUserFindByUsername_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`(?s)^SELECT\s+id,\s*username,\s*password_hash,\s*image_url,\s*bio\s+FROM\s+users\s+WHERE\s+username\s*=\s*\$1$`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "image_url", "bio"}))

	_, err := repo.FindByUsername(context.Background(), nil, "ghost")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestUserFindByID_Found(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	hash, err := security.HashPassword("hunter22")
	require.NoError(t, err)
	mock.ExpectQuery(`(?s)^SELECT\s+.+\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "image_url", "bio"}).
			AddRow(int64(3), "chef3", hash, "http://img", nil))

	u, err := repo.FindByID(context.Background(), nil, 3)
	require.NoError(t, err)
	assert.Equal(t, "chef3", u.Username)
	require.NotNil(t, u.ImageURL)
	assert.Equal(t, "http://img", *u.ImageURL)
	assert.Nil(t, u.Bio)
	assert.True(t, u.VerifyPassword("hunter22"))
}

func TestUserRepository_SQLiteRoundTrip(t *testing.T) {
	db := dbtest.New(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	bio := "Soup person"
	u := newUser(t, "chef1", "hunter22")
	u.Bio = &bio
	require.NoError(t, repo.Create(ctx, nil, u))
	assert.NotZero(t, u.ID)

	byName, err := repo.FindByUsername(ctx, nil, "chef1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)
	assert.Equal(t, "Soup person", *byName.Bio)
	assert.Nil(t, byName.ImageURL)
	assert.True(t, byName.VerifyPassword("hunter22"))

	byID, err := repo.FindByID(ctx, nil, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "chef1", byID.Username)

	err = repo.Create(ctx, nil, newUser(t, "chef1", "other-password"))
	assert.ErrorIs(t, err, common.ErrConflict)

	_, err = repo.FindByID(ctx, nil, u.ID+100)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
