package service

import (
	"context"
	"testing"

	"recipebox/internal/common"
	"recipebox/internal/domain/model"
	"recipebox/internal/domain/repository"
	"recipebox/internal/platform/database/dbtest"

	"github.com/jmoiron/sqlx"
)

type fixture struct {
	db      *sqlx.DB
	auth    *AuthService
	recipes *RecipeService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.New(t)
	users := repository.NewUserRepository(db)
	return &fixture{
		db:      db,
		auth:    NewAuthService(db, users),
		recipes: NewRecipeService(db, repository.NewRecipeRepository(db), users),
	}
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

// blindUserRepo hides existing rows from lookups, as if a concurrent signup
// committed between the existence check and the insert.
type blindUserRepo struct {
	repository.UserRepository
}

func (r *blindUserRepo) FindByUsername(context.Context, *sqlx.Tx, string) (*model.User, error) {
	return nil, common.ErrNotFound
}

type failingUserRepo struct {
	err error
}

func (r *failingUserRepo) Create(context.Context, *sqlx.Tx, *model.User) error { return r.err }

func (r *failingUserRepo) FindByUsername(context.Context, *sqlx.Tx, string) (*model.User, error) {
	return nil, r.err
}

func (r *failingUserRepo) FindByID(context.Context, *sqlx.Tx, int64) (*model.User, error) {
	return nil, r.err
}
