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

// RecipeRepository loads owners with an explicit join so callers get fully
// assembled recipes without follow-up queries.
type RecipeRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, recipe *model.Recipe) error
	FindByID(ctx context.Context, tx *sqlx.Tx, id int64) (*model.Recipe, error)
	ListWithOwners(ctx context.Context, tx *sqlx.Tx) ([]model.Recipe, error)
}

type sqlRecipeRepository struct {
	db *sqlx.DB
}

func NewRecipeRepository(db *sqlx.DB) RecipeRepository {
	return &sqlRecipeRepository{db: db}
}

const recipeWithOwnerSelect = `SELECT r.id, r.title, r.instructions, r.minutes_to_complete, r.user_id,
	       u.username AS owner_username, u.image_url AS owner_image_url, u.bio AS owner_bio
	FROM recipes r
	JOIN users u ON u.id = r.user_id`

type recipeRow struct {
	ID                int64   `db:"id"`
	Title             string  `db:"title"`
	Instructions      string  `db:"instructions"`
	MinutesToComplete *int    `db:"minutes_to_complete"`
	UserID            int64   `db:"user_id"`
	OwnerUsername     string  `db:"owner_username"`
	OwnerImageURL     *string `db:"owner_image_url"`
	OwnerBio          *string `db:"owner_bio"`
}

func (row recipeRow) toModel() model.Recipe {
	return model.Recipe{
		ID:                row.ID,
		Title:             row.Title,
		Instructions:      row.Instructions,
		MinutesToComplete: row.MinutesToComplete,
		UserID:            row.UserID,
		User: &model.User{
			ID:       row.UserID,
			Username: row.OwnerUsername,
			ImageURL: row.OwnerImageURL,
			Bio:      row.OwnerBio,
		},
	}
}

func (r *sqlRecipeRepository) Create(ctx context.Context, tx *sqlx.Tx, recipe *model.Recipe) error {
	q := queryer(r.db, tx)
	query := `INSERT INTO recipes (title, instructions, minutes_to_complete, user_id)
	          VALUES (?, ?, ?, ?)
	          RETURNING id`
	err := q.QueryRowxContext(ctx, q.Rebind(query), recipe.Title, recipe.Instructions, recipe.MinutesToComplete, recipe.UserID).Scan(&recipe.ID)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return fmt.Errorf("recipe owner %d does not exist: %w", recipe.UserID, common.ErrConflict)
		}
		return fmt.Errorf("recipeRepository.Create: %w", err)
	}
	return nil
}

func (r *sqlRecipeRepository) FindByID(ctx context.Context, tx *sqlx.Tx, id int64) (*model.Recipe, error) {
	q := queryer(r.db, tx)
	var row recipeRow
	if err := sqlx.GetContext(ctx, q, &row, q.Rebind(recipeWithOwnerSelect+` WHERE r.id = ?`), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("recipeRepository.FindByID: %w", err)
	}
	recipe := row.toModel()
	return &recipe, nil
}

func (r *sqlRecipeRepository) ListWithOwners(ctx context.Context, tx *sqlx.Tx) ([]model.Recipe, error) {
	q := queryer(r.db, tx)
	var rows []recipeRow
	if err := sqlx.SelectContext(ctx, q, &rows, q.Rebind(recipeWithOwnerSelect+` ORDER BY r.id`)); err != nil {
		return nil, fmt.Errorf("recipeRepository.ListWithOwners: %w", err)
	}
	recipes := make([]model.Recipe, 0, len(rows))
	for _, row := range rows {
		recipes = append(recipes, row.toModel())
	}
	return recipes, nil
}
