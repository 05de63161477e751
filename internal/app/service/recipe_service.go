package service

import (
	"context"
	"errors"
	"fmt"

	"recipebox/internal/common"
	"recipebox/internal/domain/model"
	"recipebox/internal/domain/repository"
	"recipebox/internal/platform/database"

	"github.com/jmoiron/sqlx"
)

var (
	errInvalidRecipe = common.NewError(common.ErrValidation, "Invalid recipe data")
	errNoSessionUser = common.NewError(common.ErrUnauthorized, "Unauthorized")
)

type RecipeService struct {
	db         *sqlx.DB
	recipeRepo repository.RecipeRepository
	userRepo   repository.UserRepository
}

func NewRecipeService(db *sqlx.DB, recipeRepo repository.RecipeRepository, userRepo repository.UserRepository) *RecipeService {
	return &RecipeService{db: db, recipeRepo: recipeRepo, userRepo: userRepo}
}

// CreateRecipeRequest never carries an owner; it comes from the session.
type CreateRecipeRequest struct {
	Title             string `json:"title" validate:"required"`
	Instructions      string `json:"instructions" validate:"required,min=50"`
	MinutesToComplete *int   `json:"minutes_to_complete"`
}

func (s *RecipeService) ListRecipes(ctx context.Context) ([]model.Recipe, error) {
	recipes, err := s.recipeRepo.ListWithOwners(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, nil
}

func (s *RecipeService) CreateRecipe(ctx context.Context, userID int64, req CreateRecipeRequest) (*model.Recipe, error) {
	if err := validate.Struct(req); err != nil {
		return nil, errInvalidRecipe
	}

	recipe := &model.Recipe{
		Title:             req.Title,
		Instructions:      req.Instructions,
		MinutesToComplete: req.MinutesToComplete,
		UserID:            userID,
	}

	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := s.userRepo.FindByID(ctx, tx, userID); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return errNoSessionUser
			}
			return err
		}
		if err := s.recipeRepo.Create(ctx, tx, recipe); err != nil {
			if errors.Is(err, common.ErrConflict) {
				return errInvalidRecipe
			}
			return err
		}
		// Read back through the owner join so the response matches the list.
		created, err := s.recipeRepo.FindByID(ctx, tx, recipe.ID)
		if err != nil {
			return err
		}
		recipe = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recipe, nil
}
