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
	errMissingCredentials = common.NewError(common.ErrValidation, "Username and password are required")
	errUsernameTaken      = common.NewError(common.ErrValidation, "Username already exists")
	errInvalidCredentials = common.NewError(common.ErrUnauthorized, "Invalid username or password")
	errUserNotFound       = common.NewError(common.ErrNotFound, "User not found")
)

type AuthService struct {
	db       *sqlx.DB
	userRepo repository.UserRepository
}

func NewAuthService(db *sqlx.DB, userRepo repository.UserRepository) *AuthService {
	return &AuthService{db: db, userRepo: userRepo}
}

type SignupRequest struct {
	Username string  `json:"username" validate:"required"`
	Password string  `json:"password" validate:"required"`
	ImageURL *string `json:"image_url"`
	Bio      *string `json:"bio"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Signup creates a user. The existence check and the insert share one
// transaction; the UNIQUE constraint settles any race between them.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*model.User, error) {
	if err := validate.Struct(req); err != nil {
		return nil, errMissingCredentials
	}

	user := &model.User{
		Username: req.Username,
		ImageURL: req.ImageURL,
		Bio:      req.Bio,
	}
	// Hash before opening the transaction; bcrypt is deliberately slow.
	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		_, err := s.userRepo.FindByUsername(ctx, tx, req.Username)
		if err == nil {
			return errUsernameTaken
		}
		if !errors.Is(err, common.ErrNotFound) {
			return err
		}
		if err := s.userRepo.Create(ctx, tx, user); err != nil {
			if errors.Is(err, common.ErrConflict) {
				return errUsernameTaken
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Login never reveals whether the username exists.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*model.User, error) {
	if req.Username == "" || req.Password == "" {
		return nil, errInvalidCredentials
	}

	user, err := s.userRepo.FindByUsername(ctx, nil, req.Username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !user.VerifyPassword(req.Password) {
		return nil, errInvalidCredentials
	}
	return user, nil
}

// CurrentUser loads the user a session points at.
func (s *AuthService) CurrentUser(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, errUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
