package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"expensio/internal/common"
	"expensio/internal/logging"
	"expensio/internal/server/auth"
	"expensio/internal/server/blob"
	"expensio/internal/server/config"
	"expensio/internal/server/models"
	"expensio/internal/server/repositories/repomanager"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// RegisterRequest carries the fields of a new account. Avatar is optional.
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
	Avatar   *Upload
}

// UpdateProfileRequest carries a partial profile update; empty fields keep
// the stored values. A new Avatar replaces the stored blob.
type UpdateProfileRequest struct {
	Name   string
	Email  string
	Avatar *Upload
}

// UserService handles registration, login, and profile management. A
// successful registration or login mints the JWT the client presents on
// subsequent requests.
type UserService struct {
	db                    *sql.DB
	repomanager           repomanager.RepositoryManager
	blobs                 blob.Store
	logger                logging.Logger
	jwtSecret             []byte
	tokenValidityDuration time.Duration
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, blobs blob.Store, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		db:                    db,
		repomanager:           m,
		blobs:                 blobs,
		logger:                logger.With("module", "users"),
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
	}
}

// Register creates a new user and returns it together with a signed token.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*models.User, string, error) {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, "", fmt.Errorf("%w: name, email and password are required", common.ErrorValidation)
	}

	repo := s.repomanager.Users(s.db)

	if _, err := repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, "", fmt.Errorf("%w: email %q", common.ErrorAlreadyExists, req.Email)
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, "", fmt.Errorf("error checking email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", common.ErrorInternal
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
	}

	if req.Avatar != nil {
		key, err := s.blobs.Put(ctx, req.Avatar.Data, req.Avatar.ContentType)
		if err != nil {
			return nil, "", fmt.Errorf("error storing profile image: %w", err)
		}
		user.AvatarKey = key
		user.AvatarContentType = req.Avatar.ContentType
	}

	user, err = repo.Create(ctx, user)
	if err != nil {
		return nil, "", fmt.Errorf("error creating user: %w", err)
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		return nil, "", common.ErrorInternal
	}

	return user, token, nil
}

// Login verifies the credentials and mints a token. Missing users and wrong
// passwords are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", common.ErrorUnauthorized
		}
		return nil, "", common.ErrorInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		return nil, "", common.ErrorInternal
	}

	return user, token, nil
}

func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error fetching user: %w", err)
	}

	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*models.User, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" && req.Email != user.Email {
		repo := s.repomanager.Users(s.db)
		if _, err := repo.GetByEmail(ctx, req.Email); err == nil {
			return nil, fmt.Errorf("%w: email %q", common.ErrorAlreadyExists, req.Email)
		} else if !errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("error checking email: %w", err)
		}
		user.Email = req.Email
	}

	oldKey := ""
	if req.Avatar != nil {
		key, err := s.blobs.Put(ctx, req.Avatar.Data, req.Avatar.ContentType)
		if err != nil {
			return nil, fmt.Errorf("error storing profile image: %w", err)
		}
		oldKey = user.AvatarKey
		user.AvatarKey = key
		user.AvatarContentType = req.Avatar.ContentType
	}

	repo := s.repomanager.Users(s.db)
	if err := repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("error updating user: %w", err)
	}

	if oldKey != "" {
		if err := s.blobs.Delete(ctx, oldKey); err != nil {
			s.logger.Warn(ctx, "failed to delete replaced profile image", "key", oldKey, "error", err)
		}
	}

	return user, nil
}

// ProfileImage returns the avatar bytes and content type.
func (s *UserService) ProfileImage(ctx context.Context, userID string) ([]byte, string, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	if user.AvatarKey == "" {
		return nil, "", fmt.Errorf("%w: no profile image", common.ErrorNotFound)
	}

	data, contentType, err := s.blobs.Get(ctx, user.AvatarKey)
	if err != nil {
		return nil, "", fmt.Errorf("error fetching profile image: %w", err)
	}
	if contentType == "" {
		contentType = user.AvatarContentType
	}

	return data, contentType, nil
}
