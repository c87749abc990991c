package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"expensio/internal/common"
	"expensio/internal/server/auth"
	"expensio/internal/server/blob"
	"expensio/internal/server/config"
	"expensio/internal/server/models"

	"golang.org/x/crypto/bcrypt"
)

func newUserService(u *fakeUsersRepo, blobs blob.Store) *UserService {
	if blobs == nil {
		blobs = blob.NewMemoryStore()
	}
	cfg := &config.Config{SecretKey: "test-secret", TokenValidityDuration: time.Hour}
	return NewUserService(nil, &fakeRepoManager{u: u}, blobs, cfg, testLogger())
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()

	s := newUserService(&fakeUsersRepo{byEmail: map[string]*models.User{}}, nil)

	_, _, err := s.Register(context.Background(), RegisterRequest{Name: "a", Email: "a@b.c"})
	if !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRegister_Success(t *testing.T) {
	t.Parallel()

	repo := &fakeUsersRepo{byEmail: map[string]*models.User{}}
	s := newUserService(repo, nil)

	user, token, err := s.Register(context.Background(), RegisterRequest{
		Name: "Alice", Email: "alice@example.com", Password: "pw123456",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	if user.ID == "" || user.PasswordHash == "pw123456" {
		t.Fatalf("password not hashed: %#v", user)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pw123456")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}

	userID, err := auth.GetUserIDFromToken(token, []byte("test-secret"))
	if err != nil || userID != user.ID {
		t.Fatalf("token does not carry user id: %q %v", userID, err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	repo := &fakeUsersRepo{byEmail: map[string]*models.User{
		"alice@example.com": {ID: "u1", Email: "alice@example.com"},
	}}
	s := newUserService(repo, nil)

	_, _, err := s.Register(context.Background(), RegisterRequest{
		Name: "Alice", Email: "alice@example.com", Password: "pw",
	})
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}
}

func TestLogin_WrongCredentialsAreUniform(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt error: %v", err)
	}

	repo := &fakeUsersRepo{byEmail: map[string]*models.User{
		"alice@example.com": {ID: "u1", Email: "alice@example.com", PasswordHash: string(hash)},
	}}
	s := newUserService(repo, nil)

	// Unknown email and wrong password produce the same error.
	_, _, err = s.Login(context.Background(), "nobody@example.com", "right")
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("expected unauthorized for unknown email, got %v", err)
	}

	_, _, err = s.Login(context.Background(), "alice@example.com", "wrong")
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("expected unauthorized for wrong password, got %v", err)
	}

	user, token, err := s.Login(context.Background(), "alice@example.com", "right")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if user.ID != "u1" || token == "" {
		t.Fatalf("unexpected login result: %#v %q", user, token)
	}
}

func TestUpdateProfile_ReplacesAvatar(t *testing.T) {
	t.Parallel()

	blobs := blob.NewMemoryStore()
	oldKey, err := blobs.Put(context.Background(), []byte("old"), "image/png")
	if err != nil {
		t.Fatalf("seed blob error: %v", err)
	}

	repo := &fakeUsersRepo{
		byID: map[string]*models.User{
			"u1": {ID: "u1", Name: "Alice", Email: "alice@example.com", AvatarKey: oldKey},
		},
		byEmail: map[string]*models.User{},
	}
	s := newUserService(repo, blobs)

	user, err := s.UpdateProfile(context.Background(), "u1", UpdateProfileRequest{
		Avatar: &Upload{Data: []byte("new"), ContentType: "image/jpeg"},
	})
	if err != nil {
		t.Fatalf("UpdateProfile error: %v", err)
	}

	if user.AvatarKey == oldKey {
		t.Fatalf("expected a fresh avatar key")
	}
	if _, _, err := blobs.Get(context.Background(), oldKey); err == nil {
		t.Fatalf("expected old avatar blob to be deleted")
	}
	if user.Name != "Alice" || user.Email != "alice@example.com" {
		t.Fatalf("partial update clobbered fields: %#v", user)
	}
}

func TestProfileImage_Missing(t *testing.T) {
	t.Parallel()

	repo := &fakeUsersRepo{byID: map[string]*models.User{
		"u1": {ID: "u1"},
	}}
	s := newUserService(repo, nil)

	_, _, err := s.ProfileImage(context.Background(), "u1")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
