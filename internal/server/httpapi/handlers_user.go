package httpapi

import (
	"io"
	"mime/multipart"

	"expensio/internal/server/models"
	"expensio/internal/server/services"

	"github.com/gofiber/fiber/v2"
)

type userResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	HasProfile bool   `json:"hasProfileImage"`
}

type authResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		HasProfile: u.AvatarKey != "",
	}
}

// readUpload reads an optional multipart file into an Upload. A missing file
// is not an error.
func readUpload(c *fiber.Ctx, field string) (*services.Upload, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}
	return uploadFromHeader(header)
}

func uploadFromHeader(header *multipart.FileHeader) (*services.Upload, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	return &services.Upload{
		Data:        data,
		ContentType: header.Header.Get("Content-Type"),
	}, nil
}

func (s *Server) register(c *fiber.Ctx) error {
	avatar, err := readUpload(c, "profilePic")
	if err != nil {
		return s.fail(c, err)
	}

	user, token, err := s.users.Register(c.UserContext(), services.RegisterRequest{
		Name:     c.FormValue("name"),
		Email:    c.FormValue("email"),
		Password: c.FormValue("password"),
		Avatar:   avatar,
	})
	if err != nil {
		return s.fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(authResponse{User: toUserResponse(user), Token: token})
}

func (s *Server) login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	user, token, err := s.users.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(authResponse{User: toUserResponse(user), Token: token})
}

func (s *Server) profile(c *fiber.Ctx) error {
	user, err := s.users.Profile(c.UserContext(), currentUserID(c))
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(toUserResponse(user))
}

func (s *Server) updateProfile(c *fiber.Ctx) error {
	avatar, err := readUpload(c, "profilePic")
	if err != nil {
		return s.fail(c, err)
	}

	user, err := s.users.UpdateProfile(c.UserContext(), currentUserID(c), services.UpdateProfileRequest{
		Name:   c.FormValue("name"),
		Email:  c.FormValue("email"),
		Avatar: avatar,
	})
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(toUserResponse(user))
}

func (s *Server) profileImage(c *fiber.Ctx) error {
	data, contentType, err := s.users.ProfileImage(c.UserContext(), currentUserID(c))
	if err != nil {
		return s.fail(c, err)
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(data)
}
