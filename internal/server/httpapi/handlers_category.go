package httpapi

import (
	"expensio/internal/server/services"

	"github.com/gofiber/fiber/v2"
)

type categoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

func (s *Server) createCategory(c *fiber.Ctx) error {
	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	category, err := s.categories.Create(c.UserContext(), currentUserID(c), services.CreateCategoryRequest{
		Name:  req.Name,
		Color: req.Color,
		Icon:  req.Icon,
	})
	if err != nil {
		return s.fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(category)
}

func (s *Server) listCategories(c *fiber.Ctx) error {
	items, err := s.categories.List(c.UserContext(), currentUserID(c))
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(items)
}

func (s *Server) updateCategory(c *fiber.Ctx) error {
	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	category, err := s.categories.Update(c.UserContext(), currentUserID(c), c.Params("id"), services.UpdateCategoryRequest{
		Name:  req.Name,
		Color: req.Color,
		Icon:  req.Icon,
	})
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(category)
}

func (s *Server) deleteCategory(c *fiber.Ctx) error {
	if err := s.categories.Delete(c.UserContext(), currentUserID(c), c.Params("id")); err != nil {
		return s.fail(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
