package httpapi

import (
	"expensio/internal/server/services"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) expenseStats(c *fiber.Ctx) error {
	start, err := parseDate(c.Query("startDate"))
	if err != nil {
		return s.fail(c, err)
	}
	end, err := parseDate(c.Query("endDate"))
	if err != nil {
		return s.fail(c, err)
	}

	result, err := s.stats.Overview(c.UserContext(), currentUserID(c), services.StatsQuery{
		Period:   c.Query("period"),
		Start:    start,
		End:      end,
		Category: c.Query("category"),
	})
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(result)
}
