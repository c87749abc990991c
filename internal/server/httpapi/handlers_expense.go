package httpapi

import (
	"time"

	"expensio/internal/server/models"
	"expensio/internal/server/repositories/expenses"
	"expensio/internal/server/services"

	"github.com/gofiber/fiber/v2"
)

// expenseResponse is the wire shape of an expense. The stored receipt is
// exposed as a presence flag; the bytes are served by the receipt endpoint.
type expenseResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	Receipt     bool      `json:"receipt"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toExpenseResponse(e *models.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		Title:       e.Title,
		Amount:      e.Amount,
		Category:    e.Category,
		Description: e.Description,
		Date:        e.Date,
		Receipt:     e.HasReceipt(),
		CreatedAt:   e.CreatedAt,
	}
}

func toExpenseResponses(items []*models.Expense) []expenseResponse {
	result := make([]expenseResponse, 0, len(items))
	for _, e := range items {
		result = append(result, toExpenseResponse(e))
	}
	return result
}

func (s *Server) createExpense(c *fiber.Ctx) error {
	amount, err := parseAmount(c.FormValue("amount"))
	if err != nil {
		return s.fail(c, err)
	}
	date, err := parseDate(c.FormValue("date"))
	if err != nil {
		return s.fail(c, err)
	}
	receipt, err := readUpload(c, "receipt")
	if err != nil {
		return s.fail(c, err)
	}

	expense, err := s.expenses.Create(c.UserContext(), currentUserID(c), services.CreateExpenseRequest{
		Title:       c.FormValue("title"),
		Amount:      amount,
		Category:    c.FormValue("category"),
		Description: c.FormValue("description"),
		Date:        date,
		Receipt:     receipt,
	})
	if err != nil {
		return s.fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(toExpenseResponse(expense))
}

// parseExpenseFilter builds the list/report filter from the query string.
func parseExpenseFilter(c *fiber.Ctx) (expenses.Filter, error) {
	start, err := parseDate(c.Query("startDate"))
	if err != nil {
		return expenses.Filter{}, err
	}
	end, err := parseDate(c.Query("endDate"))
	if err != nil {
		return expenses.Filter{}, err
	}

	return expenses.Filter{
		Category:  c.Query("category"),
		Start:     start,
		End:       end,
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}, nil
}

func (s *Server) listExpenses(c *fiber.Ctx) error {
	filter, err := parseExpenseFilter(c)
	if err != nil {
		return s.fail(c, err)
	}

	items, err := s.expenses.Query(c.UserContext(), currentUserID(c), filter)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(toExpenseResponses(items))
}

func (s *Server) getExpense(c *fiber.Ctx) error {
	expense, err := s.expenses.Get(c.UserContext(), currentUserID(c), c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(toExpenseResponse(expense))
}

func (s *Server) updateExpense(c *fiber.Ctx) error {
	amount, err := parseAmount(c.FormValue("amount"))
	if err != nil {
		return s.fail(c, err)
	}
	date, err := parseDate(c.FormValue("date"))
	if err != nil {
		return s.fail(c, err)
	}
	receipt, err := readUpload(c, "receipt")
	if err != nil {
		return s.fail(c, err)
	}

	req := services.UpdateExpenseRequest{
		Title:    c.FormValue("title"),
		Amount:   amount,
		Category: c.FormValue("category"),
		Date:     date,
		Receipt:  receipt,
	}

	// Description is cleared by sending an explicit empty value; an absent
	// field keeps the stored text.
	if form, err := c.MultipartForm(); err == nil {
		if values, ok := form.Value["description"]; ok && len(values) > 0 {
			req.Description = &values[0]
		}
	}

	expense, err := s.expenses.Update(c.UserContext(), currentUserID(c), c.Params("id"), req)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(toExpenseResponse(expense))
}

func (s *Server) deleteExpense(c *fiber.Ctx) error {
	if err := s.expenses.Delete(c.UserContext(), currentUserID(c), c.Params("id")); err != nil {
		return s.fail(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) expenseReceipt(c *fiber.Ctx) error {
	data, contentType, err := s.expenses.Receipt(c.UserContext(), currentUserID(c), c.Params("id"))
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

func (s *Server) expenseReport(c *fiber.Ctx) error {
	filter, err := parseExpenseFilter(c)
	if err != nil {
		return s.fail(c, err)
	}

	doc, err := s.expenses.Report(c.UserContext(), currentUserID(c), filter)
	if err != nil {
		return s.fail(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="expense-report.pdf"`)
	return c.Send(doc)
}
