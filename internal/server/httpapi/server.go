// Package httpapi exposes the application services over a JSON HTTP API.
package httpapi

import (
	"context"
	"time"

	"expensio/internal/logging"
	"expensio/internal/server/models"
	"expensio/internal/server/repositories/expenses"
	"expensio/internal/server/services"

	"github.com/gofiber/fiber/v2"
)

// Service interfaces are declared here, on the consumer side, so handlers can
// be tested against fakes.

type UserService interface {
	Register(ctx context.Context, req services.RegisterRequest) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	Profile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, req services.UpdateProfileRequest) (*models.User, error)
	ProfileImage(ctx context.Context, userID string) ([]byte, string, error)
}

type ExpenseService interface {
	Create(ctx context.Context, userID string, req services.CreateExpenseRequest) (*models.Expense, error)
	Get(ctx context.Context, userID, id string) (*models.Expense, error)
	Query(ctx context.Context, userID string, f expenses.Filter) ([]*models.Expense, error)
	Update(ctx context.Context, userID, id string, req services.UpdateExpenseRequest) (*models.Expense, error)
	Delete(ctx context.Context, userID, id string) error
	Receipt(ctx context.Context, userID, id string) ([]byte, string, error)
	Report(ctx context.Context, userID string, f expenses.Filter) ([]byte, error)
}

type CategoryService interface {
	Create(ctx context.Context, userID string, req services.CreateCategoryRequest) (*models.Category, error)
	List(ctx context.Context, userID string) ([]*models.Category, error)
	Update(ctx context.Context, userID, id string, req services.UpdateCategoryRequest) (*models.Category, error)
	Delete(ctx context.Context, userID, id string) error
}

type StatsService interface {
	Overview(ctx context.Context, userID string, q services.StatsQuery) (*services.StatsResult, error)
}

type Server struct {
	app        *fiber.App
	addr       string
	users      UserService
	expenses   ExpenseService
	categories CategoryService
	stats      StatsService
	logger     logging.Logger
}

func NewServer(addr string, secretKey []byte, users UserService, exp ExpenseService, categories CategoryService, stats StatsService, logger logging.Logger) *Server {
	s := &Server{
		addr:       addr,
		users:      users,
		expenses:   exp,
		categories: categories,
		stats:      stats,
		logger:     logger.With("module", "httpapi"),
	}

	app := fiber.New(fiber.Config{
		BodyLimit:             10 * 1024 * 1024,
		DisableStartupMessage: true,
	})

	authorized := BearerAuth(secretKey)

	api := app.Group("/api")

	api.Post("/users/register", s.register)
	api.Post("/users/login", s.login)
	api.Get("/users/profile", authorized, s.profile)
	api.Put("/users/profile", authorized, s.updateProfile)
	api.Get("/users/profile/image", authorized, s.profileImage)

	api.Post("/expenses", authorized, s.createExpense)
	api.Get("/expenses", authorized, s.listExpenses)
	api.Get("/expenses/stats", authorized, s.expenseStats)
	api.Get("/expenses/report", authorized, s.expenseReport)
	api.Get("/expenses/:id", authorized, s.getExpense)
	api.Put("/expenses/:id", authorized, s.updateExpense)
	api.Delete("/expenses/:id", authorized, s.deleteExpense)
	api.Get("/expenses/:id/receipt", authorized, s.expenseReceipt)

	api.Post("/categories", authorized, s.createCategory)
	api.Get("/categories", authorized, s.listCategories)
	api.Put("/categories/:id", authorized, s.updateCategory)
	api.Delete("/categories/:id", authorized, s.deleteCategory)

	s.app = app
	return s
}

// App exposes the underlying fiber application for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		errCh <- s.app.Listen(s.addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info(ctx, "shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.app.ShutdownWithContext(shutdownCtx)
	}
}
