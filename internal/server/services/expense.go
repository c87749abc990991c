package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"expensio/internal/common"
	"expensio/internal/logging"
	"expensio/internal/server/blob"
	"expensio/internal/server/models"
	"expensio/internal/server/repositories/expenses"
	"expensio/internal/server/repositories/repomanager"

	"github.com/google/uuid"
)

// Upload is a binary payload received from a multipart request.
type Upload struct {
	Data        []byte
	ContentType string
}

// CreateExpenseRequest carries the fields of a new expense. A zero Date
// defaults to the current time. Receipt is optional.
type CreateExpenseRequest struct {
	Title       string
	Amount      float64
	Category    string
	Description string
	Date        time.Time
	Receipt     *Upload
}

// UpdateExpenseRequest carries a partial update. Zero-valued Title, Amount,
// Category, and Date keep the stored values; Description is pointer-typed so
// that a present empty string clears the field. A new Receipt replaces the
// stored blob.
type UpdateExpenseRequest struct {
	Title       string
	Amount      float64
	Category    string
	Description *string
	Date        time.Time
	Receipt     *Upload
}

// ReportRenderer turns a filtered expense list into a binary document.
type ReportRenderer interface {
	Render(expenses []*models.Expense, total float64, start, end time.Time, category string) ([]byte, error)
}

type ExpenseService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       blob.Store
	renderer    ReportRenderer
	logger      logging.Logger
}

func NewExpenseService(db *sql.DB, m repomanager.RepositoryManager, blobs blob.Store, renderer ReportRenderer, logger logging.Logger) *ExpenseService {
	return &ExpenseService{
		db:          db,
		repomanager: m,
		blobs:       blobs,
		renderer:    renderer,
		logger:      logger.With("module", "expenses"),
	}
}

func (s *ExpenseService) Create(ctx context.Context, userID string, req CreateExpenseRequest) (*models.Expense, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", common.ErrorValidation)
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", common.ErrorValidation)
	}
	if req.Category == "" {
		return nil, fmt.Errorf("%w: category is required", common.ErrorValidation)
	}

	date := req.Date
	if date.IsZero() {
		date = time.Now()
	}

	expense := &models.Expense{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       req.Title,
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Date:        date,
	}

	if req.Receipt != nil {
		key, err := s.blobs.Put(ctx, req.Receipt.Data, req.Receipt.ContentType)
		if err != nil {
			return nil, fmt.Errorf("error storing receipt: %w", err)
		}
		expense.ReceiptKey = key
		expense.ReceiptContentType = req.Receipt.ContentType
	}

	repo := s.repomanager.Expenses(s.db)
	expense, err := repo.Create(ctx, expense)
	if err != nil {
		return nil, fmt.Errorf("error creating expense: %w", err)
	}

	return expense, nil
}

func (s *ExpenseService) Get(ctx context.Context, userID, id string) (*models.Expense, error) {
	return s.owned(ctx, userID, id)
}

func (s *ExpenseService) Query(ctx context.Context, userID string, f expenses.Filter) ([]*models.Expense, error) {
	f.UserID = userID
	if !f.Start.IsZero() {
		f.Start = startOfDay(f.Start)
	}
	if !f.End.IsZero() {
		f.End = endOfDay(f.End)
	}

	repo := s.repomanager.Expenses(s.db)
	items, err := repo.Query(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("error querying expenses: %w", err)
	}

	return items, nil
}

func (s *ExpenseService) Update(ctx context.Context, userID, id string, req UpdateExpenseRequest) (*models.Expense, error) {
	expense, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	// Partial update: absent/zero fields keep the stored values. This
	// mirrors the update contract of the HTTP API, where a form omitting a
	// field must not clear it.
	if req.Title != "" {
		expense.Title = req.Title
	}
	if req.Amount > 0 {
		expense.Amount = req.Amount
	}
	if req.Category != "" {
		expense.Category = req.Category
	}
	if req.Description != nil {
		expense.Description = *req.Description
	}
	if !req.Date.IsZero() {
		expense.Date = req.Date
	}

	oldKey := ""
	if req.Receipt != nil {
		key, err := s.blobs.Put(ctx, req.Receipt.Data, req.Receipt.ContentType)
		if err != nil {
			return nil, fmt.Errorf("error storing receipt: %w", err)
		}
		oldKey = expense.ReceiptKey
		expense.ReceiptKey = key
		expense.ReceiptContentType = req.Receipt.ContentType
	}

	repo := s.repomanager.Expenses(s.db)
	if err := repo.Update(ctx, expense); err != nil {
		return nil, fmt.Errorf("error updating expense: %w", err)
	}

	if oldKey != "" {
		if err := s.blobs.Delete(ctx, oldKey); err != nil {
			s.logger.Warn(ctx, "failed to delete replaced receipt", "key", oldKey, "error", err)
		}
	}

	return expense, nil
}

func (s *ExpenseService) Delete(ctx context.Context, userID, id string) error {
	expense, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}

	repo := s.repomanager.Expenses(s.db)
	if err := repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting expense: %w", err)
	}

	// The receipt blob shares the record's lifetime.
	if expense.ReceiptKey != "" {
		if err := s.blobs.Delete(ctx, expense.ReceiptKey); err != nil {
			s.logger.Warn(ctx, "failed to delete receipt", "key", expense.ReceiptKey, "error", err)
		}
	}

	return nil
}

// Receipt returns the receipt image bytes and content type for an owned
// expense.
func (s *ExpenseService) Receipt(ctx context.Context, userID, id string) ([]byte, string, error) {
	expense, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, "", err
	}

	if expense.ReceiptKey == "" {
		return nil, "", fmt.Errorf("%w: no receipt image", common.ErrorNotFound)
	}

	data, contentType, err := s.blobs.Get(ctx, expense.ReceiptKey)
	if err != nil {
		return nil, "", fmt.Errorf("error fetching receipt: %w", err)
	}
	if contentType == "" {
		contentType = expense.ReceiptContentType
	}

	return data, contentType, nil
}

// Report renders the filtered expense list into a PDF document.
func (s *ExpenseService) Report(ctx context.Context, userID string, f expenses.Filter) ([]byte, error) {
	items, err := s.Query(ctx, userID, f)
	if err != nil {
		return nil, err
	}

	var total float64
	for _, e := range items {
		total += e.Amount
	}

	doc, err := s.renderer.Render(items, total, f.Start, f.End, f.Category)
	if err != nil {
		return nil, fmt.Errorf("error rendering report: %w", err)
	}

	return doc, nil
}

// owned loads an expense and enforces the owner check. Existence is checked
// before ownership so a missing id yields ErrorNotFound and a foreign record
// yields ErrorForbidden.
func (s *ExpenseService) owned(ctx context.Context, userID, id string) (*models.Expense, error) {
	repo := s.repomanager.Expenses(s.db)

	expense, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error fetching expense: %w", err)
	}

	if expense.UserID != userID {
		return nil, common.ErrorForbidden
	}

	return expense, nil
}
