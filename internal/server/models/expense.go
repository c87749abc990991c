package models

import "time"

// Expense is a single spending record owned by one user. Category is a
// free-form label; it is not a foreign key, so deleting a Category leaves
// expenses referencing its name untouched.
//
// ReceiptKey references the receipt image in the blob store and shares the
// record's lifetime: deleting the expense deletes the blob.
type Expense struct {
	ID                 string
	UserID             string
	Title              string
	Amount             float64
	Category           string
	Description        string
	Date               time.Time
	ReceiptKey         string
	ReceiptContentType string
	CreatedAt          time.Time
}

// HasReceipt reports whether a receipt image is attached. API responses carry
// this flag instead of the binary payload.
func (e *Expense) HasReceipt() bool {
	return e.ReceiptKey != ""
}
