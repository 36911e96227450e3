package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a persisted order record. Records are immutable once created;
// the only operations are create-if-absent and read.
type Order struct {
	OrderID        string
	CustomerEmail  string
	TotalAmount    decimal.Decimal
	Currency       string
	OrderCreatedAt time.Time
	// PayloadHash fingerprints the normalized submission; it is stored for
	// duplicate/conflict classification and never exposed externally.
	PayloadHash string
	CreatedAt   time.Time
}
