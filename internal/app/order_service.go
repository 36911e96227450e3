package app

import (
	"context"
	"fmt"

	"github.com/ToniMoldovan/orders-microservice/internal/clock"
	"github.com/ToniMoldovan/orders-microservice/internal/domain"
)

type OrderRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetOrderByOrderID(ctx context.Context, orderID string) (*domain.Order, error)
	CreateOrder(ctx context.Context, order domain.Order) error
}

// Outcome classifies a submission against the stored state of its order_id.
type Outcome int

const (
	OutcomeCreated Outcome = iota + 1
	OutcomeDuplicate
	OutcomeConflict
)

type OrderService struct {
	repo  OrderRepository
	clock clock.Clock
}

func NewOrderService(repo OrderRepository, clk clock.Clock) *OrderService {
	return &OrderService{
		repo:  repo,
		clock: clk,
	}
}

type SubmitResult struct {
	Order   domain.Order
	Outcome Outcome
}

// submitAttempts bounds the retry when a race winner's transaction rolled
// back after losing writers observed its insert.
const submitAttempts = 2

// SubmitOrder decides whether a submission creates a new order, replays an
// existing one, or conflicts with it. The decision runs inside a single
// transaction; mutual exclusion between concurrent first writers is
// delegated to the order_id uniqueness constraint, and a constraint
// violation is recovered by re-reading the winner's record.
func (s *OrderService) SubmitOrder(ctx context.Context, in OrderInput) (SubmitResult, error) {
	normalized, err := NormalizeOrder(in)
	if err != nil {
		return SubmitResult{}, err
	}
	hash := Fingerprint(normalized)

	for attempt := 0; attempt < submitAttempts; attempt++ {
		result, err := s.trySubmit(ctx, normalized, hash)
		if err == nil {
			return result, nil
		}
		if err != domain.ErrOrderIDTaken {
			return SubmitResult{}, err
		}

		// Lost the insert race. The failed transaction rolled back, so the
		// winner's committed record is re-read on a fresh connection and
		// classified by fingerprint.
		existing, err := s.repo.GetOrderByOrderID(ctx, normalized.OrderID)
		if err != nil {
			return SubmitResult{}, err
		}
		if existing == nil {
			// The winning transaction rolled back after blocking ours.
			// Re-run the whole protocol.
			continue
		}
		return classify(*existing, hash), nil
	}

	return SubmitResult{}, fmt.Errorf("submit order %s: winning record never became visible", normalized.OrderID)
}

func (s *OrderService) trySubmit(ctx context.Context, n NormalizedOrder, hash string) (SubmitResult, error) {
	var result SubmitResult

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetOrderByOrderID(txCtx, n.OrderID)
		if err != nil {
			return err
		}
		if existing != nil {
			result = classify(*existing, hash)
			return nil
		}

		order := domain.Order{
			OrderID:        n.OrderID,
			CustomerEmail:  n.CustomerEmail,
			TotalAmount:    n.TotalAmount,
			Currency:       n.Currency,
			OrderCreatedAt: n.CreatedAt,
			PayloadHash:    hash,
			CreatedAt:      s.clock.Now(),
		}
		if err := s.repo.CreateOrder(txCtx, order); err != nil {
			return err
		}

		result = SubmitResult{Order: order, Outcome: OutcomeCreated}
		return nil
	})
	if err != nil {
		return SubmitResult{}, err
	}
	return result, nil
}

func classify(existing domain.Order, hash string) SubmitResult {
	if existing.PayloadHash == hash {
		return SubmitResult{Order: existing, Outcome: OutcomeDuplicate}
	}
	return SubmitResult{Order: existing, Outcome: OutcomeConflict}
}

// GetOrder looks up an order by its business key. No fingerprint logic.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	existing, err := s.repo.GetOrderByOrderID(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if existing == nil {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return *existing, nil
}
