package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/ToniMoldovan/orders-microservice/internal/app"
	"github.com/ToniMoldovan/orders-microservice/internal/domain"
)

// OrderSubmitter is the minimal interface needed to submit an order.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, in app.OrderInput) (app.SubmitResult, error)
}

// OrderFinder is the minimal interface needed to look up an order.
type OrderFinder interface {
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
}

// HandleCreateOrder returns an HTTP handler for order submission.
func HandleCreateOrder(svc OrderSubmitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req createOrderRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if msg, ok := req.validate(); !ok {
			writeError(w, http.StatusUnprocessableEntity, codeValidationFailed, msg)
			return
		}

		res, err := svc.SubmitOrder(r.Context(), app.OrderInput{
			OrderID:       req.OrderID,
			CustomerEmail: req.CustomerEmail,
			TotalAmount:   req.TotalAmount.String(),
			Currency:      req.Currency,
			CreatedAt:     req.CreatedAt,
		})
		if err != nil {
			switch err {
			case domain.ErrMalformedAmount, domain.ErrMalformedCreatedAt:
				writeError(w, http.StatusUnprocessableEntity, codeMalformedInput, err.Error())
				return
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				return
			}
		}

		// The stored record is returned for every outcome, including
		// conflicts, where it shows the caller what the key already holds.
		var status int
		switch res.Outcome {
		case app.OutcomeCreated:
			status = http.StatusCreated
		case app.OutcomeDuplicate:
			status = http.StatusOK
		case app.OutcomeConflict:
			status = http.StatusConflict
		default:
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(newOrderResponse(res.Order))
	}
}

// HandleGetOrder returns an HTTP handler for order lookup by order_id.
func HandleGetOrder(svc OrderFinder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		orderID, ok := parseOrderPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			if err == domain.ErrOrderNotFound {
				writeError(w, http.StatusNotFound, codeOrderNotFound, "Order not found")
				return
			}
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(newOrderResponse(order))
	}
}

func parseOrderPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 2 || parts[0] != "orders" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

type createOrderRequest struct {
	OrderID       string      `json:"order_id"`
	CustomerEmail string      `json:"customer_email"`
	TotalAmount   json.Number `json:"total_amount"`
	Currency      string      `json:"currency"`
	CreatedAt     string      `json:"created_at"`
}

const maxOrderIDLength = 255

func (r createOrderRequest) validate() (string, bool) {
	if strings.TrimSpace(r.OrderID) == "" {
		return "order_id is required", false
	}
	if len(r.OrderID) > maxOrderIDLength {
		return "order_id must not exceed 255 characters", false
	}
	if strings.TrimSpace(r.CustomerEmail) == "" {
		return "customer_email is required", false
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(r.CustomerEmail)); err != nil {
		return "customer_email must be a valid email address", false
	}
	if r.TotalAmount == "" {
		return "total_amount is required", false
	}
	amount, err := strconv.ParseFloat(r.TotalAmount.String(), 64)
	if err != nil {
		return "total_amount must be a number", false
	}
	if amount < 0 {
		return "total_amount must be greater than or equal to 0", false
	}
	currency := strings.TrimSpace(r.Currency)
	if currency == "" {
		return "currency is required", false
	}
	if !isAlpha3(currency) {
		return "currency must be a 3-letter code like EUR", false
	}
	if strings.TrimSpace(r.CreatedAt) == "" {
		return "created_at is required", false
	}
	return "", true
}

func isAlpha3(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, c := range s {
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}

type orderResponse struct {
	OrderID       string `json:"order_id"`
	CustomerEmail string `json:"customer_email"`
	TotalAmount   string `json:"total_amount"`
	Currency      string `json:"currency"`
	CreatedAt     string `json:"created_at"`
}

func newOrderResponse(o domain.Order) orderResponse {
	return orderResponse{
		OrderID:       o.OrderID,
		CustomerEmail: o.CustomerEmail,
		TotalAmount:   o.TotalAmount.StringFixed(2),
		Currency:      o.Currency,
		CreatedAt:     o.OrderCreatedAt.UTC().Format(time.RFC3339),
	}
}
