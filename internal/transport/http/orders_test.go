package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ToniMoldovan/orders-microservice/internal/app"
	"github.com/ToniMoldovan/orders-microservice/internal/domain"
	"github.com/shopspring/decimal"
)

type fakeSubmitter struct {
	result app.SubmitResult
	err    error
	last   app.OrderInput
}

func (f *fakeSubmitter) SubmitOrder(_ context.Context, in app.OrderInput) (app.SubmitResult, error) {
	f.last = in
	return f.result, f.err
}

type fakeFinder struct {
	order domain.Order
	err   error
}

func (f *fakeFinder) GetOrder(_ context.Context, _ string) (domain.Order, error) {
	return f.order, f.err
}

func storedOrder() domain.Order {
	return domain.Order{
		OrderID:        "ORD-1",
		CustomerEmail:  "a@x.com",
		TotalAmount:    decimal.RequireFromString("99.90"),
		Currency:       "EUR",
		OrderCreatedAt: time.Date(2026, 2, 5, 12, 0, 0, 0, time.UTC),
		PayloadHash:    "deadbeef",
	}
}

const validBody = `{"order_id":"ORD-1","customer_email":"A@X.com","total_amount":99.9,"currency":"eur","created_at":"2026-02-05T12:00:00Z"}`

func TestHandleCreateOrder(t *testing.T) {
	t.Parallel()

	post := func(body string) *http.Request {
		return httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	}

	t.Run("created maps to 201 with normalized body", func(t *testing.T) {
		svc := &fakeSubmitter{result: app.SubmitResult{Order: storedOrder(), Outcome: app.OutcomeCreated}}
		rec := httptest.NewRecorder()

		HandleCreateOrder(svc).ServeHTTP(rec, post(validBody))

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d", rec.Code)
		}
		var resp orderResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.TotalAmount != "99.90" {
			t.Fatalf("expected total_amount 99.90, got %s", resp.TotalAmount)
		}
		if resp.Currency != "EUR" {
			t.Fatalf("expected currency EUR, got %s", resp.Currency)
		}
		if resp.CreatedAt != "2026-02-05T12:00:00Z" {
			t.Fatalf("expected UTC created_at, got %s", resp.CreatedAt)
		}
		if svc.last.TotalAmount != "99.9" {
			t.Fatalf("expected raw amount passed through, got %q", svc.last.TotalAmount)
		}
	})

	t.Run("duplicate maps to 200", func(t *testing.T) {
		svc := &fakeSubmitter{result: app.SubmitResult{Order: storedOrder(), Outcome: app.OutcomeDuplicate}}
		rec := httptest.NewRecorder()

		HandleCreateOrder(svc).ServeHTTP(rec, post(validBody))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
	})

	t.Run("conflict maps to 409 with the stored record", func(t *testing.T) {
		svc := &fakeSubmitter{result: app.SubmitResult{Order: storedOrder(), Outcome: app.OutcomeConflict}}
		rec := httptest.NewRecorder()

		HandleCreateOrder(svc).ServeHTTP(rec, post(validBody))

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected status 409, got %d", rec.Code)
		}
		var resp orderResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.TotalAmount != "99.90" {
			t.Fatalf("expected the stored amount, got %s", resp.TotalAmount)
		}
	})

	t.Run("fingerprint never appears in the response", func(t *testing.T) {
		svc := &fakeSubmitter{result: app.SubmitResult{Order: storedOrder(), Outcome: app.OutcomeCreated}}
		rec := httptest.NewRecorder()

		HandleCreateOrder(svc).ServeHTTP(rec, post(validBody))

		if strings.Contains(rec.Body.String(), "deadbeef") || strings.Contains(rec.Body.String(), "hash") {
			t.Fatalf("payload hash leaked: %s", rec.Body.String())
		}
	})

	t.Run("malformed JSON maps to 400", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HandleCreateOrder(&fakeSubmitter{}).ServeHTTP(rec, post("{"))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("validation failures map to 422", func(t *testing.T) {
		cases := []struct {
			name string
			body string
			msg  string
		}{
			{"missing order_id", `{"customer_email":"a@x.com","total_amount":1,"currency":"EUR","created_at":"2026-02-05"}`, "order_id is required"},
			{"order_id too long", `{"order_id":"` + strings.Repeat("x", 256) + `","customer_email":"a@x.com","total_amount":1,"currency":"EUR","created_at":"2026-02-05"}`, "order_id must not exceed 255 characters"},
			{"missing email", `{"order_id":"ORD-1","total_amount":1,"currency":"EUR","created_at":"2026-02-05"}`, "customer_email is required"},
			{"bad email", `{"order_id":"ORD-1","customer_email":"not-an-email","total_amount":1,"currency":"EUR","created_at":"2026-02-05"}`, "customer_email must be a valid email address"},
			{"missing amount", `{"order_id":"ORD-1","customer_email":"a@x.com","currency":"EUR","created_at":"2026-02-05"}`, "total_amount is required"},
			{"negative amount", `{"order_id":"ORD-1","customer_email":"a@x.com","total_amount":-1,"currency":"EUR","created_at":"2026-02-05"}`, "total_amount must be greater than or equal to 0"},
			{"bad currency", `{"order_id":"ORD-1","customer_email":"a@x.com","total_amount":1,"currency":"EURO","created_at":"2026-02-05"}`, "currency must be a 3-letter code like EUR"},
			{"missing created_at", `{"order_id":"ORD-1","customer_email":"a@x.com","total_amount":1,"currency":"EUR"}`, "created_at is required"},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				rec := httptest.NewRecorder()
				HandleCreateOrder(&fakeSubmitter{}).ServeHTTP(rec, post(tc.body))

				if rec.Code != http.StatusUnprocessableEntity {
					t.Fatalf("expected status 422, got %d", rec.Code)
				}
				var resp errorResponse
				if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
					t.Fatalf("decode response: %v", err)
				}
				if resp.Error != tc.msg {
					t.Fatalf("expected message %q, got %q", tc.msg, resp.Error)
				}
			})
		}
	})

	t.Run("unparseable created_at maps to 422", func(t *testing.T) {
		svc := &fakeSubmitter{err: domain.ErrMalformedCreatedAt}
		rec := httptest.NewRecorder()

		body := strings.Replace(validBody, "2026-02-05T12:00:00Z", "05/02/2026 25:00", 1)
		HandleCreateOrder(svc).ServeHTTP(rec, post(body))

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected status 422, got %d", rec.Code)
		}
	})

	t.Run("storage fault maps to 500", func(t *testing.T) {
		svc := &fakeSubmitter{err: errors.New("connection refused")}
		rec := httptest.NewRecorder()

		HandleCreateOrder(svc).ServeHTTP(rec, post(validBody))

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", rec.Code)
		}
	})

	t.Run("non-POST maps to 405", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		HandleCreateOrder(&fakeSubmitter{}).ServeHTTP(rec, req)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected status 405, got %d", rec.Code)
		}
	})
}

func TestHandleGetOrder(t *testing.T) {
	t.Parallel()

	t.Run("found maps to 200", func(t *testing.T) {
		svc := &fakeFinder{order: storedOrder()}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/orders/ORD-1", nil)

		HandleGetOrder(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		var resp orderResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.OrderID != "ORD-1" {
			t.Fatalf("expected ORD-1, got %s", resp.OrderID)
		}
	})

	t.Run("missing maps to 404 with message", func(t *testing.T) {
		svc := &fakeFinder{err: domain.ErrOrderNotFound}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/orders/UNKNOWN", nil)

		HandleGetOrder(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rec.Code)
		}
		var resp errorResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Error != "Order not found" {
			t.Fatalf("expected not-found message, got %q", resp.Error)
		}
	})

	t.Run("storage fault maps to 500", func(t *testing.T) {
		svc := &fakeFinder{err: errors.New("connection refused")}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/orders/ORD-1", nil)

		HandleGetOrder(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", rec.Code)
		}
	})

	t.Run("malformed path maps to 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/orders/ORD-1/extra", nil)
		HandleGetOrder(&fakeFinder{}).ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rec.Code)
		}
	})
}
