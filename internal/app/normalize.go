package app

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/ToniMoldovan/orders-microservice/internal/domain"
	"github.com/shopspring/decimal"
)

// OrderInput carries the caller-supplied fields of an order submission,
// already past syntactic validation at the transport layer.
type OrderInput struct {
	OrderID       string
	CustomerEmail string
	TotalAmount   string
	Currency      string
	CreatedAt     string
}

// NormalizedOrder is the canonical form of an order submission. Two
// submissions that differ only in formatting normalize to the same value.
type NormalizedOrder struct {
	OrderID       string
	CustomerEmail string
	TotalAmount   decimal.Decimal
	Currency      string
	CreatedAt     time.Time
}

// createdAtLayouts are tried in order when parsing created_at. Layouts
// without a zone designator are interpreted as UTC.
var createdAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NormalizeOrder applies the deterministic normalization rules: trimmed
// order id, lower-cased email, upper-cased currency, amount rounded to two
// fractional digits, created_at converted to a UTC instant.
func NormalizeOrder(in OrderInput) (NormalizedOrder, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(in.TotalAmount))
	if err != nil || amount.IsNegative() {
		return NormalizedOrder{}, domain.ErrMalformedAmount
	}

	createdAt, err := parseCreatedAt(strings.TrimSpace(in.CreatedAt))
	if err != nil {
		return NormalizedOrder{}, domain.ErrMalformedCreatedAt
	}

	return NormalizedOrder{
		OrderID:       strings.TrimSpace(in.OrderID),
		CustomerEmail: strings.ToLower(strings.TrimSpace(in.CustomerEmail)),
		TotalAmount:   amount.Round(2),
		Currency:      strings.ToUpper(strings.TrimSpace(in.Currency)),
		CreatedAt:     createdAt.UTC(),
	}, nil
}

func parseCreatedAt(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range createdAtLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// Fingerprint hashes the canonical JSON encoding of a normalized order:
// keys in lexical order, no extra whitespace, no HTML escaping. The result
// is a lowercase hex SHA-256 digest.
func Fingerprint(n NormalizedOrder) string {
	payload := map[string]string{
		"created_at":     n.CreatedAt.Format(time.RFC3339),
		"currency":       n.Currency,
		"customer_email": n.CustomerEmail,
		"order_id":       n.OrderID,
		"total_amount":   n.TotalAmount.StringFixed(2),
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a map of strings cannot fail; json.Marshal sorts map keys.
	_ = enc.Encode(payload)

	sum := sha256.Sum256(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
	return hex.EncodeToString(sum[:])
}
