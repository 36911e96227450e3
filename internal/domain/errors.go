package domain

import "errors"

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderIDTaken       = errors.New("order id already exists")
	ErrMalformedAmount    = errors.New("total_amount cannot be normalized")
	ErrMalformedCreatedAt = errors.New("created_at cannot be normalized")
)
