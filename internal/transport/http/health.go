package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
)

// HealthChecker probes the storage layer for the health endpoint.
type HealthChecker interface {
	Ping(ctx context.Context) error
	SchemaReady(ctx context.Context) (bool, error)
}

type healthResponse struct {
	Status string `json:"status"`
	API    string `json:"api,omitempty"`
	DB     string `json:"db,omitempty"`
	Schema string `json:"schema,omitempty"`

	Message string `json:"message,omitempty"`
}

// HandleHealth reports liveness of the API, database connectivity, and
// schema availability.
func HandleHealth(db HealthChecker) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		if err := db.Ping(r.Context()); err != nil {
			writeHealth(w, stdhttp.StatusServiceUnavailable, healthResponse{
				Status:  "error",
				Message: "Database connection failed",
			})
			return
		}

		ready, err := db.SchemaReady(r.Context())
		if err != nil {
			writeHealth(w, stdhttp.StatusServiceUnavailable, healthResponse{
				Status:  "error",
				Message: "Database connection failed",
			})
			return
		}
		if !ready {
			writeHealth(w, stdhttp.StatusServiceUnavailable, healthResponse{
				Status:  "error",
				Message: "Schema not applied - orders table missing",
			})
			return
		}

		writeHealth(w, stdhttp.StatusOK, healthResponse{
			Status: "ok",
			API:    "ok",
			DB:     "ok",
			Schema: "ok",
		})
	}
}

func writeHealth(w stdhttp.ResponseWriter, status int, body healthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
