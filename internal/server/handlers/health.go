package handlers

import (
	"context"
	"net/http"
	"time"

	"universe-sim/internal/shared/response"
)

// Pinger reports the state of a backing service.
type Pinger interface {
	Status(ctx context.Context) string
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Database  string `json:"database"`
	Redis     string `json:"redis"`
}

type HealthHandler struct {
	db    Pinger
	redis Pinger
}

func NewHealthHandler(db, redis Pinger) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Database:  h.db.Status(ctx),
		Redis:     h.redis.Status(ctx),
	}

	response.Success(w, http.StatusOK, resp)
}
