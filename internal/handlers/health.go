package handlers

import (
	"net/http"
	"time"
)

// HealthHandler reports process liveness and database reachability.
type HealthHandler struct {
	DB      HealthPinger
	Started time.Time
	Now     func() time.Time
}

type healthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	UptimeSec int64  `json:"uptimeSec"`
	Timestamp string `json:"timestamp"`
}

// Check answers 200 when the database is reachable, 500 otherwise.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) error {
	now := time.Now().UTC()
	if h.Now != nil {
		now = h.Now()
	}

	payload := healthResponse{
		Status:    "ok",
		Database:  "connected",
		UptimeSec: int64(now.Sub(h.Started).Seconds()),
		Timestamp: now.Format(time.RFC3339),
	}

	if h.DB != nil {
		if err := h.DB.Ping(r.Context()); err != nil {
			return internalError("database unreachable", err)
		}
	}

	return respond(w, r, http.StatusOK, "service is healthy", payload)
}
