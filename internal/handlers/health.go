package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"
)

const dbHealthTimeout = 2 * time.Second

// Health reports process liveness.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

// DBHealthResponse names the current store connectivity state.
type DBHealthResponse struct {
	State string `json:"state"`
}

// DBHealth reports store connectivity by pinging the database.
func DBHealth(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), dbHealthTimeout)
		defer cancel()

		state := "connected"
		if err := db.PingContext(ctx); err != nil {
			state = "disconnected"
		}
		writeJSON(w, http.StatusOK, DBHealthResponse{State: state})
	}
}
