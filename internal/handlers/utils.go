package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

type contextKey string

const contextIdentityKey contextKey = "identity"

// Identity is the authenticated caller decoded from a bearer token.
type Identity struct {
	UserID int
	Role   string
}

var errMissingIdentity = errors.New("missing identity")

func identityFromContext(ctx context.Context) (Identity, error) {
	identity, ok := ctx.Value(contextIdentityKey).(Identity)
	if !ok || identity.UserID < 1 {
		return Identity{}, errMissingIdentity
	}
	return identity, nil
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// ErrorResponse is a simple error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// OKResponse is the `{ok: true}` acknowledgement payload.
type OKResponse struct {
	OK bool `json:"ok"`
}
