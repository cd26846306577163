package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
	"github.com/placement-tracker/apiserver/internal/services"
	"github.com/placement-tracker/apiserver/internal/store"
	"github.com/placement-tracker/apiserver/types"
)

type fakeLogRepo struct {
	mu   sync.Mutex
	logs map[int]types.AppOpenLog
}

func newFakeLogRepo() *fakeLogRepo {
	return &fakeLogRepo{logs: make(map[int]types.AppOpenLog)}
}

func (r *fakeLogRepo) GetByUser(_ context.Context, userID int) (types.AppOpenLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	log, ok := r.logs[userID]
	if !ok {
		return types.AppOpenLog{}, store.ErrNotFound
	}
	return log, nil
}

func (r *fakeLogRepo) Touch(_ context.Context, userID int, sentAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	at := sentAt
	r.logs[userID] = types.AppOpenLog{UserID: userID, LastSentAt: &at}
	return nil
}

type countingSender struct {
	mu    sync.Mutex
	count int
}

func (s *countingSender) Send(context.Context, string, string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	return nil
}

func newEventsRouter(t *testing.T, userRepo *fakeUserRepo, clock clockwork.Clock, sender *countingSender) *chi.Mux {
	t.Helper()
	notifier := services.NewNotifier(userRepo, newFakeLogRepo(), sender).WithClock(clock)
	router := chi.NewRouter()
	router.With(RequireAuth(testJWTSecret)).Post("/events/app-open", NewEventsHandler(notifier).AppOpen)
	return router
}

func TestAppOpenThrottlesSecondCall(t *testing.T) {
	userRepo := newFakeUserRepo()
	user, err := userRepo.Create(context.Background(), types.User{
		Email:     "a@example.com",
		Username:  "alice",
		Role:      types.RoleUser,
		PhoneE164: "+15550001111",
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	clock := clockwork.NewFakeClock()
	sender := &countingSender{}
	router := newEventsRouter(t, userRepo, clock, sender)
	token := userToken(t, user.ID, types.RoleUser)

	rec := doJSON(t, router, http.MethodPost, "/events/app-open", nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("first event status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp AppOpenResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.OK || !resp.Sent {
		t.Fatalf("first event response = %+v", resp)
	}

	clock.Advance(23 * time.Hour)
	rec = doJSON(t, router, http.MethodPost, "/events/app-open", nil, token)
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Sent {
		t.Fatal("expected sent=false inside the 24h window")
	}

	clock.Advance(2 * time.Hour)
	rec = doJSON(t, router, http.MethodPost, "/events/app-open", nil, token)
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Sent {
		t.Fatal("expected sent=true after the window elapsed")
	}
	if sender.count != 2 {
		t.Fatalf("dispatch count = %d, want 2", sender.count)
	}
}

func TestAppOpenUnknownUser(t *testing.T) {
	router := newEventsRouter(t, newFakeUserRepo(), clockwork.NewFakeClock(), &countingSender{})
	token := userToken(t, 123, types.RoleUser)

	rec := doJSON(t, router, http.MethodPost, "/events/app-open", nil, token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
