package services

import (
	"context"

	"github.com/placement-tracker/apiserver/types"
)

// ApplicationRepository defines persistence operations for applications.
type ApplicationRepository interface {
	List(ctx context.Context, filter types.ApplicationFilter) ([]types.Application, error)
	Get(ctx context.Context, userID, id int) (types.Application, error)
	Create(ctx context.Context, app types.Application) (types.Application, error)
	Patch(ctx context.Context, userID, id int, patch types.ApplicationPatch) (types.Application, error)
	UpdateStatus(ctx context.Context, userID, id int, status string) (types.Application, error)
	Delete(ctx context.Context, userID, id int) error
}

// ApplicationService encapsulates application use-cases.
type ApplicationService struct {
	repo ApplicationRepository
}

func NewApplicationService(repo ApplicationRepository) *ApplicationService {
	return &ApplicationService{repo: repo}
}

// ListForUser returns the user's own applications, optionally filtered
// by status, newest first.
func (s *ApplicationService) ListForUser(ctx context.Context, userID int, status string) ([]types.Application, error) {
	return s.repo.List(ctx, types.ApplicationFilter{UserID: userID, Status: status})
}

// ListAll returns applications across all users, optionally filtered.
// Callers are responsible for the admin-role check.
func (s *ApplicationService) ListAll(ctx context.Context, filter types.ApplicationFilter) ([]types.Application, error) {
	return s.repo.List(ctx, filter)
}

func (s *ApplicationService) Create(ctx context.Context, app types.Application) (types.Application, error) {
	if app.Status == "" {
		app.Status = types.StatusRemaining
	}
	return s.repo.Create(ctx, app)
}

func (s *ApplicationService) Patch(ctx context.Context, userID, id int, patch types.ApplicationPatch) (types.Application, error) {
	return s.repo.Patch(ctx, userID, id, patch)
}

func (s *ApplicationService) MarkApplied(ctx context.Context, userID, id int) (types.Application, error) {
	return s.repo.UpdateStatus(ctx, userID, id, types.StatusApplied)
}

func (s *ApplicationService) MarkRemaining(ctx context.Context, userID, id int) (types.Application, error) {
	return s.repo.UpdateStatus(ctx, userID, id, types.StatusRemaining)
}

func (s *ApplicationService) Delete(ctx context.Context, userID, id int) error {
	return s.repo.Delete(ctx, userID, id)
}
