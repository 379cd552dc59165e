package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/optorecord-api/internal/model"
	"github.com/jwalitptl/optorecord-api/internal/repository"
)

type Service struct {
	repo repository.AuditRepository
	now  func() time.Time
}

func NewService(repo repository.AuditRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Entry describes a single audited request.
type Entry struct {
	UserID     *uuid.UUID
	Action     string
	EntityType string
	EntityID   *uuid.UUID
	Metadata   map[string]interface{}
	IPAddress  string
	UserAgent  string
}

// Log creates an audit log entry
func (s *Service) Log(ctx context.Context, entry Entry) error {
	log := &model.AuditLog{
		ID:         uuid.New(),
		UserID:     entry.UserID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Metadata:   model.JSONMap(entry.Metadata),
		IPAddress:  entry.IPAddress,
		UserAgent:  entry.UserAgent,
		CreatedAt:  s.now().UTC(),
	}

	if err := s.repo.Create(ctx, log); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, filter *model.AuditFilter) ([]*model.AuditLog, error) {
	return s.repo.List(ctx, filter)
}

// Cleanup removes entries older than before and returns how many were deleted.
func (s *Service) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	return s.repo.DeleteBefore(ctx, before)
}
