package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/optorecord-api/internal/model"
	"github.com/jwalitptl/optorecord-api/internal/repository"
	apperrors "github.com/jwalitptl/optorecord-api/pkg/errors"
)

const cacheTTL = 30 * time.Second

type Service interface {
	// Get returns *model.DashboardStats for staff and
	// *model.DashboardRedirect for patients.
	Get(ctx context.Context, caller *model.AuthUser) (interface{}, error)
}

type service struct {
	repo  repository.DashboardRepository
	cache *cache.Cache
	now   func() time.Time
}

func NewService(repo repository.DashboardRepository) Service {
	return &service{
		repo:  repo,
		cache: cache.New(cacheTTL, 2*cacheTTL),
		now:   time.Now,
	}
}

func (s *service) Get(ctx context.Context, caller *model.AuthUser) (interface{}, error) {
	switch {
	case caller.IsPatient():
		return &model.DashboardRedirect{
			Message:  "Redirect to patient portal",
			Redirect: fmt.Sprintf("/patient-portal/%s", caller.ID),
		}, nil
	case caller.IsAdmin(), caller.IsPhysician():
	default:
		return nil, apperrors.Forbidden("")
	}

	key := caller.ID.String()
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*model.DashboardStats), nil
	}

	var physicianID = &caller.ID
	if caller.IsAdmin() {
		physicianID = nil
	}

	stats, err := s.repo.Stats(ctx, physicianID, s.now())
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	s.cache.SetDefault(key, stats)
	return stats, nil
}
