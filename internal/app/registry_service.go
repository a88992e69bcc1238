package app

import (
	"context"
	"time"

	"github.com/veralda/slotbook/internal/clock"
	"github.com/veralda/slotbook/internal/domain"
)

type RegistryRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateResource(ctx context.Context, r *domain.Resource) error
	GetResource(ctx context.Context, id int64) (domain.Resource, error)
	GetResourceForUpdate(ctx context.Context, id int64) (domain.Resource, error)
	ListResources(ctx context.Context) ([]domain.Resource, error)
	UpdateResourceStatus(ctx context.Context, id int64, status domain.ResourceStatus) error
	CreateRequester(ctx context.Context, r *domain.Requester) error
	ListReservations(ctx context.Context, f ReservationFilter) ([]domain.Reservation, error)
}

// ReservationFilter narrows report queries. Zero fields match everything;
// Day matches any reservation whose range overlaps that UTC calendar day.
type ReservationFilter struct {
	ResourceID  int64
	RequesterID int64
	Status      domain.ReservationStatus
	Day         *time.Time
}

// RegistryService registers resources and requesters, drives external
// maintenance status changes, and serves the read-only report queries.
type RegistryService struct {
	repo  RegistryRepository
	clock clock.Clock
}

func NewRegistryService(repo RegistryRepository, clk clock.Clock) *RegistryService {
	return &RegistryService{
		repo:  repo,
		clock: clk,
	}
}

type RegisterResourceInput struct {
	Name      string
	Kind      string
	RateCents int64
	RateUnit  domain.RateUnit
	Capacity  int
}

func (s *RegistryService) RegisterResource(ctx context.Context, in RegisterResourceInput) (domain.Resource, error) {
	if in.Name == "" {
		return domain.Resource{}, domain.ErrNameRequired
	}
	if in.RateCents <= 0 {
		return domain.Resource{}, domain.ErrInvalidRate
	}
	if !in.RateUnit.Valid() {
		return domain.Resource{}, domain.ErrInvalidRateUnit
	}
	if in.Capacity <= 0 {
		return domain.Resource{}, domain.ErrInvalidCapacity
	}

	res := &domain.Resource{
		Name:      in.Name,
		Kind:      in.Kind,
		RateCents: in.RateCents,
		RateUnit:  in.RateUnit,
		Capacity:  in.Capacity,
		Status:    domain.ResourceAvailable,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.CreateResource(ctx, res); err != nil {
		return domain.Resource{}, err
	}
	return *res, nil
}

type RegisterRequesterInput struct {
	Name  string
	Email string
}

func (s *RegistryService) RegisterRequester(ctx context.Context, in RegisterRequesterInput) (domain.Requester, error) {
	if in.Name == "" {
		return domain.Requester{}, domain.ErrNameRequired
	}

	req := &domain.Requester{
		Name:      in.Name,
		Email:     in.Email,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.CreateRequester(ctx, req); err != nil {
		return domain.Requester{}, err
	}
	return *req, nil
}

// SetResourceStatus applies an external maintenance change. InUse cannot
// be requested directly (only the lifecycle sets it) and a resource that
// is currently occupied cannot be pulled out from under its reservation.
func (s *RegistryService) SetResourceStatus(ctx context.Context, id int64, status domain.ResourceStatus) (domain.Resource, error) {
	if !status.Valid() || status == domain.ResourceInUse {
		return domain.Resource{}, domain.ErrInvalidStatus
	}

	var result domain.Resource
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		res, err := s.repo.GetResourceForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if res.Status == domain.ResourceInUse {
			return domain.ErrResourceUnavailable
		}
		if res.Status != status {
			if err := s.repo.UpdateResourceStatus(txCtx, res.ID, status); err != nil {
				return err
			}
			res.Status = status
		}
		result = res
		return nil
	})
	if err != nil {
		return domain.Resource{}, err
	}
	return result, nil
}

func (s *RegistryService) GetResource(ctx context.Context, id int64) (domain.Resource, error) {
	return s.repo.GetResource(ctx, id)
}

func (s *RegistryService) ListResources(ctx context.Context) ([]domain.Resource, error) {
	return s.repo.ListResources(ctx)
}

func (s *RegistryService) ListReservations(ctx context.Context, f ReservationFilter) ([]domain.Reservation, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	return s.repo.ListReservations(ctx, f)
}
