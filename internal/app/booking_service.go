package app

import (
	"context"
	"log"
	"time"

	"github.com/veralda/slotbook/internal/billing"
	"github.com/veralda/slotbook/internal/clock"
	"github.com/veralda/slotbook/internal/domain"
	"github.com/veralda/slotbook/internal/event"
)

type BookingRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetResourceForUpdate(ctx context.Context, id int64) (domain.Resource, error)
	GetRequester(ctx context.Context, id int64) (domain.Requester, error)
	ListBlockingReservations(ctx context.Context, resourceID int64) ([]domain.Reservation, error)
	CreateReservation(ctx context.Context, r *domain.Reservation) error
}

// BookingService is the availability checker: it admits a reservation
// request only when the resource resolves, is bookable, and no Booked or
// Active reservation overlaps the requested range. The conflict scan and
// the insert run inside one per-resource critical section, so two
// concurrent requests for the same resource cannot both pass the check.
type BookingService struct {
	repo   BookingRepository
	clock  clock.Clock
	pub    event.Publisher
	logger *log.Logger
}

func NewBookingService(repo BookingRepository, clk clock.Clock, pub event.Publisher, logger *log.Logger) *BookingService {
	if logger == nil {
		logger = log.Default()
	}
	return &BookingService{
		repo:   repo,
		clock:  clk,
		pub:    pub,
		logger: logger,
	}
}

type CheckAndReserveInput struct {
	ResourceID   int64
	RequesterID  int64
	Start        time.Time
	End          time.Time
	DepositCents int64
}

func (s *BookingService) CheckAndReserve(ctx context.Context, in CheckAndReserveInput) (domain.Reservation, error) {
	rng, err := domain.NewTimeRange(in.Start, in.End)
	if err != nil {
		return domain.Reservation{}, err
	}
	if in.DepositCents < 0 {
		return domain.Reservation{}, domain.ErrInvalidDeposit
	}

	now := s.clock.Now()
	var result domain.Reservation

	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		res, err := s.repo.GetResourceForUpdate(txCtx, in.ResourceID)
		if err != nil {
			return err
		}
		if _, err := s.repo.GetRequester(txCtx, in.RequesterID); err != nil {
			return err
		}
		if !res.Status.Bookable() {
			return domain.ErrResourceUnavailable
		}

		// Exhaustive scan over every non-terminal reservation on this
		// resource; one overlap rejects.
		blocking, err := s.repo.ListBlockingReservations(txCtx, res.ID)
		if err != nil {
			return err
		}
		for _, existing := range blocking {
			if existing.Range.Overlaps(rng) {
				return domain.ErrConflict
			}
		}

		resv := &domain.Reservation{
			ResourceID:   res.ID,
			RequesterID:  in.RequesterID,
			Range:        rng,
			Status:       domain.ReservationBooked,
			BaseCents:    billing.Quote(res, rng),
			DepositCents: in.DepositCents,
			CreatedAt:    now,
		}
		if err := s.repo.CreateReservation(txCtx, resv); err != nil {
			return err
		}

		// A Booked reservation does not occupy the resource; its status
		// first changes on the transition to Active.
		result = *resv
		return nil
	})
	if err != nil {
		return domain.Reservation{}, err
	}

	// Publishing is best effort: the reservation is already committed.
	if err := s.pub.PublishJSON(ctx, event.KeyReservationCreated, reservationEvent(result)); err != nil {
		s.logger.Printf("publish %s: %v", event.KeyReservationCreated, err)
	}
	return result, nil
}
