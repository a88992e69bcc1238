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

type LifecycleRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetReservationForUpdate(ctx context.Context, id int64) (domain.Reservation, error)
	GetResourceForUpdate(ctx context.Context, id int64) (domain.Resource, error)
	ListLineItems(ctx context.Context, reservationID int64) ([]domain.LineItem, error)
	UpdateReservation(ctx context.Context, r domain.Reservation) error
	UpdateResourceStatus(ctx context.Context, id int64, status domain.ResourceStatus) error
	CreateLineItem(ctx context.Context, li *domain.LineItem) error
}

// LifecycleService owns every reservation mutation after creation. Each
// transition updates the reservation and its resource inside the same
// transaction, so callers never observe an Active reservation on an
// Available resource or the reverse.
type LifecycleService struct {
	repo   LifecycleRepository
	clock  clock.Clock
	pub    event.Publisher
	logger *log.Logger
	charge billing.ChargePolicy
	refund billing.RefundPolicy
}

func NewLifecycleService(repo LifecycleRepository, clk clock.Clock, pub event.Publisher, logger *log.Logger, opts ...LifecycleOption) *LifecycleService {
	if logger == nil {
		logger = log.Default()
	}
	svc := &LifecycleService{
		repo:   repo,
		clock:  clk,
		pub:    pub,
		logger: logger,
		charge: billing.ChargeFull,
		refund: billing.RefundAllowed,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type LifecycleOption func(*LifecycleService)

// WithChargePolicy sets how an Active reservation is billed when cancelled.
func WithChargePolicy(p billing.ChargePolicy) LifecycleOption {
	return func(s *LifecycleService) {
		s.charge = p
	}
}

// WithRefundPolicy sets how negative totals are reported.
func WithRefundPolicy(p billing.RefundPolicy) LifecycleOption {
	return func(s *LifecycleService) {
		s.refund = p
	}
}

// Activate moves Booked to Active and marks the resource InUse. The
// activation instant, explicit or taken from the clock, must fall inside
// the reservation's range.
func (s *LifecycleService) Activate(ctx context.Context, id int64, at *time.Time) (domain.Reservation, error) {
	when := s.clock.Now()
	if at != nil {
		when = at.UTC()
	}

	var result domain.Reservation
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		resv, err := s.repo.GetReservationForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if err := domain.CheckTransition(resv.Status, domain.ReservationActive); err != nil {
			return err
		}
		if !resv.Range.Contains(when) {
			return domain.ErrInvalidTransition
		}

		res, err := s.repo.GetResourceForUpdate(txCtx, resv.ResourceID)
		if err != nil {
			return err
		}
		// A resource pulled for maintenance or out of service cannot be
		// occupied, even by a reservation booked before the status change.
		if !res.Status.Bookable() {
			return domain.ErrResourceUnavailable
		}

		resv.Status = domain.ReservationActive
		if err := s.repo.UpdateReservation(txCtx, resv); err != nil {
			return err
		}
		if res.Status != domain.ResourceInUse {
			if err := s.repo.UpdateResourceStatus(txCtx, res.ID, domain.ResourceInUse); err != nil {
				return err
			}
		}
		result = resv
		return nil
	})
	if err != nil {
		return domain.Reservation{}, err
	}

	s.publish(ctx, event.KeyReservationActivated, result)
	return result, nil
}

// Complete moves Active to Completed, settles the bill including every
// line item registered while Active, and releases the resource.
func (s *LifecycleService) Complete(ctx context.Context, id int64) (domain.Reservation, error) {
	var result domain.Reservation
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		resv, err := s.repo.GetReservationForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if err := domain.CheckTransition(resv.Status, domain.ReservationCompleted); err != nil {
			return err
		}

		items, err := s.repo.ListLineItems(txCtx, resv.ID)
		if err != nil {
			return err
		}
		resv.Status = domain.ReservationCompleted
		resv.TotalCents = billing.Finalize(resv.BaseCents, items, resv.DepositCents, s.refund)
		if err := s.repo.UpdateReservation(txCtx, resv); err != nil {
			return err
		}
		if err := s.releaseResource(txCtx, resv.ResourceID); err != nil {
			return err
		}
		result = resv
		return nil
	})
	if err != nil {
		return domain.Reservation{}, err
	}

	s.publish(ctx, event.KeyReservationCompleted, result)
	return result, nil
}

// Cancel ends a Booked or Active reservation. Cancelling a Booked one
// has no resource side effect and settles only the deposit refund.
// Cancelling an Active one is an early termination: the base charge
// follows the configured charge policy and the resource is released.
func (s *LifecycleService) Cancel(ctx context.Context, id int64) (domain.Reservation, error) {
	now := s.clock.Now()

	var result domain.Reservation
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		resv, err := s.repo.GetReservationForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if err := domain.CheckTransition(resv.Status, domain.ReservationCancelled); err != nil {
			return err
		}

		wasActive := resv.Status == domain.ReservationActive
		base := int64(0)
		var items []domain.LineItem
		if wasActive {
			base = resv.BaseCents
			if s.charge == billing.ChargeProRated {
				res, err := s.repo.GetResourceForUpdate(txCtx, resv.ResourceID)
				if err != nil {
					return err
				}
				base = billing.ProRatedBase(res, resv.Range, now)
			}
			if items, err = s.repo.ListLineItems(txCtx, resv.ID); err != nil {
				return err
			}
		}

		resv.Status = domain.ReservationCancelled
		resv.TotalCents = billing.Finalize(base, items, resv.DepositCents, s.refund)
		if err := s.repo.UpdateReservation(txCtx, resv); err != nil {
			return err
		}
		if wasActive {
			if err := s.releaseResource(txCtx, resv.ResourceID); err != nil {
				return err
			}
		}
		result = resv
		return nil
	})
	if err != nil {
		return domain.Reservation{}, err
	}

	s.publish(ctx, event.KeyReservationCancelled, result)
	return result, nil
}

// MarkNoShow moves Booked to NoShow once the start has passed without an
// activation. The resource was never occupied, so it is untouched, and
// no charge is settled.
func (s *LifecycleService) MarkNoShow(ctx context.Context, id int64) (domain.Reservation, error) {
	now := s.clock.Now()

	var result domain.Reservation
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		resv, err := s.repo.GetReservationForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if err := domain.CheckTransition(resv.Status, domain.ReservationNoShow); err != nil {
			return err
		}
		if !now.After(resv.Range.Start) {
			return domain.ErrInvalidTransition
		}

		resv.Status = domain.ReservationNoShow
		if err := s.repo.UpdateReservation(txCtx, resv); err != nil {
			return err
		}
		result = resv
		return nil
	})
	if err != nil {
		return domain.Reservation{}, err
	}

	s.publish(ctx, event.KeyReservationNoShow, result)
	return result, nil
}

type AddLineItemInput struct {
	ReservationID int64
	Description   string
	Quantity      int
	UnitCents     int64
}

// AddLineItem registers an add-on charge against an Active reservation.
// It is picked up by the next finalization (Complete or Cancel).
func (s *LifecycleService) AddLineItem(ctx context.Context, in AddLineItemInput) (domain.LineItem, error) {
	if in.Description == "" {
		return domain.LineItem{}, domain.ErrNameRequired
	}
	if in.Quantity <= 0 {
		return domain.LineItem{}, domain.ErrInvalidQuantity
	}
	if in.UnitCents < 0 {
		return domain.LineItem{}, domain.ErrInvalidRate
	}

	now := s.clock.Now()
	var result domain.LineItem
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		resv, err := s.repo.GetReservationForUpdate(txCtx, in.ReservationID)
		if err != nil {
			return err
		}
		if resv.Status.Terminal() {
			return domain.ErrAlreadyFinal
		}
		if resv.Status != domain.ReservationActive {
			return domain.ErrReservationNotActive
		}

		li := &domain.LineItem{
			ReservationID: resv.ID,
			Description:   in.Description,
			Quantity:      in.Quantity,
			UnitCents:     in.UnitCents,
			CreatedAt:     now,
		}
		if err := s.repo.CreateLineItem(txCtx, li); err != nil {
			return err
		}
		result = *li
		return nil
	})
	if err != nil {
		return domain.LineItem{}, err
	}
	return result, nil
}

// publish is best effort: the transition is already committed, so a
// broker failure is logged and the result returned anyway.
func (s *LifecycleService) publish(ctx context.Context, key string, r domain.Reservation) {
	if err := s.pub.PublishJSON(ctx, key, reservationEvent(r)); err != nil {
		s.logger.Printf("publish %s: %v", key, err)
	}
}

// releaseResource flips InUse back to Available. Maintenance states are
// externally driven and left alone.
func (s *LifecycleService) releaseResource(ctx context.Context, resourceID int64) error {
	res, err := s.repo.GetResourceForUpdate(ctx, resourceID)
	if err != nil {
		return err
	}
	if res.Status != domain.ResourceInUse {
		return nil
	}
	return s.repo.UpdateResourceStatus(ctx, res.ID, domain.ResourceAvailable)
}
