// Package memory holds the whole ledger in ordered in-process
// collections with linear-scan lookup. It implements the same
// repository interfaces as the Postgres storage and backs tests and
// single-process deployments; persistence is a flat-file snapshot.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/veralda/slotbook/internal/app"
	"github.com/veralda/slotbook/internal/domain"
)

type txKey struct{}

type Store struct {
	mu sync.Mutex

	resources    []domain.Resource
	requesters   []domain.Requester
	reservations []domain.Reservation
	items        []domain.LineItem

	nextResourceID    int64
	nextRequesterID   int64
	nextReservationID int64
	nextItemID        int64
}

func NewStore() *Store {
	return &Store{}
}

// WithTx serializes the critical section: the availability checker's
// conflict scan and the following insert run under one store-wide lock,
// so two concurrent requests cannot both pass the check. Mutations are
// applied directly; callers validate before writing, there is no
// rollback.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, struct{}{}))
}

// enter takes the lock unless the context already runs inside WithTx.
func (s *Store) enter(ctx context.Context) func() {
	if ctx.Value(txKey{}) != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) CreateResource(ctx context.Context, r *domain.Resource) error {
	defer s.enter(ctx)()
	s.nextResourceID++
	r.ID = s.nextResourceID
	s.resources = append(s.resources, *r)
	return nil
}

func (s *Store) GetResource(ctx context.Context, id int64) (domain.Resource, error) {
	defer s.enter(ctx)()
	return s.findResource(id)
}

// GetResourceForUpdate is a plain read here: WithTx already holds the
// only lock there is.
func (s *Store) GetResourceForUpdate(ctx context.Context, id int64) (domain.Resource, error) {
	defer s.enter(ctx)()
	return s.findResource(id)
}

func (s *Store) findResource(id int64) (domain.Resource, error) {
	for _, r := range s.resources {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.Resource{}, domain.ErrResourceNotFound
}

func (s *Store) ListResources(ctx context.Context) ([]domain.Resource, error) {
	defer s.enter(ctx)()
	out := make([]domain.Resource, len(s.resources))
	copy(out, s.resources)
	return out, nil
}

func (s *Store) UpdateResourceStatus(ctx context.Context, id int64, status domain.ResourceStatus) error {
	defer s.enter(ctx)()
	for i := range s.resources {
		if s.resources[i].ID == id {
			s.resources[i].Status = status
			return nil
		}
	}
	return domain.ErrResourceNotFound
}

func (s *Store) CreateRequester(ctx context.Context, r *domain.Requester) error {
	defer s.enter(ctx)()
	s.nextRequesterID++
	r.ID = s.nextRequesterID
	s.requesters = append(s.requesters, *r)
	return nil
}

func (s *Store) GetRequester(ctx context.Context, id int64) (domain.Requester, error) {
	defer s.enter(ctx)()
	for _, r := range s.requesters {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.Requester{}, domain.ErrRequesterNotFound
}

func (s *Store) ListBlockingReservations(ctx context.Context, resourceID int64) ([]domain.Reservation, error) {
	defer s.enter(ctx)()
	var out []domain.Reservation
	for _, r := range s.reservations {
		if r.ResourceID == resourceID && r.Status.Blocking() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) CreateReservation(ctx context.Context, r *domain.Reservation) error {
	defer s.enter(ctx)()
	s.nextReservationID++
	r.ID = s.nextReservationID
	s.reservations = append(s.reservations, *r)
	return nil
}

func (s *Store) GetReservationForUpdate(ctx context.Context, id int64) (domain.Reservation, error) {
	defer s.enter(ctx)()
	for _, r := range s.reservations {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.Reservation{}, domain.ErrReservationNotFound
}

func (s *Store) UpdateReservation(ctx context.Context, upd domain.Reservation) error {
	defer s.enter(ctx)()
	for i := range s.reservations {
		if s.reservations[i].ID == upd.ID {
			s.reservations[i] = upd
			return nil
		}
	}
	return domain.ErrReservationNotFound
}

func (s *Store) ListLineItems(ctx context.Context, reservationID int64) ([]domain.LineItem, error) {
	defer s.enter(ctx)()
	var out []domain.LineItem
	for _, li := range s.items {
		if li.ReservationID == reservationID {
			out = append(out, li)
		}
	}
	return out, nil
}

func (s *Store) CreateLineItem(ctx context.Context, li *domain.LineItem) error {
	defer s.enter(ctx)()
	s.nextItemID++
	li.ID = s.nextItemID
	s.items = append(s.items, *li)
	return nil
}

func (s *Store) ListReservations(ctx context.Context, f app.ReservationFilter) ([]domain.Reservation, error) {
	defer s.enter(ctx)()
	var out []domain.Reservation
	for _, r := range s.reservations {
		if matches(r, f) {
			out = append(out, r)
		}
	}
	return out, nil
}

func matches(r domain.Reservation, f app.ReservationFilter) bool {
	if f.ResourceID != 0 && r.ResourceID != f.ResourceID {
		return false
	}
	if f.RequesterID != 0 && r.RequesterID != f.RequesterID {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Day != nil {
		day := f.Day.UTC().Truncate(24 * time.Hour)
		window := domain.TimeRange{Start: day, End: day.Add(24 * time.Hour)}
		if !r.Range.Overlaps(window) {
			return false
		}
	}
	return true
}

// CountReservationsByStatus feeds the metrics collector.
func (s *Store) CountReservationsByStatus(ctx context.Context) (map[string]int, error) {
	defer s.enter(ctx)()
	out := make(map[string]int)
	for _, r := range s.reservations {
		out[string(r.Status)]++
	}
	return out, nil
}
