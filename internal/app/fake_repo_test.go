package app

import (
	"context"
	"time"

	"github.com/veralda/slotbook/internal/domain"
)

// fakeRepo is an in-memory ledger implementing every repository
// interface the services need. WithTx just runs the function; the
// services under test are single-threaded.
type fakeRepo struct {
	resources    map[int64]domain.Resource
	requesters   map[int64]domain.Requester
	reservations []domain.Reservation
	items        []domain.LineItem

	nextResourceID    int64
	nextRequesterID   int64
	nextReservationID int64
	nextItemID        int64
}

func newFakeRepo(resources []domain.Resource, requesters []domain.Requester, reservations []domain.Reservation) *fakeRepo {
	f := &fakeRepo{
		resources:    make(map[int64]domain.Resource),
		requesters:   make(map[int64]domain.Requester),
		reservations: append([]domain.Reservation{}, reservations...),
	}
	for _, r := range resources {
		f.resources[r.ID] = r
		if r.ID > f.nextResourceID {
			f.nextResourceID = r.ID
		}
	}
	for _, r := range requesters {
		f.requesters[r.ID] = r
		if r.ID > f.nextRequesterID {
			f.nextRequesterID = r.ID
		}
	}
	for _, r := range reservations {
		if r.ID > f.nextReservationID {
			f.nextReservationID = r.ID
		}
	}
	return f
}

func (f *fakeRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeRepo) CreateResource(_ context.Context, r *domain.Resource) error {
	f.nextResourceID++
	r.ID = f.nextResourceID
	f.resources[r.ID] = *r
	return nil
}

func (f *fakeRepo) GetResource(_ context.Context, id int64) (domain.Resource, error) {
	res, ok := f.resources[id]
	if !ok {
		return domain.Resource{}, domain.ErrResourceNotFound
	}
	return res, nil
}

func (f *fakeRepo) GetResourceForUpdate(ctx context.Context, id int64) (domain.Resource, error) {
	return f.GetResource(ctx, id)
}

func (f *fakeRepo) ListResources(_ context.Context) ([]domain.Resource, error) {
	out := make([]domain.Resource, 0, len(f.resources))
	for id := int64(1); id <= f.nextResourceID; id++ {
		if res, ok := f.resources[id]; ok {
			out = append(out, res)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateResourceStatus(_ context.Context, id int64, status domain.ResourceStatus) error {
	res, ok := f.resources[id]
	if !ok {
		return domain.ErrResourceNotFound
	}
	res.Status = status
	f.resources[id] = res
	return nil
}

func (f *fakeRepo) CreateRequester(_ context.Context, r *domain.Requester) error {
	f.nextRequesterID++
	r.ID = f.nextRequesterID
	f.requesters[r.ID] = *r
	return nil
}

func (f *fakeRepo) GetRequester(_ context.Context, id int64) (domain.Requester, error) {
	req, ok := f.requesters[id]
	if !ok {
		return domain.Requester{}, domain.ErrRequesterNotFound
	}
	return req, nil
}

func (f *fakeRepo) ListBlockingReservations(_ context.Context, resourceID int64) ([]domain.Reservation, error) {
	var out []domain.Reservation
	for _, r := range f.reservations {
		if r.ResourceID == resourceID && r.Status.Blocking() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateReservation(_ context.Context, r *domain.Reservation) error {
	f.nextReservationID++
	r.ID = f.nextReservationID
	f.reservations = append(f.reservations, *r)
	return nil
}

func (f *fakeRepo) GetReservationForUpdate(_ context.Context, id int64) (domain.Reservation, error) {
	for _, r := range f.reservations {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.Reservation{}, domain.ErrReservationNotFound
}

func (f *fakeRepo) UpdateReservation(_ context.Context, upd domain.Reservation) error {
	for i, r := range f.reservations {
		if r.ID == upd.ID {
			f.reservations[i] = upd
			return nil
		}
	}
	return domain.ErrReservationNotFound
}

func (f *fakeRepo) ListLineItems(_ context.Context, reservationID int64) ([]domain.LineItem, error) {
	var out []domain.LineItem
	for _, li := range f.items {
		if li.ReservationID == reservationID {
			out = append(out, li)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateLineItem(_ context.Context, li *domain.LineItem) error {
	f.nextItemID++
	li.ID = f.nextItemID
	f.items = append(f.items, *li)
	return nil
}

func (f *fakeRepo) ListReservations(_ context.Context, filt ReservationFilter) ([]domain.Reservation, error) {
	var out []domain.Reservation
	for _, r := range f.reservations {
		if filt.ResourceID != 0 && r.ResourceID != filt.ResourceID {
			continue
		}
		if filt.RequesterID != 0 && r.RequesterID != filt.RequesterID {
			continue
		}
		if filt.Status != "" && r.Status != filt.Status {
			continue
		}
		if filt.Day != nil {
			day := filt.Day.UTC().Truncate(24 * time.Hour)
			window := domain.TimeRange{Start: day, End: day.Add(24 * time.Hour)}
			if !r.Range.Overlaps(window) {
				continue
			}
		}
		out = append(out, r)
	}
	return out, nil
}
