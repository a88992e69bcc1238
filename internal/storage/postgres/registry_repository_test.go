package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/veralda/slotbook/internal/app"
	"github.com/veralda/slotbook/internal/domain"
	"github.com/veralda/slotbook/internal/testutil"
)

func TestRegistryRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewRegistryRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	t.Run("CreateResource assigns sequential ids", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		now := time.Now().UTC()
		first := domain.Resource{
			Name: "Room 101", Kind: "room", RateCents: 10000,
			RateUnit: domain.RatePerNight, Capacity: 2,
			Status: domain.ResourceAvailable, CreatedAt: now,
		}
		if err := repo.CreateResource(ctx, &first); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		second := domain.Resource{
			Name: "Van 7", Kind: "vehicle", RateCents: 2500,
			RateUnit: domain.RatePerHour, Capacity: 9,
			Status: domain.ResourceAvailable, CreatedAt: now,
		}
		if err := repo.CreateResource(ctx, &second); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if second.ID != first.ID+1 {
			t.Fatalf("expected consecutive ids, got %d then %d", first.ID, second.ID)
		}

		got, err := repo.GetResource(ctx, first.ID)
		if err != nil {
			t.Fatalf("get resource: %v", err)
		}
		if got.Name != "Room 101" || got.RateUnit != domain.RatePerNight {
			t.Fatalf("unexpected resource: %+v", got)
		}
	})

	t.Run("ListResources orders by id", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		testutil.InsertResourceAndRequester(t, ctx, pool, 10000, domain.RatePerNight)

		out, err := repo.ListResources(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(out) != 1 {
			t.Fatalf("expected 1 resource, got %d", len(out))
		}
	})

	t.Run("ListReservations filters", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		resourceID, requesterID := testutil.InsertResourceAndRequester(t, ctx, pool, 10000, domain.RatePerNight)

		mk := func(startDay, endDay int, status domain.ReservationStatus) {
			testutil.InsertReservation(t, ctx, pool, domain.Reservation{
				ResourceID: resourceID, RequesterID: requesterID,
				Range: domain.TimeRange{
					Start: time.Date(2024, 3, startDay, 0, 0, 0, 0, time.UTC),
					End:   time.Date(2024, 3, endDay, 0, 0, 0, 0, time.UTC),
				},
				Status: status,
			})
		}
		mk(1, 3, domain.ReservationBooked)
		mk(5, 7, domain.ReservationCompleted)

		out, err := repo.ListReservations(ctx, app.ReservationFilter{Status: domain.ReservationBooked})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(out) != 1 || out[0].Status != domain.ReservationBooked {
			t.Fatalf("unexpected result: %+v", out)
		}

		day := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)
		out, err = repo.ListReservations(ctx, app.ReservationFilter{Day: &day})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(out) != 1 || out[0].Status != domain.ReservationCompleted {
			t.Fatalf("expected the March 5-7 reservation, got %+v", out)
		}

		out, err = repo.ListReservations(ctx, app.ReservationFilter{ResourceID: resourceID})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(out) != 2 {
			t.Fatalf("expected 2 reservations, got %d", len(out))
		}
	})

	t.Run("CountReservationsByStatus groups rows", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		resourceID, requesterID := testutil.InsertResourceAndRequester(t, ctx, pool, 10000, domain.RatePerNight)

		for i, status := range []domain.ReservationStatus{
			domain.ReservationBooked, domain.ReservationCancelled, domain.ReservationCancelled,
		} {
			testutil.InsertReservation(t, ctx, pool, domain.Reservation{
				ResourceID: resourceID, RequesterID: requesterID,
				Range: domain.TimeRange{
					Start: time.Date(2024, 4, 1+2*i, 0, 0, 0, 0, time.UTC),
					End:   time.Date(2024, 4, 2+2*i, 0, 0, 0, 0, time.UTC),
				},
				Status: status,
			})
		}

		counts, err := repo.CountReservationsByStatus(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if counts["booked"] != 1 || counts["cancelled"] != 2 {
			t.Fatalf("unexpected counts: %v", counts)
		}
	})
}
