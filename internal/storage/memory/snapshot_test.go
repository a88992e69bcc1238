package memory

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/veralda/slotbook/internal/domain"
)

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	s := NewStore()
	ctx := context.Background()
	created := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)

	res := &domain.Resource{
		Name: "Suite 300 | Sea View", Kind: "room",
		RateCents: 25000, RateUnit: domain.RatePerNight,
		Capacity: 4, Status: domain.ResourceUnderMaintenance, CreatedAt: created,
	}
	if err := s.CreateResource(ctx, res); err != nil {
		t.Fatalf("create resource: %v", err)
	}
	req := &domain.Requester{Name: "Grace", Email: "grace@example.com", CreatedAt: created}
	if err := s.CreateRequester(ctx, req); err != nil {
		t.Fatalf("create requester: %v", err)
	}
	resv := &domain.Reservation{
		ResourceID: res.ID, RequesterID: req.ID,
		Range: domain.TimeRange{
			Start: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC),
		},
		Status:       domain.ReservationCompleted,
		BaseCents:    50000,
		DepositCents: 10000,
		TotalCents:   44000,
		CreatedAt:    created,
	}
	if err := s.CreateReservation(ctx, resv); err != nil {
		t.Fatalf("create reservation: %v", err)
	}
	item := &domain.LineItem{
		ReservationID: resv.ID, Description: "breakfast",
		Quantity: 2, UnitCents: 2000, CreatedAt: created,
	}
	if err := s.CreateLineItem(ctx, item); err != nil {
		t.Fatalf("create line item: %v", err)
	}

	var buf bytes.Buffer
	if err := s.WriteSnapshot(&buf); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	restored := NewStore()
	if err := restored.ReadSnapshot(&buf); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}

	gotRes, err := restored.GetResource(ctx, res.ID)
	if err != nil {
		t.Fatalf("get resource: %v", err)
	}
	if gotRes != *res {
		t.Fatalf("resource mismatch:\n got %+v\nwant %+v", gotRes, *res)
	}

	gotResv, err := restored.GetReservationForUpdate(ctx, resv.ID)
	if err != nil {
		t.Fatalf("get reservation: %v", err)
	}
	if gotResv != *resv {
		t.Fatalf("reservation mismatch:\n got %+v\nwant %+v", gotResv, *resv)
	}

	items, err := restored.ListLineItems(ctx, resv.ID)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 1 || items[0] != *item {
		t.Fatalf("item mismatch: %+v", items)
	}

	// Counters continue after the highest restored id.
	next := &domain.Reservation{
		ResourceID: res.ID, RequesterID: req.ID,
		Range:  gotResv.Range,
		Status: domain.ReservationBooked,
	}
	if err := restored.CreateReservation(ctx, next); err != nil {
		t.Fatalf("create after restore: %v", err)
	}
	if next.ID != resv.ID+1 {
		t.Fatalf("expected id %d after restore, got %d", resv.ID+1, next.ID)
	}
}

func TestSnapshotFileRoundTrip(t *testing.T) {
	t.Parallel()

	s := NewStore()
	ctx := context.Background()
	res := &domain.Resource{
		Name: "Van 7", Kind: "vehicle", RateCents: 2500,
		RateUnit: domain.RatePerHour, Capacity: 9,
		Status: domain.ResourceAvailable, CreatedAt: time.Unix(0, 0).UTC(),
	}
	if err := s.CreateResource(ctx, res); err != nil {
		t.Fatalf("create resource: %v", err)
	}

	path := filepath.Join(t.TempDir(), "ledger.dat")
	if err := s.SaveFile(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	restored := NewStore()
	if err := restored.LoadFile(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	got, err := restored.GetResource(ctx, res.ID)
	if err != nil {
		t.Fatalf("get resource: %v", err)
	}
	if got != *res {
		t.Fatalf("resource mismatch: %+v", got)
	}
}

func TestSnapshotCorruption(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{"unknown tag", "widget|1|x\n"},
		{"short resource record", "resource|1|name\n"},
		{"inverted reservation range", "reservation|1|1|1|200|100|booked|0|0|0|0\n"},
		{"bogus status", "resource|1|x|room|100|night|1|melted|0\n"},
		{"non-numeric resource rate", "resource|1|Room%20101|room|garbage|night|2|available|0\n"},
		{"non-numeric reservation deposit", "reservation|1|1|1|100|200|booked|0|zz|0|0\n"},
		{"non-numeric item quantity", "item|1|1|breakfast|two|2000|0\n"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := NewStore()
			err := s.ReadSnapshot(strings.NewReader(tt.data))
			if !errors.Is(err, domain.ErrStorageFailure) {
				t.Fatalf("expected ErrStorageFailure, got %v", err)
			}
		})
	}
}

func TestSnapshotMissingFile(t *testing.T) {
	t.Parallel()

	s := NewStore()
	err := s.LoadFile(filepath.Join(t.TempDir(), "absent.dat"))
	if !errors.Is(err, domain.ErrStorageFailure) {
		t.Fatalf("expected ErrStorageFailure, got %v", err)
	}
}
