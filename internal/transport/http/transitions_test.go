package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/veralda/slotbook/internal/app"
	"github.com/veralda/slotbook/internal/domain"
)

type stubLifecycleService struct {
	reservation domain.Reservation
	item        domain.LineItem
	err         error

	lastAction string
	lastAt     *time.Time
}

func (s *stubLifecycleService) Activate(_ context.Context, _ int64, at *time.Time) (domain.Reservation, error) {
	s.lastAction, s.lastAt = "activate", at
	return s.reservation, s.err
}

func (s *stubLifecycleService) Complete(_ context.Context, _ int64) (domain.Reservation, error) {
	s.lastAction = "complete"
	return s.reservation, s.err
}

func (s *stubLifecycleService) Cancel(_ context.Context, _ int64) (domain.Reservation, error) {
	s.lastAction = "cancel"
	return s.reservation, s.err
}

func (s *stubLifecycleService) MarkNoShow(_ context.Context, _ int64) (domain.Reservation, error) {
	s.lastAction = "no-show"
	return s.reservation, s.err
}

func (s *stubLifecycleService) AddLineItem(_ context.Context, _ app.AddLineItemInput) (domain.LineItem, error) {
	s.lastAction = "items"
	return s.item, s.err
}

func TestHandleReservationActions_Transitions(t *testing.T) {
	t.Parallel()

	active := domain.Reservation{
		ID: 3, ResourceID: 1, RequesterID: 2,
		Status: domain.ReservationActive, BaseCents: 20000,
	}

	tests := []struct {
		name           string
		path           string
		body           string
		serviceErr     error
		expectedStatus int
		expectedAction string
	}{
		{
			name:           "activate",
			path:           "/reservations/3/activate",
			expectedStatus: http.StatusOK,
			expectedAction: "activate",
		},
		{
			name:           "activate with override time",
			path:           "/reservations/3/activate",
			body:           `{"at":"2025-02-01T12:00:00Z"}`,
			expectedStatus: http.StatusOK,
			expectedAction: "activate",
		},
		{
			name:           "cancel",
			path:           "/reservations/3/cancel",
			expectedStatus: http.StatusOK,
			expectedAction: "cancel",
		},
		{
			name:           "no-show",
			path:           "/reservations/3/no-show",
			expectedStatus: http.StatusOK,
			expectedAction: "no-show",
		},
		{
			name:           "complete",
			path:           "/reservations/3/complete",
			expectedStatus: http.StatusOK,
			expectedAction: "complete",
		},
		{
			name:           "unknown action",
			path:           "/reservations/3/reverse",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "bad id",
			path:           "/reservations/abc/cancel",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "unknown reservation",
			path:           "/reservations/99/cancel",
			serviceErr:     domain.ErrReservationNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "illegal transition",
			path:           "/reservations/3/complete",
			serviceErr:     domain.ErrInvalidTransition,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "already final",
			path:           "/reservations/3/cancel",
			serviceErr:     domain.ErrAlreadyFinal,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "internal error",
			path:           "/reservations/3/cancel",
			serviceErr:     errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubLifecycleService{reservation: active, err: tt.serviceErr}
			req := httptest.NewRequest(http.MethodPost, tt.path, bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			HandleReservationActions(svc).ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, rec.Code, rec.Body.String())
			}
			if tt.expectedAction != "" && svc.lastAction != tt.expectedAction {
				t.Fatalf("expected action %q, got %q", tt.expectedAction, svc.lastAction)
			}
		})
	}
}

func TestHandleReservationActions_ActivateTimePassedThrough(t *testing.T) {
	t.Parallel()

	svc := &stubLifecycleService{reservation: domain.Reservation{ID: 3}}
	body := `{"at":"2025-02-01T12:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/reservations/3/activate", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	HandleReservationActions(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	want := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	if svc.lastAt == nil || !svc.lastAt.Equal(want) {
		t.Fatalf("expected at %v, got %v", want, svc.lastAt)
	}
}

func TestHandleReservationActions_AddLineItem(t *testing.T) {
	t.Parallel()

	item := domain.LineItem{
		ID: 5, ReservationID: 3, Description: "breakfast",
		Quantity: 2, UnitCents: 2000,
	}

	tests := []struct {
		name           string
		body           string
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "success",
			body:           `{"description":"breakfast","quantity":2,"unit_cents":2000}`,
			expectedStatus: http.StatusCreated,
			expectedSubstr: `"total_cents":4000`,
		},
		{
			name:           "invalid json",
			body:           `{"description":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid quantity",
			body:           `{"description":"breakfast","quantity":0,"unit_cents":2000}`,
			serviceErr:     domain.ErrInvalidQuantity,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "not active",
			body:           `{"description":"breakfast","quantity":1,"unit_cents":2000}`,
			serviceErr:     domain.ErrReservationNotActive,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "already final",
			body:           `{"description":"breakfast","quantity":1,"unit_cents":2000}`,
			serviceErr:     domain.ErrAlreadyFinal,
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubLifecycleService{item: item, err: tt.serviceErr}
			req := httptest.NewRequest(http.MethodPost, "/reservations/3/items", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			HandleReservationActions(svc).ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
			if tt.expectedSubstr != "" && !strings.Contains(rec.Body.String(), tt.expectedSubstr) {
				t.Fatalf("expected response to contain %q, got %q", tt.expectedSubstr, rec.Body.String())
			}
		})
	}
}

func TestHandleReservationActions_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/reservations/3/cancel", nil)
	rec := httptest.NewRecorder()

	HandleReservationActions(&stubLifecycleService{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rec.Code)
	}
}
