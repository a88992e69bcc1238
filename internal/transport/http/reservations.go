package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/veralda/slotbook/internal/app"
	"github.com/veralda/slotbook/internal/domain"
)

// ReservationCreator is the minimal interface needed to create a reservation.
type ReservationCreator interface {
	CheckAndReserve(ctx context.Context, in app.CheckAndReserveInput) (domain.Reservation, error)
}

// ReservationLister is the minimal interface needed for report queries.
type ReservationLister interface {
	ListReservations(ctx context.Context, f app.ReservationFilter) ([]domain.Reservation, error)
}

// HandleReservations returns an HTTP handler for reservation
// creation/listing. List filters come from query parameters:
// resource_id, requester_id, status, and day (RFC 3339 date).
func HandleReservations(creator ReservationCreator, lister ReservationLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			f, err := parseReservationFilter(r)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			reservations, err := lister.ListReservations(r.Context(), f)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			resp := make([]reservationResponse, 0, len(reservations))
			for _, resv := range reservations {
				resp = append(resp, toReservationResponse(resv))
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)
			return
		case http.MethodPost:
			var req createReservationRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			start, err := time.Parse(time.RFC3339, req.Start)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRange, "invalid start format")
				return
			}
			end, err := time.Parse(time.RFC3339, req.End)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRange, "invalid end format")
				return
			}

			resv, err := creator.CheckAndReserve(r.Context(), app.CheckAndReserveInput{
				ResourceID:   req.ResourceID,
				RequesterID:  req.RequesterID,
				Start:        start,
				End:          end,
				DepositCents: req.DepositCents,
			})
			if err != nil {
				writeDomainError(w, err)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(toReservationResponse(resv))
			return
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
	}
}

func parseReservationFilter(r *http.Request) (app.ReservationFilter, error) {
	var f app.ReservationFilter
	q := r.URL.Query()

	if v := q.Get("resource_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return f, domain.ErrInvalidID
		}
		f.ResourceID = id
	}
	if v := q.Get("requester_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return f, domain.ErrInvalidID
		}
		f.RequesterID = id
	}
	if v := q.Get("status"); v != "" {
		f.Status = domain.ReservationStatus(v)
	}
	if v := q.Get("day"); v != "" {
		day, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, domain.ErrInvalidRange
		}
		f.Day = &day
	}
	return f, nil
}

type createReservationRequest struct {
	ResourceID   int64  `json:"resource_id"`
	RequesterID  int64  `json:"requester_id"`
	Start        string `json:"start"`
	End          string `json:"end"`
	DepositCents int64  `json:"deposit_cents,omitempty"`
}

type reservationResponse struct {
	ID           int64     `json:"id"`
	ResourceID   int64     `json:"resource_id"`
	RequesterID  int64     `json:"requester_id"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Status       string    `json:"status"`
	BaseCents    int64     `json:"base_cents"`
	DepositCents int64     `json:"deposit_cents"`
	TotalCents   int64     `json:"total_cents"`
	CreatedAt    time.Time `json:"created_at"`
}

func toReservationResponse(resv domain.Reservation) reservationResponse {
	return reservationResponse{
		ID:           resv.ID,
		ResourceID:   resv.ResourceID,
		RequesterID:  resv.RequesterID,
		Start:        resv.Range.Start,
		End:          resv.Range.End,
		Status:       string(resv.Status),
		BaseCents:    resv.BaseCents,
		DepositCents: resv.DepositCents,
		TotalCents:   resv.TotalCents,
		CreatedAt:    resv.CreatedAt,
	}
}
