package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/veralda/slotbook/internal/app"
	"github.com/veralda/slotbook/internal/domain"
)

// LifecycleTransitioner is the minimal interface needed to drive a
// reservation through its lifecycle.
type LifecycleTransitioner interface {
	Activate(ctx context.Context, id int64, at *time.Time) (domain.Reservation, error)
	Complete(ctx context.Context, id int64) (domain.Reservation, error)
	Cancel(ctx context.Context, id int64) (domain.Reservation, error)
	MarkNoShow(ctx context.Context, id int64) (domain.Reservation, error)
	AddLineItem(ctx context.Context, in app.AddLineItemInput) (domain.LineItem, error)
}

// HandleReservationActions returns an HTTP handler for the transition
// and line-item endpoints: POST /reservations/{id}/{activate|cancel|
// no-show|complete|items}.
func HandleReservationActions(svc LifecycleTransitioner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		id, action, ok := parseReservationActionPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		if action == "items" {
			handleAddLineItem(w, r, svc, id)
			return
		}

		var (
			resv domain.Reservation
			err  error
		)
		switch action {
		case "activate":
			var at *time.Time
			if at, err = parseActivateBody(r); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
			resv, err = svc.Activate(r.Context(), id, at)
		case "cancel":
			resv, err = svc.Cancel(r.Context(), id)
		case "no-show":
			resv, err = svc.MarkNoShow(r.Context(), id)
		case "complete":
			resv, err = svc.Complete(r.Context(), id)
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toReservationResponse(resv))
	}
}

func handleAddLineItem(w http.ResponseWriter, r *http.Request, svc LifecycleTransitioner, id int64) {
	var req addLineItemRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	li, err := svc.AddLineItem(r.Context(), app.AddLineItemInput{
		ReservationID: id,
		Description:   req.Description,
		Quantity:      req.Quantity,
		UnitCents:     req.UnitCents,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(lineItemResponse{
		ID:            li.ID,
		ReservationID: li.ReservationID,
		Description:   li.Description,
		Quantity:      li.Quantity,
		UnitCents:     li.UnitCents,
		TotalCents:    li.TotalCents(),
		CreatedAt:     li.CreatedAt,
	})
}

// parseActivateBody accepts an empty body (activate now) or an optional
// {"at": <RFC 3339>} override.
func parseActivateBody(r *http.Request) (*time.Time, error) {
	var req activateRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	if req.At == "" {
		return nil, nil
	}
	at, err := time.Parse(time.RFC3339, req.At)
	if err != nil {
		return nil, err
	}
	return &at, nil
}

func parseReservationActionPath(path string) (int64, string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 {
		return 0, "", false
	}
	if parts[0] != "reservations" {
		return 0, "", false
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, "", false
	}
	return id, parts[2], true
}

type activateRequest struct {
	At string `json:"at,omitempty"`
}

type addLineItemRequest struct {
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	UnitCents   int64  `json:"unit_cents"`
}

type lineItemResponse struct {
	ID            int64     `json:"id"`
	ReservationID int64     `json:"reservation_id"`
	Description   string    `json:"description"`
	Quantity      int       `json:"quantity"`
	UnitCents     int64     `json:"unit_cents"`
	TotalCents    int64     `json:"total_cents"`
	CreatedAt     time.Time `json:"created_at"`
}
