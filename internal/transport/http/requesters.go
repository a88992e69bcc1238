package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/veralda/slotbook/internal/app"
	"github.com/veralda/slotbook/internal/domain"
)

// RequesterService is the minimal interface needed to register requesters.
type RequesterService interface {
	RegisterRequester(ctx context.Context, in app.RegisterRequesterInput) (domain.Requester, error)
}

// HandleRequesters returns an HTTP handler for requester registration.
func HandleRequesters(svc RequesterService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req createRequesterRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		requester, err := svc.RegisterRequester(r.Context(), app.RegisterRequesterInput{
			Name:  req.Name,
			Email: req.Email,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(requesterResponse{
			ID:        requester.ID,
			Name:      requester.Name,
			Email:     requester.Email,
			CreatedAt: requester.CreatedAt,
		})
	}
}

type createRequesterRequest struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type requesterResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
