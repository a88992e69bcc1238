package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/veralda/slotbook/internal/app"
	"github.com/veralda/slotbook/internal/domain"
)

// ResourceService is the minimal interface needed for resource endpoints.
type ResourceService interface {
	RegisterResource(ctx context.Context, in app.RegisterResourceInput) (domain.Resource, error)
	ListResources(ctx context.Context) ([]domain.Resource, error)
	SetResourceStatus(ctx context.Context, id int64, status domain.ResourceStatus) (domain.Resource, error)
}

// HandleResources returns an HTTP handler for resource creation/listing.
func HandleResources(svc ResourceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			resources, err := svc.ListResources(r.Context())
			if err != nil {
				writeDomainError(w, err)
				return
			}
			resp := make([]resourceResponse, 0, len(resources))
			for _, res := range resources {
				resp = append(resp, toResourceResponse(res))
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)
			return
		case http.MethodPost:
			var req createResourceRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			res, err := svc.RegisterResource(r.Context(), app.RegisterResourceInput{
				Name:      req.Name,
				Kind:      req.Kind,
				RateCents: req.RateCents,
				RateUnit:  domain.RateUnit(req.RateUnit),
				Capacity:  req.Capacity,
			})
			if err != nil {
				writeDomainError(w, err)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(toResourceResponse(res))
			return
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
	}
}

// HandleResourceStatus returns an HTTP handler for taking a resource in
// or out of service: POST /resources/{id}/status.
func HandleResourceStatus(svc ResourceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		id, ok := parseResourceStatusPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		var req setResourceStatusRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		res, err := svc.SetResourceStatus(r.Context(), id, domain.ResourceStatus(req.Status))
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toResourceResponse(res))
	}
}

func parseResourceStatusPath(path string) (int64, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 {
		return 0, false
	}
	if parts[0] != "resources" || parts[2] != "status" {
		return 0, false
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

type createResourceRequest struct {
	Name      string `json:"name"`
	Kind      string `json:"kind,omitempty"`
	RateCents int64  `json:"rate_cents"`
	RateUnit  string `json:"rate_unit"`
	Capacity  int    `json:"capacity"`
}

type setResourceStatusRequest struct {
	Status string `json:"status"`
}

type resourceResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind,omitempty"`
	RateCents int64     `json:"rate_cents"`
	RateUnit  string    `json:"rate_unit"`
	Capacity  int       `json:"capacity"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toResourceResponse(res domain.Resource) resourceResponse {
	return resourceResponse{
		ID:        res.ID,
		Name:      res.Name,
		Kind:      res.Kind,
		RateCents: res.RateCents,
		RateUnit:  string(res.RateUnit),
		Capacity:  res.Capacity,
		Status:    string(res.Status),
		CreatedAt: res.CreatedAt,
	}
}
