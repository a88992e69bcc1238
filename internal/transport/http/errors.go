package http

import (
	"encoding/json"
	"net/http"

	"github.com/veralda/slotbook/internal/domain"
)

const (
	codeMethodNotAllowed     = "method_not_allowed"
	codeNotFound             = "not_found"
	codeInvalidRequestBody   = "invalid_request_body"
	codeInvalidID            = "invalid_id"
	codeNameRequired         = "name_required"
	codeInvalidRate          = "invalid_rate"
	codeInvalidRateUnit      = "invalid_rate_unit"
	codeInvalidCapacity      = "invalid_capacity"
	codeInvalidDeposit       = "invalid_deposit"
	codeInvalidRange         = "invalid_range"
	codeInvalidQuantity      = "invalid_quantity"
	codeInvalidStatus        = "invalid_status"
	codeResourceNotFound     = "resource_not_found"
	codeRequesterNotFound    = "requester_not_found"
	codeReservationNotFound  = "reservation_not_found"
	codeResourceUnavailable  = "resource_unavailable"
	codeConflict             = "conflict"
	codeInvalidTransition    = "invalid_transition"
	codeAlreadyFinal         = "already_final"
	codeReservationNotActive = "reservation_not_active"
	codeForbidden            = "forbidden"
	codeInternalError        = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError maps a service error onto a status and code. Every
// handler funnels its non-nil errors through here.
func writeDomainError(w http.ResponseWriter, err error) {
	switch err {
	case domain.ErrNameRequired:
		writeError(w, http.StatusBadRequest, codeNameRequired, err.Error())
	case domain.ErrInvalidRate:
		writeError(w, http.StatusBadRequest, codeInvalidRate, err.Error())
	case domain.ErrInvalidRateUnit:
		writeError(w, http.StatusBadRequest, codeInvalidRateUnit, err.Error())
	case domain.ErrInvalidCapacity:
		writeError(w, http.StatusBadRequest, codeInvalidCapacity, err.Error())
	case domain.ErrInvalidDeposit:
		writeError(w, http.StatusBadRequest, codeInvalidDeposit, err.Error())
	case domain.ErrInvalidRange:
		writeError(w, http.StatusBadRequest, codeInvalidRange, err.Error())
	case domain.ErrInvalidQuantity:
		writeError(w, http.StatusBadRequest, codeInvalidQuantity, err.Error())
	case domain.ErrInvalidStatus:
		writeError(w, http.StatusBadRequest, codeInvalidStatus, err.Error())
	case domain.ErrInvalidID:
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case domain.ErrResourceNotFound:
		writeError(w, http.StatusNotFound, codeResourceNotFound, err.Error())
	case domain.ErrRequesterNotFound:
		writeError(w, http.StatusNotFound, codeRequesterNotFound, err.Error())
	case domain.ErrReservationNotFound:
		writeError(w, http.StatusNotFound, codeReservationNotFound, err.Error())
	case domain.ErrResourceUnavailable:
		writeError(w, http.StatusConflict, codeResourceUnavailable, err.Error())
	case domain.ErrConflict:
		writeError(w, http.StatusConflict, codeConflict, err.Error())
	case domain.ErrInvalidTransition:
		writeError(w, http.StatusConflict, codeInvalidTransition, err.Error())
	case domain.ErrAlreadyFinal:
		writeError(w, http.StatusConflict, codeAlreadyFinal, err.Error())
	case domain.ErrReservationNotActive:
		writeError(w, http.StatusConflict, codeReservationNotActive, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
