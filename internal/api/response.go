package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"fundlog/pkg/fundlog"
)

// ErrorResponse represents an error API response with structured information.
type ErrorResponse struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	ErrorCode string `json:"error_code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// writeErrorResponse writes err with an HTTP status derived from its
// fundlog error code, falling back to httpStatus for unclassified errors.
func writeErrorResponse(w http.ResponseWriter, r *http.Request, httpStatus int, err error) {
	response := ErrorResponse{
		Code:    httpStatus,
		Message: err.Error(),
	}

	var fErr *fundlog.Error
	if errors.As(err, &fErr) {
		response.ErrorCode = string(fErr.Code)
		httpStatus = mapErrorCodeToHTTPStatus(fErr.Code)
		response.Code = httpStatus
	}
	if r != nil {
		response.RequestID = middleware.GetReqID(r.Context())
	}

	setErrorMessage(w, response.Message)
	writeJSON(w, httpStatus, response)
}

// mapErrorCodeToHTTPStatus maps business error codes to HTTP status codes.
func mapErrorCodeToHTTPStatus(code fundlog.ErrorCode) int {
	switch code {
	case fundlog.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case fundlog.ErrCodeNotFound:
		return http.StatusNotFound
	case fundlog.ErrCodeSourceUnavailable:
		return http.StatusBadGateway
	case fundlog.ErrCodeDatabase, fundlog.ErrCodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func setErrorMessage(w http.ResponseWriter, message string) {
	if lw, ok := w.(interface{ SetErrorMessage(string) }); ok {
		lw.SetErrorMessage(message)
	}
}
