package templatekits

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/goliatone/go-templatekit/pkg/kit"
	"github.com/goliatone/go-templatekit/pkg/media"
)

// Error codes carried in the response envelope.
const (
	CodeNotFound         = "not_found"
	CodeGenericAPIError  = "generic_api_error"
	CodeForbidden        = "forbidden"
	CodeMethodNotAllowed = "method_not_allowed"
)

const (
	msgKitNotFound      = "Sorry this Template Kit was not found"
	msgTemplateNotFound = "Sorry this template was not found"
	msgImportNotFound   = "Imported template not found"
	msgMissingBuilder   = "Missing required plugin: Elementor"
	msgImageParameter   = "Image parameter error"
	msgForbidden        = "Sorry, you are not allowed to do that."
)

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// APIError is an error already translated for the response envelope.
type APIError struct {
	Status   int
	Code     string
	Message  string
	Endpoint string
	Err      error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error { return e.Err }

func (e *APIError) StatusCode() int {
	if e.Status <= 0 {
		return http.StatusInternalServerError
	}
	return e.Status
}

type errorResponse struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Data    errorData `json:"data"`
}

type errorData struct {
	Status   int    `json:"status"`
	Endpoint string `json:"endpoint"`
}

func genericError(endpoint string, err error) *APIError {
	return &APIError{
		Status:   http.StatusInternalServerError,
		Code:     CodeGenericAPIError,
		Message:  publicMessage(err),
		Endpoint: endpoint,
		Err:      err,
	}
}

// publicMessage maps domain errors to the messages clients display.
func publicMessage(err error) string {
	switch {
	case err == nil:
		return http.StatusText(http.StatusInternalServerError)
	case errors.Is(err, kit.ErrKitNotFound):
		return msgKitNotFound
	case errors.Is(err, kit.ErrTemplateNotFound):
		return msgTemplateNotFound
	case errors.Is(err, kit.ErrImportNotFound):
		return msgImportNotFound
	case errors.Is(err, media.ErrLibraryUnavailable):
		return msgMissingBuilder
	case errors.Is(err, media.ErrInvalidImage):
		return msgImageParameter
	default:
		return err.Error()
	}
}

// toAPIError translates err once at the boundary.
func toAPIError(endpoint string, err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr != nil {
		if apiErr.Endpoint == "" {
			apiErr.Endpoint = endpoint
		}
		return apiErr
	}
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		status := httpErr.StatusCode()
		return &APIError{
			Status:   status,
			Code:     codeForStatus(status),
			Message:  httpErr.Error(),
			Endpoint: endpoint,
			Err:      err,
		}
	}
	return genericError(endpoint, err)
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusForbidden, http.StatusUnauthorized:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusMethodNotAllowed:
		return CodeMethodNotAllowed
	default:
		return CodeGenericAPIError
	}
}

func writeError(w http.ResponseWriter, apiErr *APIError) {
	if w == nil || apiErr == nil {
		return
	}
	status := apiErr.StatusCode()
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(errorResponse{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Data:    errorData{Status: status, Endpoint: apiErr.Endpoint},
	})
}

func writeGuardError(w http.ResponseWriter, endpoint string, err error) {
	apiErr := &APIError{
		Status:   http.StatusForbidden,
		Code:     CodeForbidden,
		Message:  msgForbidden,
		Endpoint: endpoint,
		Err:      err,
	}
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		if code := httpErr.StatusCode(); code > 0 {
			apiErr.Status = code
			apiErr.Code = codeForStatus(code)
		}
	}
	writeError(w, apiErr)
}
