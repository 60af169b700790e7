package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hytech-racing/cars-webserver/internal/models"
)

type HandlerFunc func(w http.ResponseWriter, r *http.Request) *HandlerError

type HandlerError struct {
	Message    string
	StatusCode int
}

func NewHandlerError(message string, code int) *HandlerError {
	return &HandlerError{
		Message:    message,
		StatusCode: code,
	}
}

// HandlerErrorFromErr picks the status code for an error coming back from the data access layer.
func HandlerErrorFromErr(err error) *HandlerError {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.Is(err, models.ErrNotFound):
		return NewHandlerError(err.Error(), http.StatusNotFound)
	case errors.Is(err, models.ErrValidation):
		return NewHandlerError(err.Error(), http.StatusBadRequest)
	case errors.As(err, &maxBytesErr):
		return NewHandlerError(err.Error(), http.StatusRequestEntityTooLarge)
	default:
		return NewHandlerError(err.Error(), http.StatusInternalServerError)
	}
}

func (fn HandlerFunc) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
	}()

	if handlerError := fn(w, r); handlerError != nil {
		handleHTTPError(w, *handlerError)
	}
}

func handleHTTPError(w http.ResponseWriter, err HandlerError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"data":    make([]interface{}, 0),
		"message": err.Message,
	})
}
