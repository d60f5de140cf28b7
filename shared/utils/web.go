package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	internal_errors "github.com/deskfolio/deskfolio/shared/errors"
	"github.com/deskfolio/deskfolio/shared/logger"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// WriteErrorAndStatusCode writes err as plain text. Errors without a status
// are reported as a generic 500 and logged.
func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	var e *internal_errors.ErrorWithStatusCode
	if errors.As(err, &e) && e.StatusCode != 0 {
		if e.StatusCode >= http.StatusInternalServerError {
			logger.Log.Error("request failed", "status", e.StatusCode, "error", err, "cause", e.Err)
		}
		http.Error(w, e.Message, e.StatusCode)
		return
	}
	logger.Log.Error("internal error", "error", err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

// WriteJSON encodes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		logger.Log.Error("failed to encode response", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

func DecodeValidate(r io.ReadCloser, body any) error {
	if err := Decode(r, body); err != nil {
		return err
	}
	if err := validate.Struct(body); err != nil {
		logger.Log.Debug("request validation failed", "error", err)
		return &internal_errors.ErrorWithStatusCode{Message: "Required fields missing or invalid", StatusCode: http.StatusBadRequest, Kind: internal_errors.ErrValidation}
	}
	return nil
}

func Decode(r io.ReadCloser, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		logger.Log.Debug("request body is not json", "error", err)
		return &internal_errors.ErrorWithStatusCode{Message: "Body is invalid json", StatusCode: http.StatusBadRequest, Kind: internal_errors.ErrValidation}
	}
	return nil
}
