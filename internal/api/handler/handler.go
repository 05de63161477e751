package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"recipebox/internal/common"
	"recipebox/internal/platform/logging"
)

var errInvalidPayload = common.NewError(common.ErrBadRequest, "Invalid request payload")

// decodeJSON treats an empty body as an empty object so that missing fields
// surface as validation errors rather than decode errors. The body must hold
// exactly one JSON value.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errInvalidPayload
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errInvalidPayload
	}
	return nil
}

// respondError logs server-side failures and writes the public error body.
func respondError(w http.ResponseWriter, r *http.Request, log logging.Logger, err error) {
	if common.HTTPStatusFromError(err) >= http.StatusInternalServerError {
		log.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	common.RespondWithAppError(w, err)
}
