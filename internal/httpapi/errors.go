package httpapi

import (
    "errors"
    "net/http"

    "github.com/thgaskell/budget-sub000/internal/errs"
)

// writeServiceErr maps service errors onto HTTP statuses: unknown
// references are 404, invalid input 422, anything else 500.
func writeServiceErr(w http.ResponseWriter, err error) {
    switch {
    case errors.Is(err, errs.ErrNotFound):
        writeErr(w, http.StatusNotFound, err.Error(), "not_found")
    case errors.Is(err, errs.ErrInvalid), errors.Is(err, errs.ErrUnprocessable):
        writeErr(w, http.StatusUnprocessableEntity, err.Error(), "validation_error")
    case errors.Is(err, errs.ErrConflict):
        writeErr(w, http.StatusConflict, err.Error(), "conflict")
    default:
        writeErr(w, http.StatusInternalServerError, "internal error", "")
    }
}
