package handler

import (
	"errors"
	"log"
	"net/http"

	apperrors "github.com/saifpatel9/dropme/internal/errors"
	"github.com/saifpatel9/dropme/pkg/utils"
)

// handleError maps service errors onto HTTP responses. Unknown errors are
// logged and masked.
func handleError(w http.ResponseWriter, err error) {
	var apiErr *apperrors.APIError
	if errors.As(err, &apiErr) {
		utils.Error(w, apiErr)
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		utils.Error(w, apperrors.NotFound("resource"))
	case errors.Is(err, apperrors.ErrConflict):
		utils.Error(w, apperrors.Conflict("conflict"))
	case errors.Is(err, apperrors.ErrBadRequest):
		utils.Error(w, apperrors.BadRequest("bad request"))
	case errors.Is(err, apperrors.ErrNoDriversAvailable):
		utils.Error(w, apperrors.NoDriversAvailable())
	default:
		log.Printf("unhandled error: %v", err)
		utils.Error(w, apperrors.InternalError("an unexpected error occurred"))
	}
}
