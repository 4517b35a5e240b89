package api

import (
	"net/http"

	"github.com/phrazzld/careplan-api/internal/api/shared"
	"github.com/phrazzld/careplan-api/internal/apperr"
)

// HandleAPIError writes err as the JSON error body and status. Application
// errors keep their kind, code and message; anything else becomes a 500 whose
// cause is logged redacted and never sent to the client.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithError(w, r, apperr.From(err))
}

// invalidBody is the error for a request body that is not valid JSON.
func invalidBody(err error) *apperr.Error {
	return apperr.Validation("Invalid request format", err)
}

// invalidFields is the error for a decoded request that fails validation.
func invalidFields(err error) *apperr.Error {
	return apperr.Validation(shared.ValidationMessage(err), err)
}
