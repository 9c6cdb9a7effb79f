package handlers

import (
	"errors"
	"net/http"

	"github.com/BradenHooton/tasktrack/internal/models"
	pkghttp "github.com/BradenHooton/tasktrack/pkg/http"
)

// writeRequestError reports a body that could not be decoded or validated.
func writeRequestError(w http.ResponseWriter, err error) {
	var vErr *models.ValidationError
	if errors.As(err, &vErr) {
		pkghttp.WriteValidationError(w, vErr.Message, vErr.Field)
		return
	}
	pkghttp.WriteBadRequest(w, "Invalid request body")
}
