package handlers

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	"github.com/gloggi/ausbildung-api/internal/apperrors"
)

// httpError maps store errors onto HTTP problems. Errors that already carry a
// status pass through.
func httpError(err error) error {
	var (
		status huma.StatusError
		verr   *apperrors.ValidationError
		uerr   *apperrors.UniquenessError
	)
	switch {
	case errors.As(err, &status):
		return err
	case errors.As(err, &verr):
		details := make([]error, 0, len(verr.Fields))
		for _, name := range verr.FieldNames() {
			message := verr.Fields[name].Error()
			if label := verr.Label(name); label != "" {
				message = label + ": " + message
			}
			details = append(details, &huma.ErrorDetail{
				Message:  message,
				Location: "body." + name,
			})
		}
		return huma.Error422UnprocessableEntity(verr.Entity+" is invalid", details...)
	case errors.As(err, &uerr):
		return huma.Error409Conflict(uerr.Error())
	case errors.Is(err, apperrors.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	}
	zap.L().Error("request failed", zap.Error(err))
	return huma.Error500InternalServerError("Internal server error")
}
