package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/nephro/dialysis/internal/platform/apperr"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// StatusFor maps an error to its HTTP status and body. Storage failures are
// reported without their cause.
func StatusFor(err error) (int, ErrorBody) {
	var (
		dup *apperr.DuplicateEntityError
		fk  *apperr.ForeignKeyViolationError
		nf  *apperr.NotFoundError
		val *apperr.ValidationError
		st  *apperr.StorageError
		he  *echo.HTTPError
	)
	switch {
	case errors.As(err, &val):
		return http.StatusBadRequest, ErrorBody{Error: val.Error(), Kind: "validation", Field: val.Field}
	case errors.As(err, &nf):
		return http.StatusNotFound, ErrorBody{Error: nf.Error(), Kind: "not_found"}
	case errors.As(err, &dup):
		return http.StatusConflict, ErrorBody{Error: dup.Error(), Kind: "duplicate", Field: dup.Field}
	case errors.As(err, &fk):
		return http.StatusUnprocessableEntity, ErrorBody{Error: fk.Error(), Kind: "foreign_key", Field: fk.Reference}
	case errors.As(err, &st):
		return http.StatusInternalServerError, ErrorBody{Error: "storage unavailable", Kind: "storage"}
	case errors.As(err, &he):
		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}
		return he.Code, ErrorBody{Error: msg, Kind: "http"}
	}
	return http.StatusInternalServerError, ErrorBody{Error: "internal server error", Kind: "internal"}
}

// ErrorHandler renders typed errors as field-level JSON responses.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, body := StatusFor(err)
		body.RequestID, _ = c.Get("request_id").(string)
		if status >= 500 {
			logger.Error().Err(err).Str("request_id", body.RequestID).Msg("request failed")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.Error().Err(err).Msg("write error response")
		}
	}
}
