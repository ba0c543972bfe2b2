package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/deppfellow/contosopizza/internal/errs"
	"github.com/deppfellow/contosopizza/internal/sqlerr"
)

// normalize maps any error reaching the router to the response it produces.
// Echo's own errors keep their status; everything else goes through sqlerr.
func normalize(err error) *errs.HTTPError {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		if echoErr.Code == http.StatusNotFound {
			return errs.NewNotFoundError("Route not found", false, nil)
		}
		msg, ok := echoErr.Message.(string)
		if !ok {
			msg = http.StatusText(echoErr.Code)
		}
		return errs.New(echoErr.Code, msg)
	}

	if errors.As(sqlerr.HandleError(err), &httpErr) {
		return httpErr
	}
	return errs.NewInternalServerError()
}

// GlobalErrorHandler writes the errs.HTTPError body for err. Server errors
// are logged with their stack.
func (global *GlobalMiddlewares) GlobalErrorHandler(err error, c echo.Context) {
	resp := normalize(err)

	logger := GetLogger(c)
	event := logger.Warn()
	if resp.Status >= http.StatusInternalServerError {
		event = logger.Error().Stack()
	}
	event.Err(err).
		Int("status", resp.Status).
		Str("error_code", resp.Code).
		Msg(resp.Message)

	if c.Response().Committed {
		return
	}
	if err := c.JSON(resp.Status, resp); err != nil {
		logger.Error().Err(err).Msg("failed to write error response")
	}
}
