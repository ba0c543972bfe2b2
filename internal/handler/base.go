package handler

import (
	"reflect"
	"time"

	"github.com/deppfellow/contosopizza/internal/middleware"
	"github.com/deppfellow/contosopizza/internal/server"
	"github.com/deppfellow/contosopizza/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

// Handler gives every concrete handler access to the shared server.
type Handler struct {
	server *server.Server
}

func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// HandlerFunc is a typed endpoint receiving a bound and validated request.
// Req is a pointer type so Echo can bind into it.
type HandlerFunc[Req validation.Validatable, Res any] func(c echo.Context, req Req) (Res, error)

// HandlerFuncNoContent is a typed endpoint that writes no body.
type HandlerFuncNoContent[Req validation.Validatable] func(c echo.Context, req Req) error

// ResponseHandler writes a successful result and describes it for logs and traces.
type ResponseHandler interface {
	Handle(c echo.Context, result interface{}) error
	GetOperation() string
	AddAttributes(txn *newrelic.Transaction, result interface{})
}

type JSONResponseHandler struct {
	status int
}

func (h JSONResponseHandler) Handle(c echo.Context, result interface{}) error {
	return c.JSON(h.status, result)
}

func (h JSONResponseHandler) GetOperation() string {
	return "handler"
}

// AddAttributes records the page returned by list endpoints.
func (h JSONResponseHandler) AddAttributes(txn *newrelic.Transaction, result interface{}) {
	if p, ok := result.(interface{ PageInfo() (int, int, int64) }); ok {
		page, limit, total := p.PageInfo()
		txn.AddAttribute("page.number", page)
		txn.AddAttribute("page.limit", limit)
		txn.AddAttribute("page.total", total)
	}
}

type NoContentResponseHandler struct {
	status int
}

func (h NoContentResponseHandler) Handle(c echo.Context, result interface{}) error {
	return c.NoContent(h.status)
}

func (h NoContentResponseHandler) GetOperation() string {
	return "handler_no_content"
}

func (h NoContentResponseHandler) AddAttributes(txn *newrelic.Transaction, result interface{}) {}

// FileResponseHandler sends the []byte result as a download.
type FileResponseHandler struct {
	status      int
	filename    string
	contentType string
}

func (h FileResponseHandler) Handle(c echo.Context, result interface{}) error {
	data, _ := result.([]byte)

	c.Response().Header().Set("Content-Disposition", "attachment; filename="+h.filename)
	return c.Blob(h.status, h.contentType, data)
}

func (h FileResponseHandler) GetOperation() string {
	return "handler_file"
}

func (h FileResponseHandler) AddAttributes(txn *newrelic.Transaction, result interface{}) {
	txn.AddAttribute("file.name", h.filename)
	txn.AddAttribute("file.content_type", h.contentType)
	if data, ok := result.([]byte); ok {
		txn.AddAttribute("file.size_bytes", len(data))
	}
}

// newRequest returns a zeroed request of the same type as proto, so
// concurrent requests never share a payload.
func newRequest[Req validation.Validatable](proto Req) Req {
	t := reflect.TypeOf(proto)
	if t == nil || t.Kind() != reflect.Pointer {
		return proto
	}
	return reflect.New(t.Elem()).Interface().(Req)
}

// trace is the per-request observability state of handleRequest. txn is
// nil when New Relic is off.
type trace struct {
	txn    *newrelic.Transaction
	logger zerolog.Logger
	start  time.Time
}

func newTrace(c echo.Context, rh ResponseHandler) *trace {
	route := c.Path()

	builder := middleware.GetLogger(c).With().
		Str("operation", rh.GetOperation()).
		Str("method", c.Request().Method).
		Str("route", route)
	if fh, ok := rh.(FileResponseHandler); ok {
		builder = builder.Str("filename", fh.filename)
	}

	t := &trace{
		txn:    newrelic.FromContext(c.Request().Context()),
		logger: builder.Logger(),
		start:  time.Now(),
	}
	if t.txn != nil {
		t.txn.AddAttribute("handler.name", route)
	}
	return t
}

// phase records the outcome of one step ("validation" or "handler") and
// returns err unchanged.
func (t *trace) phase(name string, started time.Time, err error) error {
	d := time.Since(started)

	if err != nil {
		t.logger.Error().Err(err).Dur(name+"_duration", d).Msgf("%s failed", name)
	} else {
		t.logger.Debug().Dur(name+"_duration", d).Msgf("%s succeeded", name)
	}

	if t.txn != nil {
		status := "success"
		if err != nil {
			status = "failed"
			t.txn.NoticeError(nrpkgerrors.Wrap(err))
		}
		t.txn.AddAttribute(name+".status", status)
		t.txn.AddAttribute(name+".duration_ms", d.Milliseconds())
	}
	return err
}

// handleRequest binds and validates req, runs handler and writes its result
// through rh, logging and tracing each step.
func handleRequest[Req validation.Validatable](
	c echo.Context,
	req Req,
	handler func(c echo.Context, req Req) (interface{}, error),
	rh ResponseHandler,
) error {
	t := newTrace(c, rh)
	t.logger.Info().Msg("handling request")

	started := time.Now()
	if err := t.phase("validation", started, validation.BindAndValidate(c, req)); err != nil {
		return err
	}

	started = time.Now()
	result, err := handler(c, req)
	if err := t.phase("handler", started, err); err != nil {
		return err
	}

	if t.txn != nil {
		t.txn.AddAttribute("total.duration_ms", time.Since(t.start).Milliseconds())
		rh.AddAttributes(t.txn, result)
	}
	t.logger.Info().Dur("total_duration", time.Since(t.start)).Msg("request completed successfully")

	return rh.Handle(c, result)
}

// Handle wraps a typed JSON endpoint into an echo.HandlerFunc:
//
//	g.POST("/orders", handler.Handle(h.Handler, h.PlaceOrder, http.StatusCreated, &handler.PlaceOrderRequest{}))
//
// req only names the request type; every call binds into a fresh value.
func Handle[Req validation.Validatable, Res any](
	h Handler,
	handler HandlerFunc[Req, Res],
	status int,
	req Req,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, newRequest(req), func(c echo.Context, req Req) (interface{}, error) {
			return handler(c, req)
		}, JSONResponseHandler{status: status})
	}
}

// HandleFile wraps an endpoint returning file bytes.
func HandleFile[Req validation.Validatable](
	h Handler,
	handler HandlerFunc[Req, []byte],
	status int,
	req Req,
	filename string,
	contentType string,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, newRequest(req), func(c echo.Context, req Req) (interface{}, error) {
			return handler(c, req)
		}, FileResponseHandler{
			status:      status,
			filename:    filename,
			contentType: contentType,
		})
	}
}

// HandleNoContent wraps an endpoint answering with a bare status, e.g. 204.
func HandleNoContent[Req validation.Validatable](
	h Handler,
	handler HandlerFuncNoContent[Req],
	status int,
	req Req,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, newRequest(req), func(c echo.Context, req Req) (interface{}, error) {
			return nil, handler(c, req)
		}, NoContentResponseHandler{status: status})
	}
}
