package service

import (
	"net/http"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/labstack/echo/v4"
)

// RegisterErrorHandler registers the custom error handler on the admin API.
func RegisterErrorHandler(e *echo.Echo, logger log.Logger) {
	e.HTTPErrorHandler = NewHTTPErrorHandler(NewErrorCodeToStatusCodeMaps(), logger).Handler
}

// NewErrorCodeToStatusCodeMaps creates an error code to http status mapping.
// Every routing rejection is a bad request for the client; only a failed relay is reported as a gateway error.
func NewErrorCodeToStatusCodeMaps() map[string]int {
	var errorCodeToStatusCodeMaps = make(map[string]int)
	errorCodeToStatusCodeMaps[ErrBadPath] = http.StatusBadRequest
	errorCodeToStatusCodeMaps[ErrNoNodeAvailable] = http.StatusBadRequest
	errorCodeToStatusCodeMaps[ErrUnknownBinding] = http.StatusBadRequest
	errorCodeToStatusCodeMaps[ErrStoreError] = http.StatusBadRequest
	errorCodeToStatusCodeMaps[ErrForwardingError] = http.StatusBadGateway
	errorCodeToStatusCodeMaps[ErrBadParameter] = http.StatusBadRequest
	errorCodeToStatusCodeMaps[ErrInternalServerError] = http.StatusInternalServerError

	return errorCodeToStatusCodeMaps
}

// HTTPErrorHandler is an error handler.
type HTTPErrorHandler struct {
	errorCodeToHTTPStatusCodeMap map[string]int
	logger                       log.Logger
}

// NewHTTPErrorHandler creates a new instance of the HTTPErrorHandler.
func NewHTTPErrorHandler(errorCodeToStatusCodeMaps map[string]int, logger log.Logger) *HTTPErrorHandler {
	return &HTTPErrorHandler{
		errorCodeToHTTPStatusCodeMap: errorCodeToStatusCodeMaps,
		logger:                       logger,
	}
}

// StatusCode returns the HTTP status for err; errors without a known code map to 500.
func (h *HTTPErrorHandler) StatusCode(err error) int {
	status, ok := h.errorCodeToHTTPStatusCodeMap[ToProxyErrorCode(err)]
	if ok {
		return status
	}

	return http.StatusInternalServerError
}

// WriteProxyError answers a proxied request that could not be routed or relayed. The body is left empty: clients
// of the proxied protocol only look at the status.
func (h *HTTPErrorHandler) WriteProxyError(w http.ResponseWriter, r *http.Request, err error) {
	level.Debug(h.logger).Log(
		"msg", "proxy request rejected",
		"path", r.URL.Path,
		"code", ToProxyErrorCode(err),
		"err", err,
	)
	w.Header().Set("Connection", "close")
	w.WriteHeader(h.StatusCode(err))
}

// Handler handles error returned by echo Handlers.
func (h *HTTPErrorHandler) Handler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	myErr := ToProxyError(err)
	if myErr == nil {
		myErr = NewProxyError(ErrInternalServerError, "an internal server error has occurred", err)
	}

	var statusCode int
	var he *echo.HTTPError
	if he, _ = err.(*echo.HTTPError); he != nil {
		codeStr := ErrInternalServerError
		if he.Code >= 400 && he.Code < 500 {
			codeStr = ErrBadParameter
		}
		m, _ := he.Message.(string)
		myErr = NewProxyError(codeStr, m, err)
		statusCode = he.Code
	} else {
		statusCode = h.StatusCode(myErr)
	}

	level.Error(h.logger).Log(
		"msg", "HTTP request error",
		"err", err,
	)

	if c.Request().Method == http.MethodHead && he != nil {
		_ = c.NoContent(he.Code)
	} else {
		_ = c.JSON(statusCode, ErrResponse{Error: myErr})
	}
}

// ErrResponse from server.
type ErrResponse struct {
	Error *ProxyError `json:"error,omitempty"`
}
