package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	pkgerrors "github.com/pkg/errors"

	"github.com/AlibekovAA/user-service/internal/common/constants"
	commonerrors "github.com/AlibekovAA/user-service/internal/common/errors"
	"github.com/AlibekovAA/user-service/internal/common/httpmetrics"
	"github.com/AlibekovAA/user-service/internal/common/logger"
	"github.com/AlibekovAA/user-service/internal/observability/metrics"
)

// ErrorHandler is the single place where errors become HTTP responses.
type ErrorHandler struct {
	log        *logger.Logger
	production bool
}

func NewErrorHandler(log *logger.Logger, production bool) *ErrorHandler {
	return &ErrorHandler{log: log, production: production}
}

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	ctx := r.Context()
	domainErr, ok := commonerrors.AsDomainError(err)
	if !ok {
		domainErr = commonerrors.ErrInternalError.WithCause(err)
	}

	status := domainErr.HTTPStatus()
	if status < http.StatusBadRequest {
		status = http.StatusInternalServerError
	}

	logFields := logger.Fields{
		"error_code": domainErr.Code(),
		"category":   string(domainErr.Category()),
		"status":     status,
		"method":     r.Method,
		"path":       r.URL.Path,
	}
	entry := h.log.WithFields(ctx, logFields)
	if status >= http.StatusInternalServerError {
		entry.Errorf("request failed: %v", err)
	} else {
		entry.Warnf("request rejected: %v", err)
	}

	metrics.DomainErrorsTotal.WithLabelValues(
		string(domainErr.Category()),
		domainErr.Code(),
		strconv.Itoa(status),
	).Inc()
	metrics.HTTPErrorsTotal.WithLabelValues(
		strconv.Itoa(status),
		httpmetrics.NormalizePath(r.URL.Path),
		r.Method,
	).Inc()

	if traceID := TraceIDFromContext(ctx); traceID != "" {
		w.Header().Set(constants.TraceIDHeader, traceID)
	}

	WriteErrorEnvelope(w, status, domainErr.Message(), h.stack(err))
}

// NotFound answers unmatched paths and methods.
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	msg := fmt.Sprintf("Cannot %s %s", r.Method, r.URL.Path)
	h.HandleError(w, r, commonerrors.ErrNotFound.WithMessage(msg))
}

func (h *ErrorHandler) stack(err error) string {
	if h.production {
		return constants.StackPlaceholder
	}

	var st stackTracer
	if errors.As(err, &st) {
		return fmt.Sprintf("%s%+v", err.Error(), st.StackTrace())
	}
	return err.Error()
}

func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	traceID, _ := ctx.Value(constants.TraceIDKey).(string)
	return traceID
}
