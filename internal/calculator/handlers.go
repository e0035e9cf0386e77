package calculator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/intel/webapps-scientific-calculator/internal/formula"
	"github.com/intel/webapps-scientific-calculator/internal/handlers"
	"github.com/intel/webapps-scientific-calculator/internal/history"
	"github.com/intel/webapps-scientific-calculator/internal/memory"
	"github.com/intel/webapps-scientific-calculator/internal/observability"
	"github.com/intel/webapps-scientific-calculator/internal/parser"
	"github.com/intel/webapps-scientific-calculator/internal/session"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

// Handler serves the calculator endpoints over a session store.
type Handler struct {
	store *session.Store
}

func NewHandler(store *session.Store) *Handler {
	return &Handler{store: store}
}

// Evaluate handles POST /calculator/evaluate. It parses one formula without
// touching any session.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.evaluate",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	var req EvaluateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "evaluate", "invalid request body", err, bodyStatus(err), w)
		return
	}

	angle := parser.Degrees
	if req.Angle != "" {
		a, ok := parser.ParseAngle(req.Angle)
		if !ok {
			observability.RecordError(ctx, span, logger, errorCounter, "evaluate", "invalid angle mode", fmt.Errorf("angle %q", req.Angle), http.StatusBadRequest, w)
			return
		}
		angle = a
	}

	expr := formula.Normalize(req.Formula)
	span.SetAttributes(
		attribute.String("calculator.formula", expr),
		attribute.String("calculator.angle", angle.String()),
	)

	start := time.Now()
	value, err := h.store.Parser().Parse(expr, angle)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms

	outcome := outcomeOf(err)
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	evalCounter.Add(ctx, 1, attrs)
	evalDuration.Record(ctx, elapsed, attrs)

	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "evaluate", err.Error(), err, http.StatusUnprocessableEntity, w)
		return
	}

	resultGauge.Record(ctx, value)

	span.AddEvent("evaluation.complete", trace.WithAttributes(
		attribute.Float64("result", value),
		attribute.Float64("duration_ms", elapsed),
	))
	span.SetAttributes(attribute.Float64("calculator.result", value))
	span.SetStatus(codes.Ok, "")

	logger.Info("formula evaluated",
		zap.String("formula", expr),
		zap.Stringer("angle", angle),
		zap.Float64("result", value),
		zap.String("request_id", requestID),
		zap.Float64("duration_ms", elapsed),
	)

	handlers.WriteJSON(w, http.StatusOK, EvaluateResponse{
		Formula: expr,
		Angle:   angle.String(),
		Result:  formula.FormatResult(value),
		Value:   value,
	})
}

// outcomeOf labels an evaluation for metrics: ok, or the parse failure
// reason.
func outcomeOf(err error) string {
	if err == nil {
		return "ok"
	}
	var perr *parser.ParseError
	if errors.As(err, &perr) {
		return perr.Reason.String()
	}
	return "error"
}

// statusFor maps domain errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound),
		errors.Is(err, history.ErrIndex),
		errors.Is(err, memory.ErrSlot):
		return http.StatusNotFound
	case errors.Is(err, memory.ErrFull),
		errors.Is(err, memory.ErrEmpty):
		return http.StatusConflict
	case errors.Is(err, session.ErrUnknownKey),
		errors.Is(err, memory.ErrValue):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// MaxBodyBytes caps every request body the calculator decodes.
const MaxBodyBytes = 64 << 10

// decodeJSON decodes a JSON body of at most MaxBodyBytes into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes)).Decode(dst)
}

// decodeOptional is decodeJSON treating an empty body as an empty object.
func decodeOptional(w http.ResponseWriter, r *http.Request, dst any) error {
	err := decodeJSON(w, r, dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// bodyStatus is the status for a body that failed to decode.
func bodyStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}
