package calculator

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/intel/webapps-scientific-calculator/internal/engine"
	"github.com/intel/webapps-scientific-calculator/internal/handlers"
	"github.com/intel/webapps-scientific-calculator/internal/observability"
	"github.com/intel/webapps-scientific-calculator/internal/parser"
	"github.com/intel/webapps-scientific-calculator/internal/session"
)

// CreateSession handles POST /sessions.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "calculator.session.create")
	defer span.End()
	logger := observability.LoggerWithTrace(ctx)

	var req CreateSessionRequest
	if err := decodeOptional(w, r, &req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "create_session", "invalid request body", err, bodyStatus(err), w)
		return
	}

	var angle parser.Angle
	if req.Angle != "" {
		a, ok := parser.ParseAngle(req.Angle)
		if !ok {
			observability.RecordError(ctx, span, logger, errorCounter, "create_session", "invalid angle mode", fmt.Errorf("angle %q", req.Angle), http.StatusBadRequest, w)
			return
		}
		angle = a
	}

	locale := req.Locale
	if locale == "" {
		locale = r.Header.Get("Accept-Language")
	}

	sess := h.store.Create(angle, locale)
	snap := sess.Snapshot()

	span.SetAttributes(
		attribute.String("session.id", sess.ID),
		attribute.String("session.locale", snap.Locale),
		attribute.String("session.angle", snap.Angle),
	)
	span.SetStatus(codes.Ok, "")

	w.Header().Set("Location", "/sessions/"+sess.ID)
	handlers.WriteJSON(w, http.StatusCreated, snap)
}

// GetSession handles GET /sessions/{id}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "calculator.session.get")
	defer span.End()

	sess, ok := h.session(w, r.WithContext(ctx), span, "get_session")
	if !ok {
		return
	}
	handlers.WriteJSON(w, http.StatusOK, sess.Snapshot())
}

// DeleteSession handles DELETE /sessions/{id}.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "calculator.session.delete")
	defer span.End()

	id := chi.URLParam(r, "id")
	span.SetAttributes(attribute.String("session.id", id))

	if err := h.store.Delete(id); err != nil {
		observability.RecordError(ctx, span, observability.LoggerWithTrace(ctx), errorCounter, "delete_session", err.Error(), err, statusFor(err), w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Press handles POST /sessions/{id}/press.
func (h *Handler) Press(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "calculator.press")
	defer span.End()
	logger := observability.LoggerWithTrace(ctx)

	sess, ok := h.session(w, r.WithContext(ctx), span, "press")
	if !ok {
		return
	}

	var req PressRequest
	if err := decodeJSON(w, r, &req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "press", "invalid request body", err, bodyStatus(err), w)
		return
	}

	snap, err := h.press(ctx, span, sess, req.Key)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "press", err.Error(), err, statusFor(err), w)
		return
	}
	span.SetStatus(codes.Ok, "")

	logger.Debug("key pressed",
		zap.String("session_id", sess.ID),
		zap.String("key", req.Key),
		zap.String("entry", snap.Entry),
		zap.String("formula", snap.Formula),
	)

	handlers.WriteJSON(w, http.StatusOK, snap)
}

// Keys handles POST /sessions/{id}/keys. It replays a key sequence on the
// session, creating a child span for every key. Replay stops at the first
// unknown key; keys before it stay applied.
func (h *Handler) Keys(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "calculator.keys")
	defer span.End()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	sess, ok := h.session(w, r.WithContext(ctx), span, "keys")
	if !ok {
		return
	}

	var req KeysRequest
	if err := decodeJSON(w, r, &req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "keys", "invalid request body", err, bodyStatus(err), w)
		return
	}

	if len(req.Keys) == 0 {
		observability.RecordError(ctx, span, logger, errorCounter, "keys", "no keys provided", fmt.Errorf("keys array is empty"), http.StatusBadRequest, w)
		return
	}

	span.SetAttributes(attribute.Int("keys.count", len(req.Keys)))

	steps := make([]KeyResult, 0, len(req.Keys))
	for i, key := range req.Keys {
		stepCtx, stepSpan := tracer.Start(ctx, "calculator.keys.step."+strconv.Itoa(i),
			trace.WithAttributes(
				attribute.Int("keys.step.index", i),
				attribute.String("keys.step.key", key),
			),
		)

		snap, err := h.press(stepCtx, stepSpan, sess, key)
		if err != nil {
			stepSpan.RecordError(err)
			stepSpan.SetStatus(codes.Error, err.Error())
			stepSpan.End()

			observability.RecordError(ctx, span, logger, errorCounter, "keys", fmt.Sprintf("key %d: %v", i, err), err, statusFor(err), w)
			return
		}

		stepSpan.SetStatus(codes.Ok, "")
		stepSpan.End()

		steps = append(steps, KeyResult{Key: key, Entry: snap.Entry, Formula: snap.Formula})
	}

	final := sess.Snapshot()
	span.SetStatus(codes.Ok, "")

	logger.Info("key sequence applied",
		zap.String("session_id", sess.ID),
		zap.Int("keys", len(req.Keys)),
		zap.String("entry", final.Entry),
		zap.String("request_id", requestID),
	)

	handlers.WriteJSON(w, http.StatusOK, KeysResponse{Steps: steps, Session: final})
}

// SetAngle handles PUT /sessions/{id}/angle.
func (h *Handler) SetAngle(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "calculator.angle")
	defer span.End()
	logger := observability.LoggerWithTrace(ctx)

	sess, ok := h.session(w, r.WithContext(ctx), span, "angle")
	if !ok {
		return
	}

	var req AngleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "angle", "invalid request body", err, bodyStatus(err), w)
		return
	}

	a, ok := parser.ParseAngle(req.Mode)
	if !ok {
		observability.RecordError(ctx, span, logger, errorCounter, "angle", "invalid angle mode", fmt.Errorf("mode %q", req.Mode), http.StatusBadRequest, w)
		return
	}

	span.SetAttributes(attribute.String("session.angle", a.String()))
	handlers.WriteJSON(w, http.StatusOK, sess.SetAngle(a))
}

// press applies one key and records press and evaluation metrics.
func (h *Handler) press(ctx context.Context, span trace.Span, sess *session.Session, key string) (session.Snapshot, error) {
	kind := engine.Classify(key)
	span.SetAttributes(
		attribute.String("calculator.key", key),
		attribute.String("calculator.key.kind", kind.String()),
	)

	start := time.Now()
	snap, err := sess.Press(key)
	if err != nil {
		return snap, err
	}
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms

	pressCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind.String())))

	if kind != engine.KindEquals {
		return snap, nil
	}

	outcome := "ok"
	switch {
	case snap.Malformed:
		outcome = "malformed"
	case snap.Entry == "":
		outcome = "empty"
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	evalCounter.Add(ctx, 1, attrs)
	evalDuration.Record(ctx, elapsed, attrs)

	if v, err := strconv.ParseFloat(snap.Entry, 64); err == nil {
		resultGauge.Record(ctx, v)
	}

	span.AddEvent("evaluation.complete", trace.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("entry", snap.Entry),
		attribute.Float64("duration_ms", elapsed),
	))
	return snap, nil
}

// session resolves the {id} URL parameter, writing a 404 when the session
// is unknown.
func (h *Handler) session(w http.ResponseWriter, r *http.Request, span trace.Span, opName string) (*session.Session, bool) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	span.SetAttributes(attribute.String("session.id", id))

	sess, err := h.store.Get(id)
	if err != nil {
		observability.RecordError(ctx, span, observability.LoggerWithTrace(ctx), errorCounter, opName, err.Error(), err, statusFor(err), w)
		return nil, false
	}
	return sess, true
}
