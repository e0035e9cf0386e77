package calculator

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/intel/webapps-scientific-calculator/internal/handlers"
	"github.com/intel/webapps-scientific-calculator/internal/history"
	"github.com/intel/webapps-scientific-calculator/internal/memory"
	"github.com/intel/webapps-scientific-calculator/internal/observability"
)

// ListMemory handles GET /sessions/{id}/memory.
func (h *Handler) ListMemory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "calculator.memory.list")
	defer span.End()

	sess, ok := h.session(w, r.WithContext(ctx), span, "memory_list")
	if !ok {
		return
	}
	handlers.WriteJSON(w, http.StatusOK, MemoryResponse{
		FreeSlot: sess.FreeSlot(),
		Slots:    sess.Memory(),
	})
}

// StoreMemory handles POST /sessions/{id}/memory: the main entry goes into
// the next free slot.
func (h *Handler) StoreMemory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "calculator.memory.store")
	defer span.End()
	logger := observability.LoggerWithTrace(ctx)

	sess, ok := h.session(w, r.WithContext(ctx), span, "memory_store")
	if !ok {
		return
	}

	slot, err := sess.StoreEntry()
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "memory_store", err.Error(), err, statusFor(err), w)
		return
	}

	span.SetAttributes(attribute.String("memory.slot", slot.Name))
	logger.Info("value stored in memory",
		zap.String("session_id", sess.ID),
		zap.String("slot", slot.Name),
		zap.String("value", slot.Value),
	)
	handlers.WriteJSON(w, http.StatusCreated, slot)
}

// ClearAllMemory handles DELETE /sessions/{id}/memory.
func (h *Handler) ClearAllMemory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "calculator.memory.clear_all")
	defer span.End()

	sess, ok := h.session(w, r.WithContext(ctx), span, "memory_clear_all")
	if !ok {
		return
	}
	sess.ClearAllMemory()
	w.WriteHeader(http.StatusNoContent)
}

// RecallMemory handles POST /sessions/{id}/memory/{slot}/recall.
func (h *Handler) RecallMemory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "calculator.memory.recall")
	defer span.End()
	logger := observability.LoggerWithTrace(ctx)

	sess, ok := h.session(w, r.WithContext(ctx), span, "memory_recall")
	if !ok {
		return
	}

	n, err := memory.Parse(chi.URLParam(r, "slot"))
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "memory_recall", err.Error(), err, statusFor(err), w)
		return
	}

	snap, err := sess.RecallMemory(n)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "memory_recall", err.Error(), err, statusFor(err), w)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, snap)
}

// DescribeMemory handles PUT /sessions/{id}/memory/{slot}.
func (h *Handler) DescribeMemory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "calculator.memory.describe")
	defer span.End()
	logger := observability.LoggerWithTrace(ctx)

	sess, ok := h.session(w, r.WithContext(ctx), span, "memory_describe")
	if !ok {
		return
	}

	n, err := memory.Parse(chi.URLParam(r, "slot"))
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "memory_describe", err.Error(), err, statusFor(err), w)
		return
	}

	var req DescribeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "memory_describe", "invalid request body", err, bodyStatus(err), w)
		return
	}

	slot, err := sess.DescribeMemory(n, req.Description)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "memory_describe", err.Error(), err, statusFor(err), w)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, slot)
}

// ClearMemory handles DELETE /sessions/{id}/memory/{slot}.
func (h *Handler) ClearMemory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "calculator.memory.clear")
	defer span.End()
	logger := observability.LoggerWithTrace(ctx)

	sess, ok := h.session(w, r.WithContext(ctx), span, "memory_clear")
	if !ok {
		return
	}

	n, err := memory.Parse(chi.URLParam(r, "slot"))
	if err == nil {
		err = sess.ClearMemory(n)
	}
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "memory_clear", err.Error(), err, statusFor(err), w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListHistory handles GET /sessions/{id}/history.
func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "calculator.history.list")
	defer span.End()

	sess, ok := h.session(w, r.WithContext(ctx), span, "history_list")
	if !ok {
		return
	}

	entries := sess.History()
	span.SetAttributes(attribute.Int("history.entries", len(entries)))
	handlers.WriteJSON(w, http.StatusOK, HistoryResponse{Entries: entries})
}

// RecallHistory handles POST /sessions/{id}/history/{index}/recall.
func (h *Handler) RecallHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "calculator.history.recall")
	defer span.End()
	logger := observability.LoggerWithTrace(ctx)

	sess, ok := h.session(w, r.WithContext(ctx), span, "history_recall")
	if !ok {
		return
	}

	index, err := historyIndex(r)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "history_recall", err.Error(), err, statusFor(err), w)
		return
	}

	snap, err := sess.RecallHistory(index)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "history_recall", err.Error(), err, statusFor(err), w)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, snap)
}

// HistoryToMemory handles POST /sessions/{id}/history/{index}/memory.
func (h *Handler) HistoryToMemory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "calculator.history.memory")
	defer span.End()
	logger := observability.LoggerWithTrace(ctx)

	sess, ok := h.session(w, r.WithContext(ctx), span, "history_memory")
	if !ok {
		return
	}

	index, err := historyIndex(r)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "history_memory", err.Error(), err, statusFor(err), w)
		return
	}

	slot, err := sess.HistoryToMemory(index)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "history_memory", err.Error(), err, statusFor(err), w)
		return
	}
	handlers.WriteJSON(w, http.StatusCreated, slot)
}

func historyIndex(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "index")
	index, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", history.ErrIndex, raw)
	}
	return index, nil
}
