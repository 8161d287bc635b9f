package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/keepbooks/bankrec/internal/adapter/http/dto"
	"github.com/keepbooks/bankrec/internal/adapter/http/middleware"
	"github.com/keepbooks/bankrec/internal/domain"
	"github.com/keepbooks/bankrec/internal/infrastructure/metrics"
	"github.com/keepbooks/bankrec/internal/usecase"
)

// ImportService is the import pipeline surface the handler needs.
type ImportService interface {
	ImportStatement(ctx context.Context, input usecase.ImportInput) (*usecase.ImportResult, error)
	UndoBatch(ctx context.Context, userID, batchID string) (*usecase.UndoResult, error)
	GetBatch(ctx context.Context, userID, batchID string) (*usecase.BatchDetail, error)
	ListBatches(ctx context.Context, userID string, limit, offset int) ([]*domain.ImportBatch, error)
	ListAuditLogs(ctx context.Context, userID, action, resourceID string, limit, offset int) ([]*domain.AuditLog, error)
}

const batchCacheTTL = time.Minute

// ImportHandler handles statement import HTTP requests.
type ImportHandler struct {
	service      ImportService
	cache        usecase.Cache
	metrics      *metrics.Metrics
	maxFileBytes int64
}

// NewImportHandler creates a new ImportHandler. cache and m may be nil.
func NewImportHandler(service ImportService, cache usecase.Cache, m *metrics.Metrics, maxFileBytes int64) *ImportHandler {
	if maxFileBytes <= 0 {
		maxFileBytes = domain.MaxStatementBytes
	}

	return &ImportHandler{
		service:      service,
		cache:        cache,
		metrics:      m,
		maxFileBytes: maxFileBytes,
	}
}

// Import accepts a multipart statement upload and runs one import batch.
// Form fields: "file" (required), "bank" (optional hint).
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileBytes)
	if err := r.ParseMultipartForm(h.maxFileBytes); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "file too large or malformed upload", err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field", err.Error())
		return
	}
	defer file.Close()

	start := time.Now()
	if h.metrics != nil {
		h.metrics.BatchesStarted.Inc()
	}

	result, err := h.service.ImportStatement(r.Context(), usecase.ImportInput{
		UserID:    user.ID,
		FileName:  header.Filename,
		BankHint:  r.FormValue("bank"),
		RequestID: chimiddleware.GetReqID(r.Context()),
		File:      file,
	})
	if err != nil {
		if h.metrics != nil {
			h.metrics.BatchesCompleted.WithLabelValues("failed").Inc()
		}
		writeError(w, mapDomainError(err), "import failed", err.Error())
		return
	}

	h.recordImportMetrics(result, time.Since(start))

	writeJSON(w, http.StatusCreated, dto.ImportResponseFromResult(result))
}

// Get returns one batch with its expenses and invoice payments. Responses
// are served from cache when fresh.
func (h *ImportHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	batchID := chi.URLParam(r, "id")
	if batchID == "" {
		writeError(w, http.StatusBadRequest, "missing batch ID", "")
		return
	}

	cacheKey := batchCacheKey(user.ID, batchID)
	if h.cache != nil {
		if cached, err := h.cache.Get(r.Context(), cacheKey); err == nil {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(cached))
			return
		}
	}

	detail, err := h.service.GetBatch(r.Context(), user.ID, batchID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get batch", err.Error())
		return
	}

	response := dto.BatchDetailFromUseCase(detail)

	if h.cache != nil {
		if body, err := json.Marshal(response); err == nil {
			_ = h.cache.Set(r.Context(), cacheKey, string(body), batchCacheTTL)
		}
	}

	writeJSON(w, http.StatusOK, response)
}

// List returns the user's import history, newest first.
func (h *ImportHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	limit := parseIntQuery(r, "limit", domain.DefaultPageSize)
	offset := parseIntQuery(r, "offset", 0)

	batches, err := h.service.ListBatches(r.Context(), user.ID, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list batches", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BatchesFromDomain(batches))
}

// ListAudit returns the user's audit trail. Query parameters: action,
// resource_id, limit, offset.
func (h *ImportHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	limit := parseIntQuery(r, "limit", domain.DefaultPageSize)
	offset := parseIntQuery(r, "offset", 0)
	action := r.URL.Query().Get("action")
	resourceID := r.URL.Query().Get("resource_id")

	logs, err := h.service.ListAuditLogs(r.Context(), user.ID, action, resourceID, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list audit logs", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AuditLogsFromDomain(logs))
}

// Undo reverses one completed batch: its expenses are deleted and the batch
// flips to undone.
func (h *ImportHandler) Undo(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	batchID := chi.URLParam(r, "id")
	if batchID == "" {
		writeError(w, http.StatusBadRequest, "missing batch ID", "")
		return
	}

	result, err := h.service.UndoBatch(r.Context(), user.ID, batchID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to undo batch", err.Error())
		return
	}

	if h.cache != nil {
		_ = h.cache.Delete(r.Context(), batchCacheKey(user.ID, batchID))
	}
	if h.metrics != nil {
		h.metrics.BatchesUndone.Inc()
	}

	writeJSON(w, http.StatusOK, dto.UndoResponseFromResult(result))
}

func (h *ImportHandler) recordImportMetrics(result *usecase.ImportResult, elapsed time.Duration) {
	if h.metrics == nil {
		return
	}

	batch := result.Batch
	h.metrics.BatchesCompleted.WithLabelValues(string(batch.Status)).Inc()
	h.metrics.ImportDuration.Observe(elapsed.Seconds())
	h.metrics.InvoicesMarkedPaid.Add(float64(batch.InvoicesMarkedPaid))
	h.metrics.InvoicesAutoCreated.Add(float64(batch.NewInvoicesCreated))
	h.metrics.RowErrors.Add(float64(len(result.Errors)))

	for _, tx := range result.Transactions {
		if tx.Skipped {
			h.metrics.RowsSkipped.WithLabelValues(tx.SkipReason).Inc()
			continue
		}
		if tx.Imported {
			h.metrics.TransactionsByType.WithLabelValues(string(tx.Type)).Inc()
		}
	}
}

func batchCacheKey(userID, batchID string) string {
	return "batch:" + userID + ":" + batchID
}
