package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/keepbooks/bankrec/internal/adapter/http/dto"
	"github.com/keepbooks/bankrec/internal/adapter/http/middleware"
	"github.com/keepbooks/bankrec/internal/domain"
	"github.com/keepbooks/bankrec/internal/usecase"
)

type importServiceStub struct {
	importFn    func(ctx context.Context, input usecase.ImportInput) (*usecase.ImportResult, error)
	undoFn      func(ctx context.Context, userID, batchID string) (*usecase.UndoResult, error)
	getFn       func(ctx context.Context, userID, batchID string) (*usecase.BatchDetail, error)
	listFn      func(ctx context.Context, userID string, limit, offset int) ([]*domain.ImportBatch, error)
	listAuditFn func(ctx context.Context, userID, action, resourceID string, limit, offset int) ([]*domain.AuditLog, error)
}

func (s *importServiceStub) ImportStatement(ctx context.Context, input usecase.ImportInput) (*usecase.ImportResult, error) {
	return s.importFn(ctx, input)
}

func (s *importServiceStub) UndoBatch(ctx context.Context, userID, batchID string) (*usecase.UndoResult, error) {
	return s.undoFn(ctx, userID, batchID)
}

func (s *importServiceStub) GetBatch(ctx context.Context, userID, batchID string) (*usecase.BatchDetail, error) {
	return s.getFn(ctx, userID, batchID)
}

func (s *importServiceStub) ListBatches(ctx context.Context, userID string, limit, offset int) ([]*domain.ImportBatch, error) {
	return s.listFn(ctx, userID, limit, offset)
}

func (s *importServiceStub) ListAuditLogs(ctx context.Context, userID, action, resourceID string, limit, offset int) ([]*domain.AuditLog, error) {
	return s.listAuditFn(ctx, userID, action, resourceID, limit, offset)
}

func newTestRouter(h *ImportHandler) http.Handler {
	r := chi.NewRouter()
	r.Post("/imports", h.Import)
	r.Get("/imports", h.List)
	r.Get("/imports/{id}", h.Get)
	r.Delete("/imports/{id}", h.Undo)
	r.Get("/audit-logs", h.ListAudit)
	return r
}

func asUser(req *http.Request, userID string) *http.Request {
	user := &domain.User{ID: userID, Role: domain.RoleOperator}
	return req.WithContext(context.WithValue(req.Context(), middleware.UserContextKey, user))
}

func multipartUpload(t *testing.T, fileName, contents string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte(contents)); err != nil {
		t.Fatal(err)
	}
	if err := writer.WriteField("bank", "keystone"); err != nil {
		t.Fatal(err)
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}

	return body, writer.FormDataContentType()
}

func TestImportHandler_ImportSuccess(t *testing.T) {
	var captured usecase.ImportInput
	batch := &domain.ImportBatch{
		ID:               "batch-1",
		UserID:           "user-1",
		FileName:         "jan.csv",
		Status:           domain.BatchCompleted,
		ImportedExpenses: 2,
	}

	h := NewImportHandler(&importServiceStub{
		importFn: func(ctx context.Context, input usecase.ImportInput) (*usecase.ImportResult, error) {
			captured = input
			return &usecase.ImportResult{Batch: batch}, nil
		},
	}, nil, nil, 0)

	body, contentType := multipartUpload(t, "jan.csv", "Date,Description,Amount\n2024-01-05,UBER,-100\n")
	req := asUser(httptest.NewRequest(http.MethodPost, "/imports", body), "user-1")
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	newTestRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.UserID != "user-1" || captured.FileName != "jan.csv" || captured.BankHint != "keystone" {
		t.Fatalf("unexpected input: %+v", captured)
	}

	var resp dto.ImportResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Batch.ID != "batch-1" || resp.Batch.ImportedExpenses != 2 {
		t.Fatalf("unexpected batch in response: %+v", resp.Batch)
	}
}

func TestImportHandler_ImportInputErrorIsBadRequest(t *testing.T) {
	h := NewImportHandler(&importServiceStub{
		importFn: func(ctx context.Context, input usecase.ImportInput) (*usecase.ImportResult, error) {
			return nil, domain.ErrEmptyStatement
		},
	}, nil, nil, 0)

	body, contentType := multipartUpload(t, "empty.csv", "Date,Description,Amount\n")
	req := asUser(httptest.NewRequest(http.MethodPost, "/imports", body), "user-1")
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	newTestRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty statement, got %d", rec.Code)
	}
}

func TestImportHandler_ImportMissingFileField(t *testing.T) {
	h := NewImportHandler(&importServiceStub{
		importFn: func(ctx context.Context, input usecase.ImportInput) (*usecase.ImportResult, error) {
			t.Fatal("service should not be called without a file")
			return nil, nil
		},
	}, nil, nil, 0)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	_ = writer.WriteField("bank", "keystone")
	_ = writer.Close()

	req := asUser(httptest.NewRequest(http.MethodPost, "/imports", body), "user-1")
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()

	newTestRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing file, got %d", rec.Code)
	}
}

func TestImportHandler_ImportRequiresUser(t *testing.T) {
	h := NewImportHandler(&importServiceStub{}, nil, nil, 0)

	body, contentType := multipartUpload(t, "jan.csv", "data")
	req := httptest.NewRequest(http.MethodPost, "/imports", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	newTestRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without user, got %d", rec.Code)
	}
}

func TestImportHandler_GetNotFound(t *testing.T) {
	h := NewImportHandler(&importServiceStub{
		getFn: func(ctx context.Context, userID, batchID string) (*usecase.BatchDetail, error) {
			return nil, domain.ErrBatchNotFound
		},
	}, nil, nil, 0)

	req := asUser(httptest.NewRequest(http.MethodGet, "/imports/nope", nil), "user-1")
	rec := httptest.NewRecorder()

	newTestRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestImportHandler_GetReturnsDetail(t *testing.T) {
	h := NewImportHandler(&importServiceStub{
		getFn: func(ctx context.Context, userID, batchID string) (*usecase.BatchDetail, error) {
			return &usecase.BatchDetail{
				Batch: &domain.ImportBatch{ID: batchID, UserID: userID, Status: domain.BatchCompleted},
				Expenses: []*domain.Expense{
					{ID: "exp-1", Amount: decimal.NewFromInt(4500), Date: time.Now()},
				},
				Payments: []*domain.InvoicePayment{
					{ID: "pay-1", InvoiceID: "inv-1", MatchType: domain.MatchReference},
				},
			}, nil
		},
	}, nil, nil, 0)

	req := asUser(httptest.NewRequest(http.MethodGet, "/imports/batch-1", nil), "user-1")
	rec := httptest.NewRecorder()

	newTestRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.BatchDetailResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Expenses) != 1 || len(resp.Payments) != 1 {
		t.Fatalf("unexpected detail: %+v", resp)
	}
}

func TestImportHandler_UndoConflictWhenAlreadyUndone(t *testing.T) {
	h := NewImportHandler(&importServiceStub{
		undoFn: func(ctx context.Context, userID, batchID string) (*usecase.UndoResult, error) {
			return nil, domain.ErrBatchAlreadyUndone
		},
	}, nil, nil, 0)

	req := asUser(httptest.NewRequest(http.MethodDelete, "/imports/batch-1", nil), "user-1")
	rec := httptest.NewRecorder()

	newTestRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for repeated undo, got %d", rec.Code)
	}
}

func TestImportHandler_UndoSuccess(t *testing.T) {
	h := NewImportHandler(&importServiceStub{
		undoFn: func(ctx context.Context, userID, batchID string) (*usecase.UndoResult, error) {
			return &usecase.UndoResult{
				Batch:           &domain.ImportBatch{ID: batchID, Status: domain.BatchUndone},
				DeletedExpenses: 3,
			}, nil
		},
	}, nil, nil, 0)

	req := asUser(httptest.NewRequest(http.MethodDelete, "/imports/batch-1", nil), "user-1")
	rec := httptest.NewRecorder()

	newTestRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.UndoResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.DeletedExpenses != 3 || resp.Batch.Status != string(domain.BatchUndone) {
		t.Fatalf("unexpected undo response: %+v", resp)
	}
}

func TestImportHandler_ListPassesPagination(t *testing.T) {
	var gotLimit, gotOffset int
	h := NewImportHandler(&importServiceStub{
		listFn: func(ctx context.Context, userID string, limit, offset int) ([]*domain.ImportBatch, error) {
			gotLimit, gotOffset = limit, offset
			return []*domain.ImportBatch{{ID: "batch-1"}}, nil
		},
	}, nil, nil, 0)

	req := asUser(httptest.NewRequest(http.MethodGet, "/imports?limit=5&offset=10", nil), "user-1")
	rec := httptest.NewRecorder()

	newTestRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotLimit != 5 || gotOffset != 10 {
		t.Fatalf("pagination not passed through: limit=%d offset=%d", gotLimit, gotOffset)
	}
}

func TestImportHandler_ListAuditLogs(t *testing.T) {
	var gotUser, gotAction, gotResource string
	h := NewImportHandler(&importServiceStub{
		listAuditFn: func(ctx context.Context, userID, action, resourceID string, limit, offset int) ([]*domain.AuditLog, error) {
			gotUser, gotAction, gotResource = userID, action, resourceID
			return []*domain.AuditLog{
				{ID: "log-1", Action: domain.AuditActionUndo, ResourceID: "batch-1", Status: "success"},
			}, nil
		},
	}, nil, nil, 0)

	req := asUser(httptest.NewRequest(http.MethodGet, "/audit-logs?action=statement.undo&resource_id=batch-1", nil), "user-1")
	rec := httptest.NewRecorder()

	newTestRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotUser != "user-1" || gotAction != "statement.undo" || gotResource != "batch-1" {
		t.Fatalf("filter not passed through: user=%q action=%q resource=%q", gotUser, gotAction, gotResource)
	}

	var resp []*dto.AuditLogResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != 1 || resp[0].Action != domain.AuditActionUndo {
		t.Fatalf("unexpected audit response: %+v", resp)
	}
}
