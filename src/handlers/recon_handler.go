// backend/src/handlers/recon_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/username/cashrecon/backend/src/config"
	"github.com/username/cashrecon/backend/src/logger"
	"github.com/username/cashrecon/backend/src/models"
	"github.com/username/cashrecon/backend/src/parsers"
	"github.com/username/cashrecon/backend/src/reports"
	"github.com/username/cashrecon/backend/src/security/validation"
	"github.com/username/cashrecon/backend/src/services"
	"github.com/username/cashrecon/backend/src/utils"
)

// ReconHandler serves the one endpoint this backend exists for: upload
// the exports, get the reconciliation back. Uploaded workbooks live in
// the request's memory only; nothing is written to durable storage.
type ReconHandler struct {
	reconService services.ReconService
}

func NewReconHandler(service services.ReconService) *ReconHandler {
	return &ReconHandler{
		reconService: service,
	}
}

var requestTimeFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

func parseRequestTime(raw string) (time.Time, error) {
	for _, layout := range requestTimeFormats {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("expected YYYY-MM-DD HH:MM[:SS], got %q", raw)
}

// HandleReconcile accepts a multipart form with fields store, start,
// end and one or more xlsx files under "files". Workbook kinds are
// auto-detected, so the exports may arrive in any order. With
// ?format=xlsx the rendered report is streamed back instead of JSON.
func (h *ReconHandler) HandleReconcile(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())

	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		ctxLogger.Warn("Failed to parse multipart form or request too large", "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("failed to parse upload or file too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	store := r.FormValue("store")
	if err := validation.ValidateStoreName(store); err != nil {
		ctxLogger.Warn("Invalid store field", "store", store)
		utils.SendJSONError(w, "store field is required", http.StatusBadRequest)
		return
	}
	start, err := parseRequestTime(r.FormValue("start"))
	if err != nil {
		utils.SendJSONError(w, "invalid start: "+err.Error(), http.StatusBadRequest)
		return
	}
	end, err := parseRequestTime(r.FormValue("end"))
	if err != nil {
		utils.SendJSONError(w, "invalid end: "+err.Error(), http.StatusBadRequest)
		return
	}

	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		utils.SendJSONError(w, "at least one xlsx file is required under the 'files' field", http.StatusBadRequest)
		return
	}

	var billTables, orderTables, posTables []models.Table
	for _, fh := range fileHeaders {
		tables, kind, err := loadUpload(fh)
		if err != nil {
			ctxLogger.Warn("Rejected uploaded file", "filename", fh.Filename, "error", err)
			utils.SendJSONError(w, fmt.Sprintf("%s: %v", fh.Filename, err), http.StatusBadRequest)
			return
		}
		ctxLogger.Info("Classified uploaded workbook", "filename", fh.Filename, "kind", kind, "sheets", len(tables))
		switch kind {
		case parsers.WorkbookHotcakeBills:
			billTables = append(billTables, tables...)
		case parsers.WorkbookHotcakeOrders:
			orderTables = append(orderTables, tables...)
		case parsers.WorkbookPosOrders:
			posTables = append(posTables, tables...)
		default:
			utils.SendJSONError(w, fmt.Sprintf("%s: could not recognize this workbook as a Hotcake or register export", fh.Filename), http.StatusUnprocessableEntity)
			return
		}
	}

	result, err := h.reconService.Reconcile(store, start, end, billTables, orderTables, posTables)
	if err != nil {
		h.sendReconcileError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "xlsx" {
		filename := fmt.Sprintf("cash_recon_%s.xlsx", start.Format("20060102"))
		if err := reports.StreamWorkbook(w, result, filename); err != nil {
			ctxLogger.Error("Failed to stream report workbook", "error", err)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		ctxLogger.Error("Error encoding JSON response for reconciliation result", "error", err)
	}
}

// loadUpload validates one uploaded file and reads it into tables.
func loadUpload(fh *multipart.FileHeader) ([]models.Table, parsers.WorkbookKind, error) {
	if fh.Size > config.Cfg.MaxUploadSizeBytes {
		return nil, parsers.WorkbookUnknown, fmt.Errorf("file too large, max %d MB", config.Cfg.MaxUploadSizeBytes/(1024*1024))
	}
	if err := validation.ValidateClientContentType(fh.Header.Get("Content-Type")); err != nil {
		return nil, parsers.WorkbookUnknown, err
	}

	file, err := fh.Open()
	if err != nil {
		return nil, parsers.WorkbookUnknown, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	if err := validation.ValidateXlsxContent(file); err != nil {
		return nil, parsers.WorkbookUnknown, err
	}

	tables, err := parsers.LoadWorkbookTables(file)
	if err != nil {
		return nil, parsers.WorkbookUnknown, err
	}
	return tables, parsers.DetectWorkbookKind(tables), nil
}

// sendReconcileError maps the engine's error taxonomy onto HTTP codes:
// bad requests for caller mistakes, 422 for inputs we understood but
// could not reconcile.
func (h *ReconHandler) sendReconcileError(w http.ResponseWriter, r *http.Request, err error) {
	ctxLogger := logger.FromContext(r.Context())

	var schemaErr *models.UnrecognizedSchemaError
	var emptyErr *models.EmptyInputError
	var storeErr *models.AmbiguousStoreError

	switch {
	case errors.As(err, &schemaErr):
		ctxLogger.Warn("Reconciliation rejected: unrecognized schema", "sheet", schemaErr.Sheet, "missing", schemaErr.Missing)
		utils.SendJSONError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &storeErr):
		ctxLogger.Warn("Reconciliation rejected: store not found", "requested", storeErr.Requested)
		utils.SendJSONError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &emptyErr):
		ctxLogger.Warn("Reconciliation rejected: empty input", "store", emptyErr.Store)
		utils.SendJSONError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, services.ErrInvalidPeriod),
		errors.Is(err, services.ErrNoBillTables),
		errors.Is(err, services.ErrNoOrderTables),
		errors.Is(err, services.ErrShapeMismatch):
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		ctxLogger.Error("Reconciliation failed", "error", err)
		utils.SendJSONError(w, "internal error during reconciliation", http.StatusInternalServerError)
	}
}
