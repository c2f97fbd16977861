package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/cashrecon/backend/src/config"
	"github.com/username/cashrecon/backend/src/models"
	"github.com/username/cashrecon/backend/src/processors"
	"github.com/username/cashrecon/backend/src/services"
	"github.com/xuri/excelize/v2"
)

func newTestHandler(t *testing.T) *ReconHandler {
	t.Helper()
	config.Cfg = &config.AppConfig{
		MaxUploadSizeBytes: 10 * 1024 * 1024,
		CashTolerance:      processors.DefaultCashTolerance,
	}
	svc := services.NewReconService(processors.NewReconProcessor(processors.DefaultCashTolerance))
	return NewReconHandler(svc)
}

func xlsxBytes(t *testing.T, sheets map[string][][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func billWorkbook(t *testing.T) []byte {
	return xlsxBytes(t, map[string][][]string{
		"服務": {
			{"帳單編號", "分店", "日期時間", "訂單編號", "現金"},
			{"B1", "店A", "2026/01/05 10:00", "A1", "800"},
		},
	})
}

func orderWorkbook(t *testing.T) []byte {
	return xlsxBytes(t, map[string][][]string{
		"訂單報表": {
			{"訂單編號", "日期時間", "分店", "訂單狀態"},
			{"A1", "2026/01/05 10:00", "店A", "已報到"},
			{"A2", "2026/01/06 11:00", "店A", "已報到"},
		},
	})
}

type uploadPart struct {
	filename    string
	contentType string
	body        []byte
}

func reconRequest(t *testing.T, form map[string]string, parts []uploadPart, query string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range form {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, p := range parts {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="files"; filename="`+p.filename+`"`)
		h.Set("Content-Type", p.contentType)
		w, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = w.Write(p.body)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/reconcile"+query, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

var xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func validForm() map[string]string {
	return map[string]string{
		"store": "店A",
		"start": "2026-01-01 00:00",
		"end":   "2026-01-31 23:59:59",
	}
}

func TestHandleReconcileJSON(t *testing.T) {
	h := newTestHandler(t)
	req := reconRequest(t, validForm(), []uploadPart{
		{"bills.xlsx", xlsxMIME, billWorkbook(t)},
		{"orders.xlsx", xlsxMIME, orderWorkbook(t)},
	}, "")
	rec := httptest.NewRecorder()
	h.HandleReconcile(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var result models.ReconciliationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "店A", result.Summary.Store)
	assert.Equal(t, 1, result.Summary.MissingBillCount)
	assert.Equal(t, "A2", result.MissingBillRows[0].OrderID)
}

func TestHandleReconcileXlsxFormat(t *testing.T) {
	h := newTestHandler(t)
	req := reconRequest(t, validForm(), []uploadPart{
		{"bills.xlsx", xlsxMIME, billWorkbook(t)},
		{"orders.xlsx", xlsxMIME, orderWorkbook(t)},
	}, "?format=xlsx")
	rec := httptest.NewRecorder()
	h.HandleReconcile(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, xlsxMIME, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "cash_recon_20260101.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "Summary")
	assert.Contains(t, f.GetSheetList(), "MissingBills")
}

func TestHandleReconcileMissingFields(t *testing.T) {
	h := newTestHandler(t)

	form := validForm()
	form["store"] = "   "
	req := reconRequest(t, form, []uploadPart{{"bills.xlsx", xlsxMIME, billWorkbook(t)}}, "")
	rec := httptest.NewRecorder()
	h.HandleReconcile(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	form = validForm()
	form["start"] = "05/01/2026"
	req = reconRequest(t, form, []uploadPart{{"bills.xlsx", xlsxMIME, billWorkbook(t)}}, "")
	rec = httptest.NewRecorder()
	h.HandleReconcile(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = reconRequest(t, validForm(), nil, "")
	rec = httptest.NewRecorder()
	h.HandleReconcile(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleReconcileRejectsNonXlsxUpload(t *testing.T) {
	h := newTestHandler(t)

	// Declared type is fine, content is not a zip archive.
	req := reconRequest(t, validForm(), []uploadPart{
		{"bills.xlsx", xlsxMIME, []byte("plain text masquerading as xlsx")},
	}, "")
	rec := httptest.NewRecorder()
	h.HandleReconcile(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Disallowed declared type.
	req = reconRequest(t, validForm(), []uploadPart{
		{"bills.csv", "text/csv", billWorkbook(t)},
	}, "")
	rec = httptest.NewRecorder()
	h.HandleReconcile(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleReconcileUnrecognizableWorkbook(t *testing.T) {
	h := newTestHandler(t)
	junk := xlsxBytes(t, map[string][][]string{
		"工作表1": {{"甲", "乙"}, {"1", "2"}},
	})
	req := reconRequest(t, validForm(), []uploadPart{
		{"junk.xlsx", xlsxMIME, junk},
	}, "")
	rec := httptest.NewRecorder()
	h.HandleReconcile(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleReconcileUnknownStore(t *testing.T) {
	h := newTestHandler(t)
	form := validForm()
	form["store"] = "台北店"
	req := reconRequest(t, form, []uploadPart{
		{"bills.xlsx", xlsxMIME, billWorkbook(t)},
		{"orders.xlsx", xlsxMIME, orderWorkbook(t)},
	}, "")
	rec := httptest.NewRecorder()
	h.HandleReconcile(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "台北店")
}

func TestParseRequestTime(t *testing.T) {
	ts, err := parseRequestTime("2026-01-05 10:30")
	require.NoError(t, err)
	assert.Equal(t, 10, ts.Hour())

	ts, err = parseRequestTime("2026-01-05 10:30:45")
	require.NoError(t, err)
	assert.Equal(t, 45, ts.Second())

	_, err = parseRequestTime("2026/01/05 10:30")
	assert.Error(t, err)
}
