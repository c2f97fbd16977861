package parsers

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/cashrecon/backend/src/models"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook writes sheet name -> rows into an in-memory xlsx.
func buildWorkbook(t *testing.T, sheets map[string][][]string) *bytes.Buffer {
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
			cellName, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cellName, &row))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestLoadWorkbookTables(t *testing.T) {
	buf := buildWorkbook(t, map[string][][]string{
		"服務": {
			{"帳單編號", "分店", "日期時間", "現金"},
			{"B1", "店A", "2026/01/05 10:00", "800"},
		},
	})

	tables, err := LoadWorkbookTables(buf)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "服務", tables[0].Sheet)
	require.Len(t, tables[0].Rows, 2)
	assert.Equal(t, "B1", tables[0].Rows[1][0])
}

func TestLoadWorkbookTablesRejectsGarbage(t *testing.T) {
	_, err := LoadWorkbookTables(bytes.NewReader([]byte("not a zip archive")))
	assert.Error(t, err)
}

func TestDetectWorkbookKind(t *testing.T) {
	billHeader := []string{"帳單編號", "分店", "日期時間", "現金"}
	topupHeader := []string{"帳單編號", "分店", "結帳操作時間", "現金"}
	orderHeader := []string{"訂單編號", "日期時間", "分店", "訂單狀態"}
	posHeader := []string{"建立時間", "機台名稱", "現金支付"}

	bills := []models.Table{
		{Sheet: "服務", Rows: [][]string{billHeader}},
		{Sheet: "儲值金", Rows: [][]string{topupHeader}},
	}
	assert.Equal(t, WorkbookHotcakeBills, DetectWorkbookKind(bills))

	orders := []models.Table{{Sheet: "訂單報表", Rows: [][]string{orderHeader}}}
	assert.Equal(t, WorkbookHotcakeOrders, DetectWorkbookKind(orders))

	pos := []models.Table{{Sheet: "歷史訂單", Rows: [][]string{{"banner"}, {}, posHeader}}}
	assert.Equal(t, WorkbookPosOrders, DetectWorkbookKind(pos))

	// A cover sheet alongside a recognizable one does not spoil detection.
	mixed := append([]models.Table{{Sheet: "說明", Rows: [][]string{{"報表說明"}}}}, bills...)
	assert.Equal(t, WorkbookHotcakeBills, DetectWorkbookKind(mixed))

	unknown := []models.Table{{Sheet: "x", Rows: [][]string{{"a", "b"}}}}
	assert.Equal(t, WorkbookUnknown, DetectWorkbookKind(unknown))
}
