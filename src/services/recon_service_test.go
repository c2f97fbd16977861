package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/cashrecon/backend/src/models"
	"github.com/username/cashrecon/backend/src/processors"
)

func newTestService() ReconService {
	return NewReconService(processors.NewReconProcessor(processors.DefaultCashTolerance))
}

func serviceSheet() models.Table {
	return models.Table{
		Sheet: "服務",
		Rows: [][]string{
			{"帳單編號", "分店", "日期時間", "訂單編號", "設計師", "項目", "現金"},
			{"B1", "店A", "2026/01/05 10:00", "A1", "小美", "剪髮", "800"},
			{"B2", "店A", "2026/01/06 14:00", "A2", "小強", "染髮", "1,200"},
			{"B3", "店B", "2026/01/06 14:00", "X1", "小王", "燙髮", "999"},
		},
	}
}

func topupSheet() models.Table {
	return models.Table{
		Sheet: "儲值金",
		Rows: [][]string{
			{"帳單編號", "分店", "結帳操作時間", "現金"},
			{"T1", "店A", "2026/01/07 16:00", "2,000"},
		},
	}
}

func orderSheet() models.Table {
	return models.Table{
		Sheet: "訂單報表",
		Rows: [][]string{
			{"訂單編號", "日期時間", "分店", "設計師", "訂單狀態", "會員姓名"},
			{"A1", "2026/01/05 10:00", "店A", "小美", "已報到", "王小明"},
			{"A2", "2026/01/06 14:00", "店A", "小強", "已報到", "李小華"},
			{"A3", "2026/01/08 11:00", "店A", "小美", "已報到", "陳大文"},
			{"A4", "2026/01/08 12:00", "店A", "小美", "已取消", "林小芳"},
		},
	}
}

func posSheet() models.Table {
	return models.Table{
		Sheet: "歷史訂單",
		Rows: [][]string{
			{"歷史訂單報表"},
			{},
			{"商品名稱", "建立時間", "機台名稱", "現金支付"},
			{"剪髮", "2026/01/05", "一號機", "800"},
			{"染髮", "2026/01/06", "一號機", "1,200"},
			{"儲值", "2026/01/07", "一號機", "2,000"},
		},
	}
}

func reconPeriod() (time.Time, time.Time) {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 31, 23, 59, 0, 0, time.UTC)
}

func TestReconcileEndToEnd(t *testing.T) {
	svc := newTestService()
	start, end := reconPeriod()

	res, err := svc.Reconcile("店A", start, end,
		[]models.Table{serviceSheet(), topupSheet()},
		[]models.Table{orderSheet()},
		[]models.Table{posSheet()})
	require.NoError(t, err)

	assert.True(t, res.Summary.ServiceCash.Equal(decimal.RequireFromString("2000")))
	assert.True(t, res.Summary.TopupCash.Equal(decimal.RequireFromString("2000")))
	assert.True(t, res.Summary.HotcakeCash.Equal(decimal.RequireFromString("4000")))
	require.True(t, res.Summary.PosCash.Valid)
	assert.True(t, res.Summary.PosCash.Decimal.Equal(decimal.RequireFromString("4000")))
	assert.True(t, res.Summary.Discrepancy.Decimal.IsZero())

	// A3 arrived but never billed; cash matches, the verdict still fails.
	require.Len(t, res.MissingBillRows, 1)
	assert.Equal(t, "A3", res.MissingBillRows[0].OrderID)
	assert.Equal(t, "陳大文", res.MissingBillRows[0].Member)
	assert.False(t, res.Summary.ConsideredCorrect)

	// 店B rows never leak into 店A's report.
	for _, b := range res.ServiceBillRows {
		assert.Equal(t, "店A", b.Store)
	}
}

func TestReconcileWithoutPos(t *testing.T) {
	svc := newTestService()
	start, end := reconPeriod()

	res, err := svc.Reconcile("店A", start, end,
		[]models.Table{serviceSheet()},
		[]models.Table{orderSheet()},
		nil)
	require.NoError(t, err)
	assert.False(t, res.Summary.PosCash.Valid)
	assert.False(t, res.Summary.Discrepancy.Valid)
	// Missing bills are still reported, but without a register export
	// there is no comparison to fail.
	assert.Equal(t, 1, res.Summary.MissingBillCount)
	assert.True(t, res.Summary.ConsideredCorrect)
}

func TestReconcileInputValidation(t *testing.T) {
	svc := newTestService()
	start, end := reconPeriod()

	_, err := svc.Reconcile("店A", end, start, []models.Table{serviceSheet()}, []models.Table{orderSheet()}, nil)
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	_, err = svc.Reconcile("店A", start, end, nil, []models.Table{orderSheet()}, nil)
	assert.ErrorIs(t, err, ErrNoBillTables)

	_, err = svc.Reconcile("店A", start, end, []models.Table{serviceSheet()}, nil, nil)
	assert.ErrorIs(t, err, ErrNoOrderTables)
}

func TestReconcileShapeMismatch(t *testing.T) {
	svc := newTestService()
	start, end := reconPeriod()

	// The order report handed in as a bill ledger.
	_, err := svc.Reconcile("店A", start, end, []models.Table{orderSheet()}, []models.Table{orderSheet()}, nil)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	// A bill ledger handed in as the order report.
	_, err = svc.Reconcile("店A", start, end, []models.Table{serviceSheet()}, []models.Table{serviceSheet()}, nil)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestReconcileUnrecognizedSheet(t *testing.T) {
	svc := newTestService()
	start, end := reconPeriod()

	junk := models.Table{Sheet: "工作表1", Rows: [][]string{{"a", "b", "c"}, {"1", "2", "3"}}}
	_, err := svc.Reconcile("店A", start, end, []models.Table{junk}, []models.Table{orderSheet()}, nil)
	var schemaErr *models.UnrecognizedSchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "工作表1", schemaErr.Sheet)
}
