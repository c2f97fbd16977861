package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPeriodContains(t *testing.T) {
	p := Period{
		Start: time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 1, 10, 18, 0, 0, 0, time.UTC),
	}
	assert.True(t, p.Contains(p.Start))
	assert.True(t, p.Contains(p.End))
	assert.True(t, p.Contains(time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC)))
	assert.False(t, p.Contains(p.Start.Add(-time.Second)))
	assert.False(t, p.Contains(p.End.Add(time.Second)))

	// Date granularity ignores the time of day on the boundary days.
	assert.True(t, p.ContainsDate(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)))
	assert.True(t, p.ContainsDate(time.Date(2026, 1, 10, 23, 59, 0, 0, time.UTC)))
	assert.False(t, p.ContainsDate(time.Date(2026, 1, 11, 0, 0, 0, 0, time.UTC)))
}

func TestTableCellRaggedRows(t *testing.T) {
	table := Table{Rows: [][]string{{"a", "b"}, {"c"}}}
	assert.Equal(t, "b", table.Cell(0, 1))
	assert.Equal(t, "", table.Cell(1, 1))
	assert.Equal(t, "", table.Cell(5, 0))
	assert.Equal(t, "", table.Cell(0, -1))
}

func TestParseOrderStatus(t *testing.T) {
	assert.Equal(t, OrderStatusArrived, ParseOrderStatus("已報到"))
	assert.Equal(t, OrderStatusArrived, ParseOrderStatus(" Arrived "))
	assert.Equal(t, OrderStatusArrived, ParseOrderStatus("Checked In"))
	assert.Equal(t, OrderStatusCancelled, ParseOrderStatus("已取消"))
	assert.Equal(t, OrderStatusCancelled, ParseOrderStatus("No-Show"))
	assert.Equal(t, OrderStatusOther, ParseOrderStatus("改期"))
	assert.Equal(t, OrderStatusOther, ParseOrderStatus(""))
}

func TestSkippedRowString(t *testing.T) {
	s := SkippedRow{Sheet: "服務", Row: 7, Reason: SkipUnparseableDate, Detail: "order time"}
	assert.Equal(t, "服務 row 7: UNPARSEABLE_DATE (order time)", s.String())

	s.Detail = ""
	assert.Equal(t, "服務 row 7: UNPARSEABLE_DATE", s.String())
}
