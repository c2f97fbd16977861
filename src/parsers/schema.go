// backend/src/parsers/schema.go
package parsers

import (
	"strings"

	"github.com/username/cashrecon/backend/src/models"
)

// Canonical field names. Every header in a recognized sheet resolves to
// one of these through the synonym table below.
const (
	FieldBillID      = "bill_id"
	FieldOrderID     = "order_id"
	FieldOrderTime   = "order_time"
	FieldSettleTime  = "settle_time"
	FieldAttrDate    = "attributed_date"
	FieldStore       = "store"
	FieldTerminal    = "terminal"
	FieldMaster      = "master"
	FieldItem        = "item"
	FieldCash        = "cash"
	FieldAmount      = "amount"
	FieldStatus      = "status"
	FieldCheckinTime = "checkin_time"
	FieldMember      = "member"
	FieldPhone       = "phone"
	FieldCreatedTime = "created_time"
	FieldProduct     = "product"
	FieldPayStatus   = "pay_status"
	FieldPayMethod   = "pay_method"
)

// fieldSynonyms is the static, versioned header vocabulary. Keys are
// compared after NormalizeHeader, so spacing, case and fullwidth
// punctuation variants in the export never matter.
var fieldSynonyms = map[string][]string{
	FieldBillID:      {"帳單編號", "帳單號", "bill id", "bill no"},
	FieldOrderID:     {"訂單編號", "訂單號", "order id", "order no"},
	FieldOrderTime:   {"日期時間", "訂單日期時間", "服務日期時間", "服務開始時間", "開始時間", "order time", "order datetime"},
	FieldSettleTime:  {"結帳操作時間", "結帳時間", "操作時間", "settle time", "checkout time"},
	FieldAttrDate:    {"計算歸屬日", "歸屬日", "attributed date"},
	FieldStore:       {"分店", "分店名稱", "門市", "店別", "店鋪名稱", "store", "shop"},
	FieldTerminal:    {"機台名稱", "設備名稱", "terminal"},
	FieldMaster:      {"設計師", "師傅", "服務人員", "master", "designer", "technician"},
	FieldItem:        {"項目", "服務項目", "服務", "item", "service"},
	FieldCash:        {"現金", "現金支付", "現金收款", "cash"},
	FieldAmount:      {"結帳金額", "帳單金額", "帳單總額", "應收金額", "訂單金額", "amount"},
	FieldStatus:      {"訂單狀態", "狀態", "status", "order status"},
	FieldCheckinTime: {"報到/取消時間", "報到取消時間", "報到時間", "checkin time"},
	FieldMember:      {"會員姓名", "姓名", "member", "member name"},
	FieldPhone:       {"手機號碼", "電話號碼", "手機", "電話", "phone"},
	FieldCreatedTime: {"建立時間", "建立日期時間", "created time"},
	FieldProduct:     {"商品名稱", "品項", "product"},
	FieldPayStatus:   {"付款狀態", "支付狀態", "pay status"},
	FieldPayMethod:   {"付款方式", "支付方式", "pay method"},
}

// synonymIndex maps normalized header -> canonical field, built once.
var synonymIndex = func() map[string]string {
	idx := make(map[string]string)
	for field, alts := range fieldSynonyms {
		for _, alt := range alts {
			idx[NormalizeHeader(alt)] = field
		}
	}
	return idx
}()

var headerReplacer = strings.NewReplacer(
	"　", "",
	" ", "",
	"\t", "",
	"：", ":",
	"／", "/",
	"（", "(",
	"）", ")",
	"-", "",
	"_", "",
)

// NormalizeHeader folds one raw header cell into its comparison form:
// trimmed, lowercased, spaces removed, fullwidth punctuation unified.
func NormalizeHeader(raw string) string {
	return strings.ToLower(headerReplacer.Replace(strings.TrimSpace(raw)))
}

// NormalizeHeaders resolves a header row against the synonym table and
// returns canonical field -> column index. Unknown headers are ignored;
// the first column wins when an export repeats a header.
func NormalizeHeaders(headers []string) map[string]int {
	fields := make(map[string]int)
	for col, h := range headers {
		key := NormalizeHeader(h)
		if key == "" {
			continue
		}
		field, ok := synonymIndex[key]
		if !ok {
			continue
		}
		if _, seen := fields[field]; !seen {
			fields[field] = col
		}
	}
	return fields
}

// Shape is the closed set of table shapes this system understands.
type Shape string

const (
	ShapeServiceBill Shape = "service_bill"
	ShapeTopup       Shape = "topup"
	ShapeOrder       Shape = "order"
	ShapePos         Shape = "pos"
)

type shapeSpec struct {
	shape      Shape
	required   []string
	optional   []string
	sheetHints []string
}

// Shape order matters only as the final tie-break; scoring decides first.
var shapeSpecs = []shapeSpec{
	{
		shape:      ShapeOrder,
		required:   []string{FieldOrderID, FieldOrderTime, FieldStore, FieldStatus},
		optional:   []string{FieldMaster, FieldItem, FieldCheckinTime, FieldMember, FieldPhone, FieldBillID, FieldAmount},
		sheetHints: []string{"訂單報表", "orders"},
	},
	{
		shape:      ShapeServiceBill,
		required:   []string{FieldBillID, FieldStore, FieldOrderTime},
		optional:   []string{FieldOrderID, FieldAmount, FieldCash, FieldSettleTime, FieldMaster, FieldItem, FieldAttrDate},
		sheetHints: []string{"服務", "service"},
	},
	{
		shape:      ShapeTopup,
		required:   []string{FieldBillID, FieldStore, FieldSettleTime},
		optional:   []string{FieldAmount, FieldCash, FieldOrderID, FieldMaster, FieldItem, FieldAttrDate},
		sheetHints: []string{"儲值金", "儲值", "topup"},
	},
	{
		shape:      ShapePos,
		required:   []string{FieldCreatedTime, FieldCash, FieldTerminal},
		optional:   []string{FieldProduct, FieldAmount, FieldPayStatus, FieldStatus, FieldPayMethod, FieldOrderID},
		sheetHints: []string{"歷史訂單"},
	},
}

// maxHeaderProbeRows bounds the header search. POS exports put a banner
// above the real header row, which sits at row 3.
const maxHeaderProbeRows = 5

// Detection is the outcome of shape detection for one sheet.
type Detection struct {
	Shape     Shape
	Fields    map[string]int
	HeaderRow int // 0-based index of the header row within Table.Rows
}

// DetectShape classifies a sheet against the closed shape set. A shape
// is accepted only when all of its required fields resolve; among
// accepted shapes the one resolving the most optional fields wins, with
// a sheet-name hint outranking the field count. Failure reports the
// missing required fields of the nearest candidate.
func DetectShape(t models.Table) (Detection, error) {
	best := Detection{}
	bestScore := -1

	// Track the closest near-miss for the error message.
	var nearMissing []string

	limit := len(t.Rows)
	if limit > maxHeaderProbeRows {
		limit = maxHeaderProbeRows
	}
	sheetKey := NormalizeHeader(t.Sheet)

	for row := 0; row < limit; row++ {
		fields := NormalizeHeaders(t.Rows[row])
		if len(fields) == 0 {
			continue
		}
		for _, spec := range shapeSpecs {
			missing := missingFields(fields, spec.required)
			if len(missing) > 0 {
				if nearMissing == nil || len(missing) < len(nearMissing) {
					nearMissing = missing
				}
				continue
			}
			score := 0
			for _, f := range spec.optional {
				if _, ok := fields[f]; ok {
					score++
				}
			}
			for _, hint := range spec.sheetHints {
				if sheetKey != "" && strings.Contains(sheetKey, NormalizeHeader(hint)) {
					score += 100
					break
				}
			}
			if score > bestScore {
				bestScore = score
				best = Detection{Shape: spec.shape, Fields: fields, HeaderRow: row}
			}
		}
		if bestScore >= 0 {
			// The first row that yields any accepted shape is the header row.
			break
		}
	}

	if bestScore < 0 {
		return Detection{}, &models.UnrecognizedSchemaError{Sheet: t.Sheet, Missing: nearMissing}
	}
	return best, nil
}

func missingFields(fields map[string]int, required []string) []string {
	var missing []string
	for _, f := range required {
		if _, ok := fields[f]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}
