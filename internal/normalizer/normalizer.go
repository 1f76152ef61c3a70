// Package normalizer 按显式请求执行表格转换（宽表转长表、借贷合成金额、清理空行空列）
package normalizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"finsight/internal/model"
	"finsight/internal/parser"
)

// 输出列名
const (
	ColumnYear     = "year"
	ColumnAmount   = "amount"
	ColumnDate     = "date"
	ColumnCategory = "category"
	ColumnConcept  = "concept"
)

var (
	ErrColumnNotFound = errors.New("column not found")
	ErrColumnExists   = errors.New("column already exists")
	ErrNoYearColumns  = errors.New("no year columns to unpivot")
)

// Rules 转换规则
type Rules struct {
	DropEmptyRows    bool     `json:"dropEmptyRows"`
	DropEmptyColumns bool     `json:"dropEmptyColumns"`
	DeriveAmount     bool     `json:"deriveAmount"`
	DebitColumn      string   `json:"debitColumn,omitempty"`
	CreditColumn     string   `json:"creditColumn,omitempty"`
	Unpivot          bool     `json:"unpivot"`
	YearColumns      []string `json:"yearColumns,omitempty"` // 为空时自动识别
	InvertSigns      bool     `json:"invertSigns"`
	Mapping          Mapping  `json:"mapping"`
}

// Mapping 源列 → 规范列名（date / amount / category / concept）
// AmountColumn 同时决定 InvertSigns 作用的列，为空时为 amount
type Mapping struct {
	DateColumn     string `json:"dateColumn,omitempty"`
	AmountColumn   string `json:"amountColumn,omitempty"`
	CategoryColumn string `json:"categoryColumn,omitempty"`
	ConceptColumn  string `json:"conceptColumn,omitempty"`
}

// DefaultRules 只做空行空列清理
func DefaultRules() Rules {
	return Rules{DropEmptyRows: true, DropEmptyColumns: true}
}

// Result 转换结果
type Result struct {
	Table           model.RawTable        `json:"table"`
	Assessment      model.ShapeAssessment `json:"assessment"`
	Transformations []string              `json:"transformations"`
	Warnings        []string              `json:"warnings"`
}

// Normalize 依次执行：清理 → 借贷合成 → 宽表转长表 → 符号取反 → 列名映射 → 重新识别
// 单步失败记为警告并跳过该步，不中断整体流程
func Normalize(table model.RawTable, rules Rules, classifier *parser.ShapeClassifier) Result {
	if classifier == nil {
		classifier = parser.NewShapeClassifier(nil)
	}
	res := Result{Transformations: []string{}, Warnings: []string{}}

	if rules.DropEmptyRows || rules.DropEmptyColumns {
		var applied []string
		table, applied = DropEmpty(table, rules.DropEmptyRows, rules.DropEmptyColumns)
		res.Transformations = append(res.Transformations, applied...)
	}

	if rules.DeriveAmount {
		debit, credit := rules.DebitColumn, rules.CreditColumn
		if debit == "" || credit == "" {
			before := classifier.ClassifyTable(table, 0)
			if s, ok := before.Suggestion(model.SuggestDeriveAmount); ok {
				debit, _ = s.Metadata["debitColumn"].(string)
				credit, _ = s.Metadata["creditColumn"].(string)
			}
		}
		derived, err := DeriveAmount(table, debit, credit)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("Debit/credit conversion skipped: %v", err))
		} else {
			table = derived
			res.Transformations = append(res.Transformations,
				fmt.Sprintf("Derived %s = %s - %s", ColumnAmount, debit, credit))
		}
	}

	if rules.Unpivot {
		years := rules.YearColumns
		if len(years) == 0 {
			years = parser.FindYearColumns(table.Headers())
		}
		long, err := Unpivot(table, years)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("Unpivot skipped: %v", err))
		} else {
			table = long
			res.Transformations = append(res.Transformations,
				fmt.Sprintf("Unpivoted %d year columns into %d rows", len(years), long.Len()))
		}
	}

	if rules.InvertSigns {
		column := rules.Mapping.AmountColumn
		if column == "" {
			column = ColumnAmount
		}
		inverted, n, err := InvertSigns(table, column)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("Sign inversion skipped: %v", err))
		} else {
			table = inverted
			res.Transformations = append(res.Transformations,
				fmt.Sprintf("Inverted signs of %d values in %s", n, column))
		}
	}

	renamed, applied, err := Rename(table, rules.Mapping)
	if err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("Column mapping skipped: %v", err))
	} else if len(applied) > 0 {
		table = renamed
		res.Transformations = append(res.Transformations,
			fmt.Sprintf("Renamed columns: %s", strings.Join(applied, ", ")))
	}

	res.Table = table
	res.Assessment = classifier.ClassifyTable(table, 0)
	return res
}

// InvertSigns 可解析为数值的单元格取反（其余保持原样），返回新表与取反个数
func InvertSigns(table model.RawTable, column string) (model.RawTable, int, error) {
	headers := table.Headers()
	idx := findColumn(headers, column)
	if idx < 0 {
		return model.RawTable{}, 0, fmt.Errorf("%q: %w", column, ErrColumnNotFound)
	}

	rows := table.Rows()
	n := 0
	for _, r := range rows {
		d, ok := parser.CellDecimal(r[idx])
		if !ok {
			continue
		}
		f, _ := d.Neg().Float64()
		r[idx] = model.NumberCell(f)
		n++
	}
	return model.NewRawTable(headers, rows), n, nil
}

// Rename 按映射把源列改为规范列名；目标名已被其他列占用时报错且不做任何修改
func Rename(table model.RawTable, m Mapping) (model.RawTable, []string, error) {
	headers := table.Headers()
	applied := []string{}
	for _, p := range []struct{ from, to string }{
		{m.DateColumn, ColumnDate},
		{m.AmountColumn, ColumnAmount},
		{m.CategoryColumn, ColumnCategory},
		{m.ConceptColumn, ColumnConcept},
	} {
		if p.from == "" {
			continue
		}
		idx := findColumn(headers, p.from)
		if idx < 0 {
			return model.RawTable{}, nil, fmt.Errorf("%q: %w", p.from, ErrColumnNotFound)
		}
		if headers[idx] == p.to {
			continue
		}
		if other := findColumn(headers, p.to); other >= 0 && other != idx {
			return model.RawTable{}, nil, fmt.Errorf("%q: %w", p.to, ErrColumnExists)
		}
		applied = append(applied, fmt.Sprintf("%s → %s", headers[idx], p.to))
		headers[idx] = p.to
	}
	return model.NewRawTable(headers, table.Rows()), applied, nil
}

// DropEmpty 删除全空的行和/或列，返回新表和已执行的操作说明
func DropEmpty(table model.RawTable, rows, columns bool) (model.RawTable, []string) {
	applied := []string{}
	headers := table.Headers()
	data := table.Rows()

	if rows {
		kept := data[:0]
		for _, r := range data {
			if !rowEmpty(r) {
				kept = append(kept, r)
			}
		}
		if dropped := len(data) - len(kept); dropped > 0 {
			applied = append(applied, fmt.Sprintf("Dropped %d empty rows", dropped))
		}
		data = kept
	}

	if columns {
		keep := make([]int, 0, len(headers))
		for i := range headers {
			if !columnEmpty(data, i) {
				keep = append(keep, i)
			}
		}
		if dropped := len(headers) - len(keep); dropped > 0 && len(data) > 0 {
			applied = append(applied, fmt.Sprintf("Dropped %d empty columns", dropped))
			headers, data = project(headers, data, keep)
		}
	}

	return model.NewRawTable(headers, data), applied
}

// DeriveAmount 新增 amount = debit - credit（十进制精确计算；空值或非数值按 0），并删除两列原始列
func DeriveAmount(table model.RawTable, debitColumn, creditColumn string) (model.RawTable, error) {
	headers := table.Headers()
	di := findColumn(headers, debitColumn)
	ci := findColumn(headers, creditColumn)
	if di < 0 {
		return model.RawTable{}, fmt.Errorf("debit %q: %w", debitColumn, ErrColumnNotFound)
	}
	if ci < 0 {
		return model.RawTable{}, fmt.Errorf("credit %q: %w", creditColumn, ErrColumnNotFound)
	}
	if di == ci {
		return model.RawTable{}, fmt.Errorf("debit and credit refer to the same column %q", headers[di])
	}
	if findColumn(headers, ColumnAmount) >= 0 {
		return model.RawTable{}, fmt.Errorf("%q: %w", ColumnAmount, ErrColumnExists)
	}

	keep := make([]int, 0, len(headers)-1)
	for i := range headers {
		if i != di && i != ci {
			keep = append(keep, i)
		}
	}
	outHeaders, outRows := project(headers, table.Rows(), keep)
	outHeaders = append(outHeaders, ColumnAmount)

	for i := range outRows {
		src := table.Row(i)
		amount := cellOrZero(src[di]).Sub(cellOrZero(src[ci]))
		f, _ := amount.Float64()
		outRows[i] = append(outRows[i], model.NumberCell(f))
	}
	return model.NewRawTable(outHeaders, outRows), nil
}

// Unpivot 宽表转长表：非年份列作为标识列，每个年份列展开为一行 (year, amount)
// year 去掉单字母前缀（a2023 → 2023）；amount 空值或非数值按 0
func Unpivot(table model.RawTable, yearColumns []string) (model.RawTable, error) {
	if len(yearColumns) == 0 {
		return model.RawTable{}, ErrNoYearColumns
	}
	headers := table.Headers()

	isYear := make(map[int]bool, len(yearColumns))
	yearIdx := make([]int, 0, len(yearColumns))
	for _, y := range yearColumns {
		idx := findColumn(headers, y)
		if idx < 0 {
			return model.RawTable{}, fmt.Errorf("year column %q: %w", y, ErrColumnNotFound)
		}
		if !isYear[idx] {
			isYear[idx] = true
			yearIdx = append(yearIdx, idx)
		}
	}

	idCols := make([]int, 0, len(headers))
	for i := range headers {
		if !isYear[i] {
			idCols = append(idCols, i)
		}
	}
	for _, i := range idCols {
		n := parser.NormalizeColumnName(headers[i])
		if n == ColumnYear || n == ColumnAmount {
			return model.RawTable{}, fmt.Errorf("%q: %w", headers[i], ErrColumnExists)
		}
	}

	outHeaders := make([]string, 0, len(idCols)+2)
	for _, i := range idCols {
		outHeaders = append(outHeaders, headers[i])
	}
	outHeaders = append(outHeaders, ColumnYear, ColumnAmount)

	rows := table.Rows()
	out := make([]model.Row, 0, len(rows)*len(yearIdx))
	// 与 melt 一致：按年份列优先展开
	for _, yi := range yearIdx {
		label := headers[yi]
		if y, ok := parser.YearFromHeader(label); ok {
			label = fmt.Sprintf("%d", y)
		}
		for _, r := range rows {
			row := make(model.Row, 0, len(outHeaders))
			for _, i := range idCols {
				row = append(row, r[i])
			}
			f, _ := cellOrZero(r[yi]).Float64()
			row = append(row, model.TextCell(label), model.NumberCell(f))
			out = append(out, row)
		}
	}
	return model.NewRawTable(outHeaders, out), nil
}

// findColumn 先精确匹配，再按规范化名称匹配
func findColumn(headers []string, name string) int {
	if name == "" {
		return -1
	}
	for i, h := range headers {
		if h == name {
			return i
		}
	}
	target := parser.NormalizeColumnName(name)
	for i, h := range headers {
		if parser.NormalizeColumnName(h) == target {
			return i
		}
	}
	return -1
}

func cellOrZero(c model.Cell) decimal.Decimal {
	if d, ok := parser.CellDecimal(c); ok {
		return d
	}
	return decimal.Zero
}

func project(headers []string, rows []model.Row, keep []int) ([]string, []model.Row) {
	h := make([]string, 0, len(keep))
	for _, i := range keep {
		h = append(h, headers[i])
	}
	out := make([]model.Row, len(rows))
	for r, row := range rows {
		nr := make(model.Row, 0, len(keep)+1)
		for _, i := range keep {
			nr = append(nr, row[i])
		}
		out[r] = nr
	}
	return h, out
}

func rowEmpty(r model.Row) bool {
	for _, c := range r {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

func columnEmpty(rows []model.Row, i int) bool {
	for _, r := range rows {
		if i < len(r) && !r[i].IsEmpty() {
			return false
		}
	}
	return true
}
