package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Cell 原始单元格：字符串 / 数值 / 空
type Cell struct {
	Raw   string
	Num   float64
	IsNum bool // 来源本身就是数值（XLSX 数值单元格 / JSON number）
}

// TextCell 创建字符串单元格
func TextCell(s string) Cell {
	return Cell{Raw: s}
}

// NumberCell 创建数值单元格
func NumberCell(v float64) Cell {
	return Cell{Raw: strconv.FormatFloat(v, 'f', -1, 64), Num: v, IsNum: true}
}

// IsEmpty 是否为空单元格
func (c Cell) IsEmpty() bool {
	return !c.IsNum && c.Raw == ""
}

// String 返回原始文本
func (c Cell) String() string {
	return c.Raw
}

// MarshalJSON 数值输出 number，空输出 null，其余输出 string
func (c Cell) MarshalJSON() ([]byte, error) {
	if c.IsNum {
		return json.Marshal(c.Num)
	}
	if c.Raw == "" {
		return []byte("null"), nil
	}
	return json.Marshal(c.Raw)
}

// UnmarshalJSON 接受 string / number / null / bool
func (c *Cell) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = Cell{}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = TextCell(s)
		return nil
	case 't', 'f':
		*c = TextCell(string(data))
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("unsupported cell value %s: %w", data, err)
	}
	*c = NumberCell(n)
	return nil
}

// Row 按表头位置对齐的一行数据（表头可重复，因此不用 map）
type Row []Cell

// RawTable 上传文件解析出的原始表格，创建后不可修改
type RawTable struct {
	headers []string
	rows    []Row
}

// NewRawTable 创建原始表格（复制入参；行宽不足时补空单元格，多余单元格丢弃）
func NewRawTable(headers []string, rows []Row) RawTable {
	h := make([]string, len(headers))
	copy(h, headers)

	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		row := make(Row, len(h))
		copy(row, r)
		out = append(out, row)
	}
	return RawTable{headers: h, rows: out}
}

// Headers 表头（副本）
func (t RawTable) Headers() []string {
	h := make([]string, len(t.headers))
	copy(h, t.headers)
	return h
}

// Len 数据行数
func (t RawTable) Len() int {
	return len(t.rows)
}

// Row 第 i 行（副本）
func (t RawTable) Row(i int) Row {
	r := make(Row, len(t.rows[i]))
	copy(r, t.rows[i])
	return r
}

// Rows 全部数据行（副本）
func (t RawTable) Rows() []Row {
	return t.Sample(len(t.rows))
}

// Sample 前 n 行（副本）
func (t RawTable) Sample(n int) []Row {
	if n > len(t.rows) {
		n = len(t.rows)
	}
	if n < 0 {
		n = 0
	}
	out := make([]Row, n)
	for i := 0; i < n; i++ {
		out[i] = t.Row(i)
	}
	return out
}

// ColumnIndex 表头首次出现的位置，不存在返回 -1
func (t RawTable) ColumnIndex(header string) int {
	for i, h := range t.headers {
		if h == header {
			return i
		}
	}
	return -1
}

type rawTableJSON struct {
	Headers []string          `json:"headers"`
	Rows    []json.RawMessage `json:"rows"`
}

// MarshalJSON 输出 {headers, rows}，rows 为对象数组（重复表头仅保留首列）
func (t RawTable) MarshalJSON() ([]byte, error) {
	type out struct {
		Headers []string         `json:"headers"`
		Rows    []map[string]any `json:"rows"`
	}
	o := out{Headers: t.Headers(), Rows: make([]map[string]any, 0, len(t.rows))}
	for _, r := range t.rows {
		m := make(map[string]any, len(t.headers))
		for i, h := range t.headers {
			if _, dup := m[h]; dup {
				continue
			}
			m[h] = r[i]
		}
		o.Rows = append(o.Rows, m)
	}
	return json.Marshal(o)
}

// UnmarshalJSON 接受 {headers, rows}，每行可以是数组或对象
func (t *RawTable) UnmarshalJSON(data []byte) error {
	var in rawTableJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	rows := make([]Row, 0, len(in.Rows))
	for i, raw := range in.Rows {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 {
			continue
		}
		switch raw[0] {
		case '[':
			var r Row
			if err := json.Unmarshal(raw, &r); err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
			rows = append(rows, r)
		case '{':
			var m map[string]Cell
			if err := json.Unmarshal(raw, &m); err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
			r := make(Row, len(in.Headers))
			for j, h := range in.Headers {
				r[j] = m[h]
			}
			rows = append(rows, r)
		default:
			return fmt.Errorf("row %d: expected array or object", i)
		}
	}
	*t = NewRawTable(in.Headers, rows)
	return nil
}

// RecordsToTable 将对象数组（原始导出的 records 形式）转为表格
// 未给出表头时按字典序收集所有键
func RecordsToTable(headers []string, records []map[string]Cell) RawTable {
	if len(headers) == 0 {
		seen := make(map[string]bool)
		for _, rec := range records {
			for k := range rec {
				if !seen[k] {
					seen[k] = true
					headers = append(headers, k)
				}
			}
		}
		sort.Strings(headers)
	}
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		r := make(Row, len(headers))
		for i, h := range headers {
			r[i] = rec[h]
		}
		rows = append(rows, r)
	}
	return NewRawTable(headers, rows)
}
