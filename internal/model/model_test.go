package model

import (
	"encoding/json"
	"testing"
)

func TestResult_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		wantState ResultState
		wantMsg   string
	}{
		{"null", `null`, StateAbsent, ""},
		{"error string", `{"error":"division by zero"}`, StateFailed, "division by zero"},
		{"null error with payload", `{"error":null,"total_income":10}`, StateOK, ""},
		{"object error", `{"error":{"code":500}}`, StateFailed, `{"code":500}`},
		{"number error", `{"error":42}`, StateFailed, "42"},
		{"payload", `{"total_income":1,"total_expenses":2,"net_result":-1}`, StateOK, ""},
	}

	for _, tt := range tests {
		var r Result[YearlySummary]
		if err := json.Unmarshal([]byte(tt.input), &r); err != nil {
			t.Fatalf("%s: unmarshal: %v", tt.name, err)
		}
		if r.State != tt.wantState {
			t.Fatalf("%s: state want=%s got=%s", tt.name, tt.wantState, r.State)
		}
		if r.Message != tt.wantMsg {
			t.Fatalf("%s: message want=%q got=%q", tt.name, tt.wantMsg, r.Message)
		}
	}
}

func TestResult_NullErrorKeepsPayload(t *testing.T) {
	t.Parallel()

	var r Result[YearlySummary]
	if err := json.Unmarshal([]byte(`{"error":null,"total_income":10}`), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	y, ok := r.Get()
	if !ok || y.TotalIncome == nil || *y.TotalIncome != 10 {
		t.Fatalf("payload not decoded: %+v", r)
	}
}

func TestAnalysisBundle_MissingKeysAreAbsent(t *testing.T) {
	t.Parallel()

	var b AnalysisBundle
	input := `{"yearly_summary":null,"cash_flow":{"error":"no periods"}}`
	if err := json.Unmarshal([]byte(input), &b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := map[AnalysisKind]ResultState{
		KindYearlySummary:  StateAbsent,
		KindMonthlySummary: StateAbsent,
		KindCashFlow:       StateFailed,
		KindBudgetVariance: StateAbsent,
	}
	for kind, state := range want {
		if got := b.State(kind); got != state {
			t.Fatalf("%s: state want=%s got=%s", kind, state, got)
		}
	}
	if b.ErrorMessage(KindCashFlow) != "no periods" {
		t.Fatalf("error message: %q", b.ErrorMessage(KindCashFlow))
	}
}

func TestResult_MarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		r    Result[MonthlyTotals]
		want string
	}{
		{"absent", Absent[MonthlyTotals](), `null`},
		{"failed", Failed[MonthlyTotals]("boom"), `{"error":"boom"}`},
		{"ok", OK(MonthlyTotals{Income: Num(5)}), `{"income":5,"expenses":null,"net":null}`},
	}

	for _, tt := range tests {
		data, err := json.Marshal(tt.r)
		if err != nil {
			t.Fatalf("%s: marshal: %v", tt.name, err)
		}
		if string(data) != tt.want {
			t.Fatalf("%s: want=%s got=%s", tt.name, tt.want, data)
		}
	}

	// 失败结果往返后保持失败
	data, _ := json.Marshal(Failed[MonthlyTotals]("boom"))
	var back Result[MonthlyTotals]
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.State != StateFailed || back.Message != "boom" {
		t.Fatalf("round trip: %+v", back)
	}
}

func TestCell_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		wantRaw string
		wantNum bool
		empty   bool
	}{
		{`null`, "", false, true},
		{`""`, "", false, true},
		{`true`, "true", false, false},
		{`false`, "false", false, false},
		{`12.5`, "12.5", true, false},
		{`-3`, "-3", true, false},
		{`"1.200,50"`, "1.200,50", false, false},
	}

	for _, tt := range tests {
		var c Cell
		if err := json.Unmarshal([]byte(tt.input), &c); err != nil {
			t.Fatalf("%s: unmarshal: %v", tt.input, err)
		}
		if c.Raw != tt.wantRaw || c.IsNum != tt.wantNum || c.IsEmpty() != tt.empty {
			t.Fatalf("%s: got %+v empty=%v", tt.input, c, c.IsEmpty())
		}
	}

	var c Cell
	if err := json.Unmarshal([]byte(`[1]`), &c); err == nil {
		t.Fatalf("array cell must be rejected")
	}
}

func TestCell_MarshalJSON(t *testing.T) {
	t.Parallel()

	row := Row{NumberCell(12.5), TextCell(""), TextCell("abc"), {}}
	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `[12.5,null,"abc",null]` {
		t.Fatalf("got %s", data)
	}
}

func TestRawTable_DuplicateHeaders(t *testing.T) {
	t.Parallel()

	table := NewRawTable([]string{"Importe", "Importe", "Fecha"}, []Row{
		{NumberCell(1), NumberCell(2), TextCell("2024-01-01")},
	})
	if table.ColumnIndex("Importe") != 0 {
		t.Fatalf("first header must win, got %d", table.ColumnIndex("Importe"))
	}

	data, err := json.Marshal(table)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"headers":["Importe","Importe","Fecha"],"rows":[{"Fecha":"2024-01-01","Importe":1}]}`
	if string(data) != want {
		t.Fatalf("want=%s got=%s", want, data)
	}

	// 对象行按表头名取值，重复表头取同一个值
	var back RawTable
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	row := back.Row(0)
	if len(row) != 3 || row[0].Num != 1 || row[1].Num != 1 || row[2].Raw != "2024-01-01" {
		t.Fatalf("unexpected row: %+v", row)
	}
}

func TestRawTable_RowWidthFollowsHeaders(t *testing.T) {
	t.Parallel()

	var table RawTable
	input := `{"headers":["a","b"],"rows":[["x"],["x","y","z"],{"b":2,"c":3}]}`
	if err := json.Unmarshal([]byte(input), &table); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if table.Len() != 3 {
		t.Fatalf("rows want=3 got=%d", table.Len())
	}
	for i, r := range table.Rows() {
		if len(r) != 2 {
			t.Fatalf("row %d width want=2 got=%d", i, len(r))
		}
	}
	if !table.Row(0)[1].IsEmpty() {
		t.Fatalf("short row must be padded with empty cells")
	}
	if table.Row(1)[1].Raw != "y" {
		t.Fatalf("long row must be truncated, got %+v", table.Row(1))
	}
	if !table.Row(2)[0].IsEmpty() || table.Row(2)[1].Num != 2 {
		t.Fatalf("object row must map by header: %+v", table.Row(2))
	}

	if err := json.Unmarshal([]byte(`{"headers":["a"],"rows":[5]}`), &table); err == nil {
		t.Fatalf("scalar row must be rejected")
	}
}

func TestRawTable_CopiesInput(t *testing.T) {
	t.Parallel()

	headers := []string{"a"}
	rows := []Row{{TextCell("x")}}
	table := NewRawTable(headers, rows)

	headers[0] = "changed"
	rows[0][0] = TextCell("changed")
	table.Row(0)[0] = TextCell("changed")

	if table.Headers()[0] != "a" || table.Row(0)[0].Raw != "x" {
		t.Fatalf("table must not share memory with callers")
	}
	if len(table.Sample(10)) != 1 || len(table.Sample(-1)) != 0 {
		t.Fatalf("sample bounds not clamped")
	}
}

func TestRecordsToTable(t *testing.T) {
	t.Parallel()

	records := []map[string]Cell{
		{"Importe": NumberCell(10), "Fecha": TextCell("2024-01-01")},
		{"Concepto": TextCell("Pago")},
	}

	table := RecordsToTable(nil, records)
	headers := table.Headers()
	if len(headers) != 3 || headers[0] != "Concepto" || headers[1] != "Fecha" || headers[2] != "Importe" {
		t.Fatalf("headers must be sorted union of keys: %v", headers)
	}
	if table.Row(0)[2].Num != 10 || !table.Row(1)[2].IsEmpty() {
		t.Fatalf("unexpected rows: %+v", table.Rows())
	}

	explicit := RecordsToTable([]string{"Importe"}, records)
	if len(explicit.Headers()) != 1 || explicit.Len() != 2 {
		t.Fatalf("explicit headers must be kept: %v", explicit.Headers())
	}
}
