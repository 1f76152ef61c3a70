package parser

import (
	"reflect"
	"strings"
	"testing"

	"finsight/internal/model"
)

func textRow(values ...string) model.Row {
	r := make(model.Row, len(values))
	for i, v := range values {
		r[i] = model.TextCell(v)
	}
	return r
}

func hasWarning(a model.ShapeAssessment, substr string) bool {
	for _, w := range a.Warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

func TestClassify_Transactional(t *testing.T) {
	t.Parallel()

	res := Classify(
		[]string{"Fecha", "Concepto", "Importe"},
		[]model.Row{textRow("2024-01-15", "Venta", "1.234,56")},
	)

	// 30 + 20 + 15，首行只有一个数值单元格
	if res.Confidence != 65 {
		t.Fatalf("confidence want=65 got=%d", res.Confidence)
	}
	if !res.IsFinancial {
		t.Fatalf("expected financial")
	}
	if res.DetectedShape != model.ShapeTransactional {
		t.Fatalf("shape want=transactional got=%s", res.DetectedShape)
	}
	if len(res.Warnings) != 1 || !hasWarning(res, "No numeric content") {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
	if len(res.Suggestions) != 0 {
		t.Fatalf("unexpected suggestions: %+v", res.Suggestions)
	}
}

func TestClassify_WideYearsWithoutAmount(t *testing.T) {
	t.Parallel()

	headers := []string{"Concepto", "a2022", "a2023", "a2024"}
	res := Classify(headers, []model.Row{textRow("Ventas", "1000", "1.200", "1500")})

	if res.DetectedShape != model.ShapeWide {
		t.Fatalf("shape want=wide got=%s", res.DetectedShape)
	}
	// 15 + 25 + 10
	if res.Confidence != 50 {
		t.Fatalf("confidence want=50 got=%d", res.Confidence)
	}

	s, ok := res.Suggestion(model.SuggestUnpivotYears)
	if !ok {
		t.Fatalf("missing unpivot suggestion: %+v", res.Suggestions)
	}
	years, _ := s.Metadata["yearColumns"].([]string)
	if !reflect.DeepEqual(years, []string{"a2022", "a2023", "a2024"}) {
		t.Fatalf("year columns mismatch: %v", years)
	}
}

func TestClassify_WideWinsOverTransactional(t *testing.T) {
	t.Parallel()

	res := Classify(
		[]string{"date", "amount", "category", "2022", "2023"},
		[]model.Row{textRow("2024-01-01", "10", "rent", "5", "6")},
	)
	if res.DetectedShape != model.ShapeWide {
		t.Fatalf("shape want=wide got=%s", res.DetectedShape)
	}
	if res.Confidence != MaxConfidence {
		t.Fatalf("confidence want=%d got=%d", MaxConfidence, res.Confidence)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
}

func TestClassify_SingleYearColumnIsNotWide(t *testing.T) {
	t.Parallel()

	res := Classify([]string{"Concepto", "2024"}, nil)
	if res.DetectedShape == model.ShapeWide {
		t.Fatalf("one year column must not be wide")
	}
	if res.HasSuggestion(model.SuggestUnpivotYears) {
		t.Fatalf("unexpected unpivot suggestion")
	}
}

func TestClassify_EmptyHeaders(t *testing.T) {
	t.Parallel()

	res := Classify(nil, []model.Row{textRow("1", "2", "3")})
	if res.Confidence != 0 {
		t.Fatalf("confidence want=0 got=%d", res.Confidence)
	}
	if res.DetectedShape != model.ShapeUnknown {
		t.Fatalf("shape want=unknown got=%s", res.DetectedShape)
	}
	if res.IsFinancial {
		t.Fatalf("expected not financial")
	}
	if len(res.Warnings) != 2 {
		t.Fatalf("want both warnings, got %v", res.Warnings)
	}
}

func TestClassify_NoSignals(t *testing.T) {
	t.Parallel()

	res := Classify([]string{"foo", "bar"}, []model.Row{textRow("x", "y")})
	if res.Confidence != 0 || res.IsFinancial {
		t.Fatalf("want confidence 0 and not financial, got %d %v", res.Confidence, res.IsFinancial)
	}
	if !hasWarning(res, "does not look like a financial export") || !hasWarning(res, "No numeric content") {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
}

func TestClassify_DebitCreditSuggestion(t *testing.T) {
	t.Parallel()

	res := Classify(
		[]string{"Fecha", "Descripción", "Debe", "Haber"},
		[]model.Row{textRow("2024-01-01", "Pago", "100", "0")},
	)

	// 日期 20 + 类别 15 + 数值 10，无金额列
	if res.Confidence != 45 {
		t.Fatalf("confidence want=45 got=%d", res.Confidence)
	}
	if res.DetectedShape != model.ShapeUnknown {
		t.Fatalf("shape want=unknown got=%s", res.DetectedShape)
	}
	s, ok := res.Suggestion(model.SuggestDeriveAmount)
	if !ok {
		t.Fatalf("missing derive suggestion: %+v", res.Suggestions)
	}
	if s.Metadata["debitColumn"] != "Debe" || s.Metadata["creditColumn"] != "Haber" {
		t.Fatalf("unexpected metadata: %v", s.Metadata)
	}
}

func TestClassify_DebitCreditWithAmountHasNoDeriveSuggestion(t *testing.T) {
	t.Parallel()

	res := Classify([]string{"date", "debit", "credit", "amount"}, nil)
	if res.HasSuggestion(model.SuggestDeriveAmount) {
		t.Fatalf("direct amount column present, derive suggestion not expected")
	}
}

func TestClassify_RunningBalanceKeepsDeriveSuggestion(t *testing.T) {
	t.Parallel()

	// 余额列不是金额列
	res := Classify(
		[]string{"Fecha", "Concepto", "Debe", "Haber", "Saldo total"},
		[]model.Row{textRow("2024-01-01", "Pago", "100", "0", "900")},
	)
	if res.Confidence != 45 {
		t.Fatalf("confidence want=45 got=%d", res.Confidence)
	}
	s, ok := res.Suggestion(model.SuggestDeriveAmount)
	if !ok {
		t.Fatalf("missing derive suggestion: %+v", res.Suggestions)
	}
	if s.Metadata["debitColumn"] != "Debe" || s.Metadata["creditColumn"] != "Haber" {
		t.Fatalf("unexpected metadata: %v", s.Metadata)
	}
}

func TestClassify_LookalikeHeadersAreNotFinancial(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headers []string
		row     model.Row
	}{
		{"update date", []string{"Fecha actualización", "Usuario"}, textRow("2024-01-01", "ana")},
		{"counters", []string{"Periodicidad", "Totalizador"}, textRow("mensual", "12")},
	}

	for _, tt := range tests {
		res := Classify(tt.headers, []model.Row{tt.row})
		if res.IsFinancial {
			t.Fatalf("%s: unexpected financial, confidence=%d", tt.name, res.Confidence)
		}
		if res.DetectedShape == model.ShapeTransactional {
			t.Fatalf("%s: unexpected transactional shape", tt.name)
		}
	}
}

func TestClassify_Budget(t *testing.T) {
	t.Parallel()

	res := Classify(
		[]string{"Categoría", "Presupuesto", "Real"},
		[]model.Row{textRow("Marketing", "2000", "2500")},
	)
	if res.DetectedShape != model.ShapeBudget {
		t.Fatalf("shape want=budget got=%s", res.DetectedShape)
	}
	if res.Confidence != 55 {
		t.Fatalf("confidence want=55 got=%d", res.Confidence)
	}
	s, ok := res.Suggestion(model.SuggestCompareBudgetActual)
	if !ok {
		t.Fatalf("missing budget comparison suggestion")
	}
	if s.Metadata["budgetColumn"] != "Presupuesto" || s.Metadata["actualColumn"] != "Real" {
		t.Fatalf("unexpected metadata: %v", s.Metadata)
	}
}

func TestClassify_AmbiguousHeaderCountsOncePerCategory(t *testing.T) {
	t.Parallel()

	// "Fecha valor" 同时命中日期和金额
	single := Classify([]string{"Fecha valor"}, nil)
	if single.Confidence != WeightDate+WeightAmount {
		t.Fatalf("confidence want=%d got=%d", WeightDate+WeightAmount, single.Confidence)
	}

	// 同一类别重复命中不累加
	repeated := Classify([]string{"Fecha valor", "Importe", "Fecha"}, nil)
	if repeated.Confidence != single.Confidence {
		t.Fatalf("repeated matches must not add up: %d vs %d", repeated.Confidence, single.Confidence)
	}
}

func TestClassify_NumericCellsOutsideHeadersIgnored(t *testing.T) {
	t.Parallel()

	res := Classify([]string{"note"}, []model.Row{textRow("x", "1", "2")})
	if hasNumericContent([]string{"note"}, []model.Row{textRow("x", "1", "2")}) {
		t.Fatalf("cells beyond header width must be ignored")
	}
	if res.Confidence != 0 {
		t.Fatalf("confidence want=0 got=%d", res.Confidence)
	}
}

func TestClassify_NativeNumbers(t *testing.T) {
	t.Parallel()

	row := model.Row{model.TextCell("2024-03"), model.NumberCell(10), model.NumberCell(-4)}
	res := Classify([]string{"month", "income", "expenses"}, []model.Row{row})
	if !hasNumericContent([]string{"month", "income", "expenses"}, []model.Row{row}) {
		t.Fatalf("native numbers must count as numeric content")
	}
	if hasWarning(res, "No numeric content") {
		t.Fatalf("unexpected numeric warning: %v", res.Warnings)
	}
}

func TestClassify_DeterministicAndBounded(t *testing.T) {
	t.Parallel()

	cases := []struct {
		headers []string
		rows    []model.Row
	}{
		{nil, nil},
		{[]string{"Fecha", "Importe", "Categoria", "a2020", "a2021", "a2022"}, []model.Row{textRow("2020-01-01", "5", "x", "1", "2", "3")}},
		{[]string{"  AMOUNT  ", "amount", "Amount\n"}, []model.Row{textRow("1", "2", "3")}},
		{[]string{"debe", "haber"}, []model.Row{textRow("(12,00)", "€ 3")}},
	}

	for i, tc := range cases {
		a := Classify(tc.headers, tc.rows)
		b := Classify(tc.headers, tc.rows)
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("case %d not deterministic:\n%+v\n%+v", i, a, b)
		}
		if a.Confidence < 0 || a.Confidence > MaxConfidence {
			t.Fatalf("case %d confidence out of range: %d", i, a.Confidence)
		}
		if a.IsFinancial != (a.Confidence >= FinancialThreshold) {
			t.Fatalf("case %d isFinancial inconsistent with confidence %d", i, a.Confidence)
		}
	}
}

func TestClassifyTable_UsesSample(t *testing.T) {
	t.Parallel()

	table := model.NewRawTable(
		[]string{"date", "amount", "category"},
		[]model.Row{
			textRow("2024-01-01", "12.5", "7"),
			textRow("2024-01-02", "x", "y"),
		},
	)
	res := NewShapeClassifier(nil).ClassifyTable(table, 0)
	if res.Confidence != 75 {
		t.Fatalf("confidence want=75 got=%d", res.Confidence)
	}
	if res.DetectedShape != model.ShapeTransactional {
		t.Fatalf("shape want=transactional got=%s", res.DetectedShape)
	}
}

func TestScore_Capped(t *testing.T) {
	t.Parallel()

	if got := Score(true, true, true, true, true); got != MaxConfidence {
		t.Fatalf("want %d got %d", MaxConfidence, got)
	}
	if got := Score(false, false, false, false, false); got != 0 {
		t.Fatalf("want 0 got %d", got)
	}
}
