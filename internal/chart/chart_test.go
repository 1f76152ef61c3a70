package chart

import (
	"math"
	"reflect"
	"testing"

	"finsight/internal/model"
)

func TestRevenueSeries_FiltersInvalidMonths(t *testing.T) {
	t.Parallel()

	monthly := model.OK(model.MonthlySummary{
		Months: []model.MonthEntry{
			{Month: "2024-01", Income: model.Num(100)},
			{Month: "2024-02", Income: model.Num(-50)},
			{Month: "2024-03", Income: nil},
			{Month: "2024-04", Income: model.Num(math.NaN())},
			{Month: "2024-05", Income: model.Num(0)},
			{Month: "2024-06", Income: model.Num(250)},
		},
	})

	got := RevenueSeries(monthly)
	if got.Status != model.StatusCalculated {
		t.Fatalf("status want=calculated got=%s", got.Status)
	}
	wantLabels := []string{"2024-01", "2024-05", "2024-06"}
	wantValues := []float64{100, 0, 250}
	if !reflect.DeepEqual(got.Labels, wantLabels) || !reflect.DeepEqual(got.Values, wantValues) {
		t.Fatalf("want %v/%v got %v/%v", wantLabels, wantValues, got.Labels, got.Values)
	}
}

func TestProjections_MissingOrFailedSource(t *testing.T) {
	t.Parallel()

	series := []model.ChartSeries{
		RevenueSeries(model.Absent[model.MonthlySummary]()),
		RevenueSeries(model.Failed[model.MonthlySummary]("boom")),
		ExpenseBreakdown(model.Absent[model.BudgetVariance]()),
		ExpenseBreakdown(model.Failed[model.BudgetVariance]("boom")),
		CashFlowBuckets(model.Absent[model.CashFlow]()),
		CashFlowBuckets(model.Failed[model.CashFlow]("boom")),
	}
	for i, s := range series {
		if s.Status != model.StatusUnavailable {
			t.Fatalf("case %d: status want=unavailable got=%s", i, s.Status)
		}
		if s.Labels == nil || s.Values == nil || s.Len() != 0 {
			t.Fatalf("case %d: want empty non-nil slices, got %+v", i, s)
		}
	}
}

func TestExpenseBreakdown(t *testing.T) {
	t.Parallel()

	budget := model.OK(model.BudgetVariance{
		ByCategory: []model.CategoryVariance{
			{Category: "Marketing", Actual: model.Num(2500)},
			{Category: "Refund", Actual: model.Num(-10)},
			{Category: "Rent", Actual: model.Num(1200)},
			{Category: "Misc", Actual: nil},
		},
	})
	got := ExpenseBreakdown(budget)
	if !reflect.DeepEqual(got.Labels, []string{"Marketing", "Rent"}) {
		t.Fatalf("labels: %v", got.Labels)
	}
	if !reflect.DeepEqual(got.Values, []float64{2500, 1200}) {
		t.Fatalf("values: %v", got.Values)
	}
}

func TestCashFlowBuckets(t *testing.T) {
	t.Parallel()

	cash := model.OK(model.CashFlow{
		Periods: []model.CashFlowPeriod{
			{Date: "2024-01", Inflow: model.Num(100), Outflow: model.Num(40)},
			{Date: "2024-02", Inflow: nil, Outflow: model.Num(10)},
			{Date: "2024-03", Inflow: model.Num(50), Outflow: model.Num(math.NaN())},
		},
	})
	got := CashFlowBuckets(cash)
	if !reflect.DeepEqual(got.Labels, []string{LabelInflows, LabelOutflows}) {
		t.Fatalf("labels: %v", got.Labels)
	}
	if !reflect.DeepEqual(got.Values, []float64{150, 50}) {
		t.Fatalf("values: %v", got.Values)
	}
	if got.Status != model.StatusCalculated {
		t.Fatalf("status: %s", got.Status)
	}
}
