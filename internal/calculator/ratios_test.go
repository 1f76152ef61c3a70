package calculator

import (
	"math"
	"strings"
	"testing"

	"finsight/internal/model"
)

func indicators(revenue, expenses, net, cash model.Indicator) model.Indicators {
	return model.Indicators{Revenue: revenue, Expenses: expenses, NetProfit: net, CashPosition: cash}
}

func budgetWith(actuals ...*float64) model.Result[model.BudgetVariance] {
	bv := model.BudgetVariance{}
	for i, a := range actuals {
		bv.ByCategory = append(bv.ByCategory, model.CategoryVariance{
			Category: string(rune('A' + i)),
			Actual:   a,
		})
	}
	return model.OK(bv)
}

func monthsWithExpenses(expenses ...*float64) model.Result[model.MonthlySummary] {
	ms := model.MonthlySummary{}
	for i, e := range expenses {
		ms.Months = append(ms.Months, model.MonthEntry{Month: string(rune('a' + i)), Expenses: e})
	}
	return model.OK(ms)
}

func TestDeriveRatios_GrossMargin(t *testing.T) {
	t.Parallel()

	none := model.Unavailable("")

	tests := []struct {
		name   string
		ind    model.Indicators
		budget model.Result[model.BudgetVariance]
		want   *float64
		status model.Status
		note   string
	}{
		{
			name:   "类别实际额代理",
			ind:    indicators(model.Calculated(1000), model.Calculated(900), none, none),
			budget: budgetWith(model.Num(200), model.Num(100), nil),
			want:   model.Num(0.7),
			status: model.StatusEstimated,
			note:   NoteMarginCategoryProxy,
		},
		{
			name:   "总费用近似",
			ind:    indicators(model.Calculated(1000), model.Calculated(750), none, none),
			budget: model.Failed[model.BudgetVariance]("boom"),
			want:   model.Num(0.25),
			status: model.StatusEstimated,
			note:   NoteMarginExpenses,
		},
		{
			name:   "收入为零",
			ind:    indicators(model.Calculated(0), model.Calculated(750), none, none),
			budget: budgetWith(model.Num(10)),
			status: model.StatusPending,
			note:   NoteMarginPending,
		},
		{
			name:   "无费用无类别",
			ind:    indicators(model.Calculated(1000), none, none, none),
			budget: model.Absent[model.BudgetVariance](),
			status: model.StatusPending,
			note:   NoteMarginPending,
		},
		{
			name:   "类别实际额全为空",
			ind:    indicators(model.Calculated(1000), model.Calculated(400), none, none),
			budget: budgetWith(nil, model.Num(math.NaN())),
			want:   model.Num(0.6),
			status: model.StatusEstimated,
			note:   NoteMarginExpenses,
		},
	}

	for _, tt := range tests {
		got := DeriveRatios(tt.ind, tt.budget, model.Absent[model.MonthlySummary]()).GrossMargin
		assertIndicator(t, tt.name, got, tt.want, tt.status)
		if got.Note != tt.note {
			t.Fatalf("%s: note want=%q got=%q", tt.name, tt.note, got.Note)
		}
	}
}

func TestDeriveRatios_ROI(t *testing.T) {
	t.Parallel()

	none := model.Unavailable("")

	got := DeriveRatios(indicators(none, model.Calculated(500), model.Estimated(300, ""), none),
		model.Absent[model.BudgetVariance](), model.Absent[model.MonthlySummary]()).ROI
	assertIndicator(t, "roi", got, model.Num(0.6), model.StatusEstimated)

	for _, exp := range []model.Indicator{none, model.Calculated(0), model.Calculated(-10)} {
		got := DeriveRatios(indicators(none, exp, model.Calculated(300), none),
			model.Absent[model.BudgetVariance](), model.Absent[model.MonthlySummary]()).ROI
		assertIndicator(t, "roi insufficient", got, nil, model.StatusUnavailable)
	}
}

func TestDeriveRatios_Liquidity(t *testing.T) {
	t.Parallel()

	none := model.Unavailable("")
	months := monthsWithExpenses(model.Num(100), model.Num(300), nil)

	cash := DeriveRatios(indicators(none, none, model.Calculated(50), model.Calculated(1000)),
		model.Absent[model.BudgetVariance](), months).LiquidityRatio
	assertIndicator(t, "cash/avg", cash, model.Num(5), model.StatusEstimated)
	if !strings.Contains(cash.Note, "months of runway") {
		t.Fatalf("note must be expressed in months of runway: %q", cash.Note)
	}

	fallback := DeriveRatios(indicators(none, none, model.Calculated(400), none),
		model.Absent[model.BudgetVariance](), months).LiquidityRatio
	assertIndicator(t, "netProfit/avg", fallback, model.Num(2), model.StatusEstimated)

	noMonthly := DeriveRatios(indicators(none, none, model.Calculated(400), model.Calculated(1)),
		model.Absent[model.BudgetVariance](), model.Failed[model.MonthlySummary]("x")).LiquidityRatio
	assertIndicator(t, "no monthly", noMonthly, nil, model.StatusUnavailable)

	zeroAvg := DeriveRatios(indicators(none, none, model.Calculated(400), none),
		model.Absent[model.BudgetVariance](), monthsWithExpenses(model.Num(0), model.Num(0))).LiquidityRatio
	assertIndicator(t, "zero average", zeroAvg, nil, model.StatusUnavailable)
}

func TestDeriveRatios_AssetTurnoverAlwaysUnavailable(t *testing.T) {
	t.Parallel()

	full := indicators(model.Calculated(1), model.Calculated(1), model.Calculated(1), model.Calculated(1))
	inputs := []model.Indicators{{}, full}
	budgets := []model.Result[model.BudgetVariance]{
		model.Absent[model.BudgetVariance](),
		model.Failed[model.BudgetVariance]("x"),
		budgetWith(model.Num(1)),
	}
	monthlies := []model.Result[model.MonthlySummary]{
		model.Absent[model.MonthlySummary](),
		monthsWithExpenses(model.Num(1)),
	}

	for _, ind := range inputs {
		for _, b := range budgets {
			for _, m := range monthlies {
				got := DeriveRatios(ind, b, m).AssetTurnover
				if got.Value != nil || got.Status != model.StatusUnavailable || got.Note != NoteAssetTurnover {
					t.Fatalf("asset turnover must stay unavailable: %+v", got)
				}
			}
		}
	}
}

func TestDeriveRatios_NeverNonFinite(t *testing.T) {
	t.Parallel()

	huge := model.Calculated(math.MaxFloat64)
	tiny := model.Calculated(math.SmallestNonzeroFloat64)
	ind := indicators(tiny, tiny, huge, huge)

	r := DeriveRatios(ind, budgetWith(model.Num(-math.MaxFloat64)), monthsWithExpenses(model.Num(math.SmallestNonzeroFloat64)))
	for name, v := range map[string]model.Indicator{
		"grossMargin":    r.GrossMargin,
		"roi":            r.ROI,
		"liquidityRatio": r.LiquidityRatio,
		"assetTurnover":  r.AssetTurnover,
	} {
		if f, ok := v.Float(); ok && !model.IsFinite(f) {
			t.Fatalf("%s produced non-finite value %v", name, f)
		}
		if v.Status == model.StatusUnavailable && v.Value != nil {
			t.Fatalf("%s unavailable with value", name)
		}
	}
}
