package calculator

import (
	"fmt"

	"finsight/internal/model"
)

// 比率说明文案
const (
	NoteMarginCategoryProxy = "direct costs approximated by the sum of actual amounts in budget_variance categories"
	NoteMarginExpenses      = "approximated from total expenses; no cost/expense distinction available"
	NoteMarginPending       = "category cost data (budget_variance) is required"
	NoteROI                 = "net profit relative to expenses; no investment base available"
	NoteROIUnavailable      = "requires net profit and positive expenses"
	NoteLiquidityNoMonths   = "requires monthly_summary with per-month expenses"
	NoteLiquidityNoCash     = "requires cash position or net profit and positive average monthly expenses"
	NoteAssetTurnover       = "requires balance-sheet (asset) data, which no source provides"
)

// DeriveRatios 由核心指标及预算/月度明细推导四项比率
// 分母必须为正的有限数，否则走数据不足分支；结果不会出现 NaN/Inf
func DeriveRatios(ind model.Indicators, budget model.Result[model.BudgetVariance], monthly model.Result[model.MonthlySummary]) model.Ratios {
	return model.Ratios{
		GrossMargin:    grossMargin(ind, budget),
		ROI:            roi(ind),
		LiquidityRatio: liquidity(ind, monthly),
		AssetTurnover:  model.Unavailable(NoteAssetTurnover),
	}
}

func grossMargin(ind model.Indicators, budget model.Result[model.BudgetVariance]) model.Indicator {
	revenue, ok := positive(ind.Revenue)
	if !ok {
		return model.Pending(NoteMarginPending)
	}

	if proxy, ok := categoryActuals(budget); ok {
		return model.Estimated((revenue-proxy)/revenue, NoteMarginCategoryProxy)
	}

	if expenses, ok := positive(ind.Expenses); ok {
		return model.Estimated((revenue-expenses)/revenue, NoteMarginExpenses)
	}
	return model.Pending(NoteMarginPending)
}

// categoryActuals 汇总各类别实际发生额；没有任何有限值时返回 false
func categoryActuals(budget model.Result[model.BudgetVariance]) (float64, bool) {
	bv, ok := budget.Get()
	if !ok || len(bv.ByCategory) == 0 {
		return 0, false
	}
	sum, found := 0.0, false
	for _, c := range bv.ByCategory {
		if v, ok := model.FiniteValue(c.Actual); ok {
			sum += v
			found = true
		}
	}
	return sum, found
}

func roi(ind model.Indicators) model.Indicator {
	netProfit, ok := ind.NetProfit.Float()
	if !ok {
		return model.Unavailable(NoteROIUnavailable)
	}
	expenses, ok := positive(ind.Expenses)
	if !ok {
		return model.Unavailable(NoteROIUnavailable)
	}
	return model.Estimated(netProfit/expenses, NoteROI)
}

func liquidity(ind model.Indicators, monthly model.Result[model.MonthlySummary]) model.Indicator {
	avg, ok := averageMonthlyExpenses(monthly)
	if !ok {
		return model.Unavailable(NoteLiquidityNoMonths)
	}

	cash, ok := ind.CashPosition.Float()
	if !ok {
		cash, ok = ind.NetProfit.Float()
	}
	if !ok || avg <= 0 {
		return model.Unavailable(NoteLiquidityNoCash)
	}

	months := cash / avg
	return model.Estimated(months, fmt.Sprintf("≈ %.1f months of runway at average monthly expenses", months))
}

// averageMonthlyExpenses 各月 expenses 的算术平均（跳过缺失值）
func averageMonthlyExpenses(monthly model.Result[model.MonthlySummary]) (float64, bool) {
	ms, ok := monthly.Get()
	if !ok {
		return 0, false
	}
	sum, n := 0.0, 0
	for _, m := range ms.Months {
		if v, ok := model.FiniteValue(m.Expenses); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	avg := sum / float64(n)
	return avg, model.IsFinite(avg)
}

// positive 指标已解析且为正数
func positive(ind model.Indicator) (float64, bool) {
	v, ok := ind.Float()
	if !ok || !model.IsFinite(v) || v <= 0 {
		return 0, false
	}
	return v, true
}
