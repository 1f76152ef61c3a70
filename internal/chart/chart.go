// Package chart 将分析结果投影为前端图表序列
package chart

import (
	"finsight/internal/model"
)

// 现金流两桶标签
const (
	LabelInflows  = "Inflows"
	LabelOutflows = "Outflows"
)

// RevenueSeries 月度收入序列；过滤空值、NaN 与负数，保持原顺序
func RevenueSeries(monthly model.Result[model.MonthlySummary]) model.ChartSeries {
	ms, ok := monthly.Get()
	if !ok {
		return model.EmptySeries()
	}
	s := newSeries()
	for _, m := range ms.Months {
		if v, ok := nonNegative(m.Income); ok {
			s.Labels = append(s.Labels, m.Month)
			s.Values = append(s.Values, v)
		}
	}
	return s
}

// ExpenseBreakdown 按类别的实际支出
func ExpenseBreakdown(budget model.Result[model.BudgetVariance]) model.ChartSeries {
	bv, ok := budget.Get()
	if !ok {
		return model.EmptySeries()
	}
	s := newSeries()
	for _, c := range bv.ByCategory {
		if v, ok := nonNegative(c.Actual); ok {
			s.Labels = append(s.Labels, c.Category)
			s.Values = append(s.Values, v)
		}
	}
	return s
}

// CashFlowBuckets 全部周期的流入/流出合计
func CashFlowBuckets(cash model.Result[model.CashFlow]) model.ChartSeries {
	cf, ok := cash.Get()
	if !ok {
		return model.EmptySeries()
	}
	var in, out float64
	for _, p := range cf.Periods {
		if v, ok := model.FiniteValue(p.Inflow); ok {
			in += v
		}
		if v, ok := model.FiniteValue(p.Outflow); ok {
			out += v
		}
	}
	if !model.IsFinite(in) || !model.IsFinite(out) {
		return model.EmptySeries()
	}
	return model.ChartSeries{
		Labels: []string{LabelInflows, LabelOutflows},
		Values: []float64{in, out},
		Status: model.StatusCalculated,
	}
}

func newSeries() model.ChartSeries {
	return model.ChartSeries{
		Labels: []string{},
		Values: []float64{},
		Status: model.StatusCalculated,
	}
}

func nonNegative(p *float64) (float64, bool) {
	v, ok := model.FiniteValue(p)
	if !ok || v < 0 {
		return 0, false
	}
	return v, true
}
