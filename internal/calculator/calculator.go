package calculator

import (
	"fmt"
	"strings"

	"finsight/internal/model"
)

// 指标说明文案（展示层直接使用）
const (
	NoteNetFromRevenueExpenses = "estimated as revenue - expenses"
	NoteCashFromNetProfit      = "approximated from net profit (no cash-flow balance available)"
)

// candidate 回退链中的一个候选来源
type candidate struct {
	source model.AnalysisKind
	field  string
	ok     bool     // 来源存在且未携带错误标记
	value  *float64 // 来源中的取值，可能为 nil
}

// pick 按顺序返回第一个可用候选（来源 ok 且取值为有限数）
func pick(chain []candidate) (float64, candidate, bool) {
	for _, c := range chain {
		if !c.ok {
			continue
		}
		if v, ok := model.FiniteValue(c.value); ok {
			return v, c, true
		}
	}
	return 0, candidate{}, false
}

// describe 用于 unavailable 时说明尝试过的来源
func describe(chain []candidate) string {
	parts := make([]string, 0, len(chain))
	for _, c := range chain {
		parts = append(parts, fmt.Sprintf("%s.%s", c.source, c.field))
	}
	return "no usable value in " + strings.Join(parts, ", ")
}

// resolveChain 回退链求值；命中即 calculated
func resolveChain(chain []candidate) model.Indicator {
	v, c, ok := pick(chain)
	if !ok {
		return model.Unavailable(describe(chain))
	}
	ind := model.Calculated(v)
	ind.Note = fmt.Sprintf("from %s.%s", c.source, c.field)
	return ind
}

// ResolveIndicators 根据任意子集的上游分析结果求四项核心指标
// 月度优先于年度（支持时间序列）；交叉推导一律标记为 estimated
func ResolveIndicators(b model.AnalysisBundle) model.Indicators {
	monthly, monthlyOK := b.Monthly.Get()
	yearly, yearlyOK := b.Yearly.Get()
	cash, cashOK := b.CashFlow.Get()

	revenue := resolveChain([]candidate{
		{source: model.KindMonthlySummary, field: "totals.income", ok: monthlyOK, value: monthly.Totals.Income},
		{source: model.KindYearlySummary, field: "total_income", ok: yearlyOK, value: yearly.TotalIncome},
	})

	expenses := resolveChain([]candidate{
		{source: model.KindMonthlySummary, field: "totals.expenses", ok: monthlyOK, value: monthly.Totals.Expenses},
		{source: model.KindYearlySummary, field: "total_expenses", ok: yearlyOK, value: yearly.TotalExpenses},
	})

	netChain := []candidate{
		{source: model.KindMonthlySummary, field: "totals.net", ok: monthlyOK, value: monthly.Totals.Net},
		{source: model.KindYearlySummary, field: "net_result", ok: yearlyOK, value: yearly.NetResult},
	}
	netProfit := resolveChain(netChain)
	if !netProfit.Resolved() {
		r, rOK := revenue.Float()
		e, eOK := expenses.Float()
		if rOK && eOK {
			netProfit = model.Estimated(r-e, NoteNetFromRevenueExpenses)
		} else {
			netProfit = model.Unavailable(describe(netChain) + "; revenue and expenses not both resolved")
		}
	}

	cashChain := []candidate{
		{source: model.KindCashFlow, field: "final_balance", ok: cashOK, value: cash.FinalBalance},
	}
	cashPosition := resolveChain(cashChain)
	if !cashPosition.Resolved() {
		if np, ok := netProfit.Float(); ok {
			cashPosition = model.Estimated(np, NoteCashFromNetProfit)
		} else {
			cashPosition = model.Unavailable(describe(cashChain) + "; net profit unavailable")
		}
	}

	return model.Indicators{
		Revenue:      revenue,
		Expenses:     expenses,
		NetProfit:    netProfit,
		CashPosition: cashPosition,
	}
}
