// Package dashboard 汇总指标、比率与图表序列，供展示层直接渲染
package dashboard

import (
	"finsight/internal/calculator"
	"finsight/internal/chart"
	"finsight/internal/format"
	"finsight/internal/model"
)

// Card 单个指标卡片
type Card struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Unit    string       `json:"unit"`
	Value   *float64     `json:"value"`
	Status  model.Status `json:"status"`
	Note    string       `json:"note,omitempty"`
	Display string       `json:"display"`
}

// Group 卡片分组
type Group struct {
	Name  string `json:"name"`
	Cards []Card `json:"cards"`
}

// Charts 三个图表序列
type Charts struct {
	Revenue          model.ChartSeries `json:"revenue"`
	ExpenseBreakdown model.ChartSeries `json:"expenseBreakdown"`
	CashFlow         model.ChartSeries `json:"cashFlow"`
}

// Source 各上游分析的状态；Error 只用于展示
type Source struct {
	Kind  model.AnalysisKind `json:"kind"`
	State string             `json:"state"`
	Error string             `json:"error,omitempty"`
}

// Dashboard 完整看板
type Dashboard struct {
	Currency   string           `json:"currency"`
	Indicators model.Indicators `json:"indicators"`
	Ratios     model.Ratios     `json:"ratios"`
	Charts     Charts           `json:"charts"`
	Groups     []Group          `json:"groups"`
	Sources    []Source         `json:"sources"`
}

// Options 看板选项
type Options struct {
	Formatter *format.Formatter // nil 时使用 EUR/en
}

// Build 由分析快照生成看板；状态原样复制自指标，不在此重新判定
func Build(bundle model.AnalysisBundle, opts Options) Dashboard {
	f := opts.Formatter
	if f == nil {
		f, _ = format.New("EUR", "en")
	}

	ind := calculator.ResolveIndicators(bundle)
	ratios := calculator.DeriveRatios(ind, bundle.Budget, bundle.Monthly)

	return Dashboard{
		Currency:   f.Currency(),
		Indicators: ind,
		Ratios:     ratios,
		Charts: Charts{
			Revenue:          chart.RevenueSeries(bundle.Monthly),
			ExpenseBreakdown: chart.ExpenseBreakdown(bundle.Budget),
			CashFlow:         chart.CashFlowBuckets(bundle.CashFlow),
		},
		Groups: []Group{
			{
				Name: "Core indicators",
				Cards: []Card{
					card("revenue", "Revenue", f.Currency(), ind.Revenue, f, format.KindMoney),
					card("expenses", "Expenses", f.Currency(), ind.Expenses, f, format.KindMoney),
					card("netProfit", "Net profit", f.Currency(), ind.NetProfit, f, format.KindMoney),
					card("cashPosition", "Cash position", f.Currency(), ind.CashPosition, f, format.KindMoney),
				},
			},
			{
				Name: "Ratios",
				Cards: []Card{
					card("grossMargin", "Gross margin", "%", ratios.GrossMargin, f, format.KindPercent),
					card("roi", "ROI", "%", ratios.ROI, f, format.KindPercent),
					card("liquidityRatio", "Liquidity", "months", ratios.LiquidityRatio, f, format.KindNumber),
					card("assetTurnover", "Asset turnover", "x", ratios.AssetTurnover, f, format.KindNumber),
				},
			},
		},
		Sources: sources(bundle),
	}
}

func card(id, name, unit string, ind model.Indicator, f *format.Formatter, kind format.Kind) Card {
	return Card{
		ID:      id,
		Name:    name,
		Unit:    unit,
		Value:   ind.Value,
		Status:  ind.Status,
		Note:    ind.Note,
		Display: f.Indicator(ind, kind),
	}
}

func sources(b model.AnalysisBundle) []Source {
	out := make([]Source, 0, len(model.AllAnalysisKinds))
	for _, k := range model.AllAnalysisKinds {
		out = append(out, Source{
			Kind:  k,
			State: b.State(k).String(),
			Error: b.ErrorMessage(k),
		})
	}
	return out
}
