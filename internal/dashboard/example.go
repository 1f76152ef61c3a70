package dashboard

import "finsight/internal/model"

// ExampleBundle 演示用分析快照（两个月数据，四类分析齐全）
func ExampleBundle() model.AnalysisBundle {
	return model.AnalysisBundle{
		Yearly: model.OK(model.YearlySummary{
			Year:          2025,
			TotalIncome:   model.Num(15000),
			TotalExpenses: model.Num(5000),
			NetResult:     model.Num(10000),
			Currency:      "EUR",
		}),
		Monthly: model.OK(model.MonthlySummary{
			Totals: model.MonthlyTotals{
				Income:   model.Num(15000),
				Expenses: model.Num(5000),
				Net:      model.Num(10000),
			},
			Months: []model.MonthEntry{
				{Month: "2025-01", Income: model.Num(10000), Expenses: model.Num(3000), Net: model.Num(7000)},
				{Month: "2025-02", Income: model.Num(5000), Expenses: model.Num(2000), Net: model.Num(3000)},
			},
		}),
		Budget: model.OK(model.BudgetVariance{
			TotalVariance: model.Num(0),
			ByCategory: []model.CategoryVariance{
				{Category: "Marketing", Budgeted: model.Num(2000), Actual: model.Num(2500), Variance: model.Num(500), VariancePct: model.Num(25.0)},
				{Category: "Operaciones", Budgeted: model.Num(3000), Actual: model.Num(2500), Variance: model.Num(-500), VariancePct: model.Num(-16.7)},
			},
		}),
		CashFlow: model.OK(model.CashFlow{
			InitialBalance: model.Num(1000),
			FinalBalance:   model.Num(11000),
			Periods: []model.CashFlowPeriod{
				{Date: "2025-01-31", Inflow: model.Num(10000), Outflow: model.Num(3000), NetFlow: model.Num(7000), EndingBalance: model.Num(8000)},
				{Date: "2025-02-28", Inflow: model.Num(5000), Outflow: model.Num(2000), NetFlow: model.Num(3000), EndingBalance: model.Num(11000)},
			},
		}),
	}
}
