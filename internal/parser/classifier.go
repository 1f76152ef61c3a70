package parser

import (
	"fmt"
	"strings"

	"finsight/internal/model"
)

// ShapeClassifier 表格布局识别器（纯函数，无 I/O，同输入同输出）
type ShapeClassifier struct {
	lexicon *Lexicon
}

// NewShapeClassifier 创建识别器；lexicon 为 nil 时使用默认词库
func NewShapeClassifier(lexicon *Lexicon) *ShapeClassifier {
	if lexicon == nil {
		lexicon = DefaultLexicon()
	}
	return &ShapeClassifier{lexicon: lexicon}
}

// Classify 使用默认词库识别
func Classify(headers []string, sampleRows []model.Row) model.ShapeAssessment {
	return NewShapeClassifier(nil).Classify(headers, sampleRows)
}

// headerSignals 表头层面的识别信号
type headerSignals struct {
	amount, date, category bool
	debit, credit          bool
	budget, actual         bool
	yearColumns            []string
}

// hasAmounts 金额列或预算/实际列（预算表的金额就在这两列里）
func (s headerSignals) hasAmounts() bool {
	return s.amount || s.budget || s.actual
}

// ClassifyTable 识别整张表（取前 sampleSize 行作为样本）
func (c *ShapeClassifier) ClassifyTable(table model.RawTable, sampleSize int) model.ShapeAssessment {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleRows
	}
	return c.Classify(table.Headers(), table.Sample(sampleSize))
}

// Classify 根据表头和样本行识别布局，给出置信度、转换建议和警告
func (c *ShapeClassifier) Classify(headers []string, sampleRows []model.Row) model.ShapeAssessment {
	sig := c.scanHeaders(headers)
	numeric := hasNumericContent(headers, sampleRows)

	confidence := Score(sig.hasAmounts(), sig.date, sig.category, len(sig.yearColumns) >= MinYearColumns, numeric)

	result := model.ShapeAssessment{
		Confidence:    confidence,
		IsFinancial:   confidence >= FinancialThreshold,
		DetectedShape: detectShape(sig),
		Suggestions:   c.suggest(headers, sig),
		Warnings:      []string{},
	}

	if !result.IsFinancial {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"The table does not look like a financial export (confidence %d%%, at least %d%% required)",
			confidence, FinancialThreshold))
	}
	if !numeric {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"No numeric content detected: the first data row needs at least %d numeric cells", MinNumericCells))
	}

	return result
}

// Score 加法打分，上限 MaxConfidence
func Score(amount, date, category, wide, numeric bool) int {
	score := 0
	if amount {
		score += WeightAmount
	}
	if date {
		score += WeightDate
	}
	if category {
		score += WeightCategory
	}
	if wide {
		score += WeightWideYears
	}
	if numeric {
		score += WeightNumericContent
	}
	if score > MaxConfidence {
		score = MaxConfidence
	}
	return score
}

// scanHeaders 匹配词库；同一概念只计一次，一个表头可命中多个概念
func (c *ShapeClassifier) scanHeaders(headers []string) headerSignals {
	var sig headerSignals
	for _, h := range headers {
		if IsYearColumn(h) {
			sig.yearColumns = append(sig.yearColumns, h)
			continue
		}
		for _, concept := range c.lexicon.Match(h) {
			switch concept {
			case ConceptAmount:
				sig.amount = true
			case ConceptDate:
				sig.date = true
			case ConceptCategory:
				sig.category = true
			case ConceptDebit:
				sig.debit = true
			case ConceptCredit:
				sig.credit = true
			case ConceptBudget:
				sig.budget = true
			case ConceptActual:
				sig.actual = true
			}
		}
	}
	return sig
}

// detectShape 优先级：wide > transactional > budget > unknown
func detectShape(sig headerSignals) model.Shape {
	switch {
	case len(sig.yearColumns) >= MinYearColumns:
		return model.ShapeWide
	case sig.date && sig.hasAmounts():
		return model.ShapeTransactional
	case sig.category && sig.hasAmounts():
		return model.ShapeBudget
	default:
		return model.ShapeUnknown
	}
}

// suggest 生成转换建议（与布局优先级无关）
func (c *ShapeClassifier) suggest(headers []string, sig headerSignals) []model.Suggestion {
	suggestions := []model.Suggestion{}

	if len(sig.yearColumns) >= MinYearColumns {
		years := make([]string, len(sig.yearColumns))
		copy(years, sig.yearColumns)
		suggestions = append(suggestions, model.Suggestion{
			Kind: model.SuggestUnpivotYears,
			Message: fmt.Sprintf("Unpivot %d year columns (%s) into rows with year and amount",
				len(years), strings.Join(years, ", ")),
			Metadata: map[string]any{
				"yearColumns": years,
			},
		})
	}

	if sig.debit && sig.credit && !sig.amount {
		debitCol, _ := c.lexicon.FirstMatch(headers, ConceptDebit)
		creditCol, _ := c.lexicon.FirstMatch(headers, ConceptCredit)
		suggestions = append(suggestions, model.Suggestion{
			Kind:    model.SuggestDeriveAmount,
			Message: fmt.Sprintf("Derive amount = %s - %s", debitCol, creditCol),
			Metadata: map[string]any{
				"debitColumn":  debitCol,
				"creditColumn": creditCol,
			},
		})
	}

	if sig.budget && sig.actual {
		budgetCol, _ := c.lexicon.FirstMatch(headers, ConceptBudget)
		actualCol, _ := c.lexicon.FirstMatch(headers, ConceptActual)
		if budgetCol != actualCol {
			suggestions = append(suggestions, model.Suggestion{
				Kind:    model.SuggestCompareBudgetActual,
				Message: fmt.Sprintf("Compare %s against %s per category", actualCol, budgetCol),
				Metadata: map[string]any{
					"budgetColumn": budgetCol,
					"actualColumn": actualCol,
				},
			})
		}
	}

	return suggestions
}

// hasNumericContent 首行（仅表头范围内）至少 MinNumericCells 个可解析为数值的单元格
func hasNumericContent(headers []string, sampleRows []model.Row) bool {
	if len(sampleRows) == 0 {
		return false
	}
	first := sampleRows[0]
	count := 0
	for i := 0; i < len(headers) && i < len(first); i++ {
		if _, ok := ParseCell(first[i]); ok {
			count++
		}
	}
	return count >= MinNumericCells
}
