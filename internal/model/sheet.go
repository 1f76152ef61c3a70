package model

// Shape 表格布局类型（用于上传前的格式识别）
type Shape string

const (
	ShapeUnknown       Shape = "unknown"
	ShapeWide          Shape = "wide"          // 年份横向展开（一列一年）
	ShapeTransactional Shape = "transactional" // 流水：日期 + 金额
	ShapeBudget        Shape = "budget"        // 预算：类别 + 金额
)

// SuggestionKind 建议的转换类型
type SuggestionKind string

const (
	SuggestUnpivotYears        SuggestionKind = "unpivot_years"
	SuggestDeriveAmount        SuggestionKind = "derive_amount_from_debit_credit"
	SuggestCompareBudgetActual SuggestionKind = "compare_budget_actual"
)

// Suggestion 转换建议
type Suggestion struct {
	Kind     SuggestionKind `json:"kind"`
	Message  string         `json:"message"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ShapeAssessment 格式识别结果（纯计算，不持久化语义，仅供提示）
type ShapeAssessment struct {
	Confidence    int          `json:"confidence"` // 0-100
	IsFinancial   bool         `json:"isFinancial"`
	DetectedShape Shape        `json:"detectedShape"`
	Suggestions   []Suggestion `json:"suggestions"`
	Warnings      []string     `json:"warnings"`
}

// HasSuggestion 是否包含某类建议
func (a ShapeAssessment) HasSuggestion(kind SuggestionKind) bool {
	_, ok := a.Suggestion(kind)
	return ok
}

// Suggestion 取第一条指定类型的建议
func (a ShapeAssessment) Suggestion(kind SuggestionKind) (Suggestion, bool) {
	for _, s := range a.Suggestions {
		if s.Kind == kind {
			return s, true
		}
	}
	return Suggestion{}, false
}
