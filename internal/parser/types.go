package parser

// Concept 列名词库中的财务概念
type Concept string

const (
	ConceptAmount   Concept = "amount"
	ConceptDate     Concept = "date"
	ConceptCategory Concept = "category"
	ConceptDebit    Concept = "debit"
	ConceptCredit   Concept = "credit"
	ConceptBudget   Concept = "budget"
	ConceptActual   Concept = "actual"
)

// 识别打分权重（加法累计，上限 MaxConfidence）
const (
	WeightAmount         = 30
	WeightDate           = 20
	WeightCategory       = 15
	WeightWideYears      = 25
	WeightNumericContent = 10

	MaxConfidence      = 100
	FinancialThreshold = 40 // confidence >= 该值视为财务数据

	MinYearColumns  = 2 // 至少 2 个年份列才视为横向年份格式
	MinNumericCells = 2 // 首行至少 2 个数值单元格
)

// DefaultSampleRows 识别时默认读取的样本行数
const DefaultSampleRows = 20
