package model

import "math"

// Status 指标可信度标签，是指标值本身的一部分
type Status string

const (
	StatusCalculated  Status = "calculated"  // 直接来自上游结果
	StatusEstimated   Status = "estimated"   // 推导/近似得出
	StatusPending     Status = "pending"     // 缺少所需输入
	StatusUnavailable Status = "unavailable" // 现有数据无法得出
)

// Indicator 带可信度的指标值
// unavailable 时 Value 必为 nil；calculated/estimated 时 Value 必为有限数
type Indicator struct {
	Value  *float64 `json:"value"`
	Status Status   `json:"status"`
	Note   string   `json:"note,omitempty"`
}

// Calculated 直接取值；非有限数降级为 unavailable
func Calculated(v float64) Indicator {
	if !IsFinite(v) {
		return Unavailable("")
	}
	return Indicator{Value: &v, Status: StatusCalculated}
}

// Estimated 推导值；非有限数降级为 unavailable
func Estimated(v float64, note string) Indicator {
	if !IsFinite(v) {
		return Unavailable(note)
	}
	return Indicator{Value: &v, Status: StatusEstimated, Note: note}
}

// Pending 等待输入
func Pending(note string) Indicator {
	return Indicator{Status: StatusPending, Note: note}
}

// Unavailable 无法得出
func Unavailable(note string) Indicator {
	return Indicator{Status: StatusUnavailable, Note: note}
}

// Resolved 是否有可用数值
func (i Indicator) Resolved() bool {
	return i.Value != nil
}

// Float 取值，未解析时返回 (0, false)
func (i Indicator) Float() (float64, bool) {
	if i.Value == nil {
		return 0, false
	}
	return *i.Value, true
}

// Indicators 四项核心指标
type Indicators struct {
	Revenue      Indicator `json:"revenue"`
	Expenses     Indicator `json:"expenses"`
	NetProfit    Indicator `json:"netProfit"`
	CashPosition Indicator `json:"cashPosition"`
}

// Ratios 四项衍生比率（小数，0.25 表示 25%）
type Ratios struct {
	GrossMargin    Indicator `json:"grossMargin"`
	ROI            Indicator `json:"roi"`
	LiquidityRatio Indicator `json:"liquidityRatio"`
	AssetTurnover  Indicator `json:"assetTurnover"`
}

// IsFinite 非 NaN 且非 ±Inf
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// FiniteValue 可空数值是否为有限数
func FiniteValue(p *float64) (float64, bool) {
	if p == nil || !IsFinite(*p) {
		return 0, false
	}
	return *p, true
}
