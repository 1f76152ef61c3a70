package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// AnalysisKind 外部分析服务产出的分析类型
type AnalysisKind string

const (
	KindYearlySummary  AnalysisKind = "yearly_summary"
	KindMonthlySummary AnalysisKind = "monthly_summary"
	KindCashFlow       AnalysisKind = "cash_flow"
	KindBudgetVariance AnalysisKind = "budget_variance"
)

// AllAnalysisKinds 全部分析类型（固定顺序）
var AllAnalysisKinds = []AnalysisKind{
	KindYearlySummary,
	KindMonthlySummary,
	KindCashFlow,
	KindBudgetVariance,
}

// ParseAnalysisKind 解析分析类型
func ParseAnalysisKind(s string) (AnalysisKind, bool) {
	for _, k := range AllAnalysisKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// ResultState 分析结果状态
type ResultState int

const (
	StateAbsent ResultState = iota // 未提供
	StateOK                        // 正常
	StateFailed                    // 上游计算失败（携带错误信息）
)

func (s ResultState) String() string {
	switch s {
	case StateOK:
		return "ok"
	case StateFailed:
		return "failed"
	default:
		return "absent"
	}
}

// Result 单个分析类型的结果：Absent | OK(payload) | Failed(message)
// 零值为 Absent
type Result[T any] struct {
	State   ResultState
	Payload T
	Message string
}

// OK 构造正常结果
func OK[T any](payload T) Result[T] {
	return Result[T]{State: StateOK, Payload: payload}
}

// Failed 构造失败结果
func Failed[T any](message string) Result[T] {
	return Result[T]{State: StateFailed, Message: message}
}

// Absent 构造缺失结果
func Absent[T any]() Result[T] {
	return Result[T]{}
}

// IsOK 存在且未携带错误标记
func (r Result[T]) IsOK() bool {
	return r.State == StateOK
}

// Get 取出 payload，仅在 OK 时返回 true
func (r Result[T]) Get() (T, bool) {
	if r.State != StateOK {
		var zero T
		return zero, false
	}
	return r.Payload, true
}

// MarshalJSON Absent→null，Failed→{"error":...}，OK→payload
func (r Result[T]) MarshalJSON() ([]byte, error) {
	switch r.State {
	case StateOK:
		return json.Marshal(r.Payload)
	case StateFailed:
		return json.Marshal(map[string]string{"error": r.Message})
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON 含非空 error 字段视为失败，其余按 payload 解析
func (r *Result[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = Absent[T]()
		return nil
	}

	var head struct {
		Error json.RawMessage `json:"error"`
	}
	if data[0] == '{' {
		if err := json.Unmarshal(data, &head); err != nil {
			return err
		}
	}
	if len(head.Error) > 0 && !bytes.Equal(head.Error, []byte("null")) {
		var msg string
		if err := json.Unmarshal(head.Error, &msg); err != nil {
			msg = string(head.Error)
		}
		*r = Failed[T](msg)
		return nil
	}

	var payload T
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	*r = OK(payload)
	return nil
}

// YearlySummary 年度汇总
type YearlySummary struct {
	Year          any      `json:"year,omitempty"` // 上游可能给出数字或字符串
	TotalIncome   *float64 `json:"total_income"`
	TotalExpenses *float64 `json:"total_expenses"`
	NetResult     *float64 `json:"net_result"`
	Currency      string   `json:"currency,omitempty"`
}

// MonthlyTotals 月度汇总合计
type MonthlyTotals struct {
	Income   *float64 `json:"income"`
	Expenses *float64 `json:"expenses"`
	Net      *float64 `json:"net"`
}

// MonthEntry 单月数据
type MonthEntry struct {
	Month    string   `json:"month"`
	Income   *float64 `json:"income"`
	Expenses *float64 `json:"expenses"`
	Net      *float64 `json:"net"`
}

// MonthlySummary 月度汇总
type MonthlySummary struct {
	Totals MonthlyTotals `json:"totals"`
	Months []MonthEntry  `json:"months"`
}

// CashFlowPeriod 现金流周期
type CashFlowPeriod struct {
	Date          string   `json:"date"`
	Inflow        *float64 `json:"inflow"`
	Outflow       *float64 `json:"outflow"`
	NetFlow       *float64 `json:"net_flow,omitempty"`
	EndingBalance *float64 `json:"ending_balance"`
}

// CashFlow 现金流分析
type CashFlow struct {
	InitialBalance *float64         `json:"initial_balance"`
	FinalBalance   *float64         `json:"final_balance"`
	Periods        []CashFlowPeriod `json:"periods"`
}

// CategoryVariance 单类别预算差异
type CategoryVariance struct {
	Category    string   `json:"category"`
	Budgeted    *float64 `json:"budgeted"`
	Actual      *float64 `json:"actual"`
	Variance    *float64 `json:"variance"`
	VariancePct *float64 `json:"variance_pct,omitempty"`
}

// BudgetVariance 预算差异分析
type BudgetVariance struct {
	TotalVariance *float64           `json:"total_variance"`
	ByCategory    []CategoryVariance `json:"by_category"`
}

// AnalysisBundle 一个会话下四类分析结果的快照（任意子集可缺失或失败）
type AnalysisBundle struct {
	Yearly   Result[YearlySummary]  `json:"yearly_summary"`
	Monthly  Result[MonthlySummary] `json:"monthly_summary"`
	CashFlow Result[CashFlow]       `json:"cash_flow"`
	Budget   Result[BudgetVariance] `json:"budget_variance"`
}

// State 指定类型的结果状态
func (b AnalysisBundle) State(kind AnalysisKind) ResultState {
	switch kind {
	case KindYearlySummary:
		return b.Yearly.State
	case KindMonthlySummary:
		return b.Monthly.State
	case KindCashFlow:
		return b.CashFlow.State
	case KindBudgetVariance:
		return b.Budget.State
	}
	return StateAbsent
}

// ErrorMessage 指定类型的上游错误信息（仅用于展示）
func (b AnalysisBundle) ErrorMessage(kind AnalysisKind) string {
	switch kind {
	case KindYearlySummary:
		return b.Yearly.Message
	case KindMonthlySummary:
		return b.Monthly.Message
	case KindCashFlow:
		return b.CashFlow.Message
	case KindBudgetVariance:
		return b.Budget.Message
	}
	return ""
}

// SetRaw 将某类型的原始 JSON（payload 或 {error}）写入 bundle
func (b *AnalysisBundle) SetRaw(kind AnalysisKind, raw []byte) error {
	var err error
	switch kind {
	case KindYearlySummary:
		err = json.Unmarshal(raw, &b.Yearly)
	case KindMonthlySummary:
		err = json.Unmarshal(raw, &b.Monthly)
	case KindCashFlow:
		err = json.Unmarshal(raw, &b.CashFlow)
	case KindBudgetVariance:
		err = json.Unmarshal(raw, &b.Budget)
	default:
		return fmt.Errorf("unknown analysis kind: %s", kind)
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", kind, err)
	}
	return nil
}

// Num 返回 v 的指针（构造可空数值）
func Num(v float64) *float64 {
	return &v
}
