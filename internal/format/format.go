// Package format 面向展示层的金额、百分比格式化
package format

import (
	"fmt"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"finsight/internal/model"
)

// Placeholder 未解析指标的展示文本
const Placeholder = "—"

// Formatter 按币种与语言格式化数值
type Formatter struct {
	unit    currency.Unit
	scale   int
	symbol  string
	printer *message.Printer
}

// New 创建格式化器；locale 为空时使用 en
func New(code, locale string) (*Formatter, error) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, fmt.Errorf("invalid currency %q: %w", code, err)
	}

	tag := language.English
	if strings.TrimSpace(locale) != "" {
		tag, err = language.Parse(locale)
		if err != nil {
			return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
		}
	}

	p := message.NewPrinter(tag)
	scale, _ := currency.Standard.Rounding(unit)

	symbol := strings.TrimSpace(p.Sprint(currency.Symbol(unit)))
	if symbol == "" {
		symbol = unit.String()
	}

	return &Formatter{unit: unit, scale: scale, symbol: symbol, printer: p}, nil
}

// Currency ISO 代码
func (f *Formatter) Currency() string {
	return f.unit.String()
}

// Symbol 货币符号
func (f *Formatter) Symbol() string {
	return f.symbol
}

// Money 金额：符号 + 本地化数字（币种标准小数位）
func (f *Formatter) Money(v float64) string {
	if !model.IsFinite(v) {
		return Placeholder
	}
	return f.symbol + " " + f.printer.Sprintf("%.*f", f.scale, v)
}

// Percent 比率（0.25 → 25.0%）
func (f *Formatter) Percent(ratio float64) string {
	if !model.IsFinite(ratio) {
		return Placeholder
	}
	return f.printer.Sprintf("%.1f%%", ratio*100)
}

// Number 一位小数的普通数值
func (f *Formatter) Number(v float64) string {
	if !model.IsFinite(v) {
		return Placeholder
	}
	return f.printer.Sprintf("%.1f", v)
}

// Kind 展示类型
type Kind int

const (
	KindMoney Kind = iota
	KindPercent
	KindNumber
)

// Indicator 指标展示文本；未解析时返回占位符
func (f *Formatter) Indicator(ind model.Indicator, kind Kind) string {
	v, ok := ind.Float()
	if !ok {
		return Placeholder
	}
	switch kind {
	case KindPercent:
		return f.Percent(v)
	case KindNumber:
		return f.Number(v)
	default:
		return f.Money(v)
	}
}
