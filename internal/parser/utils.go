package parser

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"finsight/internal/model"
)

var (
	spaceRe    = regexp.MustCompile(`\s+`)
	tokenSepRe = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	yearRe     = regexp.MustCompile(`^[a-z]?(\d{4})$`)

	// 货币符号与空白（含不换行空格）
	currencyRe = regexp.MustCompile(`[€$£¥\s\x{00A0}\x{202F}]`)
)

// NormalizeColumnName 规范化列名：去首尾空格、去换行制表符、压缩空白、转小写
func NormalizeColumnName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\n", " ")
	name = strings.ReplaceAll(name, "\r", " ")
	name = strings.ReplaceAll(name, "\t", " ")
	name = spaceRe.ReplaceAllString(name, " ")
	return strings.ToLower(name)
}

// FoldAccents 去除变音符号（categoría → categoria, débito → debito）
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Tokenize 列名拆分为小写、无变音符号的词
func Tokenize(name string) []string {
	name = FoldAccents(NormalizeColumnName(name))
	parts := tokenSepRe.Split(name, -1)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// YearFromHeader 识别年份列（四位数字，可带一个字母前缀，如 "2023" / "a2023"）
func YearFromHeader(header string) (int, bool) {
	m := yearRe.FindStringSubmatch(NormalizeColumnName(header))
	if len(m) < 2 {
		return 0, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return year, true
}

// IsYearColumn 是否为年份列
func IsYearColumn(header string) bool {
	_, ok := YearFromHeader(header)
	return ok
}

// FindYearColumns 按表头顺序返回所有年份列（原始文本）
func FindYearColumns(headers []string) []string {
	var out []string
	for _, h := range headers {
		if IsYearColumn(h) {
			out = append(out, h)
		}
	}
	return out
}

// ParseDecimal 解析金额文本
// 去除货币符号与空白；兼容 1.234,56 / 1,234.56 / (123) / 123- 等写法
func ParseDecimal(raw string) (decimal.Decimal, bool) {
	s := currencyRe.ReplaceAllString(strings.TrimSpace(raw), "")
	if s == "" || s == "-" {
		return decimal.Zero, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	if strings.HasSuffix(s, "-") && len(s) > 1 {
		negative = !negative
		s = s[:len(s)-1]
	}
	s = strings.TrimSuffix(s, "%")

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			// 欧式 1.234,56
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			// 美式 1,234.56
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 && lastComma > len(s)-4 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case strings.Count(s, ".") > 1:
		// 1.234.567 仅千分位
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}

// ParseAmount 解析金额为 float64
func ParseAmount(raw string) (float64, bool) {
	d, ok := ParseDecimal(raw)
	if !ok {
		return 0, false
	}
	v := d.InexactFloat64()
	if !model.IsFinite(v) {
		return 0, false
	}
	return v, true
}

// ParseCell 单元格数值（原生数值直接返回）
func ParseCell(c model.Cell) (float64, bool) {
	if c.IsNum {
		return c.Num, model.IsFinite(c.Num)
	}
	return ParseAmount(c.Raw)
}

// CellDecimal 单元格转为 decimal，非数值返回 (0, false)
func CellDecimal(c model.Cell) (decimal.Decimal, bool) {
	if c.IsNum {
		if !model.IsFinite(c.Num) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(c.Num), true
	}
	return ParseDecimal(c.Raw)
}
