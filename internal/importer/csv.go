package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"finsight/internal/model"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// 候选分隔符，计数相同时按此顺序取
var delimiters = []rune{',', ';', '\t', '|'}

func readCSV(data []byte) (model.RawTable, error) {
	text, err := decodeText(data)
	if err != nil {
		return model.RawTable{}, err
	}
	if strings.TrimSpace(text) == "" {
		return model.RawTable{}, ErrEmptyFile
	}

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = SniffDelimiter(text)
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return model.RawTable{}, fmt.Errorf("parse csv: %w", err)
	}
	return buildTable(records)
}

// decodeText 去掉 BOM；非 UTF-8 时按 Windows-1252 解码（银行/ERP 导出常见）
func decodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), charmap.Windows1252.NewDecoder()))
	if err != nil {
		return "", fmt.Errorf("decode windows-1252: %w", err)
	}
	return string(decoded), nil
}

// SniffDelimiter 统计首个非空行（引号外）各候选分隔符出现次数
func SniffDelimiter(text string) rune {
	line := ""
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) != "" {
			line = l
			break
		}
	}

	counts := make(map[rune]int, len(delimiters))
	inQuotes := false
	for _, ch := range line {
		if ch == '"' {
			inQuotes = !inQuotes
			continue
		}
		if !inQuotes {
			counts[ch]++
		}
	}

	best, bestCount := ',', 0
	for _, d := range delimiters {
		if counts[d] > bestCount {
			best, bestCount = d, counts[d]
		}
	}
	return best
}
