package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"finsight/internal/model"
)

// Format 支持的文件格式
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

// DetectFormat 按扩展名判断格式
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt", ".tsv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
}

// ReadFile 读取磁盘文件
func ReadFile(path string) (model.RawTable, Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.RawTable{}, "", &ReadError{File: filepath.Base(path), Err: err}
	}
	return Read(filepath.Base(path), data)
}

// Read 按文件名推断格式并解析为 RawTable
func Read(filename string, data []byte) (model.RawTable, Format, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return model.RawTable{}, "", &ReadError{File: filename, Err: err}
	}
	if len(data) == 0 {
		return model.RawTable{}, format, &ReadError{File: filename, Err: ErrEmptyFile}
	}

	var table model.RawTable
	switch format {
	case FormatCSV:
		table, err = readCSV(data)
	case FormatXLSX:
		table, err = readXLSX(filename, data)
	case FormatXLS:
		table, err = readXLS(filename, data)
	}
	if err != nil {
		if _, ok := err.(*ReadError); ok {
			return model.RawTable{}, format, err
		}
		return model.RawTable{}, format, &ReadError{File: filename, Err: err}
	}
	return table, format, nil
}

// buildTable 首个非空行作为表头，其余非空行作为数据行
func buildTable(records [][]string) (model.RawTable, error) {
	headerAt := -1
	for i, rec := range records {
		if !isBlank(rec) {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return model.RawTable{}, ErrNoHeader
	}

	raw := records[headerAt]
	headers := make([]string, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		headers[i] = h
	}

	rows := make([]model.Row, 0, len(records)-headerAt-1)
	for _, rec := range records[headerAt+1:] {
		if isBlank(rec) {
			continue
		}
		row := make(model.Row, len(rec))
		for i, v := range rec {
			row[i] = model.TextCell(strings.TrimSpace(v))
		}
		rows = append(rows, row)
	}
	return model.NewRawTable(headers, rows), nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
