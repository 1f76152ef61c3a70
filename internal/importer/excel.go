package importer

import (
	"bytes"
	"fmt"
	"os"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"

	"finsight/internal/model"
)

// readXLSX 取第一个非空 sheet
func readXLSX(filename string, data []byte) (model.RawTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return model.RawTable{}, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return model.RawTable{}, &ReadError{File: filename, Sheet: sheet, Err: err}
		}
		if allBlank(rows) {
			continue
		}
		table, err := buildTable(rows)
		if err != nil {
			return model.RawTable{}, &ReadError{File: filename, Sheet: sheet, Err: err}
		}
		return table, nil
	}
	return model.RawTable{}, ErrEmptyFile
}

// readXLS 旧版 BIFF 格式；xlsReader 只能按路径打开，先落临时文件
func readXLS(filename string, data []byte) (model.RawTable, error) {
	tmp, err := os.CreateTemp("", "finsight-*.xls")
	if err != nil {
		return model.RawTable{}, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return model.RawTable{}, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	book, err := xls.OpenFile(tmp.Name())
	if err != nil {
		return model.RawTable{}, fmt.Errorf("open xls: %w", err)
	}

	for i := 0; i < book.GetNumberSheets(); i++ {
		sheet, err := book.GetSheet(i)
		if err != nil || sheet == nil {
			continue
		}

		var records [][]string
		for _, row := range sheet.GetRows() {
			var rec []string
			for _, col := range row.GetCols() {
				rec = append(rec, col.GetString())
			}
			records = append(records, rec)
		}
		if allBlank(records) {
			continue
		}

		table, err := buildTable(records)
		if err != nil {
			return model.RawTable{}, &ReadError{File: filename, Sheet: fmt.Sprintf("#%d", i), Err: err}
		}
		return table, nil
	}
	return model.RawTable{}, ErrEmptyFile
}

func allBlank(rows [][]string) bool {
	for _, r := range rows {
		if !isBlank(r) {
			return false
		}
	}
	return true
}
