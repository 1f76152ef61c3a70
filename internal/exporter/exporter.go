// Package exporter 将会话的看板与原始表格写入 XLSX 工作簿
package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"finsight/internal/dashboard"
	"finsight/internal/format"
	"finsight/internal/model"
	"finsight/internal/store"
)

// 工作表名称
const (
	SheetDashboard = "Dashboard"
	SheetCharts    = "Charts"
	SheetData      = "Data"
)

// ContentType XLSX 下载类型
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Workbook 写入工作簿的数据；Table 为 nil 时不生成 Data 表
type Workbook struct {
	Dashboard dashboard.Dashboard
	Table     *model.RawTable
}

// Exporter 会话导出器
type Exporter struct {
	store     *store.Store
	formatter *format.Formatter
}

// NewExporter 创建导出器
func NewExporter(st *store.Store, formatter *format.Formatter) *Exporter {
	return &Exporter{store: st, formatter: formatter}
}

// ExportOptions 导出选项
type ExportOptions struct {
	SessionID string
	Progress  func(ProgressEvent)
}

// Export 读取会话表格与分析快照，生成工作簿
func (e *Exporter) Export(opts ExportOptions) (*excelize.File, error) {
	reportProgress(opts.Progress, 0, "读取会话")
	table, err := e.store.GetSessionTable(opts.SessionID)
	if err != nil {
		return nil, err
	}
	bundle, err := e.store.GetBundle(opts.SessionID)
	if err != nil {
		return nil, err
	}

	reportProgress(opts.Progress, 20, "生成看板")
	wb := Workbook{
		Dashboard: dashboard.Build(bundle, dashboard.Options{Formatter: e.formatter}),
		Table:     &table,
	}
	return Write(wb, opts.Progress)
}

// Write 生成工作簿；调用方负责 Close
func Write(wb Workbook, progress func(ProgressEvent)) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetDashboard); err != nil {
		_ = f.Close()
		return nil, err
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	steps := []struct {
		percent int
		stage   string
		fill    func() error
	}{
		{40, "写入指标", func() error { return fillDashboardSheet(f, header, wb.Dashboard) }},
		{60, "写入图表数据", func() error { return fillChartsSheet(f, header, wb.Dashboard.Charts) }},
		{90, "写入原始数据", func() error {
			if wb.Table == nil {
				return nil
			}
			return fillDataSheet(f, header, *wb.Table)
		}},
	}
	for _, s := range steps {
		if err := s.fill(); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("%s失败: %w", s.stage, err)
		}
		reportProgress(progress, s.percent, s.stage)
	}

	f.SetActiveSheet(0)
	reportProgress(progress, 100, "导出完成")
	return f, nil
}

func fillDashboardSheet(f *excelize.File, header int, d dashboard.Dashboard) error {
	sheet := SheetDashboard
	if err := setRow(f, sheet, 1, "Group", "Indicator", "Value", "Display", "Status", "Note"); err != nil {
		return err
	}
	row := 2
	for _, g := range d.Groups {
		for _, c := range g.Cards {
			if err := setRow(f, sheet, row, g.Name, c.Name, floatOrNil(c.Value), c.Display, string(c.Status), c.Note); err != nil {
				return err
			}
			row++
		}
	}

	// 上游分析状态放在指标下方，空一行
	row++
	if err := setRow(f, sheet, row, "Source", "State", "Error"); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, cell(1, row), cell(3, row), header); err != nil {
		return err
	}
	for _, s := range d.Sources {
		row++
		if err := setRow(f, sheet, row, string(s.Kind), s.State, s.Error); err != nil {
			return err
		}
	}

	if err := f.SetCellStyle(sheet, "A1", "F1", header); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "B", 18); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "D", "F", 24)
}

func fillChartsSheet(f *excelize.File, header int, charts dashboard.Charts) error {
	sheet := SheetCharts
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := setRow(f, sheet, 1, "Series", "Label", "Value", "Status"); err != nil {
		return err
	}
	row := 2
	for _, s := range []struct {
		name   string
		series model.ChartSeries
	}{
		{"revenue", charts.Revenue},
		{"expenseBreakdown", charts.ExpenseBreakdown},
		{"cashFlow", charts.CashFlow},
	} {
		if s.series.Len() == 0 {
			if err := setRow(f, sheet, row, s.name, nil, nil, string(s.series.Status)); err != nil {
				return err
			}
			row++
			continue
		}
		for i, label := range s.series.Labels {
			if err := setRow(f, sheet, row, s.name, label, s.series.Values[i], string(s.series.Status)); err != nil {
				return err
			}
			row++
		}
	}
	return f.SetCellStyle(sheet, "A1", "D1", header)
}

// fillDataSheet 原始表格量可能较大，用流式写入
func fillDataSheet(f *excelize.File, header int, table model.RawTable) error {
	sheet := SheetData
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}

	headers := table.Headers()
	head := make([]interface{}, len(headers))
	for i, h := range headers {
		head[i] = excelize.Cell{StyleID: header, Value: h}
	}
	if err := sw.SetRow("A1", head); err != nil {
		return err
	}

	for i, r := range table.Rows() {
		values := make([]interface{}, len(r))
		for j, c := range r {
			values[j] = cellValue(c)
		}
		if err := sw.SetRow(cell(1, i+2), values); err != nil {
			return err
		}
	}
	return sw.Flush()
}

func setRow(f *excelize.File, sheet string, row int, values ...interface{}) error {
	return f.SetSheetRow(sheet, cell(1, row), &values)
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func cellValue(c model.Cell) interface{} {
	switch {
	case c.IsNum:
		return c.Num
	case c.IsEmpty():
		return nil
	default:
		return c.Raw
	}
}

func floatOrNil(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
