package exporter

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"warrantyboard/internal/model"
)

// 工作表名称
const (
	SheetMetrics    = "Metrics"
	SheetEvaluation = "Evaluation"
	SheetComparison = "Comparison"
	SheetPivot      = "Pivot"
)

// ErrNothingToExport 请求中没有任何可导出的表
var ErrNothingToExport = errors.New("nothing to export")

// Exporter 看板结果导出器
type Exporter struct{}

// NewExporter 创建导出器
func NewExporter() *Exporter {
	return &Exporter{}
}

// ExportRequest 需要导出的内容，为 nil 的部分不生成工作表
type ExportRequest struct {
	Metrics    *model.MetricTable
	Evaluation *model.Evaluation
	Comparison *model.Comparison
	Pivot      *model.PivotTable
}

func (r ExportRequest) sheetCount() int {
	n := 0
	if r.Metrics != nil {
		n++
	}
	if r.Evaluation != nil {
		n++
	}
	if r.Comparison != nil {
		n++
	}
	if r.Pivot != nil {
		n++
	}
	return n
}

// Export 生成工作簿
func (e *Exporter) Export(req ExportRequest, progress func(ProgressEvent)) (*excelize.File, error) {
	total := req.sheetCount()
	if total == 0 {
		return nil, ErrNothingToExport
	}

	f := excelize.NewFile()
	st, err := newStyles(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	reportProgress(progress, 5, "准备工作簿")

	type job struct {
		sheet string
		stage string
		write func(sheet string) error
	}
	var jobs []job
	if req.Metrics != nil {
		jobs = append(jobs, job{SheetMetrics, "写入汇总表", func(s string) error { return writeMetricSheet(f, st, s, *req.Metrics) }})
	}
	if req.Evaluation != nil {
		jobs = append(jobs, job{SheetEvaluation, "写入目标达成", func(s string) error { return writeEvaluationSheet(f, st, s, *req.Evaluation) }})
	}
	if req.Comparison != nil {
		jobs = append(jobs, job{SheetComparison, "写入周期对比", func(s string) error { return writeComparisonSheet(f, st, s, *req.Comparison) }})
	}
	if req.Pivot != nil {
		jobs = append(jobs, job{SheetPivot, "写入多期透视", func(s string) error { return writePivotSheet(f, st, s, *req.Pivot) }})
	}

	for i, j := range jobs {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), j.sheet); err != nil {
				_ = f.Close()
				return nil, fmt.Errorf("重命名工作表失败: %w", err)
			}
		} else if _, err := f.NewSheet(j.sheet); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("创建工作表 %s 失败: %w", j.sheet, err)
		}

		if err := j.write(j.sheet); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("写入 %s 失败: %w", j.sheet, err)
		}
		reportProgress(progress, 10+(i+1)*85/len(jobs), j.stage)
	}

	f.SetActiveSheet(0)
	reportProgress(progress, 100, "完成")
	return f, nil
}

func setCellValue(f *excelize.File, sheet, cell string, value interface{}) error {
	return f.SetCellValue(sheet, cell, value)
}
