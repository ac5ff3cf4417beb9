package importer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"warrantyboard/internal/parser"
	"warrantyboard/internal/service/calculator"
	"warrantyboard/internal/store"
)

// 数据来源
const (
	SourceExcel  = "excel"
	SourceSheets = "sheets"
)

// maxWarnings 单个 Sheet 保留的数据提示上限
const maxWarnings = 20

// Coordinator 导入协调器
type Coordinator struct {
	store      *store.Store
	recognizer *parser.SheetRecognizer
	parser     *parser.RecordParser
	log        logrus.FieldLogger
}

// NewCoordinator 创建导入协调器
func NewCoordinator(store *store.Store, log logrus.FieldLogger) *Coordinator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Coordinator{
		store:      store,
		recognizer: parser.NewSheetRecognizer(),
		parser:     parser.NewRecordParser(),
		log:        log,
	}
}

// ImportOptions 导入选项
type ImportOptions struct {
	FilePath string
	Filename string   // 展示用文件名，为空时取 FilePath 的文件名
	Sheets   []string // 只导入这些 Sheet，为空时导入全部
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`      // start/info/sheet_start/warning/sheet_done/done/error
	Message   string      `json:"message"`   // 事件消息
	Data      interface{} `json:"data"`      // 附加数据
	Timestamp time.Time   `json:"timestamp"` // 时间戳
}

// ImportContext 导入上下文
type ImportContext struct {
	Ctx          context.Context
	Workbook     Workbook
	Source       string
	ImportLogID  int64
	StartTime    time.Time
	Only         map[string]bool
	Report       *parser.ImportReport
	ProgressChan chan ProgressEvent
}

// Import 导入 Excel 文件，返回进度通道
func (c *Coordinator) Import(ctx context.Context, opts ImportOptions) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)

		file, err := excelize.OpenFile(opts.FilePath)
		if err != nil {
			c.sendProgress(ctx, progressChan, ProgressEvent{
				Type:      "error",
				Message:   fmt.Sprintf("打开文件失败: %v", err),
				Timestamp: time.Now(),
			})
			return
		}
		defer file.Close()

		filename := opts.Filename
		if filename == "" {
			filename = filepath.Base(opts.FilePath)
		}
		c.run(ctx, NewExcelWorkbook(file), SourceExcel, filename, opts.Sheets, progressChan)
	}()

	return progressChan
}

// ImportWorkbook 从任意工作簿导入（如在线表格），返回进度通道
func (c *Coordinator) ImportWorkbook(ctx context.Context, wb Workbook, source, name string, sheets []string) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)
		c.run(ctx, wb, source, name, sheets, progressChan)
	}()

	return progressChan
}

// run 执行导入逻辑
func (c *Coordinator) run(ctx context.Context, wb Workbook, source, name string, sheets []string, progressChan chan ProgressEvent) {
	startTime := time.Now()
	batchID := uuid.NewString()
	log := c.log.WithFields(logrus.Fields{"batch_id": batchID, "source": source, "name": name})

	c.sendProgress(ctx, progressChan, ProgressEvent{
		Type:    "start",
		Message: "开始导入",
		Data: map[string]string{
			"filename": name,
			"batch_id": batchID,
		},
		Timestamp: time.Now(),
	})

	logID, err := c.store.CreateImportLog(ctx, batchID, source, name)
	if err != nil {
		log.WithError(err).Error("create import log failed")
		c.fail(ctx, progressChan, fmt.Sprintf("创建导入日志失败: %v", err))
		return
	}

	ictx := &ImportContext{
		Ctx:          ctx,
		Workbook:     wb,
		Source:       source,
		ImportLogID:  logID,
		StartTime:    startTime,
		ProgressChan: progressChan,
		Report: &parser.ImportReport{
			BatchID:  batchID,
			Source:   source,
			Filename: name,
			Periods:  []string{},
			Sheets:   []parser.ParseResult{},
		},
	}
	if len(sheets) > 0 {
		ictx.Only = make(map[string]bool, len(sheets))
		for _, s := range sheets {
			ictx.Only[strings.TrimSpace(s)] = true
		}
	}

	sheetList, err := wb.SheetNames(ctx)
	if err != nil {
		log.WithError(err).Error("list sheets failed")
		_ = c.store.UpdateImportLog(ctx, logID, 0, 0, 0, "failed", err.Error())
		c.fail(ctx, progressChan, fmt.Sprintf("读取 Sheet 列表失败: %v", err))
		return
	}
	ictx.Report.TotalSheets = len(sheetList)

	c.sendProgress(ctx, progressChan, ProgressEvent{
		Type:    "info",
		Message: fmt.Sprintf("发现 %d 个 Sheet", len(sheetList)),
		Data: map[string]interface{}{
			"total_sheets": len(sheetList),
		},
		Timestamp: time.Now(),
	})

	for _, sheetName := range sheetList {
		if err := ctx.Err(); err != nil {
			_ = c.store.UpdateImportLog(context.Background(), logID, ictx.Report.TotalSheets, ictx.Report.ImportedRows, ictx.Report.ErrorRows, "failed", err.Error())
			c.fail(ctx, progressChan, fmt.Sprintf("导入已取消: %v", err))
			return
		}
		c.processSheet(ictx, sheetName)
	}

	ictx.Report.Duration = time.Since(startTime)

	status := "success"
	if ictx.Report.ImportedSheets == 0 {
		status = "failed"
	}
	if err := c.store.UpdateImportLog(ctx, logID, ictx.Report.TotalSheets, ictx.Report.ImportedRows, ictx.Report.ErrorRows, status, ""); err != nil {
		log.WithError(err).Warn("update import log failed")
	}

	log.WithFields(logrus.Fields{
		"imported_sheets": ictx.Report.ImportedSheets,
		"imported_rows":   ictx.Report.ImportedRows,
		"duration":        ictx.Report.Duration.String(),
	}).Info("import finished")

	c.sendProgress(ctx, progressChan, ProgressEvent{
		Type:      "done",
		Message:   "导入完成",
		Data:      ictx.Report,
		Timestamp: time.Now(),
	})
}

// processSheet 处理单个 Sheet
func (c *Coordinator) processSheet(ictx *ImportContext, sheetName string) {
	sheetStartTime := time.Now()

	if ictx.Only != nil && !ictx.Only[sheetName] {
		c.recordSheetResult(ictx, parser.ParseResult{
			SheetName: sheetName,
			SheetType: parser.SheetTypeUnknown,
			Status:    "skipped",
			Duration:  time.Since(sheetStartTime),
		}, nil)
		return
	}

	c.sendProgress(ictx.Ctx, ictx.ProgressChan, ProgressEvent{
		Type:    "sheet_start",
		Message: fmt.Sprintf("正在解析 Sheet: %s", sheetName),
		Data: map[string]string{
			"sheet_name": sheetName,
		},
		Timestamp: time.Now(),
	})

	rows, err := ictx.Workbook.Rows(ictx.Ctx, sheetName)
	if err != nil || len(rows) < 1 {
		if err == nil {
			err = fmt.Errorf("empty sheet")
		}
		c.recordSheetResult(ictx, parser.ParseResult{
			SheetName: sheetName,
			SheetType: parser.SheetTypeUnknown,
			Status:    "error",
			Errors:    []string{fmt.Sprintf("读取 Sheet 失败: %v", err)},
			Duration:  time.Since(sheetStartTime),
		}, nil)
		return
	}

	headers := rows[0]
	recognition := c.recognizer.Recognize(sheetName, headers)

	c.sendProgress(ictx.Ctx, ictx.ProgressChan, ProgressEvent{
		Type:    "info",
		Message: fmt.Sprintf("Sheet \"%s\" 识别为: %s (置信度: %.2f)", sheetName, recognition.SheetType, recognition.Confidence),
		Data: map[string]interface{}{
			"sheet_name": sheetName,
			"sheet_type": string(recognition.SheetType),
			"confidence": recognition.Confidence,
		},
		Timestamp: time.Now(),
	})

	if recognition.SheetType != parser.SheetTypePeriod {
		c.recordSheetResult(ictx, parser.ParseResult{
			SheetName:  sheetName,
			SheetType:  recognition.SheetType,
			Confidence: recognition.Confidence,
			Status:     "skipped",
			Duration:   time.Since(sheetStartTime),
		}, headers)
		return
	}

	records, stats, err := c.parser.ParseRows(sheetName, rows)
	if err != nil {
		c.recordSheetResult(ictx, parser.ParseResult{
			SheetName:  sheetName,
			SheetType:  recognition.SheetType,
			Confidence: recognition.Confidence,
			Status:     "error",
			Errors:     []string{err.Error()},
			Duration:   time.Since(sheetStartTime),
		}, headers)
		return
	}

	var warnings []string
	for i, rec := range records {
		for _, msg := range calculator.ValidateRecord(rec) {
			if len(warnings) >= maxWarnings {
				break
			}
			warnings = append(warnings, fmt.Sprintf("第 %d 条记录: %s", i+1, msg))
		}
	}

	if err := c.store.ReplacePeriod(ictx.Ctx, recognition.Period, ictx.Source, ictx.Report.BatchID, records); err != nil {
		c.recordSheetResult(ictx, parser.ParseResult{
			SheetName:  sheetName,
			SheetType:  recognition.SheetType,
			Confidence: recognition.Confidence,
			Period:     recognition.Period,
			Status:     "error",
			TotalRows:  stats.TotalRows,
			ErrorRows:  len(records),
			Errors:     []string{fmt.Sprintf("写入数据库失败: %v", err)},
			Duration:   time.Since(sheetStartTime),
		}, headers)
		return
	}

	if len(warnings) > 0 {
		c.sendProgress(ictx.Ctx, ictx.ProgressChan, ProgressEvent{
			Type:    "warning",
			Message: fmt.Sprintf("Sheet \"%s\" 有 %d 条数据提示", sheetName, len(warnings)),
			Data: map[string]interface{}{
				"sheet_name": sheetName,
				"warnings":   warnings,
			},
			Timestamp: time.Now(),
		})
	}

	ictx.Report.Periods = append(ictx.Report.Periods, recognition.Period)
	c.recordSheetResult(ictx, parser.ParseResult{
		SheetName:    sheetName,
		SheetType:    recognition.SheetType,
		Period:       recognition.Period,
		Confidence:   recognition.Confidence,
		Status:       "imported",
		TotalRows:    stats.TotalRows,
		ImportedRows: len(records),
		SkippedRows:  stats.SkippedRows,
		Warnings:     warnings,
		Duration:     time.Since(sheetStartTime),
	}, headers)
}

// recordSheetResult 记录单个 Sheet 结果并写入元信息
func (c *Coordinator) recordSheetResult(ictx *ImportContext, result parser.ParseResult, headers []string) {
	ictx.Report.Sheets = append(ictx.Report.Sheets, result)

	switch result.Status {
	case "imported":
		ictx.Report.ImportedSheets++
		ictx.Report.ImportedRows += result.ImportedRows
	case "skipped":
		ictx.Report.SkippedSheets++
	}
	ictx.Report.ErrorRows += result.ErrorRows
	ictx.Report.TotalRows += result.TotalRows

	meta := store.SheetMeta{
		ImportLogID:  ictx.ImportLogID,
		SheetName:    result.SheetName,
		Period:       result.Period,
		Confidence:   result.Confidence,
		TotalRows:    result.TotalRows,
		ImportedRows: result.ImportedRows,
		ColumnsJSON:  store.BuildColumnsJSON(headers),
		Status:       result.Status,
		ErrorMessage: strings.Join(result.Errors, "; "),
	}
	if err := c.store.InsertSheetMeta(ictx.Ctx, meta); err != nil {
		c.log.WithError(err).WithField("sheet", result.SheetName).Warn("insert sheet meta failed")
	}

	c.sendProgress(ictx.Ctx, ictx.ProgressChan, ProgressEvent{
		Type:      "sheet_done",
		Message:   fmt.Sprintf("Sheet \"%s\" %s", result.SheetName, result.Status),
		Data:      result,
		Timestamp: time.Now(),
	})
}

func (c *Coordinator) fail(ctx context.Context, ch chan ProgressEvent, msg string) {
	c.sendProgress(ctx, ch, ProgressEvent{
		Type:      "error",
		Message:   msg,
		Timestamp: time.Now(),
	})
}

// sendProgress 发送进度事件，调用方取消时放弃
func (c *Coordinator) sendProgress(ctx context.Context, ch chan ProgressEvent, event ProgressEvent) {
	select {
	case ch <- event:
	case <-ctx.Done():
	}
}
