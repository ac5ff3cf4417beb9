package v3

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"warrantyboard/internal/exporter"
)

// exportTTL 下载链接有效期
const exportTTL = 10 * time.Minute

type exportProgressEvent struct {
	Type      string      `json:"type"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

type exportResponse struct {
	Token       string `json:"token"`
	DownloadURL string `json:"downloadUrl"`
	Filename    string `json:"filename"`
}

// buildExportRequest 按 kind 参数执行对应查询，参数与看板查询一致
func (h *Handler) buildExportRequest(c *gin.Context) (exporter.ExportRequest, string, error) {
	svc, _, err := h.serviceFor(c)
	if err != nil {
		return exporter.ExportRequest{}, "", err
	}
	ctx := c.Request.Context()
	stamp := time.Now().Format("20060102-150405")

	switch strings.ToLower(strings.TrimSpace(c.DefaultQuery("kind", "metrics"))) {
	case "metrics":
		q, err := parseMetricsQuery(c)
		if err != nil {
			return exporter.ExportRequest{}, "", err
		}
		res, err := svc.Metrics(ctx, q)
		if err != nil {
			return exporter.ExportRequest{}, "", err
		}
		return exporter.ExportRequest{Metrics: &res.Table, Evaluation: &res.Evaluation},
			fmt.Sprintf("warranty-metrics-%s.xlsx", stamp), nil
	case "compare":
		q, err := parseCompareQuery(c)
		if err != nil {
			return exporter.ExportRequest{}, "", err
		}
		cmp, err := svc.Compare(ctx, q)
		if err != nil {
			return exporter.ExportRequest{}, "", err
		}
		return exporter.ExportRequest{Comparison: &cmp},
			fmt.Sprintf("warranty-compare-%s.xlsx", stamp), nil
	case "pivot":
		q, err := parsePivotQuery(c)
		if err != nil {
			return exporter.ExportRequest{}, "", err
		}
		pv, err := svc.Pivot(ctx, q)
		if err != nil {
			return exporter.ExportRequest{}, "", err
		}
		return exporter.ExportRequest{Pivot: &pv},
			fmt.Sprintf("warranty-pivot-%s.xlsx", stamp), nil
	}
	return exporter.ExportRequest{}, "", badQuery("kind 只能为 metrics、compare 或 pivot")
}

// writeExport 生成工作簿并登记一次性下载链接
func (h *Handler) writeExport(c *gin.Context, req exporter.ExportRequest, filename string, progress func(exporter.ProgressEvent)) (exportResponse, error) {
	file, err := h.exporter.Export(req, progress)
	if err != nil {
		return exportResponse{}, err
	}
	defer file.Close()

	tempPath := filepath.Join(os.TempDir(), fmt.Sprintf("warrantyboard_export_%d_%d.xlsx", time.Now().UnixNano(), os.Getpid()))
	if err := file.SaveAs(tempPath); err != nil {
		_ = os.Remove(tempPath)
		return exportResponse{}, fmt.Errorf("写入导出文件失败: %w", err)
	}

	token := h.downloads.put(tempPath, filename, exportTTL)
	prefix := "/api"
	if strings.HasPrefix(c.Request.URL.Path, "/api/v1/") {
		prefix = "/api/v1"
	}
	return exportResponse{
		Token:       token,
		DownloadURL: fmt.Sprintf("%s/export/download/%s", prefix, token),
		Filename:    filename,
	}, nil
}

// Export 导出 Excel，返回一次性下载地址
// POST /api/export?kind=metrics&periods=ALL
func (h *Handler) Export(c *gin.Context) {
	req, filename, err := h.buildExportRequest(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp, err := h.writeExport(c, req, filename, nil)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ExportStream 导出 Excel（SSE 进度 + 完成后提供下载地址）
// POST /api/export/stream
func (h *Handler) ExportStream(c *gin.Context) {
	req, filename, err := h.buildExportRequest(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "不支持流式响应"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	send := func(event exportProgressEvent) {
		b, err := json.Marshal(event)
		if err != nil {
			return
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", b)
		flusher.Flush()
	}

	send(exportProgressEvent{
		Type:      "start",
		Message:   "开始导出",
		Data:      map[string]any{"filename": filename},
		Timestamp: time.Now(),
	})

	lastPercent := -1
	progressFn := func(p exporter.ProgressEvent) {
		if p.Percent == lastPercent {
			return
		}
		lastPercent = p.Percent
		send(exportProgressEvent{
			Type:      "progress",
			Message:   p.Stage,
			Data:      map[string]any{"percent": p.Percent},
			Timestamp: time.Now(),
		})
	}

	resp, err := h.writeExport(c, req, filename, progressFn)
	if err != nil {
		send(exportProgressEvent{
			Type:      "error",
			Message:   "导出失败: " + err.Error(),
			Data:      map[string]any{},
			Timestamp: time.Now(),
		})
		return
	}

	send(exportProgressEvent{
		Type:    "done",
		Message: "导出完成",
		Data: map[string]any{
			"percent":     100,
			"downloadUrl": resp.DownloadURL,
		},
		Timestamp: time.Now(),
	})
}

// DownloadExport 下载导出的 Excel 文件（一次性）
// GET /api/export/download/:token
func (h *Handler) DownloadExport(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 token"})
		return
	}

	item, ok := h.downloads.take(token)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "下载链接已失效"})
		return
	}
	defer os.Remove(item.filePath)

	if _, err := os.Stat(item.filePath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "导出文件不存在"})
		return
	}

	c.Header("Content-Disposition", buildExportContentDisposition(item.filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.File(item.filePath)
}

func buildExportContentDisposition(filename string) string {
	return fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", filename, url.PathEscape(filename))
}
