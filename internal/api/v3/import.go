package v3

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"warrantyboard/internal/importer"
)

// Import 导入 Excel 数据 (SSE 流式响应)
// POST /api/import
func (h *Handler) Import(c *gin.Context) {
	// 解析 multipart form
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的表单数据"})
		return
	}

	files := form.File["file"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传文件"})
		return
	}

	uploadedFile := files[0]

	// 保存到临时目录
	tempFilePath := filepath.Join(os.TempDir(), fmt.Sprintf("warrantyboard_import_%d_%s", time.Now().UnixNano(), filepath.Base(uploadedFile.Filename)))
	if err := c.SaveUploadedFile(uploadedFile, tempFilePath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存文件失败"})
		return
	}

	// 清理临时文件
	defer os.Remove(tempFilePath)

	progressChan := h.coordinator.Import(c.Request.Context(), importer.ImportOptions{
		FilePath: tempFilePath,
		Filename: uploadedFile.Filename,
		Sheets:   splitList(c.PostForm("sheets")),
	})
	h.streamEvents(c, progressChan)
}

// SyncSheets 从在线表格拉取周期并写入本地库 (SSE 流式响应)
// POST /api/sync/sheets
func (h *Handler) SyncSheets(c *gin.Context) {
	if h.sheets == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未配置在线表格"})
		return
	}

	progressChan := h.coordinator.ImportWorkbook(
		c.Request.Context(),
		h.sheets,
		importer.SourceSheets,
		h.spreadsheetID,
		splitList(c.PostForm("sheets")),
	)
	h.streamEvents(c, progressChan)
}

// streamEvents 以 SSE 格式转发进度事件
func (h *Handler) streamEvents(c *gin.Context, events <-chan importer.ProgressEvent) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "不支持流式响应"})
		return
	}

	// 设置 SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	for event := range events {
		eventData, err := json.Marshal(event)
		if err != nil {
			continue
		}

		// SSE 格式: data: {json}\n\n
		fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
		flusher.Flush()
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
